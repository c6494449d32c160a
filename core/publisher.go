package core

import (
	"net/netip"

	"github.com/jellydator/ttlcache/v3"
	"github.com/thistlemesh/thistle/perf"
	"github.com/thistlemesh/thistle/state"
)

const serviceKey = "dnssrp"

// Publisher decides whether this router's desired advertisements should
// actually be present in the shared network data, and applies the resulting
// mutations. All of its methods must run on the main event loop goroutine;
// external callers go through Env.Dispatch.
type Publisher struct {
	*state.State
	registry  *EntryRegistry
	eval      *ThresholdEvaluator
	callbacks *CallbackDispatcher
	ds        state.Dataset

	// damped holds entries whose last dataset mutation failed. They are
	// skipped by event-triggered evaluation and retried by the fallback
	// tick, which bounds the retry rate.
	damped *ttlcache.Cache[string, struct{}]
}

func (p *Publisher) Init(s *state.State) error {
	p.State = s
	p.ds = s.Dataset
	p.registry = NewEntryRegistry(s.Limits.PrefixCapacity())
	p.eval = NewThresholdEvaluator(s.Id, s.Limits)
	p.callbacks = NewCallbackDispatcher(s.Log)
	p.damped = ttlcache.New[string, struct{}](
		ttlcache.WithTTL[string, struct{}](s.EvalFallbackDelay()),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)

	p.ds.OnChange(func() {
		if s.Context.Err() != nil {
			return
		}
		s.Dispatch(p.handleNetDataChanged)
	})
	s.Env.RepeatTask(p.evalTick, s.EvalFallbackDelay())

	p.publishDeclared()
	return nil
}

func (p *Publisher) Cleanup(s *state.State) error {
	p.State = nil
	return nil
}

// publishDeclared publishes the advertisements declared in the node config.
// The config was validated before startup, so failures only get logged.
func (p *Publisher) publishDeclared() {
	for _, cfg := range p.Publish.OnMesh {
		if st := p.PublishOnMeshPrefix(cfg); st != state.StatusOk {
			p.Log.Warn("could not publish declared on-mesh prefix", "prefix", cfg.Prefix, "status", st)
		}
	}
	for _, cfg := range p.Publish.Routes {
		if st := p.PublishExternalRoute(cfg); st != state.StatusOk {
			p.Log.Warn("could not publish declared route", "prefix", cfg.Prefix, "status", st)
		}
	}
	if dnssrp := p.Publish.DnsSrp; dnssrp != nil {
		switch {
		case dnssrp.Anycast != nil:
			p.PublishDnsSrpServiceAnycast(dnssrp.Anycast.SequenceNumber)
		case dnssrp.Unicast != nil && dnssrp.Unicast.Address.IsValid():
			p.PublishDnsSrpServiceUnicast(dnssrp.Unicast.Address, dnssrp.Unicast.Port)
		case dnssrp.Unicast != nil:
			p.PublishDnsSrpServiceUnicastMeshLocalEid(dnssrp.Unicast.Port)
		}
	}
}

// PublishDnsSrpServiceAnycast replaces the service entry with an anycast
// variant carrying the given sequence number.
func (p *Publisher) PublishDnsSrpServiceAnycast(seq uint8) {
	p.publishService(state.DnsSrpService{
		Type:           state.ServiceAnycast,
		SequenceNumber: seq,
	})
}

// PublishDnsSrpServiceUnicast replaces the service entry with a unicast
// variant for the given server address and port.
func (p *Publisher) PublishDnsSrpServiceUnicast(addr netip.Addr, port uint16) {
	p.publishService(state.DnsSrpService{
		Type:    state.ServiceUnicast,
		Address: addr,
		Port:    port,
	})
}

// PublishDnsSrpServiceUnicastMeshLocalEid replaces the service entry with a
// unicast variant advertising the device's own mesh-local EID.
func (p *Publisher) PublishDnsSrpServiceUnicastMeshLocalEid(port uint16) {
	p.publishService(state.DnsSrpService{
		Type:         state.ServiceUnicast,
		Port:         port,
		MeshLocalEid: true,
	})
}

// publishService unconditionally replaces whatever service entry exists. If
// the replaced entry had reached the network data, its removal event fires
// before the new entry's own evaluation outcome.
func (p *Publisher) publishService(svc state.DnsSrpService) {
	entry, prev := p.registry.SetService(svc)
	p.Log.Info("publish requested", "service", svc)
	p.damped.Delete(serviceKey)
	p.callbacks.Begin()
	defer p.callbacks.End()
	if prev != nil && prev.State == EntryStateAdded {
		perf.DatasetMutations.Add(1)
		if err := p.ds.RemoveService(p.Id); err != nil {
			perf.MutationFailures.Add(1)
			p.Log.Warn("could not withdraw replaced dnssrp service", "err", err)
		}
		p.callbacks.NotifyService(state.EventEntryRemoved)
	}
	p.applyService(p.ds.Snapshot(), entry)
}

// UnpublishDnsSrpService removes the service entry. Returns NotFound if none
// is published.
func (p *Publisher) UnpublishDnsSrpService() state.Status {
	entry, st := p.registry.ClearService()
	if st != state.StatusOk {
		return st
	}
	p.Log.Info("unpublish requested", "service", entry.Service)
	p.damped.Delete(serviceKey)
	if entry.State == EntryStateAdded {
		perf.DatasetMutations.Add(1)
		if err := p.ds.RemoveService(p.Id); err != nil {
			perf.MutationFailures.Add(1)
			p.Log.Warn("could not withdraw dnssrp service", "err", err)
		}
		p.callbacks.NotifyService(state.EventEntryRemoved)
	}
	return state.StatusOk
}

// IsDnsSrpServiceAdded reports whether the published service entry has
// actually reached the network data. Pending entries report false.
func (p *Publisher) IsDnsSrpServiceAdded() bool {
	svc := p.registry.Service()
	return svc != nil && svc.State == EntryStateAdded
}

// SetDnsSrpServiceCallback replaces the service observer slot. The context
// value is passed back verbatim on every invocation.
func (p *Publisher) SetDnsSrpServiceCallback(obs DnsSrpServiceObserver, ctx any) {
	p.callbacks.SetServiceObserver(obs, ctx)
}

// PublishOnMeshPrefix validates and inserts an on-mesh prefix entry into the
// shared pool, then evaluates it.
func (p *Publisher) PublishOnMeshPrefix(cfg state.OnMeshPrefixConfig) state.Status {
	entry, st := p.registry.AddOnMeshPrefix(cfg)
	if st != state.StatusOk {
		return st
	}
	p.Log.Info("publish requested", "entry", entry)
	p.evaluateEntry(entry)
	return state.StatusOk
}

// PublishExternalRoute validates and inserts an external route entry into the
// shared pool, then evaluates it.
func (p *Publisher) PublishExternalRoute(cfg state.ExternalRouteConfig) state.Status {
	entry, st := p.registry.AddExternalRoute(cfg)
	if st != state.StatusOk {
		return st
	}
	p.Log.Info("publish requested", "entry", entry)
	p.evaluateEntry(entry)
	return state.StatusOk
}

// UnpublishPrefix removes a prefix entry of either kind. Removing the entry
// also cancels any retry still queued for it. Returns NotFound if absent.
func (p *Publisher) UnpublishPrefix(prefix netip.Prefix) state.Status {
	entry, st := p.registry.RemovePrefix(prefix)
	if st != state.StatusOk {
		return st
	}
	p.Log.Info("unpublish requested", "entry", entry)
	p.damped.Delete(prefixKey(prefix))
	if entry.State == EntryStateAdded {
		perf.DatasetMutations.Add(1)
		if err := p.ds.RemovePrefix(p.Id, prefix); err != nil {
			perf.MutationFailures.Add(1)
			p.Log.Warn("could not withdraw prefix", "prefix", prefix, "err", err)
		}
		p.callbacks.NotifyPrefix(state.EventEntryRemoved, prefix)
	}
	return state.StatusOk
}

// IsPrefixAdded reports whether a published prefix entry has actually reached
// the network data. Pending entries report false.
func (p *Publisher) IsPrefixAdded(prefix netip.Prefix) bool {
	entry := p.registry.FindPrefix(prefix)
	return entry != nil && entry.State == EntryStateAdded
}

// SetPrefixCallback replaces the prefix observer slot. The context value is
// passed back verbatim on every invocation.
func (p *Publisher) SetPrefixCallback(obs PrefixObserver, ctx any) {
	p.callbacks.SetPrefixObserver(obs, ctx)
}

// Registry exposes the desired advertisement set for inspection.
func (p *Publisher) Registry() *EntryRegistry {
	return p.registry
}

func (p *Publisher) handleNetDataChanged(s *state.State) error {
	return p.evaluateAll(false)
}

// evalTick is the fallback trigger. It retries damped entries, so it
// evaluates everything.
func (p *Publisher) evalTick(s *state.State) error {
	p.damped.DeleteExpired()
	return p.evaluateAll(true)
}

// evaluateEntry runs a single-entry evaluation pass, used right after a
// publish call. Changes to the dataset it causes arrive back as a queued
// change notification and trigger a full pass.
func (p *Publisher) evaluateEntry(entry *PrefixEntry) {
	p.callbacks.Begin()
	defer p.callbacks.End()
	p.applyPrefix(p.ds.Snapshot(), entry)
}

// evaluateAll re-evaluates every registered entry against one snapshot.
// Observer callbacks collected during the pass fire only after the registry
// iteration completes.
func (p *Publisher) evaluateAll(retryDamped bool) error {
	snap := p.ds.Snapshot()
	p.callbacks.Begin()
	defer p.callbacks.End()
	if svc := p.registry.Service(); svc != nil {
		if retryDamped || !p.isDamped(serviceKey) {
			p.applyService(snap, svc)
		}
	}
	for _, entry := range p.registry.Prefixes() {
		if retryDamped || !p.isDamped(prefixKey(entry.Prefix)) {
			p.applyPrefix(snap, entry)
		}
	}
	return nil
}

func (p *Publisher) applyService(snap state.Snapshot, entry *ServiceEntry) {
	perf.Evaluations.Add(1)
	switch p.eval.EvaluateService(snap, entry) {
	case DecisionAdd:
		perf.DatasetMutations.Add(1)
		if err := p.ds.AddService(state.ServiceAdvert{Router: p.Id, Service: entry.Service}); err != nil {
			p.mutationFailed(serviceKey, err)
			return
		}
		p.damped.Delete(serviceKey)
		entry.State = EntryStateAdded
		p.Log.Info("dnssrp service added to network data", "service", entry.Service)
		p.callbacks.NotifyService(state.EventEntryAdded)
	case DecisionRemove:
		perf.DatasetMutations.Add(1)
		if err := p.ds.RemoveService(p.Id); err != nil {
			p.mutationFailed(serviceKey, err)
			return
		}
		p.damped.Delete(serviceKey)
		entry.State = EntryStatePending
		p.Log.Info("dnssrp service withdrawn, enough other routers advertise it", "service", entry.Service)
		p.callbacks.NotifyService(state.EventEntryRemoved)
	}
}

func (p *Publisher) applyPrefix(snap state.Snapshot, entry *PrefixEntry) {
	perf.Evaluations.Add(1)
	switch p.eval.EvaluatePrefix(snap, entry) {
	case DecisionAdd:
		perf.DatasetMutations.Add(1)
		if err := p.ds.AddPrefix(entry.Advert(p.Id)); err != nil {
			p.mutationFailed(prefixKey(entry.Prefix), err)
			return
		}
		p.damped.Delete(prefixKey(entry.Prefix))
		entry.State = EntryStateAdded
		p.Log.Info("prefix added to network data", "entry", entry)
		p.callbacks.NotifyPrefix(state.EventEntryAdded, entry.Prefix)
	case DecisionRemove:
		perf.DatasetMutations.Add(1)
		if err := p.ds.RemovePrefix(p.Id, entry.Prefix); err != nil {
			p.mutationFailed(prefixKey(entry.Prefix), err)
			return
		}
		p.damped.Delete(prefixKey(entry.Prefix))
		entry.State = EntryStatePending
		p.Log.Info("prefix withdrawn, enough other routers advertise it", "entry", entry)
		p.callbacks.NotifyPrefix(state.EventEntryRemoved, entry.Prefix)
	}
}

// mutationFailed leaves the entry in its pre-mutation state and damps it
// until the next fallback tick.
func (p *Publisher) mutationFailed(key string, err error) {
	perf.MutationFailures.Add(1)
	p.Log.Warn("network data mutation failed, will retry", "entry", key, "status", state.StatusFailed, "err", err)
	p.damped.Set(key, struct{}{}, ttlcache.DefaultTTL)
}

func (p *Publisher) isDamped(key string) bool {
	return p.damped.Get(key) != nil
}

func prefixKey(prefix netip.Prefix) string {
	return "prefix " + prefix.String()
}
