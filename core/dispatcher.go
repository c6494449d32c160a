package core

import (
	"log/slog"
	"net/netip"

	"github.com/thistlemesh/thistle/perf"
	"github.com/thistlemesh/thistle/state"
)

// DnsSrpServiceObserver is notified when the published DNS/SRP service entry
// is actually added to or removed from the shared network data.
type DnsSrpServiceObserver interface {
	HandleDnsSrpServiceEvent(event state.PublisherEvent, ctx any)
}

// PrefixObserver is notified when a published prefix entry (on-mesh or
// external route) is actually added to or removed from the shared network
// data.
type PrefixObserver interface {
	HandlePrefixEvent(event state.PublisherEvent, prefix netip.Prefix, ctx any)
}

type DnsSrpServiceObserverFunc func(event state.PublisherEvent, ctx any)

func (f DnsSrpServiceObserverFunc) HandleDnsSrpServiceEvent(event state.PublisherEvent, ctx any) {
	f(event, ctx)
}

type PrefixObserverFunc func(event state.PublisherEvent, prefix netip.Prefix, ctx any)

func (f PrefixObserverFunc) HandlePrefixEvent(event state.PublisherEvent, prefix netip.Prefix, ctx any) {
	f(event, prefix, ctx)
}

type queuedEvent struct {
	event   state.PublisherEvent
	prefix  netip.Prefix
	service bool
}

// CallbackDispatcher delivers exactly one notification per confirmed
// add/remove transition to the registered observer slots. Each category holds
// one slot; re-registration silently replaces the previous observer. Events
// raised during an evaluation pass are queued and delivered only after the
// pass completes, so observers may safely call back into the publisher's
// mutators.
type CallbackDispatcher struct {
	log *slog.Logger

	serviceObs DnsSrpServiceObserver
	serviceCtx any
	prefixObs  PrefixObserver
	prefixCtx  any

	queue      []queuedEvent
	depth      int
	delivering bool
}

func NewCallbackDispatcher(log *slog.Logger) *CallbackDispatcher {
	return &CallbackDispatcher{log: log}
}

func (d *CallbackDispatcher) SetServiceObserver(obs DnsSrpServiceObserver, ctx any) {
	d.serviceObs = obs
	d.serviceCtx = ctx
}

func (d *CallbackDispatcher) SetPrefixObserver(obs PrefixObserver, ctx any) {
	d.prefixObs = obs
	d.prefixCtx = ctx
}

// Begin opens an evaluation pass. Passes nest; events queue until the
// outermost pass ends.
func (d *CallbackDispatcher) Begin() {
	d.depth++
}

// End closes an evaluation pass and, once the outermost pass is done, drains
// the event queue. Observer callbacks run here, on the event loop goroutine;
// mutator calls they make re-enter Begin/End and queue onto the same drain.
func (d *CallbackDispatcher) End() {
	d.depth--
	if d.depth > 0 || d.delivering {
		return
	}
	d.delivering = true
	defer func() { d.delivering = false }()
	for len(d.queue) > 0 {
		ev := d.queue[0]
		d.queue = d.queue[1:]
		d.deliver(ev)
	}
}

func (d *CallbackDispatcher) NotifyService(event state.PublisherEvent) {
	d.enqueue(queuedEvent{event: event, service: true})
}

func (d *CallbackDispatcher) NotifyPrefix(event state.PublisherEvent, prefix netip.Prefix) {
	d.enqueue(queuedEvent{event: event, prefix: prefix})
}

func (d *CallbackDispatcher) enqueue(ev queuedEvent) {
	if d.depth > 0 || d.delivering {
		d.queue = append(d.queue, ev)
		return
	}
	d.deliver(ev)
}

// deliver resolves the observer slot at fire time, so a slot replaced after
// an event was queued receives it and the old observer does not.
func (d *CallbackDispatcher) deliver(ev queuedEvent) {
	if ev.service {
		if d.serviceObs == nil {
			return
		}
		d.log.Debug("notify dnssrp observer", "event", ev.event)
		perf.CallbacksFired.Add(1)
		d.serviceObs.HandleDnsSrpServiceEvent(ev.event, d.serviceCtx)
		return
	}
	if d.prefixObs == nil {
		return
	}
	d.log.Debug("notify prefix observer", "event", ev.event, "prefix", ev.prefix)
	perf.CallbacksFired.Add(1)
	d.prefixObs.HandlePrefixEvent(ev.event, ev.prefix, d.prefixCtx)
}
