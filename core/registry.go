package core

import (
	"fmt"
	"net/netip"

	"github.com/thistlemesh/thistle/state"
)

// EntryState tracks where a desired advertisement currently stands against
// the shared network data.
type EntryState uint8

const (
	EntryStateUnpublished EntryState = iota
	EntryStatePending
	EntryStateAdded
)

func (s EntryState) String() string {
	switch s {
	case EntryStateUnpublished:
		return "unpublished"
	case EntryStatePending:
		return "pending"
	case EntryStateAdded:
		return "added"
	}
	return "invalid"
}

// ServiceEntry is the singleton desired DNS/SRP service advertisement.
type ServiceEntry struct {
	Service state.DnsSrpService
	State   EntryState
}

// PrefixEntry is one slot of the shared prefix pool. The on-mesh flags are
// zero for external route entries.
type PrefixEntry struct {
	Prefix       netip.Prefix
	Kind         state.PrefixKind
	Preference   state.RoutePreference
	Preferred    bool
	Slaac        bool
	DefaultRoute bool
	OnMesh       bool
	State        EntryState
}

func (e *PrefixEntry) String() string {
	return fmt.Sprintf("%s %s (%s)", e.Kind, e.Prefix, e.State)
}

// Advert converts the entry into the advertisement this router would place
// in the shared network data.
func (e *PrefixEntry) Advert(router state.RouterId) state.PrefixAdvert {
	return state.PrefixAdvert{
		Router:       router,
		Prefix:       e.Prefix,
		Kind:         e.Kind,
		Preference:   e.Preference,
		Preferred:    e.Preferred,
		Slaac:        e.Slaac,
		DefaultRoute: e.DefaultRoute,
		OnMesh:       e.OnMesh,
	}
}

// EntryRegistry owns the device's desired advertisement set: at most one
// DNS/SRP service entry plus a fixed-capacity pool of prefix entries shared
// between on-mesh prefixes and external routes.
type EntryRegistry struct {
	capacity int
	service  *ServiceEntry
	prefixes []*PrefixEntry
}

func NewEntryRegistry(capacity int) *EntryRegistry {
	return &EntryRegistry{
		capacity: capacity,
		prefixes: make([]*PrefixEntry, 0, capacity),
	}
}

// SetService replaces or creates the singleton service entry, returning the
// previous entry (nil if none). The new entry starts Pending; replacement is
// never an error.
func (r *EntryRegistry) SetService(svc state.DnsSrpService) (entry, prev *ServiceEntry) {
	prev = r.service
	r.service = &ServiceEntry{Service: svc, State: EntryStatePending}
	return r.service, prev
}

func (r *EntryRegistry) Service() *ServiceEntry {
	return r.service
}

// ClearService removes the service entry, returning it for transition
// bookkeeping.
func (r *EntryRegistry) ClearService() (*ServiceEntry, state.Status) {
	if r.service == nil {
		return nil, state.StatusNotFound
	}
	entry := r.service
	r.service = nil
	return entry, state.StatusOk
}

// AddOnMeshPrefix validates and inserts an on-mesh prefix entry as Pending.
func (r *EntryRegistry) AddOnMeshPrefix(cfg state.OnMeshPrefixConfig) (*PrefixEntry, state.Status) {
	if state.OnMeshPrefixValidator(cfg) != nil {
		return nil, state.StatusInvalidArgs
	}
	return r.insert(&PrefixEntry{
		Prefix:       cfg.Prefix,
		Kind:         state.KindOnMeshPrefix,
		Preference:   cfg.Preference,
		Preferred:    cfg.Preferred,
		Slaac:        cfg.Slaac,
		DefaultRoute: cfg.DefaultRoute,
		OnMesh:       cfg.OnMesh,
		State:        EntryStatePending,
	})
}

// AddExternalRoute validates and inserts an external route entry as Pending.
func (r *EntryRegistry) AddExternalRoute(cfg state.ExternalRouteConfig) (*PrefixEntry, state.Status) {
	if state.ExternalRouteValidator(cfg) != nil {
		return nil, state.StatusInvalidArgs
	}
	return r.insert(&PrefixEntry{
		Prefix:     cfg.Prefix,
		Kind:       state.KindExternalRoute,
		Preference: cfg.Preference,
		State:      EntryStatePending,
	})
}

// insert enforces pool-wide prefix uniqueness regardless of kind, then the
// shared capacity bound.
func (r *EntryRegistry) insert(entry *PrefixEntry) (*PrefixEntry, state.Status) {
	if r.FindPrefix(entry.Prefix) != nil {
		return nil, state.StatusAlready
	}
	if len(r.prefixes) >= r.capacity {
		return nil, state.StatusNoBufs
	}
	r.prefixes = append(r.prefixes, entry)
	return entry, state.StatusOk
}

// RemovePrefix removes an entry of either kind, returning it for transition
// bookkeeping.
func (r *EntryRegistry) RemovePrefix(prefix netip.Prefix) (*PrefixEntry, state.Status) {
	for i, entry := range r.prefixes {
		if entry.Prefix == prefix {
			r.prefixes = append(r.prefixes[:i], r.prefixes[i+1:]...)
			return entry, state.StatusOk
		}
	}
	return nil, state.StatusNotFound
}

func (r *EntryRegistry) FindPrefix(prefix netip.Prefix) *PrefixEntry {
	for _, entry := range r.prefixes {
		if entry.Prefix == prefix {
			return entry
		}
	}
	return nil
}

// Prefixes returns the live pool entries. Callers iterating the result must
// not mutate the registry mid-iteration; the publisher defers observer
// callbacks until its evaluation pass completes for this reason.
func (r *EntryRegistry) Prefixes() []*PrefixEntry {
	return r.prefixes
}

func (r *EntryRegistry) Len() int {
	return len(r.prefixes)
}
