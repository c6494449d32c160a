package core

import (
	"net/netip"
	"slices"

	"github.com/gaissmai/bart"
	"github.com/thistlemesh/thistle/state"
)

// LocalDataset is the in-process implementation of the shared network data
// boundary. It holds the advertisements of every router this device currently
// sees, keyed by prefix, and fans out change notifications on every mutation.
// Mesh-wide propagation of the dataset is outside this module; tests and the
// daemon seed remote routers' advertisements directly.
type LocalDataset struct {
	prefixes bart.Table[[]state.PrefixAdvert]
	services []state.ServiceAdvert
	subs     []func()
}

func NewLocalDataset() *LocalDataset {
	return &LocalDataset{}
}

func (d *LocalDataset) Snapshot() state.Snapshot {
	snap := state.Snapshot{
		Services: slices.Clone(d.services),
	}
	for _, advs := range d.prefixes.All() {
		snap.Prefixes = append(snap.Prefixes, advs...)
	}
	return snap
}

// AddPrefix inserts or replaces the advertisement of adv.Router for
// adv.Prefix.
func (d *LocalDataset) AddPrefix(adv state.PrefixAdvert) error {
	advs, _ := d.prefixes.Get(adv.Prefix)
	advs = slices.DeleteFunc(slices.Clone(advs), func(a state.PrefixAdvert) bool {
		return a.Router == adv.Router
	})
	advs = append(advs, adv)
	d.prefixes.Insert(adv.Prefix, advs)
	d.notify()
	return nil
}

// RemovePrefix removes router's advertisement for prefix. Removal is
// idempotent; removing an absent advertisement is not an error and does not
// notify.
func (d *LocalDataset) RemovePrefix(router state.RouterId, prefix netip.Prefix) error {
	advs, ok := d.prefixes.Get(prefix)
	if !ok {
		return nil
	}
	trimmed := slices.DeleteFunc(slices.Clone(advs), func(a state.PrefixAdvert) bool {
		return a.Router == router
	})
	if len(trimmed) == len(advs) {
		return nil
	}
	if len(trimmed) == 0 {
		d.prefixes.Delete(prefix)
	} else {
		d.prefixes.Insert(prefix, trimmed)
	}
	d.notify()
	return nil
}

// AddService inserts or replaces the service advertisement of adv.Router.
// Each router carries at most one.
func (d *LocalDataset) AddService(adv state.ServiceAdvert) error {
	d.services = slices.DeleteFunc(d.services, func(a state.ServiceAdvert) bool {
		return a.Router == adv.Router
	})
	d.services = append(d.services, adv)
	d.notify()
	return nil
}

func (d *LocalDataset) RemoveService(router state.RouterId) error {
	trimmed := slices.DeleteFunc(slices.Clone(d.services), func(a state.ServiceAdvert) bool {
		return a.Router == router
	})
	if len(trimmed) == len(d.services) {
		return nil
	}
	d.services = trimmed
	d.notify()
	return nil
}

func (d *LocalDataset) OnChange(fn func()) {
	d.subs = append(d.subs, fn)
}

func (d *LocalDataset) notify() {
	for _, fn := range d.subs {
		fn()
	}
}
