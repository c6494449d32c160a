// Package mock provides a scriptable network data collaborator for tests.
package mock

import (
	"errors"
	"net/netip"
	"slices"

	"github.com/thistlemesh/thistle/state"
)

var ErrUnreachable = errors.New("network data update could not be delivered")

// Dataset implements state.Dataset with injectable failures and direct
// seeding of remote routers' advertisements.
type Dataset struct {
	Prefixes []state.PrefixAdvert
	Services []state.ServiceAdvert

	// FailMutations makes every mutation fail without touching the dataset.
	FailMutations bool

	subs []func()
}

func NewDataset() *Dataset {
	return &Dataset{}
}

func (d *Dataset) Snapshot() state.Snapshot {
	return state.Snapshot{
		Prefixes: slices.Clone(d.Prefixes),
		Services: slices.Clone(d.Services),
	}
}

func (d *Dataset) AddPrefix(adv state.PrefixAdvert) error {
	if d.FailMutations {
		return ErrUnreachable
	}
	d.SeedPrefix(adv)
	return nil
}

func (d *Dataset) RemovePrefix(router state.RouterId, prefix netip.Prefix) error {
	if d.FailMutations {
		return ErrUnreachable
	}
	d.Prefixes = slices.DeleteFunc(d.Prefixes, func(a state.PrefixAdvert) bool {
		return a.Router == router && a.Prefix == prefix
	})
	d.Notify()
	return nil
}

func (d *Dataset) AddService(adv state.ServiceAdvert) error {
	if d.FailMutations {
		return ErrUnreachable
	}
	d.SeedService(adv)
	return nil
}

func (d *Dataset) RemoveService(router state.RouterId) error {
	if d.FailMutations {
		return ErrUnreachable
	}
	d.Services = slices.DeleteFunc(d.Services, func(a state.ServiceAdvert) bool {
		return a.Router == router
	})
	d.Notify()
	return nil
}

func (d *Dataset) OnChange(fn func()) {
	d.subs = append(d.subs, fn)
}

// SeedPrefix installs an advertisement as if another router had published it,
// replacing that router's previous one for the same prefix, and notifies.
func (d *Dataset) SeedPrefix(adv state.PrefixAdvert) {
	d.Prefixes = slices.DeleteFunc(d.Prefixes, func(a state.PrefixAdvert) bool {
		return a.Router == adv.Router && a.Prefix == adv.Prefix
	})
	d.Prefixes = append(d.Prefixes, adv)
	d.Notify()
}

// SeedService installs a service advertisement as if another router had
// published it, and notifies.
func (d *Dataset) SeedService(adv state.ServiceAdvert) {
	d.Services = slices.DeleteFunc(d.Services, func(a state.ServiceAdvert) bool {
		return a.Router == adv.Router
	})
	d.Services = append(d.Services, adv)
	d.Notify()
}

// Notify fires the change subscription, as the real dataset does after every
// update, including this device's own.
func (d *Dataset) Notify() {
	for _, fn := range d.subs {
		fn()
	}
}

// HasPrefix reports whether router currently advertises prefix with kind.
func (d *Dataset) HasPrefix(router state.RouterId, prefix netip.Prefix, kind state.PrefixKind) bool {
	return slices.ContainsFunc(d.Prefixes, func(a state.PrefixAdvert) bool {
		return a.Router == router && a.Prefix == prefix && a.Kind == kind
	})
}

// HasService reports whether router currently advertises a service entry.
func (d *Dataset) HasService(router state.RouterId) bool {
	return slices.ContainsFunc(d.Services, func(a state.ServiceAdvert) bool {
		return a.Router == router
	})
}
