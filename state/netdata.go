package state

import (
	"fmt"
	"net/netip"
	"slices"
)

// RouterId is the stable identifier of a border router participating in the
// mesh. Identifiers order lexicographically, which the publisher relies on
// for deterministic tie-breaking between redundant contributors.
type RouterId string

// RoutePreference is the advertised preference of a prefix entry.
type RoutePreference int8

const (
	RoutePreferenceLow    RoutePreference = -1
	RoutePreferenceMedium RoutePreference = 0
	RoutePreferenceHigh   RoutePreference = 1
)

func (p RoutePreference) String() string {
	switch p {
	case RoutePreferenceLow:
		return "low"
	case RoutePreferenceMedium:
		return "med"
	case RoutePreferenceHigh:
		return "high"
	}
	return "invalid"
}

func (p RoutePreference) IsValid() bool {
	return p >= RoutePreferenceLow && p <= RoutePreferenceHigh
}

func (p RoutePreference) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("invalid route preference %d", int8(p))
	}
	return []byte(p.String()), nil
}

func (p *RoutePreference) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low":
		*p = RoutePreferenceLow
	case "med", "medium", "":
		*p = RoutePreferenceMedium
	case "high":
		*p = RoutePreferenceHigh
	default:
		return fmt.Errorf("unknown route preference %q", string(text))
	}
	return nil
}

// PrefixKind tags an entry in the shared prefix pool.
type PrefixKind uint8

const (
	KindOnMeshPrefix PrefixKind = iota
	KindExternalRoute
)

func (k PrefixKind) String() string {
	switch k {
	case KindOnMeshPrefix:
		return "on-mesh"
	case KindExternalRoute:
		return "route"
	}
	return "invalid"
}

// OnMeshPrefixConfig describes an on-mesh prefix to publish.
type OnMeshPrefixConfig struct {
	Prefix       netip.Prefix    `yaml:"prefix"`
	Preferred    bool            `yaml:"preferred,omitempty"`
	Slaac        bool            `yaml:"slaac,omitempty"`
	DefaultRoute bool            `yaml:"default_route,omitempty"`
	OnMesh       bool            `yaml:"on_mesh,omitempty"`
	Stable       bool            `yaml:"stable,omitempty"`
	Preference   RoutePreference `yaml:"preference,omitempty"`
}

// ExternalRouteConfig describes an external route prefix to publish.
type ExternalRouteConfig struct {
	Prefix     netip.Prefix    `yaml:"prefix"`
	Stable     bool            `yaml:"stable,omitempty"`
	Preference RoutePreference `yaml:"preference,omitempty"`
}

// ServiceType is the counting category of a DNS/SRP service entry.
type ServiceType uint8

const (
	ServiceAnycast ServiceType = iota
	ServiceUnicast
)

// DnsSrpService is the singleton DNS/SRP service advertisement. For anycast,
// only SequenceNumber is meaningful. For unicast, either an explicit Address
// is carried or MeshLocalEid is set to advertise the device's own mesh-local
// EID instead.
type DnsSrpService struct {
	Type           ServiceType
	SequenceNumber uint8
	Address        netip.Addr
	Port           uint16
	MeshLocalEid   bool
}

func (s DnsSrpService) String() string {
	if s.Type == ServiceAnycast {
		return fmt.Sprintf("dnssrp anycast seq=%d", s.SequenceNumber)
	}
	if s.MeshLocalEid {
		return fmt.Sprintf("dnssrp unicast mleid:%d", s.Port)
	}
	return fmt.Sprintf("dnssrp unicast %s:%d", s.Address, s.Port)
}

// PrefixAdvert is one router's prefix advertisement as visible in the shared
// network data. The on-mesh flags are zero for external route entries.
type PrefixAdvert struct {
	Router       RouterId
	Prefix       netip.Prefix
	Kind         PrefixKind
	Preference   RoutePreference
	Preferred    bool
	Slaac        bool
	DefaultRoute bool
	OnMesh       bool
}

// ServiceAdvert is one router's DNS/SRP service advertisement.
type ServiceAdvert struct {
	Router  RouterId
	Service DnsSrpService
}

// Snapshot is a read-only view of the shared network data at one instant.
type Snapshot struct {
	Prefixes []PrefixAdvert
	Services []ServiceAdvert
}

// PrefixContributors returns the routers currently advertising an equivalent
// prefix entry (same prefix value and kind).
func (s Snapshot) PrefixContributors(prefix netip.Prefix, kind PrefixKind) []RouterId {
	var ids []RouterId
	for _, adv := range s.Prefixes {
		if adv.Prefix == prefix && adv.Kind == kind && !slices.Contains(ids, adv.Router) {
			ids = append(ids, adv.Router)
		}
	}
	return ids
}

// ServiceContributors returns the routers currently advertising an equivalent
// DNS/SRP service. Anycast services are equivalent when they carry the same
// sequence number; unicast services are equivalent regardless of address.
func (s Snapshot) ServiceContributors(svc DnsSrpService) []RouterId {
	var ids []RouterId
	for _, adv := range s.Services {
		if adv.Service.Type != svc.Type {
			continue
		}
		if svc.Type == ServiceAnycast && adv.Service.SequenceNumber != svc.SequenceNumber {
			continue
		}
		if !slices.Contains(ids, adv.Router) {
			ids = append(ids, adv.Router)
		}
	}
	return ids
}

// Dataset is the shared network data collaborator consumed by the publisher.
// Mutations are synchronous and non-reentrant; a returned error indicates a
// transient delivery failure and leaves the advertisement unchanged. The
// change handler registered with OnChange fires after every dataset update,
// including ones caused by this device's own mutations.
type Dataset interface {
	Snapshot() Snapshot
	AddPrefix(adv PrefixAdvert) error
	RemovePrefix(router RouterId, prefix netip.Prefix) error
	AddService(adv ServiceAdvert) error
	RemoveService(router RouterId) error
	OnChange(fn func())
}

// PublisherEvent is reported to publisher observers.
type PublisherEvent uint8

const (
	EventEntryAdded PublisherEvent = iota
	EventEntryRemoved
)

func (e PublisherEvent) String() string {
	if e == EventEntryAdded {
		return "added"
	}
	return "removed"
}
