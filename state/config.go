package state

import (
	"net"
	"net/netip"
	"time"

	"github.com/cilium/cilium/pkg/ip"
)

// LocalCfg represents local node-level configuration
type LocalCfg struct {
	// Node Private Key
	Key     PrivateKey `yaml:"key"`
	Id      RouterId   `yaml:"id"` // unique id for this node
	LogPath string     `yaml:"log_path,omitempty"`

	// EvalFallback overrides the fallback re-evaluation tick period
	EvalFallback time.Duration `yaml:"eval_fallback,omitempty"`

	Limits  LimitsCfg  `yaml:"limits,omitempty"`
	Publish PublishCfg `yaml:"publish,omitempty"`
}

// LimitsCfg overrides the publisher capacity and desired-count defaults.
// Zero values fall back to the package defaults.
type LimitsCfg struct {
	MaxPrefixEntries int `yaml:"max_prefix_entries,omitempty"`
	DesiredOnMesh    int `yaml:"desired_on_mesh,omitempty"`
	DesiredRoutes    int `yaml:"desired_routes,omitempty"`
	DesiredAnycast   int `yaml:"desired_anycast,omitempty"`
	DesiredUnicast   int `yaml:"desired_unicast,omitempty"`
}

func (l LimitsCfg) PrefixCapacity() int {
	return orDefault(l.MaxPrefixEntries, MaxPrefixEntries)
}

func (l LimitsCfg) DesiredFor(kind PrefixKind) int {
	if kind == KindExternalRoute {
		return orDefault(l.DesiredRoutes, DesiredExternalRoutes)
	}
	return orDefault(l.DesiredOnMesh, DesiredOnMeshPrefixes)
}

func (l LimitsCfg) DesiredForService(typ ServiceType) int {
	if typ == ServiceAnycast {
		return orDefault(l.DesiredAnycast, DesiredAnycastDnsSrpServices)
	}
	return orDefault(l.DesiredUnicast, DesiredUnicastDnsSrpServices)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// PublishCfg declares the advertisements the daemon publishes at startup.
type PublishCfg struct {
	OnMesh []OnMeshPrefixConfig  `yaml:"on_mesh,omitempty"`
	Routes []ExternalRouteConfig `yaml:"routes,omitempty"`
	DnsSrp *DnsSrpCfg            `yaml:"dnssrp,omitempty"`
}

// DnsSrpCfg declares at most one DNS/SRP service. Exactly one of Anycast or
// Unicast may be set; a unicast entry without an address advertises the
// device's mesh-local EID.
type DnsSrpCfg struct {
	Anycast *AnycastCfg `yaml:"anycast,omitempty"`
	Unicast *UnicastCfg `yaml:"unicast,omitempty"`
}

type AnycastCfg struct {
	SequenceNumber uint8 `yaml:"seq"`
}

type UnicastCfg struct {
	Address netip.Addr `yaml:"address,omitempty"`
	Port    uint16     `yaml:"port"`
}

func (e *Env) EvalFallbackDelay() time.Duration {
	if e.LocalCfg.EvalFallback > 0 {
		return e.LocalCfg.EvalFallback
	}
	return EvalFallbackDelay
}

func toIPNets(prefixes []netip.Prefix) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(prefixes))
	for _, p := range prefixes {
		if p.IsValid() {
			nets = append(nets, &net.IPNet{
				IP:   p.Addr().AsSlice(),
				Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
			})
		}
	}
	return nets
}

func fromIPNets(nets []*net.IPNet) []netip.Prefix {
	output := make([]netip.Prefix, 0, len(nets))
	for _, n := range nets {
		if addr, ok := netip.AddrFromSlice(n.IP); ok {
			ones, _ := n.Mask.Size()
			output = append(output, netip.PrefixFrom(addr.Unmap(), ones))
		}
	}
	return output
}

// CoalescePrefix merges overlapping and adjacent prefixes into their minimal
// covering set.
func CoalescePrefix(prefixes []netip.Prefix) []netip.Prefix {
	ipv4, ipv6 := ip.CoalesceCIDRs(toIPNets(prefixes))
	return fromIPNets(append(ipv4, ipv6...))
}

// PublishedPrefixes returns the prefixes of every declared pool entry, in
// declaration order.
func (c PublishCfg) PublishedPrefixes() []netip.Prefix {
	prefixes := make([]netip.Prefix, 0, len(c.OnMesh)+len(c.Routes))
	for _, p := range c.OnMesh {
		prefixes = append(prefixes, p.Prefix)
	}
	for _, r := range c.Routes {
		prefixes = append(prefixes, r.Prefix)
	}
	return prefixes
}
