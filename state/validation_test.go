package state

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameValidator(t *testing.T) {
	assert.NoError(t, NameValidator("node-1.example_a"))
	assert.Error(t, NameValidator("Node1"))
	assert.Error(t, NameValidator("node 1"))
	assert.Error(t, NameValidator(""))
}

func TestPrefixValidator(t *testing.T) {
	assert.NoError(t, PrefixValidator(netip.MustParsePrefix("fd00:1::/64")))
	assert.Error(t, PrefixValidator(netip.Prefix{}), "zero prefix")
	assert.Error(t, PrefixValidator(netip.MustParsePrefix("10.0.0.0/8")), "IPv4")
	assert.Error(t, PrefixValidator(netip.MustParsePrefix("::ffff:10.0.0.0/104")), "IPv4-mapped")
	assert.Error(t, PrefixValidator(netip.PrefixFrom(netip.MustParseAddr("fd00::1"), 64)), "host bits set")
}

func TestOnMeshPrefixValidator(t *testing.T) {
	base := OnMeshPrefixConfig{
		Prefix: netip.MustParsePrefix("fd00:1::/64"),
		Slaac:  true,
		OnMesh: true,
		Stable: true,
	}
	assert.NoError(t, OnMeshPrefixValidator(base))

	tests := []struct {
		name   string
		mutate func(*OnMeshPrefixConfig)
	}{
		{"not stable", func(c *OnMeshPrefixConfig) { c.Stable = false }},
		{"preferred without slaac", func(c *OnMeshPrefixConfig) { c.Slaac = false; c.Preferred = true }},
		{"default route without on-mesh", func(c *OnMeshPrefixConfig) { c.OnMesh = false; c.DefaultRoute = true }},
		{"invalid preference", func(c *OnMeshPrefixConfig) { c.Preference = 3 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.Error(t, OnMeshPrefixValidator(cfg))
		})
	}
}

func TestDnsSrpValidator(t *testing.T) {
	assert.NoError(t, DnsSrpValidator(nil))
	assert.NoError(t, DnsSrpValidator(&DnsSrpCfg{Anycast: &AnycastCfg{SequenceNumber: 1}}))
	assert.NoError(t, DnsSrpValidator(&DnsSrpCfg{Unicast: &UnicastCfg{Port: 53}}))

	assert.Error(t, DnsSrpValidator(&DnsSrpCfg{}))
	assert.Error(t, DnsSrpValidator(&DnsSrpCfg{
		Anycast: &AnycastCfg{SequenceNumber: 1},
		Unicast: &UnicastCfg{Port: 53},
	}))
	assert.Error(t, DnsSrpValidator(&DnsSrpCfg{Unicast: &UnicastCfg{Port: 0}}))
	assert.Error(t, DnsSrpValidator(&DnsSrpCfg{Unicast: &UnicastCfg{
		Address: netip.MustParseAddr("10.0.0.1"),
		Port:    53,
	}}))
}

func TestLocalConfigValidator(t *testing.T) {
	cfg := LocalCfg{
		Id: "node1",
		Publish: PublishCfg{
			OnMesh: []OnMeshPrefixConfig{{
				Prefix: netip.MustParsePrefix("fd00:1::/64"),
				Slaac:  true,
				OnMesh: true,
				Stable: true,
			}},
			Routes: []ExternalRouteConfig{{
				Prefix: netip.MustParsePrefix("fd00:2::/64"),
				Stable: true,
			}},
		},
	}
	assert.NoError(t, LocalConfigValidator(&cfg))

	dup := cfg
	dup.Publish.Routes = append(dup.Publish.Routes, ExternalRouteConfig{
		Prefix: netip.MustParsePrefix("fd00:1::/64"),
		Stable: true,
	})
	assert.Error(t, LocalConfigValidator(&dup), "duplicate declared prefix")

	overflow := cfg
	overflow.Limits.MaxPrefixEntries = 1
	assert.Error(t, LocalConfigValidator(&overflow), "more prefixes than pool capacity")

	badId := cfg
	badId.Id = "NODE!"
	assert.Error(t, LocalConfigValidator(&badId))
}
