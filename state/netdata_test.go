package state

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotPrefixContributors(t *testing.T) {
	p1 := netip.MustParsePrefix("fd00:1::/64")
	p2 := netip.MustParsePrefix("fd00:2::/64")
	snap := Snapshot{
		Prefixes: []PrefixAdvert{
			{Router: "a", Prefix: p1, Kind: KindOnMeshPrefix},
			{Router: "b", Prefix: p1, Kind: KindOnMeshPrefix},
			{Router: "b", Prefix: p1, Kind: KindExternalRoute},
			{Router: "c", Prefix: p2, Kind: KindOnMeshPrefix},
			// duplicate advert from the same router counts once
			{Router: "a", Prefix: p1, Kind: KindOnMeshPrefix},
		},
	}

	assert.ElementsMatch(t, []RouterId{"a", "b"}, snap.PrefixContributors(p1, KindOnMeshPrefix))
	assert.ElementsMatch(t, []RouterId{"b"}, snap.PrefixContributors(p1, KindExternalRoute))
	assert.Empty(t, snap.PrefixContributors(p2, KindExternalRoute))
}

func TestSnapshotServiceContributors(t *testing.T) {
	snap := Snapshot{
		Services: []ServiceAdvert{
			{Router: "a", Service: DnsSrpService{Type: ServiceAnycast, SequenceNumber: 1}},
			{Router: "b", Service: DnsSrpService{Type: ServiceAnycast, SequenceNumber: 2}},
			{Router: "c", Service: DnsSrpService{Type: ServiceUnicast, Address: netip.MustParseAddr("fd00::1"), Port: 53}},
			{Router: "d", Service: DnsSrpService{Type: ServiceUnicast, Port: 99, MeshLocalEid: true}},
		},
	}

	assert.ElementsMatch(t, []RouterId{"a"},
		snap.ServiceContributors(DnsSrpService{Type: ServiceAnycast, SequenceNumber: 1}))
	assert.Empty(t, snap.ServiceContributors(DnsSrpService{Type: ServiceAnycast, SequenceNumber: 3}))
	assert.ElementsMatch(t, []RouterId{"c", "d"},
		snap.ServiceContributors(DnsSrpService{Type: ServiceUnicast, Port: 1}))
}

func TestRoutePreferenceText(t *testing.T) {
	for _, pref := range []RoutePreference{RoutePreferenceLow, RoutePreferenceMedium, RoutePreferenceHigh} {
		text, err := pref.MarshalText()
		require.NoError(t, err)
		var back RoutePreference
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, pref, back)
	}

	var pref RoutePreference
	require.NoError(t, pref.UnmarshalText([]byte("")))
	assert.Equal(t, RoutePreferenceMedium, pref)

	assert.Error(t, pref.UnmarshalText([]byte("urgent")))
	_, err := RoutePreference(7).MarshalText()
	assert.Error(t, err)
}
