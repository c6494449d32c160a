package core

import (
	"net/netip"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thistlemesh/thistle/state"
)

var prefixCmp = cmp.Comparer(func(a, b netip.Prefix) bool { return a == b })
var addrCmp = cmp.Comparer(func(a, b netip.Addr) bool { return a == b })

func sortedPrefixAdverts(snap state.Snapshot) []state.PrefixAdvert {
	advs := snap.Prefixes
	sort.Slice(advs, func(i, j int) bool {
		if advs[i].Router != advs[j].Router {
			return advs[i].Router < advs[j].Router
		}
		return advs[i].Prefix.String() < advs[j].Prefix.String()
	})
	return advs
}

func TestLocalDatasetPrefixes(t *testing.T) {
	ds := NewLocalDataset()
	changes := 0
	ds.OnChange(func() { changes++ })

	p1 := netip.MustParsePrefix("fd00:1::/64")
	p2 := netip.MustParsePrefix("fd00:2::/64")

	require.NoError(t, ds.AddPrefix(state.PrefixAdvert{Router: "a", Prefix: p1, Kind: state.KindOnMeshPrefix}))
	require.NoError(t, ds.AddPrefix(state.PrefixAdvert{Router: "b", Prefix: p1, Kind: state.KindExternalRoute}))
	require.NoError(t, ds.AddPrefix(state.PrefixAdvert{Router: "a", Prefix: p2, Kind: state.KindExternalRoute}))
	assert.Equal(t, 3, changes)

	want := []state.PrefixAdvert{
		{Router: "a", Prefix: p1, Kind: state.KindOnMeshPrefix},
		{Router: "a", Prefix: p2, Kind: state.KindExternalRoute},
		{Router: "b", Prefix: p1, Kind: state.KindExternalRoute},
	}
	if diff := cmp.Diff(want, sortedPrefixAdverts(ds.Snapshot()), prefixCmp, addrCmp); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	// re-adding replaces the router's advert instead of duplicating it
	require.NoError(t, ds.AddPrefix(state.PrefixAdvert{Router: "a", Prefix: p1, Kind: state.KindOnMeshPrefix, Slaac: true}))
	snap := ds.Snapshot()
	assert.Len(t, snap.Prefixes, 3)
	assert.Len(t, snap.PrefixContributors(p1, state.KindOnMeshPrefix), 1)

	require.NoError(t, ds.RemovePrefix("a", p1))
	assert.Empty(t, ds.Snapshot().PrefixContributors(p1, state.KindOnMeshPrefix))

	// removal is idempotent and silent when nothing changes
	before := changes
	require.NoError(t, ds.RemovePrefix("a", p1))
	require.NoError(t, ds.RemovePrefix("a", netip.MustParsePrefix("fd00:9::/64")))
	assert.Equal(t, before, changes)
}

func TestLocalDatasetServices(t *testing.T) {
	ds := NewLocalDataset()
	changes := 0
	ds.OnChange(func() { changes++ })

	require.NoError(t, ds.AddService(state.ServiceAdvert{Router: "a", Service: state.DnsSrpService{Type: state.ServiceAnycast, SequenceNumber: 1}}))
	require.NoError(t, ds.AddService(state.ServiceAdvert{Router: "b", Service: state.DnsSrpService{Type: state.ServiceUnicast, Port: 53}}))

	// one service advert per router
	require.NoError(t, ds.AddService(state.ServiceAdvert{Router: "a", Service: state.DnsSrpService{Type: state.ServiceUnicast, Port: 99}}))
	snap := ds.Snapshot()
	assert.Len(t, snap.Services, 2)
	assert.Len(t, snap.ServiceContributors(state.DnsSrpService{Type: state.ServiceUnicast}), 2)

	require.NoError(t, ds.RemoveService("a"))
	assert.Len(t, ds.Snapshot().Services, 1)

	before := changes
	require.NoError(t, ds.RemoveService("a"))
	assert.Equal(t, before, changes)
}

// The publisher works against LocalDataset the same way it does against the
// scripted mock.
func TestPublisherAgainstLocalDataset(t *testing.T) {
	ds := NewLocalDataset()
	p, s, dispatch := newTestPublisher(t, "zed", ds)

	prefix := netip.MustParsePrefix("2001:db8::/64")
	require.Equal(t, state.StatusOk, p.PublishOnMeshPrefix(onMesh("2001:db8::/64")))
	drain(t, s, dispatch)
	require.True(t, p.IsPrefixAdded(prefix))

	for _, r := range []state.RouterId{"r1", "r2", "r3"} {
		require.NoError(t, ds.AddPrefix(state.PrefixAdvert{Router: r, Prefix: prefix, Kind: state.KindOnMeshPrefix}))
	}
	drain(t, s, dispatch)

	assert.False(t, p.IsPrefixAdded(prefix))
	assert.Len(t, ds.Snapshot().PrefixContributors(prefix, state.KindOnMeshPrefix), 3)
}
