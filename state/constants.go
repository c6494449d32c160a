package state

import "time"

var (
	// MaxPrefixEntries is the default capacity of the published prefix pool,
	// shared between on-mesh prefix and external route entries.
	MaxPrefixEntries = 3

	// Desired number of equivalent entries kept in the network data per
	// category. A local entry is withheld or withdrawn once this many other
	// routers already advertise an equivalent one.
	DesiredAnycastDnsSrpServices = 8
	DesiredUnicastDnsSrpServices = 2
	DesiredOnMeshPrefixes        = 3
	DesiredExternalRoutes        = 10

	// EvalFallbackDelay is the period of the fallback re-evaluation tick. It
	// covers races where a remote network data change notification is missed,
	// and bounds how often a failed dataset mutation is retried.
	EvalFallbackDelay = time.Second * 30

	// MutationDampTTL suppresses event-triggered retries of an entry whose
	// dataset mutation recently failed. Damped entries are still retried by
	// the fallback tick.
	MutationDampTTL = EvalFallbackDelay

	DefaultPort = 57421
)
