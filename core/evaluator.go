package core

import (
	"slices"

	"github.com/thistlemesh/thistle/state"
)

// Decision is the outcome of evaluating one entry against a snapshot.
type Decision uint8

const (
	DecisionNone Decision = iota
	DecisionAdd
	DecisionRemove
)

func (d Decision) String() string {
	switch d {
	case DecisionAdd:
		return "add"
	case DecisionRemove:
		return "remove"
	}
	return "none"
}

// ThresholdEvaluator decides, per entry, whether this router's copy should
// currently be present in the shared network data. The rule is the same for
// service and prefix entries: add a Pending entry while fewer than the
// desired number of other routers advertise an equivalent one, and withdraw
// an Added entry once the desired number is reached elsewhere, unless this
// router wins the tie-break among contributors.
type ThresholdEvaluator struct {
	id     state.RouterId
	limits state.LimitsCfg
}

func NewThresholdEvaluator(id state.RouterId, limits state.LimitsCfg) *ThresholdEvaluator {
	return &ThresholdEvaluator{id: id, limits: limits}
}

func (e *ThresholdEvaluator) EvaluatePrefix(snap state.Snapshot, entry *PrefixEntry) Decision {
	contributors := snap.PrefixContributors(entry.Prefix, entry.Kind)
	return e.decide(contributors, entry.State, e.limits.DesiredFor(entry.Kind))
}

func (e *ThresholdEvaluator) EvaluateService(snap state.Snapshot, entry *ServiceEntry) Decision {
	contributors := snap.ServiceContributors(entry.Service)
	return e.decide(contributors, entry.State, e.limits.DesiredForService(entry.Service.Type))
}

func (e *ThresholdEvaluator) decide(contributors []state.RouterId, st EntryState, desired int) Decision {
	others := 0
	for _, id := range contributors {
		if id != e.id {
			others++
		}
	}
	switch st {
	case EntryStatePending:
		if others < desired {
			return DecisionAdd
		}
	case EntryStateAdded:
		if others >= desired && !e.winsTieBreak(contributors, desired) {
			return DecisionRemove
		}
	}
	return DecisionNone
}

// winsTieBreak ranks this router among all contributors of the equivalent
// advertisement (itself included) by their stable identifiers. The routers
// ranking within the desired count keep their entries, so when redundancy
// exceeds the threshold the excess contributors withdraw deterministically
// and never all at once.
func (e *ThresholdEvaluator) winsTieBreak(contributors []state.RouterId, desired int) bool {
	ids := slices.Clone(contributors)
	if !slices.Contains(ids, e.id) {
		ids = append(ids, e.id)
	}
	slices.Sort(ids)
	rank := slices.Index(ids, e.id)
	return rank < desired
}
