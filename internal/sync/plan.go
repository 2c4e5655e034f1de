package sync

import (
	"github.com/stacklok/gem-sources/internal/sources"
)

// Plan is the set of live-state writes needed to match a registry
type Plan struct {
	// ToAdd lists active sources missing from the live state, sorted
	ToAdd []string
	// ToRemove lists inactive sources present in the live state, sorted
	ToRemove []string
}

// Empty reports whether the plan has nothing to apply
func (p *Plan) Empty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

// ComputePlan diffs the registry against a snapshot of live sources
func ComputePlan(reg *sources.Registry, live []string) *Plan {
	liveSet := make(map[string]struct{}, len(live))
	for _, url := range live {
		liveSet[url] = struct{}{}
	}

	plan := &Plan{ToAdd: []string{}, ToRemove: []string{}}
	for _, url := range reg.Active() {
		if _, ok := liveSet[url]; !ok {
			plan.ToAdd = append(plan.ToAdd, url)
		}
	}
	for _, url := range reg.Inactive() {
		if _, ok := liveSet[url]; ok {
			plan.ToRemove = append(plan.ToRemove, url)
		}
	}
	return plan
}
