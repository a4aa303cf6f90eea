package dispatch

import "overseer.ai/internal/sim/tasks"

// Descriptor is the immutable identity and tuning of one task module.
type Descriptor struct {
	// ID is unique across all modules, all categories.
	ID string
	// Category is the task family the module belongs to. Modules within
	// a category are tried in registration order.
	Category string
	// Priority orders categories relative to each other and drives the
	// polling cadence (higher priority categories are polled more often).
	// It does NOT reorder modules within a category.
	Priority float64
	// CacheInterval is how many ticks a region cache entry built for
	// this module stays fresh.
	CacheInterval uint64
	// Cooldown is how many ticks an agent is suppressed from retrying
	// this module after it produced nothing.
	Cooldown uint64
	// TargetClasses are the entity classes the module scans for.
	TargetClasses []string
	// Progressive selects per-sector incremental rebuilds instead of a
	// full region scan on every cache expiry. Use for modules whose full
	// scan is too expensive for one tick.
	Progressive bool
}

// Module is a strategy unit for one concrete task type.
//
// ShouldProcessTarget is the cheap candidacy filter used while building
// the region cache; it must be side-effect-free and must not assume the
// target is still valid when it is consumed later.
//
// UpdateCache populates the candidate list for a region on a full
// rebuild. Most modules delegate to ScanRegion; modules that keep
// derived per-region state (secondary caches) must clear the stale state
// for this region before repopulating.
//
// ValidateJob is the authoritative, possibly expensive check at
// selection time. It always runs, even for cached candidates: cache
// freshness only bounds candidacy, never validity.
//
// CreateJob constructs the task. It may return nil if a last-moment
// precondition fails; the dispatcher then cooldowns and moves on.
type Module interface {
	Descriptor() Descriptor
	ShouldProcessTarget(t Target, region RegionID) bool
	UpdateCache(region RegionID, out *[]Target)
	ValidateJob(t Target, a Agent) bool
	CreateJob(a Agent, t Target) *tasks.Task
}

// ScanRegion is the default UpdateCache body: enumerate every class the
// module cares about and keep what passes ShouldProcessTarget.
func ScanRegion(idx SpatialIndex, m Module, region RegionID, out *[]Target) {
	for _, class := range m.Descriptor().TargetClasses {
		for _, t := range idx.TargetsIn(region, class) {
			if m.ShouldProcessTarget(t, region) {
				*out = append(*out, t)
			}
		}
	}
}
