package world

import (
	"overseer.ai/internal/dispatch"
	"overseer.ai/internal/sim/tasks"
)

// buildStructureModule dispatches builds for blueprints whose materials
// are fully delivered. It keeps a secondary cache of missing-material
// tallies per region, recomputed together with the candidate list; the
// region's stale tally is cleared before repopulating so an UpdateCache
// never mixes old and new counts.
type buildStructureModule struct {
	w       *World
	tallies map[dispatch.RegionID]map[string]int // blueprint id -> missing units
}

func newBuildStructureModule(w *World) *buildStructureModule {
	return &buildStructureModule{
		w:       w,
		tallies: map[dispatch.RegionID]map[string]int{},
	}
}

func (m *buildStructureModule) Descriptor() dispatch.Descriptor {
	return dispatch.Descriptor{
		ID:            "build_structure",
		Category:      "BUILD",
		Priority:      3,
		CacheInterval: 60,
		Cooldown:      200,
		TargetClasses: []string{ClassBlueprint},
	}
}

func (m *buildStructureModule) ShouldProcessTarget(t dispatch.Target, _ dispatch.RegionID) bool {
	e := m.w.liveEntity(t)
	return e != nil && e.Kind == ClassBlueprint && !e.Built
}

func (m *buildStructureModule) UpdateCache(region dispatch.RegionID, out *[]dispatch.Target) {
	delete(m.tallies, region)
	tally := map[string]int{}
	for _, t := range m.w.TargetsIn(region, ClassBlueprint) {
		if !m.ShouldProcessTarget(t, region) {
			continue
		}
		bp := m.w.liveEntity(t)
		missing := 0
		for _, n := range bp.MissingMaterials() {
			missing += n
		}
		tally[bp.ID] = missing
		if missing == 0 {
			*out = append(*out, t)
		}
	}
	m.tallies[region] = tally
}

// MissingUnits exposes the secondary cache (0 means ready to build;
// ok=false means the region tally has not been built yet).
func (m *buildStructureModule) MissingUnits(region dispatch.RegionID, blueprintID string) (int, bool) {
	tally, ok := m.tallies[region]
	if !ok {
		return 0, false
	}
	n, ok := tally[blueprintID]
	return n, ok
}

func (m *buildStructureModule) ValidateJob(t dispatch.Target, a dispatch.Agent) bool {
	bp := m.w.liveEntity(t)
	return bp != nil && !bp.Built && len(bp.MissingMaterials()) == 0
}

func (m *buildStructureModule) CreateJob(a dispatch.Agent, t dispatch.Target) *tasks.Task {
	bp := m.w.liveEntity(t)
	if bp == nil {
		return nil
	}
	return &tasks.Task{
		TaskID:      tasks.NewID(),
		Kind:        tasks.KindBuild,
		AgentID:     a.AgentID(),
		TargetID:    bp.ID,
		TargetPos:   tasks.Vec3i(bp.Loc),
		CreatedTick: m.w.Now(),
	}
}
