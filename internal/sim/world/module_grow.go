package world

import (
	"overseer.ai/internal/dispatch"
	"overseer.ai/internal/sim/tasks"
)

// harvestPlantModule collects mature plants.
type harvestPlantModule struct {
	w *World
}

func newHarvestPlantModule(w *World) *harvestPlantModule {
	return &harvestPlantModule{w: w}
}

func (m *harvestPlantModule) Descriptor() dispatch.Descriptor {
	return dispatch.Descriptor{
		ID:            "harvest_plant",
		Category:      "GROW",
		Priority:      2,
		CacheInterval: 50,
		Cooldown:      150,
		TargetClasses: []string{ClassPlant},
	}
}

func (m *harvestPlantModule) ShouldProcessTarget(t dispatch.Target, _ dispatch.RegionID) bool {
	e := m.w.liveEntity(t)
	return e != nil && e.Kind == ClassPlant && e.Mature
}

func (m *harvestPlantModule) UpdateCache(region dispatch.RegionID, out *[]dispatch.Target) {
	dispatch.ScanRegion(m.w, m, region, out)
}

func (m *harvestPlantModule) ValidateJob(t dispatch.Target, a dispatch.Agent) bool {
	e := m.w.liveEntity(t)
	return e != nil && e.Mature
}

func (m *harvestPlantModule) CreateJob(a dispatch.Agent, t dispatch.Target) *tasks.Task {
	e := m.w.liveEntity(t)
	if e == nil {
		return nil
	}
	return &tasks.Task{
		TaskID:      tasks.NewID(),
		Kind:        tasks.KindHarvest,
		AgentID:     a.AgentID(),
		TargetID:    e.ID,
		TargetPos:   tasks.Vec3i(e.Loc),
		CreatedTick: m.w.Now(),
	}
}
