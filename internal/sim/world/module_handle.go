package world

import (
	"overseer.ai/internal/dispatch"
	"overseer.ai/internal/sim/tasks"
)

// tameCreatureModule tames wild creatures. Validation only checks the
// creature; the food needed for the job is located at creation time and
// may have vanished by then, in which case CreateJob fails and the
// dispatcher cooldowns and moves on.
type tameCreatureModule struct {
	w *World
}

func newTameCreatureModule(w *World) *tameCreatureModule {
	return &tameCreatureModule{w: w}
}

func (m *tameCreatureModule) Descriptor() dispatch.Descriptor {
	return dispatch.Descriptor{
		ID:            "tame_creature",
		Category:      "HANDLE",
		Priority:      1,
		CacheInterval: 80,
		Cooldown:      300,
		TargetClasses: []string{ClassCreature},
	}
}

func (m *tameCreatureModule) ShouldProcessTarget(t dispatch.Target, _ dispatch.RegionID) bool {
	e := m.w.liveEntity(t)
	return e != nil && e.Kind == ClassCreature && !e.Tamed
}

func (m *tameCreatureModule) UpdateCache(region dispatch.RegionID, out *[]dispatch.Target) {
	dispatch.ScanRegion(m.w, m, region, out)
}

func (m *tameCreatureModule) ValidateJob(t dispatch.Target, a dispatch.Agent) bool {
	e := m.w.liveEntity(t)
	return e != nil && !e.Tamed
}

func (m *tameCreatureModule) CreateJob(a dispatch.Agent, t dispatch.Target) *tasks.Task {
	e := m.w.liveEntity(t)
	if e == nil {
		return nil
	}
	food := m.w.findLooseItem(e.RegionID, e.FoodItem)
	if food == nil {
		return nil
	}
	return &tasks.Task{
		TaskID:      tasks.NewID(),
		Kind:        tasks.KindTame,
		AgentID:     a.AgentID(),
		TargetID:    e.ID,
		TargetPos:   tasks.Vec3i(e.Loc),
		FoodItem:    e.FoodItem,
		CreatedTick: m.w.Now(),
	}
}

// escortCaptiveModule relocates captives to their assigned holding
// entity.
type escortCaptiveModule struct {
	w *World
}

func newEscortCaptiveModule(w *World) *escortCaptiveModule {
	return &escortCaptiveModule{w: w}
}

func (m *escortCaptiveModule) Descriptor() dispatch.Descriptor {
	return dispatch.Descriptor{
		ID:            "escort_captive",
		Category:      "HANDLE",
		Priority:      1,
		CacheInterval: 60,
		Cooldown:      200,
		TargetClasses: []string{ClassCaptive},
	}
}

func (m *escortCaptiveModule) ShouldProcessTarget(t dispatch.Target, _ dispatch.RegionID) bool {
	e := m.w.liveEntity(t)
	return e != nil && e.Kind == ClassCaptive && e.NeedsEscort
}

func (m *escortCaptiveModule) UpdateCache(region dispatch.RegionID, out *[]dispatch.Target) {
	dispatch.ScanRegion(m.w, m, region, out)
}

func (m *escortCaptiveModule) ValidateJob(t dispatch.Target, a dispatch.Agent) bool {
	e := m.w.liveEntity(t)
	if e == nil || !e.NeedsEscort {
		return false
	}
	dest := m.w.entities[e.EscortToID]
	return dest != nil && !dest.Destroyed
}

func (m *escortCaptiveModule) CreateJob(a dispatch.Agent, t dispatch.Target) *tasks.Task {
	e := m.w.liveEntity(t)
	if e == nil {
		return nil
	}
	return &tasks.Task{
		TaskID:      tasks.NewID(),
		Kind:        tasks.KindEscort,
		AgentID:     a.AgentID(),
		TargetID:    e.ID,
		TargetPos:   tasks.Vec3i(e.Loc),
		EscortToID:  e.EscortToID,
		CreatedTick: m.w.Now(),
	}
}
