package world

import (
	"sort"

	"overseer.ai/internal/dispatch"
	"overseer.ai/internal/sim/tasks"
)

// liveEntity resolves a (possibly stale) cached target against current
// world state. Returns nil for unknown or destroyed entities.
func (w *World) liveEntity(t dispatch.Target) *Entity {
	e, ok := w.entities[t.TargetID()]
	if !ok || e.Destroyed {
		return nil
	}
	return e
}

// findLooseItem returns the unreserved loose item with the given item id
// in the region, lowest entity id first so selection is deterministic.
func (w *World) findLooseItem(region dispatch.RegionID, itemID string) *Entity {
	r, ok := w.regions[region]
	if !ok {
		return nil
	}
	var best *Entity
	for _, e := range r.entities {
		if e.Kind != ClassItem || e.Destroyed || e.Count <= 0 {
			continue
		}
		if itemID != "" && e.ItemID != itemID {
			continue
		}
		if _, held := w.reservations[e.ID]; held {
			continue
		}
		if best == nil || e.ID < best.ID {
			best = e
		}
	}
	return best
}

// findStockpileFor returns a stockpile in the region that accepts the
// item and has space, lowest entity id first.
func (w *World) findStockpileFor(region dispatch.RegionID, itemID string) *Entity {
	r, ok := w.regions[region]
	if !ok {
		return nil
	}
	var best *Entity
	for _, e := range r.entities {
		if e.Kind != ClassStockpile || e.Destroyed {
			continue
		}
		if !e.StockpileAccepts(itemID) || e.StockpileSpace() <= 0 {
			continue
		}
		if best == nil || e.ID < best.ID {
			best = e
		}
	}
	return best
}

// haulStockpileModule moves loose items into stockpiles. It is the one
// module with a progressive region cache: loose items are the most
// numerous and churny targets, so full rescans every interval would be
// the worst per-tick spike in the system.
type haulStockpileModule struct {
	w *World
}

func newHaulStockpileModule(w *World) *haulStockpileModule {
	return &haulStockpileModule{w: w}
}

func (m *haulStockpileModule) Descriptor() dispatch.Descriptor {
	return dispatch.Descriptor{
		ID:            "haul_stockpile",
		Category:      "HAUL",
		Priority:      4,
		CacheInterval: 40,
		Cooldown:      120,
		TargetClasses: []string{ClassItem},
		Progressive:   true,
	}
}

func (m *haulStockpileModule) ShouldProcessTarget(t dispatch.Target, _ dispatch.RegionID) bool {
	e := m.w.liveEntity(t)
	return e != nil && e.Kind == ClassItem && e.Count > 0
}

func (m *haulStockpileModule) UpdateCache(region dispatch.RegionID, out *[]dispatch.Target) {
	dispatch.ScanRegion(m.w, m, region, out)
}

func (m *haulStockpileModule) ValidateJob(t dispatch.Target, a dispatch.Agent) bool {
	e := m.w.liveEntity(t)
	if e == nil || e.Count <= 0 {
		return false
	}
	return m.w.findStockpileFor(e.RegionID, e.ItemID) != nil
}

func (m *haulStockpileModule) CreateJob(a dispatch.Agent, t dispatch.Target) *tasks.Task {
	e := m.w.liveEntity(t)
	if e == nil {
		return nil
	}
	dest := m.w.findStockpileFor(e.RegionID, e.ItemID)
	if dest == nil {
		return nil
	}
	return &tasks.Task{
		TaskID:      tasks.NewID(),
		Kind:        tasks.KindHaul,
		AgentID:     a.AgentID(),
		TargetID:    e.ID,
		TargetPos:   tasks.Vec3i(e.Loc),
		ItemID:      e.ItemID,
		Count:       e.Count,
		DestID:      dest.ID,
		DestPos:     tasks.Vec3i(dest.Loc),
		CreatedTick: m.w.Now(),
	}
}

// haulDeliveryModule brings missing materials to blueprint sites. The
// cached candidates are the blueprints; the item to carry is located at
// creation time since any loose item can satisfy the need.
type haulDeliveryModule struct {
	w *World
}

func newHaulDeliveryModule(w *World) *haulDeliveryModule {
	return &haulDeliveryModule{w: w}
}

func (m *haulDeliveryModule) Descriptor() dispatch.Descriptor {
	return dispatch.Descriptor{
		ID:            "haul_delivery",
		Category:      "HAUL",
		Priority:      4,
		CacheInterval: 30,
		Cooldown:      100,
		TargetClasses: []string{ClassBlueprint},
	}
}

func (m *haulDeliveryModule) ShouldProcessTarget(t dispatch.Target, _ dispatch.RegionID) bool {
	e := m.w.liveEntity(t)
	return e != nil && e.Kind == ClassBlueprint && !e.Built && len(e.MissingMaterials()) > 0
}

func (m *haulDeliveryModule) UpdateCache(region dispatch.RegionID, out *[]dispatch.Target) {
	dispatch.ScanRegion(m.w, m, region, out)
}

func (m *haulDeliveryModule) ValidateJob(t dispatch.Target, a dispatch.Agent) bool {
	bp := m.w.liveEntity(t)
	if bp == nil || bp.Built {
		return false
	}
	return m.findMissingItem(bp) != nil
}

func (m *haulDeliveryModule) CreateJob(a dispatch.Agent, t dispatch.Target) *tasks.Task {
	bp := m.w.liveEntity(t)
	if bp == nil {
		return nil
	}
	item := m.findMissingItem(bp)
	if item == nil {
		return nil
	}
	return &tasks.Task{
		TaskID:      tasks.NewID(),
		Kind:        tasks.KindDeliver,
		AgentID:     a.AgentID(),
		TargetID:    item.ID,
		TargetPos:   tasks.Vec3i(item.Loc),
		ItemID:      item.ItemID,
		Count:       item.Count,
		DestID:      bp.ID,
		DestPos:     tasks.Vec3i(bp.Loc),
		CreatedTick: m.w.Now(),
	}
}

func (m *haulDeliveryModule) findMissingItem(bp *Entity) *Entity {
	missing := bp.MissingMaterials()
	if len(missing) == 0 {
		return nil
	}
	mats := make([]string, 0, len(missing))
	for mat := range missing {
		mats = append(mats, mat)
	}
	sort.Strings(mats)
	for _, mat := range mats {
		if item := m.w.findLooseItem(bp.RegionID, mat); item != nil {
			return item
		}
	}
	return nil
}
