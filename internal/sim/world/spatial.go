package world

import (
	"fmt"
	"sort"

	"overseer.ai/internal/dispatch"
)

// The world doubles as the engine's spatial index and its
// reachability/reservation oracle.

// TargetsIn implements dispatch.SpatialIndex. Destroyed entities are
// filtered here; everything else (claimed, moved, emptied) is left for
// validation, matching a live index that can lag the sim by a beat.
func (w *World) TargetsIn(region dispatch.RegionID, class string) []dispatch.Target {
	r, ok := w.regions[region]
	if !ok {
		return nil
	}
	var out []dispatch.Target
	for _, e := range r.entities {
		if e.Kind == class && !e.Destroyed {
			out = append(out, e)
		}
	}
	sortTargets(out)
	return out
}

// sortTargets pins enumeration order so a seeded engine behaves the
// same across runs; map iteration order would leak into the selector's
// shuffle otherwise.
func sortTargets(ts []dispatch.Target) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].TargetID() < ts[j].TargetID() })
}

func (w *World) sectorsPerSide(r *Region) int {
	size := w.tune.SectorSize
	if size <= 0 || size >= r.Size {
		return 1
	}
	return (r.Size + size - 1) / size
}

func (w *World) SectorCount(region dispatch.RegionID) int {
	r, ok := w.regions[region]
	if !ok {
		return 0
	}
	n := w.sectorsPerSide(r)
	return n * n
}

func (w *World) SectorOf(region dispatch.RegionID, pos Vec3i) int {
	r, ok := w.regions[region]
	if !ok {
		return 0
	}
	per := w.sectorsPerSide(r)
	if per == 1 {
		return 0
	}
	sx := clamp(pos.X-r.Origin.X, 0, r.Size-1) / w.tune.SectorSize
	sz := clamp(pos.Z-r.Origin.Z, 0, r.Size-1) / w.tune.SectorSize
	return sz*per + sx
}

func (w *World) TargetsInSector(region dispatch.RegionID, sector int, class string) []dispatch.Target {
	r, ok := w.regions[region]
	if !ok {
		return nil
	}
	var out []dispatch.Target
	for _, e := range r.entities {
		if e.Kind == class && !e.Destroyed && w.SectorOf(region, e.Loc) == sector {
			out = append(out, e)
		}
	}
	sortTargets(out)
	return out
}

func (w *World) AttentionSector(region dispatch.RegionID) (int, bool) {
	r, ok := w.regions[region]
	if !ok || !r.hasAttention {
		return 0, false
	}
	return r.attentionSector, true
}

// CanReach implements dispatch.Oracle. The real pathfinder is an
// external collaborator; this stub is same-region plus a blocked flag,
// which is enough to exercise the caching around it.
func (w *World) CanReach(a dispatch.Agent, t dispatch.Target) bool {
	region, ok := a.Region()
	if !ok {
		return false
	}
	e, live := w.entities[t.TargetID()]
	if !live || e.Destroyed || e.Blocked {
		return false
	}
	return e.RegionID == region
}

// CanReserve implements dispatch.Oracle: a read of the reservation
// table. The engine never writes reservations; the world does, on
// assignment.
func (w *World) CanReserve(a dispatch.Agent, t dispatch.Target) bool {
	holder, held := w.reservations[t.TargetID()]
	return !held || holder == a.AgentID()
}

func (w *World) regionAt(pos Vec3i) *Region {
	for _, id := range w.regionOrder {
		if r := w.regions[id]; r.Contains(pos) {
			return r
		}
	}
	return nil
}

// SpawnAgent places a new agent. Pos must fall inside a region.
func (w *World) SpawnAgent(name, typeID string, pos Vec3i) *Agent {
	w.nextAgentNo++
	a := &Agent{
		ID:   fmt.Sprintf("A_%03d", w.nextAgentNo),
		Name: name,
		Type: typeID,
		Loc:  pos,
	}
	if r := w.regionAt(pos); r != nil {
		a.RegionID = r.ID
	}
	w.agents[a.ID] = a
	return a
}

// SpawnEntity registers a target entity, assigning an id and region if
// unset.
func (w *World) SpawnEntity(e *Entity) *Entity {
	if e.ID == "" {
		w.nextEntNo++
		e.ID = fmt.Sprintf("E_%04d", w.nextEntNo)
	}
	if e.RegionID == "" {
		if r := w.regionAt(e.Loc); r != nil {
			e.RegionID = r.ID
		}
	}
	w.entities[e.ID] = e
	if r, ok := w.regions[e.RegionID]; ok {
		r.entities[e.ID] = e
	}
	return e
}

func (w *World) Entity(id string) *Entity { return w.entities[id] }
func (w *World) AgentByID(id string) *Agent { return w.agents[id] }

func (w *World) RemoveEntity(id string) {
	e, ok := w.entities[id]
	if !ok {
		return
	}
	e.Destroyed = true
	if r, ok := w.regions[e.RegionID]; ok {
		delete(r.entities, id)
	}
	delete(w.entities, id)
	delete(w.reservations, id)
}

// MoveEntity relocates an entity, switching region membership when the
// new position lands in a different region.
func (w *World) MoveEntity(id string, pos Vec3i) {
	e, ok := w.entities[id]
	if !ok {
		return
	}
	e.Loc = pos
	nr := w.regionAt(pos)
	if nr == nil || nr.ID == e.RegionID {
		return
	}
	if old, ok := w.regions[e.RegionID]; ok {
		delete(old.entities, id)
	}
	e.RegionID = nr.ID
	nr.entities[id] = e
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
