package world

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync/atomic"

	"overseer.ai/internal/dispatch"
	"overseer.ai/internal/sim/capsets"
	"overseer.ai/internal/sim/tasks"
	"overseer.ai/internal/sim/tuning"
)

// World is a single-threaded authoritative simulation hosting the
// dispatch engine. All state must be accessed only from the loop
// goroutine that calls Step.
type World struct {
	cfg  Config
	tune tuning.Tuning

	logger *log.Logger

	tick atomic.Uint64

	regions     map[dispatch.RegionID]*Region
	regionOrder []dispatch.RegionID
	agents      map[string]*Agent
	entities    map[string]*Entity

	// reservations is the spatial reservation primitive: target id to
	// holding agent id. The engine only reads it (via CanReserve); all
	// writes happen here on assignment and completion.
	reservations map[string]string

	engine *dispatch.Engine
	stats  *Stats
	rng    *rand.Rand

	sinks    []dispatch.TraceSink
	statsOut func([]byte)

	nextAgentNo uint64
	nextEntNo   uint64
}

func New(cfg Config, tune tuning.Tuning, caps *capsets.Catalog, logger *log.Logger) (*World, error) {
	cfg.applyDefaults()

	w := &World{
		cfg:          cfg,
		tune:         tune,
		logger:       logger,
		regions:      map[dispatch.RegionID]*Region{},
		agents:       map[string]*Agent{},
		entities:     map[string]*Entity{},
		reservations: map[string]string{},
		stats:        NewStats(),
		rng:          rand.New(rand.NewSource(cfg.Seed)),
	}

	for rz := 0; rz < cfg.RegionsZ; rz++ {
		for rx := 0; rx < cfg.RegionsX; rx++ {
			id := dispatch.RegionID(fmt.Sprintf("R_%d_%d", rx, rz))
			w.regions[id] = &Region{
				ID:       id,
				Origin:   Vec3i{X: rx * cfg.RegionSize, Z: rz * cfg.RegionSize},
				Size:     cfg.RegionSize,
				entities: map[string]*Entity{},
			}
			w.regionOrder = append(w.regionOrder, id)
		}
	}

	w.engine = dispatch.New(engineConfig(tune), w, w, w, logger)
	w.engine.SetRand(rand.New(rand.NewSource(cfg.Seed + 1)))
	w.engine.SetTrace(w)

	categories := make([]string, 0, len(tune.Categories))
	for c := range tune.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	w.engine.Resolver().Rebuild(caps.Profiles, categories)

	if err := w.registerModules(); err != nil {
		return nil, err
	}
	if err := w.engine.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func engineConfig(t tuning.Tuning) dispatch.Config {
	cats := make(map[string]dispatch.CategoryConfig, len(t.Categories))
	for name, c := range t.Categories {
		cats[name] = dispatch.CategoryConfig{
			Priority:   c.Priority,
			Thresholds: c.BucketThresholdsSq,
		}
	}
	return dispatch.Config{
		PollBaseTicks: uint64(t.PollBaseTicks),
		MaxPollTicks:  uint64(t.MaxPollTicks),
		ReachTTLTicks: uint64(t.ReachTTLTicks),
		SpotCheckN:    t.SpotCheckN,
		Categories:    cats,
	}
}

// registerModules wires every concrete task module. Registration order
// within a category is the evaluation order and must stay fixed.
func (w *World) registerModules() error {
	regs := []struct {
		category string
		m        dispatch.Module
	}{
		{"HAUL", newHaulStockpileModule(w)},
		{"HAUL", newHaulDeliveryModule(w)},
		{"BUILD", newBuildStructureModule(w)},
		{"GROW", newHarvestPlantModule(w)},
		{"HANDLE", newTameCreatureModule(w)},
		{"HANDLE", newEscortCaptiveModule(w)},
	}
	for _, r := range regs {
		if err := w.engine.RegisterModule(r.category, r.m); err != nil {
			return err
		}
	}
	return nil
}

// Now implements dispatch.Clock.
func (w *World) Now() uint64 { return w.tick.Load() }

func (w *World) Engine() *dispatch.Engine { return w.engine }

func (w *World) StatsSnapshot() Snapshot {
	total, idle := w.countAgents()
	return w.stats.Snapshot(w.Now(), total, idle)
}

// AddTraceSink attaches an additional decision sink (trace log, index
// DB). The world itself always counts decisions into its stats.
func (w *World) AddTraceSink(s dispatch.TraceSink) {
	if s != nil {
		w.sinks = append(w.sinks, s)
	}
}

// SetStatsBroadcast installs a callback receiving a JSON stats snapshot
// every stats_every_ticks ticks (used by the debug websocket).
func (w *World) SetStatsBroadcast(fn func([]byte)) { w.statsOut = fn }

// WriteDecision implements dispatch.TraceSink: count locally, fan out.
func (w *World) WriteDecision(d dispatch.Decision) error {
	w.stats.Record(d)
	for _, s := range w.sinks {
		_ = s.WriteDecision(d)
	}
	return nil
}

// Step advances the simulation one tick: age running tasks, then let
// every idle agent ask the dispatcher for work.
func (w *World) Step() {
	now := w.tick.Load()

	for _, a := range w.sortedAgents() {
		if a.Task != nil {
			a.TaskTicks--
			if a.TaskTicks <= 0 {
				w.completeTask(a, now)
			}
		}
	}

	for _, a := range w.sortedAgents() {
		if !a.Idle() {
			continue
		}
		t := w.engine.Next(a)
		if t == nil {
			continue
		}
		w.assign(a, t)
	}

	if w.statsOut != nil && w.tune.StatsEveryTicks > 0 && now%uint64(w.tune.StatsEveryTicks) == 0 {
		if b, err := json.Marshal(w.StatsSnapshot()); err == nil {
			w.statsOut(b)
		}
	}

	w.tick.Store(now + 1)
}

func (w *World) assign(a *Agent, t *tasks.Task) {
	a.Task = t
	a.TaskTicks = w.cfg.TaskDurationTicks
	w.reservations[t.TargetID] = a.ID
	// Keep the progressive scanner's attention on where work was just
	// assigned.
	if r, ok := w.regions[a.RegionID]; ok {
		r.attentionSector = w.SectorOf(a.RegionID, a.Loc)
		r.hasAttention = true
	}
}

// completeTask applies the task's end effect and releases its
// reservation. This is deliberately the thinnest possible executor: the
// real execution state machine is outside this repo's scope.
func (w *World) completeTask(a *Agent, now uint64) {
	t := a.Task
	a.Task = nil
	delete(w.reservations, t.TargetID)

	switch t.Kind {
	case tasks.KindHaul:
		item := w.entities[t.TargetID]
		dest := w.entities[t.DestID]
		if item != nil && dest != nil && !item.Destroyed && !dest.Destroyed {
			if dest.Stored == nil {
				dest.Stored = map[string]int{}
			}
			dest.Stored[item.ItemID] += item.Count
			w.RemoveEntity(item.ID)
		}
	case tasks.KindDeliver:
		item := w.entities[t.TargetID]
		bp := w.entities[t.DestID]
		if item != nil && bp != nil && !item.Destroyed && !bp.Destroyed {
			if bp.Delivered == nil {
				bp.Delivered = map[string]int{}
			}
			bp.Delivered[item.ItemID] += item.Count
			w.RemoveEntity(item.ID)
		}
	case tasks.KindBuild:
		if bp := w.entities[t.TargetID]; bp != nil && !bp.Destroyed {
			bp.Built = true
		}
	case tasks.KindHarvest:
		if p := w.entities[t.TargetID]; p != nil && !p.Destroyed {
			w.RemoveEntity(p.ID)
			w.SpawnEntity(&Entity{Kind: ClassItem, Loc: p.Loc, ItemID: "PRODUCE", Count: 1})
		}
	case tasks.KindTame:
		if c := w.entities[t.TargetID]; c != nil && !c.Destroyed {
			c.Tamed = true
		}
	case tasks.KindEscort:
		captive := w.entities[t.TargetID]
		dest := w.entities[t.EscortToID]
		if captive != nil && !captive.Destroyed {
			captive.NeedsEscort = false
			if dest != nil {
				w.MoveEntity(captive.ID, dest.Loc)
			}
		}
	}
	w.stats.RecordCompletion(string(t.Kind), now)
}

func (w *World) sortedAgents() []*Agent {
	ids := make([]string, 0, len(w.agents))
	for id := range w.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Agent, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.agents[id])
	}
	return out
}

func (w *World) countAgents() (total, idle int) {
	for _, a := range w.agents {
		total++
		if a.Idle() {
			idle++
		}
	}
	return
}

// Reload resets all engine caches, cooldowns and reservations, as after
// a world restore.
func (w *World) Reload() {
	w.engine.ResetAllCaches()
	w.reservations = map[string]string{}
}
