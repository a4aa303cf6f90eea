package dispatch

import (
	"fmt"
	"log"
	"math/rand"
	"sort"

	"overseer.ai/internal/sim/tasks"
)

// CategoryConfig carries the per-category tuning the engine needs:
// nominal priority (drives polling cadence and cross-category order) and
// the ascending squared-distance thresholds for the bucketing selector.
type CategoryConfig struct {
	Priority   float64
	Thresholds []int
}

type Config struct {
	// PollBaseTicks sets the cadence formula: a category with priority p
	// is polled every PollBaseTicks/p ticks, clamped to
	// [1, MaxPollTicks]. The formula is a tunable, not a contract.
	PollBaseTicks uint64
	MaxPollTicks  uint64

	// ReachTTLTicks bounds reachability memoization; must be strictly
	// shorter than every registered module's cache interval.
	ReachTTLTicks uint64

	// SpotCheckN staggers revalidation of progressive cache entries:
	// roughly 1 in N entries are rechecked per refresh cycle.
	SpotCheckN int

	Categories map[string]CategoryConfig
}

func (c *Config) applyDefaults() {
	if c.PollBaseTicks == 0 {
		c.PollBaseTicks = 60
	}
	if c.MaxPollTicks == 0 {
		c.MaxPollTicks = 600
	}
	if c.ReachTTLTicks == 0 {
		c.ReachTTLTicks = 10
	}
	if c.SpotCheckN == 0 {
		c.SpotCheckN = 16
	}
	if c.Categories == nil {
		c.Categories = map[string]CategoryConfig{}
	}
}

type pollKey struct {
	AgentID  string
	Category string
}

// Engine is the unified dispatcher plus all process-wide dispatch state
// (region cache, reachability cache, cooldowns, polling gates). One
// engine per simulation; state is reset wholesale on world reload.
//
// All methods must be called from the simulation loop goroutine. A host
// that parallelizes across agents must serialize calls per region.
type Engine struct {
	cfg    Config
	clock  Clock
	index  SpatialIndex
	oracle Oracle
	logger *log.Logger
	trace  TraceSink
	rng    *rand.Rand

	registry  *Registry
	resolver  *CapabilityResolver
	regions   *RegionCache
	reach     *ReachCache
	cooldowns *CooldownTracker

	nextPoll map[pollKey]uint64
	catOrder []string
}

func New(cfg Config, clock Clock, index SpatialIndex, oracle Oracle, logger *log.Logger) *Engine {
	cfg.applyDefaults()
	e := &Engine{
		cfg:       cfg,
		clock:     clock,
		index:     index,
		oracle:    oracle,
		logger:    logger,
		rng:       rand.New(rand.NewSource(int64(cfg.PollBaseTicks))),
		registry:  NewRegistry(),
		resolver:  NewCapabilityResolver(logger),
		regions:   NewRegionCache(index, cfg.SpotCheckN),
		reach:     NewReachCache(cfg.ReachTTLTicks),
		cooldowns: NewCooldownTracker(),
		nextPoll:  map[pollKey]uint64{},
	}
	return e
}

// SetRand injects the random source used for in-bucket tie-breaking.
// Production uses any seed; tests inject a fixed one for reproducible
// selection order.
func (e *Engine) SetRand(r *rand.Rand) { e.rng = r }

// SetTrace attaches an optional per-decision trace sink.
func (e *Engine) SetTrace(t TraceSink) { e.trace = t }

// Resolver exposes the capability resolver so the host can rebuild it
// when the declarative capability source changes.
func (e *Engine) Resolver() *CapabilityResolver { return e.resolver }

// RegisterModule appends a module to its category's evaluation list.
// Called once per module at startup; order of calls is the contract.
func (e *Engine) RegisterModule(category string, m Module) error {
	desc := m.Descriptor()
	if desc.CacheInterval != 0 && e.cfg.ReachTTLTicks >= desc.CacheInterval {
		return fmt.Errorf("dispatch: module %s cache interval %d must exceed reach TTL %d", desc.ID, desc.CacheInterval, e.cfg.ReachTTLTicks)
	}
	if err := e.registry.Register(category, m); err != nil {
		return err
	}
	e.catOrder = nil // recompute on next Next
	return nil
}

// Validate is the startup integrity check; call after all modules are
// registered, before the first tick.
func (e *Engine) Validate() error {
	return e.registry.Validate()
}

// Descriptors lists every registered module, for index/introspection.
func (e *Engine) Descriptors() []Descriptor { return e.registry.Descriptors() }

// Next tries the agent's categories in descending priority order and
// returns the first task produced, or nil.
func (e *Engine) Next(a Agent) *tasks.Task {
	for _, cat := range e.categoryOrder() {
		if t := e.Dispatch(a, cat); t != nil {
			return t
		}
	}
	return nil
}

// Dispatch runs one decision for (agent, category). It never returns an
// error and never panics: module failures are contained, logged and
// traded for "no task this tick". Safe to call every tick; the polling
// gate keeps the steady-state cost near zero.
func (e *Engine) Dispatch(a Agent, category string) *tasks.Task {
	region, ok := a.Region()
	if !ok {
		return nil
	}
	if !e.resolver.Allowed(a.TypeID(), category) {
		return nil
	}

	now := e.clock.Now()
	pk := pollKey{a.AgentID(), category}
	if next, gated := e.nextPoll[pk]; gated && now < next {
		return nil
	}
	e.nextPoll[pk] = now + e.pollInterval(e.cfg.Categories[category].Priority)

	thresholds := e.cfg.Categories[category].Thresholds
	for _, m := range e.registry.Modules(category) {
		desc := m.Descriptor()
		if e.cooldowns.IsOnCooldown(a.AgentID(), desc.ID, now) {
			continue
		}
		if task := e.tryModule(a, region, category, m, desc, thresholds, now); task != nil {
			e.cooldowns.Reset(a.AgentID(), desc.ID)
			return task
		}
		e.cooldowns.OnFailure(a.AgentID(), desc.ID, now, desc.Cooldown)
	}
	return nil
}

// tryModule runs one module's discovery/validation/creation pipeline.
// Any panic inside a module hook is contained here so a broken module
// cannot halt the dispatcher or starve its siblings.
func (e *Engine) tryModule(a Agent, region RegionID, category string, m Module, desc Descriptor, thresholds []int, now uint64) (task *tasks.Task) {
	defer func() {
		if r := recover(); r != nil {
			task = nil
			if e.logger != nil {
				e.logger.Printf("dispatch: module %s panicked: %v", desc.ID, r)
			}
			e.writeTrace(Decision{Tick: now, AgentID: a.AgentID(), Category: category, ModuleID: desc.ID, Outcome: OutcomePanic})
		}
	}()

	candidates := e.regions.GetOrRefresh(region, m, now)
	tgt := FindFirst(candidates, a.Pos(), thresholds, e.rng, func(t Target) bool {
		return e.validateTarget(a, region, m, desc, t, now)
	})
	if tgt == nil {
		e.writeTrace(Decision{Tick: now, AgentID: a.AgentID(), Category: category, ModuleID: desc.ID, Outcome: OutcomeNoTarget})
		return nil
	}
	task = m.CreateJob(a, tgt)
	if task == nil {
		e.writeTrace(Decision{Tick: now, AgentID: a.AgentID(), Category: category, ModuleID: desc.ID, TargetID: tgt.TargetID(), Outcome: OutcomeCreateFailed})
		return nil
	}
	e.writeTrace(Decision{Tick: now, AgentID: a.AgentID(), Category: category, ModuleID: desc.ID, TargetID: tgt.TargetID(), Outcome: OutcomeDispatched})
	return task
}

// validateTarget is the selector's validator: cheap staleness check
// (with silent pruning), cached reachability, reservation read, then the
// module's authoritative ValidateJob.
func (e *Engine) validateTarget(a Agent, region RegionID, m Module, desc Descriptor, t Target, now uint64) bool {
	if !m.ShouldProcessTarget(t, region) {
		e.regions.Prune(region, desc.ID, t.TargetID())
		return false
	}
	reach, cached := e.reach.Lookup(region, desc.ID, t.TargetID(), now)
	if !cached {
		reach = e.oracle.CanReach(a, t)
		e.reach.Store(region, desc.ID, t.TargetID(), reach, now)
	}
	if !reach {
		return false
	}
	if !e.oracle.CanReserve(a, t) {
		return false
	}
	return m.ValidateJob(t, a)
}

func (e *Engine) pollInterval(priority float64) uint64 {
	if priority <= 0 {
		return e.cfg.MaxPollTicks
	}
	iv := uint64(float64(e.cfg.PollBaseTicks) / priority)
	if iv < 1 {
		return 1
	}
	if iv > e.cfg.MaxPollTicks {
		return e.cfg.MaxPollTicks
	}
	return iv
}

func (e *Engine) categoryOrder() []string {
	if e.catOrder != nil {
		return e.catOrder
	}
	cats := append([]string(nil), e.registry.Categories()...)
	sort.SliceStable(cats, func(i, j int) bool {
		pi := e.cfg.Categories[cats[i]].Priority
		pj := e.cfg.Categories[cats[j]].Priority
		if pi != pj {
			return pi > pj
		}
		return cats[i] < cats[j]
	})
	e.catOrder = cats
	return cats
}

func (e *Engine) writeTrace(d Decision) {
	if e.trace == nil {
		return
	}
	_ = e.trace.WriteDecision(d)
}

// ResetAllCaches drops all candidate lists, reachability results,
// cooldowns and polling gates. Used on world reload.
func (e *Engine) ResetAllCaches() {
	e.regions.ResetAll()
	e.reach.ResetAll()
	e.cooldowns.ResetAll()
	e.nextPoll = map[pollKey]uint64{}
}

// ResetCachesForRegion drops cached state for one region, e.g. after a
// bulk mutation invalidated everything in it.
func (e *Engine) ResetCachesForRegion(region RegionID) {
	e.regions.ResetRegion(region)
	e.reach.ResetRegion(region)
}
