package dispatch

import (
	"io"
	"log"
	"testing"

	"overseer.ai/internal/sim/tasks"
)

// Shared fakes for the dispatch tests. Everything is driven by an
// explicit tick so tests never sleep.

type fakeClock struct{ tick uint64 }

func (c *fakeClock) Now() uint64      { return c.tick }
func (c *fakeClock) advance(n uint64) { c.tick += n }

type fakeTarget struct {
	id     string
	class  string
	pos    Vec3i
	region RegionID
}

func (t *fakeTarget) TargetID() string { return t.id }
func (t *fakeTarget) Class() string    { return t.class }
func (t *fakeTarget) Pos() Vec3i       { return t.pos }
func (t *fakeTarget) Region() RegionID { return t.region }

type fakeAgent struct {
	id     string
	typ    string
	pos    Vec3i
	region RegionID
}

func (a *fakeAgent) AgentID() string { return a.id }
func (a *fakeAgent) TypeID() string  { return a.typ }
func (a *fakeAgent) Pos() Vec3i      { return a.pos }
func (a *fakeAgent) Region() (RegionID, bool) {
	return a.region, a.region != ""
}

// fakeIndex serves targets from a plain slice so enumeration order is
// the insertion order. sectorOf lets a test pick its own sector layout.
type fakeIndex struct {
	targets  []*fakeTarget
	sectors  int
	sectorOf func(Vec3i) int
	attn     int
	hasAttn  bool

	sectorScans []int
}

func (x *fakeIndex) TargetsIn(region RegionID, class string) []Target {
	var out []Target
	for _, t := range x.targets {
		if t.region == region && t.class == class {
			out = append(out, t)
		}
	}
	return out
}

func (x *fakeIndex) SectorCount(region RegionID) int {
	if x.sectors == 0 {
		return 1
	}
	return x.sectors
}

func (x *fakeIndex) SectorOf(region RegionID, pos Vec3i) int {
	if x.sectorOf == nil {
		return 0
	}
	return x.sectorOf(pos)
}

func (x *fakeIndex) TargetsInSector(region RegionID, sector int, class string) []Target {
	x.sectorScans = append(x.sectorScans, sector)
	var out []Target
	for _, t := range x.targets {
		if t.region == region && t.class == class && x.SectorOf(region, t.pos) == sector {
			out = append(out, t)
		}
	}
	return out
}

func (x *fakeIndex) AttentionSector(region RegionID) (int, bool) {
	return x.attn, x.hasAttn
}

func (x *fakeIndex) remove(id string) {
	for i, t := range x.targets {
		if t.id == id {
			x.targets = append(x.targets[:i], x.targets[i+1:]...)
			return
		}
	}
}

type fakeOracle struct {
	noReach    map[string]bool
	noReserve  map[string]bool
	reachCalls int
}

func (o *fakeOracle) CanReach(a Agent, t Target) bool {
	o.reachCalls++
	return !o.noReach[t.TargetID()]
}

func (o *fakeOracle) CanReserve(a Agent, t Target) bool {
	return !o.noReserve[t.TargetID()]
}

// fakeModule scans its index through ScanRegion and counts hook calls.
// Behavior hooks default to "accept everything".
type fakeModule struct {
	desc     Descriptor
	index    SpatialIndex
	should   func(Target, RegionID) bool
	validate func(Target, Agent) bool
	create   func(Agent, Target) *tasks.Task

	updateCalls   int
	validateCalls int
	createCalls   int
}

func (m *fakeModule) Descriptor() Descriptor { return m.desc }

func (m *fakeModule) ShouldProcessTarget(t Target, region RegionID) bool {
	if m.should != nil {
		return m.should(t, region)
	}
	return true
}

func (m *fakeModule) UpdateCache(region RegionID, out *[]Target) {
	m.updateCalls++
	ScanRegion(m.index, m, region, out)
}

func (m *fakeModule) ValidateJob(t Target, a Agent) bool {
	m.validateCalls++
	if m.validate != nil {
		return m.validate(t, a)
	}
	return true
}

func (m *fakeModule) CreateJob(a Agent, t Target) *tasks.Task {
	m.createCalls++
	if m.create != nil {
		return m.create(a, t)
	}
	return &tasks.Task{
		TaskID:   tasks.NewID(),
		Kind:     tasks.KindHaul,
		AgentID:  a.AgentID(),
		TargetID: t.TargetID(),
	}
}

type memSink struct{ decisions []Decision }

func (s *memSink) WriteDecision(d Decision) error {
	s.decisions = append(s.decisions, d)
	return nil
}

func (s *memSink) outcomes(moduleID string) []string {
	var out []string
	for _, d := range s.decisions {
		if d.ModuleID == moduleID {
			out = append(out, d.Outcome)
		}
	}
	return out
}

func discardLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func haulConfig() Config {
	return Config{
		Categories: map[string]CategoryConfig{
			"HAUL": {Priority: 4, Thresholds: []int{225, 625, 1600}},
		},
	}
}

// newHaulEngine wires an engine with one WORKER type allowed everything
// and registers the given modules under their declared categories.
func newHaulEngine(t *testing.T, cfg Config, clock *fakeClock, idx *fakeIndex, oracle *fakeOracle, mods ...*fakeModule) *Engine {
	t.Helper()
	e := New(cfg, clock, idx, oracle, discardLogger())
	cats := make([]string, 0, len(cfg.Categories))
	for c := range cfg.Categories {
		cats = append(cats, c)
	}
	e.Resolver().Rebuild(map[string][]string{
		"WORKER": {TagAllowAll},
		"FERAL":  {TagBlockAll},
	}, cats)
	for _, m := range mods {
		m.index = idx
		if err := e.RegisterModule(m.desc.Category, m); err != nil {
			t.Fatalf("register %s: %v", m.desc.ID, err)
		}
	}
	return e
}
