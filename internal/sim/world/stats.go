package world

import "overseer.ai/internal/dispatch"

type ModuleCounts struct {
	Dispatched   uint64 `json:"dispatched"`
	NoTarget     uint64 `json:"no_target"`
	CreateFailed uint64 `json:"create_failed"`
	Panics       uint64 `json:"panics"`
}

// Stats accumulates dispatch outcomes per module plus completed task
// counts. Written only from the world loop.
type Stats struct {
	perModule map[string]*ModuleCounts
	completed map[string]uint64
}

func NewStats() *Stats {
	return &Stats{
		perModule: map[string]*ModuleCounts{},
		completed: map[string]uint64{},
	}
}

func (s *Stats) Record(d dispatch.Decision) {
	c, ok := s.perModule[d.ModuleID]
	if !ok {
		c = &ModuleCounts{}
		s.perModule[d.ModuleID] = c
	}
	switch d.Outcome {
	case dispatch.OutcomeDispatched:
		c.Dispatched++
	case dispatch.OutcomeNoTarget:
		c.NoTarget++
	case dispatch.OutcomeCreateFailed:
		c.CreateFailed++
	case dispatch.OutcomePanic:
		c.Panics++
	}
}

func (s *Stats) RecordCompletion(kind string, _ uint64) {
	s.completed[kind]++
}

type Snapshot struct {
	Tick      uint64                  `json:"tick"`
	Agents    int                     `json:"agents"`
	Idle      int                     `json:"idle"`
	Modules   map[string]ModuleCounts `json:"modules"`
	Completed map[string]uint64       `json:"completed"`
}

func (s *Stats) Snapshot(tick uint64, agents, idle int) Snapshot {
	out := Snapshot{
		Tick:      tick,
		Agents:    agents,
		Idle:      idle,
		Modules:   make(map[string]ModuleCounts, len(s.perModule)),
		Completed: make(map[string]uint64, len(s.completed)),
	}
	for id, c := range s.perModule {
		out.Modules[id] = *c
	}
	for k, n := range s.completed {
		out.Completed[k] = n
	}
	return out
}
