package dispatch

// RegionID identifies one spatial partition of the simulated world.
// Region granularity is owned by the host simulation; the engine only
// uses it as a cache and scan key.
type RegionID string

// Vec3i is a world position in integer units.
type Vec3i struct{ X, Y, Z int }

// DistSq returns the squared euclidean distance to other. Squared
// distances are used throughout so bucket thresholds never need a sqrt.
func (v Vec3i) DistSq(other Vec3i) int {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// Agent is a simulated actor asking for work. Agents are owned by the
// host simulation; the engine holds no reference past a Dispatch call.
type Agent interface {
	AgentID() string
	// TypeID names the agent's static type profile; capability tags
	// attach to the type, never to the instance.
	TypeID() string
	Pos() Vec3i
	// Region reports the agent's current region. ok is false for agents
	// that are in transit between regions or not yet placed.
	Region() (RegionID, bool)
}

// Target is anything a task can act upon. Targets returned by the
// spatial index may already be destroyed or claimed; modules must
// re-check live state in ValidateJob.
type Target interface {
	TargetID() string
	Class() string
	Pos() Vec3i
	Region() RegionID
}

// Clock is the host simulation's monotonically increasing tick counter.
type Clock interface {
	Now() uint64
}

// SpatialIndex enumerates target entities. Implementations reflect live
// simulation state and may return stale entities; callers filter.
type SpatialIndex interface {
	TargetsIn(region RegionID, class string) []Target

	// Sector support for progressive cache rebuilds. Sectors are
	// fixed-size partitions of a region, numbered 0..SectorCount-1.
	SectorCount(region RegionID) int
	SectorOf(region RegionID, pos Vec3i) int
	TargetsInSector(region RegionID, sector int, class string) []Target

	// AttentionSector reports the sector that currently deserves the
	// freshest data (e.g. where agents were last active). ok is false
	// when the region has no attention hint.
	AttentionSector(region RegionID) (int, bool)
}

// Oracle answers reachability and reservation questions. Both calls are
// synchronous and may be expensive; reachability results are cached with
// a short TTL, reservation state never is (it can flip within a tick).
type Oracle interface {
	CanReach(a Agent, t Target) bool
	CanReserve(a Agent, t Target) bool
}

// Decision is one trace record per module attempt. Sinks must not block;
// the engine ignores sink errors beyond logging.
type Decision struct {
	Tick     uint64 `json:"tick"`
	AgentID  string `json:"agent_id"`
	Category string `json:"category"`
	ModuleID string `json:"module_id"`
	TargetID string `json:"target_id,omitempty"`
	Outcome  string `json:"outcome"`
}

// TraceSink consumes dispatch decisions. Implemented in
// internal/persistence; may be nil on the engine.
type TraceSink interface {
	WriteDecision(d Decision) error
}

// Decision outcome codes.
const (
	OutcomeDispatched   = "DISPATCHED"
	OutcomeNoTarget     = "NO_TARGET"
	OutcomeCreateFailed = "CREATE_FAILED"
	OutcomePanic        = "PANIC"
)
