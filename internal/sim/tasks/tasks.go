package tasks

import "github.com/google/uuid"

type Kind string

const (
	KindHaul    Kind = "HAUL"
	KindDeliver Kind = "DELIVER"
	KindBuild   Kind = "BUILD"
	KindHarvest Kind = "HARVEST"
	KindTame    Kind = "TAME"
	KindEscort  Kind = "ESCORT"
)

// Task is the unit handed to the executor. The dispatch core only
// constructs tasks; how they run to completion is the executor's
// business.
type Task struct {
	TaskID  string
	Kind    Kind
	AgentID string

	TargetID  string
	TargetPos Vec3i

	// HAUL/DELIVER
	ItemID  string
	Count   int
	DestID  string
	DestPos Vec3i

	// TAME
	FoodItem string

	// ESCORT
	EscortToID string

	CreatedTick uint64
}

func NewID() string { return "T_" + uuid.NewString() }

// Vec3i is duplicated here to avoid import cycles (tasks is imported by
// the dispatch core).
type Vec3i struct{ X, Y, Z int }
