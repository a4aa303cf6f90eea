package world

import (
	"overseer.ai/internal/dispatch"
	"overseer.ai/internal/sim/tasks"
)

type Agent struct {
	ID   string
	Name string
	// Type names the capability profile; tags attach to the type.
	Type string

	Loc      Vec3i
	RegionID dispatch.RegionID

	Task      *tasks.Task
	TaskTicks int
}

func (a *Agent) AgentID() string { return a.ID }
func (a *Agent) TypeID() string  { return a.Type }
func (a *Agent) Pos() Vec3i      { return a.Loc }

func (a *Agent) Region() (dispatch.RegionID, bool) {
	return a.RegionID, a.RegionID != ""
}

func (a *Agent) Idle() bool { return a.Task == nil }
