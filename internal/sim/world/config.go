package world

type Config struct {
	ID   string
	Seed int64

	// Region grid: RegionsX * RegionsZ square regions of RegionSize
	// world units each.
	RegionsX   int
	RegionsZ   int
	RegionSize int

	// TaskDurationTicks is how long the stub executor holds a task
	// before completing it. Execution semantics live outside this repo;
	// the stub only ages tasks so agents and reservations recycle.
	TaskDurationTicks int
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.RegionsX <= 0 {
		c.RegionsX = 2
	}
	if c.RegionsZ <= 0 {
		c.RegionsZ = 2
	}
	if c.RegionSize <= 0 {
		c.RegionSize = 64
	}
	if c.TaskDurationTicks <= 0 {
		c.TaskDurationTicks = 20
	}
}
