package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`

	// Dispatcher cadence: a category with priority p is polled every
	// poll_base_ticks/p ticks, clamped to [1, max_poll_ticks].
	PollBaseTicks int `yaml:"poll_base_ticks"`
	MaxPollTicks  int `yaml:"max_poll_ticks"`

	// Caches.
	ReachTTLTicks int `yaml:"reach_ttl_ticks"`
	SpotCheckN    int `yaml:"spot_check_n"`
	SectorSize    int `yaml:"sector_size"`

	StatsEveryTicks int `yaml:"stats_every_ticks"`

	Categories map[string]Category `yaml:"categories"`
}

type Category struct {
	Priority float64 `yaml:"priority"`
	// Ascending squared-distance thresholds for the bucketing selector.
	BucketThresholdsSq []int `yaml:"bucket_thresholds_sq"`
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.applyDefaults()
	return t, nil
}

func Defaults() Tuning {
	t := Tuning{}
	t.applyDefaults()
	return t
}

func (t *Tuning) applyDefaults() {
	if t.TickRateHz <= 0 {
		t.TickRateHz = 10
	}
	if t.PollBaseTicks <= 0 {
		t.PollBaseTicks = 60
	}
	if t.MaxPollTicks <= 0 {
		t.MaxPollTicks = 600
	}
	if t.ReachTTLTicks <= 0 {
		t.ReachTTLTicks = 10
	}
	if t.SpotCheckN <= 0 {
		t.SpotCheckN = 16
	}
	if t.SectorSize <= 0 {
		t.SectorSize = 16
	}
	if t.StatsEveryTicks <= 0 {
		t.StatsEveryTicks = 50
	}
	if t.Categories == nil {
		t.Categories = map[string]Category{
			"HAUL":   {Priority: 4, BucketThresholdsSq: []int{225, 625, 1600}},
			"BUILD":  {Priority: 3, BucketThresholdsSq: []int{225, 625, 1600}},
			"GROW":   {Priority: 2, BucketThresholdsSq: []int{400, 1600}},
			"HANDLE": {Priority: 1, BucketThresholdsSq: []int{625, 2500}},
		}
	}
}
