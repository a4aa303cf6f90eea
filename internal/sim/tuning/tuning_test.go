package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.TickRateHz != 10 || d.PollBaseTicks != 60 || d.ReachTTLTicks != 10 {
		t.Fatalf("unexpected defaults: %+v", d)
	}
	if _, ok := d.Categories["HAUL"]; !ok {
		t.Fatalf("default categories missing HAUL: %v", d.Categories)
	}
}

func TestLoadOverridesAndFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := `
tick_rate_hz: 20
poll_base_ticks: 30
categories:
  HAUL:
    priority: 5
    bucket_thresholds_sq: [100, 400]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tune, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tune.TickRateHz != 20 || tune.PollBaseTicks != 30 {
		t.Fatalf("overrides not applied: %+v", tune)
	}
	// Untouched knobs fall back to defaults.
	if tune.ReachTTLTicks != 10 || tune.SectorSize != 16 {
		t.Fatalf("defaults not filled: %+v", tune)
	}
	cat := tune.Categories["HAUL"]
	if cat.Priority != 5 || len(cat.BucketThresholdsSq) != 2 {
		t.Fatalf("HAUL category = %+v", cat)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tune, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
	// Callers that treat a missing file as optional still get a usable
	// tuning value.
	if tune.TickRateHz != 10 {
		t.Fatalf("fallback tuning not defaulted: %+v", tune)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("categories: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("malformed yaml accepted")
	}
}
