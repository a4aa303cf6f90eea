package dispatch

import "testing"

func TestReachCacheHitWithinTTL(t *testing.T) {
	c := NewReachCache(10)
	c.Store("R_0_0", "haul", "E_1", true, 5)

	ok, hit := c.Lookup("R_0_0", "haul", "E_1", 14)
	if !hit || !ok {
		t.Fatalf("Lookup = (%v, %v), want cached true", ok, hit)
	}
}

func TestReachCacheExpiresAtTTL(t *testing.T) {
	c := NewReachCache(10)
	c.Store("R_0_0", "haul", "E_1", true, 5)

	if _, hit := c.Lookup("R_0_0", "haul", "E_1", 15); hit {
		t.Fatalf("entry must be stale once its age reaches the TTL")
	}
	// Lazy expiry dropped it.
	if _, hit := c.Lookup("R_0_0", "haul", "E_1", 15); hit {
		t.Fatalf("stale entry must be gone after first miss")
	}
}

// Negative answers are memoized the same as positive ones; an
// unreachable target is not re-queried every validation.
func TestReachCacheCachesNegative(t *testing.T) {
	c := NewReachCache(10)
	c.Store("R_0_0", "haul", "E_1", false, 0)

	ok, hit := c.Lookup("R_0_0", "haul", "E_1", 3)
	if !hit || ok {
		t.Fatalf("Lookup = (%v, %v), want cached false", ok, hit)
	}
}

func TestReachCacheResetRegion(t *testing.T) {
	c := NewReachCache(10)
	c.Store("R_0_0", "haul", "E_1", true, 0)
	c.Store("R_1_0", "haul", "E_2", true, 0)

	c.ResetRegion("R_0_0")
	if _, hit := c.Lookup("R_0_0", "haul", "E_1", 1); hit {
		t.Fatalf("reset region still cached")
	}
	if _, hit := c.Lookup("R_1_0", "haul", "E_2", 1); !hit {
		t.Fatalf("other region must survive the reset")
	}
}
