package dispatch

type reachKey struct {
	Region   RegionID
	ModuleID string
	TargetID string
}

type reachEntry struct {
	ok   bool
	tick uint64
}

// ReachCache memoizes the external reachability oracle for a short TTL,
// strictly shorter than any region cache interval (enforced by the
// engine at startup). Reservation state is never cached here: it can
// flip between two validations within the same tick.
type ReachCache struct {
	ttl     uint64
	entries map[reachKey]reachEntry
}

func NewReachCache(ttl uint64) *ReachCache {
	return &ReachCache{ttl: ttl, entries: map[reachKey]reachEntry{}}
}

func (c *ReachCache) TTL() uint64 { return c.ttl }

// Lookup returns (result, true) on a live entry, expiring lazily.
func (c *ReachCache) Lookup(region RegionID, moduleID, targetID string, now uint64) (bool, bool) {
	k := reachKey{region, moduleID, targetID}
	e, ok := c.entries[k]
	if !ok {
		return false, false
	}
	if now-e.tick >= c.ttl {
		delete(c.entries, k)
		return false, false
	}
	return e.ok, true
}

func (c *ReachCache) Store(region RegionID, moduleID, targetID string, ok bool, now uint64) {
	c.entries[reachKey{region, moduleID, targetID}] = reachEntry{ok: ok, tick: now}
}

func (c *ReachCache) ResetRegion(region RegionID) {
	for k := range c.entries {
		if k.Region == region {
			delete(c.entries, k)
		}
	}
}

func (c *ReachCache) ResetAll() {
	c.entries = map[reachKey]reachEntry{}
}
