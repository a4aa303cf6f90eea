package dispatch

import "hash/fnv"

type regionKey struct {
	Region   RegionID
	ModuleID string
}

type regionEntry struct {
	targets   []Target
	builtTick uint64

	// Progressive rebuild bookkeeping.
	nextSector   int
	useAttention bool
}

// RegionCache stores, per (region, module), the current candidate list
// with a freshness timestamp. Entries older than their module's cache
// interval are rebuilt before use, either wholesale or one sector at a
// time for progressive modules.
//
// The cache is owned by the engine and touched only from the simulation
// loop goroutine; there is no locking by construction.
type RegionCache struct {
	index   SpatialIndex
	entries map[regionKey]*regionEntry

	// 1-in-N staggered spot revalidation of entries in sectors that are
	// not being rescanned this cycle. 0 disables spot checks.
	spotCheckN int
}

func NewRegionCache(index SpatialIndex, spotCheckN int) *RegionCache {
	return &RegionCache{
		index:      index,
		entries:    map[regionKey]*regionEntry{},
		spotCheckN: spotCheckN,
	}
}

// GetOrRefresh returns a fresh candidate list for (region, module),
// rebuilding first if the entry is missing or stale. The returned slice
// is owned by the cache; callers must not mutate it.
func (c *RegionCache) GetOrRefresh(region RegionID, m Module, now uint64) []Target {
	desc := m.Descriptor()
	k := regionKey{region, desc.ID}
	e, ok := c.entries[k]
	if !ok {
		e = &regionEntry{}
		c.fullRebuild(e, m, region, now)
		c.entries[k] = e
		return e.targets
	}
	if now-e.builtTick < desc.CacheInterval {
		return e.targets
	}
	if desc.Progressive && c.index.SectorCount(region) > 1 {
		c.progressiveRefresh(e, m, region, now)
	} else {
		c.fullRebuild(e, m, region, now)
	}
	return e.targets
}

func (c *RegionCache) fullRebuild(e *regionEntry, m Module, region RegionID, now uint64) {
	var list []Target
	m.UpdateCache(region, &list)
	e.targets = list
	e.builtTick = now
}

// progressiveRefresh rescans exactly one sector per expiry cycle,
// alternating between the region's attention sector and a round-robin
// pointer so every sector is eventually revisited even when attention
// stays parked in one place. Entries in untouched sectors survive as-is
// except for a staggered 1-in-N spot recheck, which bounds both the
// per-cycle cost and the whole-cache staleness.
func (c *RegionCache) progressiveRefresh(e *regionEntry, m Module, region RegionID, now uint64) {
	n := c.index.SectorCount(region)
	if e.nextSector >= n {
		e.nextSector = 0
	}

	sector := -1
	if e.useAttention {
		if s, ok := c.index.AttentionSector(region); ok && s >= 0 && s < n {
			sector = s
		}
	}
	if sector < 0 {
		sector = e.nextSector
		e.nextSector = (e.nextSector + 1) % n
	}
	e.useAttention = !e.useAttention

	kept := e.targets[:0:0]
	for _, t := range e.targets {
		if c.index.SectorOf(region, t.Pos()) == sector {
			continue // rescanned below
		}
		if c.spotDue(t.TargetID(), now) && !m.ShouldProcessTarget(t, region) {
			continue
		}
		kept = append(kept, t)
	}
	for _, class := range m.Descriptor().TargetClasses {
		for _, t := range c.index.TargetsInSector(region, sector, class) {
			if m.ShouldProcessTarget(t, region) {
				kept = append(kept, t)
			}
		}
	}
	e.targets = kept
	e.builtTick = now
}

func (c *RegionCache) spotDue(targetID string, now uint64) bool {
	if c.spotCheckN <= 1 {
		return c.spotCheckN == 1
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(targetID))
	return (h.Sum64()+now)%uint64(c.spotCheckN) == 0
}

// Prune removes one target from a cached list after it was found stale
// at validation time. Silent: stale references are expected, not errors.
func (c *RegionCache) Prune(region RegionID, moduleID, targetID string) {
	e, ok := c.entries[regionKey{region, moduleID}]
	if !ok {
		return
	}
	for i, t := range e.targets {
		if t.TargetID() == targetID {
			e.targets = append(e.targets[:i], e.targets[i+1:]...)
			return
		}
	}
}

func (c *RegionCache) ResetRegion(region RegionID) {
	for k := range c.entries {
		if k.Region == region {
			delete(c.entries, k)
		}
	}
}

func (c *RegionCache) ResetAll() {
	c.entries = map[regionKey]*regionEntry{}
}
