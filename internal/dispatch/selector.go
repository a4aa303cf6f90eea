package dispatch

import (
	"math/rand"
	"sort"
)

// FindFirst partitions candidates into len(thresholds)+1 concentric
// distance bands around from, shuffles each band, and scans bands
// nearest-first, returning the first candidate the validator accepts.
//
// Thresholds are ascending squared distances; bucket 0 holds everything
// within thresholds[0], the last bucket everything beyond the final
// threshold. The shuffle removes iteration-order bias between candidates
// that tie on band; pass a seeded rng for reproducible selection.
//
// The scan stops at the first accepted candidate, which keeps cost
// near-linear in nearby candidates instead of linear in the whole
// region when most agents find work close by.
func FindFirst(candidates []Target, from Vec3i, thresholds []int, rng *rand.Rand, validate func(Target) bool) Target {
	if len(candidates) == 0 {
		return nil
	}
	if !sort.IntsAreSorted(thresholds) {
		sorted := append([]int(nil), thresholds...)
		sort.Ints(sorted)
		thresholds = sorted
	}

	buckets := make([][]Target, len(thresholds)+1)
	for _, c := range candidates {
		d := from.DistSq(c.Pos())
		b := len(thresholds)
		for i, th := range thresholds {
			if d <= th {
				b = i
				break
			}
		}
		buckets[b] = append(buckets[b], c)
	}

	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		if rng != nil {
			rng.Shuffle(len(bucket), func(i, j int) {
				bucket[i], bucket[j] = bucket[j], bucket[i]
			})
		}
		for _, c := range bucket {
			if validate(c) {
				return c
			}
		}
	}
	return nil
}
