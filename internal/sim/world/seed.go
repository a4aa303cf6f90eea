package world

import "fmt"

// SeedDemo populates the world with a synthetic workload driven by the
// world seed: agents of the given types plus a spread of items,
// stockpiles, blueprints, plants, creatures and captives across all
// regions. Used by cmd/simd and benchmarks; tests build worlds by hand.
func (w *World) SeedDemo(agents int, types []string) {
	if len(types) == 0 {
		types = []string{"LABORER"}
	}

	for i := 0; i < agents; i++ {
		pos := w.randPos()
		w.SpawnAgent(fmt.Sprintf("agent%d", i+1), types[i%len(types)], pos)
	}

	for _, id := range w.regionOrder {
		r := w.regions[id]

		w.SpawnEntity(&Entity{
			Kind:     ClassStockpile,
			Loc:      Vec3i{X: r.Origin.X + r.Size/2, Z: r.Origin.Z + r.Size/2},
			Capacity: 200,
		})

		for i := 0; i < 12; i++ {
			w.SpawnEntity(&Entity{
				Kind:   ClassItem,
				Loc:    w.randPosIn(r),
				ItemID: []string{"WOOD", "STONE", "PRODUCE"}[w.rng.Intn(3)],
				Count:  1 + w.rng.Intn(5),
			})
		}

		w.SpawnEntity(&Entity{
			Kind:     ClassBlueprint,
			Loc:      w.randPosIn(r),
			Required: map[string]int{"WOOD": 4, "STONE": 2},
		})

		for i := 0; i < 4; i++ {
			w.SpawnEntity(&Entity{
				Kind:   ClassPlant,
				Loc:    w.randPosIn(r),
				Mature: w.rng.Intn(2) == 0,
			})
		}

		w.SpawnEntity(&Entity{
			Kind:     ClassCreature,
			Loc:      w.randPosIn(r),
			FoodItem: "PRODUCE",
		})

		cell := w.SpawnEntity(&Entity{
			Kind: ClassStockpile,
			Loc:  Vec3i{X: r.Origin.X + 2, Z: r.Origin.Z + 2},
		})
		w.SpawnEntity(&Entity{
			Kind:        ClassCaptive,
			Loc:         w.randPosIn(r),
			NeedsEscort: true,
			EscortToID:  cell.ID,
		})
	}
}

func (w *World) randPos() Vec3i {
	id := w.regionOrder[w.rng.Intn(len(w.regionOrder))]
	return w.randPosIn(w.regions[id])
}

func (w *World) randPosIn(r *Region) Vec3i {
	return Vec3i{
		X: r.Origin.X + w.rng.Intn(r.Size),
		Z: r.Origin.Z + w.rng.Intn(r.Size),
	}
}
