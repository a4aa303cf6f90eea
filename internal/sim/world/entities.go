package world

import "overseer.ai/internal/dispatch"

// Vec3i aliases the dispatch position type; the world is flat (Y=0) but
// keeps the full vector so distances stay uniform.
type Vec3i = dispatch.Vec3i

// Target entity classes.
const (
	ClassItem      = "ITEM"
	ClassStockpile = "STOCKPILE"
	ClassBlueprint = "BLUEPRINT"
	ClassPlant     = "PLANT"
	ClassCreature  = "CREATURE"
	ClassCaptive   = "CAPTIVE"
)

// Entity is anything a task can act upon. One struct covers all classes
// (the class tag picks which fields matter), mirroring how the sim owns
// entities: mutable, destroyable, movable — caches must tolerate every
// field here going stale.
type Entity struct {
	ID   string
	Kind string
	Loc  Vec3i

	RegionID dispatch.RegionID

	Destroyed bool
	// Blocked marks the entity unreachable for the pathfinding stub.
	Blocked bool

	// ITEM
	ItemID string
	Count  int

	// STOCKPILE
	Accepts  map[string]bool // nil accepts every item
	Capacity int
	Stored   map[string]int

	// BLUEPRINT
	Required  map[string]int
	Delivered map[string]int
	Built     bool

	// PLANT
	Mature bool

	// CREATURE
	Tamed    bool
	FoodItem string

	// CAPTIVE
	NeedsEscort bool
	EscortToID  string
}

func (e *Entity) TargetID() string          { return e.ID }
func (e *Entity) Class() string             { return e.Kind }
func (e *Entity) Pos() Vec3i                { return e.Loc }
func (e *Entity) Region() dispatch.RegionID { return e.RegionID }

// StockpileSpace returns how many more units the stockpile holds.
func (e *Entity) StockpileSpace() int {
	used := 0
	for _, c := range e.Stored {
		used += c
	}
	return e.Capacity - used
}

// StockpileAccepts reports whether the stockpile takes the item.
func (e *Entity) StockpileAccepts(itemID string) bool {
	if e.Accepts == nil {
		return true
	}
	return e.Accepts[itemID]
}

// MissingMaterials returns required-minus-delivered counts, omitting
// satisfied materials.
func (e *Entity) MissingMaterials() map[string]int {
	var out map[string]int
	for item, req := range e.Required {
		if d := e.Delivered[item]; d < req {
			if out == nil {
				out = map[string]int{}
			}
			out[item] = req - d
		}
	}
	return out
}

type Region struct {
	ID     dispatch.RegionID
	Origin Vec3i
	Size   int

	entities map[string]*Entity

	attentionSector int
	hasAttention    bool
}

func (r *Region) Contains(pos Vec3i) bool {
	return pos.X >= r.Origin.X && pos.X < r.Origin.X+r.Size &&
		pos.Z >= r.Origin.Z && pos.Z < r.Origin.Z+r.Size
}
