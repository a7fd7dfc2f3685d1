package grid

// OwnerNeutral is the owner of every object until a hero captures it.
const OwnerNeutral = "neutral"

// MapObject is anything placed on the grid.
// Concrete variants live in the objects package.
type MapObject interface {
	// Base exposes the shared fields. The Grid writes ID and Pos through it.
	Base() *ObjectBase

	// BlockedTiles returns every tile the object blocks. Empty for non-blocking objects.
	BlockedTiles() []Point

	// VisitablePositions returns the tiles a hero lands on to visit the object.
	VisitablePositions() []Point

	// Value is the object's worth for budget accounting, computed on demand.
	Value() int

	// OnVisit reacts to a hero landing on one of the visitable positions.
	OnVisit(v Visitor) VisitOutcome
}

// ObjectBase holds the fields common to every MapObject.
type ObjectBase struct {
	ID        int    `json:"id"` // Assigned by Grid.AddObject
	Tag       string `json:"tag"`
	Pos       Point  `json:"pos"`
	Owner     string `json:"owner"`
	Blocking  bool   `json:"blocking"`
	Visitable bool   `json:"visitable"`
	Removable bool   `json:"removable"`
	Guard     *Guard `json:"guard,omitempty"`
}

// NewBase returns an ObjectBase with neutral ownership, removable by default.
func NewBase(tag string, pos Point, blocking, visitable bool) ObjectBase {
	return ObjectBase{
		Tag:       tag,
		Pos:       pos,
		Owner:     OwnerNeutral,
		Blocking:  blocking,
		Visitable: visitable,
		Removable: true,
	}
}

// Base implements MapObject for types that embed ObjectBase.
func (b *ObjectBase) Base() *ObjectBase {
	return b
}

// BlockedTiles returns the single-tile footprint for blocking objects.
func (b *ObjectBase) BlockedTiles() []Point {
	if !b.Blocking {
		return nil
	}
	return []Point{b.Pos}
}

// VisitablePositions returns the object's own position for visitable objects.
func (b *ObjectBase) VisitablePositions() []Point {
	if !b.Visitable {
		return nil
	}
	return []Point{b.Pos}
}

// Guard is a creature stack attached to a valuable object.
type Guard struct {
	CreatureID string `json:"creature_id"`
	Count      int    `json:"count"`
	Strength   int    `json:"strength"` // Informational
}

// Visitor is the hero-side collaborator. Resolution of visit effects is
// handled by whoever implements it; the grid only reports outcomes.
type Visitor interface {
	Owner() string
}

// VisitOutcome describes what a visit produced.
type VisitOutcome struct {
	Resource string `json:"resource,omitempty"`
	Amount   int    `json:"amount,omitempty"`
	Captured bool   `json:"captured,omitempty"`
	Creature string `json:"creature,omitempty"`
	Recruits int    `json:"recruits,omitempty"`
	Consumed bool   `json:"consumed,omitempty"` // The object should be removed after the visit
}
