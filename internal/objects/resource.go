// Package objects defines the concrete map objects placed by the generator:
// resource piles, mines, dwellings, and obstacles.
package objects

import (
	"github.com/talgya/mapforge/internal/grid"
)

// Object type tags.
const (
	TagResource = "resource"
	TagMine     = "mine"
	TagDwelling = "dwelling"
)

// ResourceKind enumerates the collectable resources.
type ResourceKind string

const (
	Gold    ResourceKind = "gold"
	Wood    ResourceKind = "wood"
	Ore     ResourceKind = "ore"
	Mercury ResourceKind = "mercury"
	Sulfur  ResourceKind = "sulfur"
	Crystal ResourceKind = "crystal"
	Gems    ResourceKind = "gems"
)

// ResourceKinds lists every resource in a fixed order. Random draws index into it.
var ResourceKinds = []ResourceKind{Gold, Wood, Ore, Mercury, Sulfur, Crystal, Gems}

// MineKinds lists the resources a mine can produce. Gold is excluded.
var MineKinds = []ResourceKind{Wood, Ore, Mercury, Sulfur, Crystal, Gems}

// DefaultUnitValues maps each resource to its gold-equivalent value per unit.
func DefaultUnitValues() map[ResourceKind]int {
	return map[ResourceKind]int{
		Gold:    1,
		Wood:    125,
		Ore:     125,
		Mercury: 500,
		Sulfur:  500,
		Crystal: 500,
		Gems:    500,
	}
}

// PileRange returns the [min, max] quantity range for a resource pile.
func PileRange(kind ResourceKind) (int, int) {
	switch kind {
	case Gold:
		return 500, 1000
	case Wood, Ore:
		return 5, 10
	default:
		return 3, 6
	}
}

// Resource is a one-shot pile picked up by walking onto it.
type Resource struct {
	grid.ObjectBase
	Kind      ResourceKind `json:"kind"`
	Amount    int          `json:"amount"`
	UnitValue int          `json:"unit_value"`
}

// NewResource creates a visitable, non-blocking resource pile.
func NewResource(pos grid.Point, kind ResourceKind, amount, unitValue int) *Resource {
	return &Resource{
		ObjectBase: grid.NewBase(TagResource, pos, false, true),
		Kind:       kind,
		Amount:     amount,
		UnitValue:  unitValue,
	}
}

// Value returns amount × unit value.
func (r *Resource) Value() int {
	return r.Amount * r.UnitValue
}

// OnVisit hands the whole pile to the visitor. The pile is consumed.
func (r *Resource) OnVisit(v grid.Visitor) grid.VisitOutcome {
	return grid.VisitOutcome{
		Resource: string(r.Kind),
		Amount:   r.Amount,
		Consumed: true,
	}
}
