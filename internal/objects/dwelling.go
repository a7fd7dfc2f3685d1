package objects

import (
	"github.com/talgya/mapforge/internal/grid"
)

// Dwelling is a recruitment site that accumulates creatures weekly.
type Dwelling struct {
	grid.ObjectBase
	Creature  Creature `json:"creature"`
	Growth    int      `json:"growth"`
	Available int      `json:"available"`
}

// NewDwelling creates a blocking, visitable dwelling with one week of growth
// already applied.
func NewDwelling(pos grid.Point, c Creature, growth int) *Dwelling {
	d := &Dwelling{
		ObjectBase: grid.NewBase(TagDwelling, pos, true, true),
		Creature:   c,
		Growth:     growth,
	}
	d.Grow()
	return d
}

// Grow applies one weekly growth tick.
func (d *Dwelling) Grow() {
	d.Available += d.Growth
}

// Value is one week of growth at the creature's AI value.
func (d *Dwelling) Value() int {
	return d.Growth * d.Creature.AIValue
}

// OnVisit offers every available creature for recruitment and empties the pool.
func (d *Dwelling) OnVisit(v grid.Visitor) grid.VisitOutcome {
	out := grid.VisitOutcome{Creature: d.Creature.ID, Recruits: d.Available}
	d.Available = 0
	if d.Owner != v.Owner() {
		d.Owner = v.Owner()
		out.Captured = true
	}
	return out
}
