package objects

import (
	"github.com/talgya/mapforge/internal/grid"
)

// MineValueHorizon is the number of days of production a mine is valued at.
const MineValueHorizon = 30

// Mine is a capturable production site.
type Mine struct {
	grid.ObjectBase
	Kind      ResourceKind `json:"kind"`
	Daily     int          `json:"daily"`
	UnitValue int          `json:"unit_value"`
}

// NewMine creates a blocking, visitable mine owned by nobody.
func NewMine(pos grid.Point, kind ResourceKind, daily, unitValue int) *Mine {
	return &Mine{
		ObjectBase: grid.NewBase(TagMine, pos, true, true),
		Kind:       kind,
		Daily:      daily,
		UnitValue:  unitValue,
	}
}

// Value is the mine's long-run strategic worth.
func (m *Mine) Value() int {
	return m.Daily * m.UnitValue * MineValueHorizon
}

// OnVisit flags the mine to the visitor's owner.
func (m *Mine) OnVisit(v grid.Visitor) grid.VisitOutcome {
	out := grid.VisitOutcome{Resource: string(m.Kind), Amount: m.Daily}
	if m.Owner != v.Owner() {
		m.Owner = v.Owner()
		out.Captured = true
	}
	return out
}
