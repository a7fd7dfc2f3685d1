package objects

import (
	"strings"

	"github.com/talgya/mapforge/internal/grid"
)

// Obstacle is scenery: blocking terrain features or purely decorative props.
type Obstacle struct {
	grid.ObjectBase
}

// NewObstacle creates an obstacle of the given type. It is never visitable.
func NewObstacle(pos grid.Point, kind string, blocking bool) *Obstacle {
	return &Obstacle{ObjectBase: grid.NewBase(kind, pos, blocking, false)}
}

// Value is always zero.
func (o *Obstacle) Value() int {
	return 0
}

// OnVisit does nothing.
func (o *Obstacle) OnVisit(grid.Visitor) grid.VisitOutcome {
	return grid.VisitOutcome{}
}

// BlockingChance returns the probability that an obstacle of this type blocks movement.
// Matching is by keyword so "snowy_mountain" behaves like "mountain".
func BlockingChance(kind string) float64 {
	k := strings.ToLower(kind)
	switch {
	case containsAny(k, "mountain", "rock", "boulder"):
		return 0.7
	case strings.Contains(k, "tree"):
		return 0.3
	case containsAny(k, "bush", "flower", "grass"):
		return 0
	default:
		return 0.5
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
