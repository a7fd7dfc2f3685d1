package rmg

import (
	"log/slog"
	"math/rand"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/pipeline"
)

// maxRepairPasses bounds how often the validator re-floods after repairs.
// The last pass removes instead of relocating.
const maxRepairPasses = 4

// Reach is the set of tiles connected to the start positions.
type Reach struct {
	set mapset.Set[grid.Point]
}

// Has reports whether p was reached.
func (r Reach) Has(p grid.Point) bool {
	return r.set.Has(p)
}

// Len returns the number of reached tiles.
func (r Reach) Len() int {
	return r.set.Size()
}

// Points returns the reached tiles in row-major order.
func (r Reach) Points() []grid.Point {
	out := make([]grid.Point, 0, r.set.Size())
	r.set.Each(func(p grid.Point) {
		out = append(out, p)
	})
	slices.SortFunc(out, func(a, b grid.Point) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return out
}

// FloodFill runs an 8-directional BFS from the starts over clear tiles.
// A blocked tile hosting a visitable object is reached as a terminal when it
// borders a reached clear tile, but the search does not continue through it.
// Starts that are not clear are ignored.
func FloodFill(g *grid.Grid, starts []grid.Point) Reach {
	reached := mapset.New[grid.Point]()
	var queue []grid.Point
	for _, s := range starts {
		if g.IsClear(s) && !reached.Has(s) {
			reached.Put(s)
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, n := range g.Neighbors(cur) {
			if reached.Has(n) {
				continue
			}
			switch {
			case g.IsClear(n):
				reached.Put(n)
				queue = append(queue, n)
			case g.IsPassable(n) && g.Tile(n).Visitable.Size() > 0:
				reached.Put(n)
			}
		}
	}
	return Reach{set: reached}
}

// Unreachable reports whether a visitable object cannot be visited: its
// position was not reached, or none of its visitable positions were.
// Objects that are not visitable are never unreachable.
func Unreachable(obj grid.MapObject, reach Reach) bool {
	b := obj.Base()
	if !b.Visitable {
		return false
	}
	if !reach.Has(b.Pos) {
		return true
	}
	for _, vp := range obj.VisitablePositions() {
		if reach.Has(vp) {
			return false
		}
	}
	return true
}

// ReachabilityStats is the validator's report.
type ReachabilityStats struct {
	Enabled        bool `json:"enabled"`
	ReachableTiles int  `json:"reachable_tiles"`
	Unreachable    int  `json:"unreachable"`
	Relocated      int  `json:"relocated"`
	Removed        int  `json:"removed"`
	Kept           int  `json:"kept"` // Unreachable but not removable
	Passes         int  `json:"passes"`
}

// ReachabilityJob repairs the map so every visitable object can be reached
// from a hero spawn. It runs after every other job.
type ReachabilityJob struct {
	jobMeta
	Stats ReachabilityStats
}

// NewReachabilityJob creates the validator.
func NewReachabilityJob() *ReachabilityJob {
	return &ReachabilityJob{jobMeta: jobMeta{
		kind:     KindReachability,
		name:     "reachability",
		priority: 100,
		deps: []pipeline.Kind{
			KindTerrain, KindResource, KindMine, KindDwelling,
			KindGuard, KindObstacle, KindHeroSpawn,
		},
	}}
}

// Run floods from the spawns and relocates or removes unreachable objects.
func (j *ReachabilityJob) Run(g *grid.Grid, cfg *config.GenConfig, _ *rand.Rand) {
	j.Stats = ReachabilityStats{Enabled: cfg.ValidateReachability}
	if len(g.Spawns) == 0 {
		slog.Warn("reachability skipped: no spawn positions")
		return
	}

	reach := FloodFill(g, g.Spawns)
	lost := unreachableObjects(g, reach)
	j.Stats.Unreachable = len(lost)

	if !cfg.ValidateReachability {
		j.Stats.ReachableTiles = reach.Len()
		slog.Info("reachability measured", "reachable_tiles", reach.Len(), "unreachable", len(lost))
		return
	}

	spawns := mapset.New[grid.Point]()
	for _, s := range g.Spawns {
		spawns.Put(s)
	}

	for pass := 1; pass <= maxRepairPasses && len(lost) > 0; pass++ {
		j.Stats.Passes = pass
		final := pass == maxRepairPasses
		kept := 0
		for _, obj := range lost {
			id := obj.Base().ID
			if !final {
				if to, ok := relocationTarget(g, reach, spawns, obj.Base().Pos, cfg.SearchRadius); ok {
					g.MoveObject(id, to)
					j.Stats.Relocated++
					continue
				}
			}
			if !obj.Base().Removable {
				kept++
				continue
			}
			g.RemoveObject(id)
			j.Stats.Removed++
		}
		j.Stats.Kept = kept

		// Relocated blockers can seal off earlier reachable tiles; check again.
		reach = FloodFill(g, g.Spawns)
		lost = unreachableObjects(g, reach)
		if len(lost) == kept {
			break
		}
	}
	j.Stats.ReachableTiles = reach.Len()

	slog.Info("reachability validated",
		"reachable_tiles", j.Stats.ReachableTiles,
		"unreachable", j.Stats.Unreachable,
		"relocated", j.Stats.Relocated,
		"removed", j.Stats.Removed,
		"kept", j.Stats.Kept,
		"passes", j.Stats.Passes,
	)
}

func unreachableObjects(g *grid.Grid, reach Reach) []grid.MapObject {
	var out []grid.MapObject
	for _, obj := range g.Objects() {
		if Unreachable(obj, reach) {
			out = append(out, obj)
		}
	}
	return out
}

// relocationTarget searches Manhattan rings of growing radius around from for a
// reached, clear, unoccupied tile that is not a spawn.
func relocationTarget(g *grid.Grid, reach Reach, spawns mapset.Set[grid.Point], from grid.Point, radius int) (grid.Point, bool) {
	for d := 1; d <= radius; d++ {
		for _, p := range manhattanRing(from, d) {
			if !g.InBounds(p) || !reach.Has(p) || spawns.Has(p) {
				continue
			}
			if g.IsClear(p) && !g.IsOccupied(p) {
				return p, true
			}
		}
	}
	return grid.Point{}, false
}

// manhattanRing lists the points at exactly distance d from c, top to bottom,
// left before right.
func manhattanRing(c grid.Point, d int) []grid.Point {
	out := make([]grid.Point, 0, 4*d)
	for dy := -d; dy <= d; dy++ {
		dx := d - abs(dy)
		out = append(out, grid.Point{X: c.X - dx, Y: c.Y + dy})
		if dx != 0 {
			out = append(out, grid.Point{X: c.X + dx, Y: c.Y + dy})
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
