package rmg

import (
	"log/slog"
	"math/rand"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/objects"
	"github.com/talgya/mapforge/internal/pipeline"
)

// ObstacleStats summarises the obstacle pass.
type ObstacleStats struct {
	Target     int `json:"target"`
	Placed     int `json:"placed"`
	Blocking   int `json:"blocking"`
	Rejected   int `json:"rejected"` // Blocking placements refused at chokepoints
	Attempts   int `json:"attempts"`
	Candidates int `json:"candidates"`
}

// ObstacleJob fills open ground with blocking and decorative scenery while
// keeping object footprints, visit aprons, and guard rings free.
type ObstacleJob struct {
	jobMeta
	Stats ObstacleStats
}

// NewObstacleJob creates the obstacle placer. It runs after every object placer.
func NewObstacleJob() *ObstacleJob {
	return &ObstacleJob{jobMeta: jobMeta{
		kind:     KindObstacle,
		name:     "obstacles",
		priority: 50,
		deps:     []pipeline.Kind{KindTerrain, KindResource, KindMine, KindDwelling, KindGuard},
	}}
}

// Run places obstacles until the target, the attempt cap, or the candidates run out.
func (j *ObstacleJob) Run(g *grid.Grid, cfg *config.GenConfig, rng *rand.Rand) {
	j.Stats = ObstacleStats{Target: cfg.ObstacleTarget()}
	if j.Stats.Target == 0 || len(cfg.ObstacleTypes) == 0 {
		slog.Info("obstacles skipped", "target", j.Stats.Target, "types", len(cfg.ObstacleTypes))
		return
	}

	prohibited := prohibitedTiles(g, cfg)
	pool := newCandidatePool()
	for _, p := range g.Points() {
		if g.IsPassable(p) && !prohibited.Has(p) && !g.IsOccupied(p) {
			pool.add(p)
		}
	}
	j.Stats.Candidates = pool.len()

	maxAttempts := 10 * j.Stats.Target
	for j.Stats.Attempts < maxAttempts && j.Stats.Placed < j.Stats.Target && pool.len() > 0 {
		j.Stats.Attempts++

		p := pool.at(rng.Intn(pool.len()))
		kind := cfg.ObstacleTypes[rng.Intn(len(cfg.ObstacleTypes))]
		blocking := rng.Float64() < objects.BlockingChance(kind)

		// Local chokepoint heuristic, not a connectivity proof.
		if blocking && clearNeighbors(g, p) <= 2 {
			j.Stats.Rejected++
			continue
		}

		g.AddObject(objects.NewObstacle(p, kind, blocking))
		j.Stats.Placed++
		pool.remove(p)
		if blocking {
			j.Stats.Blocking++
			for _, n := range g.Neighbors(p) {
				pool.remove(n)
			}
		}
	}

	slog.Info("obstacles placed",
		"placed", j.Stats.Placed,
		"blocking", j.Stats.Blocking,
		"target", j.Stats.Target,
		"rejected", j.Stats.Rejected,
		"attempts", j.Stats.Attempts,
	)
}

// prohibitedTiles collects footprints, visit aprons, buffer rings around
// valuable or guarded objects, and hero spawns.
func prohibitedTiles(g *grid.Grid, cfg *config.GenConfig) mapset.Set[grid.Point] {
	prohibited := mapset.New[grid.Point]()
	for _, obj := range g.Objects() {
		b := obj.Base()
		prohibited.Put(b.Pos)
		for _, p := range obj.BlockedTiles() {
			prohibited.Put(p)
		}
		for _, vp := range obj.VisitablePositions() {
			prohibited.Put(vp)
			for _, n := range g.Neighbors(vp) {
				prohibited.Put(n)
			}
		}
		if obj.Value() > cfg.HighValueCutoff || b.Guard != nil {
			for _, n := range g.Neighbors(b.Pos) {
				prohibited.Put(n)
			}
		}
	}
	// Spawns are only set here on hand-built or reloaded grids; in the
	// pipeline hero_spawn runs after obstacles.
	for _, s := range g.Spawns {
		prohibited.Put(s)
	}
	return prohibited
}

// clearNeighbors counts the walkable 8-neighbours of p.
func clearNeighbors(g *grid.Grid, p grid.Point) int {
	n := 0
	for _, q := range g.Neighbors(p) {
		if g.IsClear(q) {
			n++
		}
	}
	return n
}

// candidatePool is an ordered set of points with O(1) random access and removal.
type candidatePool struct {
	points []grid.Point
	index  map[grid.Point]int
}

func newCandidatePool() *candidatePool {
	return &candidatePool{index: make(map[grid.Point]int)}
}

func (c *candidatePool) add(p grid.Point) {
	if _, ok := c.index[p]; ok {
		return
	}
	c.index[p] = len(c.points)
	c.points = append(c.points, p)
}

func (c *candidatePool) at(i int) grid.Point {
	return c.points[i]
}

func (c *candidatePool) len() int {
	return len(c.points)
}

// remove swaps the last point into p's slot. Absent points are ignored.
func (c *candidatePool) remove(p grid.Point) {
	i, ok := c.index[p]
	if !ok {
		return
	}
	last := len(c.points) - 1
	c.points[i] = c.points[last]
	c.index[c.points[i]] = i
	c.points = c.points[:last]
	delete(c.index, p)
}
