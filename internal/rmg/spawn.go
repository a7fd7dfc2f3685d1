package rmg

import (
	"log/slog"
	"math/rand"

	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/pipeline"
)

// HeroSpawnJob picks validated hero start positions inside the largest
// connected walkable region.
type HeroSpawnJob struct {
	jobMeta
	RegionSize int
}

// NewHeroSpawnJob creates the spawn picker. It runs once the map is furnished.
func NewHeroSpawnJob() *HeroSpawnJob {
	return &HeroSpawnJob{jobMeta: jobMeta{
		kind:     KindHeroSpawn,
		name:     "hero_spawn",
		priority: 60,
		deps:     []pipeline.Kind{KindTerrain, KindResource, KindMine, KindDwelling, KindGuard, KindObstacle},
	}}
}

// Run sets g.Spawns. It consumes no randomness.
func (j *HeroSpawnJob) Run(g *grid.Grid, cfg *config.GenConfig, _ *rand.Rand) {
	region := largestRegion(g)
	j.RegionSize = len(region)

	var candidates []grid.Point
	for _, p := range region {
		if !g.IsOccupied(p) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		g.Spawns = nil
		slog.Warn("no spawn position available", "region", j.RegionSize)
		return
	}

	spawns := []grid.Point{closestToCenter(g, candidates)}
	for len(spawns) < cfg.HeroCount {
		next, ok := farthestFrom(candidates, spawns, cfg.MinSpawnDistance)
		if !ok {
			slog.Warn("fewer spawns than heroes", "spawns", len(spawns), "heroes", cfg.HeroCount)
			break
		}
		spawns = append(spawns, next)
	}
	g.Spawns = spawns

	slog.Info("hero spawns chosen", "spawns", len(spawns), "region", j.RegionSize)
}

// largestRegion returns the tiles of the biggest 8-connected clear region in
// row-major discovery order. Ties go to the region found first.
func largestRegion(g *grid.Grid) []grid.Point {
	seen := make([]bool, g.Width*g.Height)
	var best []grid.Point

	for _, start := range g.Points() {
		if seen[start.Y*g.Width+start.X] || !g.IsClear(start) {
			continue
		}
		seen[start.Y*g.Width+start.X] = true
		region := []grid.Point{start}
		for i := 0; i < len(region); i++ {
			for _, n := range g.Neighbors(region[i]) {
				idx := n.Y*g.Width + n.X
				if seen[idx] || !g.IsClear(n) {
					continue
				}
				seen[idx] = true
				region = append(region, n)
			}
		}
		if len(region) > len(best) {
			best = region
		}
	}
	return best
}

func closestToCenter(g *grid.Grid, candidates []grid.Point) grid.Point {
	// Doubled coordinates keep the centre integral.
	cx, cy := g.Width-1, g.Height-1
	best := candidates[0]
	bestDist := -1
	for _, p := range candidates {
		dx, dy := 2*p.X-cx, 2*p.Y-cy
		d := dx*dx + dy*dy
		if bestDist < 0 || d < bestDist || (d == bestDist && rowMajorLess(p, best)) {
			best, bestDist = p, d
		}
	}
	return best
}

// farthestFrom picks the candidate maximising its distance to the nearest chosen
// spawn, provided that distance is at least minDist.
func farthestFrom(candidates, chosen []grid.Point, minDist int) (grid.Point, bool) {
	var best grid.Point
	bestDist := -1
	for _, p := range candidates {
		d := -1
		for _, s := range chosen {
			if c := grid.Chebyshev(p, s); d < 0 || c < d {
				d = c
			}
		}
		if d < minDist || d == 0 {
			continue
		}
		if d > bestDist || (d == bestDist && rowMajorLess(p, best)) {
			best, bestDist = p, d
		}
	}
	return best, bestDist >= 0
}

func rowMajorLess(a, b grid.Point) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}
