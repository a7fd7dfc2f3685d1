// Package rmg implements the random map generation jobs and the Generate
// entry point that wires them into a pipeline.
package rmg

import (
	"math/rand"

	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/objects"
	"github.com/talgya/mapforge/internal/pipeline"
)

// Job kinds, used as dependency identifiers.
const (
	KindTerrain      pipeline.Kind = "terrain"
	KindResource     pipeline.Kind = "resource"
	KindMine         pipeline.Kind = "mine"
	KindDwelling     pipeline.Kind = "dwelling"
	KindGuard        pipeline.Kind = "guard"
	KindObstacle     pipeline.Kind = "obstacle"
	KindHeroSpawn    pipeline.Kind = "hero_spawn"
	KindReachability pipeline.Kind = "reachability"
)

// jobMeta carries the static description every job exposes to the scheduler.
type jobMeta struct {
	kind     pipeline.Kind
	name     string
	priority int
	deps     []pipeline.Kind
}

func (m *jobMeta) Kind() pipeline.Kind           { return m.kind }
func (m *jobMeta) Name() string                  { return m.name }
func (m *jobMeta) Priority() int                 { return m.priority }
func (m *jobMeta) Dependencies() []pipeline.Kind { return m.deps }

// randomInterior samples a uniform tile excluding the one-tile border.
func randomInterior(g *grid.Grid, rng *rand.Rand) grid.Point {
	return grid.Point{
		X: 1 + rng.Intn(g.Width-2),
		Y: 1 + rng.Intn(g.Height-2),
	}
}

// placeable reports whether a new object may go on p: the tile must be clear
// and must not already host a visitable object.
func placeable(g *grid.Grid, p grid.Point) bool {
	return g.IsClear(p) && g.Tile(p).Visitable.Size() == 0
}

// randRange returns a uniform int in [lo, hi].
func randRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// unitValues returns the per-unit resource values with config overrides applied.
func unitValues(cfg *config.GenConfig) map[objects.ResourceKind]int {
	values := objects.DefaultUnitValues()
	for name, v := range cfg.ResourceValues {
		values[objects.ResourceKind(name)] = v
	}
	return values
}
