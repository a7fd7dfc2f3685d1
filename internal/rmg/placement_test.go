package rmg

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mapforge/internal/budget"
	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/objects"
)

func TestResourceJobTinyBudget(t *testing.T) {
	cfg := config.SmallTestConfig()
	cfg.Width, cfg.Height = 20, 20
	cfg.TreasureBudget = 100
	cfg.ResourcePileCount = 3
	g := grid.New(20, 20)

	job := NewResourceJob()
	job.Run(g, &cfg, rand.New(rand.NewSource(1)))

	piles := grid.ObjectsOf[*objects.Resource](g)
	assert.LessOrEqual(t, len(piles), 3)
	total := 0
	for _, p := range piles {
		total += p.Value()
	}
	assert.LessOrEqual(t, total, 100)
	assert.Equal(t, total, job.Ledger.Spent(budget.Treasure))
	assert.LessOrEqual(t, job.Stats.Attempts, cfg.PlacementAttempts)
}

func TestResourceJobStaysWithinBudget(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		cfg := config.SmallTestConfig()
		cfg.TreasureBudget = 3000
		cfg.ValueLimit = 1500
		cfg.ResourcePileCount = 5
		g := grid.New(cfg.Width, cfg.Height)

		job := NewResourceJob()
		job.Run(g, &cfg, rand.New(rand.NewSource(seed)))

		piles := grid.ObjectsOf[*objects.Resource](g)
		require.Equal(t, job.Stats.Placed, len(piles))
		assert.LessOrEqual(t, len(piles), 5)
		total := 0
		for _, p := range piles {
			assert.LessOrEqual(t, p.Value(), cfg.ValueLimit)
			lo, hi := objects.PileRange(p.Kind)
			assert.GreaterOrEqual(t, p.Amount, lo)
			assert.LessOrEqual(t, p.Amount, hi)
			total += p.Value()
		}
		assert.LessOrEqual(t, total, cfg.TreasureBudget, "seed %d", seed)
	}
}

func TestPlacementAvoidsBlockedAndStacking(t *testing.T) {
	cfg := config.SmallTestConfig()
	cfg.Width, cfg.Height = 8, 8
	cfg.MineCount = 10
	cfg.DwellingCount = 10
	g := grid.New(8, 8)
	for y := 0; y < 8; y++ {
		g.SetTerrain(grid.Point{X: 3, Y: y}, grid.TerrainWater, grid.MoistureWet)
	}
	rng := rand.New(rand.NewSource(3))

	NewMineJob().Run(g, &cfg, rng)
	NewDwellingJob().Run(g, &cfg, rng)
	NewResourceJob().Run(g, &cfg, rng)

	seen := map[grid.Point]int{}
	for _, obj := range g.Objects() {
		p := obj.Base().Pos
		assert.True(t, g.IsPassable(p), "object on impassable %v", p)
		assert.NotEqual(t, 0, p.X)
		assert.NotEqual(t, 0, p.Y)
		seen[p]++
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, "objects stacked at %v", p)
	}
	assert.LessOrEqual(t, len(grid.ObjectsOf[*objects.Mine](g)), 10)
}

func TestMineAndDwellingCounts(t *testing.T) {
	cfg := config.SmallTestConfig()
	g := grid.New(cfg.Width, cfg.Height)
	rng := rand.New(rand.NewSource(9))

	mines := NewMineJob()
	mines.Run(g, &cfg, rng)
	dwellings := NewDwellingJob()
	dwellings.Run(g, &cfg, rng)

	assert.Equal(t, cfg.MineCount, mines.Stats.Placed)
	assert.Equal(t, cfg.DwellingCount, dwellings.Stats.Placed)
	assert.Equal(t, cfg.TreasureBudget, mines.Ledger.RemainingValue(), "mines never spend treasure")

	for _, m := range grid.ObjectsOf[*objects.Mine](g) {
		assert.NotEqual(t, objects.Gold, m.Kind)
	}
	for _, d := range grid.ObjectsOf[*objects.Dwelling](g) {
		assert.LessOrEqual(t, d.Creature.Level, cfg.MaxDwellingLevel)
		assert.Equal(t, d.Growth, d.Available)
	}
}
