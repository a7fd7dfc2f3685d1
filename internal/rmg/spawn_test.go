package rmg

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/objects"
)

func TestHeroSpawnCentreAndSpread(t *testing.T) {
	cfg := config.SmallTestConfig()
	cfg.HeroCount = 2
	cfg.MinSpawnDistance = 6
	g := grid.New(20, 20)

	job := NewHeroSpawnJob()
	job.Run(g, &cfg, rand.New(rand.NewSource(1)))

	assert.Equal(t, 400, job.RegionSize)
	assert.Equal(t, []grid.Point{{X: 9, Y: 9}, {X: 19, Y: 0}}, g.Spawns)
}

func TestHeroSpawnRespectsMinDistance(t *testing.T) {
	cfg := config.SmallTestConfig()
	cfg.HeroCount = 3
	cfg.MinSpawnDistance = 50
	g := grid.New(20, 20)

	NewHeroSpawnJob().Run(g, &cfg, nil)
	assert.Len(t, g.Spawns, 1)
}

func TestHeroSpawnPicksLargestRegion(t *testing.T) {
	cfg := config.SmallTestConfig()
	g := grid.New(10, 5)
	for y := 0; y < 5; y++ {
		g.SetTerrain(grid.Point{X: 3, Y: y}, grid.TerrainRock, grid.MoistureDry)
	}
	// The centre tile is occupied.
	g.AddObject(objects.NewResource(grid.Point{X: 5, Y: 2}, objects.Ore, 5, 125))

	job := NewHeroSpawnJob()
	job.Run(g, &cfg, nil)

	assert.Equal(t, 30, job.RegionSize)
	if assert.Len(t, g.Spawns, 1) {
		s := g.Spawns[0]
		assert.Greater(t, s.X, 3)
		assert.False(t, g.IsOccupied(s))
	}
}

func TestHeroSpawnNoWalkableLand(t *testing.T) {
	cfg := config.SmallTestConfig()
	g := grid.New(3, 3)
	for _, p := range g.Points() {
		g.SetTerrain(p, grid.TerrainWater, grid.MoistureWet)
	}
	NewHeroSpawnJob().Run(g, &cfg, nil)
	assert.Empty(t, g.Spawns)
}
