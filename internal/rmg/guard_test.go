package rmg

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/objects"
)

func TestGuardStrength(t *testing.T) {
	tests := []struct {
		value int
		want  int
	}{
		{10000, 10000},
		{2500, 0},
		{2000, 0},
		{5000, 2500},
		{7500, 5000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GuardStrength(tt.value, 2500, 1.0, 7500, 1.0), "value %d", tt.value)
	}
	assert.Equal(t, 3750, GuardStrength(5000, 2500, 1.5, 7500, 1.0))
}

func TestChooseGuardEligibleTier(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for range 50 {
		g := ChooseGuard(10000, rng)
		c, ok := objects.CreatureByID(g.CreatureID)
		require.True(t, ok)
		assert.GreaterOrEqual(t, c.AIValue*50, 10000)
		assert.LessOrEqual(t, c.AIValue, 10000*100)
		assert.GreaterOrEqual(t, g.Count, 1)
		assert.Equal(t, 10000, g.Strength)
	}
}

func TestChooseGuardFallsBackToStrongest(t *testing.T) {
	g := ChooseGuard(10_000_000, rand.New(rand.NewSource(1)))
	assert.Equal(t, objects.Strongest().ID, g.CreatureID)

	base := 10_000_000 / objects.Strongest().AIValue
	assert.GreaterOrEqual(t, g.Count, int(float64(base)*0.75)-1)
	assert.LessOrEqual(t, g.Count, int(float64(base)*1.25)+1)
}

func TestGuardJobGuardsValuableObjects(t *testing.T) {
	cfg := config.SmallTestConfig()
	g := grid.New(10, 10)
	cheap := objects.NewResource(grid.Point{X: 2, Y: 2}, objects.Wood, 5, 125)
	rich := objects.NewMine(grid.Point{X: 5, Y: 5}, objects.Gems, 1, 500)
	g.AddObject(cheap)
	g.AddObject(rich)

	job := NewGuardJob()
	job.Run(g, &cfg, rand.New(rand.NewSource(2)))

	assert.Equal(t, 1, job.Guarded)
	assert.Nil(t, cheap.Guard)
	require.NotNil(t, rich.Guard)
	assert.Equal(t, GuardStrength(rich.Value(), cfg.GuardT1, cfg.GuardM1, cfg.GuardT2, cfg.GuardM2), rich.Guard.Strength)
}

func TestGuardJobSkipsZeroStrength(t *testing.T) {
	cfg := config.SmallTestConfig()
	cfg.GuardThreshold = 0
	g := grid.New(10, 10)
	pile := objects.NewResource(grid.Point{X: 2, Y: 2}, objects.Gold, 600, 1)
	g.AddObject(pile)

	job := NewGuardJob()
	job.Run(g, &cfg, rand.New(rand.NewSource(2)))
	assert.Zero(t, job.Guarded)
	assert.Nil(t, pile.Guard)
}

func TestGuardJobDefaultThresholdAlwaysGuards(t *testing.T) {
	cfg := config.DefaultGenConfig()
	g := grid.New(10, 10)
	below := objects.NewResource(grid.Point{X: 2, Y: 2}, objects.Gold, cfg.GuardThreshold-100, 1)
	above := objects.NewResource(grid.Point{X: 6, Y: 6}, objects.Gold, cfg.GuardThreshold+100, 1)
	g.AddObject(below)
	g.AddObject(above)

	job := NewGuardJob()
	job.Run(g, &cfg, rand.New(rand.NewSource(3)))

	assert.Equal(t, 1, job.Guarded)
	assert.Nil(t, below.Guard)
	require.NotNil(t, above.Guard)
	assert.Positive(t, above.Guard.Strength)
}
