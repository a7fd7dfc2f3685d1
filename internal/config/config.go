// Package config holds the immutable generation configuration passed into the
// pipeline, its defaults, validation, and HCL file loading.
package config

import (
	"errors"
	"fmt"

	"github.com/talgya/mapforge/internal/budget"
)

// GenConfig holds random map generation parameters.
// It is treated as read-only once a pipeline starts.
type GenConfig struct {
	Width  int
	Height int
	Seed   int64 // Random seed (0 = random)

	// Terrain noise.
	NoiseOctaves     int
	NoiseFrequency   float64
	NoisePersistence float64
	WaterFeatures    int // Circular lakes carved after painting
	WaterMinRadius   int
	WaterMaxRadius   int

	// Treasure and object budgets.
	TreasureBudget    int // Total gold-equivalent value of resource piles
	ValueLimit        int // Max value of a single resource pile
	ResourcePileCount int
	MineCount         int
	DwellingCount     int
	MaxDwellingLevel  int            // Highest creature level a dwelling may recruit
	ResourceValues    map[string]int // Per-unit overrides of objects.DefaultUnitValues
	PlacementAttempts int            // Attempt cap for each placement job

	// Guards.
	GuardThreshold  int // Objects worth at least this get a guard
	GuardT1         int
	GuardM1         float64
	GuardT2         int
	GuardM2         float64
	HighValueCutoff int // Objects worth more than this get an obstacle-free ring

	// Obstacles.
	ObstacleDensity float64 // Fraction of map tiles to target
	ObstacleTypes   []string

	// Hero spawns.
	HeroCount        int
	MinSpawnDistance int

	// Reachability.
	ValidateReachability bool
	SearchRadius         int
}

// DefaultGenConfig returns a reasonable starting configuration for a medium map.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:  72,
		Height: 72,
		Seed:   0,

		NoiseOctaves:     4,
		NoiseFrequency:   0.06,
		NoisePersistence: 0.5,
		WaterFeatures:    3,
		WaterMinRadius:   2,
		WaterMaxRadius:   5,

		TreasureBudget:    30000,
		ValueLimit:        5000,
		ResourcePileCount: 24,
		MineCount:         8,
		DwellingCount:     6,
		MaxDwellingLevel:  4,
		PlacementAttempts: 500,

		GuardThreshold:  2500,
		GuardT1:         2500,
		GuardM1:         1.0,
		GuardT2:         7500,
		GuardM2:         1.0,
		HighValueCutoff: 5000,

		ObstacleDensity: 0.08,
		ObstacleTypes:   []string{"mountain", "rock", "boulder", "tree", "pine_tree", "bush", "flowers", "tall_grass"},

		HeroCount:        1,
		MinSpawnDistance: 12,

		ValidateReachability: true,
		SearchRadius:         8,
	}
}

// SmallTestConfig returns a tiny map for rapid iteration and tests.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Width = 24
	cfg.Height = 24
	cfg.Seed = 42
	cfg.WaterFeatures = 1
	cfg.WaterMinRadius = 1
	cfg.WaterMaxRadius = 3
	cfg.TreasureBudget = 8000
	cfg.ResourcePileCount = 6
	cfg.MineCount = 3
	cfg.DwellingCount = 2
	cfg.PlacementAttempts = 200
	cfg.MinSpawnDistance = 6
	cfg.SearchRadius = 6
	return cfg
}

// Limits returns the budget limits for a ledger.
func (c *GenConfig) Limits() budget.Limits {
	return budget.Limits{
		TreasureValue: c.TreasureBudget,
		Mines:         c.MineCount,
		Dwellings:     c.DwellingCount,
		ResourcePiles: c.ResourcePileCount,
	}
}

// ObstacleTarget returns the number of obstacles the obstacle job aims for.
func (c *GenConfig) ObstacleTarget() int {
	return int(c.ObstacleDensity * float64(c.Width*c.Height))
}

// Validate reports every problem with the configuration.
func (c *GenConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Width >= 3 && c.Height >= 3, "map size %dx%d: both sides must be at least 3", c.Width, c.Height)
	check(c.NoiseOctaves >= 1, "noise octaves %d: must be at least 1", c.NoiseOctaves)
	check(c.NoiseFrequency > 0, "noise frequency %g: must be positive", c.NoiseFrequency)
	check(c.NoisePersistence > 0 && c.NoisePersistence <= 1, "noise persistence %g: must be in (0, 1]", c.NoisePersistence)
	check(c.WaterFeatures >= 0, "water features %d: must not be negative", c.WaterFeatures)
	check(c.WaterMinRadius >= 1 && c.WaterMinRadius <= c.WaterMaxRadius,
		"water radius [%d, %d]: need 1 <= min <= max", c.WaterMinRadius, c.WaterMaxRadius)

	check(c.TreasureBudget >= 0, "treasure budget %d: must not be negative", c.TreasureBudget)
	check(c.ValueLimit > 0, "value limit %d: must be positive", c.ValueLimit)
	check(c.ResourcePileCount >= 0 && c.MineCount >= 0 && c.DwellingCount >= 0,
		"object counts must not be negative")
	check(c.MaxDwellingLevel >= 1, "max dwelling level %d: must be at least 1", c.MaxDwellingLevel)
	check(c.PlacementAttempts >= 1, "placement attempts %d: must be at least 1", c.PlacementAttempts)
	for name, v := range c.ResourceValues {
		check(v > 0, "resource value %q = %d: must be positive", name, v)
	}

	check(c.GuardThreshold >= 0, "guard threshold %d: must not be negative", c.GuardThreshold)
	check(c.GuardT1 < c.GuardT2, "guard thresholds t1=%d t2=%d: need t1 < t2", c.GuardT1, c.GuardT2)
	check(c.GuardM1 >= 0 && c.GuardM2 >= 0, "guard multipliers must not be negative")

	check(c.ObstacleDensity >= 0 && c.ObstacleDensity <= 1, "obstacle density %g: must be in [0, 1]", c.ObstacleDensity)
	check(c.ObstacleDensity == 0 || len(c.ObstacleTypes) > 0, "obstacle types: need at least one when density > 0")

	check(c.HeroCount >= 1, "hero count %d: must be at least 1", c.HeroCount)
	check(c.MinSpawnDistance >= 0, "min spawn distance %d: must not be negative", c.MinSpawnDistance)
	check(c.SearchRadius >= 0, "search radius %d: must not be negative", c.SearchRadius)

	return errors.Join(errs...)
}
