package config

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// fileRoot is the top-level shape of a generation config file.
// Every block and attribute is optional; absent values keep their defaults.
type fileRoot struct {
	Map          *mapBlock          `hcl:"map,block"`
	Terrain      *terrainBlock      `hcl:"terrain,block"`
	Treasure     *treasureBlock     `hcl:"treasure,block"`
	Guards       *guardsBlock       `hcl:"guards,block"`
	Obstacles    *obstaclesBlock    `hcl:"obstacles,block"`
	Spawn        *spawnBlock        `hcl:"spawn,block"`
	Reachability *reachabilityBlock `hcl:"reachability,block"`
}

type mapBlock struct {
	Width  *int   `hcl:"width,optional"`
	Height *int   `hcl:"height,optional"`
	Seed   *int64 `hcl:"seed,optional"`
}

type terrainBlock struct {
	Octaves        *int     `hcl:"octaves,optional"`
	Frequency      *float64 `hcl:"frequency,optional"`
	Persistence    *float64 `hcl:"persistence,optional"`
	WaterFeatures  *int     `hcl:"water_features,optional"`
	WaterMinRadius *int     `hcl:"water_min_radius,optional"`
	WaterMaxRadius *int     `hcl:"water_max_radius,optional"`
}

type treasureBlock struct {
	Budget           *int           `hcl:"budget,optional"`
	ValueLimit       *int           `hcl:"value_limit,optional"`
	ResourcePiles    *int           `hcl:"resource_piles,optional"`
	Mines            *int           `hcl:"mines,optional"`
	Dwellings        *int           `hcl:"dwellings,optional"`
	MaxDwellingLevel *int           `hcl:"max_dwelling_level,optional"`
	ResourceValues   map[string]int `hcl:"resource_values,optional"`
	Attempts         *int           `hcl:"placement_attempts,optional"`
}

type guardsBlock struct {
	Threshold       *int     `hcl:"threshold,optional"`
	T1              *int     `hcl:"t1,optional"`
	M1              *float64 `hcl:"m1,optional"`
	T2              *int     `hcl:"t2,optional"`
	M2              *float64 `hcl:"m2,optional"`
	HighValueCutoff *int     `hcl:"high_value_cutoff,optional"`
}

type obstaclesBlock struct {
	Density *float64 `hcl:"density,optional"`
	Types   []string `hcl:"types,optional"`
}

type spawnBlock struct {
	Heroes      *int `hcl:"heroes,optional"`
	MinDistance *int `hcl:"min_distance,optional"`
}

type reachabilityBlock struct {
	Enabled      *bool `hcl:"enabled,optional"`
	SearchRadius *int  `hcl:"search_radius,optional"`
}

// LoadFile reads an HCL config file and overlays it on DefaultGenConfig.
func LoadFile(path string) (GenConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return GenConfig{}, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(file, path)
}

// Parse decodes HCL source and overlays it on DefaultGenConfig.
func Parse(src []byte, filename string) (GenConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return GenConfig{}, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(file, filename)
}

func decode(file *hcl.File, filename string) (GenConfig, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return GenConfig{}, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	cfg := DefaultGenConfig()
	root.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return GenConfig{}, fmt.Errorf("invalid config %s: %w", filename, err)
	}

	slog.Debug("config loaded", "file", filename, "width", cfg.Width, "height", cfg.Height, "seed", cfg.Seed)
	return cfg, nil
}

func (r *fileRoot) apply(cfg *GenConfig) {
	if b := r.Map; b != nil {
		set(&cfg.Width, b.Width)
		set(&cfg.Height, b.Height)
		set(&cfg.Seed, b.Seed)
	}
	if b := r.Terrain; b != nil {
		set(&cfg.NoiseOctaves, b.Octaves)
		set(&cfg.NoiseFrequency, b.Frequency)
		set(&cfg.NoisePersistence, b.Persistence)
		set(&cfg.WaterFeatures, b.WaterFeatures)
		set(&cfg.WaterMinRadius, b.WaterMinRadius)
		set(&cfg.WaterMaxRadius, b.WaterMaxRadius)
	}
	if b := r.Treasure; b != nil {
		set(&cfg.TreasureBudget, b.Budget)
		set(&cfg.ValueLimit, b.ValueLimit)
		set(&cfg.ResourcePileCount, b.ResourcePiles)
		set(&cfg.MineCount, b.Mines)
		set(&cfg.DwellingCount, b.Dwellings)
		set(&cfg.MaxDwellingLevel, b.MaxDwellingLevel)
		set(&cfg.PlacementAttempts, b.Attempts)
		if b.ResourceValues != nil {
			cfg.ResourceValues = b.ResourceValues
		}
	}
	if b := r.Guards; b != nil {
		set(&cfg.GuardThreshold, b.Threshold)
		set(&cfg.GuardT1, b.T1)
		set(&cfg.GuardM1, b.M1)
		set(&cfg.GuardT2, b.T2)
		set(&cfg.GuardM2, b.M2)
		set(&cfg.HighValueCutoff, b.HighValueCutoff)
	}
	if b := r.Obstacles; b != nil {
		set(&cfg.ObstacleDensity, b.Density)
		if b.Types != nil {
			cfg.ObstacleTypes = b.Types
		}
	}
	if b := r.Spawn; b != nil {
		set(&cfg.HeroCount, b.Heroes)
		set(&cfg.MinSpawnDistance, b.MinDistance)
	}
	if b := r.Reachability; b != nil {
		set(&cfg.ValidateReachability, b.Enabled)
		set(&cfg.SearchRadius, b.SearchRadius)
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
