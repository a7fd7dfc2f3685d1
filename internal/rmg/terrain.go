package rmg

import (
	"log/slog"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
)

// Cumulative biome thresholds: 25% grass, 25% dirt, 20% rough, 15% snow, 15% sand.
var biomeBuckets = []struct {
	upTo    float64
	terrain grid.Terrain
}{
	{0.25, grid.TerrainGrass},
	{0.50, grid.TerrainDirt},
	{0.70, grid.TerrainRough},
	{0.85, grid.TerrainSnow},
	{1.00, grid.TerrainSand},
}

// jitterRange bounds the per-run noise offset.
const jitterRange = 10000.0

// TerrainJob paints every tile from two noise fields, then carves circular lakes.
type TerrainJob struct {
	jobMeta
	Lakes int
}

// NewTerrainJob creates the terrain job. It has no dependencies and runs first.
func NewTerrainJob() *TerrainJob {
	return &TerrainJob{jobMeta: jobMeta{
		kind:     KindTerrain,
		name:     "terrain",
		priority: 0,
	}}
}

// Run paints the grid.
func (j *TerrainJob) Run(g *grid.Grid, cfg *config.GenConfig, rng *rand.Rand) {
	biomeNoise := opensimplex.NewNormalized(rng.Int63())
	moistureNoise := opensimplex.NewNormalized(rng.Int63())

	// Per-run jitter so similar noise parameters still give different maps.
	bx, by := rng.Float64()*jitterRange, rng.Float64()*jitterRange
	mx, my := rng.Float64()*jitterRange, rng.Float64()*jitterRange

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			fx, fy := float64(x), float64(y)
			b := octaveNoise(biomeNoise, fx+bx, fy+by, cfg.NoiseOctaves, cfg.NoiseFrequency, cfg.NoisePersistence)
			m := octaveNoise(moistureNoise, fx+mx, fy+my, cfg.NoiseOctaves, cfg.NoiseFrequency*1.5, cfg.NoisePersistence)

			moisture := deriveMoisture(m)
			g.SetTerrain(grid.Point{X: x, Y: y}, deriveTerrain(b, moisture), moisture)
		}
	}

	j.Lakes = carveLakes(g, cfg, rng)

	counts := g.TerrainCounts()
	slog.Info("terrain painted",
		"width", g.Width,
		"height", g.Height,
		"lakes", j.Lakes,
		"water", counts[grid.TerrainWater],
		"swamp", counts[grid.TerrainSwamp],
	)
}

// deriveTerrain buckets the biome noise and applies the moisture variant.
func deriveTerrain(biome float64, moisture grid.Moisture) grid.Terrain {
	t := grid.TerrainSand
	for _, b := range biomeBuckets {
		if biome < b.upTo {
			t = b.terrain
			break
		}
	}
	if t == grid.TerrainGrass && moisture == grid.MoistureWet {
		return grid.TerrainSwamp
	}
	return t
}

func deriveMoisture(m float64) grid.Moisture {
	switch {
	case m < 0.33:
		return grid.MoistureDry
	case m < 0.66:
		return grid.MoistureTemperate
	default:
		return grid.MoistureWet
	}
}

// carveLakes stamps circular water features kept at least one tile off the edges.
// Returns how many were carved.
func carveLakes(g *grid.Grid, cfg *config.GenConfig, rng *rand.Rand) int {
	carved := 0
	for i := 0; i < cfg.WaterFeatures; i++ {
		r := randRange(rng, cfg.WaterMinRadius, cfg.WaterMaxRadius)
		// Shrink until the disk plus a one-tile margin fits.
		for r > 0 && (2*r+3 > g.Width || 2*r+3 > g.Height) {
			r--
		}
		if r == 0 {
			continue
		}
		cx := r + 1 + rng.Intn(g.Width-2*r-2)
		cy := r + 1 + rng.Intn(g.Height-2*r-2)

		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy > r*r {
					continue
				}
				p := grid.Point{X: cx + dx, Y: cy + dy}
				if g.InBounds(p) {
					g.SetTerrain(p, grid.TerrainWater, grid.MoistureWet)
				}
			}
		}
		carved++
	}
	return carved
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
