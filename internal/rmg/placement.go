package rmg

import (
	"log/slog"
	"math/rand"

	"github.com/talgya/mapforge/internal/budget"
	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/objects"
	"github.com/talgya/mapforge/internal/pipeline"
)

// PlacementStats summarises one placement job's pass.
type PlacementStats struct {
	Placed   int `json:"placed"`
	Target   int `json:"target"`
	Attempts int `json:"attempts"`
}

// ResourceJob scatters resource piles within the treasure budget.
// The ledger is local to this job's run.
type ResourceJob struct {
	jobMeta
	Ledger *budget.Ledger
	Stats  PlacementStats
}

// NewResourceJob creates the resource pile placer.
func NewResourceJob() *ResourceJob {
	return &ResourceJob{jobMeta: jobMeta{
		kind:     KindResource,
		name:     "resources",
		priority: 10,
		deps:     []pipeline.Kind{KindTerrain},
	}}
}

// Run places piles until the budget or the attempt cap runs out.
func (j *ResourceJob) Run(g *grid.Grid, cfg *config.GenConfig, rng *rand.Rand) {
	j.Ledger = budget.NewLedger(cfg.Limits())
	j.Stats = PlacementStats{Target: cfg.ResourcePileCount}
	values := unitValues(cfg)

	for j.Stats.Attempts < cfg.PlacementAttempts &&
		j.Ledger.CanPlace(budget.ResourcePiles) && j.Ledger.CanPlace(budget.Treasure) {
		j.Stats.Attempts++

		p := randomInterior(g, rng)
		if !placeable(g, p) {
			continue
		}

		kind := objects.ResourceKinds[rng.Intn(len(objects.ResourceKinds))]
		unit := values[kind]
		lo, hi := objects.PileRange(kind)
		affordable := min(j.Ledger.RemainingValue(), cfg.ValueLimit) / unit
		hi = min(hi, affordable)
		if hi < lo {
			continue
		}

		pile := objects.NewResource(p, kind, randRange(rng, lo, hi), unit)
		if !j.Ledger.CanSpend(pile.Value()) {
			continue
		}
		g.AddObject(pile)
		j.Ledger.Record(budget.ResourcePiles, pile.Value())
		j.Stats.Placed++
	}

	slog.Info("resource piles placed",
		"placed", j.Stats.Placed,
		"target", j.Stats.Target,
		"attempts", j.Stats.Attempts,
		"value", j.Ledger.Spent(budget.Treasure),
		"budget", cfg.TreasureBudget,
	)
}

// MineJob places capturable mines up to the configured count.
type MineJob struct {
	jobMeta
	Ledger *budget.Ledger
	Stats  PlacementStats
}

// NewMineJob creates the mine placer.
func NewMineJob() *MineJob {
	return &MineJob{jobMeta: jobMeta{
		kind:     KindMine,
		name:     "mines",
		priority: 20,
		deps:     []pipeline.Kind{KindTerrain},
	}}
}

// Run places mines until the count or the attempt cap runs out.
func (j *MineJob) Run(g *grid.Grid, cfg *config.GenConfig, rng *rand.Rand) {
	j.Ledger = budget.NewLedger(cfg.Limits())
	j.Stats = PlacementStats{Target: cfg.MineCount}
	values := unitValues(cfg)

	for j.Stats.Attempts < cfg.PlacementAttempts && j.Ledger.CanPlace(budget.Mines) {
		j.Stats.Attempts++

		p := randomInterior(g, rng)
		if !placeable(g, p) {
			continue
		}

		kind := objects.MineKinds[rng.Intn(len(objects.MineKinds))]
		daily := randRange(rng, 1, 2)
		mine := objects.NewMine(p, kind, daily, values[kind])
		g.AddObject(mine)
		j.Ledger.Record(budget.Mines, mine.Value())
		j.Stats.Placed++
	}

	slog.Info("mines placed",
		"placed", j.Stats.Placed,
		"target", j.Stats.Target,
		"attempts", j.Stats.Attempts,
	)
}

// DwellingJob places creature dwellings up to the configured count.
type DwellingJob struct {
	jobMeta
	Ledger *budget.Ledger
	Stats  PlacementStats
}

// NewDwellingJob creates the dwelling placer.
func NewDwellingJob() *DwellingJob {
	return &DwellingJob{jobMeta: jobMeta{
		kind:     KindDwelling,
		name:     "dwellings",
		priority: 30,
		deps:     []pipeline.Kind{KindTerrain},
	}}
}

// Run places dwellings until the count or the attempt cap runs out.
func (j *DwellingJob) Run(g *grid.Grid, cfg *config.GenConfig, rng *rand.Rand) {
	j.Ledger = budget.NewLedger(cfg.Limits())
	j.Stats = PlacementStats{Target: cfg.DwellingCount}
	creatures := objects.CreaturesUpToLevel(cfg.MaxDwellingLevel)

	for j.Stats.Attempts < cfg.PlacementAttempts && j.Ledger.CanPlace(budget.Dwellings) && len(creatures) > 0 {
		j.Stats.Attempts++

		p := randomInterior(g, rng)
		if !placeable(g, p) {
			continue
		}

		c := creatures[rng.Intn(len(creatures))]
		d := objects.NewDwelling(p, c, randRange(rng, c.MinGrowth, c.MaxGrowth))
		g.AddObject(d)
		j.Ledger.Record(budget.Dwellings, d.Value())
		j.Stats.Placed++
	}

	slog.Info("dwellings placed",
		"placed", j.Stats.Placed,
		"target", j.Stats.Target,
		"attempts", j.Stats.Attempts,
	)
}
