package rmg

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/mapforge/internal/budget"
	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/entropy"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/pipeline"
)

// Jobs is the standard job set of one generation run.
type Jobs struct {
	Terrain      *TerrainJob
	Resources    *ResourceJob
	Mines        *MineJob
	Dwellings    *DwellingJob
	Guards       *GuardJob
	Obstacles    *ObstacleJob
	Spawns       *HeroSpawnJob
	Reachability *ReachabilityJob
}

// DefaultJobs creates fresh instances of every generation job.
func DefaultJobs() *Jobs {
	return &Jobs{
		Terrain:      NewTerrainJob(),
		Resources:    NewResourceJob(),
		Mines:        NewMineJob(),
		Dwellings:    NewDwellingJob(),
		Guards:       NewGuardJob(),
		Obstacles:    NewObstacleJob(),
		Spawns:       NewHeroSpawnJob(),
		Reachability: NewReachabilityJob(),
	}
}

// All returns the jobs in registration order.
func (js *Jobs) All() []pipeline.Job {
	return []pipeline.Job{
		js.Terrain, js.Resources, js.Mines, js.Dwellings,
		js.Guards, js.Obstacles, js.Spawns, js.Reachability,
	}
}

// JobBudget is the ledger summary of one placement job.
type JobBudget struct {
	Job     string         `json:"job"`
	Summary budget.Summary `json:"summary"`
}

// Result is everything a generation run produces.
type Result struct {
	RunID        uuid.UUID                 `json:"run_id"`
	Seed         int64                     `json:"seed"`
	Config       config.GenConfig          `json:"-"`
	Grid         *grid.Grid                `json:"-"`
	Budgets      []JobBudget               `json:"budgets"`
	Placements   map[string]PlacementStats `json:"placements"`
	Lakes        int                       `json:"lakes"`
	Guarded      int                       `json:"guarded"`
	Obstacles    ObstacleStats             `json:"obstacles"`
	Spawns       []grid.Point              `json:"spawns"`
	Reachability ReachabilityStats         `json:"reachability"`
	Pipeline     []pipeline.JobInfo        `json:"pipeline"`
	Report       *pipeline.Report          `json:"report"`
	CoastalTiles int                       `json:"coastal_tiles"`
	Elapsed      time.Duration             `json:"elapsed"`
}

// Generate validates cfg, resolves the seed and runs the full pipeline.
// A nil seeds source resolves zero seeds from crypto/rand.
func Generate(ctx context.Context, cfg config.GenConfig, seeds *entropy.Source) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if seeds != nil {
		cfg.Seed = seeds.Resolve(ctx, cfg.Seed)
	} else {
		cfg.Seed = entropy.Resolve(cfg.Seed)
	}

	start := time.Now()
	res := &Result{
		RunID:  uuid.New(),
		Seed:   cfg.Seed,
		Config: cfg,
		Grid:   grid.New(cfg.Width, cfg.Height),
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	jobs := DefaultJobs()

	slog.Info("generating map", "run", res.RunID, "seed", cfg.Seed, "width", cfg.Width, "height", cfg.Height)

	sched := pipeline.NewScheduler(jobs.All()...)
	sched.SetFinalizer(func(g *grid.Grid) {
		res.CoastalTiles = g.MarkCoastal()
	})
	report, err := sched.Run(res.Grid, &res.Config, rng)
	res.Report = report
	res.Pipeline = sched.Summary()
	if err != nil {
		return res, fmt.Errorf("run pipeline: %w", err)
	}

	res.collect(jobs)
	res.Elapsed = time.Since(start)
	return res, nil
}

func (r *Result) collect(js *Jobs) {
	r.Budgets = []JobBudget{
		{Job: js.Resources.Name(), Summary: js.Resources.Ledger.Summary()},
		{Job: js.Mines.Name(), Summary: js.Mines.Ledger.Summary()},
		{Job: js.Dwellings.Name(), Summary: js.Dwellings.Ledger.Summary()},
	}
	r.Placements = map[string]PlacementStats{
		js.Resources.Name(): js.Resources.Stats,
		js.Mines.Name():     js.Mines.Stats,
		js.Dwellings.Name(): js.Dwellings.Stats,
	}
	r.Lakes = js.Terrain.Lakes
	r.Guarded = js.Guards.Guarded
	r.Obstacles = js.Obstacles.Stats
	r.Spawns = r.Grid.Spawns
	r.Reachability = js.Reachability.Stats
}

// LogSummary logs the budget, reachability and pipeline reports.
func (r *Result) LogSummary() {
	for _, b := range r.Budgets {
		for _, c := range b.Summary.Categories {
			if c.Spent == 0 && c.Limit == 0 {
				continue
			}
			slog.Info("budget",
				"job", b.Job,
				"category", c.Category,
				"spent", humanize.Comma(int64(c.Spent)),
				"limit", humanize.Comma(int64(c.Limit)),
			)
		}
		if b.Summary.StrategicValue > 0 {
			slog.Info("budget", "job", b.Job, "strategic_value", humanize.Comma(int64(b.Summary.StrategicValue)))
		}
	}

	slog.Info("reachability",
		"enabled", r.Reachability.Enabled,
		"reachable_tiles", humanize.Comma(int64(r.Reachability.ReachableTiles)),
		"unreachable", r.Reachability.Unreachable,
		"relocated", r.Reachability.Relocated,
		"removed", r.Reachability.Removed,
		"kept", r.Reachability.Kept,
	)

	for _, j := range r.Pipeline {
		slog.Info("pipeline job",
			"name", j.Name,
			"priority", j.Priority,
			"dependencies", len(j.Dependencies),
			"state", j.State,
		)
	}

	slog.Info("map generated",
		"run", r.RunID,
		"seed", r.Seed,
		"tiles", humanize.Comma(int64(r.Grid.Width*r.Grid.Height)),
		"objects", humanize.Comma(int64(r.Grid.ObjectCount())),
		"coastal", humanize.Comma(int64(r.CoastalTiles)),
		"spawns", len(r.Spawns),
		"elapsed", r.Elapsed.Round(time.Millisecond),
	)
}
