package rmg

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
	"github.com/talgya/mapforge/internal/objects"
	"github.com/talgya/mapforge/internal/pipeline"
)

// GuardJob attaches creature stacks to every object worth guarding.
type GuardJob struct {
	jobMeta
	Guarded int
}

// NewGuardJob creates the guard placer. It runs after every object placer.
func NewGuardJob() *GuardJob {
	return &GuardJob{jobMeta: jobMeta{
		kind:     KindGuard,
		name:     "guards",
		priority: 40,
		deps:     []pipeline.Kind{KindTerrain, KindResource, KindMine, KindDwelling},
	}}
}

// Run guards objects in id order.
func (j *GuardJob) Run(g *grid.Grid, cfg *config.GenConfig, rng *rand.Rand) {
	j.Guarded = 0
	for _, obj := range g.Objects() {
		value := obj.Value()
		if value < cfg.GuardThreshold {
			continue
		}
		strength := GuardStrength(value, cfg.GuardT1, cfg.GuardM1, cfg.GuardT2, cfg.GuardM2)
		if strength <= 0 {
			continue
		}
		guard := ChooseGuard(strength, rng)
		obj.Base().Guard = &guard
		j.Guarded++

		slog.Debug("object guarded",
			"id", obj.Base().ID,
			"tag", obj.Base().Tag,
			"value", value,
			"creature", guard.CreatureID,
			"count", guard.Count,
		)
	}
	slog.Info("guards placed", "guarded", j.Guarded)
}

// GuardStrength applies the two-threshold linear formula:
// max(0, (v-t1)*m1) + max(0, (v-t2)*m2).
func GuardStrength(value, t1 int, m1 float64, t2 int, m2 float64) int {
	s := math.Max(0, float64(value-t1)*m1) + math.Max(0, float64(value-t2)*m2)
	return int(s)
}

// ChooseGuard picks a creature tier for the strength and sizes the stack.
// Eligible tiers satisfy aiValue*50 >= strength and aiValue <= strength*100;
// with none eligible the strongest tier is used.
func ChooseGuard(strength int, rng *rand.Rand) grid.Guard {
	var eligible []objects.Creature
	for _, c := range objects.Creatures {
		if c.AIValue*50 >= strength && c.AIValue <= strength*100 {
			eligible = append(eligible, c)
		}
	}

	tier := objects.Strongest()
	if len(eligible) > 0 {
		tier = eligible[rng.Intn(len(eligible))]
	}

	count := max(1, strength/tier.AIValue)
	if count >= 4 {
		// Break up suspiciously round stack sizes.
		factor := 0.75 + rng.Float64()*0.5
		count = max(1, int(math.Round(float64(count)*factor)))
	}

	return grid.Guard{
		CreatureID: tier.ID,
		Count:      count,
		Strength:   strength,
	}
}
