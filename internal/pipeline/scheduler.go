// Package pipeline runs generation jobs in dependency order.
//
// Jobs declare a Kind, a priority, and the Kinds they depend on. The Scheduler
// repeatedly collects the ready set (pending jobs whose dependencies have all
// finished), orders it by (priority, name), and runs it sequentially. A pending
// set with nothing ready is a dependency deadlock: it is reported, the stuck
// jobs never run, and finalization is skipped.
package pipeline

import (
	"cmp"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strings"

	"github.com/talgya/mapforge/internal/config"
	"github.com/talgya/mapforge/internal/grid"
)

// Kind identifies a job. Dependencies are expressed as Kinds.
type Kind string

// Job is one unit of generation work.
type Job interface {
	Kind() Kind
	Name() string
	Priority() int // Lower runs first among ready jobs
	Dependencies() []Kind
	Run(g *grid.Grid, cfg *config.GenConfig, rng *rand.Rand)
}

// State is a job's lifecycle stage.
type State uint8

const (
	StatePending State = iota
	StateReady
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Finalizer runs once after every job has finished.
type Finalizer func(g *grid.Grid)

// Scheduler holds the jobs of one generation run.
type Scheduler struct {
	jobs     []Job
	byKind   map[Kind]Job
	states   map[Kind]State
	finalize Finalizer
}

// NewScheduler registers the given jobs. Registering two jobs of the same Kind panics.
func NewScheduler(jobs ...Job) *Scheduler {
	s := &Scheduler{
		byKind: make(map[Kind]Job),
		states: make(map[Kind]State),
	}
	for _, j := range jobs {
		s.Add(j)
	}
	return s
}

// Add registers a job before Run.
func (s *Scheduler) Add(j Job) {
	if _, ok := s.byKind[j.Kind()]; ok {
		panic(fmt.Sprintf("pipeline: duplicate job kind %q", j.Kind()))
	}
	s.jobs = append(s.jobs, j)
	s.byKind[j.Kind()] = j
	s.states[j.Kind()] = StatePending
}

// SetFinalizer installs the step run after all jobs finish.
func (s *Scheduler) SetFinalizer(f Finalizer) {
	s.finalize = f
}

// State returns the lifecycle state of a registered job.
func (s *Scheduler) State(k Kind) State {
	st, ok := s.states[k]
	if !ok {
		panic(fmt.Sprintf("pipeline: unknown job kind %q", k))
	}
	return st
}

// Finished reports whether the job of the given kind has run.
func (s *Scheduler) Finished(k Kind) bool {
	return s.states[k] == StateFinished
}

// Report describes one pipeline run.
type Report struct {
	Order     []Kind   `json:"order"`   // Jobs in execution order
	Batches   [][]Kind `json:"batches"` // Ready sets as they were executed
	Finalized bool     `json:"finalized"`
}

// DeadlockError names the jobs that could never become ready.
type DeadlockError struct {
	Stuck []string // Job names, sorted
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("dependency deadlock: %d job(s) can never run: %s",
		len(e.Stuck), strings.Join(e.Stuck, ", "))
}

// Run executes every job in dependency order, then the finalizer.
// On deadlock it returns the partial report and a *DeadlockError.
func (s *Scheduler) Run(g *grid.Grid, cfg *config.GenConfig, rng *rand.Rand) (*Report, error) {
	report := &Report{}
	pending := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if s.states[j.Kind()] == StatePending {
			pending = append(pending, j)
		}
	}

	for len(pending) > 0 {
		ready := s.readySet(pending)
		if len(ready) == 0 {
			err := s.deadlock(pending)
			slog.Error("pipeline deadlocked", "stuck", len(pending), "error", err)
			return report, err
		}

		slices.SortFunc(ready, compareJobs)
		batch := make([]Kind, 0, len(ready))
		for _, j := range ready {
			s.states[j.Kind()] = StateReady
			batch = append(batch, j.Kind())
		}
		report.Batches = append(report.Batches, batch)

		for _, j := range ready {
			s.states[j.Kind()] = StateRunning
			slog.Debug("job started", "job", j.Name(), "priority", j.Priority())
			j.Run(g, cfg, rng)
			s.states[j.Kind()] = StateFinished
			slog.Debug("job finished", "job", j.Name())
			report.Order = append(report.Order, j.Kind())
		}

		pending = slices.DeleteFunc(pending, func(j Job) bool {
			return s.states[j.Kind()] == StateFinished
		})
	}

	if s.finalize != nil {
		s.finalize(g)
	}
	report.Finalized = true
	return report, nil
}

func (s *Scheduler) readySet(pending []Job) []Job {
	var ready []Job
	for _, j := range pending {
		if s.dependenciesFinished(j) {
			ready = append(ready, j)
		}
	}
	return ready
}

func (s *Scheduler) dependenciesFinished(j Job) bool {
	for _, dep := range j.Dependencies() {
		if s.states[dep] != StateFinished {
			return false
		}
	}
	return true
}

func (s *Scheduler) deadlock(pending []Job) *DeadlockError {
	stuck := make([]string, 0, len(pending))
	for _, j := range pending {
		stuck = append(stuck, j.Name())
	}
	slices.Sort(stuck)
	return &DeadlockError{Stuck: stuck}
}

// compareJobs orders by priority ascending, then name ascending.
func compareJobs(a, b Job) int {
	if c := cmp.Compare(a.Priority(), b.Priority()); c != 0 {
		return c
	}
	return cmp.Compare(a.Name(), b.Name())
}

// JobInfo is one line of the pipeline summary.
type JobInfo struct {
	Name         string `json:"name"`
	Kind         Kind   `json:"kind"`
	Priority     int    `json:"priority"`
	Dependencies []Kind `json:"dependencies"`
	State        string `json:"state"`
}

// Summary lists every registered job with its priority and dependencies,
// ordered by (priority, name).
func (s *Scheduler) Summary() []JobInfo {
	jobs := slices.Clone(s.jobs)
	slices.SortFunc(jobs, compareJobs)

	out := make([]JobInfo, 0, len(jobs))
	for _, j := range jobs {
		deps := append(make([]Kind, 0, len(j.Dependencies())), j.Dependencies()...)
		slices.Sort(deps)
		out = append(out, JobInfo{
			Name:         j.Name(),
			Kind:         j.Kind(),
			Priority:     j.Priority(),
			Dependencies: deps,
			State:        s.states[j.Kind()].String(),
		})
	}
	return out
}
