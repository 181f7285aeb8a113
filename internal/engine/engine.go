// Package engine implements the narrative simulation: the timeline phase
// machine, periodic processes, stochastic health-issue generator, milestone
// detector, proactive trigger resolver, and the member behavior process.
// All processes share one SimulationState under the cooperative scheduler's
// single-threaded discipline; collaborator calls (response generation and
// routing) go through the llm interfaces and never halt the run.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/venkat299/healthsim/internal/config"
	"github.com/venkat299/healthsim/internal/llm"
	"github.com/venkat299/healthsim/internal/models"
	"github.com/venkat299/healthsim/internal/sim"
)

// Timeline phases.
const (
	PhaseOnboarding   = "Onboarding"
	PhaseIntervention = "Intervention"
)

// Engine wires configuration, shared state, the RNG, and the collaborator
// client into a runnable simulation.
type Engine struct {
	cfg    *config.Config
	state  *models.SimulationState
	rng    *rand.Rand
	log    *slog.Logger
	client llm.Client

	// ctx is the run context handed to collaborator calls.
	ctx context.Context
	env *sim.Env
}

// New builds an engine. client may be nil, in which case the run executes
// in pure discrete-event mode: the trigger resolver and member process are
// not spawned.
func New(cfg *config.Config, client llm.Client, logger *slog.Logger) *Engine {
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		state:  models.NewState(cfg.Member, cfg.Simulation.Travel.HomeBase, cfg.Simulation.ParsedStartDate()),
		rng:    rand.New(rand.NewSource(seed)),
		log:    logger,
		client: client,
	}
}

// State exposes the shared world state. Before Run it is the initial
// state; after Run it holds the full event log.
func (e *Engine) State() *models.SimulationState {
	return e.state
}

// Run executes the simulation to its configured horizon and returns the
// final state. Process registration order is fixed: timeline, vitals,
// health issues, milestones, trigger resolver, member. Events scheduled
// for the same simulated day are logged in that order.
func (e *Engine) Run(ctx context.Context) *models.SimulationState {
	e.ctx = ctx
	e.env = sim.NewEnv()
	e.env.OnAdvance = func(now float64) {
		e.state.CurrentDay = now
	}

	e.state.LogEvent(models.EventSimStart, models.SourceCore, map[string]any{
		"message": "Simulation starting.",
	})

	e.env.Spawn("timeline", e.timelineProcess)
	e.env.Spawn("vitals", e.vitalsProcess)
	e.env.Spawn("health-issues", e.healthIssuesProcess)
	e.env.Spawn("milestones", e.milestoneProcess)
	if e.client != nil {
		e.env.Spawn("trigger-resolver", e.triggerProcess)
		e.env.Spawn("member", e.memberProcess)
	}

	horizon := e.cfg.Simulation.DurationDays
	e.log.Info("simulation starting", "horizon_days", horizon, "llm_enabled", e.client != nil)
	e.env.Run(horizon)

	e.state.LogEvent(models.EventSimEnd, models.SourceCore, map[string]any{
		"message": fmt.Sprintf("Simulation ended at day %.2f.", e.env.Now()),
	})
	e.log.Info("simulation complete", "events", len(e.state.EventLog))
	return e.state
}

// uniform draws from [min, max).
func (e *Engine) uniform(min, max float64) float64 {
	return min + e.rng.Float64()*(max-min)
}

// uniformInt draws from [min, max] inclusive.
func (e *Engine) uniformInt(min, max int) int {
	return min + e.rng.Intn(max-min+1)
}
