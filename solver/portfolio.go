package solver

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	somaserrors "github.com/somasolver/somas/pkg/errors"
	"github.com/somasolver/somas/pkg/parallel"
	"github.com/somasolver/somas/pkg/utils"
)

var tracer = otel.Tracer("somasolver/somas/solver")

// Status is the two-state outcome of a Solve call.
type Status int

const (
	// StatusSuccess means descriptors were updated with a feasible layout.
	StatusSuccess Status = iota
	// StatusFailed means no portfolio pass produced a usable layout.
	StatusFailed
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "SUCCESS"
	}
	return "FAILED"
}

// Summary is the post-solve report: everything the CLI and audit log
// need to describe the winning pass.
type Summary struct {
	Status         Status
	BestIndex      int
	BestBytes      int64
	WorstBytes     int64
	LifelongBytes  int64
	Algorithm      Algorithm
	Sort           SortStrategy
	Fit            FitStrategy
	ElapsedMicros  int64
	SpreadPercent  float64
	TensorCount    int
	Verified       bool
	PhaseMicros    map[string]int64
}

// Options configures a Solve call.
type Options struct {
	Workers        int
	ThresholdBytes int64
	Verify         bool
	Logger         utils.Logger
	Timer          *utils.Timer
}

// Option mutates an Options value.
type Option func(*Options)

// WithWorkers sets the worker pool size. Default: runtime-derived.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// WithThresholdBytes overrides the Selector's many-objects bias margin.
func WithThresholdBytes(n int64) Option {
	return func(o *Options) { o.ThresholdBytes = n }
}

// WithVerify toggles the post-placement verification sweep.
func WithVerify(v bool) Option {
	return func(o *Options) { o.Verify = v }
}

// WithLogger attaches a logger for --INFO--/--WARNING--/--EXCEPTION-- lines.
func WithLogger(l utils.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithTimer attaches a phase timer.
func WithTimer(t *utils.Timer) Option {
	return func(o *Options) { o.Timer = t }
}

type portfolioJob struct {
	clone TensorMap
	core  Core
}

// Solve fans the strategy portfolio out over a worker pool, clones
// descriptors once per (sort, fit, algorithm) combination, installs
// contiguity links, waits for every pass to finish, applies the
// Selector, and copies the winning offsets back into descriptors.
func Solve(ctx context.Context, descriptors TensorMap, model *ConflictModel, chains []Chain, opts ...Option) (*Summary, error) {
	ctx, span := tracer.Start(ctx, "solver.Solve", trace.WithAttributes(
		attribute.Int("somas.tensor_count", len(descriptors)),
		attribute.Int("somas.chain_count", len(chains)),
	))
	defer span.End()

	cfg := Options{Verify: true, Logger: &utils.NullLogger{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := utils.NewSolverLogger(cfg.Logger)

	var linkTimer *utils.PhaseTimer
	if cfg.Timer != nil {
		linkTimer = cfg.Timer.Start("link_chains")
	}

	var invalidIDs []int
	warned := false
	jobs := make([]portfolioJob, 0, len(AllAlgorithms)*len(AllSortStrategies)*len(AllFitStrategies))
	for _, algo := range AllAlgorithms {
		for _, sortStrat := range AllSortStrategies {
			for _, fit := range AllFitStrategies {
				clone := descriptors.Clone()
				onWarn := func(msg string) {
					if !warned {
						log.Warn("%s", msg)
						warned = true
					}
				}
				onInvalid := func(id int) {
					invalidIDs = append(invalidIDs, id)
				}
				LinkChains(clone, chains, onWarn, onInvalid)
				jobs = append(jobs, portfolioJob{
					clone: clone,
					core:  Core{Sort: sortStrat, Fit: fit, Algorithm: algo, Verify: cfg.Verify},
				})
			}
		}
	}
	if linkTimer != nil {
		linkTimer.Stop()
	}

	if len(invalidIDs) > 0 {
		log.Exception("contiguity chain references missing tensor ids: %v", invalidIDs)
		err := somaserrors.Wrap(somaserrors.CodeContiguityInvalidNeighbour,
			fmt.Sprintf("contiguity chain references missing tensor ids: %v", invalidIDs), nil)
		span.RecordError(err)
		return nil, err
	}

	poolCfg := parallel.DefaultPoolConfig()
	if cfg.Workers > 0 {
		poolCfg = poolCfg.WithWorkers(cfg.Workers)
	}
	pool := parallel.NewWorkerPool[portfolioJob, *Result](poolCfg)

	var fanoutTimer *utils.PhaseTimer
	if cfg.Timer != nil {
		fanoutTimer = cfg.Timer.Start("portfolio_fanout")
	}
	taskResults := pool.ExecuteFunc(ctx, jobs, func(ctx context.Context, job portfolioJob) (*Result, error) {
		r := job.core.Run(job.clone, model)
		return &r, nil
	})
	if fanoutTimer != nil {
		fanoutTimer.Stop()
	}

	results := make([]*Result, len(taskResults))
	for i, tr := range taskResults {
		results[i] = tr.Result
	}

	var selectTimer *utils.PhaseTimer
	if cfg.Timer != nil {
		selectTimer = cfg.Timer.Start("select")
	}
	selector := Selector{ThresholdBytes: cfg.ThresholdBytes}
	outcome := selector.Select(results)
	if selectTimer != nil {
		selectTimer.Stop()
	}

	if outcome.Best == nil {
		log.Exception("all %d portfolio passes failed", len(jobs))
		err := somaserrors.Wrap(somaserrors.CodeSolverInternal, "no portfolio pass produced a usable layout", nil)
		span.RecordError(err)
		return nil, err
	}

	for id, t := range descriptors {
		t.Offset = outcome.Best.Tensors[id].Offset
	}

	spread := 0.0
	if outcome.Best.UpperBound > 0 {
		spread = float64(outcome.WorstSize-outcome.Best.UpperBound) / float64(outcome.Best.UpperBound) * 100
	}

	summary := &Summary{
		Status:        StatusSuccess,
		BestIndex:     outcome.BestIndex,
		BestBytes:     outcome.Best.UpperBound,
		WorstBytes:    outcome.WorstSize,
		LifelongBytes: outcome.Best.LifelongMemory,
		Algorithm:     outcome.Best.Algorithm,
		Sort:          outcome.Best.Sort,
		Fit:           outcome.Best.Fit,
		ElapsedMicros: outcome.Best.Elapsed.Microseconds(),
		SpreadPercent: spread,
		TensorCount:   len(descriptors),
		Verified:      cfg.Verify,
	}
	if cfg.Timer != nil {
		summary.PhaseMicros = cfg.Timer.PhaseMicroseconds()
	}

	span.SetAttributes(
		attribute.Int64("somas.best_bytes", summary.BestBytes),
		attribute.String("somas.algorithm", summary.Algorithm.String()),
	)

	LogSummary(log, summary)
	return summary, nil
}
