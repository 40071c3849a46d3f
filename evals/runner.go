package evals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/PreiyaaKedia/agent-evaluation-v2/foundry"
)

// DefaultPollInterval is how often run status is checked.
const DefaultPollInterval = 10 * time.Second

// API is the slice of the evals surface the runner needs. Satisfied by
// *foundry.EvalsClient.
type API interface {
	CreateEval(ctx context.Context, name string, config foundry.DataSourceConfig, criteria []foundry.TestingCriterion) (*foundry.Eval, error)
	RetrieveEval(ctx context.Context, evalID string) (*foundry.Eval, error)
	CreateRun(ctx context.Context, evalID, name string, source foundry.RunDataSource, metadata map[string]string) (*foundry.EvalRun, error)
	GetRun(ctx context.Context, evalID, runID string) (*foundry.EvalRun, error)
	ListOutputItems(ctx context.Context, evalID, runID string) ([]foundry.OutputItem, error)
}

// RunSpec describes one evaluation run: which evaluation to use or create,
// and which data source to grade.
type RunSpec struct {
	// EvalID reuses an existing evaluation, for comparing runs over time.
	// When empty a new evaluation is created from EvalName, Config and
	// Criteria.
	EvalID   string
	EvalName string
	Config   foundry.DataSourceConfig
	Criteria []foundry.TestingCriterion

	RunName    string
	DataSource foundry.RunDataSource
	Metadata   map[string]string
}

// Average is one evaluator's mean score over the items it graded.
type Average struct {
	Mean  float64
	Count int
}

// Outcome is a completed run with its output items and per-evaluator
// averages.
type Outcome struct {
	Eval     *foundry.Eval
	Run      *foundry.EvalRun
	Items    []foundry.OutputItem
	Averages map[string]Average
}

// Runner drives evaluation runs to completion.
type Runner struct {
	API          API
	PollInterval time.Duration
	Logger       zerolog.Logger
}

// Run resolves the evaluation, starts a run, polls it to a terminal
// status, and aggregates scores. A failed run is an error.
func (r *Runner) Run(ctx context.Context, spec RunSpec) (*Outcome, error) {
	interval := r.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var (
		eval *foundry.Eval
		err  error
	)
	if spec.EvalID != "" {
		eval, err = r.API.RetrieveEval(ctx, spec.EvalID)
		if err != nil {
			return nil, fmt.Errorf("retrieve evaluation %s: %w", spec.EvalID, err)
		}
		r.Logger.Info().Str("eval_id", eval.ID).Str("name", eval.Name).Msg("reusing existing evaluation")
	} else {
		eval, err = r.API.CreateEval(ctx, spec.EvalName, spec.Config, spec.Criteria)
		if err != nil {
			return nil, fmt.Errorf("create evaluation: %w", err)
		}
	}

	run, err := r.API.CreateRun(ctx, eval.ID, spec.RunName, spec.DataSource, spec.Metadata)
	if err != nil {
		return nil, fmt.Errorf("create evaluation run: %w", err)
	}

	run, err = r.wait(ctx, eval.ID, run.ID, interval)
	if err != nil {
		return nil, err
	}
	if run.Status == "failed" {
		return nil, fmt.Errorf("evaluation run %s failed: %s", run.ID, string(run.Error))
	}

	items, err := r.API.ListOutputItems(ctx, eval.ID, run.ID)
	if err != nil {
		return nil, fmt.Errorf("list output items: %w", err)
	}

	return &Outcome{
		Eval:     eval,
		Run:      run,
		Items:    items,
		Averages: AggregateScores(items),
	}, nil
}

func (r *Runner) wait(ctx context.Context, evalID, runID string, interval time.Duration) (*foundry.EvalRun, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		run, err := r.API.GetRun(ctx, evalID, runID)
		if err != nil {
			return nil, fmt.Errorf("get evaluation run: %w", err)
		}
		if run.Finished() {
			return run, nil
		}
		r.Logger.Info().Str("status", run.Status).Msg("waiting for evaluation run")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// AggregateScores averages scores per evaluator across items. Items or
// scores with a nil score are skipped.
func AggregateScores(items []foundry.OutputItem) map[string]Average {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, item := range items {
		for _, score := range item.Scores {
			if score.Score == nil {
				continue
			}
			sums[score.Name] += *score.Score
			counts[score.Name]++
		}
	}

	averages := make(map[string]Average, len(sums))
	for name, sum := range sums {
		averages[name] = Average{Mean: sum / float64(counts[name]), Count: counts[name]}
	}
	return averages
}

// SortedNames returns the evaluator names of an averages map in stable
// order for reporting.
func SortedNames(averages map[string]Average) []string {
	names := make([]string, 0, len(averages))
	for name := range averages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
