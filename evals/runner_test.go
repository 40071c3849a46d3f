package evals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PreiyaaKedia/agent-evaluation-v2/foundry"
)

func f64(v float64) *float64 { return &v }

type fakeAPI struct {
	created       *foundry.Eval
	retrieved     string
	runStatuses   []string
	statusCalls   int
	items         []foundry.OutputItem
	createRunName string
}

func (f *fakeAPI) CreateEval(_ context.Context, name string, _ foundry.DataSourceConfig, _ []foundry.TestingCriterion) (*foundry.Eval, error) {
	f.created = &foundry.Eval{ID: "eval_new", Name: name}
	return f.created, nil
}

func (f *fakeAPI) RetrieveEval(_ context.Context, evalID string) (*foundry.Eval, error) {
	f.retrieved = evalID
	return &foundry.Eval{ID: evalID, Name: "existing"}, nil
}

func (f *fakeAPI) CreateRun(_ context.Context, _, name string, _ foundry.RunDataSource, _ map[string]string) (*foundry.EvalRun, error) {
	f.createRunName = name
	return &foundry.EvalRun{ID: "run_1", Name: name, Status: "queued"}, nil
}

func (f *fakeAPI) GetRun(_ context.Context, _, runID string) (*foundry.EvalRun, error) {
	status := f.runStatuses[f.statusCalls]
	if f.statusCalls < len(f.runStatuses)-1 {
		f.statusCalls++
	}
	return &foundry.EvalRun{ID: runID, Status: status, ReportURL: "https://example.com/report"}, nil
}

func (f *fakeAPI) ListOutputItems(context.Context, string, string) ([]foundry.OutputItem, error) {
	return f.items, nil
}

func TestRunnerCreatesEvalAndAggregates(t *testing.T) {
	api := &fakeAPI{
		runStatuses: []string{"queued", "in_progress", "completed"},
		items: []foundry.OutputItem{
			{Scores: []foundry.Score{{Name: "fluency", Score: f64(4)}, {Name: "coherence", Score: f64(5)}}},
			{Scores: []foundry.Score{{Name: "fluency", Score: f64(2)}, {Name: "coherence", Score: nil}}},
		},
	}
	runner := &Runner{API: api, PollInterval: time.Millisecond, Logger: zerolog.Nop()}

	outcome, err := runner.Run(context.Background(), RunSpec{
		EvalName:   "contoso-eval",
		Config:     UnifiedDataSourceConfig(),
		Criteria:   BuildTestingCriteria([]string{"fluency", "coherence"}, "gpt-4.1", zerolog.Nop()),
		RunName:    "run-test",
		DataSource: foundry.NewJSONLRunDataSource("file_123"),
	})
	require.NoError(t, err)

	assert.Equal(t, "eval_new", outcome.Eval.ID)
	assert.Equal(t, "completed", outcome.Run.Status)
	assert.Len(t, outcome.Items, 2)

	require.Contains(t, outcome.Averages, "fluency")
	assert.Equal(t, Average{Mean: 3, Count: 2}, outcome.Averages["fluency"])
	assert.Equal(t, Average{Mean: 5, Count: 1}, outcome.Averages["coherence"])
	assert.Equal(t, []string{"coherence", "fluency"}, SortedNames(outcome.Averages))
}

func TestRunnerReusesExistingEval(t *testing.T) {
	api := &fakeAPI{runStatuses: []string{"completed"}}
	runner := &Runner{API: api, PollInterval: time.Millisecond, Logger: zerolog.Nop()}

	outcome, err := runner.Run(context.Background(), RunSpec{
		EvalID:     "eval_existing",
		RunName:    "run-compare",
		DataSource: foundry.NewJSONLRunDataSource("file_456"),
	})
	require.NoError(t, err)
	assert.Equal(t, "eval_existing", api.retrieved)
	assert.Nil(t, api.created, "must not create a new evaluation when reusing")
	assert.Equal(t, "eval_existing", outcome.Eval.ID)
}

func TestRunnerFailedRunIsError(t *testing.T) {
	api := &fakeAPI{runStatuses: []string{"in_progress", "failed"}}
	runner := &Runner{API: api, PollInterval: time.Millisecond, Logger: zerolog.Nop()}

	_, err := runner.Run(context.Background(), RunSpec{
		EvalName:   "contoso-eval",
		RunName:    "run-fail",
		DataSource: foundry.NewJSONLRunDataSource("file_789"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
}

func TestRunnerHonorsContextCancellation(t *testing.T) {
	api := &fakeAPI{runStatuses: []string{"in_progress"}}
	runner := &Runner{API: api, PollInterval: 50 * time.Millisecond, Logger: zerolog.Nop()}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := runner.Run(ctx, RunSpec{
		EvalName:   "contoso-eval",
		RunName:    "run-cancel",
		DataSource: foundry.NewJSONLRunDataSource("file_000"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestAggregateScoresEmptyItems(t *testing.T) {
	averages := AggregateScores(nil)
	assert.Empty(t, averages)
}
