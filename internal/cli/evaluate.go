package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/PreiyaaKedia/agent-evaluation-v2/evals"
	"github.com/PreiyaaKedia/agent-evaluation-v2/foundry"
)

// NewEvaluateCmd builds the evaluation command: it uploads the generated
// dataset and grades it with every builtin agentic evaluator.
func NewEvaluateCmd() *cobra.Command {
	var evaluators []string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Upload the dataset and run the agentic evaluators against it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := connect()
			if err != nil {
				return err
			}
			return runEvaluate(cmd.Context(), cl, evaluators)
		},
	}
	cmd.Flags().StringSliceVar(&evaluators, "evaluators", nil, "Evaluators to run (default: all)")
	return cmd
}

func runEvaluate(ctx context.Context, cl *clients, evaluators []string) error {
	if _, err := os.Stat(cl.cfg.DatasetFile); err != nil {
		return fmt.Errorf("dataset file %s not found, run generate first: %w", cl.cfg.DatasetFile, err)
	}

	datasetName := cl.cfg.DatasetName
	if datasetName == "" {
		datasetName = fmt.Sprintf("contoso-agent-eval-%s", time.Now().UTC().Format("2006-01-02_150405_UTC"))
	}

	dataset, err := cl.project.UploadDataset(ctx, datasetName, cl.cfg.DatasetVersion, cl.cfg.DatasetFile)
	if err != nil {
		return err
	}

	runner := &evals.Runner{API: cl.evals, Logger: cl.logger}
	outcome, err := runner.Run(ctx, evals.RunSpec{
		EvalID:     cl.cfg.EvalID,
		EvalName:   fmt.Sprintf("Contoso Agent Evaluation - %s", datasetName),
		Config:     evals.UnifiedDataSourceConfig(),
		Criteria:   evals.BuildTestingCriteria(evaluators, cl.cfg.ModelDeployment, cl.logger),
		RunName:    fmt.Sprintf("run-%s", time.Now().UTC().Format("20060102_150405")),
		DataSource: foundry.NewJSONLRunDataSource(dataset.ID),
		Metadata: map[string]string{
			"team":         "contoso-electronics",
			"scenario":     "comprehensive-agent-evaluation",
			"dataset_file": cl.cfg.DatasetFile,
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("Evaluation results (%d items):\n", len(outcome.Items))
	for _, name := range evals.SortedNames(outcome.Averages) {
		avg := outcome.Averages[name]
		fmt.Printf("  %-30s: %.2f (avg of %d items)\n", name, avg.Mean, avg.Count)
	}
	fmt.Printf("\nDataset: %s (v%s)\n", dataset.Name, dataset.Version)
	fmt.Printf("Evaluation ID: %s\n", outcome.Eval.ID)
	fmt.Printf("Run ID: %s\n", outcome.Run.ID)
	if outcome.Run.ReportURL != "" {
		fmt.Printf("Report: %s\n", outcome.Run.ReportURL)
	}
	return nil
}
