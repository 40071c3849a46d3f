package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/PreiyaaKedia/agent-evaluation-v2/foundry"
)

// NewInsightsCmd builds the cluster-insights command over completed
// evaluation runs.
func NewInsightsCmd() *cobra.Command {
	var (
		evalID      string
		runIDs      []string
		displayName string
	)

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Generate cluster insights from completed evaluation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := connect()
			if err != nil {
				return err
			}
			if evalID == "" {
				evalID = cl.cfg.EvalID
			}
			if evalID == "" {
				return fmt.Errorf("an evaluation ID is required (--eval-id or EVAL_ID)")
			}
			if len(runIDs) == 0 {
				return fmt.Errorf("at least one run ID is required (--run-id)")
			}
			return runInsights(cmd.Context(), cl, evalID, runIDs, displayName)
		},
	}
	cmd.Flags().StringVar(&evalID, "eval-id", "", "Evaluation ID (default: EVAL_ID)")
	cmd.Flags().StringSliceVar(&runIDs, "run-id", nil, "Evaluation run IDs to analyze (repeatable)")
	cmd.Flags().StringVar(&displayName, "display-name", "Contoso Agent Evaluation Cluster Analysis", "Display name for the insight")
	return cmd
}

func runInsights(ctx context.Context, cl *clients, evalID string, runIDs []string, displayName string) error {
	insight, err := cl.project.GenerateInsight(ctx, foundry.InsightRequest{
		DisplayName:         displayName,
		EvalID:              evalID,
		RunIDs:              runIDs,
		ModelDeploymentName: cl.cfg.ModelDeployment,
	})
	if err != nil {
		return err
	}

	insight, err = cl.project.WaitForInsight(ctx, insight.ID, 5*time.Second)
	if err != nil {
		return err
	}
	if insight.State != foundry.StateSucceeded {
		return fmt.Errorf("insight generation %s failed: %s", insight.ID, insight.Error)
	}

	fmt.Printf("Cluster insights generated (id: %s)\n", insight.ID)
	if len(insight.Result) > 0 {
		pretty, err := json.MarshalIndent(json.RawMessage(insight.Result), "", "  ")
		if err == nil {
			fmt.Println(string(pretty))
		}
	}
	return nil
}
