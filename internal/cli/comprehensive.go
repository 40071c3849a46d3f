package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	agenteval "github.com/PreiyaaKedia/agent-evaluation-v2"
	"github.com/PreiyaaKedia/agent-evaluation-v2/evals"
	"github.com/PreiyaaKedia/agent-evaluation-v2/foundry"
)

// weatherTool is a canned weather lookup used by the demo agents.
type weatherTool struct{}

func (weatherTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "get_weather",
		Description: "Get weather information for a location",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"location": map[string]any{"type": "string", "description": "The city name"},
			},
			"required": []string{"location"},
		},
	}
}

func (weatherTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		Location string `json:"location"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}

	canned := map[string]map[string]any{
		"New York":      {"temperature": "72°F", "condition": "Sunny", "humidity": "45%"},
		"Seattle":       {"temperature": "58°F", "condition": "Rainy", "humidity": "80%"},
		"San Francisco": {"temperature": "65°F", "condition": "Foggy", "humidity": "70%"},
		"Chicago":       {"temperature": "55°F", "condition": "Cloudy", "humidity": "60%"},
	}
	if report, ok := canned[in.Location]; ok {
		return report, nil
	}
	return map[string]any{"temperature": "70°F", "condition": "Clear", "humidity": "50%"}, nil
}

// databaseTool fabricates search results for any query.
type databaseTool struct{}

func (databaseTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "search_database",
		Description: "Search database for information",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "The search query"},
				"table": map[string]any{"type": "string", "description": "The table to search"},
			},
			"required": []string{"query", "table"},
		},
	}
}

func (databaseTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		Query string `json:"query"`
		Table string `json:"table"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return map[string]any{
		"results": []any{
			map[string]any{"id": 1, "data": fmt.Sprintf("Result 1 for '%s' in %s", in.Query, in.Table)},
			map[string]any{"id": 2, "data": fmt.Sprintf("Result 2 for '%s' in %s", in.Query, in.Table)},
		},
		"count": 2,
	}, nil
}

// demoEmailTool acknowledges a send without delivering anything.
type demoEmailTool struct{}

func (demoEmailTool) Spec() agenteval.ToolSpec {
	return agenteval.ToolSpec{
		Name:        "send_email",
		Description: "Send an email",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"to":      map[string]any{"type": "string", "description": "Recipient email address"},
				"subject": map[string]any{"type": "string", "description": "Email subject"},
				"body":    map[string]any{"type": "string", "description": "Email body"},
			},
			"required": []string{"to", "subject", "body"},
		},
	}
}

func (demoEmailTool) Execute(_ context.Context, args json.RawMessage) (map[string]any, error) {
	var in struct {
		To string `json:"to"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return map[string]any{
		"status":    "sent",
		"message":   fmt.Sprintf("Email successfully sent to %s", in.To),
		"timestamp": time.Now().Format("2006-01-02 15:04:05"),
	}, nil
}

// NewComprehensiveCmd builds the end-to-end demo: two throwaway agents,
// four captured test cases, and one combined evaluation over all of them.
func NewComprehensiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comprehensive",
		Short: "Run the self-contained capture-and-evaluate demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := connect()
			if err != nil {
				return err
			}
			return runComprehensive(cmd.Context(), cl)
		},
	}
}

func runComprehensive(ctx context.Context, cl *clients) error {
	weatherReg := agenteval.NewRegistry(weatherTool{})
	multiReg := agenteval.NewRegistry(databaseTool{}, demoEmailTool{})

	weatherAgent, err := cl.project.CreateAgentVersion(ctx, "WeatherAgent", foundry.AgentDefinition{
		Model:        cl.cfg.ModelDeployment,
		Instructions: "You are a helpful assistant that can check weather information.",
		Tools:        functionTools(weatherReg),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := cl.project.DeleteAgentVersion(ctx, weatherAgent.Name, weatherAgent.Version); err != nil {
			cl.logger.Warn().Err(err).Msg("weather agent cleanup failed")
		}
	}()

	multiAgent, err := cl.project.CreateAgentVersion(ctx, "MultiToolAgent", foundry.AgentDefinition{
		Model:        cl.cfg.ModelDeployment,
		Instructions: "You are a helpful assistant that can search databases and send emails.",
		Tools:        functionTools(multiReg),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := cl.project.DeleteAgentVersion(ctx, multiAgent.Name, multiAgent.Version); err != nil {
			cl.logger.Warn().Err(err).Msg("multi-tool agent cleanup failed")
		}
	}()

	responses := foundry.NewResponsesClient(cl.openai, cl.logger)
	weatherDriver := &agenteval.Driver{Client: responses, Registry: weatherReg, Logger: cl.logger}
	multiDriver := &agenteval.Driver{Client: responses, Registry: multiReg, Logger: cl.logger}

	weatherDefs := weatherReg.Definitions()

	type capture struct {
		driver         *agenteval.Driver
		agent          string
		query          string
		defs           []agenteval.ToolDefinition
		contextDefault string
		// plainText records the response as a bare string instead of a
		// transcript, exercising the evaluators' string input shape.
		plainText bool
	}
	captures := []capture{
		{weatherDriver, weatherAgent.Name, "What's the weather like in New York?", weatherDefs, "Weather information for major cities", false},
		{multiDriver, multiAgent.Name, "Search for customer orders in the orders table and send an email to customer@example.com with subject 'Order Update' and body 'Your order has been processed'", multiReg.Definitions(), "Customer order management system", false},
		{weatherDriver, weatherAgent.Name, "What's the weather in Seattle?", weatherDefs, "Weather information for Seattle", false},
		{weatherDriver, weatherAgent.Name, "Hello! Can you tell me what tools you have available?", weatherDefs, "General conversation about available tools", true},
	}

	var records []agenteval.Record
	for _, c := range captures {
		result, err := c.driver.Run(ctx, agenteval.RunInput{AgentName: c.agent, Query: c.query})
		if err != nil {
			return fmt.Errorf("test case %q: %w", c.query, err)
		}
		rec := result.Record(c.defs)
		if c.plainText {
			rec.Response = agenteval.ResponseField{Text: result.ResponseText}
		}
		if rec.Context == "" {
			rec.Context = c.contextDefault
		}
		records = append(records, rec)
	}

	datasetFile := filepath.Join(os.TempDir(), fmt.Sprintf("comprehensive-%d.jsonl", time.Now().Unix()))
	if err := agenteval.WriteRecords(datasetFile, records); err != nil {
		return err
	}
	defer os.Remove(datasetFile)

	datasetName := cl.cfg.DatasetName
	if datasetName == "" {
		datasetName = fmt.Sprintf("agent-eval-%s", time.Now().UTC().Format("20060102_150405"))
	}
	dataset, err := cl.project.UploadDataset(ctx, datasetName, cl.cfg.DatasetVersion, datasetFile)
	if err != nil {
		return err
	}

	runner := &evals.Runner{API: cl.evals, PollInterval: 5 * time.Second, Logger: cl.logger}
	outcome, err := runner.Run(ctx, evals.RunSpec{
		EvalName:   fmt.Sprintf("Comprehensive Agent Evaluation - %s", datasetName),
		Config:     evals.UnifiedDataSourceConfig(),
		Criteria:   evals.BuildTestingCriteria(nil, cl.cfg.ModelDeployment, cl.logger),
		RunName:    fmt.Sprintf("comprehensive_run_%s", time.Now().UTC().Format("20060102_150405")),
		DataSource: foundry.NewJSONLRunDataSource(dataset.ID),
		Metadata: map[string]string{
			"dataset":    datasetName,
			"test_cases": fmt.Sprintf("%d", len(records)),
		},
	})
	if err != nil {
		return err
	}

	fmt.Println("Evaluation summary")
	fmt.Printf("  Dataset: %s (id: %s)\n", datasetName, dataset.ID)
	fmt.Printf("  Test cases: %d\n", len(records))
	fmt.Printf("  Evaluation ID: %s\n", outcome.Eval.ID)
	fmt.Printf("  Run ID: %s\n", outcome.Run.ID)
	fmt.Printf("  Status: %s\n", outcome.Run.Status)
	for _, name := range evals.SortedNames(outcome.Averages) {
		avg := outcome.Averages[name]
		fmt.Printf("  %-30s: %.2f (avg of %d items)\n", name, avg.Mean, avg.Count)
	}
	if outcome.Run.ReportURL != "" {
		fmt.Printf("  Report: %s\n", outcome.Run.ReportURL)
	}
	if len(outcome.Items) > 0 {
		sample, err := json.MarshalIndent(outcome.Items[0], "", "  ")
		if err == nil {
			fmt.Printf("\nSample output item:\n%s\n", sample)
		}
	}
	return nil
}

func functionTools(registry *agenteval.Registry) []map[string]any {
	var tools []map[string]any
	for _, def := range registry.Definitions() {
		tools = append(tools, map[string]any{
			"type":        def.Type,
			"name":        def.Name,
			"description": def.Description,
			"parameters":  def.Parameters,
		})
	}
	return tools
}
