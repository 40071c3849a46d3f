// Package cli wires the evaluation workflows into a command tree: dataset
// generation, dataset-backed evaluation, the self-contained comprehensive
// demo, and cluster insight generation.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/openai/openai-go/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/PreiyaaKedia/agent-evaluation-v2/foundry"
)

// Config is the environment-driven configuration shared by all commands.
type Config struct {
	ProjectEndpoint      string `envconfig:"AZURE_AI_PROJECT_ENDPOINT" required:"true"`
	ModelDeployment      string `envconfig:"AZURE_AI_MODEL_DEPLOYMENT_NAME" default:"gpt-4.1"`
	AgentModelDeployment string `envconfig:"AGENT_MODEL_DEPLOYMENT_NAME"`

	DatasetName    string `envconfig:"DATASET_NAME"`
	DatasetVersion string `envconfig:"DATASET_VERSION" default:"1"`
	DatasetFile    string `envconfig:"DATASET_FILE" default:"generated_test_dataset.jsonl"`

	// EvalID reuses an existing evaluation so runs can be compared.
	EvalID string `envconfig:"EVAL_ID"`

	SearchIndexName    string `envconfig:"AI_SEARCH_INDEX_NAME"`
	SearchConnectionID string `envconfig:"AI_SEARCH_PROJECT_CONNECTION_ID"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// AgentModel is the deployment agents run on, falling back to the
// evaluation model deployment.
func (c *Config) AgentModel() string {
	if c.AgentModelDeployment != "" {
		return c.AgentModelDeployment
	}
	return c.ModelDeployment
}

func loadConfig() (*Config, error) {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func newLogger(cfg *Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// clients bundles everything a workflow command talks to.
type clients struct {
	cfg     *Config
	logger  zerolog.Logger
	project *foundry.ProjectClient
	openai  openai.Client
	evals   *foundry.EvalsClient
}

func connect() (*clients, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	tokens, err := foundry.NewTokenSource()
	if err != nil {
		return nil, err
	}
	oc := foundry.NewOpenAIClient(cfg.ProjectEndpoint, tokens)
	return &clients{
		cfg:     cfg,
		logger:  logger,
		project: foundry.NewProjectClient(cfg.ProjectEndpoint, tokens, logger),
		openai:  oc,
		evals:   foundry.NewEvalsClient(oc, logger),
	}, nil
}

// NewRootCmd constructs the base command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agenteval",
		Short:         "Generate agent test datasets and run managed evaluations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewEvaluateCmd())
	cmd.AddCommand(NewComprehensiveCmd())
	cmd.AddCommand(NewInsightsCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
