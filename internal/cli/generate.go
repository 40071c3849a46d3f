package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	agenteval "github.com/PreiyaaKedia/agent-evaluation-v2"
	"github.com/PreiyaaKedia/agent-evaluation-v2/contoso"
	"github.com/PreiyaaKedia/agent-evaluation-v2/foundry"
)

const generateAgentName = "ContosoElectronicsAgent"

// queryPacing spaces consecutive agent queries to stay under rate limits.
const queryPacing = time.Second

// NewGenerateCmd builds the dataset generation command: it stands up a
// fully tooled agent, drives the canned queries through it, and writes the
// captured interactions as a JSONL dataset.
func NewGenerateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a test dataset by driving queries through a tooled agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := connect()
			if err != nil {
				return err
			}
			if output == "" {
				output = cl.cfg.DatasetFile
			}
			return runGenerate(cmd.Context(), cl, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output dataset path (default: DATASET_FILE)")
	return cmd
}

func runGenerate(ctx context.Context, cl *clients, output string) error {
	registry := contoso.NewRegistry(contoso.DefaultData())

	vectorStoreID, err := foundry.CreateVectorStore(ctx, cl.openai, "ContosoElectronicsDocuments", contoso.DocumentPaths, cl.logger)
	if vectorStoreID != "" {
		defer foundry.DeleteVectorStore(ctx, cl.openai, vectorStoreID, cl.logger)
	}
	if err != nil {
		return err
	}

	agent, err := cl.project.CreateAgentVersion(ctx, generateAgentName, foundry.AgentDefinition{
		Model:        cl.cfg.AgentModel(),
		Instructions: contoso.Instructions,
		Tools:        agentTools(cl, registry, vectorStoreID),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := cl.project.DeleteAgentVersion(ctx, agent.Name, agent.Version); err != nil {
			cl.logger.Warn().Err(err).Msg("agent cleanup failed")
		}
	}()

	driver := &agenteval.Driver{
		Client:   foundry.NewResponsesClient(cl.openai, cl.logger),
		Registry: registry,
		Logger:   cl.logger,
	}
	defs := registry.Definitions()

	var records []agenteval.Record
	for i, query := range contoso.TestQueries {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(queryPacing):
			}
		}
		result, err := driver.Run(ctx, agenteval.RunInput{AgentName: agent.Name, Query: query})
		if err != nil {
			cl.logger.Error().Err(err).Str("query", query).Msg("query failed, skipping")
			continue
		}
		records = append(records, result.Record(defs))
	}

	if err := agenteval.WriteRecords(output, records); err != nil {
		return err
	}
	cl.logger.Info().Int("records", len(records)).Str("file", output).Msg("dataset generated")
	fmt.Printf("Generated %d test cases\nSaved to: %s\n", len(records), output)
	return nil
}

// agentTools assembles the agent's tool list: every simulated function,
// file search over the uploaded documents, and Azure AI Search when an
// index is configured.
func agentTools(cl *clients, registry *agenteval.Registry, vectorStoreID string) []map[string]any {
	tools := functionTools(registry)

	tools = append(tools, map[string]any{
		"type":             "file_search",
		"vector_store_ids": []string{vectorStoreID},
	})

	if cl.cfg.SearchIndexName != "" && cl.cfg.SearchConnectionID != "" {
		tools = append(tools, map[string]any{
			"type": "azure_ai_search",
			"azure_ai_search": map[string]any{
				"indexes": []map[string]any{{
					"project_connection_id": cl.cfg.SearchConnectionID,
					"index_name":            cl.cfg.SearchIndexName,
					"query_type":            "simple",
				}},
			},
		})
	} else {
		cl.logger.Warn().Msg("azure ai search not configured, agent will rely on file search only")
	}
	return tools
}
