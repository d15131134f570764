package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oceanum-labs/oceanrag/internal/core/domain"
	"github.com/oceanum-labs/oceanrag/internal/core/services"
)

var (
	queryLimit      int
	queryThreshold  float64
	queryDocType    string
	queryGeographic string
	queryTopic      string
	queryJSON       bool
	queryShowCtx    bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question over the ingested documents",
	Long: `Embeds the question, retrieves the most similar chunks from the vector
store, and generates an answer grounded in them. Sources are listed with
their similarity scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", services.DefaultMaxResults, "maximum number of chunks to retrieve")
	queryCmd.Flags().Float64Var(&queryThreshold, "threshold", 0, "minimum similarity score (0-1)")
	queryCmd.Flags().StringVar(&queryDocType, "doc-type", "", "restrict to a document type")
	queryCmd.Flags().StringVar(&queryGeographic, "geographic", "", "restrict to a geographic focus")
	queryCmd.Flags().StringVar(&queryTopic, "topic", "", "restrict to documents tagged with a topic")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the full response as JSON")
	queryCmd.Flags().BoolVar(&queryShowCtx, "show-context", false, "print the assembled context")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := buildPipelines(ctx); err != nil {
		return err
	}

	opts := domain.SearchOptions{
		Limit:     queryLimit,
		Threshold: queryThreshold,
		Filters: domain.SearchFilters{
			DocType:    queryDocType,
			Geographic: queryGeographic,
			Topic:      queryTopic,
		},
	}

	response := retriever.Query(ctx, args[0], opts)

	if queryJSON {
		return outputQueryJSON(cmd, response)
	}
	return outputQueryText(cmd, response)
}

func outputQueryJSON(cmd *cobra.Command, response *domain.QueryResponse) error {
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, response *domain.QueryResponse) error {
	cmd.Println(response.Answer)

	if len(response.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, source := range response.Sources {
			cmd.Printf("  %d. %s (%s) - similarity %.3f\n",
				i+1, source.Filename, source.Organization, source.SimilarityScore)
			if source.GeographicFocus != "" {
				cmd.Printf("     Region: %s\n", source.GeographicFocus)
			}
			if len(source.Topics) > 0 {
				cmd.Printf("     Topics: %s\n", strings.Join(source.Topics, ", "))
			}
		}
	}

	if queryShowCtx {
		cmd.Println()
		cmd.Println("Context:")
		cmd.Println(response.Context)
	}
	return nil
}
