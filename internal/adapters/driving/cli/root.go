// Package cli implements the oceanrag command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oceanum-labs/oceanrag/internal/adapters/driven/config/file"
	"github.com/oceanum-labs/oceanrag/internal/adapters/driven/embedding/openai"
	pdfextractor "github.com/oceanum-labs/oceanrag/internal/adapters/driven/extractor/unipdf"
	llmopenai "github.com/oceanum-labs/oceanrag/internal/adapters/driven/llm/openai"
	"github.com/oceanum-labs/oceanrag/internal/adapters/driven/storage/postgres"
	"github.com/oceanum-labs/oceanrag/internal/adapters/driven/tokens/tiktoken"
	"github.com/oceanum-labs/oceanrag/internal/chunker"
	"github.com/oceanum-labs/oceanrag/internal/core/domain"
	"github.com/oceanum-labs/oceanrag/internal/core/ports/driven"
	"github.com/oceanum-labs/oceanrag/internal/core/services"
	"github.com/oceanum-labs/oceanrag/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

// ingestService is the slice of the ingestion service the CLI drives.
type ingestService interface {
	IngestFile(ctx context.Context, path, organization string) services.IngestResult
	IngestDirectory(ctx context.Context, dir, organization string) (*services.DirectorySummary, error)
}

// queryService is the slice of the query pipeline the CLI drives.
type queryService interface {
	Query(ctx context.Context, question string, opts domain.SearchOptions) *domain.QueryResponse
}

// watchService keeps re-ingesting a directory as files change.
type watchService interface {
	Watch(ctx context.Context, dir, organization string) error
}

// adminStore covers the maintenance operations of the document store.
type adminStore interface {
	Setup(ctx context.Context) error
	Reset(ctx context.Context) error
	GetStats(ctx context.Context) (*postgres.Stats, error)
	VectorExtensionInstalled(ctx context.Context) (bool, error)
	Ping(ctx context.Context) error
}

// Package-level services, wired on first use. Tests replace these with
// fakes.
var (
	ingestor  ingestService
	retriever queryService
	admin     adminStore
	watcher   watchService
)

var rootCmd = &cobra.Command{
	Use:   "oceanrag",
	Short: "RAG pipeline for ocean sustainability documents",
	Long: `oceanrag ingests ocean research documents into PostgreSQL with pgvector
and answers natural-language questions over them using retrieval-augmented
generation.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", file.DefaultConfigPath, "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the CLI with ctx, so long-running commands stop on
// interrupt.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the configuration file given by --config.
func loadConfig() (*file.Config, error) {
	return file.LoadConfig(configPath)
}

// connectStore builds the postgres store from configuration.
func connectStore(ctx context.Context, cfg *file.Config) (*postgres.Store, error) {
	return postgres.New(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		DBName:   cfg.Postgres.DBName,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
	})
}

// buildPipelines wires the full service graph from configuration. It is a
// no-op when tests have pre-wired fakes.
func buildPipelines(ctx context.Context) error {
	if ingestor != nil && retriever != nil && admin != nil && watcher != nil {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := openai.NewEmbeddingService(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.EmbeddingModel,
	})
	if err != nil {
		return fmt.Errorf("configure embedding service: %w", err)
	}

	llm, err := llmopenai.NewLLMService(llmopenai.LLMConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.ChatModel,
	})
	if err != nil {
		return fmt.Errorf("configure llm service: %w", err)
	}

	store, err := connectStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to document store: %w", err)
	}

	pdf, err := pdfextractor.New()
	if err != nil {
		return fmt.Errorf("configure pdf extractor: %w", err)
	}

	var counter driven.TokenCounter
	counter, err = tiktoken.NewCounter()
	if err != nil {
		logger.Warn("exact token counting unavailable, using estimates: %v", err)
		counter = tiktoken.HeuristicCounter{}
	}

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.Ingest.ChunkSize),
		chunker.WithOverlap(cfg.Ingest.ChunkOverlap),
	)

	ing := services.NewIngestor(store, embedder, pdf, counter,
		services.WithSplitter(splitter),
		services.WithEmbedBatchSize(cfg.Ingest.BatchSize),
	)

	prompts := file.NewPromptStore(cfg.Query.PromptFile)
	generator := services.NewAnswerGenerator(llm, prompts)
	assembler := services.NewContextAssembler(cfg.Query.MaxContextTokens)

	ingestor = ing
	retriever = services.NewRetriever(embedder, store, assembler, generator)
	admin = store
	watcher = services.NewWatcher(ing)
	return nil
}
