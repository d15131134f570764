package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oceanum-labs/oceanrag/internal/core/services"
)

var (
	ingestFile      string
	ingestDirectory string
	ingestOrg       string
	ingestWatch     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest documents into the vector store",
	Long: `Extracts text from PDF, text and markdown files, splits it into
overlapping chunks, embeds the chunks and stores everything in PostgreSQL.
Re-ingesting a file with the same name and size is skipped.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "ingest a single file")
	ingestCmd.Flags().StringVarP(&ingestDirectory, "directory", "d", "", "ingest every supported file in a directory")
	ingestCmd.Flags().StringVarP(&ingestOrg, "organization", "o", "", "organization the documents belong to")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the directory for new files")
	ingestCmd.MarkFlagsMutuallyExclusive("file", "directory")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestFile == "" && ingestDirectory == "" {
		return errors.New("either --file or --directory is required")
	}
	if ingestWatch && ingestDirectory == "" {
		return errors.New("--watch requires --directory")
	}

	ctx := cmd.Context()
	if err := buildPipelines(ctx); err != nil {
		return err
	}

	if ingestFile != "" {
		result := ingestor.IngestFile(ctx, ingestFile, ingestOrg)
		printIngestResult(cmd, result)
		if !result.Succeeded() {
			return fmt.Errorf("ingest %s: %w", result.Filename, result.Err)
		}
		return nil
	}

	summary, err := ingestor.IngestDirectory(ctx, ingestDirectory, ingestOrg)
	if err != nil {
		return fmt.Errorf("ingest directory: %w", err)
	}
	for _, result := range summary.Results {
		printIngestResult(cmd, result)
	}
	cmd.Printf("\nProcessed %d/%d files\n", summary.Succeeded, summary.Attempted)

	if ingestWatch {
		cmd.Printf("Watching %s for new files (Ctrl+C to stop)\n", ingestDirectory)
		if err := watcher.Watch(ctx, ingestDirectory, ingestOrg); err != nil && !errors.Is(err, ctx.Err()) {
			return fmt.Errorf("watch directory: %w", err)
		}
	}
	return nil
}

func printIngestResult(cmd *cobra.Command, result services.IngestResult) {
	switch result.Status {
	case services.StatusIngested:
		cmd.Printf("  ingested    %s (%d chunks)\n", result.Filename, result.Chunks)
	case services.StatusSkippedDuplicate:
		cmd.Printf("  duplicate   %s\n", result.Filename)
	case services.StatusSkippedUnsupported:
		cmd.Printf("  unsupported %s\n", result.Filename)
	default:
		cmd.Printf("  failed      %s: %v\n", result.Filename, result.Err)
	}
}
