package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oceanum-labs/oceanrag/internal/adapters/driven/storage/postgres"
)

var resetYes bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the database schema",
	Long: `Creates the target database if needed, enables the pgvector extension
and creates the documents and chunks tables with their indexes. Safe to
run repeatedly.`,
	RunE: runSetup,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop and recreate the database schema",
	Long: `Drops the documents and chunks tables and recreates the schema from
scratch. All ingested data is lost. Prompts for confirmation unless --yes
is given.`,
	RunE: runReset,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store connectivity and content statistics",
	RunE:  runStatus,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statusCmd)
}

// connectAdmin wires only the store, leaving the model services untouched.
// Admin commands must work before any API key is usable.
func connectAdmin(cmd *cobra.Command) error {
	if admin != nil {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := postgres.EnsureDatabase(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		DBName:   cfg.Postgres.DBName,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
	}); err != nil {
		return err
	}

	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	admin = store
	return nil
}

func runSetup(cmd *cobra.Command, _ []string) error {
	if err := connectAdmin(cmd); err != nil {
		return err
	}
	if err := admin.Setup(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Database schema ready.")
	return nil
}

func runReset(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		cmd.Print("This will DELETE ALL ingested data. Continue? (y/N): ")
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			cmd.Println("Reset cancelled.")
			return nil
		}
	}

	if err := connectAdmin(cmd); err != nil {
		return err
	}
	if err := admin.Reset(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Database reset complete.")
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := connectAdmin(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()

	if err := admin.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	cmd.Println("Store: reachable")

	installed, err := admin.VectorExtensionInstalled(ctx)
	if err != nil {
		return err
	}
	if installed {
		cmd.Println("pgvector: installed")
	} else {
		cmd.Println("pgvector: MISSING (run 'oceanrag setup')")
	}

	stats, err := admin.GetStats(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Chunks: %d (%d embedded)\n", stats.Chunks, stats.EmbeddedChunks)

	if len(stats.RecentDocuments) > 0 {
		cmd.Println()
		cmd.Println("Recent documents:")
		for _, doc := range stats.RecentDocuments {
			cmd.Printf("  %s (%s, %d chunks, %s)\n",
				doc.Filename, orUnknown(doc.DocType), doc.Chunks,
				doc.UploadDate.Format("2006-01-02 15:04"))
		}
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
