package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/scout/internal/adapters/csvsource"
	"github.com/okian/scout/internal/adapters/repository"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a player CSV into a SQLite database",
		Long: `Read a dataset in the source CSV layout and replace the contents of
the SQLite database with it. The server warms its snapshot from this
database on start when db_path is configured.

Examples:
  scoutctl import --csv players.csv --db players.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath, _ := cmd.Flags().GetString("csv")
			dbPath, _ := cmd.Flags().GetString("db")
			jsonOut, _ := cmd.Flags().GetBool("json")
			if csvPath == "" || dbPath == "" {
				return errors.New("both --csv and --db are required")
			}

			ctx := cmd.Context()
			report, err := csvsource.ReadFile(ctx, csvPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", csvPath, err)
			}

			store, err := repository.Open(ctx, dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ReplaceAll(ctx, report.Players); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"db":       dbPath,
					"imported": len(report.Players),
					"skipped":  report.Skipped,
					"message":  fmt.Sprintf("Imported %d players successfully", len(report.Players)),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d players successfully (%d rows skipped)\n", len(report.Players), report.Skipped)
			return nil
		},
	}

	cmd.Flags().String("csv", "", "Source CSV file")
	cmd.Flags().String("db", "", "SQLite database file to replace")

	return cmd
}
