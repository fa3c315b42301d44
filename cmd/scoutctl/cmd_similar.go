package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/scout/internal/adapters/csvsource"
	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/attribute"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/similarity"
)

func newSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar",
		Short: "Find the players closest to a reference player",
		Long: `Load a dataset from a CSV file or a SQLite database and print the
players nearest to the reference by weighted Euclidean distance.

Examples:
  scoutctl similar --csv players.csv --id 1
  scoutctl similar --db players.db --id 1 --attributes pace,shooting --weights 2,1 --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath, _ := cmd.Flags().GetString("csv")
			dbPath, _ := cmd.Flags().GetString("db")
			id, _ := cmd.Flags().GetInt("id")
			attrs, _ := cmd.Flags().GetString("attributes")
			weights, _ := cmd.Flags().GetFloat64Slice("weights")
			limit, _ := cmd.Flags().GetInt("limit")
			jsonOut, _ := cmd.Flags().GetBool("json")

			players, err := loadPlayers(cmd.Context(), csvPath, dbPath)
			if err != nil {
				return err
			}
			pop, err := model.NewPopulation(1, players)
			if err != nil {
				return err
			}

			names := attribute.Default()
			if cmd.Flags().Changed("attributes") {
				names = attribute.Parse(attrs)
			}
			results, err := similarity.NewEngine().FindSimilar(pop, similarity.Request{
				ReferenceID: id,
				Attributes:  names,
				Weights:     weights,
				Limit:       limit,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				out := make([]map[string]any, len(results))
				for i, r := range results {
					out[i] = map[string]any{"id": r.Player.ID, "name": r.Player.Name, "club": r.Player.Club, "distance": r.Distance}
				}
				return writeJSON(cmd, out)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tID\tNAME\tCLUB\tDISTANCE")
			for i, r := range results {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.3f\n", i+1, r.Player.ID, r.Player.Name, r.Player.Club, r.Distance)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().String("csv", "", "Source CSV file")
	cmd.Flags().String("db", "", "SQLite database file")
	cmd.Flags().Int("id", 0, "Reference player id")
	cmd.Flags().String("attributes", "", "Comma separated attributes (default: the six face stats)")
	cmd.Flags().Float64Slice("weights", nil, "One positive weight per attribute")
	cmd.Flags().Int("limit", similarity.DefaultLimit, "Number of results")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// loadPlayers reads the dataset from exactly one of csvPath or dbPath.
func loadPlayers(ctx context.Context, csvPath, dbPath string) ([]model.Player, error) {
	switch {
	case csvPath != "" && dbPath != "":
		return nil, errors.New("use only one of --csv and --db")
	case csvPath != "":
		report, err := csvsource.ReadFile(ctx, csvPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", csvPath, err)
		}
		return report.Players, nil
	case dbPath != "":
		store, err := repository.Open(ctx, dbPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.All(ctx)
	default:
		return nil, errors.New("one of --csv or --db is required")
	}
}
