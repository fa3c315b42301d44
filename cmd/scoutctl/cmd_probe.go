package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/scout/internal/probe"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check a running server's similarity responses",
		Long: `Sample players from a running server, query their neighbours and
verify each response: bounded by the limit, reference excluded, ascending
distance with ties broken by id.

Examples:
  scoutctl probe --url http://localhost:9080 --samples 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := probe.Config{}
			cfg.BaseURL, _ = cmd.Flags().GetString("url")
			cfg.Samples, _ = cmd.Flags().GetInt("samples")
			cfg.Limit, _ = cmd.Flags().GetInt("limit")
			cfg.Workers, _ = cmd.Flags().GetInt("workers")
			cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
			cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
			jsonOut, _ := cmd.Flags().GetBool("json")

			report, err := probe.Run(cmd.Context(), cfg)
			if report != nil {
				if jsonOut {
					if werr := writeJSON(cmd, report); werr != nil {
						return werr
					}
				} else {
					printReport(cmd, report)
				}
			}
			return err
		},
	}

	cmd.Flags().String("url", "http://localhost:9080", "Base URL of the service")
	cmd.Flags().Int("samples", 50, "Number of reference players to query")
	cmd.Flags().Int("limit", 10, "Results requested per query")
	cmd.Flags().Int("workers", 4, "Number of concurrent workers")
	cmd.Flags().Duration("timeout", 10*time.Second, "HTTP request timeout")
	cmd.Flags().Bool("verbose", false, "Log every query")

	return cmd
}

func printReport(cmd *cobra.Command, r *probe.Report) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Probed %d players in %s\n", r.Samples, r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  queries: %d  failed: %d  skipped: %d  results: %d\n", r.Queries, r.Failed, r.Skipped, r.Results)
	for _, v := range r.Violations {
		fmt.Fprintf(w, "  ! %s\n", v)
	}
}
