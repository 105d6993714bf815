package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/history"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past attempts and overall statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := commandContext(cmd)
		h := e.history()
		attempts := h.Recent(ctx)
		stats := history.Summarize(attempts)
		if limit > 0 && len(attempts) > limit {
			attempts = attempts[:limit]
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(historyReport{Stats: stats, Attempts: attempts})
		}

		if stats.Count == 0 {
			fmt.Fprintln(out, "No attempts yet.")
			return nil
		}

		fmt.Fprintf(out, "Attempts: %d   Best: %d%%   Average: %d%%\n\n", stats.Count, stats.Best, stats.Average)
		fmt.Fprintf(out, "%-16s  %-7s  %-5s  %s\n", "Completed", "Score", "%", "Result")
		fmt.Fprintln(out, strings.Repeat("─", 56))
		for _, a := range attempts {
			fmt.Fprintf(out, "%-16s  %-7s  %-5s  %s\n",
				a.CompletedAt.Local().Format("2006-01-02 15:04"),
				fmt.Sprintf("%d/%d", a.Score, a.Total),
				fmt.Sprintf("%d%%", a.Percentage),
				session.Band(a.Percentage),
			)
		}
		return nil
	},
}

type historyReport struct {
	Stats    history.Stats            `json:"stats"`
	Attempts []history.AttemptSummary `json:"attempts"`
}

func init() {
	historyCmd.Flags().Bool("json", false, "Print the history as JSON")
	historyCmd.Flags().Int("limit", 0, "Show at most this many attempts (0 = all)")
}
