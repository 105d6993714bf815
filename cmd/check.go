package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/grading"
)

var checkCmd = &cobra.Command{
	Use:   "check <answer> <expected>",
	Short: "Run the local answer matcher on one answer",
	Long: "Check compares an answer with an expected answer using the same key-term\n" +
		"matcher the app falls back to when no LLM grader is available.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("min-term-length")
		m := grading.NewMatcher(grading.WithMinTermLength(n))

		out := cmd.OutOrStdout()
		if m.Matches(args[0], args[1]) {
			fmt.Fprintln(out, "✓ match")
		} else {
			fmt.Fprintln(out, "✗ no match")
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().Int("min-term-length", grading.DefaultMinTermLength,
		"Ignore expected-answer words with this many characters or fewer")
}
