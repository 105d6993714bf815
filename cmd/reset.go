package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long: "Reset removes saved progress (checkpoints and the cached question set) and/or\n" +
		"the attempt history. With no flags both are removed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		clearHistory, _ := cmd.Flags().GetBool("history")
		clearProgress, _ := cmd.Flags().GetBool("progress")
		if !clearHistory && !clearProgress {
			clearHistory, clearProgress = true, true
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := commandContext(cmd)
		out := cmd.OutOrStdout()

		if clearProgress {
			n, err := e.checkpoints().ClearAll(ctx)
			if err != nil {
				return fmt.Errorf("reset progress: %w", err)
			}
			p, err := e.loadPassage()
			if err != nil {
				return err
			}
			if err := e.questionCache().Forget(ctx, p.ID); err != nil {
				return fmt.Errorf("drop question set: %w", err)
			}
			e.log.Info("progress reset", "checkpoints", n, "passage", p.ID)
			fmt.Fprintf(out, "Removed %d saved session(s) and the question set for %q.\n", n, p.Title)
		}

		if clearHistory {
			n := len(e.history().List(ctx))
			if err := e.history().Clear(ctx); err != nil {
				return err
			}
			e.log.Info("history reset", "attempts", n)
			fmt.Fprintf(out, "Removed %d attempt(s) from history.\n", n)
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("history", false, "Clear the attempt history")
	resetCmd.Flags().Bool("progress", false, "Clear saved progress and the cached question set")
}
