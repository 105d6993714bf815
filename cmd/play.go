package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start reading straight away, skipping the splash screen",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, runOptions{startReading: true, skipSplash: true})
	},
}
