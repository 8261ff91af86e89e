package commands

import (
	"github.com/spf13/cobra"
)

// Demo command: serve with the synthetic feed forced on, so a first run
// shows a live chart without any producer wired up.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Start the server with the built-in synthetic feed",
	Long: `Start the SigPlot server with the synthetic multi-signal feed running,
including occasional timing gaps so line breaks are visible.

Equivalent to:
  sigplot serve --feed --feed-gaps`,
	RunE: func(cmd *cobra.Command, args []string) error {
		withFeed = true
		feedGaps = true
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
