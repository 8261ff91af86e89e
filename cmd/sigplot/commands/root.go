package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Flags shared by commands.  Serve/demo bind host/port; manifestPath is
// used by every command that needs a signal setup.
var (
	manifestPath string
	serveHost    string
	servePort    int
)

var rootCmd = &cobra.Command{
	Use:   "sigplot",
	Short: "SigPlot serves live multi-signal time series dashboards",
	Long: `SigPlot maintains sliding-window buffers for numeric and categorical
signals and synthesizes stacked, cursor-synchronized chart documents
that a browser dashboard renders live.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "", "Path to a YAML signal manifest (default: built-in demo signals)")
	rootCmd.PersistentFlags().StringVar(&serveHost, "host", "", "Server host (default: SIGPLOT_SERVE_HOST env var or localhost)")
	rootCmd.PersistentFlags().IntVar(&servePort, "port", 0, "Server port (default: SIGPLOT_SERVE_PORT env var or 8080)")
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
