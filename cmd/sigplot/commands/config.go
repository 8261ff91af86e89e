package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/panyam/sigplot/console"
	"github.com/panyam/sigplot/viz"
)

var (
	configDataPath string
	configOutPath  string
	configInit     bool
)

// Config command: build a chart document offline, without running the
// server.  Useful for inspecting what a given signal setup and data
// batch produce, and for renderer development against fixed documents.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Build and print a chart config document",
	Long: `Build the chart configuration document for a signal manifest and an
optional JSON samples file, and print it as JSON.

The samples file uses the same shape as the REST replace payload:

  {"signals": {"temperature": [[1000, 21.5], [1200, 21.7]]}}

With --init the default demo manifest is written instead, as a starting
point for a custom setup.

Example:
  sigplot config --init > signals.yaml
  sigplot config -m signals.yaml --data samples.json > chart.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configInit {
			return writeDefaultManifest()
		}

		manifest, err := loadManifest()
		if err != nil {
			return err
		}
		specs, err := manifest.SignalSpecs()
		if err != nil {
			return err
		}

		controller, err := console.NewPlotController(specs, manifest.WindowMs, viz.DefaultBuilderOptions())
		if err != nil {
			return err
		}

		if configDataPath != "" {
			data, err := os.ReadFile(configDataPath)
			if err != nil {
				return fmt.Errorf("reading samples file: %w", err)
			}
			var req console.DataBatchRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("parsing samples file: %w", err)
			}
			batch, err := console.DecodeBatch(req)
			if err != nil {
				return err
			}
			if err := controller.Replace(batch); err != nil {
				return err
			}
		}

		cfg, err := controller.Config()
		if err != nil {
			return err
		}
		return writeJSON(cfg)
	},
}

func writeDefaultManifest() error {
	m := console.DefaultManifest()
	if configOutPath != "" {
		return m.Save(configOutPath)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if configOutPath != "" {
		return os.WriteFile(configOutPath, data, 0644)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func init() {
	configCmd.Flags().StringVar(&configDataPath, "data", "", "JSON samples file to load before building the document")
	configCmd.Flags().StringVarP(&configOutPath, "out", "o", "", "Write output to a file instead of stdout")
	configCmd.Flags().BoolVar(&configInit, "init", false, "Emit the default manifest instead of a chart document")
	rootCmd.AddCommand(configCmd)
}
