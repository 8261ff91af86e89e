package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/panyam/sigplot/console"
	"github.com/panyam/sigplot/core"
	"github.com/panyam/sigplot/viz"
)

var (
	archiveDir      string
	mqttBroker      string
	mqttTopicPrefix string
	withFeed        bool
	feedRateHz      float64
	feedGaps        bool
	statsInterval   = 30 * time.Second
)

// Serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SigPlot dashboard server",
	Long: `Start the SigPlot server that hosts the plotting session, web dashboard
and API endpoints.

The server provides:
- Sliding-window buffers for every configured signal
- REST API for data replace/append/clear and chart config retrieval
- WebSocket channel pushing a fresh chart document on every mutation
- Web dashboard rendering the stacked signal chart
- Optional DuckDB archive of everything appended
- Optional MQTT ingest and built-in synthetic feed

Example:
  # Serve the built-in demo signals with the synthetic feed running
  sigplot serve --feed

  # Serve a custom signal setup fed over MQTT, archiving to ./data
  sigplot serve -m signals.yaml --mqtt-broker tcp://localhost:1883 --archive ./data`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Env files are optional; flags and real env vars still apply
		if err := godotenv.Load(); err == nil {
			core.Debug("loaded .env file")
		}

		manifest, err := loadManifest()
		if err != nil {
			return err
		}
		specs, err := manifest.SignalSpecs()
		if err != nil {
			return err
		}

		session, err := console.NewSession(specs, manifest.WindowMs, viz.DefaultBuilderOptions())
		if err != nil {
			return err
		}

		var archive *console.SampleArchive
		if archiveDir != "" {
			archive, err = console.NewSampleArchive(archiveDir)
			if err != nil {
				return fmt.Errorf("opening archive: %w", err)
			}
			defer archive.Close()
			session.AttachArchive(archive)
		}

		var ingest *console.MQTTIngest
		if mqttBroker != "" {
			ingest, err = console.NewMQTTIngest(session, console.MQTTOptions{
				Broker:      mqttBroker,
				TopicPrefix: mqttTopicPrefix,
			})
			if err != nil {
				return fmt.Errorf("connecting MQTT ingest: %w", err)
			}
			defer ingest.Close()
		}

		var feed *console.Feed
		if withFeed {
			rate := feedRateHz
			if rate <= 0 {
				rate = manifest.SampleRateHz
			}
			gen := console.NewSignalGenerator(specs, console.GeneratorOptions{
				SampleRateHz: rate,
				RateDivisors: manifest.RateDivisors(),
				Gaps:         feedGaps,
			})
			feed = console.NewFeed(session, gen, time.Duration(manifest.UpdateMs)*time.Millisecond)
			feed.Start()
			defer feed.Stop()
		}

		webServer, err := console.NewWebServer(session, archive, "")
		if err != nil {
			return err
		}

		host, port := getServeConfig()
		addr := fmt.Sprintf("%s:%d", host, port)
		server := &http.Server{
			Addr:    addr,
			Handler: webServer.Handler(),
		}

		baseURL := fmt.Sprintf("http://%s", addr)
		fmt.Printf("🚀 SigPlot Server %s\n", Version)
		fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		fmt.Printf("📊 Dashboard:  %s\n", baseURL)
		fmt.Printf("🛠️  REST API:   %s/api\n", baseURL)
		fmt.Printf("📡 WebSocket:  ws://%s/ws\n", addr)
		fmt.Printf("📶 Signals:    %d on a %dms window\n", len(specs), manifest.WindowMs)
		if archive != nil {
			fmt.Printf("💾 Archive:    %s\n", archiveDir)
		}
		if ingest != nil {
			fmt.Printf("📨 MQTT:       %s\n", mqttBroker)
		}
		if feed != nil {
			fmt.Printf("🎛️  Feed:       synthetic, %d signals\n", len(specs))
		}
		fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

		errChan := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go displayServerStats(ctx, session, webServer)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errChan:
			return fmt.Errorf("server failed: %w", err)
		case <-sigChan:
		}

		console.Stop("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		webServer.Shutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			core.Warn("Server shutdown error: %v", err)
		} else {
			console.Success("Server stopped gracefully")
		}
		return nil
	},
}

// loadManifest reads the manifest flag or falls back to the demo setup.
func loadManifest() (*console.Manifest, error) {
	if manifestPath == "" {
		return console.DefaultManifest(), nil
	}
	return console.LoadManifest(manifestPath)
}

// getServeConfig resolves host and port using the priority:
// 1. Command line flags (--host / --port)
// 2. Environment variables (SIGPLOT_SERVE_HOST / SIGPLOT_SERVE_PORT)
// 3. Defaults (localhost:8080)
func getServeConfig() (string, int) {
	host := serveHost
	if host == "" {
		host = os.Getenv("SIGPLOT_SERVE_HOST")
	}
	if host == "" {
		host = "localhost"
	}

	port := servePort
	if port == 0 {
		if envPort := os.Getenv("SIGPLOT_SERVE_PORT"); envPort != "" {
			if p, err := strconv.Atoi(envPort); err == nil {
				port = p
			}
		}
	}
	if port == 0 {
		port = 8080
	}
	return host, port
}

// displayServerStats logs buffer occupancy and client counts periodically
func displayServerStats(ctx context.Context, session *console.Session, ws *console.WebServer) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	var last console.SessionStats
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := session.Stats()
			if stats != last {
				core.Info("📊 Stats: Points=%d SpanMs=%d Clients=%d",
					stats.Points, stats.SpanMs, ws.ClientCount())
				last = stats
			}
		}
	}
}

func init() {
	serveCmd.Flags().StringVar(&archiveDir, "archive", "", "Directory for the DuckDB sample archive (disabled when empty)")
	serveCmd.Flags().StringVar(&mqttBroker, "mqtt-broker", "", "MQTT broker to ingest samples from, e.g. tcp://localhost:1883")
	serveCmd.Flags().StringVar(&mqttTopicPrefix, "mqtt-topic-prefix", console.DefaultMQTTTopicPrefix, "Topic prefix the MQTT ingest subscribes under")
	serveCmd.Flags().BoolVar(&withFeed, "feed", false, "Run the synthetic signal feed")
	serveCmd.Flags().Float64Var(&feedRateHz, "feed-rate", 0, "Synthetic feed sample rate in Hz (default: manifest sample_rate_hz)")
	serveCmd.Flags().BoolVar(&feedGaps, "feed-gaps", false, "Make synthetic signals skip occasional sample runs")
	serveCmd.Flags().DurationVar(&statsInterval, "stats-interval", 30*time.Second, "Statistics display interval")
	rootCmd.AddCommand(serveCmd)
}
