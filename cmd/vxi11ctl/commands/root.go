// Package commands implements the vxi11ctl CLI.
package commands

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/marmos91/vxi11/internal/logger"
	"github.com/marmos91/vxi11/pkg/config"
	"github.com/marmos91/vxi11/pkg/metrics"
)

// Version information injected at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "vxi11ctl",
	Short: "Command-line client for VXI-11 instrument control",
	Long: `vxi11ctl talks to a VXI-11 instrument over LAN: it opens a Core
channel link, sends SCPI commands, and reads back responses, the same
way an automated test bench would.

Use "vxi11ctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		if err := logger.Init(logger.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		}); err != nil {
			return err
		}

		if cfg.Metrics.Enabled {
			startMetricsServer(cfg.Metrics.Addr)
		}
		return nil
	},
}

// startMetricsServer installs a fresh registry and serves /metrics in the
// background. Listener failures are logged, not fatal: a CLI invocation
// shouldn't fail a one-shot query because the metrics port is taken.
func startMetricsServer(addr string) {
	reg := prometheus.NewRegistry()
	metrics.InitRegistry(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", logger.KeyError, err)
		}
	}()
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: $HOME/.config/vxi11/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
