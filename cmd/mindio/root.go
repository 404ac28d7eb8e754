package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mindio-dev/mindio/pkg/config"
)

var (
	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "mindio",
	Short: "A scripted counseling conversation agent",
	Long: `mindio runs a stage-driven counseling conversation backed by a
language model, a tool registry and a retrieval layer.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// loadConfig resolves the effective configuration: the --config file
// when given, otherwise CONFIG_FILE, otherwise built-in defaults.
func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}

	var cfg *config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}
