package cmd

import (
	"fmt"
	"os"

	"drive-upload-relay/infrastructure/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	cfg       *config.Config
	cfgErr    error
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "drive-upload-relay",
	Short: "Relay browser file uploads to Google Drive",
	Long: `drive-upload-relay accepts multipart file uploads over HTTP and forwards
each file to a Google Drive folder (or an S3 bucket) using a service account:

  - POST /upload stages files locally, uploads them concurrently, then deletes the local copies
  - every other GET path is served from a static directory

Example:
  drive-upload-relay serve --config config/config.yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (overrides config)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	cfg, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		// Config file is optional for some commands (like help)
		// Commands that need config will check and error appropriately
		cfg = nil
	}
}

// requireConfig returns the loaded configuration or a hint to run setup
func requireConfig() (*config.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded (%v); run 'drive-upload-relay setup' first", cfgErr)
	}
	return cfg, nil
}

// configureLogging applies config and flag settings to the standard logger
func configureLogging() error {
	level, format := config.DefaultLogLevel, config.DefaultLogFormat
	if cfg != nil {
		level, format = cfg.Log.Level, cfg.Log.Format
	}
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	return ApplyLogging(logrus.StandardLogger(), level, format)
}

// ApplyLogging sets level and formatter on log
func ApplyLogging(log *logrus.Logger, level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(lvl)

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}
