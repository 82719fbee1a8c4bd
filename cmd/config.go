package cmd

import (
	"fmt"
	"io"
	"os"

	"drive-upload-relay/infrastructure/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput io.Writer = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration file",
	Long: `Show or validate the configuration file.

Examples:
  drive-upload-relay config show
  drive-upload-relay config validate --config /etc/relay.yaml`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (defaults applied)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigShowWithDependencies(cfg, DefaultOutput)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the configuration can start the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigValidateWithDependencies(cfg, cfgFile, DefaultOutput)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

// RunConfigShowWithDependencies prints cfg as YAML
func RunConfigShowWithDependencies(cfg *config.Config, out io.Writer) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	return enc.Close()
}

// RunConfigValidateWithDependencies validates cfg and reports the result
func RunConfigValidateWithDependencies(cfg *config.Config, configPath string, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s is invalid: %w", configPath, err)
	}
	fmt.Fprintf(out, "%s is valid (backend: %s, destination: %s)\n", configPath, cfg.Storage.Backend, cfg.DestinationID())
	return nil
}
