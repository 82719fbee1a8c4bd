package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"drive-upload-relay/infrastructure/config"
	"drive-upload-relay/infrastructure/filesystem"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up your configuration file
with the server port, local directories, and Google Drive settings.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = "config/config.yaml"
	}
	return RunSetupWithPrompter(DefaultPrompter, path)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	// Check if config already exists
	if filesystem.Exists(configPath) {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to drive-upload-relay setup!")
	fmt.Println()

	cfg := config.Default()

	// Server section
	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	// Google section
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	port, err := prompter.Input("Port to listen on?", strconv.Itoa(config.DefaultPort))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("port must be a number: %q", port)
		}
		cfg.Server.Port = n
	}

	static, err := prompter.Input("Directory of static files to serve?", config.DefaultStaticDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if static != "" {
		cfg.Server.StaticDirectory = static
	}

	uploads, err := prompter.Input("Directory for temporary uploads?", config.DefaultUploadDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if uploads != "" {
		cfg.Server.UploadDirectory = uploads
	}

	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	credentials, err := prompter.Input("Path to Google service account key file?", config.DefaultCredentialsFile)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		credentials = config.DefaultCredentialsFile
	}
	cfg.Google.CredentialsFile = credentials

	folder, err := prompter.Input("Google Drive folder ID for uploads?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if folder == "" {
		return fmt.Errorf("folder ID is required")
	}
	cfg.Google.FolderID = folder

	return nil
}
