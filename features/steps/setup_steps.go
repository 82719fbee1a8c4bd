//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"drive-upload-relay/cmd"
	"drive-upload-relay/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir          string
	configPath       string
	setupCancelled   bool
	originalContent  string
	err              error
}

var SharedSetupContext = &setupContext{}

// MockPrompter answers setup prompts from scripted responses
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.setupCancelled = false
		testCtx.originalContent = ""
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		// Cleanup temp directory
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedSetupContext = &setupContext{}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, testCtx.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)" and inputs:$`, testCtx.iRunTheSetupCommandWithConfirmationAndInputs)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^the config should have port (\d+)$`, testCtx.theConfigShouldHavePort)
	ctx.Step(`^the config should have upload_directory "([^"]*)"$`, testCtx.theConfigShouldHaveUploadDirectory)
	ctx.Step(`^the config should have folder_id "([^"]*)"$`, testCtx.theConfigShouldHaveFolderID)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	// Just ensure the config path directory exists but no config file
	configDir := filepath.Dir(s.configPath)
	return os.MkdirAll(configDir, 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	// Create the config file with some content
	configDir := filepath.Dir(s.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	content := `server:
  port: 4000
google:
  credentials_file: "original-creds.json"
  folder_id: "original-folder-id"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	prompter := NewMockPrompter(parseInputTable(table), nil)

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "y"
	prompter := NewMockPrompter([]string{}, []bool{confirm})

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath)
	if !confirm {
		s.setupCancelled = true
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmationAndInputs(confirmation string, table *godog.Table) error {
	confirm := strings.ToLower(confirmation) == "y"
	prompter := NewMockPrompter(parseInputTable(table), []bool{confirm})

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

// parseInputTable returns the value column in prompt order: port, static
// directory, upload directory, credentials file, folder ID
func parseInputTable(table *godog.Table) []string {
	inputs := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows[1:] {
		inputs = append(inputs, row.Cells[1].Value)
	}
	return inputs
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) theConfigShouldHavePort(expected int) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Port != expected {
		return fmt.Errorf("expected port %d, got %d", expected, cfg.Server.Port)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveUploadDirectory(expected string) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.UploadDirectory != expected {
		return fmt.Errorf("expected upload_directory %q, got %q", expected, cfg.Server.UploadDirectory)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveFolderID(expected string) error {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Google.FolderID != expected {
		return fmt.Errorf("expected folder_id %q, got %q", expected, cfg.Google.FolderID)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if !s.setupCancelled {
		return fmt.Errorf("expected setup to be cancelled")
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config content was changed")
	}
	return nil
}
