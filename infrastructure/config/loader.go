package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendDrive = "drive"
	BackendS3    = "s3"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Google  GoogleConfig  `yaml:"google"`
	S3      S3Config      `yaml:"s3"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig contains HTTP listener and local directory settings
type ServerConfig struct {
	Port            int           `yaml:"port"`
	StaticDirectory string        `yaml:"static_directory"`
	UploadDirectory string        `yaml:"upload_directory"`
	UploadField     string        `yaml:"upload_field"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects and tunes the remote backend
type StorageConfig struct {
	Backend              string `yaml:"backend"`
	MaxConcurrentUploads int    `yaml:"max_concurrent_uploads"`
	SniffContentType     bool   `yaml:"sniff_content_type"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string   `yaml:"credentials_file"`
	FolderID        string   `yaml:"folder_id"`
	Scopes          []string `yaml:"scopes,omitempty"`
}

// S3Config contains settings for the S3 backend
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default values
const (
	DefaultPort            = 3000
	DefaultStaticDirectory = "public"
	DefaultUploadDirectory = "uploads"
	DefaultUploadField     = "myFile"
	DefaultCredentialsFile = "apikeys.json"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Errors for config validation
var (
	ErrUnknownBackend  = errors.New("unknown storage backend")
	ErrMissingFolderID = errors.New("google.folder_id is required for the drive backend")
	ErrMissingBucket   = errors.New("s3.bucket is required for the s3 backend")
	ErrInvalidPort     = errors.New("server.port must be between 1 and 65535")
	ErrInvalidLimit    = errors.New("storage.max_concurrent_uploads must not be negative")
)

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyDefaults fills zero values with defaults
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.StaticDirectory == "" {
		c.Server.StaticDirectory = DefaultStaticDirectory
	}
	if c.Server.UploadDirectory == "" {
		c.Server.UploadDirectory = DefaultUploadDirectory
	}
	if c.Server.UploadField == "" {
		c.Server.UploadField = DefaultUploadField
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendDrive
	}
	if c.Google.CredentialsFile == "" {
		c.Google.CredentialsFile = DefaultCredentialsFile
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate checks that the configuration can start a server
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}
	if c.Storage.MaxConcurrentUploads < 0 {
		return ErrInvalidLimit
	}

	switch c.Storage.Backend {
	case BackendDrive:
		if c.Google.FolderID == "" {
			return ErrMissingFolderID
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return ErrMissingBucket
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}

	return nil
}

// DestinationID returns the parent folder (drive) or key prefix (s3) for uploads
func (c *Config) DestinationID() string {
	if c.Storage.Backend == BackendS3 {
		return c.S3.Prefix
	}
	return c.Google.FolderID
}
