package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"drive-upload-relay/infrastructure/filesystem"
	"drive-upload-relay/infrastructure/formupload"
	"drive-upload-relay/infrastructure/httpserver"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload HTTP server",
	Long: `Run the HTTP server.

POST /upload accepts multipart/form-data with one or more files under the
configured field (default "myFile"). Every other GET path is served from the
static directory.

Example:
  drive-upload-relay serve
  drive-upload-relay serve --port 8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := filesystem.EnsureDir(cfg.Server.UploadDirectory); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	log := logrus.StandardLogger()
	relay := NewRelayService(cfg, NewAuthorizer(cfg, log), log)
	parser := formupload.NewParser(cfg.Server.UploadDirectory, cfg.Server.UploadField)
	router := httpserver.NewRouter(relay, parser, cfg.Server.StaticDirectory, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"backend":     cfg.Storage.Backend,
		"destination": cfg.DestinationID(),
		"static":      cfg.Server.StaticDirectory,
	}).Infof("Server running at http://localhost:%d", cfg.Server.Port)

	return httpserver.New(cfg.Server.Port, router, cfg.Server.ShutdownTimeout, log).Run(ctx)
}

