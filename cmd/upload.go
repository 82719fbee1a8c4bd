package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	appdist "drive-upload-relay/application/distribution"
	"drive-upload-relay/domain/distribution"
	"drive-upload-relay/infrastructure/config"
	"drive-upload-relay/infrastructure/filesystem"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload local files to the configured destination",
	Long: `Upload one or more local files to the configured Google Drive folder
(or S3 prefix) using the same service account as the HTTP server.

Local files are never deleted by this command.

Example:
  drive-upload-relay upload report.pdf photos/cat.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logrus.StandardLogger()
	return RunUploadWithDependencies(cmd.Context(), cfg, NewAuthorizer(cfg, log), args, os.Stdout, log)
}

// RunUploadWithDependencies runs the upload command with injected dependencies (for testing)
func RunUploadWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	authorizer distribution.Authorizer,
	paths []string,
	output io.Writer,
	log logrus.FieldLogger,
) error {
	files := make([]distribution.FileDescriptor, 0, len(paths))
	for _, p := range paths {
		fd, err := filesystem.Describe(p, filepath.Base(p))
		if err != nil {
			return fmt.Errorf("file does not exist: %s", p)
		}
		files = append(files, fd)
	}

	service := NewRelayService(cfg, authorizer, log, appdist.WithKeepLocal(true))

	fmt.Fprintf(output, "Uploading %d file(s) to %s...\n", len(files), cfg.DestinationID())
	result, err := service.Relay(ctx, files)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	for _, obj := range result.Objects {
		fmt.Fprintf(output, "  %s -> %s (%.2f MB)\n", obj.Name, obj.ID, float64(obj.Size)/1024/1024)
	}
	fmt.Fprintf(output, "%s\n", distribution.SuccessResponse(result.Count()).Message)
	return nil
}
