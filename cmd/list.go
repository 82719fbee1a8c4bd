package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"drive-upload-relay/infrastructure/config"
	"drive-upload-relay/infrastructure/drive"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List files in the configured Google Drive folder",
	Long: `List the files currently stored in the configured Google Drive folder.

Example:
  drive-upload-relay list`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// FileLister lists files in a remote folder
type FileLister interface {
	ListFiles(ctx context.Context, folderID string) ([]drive.FileInfo, error)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != config.BackendDrive {
		return fmt.Errorf("list is only supported for the drive backend")
	}

	client := drive.NewClient(cfg.Google.CredentialsFile, drive.WithScopes(cfg.Google.Scopes...))
	return RunListWithDependencies(cmd.Context(), client, cfg.Google.FolderID, os.Stdout)
}

// RunListWithDependencies runs the list command with injected dependencies (for testing)
func RunListWithDependencies(ctx context.Context, lister FileLister, folderID string, out io.Writer) error {
	files, err := lister.ListFiles(ctx, folderID)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "No files found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tSIZE\tCREATED")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", f.Name, f.ID, f.Size, f.CreatedTime.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
