package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"drive-upload-relay/domain/distribution"
	"drive-upload-relay/infrastructure/config"
	"drive-upload-relay/infrastructure/drive"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthorizer struct {
	store *stubStore
	err   error
}

func (s *stubAuthorizer) Authorize(ctx context.Context) (distribution.RemoteStore, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.store, nil
}

type stubStore struct {
	names []string
}

func (s *stubStore) CreateObject(ctx context.Context, r io.Reader, spec distribution.ObjectSpec) (distribution.RemoteObject, error) {
	s.names = append(s.names, spec.Name)
	return distribution.RemoteObject{ID: "id-" + spec.Name, Name: spec.Name}, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Google.FolderID = "folder-123"
	cfg.Storage.MaxConcurrentUploads = 1
	return cfg
}

func TestRunUploadWithDependencies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	store := &stubStore{}
	var out bytes.Buffer
	log, _ := test.NewNullLogger()

	err := RunUploadWithDependencies(context.Background(), testConfig(), &stubAuthorizer{store: store}, []string{path}, &out, log)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, store.names)
	assert.Contains(t, out.String(), "Uploading 1 file(s) to folder-123")
	assert.Contains(t, out.String(), "a.txt -> id-a.txt")
	assert.Contains(t, out.String(), "1 file(s) uploaded successfully!")

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr, "local file must be kept")
}

func TestRunUploadWithDependencies_Errors(t *testing.T) {
	log, _ := test.NewNullLogger()

	err := RunUploadWithDependencies(context.Background(), testConfig(), &stubAuthorizer{store: &stubStore{}},
		[]string{"/nonexistent/file.txt"}, io.Discard, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file does not exist")

	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	err = RunUploadWithDependencies(context.Background(), testConfig(), &stubAuthorizer{err: errors.New("bad key")},
		[]string{path}, io.Discard, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload failed: bad key")
}

type stubLister struct {
	files []drive.FileInfo
	err   error
}

func (s *stubLister) ListFiles(ctx context.Context, folderID string) ([]drive.FileInfo, error) {
	return s.files, s.err
}

func TestRunListWithDependencies(t *testing.T) {
	var out bytes.Buffer
	lister := &stubLister{files: []drive.FileInfo{
		{ID: "file-1", Name: "a.txt", Size: 10, CreatedTime: time.Date(2025, 12, 28, 10, 0, 0, 0, time.UTC)},
	}}

	require.NoError(t, RunListWithDependencies(context.Background(), lister, "folder", &out))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "a.txt")
	assert.Contains(t, out.String(), "2025-12-28 10:00")

	out.Reset()
	require.NoError(t, RunListWithDependencies(context.Background(), &stubLister{}, "folder", &out))
	assert.Equal(t, "No files found.\n", out.String())

	err := RunListWithDependencies(context.Background(), &stubLister{err: errors.New("denied")}, "folder", &out)
	assert.Error(t, err)
}

func TestRunConfigCommands(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig()

	require.NoError(t, RunConfigShowWithDependencies(cfg, &out))
	assert.Contains(t, out.String(), "folder_id: folder-123")
	assert.Contains(t, out.String(), "upload_field: myFile")

	out.Reset()
	require.NoError(t, RunConfigValidateWithDependencies(cfg, "config.yaml", &out))
	assert.True(t, strings.HasPrefix(out.String(), "config.yaml is valid"))

	cfg.Google.FolderID = ""
	err := RunConfigValidateWithDependencies(cfg, "config.yaml", &out)
	assert.ErrorIs(t, err, config.ErrMissingFolderID)
}

func TestApplyLogging(t *testing.T) {
	log := logrus.New()

	require.NoError(t, ApplyLogging(log, "debug", "json"))
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	require.NoError(t, ApplyLogging(log, "warn", "text"))
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	assert.Error(t, ApplyLogging(log, "loud", "text"))
	assert.Error(t, ApplyLogging(log, "info", "xml"))
}

func TestNewAuthorizer(t *testing.T) {
	log, hook := test.NewNullLogger()

	cfg := testConfig()
	cfg.Google.CredentialsFile = filepath.Join(t.TempDir(), "missing.json")
	auth := NewAuthorizer(cfg, log)
	_, err := auth.Authorize(context.Background())
	assert.ErrorIs(t, err, distribution.ErrCredentials)
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	cfg.Storage.Backend = config.BackendS3
	cfg.S3.Bucket = "bucket"
	assert.NotNil(t, NewAuthorizer(cfg, log))
}
