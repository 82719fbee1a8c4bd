//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"

	appdist "drive-upload-relay/application/distribution"
	"drive-upload-relay/domain/distribution"
	"drive-upload-relay/infrastructure/drive"
	"drive-upload-relay/infrastructure/filesystem"
	"drive-upload-relay/infrastructure/formupload"
	"drive-upload-relay/infrastructure/httpserver"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"
	googledrive "google.golang.org/api/drive/v3"
)

// fakeDriveService stores created files in memory
type fakeDriveService struct {
	mu      sync.Mutex
	created []*googledrive.File
	failOn  string
}

func (f *fakeDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*googledrive.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*googledrive.File(nil), f.created...), nil
}

func (f *fakeDriveService) CreateFile(ctx context.Context, meta *googledrive.File, media io.Reader, contentType string) (*googledrive.File, error) {
	if meta.Name == f.failOn {
		return nil, fmt.Errorf("googleapi: Error 403: The user does not have sufficient permissions")
	}
	data, err := io.ReadAll(media)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	file := &googledrive.File{
		Id:      fmt.Sprintf("file-%d", len(f.created)+1),
		Name:    meta.Name,
		Parents: meta.Parents,
		Size:    int64(len(data)),
	}
	f.created = append(f.created, file)
	return file, nil
}

type uploadContext struct {
	uploadDir  string
	staticDir  string
	folderID   string
	driveSvc   *fakeDriveService
	authorizer distribution.Authorizer
	files      map[string]string
	response   *httptest.ResponseRecorder
	envelope   distribution.Response
}

var SharedUploadContext = &uploadContext{}

func InitializeUploadScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedUploadContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "upload-test-*")
		if err != nil {
			return c, err
		}
		testCtx.uploadDir = filepath.Join(tempDir, "uploads")
		testCtx.staticDir = filepath.Join(tempDir, "public")
		if err := filesystem.EnsureDir(testCtx.uploadDir); err != nil {
			return c, err
		}
		if err := filesystem.EnsureDir(testCtx.staticDir); err != nil {
			return c, err
		}
		testCtx.folderID = ""
		testCtx.driveSvc = &fakeDriveService{}
		testCtx.authorizer = drive.NewClient("", drive.WithDriveService(testCtx.driveSvc))
		testCtx.files = make(map[string]string)
		testCtx.response = nil
		testCtx.envelope = distribution.Response{}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.uploadDir != "" {
			os.RemoveAll(filepath.Dir(testCtx.uploadDir))
		}
		SharedUploadContext = &uploadContext{}
		return c, nil
	})

	ctx.Step(`^the Drive folder "([^"]*)"$`, testCtx.theDriveFolder)
	ctx.Step(`^the service account key file is missing$`, testCtx.theServiceAccountKeyFileIsMissing)
	ctx.Step(`^Drive rejects the file "([^"]*)"$`, testCtx.driveRejectsTheFile)
	ctx.Step(`^a static file "([^"]*)" containing "([^"]*)"$`, testCtx.aStaticFileContaining)
	ctx.Step(`^a file "([^"]*)" containing "([^"]*)"$`, testCtx.aFileContaining)
	ctx.Step(`^I upload the files under field "([^"]*)"$`, testCtx.iUploadTheFilesUnderField)
	ctx.Step(`^I post an empty form$`, testCtx.iPostAnEmptyForm)
	ctx.Step(`^I request "([^"]*)"$`, testCtx.iRequest)
	ctx.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	ctx.Step(`^the response should be successful with message "([^"]*)"$`, testCtx.theResponseShouldBeSuccessfulWithMessage)
	ctx.Step(`^the response should fail with message "([^"]*)"$`, testCtx.theResponseShouldFailWithMessage)
	ctx.Step(`^the response should fail with a message starting "([^"]*)"$`, testCtx.theResponseShouldFailWithMessageStarting)
	ctx.Step(`^the response body should be "([^"]*)"$`, testCtx.theResponseBodyShouldBe)
	ctx.Step(`^Drive should contain "([^"]*)" under folder "([^"]*)"$`, testCtx.driveShouldContainUnderFolder)
	ctx.Step(`^Drive should contain (\d+) files?$`, testCtx.driveShouldContainFiles)
	ctx.Step(`^the upload directory should be empty$`, testCtx.theUploadDirectoryShouldBeEmpty)
	ctx.Step(`^the upload directory should contain (\d+) files?$`, testCtx.theUploadDirectoryShouldContainFiles)
}

func (u *uploadContext) theDriveFolder(folderID string) error {
	u.folderID = folderID
	return nil
}

func (u *uploadContext) theServiceAccountKeyFileIsMissing() error {
	u.authorizer = drive.NewClient(filepath.Join(u.uploadDir, "missing-apikeys.json"))
	return nil
}

func (u *uploadContext) driveRejectsTheFile(name string) error {
	u.driveSvc.failOn = name
	return nil
}

func (u *uploadContext) aStaticFileContaining(name, content string) error {
	return os.WriteFile(filepath.Join(u.staticDir, name), []byte(content), 0644)
}

func (u *uploadContext) aFileContaining(name, content string) error {
	u.files[name] = content
	return nil
}

func (u *uploadContext) router() http.Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)

	service := appdist.NewRelayService(u.authorizer, filesystem.NewRemover(), u.folderID,
		appdist.WithMaxConcurrent(1), appdist.WithLogger(log))
	parser := formupload.NewParser(u.uploadDir, distribution.DefaultField)
	return httpserver.NewRouter(service, parser, u.staticDir, log)
}

func (u *uploadContext) iUploadTheFilesUnderField(field string) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range u.files {
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			return err
		}
		if _, err := part.Write([]byte(content)); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return u.serve(req)
}

func (u *uploadContext) iPostAnEmptyForm() error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("comment", "nothing attached"); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return u.serve(req)
}

func (u *uploadContext) iRequest(path string) error {
	u.response = httptest.NewRecorder()
	u.router().ServeHTTP(u.response, httptest.NewRequest(http.MethodGet, path, nil))
	return nil
}

func (u *uploadContext) serve(req *http.Request) error {
	u.response = httptest.NewRecorder()
	u.router().ServeHTTP(u.response, req)

	if err := json.Unmarshal(u.response.Body.Bytes(), &u.envelope); err != nil {
		return fmt.Errorf("response is not a JSON envelope: %w (body %q)", err, u.response.Body.String())
	}
	return nil
}

func (u *uploadContext) theResponseStatusShouldBe(expected int) error {
	if u.response == nil {
		return fmt.Errorf("no request was made")
	}
	if u.response.Code != expected {
		return fmt.Errorf("expected status %d, got %d (body %q)", expected, u.response.Code, u.response.Body.String())
	}
	return nil
}

func (u *uploadContext) theResponseShouldBeSuccessfulWithMessage(message string) error {
	if !u.envelope.Success {
		return fmt.Errorf("expected success, got failure %q", u.envelope.Message)
	}
	if u.envelope.Message != message {
		return fmt.Errorf("expected message %q, got %q", message, u.envelope.Message)
	}
	return nil
}

func (u *uploadContext) theResponseShouldFailWithMessage(message string) error {
	if u.envelope.Success {
		return fmt.Errorf("expected failure, got success %q", u.envelope.Message)
	}
	if u.envelope.Message != message {
		return fmt.Errorf("expected message %q, got %q", message, u.envelope.Message)
	}
	return nil
}

func (u *uploadContext) theResponseShouldFailWithMessageStarting(prefix string) error {
	if u.envelope.Success {
		return fmt.Errorf("expected failure, got success %q", u.envelope.Message)
	}
	if len(u.envelope.Message) < len(prefix) || u.envelope.Message[:len(prefix)] != prefix {
		return fmt.Errorf("expected message starting %q, got %q", prefix, u.envelope.Message)
	}
	return nil
}

func (u *uploadContext) theResponseBodyShouldBe(expected string) error {
	if got := u.response.Body.String(); got != expected {
		return fmt.Errorf("expected body %q, got %q", expected, got)
	}
	return nil
}

func (u *uploadContext) driveShouldContainUnderFolder(name, folderID string) error {
	for _, f := range u.driveSvc.created {
		if f.Name != name {
			continue
		}
		if len(f.Parents) != 1 || f.Parents[0] != folderID {
			return fmt.Errorf("expected %s under %q, got parents %v", name, folderID, f.Parents)
		}
		return nil
	}
	return fmt.Errorf("file %s was not uploaded", name)
}

func (u *uploadContext) driveShouldContainFiles(expected int) error {
	if got := len(u.driveSvc.created); got != expected {
		return fmt.Errorf("expected %d files in Drive, got %d", expected, got)
	}
	return nil
}

func (u *uploadContext) theUploadDirectoryShouldBeEmpty() error {
	return u.theUploadDirectoryShouldContainFiles(0)
}

func (u *uploadContext) theUploadDirectoryShouldContainFiles(expected int) error {
	entries, err := os.ReadDir(u.uploadDir)
	if err != nil {
		return err
	}
	if len(entries) != expected {
		return fmt.Errorf("expected %d files in upload directory, got %d", expected, len(entries))
	}
	return nil
}
