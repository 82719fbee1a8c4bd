package drive

import (
	"context"
	"fmt"
	"io"
	"time"

	"drive-upload-relay/domain/distribution"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultScopes grants full Drive access to the service account
var DefaultScopes = []string{drive.DriveScope}

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error)
	CreateFile(ctx context.Context, meta *drive.File, media io.Reader, contentType string) (*drive.File, error)
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// ListFiles lists files matching the query
func (s *GoogleDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error) {
	r, err := s.service.Files.List().
		Q(query).
		Fields(googleapi.Field("files(" + fields + ")")).
		OrderBy(orderBy).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return r.Files, nil
}

// CreateFile creates a file with metadata meta and body media
func (s *GoogleDriveService) CreateFile(ctx context.Context, meta *drive.File, media io.Reader, contentType string) (*drive.File, error) {
	return s.service.Files.Create(meta).
		Media(media, googleapi.ContentType(contentType)).
		Fields(googleapi.Field("id, name, size")).
		Context(ctx).
		Do()
}

// Client implements distribution.Authorizer for a Google service account
type Client struct {
	credentials  *Credentials
	credErr      error
	scopes       []string
	endpoint     string
	driveService DriveService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// WithScopes overrides the OAuth scopes requested for the service account
func WithScopes(scopes ...string) ClientOption {
	return func(c *Client) {
		if len(scopes) > 0 {
			c.scopes = scopes
		}
	}
}

// WithEndpoint points the Drive API at a different base URL
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// NewClient creates a new Google Drive client from a service account key file.
// A missing or invalid key file does not fail construction; the error is
// returned by every Authorize call and by CredentialsError.
func NewClient(credentialsPath string, opts ...ClientOption) *Client {
	c := &Client{scopes: DefaultScopes}

	for _, opt := range opts {
		opt(c)
	}

	// Credentials are only needed when no custom drive service was provided
	if c.driveService == nil {
		c.credentials, c.credErr = LoadCredentials(credentialsPath)
	}

	return c
}

// CredentialsError reports the error from loading the key file, if any
func (c *Client) CredentialsError() error {
	return c.credErr
}

// Authorize exchanges a signed JWT for an access token and returns a store
// bound to that token
func (c *Client) Authorize(ctx context.Context) (distribution.RemoteStore, error) {
	return c.authorize(ctx)
}

func (c *Client) authorize(ctx context.Context) (*Store, error) {
	if c.driveService != nil {
		return &Store{driveService: c.driveService}, nil
	}
	if c.credErr != nil {
		return nil, c.credErr
	}

	ts := c.credentials.JWTConfig(c.scopes).TokenSource(ctx)
	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("unable to authorize service account: %w", err)
	}

	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, ts))),
	}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}

	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &Store{driveService: &GoogleDriveService{service: srv}}, nil
}

// ListFiles authorizes and lists the files in folderID
func (c *Client) ListFiles(ctx context.Context, folderID string) ([]FileInfo, error) {
	store, err := c.authorize(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListFiles(ctx, folderID)
}

// Store implements distribution.RemoteStore on an authorized Drive service
type Store struct {
	driveService DriveService
}

// CreateObject uploads r as a new file under spec.ParentID.
// Drive allows duplicate names, so every call creates a distinct file.
func (s *Store) CreateObject(ctx context.Context, r io.Reader, spec distribution.ObjectSpec) (distribution.RemoteObject, error) {
	if spec.Name == "" {
		return distribution.RemoteObject{}, distribution.ErrMissingName
	}
	contentType := spec.ContentType
	if contentType == "" {
		contentType = distribution.DefaultContentType
	}

	meta := &drive.File{Name: spec.Name}
	if spec.ParentID != "" {
		meta.Parents = []string{spec.ParentID}
	}

	// Provider errors are returned as is; callers only see the message
	f, err := s.driveService.CreateFile(ctx, meta, r, contentType)
	if err != nil {
		return distribution.RemoteObject{}, err
	}

	return distribution.RemoteObject{ID: f.Id, Name: f.Name, Size: f.Size}, nil
}

// FileInfo represents metadata about a file in Google Drive
type FileInfo struct {
	ID          string
	Name        string
	MimeType    string
	Size        int64
	CreatedTime time.Time
}

// ListFiles lists files in a folder
func (s *Store) ListFiles(ctx context.Context, folderID string) ([]FileInfo, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	files, err := s.driveService.ListFiles(ctx, query, "id, name, mimeType, size, createdTime", "name")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var result []FileInfo
	for _, f := range files {
		createdTime := parseTime(f.CreatedTime)
		result = append(result, FileInfo{
			ID:          f.Id,
			Name:        f.Name,
			MimeType:    f.MimeType,
			Size:        f.Size,
			CreatedTime: createdTime,
		})
	}
	return result, nil
}

// parseTime parses a Google Drive timestamp string
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Ensure Client implements distribution.Authorizer and Store implements distribution.RemoteStore
var (
	_ distribution.Authorizer  = (*Client)(nil)
	_ distribution.RemoteStore = (*Store)(nil)
)
