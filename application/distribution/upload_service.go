package distribution

import (
	"context"
	"os"
	"sync"

	"drive-upload-relay/domain/distribution"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RelayService forwards locally staged files to remote storage
type RelayService struct {
	authorizer     distribution.Authorizer
	remover        distribution.FileRemover
	parentID       string
	maxConcurrent  int
	sniffMimeTypes bool
	keepLocal      bool
	log            logrus.FieldLogger
}

// RelayOption is a functional option for configuring RelayService
type RelayOption func(*RelayService)

// WithMaxConcurrent bounds the number of in-flight uploads per request (0 = unbounded)
func WithMaxConcurrent(n int) RelayOption {
	return func(s *RelayService) {
		s.maxConcurrent = n
	}
}

// WithSniffedContentType sends each descriptor's detected MIME type instead of
// the generic binary type
func WithSniffedContentType(enabled bool) RelayOption {
	return func(s *RelayService) {
		s.sniffMimeTypes = enabled
	}
}

// WithKeepLocal leaves local files in place after a successful upload
func WithKeepLocal(keep bool) RelayOption {
	return func(s *RelayService) {
		s.keepLocal = keep
	}
}

// WithLogger sets the logger used for per-file events
func WithLogger(log logrus.FieldLogger) RelayOption {
	return func(s *RelayService) {
		s.log = log
	}
}

// NewRelayService creates a new relay service targeting parentID
func NewRelayService(authorizer distribution.Authorizer, remover distribution.FileRemover, parentID string, opts ...RelayOption) *RelayService {
	s := &RelayService{
		authorizer: authorizer,
		remover:    remover,
		parentID:   parentID,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RelayResult contains the objects created for one request
type RelayResult struct {
	Objects []distribution.RemoteObject
}

// Count returns the number of uploaded files
func (r *RelayResult) Count() int {
	return len(r.Objects)
}

// Relay authorizes once, then uploads every file concurrently.
// If any upload fails the first error is returned after all uploads have
// finished; objects already created remotely are not rolled back and the
// failing file's temp copy is left on disk.
func (s *RelayService) Relay(ctx context.Context, files []distribution.FileDescriptor) (*RelayResult, error) {
	store, err := s.authorizer.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, distribution.ErrNoFiles
	}

	var (
		mu      sync.Mutex
		objects = make([]distribution.RemoteObject, 0, len(files))
	)

	// Siblings keep running when one fails, so no derived context here
	var g errgroup.Group
	if s.maxConcurrent > 0 {
		g.SetLimit(s.maxConcurrent)
	}

	for _, f := range files {
		g.Go(func() error {
			obj, err := s.relayOne(ctx, store, f)
			if err != nil {
				return err
			}
			mu.Lock()
			objects = append(objects, obj)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RelayResult{Objects: objects}, nil
}

func (s *RelayService) relayOne(ctx context.Context, store distribution.RemoteStore, f distribution.FileDescriptor) (distribution.RemoteObject, error) {
	log := s.log.WithField("file", f.OriginalName)

	fh, err := os.Open(f.Path)
	if err != nil {
		log.WithError(err).Error("unable to open temp file")
		return distribution.RemoteObject{}, err
	}

	spec := distribution.ObjectSpec{
		Name:        f.OriginalName,
		ParentID:    s.parentID,
		ContentType: s.contentType(f),
	}

	obj, err := store.CreateObject(ctx, fh, spec)
	fh.Close()
	if err != nil {
		log.WithError(err).Error("remote upload failed")
		return distribution.RemoteObject{}, err
	}
	if obj.Size == 0 {
		obj.Size = f.Size
	}

	log.WithField("remote_id", obj.ID).WithField("size", obj.Size).Info("file uploaded")

	if !s.keepLocal {
		// Cleanup failures are not reported to the caller
		if err := s.remover.Remove(f.Path); err != nil {
			log.WithError(err).Warn("unable to delete temp file")
		}
	}

	return obj, nil
}

func (s *RelayService) contentType(f distribution.FileDescriptor) string {
	if s.sniffMimeTypes && f.MimeType != "" {
		return f.MimeType
	}
	return distribution.DefaultContentType
}
