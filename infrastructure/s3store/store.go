package s3store

import (
	"context"
	"fmt"
	"io"
	"path"

	"drive-upload-relay/domain/distribution"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PutObjectAPI is the subset of the S3 client used for uploads
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ClientFactory builds an S3 client for one request
type ClientFactory func(ctx context.Context) (PutObjectAPI, error)

// Authorizer implements distribution.Authorizer against an S3 bucket
type Authorizer struct {
	bucket    string
	newClient ClientFactory
}

// NewAuthorizer creates an authorizer that resolves AWS credentials from the
// default chain on every Authorize call
func NewAuthorizer(bucket, region string) *Authorizer {
	return NewAuthorizerWithFactory(bucket, func(ctx context.Context) (PutObjectAPI, error) {
		var opts []func(*config.LoadOptions) error
		if region != "" {
			opts = append(opts, config.WithRegion(region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, err
		}
		return s3.NewFromConfig(cfg), nil
	})
}

// NewAuthorizerWithFactory creates an authorizer with a custom client factory (for testing)
func NewAuthorizerWithFactory(bucket string, factory ClientFactory) *Authorizer {
	return &Authorizer{bucket: bucket, newClient: factory}
}

// Authorize loads AWS credentials and returns a store bound to the bucket
func (a *Authorizer) Authorize(ctx context.Context) (distribution.RemoteStore, error) {
	client, err := a.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return &Store{client: client, bucket: a.bucket}, nil
}

// Store implements distribution.RemoteStore for one bucket
type Store struct {
	client PutObjectAPI
	bucket string
}

// CreateObject writes r to <ParentID>/<uuid>/<Name>. The random segment keeps
// repeated uploads of the same name from overwriting each other.
func (s *Store) CreateObject(ctx context.Context, r io.Reader, spec distribution.ObjectSpec) (distribution.RemoteObject, error) {
	if spec.Name == "" {
		return distribution.RemoteObject{}, distribution.ErrMissingName
	}
	contentType := spec.ContentType
	if contentType == "" {
		contentType = distribution.DefaultContentType
	}

	key := path.Join(spec.ParentID, uuid.New().String(), path.Base(spec.Name))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return distribution.RemoteObject{}, err
	}

	return distribution.RemoteObject{ID: key, Name: spec.Name}, nil
}

var (
	_ distribution.Authorizer  = (*Authorizer)(nil)
	_ distribution.RemoteStore = (*Store)(nil)
)
