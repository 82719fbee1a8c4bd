package cmd

import (
	appdist "drive-upload-relay/application/distribution"
	"drive-upload-relay/domain/distribution"
	"drive-upload-relay/infrastructure/config"
	"drive-upload-relay/infrastructure/drive"
	"drive-upload-relay/infrastructure/filesystem"
	"drive-upload-relay/infrastructure/s3store"

	"github.com/sirupsen/logrus"
)

// NewAuthorizer builds the authorizer for the configured backend.
// Drive credential problems are logged, not returned: each upload will
// report them instead.
func NewAuthorizer(cfg *config.Config, log logrus.FieldLogger) distribution.Authorizer {
	if cfg.Storage.Backend == config.BackendS3 {
		return s3store.NewAuthorizer(cfg.S3.Bucket, cfg.S3.Region)
	}

	client := drive.NewClient(cfg.Google.CredentialsFile, drive.WithScopes(cfg.Google.Scopes...))
	if err := client.CredentialsError(); err != nil {
		log.WithError(err).WithField("credentials_file", cfg.Google.CredentialsFile).
			Warn("service account credentials unavailable; uploads will fail")
	}
	return client
}

// NewRelayService builds the relay service for cfg
func NewRelayService(cfg *config.Config, authorizer distribution.Authorizer, log logrus.FieldLogger, opts ...appdist.RelayOption) *appdist.RelayService {
	opts = append([]appdist.RelayOption{
		appdist.WithMaxConcurrent(cfg.Storage.MaxConcurrentUploads),
		appdist.WithSniffedContentType(cfg.Storage.SniffContentType),
		appdist.WithLogger(log),
	}, opts...)
	return appdist.NewRelayService(authorizer, filesystem.NewRemover(), cfg.DestinationID(), opts...)
}
