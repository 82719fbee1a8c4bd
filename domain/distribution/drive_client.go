package distribution

import (
	"context"
	"io"
)

// Authorizer produces an authorized handle on the remote storage provider.
// It is called once per relayed request; implementations must not share
// authorized state across calls.
type Authorizer interface {
	Authorize(ctx context.Context) (RemoteStore, error)
}

// RemoteStore creates objects in the remote storage provider
// This is a port that can be implemented by different infrastructure adapters
type RemoteStore interface {
	// CreateObject streams r into a new object described by spec and
	// returns the created object's identity
	CreateObject(ctx context.Context, r io.Reader, spec ObjectSpec) (RemoteObject, error)
}

// FileRemover deletes local temporary files
type FileRemover interface {
	Remove(path string) error
}
