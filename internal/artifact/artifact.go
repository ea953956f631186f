// Package artifact archives generated migration scripts. Backends: local
// filesystem for development and S3 for shared environments.
package artifact

import (
	"context"
	"errors"
)

// Common errors for artifact operations.
var (
	ErrNotFound       = errors.New("artifact not found")
	ErrUploadFailed   = errors.New("artifact upload failed")
	ErrDownloadFailed = errors.New("artifact download failed")
)

// Store abstracts migration-script archival.
type Store interface {
	// Put stores a script under the given name, e.g. "0003_content_hash.sql".
	Put(ctx context.Context, name string, data []byte) error

	// Get retrieves a previously archived script.
	Get(ctx context.Context, name string) ([]byte, error)

	// Exists checks whether a script has already been archived.
	Exists(ctx context.Context, name string) (bool, error)

	// List returns the names of all archived scripts under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
