// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"
	"io"
	"os"
	"time"
)

// ObjectStorage is a remote bucket of YAML definition files. Keys are
// relative to the configured prefix and only definition files are listed.
type ObjectStorage interface {
	List(ctx context.Context) ([]StorageObject, error)

	// Download writes the object to dest atomically.
	Download(ctx context.Context, key string, dest string) error

	GetReader(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageObject describes one remote definition file.
type StorageObject struct {
	Key          string
	Size         int64 // 0 when the backend does not report it
	LastModified int64 // unix seconds, 0 when unknown
	ETag         string
}

// Modified returns the modification time, or the zero time when unknown.
func (o StorageObject) Modified() time.Time {
	if o.LastModified == 0 {
		return time.Time{}
	}
	return time.Unix(o.LastModified, 0)
}

// MatchesLocal reports whether a local copy needs no download: sizes agree
// where known and the copy is not older than the remote object.
func (o StorageObject) MatchesLocal(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if o.Size > 0 && info.Size() != o.Size {
		return false
	}
	return o.LastModified == 0 || !info.ModTime().Before(o.Modified())
}
