// Package blob defines the object store contract used for task attachments.
package blob

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store uploads binary objects and resolves their public URLs.
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	PublicURL(key string) string
}

// TaskKey returns a fresh object key namespaced by the owning task.
func TaskKey(taskID, fileName string) string {
	return path.Join("tasks", taskID, uuid.NewString()+"-"+SafeName(fileName))
}

// SafeName reduces a client supplied file name to a single path segment.
func SafeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}
