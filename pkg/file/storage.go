package file

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// Storage persists artifacts as byte streams.
type Storage interface {
	// Put stores the stream at path and returns the artifact reference.
	Put(ctx context.Context, path string, r io.Reader, contentType string) (string, error)

	// Get opens the artifact for reading along with its content type.
	// Returns ErrNotFound when nothing is stored at path.
	Get(ctx context.Context, path string) (io.ReadCloser, string, error)

	// Exists reports whether an artifact is stored at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes the artifact. Deleting a missing path returns
	// ErrNotFound.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for an artifact reference.
	URL(path string) string
}

// cleanPath normalizes an artifact path and rejects traversal attempts.
// References are always forward-slash relative paths.
func cleanPath(path string) (string, error) {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" || strings.Contains(path, "..") || strings.Contains(path, "\x00") {
		return "", ErrInvalidPath
	}
	return path, nil
}

// SniffImage detects the content type of an uploaded blob from its magic
// bytes and reports whether it is an image we accept. Extension and
// client-supplied content type are ignored: only the bytes count.
func SniffImage(data []byte) (string, bool) {
	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/jpeg", "image/png", "image/webp", "image/gif":
		return contentType, true
	default:
		return contentType, false
	}
}
