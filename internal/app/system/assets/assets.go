// internal/app/system/assets/assets.go
package assets

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBadAssetID is returned for IDs that are empty or contain a path separator.
var ErrBadAssetID = errors.New("invalid asset id")

// Upload is one file to store.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Asset is a stored file. ID is what Destroy takes; URL is public.
type Asset struct {
	ID  string
	URL string
}

// Store hosts property images remotely.
type Store interface {
	Upload(ctx context.Context, u Upload) (Asset, error)
	Destroy(ctx context.Context, assetID string) error
}

// NewAssetID returns "<uuid><ext>" where ext is the lowercased extension of
// filename when it is short and alphanumeric.
func NewAssetID(filename string) string {
	return uuid.NewString() + safeExt(filename)
}

func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}

// ValidAssetID reports whether id can name an object in a single path segment.
func ValidAssetID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}
