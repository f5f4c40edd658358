// Package storage stores uploaded media behind the BlobStore interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Folders used for uploaded media
const (
	FolderPosts    = "posts"
	FolderStories  = "stories"
	FolderUploads  = "uploads"
	FolderProfiles = "profile_images"
)

// ErrEmptyFile is returned when an upload has no content
var ErrEmptyFile = errors.New("empty file")

// BlobStore stores binary media and returns its public URL.
type BlobStore interface {
	Upload(ctx context.Context, data []byte, folder, filename string) (*UploadResult, error)
	// Delete accepts either an object key or a URL returned by Upload.
	Delete(ctx context.Context, keyOrURL string) error
}

// UploadResult contains the result of an upload
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Bucket      string `json:"bucket,omitempty"`
	Region      string `json:"region,omitempty"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// objectKey lays files out as {folder}/{year}/{month}/{uuid}{ext}.
// The extension comes from the original name, falling back to the detected type.
func objectKey(folder, filename string, detected *mimetype.MIME, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = detected.Extension()
	}
	return fmt.Sprintf("%s/%d/%02d/%s%s", folder, now.Year(), now.Month(), uuid.NewString(), ext)
}

// keyFromURL strips baseURL from a public URL. Keys pass through unchanged.
func keyFromURL(baseURL, keyOrURL string) string {
	base := strings.TrimSuffix(baseURL, "/") + "/"
	if base != "/" && strings.HasPrefix(keyOrURL, base) {
		return strings.TrimPrefix(keyOrURL, base)
	}
	if i := strings.Index(keyOrURL, "://"); i >= 0 {
		rest := keyOrURL[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			return rest[j+1:]
		}
	}
	return keyOrURL
}

// IsMediaType reports whether data sniffs as the given top-level type
// ("image", "video" or "audio").
func IsMediaType(data []byte, kind string) bool {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), kind+"/") {
			return true
		}
	}
	return false
}
