package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store abstracts where re-hosted media artifacts land. Put returns a public
// URL for the stored object.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// MediaKey builds a date-partitioned object key for one artifact.
func MediaKey(prefix, category, contentType string) string {
	now := time.Now().UTC()
	return path.Join(
		strings.Trim(prefix, "/"),
		strings.Trim(category, "/"),
		fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day()),
		uuid.NewString()+ExtensionForContentType(contentType),
	)
}

// ExtensionForContentType maps a MIME type to a file extension, defaulting
// to .bin for unknown types.
func ExtensionForContentType(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	default:
		return ".bin"
	}
}
