package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// EmbedResolver inlines placeholder images as base64 data URIs.
type EmbedResolver struct {
	folder string
	logger *slog.Logger
}

// NewEmbedResolver creates an EmbedResolver reading from an absolute folder.
func NewEmbedResolver(folder string, logger *slog.Logger) *EmbedResolver {
	return &EmbedResolver{folder: folder, logger: logger}
}

// Resolve replaces each <file>NAME</file> with an inline data URI image.
// A file that cannot be read is replaced by a visible marker naming it.
func (r *EmbedResolver) Resolve(_ context.Context, text string, _ string) string {
	return replacePlaceholders(text, r.embed)
}

func (r *EmbedResolver) embed(name string) string {
	// Clean as a rooted path so ".." cannot climb out of the folder.
	filePath := filepath.Join(r.folder, filepath.FromSlash(path.Clean("/"+filepath.ToSlash(name))))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("missing media file", "name", name, "path", filePath)
			return MissingMarker(name)
		}
		r.logger.Warn("unreadable media file", "name", name, "path", filePath, "error", err)
		return MissingMarker(name)
	}

	uri := fmt.Sprintf("data:%s;base64,%s", mimeTypeFor(name), base64.StdEncoding.EncodeToString(data))
	return fmt.Sprintf("![%s](%s)", name, uri)
}

// MissingMarker is the text substituted for an image file that does not exist.
func MissingMarker(name string) string {
	return fmt.Sprintf("*[missing image: %s]*", name)
}

// mimeTypeFor derives an image MIME type from the file extension. Names
// without a known image extension are embedded as opaque bytes.
func mimeTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if !imageExtensions[ext] {
		return "application/octet-stream"
	}
	switch ext {
	case ".jpg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/" + strings.TrimPrefix(ext, ".")
	}
}
