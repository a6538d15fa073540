package media

import (
	"context"
	"path"
	"path/filepath"
)

// LinkResolver points placeholders at files in a sibling image folder.
// It never touches the filesystem.
type LinkResolver struct {
	folder string
}

// NewLinkResolver creates a LinkResolver for an absolute image folder.
func NewLinkResolver(folder string) *LinkResolver {
	return &LinkResolver{folder: folder}
}

// Resolve rewrites <file>NAME</file> to ![NAME](REL/NAME), where REL is the
// image folder relative to docDir.
func (r *LinkResolver) Resolve(_ context.Context, text string, docDir string) string {
	rel := relativeTo(docDir, r.folder)
	return replacePlaceholders(text, func(name string) string {
		return imageMarkdown(name, path.Join(rel, filepath.ToSlash(name)))
	})
}
