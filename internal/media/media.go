// Package media resolves image references found in message text into
// Markdown image syntax.
//
// Three strategies share the Resolver interface and one is chosen per run:
//
//   - link:     <file>NAME</file> becomes a relative link into the image folder
//   - embed:    <file>NAME</file> becomes an inline base64 data URI
//   - download: bare http(s) image URLs are fetched into the image folder
//     under content-addressed names and relinked
//
// Resolution never fails the caller: missing files and failed fetches are
// logged and leave a visible marker or the original text in place.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Mode selects a resolution strategy.
type Mode string

// Supported modes.
const (
	ModeLink     Mode = "link"
	ModeEmbed    Mode = "embed"
	ModeDownload Mode = "download"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeLink, ModeEmbed, ModeDownload}

// ParseMode validates a mode name (case-insensitive).
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range Modes {
		if m == mode {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown image mode %q (want link, embed or download)", s)
}

// Resolver rewrites the image references in text for a document that will
// be written into docDir.
type Resolver interface {
	Resolve(ctx context.Context, text string, docDir string) string
}

// HTTPDoer defines the HTTP operations required for downloads.
// This allows injection of test doubles for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Config selects and configures a Resolver.
type Config struct {
	Mode       Mode
	Folder     string       // image folder: link target, embed source, download destination
	HTTPClient HTTPDoer     // download mode only; defaults to a client with a timeout
	Logger     *slog.Logger // defaults to slog.Default()
}

// defaultFetchTimeout bounds a single image download.
const defaultFetchTimeout = 60 * time.Second

// New builds the Resolver for cfg.Mode.
func New(cfg Config) (Resolver, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	folder, err := filepath.Abs(cfg.Folder)
	if err != nil {
		return nil, fmt.Errorf("resolving image folder %s: %w", cfg.Folder, err)
	}

	switch cfg.Mode {
	case ModeLink:
		return NewLinkResolver(folder), nil
	case ModeEmbed:
		return NewEmbedResolver(folder, logger), nil
	case ModeDownload:
		client := cfg.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: defaultFetchTimeout}
		}
		return NewDownloadResolver(folder, client, logger), nil
	default:
		return nil, fmt.Errorf("unknown image mode %q", cfg.Mode)
	}
}

// placeholderPattern matches <file>NAME</file> tags emitted by the exporter.
var placeholderPattern = regexp.MustCompile(`<file>([^<]+)</file>`)

// replacePlaceholders calls fn with each trimmed placeholder name and
// substitutes its return value.
func replacePlaceholders(text string, fn func(name string) string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := placeholderPattern.FindStringSubmatch(match)
		name := strings.TrimSpace(sub[1])
		if name == "" {
			return match
		}
		return fn(name)
	})
}

// relativeTo returns target relative to docDir in slash form. Falls back to
// the absolute slash path when no relative path exists (different volumes).
func relativeTo(docDir, target string) string {
	absDoc, err := filepath.Abs(docDir)
	if err == nil {
		if rel, relErr := filepath.Rel(absDoc, target); relErr == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(target)
}

// imageMarkdown formats a Markdown image reference.
func imageMarkdown(alt, target string) string {
	return fmt.Sprintf("![%s](%s)", alt, strings.ReplaceAll(target, " ", "%20"))
}
