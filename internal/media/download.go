package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/gorewood/chatmd/internal/atomicfile"
)

// maxImageBytes caps a single downloaded image.
const maxImageBytes = 25 * 1024 * 1024

// hashPrefixLen is the number of hex characters of the SHA-256 used in file names.
const hashPrefixLen = 16

// imageExtensions are the URL path extensions treated as images.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".bmp": true, ".svg": true,
}

// urlPattern matches a bare http(s) URL token. Image detection happens on
// the parsed path so query strings do not hide the extension.
var urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>"'()\[\]]+`)

// trailingPunct is stripped from URL tokens that end a sentence.
const trailingPunct = ".,;:!?"

// DownloadResolver fetches remote images into a local folder and relinks
// them. Each distinct URL is fetched at most once per resolver; files are
// named by content hash so re-runs and concurrent callers never collide.
type DownloadResolver struct {
	folder string
	client HTTPDoer
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]fetchResult
}

type fetchResult struct {
	file string
	err  error
}

// NewDownloadResolver creates a DownloadResolver writing into an absolute folder.
func NewDownloadResolver(folder string, client HTTPDoer, logger *slog.Logger) *DownloadResolver {
	return &DownloadResolver{
		folder: folder,
		client: client,
		logger: logger,
		cache:  make(map[string]fetchResult),
	}
}

// Resolve replaces every image URL in text with a path to its local copy,
// relative to docDir. URLs that fail to download are left unchanged.
func (r *DownloadResolver) Resolve(ctx context.Context, text string, docDir string) string {
	return urlPattern.ReplaceAllStringFunc(text, func(token string) string {
		rawURL := strings.TrimRight(token, trailingPunct)
		suffix := token[len(rawURL):]

		if !isImageURL(rawURL) {
			return token
		}

		file, err := r.fetch(ctx, rawURL)
		if err != nil {
			return token
		}
		return relativeTo(docDir, file) + suffix
	})
}

// Fetched returns the number of distinct URLs downloaded successfully.
func (r *DownloadResolver) Fetched() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, res := range r.cache {
		if res.err == nil {
			n++
		}
	}
	return n
}

// fetch returns the local file for rawURL, downloading it on first use.
// Failures are cached too, so a broken URL is tried once per run.
func (r *DownloadResolver) fetch(ctx context.Context, rawURL string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res, ok := r.cache[rawURL]; ok {
		return res.file, res.err
	}

	file, err := r.download(ctx, rawURL)
	if err != nil {
		r.logger.Warn("image download failed", "url", rawURL, "error", err)
	} else {
		r.logger.Debug("image downloaded", "url", rawURL, "file", file)
	}
	r.cache[rawURL] = fetchResult{file: file, err: err}
	return file, err
}

func (r *DownloadResolver) download(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", errors.New("image exceeds size limit")
	}

	return r.store(data, urlExtension(rawURL))
}

// store writes data under its content-addressed name unless already present.
func (r *DownloadResolver) store(data []byte, ext string) (string, error) {
	if err := os.MkdirAll(r.folder, 0o755); err != nil {
		return "", fmt.Errorf("create image folder: %w", err)
	}

	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:])[:hashPrefixLen] + ext
	file := filepath.Join(r.folder, name)

	if _, err := os.Stat(file); err == nil {
		return file, nil
	}
	if err := atomicfile.WriteFile(file, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return file, nil
}

// isImageURL reports whether rawURL parses and its path ends in an image extension.
func isImageURL(rawURL string) bool {
	return urlExtension(rawURL) != ""
}

// urlExtension returns the lowercased image extension of the URL path, or "".
func urlExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if !imageExtensions[ext] {
		return ""
	}
	return ext
}
