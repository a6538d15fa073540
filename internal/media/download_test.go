package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func newImageServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/cat.png", "/other/cat-copy.png":
			_, _ = w.Write([]byte("cat-bytes"))
		case "/dog.jpg":
			_, _ = w.Write([]byte("dog-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadResolver_DeduplicatesURL(t *testing.T) {
	var hits atomic.Int32
	srv := newImageServer(t, &hits)

	root := t.TempDir()
	folder := filepath.Join(root, "images")
	docDir := filepath.Join(root, "out", "2023", "November")
	r := NewDownloadResolver(folder, srv.Client(), discardLogger())

	url := srv.URL + "/cat.png"
	first := r.Resolve(context.Background(), "see "+url+" and again "+url, docDir)
	second := r.Resolve(context.Background(), url, docDir)

	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("files in image folder = %d, want 1", len(entries))
	}

	rel := "../../../images/" + entries[0].Name()
	if want := "see " + rel + " and again " + rel; first != want {
		t.Errorf("Resolve() = %q, want %q", first, want)
	}
	if second != rel {
		t.Errorf("second Resolve() = %q, want %q", second, rel)
	}
	if !strings.HasSuffix(entries[0].Name(), ".png") {
		t.Errorf("file name %q should keep .png extension", entries[0].Name())
	}
	if r.Fetched() != 1 {
		t.Errorf("Fetched() = %d, want 1", r.Fetched())
	}
}

func TestDownloadResolver_ContentAddressedNames(t *testing.T) {
	var hits atomic.Int32
	srv := newImageServer(t, &hits)
	folder := t.TempDir()
	r := NewDownloadResolver(folder, srv.Client(), discardLogger())

	a := r.Resolve(context.Background(), srv.URL+"/cat.png", folder)
	b := r.Resolve(context.Background(), srv.URL+"/other/cat-copy.png", folder)

	if a != b {
		t.Errorf("identical content should share a file: %q vs %q", a, b)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2 (distinct URLs)", hits.Load())
	}

	// A fresh resolver (new run) reuses the existing file.
	again := NewDownloadResolver(folder, srv.Client(), discardLogger())
	if got := again.Resolve(context.Background(), srv.URL+"/cat.png", folder); got != a {
		t.Errorf("re-run Resolve() = %q, want %q", got, a)
	}
}

func TestDownloadResolver_FailureLeavesURL(t *testing.T) {
	var hits atomic.Int32
	srv := newImageServer(t, &hits)
	folder := filepath.Join(t.TempDir(), "images")
	r := NewDownloadResolver(folder, srv.Client(), discardLogger())

	missing := srv.URL + "/gone.png"
	good := srv.URL + "/dog.jpg"
	text := "broken " + missing + " fine " + good + " broken again " + missing

	got := r.Resolve(context.Background(), text, folder)

	if !strings.Contains(got, "broken "+missing+" fine ") {
		t.Errorf("failed URL should stay in text: %q", got)
	}
	if strings.Contains(got, good) {
		t.Errorf("good URL should be rewritten: %q", got)
	}
	if hits.Load() != 2 {
		t.Errorf("hits = %d, want 2 (failed URL not retried)", hits.Load())
	}
	if r.Fetched() != 1 {
		t.Errorf("Fetched() = %d, want 1", r.Fetched())
	}
}

type failingDoer struct{ calls int }

func (f *failingDoer) Do(*http.Request) (*http.Response, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func TestDownloadResolver_NetworkError(t *testing.T) {
	doer := &failingDoer{}
	r := NewDownloadResolver(t.TempDir(), doer, discardLogger())

	text := "https://img.example.com/a.png"
	if got := r.Resolve(context.Background(), text, ""); got != text {
		t.Errorf("Resolve() = %q, want unchanged", got)
	}
	if doer.calls != 1 {
		t.Errorf("calls = %d, want 1", doer.calls)
	}
}

func TestDownloadResolver_IgnoresNonImageURLs(t *testing.T) {
	doer := &failingDoer{}
	r := NewDownloadResolver(t.TempDir(), doer, discardLogger())

	text := "docs at https://example.com/guide.html and https://example.com/png"
	if got := r.Resolve(context.Background(), text, ""); got != text {
		t.Errorf("Resolve() = %q, want unchanged", got)
	}
	if doer.calls != 0 {
		t.Errorf("calls = %d, want 0", doer.calls)
	}
}

func TestDownloadResolver_TrailingPunctuationAndQuery(t *testing.T) {
	var hits atomic.Int32
	srv := newImageServer(t, &hits)
	folder := t.TempDir()
	r := NewDownloadResolver(folder, srv.Client(), discardLogger())

	got := r.Resolve(context.Background(), fmt.Sprintf("Here: %s/cat.png?w=200.", srv.URL), folder)

	if !strings.HasPrefix(got, "Here: ") || !strings.HasSuffix(got, ".png.") {
		t.Errorf("Resolve() = %q, want relinked path followed by the sentence period", got)
	}
	if strings.Contains(got, srv.URL) {
		t.Errorf("URL should be replaced: %q", got)
	}
}

func TestURLExtension(t *testing.T) {
	tests := map[string]string{
		"https://x.com/a.PNG":          ".png",
		"http://x.com/p/b.jpeg?x=1":    ".jpeg",
		"https://x.com/c.webp#frag":    ".webp",
		"https://x.com/c.html":         "",
		"https://x.com/":               "",
		"https:///nohost.png":          "",
		"https://x.com/archive.png.gz": "",
	}
	for in, want := range tests {
		if got := urlExtension(in); got != want {
			t.Errorf("urlExtension(%q) = %q, want %q", in, got, want)
		}
	}
}
