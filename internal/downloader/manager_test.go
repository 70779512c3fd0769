// internal/downloader/manager_test.go
package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valpere/MediaScrapexter/internal/media"
)

func testManager(t *testing.T, root string) *Manager {
	t.Helper()
	return NewManager(ManagerConfig{
		Client: ClientConfig{
			Timeout:    5 * time.Second,
			MaxRetries: 3,
			RetryDelay: 5 * time.Millisecond,
		},
		Concurrency: 2,
		OutputRoot:  root,
	}, nil, nil)
}

func imageAsset(id, url string) media.SelectedAsset {
	return media.SelectedAsset{
		AssetID: id,
		Candidate: media.Candidate{
			URL:  url,
			Kind: media.KindImage,
		},
		CanonicalURL: url,
	}
}

func TestDownloadSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("not really a png"))
	}))
	defer server.Close()

	root := t.TempDir()
	m := testManager(t, root)

	results := m.DownloadAll(context.Background(), "page_001",
		[]media.SelectedAsset{imageAsset("img_001", server.URL+"/photo")})

	if results[0].Status != media.StatusSuccess {
		t.Fatalf("expected success, got %s: %s", results[0].Status, results[0].FailureReason)
	}

	want := filepath.Join(root, "page_001", "images", "img_001.png")
	if results[0].LocalPath != want {
		t.Errorf("expected path %s, got %s", want, results[0].LocalPath)
	}
	if data, err := os.ReadFile(want); err != nil || string(data) != "not really a png" {
		t.Errorf("file content mismatch: %v", err)
	}
	if results[0].FileSize != int64(len("not really a png")) {
		t.Errorf("unexpected file size %d", results[0].FileSize)
	}
}

func TestDownloadRetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg bytes"))
	}))
	defer server.Close()

	m := testManager(t, t.TempDir())
	results := m.DownloadAll(context.Background(), "p",
		[]media.SelectedAsset{imageAsset("img_001", server.URL+"/a.jpg")})

	if results[0].Status != media.StatusSuccess {
		t.Fatalf("expected success after retries, got %s", results[0].FailureReason)
	}
	if results[0].Attempts != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", results[0].Attempts)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("server saw %d calls, expected 3", calls)
	}
}

func TestDownloadExhaustsRetriesRecordsFinalReason(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	m := testManager(t, t.TempDir())
	results := m.DownloadAll(context.Background(), "p",
		[]media.SelectedAsset{imageAsset("img_001", server.URL+"/a.jpg")})

	if results[0].Status != media.StatusFailed {
		t.Fatal("expected failure after exhausting retries")
	}
	if !strings.Contains(results[0].FailureReason, "503") {
		t.Errorf("failure reason should carry the final error, got %q", results[0].FailureReason)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("expected 3 attempts, server saw %d", calls)
	}
}

func TestDownloadNonRetryableFailsImmediately(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	m := testManager(t, t.TempDir())
	results := m.DownloadAll(context.Background(), "p",
		[]media.SelectedAsset{imageAsset("img_001", server.URL+"/gone.jpg")})

	if results[0].Status != media.StatusFailed {
		t.Fatal("expected failure")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("404 must not consume retry budget, server saw %d calls", calls)
	}
}

func TestDownloadExternalReferenceNotFetched(t *testing.T) {
	m := testManager(t, t.TempDir())

	asset := media.SelectedAsset{
		AssetID: "vid_001",
		Candidate: media.Candidate{
			URL:  "https://www.youtube.com/embed/dQw4w9WgXcQ",
			Kind: media.KindVideo,
		},
		CanonicalURL: "https://www.youtube.com/embed/dQw4w9WgXcQ",
		VideoType:    "youtube",
		External:     true,
	}

	results := m.DownloadAll(context.Background(), "p", []media.SelectedAsset{asset})
	if results[0].Status != media.StatusSuccess {
		t.Fatal("external reference must be recorded as success")
	}
	if results[0].ExternalReference != asset.Candidate.URL {
		t.Errorf("external reference not recorded: %+v", results[0])
	}
	if results[0].LocalPath != "" {
		t.Error("external reference must not produce a local file")
	}
}

func TestDownloadResultsKeepAssignmentOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the first asset is the slowest; completion order differs from
		// assignment order
		if strings.Contains(r.URL.Path, "slow") {
			time.Sleep(50 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png"))
	}))
	defer server.Close()

	m := testManager(t, t.TempDir())
	assets := []media.SelectedAsset{
		imageAsset("img_001", server.URL+"/slow.png"),
		imageAsset("img_002", server.URL+"/fast1.png"),
		imageAsset("img_003", server.URL+"/fast2.png"),
	}

	results := m.DownloadAll(context.Background(), "p", assets)
	for i, want := range []string{"img_001", "img_002", "img_003"} {
		if results[i].Asset.AssetID != want {
			t.Errorf("slot %d: expected %s, got %s", i, want, results[i].Asset.AssetID)
		}
	}
}

func TestDownloadDiscardsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	root := t.TempDir()
	m := testManager(t, root)
	results := m.DownloadAll(context.Background(), "p",
		[]media.SelectedAsset{imageAsset("img_001", server.URL+"/pixel.gif")})

	if results[0].Status != media.StatusFailed {
		t.Fatal("empty body must be rejected")
	}
	if _, err := os.Stat(filepath.Join(root, "p", "images", "img_001.gif")); !os.IsNotExist(err) {
		t.Error("rejected file must be removed from disk")
	}
}

func TestDetectExtension(t *testing.T) {
	tests := []struct {
		contentType string
		url         string
		want        string
	}{
		{"image/webp", "https://e.com/x", ".webp"},
		{"image/jpeg; charset=binary", "https://e.com/x", ".jpg"},
		{"", "https://e.com/photo.PNG?v=2", ".png"},
		{"application/octet-stream", "https://e.com/clip.mp4", ".mp4"},
		{"text/html", "https://e.com/x", ".bin"},
	}

	for _, tt := range tests {
		if got := DetectExtension(tt.contentType, tt.url); got != tt.want {
			t.Errorf("DetectExtension(%q, %q) = %q, want %q", tt.contentType, tt.url, got, tt.want)
		}
	}
}
