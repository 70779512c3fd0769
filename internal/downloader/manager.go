// internal/downloader/manager.go
package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/valpere/MediaScrapexter/internal/media"
	"github.com/valpere/MediaScrapexter/internal/utils"
)

// Index is the persistent download index collaborator: it remembers which
// canonical URLs were fetched in earlier runs so they are reported with their
// existing path instead of re-fetched. A nil Index disables the skip.
type Index interface {
	Lookup(canonicalURL string) (localPath string, size int64, ok bool)
	Record(canonicalURL, localPath string, size int64) error
}

// ManagerConfig defines configuration for the download manager
type ManagerConfig struct {
	Client      ClientConfig
	Concurrency int
	OutputRoot  string
}

// Manager fetches selected assets with a bounded worker pool. Results are
// written into one slot per asset, so the returned slice is ordered by
// asset id regardless of completion order.
type Manager struct {
	client *Client
	config ManagerConfig
	index  Index
	logger utils.Logger
}

// NewManager creates a download manager
func NewManager(config ManagerConfig, index Index, logger utils.Logger) *Manager {
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	if config.OutputRoot == "" {
		config.OutputRoot = "output"
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Manager{
		client: NewClient(config.Client, logger),
		config: config,
		index:  index,
		logger: logger,
	}
}

// DownloadAll processes every asset of one page and returns results in
// assignment order. External references are recorded without fetching; a
// failed asset never aborts the rest.
func (m *Manager) DownloadAll(ctx context.Context, pageID string, assets []media.SelectedAsset) []media.DownloadResult {
	results := make([]media.DownloadResult, len(assets))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < m.config.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = m.process(ctx, pageID, assets[i])
			}
		}()
	}

	for i := range assets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// process handles one asset: external reference, index hit, or fresh fetch
func (m *Manager) process(ctx context.Context, pageID string, asset media.SelectedAsset) media.DownloadResult {
	if asset.External {
		m.logger.Infof("recording external reference for %s: %s", asset.AssetID, asset.Candidate.URL)
		return media.DownloadResult{
			Asset:             asset,
			Status:            media.StatusSuccess,
			ExternalReference: asset.Candidate.URL,
		}
	}

	if result, ok := m.fromIndex(asset); ok {
		return result
	}

	destDir := m.assetDir(pageID, asset.Candidate.Kind)
	fetched, err := m.client.FetchToFile(ctx, asset.Candidate.URL, destDir, asset.AssetID)
	if err != nil {
		m.logger.Errorf("download failed for %s (%s): %v", asset.AssetID, asset.Candidate.URL, err)
		return media.DownloadResult{
			Asset:         asset,
			Status:        media.StatusFailed,
			FailureReason: err.Error(),
		}
	}

	if reason, ok := m.rejectFetched(fetched); ok {
		os.Remove(fetched.Path)
		m.logger.Warnf("discarding %s: %s", asset.AssetID, reason)
		return media.DownloadResult{
			Asset:         asset,
			Status:        media.StatusFailed,
			FailureReason: reason,
			Attempts:      fetched.Attempts,
		}
	}

	m.logger.Infof("downloaded %s -> %s (%d bytes, %d attempt(s))",
		asset.AssetID, fetched.Path, fetched.Size, fetched.Attempts)

	if m.index != nil {
		if err := m.index.Record(asset.CanonicalURL, fetched.Path, fetched.Size); err != nil {
			m.logger.Warnf("failed to record %s in download index: %v", asset.AssetID, err)
		}
	}

	return media.DownloadResult{
		Asset:     asset,
		Status:    media.StatusSuccess,
		LocalPath: fetched.Path,
		FileSize:  fetched.Size,
		Attempts:  fetched.Attempts,
	}
}

// fromIndex reuses a previous run's download when the file still exists
func (m *Manager) fromIndex(asset media.SelectedAsset) (media.DownloadResult, bool) {
	if m.index == nil {
		return media.DownloadResult{}, false
	}

	path, size, ok := m.index.Lookup(asset.CanonicalURL)
	if !ok {
		return media.DownloadResult{}, false
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		return media.DownloadResult{}, false
	}

	m.logger.Infof("skipping %s, already downloaded: %s", asset.AssetID, path)
	return media.DownloadResult{
		Asset:     asset,
		Status:    media.StatusSuccess,
		LocalPath: path,
		FileSize:  size,
	}, true
}

// rejectFetched flags downloads that are not worth keeping: zero-byte bodies
// (tracker pixels) and files whose type could not be identified.
func (m *Manager) rejectFetched(fetched *FetchResult) (string, bool) {
	if fetched.Size == 0 {
		return "empty body (likely tracker pixel)", true
	}
	if fetched.Ext == unknownExtension {
		return fmt.Sprintf("unidentifiable content type (%s)", unknownExtension), true
	}
	return "", false
}

// assetDir returns output/{page_id}/images or .../videos
func (m *Manager) assetDir(pageID string, kind media.Kind) string {
	sub := "images"
	if kind == media.KindVideo {
		sub = "videos"
	}
	return filepath.Join(m.config.OutputRoot, pageID, sub)
}
