// cmd/mediascrapexter/run.go
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/valpere/MediaScrapexter/internal/config"
	"github.com/valpere/MediaScrapexter/internal/downloader"
	"github.com/valpere/MediaScrapexter/internal/extractor"
	"github.com/valpere/MediaScrapexter/internal/fetch"
	"github.com/valpere/MediaScrapexter/internal/monitoring"
	"github.com/valpere/MediaScrapexter/internal/output"
	"github.com/valpere/MediaScrapexter/internal/pipeline"
	"github.com/valpere/MediaScrapexter/internal/utils"
)

// pageEntry is one page to process: its URL and the directory-safe id its
// output lives under.
type pageEntry struct {
	URL string
	ID  string
}

// runCommand drives a full run: parse inputs, build the pipeline, process
// every page. A failing page is logged and skipped; it never halts the run.
func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "configuration file (YAML)")
	inputPath := fs.String("input", "", "page list file")
	outputDir := fs.String("output", "", "output directory")
	render := fs.Bool("render", false, "fetch pages through a headless browser")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadRunConfig(*configPath, *outputDir, *render)
	if err != nil {
		return err
	}

	pages, err := collectPages(*inputPath, fs.Args())
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no pages to process: pass URLs or -input <file>")
	}

	logger, logClose, err := buildLogger(cfg, *verbose)
	if err != nil {
		return err
	}
	defer logClose()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputs, err := output.NewManager(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer outputs.Close()

	var metrics pipeline.Metrics
	var monServer *monitoring.Server
	if cfg.Metrics.Enabled {
		manager := monitoring.NewMetricsManager("")
		metrics = manager
		monServer = monitoring.NewServer(cfg.Metrics.Address, logger)
		monServer.SetPagesTotal(len(pages))
		monServer.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			monServer.Shutdown(shutdownCtx)
		}()
	}

	var index downloader.Index
	if store := outputs.DownloadIndex(); store != nil {
		index = store
	}

	pipe, err := pipeline.New(pipelineConfig(cfg), index, metrics, logger)
	if err != nil {
		return err
	}

	fetcher, err := buildFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer fetcher.Close()

	processed, skipped := 0, 0
	var totalImages, totalVideos, totalFailed int
	var totalBytes int64
	for _, page := range pages {
		if ctx.Err() != nil {
			logger.Warn("run interrupted, stopping")
			break
		}

		html, err := fetcher.FetchPage(ctx, page.URL)
		if err != nil {
			logger.Errorf("skipping page %s (%s): %v", page.ID, page.URL, err)
			skipped++
			continue
		}

		report, err := pipe.ProcessPage(ctx, page.ID, page.URL, html)
		if err != nil {
			logger.Errorf("skipping page %s (%s): %v", page.ID, page.URL, err)
			skipped++
			continue
		}

		if err := outputs.WritePage(ctx, report); err != nil {
			logger.Errorf("failed to write report for %s: %v", page.ID, err)
			skipped++
			continue
		}

		processed++
		totalImages += report.Summary.TotalImages
		totalVideos += report.Summary.TotalVideos
		totalFailed += report.Summary.FailedAssets
		totalBytes += report.Summary.TotalBytes
		if monServer != nil {
			monServer.PageDone()
		}
	}

	logger.Infof("run finished: %d pages processed, %d skipped, %d images, %d videos, %d bytes, %d failures",
		processed, skipped, totalImages, totalVideos, totalBytes, totalFailed)
	if processed == 0 {
		return fmt.Errorf("no page could be processed")
	}
	return nil
}

// loadRunConfig loads the configuration file and applies CLI overrides
func loadRunConfig(configPath, outputDir string, render bool) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if outputDir != "" {
		cfg.OutputRoot = outputDir
	}
	if render {
		cfg.RenderPages = true
	}
	return cfg, nil
}

// collectPages merges the page list file and positional URLs
func collectPages(inputPath string, urls []string) ([]pageEntry, error) {
	var pages []pageEntry

	if inputPath != "" {
		file, err := os.Open(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open page list: %w", err)
		}
		defer file.Close()

		pages, err = parsePageList(file)
		if err != nil {
			return nil, err
		}
	}

	for _, url := range urls {
		pages = append(pages, pageEntry{URL: url})
	}

	return assignPageIDs(pages), nil
}

// parsePageList reads one page per line. A line is either a bare URL or
// "URL|name"; blank lines and #-comments are skipped.
func parsePageList(r io.Reader) ([]pageEntry, error) {
	var pages []pageEntry

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := pageEntry{URL: line}
		if url, name, found := strings.Cut(line, "|"); found {
			entry.URL = strings.TrimSpace(url)
			entry.ID = strings.TrimSpace(name)
			if entry.URL == "" {
				return nil, fmt.Errorf("page list line %d has an empty URL", lineNo)
			}
		}
		pages = append(pages, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read page list: %w", err)
	}

	return pages, nil
}

// assignPageIDs sanitizes explicit names and fills the rest with sequential
// ids, de-duplicating collisions with a numeric suffix.
func assignPageIDs(pages []pageEntry) []pageEntry {
	used := make(map[string]int)

	for i := range pages {
		id := "page_" + fmt.Sprintf("%03d", i+1)
		if pages[i].ID != "" {
			id = utils.SanitizePageID(pages[i].ID)
		}

		used[id]++
		if n := used[id]; n > 1 {
			id = fmt.Sprintf("%s_%d", id, n)
		}
		pages[i].ID = id
	}

	return pages
}

// buildLogger creates the run logger, mirroring it into a file when one is
// configured. The returned closer flushes the log file.
func buildLogger(cfg *config.Config, verbose bool) (utils.Logger, func(), error) {
	level := utils.ParseLevel(cfg.LogLevel)
	if verbose {
		level = utils.DebugLevel
	}

	out := io.Writer(os.Stdout)
	closer := func() {}
	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = func() { file.Close() }
	}

	return utils.NewLoggerWithOptions(level, out), closer, nil
}

// buildFetcher picks the page fetcher for this run
func buildFetcher(cfg *config.Config, logger utils.Logger) (fetch.Fetcher, error) {
	if cfg.RenderPages {
		return fetch.NewBrowserFetcher(fetch.BrowserConfig{
			Timeout:   cfg.RenderTimeout(),
			UserAgent: cfg.UserAgent,
		}, logger)
	}

	return fetch.NewHTTPFetcher(fetch.HTTPConfig{
		Timeout:    cfg.Timeout(),
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay(),
		UserAgent:  cfg.UserAgent,
	}, logger), nil
}

// pipelineConfig maps the run configuration onto the pipeline
func pipelineConfig(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		Extractor: extractor.Options{
			IgnorePatterns:     cfg.IgnorePatterns,
			UnwrapImageProxies: cfg.UnwrapImageProxies,
		},
		Downloader: downloader.ManagerConfig{
			Client: downloader.ClientConfig{
				Timeout:    cfg.Timeout(),
				MaxRetries: cfg.MaxRetries,
				RetryDelay: cfg.RetryDelay(),
				ChunkSize:  cfg.ChunkSize,
				UserAgent:  cfg.UserAgent,
				RateLimit:  cfg.RateLimit,
				RateBurst:  cfg.RateBurst,
			},
			Concurrency: cfg.Concurrency,
			OutputRoot:  cfg.OutputRoot,
		},
	}
}
