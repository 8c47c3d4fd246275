// Package datasource loads dataset bytes from a file or an HTTP URL.
package datasource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/blocksched/pkg/ports"
)

// New returns an HTTP source for http(s) locations and a file source otherwise.
func New(location string, fs ports.FileSystem, cacheDir string, logger ports.Logger) ports.DatasetSource {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTP(location, fs, cacheDir, logger)
	}
	return NewFile(location, fs)
}

// File reads a dataset from the filesystem.
type File struct {
	path string
	fs   ports.FileSystem
}

// NewFile creates a file source.
func NewFile(path string, fs ports.FileSystem) *File {
	return &File{path: path, fs: fs}
}

// Fetch reads the file.
func (f *File) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := f.fs.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return data, nil
}

// Name returns the path.
func (f *File) Name() string { return f.path }

// Path returns the path for watchers.
func (f *File) Path() string { return f.path }

// cacheMeta holds the validators of the cached body.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HTTP fetches a dataset with conditional requests and keeps the last good
// body on disk. Network failures and non-OK responses fall back to the cache.
type HTTP struct {
	url      string
	client   *http.Client
	fs       ports.FileSystem
	cacheDir string
	logger   ports.Logger
}

// NewHTTP creates an HTTP source caching under cacheDir. An empty cacheDir
// disables caching.
func NewHTTP(url string, fs ports.FileSystem, cacheDir string, logger ports.Logger) *HTTP {
	return &HTTP{
		url:      url,
		client:   &http.Client{Timeout: 15 * time.Second},
		fs:       fs,
		cacheDir: cacheDir,
		logger:   logger,
	}
}

// Name returns the URL.
func (h *HTTP) Name() string { return h.url }

// Fetch returns the current dataset body.
func (h *HTTP) Fetch(ctx context.Context) ([]byte, error) {
	meta, cached := h.loadCache()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if len(cached) > 0 {
			h.logger.Warn("Using cached dataset for %s", h.url)
			return cached, nil
		}
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
		h.saveCache(cacheMeta{
			URL:          h.url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}, body)
		return body, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return nil, errors.New("fetch dataset: 304 Not Modified without a cached body")
		}
		h.logger.Debug("Dataset not modified: %s", h.url)
		return cached, nil

	default:
		if len(cached) > 0 {
			h.logger.Warn("Using cached dataset for %s", h.url)
			return cached, nil
		}
		return nil, fmt.Errorf("fetch dataset: %s", resp.Status)
	}
}

func (h *HTTP) cachePath() string {
	sum := sha256.Sum256([]byte(h.url))
	return filepath.Join(h.cacheDir, hex.EncodeToString(sum[:8]))
}

func (h *HTTP) loadCache() (cacheMeta, []byte) {
	var meta cacheMeta
	if h.cacheDir == "" {
		return meta, nil
	}
	dir := h.cachePath()
	body, err := h.fs.ReadFile(filepath.Join(dir, "body"))
	if err != nil {
		return meta, nil
	}
	if data, err := h.fs.ReadFile(filepath.Join(dir, "meta.json")); err == nil {
		_ = json.Unmarshal(data, &meta)
	}
	return meta, body
}

// saveCache writes the body before the metadata so validators never describe
// a missing body. Failures are logged and otherwise ignored.
func (h *HTTP) saveCache(meta cacheMeta, body []byte) {
	if h.cacheDir == "" {
		return
	}
	dir := h.cachePath()
	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err == nil {
		err = h.fs.WriteFile(filepath.Join(dir, "body"), body)
	}
	if err == nil {
		err = h.fs.WriteFile(filepath.Join(dir, "meta.json"), data)
	}
	if err != nil {
		h.logger.Warn("Failed to cache dataset: %v", err)
	}
}

var (
	_ ports.DatasetSource = (*File)(nil)
	_ ports.DatasetSource = (*HTTP)(nil)
)
