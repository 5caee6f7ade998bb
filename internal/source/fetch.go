package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	appLog "icstrim/internal/log"
	"icstrim/internal/sink"
)

// Result is the outcome of loading one input calendar.
type Result struct {
	Location  string
	Body      []byte
	FromCache bool // true if a cached body was reused for a URL input
}

// cacheEntry holds HTTP cache metadata for a single calendar URL.
type cacheEntry struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Fetcher loads input calendars from local paths or http(s) URLs. URL
// bodies are cached on disk and revalidated with ETag / Last-Modified.
type Fetcher struct {
	client   *http.Client
	cacheDir string
}

// NewFetcher creates a Fetcher caching under cacheDir. An empty cacheDir
// falls back to the user cache directory.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		if base, err := os.UserCacheDir(); err == nil {
			cacheDir = filepath.Join(base, "icstrim")
		} else {
			cacheDir = "./var/ics-cache"
		}
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cacheDir: cacheDir,
	}
}

// IsURL reports whether location names an http(s) resource.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Load returns the bytes behind location, a local path or an http(s) URL.
func (f *Fetcher) Load(ctx context.Context, location string) (Result, error) {
	if location == "" {
		return Result{}, errors.New("input location is empty")
	}
	if IsURL(location) {
		return f.fetch(ctx, location)
	}

	body, err := os.ReadFile(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, errors.WithHintf(errors.Wrapf(err, "input file %q", location), "check the --infile path")
		}
		return Result{}, errors.Wrapf(err, "read input file %q", location)
	}
	appLog.Debug("input file read", "path", location, "bytes", len(body))
	return Result{Location: location, Body: body}, nil
}

// fetch retrieves a URL, honoring ETag and Last-Modified. On network errors
// or non-OK statuses a previously cached body is returned instead.
func (f *Fetcher) fetch(ctx context.Context, url string) (Result, error) {
	cachePath := f.cachePathForURL(url)
	if err := os.MkdirAll(cachePath, 0o700); err != nil {
		return Result{}, errors.Wrap(err, "create cache directory")
	}

	meta, _ := f.loadCacheMeta(cachePath)
	cachedBody, _ := f.loadCacheBody(cachePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, errors.Wrap(err, "build request")
	}

	// Conditional headers only make sense when the body is still on disk.
	if len(cachedBody) > 0 && meta.URL == url {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	appLog.Debug("ics fetch start", "url", redactURL(url))

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cachedBody) > 0 && ctx.Err() == nil {
			appLog.Error("ics fetch network error, using cached body", err, "url", redactURL(url))
			return Result{Location: url, Body: cachedBody, FromCache: true}, nil
		}
		return Result{}, errors.Wrapf(err, "fetch %s", redactURL(url))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return Result{}, errors.Wrapf(readErr, "read body of %s", redactURL(url))
		}

		newMeta := cacheEntry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := f.saveCache(cachePath, newMeta, body); err != nil {
			// The fresh body is still usable.
			appLog.Error("ics cache save failed", err, "url", redactURL(url))
		}

		appLog.Debug("ics fetch success", "url", redactURL(url), "status", resp.StatusCode, "bytes", len(body))
		return Result{Location: url, Body: body}, nil

	case http.StatusNotModified:
		if len(cachedBody) == 0 {
			return Result{}, errors.New("received 304 Not Modified but no cached body available")
		}
		appLog.Debug("ics fetch not modified; using cache", "url", redactURL(url))
		return Result{Location: url, Body: cachedBody, FromCache: true}, nil

	default:
		if len(cachedBody) > 0 {
			appLog.Error("ics fetch non-OK, using cached body", errors.New(resp.Status), "url", redactURL(url), "status", resp.StatusCode)
			return Result{Location: url, Body: cachedBody, FromCache: true}, nil
		}
		return Result{}, errors.Newf("fetch %s: %s", redactURL(url), resp.Status)
	}
}

func (f *Fetcher) cachePathForURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	// First 16 hex chars as directory name.
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func (f *Fetcher) loadCacheMeta(cachePath string) (cacheEntry, error) {
	var meta cacheEntry
	data, err := os.ReadFile(filepath.Join(cachePath, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheEntry{}, err
	}
	return meta, nil
}

func (f *Fetcher) loadCacheBody(cachePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(cachePath, "body.ics"))
}

func (f *Fetcher) saveCache(cachePath string, meta cacheEntry, body []byte) error {
	// Write body first so meta never points at missing body.
	if err := sink.WriteFileAtomic(filepath.Join(cachePath, "body.ics"), body, 0o600); err != nil {
		return err
	}

	meta.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return sink.WriteFileAtomic(filepath.Join(cachePath, "meta.json"), data, 0o600)
}

// redactURL hides path and query of a calendar URL for logging; private
// feed URLs usually embed a token.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := strings.Index(u, "://")
	if i == -1 {
		return "ics://...(redacted)"
	}
	i += 3
	j := strings.IndexByte(u[i:], '/')
	if j == -1 {
		return u
	}
	return u[:i+j] + redactedSuffix
}
