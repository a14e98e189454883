// Package fetcher resolves provenance URLs to archives in the local
// mirror, downloading missing ones when allowed.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/nishad/tcgaimport/internal/errors"
	"go.uber.org/zap"
)

// Fetcher maps a URL to <mirror>/<url path>.
type Fetcher struct {
	mirror     string
	download   bool
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds fetcher settings
type Config struct {
	Mirror     string
	Download   bool
	HTTPClient *http.Client // nil uses a client without timeout
	Logger     *zap.Logger
}

// New creates a fetcher over a mirror directory
func New(cfg Config) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: 0, // archives can be large
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{mirror: cfg.Mirror, download: cfg.Download, httpClient: client, logger: logger}
}

// Path returns the mirror location of rawURL without touching disk.
func (f *Fetcher) Path(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	rel := strings.TrimPrefix(u.Path, "/")
	if rel == "" {
		return "", fmt.Errorf("url %q has no path", rawURL)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("url %q escapes the mirror", rawURL)
	}
	return filepath.Join(f.mirror, clean), nil
}

// Resolve returns the local path of rawURL. A missing file is fetched
// when downloads are enabled and is a KindMissingSource error otherwise.
func (f *Fetcher) Resolve(ctx context.Context, rawURL string) (string, error) {
	const op errors.Op = "fetcher.Resolve"

	if f.mirror == "" {
		return "", errors.E(op, errors.KindConfig, "no mirror location configured")
	}
	dst, err := f.Path(rawURL)
	if err != nil {
		return "", errors.E(op, errors.KindConfig, err)
	}

	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	} else if !os.IsNotExist(err) {
		return "", errors.E(op, errors.KindIO, err)
	}

	if !f.download {
		return "", errors.E(op, errors.KindMissingSource, fmt.Sprintf("missing source file: %s", rawURL))
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", errors.E(op, errors.KindIO, err)
	}
	f.logger.Info("downloading archive", zap.String("url", rawURL), zap.String("path", dst))
	if err := f.downloadWithHTTP(ctx, rawURL, dst); err != nil {
		return "", errors.E(op, errors.KindNetwork, err, fmt.Sprintf("failed to download %s", rawURL))
	}
	return dst, nil
}

// downloadWithHTTP writes to a temporary file and renames it into place
// once the body is complete.
func (f *Fetcher) downloadWithHTTP(ctx context.Context, rawURL, outputPath string) error {
	tmpPath := outputPath + ".tmp"

	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)
	defer out.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, outputPath)
}
