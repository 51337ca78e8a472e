// SPDX-License-Identifier: MPL-2.0

package support

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/satchel-build/satchel/internal/diag"
	"github.com/satchel-build/satchel/internal/issue"
)

const defaultTimeout = 5 * time.Minute

type (
	// Package identifies a support package by URL or local path, with an
	// optional SHA256 the archive must match.
	Package struct {
		URL    string
		SHA256 string
	}

	// Installer fetches and unpacks support packages.
	Installer struct {
		client    *http.Client
		userAgent string
		cacheDir  string
		log       *diag.Logger
	}

	// Option configures an Installer.
	Option func(*Installer)
)

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(i *Installer) { i.client = c }
}

// WithUserAgent sets the User-Agent header sent with downloads.
func WithUserAgent(ua string) Option {
	return func(i *Installer) { i.userAgent = ua }
}

// WithLogger sets the logger download progress is reported to.
func WithLogger(l *diag.Logger) Option {
	return func(i *Installer) { i.log = l }
}

// NewInstaller creates an Installer caching downloads under cacheDir.
func NewInstaller(cacheDir string, opts ...Option) *Installer {
	i := &Installer{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: "satchel",
		cacheDir:  cacheDir,
		log:       diag.Discard(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Install fetches pkg, verifies its checksum when one is given and unpacks it
// into dest.
func (i *Installer) Install(ctx context.Context, pkg Package, dest string) error {
	archive, err := i.Fetch(ctx, pkg.URL)
	if err != nil {
		return err
	}
	if pkg.SHA256 != "" {
		if !IsValidHexHash(pkg.SHA256) {
			return issue.Config(nil, "support_sha256 %q is not a SHA256 hash", pkg.SHA256)
		}
		if err := VerifyFile(archive, pkg.SHA256); err != nil {
			return issue.New(issue.InvalidSupportPackage{Filename: filepath.Base(archive)}, issue.WithCause(err))
		}
	}
	i.log.Info("unpacking support package", "archive", archive, "dest", dest)
	return Unpack(archive, dest)
}

// Fetch returns a local path for the package at location. Local paths are
// used in place; URLs are downloaded once and then served from the cache.
func (i *Installer) Fetch(ctx context.Context, location string) (string, error) {
	if !IsURL(location) {
		if _, err := os.Stat(location); err != nil {
			return "", issue.New(issue.InvalidSupportPackage{Filename: location}, issue.WithCause(err))
		}
		return location, nil
	}

	dir := filepath.Join(i.cacheDir, "support", urlKey(location))
	target := filepath.Join(dir, archiveName(location))
	if _, err := os.Stat(target); err == nil {
		i.log.Info("using cached support package", "path", target)
		return target, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	i.log.Info("downloading support package", "url", redactURL(location))
	tmp, err := i.download(ctx, location, dir)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("moving download into cache: %w", err)
	}
	return target, nil
}

func (i *Installer) download(ctx context.Context, location, dir string) (_ string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, http.NoBody)
	if err != nil {
		return "", issue.New(issue.BadNetworkResource{URL: redactURL(location)}, issue.WithCause(err))
	}
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", issue.New(issue.NetworkFailure{Action: "download support package"}, issue.WithCause(err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", issue.New(issue.MissingNetworkResource{URL: redactURL(location)})
	case resp.StatusCode != http.StatusOK:
		return "", issue.New(issue.BadNetworkResource{URL: redactURL(location), StatusCode: resp.StatusCode})
	}

	tmp, err := os.CreateTemp(dir, "download-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if closeErr := tmp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", issue.New(issue.NetworkFailure{Action: "download support package"}, issue.WithCause(err))
	}
	return tmp.Name(), nil
}

// IsURL reports whether location is an http or https URL rather than a path.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// archiveName is the file name a URL is cached under.
func archiveName(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return "support-package"
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." || name == "" {
		return "support-package"
	}
	return name
}

// redactURL strips query parameters and fragments, which may carry tokens.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
