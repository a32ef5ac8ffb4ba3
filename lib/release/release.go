// Copyright 2026 The Codexbridge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/relaykit/codexbridge/lib/netutil"
)

// Release is the subset of the GitHub release metadata the installer
// reads.
type Release struct {
	Tag    string  `json:"tag_name"`
	Assets []Asset `json:"assets"`
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
	Size int64  `json:"size"`
}

// Client fetches release metadata and assets over HTTPS.
type Client struct {
	// HTTPClient performs requests. Nil means http.DefaultClient.
	HTTPClient *http.Client

	// Feed is the "latest release" metadata URL.
	Feed string

	// UserAgent is sent on every request; GitHub rejects requests
	// without one.
	UserAgent string
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) get(ctx context.Context, url, accept string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	request.Header.Set("Accept", accept)
	if c.UserAgent != "" {
		request.Header.Set("User-Agent", c.UserAgent)
	}
	response, err := c.httpClient().Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		body := netutil.ErrorBody(response.Body)
		response.Body.Close()
		return nil, fmt.Errorf("fetching %s: HTTP %d: %s", url, response.StatusCode, body)
	}
	return response, nil
}

// Latest fetches the feed's current release.
func (c *Client) Latest(ctx context.Context) (Release, error) {
	response, err := c.get(ctx, c.Feed, "application/vnd.github+json")
	if err != nil {
		return Release{}, err
	}
	defer response.Body.Close()

	var release Release
	if err := netutil.DecodeResponse(response.Body, &release); err != nil {
		return Release{}, fmt.Errorf("release metadata from %s: %w", c.Feed, err)
	}
	return release, nil
}

// Download opens the asset at url. The caller closes the returned
// body.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	response, err := c.get(ctx, url, "application/octet-stream")
	if err != nil {
		return nil, err
	}
	return response.Body, nil
}

// AssetSuffix is the name suffix of the archive built for goos/arch,
// for example "_darwin_arm64.tar.gz".
func AssetSuffix(goos, arch string) string {
	return "_" + goos + "_" + arch + ".tar.gz"
}

// SelectAsset returns the release asset built for goos/arch.
func SelectAsset(release Release, goos, arch string) (Asset, error) {
	suffix := AssetSuffix(goos, arch)
	for _, asset := range release.Assets {
		if strings.HasSuffix(strings.ToLower(asset.Name), suffix) {
			return asset, nil
		}
	}
	return Asset{}, fmt.Errorf("release %s has no asset ending in %s", release.Tag, suffix)
}

// SupportedArch reports whether a proxy build exists for arch.
func SupportedArch(arch string) bool {
	return arch == "arm64" || arch == "amd64"
}
