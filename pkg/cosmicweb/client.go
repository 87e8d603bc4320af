// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package cosmicweb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production cosmICweb service.
// Can be overridden via Settings.BaseURL or the COSMICWEB_URL environment
// variable for staging or self-hosted deployments.
const DefaultBaseURL = "https://cosmicweb.eu"

// getBaseURL returns the service URL to use, falling back to the default.
func getBaseURL(base string) string {
	if base == "" {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(base, "/")
}

// client wraps an http.Client with the base URL and per-request timeout shared
// by the resolver and the orchestrator.
type client struct {
	httpc   *http.Client
	base    string
	timeout time.Duration
}

func newClient(cfg Settings) *client {
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}
	return &client{
		httpc:   &http.Client{Transport: tr},
		base:    getBaseURL(cfg.BaseURL),
		timeout: timeout,
	}
}

// addAuth adds the token and user-agent headers to a request. The simulation
// API expects the "Token" authorization scheme.
func addAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	req.Header.Set("User-Agent", "cosmicweb/1")
}

// get issues a GET and returns the response body on a 2xx status.
// The caller must close the body.
func (c *client) get(ctx context.Context, urlStr, token string) (io.ReadCloser, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	addAuth(req, token)
	resp, err := c.httpc.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		cancel()
		return nil, nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, URL: urlStr}
	}
	return resp.Body, cancel, nil
}

// getJSON issues a GET against a metadata endpoint and decodes the JSON body.
// Unknown fields are tolerated; a malformed body is an *APIError.
func (c *client) getJSON(ctx context.Context, urlStr, token string, v any) error {
	body, cancel, err := c.get(ctx, urlStr, token)
	if err != nil {
		return err
	}
	defer cancel()
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return &APIError{Message: fmt.Sprintf("malformed JSON response: %v", err), URL: urlStr}
	}
	return nil
}

// Metadata endpoint URL builders.

func storeURL(base, uuid string) string {
	return fmt.Sprintf("%s/api/music/store/%s", getBaseURL(base), url.PathEscape(uuid))
}

func collectionURL(base, uuid string) string {
	return fmt.Sprintf("%s/api/collections/%s", getBaseURL(base), url.PathEscape(uuid))
}

func publicationURL(base, name string) string {
	return fmt.Sprintf("%s/api/publications/%s", getBaseURL(base), url.PathEscape(name))
}

// haloURL is the halo resource on the simulation API named by the manifest.
func haloURL(apiURL, simID string, haloID int64) string {
	return fmt.Sprintf("%s/simulation/%s/halo/%d", strings.TrimSuffix(apiURL, "/"), simID, haloID)
}

func ellipsoidsURL(halo string) string {
	return halo + "/ellipsoids"
}
