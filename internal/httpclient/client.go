// Package httpclient provides the shared HTTP client used for telemetry
// uploads. The transport is tuned for the pipeline's traffic shape:
// bursts of POSTs to a single backend host, so connections are pooled
// and kept alive across batches.
package httpclient

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xping/xping-go/errors"
)

// Client wraps http.Client with upload-appropriate transport settings
// and endpoint validation.
type Client struct {
	*http.Client
	allowedSchemes []string
}

// New creates the upload client. timeout bounds a single request
// (connect + send + response); retry budgets live above this layer.
func New(timeout time.Duration) *Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &Client{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:           dialer.DialContext,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   10, // uploads target one backend host
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		allowedSchemes: []string{"http", "https"},
	}
}

// ValidateEndpoint checks an endpoint URL before any request is built
// from it. Catches config typos (file://, missing host) at composition
// time instead of as confusing transport errors mid-run.
func (c *Client) ValidateEndpoint(endpoint string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid endpoint URL")
	}

	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, s := range c.allowedSchemes {
		if scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errors.Newf("endpoint scheme %q not allowed (allowed: %v)", scheme, c.allowedSchemes)
	}
	if u.Hostname() == "" {
		return nil, errors.New("endpoint URL missing hostname")
	}

	return u, nil
}

// Wrap wraps an existing http.Client. Used by tests to point the
// uploader at an httptest server or a stub RoundTripper.
func Wrap(client *http.Client) *Client {
	return &Client{
		Client:         client,
		allowedSchemes: []string{"http", "https"},
	}
}
