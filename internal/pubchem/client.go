package pubchem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"mdprep/internal/services"
)

// Fetcher defines the structure download operation the pipeline needs.
type Fetcher interface {
	DownloadSDF(ctx context.Context, cid int64, destPath string) error
}

// Client downloads compound structure records from the PubChem PUG REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a PubChem client. The timeout bounds each individual request;
// the 3D attempt and the 2D fallback each get the full budget.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("pubchem base url required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// DownloadSDF fetches the SDF record for cid into destPath, preferring the 3D
// conformer record and falling back to the 2D record when the 3D request
// fails or the compound has no 3D conformer.
func (c *Client) DownloadSDF(ctx context.Context, cid int64, destPath string) error {
	if cid <= 0 {
		return services.Wrap(services.ErrValidation, "fetch", "pubchem", fmt.Sprintf("invalid cid %d", cid), nil)
	}

	err3d := c.fetchRecord(ctx, c.recordURL(cid, true), destPath)
	if err3d == nil {
		return nil
	}

	err2d := c.fetchRecord(ctx, c.recordURL(cid, false), destPath)
	if err2d == nil {
		return nil
	}

	return services.Wrap(services.ErrNotFound, "fetch", "pubchem",
		fmt.Sprintf("cid %d: 3d: %v; 2d: %v", cid, err3d, err2d), nil)
}

func (c *Client) recordURL(cid int64, threeD bool) string {
	url := fmt.Sprintf("%s/compound/cid/%d/SDF", c.baseURL, cid)
	if threeD {
		url += "?record_type=3d"
	}
	return url
}

func (c *Client) fetchRecord(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused across the fallback attempt.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return out.Close()
}
