// Package bucket implements storage.Client against an HTTP object store
// exposing a bucket API (upload via authenticated POST, public read URLs).
package bucket

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medprep/importer/internal/storage"
)

// Client implements storage.Client for an HTTP bucket store
type Client struct {
	baseURL    string
	bucket     string
	token      string
	httpClient *http.Client
}

// NewClient creates a new bucket storage client
func NewClient(baseURL, bucket, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) Upload(ctx context.Context, path string, content io.Reader, contentType string) (string, error) {
	uploadURL := fmt.Sprintf("%s/object/%s/%s", c.baseURL, c.bucket, url.PathEscape(path))

	req, err := http.NewRequestWithContext(ctx, "POST", uploadURL, content)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)
	// Repeated runs re-upload the same filenames
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &storage.RetryableError{Err: fmt.Errorf("upload of %s failed: %w", path, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		body, _ := io.ReadAll(resp.Body)
		return "", &storage.RetryableError{
			Err: fmt.Errorf("bucket API error (status %d): %s", resp.StatusCode, string(body)),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("bucket API error (status %d): %s", resp.StatusCode, string(body))
	}

	return c.PublicURL(path), nil
}

// PublicURL returns the unauthenticated read URL for an object.
func (c *Client) PublicURL(path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, c.bucket, url.PathEscape(path))
}
