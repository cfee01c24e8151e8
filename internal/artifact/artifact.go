// Package artifact fetches the published checksum of a console build tarball.
package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chainguard-dev/clog"
)

// DefaultURLTemplate is where CI publishes the sha256 of each console build.
const DefaultURLTemplate = "https://dl.oxide.computer/releases/console/{commit}.sha256.txt"

// CommitPlaceholder is replaced by the commit hash in a URL template.
const CommitPlaceholder = "{commit}"

// StatusError is returned when the checksum endpoint answers with a
// non-success status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// ChecksumURL fills the commit into template.
func ChecksumURL(template, commit string) string {
	return strings.ReplaceAll(template, CommitPlaceholder, commit)
}

// Fetcher downloads checksums over HTTP.
type Fetcher struct {
	// Client defaults to http.DefaultClient
	Client *http.Client

	// URLTemplate defaults to DefaultURLTemplate
	URLTemplate string
}

// FetchChecksum returns the trimmed body of the checksum file for commit.
func (f Fetcher) FetchChecksum(ctx context.Context, commit string) (string, error) {
	url := ChecksumURL(f.template(), commit)
	clog.FromContext(ctx).Debugf("fetching %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return strings.TrimSpace(string(body)), nil
}

func (f Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f Fetcher) template() string {
	if f.URLTemplate != "" {
		return f.URLTemplate
	}
	return DefaultURLTemplate
}
