package docxfill

import (
	"context"
	"fmt"
	"net/http"
)

// DownloadClient to use instead of default http.Client
type DownloadClient struct {
	Client *http.Client
}

// Downloader ..
type Downloader interface {
	Download(ctx context.Context, urlStr string) ([]byte, error)
}

// DefaultDownloader to use as default client
var DefaultDownloader Downloader = &DownloadClient{}

// Download (satisfy interface) - get url contents.
// Missing file is reported as http.ErrMissingFile
func (dc DownloadClient) Download(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}

	client := dc.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req) // #nosec G107 - allowed url variable here
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close() // #nosec G104
		return nil, fmt.Errorf("download %s: %w", urlStr, http.ErrMissingFile)
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close() // #nosec G104
		return nil, fmt.Errorf("download %s: unexpected status %s", urlStr, resp.Status)
	}

	return readerBytes(resp.Body)
}
