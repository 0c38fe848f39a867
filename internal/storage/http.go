package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bobiverse/docxfill"
)

// HTTPStore - read-only templates served by any web server
type HTTPStore struct {
	baseURL    string
	downloader docxfill.Downloader
}

// NewHTTPStore - keys are resolved against baseURL,
// nil downloader means docxfill.DefaultDownloader
func NewHTTPStore(baseURL string, dl docxfill.Downloader) *HTTPStore {
	if dl == nil {
		dl = docxfill.DefaultDownloader
	}
	return &HTTPStore{
		baseURL:    strings.TrimRight(baseURL, "/") + "/",
		downloader: dl,
	}
}

// Get ..
func (s *HTTPStore) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	var escaped []string
	for _, part := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}

	buf, err := s.downloader.Download(ctx, s.baseURL+strings.Join(escaped, "/"))
	if errors.Is(err, http.ErrMissingFile) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return buf, nil
}

// Put - always ErrReadOnly
func (s *HTTPStore) Put(context.Context, string, []byte, string) error {
	return ErrReadOnly
}
