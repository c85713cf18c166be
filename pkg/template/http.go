package template

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPFetcher retrieves templates from a hosted storage endpoint. The
// logical name maps to <baseURL>/<name>.hwpx.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher rooted at baseURL. A nil client uses a
// default with a 30 second timeout.
func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Fetch downloads the archive bytes for a template name.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	fetchURL := f.baseURL + "/" + url.PathEscape(name) + ".hwpx"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", ErrTemplateFetch, fetchURL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrTemplateFetch, fetchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrTemplateFetch, fetchURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrTemplateFetch, fetchURL, err)
	}
	if len(data) < MinTemplateSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, below the %d byte minimum",
			ErrTemplateFetch, fetchURL, len(data), MinTemplateSize)
	}
	return data, nil
}
