package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Fetcher defines the interface for fetching daily market data.
// Implementations return the provider's table as-is; Normalize does the rest.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) (*RawTable, error)
	Name() string
}

// newHTTPClient builds the client shared by the HTTP fetchers, with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
