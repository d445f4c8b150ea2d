package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// RESTFetcher implements Fetcher against a generic bars REST API that returns
// a JSON array of bar objects, optionally nested under DataPath.
type RESTFetcher struct {
	BaseURL  string
	APIKey   string
	DataPath string // gjson path to the bar array; empty means the document root
	Client   *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, dataPath, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		DataPath: dataPath,
		Client:   newHTTPClient(proxyURL),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (*RawTable, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d", f.BaseURL, url.QueryEscape(symbol), days)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode bars: invalid JSON")
	}

	doc := gjson.ParseBytes(body)
	if f.DataPath != "" {
		doc = doc.Get(f.DataPath)
	}
	if !doc.IsArray() {
		return nil, fmt.Errorf("decode bars: expected an array at %q", f.DataPath)
	}
	return tableFromJSON(doc.Array()), nil
}

// tableFromJSON takes the column set from the first object; later objects are
// read by the same keys.
func tableFromJSON(items []gjson.Result) *RawTable {
	table := &RawTable{}
	if len(items) == 0 {
		return table
	}
	var columns []string
	items[0].ForEach(func(key, _ gjson.Result) bool {
		columns = append(columns, key.String())
		return true
	})
	table.Header = [][]string{columns}

	for _, item := range items {
		row := make([]any, len(columns))
		for i, col := range columns {
			row[i] = jsonCell(item.Get(gjson.Escape(col)))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func jsonCell(v gjson.Result) any {
	switch v.Type {
	case gjson.Number:
		return v.Float()
	case gjson.String:
		return v.String()
	default:
		return nil
	}
}
