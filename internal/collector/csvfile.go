package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CSVFetcher implements Fetcher over a directory of <SYMBOL>.csv exports.
// HeaderRows > 1 supports multi-level headers such as
// "Price,Close,High,..." / "Ticker,X,X,..." / "Date,,,...".
type CSVFetcher struct {
	Dir        string
	HeaderRows int
}

// NewCSVFetcher creates a fetcher reading from dir.
func NewCSVFetcher(dir string, headerRows int) *CSVFetcher {
	if headerRows < 1 {
		headerRows = 1
	}
	return &CSVFetcher{Dir: dir, HeaderRows: headerRows}
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(f.Dir, strings.ToUpper(symbol)+".csv")
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &RawTable{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	table, err := readCSVTable(file, f.HeaderRows)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if days > 0 && len(table.Rows) > days {
		table.Rows = table.Rows[len(table.Rows)-days:]
	}
	return table, nil
}

func readCSVTable(r io.Reader, headerRows int) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	table := &RawTable{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(table.Header) < headerRows {
			table.Header = append(table.Header, record)
			continue
		}
		row := make([]any, len(record))
		for i, v := range record {
			row[i] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
