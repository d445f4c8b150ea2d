// Package universe loads the list of instruments to scan.
package universe

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

// symbolColumns are the header names recognized as the ticker column, in order of preference.
var symbolColumns = []string{"symbol", "ticker"}

// Load reads instrument lists from CSV files and merges them with the static
// symbols. The result is trimmed, upper-cased, de-duplicated and sorted.
// With alphaOnly, tickers containing anything but letters (e.g. "M&M",
// "BAJAJ-AUTO") are dropped. A file that is missing or has no symbol column is
// logged and skipped.
func Load(files, symbols []string, alphaOnly bool) ([]string, error) {
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if alphaOnly && !isAlpha(s) {
			return
		}
		seen[s] = struct{}{}
	}

	for _, s := range symbols {
		add(s)
	}
	for _, path := range files {
		list, err := ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("universe file skipped")
			continue
		}
		for _, s := range list {
			add(s)
		}
	}

	if len(seen) == 0 {
		return nil, errors.New("universe is empty")
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// ReadFile returns the raw symbol column of one CSV file.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read returns the values of the Symbol (or Ticker) column.
func Read(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := symbolColumn(header)
	if col < 0 {
		return nil, fmt.Errorf("no Symbol or Ticker column in header %v", header)
	}

	var out []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if col < len(record) {
			out = append(out, record[col])
		}
	}
	return out, nil
}

func symbolColumn(header []string) int {
	for _, name := range symbolColumns {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
				return i
			}
		}
	}
	return -1
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
