package collector

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/model"
)

// DefaultMinBars is the history needed for the longest required indicator.
const DefaultMinBars = 100

var (
	// ErrEmptyInput means the provider returned no rows at all.
	ErrEmptyInput = errors.New("empty input")
	// ErrInsufficientHistory means fewer usable rows than the minimum remain.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// IsSkip reports whether err is a per-instrument skip condition rather than a
// provider failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrInsufficientHistory)
}

// RawTable is a provider response before normalization. Header holds one or
// more header levels, each with one label per column; Rows hold untyped cells.
type RawTable struct {
	Header [][]string
	Rows   [][]any
}

// NewRawTable creates a table with a single header level.
func NewRawTable(columns ...string) *RawTable {
	return &RawTable{Header: [][]string{columns}}
}

// Append adds one row of cells.
func (t *RawTable) Append(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

func (t *RawTable) width() int {
	w := 0
	for _, level := range t.Header {
		if len(level) > w {
			w = len(level)
		}
	}
	return w
}

type field int

const (
	fieldDate field = iota
	fieldOpen
	fieldHigh
	fieldLow
	fieldClose
	fieldVolume
	fieldCount
)

var fieldPrefixes = [fieldCount][]string{
	fieldDate:   {"date", "datetime", "timestamp", "time"},
	fieldOpen:   {"open"},
	fieldHigh:   {"high"},
	fieldLow:    {"low"},
	fieldClose:  {"close"},
	fieldVolume: {"volume"},
}

// resolveColumns maps each canonical field to a column. Labels are matched by
// prefix on the primary header level first, which is the first level naming a
// date or close column. Other levels only fill in columns left unassigned, so
// a ticker row such as "LOWE" cannot claim a price column.
func resolveColumns(header [][]string, width int) [fieldCount]int {
	var cols [fieldCount]int
	for f := range cols {
		cols[f] = -1
	}
	assigned := make([]bool, width)
	assign := func(levels [][]string) {
		for col := 0; col < width; col++ {
			if assigned[col] {
				continue
			}
			for f := field(0); f < fieldCount; f++ {
				if cols[f] >= 0 {
					continue
				}
				if columnMatches(levels, col, fieldPrefixes[f]) {
					cols[f] = col
					assigned[col] = true
					break
				}
			}
		}
	}

	if primary := primaryLevel(header, width); primary >= 0 {
		assign(header[primary : primary+1])
	}
	assign(header)
	return cols
}

func primaryLevel(header [][]string, width int) int {
	for i, level := range header {
		for col := 0; col < width; col++ {
			if columnMatches([][]string{level}, col, fieldPrefixes[fieldClose]) ||
				columnMatches([][]string{level}, col, fieldPrefixes[fieldDate]) {
				return i
			}
		}
	}
	return -1
}

func columnMatches(header [][]string, col int, prefixes []string) bool {
	for _, level := range header {
		if col >= len(level) {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(level[col]))
		for _, p := range prefixes {
			if strings.HasPrefix(label, p) {
				return true
			}
		}
	}
	return false
}

// Normalize flattens a raw provider table into a canonical series.
//
// Unparseable numeric cells become NaN. Rows without a usable date are
// dropped. The result is sorted by date; for duplicate dates the last row wins.
func Normalize(symbol string, table *RawTable, minBars int) (model.Series, error) {
	series := model.Series{Symbol: symbol}
	if table == nil || len(table.Rows) == 0 {
		return series, fmt.Errorf("%s: %w", symbol, ErrEmptyInput)
	}

	cols := resolveColumns(table.Header, table.width())
	if cols[fieldDate] < 0 || cols[fieldClose] < 0 {
		return series, fmt.Errorf("%s: no date/close column in header %v", symbol, table.Header)
	}

	byDay := make(map[string]int, len(table.Rows))
	bars := make([]model.OHLCV, 0, len(table.Rows))
	for _, row := range table.Rows {
		ts, ok := toTime(cell(row, cols[fieldDate]))
		if !ok {
			continue
		}
		bar := model.OHLCV{
			Time:   ts,
			Open:   toFloat(cell(row, cols[fieldOpen])),
			High:   toFloat(cell(row, cols[fieldHigh])),
			Low:    toFloat(cell(row, cols[fieldLow])),
			Close:  toFloat(cell(row, cols[fieldClose])),
			Volume: toFloat(cell(row, cols[fieldVolume])),
		}
		day := ts.Format("2006-01-02")
		if i, dup := byDay[day]; dup {
			bars[i] = bar
			continue
		}
		byDay[day] = len(bars)
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	series.Bars = bars

	if len(bars) == 0 {
		return series, fmt.Errorf("%s: %w", symbol, ErrEmptyInput)
	}
	if len(bars) < minBars {
		return series, fmt.Errorf("%s: %d bars, need %d: %w", symbol, len(bars), minBars, ErrInsufficientHistory)
	}
	return series, nil
}

func cell(row []any, col int) any {
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}

// toFloat coerces a cell to float64. Anything non-numeric becomes NaN.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case *float64:
		if n == nil {
			return math.NaN()
		}
		return *n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339,
	"02-01-2006",
	"2006/01/02",
}

// toTime accepts time values, unix seconds and the common date layouts.
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case int64:
		return time.Unix(t, 0).UTC(), true
	case int:
		return time.Unix(int64(t), 0).UTC(), true
	case float64:
		if math.IsNaN(t) || t <= 0 {
			return time.Time{}, false
		}
		return time.Unix(int64(t), 0).UTC(), true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}
