package universe

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MergesAndDedupes(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "nifty50.csv", "Company Name,Industry,Symbol\nInfosys,IT,INFY\nTata,IT,TCS\nMahindra,Auto,M&M\n")
	b := writeFile(t, dir, "midcap.csv", "Ticker\n tcs \nPERSISTENT\n\n")

	got, err := Load([]string{a, b, filepath.Join(dir, "missing.csv")}, []string{"infy", "ZOMATO"}, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"INFY", "M&M", "PERSISTENT", "TCS", "ZOMATO"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %v, want %v", got, want)
	}
}

func TestLoad_AlphaOnly(t *testing.T) {
	got, err := Load(nil, []string{"M&M", "BAJAJ-AUTO", "ITC", "3MINDIA"}, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"ITC"}) {
		t.Errorf("Load = %v, want [ITC]", got)
	}
}

func TestLoad_Empty(t *testing.T) {
	if _, err := Load(nil, []string{" ", ""}, false); err == nil {
		t.Error("expected an error for an empty universe")
	}
}

func TestRead_NoSymbolColumn(t *testing.T) {
	if _, err := Read(strings.NewReader("Name,Industry\nInfosys,IT\n")); err == nil {
		t.Error("expected an error without a Symbol or Ticker column")
	}
}

func TestRead_PrefersSymbolOverTicker(t *testing.T) {
	got, err := Read(strings.NewReader("Ticker,Symbol\nINFY.NS,INFY\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"INFY"}) {
		t.Errorf("Read = %v, want [INFY]", got)
	}
}
