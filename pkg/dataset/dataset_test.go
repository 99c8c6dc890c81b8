package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const scenarioCSV = `country,1800,1801
Albania,500,510
Afghanistan,603,1.2k
`

func mustReadWide(t *testing.T, csv string) *WideTable {
	t.Helper()
	wide, err := ReadWide(strings.NewReader(csv), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadWide: %v", err)
	}
	return wide
}

func TestReadWide_SortsCountriesAndCleansCells(t *testing.T) {
	wide := mustReadWide(t, scenarioCSV)

	if diff := cmp.Diff([]string{"Afghanistan", "Albania"}, wide.Countries); diff != "" {
		t.Fatalf("countries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1800, 1801}, wide.Years); diff != "" {
		t.Fatalf("years mismatch (-want +got):\n%s", diff)
	}
	want := [][]float64{{603, 1200}, {500, 510}}
	if diff := cmp.Diff(want, wide.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestReadWide_OrdersYearColumns(t *testing.T) {
	wide := mustReadWide(t, "country,1802,1800,1801\nChad,3,1,2\n")
	if diff := cmp.Diff([]int{1800, 1801, 1802}, wide.Years); diff != "" {
		t.Fatalf("years mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]float64{{1, 2, 3}}, wide.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestReadWide_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		opts ReadOptions
	}{
		{"empty", "", ReadOptions{}},
		{"header only", "country,1800\n", ReadOptions{}},
		{"bad year", "country,eighteen\nChad,1\n", ReadOptions{}},
		{"duplicate year", "country,1800,1800\nChad,1,2\n", ReadOptions{}},
		{"bad cell", "country,1800,1801\nChad,1,2M\n", ReadOptions{}},
		{"ragged row", "country,1800,1801\nChad,1\n", ReadOptions{}},
		{"duplicate country", "country,1800\nChad,1\nChad,2\n", ReadOptions{}},
		{"empty country", "country,1800\n,1\n", ReadOptions{}},
		{"country count", "country,1800\nChad,1\n", ReadOptions{ExpectCountries: 195}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadWide(strings.NewReader(tt.csv), tt.opts)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
		})
	}
}

func TestReadWide_BadCellPosition(t *testing.T) {
	_, err := ReadWide(strings.NewReader("country,1800,1801\nChad,1,2M\n"), ReadOptions{})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Row != 1 || pe.Column != 2 || pe.Value != "2M" {
		t.Fatalf("unexpected position: %#v", pe)
	}
}

func TestTidy_Shape(t *testing.T) {
	f, err := os.Open("testdata/gdp_small.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	wide, err := ReadWide(f, ReadOptions{ExpectCountries: 5})
	if err != nil {
		t.Fatalf("ReadWide: %v", err)
	}
	tidy := wide.Tidy()

	if tidy.Len() != len(wide.Countries)*len(wide.Years) {
		t.Fatalf("expected %d records, got %d", len(wide.Countries)*len(wide.Years), tidy.Len())
	}

	type key struct {
		country string
		year    int
	}
	seen := make(map[key]float64)
	for _, r := range tidy.Records() {
		k := key{r.Country, r.Year}
		if _, dup := seen[k]; dup {
			t.Fatalf("duplicate record for %v", k)
		}
		seen[k] = r.GDPPerCapita
	}
	for i, c := range wide.Countries {
		for j, y := range wide.Years {
			if got := seen[key{c, y}]; got != wide.Values[i][j] {
				t.Errorf("%s %d: got %v, want %v", c, y, got, wide.Values[i][j])
			}
		}
	}
}

func TestTidy_Order(t *testing.T) {
	tidy := mustReadWide(t, scenarioCSV).Tidy()
	want := []Record{
		{Year: 1800, Country: "Afghanistan", GDPPerCapita: 603},
		{Year: 1801, Country: "Afghanistan", GDPPerCapita: 1200},
		{Year: 1800, Country: "Albania", GDPPerCapita: 500},
		{Year: 1801, Country: "Albania", GDPPerCapita: 510},
	}
	if diff := cmp.Diff(want, tidy.Records()); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Afghanistan", "Albania"}, tidy.Countries()); diff != "" {
		t.Fatalf("countries mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_EndToEnd(t *testing.T) {
	tidy := mustReadWide(t, scenarioCSV).Tidy()
	got := tidy.Filter(Selection{YearMin: 1801, YearMax: 1801, Countries: []string{"Albania"}})
	want := []Record{{Year: 1801, Country: "Albania", GDPPerCapita: 510}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("filtered view mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_EmptyCountriesMeansAll(t *testing.T) {
	tidy := mustReadWide(t, scenarioCSV).Tidy()
	got := tidy.Filter(Selection{YearMin: 1800, YearMax: 1800})
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(got), got)
	}
	for _, r := range got {
		if r.Year != 1800 {
			t.Errorf("record outside year range: %v", r)
		}
	}
}

func TestFilter_InclusiveBounds(t *testing.T) {
	tidy := mustReadWide(t, "country,1800,1801,1802,1803\nChad,1,2,3,4\n").Tidy()
	got := tidy.Filter(Selection{YearMin: 1801, YearMax: 1802})
	var years []int
	for _, r := range got {
		years = append(years, r.Year)
	}
	if diff := cmp.Diff([]int{1801, 1802}, years); diff != "" {
		t.Fatalf("years mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	tidy := mustReadWide(t, scenarioCSV).Tidy()
	sel := Selection{YearMin: 1800, YearMax: 1801, Countries: []string{"Afghanistan"}}
	first := tidy.Filter(sel)
	second := tidy.Filter(sel)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeated filter differs (-first +second):\n%s", diff)
	}
	if tidy.Len() != 4 {
		t.Fatalf("filter mutated table: %d records", tidy.Len())
	}
}

func TestFilter_OutOfRangeIsEmpty(t *testing.T) {
	tidy := mustReadWide(t, scenarioCSV).Tidy()
	for _, sel := range []Selection{
		{YearMin: 1700, YearMax: 1750},
		{YearMin: 1900, YearMax: 2000},
		{YearMin: 1801, YearMax: 1800},
		{YearMin: 1800, YearMax: 1801, Countries: []string{"Atlantis"}},
	} {
		got := tidy.Filter(sel)
		if got == nil || len(got) != 0 {
			t.Errorf("Filter(%+v) = %#v, want empty non-nil slice", sel, got)
		}
	}
}

func TestBoundsTicks(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		want   []int
	}{
		{"even", Bounds{1800, 2100}, []int{1800, 1850, 1900, 1950, 2000, 2050, 2100}},
		{"uneven", Bounds{1800, 1920}, []int{1800, 1850, 1900, 1920}},
		{"single year", Bounds{1800, 1800}, []int{1800}},
		{"inverted", Bounds{1900, 1800}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.bounds.Ticks(DefaultTickStep)); diff != "" {
				t.Fatalf("ticks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoundsClamp(t *testing.T) {
	b := Bounds{MinYear: 1800, MaxYear: 2100}
	got := b.Clamp(Selection{YearMin: 1700, YearMax: 2500, Countries: []string{"Chad"}})
	want := Selection{YearMin: 1800, YearMax: 2100, Countries: []string{"Chad"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("clamp mismatch (-want +got):\n%s", diff)
	}

	got = b.Clamp(Selection{YearMin: 2000, YearMax: 1900})
	if got.YearMin != 1900 || got.YearMax != 2000 {
		t.Fatalf("expected swapped bounds, got %+v", got)
	}
}

func TestLoad_FromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(scenarioCSV))
	}))
	defer srv.Close()

	ds, err := Load(context.Background(), srv.URL+"/gdp_pcap.csv", ReadOptions{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Tidy.Len() != 4 {
		t.Fatalf("expected 4 records, got %d", ds.Tidy.Len())
	}
	if ds.Bounds != (Bounds{MinYear: 1800, MaxYear: 1801}) {
		t.Fatalf("unexpected bounds: %+v", ds.Bounds)
	}
	if diff := cmp.Diff([]int{1800, 1801}, ds.Ticks); diff != "" {
		t.Fatalf("ticks mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := Load(context.Background(), srv.URL, ReadOptions{}); err == nil {
		t.Fatal("expected error for 404 dataset URL")
	}
}

func TestLoad_ParseErrorIsFatal(t *testing.T) {
	path := t.TempDir() + "/bad.csv"
	if err := os.WriteFile(path, []byte("country,1800\nChad,12B\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(context.Background(), path, ReadOptions{})
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected wrapped *ParseError, got %v", err)
	}
}
