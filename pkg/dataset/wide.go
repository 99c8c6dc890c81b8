package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// WideTable holds one row per country and one column per year.
// Countries are unique and sorted, Years are unique and ascending, and
// Values[i][j] is the GDP per capita of Countries[i] in Years[j].
type WideTable struct {
	Countries []string
	Years     []int
	Values    [][]float64
}

// ReadOptions tunes ReadWide.
type ReadOptions struct {
	// ExpectCountries, when positive, requires exactly that many country rows.
	ExpectCountries int
}

// ReadWide parses a wide GDP per capita CSV. The first column is the country
// name and every other column is a year. Any malformed header, cell or row
// shape aborts the whole load with a *ParseError.
func ReadWide(r io.Reader, opts ReadOptions) (*WideTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ParseError{Row: 0, Column: -1, Err: errors.New("empty input")}
	}
	if err != nil {
		return nil, wrapCSVError(err)
	}
	// Strip a UTF-8 BOM left by spreadsheet exports.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	years, err := ParseYears(header)
	if err != nil {
		return nil, err
	}
	order, err := yearOrder(years)
	if err != nil {
		return nil, err
	}

	type row struct {
		country string
		values  []float64
	}
	var rows []row
	seen := make(map[string]int)

	for rowIdx := 1; ; rowIdx++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapCSVError(err)
		}

		country := strings.TrimSpace(record[0])
		if country == "" {
			return nil, &ParseError{Row: rowIdx, Column: 0, Value: record[0], Err: errors.New("empty country name")}
		}
		if prev, dup := seen[country]; dup {
			return nil, &ParseError{Row: rowIdx, Column: 0, Value: country, Err: fmt.Errorf("duplicate country, first seen at row %d", prev)}
		}
		seen[country] = rowIdx

		values := make([]float64, len(years))
		for j, src := range order {
			cell := record[src+1]
			v, err := ParseCell(cell)
			if err != nil {
				var pe *ParseError
				if errors.As(err, &pe) {
					pe.Row, pe.Column = rowIdx, src+1
				}
				return nil, err
			}
			values[j] = v
		}
		rows = append(rows, row{country: country, values: values})
	}

	if len(rows) == 0 {
		return nil, &ParseError{Row: -1, Column: -1, Err: errors.New("no country rows")}
	}
	if opts.ExpectCountries > 0 && len(rows) != opts.ExpectCountries {
		return nil, &ParseError{Row: -1, Column: -1, Err: fmt.Errorf("expected %d countries, found %d", opts.ExpectCountries, len(rows))}
	}

	sort.SliceStable(rows, func(a, b int) bool { return rows[a].country < rows[b].country })

	sortedYears := make([]int, len(years))
	for j, src := range order {
		sortedYears[j] = years[src]
	}

	t := &WideTable{
		Countries: make([]string, len(rows)),
		Years:     sortedYears,
		Values:    make([][]float64, len(rows)),
	}
	for i, r := range rows {
		t.Countries[i] = r.country
		t.Values[i] = r.values
	}
	return t, nil
}

// yearOrder returns the source column indexes sorted by ascending year.
func yearOrder(years []int) ([]int, error) {
	order := make([]int, len(years))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return years[order[a]] < years[order[b]] })
	for k := 1; k < len(order); k++ {
		if years[order[k]] == years[order[k-1]] {
			return nil, &ParseError{Row: 0, Column: order[k] + 1, Value: fmt.Sprint(years[order[k]]), Err: errors.New("duplicate year column")}
		}
	}
	return order, nil
}

func wrapCSVError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		// csv lines are one-based.
		return &ParseError{Row: csvErr.Line - 1, Column: -1, Err: csvErr.Err}
	}
	return fmt.Errorf("reading csv: %w", err)
}

// Bounds returns the year bounds of the table.
func (t *WideTable) Bounds() Bounds {
	if len(t.Years) == 0 {
		return Bounds{}
	}
	return Bounds{MinYear: t.Years[0], MaxYear: t.Years[len(t.Years)-1]}
}
