package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// thousandsSuffix marks a cell written in thousands, e.g. "12.5k".
const thousandsSuffix = "k"

var errNotDecimal = errors.New("not a decimal number")

// ParseError reports a malformed cell, header or table shape in the source CSV.
// Row and Column are zero-based positions in the raw file; -1 means not applicable.
type ParseError struct {
	Row    int
	Column int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Row >= 0 && e.Column >= 0:
		return fmt.Sprintf("parse error at row %d, column %d (%q): %v", e.Row, e.Column, e.Value, e.Err)
	case e.Row >= 0:
		return fmt.Sprintf("parse error at row %d: %v", e.Row, e.Err)
	case e.Value != "":
		return fmt.Sprintf("parse error (%q): %v", e.Value, e.Err)
	default:
		return fmt.Sprintf("parse error: %v", e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseCell converts a raw GDP per capita cell into a float64.
// A trailing "k" multiplies the remaining number by 1000. No other suffix is accepted.
func ParseCell(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	multiplier := 1.0
	if strings.HasSuffix(s, thousandsSuffix) {
		s = strings.TrimSuffix(s, thousandsSuffix)
		multiplier = 1000
	}

	v, err := parseDecimal(s)
	if err != nil {
		return 0, &ParseError{Row: -1, Column: -1, Value: raw, Err: err}
	}
	return v * multiplier, nil
}

// parseDecimal accepts plain decimal numerals only. strconv.ParseFloat would also
// take "NaN", "Inf" and hex floats, none of which appear in a valid dataset.
func parseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, errNotDecimal
	}
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
		case (r == '-' || r == '+') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		case r == 'e' || r == 'E':
		default:
			return 0, errNotDecimal
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, errNotDecimal
	}
	return v, nil
}

// ParseYears coerces the year columns of a header row to integers. The first
// column holds the country label and is skipped.
func ParseYears(header []string) ([]int, error) {
	if len(header) < 2 {
		return nil, &ParseError{Row: 0, Column: -1, Err: errors.New("header has no year columns")}
	}

	years := make([]int, 0, len(header)-1)
	for j, label := range header[1:] {
		year, err := strconv.Atoi(strings.TrimSpace(label))
		if err != nil {
			return nil, &ParseError{Row: 0, Column: j + 1, Value: label, Err: errors.New("year label is not an integer")}
		}
		years = append(years, year)
	}
	return years, nil
}
