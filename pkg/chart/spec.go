// Package chart turns a filtered view of the tidy table into a line chart
// description and renders it.
package chart

import (
	"github.com/gdpdash/gdpdash/pkg/dataset"
)

const (
	DefaultTitle = "Basic Line Chart with Color Encoding"
	XAxisTitle   = "Year"
	YAxisTitle   = "GDP per Capita"
	LegendTitle  = "Country"
)

// Point is one (year, value) sample of a series.
type Point struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}

// Series is the line of a single country.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Axis binds a chart axis to a record field.
type Axis struct {
	Field string `json:"field"`
	Title string `json:"title"`
}

// Spec describes a multi-series line chart. A Spec with no series is valid and
// renders as an empty chart.
type Spec struct {
	Title  string   `json:"title"`
	XAxis  Axis     `json:"x_axis"`
	YAxis  Axis     `json:"y_axis"`
	Legend string   `json:"legend"`
	Series []Series `json:"series"`
}

// Build groups the view into one series per country, in order of first
// appearance. Points keep the order of the view.
func Build(view []dataset.Record) Spec {
	spec := Spec{
		Title:  DefaultTitle,
		XAxis:  Axis{Field: "year", Title: XAxisTitle},
		YAxis:  Axis{Field: "gdp_per_capita", Title: YAxisTitle},
		Legend: LegendTitle,
		Series: make([]Series, 0),
	}

	index := make(map[string]int)
	for _, r := range view {
		i, ok := index[r.Country]
		if !ok {
			i = len(spec.Series)
			index[r.Country] = i
			spec.Series = append(spec.Series, Series{Name: r.Country})
		}
		spec.Series[i].Points = append(spec.Series[i].Points, Point{X: r.Year, Y: r.GDPPerCapita})
	}
	return spec
}

// Empty reports whether the chart has no data points.
func (s Spec) Empty() bool {
	return len(s.Series) == 0
}
