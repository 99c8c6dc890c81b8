package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gdpdash/gdpdash/internal/utils"
	"github.com/gdpdash/gdpdash/pkg/chart"
	"github.com/gdpdash/gdpdash/pkg/dataset"
)

// OptionsResponse feeds the dashboard controls.
type OptionsResponse struct {
	Countries []string `json:"countries"`
	MinYear   int      `json:"min_year"`
	MaxYear   int      `json:"max_year"`
	Ticks     []int    `json:"ticks"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, OptionsResponse{
		Countries: s.Data.Tidy.Countries(),
		MinYear:   s.Data.Bounds.MinYear,
		MaxYear:   s.Data.Bounds.MaxYear,
		Ticks:     s.Data.Ticks,
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query(), s.Data.Bounds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, chart.Build(s.Data.Tidy.Filter(sel)))
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query(), s.Data.Bounds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, s.Data.Tidy.Filter(sel))
}

// renderChart is swapped out in tests.
var renderChart = chart.RenderPNG

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query(), s.Data.Bounds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := chart.DefaultRenderOptions()
	opts.XTicks = s.Data.Ticks
	spec := chart.Build(s.Data.Tidy.Filter(sel))

	var buf bytes.Buffer
	if err := renderChart(&buf, spec, opts); err != nil {
		if errors.Is(err, chart.ErrEmptyChart) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		utils.Log.Errorf("Error rendering chart: %v", err)
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	if _, err := buf.WriteTo(w); err != nil {
		utils.Log.Errorf("Error writing chart: %v", err)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r.URL.Query(), s.Data.Bounds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	spec := chart.Build(s.Data.Tidy.Filter(sel))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	// Check if this is an HTMX request
	if r.Header.Get("HX-Request") == "true" {
		// Return only the chart fragment for HTMX swap
		ChartFragment(sel, spec).Render(w)
		return
	}

	PageLayout(
		"Graph of GDP per capita",
		DashboardContent(s.Data, sel, spec),
	).Render(w)
}

// parseSelection reads year_min, year_max and repeated country values from the query and
// clamps the years into bounds. Missing years default to the full range.
func parseSelection(q url.Values, bounds dataset.Bounds) (dataset.Selection, error) {
	sel := bounds.Full()

	if v := strings.TrimSpace(q.Get("year_min")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return dataset.Selection{}, fmt.Errorf("invalid year_min %q", v)
		}
		sel.YearMin = year
	}
	if v := strings.TrimSpace(q.Get("year_max")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return dataset.Selection{}, fmt.Errorf("invalid year_max %q", v)
		}
		sel.YearMax = year
	}
	sel.Countries = utils.NonEmpty(q["country"])

	return bounds.Clamp(sel), nil
}

// selectionQuery encodes sel back into query parameters.
func selectionQuery(sel dataset.Selection) string {
	q := url.Values{}
	q.Set("year_min", strconv.Itoa(sel.YearMin))
	q.Set("year_max", strconv.Itoa(sel.YearMax))
	for _, c := range sel.Countries {
		q.Add("country", c)
	}
	return q.Encode()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Log.Errorf("Error encoding response: %v", err)
	}
}
