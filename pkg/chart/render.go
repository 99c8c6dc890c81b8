package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// ErrEmptyChart is returned by RenderPNG for a spec without data points.
var ErrEmptyChart = errors.New("chart has no data")

// RenderOptions controls the PNG output.
type RenderOptions struct {
	Width  int
	Height int
	// XTicks are the year marks to label; marks outside the data range are dropped.
	// With fewer than two marks left the axis falls back to automatic ticks.
	XTicks []int
}

// DefaultRenderOptions matches the dashboard layout.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Width: 1024, Height: 480}
}

// RenderPNG draws a Spec as a PNG line chart. Nothing is written to w when
// rendering fails.
func RenderPNG(w io.Writer, spec Spec, opts RenderOptions) error {
	if spec.Empty() {
		return ErrEmptyChart
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultRenderOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}

	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	series := make([]gochart.Series, 0, len(spec.Series))
	for _, s := range spec.Series {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i], ys[i] = float64(p.X), p.Y
			minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
			minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
		})
	}
	// go-chart rejects zero-width ranges, which a single year or a flat line produces.
	if maxX <= minX {
		minX, maxX = minX-1, maxX+1
	}
	if maxY <= minY {
		minY, maxY = minY-1, maxY+1
	}

	var ticks []gochart.Tick
	for _, t := range opts.XTicks {
		if v := float64(t); v >= minX && v <= maxX {
			ticks = append(ticks, gochart.Tick{Value: v, Label: strconv.Itoa(t)})
		}
	}
	// go-chart needs at least two ticks to lay out the axis.
	if len(ticks) < 2 {
		ticks = nil
	}

	ch := gochart.Chart{
		Title:      spec.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 24}},
		XAxis: gochart.XAxis{
			Name:           spec.XAxis.Title,
			Range:          &gochart.ContinuousRange{Min: minX, Max: maxX},
			Ticks:          ticks,
			ValueFormatter: yearFormatter,
		},
		YAxis: gochart.YAxis{
			Name:  spec.YAxis.Title,
			Range: &gochart.ContinuousRange{Min: minY, Max: maxY},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return nil
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return fmt.Sprint(v)
}
