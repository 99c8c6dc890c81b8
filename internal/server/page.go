package server

import (
	"fmt"
	"strconv"

	"github.com/gdpdash/gdpdash/pkg/chart"
	"github.com/gdpdash/gdpdash/pkg/dataset"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html" // Using . import for convenience with html tags
)

const dashboardDescription = "This app takes a dropdown of country options and a slider of years and creates a graph of those countries' GDP per capita across the specified year range. Data can be changed by adjusting the dropdown and slider."

// PageLayout wraps content in the HTML document shell.
func PageLayout(title string, content g.Node) g.Node {
	return g.Group([]g.Node{
		g.Raw("<!DOCTYPE html>"),
		HTML(Lang("en"),
			Head(
				Meta(Charset("UTF-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1.0")),
				Meta(Name("description"), Content(dashboardDescription)),
				TitleEl(g.Text(title)),
				Link(Rel("stylesheet"), Href("/static/dashboard.css")),
				Script(Src("https://unpkg.com/htmx.org@2.0.4")),
			),
			Body(
				Div(Class("container"), content),
				Script(Src("/static/dashboard.js")),
			),
		),
	})
}

// DashboardContent renders the title, controls and the chart for sel.
func DashboardContent(ds *dataset.Dataset, sel dataset.Selection, spec chart.Spec) g.Node {
	return g.Group([]g.Node{
		// Adding title
		Div(H1(g.Text("Graph of GDP per capita"))),

		// Adding description
		Div(P(g.Text(dashboardDescription))),

		Form(
			ID("controls"),
			Method("GET"),
			Action("/"),
			g.Attr("hx-get", "/"),
			g.Attr("hx-target", "#gdpfig"),
			g.Attr("hx-swap", "outerHTML"),
			g.Attr("hx-trigger", "change"),
			g.Attr("hx-push-url", "true"),
			Div(Class("row"),
				countryDropdown(ds.Tidy.Countries(), sel.Countries),
			),
			Div(Class("row"),
				yearSlider(ds.Bounds, ds.Ticks, sel),
			),
		),

		// Add space
		Hr(),

		ChartFragment(sel, spec),
	})
}

func countryDropdown(countries, selected []string) g.Node {
	chosen := make(map[string]bool, len(selected))
	for _, c := range selected {
		chosen[c] = true
	}

	options := make([]g.Node, 0, len(countries))
	for _, c := range countries {
		opt := Option(Value(c), g.Text(c))
		if chosen[c] {
			opt = Option(Value(c), g.Text(c), Selected())
		}
		options = append(options, opt)
	}

	return Div(Class("six columns"),
		Label(For("dropdown"), g.Text("Countries (none selected shows all)")),
		Select(
			ID("dropdown"),
			Name("country"),
			g.Attr("multiple"),
			g.Attr("size", "8"),
			g.Group(options),
		),
	)
}

func yearSlider(bounds dataset.Bounds, ticks []int, sel dataset.Selection) g.Node {
	minStr, maxStr := strconv.Itoa(bounds.MinYear), strconv.Itoa(bounds.MaxYear)
	rangeInput := func(id, name string, value int) g.Node {
		return Input(
			ID(id),
			Type("range"),
			Name(name),
			g.Attr("min", minStr),
			g.Attr("max", maxStr),
			g.Attr("step", "1"),
			Value(strconv.Itoa(value)),
		)
	}

	marks := make([]g.Node, 0, len(ticks))
	for _, t := range ticks {
		pos := 0.0
		if span := bounds.MaxYear - bounds.MinYear; span > 0 {
			pos = float64(t-bounds.MinYear) * 100 / float64(span)
		}
		marks = append(marks, Span(Class("mark"), g.Attr("style", fmt.Sprintf("left:%.2f%%", pos)), g.Text(strconv.Itoa(t))))
	}

	return Div(ID("slider"), Class("six columns"),
		Label(g.Text("Years "),
			Span(ID("year-label"), g.Textf("%d - %d", sel.YearMin, sel.YearMax)),
		),
		rangeInput("year-min", "year_min", sel.YearMin),
		rangeInput("year-max", "year_max", sel.YearMax),
		Div(Class("marks"), g.Group(marks)),
	)
}

// ChartFragment is the part of the page swapped on every control change.
func ChartFragment(sel dataset.Selection, spec chart.Spec) g.Node {
	if spec.Empty() {
		return Div(ID("gdpfig"), Class("graph empty"),
			P(g.Text("No data for the current selection.")),
		)
	}

	legend := make([]g.Node, 0, len(spec.Series))
	for _, s := range spec.Series {
		legend = append(legend, Li(g.Text(s.Name)))
	}

	return Div(ID("gdpfig"), Class("graph"),
		g.Attr("data-series", strconv.Itoa(len(spec.Series))),
		Img(
			Src("/chart.png?"+selectionQuery(sel)),
			Alt(fmt.Sprintf("%s, %d to %d", spec.Title, sel.YearMin, sel.YearMax)),
		),
		Details(
			Summary(g.Textf("%s (%d)", spec.Legend, len(spec.Series))),
			Ul(Class("legend"), g.Group(legend)),
		),
	)
}
