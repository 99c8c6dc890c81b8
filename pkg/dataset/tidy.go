package dataset

// Record is a single (year, country) observation of the tidy table.
type Record struct {
	Year         int     `json:"year"`
	Country      string  `json:"country"`
	GDPPerCapita float64 `json:"gdp_per_capita"`
}

// TidyTable is the long form of a WideTable. It is never modified after Tidy
// returns it, so it can be shared between goroutines without locking.
type TidyTable struct {
	records   []Record
	countries []string
}

// Tidy reshapes the wide table into one record per (country, year) pair,
// countries in table order and years ascending within each country.
func (t *WideTable) Tidy() *TidyTable {
	records := make([]Record, 0, len(t.Countries)*len(t.Years))
	for i, country := range t.Countries {
		for j, year := range t.Years {
			records = append(records, Record{
				Year:         year,
				Country:      country,
				GDPPerCapita: t.Values[i][j],
			})
		}
	}

	countries := make([]string, len(t.Countries))
	copy(countries, t.Countries)

	return &TidyTable{records: records, countries: countries}
}

// Len returns the number of records.
func (tt *TidyTable) Len() int { return len(tt.records) }

// Records returns a copy of every record in table order.
func (tt *TidyTable) Records() []Record {
	out := make([]Record, len(tt.records))
	copy(out, tt.records)
	return out
}

// Countries returns the distinct country names in table order.
func (tt *TidyTable) Countries() []string {
	out := make([]string, len(tt.countries))
	copy(out, tt.countries)
	return out
}
