package dataset

// DefaultTickStep is the spacing of the year slider marks.
const DefaultTickStep = 50

// Bounds is the inclusive year range covered by the dataset.
type Bounds struct {
	MinYear int `json:"min_year"`
	MaxYear int `json:"max_year"`
}

// Ticks returns slider marks every step years from MinYear. MaxYear is always
// the last mark, even when it is closer than step to the previous one.
func (b Bounds) Ticks(step int) []int {
	if step <= 0 {
		step = DefaultTickStep
	}
	if b.MaxYear < b.MinYear {
		return nil
	}

	var ticks []int
	for y := b.MinYear; y <= b.MaxYear; y += step {
		ticks = append(ticks, y)
	}
	if ticks[len(ticks)-1] != b.MaxYear {
		ticks = append(ticks, b.MaxYear)
	}
	return ticks
}

// Full returns a selection covering every year and every country.
func (b Bounds) Full() Selection {
	return Selection{YearMin: b.MinYear, YearMax: b.MaxYear}
}

// Clamp pulls the selection's years into the bounds and orders them so that
// YearMin <= YearMax. Countries are kept as is.
func (b Bounds) Clamp(s Selection) Selection {
	s.YearMin = clampInt(s.YearMin, b.MinYear, b.MaxYear)
	s.YearMax = clampInt(s.YearMax, b.MinYear, b.MaxYear)
	if s.YearMin > s.YearMax {
		s.YearMin, s.YearMax = s.YearMax, s.YearMin
	}
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Selection is the state of the dashboard controls for one interaction.
// An empty Countries list selects every country.
type Selection struct {
	YearMin   int      `json:"year_min"`
	YearMax   int      `json:"year_max"`
	Countries []string `json:"countries"`
}

// Filter returns the records within [YearMin, YearMax] whose country is in
// the selection, preserving table order. Bounds outside the dataset simply
// match nothing.
func (tt *TidyTable) Filter(s Selection) []Record {
	var want map[string]struct{}
	if len(s.Countries) > 0 {
		want = make(map[string]struct{}, len(s.Countries))
		for _, c := range s.Countries {
			want[c] = struct{}{}
		}
	}

	out := make([]Record, 0)
	if s.YearMin > s.YearMax {
		return out
	}
	for _, r := range tt.records {
		if r.Year < s.YearMin || r.Year > s.YearMax {
			continue
		}
		if want != nil {
			if _, ok := want[r.Country]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
