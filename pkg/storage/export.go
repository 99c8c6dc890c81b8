package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gdpdash/gdpdash/pkg/dataset"
)

// Export formats accepted by WriteRecords.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// TidyHeader is the header row of a CSV export.
var TidyHeader = []string{"Year", "Country", "GDP per Capita"}

// WriteRecords writes records to w as CSV or JSON. SQLite exports go through DB.
func WriteRecords(w io.Writer, format string, records []dataset.Record) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, records)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func writeCSV(w io.Writer, records []dataset.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TidyHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Year),
			r.Country,
			strconv.FormatFloat(r.GDPPerCapita, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
