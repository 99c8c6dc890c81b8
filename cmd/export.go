package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/gdpdash/gdpdash/internal/utils"
	"github.com/gdpdash/gdpdash/pkg/dataset"
	"github.com/gdpdash/gdpdash/pkg/storage"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the tidy (year, country, GDP per capita) table",
	Long: `Export the reshaped table, optionally filtered, as CSV or JSON to stdout or a file,
or into a SQLite database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		sel := selectionFromFlags(cmd, ds.Bounds)
		records := ds.Tidy.Filter(sel)

		if format == storage.FormatSQLite {
			if output == "" {
				return fmt.Errorf("--output is required for sqlite exports")
			}
			return exportSQLite(cmd, ds.Source, output, records)
		}

		if output == "" {
			if err := writeExport(os.Stdout, format, records); err != nil {
				return err
			}
		} else if err := writeExportFile(output, format, records); err != nil {
			return err
		}
		utils.Log.Debugf("Exported %d records as %s", len(records), format)
		return nil
	},
}

func writeExport(out io.Writer, format string, records []dataset.Record) error {
	w := bufio.NewWriter(out)
	if err := storage.WriteRecords(w, format, records); err != nil {
		return err
	}
	return w.Flush()
}

func writeExportFile(path, format string, records []dataset.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return writeExport(f, format, records)
}

func exportSQLite(cmd *cobra.Command, source, path string, records []dataset.Record) error {
	lock, err := utils.LockExport(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer lock.Release()

	db, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.ReplaceRecords(cmd.Context(), source, records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	stats, err := db.GetStats(cmd.Context())
	if err != nil {
		return err
	}
	utils.Log.Infof("Wrote %d records (%d countries, %d-%d) to %s", stats.Records, stats.Countries, stats.MinYear, stats.MaxYear, path)
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "t", storage.FormatCSV, "Output format: csv, json, sqlite")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout; required for sqlite)")
	addSelectionFlags(exportCmd)
}
