package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/gdpdash/gdpdash/internal/utils"
	"github.com/gdpdash/gdpdash/pkg/chart"
	"github.com/gdpdash/gdpdash/pkg/dataset"
	"github.com/gdpdash/gdpdash/pkg/storage"
	"github.com/spf13/cobra"
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the GDP per capita line chart for a selection to a PNG file",
	Long: `Render the line chart for a selection to a PNG file. The records come from the
dataset CSV, or from a SQLite database written by "gdpdash export --format sqlite"
when --from-db is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		width, _ := cmd.Flags().GetInt("width")
		height, _ := cmd.Flags().GetInt("height")
		fromDB, _ := cmd.Flags().GetString("from-db")

		var (
			view  []dataset.Record
			sel   dataset.Selection
			ticks []int
			err   error
		)
		if fromDB != "" {
			view, sel, ticks, err = chartRecordsFromDB(cmd, fromDB)
		} else {
			view, sel, ticks, err = chartRecordsFromDataset(cmd)
		}
		if err != nil {
			return err
		}

		spec := chart.Build(view)
		if spec.Empty() {
			return fmt.Errorf("no data for years %d-%d and countries %v", sel.YearMin, sel.YearMax, sel.Countries)
		}

		var buf bytes.Buffer
		opts := chart.RenderOptions{Width: width, Height: height, XTicks: ticks}
		if err := chart.RenderPNG(&buf, spec, opts); err != nil {
			return err
		}
		if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
			return err
		}
		utils.Log.Infof("Wrote chart with %d series to %s", len(spec.Series), output)
		return nil
	},
}

func chartRecordsFromDataset(cmd *cobra.Command) ([]dataset.Record, dataset.Selection, []int, error) {
	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return nil, dataset.Selection{}, nil, err
	}
	sel := selectionFromFlags(cmd, ds.Bounds)
	return ds.Tidy.Filter(sel), sel, ds.Ticks, nil
}

func chartRecordsFromDB(cmd *cobra.Command, path string) ([]dataset.Record, dataset.Selection, []int, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, dataset.Selection{}, nil, fmt.Errorf("database %s: %w", path, err)
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, dataset.Selection{}, nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stats, err := db.GetStats(ctx)
	if err != nil {
		return nil, dataset.Selection{}, nil, err
	}
	if stats.Records == 0 {
		return nil, dataset.Selection{}, nil, fmt.Errorf("database %s holds no records", path)
	}

	bounds := dataset.Bounds{MinYear: stats.MinYear, MaxYear: stats.MaxYear}
	sel := selectionFromFlags(cmd, bounds)
	view, err := db.ListRecords(ctx, sel)
	if err != nil {
		return nil, dataset.Selection{}, nil, fmt.Errorf("failed to read records: %w", err)
	}
	utils.Log.Debugf("[storage] Read %d records from %s", len(view), path)
	return view, sel, bounds.Ticks(dataset.DefaultTickStep), nil
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringP("output", "o", "gdp_per_capita.png", "Output PNG file")
	chartCmd.Flags().String("from-db", "", "Read records from a SQLite export instead of the dataset CSV")
	chartCmd.Flags().Int("width", 1024, "Image width in pixels")
	chartCmd.Flags().Int("height", 480, "Image height in pixels")
	addSelectionFlags(chartCmd)
}
