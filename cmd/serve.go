package cmd

import (
	"context"

	"github.com/gdpdash/gdpdash/internal/server"
	"github.com/gdpdash/gdpdash/internal/utils"
	"github.com/gdpdash/gdpdash/pkg/dataset"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	Long: `Load the dataset once, then serve the dashboard. Any malformed header or cell
aborts startup, since the dashboard cannot run on a partially loaded table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		devMode, _ := cmd.Flags().GetBool("dev")
		listenAddr := viper.GetString("listen")
		if devMode {
			utils.Log.SetLevel(logrus.DebugLevel)
			if !cmd.Flags().Changed("listen") {
				listenAddr = "localhost:7000"
			}
		}

		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		srv := server.New(ds, viper.GetString("username"), viper.GetString("password"))
		if devMode {
			utils.Log.Infof("Starting server in development mode on http://%s", listenAddr)
		}
		return srv.Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolP("dev", "d", false, "Enable development mode (debug logging, HTTP on localhost:7000)")
	serveCmd.Flags().StringP("listen", "b", ":8050", "HTTP listen address")
	serveCmd.Flags().StringP("username", "u", "", "Username for basic auth (optional)")
	serveCmd.Flags().StringP("password", "p", "", "Password for basic auth (optional)")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("username", serveCmd.Flags().Lookup("username"))
	viper.BindPFlag("password", serveCmd.Flags().Lookup("password"))
}

// loadDataset builds the process-wide dataset from the configured source.
func loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	source := viper.GetString("data")
	ds, err := dataset.Load(ctx, source, dataset.ReadOptions{
		ExpectCountries: viper.GetInt("expect_countries"),
	})
	if err != nil {
		return nil, err
	}
	utils.Log.WithFields(logrus.Fields{
		"source":    source,
		"countries": len(ds.Wide.Countries),
		"min_year":  ds.Bounds.MinYear,
		"max_year":  ds.Bounds.MaxYear,
		"records":   ds.Tidy.Len(),
	}).Info("Dataset loaded")
	return ds, nil
}

// addSelectionFlags registers the filter flags shared by export and chart.
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().Int("year-min", 0, "First year to include (default: first year in the dataset)")
	cmd.Flags().Int("year-max", 0, "Last year to include (default: last year in the dataset)")
	// StringArray, not StringSlice: country names such as "Congo, Rep." contain commas.
	cmd.Flags().StringArrayP("country", "c", nil, "Country to include, repeatable (default: all countries)")
}

// selectionFromFlags reads the filter flags, defaulting to the full range and
// clamping to the dataset bounds.
func selectionFromFlags(cmd *cobra.Command, bounds dataset.Bounds) dataset.Selection {
	sel := bounds.Full()
	if cmd.Flags().Changed("year-min") {
		sel.YearMin, _ = cmd.Flags().GetInt("year-min")
	}
	if cmd.Flags().Changed("year-max") {
		sel.YearMax, _ = cmd.Flags().GetInt("year-max")
	}
	countries, _ := cmd.Flags().GetStringArray("country")
	sel.Countries = utils.NonEmpty(countries)
	return bounds.Clamp(sel)
}
