package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdpdash/gdpdash/internal/utils"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gdpdash",
	Short: "An interactive GDP per capita dashboard.",
	Long: `gdpdash loads a wide per-country, per-year GDP per capita CSV, reshapes it into a
tidy table and serves a dashboard with a country dropdown and a year range slider.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Init log library
		return utils.SetLogLevel(viper.GetString("loglevel"))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		utils.Log.Error(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gdpdash.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("data", "f", "gdp_pcap.csv", "Dataset CSV path or http(s) URL")
	rootCmd.PersistentFlags().Int("expect-countries", 0, "Fail to start unless the dataset has exactly this many countries (0 disables the check)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")

	viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("expect_countries", rootCmd.PersistentFlags().Lookup("expect-countries"))
	viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("loglevel"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gdpdash")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("gdpdash")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
		}
	} else {
		utils.Log.Debugf("Using config file %s", filepath.Clean(viper.ConfigFileUsed()))
	}

	// Set default values for all keys
	viper.SetDefault("listen", ":8050")
	viper.SetDefault("username", "")
	viper.SetDefault("password", "")
}
