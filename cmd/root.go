// Package cmd implements the CLI for MDConverter using Cobra. The
// commands are thin adapters: they resolve one Config snapshot and call
// into the pipeline package.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is stamped at build time.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mdconverter",
	Short: "MDConverter — convert saved HTML webpage packages into clean Markdown",
	Long: `MDConverter converts a saved HTML page (plus its sibling asset
directory, as browsers create with "Save Page As") into a clean Markdown
document with optional YAML frontmatter and relocated images.

Usage:
  mdconverter convert <page.html> [flags]
  mdconverter serve`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "JSON config file (default ./mdconverter.json)")
	rootCmd.PersistentFlags().String("log_level", "info", "log verbosity: debug, info, warn, error")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))
}

// initConfig reads the JSON config file layer. Flag overrides bind on
// top of it via viper; the merged snapshot is produced once by
// resolveConfig before the pipeline starts.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("json")
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("mdconverter")
		viper.SetConfigType("json")
	}

	viper.SetEnvPrefix("MDCONVERTER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing default config is fine; an explicit one must exist.
		if cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error: reading config %s: %v\n", cfgFile, err)
			os.Exit(1)
		}
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
