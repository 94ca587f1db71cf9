// =============================================================================
// gomarc - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base that the 'convert' and 'version' commands attach to, and owns
// the global --config and --verbose flags.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile holds the path to the configuration file used by batch runs.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gomarc",
	Short: "gomarc - Convert bibliographic catalog records between formats",
	Long: `gomarc converts bibliographic catalog records between the binary
transmission format, record-in-CSV, JSON, prettified text, MARCXML, and XLSX.

Non-ASCII text can optionally be rewritten as HTML entity escapes before
serialization, preferring named entities and decomposing letters with
diacritics into base letter plus combining marks.

Example Usage:
  gomarc convert --from marc --to csv --in records.dat --out records.csv
  gomarc convert --from csv --to xml --in records.csv --out records.xml --html-entities
  gomarc convert --batch --config ./config.yaml`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file used by batch runs",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
