package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fabula/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:   "fabula",
	Short: "Deterministic conceptual blending over a curated story bible",
	Long: "Fabula decides how two conceptual spaces may be blended under a curated,\nversioned rulebook: constrained pairing, ranked operator selection and\nmulti-factor scoring, with a full audit trail for every decision.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		logging.Setup(level, flagLogFormat, nil)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format (text, json)")

	rootCmd.AddCommand(blendCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
