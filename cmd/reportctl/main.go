// Command reportctl runs the report pipeline stages against local files.
package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Run the veterinary report pipeline on local files",
	Long: `reportctl exercises the pipeline stages without the HTTP service:
field parsing of plain text, image triage of a PDF, and the full
text recognition run against the configured engine.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			slog.Warn("Could not load .env file", "error", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
