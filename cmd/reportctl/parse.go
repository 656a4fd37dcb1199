package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Lllllllleong/vetreportflow/internal/reportparser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <text-file|->",
	Short: "Parse report fields from extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var (
		text []byte
		err  error
	)
	if args[0] == "-" {
		text, err = io.ReadAll(cmd.InOrStdin())
	} else {
		text, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), reportparser.Parse(string(text)))
}
