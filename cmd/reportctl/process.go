package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Lllllllleong/vetreportflow/internal/imagetriage"
	"github.com/Lllllllleong/vetreportflow/internal/models"
	"github.com/Lllllllleong/vetreportflow/internal/pdfdoc"
	"github.com/Lllllllleong/vetreportflow/internal/reportparser"
	"github.com/Lllllllleong/vetreportflow/internal/services"
	"github.com/spf13/cobra"
)

var processTimeout time.Duration

var processCmd = &cobra.Command{
	Use:   "process <pdf>",
	Short: "Recognize a PDF with the configured engine and parse its fields",
	Long: `process runs text recognition, image triage and field parsing on a
local PDF. Nothing is stored. The engine is chosen by RECOGNITION_ENGINE
and needs PROJECT_ID plus the engine's own settings.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().DurationVar(&processTimeout, "timeout", 10*time.Minute, "overall processing timeout")
	rootCmd.AddCommand(processCmd)
}

type processOutput struct {
	TotalPages int                 `json:"total_pages"`
	Pages      []models.PageText   `json:"pages"`
	Images     []models.ImageInfo  `json:"images"`
	ReportInfo models.ReportFields `json:"report_info"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), processTimeout)
	defer cancel()

	config, err := services.LoadPipelineConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}
	doc, err := pdfdoc.Open(data)
	if err != nil {
		return err
	}

	engine, closer, err := services.NewEngine(ctx, *config)
	if err != nil {
		return err
	}
	defer closer.Close()

	fullText, pages, err := services.NewExtractor(engine, *config).ExtractDocument(ctx, doc)
	if err != nil {
		return err
	}

	images := imagetriage.TriageSource(doc, config.TriageOptions())
	infos := make([]models.ImageInfo, 0, len(images))
	for _, img := range images {
		infos = append(infos, models.ImageInfo{
			PageNumber: img.PageNumber,
			Width:      img.Width,
			Height:     img.Height,
			MIMEType:   img.MIMEType,
		})
	}

	return writeJSON(cmd.OutOrStdout(), processOutput{
		TotalPages: len(pages),
		Pages:      pages,
		Images:     infos,
		ReportInfo: reportparser.Parse(fullText),
	})
}
