package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Lllllllleong/vetreportflow/internal/imagetriage"
	"github.com/spf13/cobra"
)

var (
	imagesOutDir  string
	imagesOptions imagetriage.Options
	minFileSizeKB int
)

var imagesCmd = &cobra.Command{
	Use:   "images <pdf>",
	Short: "Extract the substantive images embedded in a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runImages,
}

func init() {
	imagesCmd.Flags().StringVarP(&imagesOutDir, "out", "o", "images", "directory to write images to")
	imagesCmd.Flags().IntVar(&imagesOptions.MinWidth, "min-width", 400, "minimum image width in pixels")
	imagesCmd.Flags().IntVar(&imagesOptions.MinHeight, "min-height", 300, "minimum image height in pixels")
	imagesCmd.Flags().IntVar(&minFileSizeKB, "min-size-kb", 20, "minimum encoded image size in KB")
	imagesCmd.Flags().IntVar(&imagesOptions.DecorativePagePercent, "decorative-percent",
		imagetriage.DefaultDecorativePagePercent, "share of pages an image must appear on to count as decorative")
	rootCmd.AddCommand(imagesCmd)
}

type imageSummary struct {
	File       string `json:"file"`
	PageNumber int    `json:"page_number"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	MIMEType   string `json:"mime_type"`
}

func runImages(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	opts := imagesOptions
	opts.MinFileSize = minFileSizeKB * 1024
	images, err := imagetriage.Triage(data, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(imagesOutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	summaries := make([]imageSummary, 0, len(images))
	for i, img := range images {
		ext := strings.TrimPrefix(img.MIMEType, "image/")
		name := fmt.Sprintf("page%d_img%d.%s", img.PageNumber, i, ext)

		file := filepath.Join(imagesOutDir, name)
		if err := os.WriteFile(file, img.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
		slog.Debug("Wrote image", "file", file, "bytes", len(img.Data))
		summaries = append(summaries, imageSummary{
			File:       file,
			PageNumber: img.PageNumber,
			Width:      img.Width,
			Height:     img.Height,
			MIMEType:   img.MIMEType,
		})
	}
	return writeJSON(cmd.OutOrStdout(), summaries)
}
