package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"pdf-role-chat/internal/preview"
)

var (
	previewOut        string
	previewHighlights []string
)

var previewCmd = &cobra.Command{
	Use:   "preview <file> <page>",
	Short: "Render a page to PNG, highlighting the given passages",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("page must be a number: %w", err)
		}
		renderer, err := preview.NewRenderer(getConfig().Preview)
		if err != nil {
			return err
		}

		img := renderer.PageImage(args[0], page, previewHighlights)
		if img == nil {
			return fmt.Errorf("no preview for %s page %d", args[0], page)
		}
		if err := os.WriteFile(previewOut, img, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", previewOut, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", previewOut, len(img))
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewOut, "output", "o", "page.png", "output PNG file")
	previewCmd.Flags().StringArrayVar(&previewHighlights, "highlight", nil, "text to highlight, may be repeated")
	rootCmd.AddCommand(previewCmd)
}
