// Convert command: runs the full pipeline over one or more saved HTML
// pages. Directories are walked for HTML files; each input is converted
// independently, so one failure does not abort the batch.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hublun/MDConverter/core/input"
	"github.com/hublun/MDConverter/core/pipeline"
)

var flagOutput string

var convertCmd = &cobra.Command{
	Use:   "convert <page.html|dir> [more inputs...]",
	Short: "Convert saved HTML pages to Markdown",
	Long: `Convert reads each saved HTML page, extracts the main article content,
and writes a Markdown file with optional YAML frontmatter. Images from
the page's asset directory are copied next to the output and the
references rewritten.

Examples:
  mdconverter convert article.html
  mdconverter convert article.html -o notes/article.md
  mdconverter convert saved-pages/ --output_dir ./md --add_metadata=false
  mdconverter convert article.html --format pdf --heading_offset 1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Explicit output file (single input only)")

	convertCmd.Flags().String("output_dir", "output", "Destination directory for converted files")
	convertCmd.Flags().String("images_dir", "assets/images", "Destination for copied images, relative to output_dir")
	convertCmd.Flags().String("format", "md", "Output format: md, json, or pdf")
	convertCmd.Flags().Bool("preserve_images", true, "Copy images and rewrite references")
	convertCmd.Flags().Bool("clean_html", true, "Strip boilerplate before rendering")
	convertCmd.Flags().Bool("add_metadata", true, "Emit YAML frontmatter")
	convertCmd.Flags().Int("heading_offset", 0, "Shift heading levels by this amount (clamped to h1..h6)")
	convertCmd.Flags().Int("wrap_width", 0, "Soft-wrap prose at this column (0 = no wrap)")
	convertCmd.Flags().String("content_selector", "", "Explicit CSS selector for the content root")

	for _, key := range []string{
		"output_dir", "images_dir", "format",
		"preserve_images", "clean_html", "add_metadata",
		"heading_offset", "wrap_width", "content_selector",
	} {
		_ = viper.BindPFlag(key, convertCmd.Flags().Lookup(key))
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	files, err := input.Discover(args)
	if err != nil {
		return err
	}
	if flagOutput != "" && len(files) > 1 {
		return fmt.Errorf("--output requires a single input, got %d", len(files))
	}

	pipe := pipeline.New(cfg)
	ctx := cmd.Context()

	var errCount, warnCount int
	for i, file := range files {
		if len(files) > 1 {
			fmt.Fprintf(os.Stdout, "[%d/%d] %s\n", i+1, len(files), file)
		}

		result, err := pipe.ConvertFile(ctx, file, flagOutput)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ %s: %v\n", file, err)
			errCount++
			continue
		}

		warnCount += len(result.Warnings)
		if len(result.Warnings) > 0 {
			fmt.Fprintf(os.Stdout, "  ✓ Written: %s (%d warnings)\n", result.OutputPath, len(result.Warnings))
			for _, w := range result.Warnings {
				fmt.Fprintf(os.Stdout, "    - [%s] %s\n", w.Kind, w.Message)
			}
		} else {
			fmt.Fprintf(os.Stdout, "  ✓ Written: %s\n", result.OutputPath)
		}
	}

	if len(files) > 1 {
		fmt.Fprintf(os.Stdout, "\n%d converted, %d failed, %d warnings\n",
			len(files)-errCount, errCount, warnCount)
	}
	if errCount > 0 {
		return fmt.Errorf("%d/%d conversions failed", errCount, len(files))
	}
	return nil
}
