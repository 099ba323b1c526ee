// Serve command: exposes the conversion pipeline as MCP tools over
// stdio so AI assistants can call it directly.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hublun/MDConverter/core/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an MCP server exposing the conversion tools over stdio",
	Long: `Serve starts a Model Context Protocol server on stdin/stdout.
Exposed tools: convert, convert_content, extract_metadata, validate,
and formats — each a thin wrapper over the conversion pipeline.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		pipe := pipeline.New(cfg)
		return pipe.ServeMCP(cmd.Context(), "mdconverter", Version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
