package render

import (
	"fmt"

	"github.com/hublun/MDConverter/core"
)

// ForFormat returns the output renderer for a format name.
func ForFormat(format string) (core.Renderer, error) {
	switch format {
	case "md", "markdown", "":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "pdf":
		return &PDFRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %q (supported: %v)", format, core.SupportedFormats())
	}
}

// MarkdownRenderer passes the canonical Markdown body through
// unchanged; frontmatter is prepended by the assembler.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(markdown string, _ core.Metadata) ([]byte, error) {
	return []byte(markdown), nil
}

func (r *MarkdownRenderer) Extension() string { return ".md" }
