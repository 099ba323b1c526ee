// JSON renderer: a structured report of the converted document, meant
// for programmatic consumers that want metadata and structure alongside
// the Markdown body.
package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hublun/MDConverter/core"
)

// DocumentJSON is the complete JSON output for one converted page.
type DocumentJSON struct {
	Metadata  core.Metadata `json:"metadata"`
	Content   ContentJSON   `json:"content"`
	Structure StructureJSON `json:"structure"`
}

// ContentJSON holds the body text in both forms.
type ContentJSON struct {
	Markdown string `json:"markdown"`
	Text     string `json:"text"`
}

// StructureJSON summarizes the structural elements of the body.
type StructureJSON struct {
	Headings   []HeadingJSON `json:"headings"`
	Images     []ImageJSON   `json:"images"`
	CodeBlocks int           `json:"code_blocks"`
	Tables     int           `json:"tables"`
	Lists      int           `json:"lists"`
}

// HeadingJSON is one heading of the rendered body.
type HeadingJSON struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// ImageJSON is one image reference of the rendered body.
type ImageJSON struct {
	Alt  string `json:"alt"`
	Path string `json:"path"`
}

// JSONRenderer produces the structured document report.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(markdown string, meta core.Metadata) ([]byte, error) {
	doc := DocumentJSON{
		Metadata: meta,
		Content: ContentJSON{
			Markdown: markdown,
			Text:     stripMarkdown(markdown),
		},
		Structure: StructureJSON{
			Headings:   headings(markdown),
			Images:     images(markdown),
			CodeBlocks: strings.Count(markdown, "```") / 2,
			Tables:     len(tableSeparatorRe.FindAllString(markdown, -1)),
			Lists:      len(listItemRe.FindAllString(markdown, -1)),
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling document report: %w", err)
	}
	return data, nil
}

func (r *JSONRenderer) Extension() string { return ".json" }

var (
	headingRe        = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	imageRe          = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	linkRe           = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
	tableSeparatorRe = regexp.MustCompile(`(?m)^\|[-:| ]+\|$`)
	listItemRe       = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s`)
)

func headings(md string) []HeadingJSON {
	matches := headingRe.FindAllStringSubmatch(md, -1)
	out := make([]HeadingJSON, 0, len(matches))
	for _, m := range matches {
		out = append(out, HeadingJSON{Level: len(m[1]), Text: strings.TrimSpace(m[2])})
	}
	return out
}

func images(md string) []ImageJSON {
	matches := imageRe.FindAllStringSubmatch(md, -1)
	out := make([]ImageJSON, 0, len(matches))
	for _, m := range matches {
		out = append(out, ImageJSON{Alt: m[1], Path: m[2]})
	}
	return out
}

// stripMarkdown reduces the body to plain text for search indexing.
func stripMarkdown(md string) string {
	text := headingRe.ReplaceAllString(md, "$2")
	text = imageRe.ReplaceAllString(text, "$1")
	text = linkRe.ReplaceAllString(text, "$1")
	text = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`).ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "```", "")
	text = regexp.MustCompile("`([^`]+)`").ReplaceAllString(text, "$1")
	text = regexp.MustCompile(`\n{3,}`).ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
