// Package render converts the cleaned content tree into the final
// output formats. Markdown is the canonical format; the JSON and PDF
// renderers consume it downstream.
package render

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hublun/MDConverter/core"
)

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// Markdown renders the cleaned tree as Markdown text. Image references
// are rewritten to their planned destinations from the asset map;
// unresolved references keep their original form. The function mutates
// only the cleaned copy, never the source document, and is otherwise
// pure: identical inputs yield byte-identical output.
func Markdown(cleaned *goquery.Document, am *core.AssetMap, cfg core.Config) (string, []core.Warning, error) {
	var warnings []core.Warning

	applyHeadingOffset(cleaned, cfg.HeadingOffset)
	warnings = append(warnings, rewriteImages(cleaned, am, cfg)...)

	markup, err := serializeBody(cleaned)
	if err != nil {
		return "", warnings, fmt.Errorf("serializing cleaned tree: %w", err)
	}

	md, err := newConverter(cfg).ConvertString(markup)
	if err != nil {
		// Plain-text fallback keeps the conversion alive when the
		// converter chokes on a construct.
		cfg.Logger.Warn("markdown conversion failed, using plain text", "error", err)
		warnings = append(warnings, core.Warning{
			Kind:    core.WarnRender,
			Message: fmt.Sprintf("markdown conversion failed, rendered plain text: %v", err),
		})
		md = plainText(cleaned)
	}

	md = tidy(md)
	if cfg.WrapWidth > 0 {
		md = wrap(md, cfg.WrapWidth)
	}
	return md, warnings, nil
}

// newConverter builds the html-to-markdown converter with the
// configured Markdown policy.
func newConverter(cfg core.Config) *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithStrongDelimiter(cfg.StrongDelimiter),
				commonmark.WithEmDelimiter(cfg.EmDelimiter),
				commonmark.WithBulletListMarker(cfg.BulletMarker),
				commonmark.WithCodeBlockFence(cfg.CodeFence),
			),
			table.NewTablePlugin(),
		),
	)
}

// applyHeadingOffset shifts every heading by the configured offset,
// clamped to h1..h6.
func applyHeadingOffset(doc *goquery.Document, offset int) {
	if offset == 0 {
		return
	}
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		level := int(node.Data[1] - '0')
		level = clamp(level+offset, 1, len(headingAtoms))
		node.Data = fmt.Sprintf("h%d", level)
		node.DataAtom = headingAtoms[level-1]
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rewriteImages points local image references at their planned copy
// destinations and drops inline data URIs. External URLs pass through
// untouched; unresolved local references keep their original form (the
// resolver already recorded the warning).
func rewriteImages(doc *goquery.Document, am *core.AssetMap, cfg core.Config) []core.Warning {
	var warnings []core.Warning

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")

		if strings.HasPrefix(src, "data:") {
			s.Remove()
			warnings = append(warnings, core.Warning{
				Kind:    core.WarnRender,
				Ref:     "data:...",
				Message: "inline data URI image dropped",
			})
			return
		}

		if s.AttrOr("alt", "") == "" {
			s.SetAttr("alt", "Image")
		}

		if src == "" || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") ||
			strings.HasPrefix(src, "//") {
			return
		}

		if cfg.PreserveImages {
			if asset, ok := am.Lookup(src); ok && asset.Dest != "" {
				s.SetAttr("src", asset.Dest)
			}
		}
	})

	return warnings
}

// serializeBody renders the copy's <body> subtree back to HTML.
func serializeBody(doc *goquery.Document) (string, error) {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return goquery.OuterHtml(doc.Selection)
	}
	return goquery.OuterHtml(body)
}

// plainText is the rendering fallback: visible text with paragraph
// separation lost but content preserved.
func plainText(doc *goquery.Document) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return sb.String()
}

// tidy normalizes the converter output: CRLF, blank-line runs, trailing
// whitespace outside code fences, and a single trailing newline.
func tidy(md string) string {
	md = strings.ReplaceAll(md, "\r\n", "\n")

	lines := strings.Split(md, "\n")
	var out []string
	blanks := 0
	inFence := false

	for _, line := range lines {
		if isFenceLine(line) {
			inFence = !inFence
		}
		if !inFence {
			line = strings.TrimRight(line, " \t")
		}
		if strings.TrimSpace(line) == "" && !inFence {
			blanks++
			if blanks > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blanks = 0
		out = append(out, line)
	}

	result := strings.TrimLeft(strings.Join(out, "\n"), "\n")
	result = strings.TrimRight(result, "\n") + "\n"
	return result
}

func isFenceLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}
