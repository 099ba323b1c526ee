// PDF renderer: converts the Markdown body into a styled PDF using
// gofpdf. Headings get variable font sizes; code blocks render
// monospaced on a shaded background; images render as placeholders.
package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hublun/MDConverter/core"
)

// PDFRenderer renders the Markdown body as a PDF document.
type PDFRenderer struct{}

func (r *PDFRenderer) Render(markdown string, meta core.Metadata) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	writePDFHeader(pdf, meta)

	lines := strings.Split(markdown, "\n")
	inCodeBlock := false

	for _, line := range lines {
		if isFenceLine(line) {
			inCodeBlock = !inCodeBlock
			pdf.Ln(2)
			continue
		}

		if inCodeBlock {
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, line, "", "L", true)
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			pdf.Ln(3)
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "#"):
			level := 0
			for _, ch := range trimmed {
				if ch != '#' {
					break
				}
				level++
			}
			writePDFHeading(pdf, strings.TrimSpace(strings.TrimLeft(trimmed, "# ")), level)

		case strings.HasPrefix(trimmed, ">"):
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetTextColor(90, 90, 90)
			pdf.MultiCell(0, 5, stripInline(strings.TrimSpace(strings.TrimPrefix(trimmed, ">"))), "", "L", false)
			pdf.SetTextColor(0, 0, 0)

		case imageLineRe.MatchString(trimmed):
			m := imageLineRe.FindStringSubmatch(trimmed)
			alt := m[1]
			if alt == "" {
				alt = "image"
			}
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(100, 100, 100)
			pdf.MultiCell(0, 5, "["+alt+"]", "", "L", false)
			pdf.SetTextColor(0, 0, 0)

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ "):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, "• "+stripInline(trimmed[2:]), "", "L", false)

		case orderedItemRe.MatchString(trimmed):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, stripInline(trimmed), "", "L", false)

		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, stripInline(line), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) Extension() string { return ".pdf" }

// writePDFHeader renders the metadata block at the top of the document.
func writePDFHeader(pdf *gofpdf.Fpdf, meta core.Metadata) {
	if meta.Title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, meta.Title, "", "L", false)
		pdf.Ln(2)
	}

	var byline []string
	if meta.Author != "" {
		byline = append(byline, meta.Author)
	}
	if meta.Published != "" {
		byline = append(byline, meta.Published)
	}
	if meta.SiteName != "" {
		byline = append(byline, meta.SiteName)
	}
	if len(byline) > 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, strings.Join(byline, " — "), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	if meta.Canonical != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, "Source: "+meta.Canonical, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)
}

// writePDFHeading maps heading levels to font sizes.
func writePDFHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := [...]float64{18, 15, 13, 12, 11, 10}
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sizes) {
		idx = len(sizes) - 1
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", sizes[idx])
	pdf.MultiCell(0, sizes[idx]*0.6, stripInline(text), "", "L", false)
	pdf.Ln(2)
}

var (
	imageLineRe   = regexp.MustCompile(`^!\[([^\]]*)\]\([^)]+\)$`)
	orderedItemRe = regexp.MustCompile(`^\d+\.\s`)
	emphasisRe    = regexp.MustCompile(`(?:^|\s)[*_]([^*_]+)[*_](?:\s|$)`)
	inlineCodeRe  = regexp.MustCompile("`([^`]+)`")
)

// stripInline removes inline Markdown formatting for PDF text runs.
func stripInline(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = emphasisRe.ReplaceAllString(text, " $1 ")
	text = inlineCodeRe.ReplaceAllString(text, "$1")
	text = imageRe.ReplaceAllString(text, "$1")
	text = linkRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
