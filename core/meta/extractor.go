// Package meta extracts page metadata from a parsed document.
// Strategies run in order and the first non-empty value wins per field:
// structured meta tags, then visible heading/byline heuristics, then a
// filename-derived fallback (title only). Extraction never fails.
package meta

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hublun/MDConverter/core"
)

// Extract populates a Metadata record from the document. htmlPath may
// be empty (content-string conversion); it only feeds the title
// fallback.
func Extract(doc *goquery.Document, htmlPath string, cfg core.Config) core.Metadata {
	m := core.Metadata{}

	m.Title = firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		cleanText(doc.Find("head title").First().Text()),
		cleanText(doc.Find("h1").First().Text()),
		titleFromFilename(htmlPath),
	)

	m.Author = firstNonEmpty(
		metaContent(doc, `meta[name="author"]`),
		metaContent(doc, `meta[property="article:author"]`),
		bylineText(doc),
	)

	m.Published = firstNonEmpty(
		metaContent(doc, `meta[property="article:published_time"]`),
		metaContent(doc, `meta[name="pubdate"]`),
		doc.Find("time[datetime]").First().AttrOr("datetime", ""),
	)

	m.Description = firstNonEmpty(
		metaContent(doc, `meta[name="description"]`),
		metaContent(doc, `meta[property="og:description"]`),
	)

	m.Canonical = firstNonEmpty(
		doc.Find(`head link[rel="canonical"]`).First().AttrOr("href", ""),
		metaContent(doc, `meta[property="og:url"]`),
	)

	m.SiteName = metaContent(doc, `meta[property="og:site_name"]`)

	m.Tags = extractTags(doc)

	if !m.Empty() {
		cfg.Logger.Debug("extracted metadata", "title", m.Title, "author", m.Author)
	}
	return m
}

// metaContent returns the trimmed content attribute of the first
// element matching the selector.
func metaContent(doc *goquery.Document, selector string) string {
	return cleanText(doc.Find(selector).First().AttrOr("content", ""))
}

// bylineText looks for visible author markers near the top of the page.
func bylineText(doc *goquery.Document) string {
	for _, sel := range []string{`[rel="author"]`, ".author", ".byline", ".post-author"} {
		text := cleanText(doc.Find(sel).First().Text())
		if text != "" {
			return strings.TrimSpace(strings.TrimPrefix(text, "By "))
		}
	}
	return ""
}

// extractTags merges keywords meta and article:tag entries, dropping
// duplicates while keeping document order.
func extractTags(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var tags []string

	add := func(tag string) {
		tag = cleanText(tag)
		if tag == "" || seen[strings.ToLower(tag)] {
			return
		}
		seen[strings.ToLower(tag)] = true
		tags = append(tags, tag)
	}

	if kw := metaContent(doc, `meta[name="keywords"]`); kw != "" {
		for _, tag := range strings.Split(kw, ",") {
			add(tag)
		}
	}
	doc.Find(`meta[property="article:tag"]`).Each(func(_ int, s *goquery.Selection) {
		add(s.AttrOr("content", ""))
	})

	return tags
}

// titleFromFilename derives a human-readable title from the input
// filename stem.
func titleFromFilename(htmlPath string) string {
	if htmlPath == "" {
		return ""
	}
	name := filepath.Base(htmlPath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return cleanText(stem)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
