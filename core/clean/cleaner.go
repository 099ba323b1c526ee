// Package clean produces the cleaned copy of the selected content
// subtree. The original document is never mutated: Snapshot re-parses
// the subtree into its own document, and Strip removes non-content
// elements from that copy until a fixpoint is reached.
package clean

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/hublun/MDConverter/core"
)

// nonContentTags are removed unconditionally: they never contribute
// article text and either execute, style, or embed foreign content.
var nonContentTags = []string{
	"script", "style", "noscript", "template",
	"iframe", "embed", "object", "canvas",
	"form", "button", "input", "select", "textarea",
	"video", "audio", "source", "track",
}

// defaultStripSelectors remove page furniture. Configured
// strip_patterns are applied on top of these.
var defaultStripSelectors = []string{
	"nav", "header", "footer", "aside",
	".sidebar", ".menu", ".navigation",
	".ads", ".advertisement", ".ad",
	".popup", ".modal", ".cookie-banner", ".newsletter-signup",
	`[class*="ad-"]`, `[id*="ad-"]`,
	".social-share", ".comments-section", ".related-posts",
}

// hiddenStylePatterns detect elements hidden via inline style.
var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
	regexp.MustCompile(`(?i)font-size\s*:\s*0[^1-9]`),
	regexp.MustCompile(`(?i)opacity\s*:\s*0[^.]`),
}

// preservedTags survive empty-element pruning: they carry structure or
// media rather than text.
var preservedTags = map[string]bool{
	"img": true, "br": true, "hr": true,
	"td": true, "th": true, "tr": true,
	"thead": true, "tbody": true, "col": true, "colgroup": true,
	"html": true, "head": true, "body": true,
}

// Snapshot copies the selected subtree into an independent document so
// later stages can mutate it freely.
func Snapshot(sel *goquery.Selection) (*goquery.Document, error) {
	markup, err := goquery.OuterHtml(sel)
	if err != nil {
		return nil, fmt.Errorf("serializing content subtree: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("re-parsing content subtree: %w", err)
	}
	return doc, nil
}

// Strip removes non-content elements from the cleaned copy in place:
// scripts/styles/embeds first, then configured removal patterns, then
// hidden elements, then empty containers (iteratively, so collapsing
// wrappers are pruned too). Code blocks, tables, lists, links, images,
// and block quotes survive.
func Strip(doc *goquery.Document, cfg core.Config) {
	for _, tag := range nonContentTags {
		doc.Find(tag).Remove()
	}

	for _, sel := range append(append([]string{}, defaultStripSelectors...), cfg.StripPatterns...) {
		if _, err := cascadia.Compile(sel); err != nil {
			cfg.Logger.Warn("skipping invalid strip pattern", "pattern", sel, "error", err)
			continue
		}
		doc.Find(sel).Remove()
	}

	removeHidden(doc)
	normalizeCodeLanguage(doc)
	pruneEmpty(doc)
}

// removeHidden drops elements hidden via attribute or inline style.
func removeHidden(doc *goquery.Document) {
	doc.Find("[hidden]").Remove()
	doc.Find(`[aria-hidden="true"]`).Remove()
	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		for _, pat := range hiddenStylePatterns {
			if pat.MatchString(style) {
				s.Remove()
				return
			}
		}
	})
}

// normalizeCodeLanguage rewrites language hints so the renderer sees a
// single convention: class="language-<lang>" on the <code> element.
func normalizeCodeLanguage(doc *goquery.Document) {
	doc.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		code := pre.Find("code").First()
		if code.Length() == 0 {
			return
		}
		if lang := detectLanguage(pre, code); lang != "" {
			code.SetAttr("class", "language-"+lang)
		}
	})
}

// detectLanguage checks code and pre classes plus data-lang attributes.
func detectLanguage(pre, code *goquery.Selection) string {
	for _, s := range []*goquery.Selection{code, pre} {
		for _, cls := range strings.Fields(s.AttrOr("class", "")) {
			if lang, ok := strings.CutPrefix(cls, "language-"); ok {
				return lang
			}
			if lang, ok := strings.CutPrefix(cls, "lang-"); ok {
				return lang
			}
		}
		if lang := s.AttrOr("data-lang", ""); lang != "" {
			return lang
		}
	}
	return ""
}

// pruneEmpty removes elements with no text and no preserved media,
// repeating until no further element is removed. The repetition bounds
// recursively-collapsing empty containers.
func pruneEmpty(doc *goquery.Document) {
	for {
		removed := 0
		doc.Find("*").Each(func(_ int, s *goquery.Selection) {
			node := s.Get(0)
			if node.Parent == nil {
				return // already detached in this pass
			}
			tag := goquery.NodeName(s)
			if preservedTags[tag] {
				return
			}
			if strings.TrimSpace(s.Text()) != "" {
				return
			}
			if s.Find("img, br, hr").Length() > 0 {
				return
			}
			s.Remove()
			removed++
		})
		if removed == 0 {
			return
		}
	}
}
