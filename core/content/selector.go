// Package content identifies the root content node of a parsed page.
//
// Selection order: an explicit configured selector (when it matches
// exactly one node), then semantic landmarks (<main>, single <article>),
// then text-density scoring over candidate containers, then the <body>
// fallback. Selection is a pure function of (document, config): the same
// input always yields the same node.
package content

import (
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hublun/MDConverter/core"
)

// boilerplateMarkers are class/id substrings that mark a container as
// page furniture rather than article content.
var boilerplateMarkers = []string{
	"nav", "menu", "sidebar", "footer", "header", "banner",
	"comment", "promo", "advert", "-ad-", "ad-slot", "social",
	"share", "related", "widget", "breadcrumb", "pagination",
	"cookie", "newsletter", "popup", "modal",
}

// contentMarkers are class/id substrings that raise a container's score.
var contentMarkers = []string{
	"content", "article", "post", "entry", "story", "main", "body-text",
}

// Select returns the root content node as a selection within doc.
// It never fails: when nothing scores above the threshold the whole
// <body> is returned.
func Select(doc *goquery.Document, cfg core.Config) *goquery.Selection {
	// 1. Explicit override.
	if cfg.ContentSelector != "" {
		if _, err := cascadia.Compile(cfg.ContentSelector); err != nil {
			cfg.Logger.Warn("invalid content_selector, falling back to heuristics",
				"selector", cfg.ContentSelector, "error", err)
		} else if sel := doc.Find(cfg.ContentSelector); sel.Length() == 1 {
			return sel.First()
		} else {
			cfg.Logger.Debug("content_selector did not match exactly one node",
				"selector", cfg.ContentSelector, "matches", sel.Length())
		}
	}

	body := doc.Find("body").First()

	// 2. Semantic landmarks.
	if sel := landmark(doc, cfg); sel != nil {
		return sel
	}

	// 3. Density scoring.
	if body.Length() > 0 {
		if best := densestNode(body.Get(0), cfg); best != nil {
			return wrapNode(doc, best)
		}
	}

	// 4. Fallback: the whole body (or the document itself when the
	// input has no body element).
	if body.Length() > 0 {
		return body
	}
	return doc.Selection
}

// landmark returns <main> or a lone <article> when it carries enough
// non-boilerplate text.
func landmark(doc *goquery.Document, cfg core.Config) *goquery.Selection {
	if main := doc.Find("main").First(); main.Length() > 0 {
		if usableLandmark(main.Get(0), cfg) {
			return main
		}
	}
	if articles := doc.Find("article"); articles.Length() == 1 {
		if usableLandmark(articles.Get(0), cfg) {
			return articles.First()
		}
	}
	if role := doc.Find(`[role="main"]`); role.Length() == 1 {
		if usableLandmark(role.Get(0), cfg) {
			return role.First()
		}
	}
	return nil
}

func usableLandmark(n *html.Node, cfg core.Config) bool {
	if isBoilerplate(n) {
		return false
	}
	return len(collectText(n)) >= cfg.MinContentLength
}

// candidate holds the density analysis for one container.
type candidate struct {
	node    *html.Node
	score   float64
	depth   int
	textLen int
}

// densestNode walks the body and returns the container with the best
// composite score, or nil when no candidate clears cfg.MinScore.
// Ties break by shallowest depth, then document order.
func densestNode(root *html.Node, cfg core.Config) *html.Node {
	var best *candidate

	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		if n.Type != html.ElementNode {
			return
		}
		if isBoilerplate(n) {
			return
		}

		if isContainerTag(n.DataAtom) {
			if c := scoreNode(n, depth, cfg); c != nil {
				if best == nil ||
					c.score > best.score ||
					(c.score == best.score && c.depth < best.depth) {
					best = c
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth+1)
		}
	}
	walk(root, 0)

	if best == nil {
		return nil
	}
	return best.node
}

// scoreNode computes the composite density score:
// density * logScale(textLen) * (1 - linkDensity), scaled by class/id
// hints. Returns nil when the node cannot be a candidate.
func scoreNode(n *html.Node, depth int, cfg core.Config) *candidate {
	text := collectText(n)
	textLen := len(text)
	if textLen < cfg.MinContentLength {
		return nil
	}

	markupLen := renderedLen(n)
	if markupLen == 0 {
		markupLen = 1
	}

	linkDens := float64(len(collectLinkText(n))) / float64(textLen)
	if linkDens > cfg.LinkDensityMax {
		return nil // mostly links: navigation, tag cloud, index
	}

	score := float64(textLen) / float64(markupLen) * logScale(textLen) * (1 - linkDens)

	switch n.DataAtom {
	case atom.Article, atom.Main:
		score *= 2.0
	}
	hint := strings.ToLower(dom.GetAttributeOr(n, "class", "") + " " + dom.GetAttributeOr(n, "id", ""))
	for _, marker := range contentMarkers {
		if strings.Contains(hint, marker) {
			score *= 1.5
			break
		}
	}

	if score < cfg.MinScore {
		return nil
	}
	return &candidate{node: n, score: score, depth: depth, textLen: textLen}
}

func isContainerTag(a atom.Atom) bool {
	switch a {
	case atom.Article, atom.Main, atom.Section, atom.Div, atom.Td, atom.Body:
		return true
	}
	return false
}

// isBoilerplate checks tag name and class/id markers.
func isBoilerplate(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Nav, atom.Aside, atom.Footer, atom.Header,
		atom.Script, atom.Style, atom.Noscript, atom.Form:
		return true
	}
	hint := strings.ToLower(dom.GetAttributeOr(n, "class", "") + " " + dom.GetAttributeOr(n, "id", ""))
	if hint == " " {
		return false
	}
	for _, marker := range boilerplateMarkers {
		if strings.Contains(hint, marker) {
			return true
		}
	}
	return false
}

// logScale dampens raw text length so huge containers do not always win.
func logScale(n int) float64 {
	if n <= 0 {
		return 0
	}
	scale := 1.0
	for v := n; v > 100; v /= 2 {
		scale++
	}
	return scale
}

// collectText gathers trimmed visible text from a subtree.
func collectText(n *html.Node) string {
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
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// collectLinkText gathers text found inside <a> elements only.
func collectLinkText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inLink bool) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			inLink = true
		}
		if n.Type == html.TextNode && inLink {
			sb.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inLink)
		}
	}
	walk(n, false)
	return sb.String()
}

// renderedLen approximates the serialized markup length of a subtree.
func renderedLen(n *html.Node) int {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return 0
	}
	return sb.Len()
}

// wrapNode returns a selection for a node found during the density walk.
func wrapNode(doc *goquery.Document, n *html.Node) *goquery.Selection {
	if n.DataAtom == atom.Body {
		return doc.Find("body").First()
	}
	return doc.FindNodes(n)
}
