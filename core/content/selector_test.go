package content

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/hublun/MDConverter/core"
)

func parseDoc(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

// longText is comfortably above the default min_content_length.
var longText = strings.Repeat("Plain prose sentence with enough words to count. ", 10)

func TestSelectExplicitSelector(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div id="target"><p>`+longText+`</p></div>
		<div><p>other</p></div>
	</body></html>`)

	cfg := core.DefaultConfig()
	cfg.ContentSelector = "#target"

	sel := Select(doc, cfg)
	if id, _ := sel.Attr("id"); id != "target" {
		t.Fatalf("explicit selector not honored, selected id=%q", id)
	}
}

func TestSelectExplicitSelectorAmbiguous(t *testing.T) {
	// Two matches: the override must be ignored.
	doc := parseDoc(t, `<html><body>
		<div class="x"><p>one</p></div>
		<div class="x"><p>two</p></div>
	</body></html>`)

	cfg := core.DefaultConfig()
	cfg.ContentSelector = ".x"

	sel := Select(doc, cfg)
	if goquery.NodeName(sel) != "body" {
		t.Fatalf("ambiguous selector should fall through, got %s", goquery.NodeName(sel))
	}
}

func TestSelectLandmark(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<nav>home about contact</nav>
		<article><p>`+longText+`</p></article>
		<footer>copyright</footer>
	</body></html>`)

	sel := Select(doc, core.DefaultConfig())
	if goquery.NodeName(sel) != "article" {
		t.Fatalf("expected article landmark, got %s", goquery.NodeName(sel))
	}
}

func TestSelectDensity(t *testing.T) {
	// No landmarks: the content div must beat the link-heavy one.
	doc := parseDoc(t, `<html><body>
		<div class="linkfarm">
			<a href="/1">`+longText[:80]+`</a>
			<a href="/2">`+longText[:80]+`</a>
		</div>
		<div class="story"><p>`+longText+`</p><p>`+longText+`</p></div>
	</body></html>`)

	sel := Select(doc, core.DefaultConfig())
	if cls, _ := sel.Attr("class"); cls != "story" {
		t.Fatalf("density scoring picked %q, want story", cls)
	}
}

func TestSelectFallbackToBody(t *testing.T) {
	doc := parseDoc(t, `<html><body><article><h1>Hi</h1><p>World</p></article></body></html>`)

	// Tiny document: nothing clears the content-length floor.
	sel := Select(doc, core.DefaultConfig())
	if goquery.NodeName(sel) != "body" {
		t.Fatalf("expected body fallback, got %s", goquery.NodeName(sel))
	}
}

func TestSelectDeterministic(t *testing.T) {
	markup := `<html><body>
		<div><p>` + longText + `</p></div>
		<div><p>` + longText + `</p></div>
	</body></html>`

	first := Select(parseDoc(t, markup), core.DefaultConfig())
	second := Select(parseDoc(t, markup), core.DefaultConfig())

	h1, _ := goquery.OuterHtml(first)
	h2, _ := goquery.OuterHtml(second)
	if h1 != h2 {
		t.Fatal("selection is not deterministic for identical input")
	}
}

func TestSelectSkipsBoilerplate(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<div class="sidebar-promo"><p>`+longText+`</p></div>
		<div class="entry"><p>`+longText+`</p></div>
	</body></html>`)

	sel := Select(doc, core.DefaultConfig())
	if cls, _ := sel.Attr("class"); cls != "entry" {
		t.Fatalf("boilerplate container selected: %q", cls)
	}
}
