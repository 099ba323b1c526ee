package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hublun/MDConverter/core"
)

func testConfig(t *testing.T) core.Config {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const simplePage = `<html><head><title>Doc</title></head>
<body><nav>Menu A Menu B</nav><article><h1>Hi</h1><p>World</p></article></body></html>`

func TestConvertFileDefaults(t *testing.T) {
	cfg := testConfig(t)
	inDir := t.TempDir()
	in := filepath.Join(inDir, "page.html")
	writeFile(t, in, simplePage)

	result, err := New(cfg).ConvertFile(context.Background(), in, "")
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != core.StatusOK {
		t.Errorf("status = %q, warnings: %v", result.Status, result.Warnings)
	}
	if result.OutputPath != filepath.Join(cfg.OutputDir, "page.md") {
		t.Errorf("output path = %q", result.OutputPath)
	}

	data, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "---\ntitle: Doc\n---\n\n# Hi\n\nWorld\n"
	if string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}
}

func TestConvertFilePreservesImages(t *testing.T) {
	cfg := testConfig(t)
	inDir := t.TempDir()
	in := filepath.Join(inDir, "page.html")
	writeFile(t, in, `<html><head><title>Doc</title></head>
<body><h1>Hi</h1><p>Text</p><img src="page_files/pic.png"></body></html>`)
	writeFile(t, filepath.Join(inDir, "page_files", "pic.png"), "png-bytes")

	result, err := New(cfg).ConvertFile(context.Background(), in, "")
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != core.StatusOK {
		t.Fatalf("status = %q, warnings: %v", result.Status, result.Warnings)
	}

	// The body references the copied location, and the copy exists.
	if !strings.Contains(result.Markdown, "![Image](assets/images/pic.png)") {
		t.Errorf("markdown missing rewritten reference:\n%s", result.Markdown)
	}
	copied, err := os.ReadFile(filepath.Join(cfg.OutputDir, "assets", "images", "pic.png"))
	if err != nil || string(copied) != "png-bytes" {
		t.Errorf("asset not copied: %q, %v", copied, err)
	}
	if len(result.Manifest) != 1 || !result.Manifest[0].OK {
		t.Errorf("manifest = %+v", result.Manifest)
	}
}

func TestConvertFileUnresolvedAsset(t *testing.T) {
	cfg := testConfig(t)
	in := filepath.Join(t.TempDir(), "page.html")
	writeFile(t, in, `<html><head><title>Doc</title></head>
<body><h1>Hi</h1><p>Text</p><img src="img/missing.png"></body></html>`)

	result, err := New(cfg).ConvertFile(context.Background(), in, "")
	if err != nil {
		t.Fatal(err)
	}

	// The conversion still succeeds, keeps the original reference, and
	// carries exactly one resolution warning.
	if result.Status != core.StatusWarnings {
		t.Errorf("status = %q", result.Status)
	}
	if !strings.Contains(result.Markdown, "![Image](img/missing.png)") {
		t.Errorf("original reference lost:\n%s", result.Markdown)
	}
	var resolution int
	for _, w := range result.Warnings {
		if w.Kind == core.WarnAssetResolution {
			resolution++
		}
	}
	if resolution != 1 {
		t.Errorf("resolution warnings = %d, got %v", resolution, result.Warnings)
	}
}

func TestConvertFileCopyFailureRevertsReference(t *testing.T) {
	cfg := testConfig(t)
	inDir := t.TempDir()
	in := filepath.Join(inDir, "page.html")
	writeFile(t, in, `<html><head><title>Doc</title></head>
<body><h1>Hi</h1><p>Text</p><img src="page_files/pic.png"></body></html>`)
	writeFile(t, filepath.Join(inDir, "page_files", "pic.png"), "png-bytes")

	// A plain file where the images directory belongs makes the copy
	// fail while the conversion itself can still complete.
	writeFile(t, filepath.Join(cfg.OutputDir, "assets"), "blocker")

	result, err := New(cfg).ConvertFile(context.Background(), in, "")
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != core.StatusWarnings {
		t.Errorf("status = %q", result.Status)
	}

	var copyWarnings int
	for _, w := range result.Warnings {
		if w.Kind == core.WarnAssetCopy {
			copyWarnings++
		}
	}
	if copyWarnings != 1 {
		t.Errorf("copy warnings = %d, got %v", copyWarnings, result.Warnings)
	}

	// The body reverts to the original reference: it is never left
	// pointing at a destination that was not written.
	if !strings.Contains(result.Markdown, "![Image](page_files/pic.png)") {
		t.Errorf("original reference not restored:\n%s", result.Markdown)
	}
	if strings.Contains(result.Markdown, "assets/images") {
		t.Errorf("body still references the failed destination:\n%s", result.Markdown)
	}
	if len(result.Manifest) != 1 || result.Manifest[0].OK {
		t.Errorf("manifest = %+v", result.Manifest)
	}
}

func TestConvertFileIdempotent(t *testing.T) {
	cfg := testConfig(t)
	inDir := t.TempDir()
	in := filepath.Join(inDir, "page.html")
	writeFile(t, in, `<html><head><title>Doc</title></head>
<body><h1>Hi</h1><p>Text</p><img src="page_files/pic.png"></body></html>`)
	writeFile(t, filepath.Join(inDir, "page_files", "pic.png"), "png-bytes")

	p := New(cfg)
	first, err := p.ConvertFile(context.Background(), in, "")
	if err != nil {
		t.Fatal(err)
	}
	firstData, _ := os.ReadFile(first.OutputPath)

	second, err := p.ConvertFile(context.Background(), in, "")
	if err != nil {
		t.Fatal(err)
	}
	secondData, _ := os.ReadFile(second.OutputPath)

	if string(firstData) != string(secondData) {
		t.Errorf("reruns differ:\nfirst:\n%s\nsecond:\n%s", firstData, secondData)
	}
	// The rerun reuses the earlier copy rather than suffixing a new one.
	entries, _ := os.ReadDir(filepath.Join(cfg.OutputDir, "assets", "images"))
	if len(entries) != 1 {
		t.Errorf("images dir has %d entries, want 1", len(entries))
	}
}

func TestConvertFileJSONFormat(t *testing.T) {
	cfg := testConfig(t)
	cfg.Format = "json"
	in := filepath.Join(t.TempDir(), "page.html")
	writeFile(t, in, simplePage)

	result, err := New(cfg).ConvertFile(context.Background(), in, "")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(result.OutputPath) != ".json" {
		t.Errorf("output path = %q", result.OutputPath)
	}

	data, err := os.ReadFile(result.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Metadata core.Metadata `json:"metadata"`
		Content  struct {
			Markdown string `json:"markdown"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Metadata.Title != "Doc" {
		t.Errorf("title = %q", doc.Metadata.Title)
	}
	if !strings.Contains(doc.Content.Markdown, "# Hi") {
		t.Errorf("markdown = %q", doc.Content.Markdown)
	}
}

func TestConvertFileMissingInput(t *testing.T) {
	cfg := testConfig(t)
	_, err := New(cfg).ConvertFile(context.Background(), "/nonexistent/page.html", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, core.ErrInput) {
		t.Errorf("error not classified as input: %v", err)
	}
}

func TestConvertHTML(t *testing.T) {
	cfg := testConfig(t)
	result, err := New(cfg).ConvertHTML(context.Background(), simplePage, "snippet")
	if err != nil {
		t.Fatal(err)
	}
	if result.Markdown != "# Hi\n\nWorld\n" {
		t.Errorf("markdown = %q", result.Markdown)
	}
	if result.Meta.Title != "Doc" {
		t.Errorf("title = %q", result.Meta.Title)
	}
	if result.OutputPath != "" {
		t.Errorf("content conversion must not write files, got %q", result.OutputPath)
	}
}

func TestConvertHTMLEmpty(t *testing.T) {
	cfg := testConfig(t)
	if _, err := New(cfg).ConvertHTML(context.Background(), "   ", "x"); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestExtractMetadata(t *testing.T) {
	cfg := testConfig(t)
	in := filepath.Join(t.TempDir(), "page.html")
	writeFile(t, in, simplePage)

	meta, err := New(cfg).ExtractMetadata(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Title != "Doc" {
		t.Errorf("title = %q", meta.Title)
	}
}

func TestValidate(t *testing.T) {
	cfg := testConfig(t)
	in := filepath.Join(t.TempDir(), "page.html")
	writeFile(t, in, `<html><head><title>Doc</title></head>
<body><p>Text</p><img src="gone/pic.png"></body></html>`)

	report, err := New(cfg).Validate(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Valid || report.Title != "Doc" {
		t.Errorf("report = %+v", report)
	}
	if report.Assets != 1 || report.UnresolvedAssets != 1 {
		t.Errorf("asset counts = %+v", report)
	}
}

func TestValidateMissingFile(t *testing.T) {
	cfg := testConfig(t)
	report, err := New(cfg).Validate(context.Background(), "/nonexistent/page.html")
	if err != nil {
		t.Fatal(err)
	}
	if report.Valid || report.Reason == "" {
		t.Errorf("report = %+v", report)
	}
}

func TestConvertCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(cfg).ConvertFile(ctx, "anything.html", ""); err == nil {
		t.Fatal("expected context error")
	}
}
