// Package pipeline is the programmatic entry point of the converter.
// It orchestrates the stages — asset resolution, metadata extraction,
// content selection, cleaning, Markdown rendering, assembly — over one
// immutable Config snapshot per conversion. The CLI and the MCP adapter
// are thin layers over this package.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hublun/MDConverter/core"
	"github.com/hublun/MDConverter/core/assemble"
	"github.com/hublun/MDConverter/core/assets"
	"github.com/hublun/MDConverter/core/clean"
	"github.com/hublun/MDConverter/core/content"
	"github.com/hublun/MDConverter/core/input"
	"github.com/hublun/MDConverter/core/meta"
	"github.com/hublun/MDConverter/core/render"
)

// Pipeline converts saved HTML pages to Markdown. One Pipeline may run
// many conversions; each run owns its document, asset map, and result,
// so independent conversions can run concurrently.
type Pipeline struct {
	cfg    core.Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration snapshot.
func New(cfg core.Config) *Pipeline {
	cfg.ApplyDefaults()
	return &Pipeline{cfg: cfg, logger: cfg.Logger}
}

// Config returns the snapshot the pipeline runs with.
func (p *Pipeline) Config() core.Config { return p.cfg }

// ConvertFile converts one saved HTML page into the configured output
// format. outputPath may be empty; the file then lands in the output
// directory under the input's stem. Non-fatal conditions accumulate as
// warnings on the result; fatal conditions return an error wrapping
// core.ErrInput or core.ErrOutput.
func (p *Pipeline) ConvertFile(ctx context.Context, inputPath, outputPath string) (*core.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markup, err := input.Load(inputPath, p.cfg.MaxFileSize)
	if err != nil {
		return nil, err
	}
	doc, err := parse(markup)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", core.ErrInput, inputPath, err)
	}

	metadata := meta.Extract(doc, inputPath, p.cfg)
	assetMap, warnings := assets.Resolve(doc, inputPath, p.cfg)

	writer := assemble.New(p.cfg)
	if p.cfg.PreserveImages {
		writer.PlanDestinations(assetMap)
	}

	body, renderWarnings, err := p.renderBody(doc, assetMap)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, renderWarnings...)

	formatRenderer, err := render.ForFormat(p.cfg.Format)
	if err != nil {
		return nil, err
	}

	var manifest []core.CopyOp
	if p.cfg.PreserveImages {
		ops, copyWarnings := writer.CopyAssets(assetMap)
		manifest = ops
		warnings = append(warnings, copyWarnings...)
		body = revertFailedCopies(body, assetMap)
	}

	data, err := p.composeOutput(writer, formatRenderer, body, metadata)
	if err != nil {
		return nil, err
	}

	outPath := writer.OutputPath(inputPath, outputPath, formatRenderer.Extension())
	if err := writer.WriteFile(outPath, data); err != nil {
		return nil, err
	}

	result := &core.Result{
		Status:     status(warnings),
		InputPath:  inputPath,
		OutputPath: outPath,
		Markdown:   body,
		Meta:       metadata,
		Manifest:   manifest,
		Warnings:   warnings,
	}
	p.logger.Info("converted", "input", inputPath, "output", outPath,
		"status", result.Status, "warnings", len(warnings))
	return result, nil
}

// ConvertHTML converts raw HTML text without touching the filesystem.
// name is used for the title fallback only. Local asset references
// cannot be resolved in this mode and surface as warnings.
func (p *Pipeline) ConvertHTML(ctx context.Context, markup, name string) (*core.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(markup) == "" {
		return nil, fmt.Errorf("%w: empty HTML content", core.ErrInput)
	}

	doc, err := parse(markup)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing content: %v", core.ErrInput, err)
	}

	metadata := meta.Extract(doc, name, p.cfg)
	assetMap, warnings := assets.Resolve(doc, name, p.cfg)

	body, renderWarnings, err := p.renderBody(doc, assetMap)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, renderWarnings...)

	return &core.Result{
		Status:   status(warnings),
		Markdown: body,
		Meta:     metadata,
		Warnings: warnings,
	}, nil
}

// ExtractMetadata runs only the metadata stage against a file.
func (p *Pipeline) ExtractMetadata(ctx context.Context, path string) (core.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return core.Metadata{}, err
	}
	markup, err := input.Load(path, p.cfg.MaxFileSize)
	if err != nil {
		return core.Metadata{}, err
	}
	doc, err := parse(markup)
	if err != nil {
		return core.Metadata{}, fmt.Errorf("%w: parsing %s: %v", core.ErrInput, path, err)
	}
	return meta.Extract(doc, path, p.cfg), nil
}

// ValidationReport is the outcome of a validation-only run: no output
// is written.
type ValidationReport struct {
	Valid            bool   `json:"valid"`
	Reason           string `json:"reason,omitempty"`
	Title            string `json:"title,omitempty"`
	Assets           int    `json:"assets"`
	UnresolvedAssets int    `json:"unresolved_assets"`
}

// Validate checks that a file is readable, parseable HTML, and reports
// how its assets would resolve. Input problems yield an invalid report
// rather than an error.
func (p *Pipeline) Validate(ctx context.Context, path string) (*ValidationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markup, err := input.Load(path, p.cfg.MaxFileSize)
	if err != nil {
		return &ValidationReport{Valid: false, Reason: err.Error()}, nil
	}
	doc, err := parse(markup)
	if err != nil {
		return &ValidationReport{Valid: false, Reason: fmt.Sprintf("parsing: %v", err)}, nil
	}

	metadata := meta.Extract(doc, path, p.cfg)
	assetMap, warnings := assets.Resolve(doc, path, p.cfg)

	return &ValidationReport{
		Valid:            true,
		Title:            metadata.Title,
		Assets:           assetMap.Len(),
		UnresolvedAssets: len(warnings),
	}, nil
}

// renderBody runs selection, cleaning, and Markdown rendering over an
// independent copy of the content subtree.
func (p *Pipeline) renderBody(doc *goquery.Document, assetMap *core.AssetMap) (string, []core.Warning, error) {
	selected := content.Select(doc, p.cfg)

	copyDoc, err := clean.Snapshot(selected)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", core.ErrInput, err)
	}
	if p.cfg.CleanHTML {
		clean.Strip(copyDoc, p.cfg)
	}

	return render.Markdown(copyDoc, assetMap, p.cfg)
}

// composeOutput builds the final bytes for the configured format. Only
// the Markdown format carries frontmatter.
func (p *Pipeline) composeOutput(writer *assemble.Writer, r core.Renderer, body string, metadata core.Metadata) ([]byte, error) {
	if _, ok := r.(*render.MarkdownRenderer); ok {
		frontmatter, err := writer.Frontmatter(metadata)
		if err != nil {
			return nil, err
		}
		return []byte(frontmatter + body), nil
	}
	return r.Render(body, metadata)
}

// revertFailedCopies rewrites image references whose copy failed back
// to their original form, keeping the asset referential integrity
// invariant: every reference is either copied or original-plus-warning.
func revertFailedCopies(body string, assetMap *core.AssetMap) string {
	for _, asset := range assetMap.Assets() {
		if asset.Dest == "" || asset.Copied {
			continue
		}
		body = strings.ReplaceAll(body, "("+asset.Dest+")", "("+asset.Ref+")")
	}
	return body
}

func parse(markup string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(markup))
}

func status(warnings []core.Warning) core.Status {
	if len(warnings) > 0 {
		return core.StatusWarnings
	}
	return core.StatusOK
}
