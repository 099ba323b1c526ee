// Package core defines the shared types for the MDConverter pipeline.
// Each stage of the pipeline consumes and produces these types; the
// stages themselves live in the core/* subpackages.
package core

import (
	"errors"
	"log/slog"
)

// Sentinel errors for the two fatal failure classes. Everything else
// accumulates as Warnings on the Result.
var (
	// ErrInput marks a fatal input failure: file missing, unreadable,
	// too large, or not parseable as HTML.
	ErrInput = errors.New("input error")

	// ErrOutput marks a fatal output failure: destination directory or
	// file cannot be written.
	ErrOutput = errors.New("output error")
)

// Status classifies the outcome of one conversion.
type Status string

const (
	StatusOK       Status = "success"
	StatusWarnings Status = "success-with-warnings"
	StatusFailed   Status = "failure"
)

// WarningKind identifies the non-fatal condition a Warning records.
type WarningKind string

const (
	// WarnAssetResolution — an asset reference could not be resolved to
	// a local file; the original reference is retained in the output.
	WarnAssetResolution WarningKind = "asset-resolution"

	// WarnAssetCopy — a resolved asset could not be copied to its
	// destination; the original reference is retained.
	WarnAssetCopy WarningKind = "asset-copy"

	// WarnRender — a markup construct had no direct Markdown equivalent
	// and was rendered as a plain-text fallback or dropped.
	WarnRender WarningKind = "render"
)

// Warning is a non-fatal condition recorded during a conversion.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Ref     string      `json:"ref,omitempty"` // the asset/markup reference involved
	Message string      `json:"message"`
}

// Metadata holds the fields extracted from a page. All fields are
// optional; empty fields are omitted from frontmatter.
type Metadata struct {
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	Author      string   `yaml:"author,omitempty" json:"author,omitempty"`
	Published   string   `yaml:"published,omitempty" json:"published,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Canonical   string   `yaml:"canonical_url,omitempty" json:"canonical_url,omitempty"`
	SiteName    string   `yaml:"site_name,omitempty" json:"site_name,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Empty reports whether no field was populated.
func (m Metadata) Empty() bool {
	return m.Title == "" && m.Author == "" && m.Published == "" &&
		m.Description == "" && m.Canonical == "" && m.SiteName == "" &&
		len(m.Tags) == 0
}

// Asset is one resolved (or unresolved) asset reference.
type Asset struct {
	Ref    string `json:"ref"`              // reference as it appeared in markup
	Source string `json:"source,omitempty"` // resolved local path, "" if unresolved
	Dest   string `json:"dest,omitempty"`   // planned output-relative path, "" until assigned
	Copied bool   `json:"copied"`
}

// Resolved reports whether the reference maps to an existing local file.
func (a *Asset) Resolved() bool { return a.Source != "" }

// AssetMap maps original asset references to resolved local paths and
// planned copy destinations. Insertion order is preserved so that
// destination assignment and the copy manifest are deterministic.
type AssetMap struct {
	order []string
	byRef map[string]*Asset
}

// NewAssetMap creates an empty AssetMap.
func NewAssetMap() *AssetMap {
	return &AssetMap{byRef: make(map[string]*Asset)}
}

// Add records an asset under its original reference. Adding the same
// reference twice keeps the first entry, making resolution idempotent.
func (m *AssetMap) Add(a *Asset) {
	if _, ok := m.byRef[a.Ref]; ok {
		return
	}
	m.byRef[a.Ref] = a
	m.order = append(m.order, a.Ref)
}

// Lookup returns the asset for an original reference.
func (m *AssetMap) Lookup(ref string) (*Asset, bool) {
	a, ok := m.byRef[ref]
	return a, ok
}

// Assets returns all assets in insertion order.
func (m *AssetMap) Assets() []*Asset {
	out := make([]*Asset, 0, len(m.order))
	for _, ref := range m.order {
		out = append(out, m.byRef[ref])
	}
	return out
}

// Len returns the number of distinct references.
func (m *AssetMap) Len() int { return len(m.order) }

// CopyOp is one entry of the asset manifest: a source→destination copy
// and whether it succeeded.
type CopyOp struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
	OK     bool   `json:"ok"`
}

// Result is the outcome of one conversion.
type Result struct {
	Status     Status    `json:"status"`
	InputPath  string    `json:"input_path,omitempty"`
	OutputPath string    `json:"output_path,omitempty"`
	Markdown   string    `json:"markdown"` // rendered body, without frontmatter
	Meta       Metadata  `json:"metadata"`
	Manifest   []CopyOp  `json:"manifest,omitempty"`
	Warnings   []Warning `json:"warnings,omitempty"`
}

// Renderer converts the canonical Markdown body (plus metadata) into a
// final output format.
type Renderer interface {
	Render(markdown string, meta Metadata) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}

// Config is the immutable per-conversion configuration snapshot. It is
// resolved once (config file, then overrides) before the pipeline runs;
// no stage re-reads configuration mid-run.
type Config struct {
	OutputDir      string `json:"output_dir" mapstructure:"output_dir"`
	ImagesDir      string `json:"images_dir" mapstructure:"images_dir"`
	Format         string `json:"format" mapstructure:"format"` // md, json, pdf
	PreserveImages bool   `json:"preserve_images" mapstructure:"preserve_images"`
	CleanHTML      bool   `json:"clean_html" mapstructure:"clean_html"`
	AddMetadata    bool   `json:"add_metadata" mapstructure:"add_metadata"`
	LogLevel       string `json:"log_level" mapstructure:"log_level"`

	// Renderer policy.
	HeadingOffset   int    `json:"heading_offset" mapstructure:"heading_offset"`
	WrapWidth       int    `json:"wrap_width" mapstructure:"wrap_width"` // 0 = no wrap
	CodeFence       string `json:"code_fence" mapstructure:"code_fence"`
	BulletMarker    string `json:"bullet_marker" mapstructure:"bullet_marker"`
	StrongDelimiter string `json:"strong_delimiter" mapstructure:"strong_delimiter"`
	EmDelimiter     string `json:"em_delimiter" mapstructure:"em_delimiter"`

	// Content selection. ContentSelector, when set, short-circuits the
	// heuristic scoring if it matches exactly one node.
	ContentSelector  string  `json:"content_selector" mapstructure:"content_selector"`
	MinContentLength int     `json:"min_content_length" mapstructure:"min_content_length"`
	MinScore         float64 `json:"min_score" mapstructure:"min_score"`
	LinkDensityMax   float64 `json:"link_density_max" mapstructure:"link_density_max"`

	// Cleaning. StripPatterns are CSS selectors removed in addition to
	// the built-in boilerplate set.
	StripPatterns []string `json:"strip_patterns" mapstructure:"strip_patterns"`

	// MaxFileSize is the largest input file accepted, in bytes.
	MaxFileSize int64 `json:"max_file_size" mapstructure:"max_file_size"`

	// Logger receives diagnostics for this conversion. Never a global.
	Logger *slog.Logger `json:"-" mapstructure:"-"`
}

// DefaultConfig returns the configuration used when no file or override
// is supplied.
func DefaultConfig() Config {
	c := Config{
		PreserveImages: true,
		CleanHTML:      true,
		AddMetadata:    true,
	}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields in place.
func (c *Config) ApplyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.ImagesDir == "" {
		c.ImagesDir = "assets/images"
	}
	if c.Format == "" {
		c.Format = "md"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.CodeFence == "" {
		c.CodeFence = "```"
	}
	if c.BulletMarker == "" {
		c.BulletMarker = "-"
	}
	if c.StrongDelimiter == "" {
		c.StrongDelimiter = "**"
	}
	if c.EmDelimiter == "" {
		c.EmDelimiter = "*"
	}
	if c.MinContentLength <= 0 {
		c.MinContentLength = 140
	}
	if c.MinScore <= 0 {
		c.MinScore = 1.0
	}
	if c.LinkDensityMax <= 0 {
		c.LinkDensityMax = 0.5
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 50 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// SupportedFormats returns the output formats the pipeline can produce.
func SupportedFormats() []string {
	return []string{"md", "json", "pdf"}
}
