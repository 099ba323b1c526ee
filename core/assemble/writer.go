// Package assemble produces the final artifact: optional YAML
// frontmatter plus the rendered body written atomically to the output
// path, and the referenced assets copied into the images directory with
// collision-safe naming.
package assemble

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hublun/MDConverter/core"
)

// Writer assembles and writes conversion output.
type Writer struct {
	cfg core.Config
}

// New creates a Writer for one conversion.
func New(cfg core.Config) *Writer {
	return &Writer{cfg: cfg}
}

// OutputPath resolves the destination file. An explicit path wins;
// otherwise the input stem lands in the configured output directory.
func (w *Writer) OutputPath(inputPath, explicit, ext string) string {
	if explicit != "" {
		return explicit
	}
	name := filepath.Base(inputPath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(w.cfg.OutputDir, stem+ext)
}

// PlanDestinations assigns each resolved asset its output-relative
// destination before rendering, so the renderer can emit final paths.
// Name clashes get a numeric suffix; a rerun that finds its own earlier
// copy (same name, identical content) reuses it, keeping conversion
// idempotent.
func (w *Writer) PlanDestinations(m *core.AssetMap) {
	taken := make(map[string]bool)

	for _, asset := range m.Assets() {
		if !asset.Resolved() {
			continue
		}

		if _, err := os.Stat(asset.Source); err != nil {
			continue
		}

		base := filepath.Base(asset.Source)
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)

		name := base
		for n := 1; ; n++ {
			if !taken[name] && !clashes(w.assetDiskPath(name), asset.Source) {
				break
			}
			name = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		taken[name] = true
		asset.Dest = filepath.ToSlash(filepath.Join(w.cfg.ImagesDir, name))
	}
}

// clashes reports whether an existing file at path holds different
// content than src. A byte-identical file counts as our own earlier
// copy and is reused instead; anything else must not be overwritten.
func clashes(path, src string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	same, err := sameContent(path, src)
	if err != nil {
		return true
	}
	return !same
}

func sameContent(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if ia.Size() != ib.Size() {
		return false, nil
	}

	da, err := os.ReadFile(a)
	if err != nil {
		return false, err
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}

// assetDiskPath maps an asset name to its on-disk location.
func (w *Writer) assetDiskPath(name string) string {
	if filepath.IsAbs(w.cfg.ImagesDir) {
		return filepath.Join(w.cfg.ImagesDir, name)
	}
	return filepath.Join(w.cfg.OutputDir, w.cfg.ImagesDir, name)
}

// destDiskPath maps a planned output-relative destination to disk.
func (w *Writer) destDiskPath(dest string) string {
	p := filepath.FromSlash(dest)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(w.cfg.OutputDir, p)
}

// CopyAssets copies every planned asset to its destination. Individual
// failures are non-fatal: they produce warnings and a failed manifest
// entry, and the caller reverts the body reference.
func (w *Writer) CopyAssets(m *core.AssetMap) ([]core.CopyOp, []core.Warning) {
	var ops []core.CopyOp
	var warnings []core.Warning

	for _, asset := range m.Assets() {
		if !asset.Resolved() || asset.Dest == "" {
			continue
		}

		dst := w.destDiskPath(asset.Dest)
		err := copyFile(asset.Source, dst)
		if err != nil {
			w.cfg.Logger.Warn("asset copy failed", "source", asset.Source, "dest", dst, "error", err)
			warnings = append(warnings, core.Warning{
				Kind:    core.WarnAssetCopy,
				Ref:     asset.Ref,
				Message: fmt.Sprintf("copying %s: %v", asset.Source, err),
			})
			ops = append(ops, core.CopyOp{Source: asset.Source, Dest: dst, OK: false})
			continue
		}

		asset.Copied = true
		ops = append(ops, core.CopyOp{Source: asset.Source, Dest: dst, OK: true})
	}

	return ops, warnings
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// Frontmatter renders the YAML block for the metadata record. Returns
// "" when frontmatter is disabled or every field is empty, per the
// frontmatter presence law.
func (w *Writer) Frontmatter(meta core.Metadata) (string, error) {
	if !w.cfg.AddMetadata || meta.Empty() {
		return "", nil
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshaling frontmatter: %w", err)
	}
	return "---\n" + string(data) + "---\n\n", nil
}

// WriteFile writes the artifact atomically: the content lands in a
// temporary file first and is renamed into place, so the destination
// holds either the full file or nothing.
func (w *Writer) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", core.ErrOutput, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mdconverter-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %v", core.ErrOutput, dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %v", core.ErrOutput, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing %s: %v", core.ErrOutput, path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: chmod %s: %v", core.ErrOutput, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming into %s: %v", core.ErrOutput, path, err)
	}
	return nil
}
