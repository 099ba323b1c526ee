// Package assets resolves asset references from a saved page against
// the sibling asset directory browsers create alongside the HTML file.
// Resolution is order-independent and idempotent; unresolved references
// stay in the map with an empty destination and surface as warnings.
package assets

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hublun/MDConverter/core"
)

// downloadableExtensions are linked-file extensions that count as page
// assets when found in anchor hrefs. Images are always assets.
var downloadableExtensions = map[string]bool{
	".pdf": true, ".zip": true, ".tar": true, ".gz": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".csv": true,
}

// IsExternal reports whether a reference points outside the saved page
// package (http/https URL or inline data URI).
func IsExternal(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "//") ||
		strings.HasPrefix(ref, "data:")
}

// FindAssetsDir locates the conventional sibling asset directory for a
// saved HTML file. Browsers name it after the page: "<stem>_files",
// "<stem>_assets", or "<name>_files". Returns "" when none exists.
func FindAssetsDir(htmlPath string) string {
	base := filepath.Dir(htmlPath)
	name := filepath.Base(htmlPath)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	for _, candidate := range []string{
		stem + "_files",
		stem + "_assets",
		name + "_files",
	} {
		dir := filepath.Join(base, candidate)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

// Resolve scans the parsed document for local asset references and maps
// each to a local file. The document is not mutated.
func Resolve(doc *goquery.Document, htmlPath string, cfg core.Config) (*core.AssetMap, []core.Warning) {
	m := core.NewAssetMap()
	var warnings []core.Warning

	baseDir := filepath.Dir(htmlPath)
	assetsDir := FindAssetsDir(htmlPath)
	cfg.Logger.Debug("resolving assets", "html", htmlPath, "assets_dir", assetsDir)

	record := func(ref string) {
		if ref == "" || IsExternal(ref) {
			return
		}
		if _, ok := m.Lookup(ref); ok {
			return
		}
		source := resolveRef(ref, baseDir, assetsDir)
		m.Add(&core.Asset{Ref: ref, Source: source})
		if source == "" {
			warnings = append(warnings, core.Warning{
				Kind:    core.WarnAssetResolution,
				Ref:     ref,
				Message: fmt.Sprintf("asset %q not found near %s", ref, htmlPath),
			})
		}
	}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		record(src)
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if isDownloadable(href) {
			record(href)
		}
	})

	return m, warnings
}

// resolveRef tries candidate locations for one reference and returns
// the first existing file, or "" when unresolved.
func resolveRef(ref string, baseDir, assetsDir string) string {
	local := localPath(ref)
	if local == "" {
		return ""
	}

	if filepath.IsAbs(local) {
		if fileExists(local) {
			return local
		}
		return ""
	}

	var candidates []string
	if assetsDir != "" {
		candidates = append(candidates,
			filepath.Join(assetsDir, filepath.Base(local)),
			filepath.Join(assetsDir, local),
		)
	}
	candidates = append(candidates, filepath.Join(baseDir, local))

	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}
	return ""
}

// localPath converts a markup reference into a filesystem path,
// stripping query strings, fragments, and URL escaping.
func localPath(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return filepath.FromSlash(strings.TrimPrefix(ref, "./"))
	}
	p := u.Path
	if p == "" {
		return ""
	}
	return filepath.FromSlash(strings.TrimPrefix(p, "./"))
}

func isDownloadable(ref string) bool {
	if ref == "" || IsExternal(ref) {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return downloadableExtensions[strings.ToLower(path.Ext(u.Path))]
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
