// Package input loads saved HTML pages from disk and discovers batch
// inputs. It enforces the configured size limit and falls back to a
// Latin-1 decode when the file is not valid UTF-8.
package input

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hublun/MDConverter/core"
)

// Load reads an HTML file and returns its content as UTF-8 text.
// All failures wrap core.ErrInput: they abort the conversion before any
// output is written.
func Load(path string, maxSize int64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %v", core.ErrInput, path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", core.ErrInput, path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return "", fmt.Errorf("%w: %s too large: %d bytes (max %d)", core.ErrInput, path, info.Size(), maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", core.ErrInput, path, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", core.ErrInput, path)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}
	return decodeLatin1(data), nil
}

// decodeLatin1 maps each byte to the code point of the same value.
func decodeLatin1(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

// htmlExtensions are the file extensions treated as convertible pages
// during directory discovery.
var htmlExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

// IsHTMLFile reports whether a path looks like an HTML page.
func IsHTMLFile(path string) bool {
	return htmlExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover expands the given arguments into the list of HTML files to
// convert. File arguments are taken as-is; directory arguments are
// walked recursively for HTML pages. Duplicates are dropped while
// preserving first-seen order.
func Discover(args []string) ([]string, error) {
	visited := make(map[string]bool)
	var files []string

	add := func(path string) {
		clean := filepath.Clean(path)
		if visited[clean] {
			return
		}
		visited[clean] = true
		files = append(files, clean)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: stat %s: %v", core.ErrInput, arg, err)
		}

		if !info.IsDir() {
			add(arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// Saved-page asset directories contain HTML fragments
				// (ad frames, widgets) that are not standalone pages.
				name := d.Name()
				if path != arg && (strings.HasSuffix(name, "_files") || strings.HasSuffix(name, "_assets")) {
					return fs.SkipDir
				}
				return nil
			}
			if IsHTMLFile(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: walking %s: %v", core.ErrInput, arg, err)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no HTML files found", core.ErrInput)
	}
	return files, nil
}
