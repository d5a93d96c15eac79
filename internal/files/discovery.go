package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DocumentExtensions are the text formats a batch conversion reads.
var DocumentExtensions = []string{".md", ".markdown", ".txt"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath   string
	extensions []string
}

// NewDiscovery creates a discovery rooted at basePath that matches the given
// extensions, or DocumentExtensions when none are given.
func NewDiscovery(basePath string, extensions ...string) *Discovery {
	if len(extensions) == 0 {
		extensions = DocumentExtensions
	}
	return &Discovery{basePath: basePath, extensions: extensions}
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// Matches reports whether name carries one of the discovery's extensions.
func (d *Discovery) Matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range d.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// FindDocuments lists matching files directly inside dir, sorted by name.
func (d *Discovery) FindDocuments(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var found []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !d.Matches(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Name < found[j].Name
	})
	return found, nil
}

// Expand turns a mix of file and directory arguments into a list of files.
// Files named explicitly are kept whatever their extension; directories
// contribute their matching files. Duplicates are dropped.
func (d *Discovery) Expand(args []string) ([]FileInfo, error) {
	seen := make(map[string]struct{})
	var out []FileInfo
	add := func(fi FileInfo) {
		if _, ok := seen[fi.Path]; ok {
			return
		}
		seen[fi.Path] = struct{}{}
		out = append(out, fi)
	}

	for _, arg := range args {
		path := d.resolve(arg)
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.IsDir() {
			add(FileInfo{Path: path, Name: info.Name(), Size: info.Size(), ModTime: info.ModTime()})
			continue
		}
		docs, err := d.FindDocuments(path)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			add(doc)
		}
	}
	return out, nil
}
