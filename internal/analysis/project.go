// Package analysis builds the project index that the resource cache holds
// for each analyzed directory.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AltairaLabs/codeintel-mcp/internal/cache"
)

// ErrNotDirectory is returned when the analyzed path is not a directory
var ErrNotDirectory = errors.New("path is not a directory")

// ignoreDirs are directory names that are never descended into
var ignoreDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"vendor":       true,
	"node_modules": true,
	".idea":        true,
	".vscode":      true,
}

// languages maps file extensions to language names
var languages = map[string]string{
	".go":   "Go",
	".py":   "Python",
	".js":   "JavaScript",
	".jsx":  "JavaScript",
	".mjs":  "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TypeScript",
	".rs":   "Rust",
	".java": "Java",
	".kt":   "Kotlin",
	".rb":   "Ruby",
	".c":    "C",
	".h":    "C",
	".cc":   "C++",
	".cpp":  "C++",
	".hpp":  "C++",
	".cs":   "C#",
	".php":  "PHP",
	".sh":   "Shell",
	".md":   "Markdown",
	".yaml": "YAML",
	".yml":  "YAML",
	".json": "JSON",
	".toml": "TOML",
	".sql":  "SQL",
	".html": "HTML",
	".css":  "CSS",
}

// Project is the index of one analyzed directory
type Project struct {
	Root       string
	Files      int
	TotalBytes int64
	Languages  map[string]int
	// GoPackages holds "relative/dir:name" for every non-test Go package
	GoPackages []string
	Skipped    int
	BuiltAt    time.Time
}

// FileCount implements cache.Handle
func (p *Project) FileCount() int {
	return p.Files
}

// Builder indexes directories on cache misses
type Builder struct {
	logger *slog.Logger
}

var _ cache.Builder = (*Builder)(nil)

// NewBuilder creates a project builder
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger}
}

// Build walks root and returns its Project index. Unreadable entries are
// counted as skipped; cancellation of ctx aborts the walk.
func (b *Builder) Build(ctx context.Context, root string) (cache.Handle, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	p := &Project{
		Root:      root,
		Languages: make(map[string]int),
		BuiltAt:   time.Now(),
	}
	packages := make(map[string]bool)
	fset := token.NewFileSet()

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			p.Skipped++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && ignoreDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			p.Skipped++
			return nil
		}
		p.Files++
		p.TotalBytes += fi.Size()

		ext := strings.ToLower(filepath.Ext(d.Name()))
		if lang, ok := languages[ext]; ok {
			p.Languages[lang]++
		} else {
			p.Languages["Other"]++
		}

		if ext == ".go" {
			if pkg := packageOf(fset, root, path); pkg != "" {
				packages[pkg] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	for pkg := range packages {
		p.GoPackages = append(p.GoPackages, pkg)
	}
	sort.Strings(p.GoPackages)

	b.logger.Debug("Indexed project",
		"root", root,
		"files", p.Files,
		"go_packages", len(p.GoPackages),
		"skipped", p.Skipped,
	)
	return p, nil
}

// packageOf returns "dir:name" for a Go file, or "" for test packages and
// files whose package clause does not parse.
func packageOf(fset *token.FileSet, root, path string) string {
	f, err := parser.ParseFile(fset, path, nil, parser.PackageClauseOnly)
	if err != nil || f.Name == nil {
		return ""
	}
	name := f.Name.Name
	if strings.HasSuffix(name, "_test") {
		return ""
	}

	dir, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return ""
	}
	return filepath.ToSlash(dir) + ":" + name
}
