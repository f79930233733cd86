// Package search implements the library text search: a case-insensitive
// line grep over the files of one or more library roots, run on a worker
// goroutine that streams one FileMatches per matching file.
package search

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPatterns matches Modelica source files
var DefaultPatterns = []string{"*.mo"}

// FileMatches is the result for one file: the matching lines keyed by
// their 1-based line number
type FileMatches struct {
	FileName string
	Lines    map[int]string
}

// Progress reports the file about to be searched
type Progress struct {
	Index    int
	Total    int
	FileName string
}

// Request describes one search
type Request struct {
	Query    string
	Roots    []string // files or directories
	Patterns []string // file name globs, DefaultPatterns when empty
	Progress chan<- Progress
	Logger   *slog.Logger
}

// Summary is returned when a search completes
type Summary struct {
	Files   int // files searched
	Matched int // files with at least one match
}

// Files collects the files under roots whose base name matches one of
// patterns. A root that is a file is taken as is.
func Files(roots, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	var files []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !matchAny(patterns, d.Name()) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("search: walk %s: %w", root, err)
		}
	}
	return files, nil
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(strings.TrimSpace(p), name); ok {
			return true
		}
	}
	return false
}

// Run searches every file of req and sends results on out. It checks ctx
// between files and returns ctx.Err() when cancelled; results already sent
// stay valid. Run does not close out.
func Run(ctx context.Context, req Request, out chan<- FileMatches) (Summary, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}
	var sum Summary
	if req.Query == "" {
		return sum, nil
	}

	files, err := Files(req.Roots, req.Patterns)
	if err != nil {
		return sum, err
	}
	query := strings.ToLower(req.Query)

	for i, name := range files {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}

		if req.Progress != nil {
			select {
			case req.Progress <- Progress{Index: i, Total: len(files), FileName: name}:
			default:
			}
		}

		lines, err := grepFile(name, query)
		if err != nil {
			log.Debug("skipping file", "file", name, "error", err)
			continue
		}
		sum.Files++
		if len(lines) == 0 {
			continue
		}
		sum.Matched++

		select {
		case out <- FileMatches{FileName: name, Lines: lines}:
		case <-ctx.Done():
			return sum, ctx.Err()
		}
	}
	return sum, nil
}

// Start runs the search on its own goroutine. The results channel is
// closed when the search ends; the error channel then yields exactly one
// value.
func Start(ctx context.Context, req Request) (<-chan FileMatches, <-chan error) {
	out := make(chan FileMatches)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		_, err := Run(ctx, req, out)
		errc <- err
	}()
	return out, errc
}

func grepFile(name, query string) (map[int]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := make(map[int]string)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		if strings.Contains(strings.ToLower(sc.Text()), query) {
			lines[n] = sc.Text()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
