package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// File is one candidate transcript found under a vault root.
type File struct {
	Path    string
	Project string // parent directory name
	Mtime   time.Time
	Size    int64
}

type Options struct {
	// ModifiedSince prunes files whose mtime predates the bound. A file not
	// touched since then cannot contain newer messages, so this never drops
	// a possible match for a lower-bounded query.
	ModifiedSince time.Time
}

// artifactDirs hold generated output (converted copies); they are never
// treated as transcript sources.
var artifactDirs = map[string]bool{
	"markdown": true,
	"html":     true,
	"data":     true,
}

// Transcripts enumerates *.jsonl session files under root. Unreadable
// subtrees are skipped. The returned slice is sorted by path.
func Transcripts(root string, opts Options) ([]File, error) {
	var files []File
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // skip unreadable entries
		}
		if info.IsDir() {
			if artifactDirs[filepath.Base(path)] {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".jsonl" {
			return nil
		}
		if strings.Contains(filepath.Base(path), "sessions-index") {
			return nil
		}
		if !opts.ModifiedSince.IsZero() && info.ModTime().Before(opts.ModifiedSince) {
			return nil
		}
		files = append(files, File{
			Path:    path,
			Project: filepath.Base(filepath.Dir(path)),
			Mtime:   info.ModTime(),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Projects lists the project directories directly under root, skipping
// artifact dirs and projects without session files.
func Projects(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || artifactDirs[e.Name()] {
			continue
		}
		matches, _ := filepath.Glob(filepath.Join(root, e.Name(), "*.jsonl"))
		if len(matches) == 0 {
			continue
		}
		dirs = append(dirs, filepath.Join(root, e.Name()))
	}
	sort.Strings(dirs)
	return dirs, nil
}
