package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"ccvault/internal/scan"
)

// mtimes within this tolerance are considered identical
const mtimeTolerance = 1 // seconds

type Stats struct {
	ProjectsFound   int
	ProjectsCreated int
	FilesCopied     int
	FilesUpdated    int
	FilesSkipped    int
	Errors          []string
}

func (s Stats) String() string {
	return fmt.Sprintf("projects=%d created=%d copied=%d updated=%d skipped=%d errors=%d",
		s.ProjectsFound, s.ProjectsCreated, s.FilesCopied, s.FilesUpdated, s.FilesSkipped, len(s.Errors))
}

// Manager performs incremental timestamp-based copying of session files
// from the live Claude directory into the vault.
type Manager struct {
	src string
	dst string
}

func New(src, dst string) *Manager {
	return &Manager{src: src, dst: dst}
}

// Run copies new files, re-copies files whose mtimes differ, and skips the
// rest. Source timestamps are preserved so converters and future runs can
// compare them. Per-file failures are collected, never fatal.
func (m *Manager) Run() (Stats, error) {
	var stats Stats

	if err := os.MkdirAll(m.dst, 0o755); err != nil {
		return stats, fmt.Errorf("create vault dir: %w", err)
	}

	projects, err := scan.Projects(m.src)
	if err != nil {
		return stats, fmt.Errorf("scan source: %w", err)
	}

	for _, projectDir := range projects {
		stats.ProjectsFound++
		name := filepath.Base(projectDir)

		outProject := filepath.Join(m.dst, name)
		if _, err := os.Stat(outProject); os.IsNotExist(err) {
			if err := os.MkdirAll(outProject, 0o755); err != nil {
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", name, err))
				continue
			}
			stats.ProjectsCreated++
			log.Info().Str("project", name).Msg("created project dir")
		}

		matches, _ := filepath.Glob(filepath.Join(projectDir, "*.jsonl"))
		for _, srcFile := range matches {
			switch status, err := syncFile(srcFile, outProject); {
			case err != nil:
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", filepath.Base(srcFile), err))
			case status == "copied":
				stats.FilesCopied++
			case status == "updated":
				stats.FilesUpdated++
			default:
				stats.FilesSkipped++
			}
		}
	}

	return stats, nil
}

// syncAction decides what syncFile would do for this pair, without writing.
// Status uses the same decision so it never under-reports pending work.
func syncAction(srcFile, dstFile string) (string, os.FileInfo, error) {
	srcInfo, err := os.Stat(srcFile)
	if err != nil {
		return "", nil, err
	}
	dstInfo, err := os.Stat(dstFile)
	if err != nil {
		return "copied", srcInfo, nil
	}
	delta := srcInfo.ModTime().Unix() - dstInfo.ModTime().Unix()
	if delta < 0 {
		delta = -delta
	}
	if delta < mtimeTolerance {
		return "skipped", srcInfo, nil
	}
	return "updated", srcInfo, nil
}

func syncFile(srcFile, outProject string) (string, error) {
	dstFile := filepath.Join(outProject, filepath.Base(srcFile))
	action, srcInfo, err := syncAction(srcFile, dstFile)
	if err != nil {
		return "", err
	}
	if action == "skipped" {
		return action, nil
	}
	if err := copyFile(srcFile, dstFile, srcInfo); err != nil {
		return "", err
	}
	return action, nil
}

func copyFile(src, dst string, srcInfo os.FileInfo) error {
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
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// best effort; a failed Chtimes just means the next run re-copies
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		log.Debug().Str("file", dst).Err(err).Msg("could not preserve mtime")
	}
	return nil
}

type Status struct {
	InputProjects  map[string]int
	OutputProjects map[string]int
	PendingFiles   int
	SyncedFiles    int
}

// Status reports what a Run would do, without writing anything. A file is
// pending when Run would copy or re-copy it, including same-named copies
// whose mtimes have drifted apart.
func (m *Manager) Status() (Status, error) {
	st := Status{
		InputProjects:  make(map[string]int),
		OutputProjects: make(map[string]int),
	}

	projects, err := scan.Projects(m.src)
	if err != nil {
		return st, err
	}
	for _, p := range projects {
		name := filepath.Base(p)
		matches, _ := filepath.Glob(filepath.Join(p, "*.jsonl"))
		st.InputProjects[name] = len(matches)

		for _, srcFile := range matches {
			dstFile := filepath.Join(m.dst, name, filepath.Base(srcFile))
			action, _, err := syncAction(srcFile, dstFile)
			if err != nil || action != "skipped" {
				st.PendingFiles++
				continue
			}
			st.SyncedFiles++
		}
	}

	if outProjects, err := scan.Projects(m.dst); err == nil {
		for _, p := range outProjects {
			matches, _ := filepath.Glob(filepath.Join(p, "*.jsonl"))
			st.OutputProjects[filepath.Base(p)] = len(matches)
		}
	}

	return st, nil
}
