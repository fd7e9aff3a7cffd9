package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ccvault/internal/scan"
	"ccvault/internal/transcript"
)

// Format names a conversion target. The string doubles as the output
// subdirectory inside each project.
type Format string

const (
	Markdown Format = "markdown"
	HTML     Format = "html"
	Data     Format = "data"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return Markdown, nil
	case "html":
		return HTML, nil
	case "json", "data":
		return Data, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

func (f Format) ext() string {
	switch f {
	case Markdown:
		return ".md"
	case HTML:
		return ".html"
	default:
		return ".json"
	}
}

type Stats struct {
	Converted map[Format]int
	Skipped   int
	Errors    int
}

func (s Stats) String() string {
	parts := make([]string, 0, len(s.Converted))
	for _, f := range []Format{Markdown, HTML, Data} {
		if n, ok := s.Converted[f]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", f, n))
		}
	}
	return fmt.Sprintf("%s skipped=%d errors=%d", strings.Join(parts, " "), s.Skipped, s.Errors)
}

// ConvertAll renders every session under vaultDir into the requested
// formats. Conversion is incremental: a session whose outputs are all newer
// than the source is skipped.
func ConvertAll(vaultDir string, formats []Format) (Stats, error) {
	stats := Stats{Converted: make(map[Format]int)}

	projects, err := scan.Projects(vaultDir)
	if err != nil {
		return stats, fmt.Errorf("scan vault: %w", err)
	}

	for _, projectDir := range projects {
		for _, f := range formats {
			if err := os.MkdirAll(filepath.Join(projectDir, string(f)), 0o755); err != nil {
				return stats, err
			}
		}

		matches, _ := filepath.Glob(filepath.Join(projectDir, "*.jsonl"))
		for _, srcFile := range matches {
			sessionID := strings.TrimSuffix(filepath.Base(srcFile), ".jsonl")

			srcInfo, err := os.Stat(srcFile)
			if err != nil {
				stats.Errors++
				continue
			}
			if !needsConversion(projectDir, sessionID, formats, srcInfo.ModTime()) {
				stats.Skipped++
				continue
			}

			msgs, _, err := transcript.ReadAll(srcFile)
			if err != nil {
				stats.Errors++
				log.Warn().Str("file", srcFile).Err(err).Msg("skipping unreadable session")
				continue
			}
			if len(msgs) == 0 {
				stats.Skipped++
				continue
			}

			for _, f := range formats {
				outPath := filepath.Join(projectDir, string(f), sessionID+f.ext())
				var werr error
				switch f {
				case Markdown:
					werr = writeMarkdown(msgs, outPath, sessionID)
				case HTML:
					werr = writeHTML(msgs, outPath, sessionID)
				case Data:
					werr = writeData(msgs, outPath, sessionID, srcFile)
				}
				if werr != nil {
					stats.Errors++
					log.Warn().Str("file", outPath).Err(werr).Msg("conversion failed")
					continue
				}
				stats.Converted[f]++
			}
		}
	}

	return stats, nil
}

func needsConversion(projectDir, sessionID string, formats []Format, srcMtime time.Time) bool {
	for _, f := range formats {
		outPath := filepath.Join(projectDir, string(f), sessionID+f.ext())
		info, err := os.Stat(outPath)
		if err != nil {
			return true
		}
		if info.ModTime().Before(srcMtime) {
			return true
		}
	}
	return false
}
