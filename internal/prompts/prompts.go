package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"ccvault/internal/scan"
	"ccvault/internal/transcript"
)

var (
	pairedTagRe   = regexp.MustCompile(`(?s)<[^>]+>.*?</[^>]+>`)
	loneTagRe     = regexp.MustCompile(`<[^>]+>`)
	interruptedRe = regexp.MustCompile(`^\[Request interrupted[^\]]*\]`)
	imageRefRe    = regexp.MustCompile(`^\[Image #\d+[^\]]*\]`)
	blankRunsRe   = regexp.MustCompile(`\n{3,}`)
)

// single-word acknowledgements are commands, not prompts worth keeping
var throwaway = map[string]bool{
	"y": true, "n": true, "yes": true, "no": true, "ok": true, "okay": true,
}

type Prompt struct {
	Prompt    string `yaml:"prompt"`
	Timestamp string `yaml:"timestamp,omitempty"`
}

type Session struct {
	SessionID string   `yaml:"session_id"`
	Date      string   `yaml:"date,omitempty"`
	Prompts   []Prompt `yaml:"prompts"`
}

type Project struct {
	Project  string    `yaml:"project"`
	Sessions []Session `yaml:"sessions"`
}

// Extract collects cleaned user prompts from every session under vaultDir.
func Extract(vaultDir string) ([]Project, error) {
	dirs, err := scan.Projects(vaultDir)
	if err != nil {
		return nil, fmt.Errorf("scan vault: %w", err)
	}

	var projects []Project
	for _, projectDir := range dirs {
		p := Project{Project: filepath.Base(projectDir)}

		matches, _ := filepath.Glob(filepath.Join(projectDir, "*.jsonl"))
		for _, srcFile := range matches {
			msgs, _, err := transcript.ReadAll(srcFile)
			if err != nil {
				log.Warn().Str("file", srcFile).Err(err).Msg("skipping session in prompt extraction")
				continue
			}

			s := Session{SessionID: strings.TrimSuffix(filepath.Base(srcFile), ".jsonl")}
			for _, m := range msgs {
				if m.Speaker != transcript.SpeakerHuman {
					continue
				}
				text := Clean(m.Text)
				if text == "" || shouldSkip(text) {
					continue
				}
				pr := Prompt{Prompt: text}
				if !m.Timestamp.IsZero() {
					pr.Timestamp = m.Timestamp.UTC().Format("2006-01-02T15:04:05Z")
				}
				s.Prompts = append(s.Prompts, pr)
			}
			if len(s.Prompts) == 0 {
				continue
			}
			if ts := s.Prompts[0].Timestamp; len(ts) >= 10 {
				s.Date = ts[:10]
			}
			p.Sessions = append(p.Sessions, s)
		}

		if len(p.Sessions) > 0 {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

// Clean strips tool noise and system markup from prompt text.
func Clean(text string) string {
	text = pairedTagRe.ReplaceAllString(text, "")
	text = loneTagRe.ReplaceAllString(text, "")
	text = interruptedRe.ReplaceAllString(text, "")
	text = imageRefRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	if len(text) < 2 {
		return ""
	}
	return text
}

func shouldSkip(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "session is being continued") {
		return true
	}
	if strings.TrimSpace(lower) == "warmup" {
		return true
	}
	if fields := strings.Fields(text); len(fields) == 1 && throwaway[lower] {
		return true
	}
	return false
}

// Save marshals the extracted prompts to a YAML file.
func Save(projects []Project, path string) error {
	buf, err := yaml.Marshal(projects)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
