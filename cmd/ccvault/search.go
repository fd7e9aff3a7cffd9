package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ccvault/internal/config"
	"ccvault/internal/search"
	"ccvault/internal/transcript"
	"ccvault/internal/tui"
)

const (
	sColorReset = "\033[0m"
	sColorBlue  = "\033[1;34m"
	sColorGreen = "\033[1;32m"
	sColorDim   = "\033[2m"
)

func colorizeSpeaker(s transcript.Speaker) string {
	switch s {
	case transcript.SpeakerHuman:
		return sColorBlue + string(s) + sColorReset
	case transcript.SpeakerAssistant:
		return sColorGreen + string(s) + sColorReset
	default:
		return string(s)
	}
}

func searchCmd() *cobra.Command {
	var mode, speaker, since, until string
	var caseSensitive bool
	var contextSize, limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search backed-up conversations",
		Long: `Search every session in the vault. Output is TSV for fzf integration:
  path, messageId, timestamp, speaker, project, score, snippet

When stdout is a terminal the interactive incremental search opens instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			q := search.Query{
				Text:          args[0],
				CaseSensitive: caseSensitive,
				ContextSize:   contextSize,
				MaxResults:    limit,
			}
			if q.ContextSize == 0 {
				q.ContextSize = cfg.Search.ContextSize
			}
			if q.MaxResults == 0 {
				q.MaxResults = cfg.Search.MaxResults
			}
			if q.Mode, err = search.ParseMode(mode); err != nil {
				return err
			}
			if speaker != "" {
				q.Speaker = transcript.Speaker(speaker)
			}
			if q.Since, err = parseDate(since); err != nil {
				return err
			}
			if q.Until, err = parseDate(until); err != nil {
				return err
			}
			if !q.Until.IsZero() {
				// an end date means "through the end of that day"
				q.Until = q.Until.Add(24*time.Hour - time.Nanosecond)
			}

			engine := search.New(search.DefaultConfig())

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(engine, cfg.VaultDir, q)
			}

			out, err := engine.Search(cmd.Context(), cfg.VaultDir, q)
			if err != nil {
				return err
			}

			if out.Downgraded {
				fmt.Fprintln(os.Stderr, "Note: semantic matching unavailable, used smart matching.")
			}
			if len(out.Results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range out.Results {
				snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
				snippet = strings.ReplaceAll(snippet, "\n", " ")
				// first two fields (path, messageID) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%s\t%s%s%s\t%s\t%s\t%.2f\t%s\n",
					r.Path,
					r.MessageID,
					sColorDim, r.Timestamp.Format("2006-01-02 15:04"), sColorReset,
					colorizeSpeaker(r.Speaker),
					r.Project,
					r.Score,
					snippet,
				)
			}
			if out.FilesSkipped > 0 || out.EntriesSkipped > 0 {
				fmt.Fprintf(os.Stderr, "Skipped %d unreadable files and %d malformed entries.\n",
					out.FilesSkipped, out.EntriesSkipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "smart", "Matching mode (smart/exact/regex/semantic)")
	cmd.Flags().StringVar(&speaker, "speaker", "", "Filter by speaker (human/assistant)")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Match case exactly")
	cmd.Flags().StringVar(&since, "since", "", "Only messages on or after date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Only messages on or before date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&contextSize, "context", 0, "Snippet context size in characters")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")

	return cmd
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}
