package search

import (
	"context"
	"io"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ccvault/internal/scan"
	"ccvault/internal/transcript"
)

// Engine scans a corpus of transcript files and ranks matching messages.
// Every search streams the source files fresh; nothing is cached or written.
type Engine struct {
	cfg     Config
	vec     Vectorizer
	workers int
}

type Option func(*Engine)

// WithVectorizer injects the semantic similarity capability. Without it,
// semantic queries downgrade to smart matching.
func WithVectorizer(v Vectorizer) Option {
	return func(e *Engine) { e.vec = v }
}

func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs one query over all transcripts under root and returns at most
// query.MaxResults results, globally ranked. Only invalid queries (and
// cancellation) abort; unreadable files and malformed entries are counted
// and skipped.
func (e *Engine) Search(ctx context.Context, root string, q Query) (*Outcome, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q = q.withDefaults()

	strat, downgraded, err := e.strategyFor(q)
	if err != nil {
		return nil, err
	}

	files, err := scan.Transcripts(root, scan.Options{ModifiedSince: q.Since})
	if err != nil {
		return nil, err
	}

	out := &Outcome{Downgraded: downgraded}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, f := range files {
		f := f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results, skipped, err := searchFile(f, q, strat)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.FilesSkipped++
				log.Warn().Str("file", f.Path).Err(err).Msg("skipping unreadable file")
				return nil
			}
			out.FilesScanned++
			out.EntriesSkipped += skipped
			out.Results = append(out.Results, results...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortResults(out.Results)
	if len(out.Results) > q.MaxResults {
		out.Results = out.Results[:q.MaxResults]
	}
	return out, nil
}

func (e *Engine) strategyFor(q Query) (strategy, bool, error) {
	switch q.Mode {
	case ModeExact:
		return newExactStrategy(e.cfg, q), false, nil
	case ModeRegex:
		s, err := newRegexStrategy(e.cfg, q)
		return s, false, err
	case ModeSemantic:
		if e.vec == nil {
			log.Debug().Msg("semantic capability unavailable, downgrading to smart matching")
			return newSmartStrategy(e.cfg, q), true, nil
		}
		return newSemanticStrategy(e.cfg, e.vec, q), false, nil
	default:
		return newSmartStrategy(e.cfg, q), false, nil
	}
}

func searchFile(f scan.File, q Query, strat strategy) ([]Result, int, error) {
	r, err := transcript.Open(f.Path)
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()

	var results []Result
	for {
		msg, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// read error mid-file: keep what we have, report the file skipped
			return nil, r.Stats().Skipped(), err
		}

		// filters run before any matching so a filtered message never costs
		// scoring work
		if msg.Speaker == transcript.SpeakerTool {
			continue
		}
		if q.Speaker != "" && msg.Speaker != q.Speaker {
			continue
		}
		if !q.Since.IsZero() && msg.Timestamp.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && msg.Timestamp.After(q.Until) {
			continue
		}
		if msg.Text == "" {
			continue
		}

		h, ok := strat.match(msg.Text)
		if !ok {
			continue
		}
		snippet, matched := buildSnippet(msg.Text, h.span, q.ContextSize)
		results = append(results, Result{
			SessionID:   msg.SessionID,
			MessageID:   msg.ID,
			Project:     f.Project,
			Path:        f.Path,
			Speaker:     msg.Speaker,
			Timestamp:   msg.Timestamp,
			Score:       h.score,
			MatchedText: matched,
			Snippet:     snippet,
			Line:        msg.Line,
		})
	}
	return results, r.Stats().Skipped(), nil
}

// sortResults fixes the result order independently of file enumeration and
// worker scheduling: score descending, then timestamp, session id and
// message id ascending.
func sortResults(rs []Result) {
	sort.Slice(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.SessionID != b.SessionID {
			return a.SessionID < b.SessionID
		}
		return a.MessageID < b.MessageID
	})
}
