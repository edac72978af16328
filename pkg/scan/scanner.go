package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"codebased/pkg/ignore"

	"go.uber.org/zap"
)

// Entry is the scanner's wire record for one filesystem entry. Entries are
// posted over the event channel so the receiving side can grow its Tree
// without sharing mutable state with the scan goroutine.
type Entry struct {
	RelPath  string // Slash-separated path relative to the root.
	Name     string
	Kind     Kind
	Size     int64
	ModTime  time.Time
	Binary   bool
	Oversize bool
}

// Event is the tagged union posted by a running scan:
// EntryEvent, DoneEvent, or ErrorEvent.
type Event interface{ scanEvent() }

// EntryEvent announces one discovered entry, parents before children.
type EntryEvent struct{ Entry Entry }

// DoneEvent terminates a successful scan.
type DoneEvent struct {
	Skipped int // Unreadable entries that were left out.
}

// ErrorEvent terminates a scan that could not read the root at all.
type ErrorEvent struct{ Err error }

func (EntryEvent) scanEvent() {}
func (DoneEvent) scanEvent()  {}
func (ErrorEvent) scanEvent() {}

// Options control what a scan includes.
type Options struct {
	Rules         *ignore.Ruleset // Optional exclusion rules.
	MaxFileSize   int64           // Bytes; larger files are flagged Oversize. 0 disables.
	IncludeHidden bool            // Include dot-prefixed entries.
	SniffBinary   bool            // Probe file contents for binary data.
}

// Scanner walks directory trees.
type Scanner struct {
	logger *zap.Logger
}

// NewScanner returns a Scanner logging through the given logger.
func NewScanner(logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{logger: logger}
}

// Scan enumerates root and posts events on the channel, closing it when the
// walk ends. Unreadable entries are counted and skipped, never fatal; only
// an unreadable root produces an ErrorEvent. Cancellation is honored
// between directory reads.
//
// Run it on its own goroutine; the caller drains events and applies them.
func (s *Scanner) Scan(ctx context.Context, root string, opts Options, events chan<- Event) {
	defer close(events)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		events <- ErrorEvent{Err: fmt.Errorf("failed to resolve root path: %w", err)}
		return
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		events <- ErrorEvent{Err: fmt.Errorf("failed to stat root: %w", err)}
		return
	}
	if !info.IsDir() {
		events <- ErrorEvent{Err: fmt.Errorf("root is not a directory: %s", absRoot)}
		return
	}

	s.logger.Debug("Starting directory scan", zap.String("root", absRoot))
	start := time.Now()

	skipped := s.walk(ctx, absRoot, absRoot, opts, events)

	s.logger.Info("Directory scan finished",
		zap.String("root", absRoot),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", time.Since(start)))
	events <- DoneEvent{Skipped: skipped}
}

// walk recurses one directory, emitting entries in display order. Returns
// the number of skipped entries.
func (s *Scanner) walk(ctx context.Context, dir, root string, opts Options, events chan<- Event) int {
	if ctx.Err() != nil {
		return 0
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Permission problems on a subdirectory are a recorded skip.
		s.logger.Warn("Skipping unreadable directory", zap.String("path", dir), zap.Error(err))
		return 1
	}

	// Sort entries: directories first, then files, alphabetically
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	skipped := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return skipped
		}

		name := entry.Name()
		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			s.logger.Warn("Skipping entry with unresolvable path", zap.String("path", path), zap.Error(relErr))
			skipped++
			continue
		}
		relPath = filepath.ToSlash(relPath)

		if opts.Rules != nil && opts.Rules.Match(relPath) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("Skipping unreadable entry", zap.String("path", path), zap.Error(err))
			skipped++
			continue
		}

		if entry.IsDir() {
			events <- EntryEvent{Entry: Entry{
				RelPath: relPath,
				Name:    name,
				Kind:    KindDir,
				ModTime: info.ModTime(),
			}}
			skipped += s.walk(ctx, path, root, opts, events)
			continue
		}

		if !info.Mode().IsRegular() {
			continue
		}

		e := Entry{
			RelPath: relPath,
			Name:    name,
			Kind:    KindFile,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			e.Oversize = true
		}
		if opts.SniffBinary {
			if binary, err := isBinaryFile(path); err == nil {
				e.Binary = binary
			}
		}
		events <- EntryEvent{Entry: e}
	}
	return skipped
}

// Build runs a scan to completion and assembles the Tree in-process. It is
// the synchronous path used by the headless compile command and tests.
func (s *Scanner) Build(ctx context.Context, root string, opts Options) (*Tree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	events := make(chan Event, 64)
	go s.Scan(ctx, absRoot, opts, events)

	tree := NewTree(absRoot)
	for ev := range events {
		switch ev := ev.(type) {
		case EntryEvent:
			tree.Insert(ev.Entry)
		case DoneEvent:
			tree.Skipped = ev.Skipped
		case ErrorEvent:
			return nil, ev.Err
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return tree, nil
}
