// Package compile reads a selected set of files and writes them into one
// annotated text artifact with a preamble, per-file headers, and a summary.
package compile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FileRef identifies one file of a compile job.
type FileRef struct {
	Path    string // Absolute path to read.
	RelPath string // Path shown in headers, relative to Job.Root.
}

// Job describes one compile run.
type Job struct {
	Root       string    // Source root, shown in the preamble.
	OutputPath string    // Destination text file.
	Files      []FileRef // Files in the order they should appear.
}

// FileResult records one successfully compiled file.
type FileResult struct {
	RelPath string
	Size    int64
	Lines   int
}

// FileError records one file that could not be read. The run continues.
type FileError struct {
	RelPath string
	Message string
}

// Result is the outcome of one compile run, discarded after reporting.
type Result struct {
	Compiled   []FileResult
	Failed     []FileError
	Total      int
	OutputPath string
	OutputSize int64
	Cancelled  bool
	Started    time.Time
	Finished   time.Time
}

// Compiler runs compile jobs. The zero value is not usable; construct with
// New.
type Compiler struct {
	logger *zap.Logger
	now    func() time.Time
}

// New returns a Compiler logging through the given logger.
func New(logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{logger: logger, now: time.Now}
}

// Run executes the job, streaming events to the channel and closing it when
// the run ends. Only the destination failing to open or write is fatal
// (FailedEvent); per-file read errors are recorded and the run continues.
// Cancellation is checked before each file: output written so far is kept
// and the footer notes the interruption.
//
// Memory use is bounded to one file's contents at a time.
func (c *Compiler) Run(ctx context.Context, job Job, events chan<- Event) {
	defer close(events)

	result := &Result{
		Total:      len(job.Files),
		OutputPath: job.OutputPath,
		Started:    c.now(),
	}

	c.logger.Info("Starting compile run",
		zap.String("root", job.Root),
		zap.String("output", job.OutputPath),
		zap.Int("totalFiles", result.Total))

	out, err := os.Create(job.OutputPath)
	if err != nil {
		c.logger.Error("Failed to create output file", zap.String("file", job.OutputPath), zap.Error(err))
		events <- FailedEvent{Err: fmt.Errorf("failed to create output file: %w", err)}
		return
	}

	w := &countingWriter{w: bufio.NewWriter(out)}
	fail := func(err error) {
		out.Close()
		events <- FailedEvent{Err: err}
	}

	if err := writePreamble(w, job, result.Started); err != nil {
		fail(fmt.Errorf("failed to write preamble: %w", err))
		return
	}

	for i, ref := range job.Files {
		if ctx.Err() != nil {
			c.logger.Info("Compile run cancelled",
				zap.Int("processed", i),
				zap.Int("total", result.Total))
			result.Cancelled = true
			break
		}

		if err := c.compileOne(w, ref, result); err != nil {
			// Only destination write errors land here.
			fail(fmt.Errorf("failed to write output: %w", err))
			return
		}

		events <- FileEvent{RelPath: ref.RelPath, Err: lastError(ref, result)}
		events <- ProgressEvent{Done: i + 1, Total: result.Total, RelPath: ref.RelPath}
	}

	result.Finished = c.now()
	if err := writeFooter(w, result); err != nil {
		fail(fmt.Errorf("failed to write summary: %w", err))
		return
	}
	if err := w.Flush(); err != nil {
		fail(fmt.Errorf("failed to flush output: %w", err))
		return
	}
	if err := out.Close(); err != nil {
		events <- FailedEvent{Err: fmt.Errorf("failed to close output: %w", err)}
		return
	}
	result.OutputSize = w.n

	c.logger.Info("Compile run finished",
		zap.String("output", job.OutputPath),
		zap.Int("compiled", len(result.Compiled)),
		zap.Int("failed", len(result.Failed)),
		zap.Bool("cancelled", result.Cancelled),
		zap.Duration("elapsed", result.Finished.Sub(result.Started)))
	events <- CompletedEvent{Result: result}
}

// RunCollect is the synchronous wrapper used by the headless command and
// tests: it drains the event stream itself and returns the terminal state.
func (c *Compiler) RunCollect(ctx context.Context, job Job) (*Result, error) {
	events := make(chan Event, 16)
	go c.Run(ctx, job, events)

	var result *Result
	var failure error
	for ev := range events {
		switch ev := ev.(type) {
		case CompletedEvent:
			result = ev.Result
		case FailedEvent:
			failure = ev.Err
		}
	}
	if failure != nil {
		return nil, failure
	}
	return result, nil
}

// compileOne reads one file and appends its header and contents. Read
// failures are recorded on the result; only output write errors return.
func (c *Compiler) compileOne(w *countingWriter, ref FileRef, result *Result) error {
	content, err := os.ReadFile(ref.Path)
	if err != nil {
		c.logger.Warn("Failed to read file, continuing",
			zap.String("file", ref.Path),
			zap.Error(err))
		msg := fmt.Sprintf("Error reading %s: %v", ref.RelPath, err)
		result.Failed = append(result.Failed, FileError{RelPath: ref.RelPath, Message: msg})
		return writeFileError(w, msg)
	}

	info, statErr := os.Stat(ref.Path)
	var size int64 = int64(len(content))
	modTime := time.Time{}
	if statErr == nil {
		size = info.Size()
		modTime = info.ModTime()
	}

	lines := countLines(content)
	if err := writeFileHeader(w, ref.RelPath, ref.Path, size, modTime, lines); err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		return err
	}
	if _, err := w.WriteString("\n\n"); err != nil {
		return err
	}

	result.Compiled = append(result.Compiled, FileResult{
		RelPath: ref.RelPath,
		Size:    size,
		Lines:   lines,
	})
	return nil
}

// lastError returns the recorded error for ref if it was the file that just
// failed, else nil.
func lastError(ref FileRef, result *Result) error {
	if n := len(result.Failed); n > 0 && result.Failed[n-1].RelPath == ref.RelPath {
		return fmt.Errorf("%s", result.Failed[n-1].Message)
	}
	return nil
}

// countLines matches the line count a text editor would show.
func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	return len(strings.Split(strings.TrimSuffix(string(content), "\n"), "\n"))
}

// RefsFromPaths builds FileRefs with headers relative to root, falling back
// to the absolute path for files outside it.
func RefsFromPaths(root string, paths []string) []FileRef {
	refs := make([]FileRef, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			rel = p
		}
		refs = append(refs, FileRef{Path: p, RelPath: filepath.ToSlash(rel)})
	}
	return refs
}

// countingWriter tracks bytes written so the summary can report the output
// size without re-statting the file.
type countingWriter struct {
	w *bufio.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func (cw *countingWriter) WriteString(s string) (int, error) {
	n, err := cw.w.WriteString(s)
	cw.n += int64(n)
	return n, err
}

func (cw *countingWriter) Flush() error {
	return cw.w.Flush()
}
