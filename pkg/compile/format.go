package compile

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Output layout constants. The artifact is plain text with comment-style
// annotation lines so it pastes cleanly into a prompt.
const (
	bannerWidth     = 70
	headerRuleWidth = 67
	maxFooterErrors = 10
	timeLayout      = "2006-01-02 15:04:05"
)

type stringWriter interface {
	io.Writer
	WriteString(s string) (int, error)
}

// writePreamble writes the leading banner with run metadata.
func writePreamble(w stringWriter, job Job, started time.Time) error {
	banner := strings.Repeat("=", bannerWidth)
	_, err := fmt.Fprintf(w, "%s\n%sCODEBASED COMPILATION ARCHIVE\n%s\n\n"+
		"// Source Directory: %s\n"+
		"// Output File: %s\n"+
		"// Total Files: %d\n"+
		"// Compiled on: %s\n"+
		"%s\n\n",
		banner, strings.Repeat(" ", 10), banner,
		job.Root,
		job.OutputPath,
		len(job.Files),
		started.Format(timeLayout),
		banner)
	return err
}

// writeFileHeader writes the block that precedes one file's contents.
func writeFileHeader(w stringWriter, relPath, absPath string, size int64, modTime time.Time, lines int) error {
	rule := "// " + strings.Repeat("=", headerRuleWidth)
	modified := "unknown"
	if !modTime.IsZero() {
		modified = modTime.Format(timeLayout)
	}
	_, err := fmt.Fprintf(w, "%s\n"+
		"// FILE: %s\n"+
		"// Path: %s\n"+
		"// Size: %s\n"+
		"// Last Modified: %s\n"+
		"// Lines: %d\n"+
		"%s\n\n",
		rule, relPath, absPath, FormatBytes(size), modified, lines, rule)
	return err
}

// writeFileError writes the in-place marker for a file that failed to read.
func writeFileError(w stringWriter, msg string) error {
	_, err := fmt.Fprintf(w, "// ERROR: %s\n\n", msg)
	return err
}

// writeFooter writes the trailing summary. The byte count reported is the
// output size up to the summary itself.
func writeFooter(w *countingWriter, result *Result) error {
	banner := strings.Repeat("=", bannerWidth)
	heading := "COMPILATION COMPLETE"
	if result.Cancelled {
		heading = "COMPILATION CANCELLED"
	}

	if _, err := fmt.Fprintf(w, "%s\n%s%s\n%s\n\n", banner, strings.Repeat(" ", 10), heading, banner); err != nil {
		return err
	}
	if result.Cancelled {
		remaining := result.Total - len(result.Compiled) - len(result.Failed)
		if _, err := fmt.Fprintf(w, "// Run was cancelled before completion; %d files were not processed.\n", remaining); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "// Summary:\n"+
		"//   Successfully processed: %d files\n"+
		"//   Errors encountered: %d files\n"+
		"//   Total size: %s\n"+
		"//   Completed at: %s\n",
		len(result.Compiled),
		len(result.Failed),
		FormatBytes(w.n),
		result.Finished.Format(timeLayout)); err != nil {
		return err
	}

	if len(result.Failed) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n// %s\n// ERRORS ENCOUNTERED:\n", strings.Repeat("!", headerRuleWidth)); err != nil {
		return err
	}
	for i, fe := range result.Failed {
		if i == maxFooterErrors {
			_, err := fmt.Fprintf(w, "//   ... and %d more errors\n", len(result.Failed)-maxFooterErrors)
			return err
		}
		if _, err := fmt.Fprintf(w, "//   - %s\n", fe.Message); err != nil {
			return err
		}
	}
	return nil
}

// FormatBytes renders a byte count in human readable form.
func FormatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	case n < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB", float64(n)/(1024*1024*1024))
	}
}
