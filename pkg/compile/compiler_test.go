package compile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) (string, []FileRef) {
	t.Helper()
	root := t.TempDir()
	var refs []FileRef
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
		refs = append(refs, FileRef{Path: abs, RelPath: rel})
	}
	return root, refs
}

func runJob(t *testing.T, ctx context.Context, job Job) (*Result, string) {
	t.Helper()
	result, err := New(nil).RunCollect(ctx, job)
	require.NoError(t, err)
	require.NotNil(t, result)
	content, err := os.ReadFile(job.OutputPath)
	require.NoError(t, err)
	return result, string(content)
}

func TestCompileEmptySelection(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out.txt")

	result, content := runJob(t, context.Background(), Job{Root: root, OutputPath: out})

	assert.Zero(t, result.Total)
	assert.Empty(t, result.Compiled)
	assert.Empty(t, result.Failed)
	assert.Contains(t, content, "CODEBASED COMPILATION ARCHIVE")
	assert.Contains(t, content, "// Total Files: 0")
	assert.Contains(t, content, "//   Successfully processed: 0 files")
	assert.NotContains(t, content, "// FILE:")
}

func TestCompileWritesHeadersContentAndSummary(t *testing.T) {
	root, refs := writeFiles(t, map[string]string{
		"a.go":      "package a\n\nfunc A() {}\n",
		"docs/b.md": "# B\n",
	})
	out := filepath.Join(root, "out.txt")

	result, content := runJob(t, context.Background(), Job{Root: root, OutputPath: out, Files: refs})

	assert.Len(t, result.Compiled, 2)
	assert.Empty(t, result.Failed)
	assert.Equal(t, int64(len(content)), result.OutputSize)

	assert.Contains(t, content, "// FILE: a.go")
	assert.Contains(t, content, "// FILE: docs/b.md")
	assert.Contains(t, content, "package a")
	assert.Contains(t, content, "# B")
	assert.Contains(t, content, "//   Successfully processed: 2 files")
	assert.Contains(t, content, "//   Errors encountered: 0 files")

	for _, fr := range result.Compiled {
		if fr.RelPath == "a.go" {
			assert.Equal(t, 4, fr.Lines)
		}
	}
}

func TestCompileOneFailingFileDoesNotAbortRun(t *testing.T) {
	root, refs := writeFiles(t, map[string]string{
		"first.txt": "first\n",
		"third.txt": "third\n",
	})
	missing := FileRef{Path: filepath.Join(root, "gone.txt"), RelPath: "gone.txt"}
	// Deterministic order: first, the missing file, third.
	ordered := []FileRef{}
	for _, r := range refs {
		if r.RelPath == "first.txt" {
			ordered = append(ordered, r)
		}
	}
	ordered = append(ordered, missing)
	for _, r := range refs {
		if r.RelPath == "third.txt" {
			ordered = append(ordered, r)
		}
	}

	out := filepath.Join(root, "out.txt")
	result, content := runJob(t, context.Background(), Job{Root: root, OutputPath: out, Files: ordered})

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "gone.txt", result.Failed[0].RelPath)
	assert.Len(t, result.Compiled, 2)

	assert.Contains(t, content, "first")
	assert.Contains(t, content, "third")
	assert.Contains(t, content, "// ERROR: Error reading gone.txt")
	assert.Contains(t, content, "//   Successfully processed: 2 files")
	assert.Contains(t, content, "//   Errors encountered: 1 files")
	assert.Contains(t, content, "// ERRORS ENCOUNTERED:")
}

func TestCompileEventsArriveInProcessingOrder(t *testing.T) {
	root, refs := writeFiles(t, map[string]string{
		"1.txt": "1\n",
		"2.txt": "2\n",
		"3.txt": "3\n",
	})
	// Map iteration order is random; fix it.
	order := map[string]int{"1.txt": 0, "2.txt": 1, "3.txt": 2}
	sorted := make([]FileRef, len(refs))
	for _, r := range refs {
		sorted[order[r.RelPath]] = r
	}

	events := make(chan Event, 16)
	go New(nil).Run(context.Background(), Job{
		Root:       root,
		OutputPath: filepath.Join(root, "out.txt"),
		Files:      sorted,
	}, events)

	var progress []int
	var completed *Result
	for ev := range events {
		switch ev := ev.(type) {
		case ProgressEvent:
			progress = append(progress, ev.Done)
			assert.Equal(t, 3, ev.Total)
		case CompletedEvent:
			completed = ev.Result
		case FailedEvent:
			t.Fatalf("unexpected failure: %v", ev.Err)
		}
	}
	assert.Equal(t, []int{1, 2, 3}, progress)
	require.NotNil(t, completed)
	assert.False(t, completed.Cancelled)
}

func TestCompileCancellationKeepsPriorOutput(t *testing.T) {
	root, refs := writeFiles(t, map[string]string{"only.txt": "kept\n"})
	out := filepath.Join(root, "out.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Unbuffered events serialize the worker against the test: cancelling
	// on the first file's result is guaranteed to land before the worker's
	// next between-files checkpoint.
	events := make(chan Event)
	rest := FileRef{Path: filepath.Join(root, "never-read.txt"), RelPath: "never-read.txt"}
	go New(nil).Run(ctx, Job{
		Root:       root,
		OutputPath: out,
		Files:      []FileRef{refs[0], rest, rest, rest},
	}, events)

	var result *Result
	for ev := range events {
		switch ev := ev.(type) {
		case FileEvent:
			if ev.RelPath == "only.txt" {
				cancel()
			}
		case CompletedEvent:
			result = ev.Result
		}
	}

	require.NotNil(t, result)
	assert.True(t, result.Cancelled)
	require.NotEmpty(t, result.Compiled)
	assert.Equal(t, "only.txt", result.Compiled[0].RelPath)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "kept")
	assert.Contains(t, string(content), "COMPILATION CANCELLED")
	assert.Contains(t, string(content), "were not processed")
}

func TestCompileMissingDestinationDirIsFatal(t *testing.T) {
	root, refs := writeFiles(t, map[string]string{"a.txt": "a\n"})
	out := filepath.Join(root, "no-such-dir", "out.txt")

	_, err := New(nil).RunCollect(context.Background(), Job{Root: root, OutputPath: out, Files: refs})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

// stripTimestamps drops the two lines whose content depends on the clock.
func stripTimestamps(s string) string {
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "// Compiled on:") ||
			strings.HasPrefix(line, "//   Completed at:") ||
			strings.HasPrefix(line, "// Last Modified:") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func TestCompileIsIdempotentModuloTimestamps(t *testing.T) {
	root, refs := writeFiles(t, map[string]string{
		"x.go": "package x\n",
		"y.go": "package y\n",
	})

	out1 := filepath.Join(root, "out1.txt")
	out2 := filepath.Join(root, "out2.txt")
	_, first := runJob(t, context.Background(), Job{Root: root, OutputPath: out1, Files: refs})
	_, second := runJob(t, context.Background(), Job{Root: root, OutputPath: out2, Files: refs})

	// Output path appears in the preamble, so normalize it too.
	first = strings.ReplaceAll(first, "out1.txt", "out.txt")
	second = strings.ReplaceAll(second, "out2.txt", "out.txt")
	assert.Equal(t, stripTimestamps(first), stripTimestamps(second))
}

func TestRefsFromPaths(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "sub", "f.go")
	outside := filepath.Join(t.TempDir(), "elsewhere.go")

	refs := RefsFromPaths(root, []string{inside, outside})
	require.Len(t, refs, 2)
	assert.Equal(t, "sub/f.go", refs[0].RelPath)
	assert.Equal(t, outside, refs[1].RelPath, "files outside the root keep their absolute path")
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(nil))
	assert.Equal(t, 1, countLines([]byte("no newline")))
	assert.Equal(t, 1, countLines([]byte("one\n")))
	assert.Equal(t, 3, countLines([]byte("a\nb\nc\n")))
}
