package compile

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatBytes(c.in))
	}
}

func TestFooterTruncatesErrorList(t *testing.T) {
	result := &Result{Finished: time.Now()}
	for i := 0; i < 15; i++ {
		result.Failed = append(result.Failed, FileError{
			RelPath: "f",
			Message: "Error reading f: boom",
		})
	}

	var buf bytes.Buffer
	w := &countingWriter{w: bufio.NewWriter(&buf)}
	require.NoError(t, writeFooter(w, result))
	require.NoError(t, w.Flush())

	out := buf.String()
	assert.Contains(t, out, "//   Errors encountered: 15 files")
	assert.Contains(t, out, "... and 5 more errors")
}
