package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLinesBasicPatterns(t *testing.T) {
	rs := NewRuleset(nil)
	rs.AddLines(
		"*.log",
		"node_modules/",
		"/build",
		"# comment",
		"",
		"!important.log",
	)

	assert.Equal(t, 4, rs.Len(), "comments and blanks are dropped")

	assert.True(t, rs.Match("debug.log"))
	assert.True(t, rs.Match("sub/dir/trace.log"))
	assert.False(t, rs.Match("debug.log.txt"))

	assert.True(t, rs.Match("node_modules"))
	assert.True(t, rs.Match("node_modules/pkg/index.js"))
	assert.True(t, rs.Match("web/node_modules/x.js"))

	assert.True(t, rs.Match("build"), "leading slash anchors at root")
	assert.True(t, rs.Match("build/out.o"))
	assert.False(t, rs.Match("src/build"), "anchored pattern must not match nested paths")
}

func TestNegationLastRuleWins(t *testing.T) {
	rs := NewRuleset(nil)
	rs.AddLines("*.log", "!keep.log")

	assert.True(t, rs.Match("other.log"))
	assert.False(t, rs.Match("keep.log"))
	assert.False(t, rs.Match("logs/keep.log"))
}

func TestDoubleStarPatterns(t *testing.T) {
	rs := NewRuleset(nil)
	rs.AddLines("docs/**/draft.md", "**/generated")

	assert.True(t, rs.Match("docs/draft.md"))
	assert.True(t, rs.Match("docs/a/b/draft.md"))
	assert.False(t, rs.Match("src/draft.md"))

	assert.True(t, rs.Match("generated"))
	assert.True(t, rs.Match("pkg/generated"))
	assert.True(t, rs.Match("pkg/generated/code.go"))
}

func TestMatchNormalizesSeparators(t *testing.T) {
	rs := NewRuleset(nil)
	rs.AddLines("vendor/")

	assert.True(t, rs.Match(`vendor\lib\a.go`))
}

func TestLoadMissingFilesIsNotAnError(t *testing.T) {
	rs, err := Load(filepath.Join(t.TempDir(), "nope"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
}

func TestAddFileReadsPatterns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".codebasedignore")
	require.NoError(t, os.WriteFile(path, []byte("*.tmp\n# junk\ncache/\n"), 0o644))

	rs := NewRuleset(nil)
	require.NoError(t, rs.AddFile(path))

	assert.Equal(t, 2, rs.Len())
	assert.True(t, rs.Match("a/b.tmp"))
	assert.True(t, rs.Match("cache/x"))
	assert.False(t, rs.Match("main.go"))
}

func TestMatchRuleReportsDecidingRule(t *testing.T) {
	rs := NewRuleset(nil)
	rs.AddLines("*.log", "!keep.log")

	matched, rule := rs.MatchRule("keep.log")
	assert.False(t, matched)
	require.NotNil(t, rule)
	assert.True(t, rule.Negate)
	assert.Equal(t, "!keep.log", rule.Line)
}
