package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codebased/pkg/compile"
	"codebased/pkg/config"
	"codebased/pkg/scan"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// testModel builds a browse-ready model over a synthetic tree, bypassing
// the scanner goroutine.
func testModel(t *testing.T) Model {
	t.Helper()

	m := New("/project", config.Default(), nil, nil)

	tree := scan.NewTree("/project")
	now := time.Now()
	for _, e := range []scan.Entry{
		{RelPath: "src", Name: "src", Kind: scan.KindDir, ModTime: now},
		{RelPath: "src/app.go", Name: "app.go", Kind: scan.KindFile, Size: 10, ModTime: now},
		{RelPath: "src/util.go", Name: "util.go", Kind: scan.KindFile, Size: 20, ModTime: now},
		{RelPath: "readme.md", Name: "readme.md", Kind: scan.KindFile, Size: 5, ModTime: now},
	} {
		require.NotNil(t, tree.Insert(e))
	}
	m.tree = tree
	m.phase = phaseBrowse

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestVisibleRowsFollowDisplayOrder(t *testing.T) {
	m := testModel(t)

	var rows []string
	for _, n := range m.visible {
		rows = append(rows, n.RelPath)
	}
	assert.Equal(t, []string{"src", "src/app.go", "src/util.go", "readme.md"}, rows)
}

func TestSpaceTogglesFileUnderCursor(t *testing.T) {
	m := testModel(t)

	m = update(t, m, keyMsg("down")) // src/app.go
	m = update(t, m, keyMsg(" "))

	assert.Equal(t, scan.Checked, m.tree.Lookup("src/app.go").State())
	assert.Equal(t, scan.Unchecked, m.tree.Lookup("src/util.go").State())
	assert.Equal(t, scan.PartialCheck, m.tree.Lookup("src").State())
}

func TestCheckAllAndUncheckAllKeys(t *testing.T) {
	m := testModel(t)

	m = update(t, m, keyMsg("a"))
	assert.Len(t, m.tree.CheckedFiles(), 3)

	m = update(t, m, keyMsg("n"))
	assert.Empty(t, m.tree.CheckedFiles())
}

func TestCollapseHidesSubtree(t *testing.T) {
	m := testModel(t)

	m = update(t, m, keyMsg("left")) // cursor on src

	var rows []string
	for _, n := range m.visible {
		rows = append(rows, n.RelPath)
	}
	assert.Equal(t, []string{"src", "readme.md"}, rows)

	m = update(t, m, keyMsg("enter"))
	assert.Len(t, m.visible, 4)
}

func TestCompileWithEmptySelectionShowsWarning(t *testing.T) {
	m := testModel(t)

	m = update(t, m, keyMsg("c"))

	require.NotNil(t, m.dialog)
	assert.Equal(t, DialogWarning, m.dialog.Kind)

	// Any key dismisses a non-confirm dialog.
	m = update(t, m, keyMsg(" "))
	assert.Nil(t, m.dialog)
}

func TestCompileConfirmDialogCancel(t *testing.T) {
	m := testModel(t)

	m = update(t, m, keyMsg("a"))
	m = update(t, m, keyMsg("c"))

	require.NotNil(t, m.dialog)
	assert.Equal(t, DialogConfirm, m.dialog.Kind)
	assert.Contains(t, m.dialog.Message, "3 files")

	m = update(t, m, keyMsg("n"))
	assert.Nil(t, m.dialog)
	assert.Equal(t, phaseBrowse, m.phase)
}

func TestScanEventsGrowTheTree(t *testing.T) {
	m := New("/project", config.Default(), nil, nil)
	m.tree = scan.NewTree("/project")
	m.scanCh = make(chan scan.Event)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m = update(t, m, scanEventMsg{ev: scan.EntryEvent{Entry: scan.Entry{
		RelPath: "main.go", Name: "main.go", Kind: scan.KindFile,
	}}})
	assert.Len(t, m.visible, 1)
	assert.Equal(t, phaseScanning, m.phase)

	m = update(t, m, scanEventMsg{ev: scan.DoneEvent{Skipped: 2}})
	assert.Equal(t, phaseBrowse, m.phase)
	assert.Equal(t, 2, m.tree.Skipped)
	assert.Contains(t, m.status, "skipped")
}

func TestCompletedEventShowsSummaryDialog(t *testing.T) {
	m := testModel(t)
	m.phase = phaseCompiling

	res := &compile.Result{
		Compiled:   []compile.FileResult{{RelPath: "src/app.go"}},
		Total:      1,
		OutputPath: "/project/codebase.txt",
		OutputSize: 123,
	}
	m = update(t, m, compileEventMsg{ev: compile.CompletedEvent{Result: res}})

	require.NotNil(t, m.dialog)
	assert.Equal(t, DialogInfo, m.dialog.Kind)
	assert.Equal(t, phaseBrowse, m.phase)
	assert.Contains(t, m.status, "1 files")
}

func TestCancelledResultShowsWarningDialog(t *testing.T) {
	m := testModel(t)
	m.phase = phaseCompiling

	res := &compile.Result{Total: 3, Cancelled: true, OutputPath: "/project/codebase.txt"}
	m = update(t, m, compileEventMsg{ev: compile.CompletedEvent{Result: res}})

	require.NotNil(t, m.dialog)
	assert.Equal(t, DialogWarning, m.dialog.Kind)
	assert.Contains(t, m.dialog.Message, "Partial output kept")
}

func TestDialogRenderShowsKindLabel(t *testing.T) {
	st := NewStyles(config.Default().Theme)

	for kind, want := range map[DialogKind]string{
		DialogInfo:    "Info",
		DialogWarning: "Warning",
		DialogError:   "Error",
		DialogConfirm: "Confirm",
	} {
		d := &Dialog{Kind: kind, Message: "message body"}
		out := d.render(st, 80, 24)
		assert.Contains(t, out, want)
		assert.Contains(t, out, "message body")
	}
}
