// Package tui implements the interactive picker: a checkbox file tree over
// a scanned directory, output path controls, and a compile progress view.
//
// The bubbletea event loop owns all state in this package. Scanner,
// compiler, and watcher run on their own goroutines and only communicate
// through channels drained by commands, so nothing here needs locking.
package tui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"codebased/pkg/compile"
	"codebased/pkg/config"
	"codebased/pkg/ignore"
	"codebased/pkg/scan"
	"codebased/pkg/watch"
)

// phase is the model's coarse state.
type phase int

const (
	phaseScanning phase = iota
	phaseBrowse
	phaseCompiling
)

// Messages posted by the worker-facing commands.
type (
	bootMsg          struct{}
	scanEventMsg     struct{ ev scan.Event }
	scanClosedMsg    struct{}
	compileEventMsg  struct{ ev compile.Event }
	compileClosedMsg struct{}
	treeChangedMsg   struct{}
	watchClosedMsg   struct{}
)

// Model is the bubbletea model for the picker.
type Model struct {
	cfg    config.Config
	styles Styles
	logger *zap.Logger

	root       string
	rules      *ignore.Ruleset
	outputPath string

	phase phase
	tree  *scan.Tree

	// Flattened display rows, respecting collapsed directories.
	visible   []*scan.Node
	collapsed map[string]bool
	cursor    int

	viewport viewport.Model
	spinner  spinner.Model
	progress progress.Model
	output   textinput.Model

	editingOutput bool
	dialog        *Dialog
	stale         bool
	status        string
	statusErr     bool

	progressPct   float64
	progressLabel string
	lastResult    *compile.Result

	scanCh     chan scan.Event
	scanCancel context.CancelFunc

	compileCh     chan compile.Event
	compileCancel context.CancelFunc

	watchCh     chan struct{}
	watchCancel context.CancelFunc

	width  int
	height int
	ready  bool
}

// New creates the picker model for the given root directory.
func New(root string, cfg config.Config, rules *ignore.Ruleset, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	out := textinput.New()
	out.Prompt = "Output: "
	out.CharLimit = 512

	return Model{
		cfg:        cfg,
		styles:     NewStyles(cfg.Theme),
		logger:     logger,
		root:       root,
		rules:      rules,
		outputPath: filepath.Join(root, cfg.OutputFilename),
		phase:      phaseScanning,
		collapsed:  make(map[string]bool),
		spinner:    sp,
		progress:   progress.New(progress.WithDefaultGradient()),
		output:     out,
		status:     "Scanning...",
	}
}

// Init implements tea.Model. State changes belong in Update, so Init only
// kicks off the boot message.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return bootMsg{} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case bootMsg:
		// Evaluate before returning m: these mutate the model.
		cmd := tea.Batch(m.startScan(), m.startWatcher(), m.spinner.Tick)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := msg.Height - chromeHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.progress.Width = msg.Width - 8
		m.refreshRows()
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseScanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanEventMsg:
		return m.handleScanEvent(msg.ev)

	case scanClosedMsg:
		m.scanCh = nil
		return m, nil

	case compileEventMsg:
		return m.handleCompileEvent(msg.ev)

	case compileClosedMsg:
		m.compileCh = nil
		return m, nil

	case treeChangedMsg:
		m.stale = true
		return m, m.waitWatch()

	case watchClosedMsg:
		m.watchCh = nil
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal dialog swallows all keys.
	if m.dialog != nil {
		return m.handleDialogKey(msg)
	}

	// Output path edit mode.
	if m.editingOutput {
		switch msg.String() {
		case "enter":
			if v := m.output.Value(); v != "" {
				m.outputPath = v
			}
			m.editingOutput = false
			m.output.Blur()
			return m, nil
		case "esc":
			m.editingOutput = false
			m.output.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m.quit()

	case "esc":
		if m.phase == phaseCompiling {
			// Worker stops before the next file; output so far is kept.
			if m.compileCancel != nil {
				m.compileCancel()
			}
			m.setStatus("Cancelling...", false)
		}
		return m, nil
	}

	if m.phase != phaseBrowse {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup", "ctrl+u":
		m.moveCursor(-m.viewport.Height)
	case "pgdown", "ctrl+d":
		m.moveCursor(m.viewport.Height)
	case "g", "home":
		m.setCursor(0)
	case "G", "end":
		m.setCursor(len(m.visible) - 1)

	case " ":
		if n := m.current(); n != nil {
			m.tree.Toggle(n)
			m.refreshRows()
		}

	case "left", "h":
		if n := m.current(); n != nil && n.IsDir() && !m.collapsed[n.RelPath] {
			m.collapsed[n.RelPath] = true
			m.refreshRows()
		}
	case "right", "l", "enter":
		if n := m.current(); n != nil && n.IsDir() {
			m.collapsed[n.RelPath] = !m.collapsed[n.RelPath]
			m.refreshRows()
		}

	case "a":
		m.tree.CheckAll()
		m.refreshRows()
	case "n":
		m.tree.UncheckAll()
		m.refreshRows()

	case "r":
		cmd := m.startScan()
		return m, cmd

	case "o":
		m.editingOutput = true
		m.output.SetValue(m.outputPath)
		m.output.Focus()
		m.output.CursorEnd()
		return m, textinput.Blink

	case "c":
		return m.requestCompile()
	}

	return m, nil
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.dialog
	if d.Kind != DialogConfirm {
		m.dialog = nil
		return m, nil
	}

	switch msg.String() {
	case "y", "Y", "enter":
		action := d.action
		m.dialog = nil
		if action == actionCompile {
			return m.startCompile()
		}
		return m, nil
	case "n", "N", "esc", "q":
		m.dialog = nil
		return m, nil
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.scanCancel != nil {
		m.scanCancel()
	}
	if m.compileCancel != nil {
		m.compileCancel()
	}
	if m.watchCancel != nil {
		m.watchCancel()
	}
	return m, tea.Quit
}

// =========================================================================
// Scanning
// =========================================================================

func (m *Model) startScan() tea.Cmd {
	if m.scanCancel != nil {
		m.scanCancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.scanCancel = cancel
	m.scanCh = make(chan scan.Event, 64)

	absRoot, err := filepath.Abs(m.root)
	if err != nil {
		absRoot = m.root
	}
	m.tree = scan.NewTree(absRoot)
	m.collapsed = make(map[string]bool)
	m.cursor = 0
	m.phase = phaseScanning
	m.stale = false
	m.setStatus(fmt.Sprintf("Loading files from: %s...", filepath.Base(absRoot)), false)
	m.refreshRows()

	scanner := scan.NewScanner(m.logger)
	opts := scan.Options{
		Rules:         m.rules,
		MaxFileSize:   m.cfg.MaxFileSizeBytes(),
		IncludeHidden: m.cfg.IncludeHidden != nil && *m.cfg.IncludeHidden,
		SniffBinary:   true,
	}
	ch := m.scanCh
	go scanner.Scan(ctx, absRoot, opts, ch)

	return tea.Batch(m.waitScan(), m.spinner.Tick)
}

func (m Model) waitScan() tea.Cmd {
	ch := m.scanCh
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return scanClosedMsg{}
		}
		return scanEventMsg{ev: ev}
	}
}

func (m Model) handleScanEvent(ev scan.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case scan.EntryEvent:
		// Incremental population: the tree grows while the walk runs.
		m.tree.Insert(ev.Entry)
		m.refreshRows()
		return m, m.waitScan()

	case scan.DoneEvent:
		m.tree.Skipped = ev.Skipped
		m.phase = phaseBrowse
		status := fmt.Sprintf("Loaded folder: %s", filepath.Base(m.tree.Root.Path))
		if ev.Skipped > 0 {
			status = fmt.Sprintf("%s (%d unreadable entries skipped)", status, ev.Skipped)
		}
		m.setStatus(status, false)
		m.refreshRows()
		return m, m.waitScan()

	case scan.ErrorEvent:
		m.phase = phaseBrowse
		m.setStatus("Error loading folder", true)
		m.dialog = errorDialog("Scan failed", "%v", ev.Err)
		return m, m.waitScan()
	}
	return m, m.waitScan()
}

// =========================================================================
// Compiling
// =========================================================================

func (m Model) requestCompile() (tea.Model, tea.Cmd) {
	selected := m.tree.CheckedFiles()
	if len(selected) == 0 {
		m.dialog = warningDialog("No Files Selected", "Please select at least one file to compile.")
		return m, nil
	}

	m.dialog = confirmDialog(actionCompile, "Confirm Compilation",
		"You are about to compile %d files\n\nOutput: %s", len(selected), m.outputPath)
	return m, nil
}

func (m Model) startCompile() (tea.Model, tea.Cmd) {
	selected := m.tree.CheckedFiles()
	refs := make([]compile.FileRef, len(selected))
	for i, n := range selected {
		refs[i] = compile.FileRef{Path: n.Path, RelPath: n.RelPath}
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.compileCancel = cancel
	m.compileCh = make(chan compile.Event, 16)
	m.phase = phaseCompiling
	m.progressPct = 0
	m.progressLabel = fmt.Sprintf("Compiling 0/%d", len(refs))
	m.setStatus("Compiling...", false)

	job := compile.Job{
		Root:       m.tree.Root.Path,
		OutputPath: m.outputPath,
		Files:      refs,
	}
	compiler := compile.New(m.logger)
	ch := m.compileCh
	go compiler.Run(ctx, job, ch)

	return m, m.waitCompile()
}

func (m Model) waitCompile() tea.Cmd {
	ch := m.compileCh
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return compileClosedMsg{}
		}
		return compileEventMsg{ev: ev}
	}
}

func (m Model) handleCompileEvent(ev compile.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case compile.ProgressEvent:
		m.progressPct = float64(ev.Done) / float64(ev.Total)
		m.progressLabel = fmt.Sprintf("Compiling %d/%d: %s", ev.Done, ev.Total, ev.RelPath)
		return m, m.waitCompile()

	case compile.FileEvent:
		if ev.Err != nil {
			m.setStatus(fmt.Sprintf("Failed: %s", ev.RelPath), true)
		}
		return m, m.waitCompile()

	case compile.CompletedEvent:
		m.phase = phaseBrowse
		m.lastResult = ev.Result
		m.compileCancel = nil
		m.dialog = compileDoneDialog(ev.Result)
		if ev.Result.Cancelled {
			m.setStatus("Compilation cancelled", true)
		} else if len(ev.Result.Failed) > 0 {
			m.setStatus(fmt.Sprintf("Completed with %d errors", len(ev.Result.Failed)), true)
		} else {
			m.setStatus(fmt.Sprintf("Successfully compiled %d files", len(ev.Result.Compiled)), false)
		}
		return m, m.waitCompile()

	case compile.FailedEvent:
		m.phase = phaseBrowse
		m.compileCancel = nil
		m.dialog = errorDialog("Compilation Failed", "%v", ev.Err)
		m.setStatus("Compilation failed", true)
		return m, m.waitCompile()
	}
	return m, m.waitCompile()
}

func compileDoneDialog(res *compile.Result) *Dialog {
	switch {
	case res.Cancelled:
		return warningDialog("Compilation Cancelled",
			"Stopped after %d of %d files.\n\nPartial output kept at:\n%s",
			len(res.Compiled)+len(res.Failed), res.Total, res.OutputPath)
	case len(res.Failed) > 0:
		return warningDialog("Compilation Complete",
			"Finished with %d errors.\n\nOutput: %s\nFiles compiled: %d\n\nCheck the output file for details.",
			len(res.Failed), res.OutputPath, len(res.Compiled))
	default:
		return infoDialog("Success",
			"Compilation completed successfully.\n\nOutput: %s\nFiles compiled: %d\nOutput size: %s",
			res.OutputPath, len(res.Compiled), compile.FormatBytes(res.OutputSize))
	}
}

// =========================================================================
// Watching
// =========================================================================

func (m *Model) startWatcher() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.watchCancel = cancel
	m.watchCh = make(chan struct{}, 1)

	watcher := watch.New(m.logger)
	root := m.root
	ch := m.watchCh
	go func() {
		if err := watcher.Watch(ctx, root, ch); err != nil {
			m.logger.Warn("Watcher unavailable", zap.Error(err))
		}
	}()

	return m.waitWatch()
}

func (m Model) waitWatch() tea.Cmd {
	ch := m.watchCh
	return func() tea.Msg {
		_, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return treeChangedMsg{}
	}
}

// =========================================================================
// Cursor and rows
// =========================================================================

func (m *Model) current() *scan.Node {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.visible[m.cursor]
}

func (m *Model) moveCursor(delta int) {
	m.setCursor(m.cursor + delta)
}

func (m *Model) setCursor(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(m.visible)-1 {
		pos = len(m.visible) - 1
	}
	m.cursor = pos
	m.refreshRows()
}

// refreshRows rebuilds the visible row list and the viewport content, and
// keeps the cursor line inside the window.
func (m *Model) refreshRows() {
	m.visible = m.flatten()
	if m.cursor > len(m.visible)-1 {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if !m.ready {
		return
	}

	m.viewport.SetContent(m.renderRows())

	// Scroll the cursor into view.
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// flatten lists the tree's nodes in display order, skipping the subtrees of
// collapsed directories. The root itself is not a row.
func (m *Model) flatten() []*scan.Node {
	if m.tree == nil {
		return nil
	}
	var rows []*scan.Node
	var walk func(n *scan.Node)
	walk = func(n *scan.Node) {
		for _, child := range n.Children {
			rows = append(rows, child)
			if child.IsDir() && !m.collapsed[child.RelPath] {
				walk(child)
			}
		}
	}
	walk(m.tree.Root)
	return rows
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}
