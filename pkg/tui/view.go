package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"codebased/pkg/compile"
	"codebased/pkg/scan"
)

// chromeHeight is the number of rows reserved above and below the tree
// viewport: title, subtitle, output line, status line, and help line.
const chromeHeight = 7

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading...\n"
	}

	if m.dialog != nil {
		return m.dialog.render(m.styles, m.width, m.height)
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render("codeBASED"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Compile your codebase into a single, organized file"))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	b.WriteString(m.renderOutputLine())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.renderHelpLine())

	return b.String()
}

func (m Model) renderOutputLine() string {
	if m.editingOutput {
		return m.output.View()
	}
	return m.styles.Dimmed.Render(fmt.Sprintf("Output will be saved to: %s", m.outputPath))
}

func (m Model) renderStatusLine() string {
	left := m.status
	switch m.phase {
	case phaseScanning:
		left = fmt.Sprintf("%s %s", m.spinner.View(), m.status)
	case phaseCompiling:
		bar := m.progress.ViewAs(m.progressPct)
		return fmt.Sprintf("%s %s", bar, m.styles.Status.Render(m.progressLabel))
	}

	style := m.styles.Status
	if m.statusErr {
		style = m.styles.StatusErr
	}

	right := m.renderCounts()
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if gap < 1 {
		gap = 1
	}
	return style.Render(left) + strings.Repeat(" ", gap) + m.styles.Dimmed.Render(right)
}

func (m Model) renderCounts() string {
	if m.tree == nil {
		return ""
	}
	files := len(m.tree.Files())
	folders := len(m.tree.Dirs()) - 1 // Root is not a row.
	selected := len(m.tree.CheckedFiles())

	counts := fmt.Sprintf("%d folders | %d files | %d selected", folders, files, selected)
	if m.stale {
		counts = "tree changed, press r to refresh | " + counts
	}
	return counts
}

func (m Model) renderHelpLine() string {
	switch {
	case m.editingOutput:
		return m.styles.Help.Render("enter save - esc cancel")
	case m.phase == phaseCompiling:
		return m.styles.Help.Render("esc cancel - q quit")
	default:
		return m.styles.Help.Render("space toggle - a all - n none - enter fold - o output - c compile - r refresh - q quit")
	}
}

// renderRows draws every visible tree row; the viewport handles windowing.
func (m Model) renderRows() string {
	var b strings.Builder
	for i, n := range m.visible {
		b.WriteString(m.renderRow(n, i == m.cursor))
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(m.styles.Dimmed.Render("  (empty)"))
	}
	return b.String()
}

func (m Model) renderRow(n *scan.Node, selected bool) string {
	indent := strings.Repeat("  ", n.Depth()-1)

	var box string
	switch n.State() {
	case scan.Checked:
		box = "[x]"
	case scan.PartialCheck:
		box = "[~]"
	default:
		box = "[ ]"
	}

	var label, meta string
	if n.IsDir() {
		fold := "▾"
		if m.collapsed[n.RelPath] {
			fold = "▸"
		}
		label = fmt.Sprintf("%s %s/", fold, n.Name)
	} else {
		label = n.Name
		meta = fmt.Sprintf("  %s  %s", compile.FormatBytes(n.Size), n.ModTime.Format("2006-01-02 15:04"))
		if n.Binary {
			meta += "  [binary]"
		}
		if n.Oversize {
			meta += "  [large]"
		}
	}

	row := fmt.Sprintf("%s%s %s", indent, box, label)
	if selected {
		return m.styles.Cursor.Render(row) + m.styles.Dimmed.Render(meta)
	}

	style := m.styles.File
	if n.IsDir() {
		style = m.styles.Dir
	}
	if n.State() == scan.Checked {
		style = m.styles.Checked
	}
	return style.Render(row) + m.styles.Dimmed.Render(meta)
}
