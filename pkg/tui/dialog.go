package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DialogKind tags the dialog variants. One render routine consumes the tag;
// there is no per-variant widget.
type DialogKind int

const (
	DialogInfo DialogKind = iota
	DialogWarning
	DialogError
	DialogConfirm
)

// dialogAction identifies what a confirm dialog triggers on acceptance.
type dialogAction int

const (
	actionNone dialogAction = iota
	actionCompile
)

// Dialog is a modal message overlay.
type Dialog struct {
	Kind    DialogKind
	Title   string
	Message string
	action  dialogAction
}

func (d DialogKind) label() string {
	switch d {
	case DialogWarning:
		return "Warning"
	case DialogError:
		return "Error"
	case DialogConfirm:
		return "Confirm"
	default:
		return "Info"
	}
}

// render draws the dialog box centered in the given area.
func (d *Dialog) render(st Styles, width, height int) string {
	style := st.Dialog
	if d.Kind == DialogError {
		style = st.DialogErr
	}

	title := d.Title
	if title == "" {
		title = d.Kind.label()
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")
	b.WriteString(d.Message)
	b.WriteString("\n\n")
	if d.Kind == DialogConfirm {
		b.WriteString(st.Help.Render("y/enter confirm - n/esc cancel"))
	} else {
		b.WriteString(st.Help.Render("press any key to dismiss"))
	}

	box := style.Width(min(width-4, 64)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func infoDialog(title, format string, args ...any) *Dialog {
	return &Dialog{Kind: DialogInfo, Title: title, Message: fmt.Sprintf(format, args...)}
}

func warningDialog(title, format string, args ...any) *Dialog {
	return &Dialog{Kind: DialogWarning, Title: title, Message: fmt.Sprintf(format, args...)}
}

func errorDialog(title, format string, args ...any) *Dialog {
	return &Dialog{Kind: DialogError, Title: title, Message: fmt.Sprintf(format, args...)}
}

func confirmDialog(action dialogAction, title, format string, args ...any) *Dialog {
	return &Dialog{Kind: DialogConfirm, Title: title, Message: fmt.Sprintf(format, args...), action: action}
}
