package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptKind int

const (
	promptNewFolder promptKind = iota + 1
	promptRenameFolder
	promptRenameChat
	promptAttach
)

func (k promptKind) label() string {
	switch k {
	case promptNewFolder:
		return "New folder"
	case promptRenameFolder:
		return "Rename folder"
	case promptRenameChat:
		return "Rename chat"
	case promptAttach:
		return "Attach file"
	default:
		return ""
	}
}

// prompt is a one-line input shown in place of the message box
type prompt struct {
	kind     promptKind
	targetID string
	input    textinput.Model
	err      string
}

func newPrompt(kind promptKind, targetID, value string) *prompt {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 512
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()

	switch kind {
	case promptAttach:
		ti.Placeholder = "path/to/file"
	case promptNewFolder:
		ti.Placeholder = "Folder name"
	}
	return &prompt{kind: kind, targetID: targetID, input: ti}
}

func (p *prompt) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *prompt) value() string {
	return p.input.Value()
}

func (p *prompt) view() string {
	out := inputLabelStyle.Render(p.kind.label()) + "\n" + p.input.View()
	if p.err != "" {
		out += "\n" + fieldErrorStyle.Render(p.err)
	}
	return out
}
