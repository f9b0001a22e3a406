package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/foldchat/internal/models"
)

// pickerModel is the model selection overlay, one tab per provider
type pickerModel struct {
	tab      int
	cursor   int
	selected string
}

// pickerResult is set when the overlay closes
type pickerResult struct {
	done   bool
	chosen string // empty when cancelled
}

func newPicker(selected string) pickerModel {
	p := pickerModel{selected: selected}
	if m, ok := models.FindModel(selected); ok {
		for i, prov := range models.Providers() {
			if prov == m.Provider {
				p.tab = i
			}
		}
		for i, cand := range p.models() {
			if cand.ID == selected {
				p.cursor = i
			}
		}
	}
	return p
}

func (p pickerModel) models() []models.Model {
	return models.ModelsByProvider(models.Providers()[p.tab])
}

func (p pickerModel) Update(msg tea.KeyMsg) (pickerModel, pickerResult) {
	providers := models.Providers()
	list := p.models()

	switch msg.String() {
	case "esc", "ctrl+o":
		return p, pickerResult{done: true}
	case "left", "h", "shift+tab":
		p.tab = (p.tab - 1 + len(providers)) % len(providers)
		p.cursor = 0
	case "right", "l", "tab":
		p.tab = (p.tab + 1) % len(providers)
		p.cursor = 0
	case "up", "k":
		if len(list) > 0 {
			p.cursor = (p.cursor - 1 + len(list)) % len(list)
		}
	case "down", "j":
		if len(list) > 0 {
			p.cursor = (p.cursor + 1) % len(list)
		}
	case "enter":
		if p.cursor < len(list) {
			return p, pickerResult{done: true, chosen: list[p.cursor].ID}
		}
	}
	return p, pickerResult{}
}

func (p pickerModel) View(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select a model"))
	b.WriteString("\n\n")

	var tabs []string
	for i, prov := range models.Providers() {
		if i == p.tab {
			tabs = append(tabs, activeTabStyle.Render(prov.DisplayName()))
		} else {
			tabs = append(tabs, tabStyle.Render(prov.DisplayName()))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	for i, m := range p.models() {
		cursor := "  "
		name := menuItemStyle.Render(m.Name)
		if i == p.cursor {
			cursor = menuCursorStyle.Render("▸ ")
			name = menuCursorStyle.Render(m.Name)
		}
		line := cursor + name
		if m.ID == p.selected {
			line += noticeStyle.Render(" ✓")
		}
		b.WriteString(line + "\n")
		b.WriteString("    " + hintStyle.Render(m.Description+" · "+m.Pricing) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(strings.Join([]string{
		shortcut("←→", "Provider"),
		shortcut("↑↓", "Navigate"),
		shortcut("Enter", "Select"),
		shortcut("Esc", "Cancel"),
	}, "  │  "))

	if width < 40 {
		width = 40
	}
	return panelStyle.Width(width).Render(b.String())
}
