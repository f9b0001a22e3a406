// Package tui provides the terminal user interface for foldchat.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/render"
)

// Color variables (updated from the palette)
var (
	colorBorder     lipgloss.Color
	colorPrimary    lipgloss.Color
	colorSecondary  lipgloss.Color
	colorAccent     lipgloss.Color
	colorWarning    lipgloss.Color
	colorError      lipgloss.Color
	colorDropTarget lipgloss.Color
	colorText       lipgloss.Color
	colorTextDim    lipgloss.Color
	colorTextMute   lipgloss.Color
)

// Style variables (rebuilt when the palette changes)
var (
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	sidebarStyle        lipgloss.Style
	sidebarFocusStyle   lipgloss.Style
	sidebarHeaderStyle  lipgloss.Style
	folderRowStyle      lipgloss.Style
	chatRowStyle        lipgloss.Style
	activeChatStyle     lipgloss.Style
	cursorRowStyle      lipgloss.Style
	draggedRowStyle     lipgloss.Style
	dropTargetRowStyle  lipgloss.Style
	openRouterMarkStyle lipgloss.Style
	aimlMarkStyle       lipgloss.Style

	messagesAreaStyle   lipgloss.Style
	userLabelStyle      lipgloss.Style
	userBubbleStyle     lipgloss.Style
	assistantLabelStyle lipgloss.Style
	assistantBubble     lipgloss.Style

	inputPanelStyle      lipgloss.Style
	inputPanelFocusStyle lipgloss.Style
	inputLabelStyle      lipgloss.Style
	loadingStyle         lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	noticeStyle     lipgloss.Style

	errorStyle  lipgloss.Style
	bannerStyle lipgloss.Style

	panelStyle      lipgloss.Style
	tabStyle        lipgloss.Style
	activeTabStyle  lipgloss.Style
	menuItemStyle   lipgloss.Style
	menuCursorStyle lipgloss.Style
	fieldErrorStyle lipgloss.Style
)

func init() {
	ApplyPalette(render.TokyoNight)
}

// ApplyPalette refreshes all styles from p
func ApplyPalette(p render.Palette) {
	colorBorder = p.Border
	colorPrimary = p.Primary
	colorSecondary = p.Secondary
	colorAccent = p.Accent
	colorWarning = p.Warning
	colorError = p.Error
	colorDropTarget = p.DropTarget
	colorText = p.Text
	colorTextDim = p.TextDim
	colorTextMute = p.TextMute

	rebuildStyles()
}

func rebuildStyles() {
	titleStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	hintStyle = lipgloss.NewStyle().Foreground(colorTextMute).Italic(true)

	sidebarStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder)
	sidebarFocusStyle = sidebarStyle.BorderForeground(colorPrimary)
	sidebarHeaderStyle = lipgloss.NewStyle().Foreground(colorTextDim).Bold(true)
	folderRowStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	chatRowStyle = lipgloss.NewStyle().Foreground(colorText)
	activeChatStyle = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
	cursorRowStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	draggedRowStyle = lipgloss.NewStyle().Foreground(colorTextMute).Italic(true)
	dropTargetRowStyle = lipgloss.NewStyle().Foreground(colorDropTarget).Bold(true).Underline(true)
	openRouterMarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7"))
	aimlMarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7"))

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)
	userLabelStyle = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorSecondary).
		Padding(0, 1)
	assistantLabelStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	assistantBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Foreground(colorText).
		Padding(0, 1)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)
	inputPanelFocusStyle = inputPanelStyle.BorderForeground(colorPrimary)
	inputLabelStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	loadingStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	statusBarStyle = lipgloss.NewStyle().Foreground(colorTextMute)
	statusKeyStyle = lipgloss.NewStyle().Foreground(colorTextDim).Bold(true)
	statusDescStyle = lipgloss.NewStyle().Foreground(colorTextMute)
	noticeStyle = lipgloss.NewStyle().Foreground(colorSecondary)

	errorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	bannerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(colorError).
		PaddingLeft(1)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)
	tabStyle = lipgloss.NewStyle().Foreground(colorTextDim).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Underline(true).Padding(0, 1)
	menuItemStyle = lipgloss.NewStyle().Foreground(colorText)
	menuCursorStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fieldErrorStyle = lipgloss.NewStyle().Foreground(colorError)
}

// formatBanner renders err as the alert banner shown above the input
func formatBanner(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(errorStyle.Render("⚠ " + apierrors.UserMessage(err)))

	detail := lipgloss.NewStyle().Foreground(colorTextDim)
	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString("\n")
		sb.WriteString(detail.Render(fmt.Sprintf("HTTP status %d", status)))
	}

	hint := lipgloss.NewStyle().Foreground(colorWarning)
	switch {
	case apierrors.IsRateLimitError(err):
		sb.WriteString("\n" + hint.Render("Try again later or pick another model (ctrl+o)"))
	case apierrors.IsNetworkError(err):
		sb.WriteString("\n" + hint.Render("Check your internet connection"))
	case apierrors.IsUploadError(err):
		sb.WriteString("\n" + hint.Render("Check the file exists and is within the size limit"))
	case apierrors.IsUnknownModelError(err):
		sb.WriteString("\n" + hint.Render("Pick a model with ctrl+o"))
	}

	return bannerStyle.Render(sb.String())
}

// shortcut renders one "key desc" status bar entry
func shortcut(key, desc string) string {
	return statusKeyStyle.Render(key) + statusDescStyle.Render(" "+desc)
}

// truncate shortens s to width cells, adding an ellipsis
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
