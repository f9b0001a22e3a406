package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/foldchat/internal/history"
	"github.com/diogo/foldchat/internal/models"
)

type rowKind int

const (
	rowFolder rowKind = iota
	rowChat
	rowUnfiled
)

// sidebarRow is one line of the sidebar. Folder and unfiled headers are drop
// targets; chat rows can be selected, dragged and dropped on.
type sidebarRow struct {
	kind      rowKind
	folderID  string
	chatID    string
	label     string
	index     int // position of a chat within its group
	count     int // chats in a folder
	collapsed bool
	provider  models.Provider
}

const unfiledLabel = "Recent Chats"

// buildRows lays out folders (with their chats unless collapsed) followed by
// the unfiled group. Every group is in order.
func buildRows(store *history.Store) []sidebarRow {
	var rows []sidebarRow

	for _, f := range store.Folders() {
		chats := store.ChatsInFolder(f.ID)
		rows = append(rows, sidebarRow{
			kind:      rowFolder,
			folderID:  f.ID,
			label:     f.Name,
			count:     len(chats),
			collapsed: f.Collapsed,
		})
		if !f.Collapsed {
			rows = append(rows, chatRows(chats)...)
		}
	}

	unfiled := store.ChatsInFolder(history.Unfiled)
	rows = append(rows, sidebarRow{kind: rowUnfiled, label: unfiledLabel, count: len(unfiled)})
	rows = append(rows, chatRows(unfiled)...)
	return rows
}

func chatRows(chats []history.Chat) []sidebarRow {
	rows := make([]sidebarRow, 0, len(chats))
	for i, c := range chats {
		row := sidebarRow{
			kind:     rowChat,
			folderID: c.FolderID,
			chatID:   c.ID,
			label:    c.Title,
			index:    i,
		}
		if m, ok := models.FindModel(c.Model); ok {
			row.provider = m.Provider
		}
		rows = append(rows, row)
	}
	return rows
}

// rowOfChat returns the row index showing chatID, or -1
func rowOfChat(rows []sidebarRow, chatID string) int {
	for i, r := range rows {
		if r.kind == rowChat && r.chatID == chatID {
			return i
		}
	}
	return -1
}

// rowOfFolder returns the header row index of folderID, or -1
func rowOfFolder(rows []sidebarRow, folderID string) int {
	for i, r := range rows {
		if (r.kind == rowFolder || r.kind == rowUnfiled) && r.folderID == folderID {
			return i
		}
	}
	return -1
}

// sidebarView holds what renderSidebar needs besides the rows
type sidebarView struct {
	cursor  int
	offset  int
	focused bool
	active  string
	drag    dragState
	width   int
	height  int
}

// scrollOffset keeps cursor within a window of height rows
func scrollOffset(offset, cursor, height, total int) int {
	if height <= 0 {
		return 0
	}
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+height {
		offset = cursor - height + 1
	}
	if last := total - height; offset > last {
		offset = last
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func renderSidebar(rows []sidebarRow, v sidebarView) string {
	var lines []string
	lines = append(lines, sidebarHeaderStyle.Render(truncate("Chats", v.width)))

	end := v.offset + v.height
	if end > len(rows) {
		end = len(rows)
	}
	for i := v.offset; i < end; i++ {
		lines = append(lines, renderRow(rows[i], i, v))
	}
	for len(lines) < v.height+1 {
		lines = append(lines, "")
	}

	style := sidebarStyle
	if v.focused {
		style = sidebarFocusStyle
	}
	return style.Width(v.width).Render(strings.Join(lines, "\n"))
}

func renderRow(r sidebarRow, i int, v sidebarView) string {
	var text string
	switch r.kind {
	case rowFolder:
		marker := "▾"
		if r.collapsed {
			marker = "▸"
		}
		text = fmt.Sprintf("%s %s (%d)", marker, r.label, r.count)
	case rowUnfiled:
		text = fmt.Sprintf("  %s (%d)", r.label, r.count)
	case rowChat:
		indent := "  "
		if r.folderID != history.Unfiled {
			indent = "    "
		}
		mark := openRouterMarkStyle.Render("●")
		if r.provider == models.ProviderAIML {
			mark = aimlMarkStyle.Render("●")
		}
		grip := " "
		if v.drag.active() && v.drag.chatID == r.chatID {
			grip = "≡"
		}
		label := truncate(r.label, v.width-len(indent)-3)
		return indent + grip + mark + " " + rowStyle(r, i, v).Render(label)
	}

	return rowStyle(r, i, v).Render(truncate(text, v.width))
}

func rowStyle(r sidebarRow, i int, v sidebarView) lipgloss.Style {
	switch {
	case v.drag.active() && v.drag.over == i && r.chatID != v.drag.chatID:
		return dropTargetRowStyle
	case v.drag.active() && r.kind == rowChat && r.chatID == v.drag.chatID:
		return draggedRowStyle
	case v.focused && i == v.cursor:
		return cursorRowStyle
	case r.kind == rowChat && r.chatID == v.active:
		return activeChatStyle
	case r.kind == rowChat:
		return chatRowStyle
	case r.kind == rowUnfiled:
		return sidebarHeaderStyle
	default:
		return folderRowStyle
	}
}
