package tui

import "github.com/diogo/foldchat/internal/history"

// dragState tracks a chat being dragged across the sidebar. It is idle until
// start, follows the pointer (or the arrow keys) with moveTo, and ends with
// drop or cancel.
type dragState struct {
	dragging bool
	chatID   string
	from     int
	over     int
}

func (d dragState) active() bool {
	return d.dragging
}

// start picks up the chat at row idx; headers cannot be dragged
func (d *dragState) start(rows []sidebarRow, idx int) bool {
	if idx < 0 || idx >= len(rows) || rows[idx].kind != rowChat {
		return false
	}
	*d = dragState{dragging: true, chatID: rows[idx].chatID, from: idx, over: idx}
	return true
}

// moveTo sets the row under the dragged chat, clamped to the sidebar
func (d *dragState) moveTo(rows []sidebarRow, idx int) {
	if !d.dragging || len(rows) == 0 {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rows) {
		idx = len(rows) - 1
	}
	d.over = idx
}

func (d *dragState) cancel() {
	*d = dragState{}
}

// drop ends the drag and returns what it resolves to
func (d *dragState) drop(rows []sidebarRow) dropAction {
	if !d.dragging {
		return dropAction{}
	}
	action := resolveDrop(rows, d.chatID, d.over)
	d.cancel()
	return action
}

type dropKind int

const (
	dropNone dropKind = iota
	dropMove
	dropReorder
	dropMoveReorder
)

// dropAction is the store mutation a drop resolves to
type dropAction struct {
	kind     dropKind
	chatID   string
	folderID string
	index    int
}

// resolveDrop maps a drop of chatID onto row over to a store mutation:
// a folder or unfiled header moves the chat into that group, a chat of the
// same group reorders to its index, a chat of another group moves then
// reorders, and the chat itself is a no-op.
func resolveDrop(rows []sidebarRow, chatID string, over int) dropAction {
	if over < 0 || over >= len(rows) {
		return dropAction{}
	}
	src := rowOfChat(rows, chatID)
	if src < 0 {
		return dropAction{}
	}
	target := rows[over]

	switch target.kind {
	case rowFolder:
		return dropAction{kind: dropMove, chatID: chatID, folderID: target.folderID}
	case rowUnfiled:
		return dropAction{kind: dropMove, chatID: chatID, folderID: history.Unfiled}
	case rowChat:
		if target.chatID == chatID {
			return dropAction{}
		}
		kind := dropReorder
		if target.folderID != rows[src].folderID {
			kind = dropMoveReorder
		}
		return dropAction{kind: kind, chatID: chatID, folderID: target.folderID, index: target.index}
	}
	return dropAction{}
}

// apply performs the drop on the store
func (a dropAction) apply(store *history.Store) {
	switch a.kind {
	case dropMove:
		store.MoveChat(a.chatID, a.folderID)
	case dropReorder:
		store.ReorderChats(a.folderID, a.chatID, a.index)
	case dropMoveReorder:
		store.MoveChat(a.chatID, a.folderID)
		store.ReorderChats(a.folderID, a.chatID, a.index)
	}
}
