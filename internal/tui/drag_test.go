package tui

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/foldchat/internal/history"
)

func TestResolveDrop(t *testing.T) {
	store := newTestStore(t)
	folder := seedSidebar(store)
	rows := buildRows(store)

	tests := []struct {
		name   string
		chatID string
		over   int
		want   dropAction
	}{
		{"folder header", "id-001", 0, dropAction{kind: dropMove, chatID: "id-001", folderID: folder}},
		{"unfiled header", "id-003", 2, dropAction{kind: dropMove, chatID: "id-003", folderID: history.Unfiled}},
		{"same group", "id-001", 5, dropAction{kind: dropReorder, chatID: "id-001", index: 2}},
		{"other group", "id-001", 1, dropAction{kind: dropMoveReorder, chatID: "id-001", folderID: folder}},
		{"onto itself", "id-001", 3, dropAction{}},
		{"past the end", "id-001", 6, dropAction{}},
		{"negative", "id-001", -1, dropAction{}},
		{"unknown chat", "missing", 0, dropAction{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveDrop(rows, tt.chatID, tt.over)
			if got != tt.want {
				t.Errorf("resolveDrop = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDropAction_Apply(t *testing.T) {
	tests := []struct {
		name     string
		chatID   string
		over     int
		wantWork []string
		wantRest []string
	}{
		{"reorder unfiled", "id-001", 5, []string{"id-003"}, []string{"id-002", "id-005", "id-001"}},
		{"move to folder end", "id-001", 0, []string{"id-003", "id-001"}, []string{"id-002", "id-005"}},
		{"move before folder chat", "id-001", 1, []string{"id-001", "id-003"}, []string{"id-002", "id-005"}},
		{"move out of folder", "id-003", 2, nil, []string{"id-001", "id-002", "id-005", "id-003"}},
		{"move into unfiled position", "id-003", 3, nil, []string{"id-003", "id-001", "id-002", "id-005"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			folder := seedSidebar(store)

			resolveDrop(buildRows(store), tt.chatID, tt.over).apply(store)

			work := chatIDs(store.ChatsInFolder(folder))
			rest := chatIDs(store.ChatsInFolder(history.Unfiled))
			if len(work) != len(tt.wantWork) || (len(work) > 0 && !reflect.DeepEqual(work, tt.wantWork)) {
				t.Errorf("Work = %v, want %v", work, tt.wantWork)
			}
			if !reflect.DeepEqual(rest, tt.wantRest) {
				t.Errorf("unfiled = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}

func TestDragState(t *testing.T) {
	store := newTestStore(t)
	folder := seedSidebar(store)
	rows := buildRows(store)

	var d dragState
	if d.start(rows, 0) {
		t.Error("folder headers should not start a drag")
	}
	if d.start(rows, 2) {
		t.Error("the unfiled header should not start a drag")
	}
	if d.active() {
		t.Fatal("drag should be idle")
	}
	if got := d.drop(rows); got.kind != dropNone {
		t.Errorf("drop while idle = %+v", got)
	}

	if !d.start(rows, 4) {
		t.Fatal("chat row should start a drag")
	}
	if d.chatID != "id-002" || d.from != 4 || d.over != 4 {
		t.Errorf("state = %+v", d)
	}

	d.moveTo(rows, 99)
	if d.over != len(rows)-1 {
		t.Errorf("over = %d, want clamped to %d", d.over, len(rows)-1)
	}
	d.moveTo(rows, -5)
	if d.over != 0 {
		t.Errorf("over = %d, want 0", d.over)
	}

	action := d.drop(rows)
	if action != (dropAction{kind: dropMove, chatID: "id-002", folderID: folder}) {
		t.Errorf("drop = %+v", action)
	}
	if d.active() {
		t.Error("drop should end the drag")
	}

	d.start(rows, 3)
	d.cancel()
	if d.active() || d.chatID != "" {
		t.Errorf("cancel left %+v", d)
	}
}

func TestChatModel_KeyboardDrag(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	folder := seedSidebar(deps.Store)
	m := newTestChat(deps)

	// Sidebar focus starts on the active chat (row 5)
	m = press(m, key(tea.KeyTab), key(tea.KeyUp), key(tea.KeyUp))
	if m.focus != focusSidebar || m.cursor != 3 {
		t.Fatalf("focus = %v, cursor = %d", m.focus, m.cursor)
	}

	m = press(m, key(tea.KeyCtrlG))
	if !m.drag.active() || m.drag.chatID != "id-001" {
		t.Fatalf("drag = %+v", m.drag)
	}
	if m.notice == "" {
		t.Error("expected a drag hint")
	}

	m = press(m, key(tea.KeyUp), key(tea.KeyUp), key(tea.KeyUp), key(tea.KeyEnter))
	if m.drag.active() {
		t.Error("enter should drop")
	}
	if got := chatIDs(deps.Store.ChatsInFolder(folder)); !reflect.DeepEqual(got, []string{"id-003", "id-001"}) {
		t.Errorf("Work = %v", got)
	}
	if m.rows[m.cursor].chatID != "id-001" {
		t.Errorf("cursor should follow the dropped chat, on %+v", m.rows[m.cursor])
	}
}

func TestChatModel_KeyboardDragCancel(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	folder := seedSidebar(deps.Store)
	m := newTestChat(deps)

	m = press(m, key(tea.KeyTab), key(tea.KeyCtrlG), key(tea.KeyUp), key(tea.KeyEscape))
	if m.drag.active() {
		t.Error("esc should cancel the drag")
	}
	if got := chatIDs(deps.Store.ChatsInFolder(folder)); !reflect.DeepEqual(got, []string{"id-003"}) {
		t.Errorf("Work = %v, want unchanged", got)
	}
}

func TestChatModel_MouseDrag(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	folder := seedSidebar(deps.Store)
	m := newTestChat(deps)

	mouse := func(action tea.MouseAction, row int) tea.MouseMsg {
		return tea.MouseMsg{X: 2, Y: sidebarRowTop + row, Action: action, Button: tea.MouseButtonLeft}
	}

	m, _ = m.Update(mouse(tea.MouseActionPress, 4))
	if !m.drag.active() || m.drag.chatID != "id-002" {
		t.Fatalf("press should pick up id-002, drag = %+v", m.drag)
	}
	m, _ = m.Update(mouse(tea.MouseActionMotion, 1))
	if m.drag.over != 1 {
		t.Errorf("over = %d, want 1", m.drag.over)
	}
	m, _ = m.Update(mouse(tea.MouseActionRelease, 1))

	if m.drag.active() {
		t.Error("release should end the drag")
	}
	if got := chatIDs(deps.Store.ChatsInFolder(folder)); !reflect.DeepEqual(got, []string{"id-002", "id-003"}) {
		t.Errorf("Work = %v", got)
	}
}

func TestChatModel_MouseClickSelects(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	folder := seedSidebar(deps.Store)
	m := newTestChat(deps)

	click := func(m chatModel, row int) chatModel {
		for _, action := range []tea.MouseAction{tea.MouseActionPress, tea.MouseActionRelease} {
			m, _ = m.Update(tea.MouseMsg{X: 2, Y: sidebarRowTop + row, Action: action, Button: tea.MouseButtonLeft})
		}
		return m
	}

	m = click(m, 3)
	if got := deps.Store.ActiveChat(); got != "id-001" {
		t.Errorf("active = %s, want id-001", got)
	}
	if m.drag.active() {
		t.Error("a click should not leave a drag behind")
	}

	m = click(m, 0)
	f, _ := deps.Store.Folder(folder)
	if !f.Collapsed {
		t.Error("clicking a folder should collapse it")
	}
	if len(m.rows) != 5 {
		t.Errorf("rows = %d, want 5 with the folder collapsed", len(m.rows))
	}
}
