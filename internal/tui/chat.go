package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/history"
	"github.com/diogo/foldchat/internal/models"
	"github.com/diogo/foldchat/internal/render"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// Layout constants
const (
	maxSidebarWidth = 32
	minSidebarWidth = 18
	inputHeight     = 3
	// sidebarRowTop is the screen line of the first sidebar row: top border
	// plus the "Chats" header
	sidebarRowTop = 2
)

// chatModel is the main screen: sidebar, conversation and input
type chatModel struct {
	ctx  context.Context
	deps *Deps

	rows    []sidebarRow
	cursor  int
	offset  int
	focus   focusArea
	drag    dragState
	pressed bool

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	pending map[string]bool
	prompt  *prompt
	picker  *pickerModel

	err    error
	notice string

	width  int
	height int
	ready  bool
}

func newChatModel(ctx context.Context, deps *Deps) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 8000
	ta.ShowLineNumbers = false
	ta.SetHeight(inputHeight)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := chatModel{
		ctx:      ctx,
		deps:     deps,
		textarea: ta,
		spinner:  s,
		viewport: viewport.New(40, 10),
		pending:  map[string]bool{},
	}
	m.refresh()
	return m
}

// refresh rebuilds the sidebar rows and conversation from the store
func (m *chatModel) refresh() {
	m.rows = buildRows(m.deps.Store)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.drag.active() && rowOfChat(m.rows, m.drag.chatID) < 0 {
		m.drag.cancel()
	}
	m.offset = scrollOffset(m.offset, m.cursor, m.sidebarHeight(), len(m.rows))
	m.updateViewport()
}

func (m chatModel) sidebarWidth() int {
	w := m.width / 4
	if w > maxSidebarWidth {
		w = maxSidebarWidth
	}
	if w < minSidebarWidth {
		w = minSidebarWidth
	}
	return w
}

func (m chatModel) sidebarHeight() int {
	// borders, header and status line
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m chatModel) mainWidth() int {
	w := m.width - m.sidebarWidth() - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m *chatModel) resize(width, height int) {
	m.width, m.height = width, height

	// title line, input panel with label and borders, status line, borders
	vpHeight := height - 1 - (inputHeight + 3) - 1 - 2
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = m.mainWidth() - 2
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(m.mainWidth() - 4)
	m.ready = true
	m.refresh()
}

func (m chatModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case storeEventMsg:
		m.refresh()
		return m, nil

	case replyMsg:
		delete(m.pending, msg.chatID)
		if msg.err != nil {
			m.deps.Log.Warn().Err(msg.err).Str("chat", msg.chatID).Msg("Send failed")
			m.err = msg.err
		} else {
			// Dropped by the store when the chat was deleted meanwhile
			m.deps.Store.AddMessageToChat(msg.chatID, msg.reply)
			if m.deps.AutoCopy && m.deps.Clipboard != nil {
				if err := m.deps.Clipboard(msg.reply.Content); err != nil {
					m.deps.Log.Debug().Err(err).Msg("Auto copy failed")
				}
			}
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case uploadDoneMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.deps.Store.AddMessageToChat(msg.chatID, models.UserMessage(msg.att.Markdown()))
			m.notice = "Attached " + msg.att.Name
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if len(m.pending) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateViewport()
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.picker != nil {
			return m.updatePicker(msg)
		}
		if m.prompt != nil {
			return m.updatePrompt(msg)
		}
		if m.drag.active() {
			return m.updateDrag(msg)
		}
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	if m.prompt != nil {
		return m, m.prompt.update(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok && m.focus == focusInput {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(key)
		cmds = append(cmds, cmd)
	} else if _, ok := msg.(tea.KeyMsg); !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleKey runs the screen shortcuts; handled is false for keys that go to
// the focused component
func (m chatModel) handleKey(msg tea.KeyMsg) (chatModel, tea.Cmd, bool) {
	store := m.deps.Store

	switch msg.String() {
	case "esc":
		m.err = nil
		m.notice = ""
		return m, nil, true

	case "tab":
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.textarea.Blur()
			if row := rowOfChat(m.rows, store.ActiveChat()); row >= 0 {
				m.cursor = row
			}
		} else {
			m.focus = focusInput
			m.textarea.Focus()
		}
		m.refresh()
		return m, nil, true

	case "ctrl+n":
		id := store.CreateChat(m.deps.Settings.SelectedModel())
		m.focus = focusInput
		m.textarea.Focus()
		m.refresh()
		m.cursor = rowOfChat(m.rows, id)
		return m, nil, true

	case "ctrl+d":
		if id := m.targetChat(); id != "" {
			store.DeleteChat(id)
			delete(m.pending, id)
			m.refresh()
		}
		return m, nil, true

	case "ctrl+f":
		m.prompt = newPrompt(promptNewFolder, "", "")
		return m, textinput.Blink, true

	case "ctrl+r":
		if m.focus == focusSidebar && m.cursor < len(m.rows) && m.rows[m.cursor].kind == rowFolder {
			row := m.rows[m.cursor]
			m.prompt = newPrompt(promptRenameFolder, row.folderID, row.label)
			return m, textinput.Blink, true
		}
		if id := m.targetChat(); id != "" {
			chat, _ := store.Chat(id)
			m.prompt = newPrompt(promptRenameChat, id, chat.Title)
			return m, textinput.Blink, true
		}
		return m, nil, true

	case "ctrl+x":
		if m.focus == focusSidebar && m.cursor < len(m.rows) && m.rows[m.cursor].kind == rowFolder {
			store.DeleteFolder(m.rows[m.cursor].folderID)
			m.refresh()
		}
		return m, nil, true

	case "ctrl+o":
		p := newPicker(m.deps.Settings.SelectedModel())
		m.picker = &p
		return m, nil, true

	case "ctrl+a":
		if m.deps.Uploader == nil {
			m.notice = "Attachments are not configured"
			return m, nil, true
		}
		m.prompt = newPrompt(promptAttach, "", "")
		return m, textinput.Blink, true

	case "ctrl+y":
		m.copyLastReply()
		return m, nil, true

	case "ctrl+g":
		if m.focus == focusSidebar && m.drag.start(m.rows, m.cursor) {
			m.notice = "Moving chat: ↑↓ to choose a place, Enter to drop, Esc to cancel"
		}
		return m, nil, true

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, true
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}

	if msg.String() == "enter" {
		next, cmd := m.send()
		return next, cmd, true
	}
	return m, nil, false
}

func (m chatModel) handleSidebarKey(msg tea.KeyMsg) (chatModel, tea.Cmd, bool) {
	store := m.deps.Store

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case " ", "enter":
		if m.cursor >= len(m.rows) {
			break
		}
		row := m.rows[m.cursor]
		switch row.kind {
		case rowFolder:
			collapsed := !row.collapsed
			store.UpdateFolder(row.folderID, history.FolderUpdate{Collapsed: &collapsed})
		case rowChat:
			store.SetActiveChat(row.chatID)
			if msg.String() == "enter" {
				m.focus = focusInput
				m.textarea.Focus()
			}
		}
	}
	m.refresh()
	return m, nil, true
}

// targetChat is the chat under the sidebar cursor, or the active chat
func (m chatModel) targetChat() string {
	if m.focus == focusSidebar {
		if m.cursor < len(m.rows) && m.rows[m.cursor].kind == rowChat {
			return m.rows[m.cursor].chatID
		}
		return ""
	}
	return m.deps.Store.ActiveChat()
}

func (m chatModel) updateDrag(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.drag.moveTo(m.rows, m.drag.over-1)
	case "down", "j":
		m.drag.moveTo(m.rows, m.drag.over+1)
	case "enter", "ctrl+g":
		chatID := m.drag.chatID
		action := m.drag.drop(m.rows)
		action.apply(m.deps.Store)
		m.notice = ""
		m.refresh()
		if row := rowOfChat(m.rows, chatID); row >= 0 {
			m.cursor = row
		}
	case "esc":
		m.drag.cancel()
		m.notice = ""
	}
	return m, nil
}

// handleMouse drives the drag state machine with press, motion and release
// on sidebar rows; a press and release on the same row selects it
func (m chatModel) handleMouse(msg tea.MouseMsg) (chatModel, tea.Cmd) {
	idx, inSidebar := m.rowAt(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if msg.Button != tea.MouseButtonLeft || !inSidebar {
			return m, nil
		}
		m.focus = focusSidebar
		m.textarea.Blur()
		m.cursor = idx
		m.pressed = true
		m.drag.start(m.rows, idx)

	case tea.MouseActionMotion:
		if m.drag.active() && inSidebar {
			m.drag.moveTo(m.rows, idx)
		}

	case tea.MouseActionRelease:
		if !m.pressed {
			return m, nil
		}
		m.pressed = false
		if m.drag.active() && inSidebar {
			m.drag.moveTo(m.rows, idx)
		}
		if m.drag.active() && m.drag.over != m.drag.from {
			chatID := m.drag.chatID
			m.drag.drop(m.rows).apply(m.deps.Store)
			m.refresh()
			m.cursor = rowOfChat(m.rows, chatID)
			return m, nil
		}
		m.drag.cancel()
		if inSidebar && idx == m.cursor && idx < len(m.rows) {
			return m.activateRow(idx)
		}
	}
	m.refresh()
	return m, nil
}

// activateRow selects a chat or toggles a folder, as a click does
func (m chatModel) activateRow(idx int) (chatModel, tea.Cmd) {
	row := m.rows[idx]
	switch row.kind {
	case rowChat:
		m.deps.Store.SetActiveChat(row.chatID)
	case rowFolder:
		collapsed := !row.collapsed
		m.deps.Store.UpdateFolder(row.folderID, history.FolderUpdate{Collapsed: &collapsed})
	}
	m.refresh()
	return m, nil
}

// rowAt maps screen coordinates to a sidebar row index
func (m chatModel) rowAt(x, y int) (int, bool) {
	if x < 0 || x >= m.sidebarWidth()+2 {
		return 0, false
	}
	line := y - sidebarRowTop
	if line < 0 || line >= m.sidebarHeight() {
		return 0, false
	}
	idx := m.offset + line
	if idx >= len(m.rows) {
		return 0, false
	}
	return idx, true
}

func (m chatModel) updatePicker(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	next, res := m.picker.Update(msg)
	if !res.done {
		m.picker = &next
		return m, nil
	}
	m.picker = nil
	if res.chosen == "" {
		return m, nil
	}

	if err := m.deps.Settings.SetSelectedModel(res.chosen); err != nil {
		m.err = err
		return m, nil
	}
	if id := m.deps.Store.ActiveChat(); id != "" {
		m.deps.Store.UpdateChat(id, history.ChatUpdate{Model: &res.chosen})
	}
	if model, ok := models.FindModel(res.chosen); ok {
		m.notice = "Model: " + model.Name
	}
	m.refresh()
	return m, nil
}

func (m chatModel) updatePrompt(msg tea.KeyMsg) (chatModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt = nil
		return m, nil
	case "enter":
		return m.submitPrompt()
	}
	return m, m.prompt.update(msg)
}

func (m chatModel) submitPrompt() (chatModel, tea.Cmd) {
	p := m.prompt
	value := strings.TrimSpace(p.value())
	store := m.deps.Store

	switch p.kind {
	case promptNewFolder, promptRenameFolder:
		if err := history.ValidateFolderName(value); err != nil {
			p.err = apierrors.UserMessage(err)
			return m, nil
		}
		if p.kind == promptNewFolder {
			store.CreateFolder(value)
		} else {
			store.UpdateFolder(p.targetID, history.FolderUpdate{Name: &value})
		}

	case promptRenameChat:
		if value == "" {
			p.err = "Chat title is required"
			return m, nil
		}
		store.UpdateChat(p.targetID, history.ChatUpdate{Title: &value})

	case promptAttach:
		if value == "" {
			p.err = "File path is required"
			return m, nil
		}
		m.prompt = nil
		return m.attach(expandHome(value))
	}

	m.prompt = nil
	m.refresh()
	return m, nil
}

// send appends the user message to the active chat (creating one if needed)
// and starts the provider call
func (m chatModel) send() (chatModel, tea.Cmd) {
	text := strings.TrimSpace(m.textarea.Value())
	if text == "" {
		return m, nil
	}
	store := m.deps.Store
	modelID := m.deps.Settings.SelectedModel()

	chatID := store.ActiveChat()
	if chatID == "" {
		chatID = store.CreateChat(modelID)
	}
	if m.pending[chatID] {
		m.notice = "Waiting for the previous reply"
		return m, nil
	}

	store.AddMessageToChat(chatID, models.UserMessage(text))
	chat, ok := store.Chat(chatID)
	if !ok {
		return m, nil
	}

	m.textarea.Reset()
	m.err = nil
	m.notice = ""
	m.pending[chatID] = true
	m.refresh()
	m.viewport.GotoBottom()

	gw, ctx, conversation := m.deps.Gateway, m.ctx, chat.Messages
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		reply, err := gw.SendMessage(ctx, conversation, modelID)
		return replyMsg{chatID: chatID, reply: reply, err: err}
	})
}

func (m chatModel) attach(path string) (chatModel, tea.Cmd) {
	store := m.deps.Store
	user := m.deps.Auth.User()
	if user == nil {
		m.err = apierrors.NewAuthError("Sign in to attach files", nil)
		return m, nil
	}

	chatID := store.ActiveChat()
	if chatID == "" {
		chatID = store.CreateChat(m.deps.Settings.SelectedModel())
		m.refresh()
	}

	m.notice = "Uploading " + filepath.Base(path) + "..."
	up, ctx, userID := m.deps.Uploader, m.ctx, user.ID
	return m, func() tea.Msg {
		att, err := up.UploadFile(ctx, path, userID)
		return uploadDoneMsg{chatID: chatID, att: att, err: err}
	}
}

func (m *chatModel) copyLastReply() {
	if m.deps.Clipboard == nil {
		m.notice = "Clipboard is not available"
		return
	}
	chat, ok := m.deps.Store.Chat(m.deps.Store.ActiveChat())
	if !ok {
		return
	}
	for i := len(chat.Messages) - 1; i >= 0; i-- {
		if chat.Messages[i].Role == models.RoleAssistant {
			if err := m.deps.Clipboard(chat.Messages[i].Content); err != nil {
				m.err = errors.New("could not copy to clipboard: " + err.Error())
				return
			}
			m.notice = "Copied to clipboard"
			return
		}
	}
	m.notice = "No reply to copy"
}

// updateViewport renders the active chat into the viewport
func (m *chatModel) updateViewport() {
	chat, ok := m.deps.Store.Chat(m.deps.Store.ActiveChat())
	if !ok {
		m.viewport.SetContent(hintStyle.Render("Press ctrl+n to start a new chat"))
		return
	}

	width := m.viewport.Width - 2
	if width < 10 {
		width = 10
	}
	opts := m.deps.Markdown.WithWidth(width - 4)

	var b strings.Builder
	for i, msg := range chat.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		if msg.Role == models.RoleUser {
			b.WriteString(userLabelStyle.Render("You") + "\n")
			b.WriteString(userBubbleStyle.Width(width).Render(msg.Content))
		} else {
			b.WriteString(assistantLabelStyle.Render("Assistant") + "\n")
			b.WriteString(assistantBubble.Width(width).Render(render.MarkdownOrPlain(msg.Content, opts)))
		}
		b.WriteString("\n")
	}
	if m.pending[chat.ID] {
		b.WriteString("\n" + m.spinner.View() + loadingStyle.Render(" Thinking..."))
	}
	if len(chat.Messages) == 0 && !m.pending[chat.ID] {
		b.WriteString(hintStyle.Render("Send a message to start the conversation"))
	}
	m.viewport.SetContent(b.String())
}

func (m chatModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	sidebar := renderSidebar(m.rows, sidebarView{
		cursor:  m.cursor,
		offset:  m.offset,
		focused: m.focus == focusSidebar,
		active:  m.deps.Store.ActiveChat(),
		drag:    m.drag,
		width:   m.sidebarWidth(),
		height:  m.sidebarHeight(),
	})

	main := m.renderMain()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

func (m chatModel) renderMain() string {
	width := m.mainWidth()

	if m.picker != nil {
		return m.picker.View(width)
	}

	title := "No chat selected"
	if chat, ok := m.deps.Store.Chat(m.deps.Store.ActiveChat()); ok {
		title = chat.Title
	}
	modelName := m.deps.Settings.SelectedModel()
	if model, ok := models.FindModel(modelName); ok {
		modelName = model.Name + " · " + model.Provider.DisplayName()
	}
	header := titleStyle.Render(truncate(title, width/2)) + hintStyle.Render("  •  ") + subtitleStyle.Render(modelName)

	vp := m.viewport
	banner := ""
	if m.err != nil {
		banner = formatBanner(m.err)
		vp.Height -= lipgloss.Height(banner)
		if vp.Height < 1 {
			vp.Height = 1
		}
	}
	messages := messagesAreaStyle.Width(width).Render(vp.View())

	var input string
	if m.prompt != nil {
		input = m.prompt.view()
	} else {
		input = inputLabelStyle.Render("You") + "\n" + m.textarea.View()
	}
	inputStyle := inputPanelStyle
	if m.focus == focusInput {
		inputStyle = inputPanelFocusStyle
	}
	inputPanel := inputStyle.Width(width).Render(input)

	sections := []string{header, messages}
	if banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, inputPanel)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m chatModel) renderStatusBar() string {
	var left string
	if user := m.deps.Auth.User(); user != nil {
		left = subtitleStyle.Render(user.Email) + "  "
	}
	if m.notice != "" {
		left += noticeStyle.Render(m.notice)
		return statusBarStyle.Width(m.width).Render(left)
	}

	keys := []string{
		shortcut("^N", "new"),
		shortcut("^F", "folder"),
		shortcut("Tab", "sidebar"),
		shortcut("^G", "move"),
		shortcut("^O", "model"),
		shortcut("^A", "attach"),
		shortcut("^Y", "copy"),
		shortcut("^L", "sign out"),
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Join(keys, "  "))
}

// expandHome replaces a leading ~ with the home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
