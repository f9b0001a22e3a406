package history

import (
	"github.com/diogo/foldchat/internal/models"
)

// titleLimit is the number of runes of the first user message kept in a title
const titleLimit = 30

// ChatUpdate holds the chat fields to change; nil fields are left alone
type ChatUpdate struct {
	Title *string
	Model *string
}

// CreateChat inserts an empty chat at the front of the list, makes it the
// active chat and returns its id. The model id is not validated.
func (s *Store) CreateChat(modelID string) string {
	s.mu.Lock()

	now := s.now()
	chat := &Chat{
		ID:        s.newID(),
		Title:     DefaultChatTitle,
		Messages:  []models.Message{},
		Model:     modelID,
		FolderID:  Unfiled,
		CreatedAt: now,
		UpdatedAt: now,
		Order:     maxOrder(s.chats, nil) + 1,
	}

	s.chats = append([]*Chat{chat}, s.chats...)
	s.active = chat.ID

	s.log.Debug().Str("chat", chat.ID).Str("model", modelID).Msg("Created chat")
	s.commit(Event{Kind: ChatCreated, ChatID: chat.ID})
	return chat.ID
}

// DeleteChat removes a chat and clears the active pointer if it pointed at it
func (s *Store) DeleteChat(id string) {
	s.mu.Lock()

	idx := -1
	for i, c := range s.chats {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.chats = append(s.chats[:idx], s.chats[idx+1:]...)
	if s.active == id {
		s.active = ""
	}

	s.log.Debug().Str("chat", id).Msg("Deleted chat")
	s.commit(Event{Kind: ChatDeleted, ChatID: id})
}

// UpdateChat merges upd into the chat and bumps its update time
func (s *Store) UpdateChat(id string, upd ChatUpdate) {
	s.mu.Lock()

	chat := s.findChat(id)
	if chat == nil || (upd.Title == nil && upd.Model == nil) {
		s.mu.Unlock()
		return
	}

	if upd.Title != nil {
		chat.Title = *upd.Title
	}
	if upd.Model != nil {
		chat.Model = *upd.Model
	}
	chat.UpdatedAt = s.now()

	s.commit(Event{Kind: ChatUpdated, ChatID: id, FolderID: chat.FolderID})
}

// SetActiveChat points the active chat at id. An empty id clears the pointer;
// an id that names no chat is ignored.
func (s *Store) SetActiveChat(id string) {
	s.mu.Lock()

	if id == s.active {
		s.mu.Unlock()
		return
	}
	if id != "" && s.findChat(id) == nil {
		s.mu.Unlock()
		s.log.Debug().Str("chat", id).Msg("Ignoring unknown active chat")
		return
	}

	s.active = id
	s.commit(Event{Kind: ActiveChanged, ChatID: id})
}

// AddMessageToChat appends msg and bumps the update time. The first message,
// when it comes from the user, also becomes the title. Messages for unknown
// chats are dropped, which covers responses arriving after a delete.
func (s *Store) AddMessageToChat(chatID string, msg models.Message) {
	s.mu.Lock()

	chat := s.findChat(chatID)
	if chat == nil {
		s.mu.Unlock()
		s.log.Debug().Str("chat", chatID).Str("role", msg.Role).Msg("Dropping message for unknown chat")
		return
	}

	if len(chat.Messages) == 0 && msg.Role == models.RoleUser {
		chat.Title = TitleFromMessage(msg.Content)
	}
	chat.Messages = append(chat.Messages, msg)
	chat.UpdatedAt = s.now()

	s.commit(Event{Kind: MessageAdded, ChatID: chatID, FolderID: chat.FolderID})
}

// TitleFromMessage returns the first 30 characters of content followed by "..."
func TitleFromMessage(content string) string {
	runes := []rune(content)
	if len(runes) > titleLimit {
		runes = runes[:titleLimit]
	}
	return string(runes) + "..."
}
