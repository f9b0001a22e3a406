package history

import (
	"sort"
)

// maxOrder returns max(0, highest order among chats accepted by keep). A nil
// keep accepts every chat.
func maxOrder(chats []*Chat, keep func(*Chat) bool) int {
	highest := 0
	for _, c := range chats {
		if keep != nil && !keep(c) {
			continue
		}
		if c.Order > highest {
			highest = c.Order
		}
	}
	return highest
}

// group returns the chats sharing folderID, sorted by order ascending. Ties
// keep global list order.
func (s *Store) group(folderID string) []*Chat {
	var members []*Chat
	for _, c := range s.chats {
		if c.FolderID == folderID {
			members = append(members, c)
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Order < members[j].Order
	})
	return members
}

// ChatsInFolder returns copies of the chats in a group in display order.
// Pass Unfiled for chats outside any folder.
func (s *Store) ChatsInFolder(folderID string) []Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.group(folderID)
	out := make([]Chat, len(members))
	for i, c := range members {
		out[i] = c.clone()
	}
	return out
}

// IndexInGroup returns the display position of a chat within its group, or
// -1 if the chat does not exist
func (s *Store) IndexInGroup(chatID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findChat(chatID)
	if chat == nil {
		return -1
	}
	for i, c := range s.group(chat.FolderID) {
		if c.ID == chatID {
			return i
		}
	}
	return -1
}

// MoveChat puts the chat at the end of the target group. The new order is
// one past the group's current maximum, counting the chat itself when it is
// already a member.
func (s *Store) MoveChat(chatID, targetFolderID string) {
	s.mu.Lock()

	chat := s.findChat(chatID)
	if chat == nil {
		s.mu.Unlock()
		return
	}

	chat.Order = maxOrder(s.chats, func(c *Chat) bool {
		return c.FolderID == targetFolderID
	}) + 1
	chat.FolderID = targetFolderID

	s.log.Debug().
		Str("chat", chatID).
		Str("folder", targetFolderID).
		Int("order", chat.Order).
		Msg("Moved chat")
	s.commit(Event{Kind: ChatMoved, ChatID: chatID, FolderID: targetFolderID})
}

// ReorderChats moves chatID to newIndex within the folderID group and
// renumbers the group densely from 0. An index past the end appends and a
// negative index is treated as 0. Chats in other groups are untouched.
func (s *Store) ReorderChats(folderID, chatID string, newIndex int) {
	s.mu.Lock()

	members := s.group(folderID)
	from := -1
	for i, c := range members {
		if c.ID == chatID {
			from = i
			break
		}
	}
	if from < 0 {
		s.mu.Unlock()
		return
	}

	moved := members[from]
	members = append(members[:from], members[from+1:]...)

	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(members) {
		newIndex = len(members)
	}
	members = append(members[:newIndex], append([]*Chat{moved}, members[newIndex:]...)...)

	for i, c := range members {
		c.Order = i
	}

	s.commit(Event{Kind: ChatsReordered, ChatID: chatID, FolderID: folderID})
}
