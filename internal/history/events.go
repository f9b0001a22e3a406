package history

// EventKind names the mutation that produced an Event
type EventKind int

const (
	ChatCreated EventKind = iota
	ChatUpdated
	ChatDeleted
	MessageAdded
	ChatMoved
	ChatsReordered
	ActiveChanged
	FolderCreated
	FolderUpdated
	FolderDeleted
)

func (k EventKind) String() string {
	switch k {
	case ChatCreated:
		return "chat_created"
	case ChatUpdated:
		return "chat_updated"
	case ChatDeleted:
		return "chat_deleted"
	case MessageAdded:
		return "message_added"
	case ChatMoved:
		return "chat_moved"
	case ChatsReordered:
		return "chats_reordered"
	case ActiveChanged:
		return "active_changed"
	case FolderCreated:
		return "folder_created"
	case FolderUpdated:
		return "folder_updated"
	case FolderDeleted:
		return "folder_deleted"
	default:
		return "unknown"
	}
}

// Event describes a committed mutation
type Event struct {
	Kind     EventKind
	ChatID   string
	FolderID string
}

type listener struct {
	id int
	fn func(Event)
}

// Subscribe registers fn to be called after every committed mutation.
// Listeners run in subscription order, synchronously on the mutating
// goroutine and after the store lock is released, so they may read from the
// store. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.listenerMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(ev Event) {
	s.listenerMu.RLock()
	listeners := append([]listener{}, s.listeners...)
	s.listenerMu.RUnlock()

	for _, l := range listeners {
		l.fn(ev)
	}
}
