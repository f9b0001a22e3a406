// Package history provides the local conversation store: chats, folders,
// their display order and the active chat pointer.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/diogo/foldchat/internal/models"
	"github.com/diogo/foldchat/internal/persist"
)

// Unfiled is the folder reference of chats that live outside any folder
const Unfiled = ""

// DefaultChatTitle is the title of a chat with no user message yet
const DefaultChatTitle = "New Chat"

// Chat is one conversation thread
type Chat struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Messages  []models.Message `json:"messages"`
	Model     string           `json:"model"`
	FolderID  string           `json:"folder_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Order     int              `json:"order"`
}

// Folder is a named grouping of chats
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Collapsed bool      `json:"collapsed"`
}

// snapshot is the persisted form stored under persist.KeyChatStorage
type snapshot struct {
	Chats      []*Chat   `json:"chats"`
	Folders    []*Folder `json:"folders"`
	ActiveChat string    `json:"active_chat,omitempty"`
}

// Store owns all chats and folders. All methods are safe for concurrent use;
// each mutation runs inside one critical section and persists the full
// snapshot before the lock is released.
type Store struct {
	mu      sync.Mutex
	chats   []*Chat // global list, newest first
	folders []*Folder
	active  string

	kv    persist.KV
	log   zerolog.Logger
	now   func() time.Time
	newID func() string

	listenerMu sync.RWMutex
	listeners  []listener
	nextSubID  int
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithLogger sets the logger used for persistence failures and ignored calls
func WithLogger(log zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.log = log.With().Str("component", "history").Logger()
	}
}

// WithClock overrides time.Now, used by tests
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides the uuid generator, used by tests
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) {
		s.newID = newID
	}
}

// NewStore creates a store and rehydrates it from kv
func NewStore(kv persist.KV, opts ...StoreOption) (*Store, error) {
	s := &Store{
		kv:    kv,
		log:   zerolog.Nop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := s.kv.Get(persist.KeyChatStorage)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read chat storage: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse chat storage: %w", err)
	}

	for _, c := range snap.Chats {
		if c == nil {
			continue
		}
		if c.Messages == nil {
			c.Messages = []models.Message{}
		}
		s.chats = append(s.chats, c)
	}
	for _, f := range snap.Folders {
		if f != nil {
			s.folders = append(s.folders, f)
		}
	}
	s.active = snap.ActiveChat
	if s.active != "" && s.findChat(s.active) == nil {
		s.active = ""
	}

	s.log.Debug().
		Int("chats", len(s.chats)).
		Int("folders", len(s.folders)).
		Msg("Loaded chat storage")
	return nil
}

// save writes the full snapshot. Must be called with s.mu held. A failed
// write is logged and the in-memory state stays authoritative.
func (s *Store) save() {
	data, err := json.Marshal(snapshot{
		Chats:      s.chats,
		Folders:    s.folders,
		ActiveChat: s.active,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to marshal chat storage")
		return
	}
	if err := s.kv.Put(persist.KeyChatStorage, data); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist chat storage")
	}
}

// commit persists, releases the lock and notifies listeners with ev
func (s *Store) commit(ev Event) {
	s.save()
	s.mu.Unlock()
	s.notify(ev)
}

func (s *Store) findChat(id string) *Chat {
	for _, c := range s.chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *Store) findFolder(id string) *Folder {
	for _, f := range s.folders {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Chats returns copies of all chats in global list order (newest first)
func (s *Store) Chats() []Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Chat, len(s.chats))
	for i, c := range s.chats {
		out[i] = c.clone()
	}
	return out
}

// Chat returns a copy of the chat with the given id
func (s *Store) Chat(id string) (Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findChat(id)
	if c == nil {
		return Chat{}, false
	}
	return c.clone(), true
}

// Folders returns copies of all folders in creation order
func (s *Store) Folders() []Folder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Folder, len(s.folders))
	for i, f := range s.folders {
		out[i] = *f
	}
	return out
}

// Folder returns a copy of the folder with the given id
func (s *Store) Folder(id string) (Folder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.findFolder(id)
	if f == nil {
		return Folder{}, false
	}
	return *f, true
}

// ActiveChat returns the active chat id, or "" when none is active
func (s *Store) ActiveChat() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (c *Chat) clone() Chat {
	out := *c
	out.Messages = make([]models.Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
