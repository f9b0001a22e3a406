package history

import (
	"strings"

	apierrors "github.com/diogo/foldchat/internal/errors"
)

// FolderUpdate holds the folder fields to change; nil fields are left alone
type FolderUpdate struct {
	Name      *string
	Collapsed *bool
}

// ValidateFolderName rejects empty and whitespace-only names. The store does
// not call it; callers check names before CreateFolder or a rename.
func ValidateFolderName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apierrors.NewValidationError("name", "Folder name is required")
	}
	return nil
}

// CreateFolder appends a new, expanded folder and returns its id
func (s *Store) CreateFolder(name string) string {
	s.mu.Lock()

	folder := &Folder{
		ID:        s.newID(),
		Name:      name,
		CreatedAt: s.now(),
	}
	s.folders = append(s.folders, folder)

	s.log.Debug().Str("folder", folder.ID).Str("name", name).Msg("Created folder")
	s.commit(Event{Kind: FolderCreated, FolderID: folder.ID})
	return folder.ID
}

// UpdateFolder merges upd into the folder
func (s *Store) UpdateFolder(id string, upd FolderUpdate) {
	s.mu.Lock()

	folder := s.findFolder(id)
	if folder == nil || (upd.Name == nil && upd.Collapsed == nil) {
		s.mu.Unlock()
		return
	}

	if upd.Name != nil {
		folder.Name = *upd.Name
	}
	if upd.Collapsed != nil {
		folder.Collapsed = *upd.Collapsed
	}

	s.commit(Event{Kind: FolderUpdated, FolderID: id})
}

// DeleteFolder removes the folder. Its chats become unfiled and keep their
// order values, which may tie with existing unfiled chats.
func (s *Store) DeleteFolder(id string) {
	s.mu.Lock()

	idx := -1
	for i, f := range s.folders {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.folders = append(s.folders[:idx], s.folders[idx+1:]...)

	released := 0
	for _, c := range s.chats {
		if c.FolderID == id {
			c.FolderID = Unfiled
			released++
		}
	}

	s.log.Debug().Str("folder", id).Int("chats_released", released).Msg("Deleted folder")
	s.commit(Event{Kind: FolderDeleted, FolderID: id})
}
