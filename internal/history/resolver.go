package history

import (
	"fmt"
	"strconv"
	"strings"
)

// minIDPrefix is the shortest id prefix accepted as a reference
const minIDPrefix = 6

// Resolver resolves user-friendly references to chat and folder IDs
type Resolver struct {
	store *Store
}

// NewResolver creates a new reference resolver
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve converts a user-friendly reference to a chat ID
//
// Supported references:
//   - "@active" - the active chat
//   - "@last" - most recently updated chat
//   - "@first" - oldest chat in the list
//   - "1", "2", "3" - by index (1-based, newest first)
//   - id or id prefix (at least 6 characters)
//   - "substring" - match on title (error if multiple matches)
func (r *Resolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)

	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	chats := r.store.Chats()
	if len(chats) == 0 {
		return "", fmt.Errorf("no chats found")
	}

	switch strings.ToLower(ref) {
	case "@active":
		active := r.store.ActiveChat()
		if active == "" {
			return "", fmt.Errorf("no active chat")
		}
		return active, nil
	case "@last":
		latest := chats[0]
		for _, c := range chats[1:] {
			if c.UpdatedAt.After(latest.UpdatedAt) {
				latest = c
			}
		}
		return latest.ID, nil
	case "@first":
		return chats[len(chats)-1].ID, nil
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(chats) {
			return "", fmt.Errorf("index %d out of range (1-%d)", index, len(chats))
		}
		return chats[index-1].ID, nil
	}

	if id, ok := matchID(ref, chatIDs(chats)); ok {
		return id, nil
	}

	refLower := strings.ToLower(ref)
	var matches []Chat
	for _, c := range chats {
		if strings.Contains(strings.ToLower(c.Title), refLower) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no chat matching '%s'", ref)
	case 1:
		return matches[0].ID, nil
	default:
		var titles []string
		for _, m := range matches {
			titles = append(titles, fmt.Sprintf("'%s'", m.Title))
		}
		return "", fmt.Errorf("multiple chats match '%s': %s. Use ID or be more specific",
			ref, strings.Join(titles, ", "))
	}
}

// ResolveWithInfo resolves a reference and returns the chat
func (r *Resolver) ResolveWithInfo(ref string) (Chat, error) {
	id, err := r.Resolve(ref)
	if err != nil {
		return Chat{}, err
	}

	chat, ok := r.store.Chat(id)
	if !ok {
		return Chat{}, fmt.Errorf("chat not found: %s", id)
	}
	return chat, nil
}

// ResolveFolder converts a folder reference to a folder ID. "-" and
// "unfiled" resolve to Unfiled. Otherwise the reference is matched against
// ids, id prefixes and names (exact first, then substring).
func (r *Resolver) ResolveFolder(ref string) (string, error) {
	ref = strings.TrimSpace(ref)

	switch strings.ToLower(ref) {
	case "":
		return "", fmt.Errorf("empty folder reference")
	case "-", "unfiled":
		return Unfiled, nil
	}

	folders := r.store.Folders()
	ids := make([]string, len(folders))
	for i, f := range folders {
		ids[i] = f.ID
	}
	if id, ok := matchID(ref, ids); ok {
		return id, nil
	}

	refLower := strings.ToLower(ref)
	for _, f := range folders {
		if strings.ToLower(f.Name) == refLower {
			return f.ID, nil
		}
	}

	var matches []Folder
	for _, f := range folders {
		if strings.Contains(strings.ToLower(f.Name), refLower) {
			matches = append(matches, f)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no folder matching '%s'", ref)
	case 1:
		return matches[0].ID, nil
	default:
		return "", fmt.Errorf("multiple folders match '%s'. Use ID or the full name", ref)
	}
}

// matchID returns the id equal to ref, or the only id that ref prefixes
func matchID(ref string, ids []string) (string, bool) {
	for _, id := range ids {
		if id == ref {
			return id, true
		}
	}
	if len(ref) < minIDPrefix {
		return "", false
	}

	found := ""
	for _, id := range ids {
		if strings.HasPrefix(id, ref) {
			if found != "" {
				return "", false
			}
			found = id
		}
	}
	return found, found != ""
}

func chatIDs(chats []Chat) []string {
	ids := make([]string, len(chats))
	for i, c := range chats {
		ids[i] = c.ID
	}
	return ids
}

// ListAliases returns information about supported references
func ListAliases() string {
	return `Supported references:
  @active        The active chat
  @last          Most recently updated chat
  @first         Oldest chat in the list
  1, 2, 3        By index (1-based, from most recent)
  <id>           Chat ID or a unique prefix of at least 6 characters
  "text"         Search by title substring`
}
