package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diogo/foldchat/internal/models"
)

// ExportFormat represents the format for exporting chats
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseExportFormat accepts "markdown", "md" and "json"
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format: %s", s)
	}
}

// Export renders a chat in the given format
func (s *Store) Export(id string, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatJSON:
		return s.ExportToJSON(id)
	default:
		md, err := s.ExportToMarkdown(id)
		return []byte(md), err
	}
}

// ExportToMarkdown exports a chat to Markdown format
func (s *Store) ExportToMarkdown(id string) (string, error) {
	chat, ok := s.Chat(id)
	if !ok {
		return "", fmt.Errorf("chat not found: %s", id)
	}

	folderName := ""
	if chat.FolderID != Unfiled {
		if f, ok := s.Folder(chat.FolderID); ok {
			folderName = f.Name
		}
	}

	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(chat.Title)
	sb.WriteString("\n\n")

	sb.WriteString("**Model:** ")
	sb.WriteString(chat.Model)
	sb.WriteString("\n")
	if folderName != "" {
		sb.WriteString("**Folder:** ")
		sb.WriteString(folderName)
		sb.WriteString("\n")
	}
	sb.WriteString("**Created:** ")
	sb.WriteString(chat.CreatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString("**Updated:** ")
	sb.WriteString(chat.UpdatedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(chat.Messages)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range chat.Messages {
		role := "User"
		if msg.Role == models.RoleAssistant {
			role = "Assistant"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(chat.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String(), nil
}

// ExportToJSON exports a chat as indented JSON, in the persisted shape
func (s *Store) ExportToJSON(id string) ([]byte, error) {
	chat, ok := s.Chat(id)
	if !ok {
		return nil, fmt.Errorf("chat not found: %s", id)
	}
	return json.MarshalIndent(chat, "", "  ")
}

// SearchResult represents a search match in chats
type SearchResult struct {
	Chat         Chat
	MatchSnippet string // Snippet where the term was found
	MatchField   string // "title" or "content"
	MatchIndex   int    // Message index if MatchField is "content", -1 for title
}

// SearchChats searches for a query in chat titles and optionally content
func (s *Store) SearchChats(query string, searchContent bool) []SearchResult {
	queryLower := strings.ToLower(query)
	var results []SearchResult

	for _, chat := range s.Chats() {
		if strings.Contains(strings.ToLower(chat.Title), queryLower) {
			results = append(results, SearchResult{
				Chat:         chat,
				MatchSnippet: chat.Title,
				MatchField:   "title",
				MatchIndex:   -1,
			})
			continue
		}

		if !searchContent {
			continue
		}
		for i, msg := range chat.Messages {
			if strings.Contains(strings.ToLower(msg.Content), queryLower) {
				results = append(results, SearchResult{
					Chat:         chat,
					MatchSnippet: extractSnippet(msg.Content, query, 100),
					MatchField:   "content",
					MatchIndex:   i,
				})
				break // Only one match per chat
			}
		}
	}

	return results
}

// extractSnippet extracts a snippet around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	idx := strings.Index(strings.ToLower(content), strings.ToLower(query))
	if idx == -1 {
		if len(content) > maxLen {
			return content[:maxLen] + "..."
		}
		return content
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(query) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(content) {
		end = len(content)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}

// FormatRelativeTime formats a time as a short relative string like "2h ago"
func FormatRelativeTime(t time.Time) string {
	return formatRelativeTime(t, time.Now())
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	case diff < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(diff.Hours()/24/7))
	default:
		return t.Format("2006-01-02")
	}
}
