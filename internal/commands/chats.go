package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/foldchat/internal/history"
	"github.com/diogo/foldchat/internal/models"
)

// shortIDLen is how much of an id the tables print; the resolver accepts
// any unique prefix of at least six characters
const shortIDLen = 8

// withApp opens the data directory for the duration of fn
func withApp(cmd *cobra.Command, opts *options, fn func(a *app) error) error {
	a, err := openApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}

func newChatsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Manage chats",
		Long: `List, inspect and organise your chats without opening the TUI.

` + history.ListAliases(),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List chats grouped by folder, in sidebar order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app) error {
					return printChats(cmd.OutOrStdout(), a.store)
				})
			},
		},
		&cobra.Command{
			Use:   "show <ref>",
			Short: "Show a chat's messages",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app) error {
					chat, err := history.NewResolver(a.store).ResolveWithInfo(args[0])
					if err != nil {
						return err
					}
					printChat(cmd.OutOrStdout(), chat, folderName(a.store, chat.FolderID))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <ref>",
			Short: "Delete a chat",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app) error {
					chat, err := history.NewResolver(a.store).ResolveWithInfo(args[0])
					if err != nil {
						return err
					}
					a.store.DeleteChat(chat.ID)
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted chat: %s\n", chat.Title)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rename <ref> <title>",
			Short: "Rename a chat",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app) error {
					id, err := history.NewResolver(a.store).Resolve(args[0])
					if err != nil {
						return err
					}
					title := args[1]
					if title == "" {
						return fmt.Errorf("title cannot be empty")
					}
					a.store.UpdateChat(id, history.ChatUpdate{Title: &title})
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Renamed chat to: %s\n", title)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "move <ref> <folder>",
			Short: `Move a chat to the end of a folder ("-" or "unfiled" for none)`,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app) error {
					r := history.NewResolver(a.store)
					id, err := r.Resolve(args[0])
					if err != nil {
						return err
					}
					folderID, err := r.ResolveFolder(args[1])
					if err != nil {
						return err
					}
					a.store.MoveChat(id, folderID)
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Moved chat to %s\n", folderName(a.store, folderID))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "reorder <ref> <position>",
			Short: "Move a chat to a position (1-based) within its folder",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app) error {
					chat, err := history.NewResolver(a.store).ResolveWithInfo(args[0])
					if err != nil {
						return err
					}
					pos, err := strconv.Atoi(args[1])
					if err != nil || pos < 1 {
						return fmt.Errorf("invalid position %q: want a number from 1", args[1])
					}
					a.store.ReorderChats(chat.FolderID, chat.ID, pos-1)
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Moved %q to position %d in %s\n",
						chat.Title, a.store.IndexInGroup(chat.ID)+1, folderName(a.store, chat.FolderID))
					return nil
				})
			},
		},
		newChatsSearchCmd(opts),
		newChatsExportCmd(opts),
	)
	return cmd
}

func newChatsSearchCmd(opts *options) *cobra.Command {
	var content bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search chat titles (and messages with --content)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				results := a.store.SearchChats(args[0], content)
				out := cmd.OutOrStdout()
				if len(results) == 0 {
					_, _ = fmt.Fprintln(out, "No chats found.")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "ID\tTITLE\tMATCH")
				for _, r := range results {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", shortID(r.Chat.ID), truncateTitle(r.Chat.Title, 40), r.MatchSnippet)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVarP(&content, "content", "c", false, "Also search message content")
	return cmd
}

func newChatsExportCmd(opts *options) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export <ref>",
		Short: "Export a chat as markdown or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := history.ParseExportFormat(format)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				id, err := history.NewResolver(a.store).Resolve(args[0])
				if err != nil {
					return err
				}
				data, err := a.store.Export(id, f)
				if err != nil {
					return err
				}
				if output == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o600); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Export format: markdown or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

// printChats lists every group in sidebar order: each folder, then the
// unfiled chats
func printChats(out io.Writer, store *history.Store) error {
	if len(store.Chats()) == 0 && len(store.Folders()) == 0 {
		_, _ = fmt.Fprintln(out, "No chats found.")
		return nil
	}

	active := store.ActiveChat()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FOLDER\t#\tID\tTITLE\tMODEL\tMESSAGES\tUPDATED")

	printGroup := func(name string, chats []history.Chat) {
		if len(chats) == 0 {
			_, _ = fmt.Fprintf(w, "%s\t-\t\t(empty)\t\t\t\n", name)
			return
		}
		for i, c := range chats {
			marker := " "
			if c.ID == active {
				marker = "*"
			}
			_, _ = fmt.Fprintf(w, "%s\t%d\t%s%s\t%s\t%s\t%d\t%s\n",
				name, i+1, shortID(c.ID), marker, truncateTitle(c.Title, 40), modelName(c.Model),
				len(c.Messages), history.FormatRelativeTime(c.UpdatedAt))
		}
	}

	for _, f := range store.Folders() {
		printGroup(f.Name, store.ChatsInFolder(f.ID))
	}
	printGroup("(unfiled)", store.ChatsInFolder(history.Unfiled))
	return w.Flush()
}

func printChat(out io.Writer, chat history.Chat, folder string) {
	_, _ = fmt.Fprintf(out, "ID: %s\n", chat.ID)
	_, _ = fmt.Fprintf(out, "Title: %s\n", chat.Title)
	_, _ = fmt.Fprintf(out, "Folder: %s\n", folder)
	_, _ = fmt.Fprintf(out, "Model: %s\n", modelName(chat.Model))
	_, _ = fmt.Fprintf(out, "Created: %s\n", chat.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(out, "Updated: %s\n", chat.UpdatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(out, "Messages: %d\n\n", len(chat.Messages))

	for i, msg := range chat.Messages {
		role := "You"
		if msg.Role == models.RoleAssistant {
			role = "Assistant"
		}
		_, _ = fmt.Fprintf(out, "[%d] %s:\n  %s\n\n", i+1, role, msg.Content)
	}
}

func folderName(store *history.Store, folderID string) string {
	if folderID == history.Unfiled {
		return "(unfiled)"
	}
	if f, ok := store.Folder(folderID); ok {
		return f.Name
	}
	return folderID
}

func modelName(id string) string {
	if m, ok := models.FindModel(id); ok {
		return m.Name
	}
	return id
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func truncateTitle(title string, limit int) string {
	runes := []rune(title)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return title
}
