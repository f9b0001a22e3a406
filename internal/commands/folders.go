package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/history"
)

func newFoldersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Manage folders",
		Long: `Create, rename and delete the folders chats are grouped in.
Folders are referenced by name, id or a unique id prefix.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List folders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app) error {
					out := cmd.OutOrStdout()
					folders := a.store.Folders()
					if len(folders) == 0 {
						_, _ = fmt.Fprintln(out, "No folders found.")
						return nil
					}
					w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
					_, _ = fmt.Fprintln(w, "ID\tNAME\tCHATS\tCOLLAPSED")
					for _, f := range folders {
						_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%v\n",
							shortID(f.ID), f.Name, len(a.store.ChatsInFolder(f.ID)), f.Collapsed)
					}
					return w.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a folder",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := strings.TrimSpace(args[0])
				if err := history.ValidateFolderName(name); err != nil {
					return fmt.Errorf("%s", apierrors.UserMessage(err))
				}
				return withApp(cmd, opts, func(a *app) error {
					id := a.store.CreateFolder(name)
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s (%s)\n", name, shortID(id))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "rename <folder> <name>",
			Short: "Rename a folder",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := strings.TrimSpace(args[1])
				if err := history.ValidateFolderName(name); err != nil {
					return fmt.Errorf("%s", apierrors.UserMessage(err))
				}
				return withApp(cmd, opts, func(a *app) error {
					id, err := resolveFolder(a.store, args[0])
					if err != nil {
						return err
					}
					a.store.UpdateFolder(id, history.FolderUpdate{Name: &name})
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Renamed folder to %s\n", name)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <folder>",
			Short: "Delete a folder; its chats become unfiled",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, opts, func(a *app) error {
					id, err := resolveFolder(a.store, args[0])
					if err != nil {
						return err
					}
					name := folderName(a.store, id)
					moved := len(a.store.ChatsInFolder(id))
					a.store.DeleteFolder(id)
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %s (%d chats now unfiled)\n", name, moved)
					return nil
				})
			},
		},
	)
	return cmd
}

// resolveFolder resolves a reference to an existing folder; the unfiled
// group is not a folder here
func resolveFolder(store *history.Store, ref string) (string, error) {
	id, err := history.NewResolver(store).ResolveFolder(ref)
	if err != nil {
		return "", err
	}
	if id == history.Unfiled {
		return "", fmt.Errorf("'%s' is not a folder", ref)
	}
	return id, nil
}
