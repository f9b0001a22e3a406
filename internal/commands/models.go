package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/foldchat/internal/models"
)

func newModelsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Long: `List the models foldchat can talk to. The selected model, marked with *,
is used for new chats and for sending messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				selected := a.settings.SelectedModel()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "\tID\tNAME\tPROVIDER\tPRICING")
				for _, m := range models.AvailableModels() {
					marker := ""
					if m.ID == selected {
						marker = "*"
					}
					_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						marker, m.ID, m.Name, m.Provider.DisplayName(), m.Pricing)
				}
				return w.Flush()
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "use <model-id>",
		Short: "Select the model for new chats and messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if err := a.settings.SetSelectedModel(args[0]); err != nil {
					return err
				}
				m, _ := models.FindModel(args[0])
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Selected %s (%s)\n", m.Name, m.Provider.DisplayName())
				return nil
			})
		},
	})
	return cmd
}
