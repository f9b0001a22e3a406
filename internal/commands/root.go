// Package commands provides the foldchat command line: the root command that
// starts the TUI and the subcommands that manage chats, folders and models
// from scripts.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/foldchat/internal/tui"
)

// Version info (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// options holds the persistent flags shared by every command
type options struct {
	dataDir   string
	storage   string
	logLevel  string
	logStderr bool
	model     string
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "foldchat",
		Short: "Terminal chat client for hosted AI models",
		Long: `foldchat is a terminal chat client for OpenRouter and AIML models.
Chats are kept on disk, can be grouped into folders and reordered by
dragging them in the sidebar.

Examples:
  foldchat                              Start the interactive client
  foldchat --model mistral-7b           Start with a different model
  foldchat chats list                   List chats by folder
  foldchat chats move @active Work      Move the active chat into "Work"
  foldchat folders create Research      Create a folder
  foldchat models                       List available models`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "foldchat %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runTUI(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", "", "Data directory (default ~/.foldchat)")
	flags.StringVar(&opts.storage, "storage", "", "Storage backend: file or sqlite (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	flags.BoolVar(&opts.logStderr, "log-stderr", false, "Also write logs to stderr (not with the TUI)")
	flags.StringVarP(&opts.model, "model", "m", "", "Select a model before running (e.g. mistral-7b)")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(newChatsCmd(opts))
	cmd.AddCommand(newFoldersCmd(opts))
	cmd.AddCommand(newModelsCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

var rootCmd = NewRootCmd()

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, opts *options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("foldchat needs an interactive terminal; see 'foldchat --help' for scriptable commands")
	}
	if opts.logStderr {
		return fmt.Errorf("--log-stderr cannot be used with the interactive client")
	}

	a, err := openApp(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	deps, err := a.tuiDeps()
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), deps)
}
