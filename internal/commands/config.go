package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/foldchat/internal/config"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the configuration file",
		Long: `foldchat reads config.json from the data directory. Missing settings use
defaults. API keys are read from the environment or a .env file:

  ` + config.EnvOpenRouterKey + `, ` + config.EnvAIMLKey + `,
  ` + config.EnvSupabaseURL + `, ` + config.EnvSupabaseAnonKey,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ResolveDataDir(opts.dataDir)
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig(dir)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "# %s\n%s\n", config.GetConfigPath(dir), data)

			creds := config.LoadCredentials(dir, zerolog.Nop())
			if missing := creds.Missing(cfg); len(missing) > 0 {
				_, _ = fmt.Fprintf(out, "\nMissing environment variables: %v\n", missing)
			}
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.json with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ResolveDataDir(opts.dataDir)
			if err != nil {
				return err
			}
			path := config.GetConfigPath(dir)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveConfig(dir, config.DefaultConfig()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
