package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and every built-in collection",
		Long: `Init creates the configuration and data directories and writes a
header-only file for each built-in collection that has no file yet.
Existing collections are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if save {
				if err := writeConfig(a.dirs.Config, a.cfg); err != nil {
					return sysError(fmt.Errorf("write config: %w", err))
				}
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.Initialize(); err != nil {
				return storeError(fmt.Errorf("initialize: %w", err))
			}
			if a.flags.jsonMode {
				return a.printJSON(map[string]string{
					"config_dir": a.dirs.Config,
					"data_dir":   a.dirs.Data,
				})
			}
			fmt.Fprintln(a.stdout, "bazaar initialized")
			fmt.Fprintln(a.stdout, "  config:", a.dirs.Config)
			fmt.Fprintln(a.stdout, "  data:  ", a.dirs.Data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the resolved settings to config.yaml")
	return cmd
}

func newCleanupCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove the file of every built-in collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return userError(errors.New("cleanup deletes all built-in collections; pass --yes to confirm"))
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.Cleanup(); err != nil {
				return sysError(fmt.Errorf("cleanup: %w", err))
			}
			if !a.flags.jsonMode {
				fmt.Fprintln(a.stdout, "collections removed from", a.dirs.Data)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal")
	return cmd
}
