package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCollectionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List collections stored in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			names, err := store.Collections()
			if err != nil {
				return sysError(err)
			}
			if a.flags.jsonMode {
				if names == nil {
					names = []string{}
				}
				return a.printJSON(names)
			}
			for _, name := range names {
				fmt.Fprintln(a.stdout, name)
			}
			return nil
		},
	}
}
