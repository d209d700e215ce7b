package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bazaar/pkg/types"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <id|filter...>",
		Short: "Remove the first matching record",
		Long:  "Delete removes the first record matching the filters and prints it.\n\n" + filterHelp,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(args[1:])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			rec, err := store.Delete(args[0], filter)
			if err != nil {
				return storeError(err)
			}
			if a.flags.jsonMode {
				return a.printJSON(rec)
			}
			fmt.Fprintf(a.stdout, "Deleted %s/%s\n", args[0], textValue(rec[types.FieldID]))
			return nil
		},
	}
}
