package cli

import (
	"github.com/spf13/cobra"
)

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <collection> <json|->",
		Short: "Add a record to a collection",
		Long: `Create appends a record given as a JSON object, or read from stdin
when the argument is "-". Missing id, createdAt and updatedAt fields are
filled in. The stored record is printed as a later read returns it.

Example:
  bazaar create listings '{"title":"Tent","price":50}'
  echo '{"email":"a@b.c"}' | bazaar create users -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readRecord(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			rec, err := store.Create(args[0], data)
			if err != nil {
				return storeError(err)
			}
			a.logger.Debug("record created", "collection", args[0], "id", rec.ID())
			return a.printRecord(rec)
		},
	}
}
