package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newUpdateCmd(a *app) *cobra.Command {
	var patch string
	cmd := &cobra.Command{
		Use:   "update <collection> <id|filter...> --set <json|->",
		Short: "Merge fields into the first matching record",
		Long: `Update merges the JSON object given with --set into the first record
matching the filters. Fields not named in the object keep their values and
updatedAt is refreshed.

` + filterHelp + `

Example:
  bazaar update listings 0190f3b2-6c1e-7a51-9a3e-1f2d3c4b5a69 --set '{"price":60}'
  bazaar update bookings status=pending --set '{"status":"confirmed"}'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if patch == "" {
				return userError(errors.New("update: --set is required"))
			}
			filter, err := parseFilter(args[1:])
			if err != nil {
				return err
			}
			data, err := readRecord(patch, cmd.InOrStdin())
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			rec, err := store.Update(args[0], filter, data)
			if err != nil {
				return storeError(err)
			}
			a.logger.Debug("record updated", "collection", args[0], "id", rec.ID())
			return a.printRecord(rec)
		},
	}
	cmd.Flags().StringVar(&patch, "set", "", `JSON object of fields to change, or "-" for stdin`)
	return cmd
}
