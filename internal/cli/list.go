package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const filterHelp = `Filters are key=value pairs, ANDed together. Values that parse as JSON
keep their type (42, true, null, "42"); anything else is a string. A bare
value without '=' matches the id field.`

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list <collection> [filter...]",
		Aliases: []string{"find"},
		Short:   "List records matching all filters",
		Long: `List prints every record of the collection matching the filters, in
file order. An empty filter lists all records.

` + filterHelp + `

Example:
  bazaar list listings
  bazaar list bookings status=confirmed renterId=u1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(args[1:])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			recs, err := store.FindMany(args[0], filter)
			if err != nil {
				return storeError(err)
			}
			return a.printRecords(recs)
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id|filter...>",
		Short: "Print the first record matching all filters",
		Long: `Get prints the first record matching the filters and fails when none
matches.

` + filterHelp + `

Example:
  bazaar get users 0190f3b2-6c1e-7a51-9a3e-1f2d3c4b5a69
  bazaar get users email=a@b.c`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(args[1:])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			rec, err := store.FindUnique(args[0], filter)
			if err != nil {
				return storeError(err)
			}
			if rec == nil {
				return userError(fmt.Errorf("no record in %s matches %v", args[0], args[1:]))
			}
			return a.printRecord(rec)
		},
	}
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count <collection> [filter...]",
		Short: "Count records matching all filters",
		Long:  "Count prints the number of records matching the filters.\n\n" + filterHelp,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(args[1:])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			n, err := store.Count(args[0], filter)
			if err != nil {
				return storeError(err)
			}
			if a.flags.jsonMode {
				return a.printJSON(map[string]int{"count": n})
			}
			fmt.Fprintln(a.stdout, n)
			return nil
		},
	}
}
