package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Snapshot every collection into a SQLite database",
		Long: `Export writes one SQLite table per collection, with a column per field,
so the data can be queried with SQL. An existing output file is replaced.

Example:
  bazaar export --out snapshot.db
  sqlite3 snapshot.db 'SELECT title, price FROM listings WHERE price < 100'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(out)
			if err != nil {
				return userError(err)
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.Export(cmd.Context(), path); err != nil {
				return sysError(fmt.Errorf("export: %w", err))
			}
			if a.flags.jsonMode {
				return a.printJSON(map[string]string{"path": path})
			}
			fmt.Fprintln(a.stdout, "exported to", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "bazaar.db", "SQLite file to write")
	return cmd
}
