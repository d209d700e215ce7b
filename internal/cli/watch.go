package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [collection...]",
		Short: "Print changes to collection files until interrupted",
		Long: `Watch prints one line per change to a collection file, whichever
process makes it. With arguments, only the named collections are reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer stop()

			store, err := a.openStore()
			if err != nil {
				return err
			}
			w, err := store.Watch()
			if err != nil {
				return sysError(err)
			}
			defer w.Close()

			only := make(map[string]bool, len(args))
			for _, name := range args {
				only[name] = true
			}
			a.logger.Debug("watching", "data_dir", a.dirs.Data)

			enc := json.NewEncoder(a.stdout)
			for {
				select {
				case <-ctx.Done():
					return nil
				case c, ok := <-w.Changes():
					if !ok {
						return nil
					}
					if len(only) > 0 && !only[c.Collection] {
						continue
					}
					if a.flags.jsonMode {
						if err := enc.Encode(c); err != nil {
							return sysError(err)
						}
						continue
					}
					fmt.Fprintf(a.stdout, "%s %s\n", c.Op, c.Collection)
				}
			}
		},
	}
}
