// Package cli implements the bazaar command-line interface over the
// flat-file record store.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bazaar/internal/flatfile"
	"github.com/mesh-intelligence/bazaar/internal/paths"
	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags  rootFlags
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	dirs paths.Dirs
	cfg  types.Config
}

// NewRootCmd creates the top-level "bazaar" command with global flags and
// all subcommands registered. Output goes to stdout, logs and errors to
// stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "bazaar",
		Short: "Flat-file record store for a rental marketplace",
		Long: `bazaar stores marketplace records (users, listings, bookings, messages,
reviews, payments) as one CSV file per collection and offers create, find,
update, delete and count operations over them.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return userError(err)
	})

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/bazaar)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.bazaar-db)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug messages")

	root.AddCommand(
		newVersionCmd(a),
		newInitCmd(a),
		newCleanupCmd(a),
		newCreateCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newCountCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newCollectionsCmd(a),
		newExportCmd(a),
		newWatchCmd(a),
	)
	return root
}

// Execute runs the root command with os.Args and returns the process exit
// code.
func Execute() int {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bazaar:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// setup resolves directories, loads config.yaml and installs the logger.
// It runs before every subcommand except version.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.logger = newLogger(a.stderr, a.flags.verbose)
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.dirs, err = paths.Resolve(paths.Overrides{
		ConfigDirFlag: configDir,
		DataDirFlag:   a.flags.dataDir,
		DataDirConfig: v.GetString(cfgKeyDataDir),
	})
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	a.cfg, err = storeConfig(v, a.dirs.Data)
	if err != nil {
		return userError(err)
	}
	a.logger.Debug("configuration loaded", "config_dir", a.dirs.Config, "data_dir", a.dirs.Data)
	return nil
}

// openStore creates the store for the resolved configuration.
func (a *app) openStore() (*flatfile.Store, error) {
	s, err := flatfile.NewStore(a.cfg, flatfile.WithLogger(a.logger))
	if err != nil {
		return nil, sysError(fmt.Errorf("open store: %w", err))
	}
	return s, nil
}

// cliError carries the exit code for an error.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func userError(err error) error { return &cliError{code: exitUserError, err: err} }
func sysError(err error) error  { return &cliError{code: exitSysError, err: err} }

// exitCode maps err to a process exit code. Store errors caused by the
// caller's input are user errors; unclassified errors default to user
// errors, which covers cobra's argument validation.
func exitCode(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}

// storeError classifies an error returned by a store operation.
func storeError(err error) error {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidCollection),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidFilter),
		errors.Is(err, types.ErrDuplicateID),
		errors.Is(err, types.ErrHeaderlessUnknown):
		return userError(err)
	}
	return sysError(err)
}
