// Package cli implements the devicemap command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"devicemap/internal/config"
	"devicemap/internal/logging"
)

var (
	version = "dev" // semantic version, set via ldflags
	commit  = ""    // git commit SHA
	date    = ""    // build timestamp
)

// SetVersion sets the version information reported by `devicemap version`
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

type ctxKey int

const stateKey ctxKey = iota

// state is what PersistentPreRunE prepares for every subcommand
type state struct {
	cfg     *config.Config
	cfgPath string
	logger  *zap.Logger
}

func stateFrom(ctx context.Context) *state {
	s, _ := ctx.Value(stateKey).(*state)
	return s
}

// RootCommand builds the command tree. out receives command output.
func RootCommand(out io.Writer) *cobra.Command {
	var (
		cfgPath string
		verbose bool
	)

	root := &cobra.Command{
		Use:           "devicemap",
		Short:         "devicemap records network devices and the connections between them",
		Long:          `devicemap keeps an inventory of network devices, connection types and directed connections in SQLite and serves them as a JSON API and a vis-network graph.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg  *config.Config
				path string
				err  error
			)
			if cfgPath != "" {
				cfg, path, err = config.LoadFromPath(cfgPath)
			} else {
				cfg, path, err = config.Load()
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}

			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, stateKey, &state{cfg: cfg, cfgPath: path, logger: logger}))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if s := stateFrom(cmd.Context()); s != nil {
				_ = s.logger.Sync()
			}
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (yaml or toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newHashPasswordCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version needs no config or logger
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRun: func(cmd *cobra.Command, args []string) {},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "devicemap %s\n", version)
			if commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commit)
			}
			if date != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", date)
			}
			return nil
		},
	}
}
