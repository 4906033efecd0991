// Package commands implements storectl, the operator CLI for inspecting the
// catalog snapshot, calling engines by hand and managing the schema.
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/internal/config"
	"github.com/fastygo/storecore/pkg/logger"
)

type options struct {
	verbose bool
}

// NewRootCmd builds the command tree. Subcommands load configuration from
// the environment lazily so --help works without it.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:     "storectl",
		Short:   "Operate a storecore deployment",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr at debug level")

	root.AddCommand(newCatalogCmd(opts), newEngineCmd(opts), newMigrateCmd(opts))
	return root
}

func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := logger.New(logger.Config{Level: "debug", Encoding: "console"})
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func (o *options) config() (*config.Config, error) {
	return config.Load()
}
