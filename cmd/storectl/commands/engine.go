package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/storecore/internal/config"
	"github.com/fastygo/storecore/internal/engine"
)

type engineFlags struct {
	dir     string
	timeout time.Duration
}

func (f *engineFlags) registry(opts *options) (*engine.Registry, time.Duration, error) {
	if f.dir != "" {
		return engine.LoadDir(f.dir, config.EngineNames), f.timeout, nil
	}
	cfg, err := opts.config()
	if err != nil {
		return nil, 0, err
	}
	timeout := f.timeout
	if timeout <= 0 {
		timeout = cfg.Engines.Timeout
	}
	return engine.Build(cfg.Engines.Dir, config.EngineNames, cfg.Engines.Remote, timeout), timeout, nil
}

func newEngineCmd(opts *options) *cobra.Command {
	flags := &engineFlags{}
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "List or invoke scoring engines",
	}
	cmd.PersistentFlags().StringVar(&flags.dir, "dir", "", "Engine directory (defaults to ENGINE_DIR, remote engines ignored)")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "Invocation deadline (defaults to ENGINE_TIMEOUT)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the engines the server dispatches to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, _, err := flags.registry(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range registry.Names() {
				e, _ := registry.Lookup(name)
				switch impl := e.(type) {
				case *engine.Process:
					fmt.Fprintf(out, "%s\t%s\n", name, impl.Path)
				case *engine.Remote:
					fmt.Fprintf(out, "%s\t%s\n", name, impl.URL)
				default:
					fmt.Fprintln(out, name)
				}
			}
			return nil
		},
	})

	var payloadPath string
	invoke := &cobra.Command{
		Use:   "invoke ENGINE [ARG...]",
		Short: "Run one engine with a payload and print its JSON result",
		Long: `Run one engine through the same dispatcher the server uses. The
payload is read from --payload, or from stdin when --payload is "-".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, timeout, err := flags.registry(opts)
			if err != nil {
				return err
			}
			payload, err := readPayload(cmd.InOrStdin(), payloadPath)
			if err != nil {
				return err
			}

			dispatcher := engine.NewDispatcher(registry, engine.Config{Timeout: timeout, MaxConcurrent: 1}, opts.logger())
			doc, err := dispatcher.Invoke(cmd.Context(), args[0], args[1:], payload)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
	invoke.Flags().StringVarP(&payloadPath, "payload", "p", "", `Payload file, or "-" for stdin`)
	cmd.AddCommand(invoke)
	return cmd
}

func readPayload(stdin io.Reader, path string) ([]byte, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return io.ReadAll(stdin)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		return data, nil
	}
}
