package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/storecore/internal/catalog"
	"github.com/fastygo/storecore/internal/infrastructure/snapshot"
	"github.com/fastygo/storecore/internal/infrastructure/upstream"
)

func newCatalogCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Fetch or inspect catalog snapshots",
	}
	cmd.AddCommand(newCatalogFetchCmd(opts), newCatalogShowCmd(opts))
	return cmd
}

func newCatalogFetchCmd(opts *options) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the catalog from the upstream provider",
		Long: `Fetch the catalog from the upstream provider and report how many
products survive normalization. With --save the result is written to the
snapshot store the server warms from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			log := opts.logger()
			provider := upstream.NewClient(cfg.Catalog.UpstreamURL, cfg.Catalog.Limit, cfg.Catalog.FetchTimeout, log)

			var cacheOpts []catalog.Option
			if save {
				store, err := snapshot.Open(cfg.Catalog.SnapshotPath, "catalog", 0)
				if err != nil {
					return fmt.Errorf("open snapshot store: %w", err)
				}
				defer store.Close()
				cacheOpts = append(cacheOpts, catalog.WithStore(store))
			}

			cache := catalog.New(provider, cfg.Catalog.TTL, log, cacheOpts...)
			snap, err := cache.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d products at %s\n", snap.Len(), snap.FetchedAt.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Persist the snapshot")
	return cmd
}

func newCatalogShowCmd(opts *options) *cobra.Command {
	var (
		path    string
		idsOnly bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the latest persisted snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				cfg, err := opts.config()
				if err != nil {
					return err
				}
				path = cfg.Catalog.SnapshotPath
			}
			store, err := snapshot.Open(path, "catalog", 0)
			if err != nil {
				return fmt.Errorf("open snapshot store: %w", err)
			}
			defer store.Close()

			snap, err := store.Latest()
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			if snap == nil {
				return fmt.Errorf("no snapshot stored in %s", path)
			}

			out := cmd.OutOrStdout()
			if idsOnly {
				return json.NewEncoder(out).Encode(snap.IDs())
			}
			enc := json.NewEncoder(out)
			for _, p := range snap.Products {
				if err := enc.Encode(p.View()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Snapshot file (defaults to CATALOG_SNAPSHOT_PATH)")
	cmd.Flags().BoolVar(&idsOnly, "ids", false, "Print only product ids")
	return cmd
}
