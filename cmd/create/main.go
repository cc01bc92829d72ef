package main

import (
	"context"
	"fmt"
	"os"

	"github.com/anrid/japan-population/pkg/config"
	"github.com/anrid/japan-population/pkg/report"
	"github.com/anrid/japan-population/pkg/stats"
	"github.com/anrid/japan-population/pkg/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath string
		out        string
		codes      []int
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "create",
		Short: "Download prefecture population data into an .xlsx workbook",
		Long: `Downloads population composition data for the given prefectures (all 47
by default) and writes it in the long format "show --workbook" reads.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log, err := config.NewLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			client := stats.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, log)
			prefs, err := client.Prefectures(ctx)
			if err != nil {
				return fmt.Errorf("%w: %v", stats.ErrCatalogUnavailable, err)
			}

			if len(codes) == 0 {
				for _, p := range prefs {
					codes = append(codes, p.Code)
				}
			}

			st := store.New(client, store.WithLogger(log), store.WithBatchWidth(cfg.Store.BatchWidth))
			batch := st.FetchMany(ctx, codes)
			for _, f := range batch.Failures {
				log.Warn("Skipping prefecture", zap.Int("code", f.Code), zap.Error(f.Cause))
			}

			data := stats.Dataset{Prefectures: prefs, Records: st.Snapshot()}
			if err := report.Export(out, data, codes, nil); err != nil {
				return err
			}

			log.Info("Wrote workbook",
				zap.String("path", out),
				zap.Int("prefectures", len(batch.Records)),
				zap.Int("failures", len(batch.Failures)))
			return batch.Err()
		},
	}

	root.Flags().StringVar(&configPath, "config", "config.yaml", "config file")
	root.Flags().StringVarP(&out, "out", "o", "/tmp/japan-population.xlsx", "output workbook")
	root.Flags().IntSliceVar(&codes, "codes", nil, "prefecture codes to download (default all)")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
