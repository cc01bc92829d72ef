package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anrid/japan-population/pkg/config"
	"github.com/anrid/japan-population/pkg/generative"
	"github.com/anrid/japan-population/pkg/query"
	"github.com/anrid/japan-population/pkg/report"
	"github.com/anrid/japan-population/pkg/selection"
	"github.com/anrid/japan-population/pkg/stats"
	"github.com/anrid/japan-population/pkg/store"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool
	workbook   string
	topics     bool
	dump       bool
	series     string
	exportPath string
)

func main() {
	root := &cobra.Command{
		Use:   "show <query>",
		Short: "Answer a population question about Japan's prefectures",
		Example: `  show "関西地方を選択"
  show --series 老年人口 "九州で年少人口が少ない県3選"
  show --workbook population.xlsx "人口が多い県5つ"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runQuery,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.Flags().StringVar(&workbook, "workbook", "", "read population data from an .xlsx/.xls file instead of the API")
	root.Flags().BoolVar(&topics, "topics", false, "answer decline, aging and workforce questions without the model")
	root.Flags().BoolVar(&dump, "dump", false, "dump the raw analysis result")
	root.Flags().StringVar(&series, "series", "", "print the series of a category (総人口, 年少人口, 生産年齢人口, 老年人口) for the selection")
	root.Flags().StringVar(&exportPath, "export", "", "write the selection and result to an .xlsx file")

	root.AddCommand(&cobra.Command{
		Use:   "samples",
		Short: "List example queries",
		Run: func(cmd *cobra.Command, args []string) {
			for _, q := range query.SupportedQueries() {
				fmt.Println(q)
			}
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "regions",
		Short: "List the regions queries may name",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(stats.RegionTable())
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
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

	var provider stats.Provider = stats.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, log)
	if workbook != "" {
		wb, err := stats.LoadWorkbook(workbook)
		if err != nil {
			return err
		}
		provider = wb
	}

	backend, err := cfg.NewBackend(ctx)
	if err != nil {
		return err
	}

	var opts []query.Option
	if topics {
		opts = append(opts, query.WithTopicRouting())
	}
	opts = append(opts, query.WithLogger(log))

	ctrl := selection.New(
		provider,
		store.New(provider, store.WithLogger(log), store.WithBatchWidth(cfg.Store.BatchWidth)),
		query.NewProcessor(
			generative.NewDelegate(backend, generative.WithTimeout(cfg.Generative.Timeout), generative.WithLogger(log)),
			opts...,
		),
		log,
	)

	if err := ctrl.LoadCatalog(ctx); err != nil {
		return err
	}

	res, err := ctrl.Process(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if dump {
		spew.Dump(res)
	}
	if err := report.WriteResult(os.Stdout, res); err != nil {
		return err
	}

	data := stats.Dataset{Prefectures: ctrl.Prefectures(), Records: ctrl.CachedRecords()}
	if series != "" {
		c, ok := stats.ParseCategory(series)
		if !ok {
			return fmt.Errorf("unknown category %q", series)
		}
		fmt.Println()
		if err := report.WriteSeries(os.Stdout, data, ctrl.Selected(), c); err != nil {
			return err
		}
	}

	if exportPath != "" {
		if err := report.Export(exportPath, data, ctrl.Selected(), &res); err != nil {
			return err
		}
		log.Info("Exported workbook", zap.String("path", exportPath))
	}

	for _, e := range ctrl.Errors() {
		fmt.Fprintln(os.Stderr, "警告:", e)
	}
	return nil
}
