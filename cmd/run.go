package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/streetsignal/streetsignal/internal/export"
	"github.com/streetsignal/streetsignal/internal/model"
)

var (
	runPreset    string
	runRadius    int
	runMaxAssign float64
	runTopN      int
	runOut       string
	runAllShops  bool
	runShops     []string
	runAmenities []string
	runSelectors []string
)

var runCmd = &cobra.Command{
	Use:   "run [district]...",
	Short: "Analyze districts and export the street ranking",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		params := buildParams(runPreset, model.Filters{
			IncludeAllShops:   runAllShops,
			ShopTypes:         runShops,
			Amenities:         runAmenities,
			PropertySelectors: runSelectors,
		}, runRadius, runMaxAssign, runTopN)

		jobID, total, err := a.controller.Start(args, params)
		if err != nil {
			return err
		}
		zap.L().Info("job started", zap.String("job_id", jobID), zap.Int("districts", total))

		for {
			progress, advErr := a.controller.Advance(ctx)
			if advErr != nil {
				return advErr
			}
			if progress.Latest != nil {
				zap.L().Info("district done",
					zap.String("district", progress.Latest.District),
					zap.Bool("success", progress.Latest.Success),
					zap.Int("processed", progress.Processed),
					zap.Int("total", progress.Total),
				)
			}
			if progress.Completed {
				break
			}
			if ctx.Err() != nil {
				return eris.Wrap(ctx.Err(), "run: interrupted")
			}
		}

		return writeResults(a.controller.Results(), params.TopN)
	},
}

func writeResults(results []model.Result, topN int) error {
	if runOut == "" {
		return export.WriteCSV(os.Stdout, results, topN)
	}

	if strings.HasSuffix(runOut, ".xlsx") {
		return export.WriteXLSX(runOut, results, topN)
	}

	f, err := os.Create(runOut)
	if err != nil {
		return eris.Wrapf(err, "run: create %s", runOut)
	}
	defer f.Close() //nolint:errcheck
	return export.WriteCSV(f, results, topN)
}

func init() {
	runCmd.Flags().StringVar(&runPreset, "preset", "shop", "filter preset: shop, industrial, office or custom")
	runCmd.Flags().IntVar(&runRadius, "radius", 0, "search radius in meters (default from config)")
	runCmd.Flags().Float64Var(&runMaxAssign, "max-assign", 0, "max street assignment distance in meters (default from config)")
	runCmd.Flags().IntVar(&runTopN, "top", 0, "number of top streets per district (default from config)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "output file (.csv or .xlsx, default stdout CSV)")
	runCmd.Flags().BoolVar(&runAllShops, "all-shops", false, "custom preset: include every shop=* element")
	runCmd.Flags().StringSliceVar(&runShops, "shop-types", nil, "custom preset: shop types to include")
	runCmd.Flags().StringSliceVar(&runAmenities, "amenities", nil, "custom preset: amenity types to include")
	runCmd.Flags().StringSliceVar(&runSelectors, "selectors", nil, "custom preset: key=value property selectors")
	rootCmd.AddCommand(runCmd)
}
