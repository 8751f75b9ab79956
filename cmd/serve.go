package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/streetsignal/streetsignal/internal/config"
	"github.com/streetsignal/streetsignal/internal/export"
	"github.com/streetsignal/streetsignal/internal/model"
	"github.com/streetsignal/streetsignal/pkg/geocode"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the job API server",
	Long:  "Serves the incremental job API: start a batch of districts, then poll /jobs/step to process one district per call without holding a connection open for the whole batch.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(a),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", a.handleStartJob)
		r.Post("/step", a.handleStep)
		r.Post("/reset", a.handleReset)
		r.Get("/", a.handleSnapshot)
		r.Get("/results", a.handleResults)
		r.Get("/export.csv", a.handleExportCSV)
	})

	r.Get("/api/geocode/district", a.handleGeocodeDistrict)
	r.Get("/api/presets", handlePresets)

	return r
}

// startJobRequest accepts districts either as a JSON array or as a single
// comma/newline separated string.
type startJobRequest struct {
	Districts         json.RawMessage `json:"districts"`
	Preset            string          `json:"preset"`
	RadiusM           int             `json:"radius_m"`
	MaxAssignM        float64         `json:"max_assign_m"`
	TopN              int             `json:"top_n"`
	IncludeAllShops   bool            `json:"include_all_shops"`
	ShopTypes         []string        `json:"shop_types"`
	Amenities         []string        `json:"amenities"`
	PropertySelectors []string        `json:"property_selectors"`
}

func (a *app) handleStartJob(w http.ResponseWriter, r *http.Request) {
	var req startJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	districts, err := parseDistricts(req.Districts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	preset := req.Preset
	if preset == "" {
		preset = "custom"
	}

	params := buildParams(preset, model.Filters{
		IncludeAllShops:   req.IncludeAllShops,
		ShopTypes:         req.ShopTypes,
		Amenities:         req.Amenities,
		PropertySelectors: req.PropertySelectors,
	}, req.RadiusM, req.MaxAssignM, req.TopN)

	jobID, total, err := a.controller.Start(districts, params)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	zap.L().Info("job started", zap.String("job_id", jobID), zap.Int("districts", total))
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":          jobID,
		"total_districts": total,
	})
}

func (a *app) handleStep(w http.ResponseWriter, r *http.Request) {
	progress, err := a.controller.Advance(r.Context())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (a *app) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.controller.Snapshot())
}

func (a *app) handleResults(w http.ResponseWriter, _ *http.Request) {
	results := a.controller.Results()
	if results == nil {
		results = []model.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *app) handleReset(w http.ResponseWriter, _ *http.Request) {
	a.controller.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (a *app) handleExportCSV(w http.ResponseWriter, _ *http.Request) {
	results := a.controller.Results()
	if len(results) == 0 {
		writeError(w, http.StatusBadRequest, "no results to export")
		return
	}

	topN := cfg.Analysis.TopN
	if params, ok := a.controller.ActiveParams(); ok {
		topN = params.TopN
	}

	filename := "street_signal_" + time.Now().Format("20060102_150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename=`+filename)
	if err := export.WriteCSV(w, results, topN); err != nil {
		zap.L().Error("csv export failed", zap.Error(err))
	}
}

func (a *app) handleGeocodeDistrict(w http.ResponseWriter, r *http.Request) {
	district := model.NormalizeDistrict(r.URL.Query().Get("district"))
	if district == "" {
		writeError(w, http.StatusBadRequest, "district is required")
		return
	}

	coord, err := a.resolver.Resolve(r.Context(), district)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			writeError(w, http.StatusNotFound, "district not found")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"district": district,
		"lat":      coord.Lat,
		"lon":      coord.Lon,
	})
}

func handlePresets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"presets":            config.Presets,
		"shop_types":         config.ShopTypes,
		"amenities":          config.AmenityTypes,
		"property_selectors": config.PropertySelectors,
	})
}

// parseDistricts accepts ["E1","SW1"] or "E1, SW1\nSE1".
func parseDistricts(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, eris.New("districts is required")
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == '\n'
		}), nil
	}

	return nil, eris.New("invalid districts format")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
