package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartier-analytics/immo-cli/internal/predict"
	"github.com/quartier-analytics/immo-cli/internal/store"
)

var servePort int

// estimationResponse is the JSON shape of an estimation, shared by the API
// and the one-shot predict command.
type estimationResponse struct {
	PricePerM2    float64 `json:"prix_m2"`
	PricePerM2Min float64 `json:"prix_m2_min"`
	PricePerM2Max float64 `json:"prix_m2_max"`
	TotalPrice    float64 `json:"prix_total"`
	TotalPriceMin float64 `json:"prix_total_min"`
	TotalPriceMax float64 `json:"prix_total_max"`

	Class          string  `json:"classe"`
	ProbExpensive  float64 `json:"prob_cher"`
	ProbCheap      float64 `json:"prob_bon_marche"`
	PriceThreshold float64 `json:"seuil_prix_m2"`

	AddressLabel string  `json:"adresse"`
	District     int     `json:"arrondissement"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

func estimationResponseFrom(e *predict.Estimation) estimationResponse {
	return estimationResponse{
		PricePerM2:     e.PricePerM2,
		PricePerM2Min:  e.PricePerM2Min,
		PricePerM2Max:  e.PricePerM2Max,
		TotalPrice:     e.TotalPrice,
		TotalPriceMin:  e.TotalPriceMin,
		TotalPriceMax:  e.TotalPriceMax,
		Class:          e.Class,
		ProbExpensive:  e.ProbExpensive,
		ProbCheap:      e.ProbCheap,
		PriceThreshold: e.PriceThreshold,
		AddressLabel:   e.AddressLabel,
		District:       e.District,
		Latitude:       e.Latitude,
		Longitude:      e.Longitude,
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the estimation HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		est, err := newEstimator()
		if err != nil {
			return err
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "serve: migrate store")
		}

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/v1/estimate", estimateHandler(est, st))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("serve: shutting down")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("serve: listening", zap.Int("port", port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}
		return nil
	},
}

// estimator is what the API needs from the prediction layer.
type estimator interface {
	Estimate(ctx context.Context, req predict.Request) (*predict.Estimation, error)
}

func estimateHandler(est estimator, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Surface float64 `json:"surface"`
			Rooms   float64 `json:"rooms"`
			Year    int     `json:"year"`
			Address string  `json:"address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Surface <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "surface must be positive"})
			return
		}
		if req.Address == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address is required"})
			return
		}

		out, err := est.Estimate(r.Context(), predict.Request{
			Surface: req.Surface,
			Rooms:   req.Rooms,
			Year:    req.Year,
			Address: req.Address,
		})
		if err != nil {
			if eris.Is(err, predict.ErrAddressNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "address not found in Paris"})
				return
			}
			zap.L().Error("serve: estimation failed", zap.String("address", req.Address), zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "estimation unavailable"})
			return
		}

		resp := estimationResponseFrom(out)
		body, err := json.Marshal(resp)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "encode response"})
			return
		}

		if err := st.LogEstimation(r.Context(), &store.EstimationLog{
			ClientIP:   clientIP(r),
			Surface:    req.Surface,
			Rooms:      req.Rooms,
			Year:       req.Year,
			Address:    req.Address,
			PricePerM2: out.PricePerM2,
			TotalPrice: out.TotalPrice,
			Class:      out.Class,
			Response:   string(body),
		}); err != nil {
			// The estimation already succeeded; a logging failure must not
			// turn it into a client error.
			zap.L().Error("serve: log estimation failed", zap.Error(err))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body) //nolint:errcheck
	}
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "sqlite":
		st, err := store.NewSQLite(cfg.Store.SQLitePath)
		return st, eris.Wrap(err, "serve: open sqlite store")
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		return st, eris.Wrap(err, "serve: open postgres store")
	default:
		return nil, eris.Errorf("serve: unknown store driver %q", cfg.Store.Driver)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
