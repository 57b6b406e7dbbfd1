package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sot-platform/discovery-cli/internal/scheduler"
)

var (
	servePort int
	serveCron string
)

// runner abstracts the scheduler for handler tests.
type runner interface {
	Run(ctx context.Context, tenantID string) (*scheduler.RunSummary, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger server",
	Long:  "Exposes the discovery run over HTTP and optionally fires it on a cron schedule. Concurrent triggers for the same tenant share one run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		pool, err := initPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := scheduler.Migrate(ctx, pool); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		sched := initScheduler(pool)
		var group singleflight.Group

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/trigger/discovery", triggerHandler(sched, &group))

		if serveCron != "" {
			c := cron.New()
			err := c.AddFunc(serveCron, func() {
				summary, err := runShared(ctx, sched, &group, "")
				if err != nil {
					zap.L().Error("scheduled discovery run failed", zap.Error(err))
					return
				}
				zap.L().Info("scheduled discovery run finished",
					zap.String("status", summary.Status),
					zap.Int("approved", summary.TotalApproved),
				)
			})
			if err != nil {
				return eris.Wrapf(err, "parse cron expression %q", serveCron)
			}
			c.Start()
			defer c.Stop()
			zap.L().Info("cron schedule active", zap.String("spec", serveCron))
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveCron, "cron", "", `cron spec for automatic runs, with seconds (e.g. "0 0 6 * * *" for 06:00 UTC daily)`)
	rootCmd.AddCommand(serveCmd)
}

// triggerHandler runs the scheduler for the requested (or platform) tenant.
// The request body is optional.
func triggerHandler(sched runner, group *singleflight.Group) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		// The body is optional; an empty one means "platform tenant".
		var body struct {
			TenantID string `json:"tenant_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		summary, err := runShared(req.Context(), sched, group, body.TenantID)
		if err != nil {
			if errors.Is(err, scheduler.ErrNoTenant) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no tenant found"})
				return
			}
			zap.L().Error("triggered discovery run failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

// runShared collapses concurrent triggers for the same tenant into one run.
func runShared(ctx context.Context, sched runner, group *singleflight.Group, tenantID string) (*scheduler.RunSummary, error) {
	v, err, _ := group.Do(tenantID, func() (any, error) {
		return sched.Run(ctx, tenantID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*scheduler.RunSummary), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
