package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GregMSThompson/dashboard-engine/internal/bootstrap"
	"github.com/GregMSThompson/dashboard-engine/internal/config"
	"github.com/GregMSThompson/dashboard-engine/internal/handlers"
	"github.com/GregMSThompson/dashboard-engine/internal/models"
	"github.com/GregMSThompson/dashboard-engine/internal/prefstore"
	"github.com/GregMSThompson/dashboard-engine/internal/response"
	"github.com/GregMSThompson/dashboard-engine/internal/router"
	"github.com/GregMSThompson/dashboard-engine/internal/services"
	"github.com/GregMSThompson/dashboard-engine/internal/syncer"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	// bootstrap
	cfg, err := config.New(*configPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// preference store
	store := prefstore.New()

	// debounced layout sync
	sc := syncer.New(
		time.Duration(cfg.DebounceMS)*time.Millisecond,
		bs.Gateway.UpdateLayout,
		func(err error) {
			if err != nil {
				store.SetSyncStatus(models.SyncError)
				return
			}
			store.SetSyncStatus(models.SyncSynced)
		},
		bs.Log,
	)
	defer sc.Close()

	// services
	dsvc := services.NewDashboardService(store, bs.Gateway, nil, sc)
	if bs.Mirror != nil {
		dsvc = services.NewDashboardService(store, bs.Gateway, bs.Mirror, sc)
	}

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.DashboardSvc = dsvc

	// router
	r := router.NewRouter(deps)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		// Teardown: cancel any pending debounced write before draining.
		sc.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	bs.Log.Info("dashboard engine listening", "addr", cfg.ListenAddr)
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		exitOnError("server start failed", err, bs.Log)
	}
}
