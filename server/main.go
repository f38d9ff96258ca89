package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lunars/server/logging"
	"lunars/server/season"
	"lunars/server/store"
)

func main() {
	var migrate bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		}
	}

	cfg, cfgErr := LoadConfig()
	if err := logging.Init(cfg.Debug); err != nil {
		panic(err)
	}
	defer logging.Sync()
	if cfgErr != nil {
		logging.Fatal("config", zap.Error(cfgErr))
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("open database", zap.Error(err))
	}
	defer db.Close(context.Background())

	if migrate || cfg.AutoMigrate {
		if err := store.Migrate(context.Background(), db); err != nil {
			logging.Fatal("migrate", zap.Error(err))
		}
		logging.Info("migrated")
	}
	if migrate {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	seasons := season.NewHandler(db, cfg.Glicko, cfg.RatingPeriod)
	go seasons.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      Router(db, cfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("shutdown", zap.Error(err))
		}
	}()

	logging.Info("listening",
		zap.String("addr", "http://localhost:"+cfg.Port),
		zap.Duration("rating_period", cfg.RatingPeriod),
		zap.Float64("tau", cfg.Glicko.Tau))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("serve", zap.Error(err))
	}
	logging.Info("stopped")
}

func watchSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logging.Info("signal received, shutting down")
	cancel()
}
