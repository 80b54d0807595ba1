package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/park285/cheese-chess/internal/chessbuilder"
    appcfg "github.com/park285/cheese-chess/internal/config"
    "github.com/park285/cheese-chess/internal/obslog"
    "go.uber.org/zap"
)

func main() {
    cfg, err := appcfg.Load()
    if err != nil {
        log.Fatalf("config error: %v", err)
    }
    if err := obslog.InitFromEnv(); err != nil {
        log.Fatalf("logger init error: %v", err)
    }
    defer obslog.Sync()
    logger := obslog.L()

    deps, err := chessbuilder.New(cfg, logger)
    if err != nil {
        logger.Fatal("chess init error", zap.Error(err))
    }
    defer func() {
        if err := deps.Close(); err != nil {
            logger.Warn("close deps", zap.Error(err))
        }
    }()

    srv := &http.Server{
        Addr:              cfg.HTTPAddr,
        Handler:           deps.Server.Handler(),
        ReadHeaderTimeout: 5 * time.Second,
    }

    errCh := make(chan error, 1)
    go func() {
        logger.Info("http_listen", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreKind))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
        close(errCh)
    }()

    // Wait for termination signal
    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
    select {
    case sig := <-sigCh:
        logger.Info("shutdown", zap.String("signal", sig.String()))
    case err, ok := <-errCh:
        if ok {
            logger.Error("http_serve_failed", zap.Error(err))
        }
    }

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := srv.Shutdown(ctx); err != nil {
        logger.Warn("http_shutdown", zap.Error(err))
    }
}
