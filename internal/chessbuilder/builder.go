package chessbuilder

import (
    "context"
    "errors"
    "fmt"
    "io"
    "strings"
    "time"

    "github.com/park285/cheese-chess/internal/adapter/chesspresenter"
    "github.com/park285/cheese-chess/internal/archive"
    "github.com/park285/cheese-chess/internal/chess"
    "github.com/park285/cheese-chess/internal/config"
    "github.com/park285/cheese-chess/internal/httpapi"
    "github.com/park285/cheese-chess/internal/msgcat"
    "github.com/park285/cheese-chess/internal/notation"
    "github.com/park285/cheese-chess/internal/render"
    "github.com/park285/cheese-chess/internal/session"
    "github.com/park285/cheese-chess/internal/store"
    "go.uber.org/zap"
)

type Deps struct {
    Store     store.Store
    Archive   archive.Repository
    Sessions  *session.Manager
    Renderer  *render.Renderer
    Formatter *chesspresenter.Formatter
    Server    *httpapi.Server

    closers []io.Closer
}

// Close releases backend connections in reverse order of creation.
func (d *Deps) Close() error {
    var errs []error
    for i := len(d.closers) - 1; i >= 0; i-- {
        if err := d.closers[i].Close(); err != nil {
            errs = append(errs, err)
        }
    }
    return errors.Join(errs...)
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
    if cfg == nil {
        return nil, fmt.Errorf("nil config")
    }
    if logger == nil {
        logger = zap.NewNop()
    }
    d := &Deps{}

    st, err := d.openStore(cfg, logger)
    if err != nil {
        _ = d.Close()
        return nil, err
    }
    d.Store = st

    // Archive: Postgres when configured, otherwise in-process
    if strings.TrimSpace(cfg.DatabaseURL) != "" {
        repo, err := archive.NewPostgresRepository(cfg.DatabaseURL)
        if err != nil {
            _ = d.Close()
            return nil, fmt.Errorf("init archive: %w", err)
        }
        d.closers = append(d.closers, repo)
        d.Archive = repo
    } else {
        logger.Info("archive_memory", zap.String("reason", "DATABASE_URL not set"))
        d.Archive = archive.NewMemoryRepository()
    }

    var start *chess.GameState
    if cfg.StartFEN != "" {
        start, err = notation.FromFEN(cfg.StartFEN)
        if err != nil {
            _ = d.Close()
            return nil, fmt.Errorf("CHESS_START_FEN: %w", err)
        }
    }

    cat, err := msgcat.New(cfg.MessagesDir)
    if err != nil {
        _ = d.Close()
        return nil, fmt.Errorf("load messages: %w", err)
    }
    if err := cat.Require(chesspresenter.MessageKeys...); err != nil {
        _ = d.Close()
        return nil, err
    }

    d.Renderer = render.New(cfg.SquareSize)
    d.Formatter = chesspresenter.NewFormatter(cat)
    d.Sessions = session.NewManager(session.Options{
        Store:       d.Store,
        Archive:     d.Archive,
        DefaultSlot: cfg.DefaultSlot,
        Start:       start,
        Logger:      logger,
    })
    d.Server = httpapi.New(d.Sessions, d.Renderer, d.Formatter,
        httpapi.WithLogger(logger),
        httpapi.WithRequestTimeout(cfg.RequestTimeout),
    )
    return d, nil
}

func (d *Deps) openStore(cfg *config.AppConfig, logger *zap.Logger) (store.Store, error) {
    switch cfg.StoreKind {
    case config.StoreRedis:
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        rs, err := store.NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.SaveTTL)
        if err != nil {
            return nil, fmt.Errorf("init redis store: %w", err)
        }
        d.closers = append(d.closers, rs)
        logger.Info("store_redis", zap.Duration("ttl", cfg.SaveTTL))
        return rs, nil
    case config.StoreSQLite:
        ss, err := store.OpenSQLite(cfg.SQLitePath)
        if err != nil {
            return nil, fmt.Errorf("init sqlite store: %w", err)
        }
        d.closers = append(d.closers, ss)
        logger.Info("store_sqlite", zap.String("path", cfg.SQLitePath))
        return ss, nil
    case config.StoreMemory:
        logger.Info("store_memory")
        return store.NewMemoryStore(), nil
    default:
        logger.Info("store_file", zap.String("dir", cfg.SaveDir))
        return store.NewFileStore(cfg.SaveDir), nil
    }
}
