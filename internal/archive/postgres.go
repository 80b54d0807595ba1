package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/cheese-chess/internal/domain"
)

const createResultsTable = `CREATE TABLE IF NOT EXISTS chess_results (
    id BIGSERIAL PRIMARY KEY,
    session_id TEXT UNIQUE NOT NULL,
    winner TEXT NOT NULL,
    loser TEXT NOT NULL,
    method TEXT NOT NULL,
    moves JSONB NOT NULL,
    final_record JSONB NOT NULL,
    final_fen TEXT NOT NULL,
    movetext TEXT NOT NULL,
    started_at TIMESTAMPTZ NOT NULL,
    ended_at TIMESTAMPTZ NOT NULL,
    duration_ms BIGINT NOT NULL
)`

type PostgresRepository struct {
    db *sql.DB
}

func NewPostgresRepository(databaseURL string) (*PostgresRepository, error) {
    if strings.TrimSpace(databaseURL) == "" {
        return nil, fmt.Errorf("DATABASE_URL is required")
    }
    db, err := sql.Open("postgres", databaseURL)
    if err != nil {
        return nil, err
    }
    db.SetMaxOpenConns(16)
    db.SetMaxIdleConns(8)
    db.SetConnMaxLifetime(30 * time.Minute)
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, err
    }
    if _, err := db.ExecContext(ctx, createResultsTable); err != nil {
        db.Close()
        return nil, fmt.Errorf("create chess_results: %w", err)
    }
    return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error {
    if r == nil || r.db == nil { return nil }
    return r.db.Close()
}

// SaveResult upserts a finished game keyed by session id.
func (r *PostgresRepository) SaveResult(ctx context.Context, g *domain.GameResult) error {
    if r == nil || r.db == nil || g == nil {
        return nil
    }
    if g.Movetext == "" {
        g.Movetext = BuildMovetext(g)
    }
    movesRaw, _ := json.Marshal(g.MovesCoord)
    if movesRaw == nil || string(movesRaw) == "null" { movesRaw = []byte("[]") }
    record := g.FinalRecord
    if len(record) == 0 { record = []byte("{}") }
    duration := g.EndedAt.Sub(g.StartedAt).Milliseconds()
    if duration < 0 { duration = 0 }

    q := `INSERT INTO chess_results (
        session_id, winner, loser, method, moves, final_record, final_fen,
        movetext, started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
      ) ON CONFLICT (session_id) DO UPDATE SET
        winner=EXCLUDED.winner,
        loser=EXCLUDED.loser,
        method=EXCLUDED.method,
        moves=EXCLUDED.moves,
        final_record=EXCLUDED.final_record,
        final_fen=EXCLUDED.final_fen,
        movetext=EXCLUDED.movetext,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms
      RETURNING id`

    return r.db.QueryRowContext(ctx, q,
        g.SessionID, g.Winner, g.Loser, strings.TrimSpace(g.Method),
        string(movesRaw), string(record), g.FinalFEN, g.Movetext,
        g.StartedAt, g.EndedAt, duration,
    ).Scan(&g.ID)
}

func (r *PostgresRepository) RecentResults(ctx context.Context, limit int) ([]*domain.GameResult, error) {
    if limit <= 0 { limit = 20 }
    rows, err := r.db.QueryContext(ctx, `SELECT id, session_id, winner, loser, method, moves,
        final_record, final_fen, movetext, started_at, ended_at, duration_ms
        FROM chess_results ORDER BY ended_at DESC, id DESC LIMIT $1`, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []*domain.GameResult{}
    for rows.Next() {
        var (
            g        domain.GameResult
            movesRaw []byte
            record   []byte
            ms       int64
        )
        if err := rows.Scan(&g.ID, &g.SessionID, &g.Winner, &g.Loser, &g.Method, &movesRaw,
            &record, &g.FinalFEN, &g.Movetext, &g.StartedAt, &g.EndedAt, &ms); err != nil {
            return nil, err
        }
        if err := json.Unmarshal(movesRaw, &g.MovesCoord); err != nil {
            return nil, fmt.Errorf("decode moves for %s: %w", g.SessionID, err)
        }
        g.FinalRecord = record
        g.Duration = time.Duration(ms) * time.Millisecond
        out = append(out, &g)
    }
    return out, rows.Err()
}
