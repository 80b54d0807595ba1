package archive

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/park285/cheese-chess/internal/domain"
)

func foolsMate(sessionID string, ended time.Time) *domain.GameResult {
	return &domain.GameResult{
		SessionID:   sessionID,
		Winner:      "black",
		Loser:       "white",
		Method:      "checkmate",
		MovesCoord:  []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		FinalRecord: []byte(`{"board":[],"current_turn":"w"}`),
		FinalFEN:    "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w - - 0 1",
		StartedAt:   ended.Add(-time.Minute),
		EndedAt:     ended,
	}
}

func TestBuildMovetext(t *testing.T) {
	ended := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	got := BuildMovetext(foolsMate("s1", ended))
	for _, want := range []string{
		"[Date \"2026.03.04\"]",
		"[Termination \"checkmate\"]",
		"[Result \"0-1\"]",
		"1. f2f3 e7e5 2. g2g4 d8h4 0-1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("movetext missing %q:\n%s", want, got)
		}
	}
}

func TestBuildMovetextOddMoves(t *testing.T) {
	r := &domain.GameResult{Winner: "white", MovesCoord: []string{"e2e4", "e7e5", "d1h5"}}
	if got := BuildMovetext(r); !strings.HasSuffix(got, "1. e2e4 e7e5 2. d1h5 1-0") {
		t.Fatalf("movetext = %q", got)
	}
}

func TestMapResultToPGN(t *testing.T) {
	for in, want := range map[string]string{"white": "1-0", " Black ": "0-1", "draw": "1/2-1/2", "": "*"} {
		if got := mapResultToPGN(in); got != want {
			t.Errorf("mapResultToPGN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	older := foolsMate("a", base)
	newer := foolsMate("b", base.Add(time.Hour))
	for _, r := range []*domain.GameResult{older, newer} {
		if err := repo.SaveResult(ctx, r); err != nil {
			t.Fatalf("SaveResult: %v", err)
		}
	}
	if older.ID == 0 || newer.ID == older.ID {
		t.Fatalf("ids not assigned: %d %d", older.ID, newer.ID)
	}
	if older.Movetext == "" {
		t.Fatalf("movetext not filled in")
	}

	got, err := repo.RecentResults(ctx, 10)
	if err != nil {
		t.Fatalf("RecentResults: %v", err)
	}
	ids := []string{}
	for _, r := range got {
		ids = append(ids, r.SessionID)
	}
	if diff := cmp.Diff([]string{"b", "a"}, ids); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}

	// upsert keeps the id
	again := foolsMate("a", base.Add(2*time.Hour))
	if err := repo.SaveResult(ctx, again); err != nil {
		t.Fatal(err)
	}
	if again.ID != older.ID {
		t.Fatalf("upsert changed id %d -> %d", older.ID, again.ID)
	}
	limited, _ := repo.RecentResults(ctx, 1)
	if len(limited) != 1 || limited[0].SessionID != "a" {
		t.Fatalf("limit/order after upsert: %+v", limited)
	}
}

func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	repo, err := NewPostgresRepository(url)
	if err != nil {
		t.Fatalf("NewPostgresRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	ctx := context.Background()
	r := foolsMate(uuid.NewString(), time.Now().UTC().Truncate(time.Millisecond))
	if err := repo.SaveResult(ctx, r); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	list, err := repo.RecentResults(ctx, 50)
	if err != nil {
		t.Fatalf("RecentResults: %v", err)
	}
	for _, got := range list {
		if got.SessionID == r.SessionID {
			if diff := cmp.Diff(r.MovesCoord, got.MovesCoord); diff != "" {
				t.Fatalf("moves (-want +got):\n%s", diff)
			}
			if got.Duration != time.Minute {
				t.Fatalf("duration = %v", got.Duration)
			}
			return
		}
	}
	t.Fatalf("saved result %s not listed", r.SessionID)
}

func TestNewPostgresRepositoryRequiresURL(t *testing.T) {
	if _, err := NewPostgresRepository("  "); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
