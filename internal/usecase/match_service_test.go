package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/platform/id"
)

func TestMatchService_CreateMatch(t *testing.T) {
	t.Parallel()

	svc := NewMatchService(id.NewUUIDGenerator(), nil)
	startTime := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

	out, err := svc.CreateMatch(context.Background(), CreateMatchInput{
		PlayerIDs: []string{"alice#001", "bob#001"},
		StartTime: startTime,
		MapName:   "Ascent",
	})
	if err != nil {
		t.Fatalf("CreateMatch error: %v", err)
	}

	if out.MatchID == "" {
		t.Fatalf("expected a generated match id")
	}
	if out.Status != match.StatusCreated {
		t.Fatalf("expected status %q, got %q", match.StatusCreated, out.Status)
	}
	if len(out.PlayerIDs) != 2 || out.MapName != "Ascent" || !out.StartTime.Equal(startTime) {
		t.Fatalf("create must echo the request: %+v", out)
	}
	if !strings.Contains(out.Message, out.MatchID) {
		t.Fatalf("message must cite the generated id, got %q", out.Message)
	}
}

func TestMatchService_CreateMatch_Invalid(t *testing.T) {
	t.Parallel()

	svc := NewMatchService(id.NewUUIDGenerator(), nil)

	_, err := svc.CreateMatch(context.Background(), CreateMatchInput{MapName: "Ascent"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty player_ids, got %v", err)
	}

	_, err = svc.CreateMatch(context.Background(), CreateMatchInput{PlayerIDs: []string{"alice#001"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty match_map, got %v", err)
	}
}

func TestMatchService_GetMatch_AlwaysNotFound(t *testing.T) {
	t.Parallel()

	svc := NewMatchService(id.NewUUIDGenerator(), nil)

	_, err := svc.GetMatch(context.Background(), "match-123")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = svc.GetMatch(context.Background(), " ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a blank id, got %v", err)
	}
}
