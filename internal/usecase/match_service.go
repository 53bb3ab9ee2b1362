package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/platform/id"
	"github.com/tournify/match-resolution/internal/platform/logging"
)

type CreateMatchInput struct {
	PlayerIDs       []string
	StartTime       time.Time
	MapName         string
	ExpectedMatchID string
}

type CreateMatchResult struct {
	MatchID   string    `json:"match_id"`
	PlayerIDs []string  `json:"player_ids"`
	StartTime time.Time `json:"match_start_time"`
	MapName   string    `json:"match_map"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
}

// MatchService covers the registration stub. Matches are not persisted:
// the generated identifier only exists so organizers can hand it to
// players before a resolution run.
type MatchService struct {
	ids    id.Generator
	logger *logging.Logger
}

func NewMatchService(ids id.Generator, logger *logging.Logger) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchService{
		ids:    ids,
		logger: logger.Named("match"),
	}
}

func (s *MatchService) CreateMatch(ctx context.Context, input CreateMatchInput) (CreateMatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CreateMatch")
	defer span.End()

	if len(input.PlayerIDs) == 0 {
		return CreateMatchResult{}, fmt.Errorf("%w: player_ids cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(input.MapName) == "" {
		return CreateMatchResult{}, fmt.Errorf("%w: match_map cannot be empty", ErrInvalidInput)
	}

	matchID, err := s.ids.NewID()
	if err != nil {
		return CreateMatchResult{}, fmt.Errorf("generate match id: %w", err)
	}

	s.logger.InfoContext(ctx, "match registered",
		"match_id", matchID,
		"players", len(input.PlayerIDs),
		"map", input.MapName,
	)

	return CreateMatchResult{
		MatchID:   matchID,
		PlayerIDs: input.PlayerIDs,
		StartTime: input.StartTime,
		MapName:   input.MapName,
		Status:    match.StatusCreated,
		Message:   fmt.Sprintf("Match created successfully with ID: %s", matchID),
	}, nil
}

// GetMatch always reports not found; matches are never persisted.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (match.Match, error) {
	_, span := startUsecaseSpan(ctx, "usecase.MatchService.GetMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
}
