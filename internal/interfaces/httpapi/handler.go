package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/tournify/match-resolution/internal/domain/participant"
	"github.com/tournify/match-resolution/internal/platform/logging"
	"github.com/tournify/match-resolution/internal/usecase"
)

type Handler struct {
	matchService       *usecase.MatchService
	validationService  *usecase.ValidationService
	leaderboardService *usecase.LeaderboardService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	validationService *usecase.ValidationService,
	leaderboardService *usecase.LeaderboardService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:       matchService,
		validationService:  validationService,
		leaderboardService: leaderboardService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, target any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.decodeRequest")
	defer span.End()

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// parseTimestamp accepts RFC 3339 and the zone-less variant clients
// commonly send; zone-less values are taken as UTC.
func parseTimestamp(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", usecase.ErrInvalidInput, field)
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s must be an RFC 3339 timestamp", usecase.ErrInvalidInput, field)
}

type playerIdentityDTO struct {
	Name     string `json:"name" validate:"required"`
	Tag      string `json:"tag" validate:"required"`
	Region   string `json:"region" validate:"required"`
	Platform string `json:"platform" validate:"required"`
}

// resolutionRequest is the shared payload of the validation and
// leaderboard operations. The claimed match id is optional; validation
// checks the consensus against it when present.
type resolutionRequest struct {
	Players           []playerIdentityDTO `json:"players" validate:"required,dive"`
	ExpectedStartTime string              `json:"expected_start_time" validate:"required"`
	ExpectedMap       string              `json:"expected_map" validate:"required"`
	ExpectedMatchID   string              `json:"expected_match_id,omitempty"`
}

func (h *Handler) resolutionInput(ctx context.Context, req resolutionRequest) (usecase.ResolutionInput, error) {
	ctx, span := startSpan(ctx, "httpapi.Handler.resolutionInput")
	defer span.End()

	expectedStart, err := parseTimestamp("expected_start_time", req.ExpectedStartTime)
	if err != nil {
		return usecase.ResolutionInput{}, err
	}

	return usecase.ResolutionInput{
		Players:           identitiesFromDTO(ctx, req.Players),
		ExpectedStartTime: expectedStart,
		ExpectedMap:       req.ExpectedMap,
		ExpectedMatchID:   req.ExpectedMatchID,
	}, nil
}

func identitiesFromDTO(ctx context.Context, players []playerIdentityDTO) []participant.Identity {
	ctx, span := startSpan(ctx, "httpapi.identitiesFromDTO")
	defer span.End()

	out := make([]participant.Identity, 0, len(players))
	for _, player := range players {
		out = append(out, participant.Identity{
			Name:     player.Name,
			Tag:      player.Tag,
			Region:   player.Region,
			Platform: player.Platform,
		})
	}
	return out
}
