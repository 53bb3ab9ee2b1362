package httpapi

import (
	"net/http"
	"strings"

	"github.com/tournify/match-resolution/internal/usecase"
)

type createMatchRequest struct {
	PlayerIDs       []string `json:"player_ids" validate:"required,min=1,dive,required"`
	MatchStartTime  string   `json:"match_start_time" validate:"required"`
	MatchMap        string   `json:"match_map" validate:"required"`
	ExpectedMatchID string   `json:"expected_match_id"`
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	var req createMatchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	startTime, err := parseTimestamp("match_start_time", req.MatchStartTime)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.matchService.CreateMatch(ctx, usecase.CreateMatchInput{
		PlayerIDs:       req.PlayerIDs,
		StartTime:       startTime,
		MapName:         req.MatchMap,
		ExpectedMatchID: req.ExpectedMatchID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	item, err := h.matchService.GetMatch(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}
