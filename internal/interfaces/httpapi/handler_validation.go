package httpapi

import "net/http"

func (h *Handler) ValidateMatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateMatchHistory")
	defer span.End()

	var req resolutionRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input, err := h.resolutionInput(ctx, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.validationService.ValidateMatchHistory(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "match history validation failed",
			"players", len(req.Players),
			"expected_map", req.ExpectedMap,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
