package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tournify/match-resolution/internal/domain/consensus"
	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/domain/participant"
	"github.com/tournify/match-resolution/internal/platform/logging"
	"github.com/tournify/match-resolution/internal/platform/metrics"
)

// ResolutionInput carries the participant group and the caller's
// expectations for one resolution run. Validation and leaderboard both
// take the same input. ExpectedMatchID is optional: when the organizer
// claims an identifier up front, the resolved consensus is checked
// against it.
type ResolutionInput struct {
	Players           []participant.Identity
	ExpectedStartTime time.Time
	ExpectedMap       string
	ExpectedMatchID   string
}

type ValidationResult struct {
	MatchID             string   `json:"match_id"`
	ValidationPassed    bool     `json:"validation_passed"`
	HostError           bool     `json:"host_error"`
	AlternativeMatchID  string   `json:"alternative_match_id,omitempty"`
	PercentageWithMatch float64  `json:"percentage_with_match"`
	PlayersWithMatch    []string `json:"players_with_match"`
	PlayersWithoutMatch []string `json:"players_without_match"`
	TimeCheck           *bool    `json:"time_check"`
	MapCheck            *bool    `json:"map_check"`
	State               string   `json:"state"`
	Message             string   `json:"message"`
}

// ValidationService runs the full resolution pipeline for the validate
// operation: collect histories, resolve a quorum match, verify its
// canonical details.
type ValidationService struct {
	history  *HistoryService
	verifier *VerificationService
	policy   consensus.Policy
	metrics  *metrics.Manager
	logger   *logging.Logger
}

func NewValidationService(
	history *HistoryService,
	verifier *VerificationService,
	policy consensus.Policy,
	m *metrics.Manager,
	logger *logging.Logger,
) *ValidationService {
	if policy.Fraction <= 0 || policy.Fraction > 1 {
		policy = consensus.DefaultPolicy()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ValidationService{
		history:  history,
		verifier: verifier,
		policy:   policy,
		metrics:  m,
		logger:   logger.Named("validation"),
	}
}

// ValidateMatchHistory resolves which match the group actually played
// and checks it against the expected start time and map.
//
// Only invalid input and an unreachable canonical record return errors.
// No quorum and failed detail checks are ordinary results with
// ValidationPassed=false, so callers can tell "the pipeline worked and
// found no consensus" apart from "the pipeline could not run".
func (s *ValidationService) ValidateMatchHistory(ctx context.Context, input ResolutionInput) (ValidationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidationService.ValidateMatchHistory")
	defer span.End()

	identities, err := normalizeIdentities(input.Players)
	if err != nil {
		return ValidationResult{}, err
	}

	s.logger.DebugContext(ctx, "resolution phase", "state", match.StateCollecting, "participants", len(identities))
	histories := s.history.Collect(ctx, identities)

	s.logger.DebugContext(ctx, "resolution phase", "state", match.StateResolving)
	res := consensus.Resolve(histories, s.policy)

	if !res.Quorum {
		return s.finishValidation(ctx, ValidationResult{
			PercentageWithMatch: res.SupportPercent,
			PlayersWithMatch:    []string{},
			PlayersWithoutMatch: []string{},
			State:               string(match.StateFailedNoQuorum),
			Message:             noQuorumMessage(res, len(identities)),
		}), nil
	}

	s.logger.DebugContext(ctx, "resolution phase", "state", match.StateVerifying, "match_id", res.MatchID)
	verification, err := s.verifier.Verify(ctx, res.MatchID, input.ExpectedStartTime, input.ExpectedMap)
	if err != nil {
		return ValidationResult{}, err
	}

	result := ValidationResult{
		MatchID:             res.MatchID,
		PercentageWithMatch: res.SupportPercent,
		PlayersWithMatch:    res.WithMatch,
		PlayersWithoutMatch: res.WithoutMatch,
		TimeCheck:           verification.TimeOK,
		MapCheck:            verification.MapOK,
	}
	if verification.Passed {
		result.ValidationPassed = true
		result.State = string(match.StateVerified)
		result.Message = fmt.Sprintf("match %s validated: %d of %d participants share it (%.1f%%)",
			res.MatchID, len(res.WithMatch), len(identities), res.SupportPercent)
	} else {
		result.State = string(match.StateFailedVerification)
		result.Message = fmt.Sprintf("match %s failed detail verification (time_check=%s, map_check=%s)",
			res.MatchID, formatCheck(verification.TimeOK), formatCheck(verification.MapOK))
	}

	// A host error means the group's consensus disagrees with the
	// identifier the organizer claimed, usually because the host
	// registered the wrong lobby.
	if claimed := strings.TrimSpace(input.ExpectedMatchID); claimed != "" && claimed != res.MatchID {
		result.HostError = true
		result.AlternativeMatchID = res.MatchID
		result.Message += fmt.Sprintf("; claimed match %s does not match the group consensus", claimed)
		s.logger.WarnContext(ctx, "host error detected",
			"claimed_match_id", claimed,
			"resolved_match_id", res.MatchID,
		)
	}

	return s.finishValidation(ctx, result), nil
}

func (s *ValidationService) finishValidation(ctx context.Context, result ValidationResult) ValidationResult {
	s.metrics.RecordResolutionOutcome(result.State)
	s.logger.InfoContext(ctx, "match history validated",
		"state", result.State,
		"match_id", result.MatchID,
		"passed", result.ValidationPassed,
		"support_percent", result.PercentageWithMatch,
	)
	return result
}

func noQuorumMessage(res consensus.Resolution, total int) string {
	return fmt.Sprintf("no shared match reached quorum: required %d of %d participants, best support %.1f%%",
		res.Required, total, res.SupportPercent)
}

func formatCheck(flag *bool) string {
	switch {
	case flag == nil:
		return "indeterminate"
	case *flag:
		return "passed"
	default:
		return "failed"
	}
}
