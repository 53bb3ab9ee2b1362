package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/tournify/match-resolution/internal/domain/consensus"
	"github.com/tournify/match-resolution/internal/domain/leaderboard"
	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/platform/logging"
	"github.com/tournify/match-resolution/internal/platform/metrics"
)

type LeaderboardRow struct {
	Rank               int     `json:"rank"`
	PlayerID           string  `json:"player_id"`
	Kills              int     `json:"kills"`
	AverageCombatScore float64 `json:"average_combat_score"`
}

type LeaderboardResult struct {
	MatchID      string           `json:"match_id"`
	MapName      string           `json:"map"`
	TotalPlayers int              `json:"total_players"`
	Leaderboard  []LeaderboardRow `json:"leaderboard"`
	State        string           `json:"state"`
	Message      string           `json:"message"`
}

// LeaderboardService runs the resolution pipeline end to end and ranks
// the canonical player statistics for the resolved match.
type LeaderboardService struct {
	history  *HistoryService
	verifier *VerificationService
	source   match.Source
	policy   consensus.Policy
	metrics  *metrics.Manager
	logger   *logging.Logger
}

func NewLeaderboardService(
	history *HistoryService,
	verifier *VerificationService,
	source match.Source,
	policy consensus.Policy,
	m *metrics.Manager,
	logger *logging.Logger,
) *LeaderboardService {
	if policy.Fraction <= 0 || policy.Fraction > 1 {
		policy = consensus.DefaultPolicy()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		history:  history,
		verifier: verifier,
		source:   source,
		policy:   policy,
		metrics:  m,
		logger:   logger.Named("leaderboard"),
	}
}

// Leaderboard resolves and verifies the group's match, then ranks its
// players by kills and average combat score. The ranking runs against a
// freshly fetched canonical record: results are never cached across
// operations. No quorum and failed verification come back as data, the
// same way the validate operation reports them.
func (s *LeaderboardService) Leaderboard(ctx context.Context, input ResolutionInput) (LeaderboardResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Leaderboard")
	defer span.End()

	identities, err := normalizeIdentities(input.Players)
	if err != nil {
		return LeaderboardResult{}, err
	}

	s.logger.DebugContext(ctx, "resolution phase", "state", match.StateCollecting, "participants", len(identities))
	histories := s.history.Collect(ctx, identities)

	s.logger.DebugContext(ctx, "resolution phase", "state", match.StateResolving)
	res := consensus.Resolve(histories, s.policy)

	if !res.Quorum {
		return s.finishLeaderboard(ctx, LeaderboardResult{
			Leaderboard: []LeaderboardRow{},
			State:       string(match.StateFailedNoQuorum),
			Message:     noQuorumMessage(res, len(identities)),
		}), nil
	}

	s.logger.DebugContext(ctx, "resolution phase", "state", match.StateVerifying, "match_id", res.MatchID)
	verification, err := s.verifier.Verify(ctx, res.MatchID, input.ExpectedStartTime, input.ExpectedMap)
	if err != nil {
		return LeaderboardResult{}, err
	}
	if !verification.Passed {
		return s.finishLeaderboard(ctx, LeaderboardResult{
			MatchID:     res.MatchID,
			Leaderboard: []LeaderboardRow{},
			State:       string(match.StateFailedVerification),
			Message: fmt.Sprintf("match %s failed detail verification (time_check=%s, map_check=%s)",
				res.MatchID, formatCheck(verification.TimeOK), formatCheck(verification.MapOK)),
		}), nil
	}

	s.logger.DebugContext(ctx, "resolution phase", "state", match.StateRanking, "match_id", res.MatchID)
	start := time.Now()
	record, err := s.source.MatchDetails(ctx, res.MatchID)
	s.metrics.RecordSourceCall(s.source.Driver(), "match_details", time.Since(start))
	if err != nil {
		return LeaderboardResult{}, fmt.Errorf("%w: fetch canonical record match=%s: %v", ErrDependencyUnavailable, res.MatchID, err)
	}

	entries := leaderboard.Build(record, identities)
	rows := make([]LeaderboardRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, LeaderboardRow{
			Rank:               entry.Rank,
			PlayerID:           entry.PlayerID,
			Kills:              entry.Kills,
			AverageCombatScore: entry.AverageCombatScore,
		})
	}

	return s.finishLeaderboard(ctx, LeaderboardResult{
		MatchID:      res.MatchID,
		MapName:      record.MapName,
		TotalPlayers: len(rows),
		Leaderboard:  rows,
		State:        string(match.StateDone),
		Message:      fmt.Sprintf("leaderboard generated for match %s: %d players ranked", res.MatchID, len(rows)),
	}), nil
}

func (s *LeaderboardService) finishLeaderboard(ctx context.Context, result LeaderboardResult) LeaderboardResult {
	s.metrics.RecordResolutionOutcome(result.State)
	s.logger.InfoContext(ctx, "leaderboard resolved",
		"state", result.State,
		"match_id", result.MatchID,
		"players", result.TotalPlayers,
	)
	return result
}
