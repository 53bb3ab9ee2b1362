package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/platform/logging"
	"github.com/tournify/match-resolution/internal/platform/metrics"
)

// DefaultTimeTolerance bounds how far a canonical start time may drift
// from the caller's expectation and still verify. The bound is
// inclusive: a drift of exactly the tolerance passes.
const DefaultTimeTolerance = 300 * time.Second

// Verification reports the detail checks for one resolved match.
// TimeOK and MapOK are tri-state: nil means the check could not be made
// determinately, which is different from a determinate false.
type Verification struct {
	MatchID string
	Record  match.Record
	TimeOK  *bool
	MapOK   *bool
	Passed  bool
}

// VerificationService checks a resolved match identifier against the
// caller's expected start time and map using the canonical record.
type VerificationService struct {
	source    match.Source
	tolerance time.Duration
	metrics   *metrics.Manager
	logger    *logging.Logger
}

func NewVerificationService(source match.Source, tolerance time.Duration, m *metrics.Manager, logger *logging.Logger) *VerificationService {
	if tolerance < 0 {
		tolerance = DefaultTimeTolerance
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &VerificationService{
		source:    source,
		tolerance: tolerance,
		metrics:   m,
		logger:    logger.Named("verification"),
	}
}

// Verify fetches the canonical record and runs the two detail checks
// independently, so callers can tell "wrong map, right time" apart from
// "right map, wrong time".
//
// An unreachable canonical record is a hard failure: without it no
// check can be made and both sub-flags stay indeterminate. A zero
// expected value skips its check without failing verification, while a
// canonical record missing a checked field fails it indeterminately.
func (s *VerificationService) Verify(ctx context.Context, matchID string, expectedStart time.Time, expectedMap string) (Verification, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.VerificationService.Verify")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return Verification{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	start := time.Now()
	record, err := s.source.MatchDetails(ctx, matchID)
	s.metrics.RecordSourceCall(s.source.Driver(), "match_details", time.Since(start))
	if err != nil {
		s.logger.WarnContext(ctx, "canonical record unavailable",
			"match_id", matchID,
			"error", err,
		)
		return Verification{MatchID: matchID}, fmt.Errorf("%w: fetch canonical record match=%s: %v", ErrDependencyUnavailable, matchID, err)
	}

	out := Verification{MatchID: matchID, Record: record, Passed: true}

	switch {
	case expectedStart.IsZero():
		// No expectation, check skipped.
	case record.StartedAt.IsZero():
		out.Passed = false
	default:
		ok := absDuration(record.StartedAt.Sub(expectedStart)) <= s.tolerance
		out.TimeOK = &ok
		out.Passed = out.Passed && ok
	}

	expectedMap = strings.TrimSpace(expectedMap)
	actualMap := strings.TrimSpace(record.MapName)
	switch {
	case expectedMap == "":
	case actualMap == "":
		out.Passed = false
	default:
		ok := strings.EqualFold(actualMap, expectedMap)
		out.MapOK = &ok
		out.Passed = out.Passed && ok
	}

	return out, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
