package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/tournify/match-resolution/internal/domain/consensus"
	"github.com/tournify/match-resolution/internal/domain/history"
	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/domain/participant"
)

func newTestValidationService(source match.Source) *ValidationService {
	hist := NewHistoryService(source, nil, nil, nil)
	verifier := NewVerificationService(source, DefaultTimeTolerance, nil, nil)
	return NewValidationService(hist, verifier, consensus.DefaultPolicy(), nil, nil)
}

func TestValidationService_SevenOfTenShareMatch(t *testing.T) {
	t.Parallel()

	identities := make([]participant.Identity, 0, 10)
	histories := make(map[string][]history.Entry, 10)
	for i := 1; i <= 10; i++ {
		identity := testIdentity(fmt.Sprintf("player%d", i))
		identities = append(identities, identity)
		if i <= 7 {
			histories[identity.String()] = testEntries("M1")
		} else {
			histories[identity.String()] = testEntries(fmt.Sprintf("other-%d", i))
		}
	}
	source := &stubMatchSource{
		histories: histories,
		record:    testRecord(verifyBase, "Ascent"),
	}

	svc := newTestValidationService(source)
	out, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players:           identities,
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
	})
	if err != nil {
		t.Fatalf("ValidateMatchHistory error: %v", err)
	}

	if !out.ValidationPassed {
		t.Fatalf("expected validation to pass: %+v", out)
	}
	if out.MatchID != "M1" {
		t.Fatalf("expected match M1, got %q", out.MatchID)
	}
	if out.PercentageWithMatch != 70.0 {
		t.Fatalf("expected 70.0%% support, got %v", out.PercentageWithMatch)
	}
	if out.State != string(match.StateVerified) {
		t.Fatalf("expected state %s, got %s", match.StateVerified, out.State)
	}
	if len(out.PlayersWithMatch) != 7 || len(out.PlayersWithoutMatch) != 3 {
		t.Fatalf("expected 7/3 partition, got %d/%d", len(out.PlayersWithMatch), len(out.PlayersWithoutMatch))
	}
	if out.TimeCheck == nil || !*out.TimeCheck || out.MapCheck == nil || !*out.MapCheck {
		t.Fatalf("expected determinate passing sub-checks: time=%v map=%v", out.TimeCheck, out.MapCheck)
	}
}

func TestValidationService_DisjointHistoriesFailQuorum(t *testing.T) {
	t.Parallel()

	identities := []participant.Identity{
		testIdentity("alice"),
		testIdentity("bob"),
		testIdentity("carol"),
	}
	source := &stubMatchSource{
		histories: map[string][]history.Entry{
			"alice#001": testEntries("a1"),
			"bob#001":   testEntries("b1"),
			"carol#001": testEntries("c1"),
		},
	}

	svc := newTestValidationService(source)
	out, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players:           identities,
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
	})
	if err != nil {
		t.Fatalf("no-quorum must not be an error, got %v", err)
	}

	if out.ValidationPassed {
		t.Fatalf("expected validation to fail")
	}
	if out.State != string(match.StateFailedNoQuorum) {
		t.Fatalf("expected state %s, got %s", match.StateFailedNoQuorum, out.State)
	}
	if out.MatchID != "" {
		t.Fatalf("no-quorum result must carry an empty match id, got %q", out.MatchID)
	}
	if len(out.PlayersWithMatch) != 0 || len(out.PlayersWithoutMatch) != 0 {
		t.Fatalf("no-quorum partitions must be empty, got %d/%d", len(out.PlayersWithMatch), len(out.PlayersWithoutMatch))
	}
	if !strings.Contains(out.Message, "required 2 of 3") {
		t.Fatalf("message must cite the shortfall, got %q", out.Message)
	}
	if out.TimeCheck != nil || out.MapCheck != nil {
		t.Fatalf("sub-checks must stay indeterminate without a resolved match")
	}
	if source.detailCallCount() != 0 {
		t.Fatalf("no canonical fetch may happen without quorum")
	}
}

func TestValidationService_MapMismatchFailsVerification(t *testing.T) {
	t.Parallel()

	identities := []participant.Identity{
		testIdentity("alice"),
		testIdentity("bob"),
	}
	source := &stubMatchSource{
		histories: map[string][]history.Entry{
			"alice#001": testEntries("M1"),
			"bob#001":   testEntries("M1"),
		},
		record: testRecord(verifyBase, "Bind"),
	}

	svc := newTestValidationService(source)
	out, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players:           identities,
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
	})
	if err != nil {
		t.Fatalf("a detail mismatch must not be an error, got %v", err)
	}

	if out.ValidationPassed {
		t.Fatalf("expected validation to fail on the map mismatch")
	}
	if out.State != string(match.StateFailedVerification) {
		t.Fatalf("expected state %s, got %s", match.StateFailedVerification, out.State)
	}
	if out.MatchID != "M1" {
		t.Fatalf("the resolved match id must be reported, got %q", out.MatchID)
	}
	if out.TimeCheck == nil || !*out.TimeCheck {
		t.Fatalf("time check should pass")
	}
	if out.MapCheck == nil || *out.MapCheck {
		t.Fatalf("map check should be a determinate false")
	}
}

func TestValidationService_FailedSourceStaysInDenominator(t *testing.T) {
	t.Parallel()

	identities := []participant.Identity{
		testIdentity("alice"),
		testIdentity("bob"),
		testIdentity("charlie"),
	}
	source := &stubMatchSource{
		histories: map[string][]history.Entry{
			"alice#001": testEntries("M1"),
			"bob#001":   testEntries("M1"),
		},
		historyErr: map[string]error{
			"charlie#001": errors.New("503 service unavailable"),
		},
		record: testRecord(verifyBase, "Ascent"),
	}

	svc := newTestValidationService(source)
	out, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players:           identities,
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
	})
	if err != nil {
		t.Fatalf("ValidateMatchHistory error: %v", err)
	}

	// required = floor(3 * 0.7) = 2, so two agreeing sources still win,
	// but the failed third keeps the percentage below 100.
	if !out.ValidationPassed {
		t.Fatalf("expected validation to pass: %+v", out)
	}
	if math.Abs(out.PercentageWithMatch-200.0/3.0) > 0.01 {
		t.Fatalf("expected ~66.67%% support over the full population, got %v", out.PercentageWithMatch)
	}
	if len(out.PlayersWithoutMatch) != 1 || out.PlayersWithoutMatch[0] != "charlie#001" {
		t.Fatalf("failed participant must land in players_without_match, got %v", out.PlayersWithoutMatch)
	}
}

func TestValidationService_CanonicalUnreachableIsHardFailure(t *testing.T) {
	t.Parallel()

	identities := []participant.Identity{
		testIdentity("alice"),
		testIdentity("bob"),
	}
	source := &stubMatchSource{
		histories: map[string][]history.Entry{
			"alice#001": testEntries("M1"),
			"bob#001":   testEntries("M1"),
		},
		recordErr: errors.New("dial tcp: connection refused"),
	}

	svc := newTestValidationService(source)
	_, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players:           identities,
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
	})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestValidationService_RejectsTooFewParticipants(t *testing.T) {
	t.Parallel()

	source := &stubMatchSource{}
	svc := newTestValidationService(source)

	_, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players:           []participant.Identity{testIdentity("alice")},
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if source.historyCallCount() != 0 {
		t.Fatalf("invalid input must be rejected before any outbound call")
	}
}

func TestValidationService_CollapsesDuplicateParticipants(t *testing.T) {
	t.Parallel()

	source := &stubMatchSource{
		histories: map[string][]history.Entry{
			"alice#001": testEntries("M1"),
			"bob#001":   testEntries("M1"),
		},
		record: testRecord(verifyBase, "Ascent"),
	}
	svc := newTestValidationService(source)

	out, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players: []participant.Identity{
			testIdentity("alice"),
			testIdentity("bob"),
			{Name: "ALICE", Tag: "001", Region: "AP", Platform: "PC"},
		},
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
	})
	if err != nil {
		t.Fatalf("ValidateMatchHistory error: %v", err)
	}

	// The repeated alice is fetched and counted once, so support is
	// 2 of 2, not 2 of 3.
	if out.PercentageWithMatch != 100.0 {
		t.Fatalf("duplicates must not inflate the denominator, got %v%%", out.PercentageWithMatch)
	}
	if got := source.historyCallCount(); got != 2 {
		t.Fatalf("expected one history fetch per distinct identity, got %d", got)
	}
	if len(out.PlayersWithMatch) != 2 {
		t.Fatalf("expected 2 players with match, got %v", out.PlayersWithMatch)
	}
}

func TestValidationService_DetectsHostErrorOnClaimedMatchMismatch(t *testing.T) {
	t.Parallel()

	source := &stubMatchSource{
		histories: map[string][]history.Entry{
			"alice#001": testEntries("M1"),
			"bob#001":   testEntries("M1"),
		},
		record: testRecord(verifyBase, "Ascent"),
	}
	svc := newTestValidationService(source)

	out, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players:           []participant.Identity{testIdentity("alice"), testIdentity("bob")},
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
		ExpectedMatchID:   "wrong_match_id",
	})
	if err != nil {
		t.Fatalf("ValidateMatchHistory error: %v", err)
	}

	// The host registered the wrong lobby: the consensus still resolves
	// and verifies, but the mismatch against the claim is flagged.
	if !out.HostError {
		t.Fatalf("expected a host error for a mismatched claim: %+v", out)
	}
	if out.AlternativeMatchID != "M1" {
		t.Fatalf("expected the consensus as the alternative, got %q", out.AlternativeMatchID)
	}
	if out.MatchID != "M1" || !out.ValidationPassed {
		t.Fatalf("resolution itself must still succeed: %+v", out)
	}
	if !strings.Contains(out.Message, "wrong_match_id") {
		t.Fatalf("message must cite the claimed id, got %q", out.Message)
	}
}

func TestValidationService_MatchingClaimIsNotAHostError(t *testing.T) {
	t.Parallel()

	source := &stubMatchSource{
		histories: map[string][]history.Entry{
			"alice#001": testEntries("M1"),
			"bob#001":   testEntries("M1"),
		},
		record: testRecord(verifyBase, "Ascent"),
	}
	svc := newTestValidationService(source)

	out, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players:           []participant.Identity{testIdentity("alice"), testIdentity("bob")},
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
		ExpectedMatchID:   "M1",
	})
	if err != nil {
		t.Fatalf("ValidateMatchHistory error: %v", err)
	}

	if out.HostError || out.AlternativeMatchID != "" {
		t.Fatalf("a confirmed claim must not flag a host error: %+v", out)
	}
}

func TestValidationService_NoQuorumCarriesNoAlternative(t *testing.T) {
	t.Parallel()

	source := &stubMatchSource{
		histories: map[string][]history.Entry{
			"alice#001": testEntries("a1"),
			"bob#001":   testEntries("b1"),
			"carol#001": testEntries("c1"),
		},
	}
	svc := newTestValidationService(source)

	out, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players: []participant.Identity{
			testIdentity("alice"),
			testIdentity("bob"),
			testIdentity("carol"),
		},
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
		ExpectedMatchID:   "wrong_match_id",
	})
	if err != nil {
		t.Fatalf("ValidateMatchHistory error: %v", err)
	}

	// Without a consensus there is no alternative to offer.
	if out.HostError || out.AlternativeMatchID != "" {
		t.Fatalf("no-quorum must not claim a host error: %+v", out)
	}
}

func TestValidationService_RejectsIncompleteIdentity(t *testing.T) {
	t.Parallel()

	svc := newTestValidationService(&stubMatchSource{})

	_, err := svc.ValidateMatchHistory(context.Background(), ResolutionInput{
		Players: []participant.Identity{
			testIdentity("alice"),
			{Name: "bob", Tag: "", Region: "ap", Platform: "pc"},
		},
		ExpectedStartTime: verifyBase,
		ExpectedMap:       "Ascent",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a missing tag, got %v", err)
	}
}
