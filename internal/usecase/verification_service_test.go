package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tournify/match-resolution/internal/domain/match"
)

var verifyBase = time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

func testRecord(startedAt time.Time, mapName string) match.Record {
	return match.Record{
		MatchID:   "match-1",
		StartedAt: startedAt,
		MapName:   mapName,
		Players: []match.PlayerStat{
			{PlayerID: "alice#001", Kills: 20, AverageCombatScore: 280},
		},
	}
}

func TestVerificationService_Verify_TimeToleranceIsInclusive(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		drift  time.Duration
		timeOK bool
	}{
		{name: "exact match", drift: 0, timeOK: true},
		{name: "drift at tolerance", drift: 300 * time.Second, timeOK: true},
		{name: "negative drift at tolerance", drift: -300 * time.Second, timeOK: true},
		{name: "one second past tolerance", drift: 301 * time.Second, timeOK: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			source := &stubMatchSource{record: testRecord(verifyBase.Add(tc.drift), "Ascent")}
			svc := NewVerificationService(source, DefaultTimeTolerance, nil, nil)

			out, err := svc.Verify(context.Background(), "match-1", verifyBase, "Ascent")
			if err != nil {
				t.Fatalf("Verify error: %v", err)
			}
			if out.TimeOK == nil {
				t.Fatalf("time check must be determinate")
			}
			if *out.TimeOK != tc.timeOK {
				t.Fatalf("time check=%v, want %v", *out.TimeOK, tc.timeOK)
			}
			if out.Passed != tc.timeOK {
				t.Fatalf("passed=%v, want %v", out.Passed, tc.timeOK)
			}
		})
	}
}

func TestVerificationService_Verify_MapComparisonIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	for _, expected := range []string{"Ascent", "ascent", "ASCENT", "  Ascent  "} {
		source := &stubMatchSource{record: testRecord(verifyBase, "Ascent")}
		svc := NewVerificationService(source, DefaultTimeTolerance, nil, nil)

		out, err := svc.Verify(context.Background(), "match-1", verifyBase, expected)
		if err != nil {
			t.Fatalf("Verify error for %q: %v", expected, err)
		}
		if out.MapOK == nil || !*out.MapOK {
			t.Fatalf("expected map %q to match Ascent", expected)
		}
		if !out.Passed {
			t.Fatalf("expected verification to pass for %q", expected)
		}
	}
}

func TestVerificationService_Verify_WrongMapRightTime(t *testing.T) {
	t.Parallel()

	source := &stubMatchSource{record: testRecord(verifyBase, "Bind")}
	svc := NewVerificationService(source, DefaultTimeTolerance, nil, nil)

	out, err := svc.Verify(context.Background(), "match-1", verifyBase, "Ascent")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if out.TimeOK == nil || !*out.TimeOK {
		t.Fatalf("time check should pass")
	}
	if out.MapOK == nil || *out.MapOK {
		t.Fatalf("map check should be a determinate false")
	}
	if out.Passed {
		t.Fatalf("verification must fail on a map mismatch")
	}
}

func TestVerificationService_Verify_UnreachableCanonicalRecord(t *testing.T) {
	t.Parallel()

	source := &stubMatchSource{recordErr: errors.New("dial tcp: i/o timeout")}
	svc := NewVerificationService(source, DefaultTimeTolerance, nil, nil)

	out, err := svc.Verify(context.Background(), "match-1", verifyBase, "Ascent")
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if out.TimeOK != nil || out.MapOK != nil {
		t.Fatalf("sub-checks must stay indeterminate when the record is unreachable")
	}
}

func TestVerificationService_Verify_RecordMissingFieldsFailsIndeterminately(t *testing.T) {
	t.Parallel()

	source := &stubMatchSource{record: match.Record{MatchID: "match-1"}}
	svc := NewVerificationService(source, DefaultTimeTolerance, nil, nil)

	out, err := svc.Verify(context.Background(), "match-1", verifyBase, "Ascent")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if out.TimeOK != nil || out.MapOK != nil {
		t.Fatalf("missing record fields must leave the sub-checks indeterminate")
	}
	if out.Passed {
		t.Fatalf("verification cannot pass without determinate checks")
	}
}

func TestVerificationService_Verify_ZeroExpectationsAreSkipped(t *testing.T) {
	t.Parallel()

	source := &stubMatchSource{record: testRecord(verifyBase, "Ascent")}
	svc := NewVerificationService(source, DefaultTimeTolerance, nil, nil)

	out, err := svc.Verify(context.Background(), "match-1", time.Time{}, "")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if out.TimeOK != nil || out.MapOK != nil {
		t.Fatalf("skipped checks must stay nil")
	}
	if !out.Passed {
		t.Fatalf("skipped checks must not fail verification")
	}
}

func TestVerificationService_Verify_EmptyMatchID(t *testing.T) {
	t.Parallel()

	svc := NewVerificationService(&stubMatchSource{}, DefaultTimeTolerance, nil, nil)

	_, err := svc.Verify(context.Background(), "  ", verifyBase, "Ascent")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
