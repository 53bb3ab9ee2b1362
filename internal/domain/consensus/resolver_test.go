package consensus

import (
	"fmt"
	"testing"

	"github.com/tournify/match-resolution/internal/domain/history"
	"github.com/tournify/match-resolution/internal/domain/participant"
)

func collected(name string, matchIDs ...string) history.Aggregated {
	entries := make([]history.Entry, 0, len(matchIDs))
	for _, id := range matchIDs {
		entries = append(entries, history.Entry{MatchID: id})
	}
	return history.Aggregated{
		Identity: participant.Identity{Name: name, Tag: "001", Region: "eu", Platform: "pc"},
		Entries:  entries,
		SourceOK: true,
	}
}

func failedSource(name string) history.Aggregated {
	return history.Aggregated{
		Identity: participant.Identity{Name: name, Tag: "001", Region: "eu", Platform: "pc"},
		SourceOK: false,
	}
}

func TestResolve_SevenOfTenReachQuorum(t *testing.T) {
	t.Parallel()

	histories := make([]history.Aggregated, 0, 10)
	for i := 0; i < 7; i++ {
		histories = append(histories, collected(fmt.Sprintf("shared%d", i), "m-shared", fmt.Sprintf("m-own-%d", i)))
	}
	for i := 0; i < 3; i++ {
		histories = append(histories, collected(fmt.Sprintf("lone%d", i), fmt.Sprintf("m-lone-%d", i)))
	}

	got := Resolve(histories, DefaultPolicy())
	if !got.Quorum {
		t.Fatalf("expected quorum with 7 of 10 sharing a match")
	}
	if got.Required != 7 {
		t.Fatalf("unexpected required count: got=%d want=7", got.Required)
	}
	if got.MatchID != "m-shared" {
		t.Fatalf("unexpected winner: %q", got.MatchID)
	}
	if got.SupportPercent != 70.0 {
		t.Fatalf("unexpected support percent: got=%v want=70.0", got.SupportPercent)
	}
	if len(got.WithMatch) != 7 || len(got.WithoutMatch) != 3 {
		t.Fatalf("unexpected partition sizes: with=%d without=%d", len(got.WithMatch), len(got.WithoutMatch))
	}
}

func TestResolve_DisjointHistoriesMissQuorum(t *testing.T) {
	t.Parallel()

	histories := []history.Aggregated{
		collected("alpha", "m-a1", "m-a2"),
		collected("bravo", "m-b1", "m-b2"),
		collected("charlie", "m-c1"),
	}

	got := Resolve(histories, DefaultPolicy())
	if got.Quorum {
		t.Fatalf("expected no quorum for disjoint histories")
	}
	if got.Required != 2 {
		t.Fatalf("unexpected required count: got=%d want=2", got.Required)
	}
	if len(got.WithMatch)+len(got.WithoutMatch) != len(histories) {
		t.Fatalf("partition is not exhaustive: with=%d without=%d", len(got.WithMatch), len(got.WithoutMatch))
	}
}

func TestResolve_TieBreaksToFirstEncounter(t *testing.T) {
	t.Parallel()

	// Both identifiers end on count 2; m-second appears first in the
	// flattened multiset and must win.
	histories := []history.Aggregated{
		collected("alpha", "m-second", "m-first"),
		collected("bravo", "m-first", "m-second"),
	}

	got := Resolve(histories, DefaultPolicy())
	if got.MatchID != "m-second" {
		t.Fatalf("tie should break to first encounter, got %q", got.MatchID)
	}
	if !got.Quorum {
		t.Fatalf("expected quorum: 2 of 2 share both candidates")
	}
}

func TestResolve_CountsIdentifierOncePerParticipant(t *testing.T) {
	t.Parallel()

	histories := []history.Aggregated{
		collected("alpha", "m-dup", "m-dup", "m-dup"),
		collected("bravo", "m-x"),
		collected("charlie", "m-y"),
	}

	got := Resolve(histories, DefaultPolicy())
	if got.Quorum {
		t.Fatalf("repeated entries from one participant must not reach quorum")
	}
	for _, vote := range got.Votes {
		if vote.MatchID == "m-dup" && vote.Count != 1 {
			t.Fatalf("unexpected duplicate count: got=%d want=1", vote.Count)
		}
	}
}

func TestResolve_FailedSourcesStayInDenominator(t *testing.T) {
	t.Parallel()

	histories := []history.Aggregated{
		collected("alpha", "m-shared"),
		collected("bravo", "m-shared"),
		failedSource("charlie"),
	}

	got := Resolve(histories, DefaultPolicy())
	if got.Required != 2 {
		t.Fatalf("unexpected required count: got=%d want=2", got.Required)
	}
	if !got.Quorum {
		t.Fatalf("expected quorum with 2 of 3 sharing a match")
	}
	if got.SupportPercent <= 66.0 || got.SupportPercent >= 67.0 {
		t.Fatalf("unexpected support percent: got=%v want~66.67", got.SupportPercent)
	}
	if len(got.WithoutMatch) != 1 || got.WithoutMatch[0] != "charlie#001" {
		t.Fatalf("failed source should land in WithoutMatch, got %+v", got.WithoutMatch)
	}
}

func TestResolve_EmptyHistoriesYieldNoWinner(t *testing.T) {
	t.Parallel()

	histories := []history.Aggregated{
		failedSource("alpha"),
		failedSource("bravo"),
	}

	got := Resolve(histories, DefaultPolicy())
	if got.Quorum {
		t.Fatalf("expected no quorum when nothing was collected")
	}
	if got.MatchID != "" {
		t.Fatalf("unexpected winner: %q", got.MatchID)
	}
	if len(got.WithoutMatch) != 2 {
		t.Fatalf("expected all participants in WithoutMatch, got %+v", got.WithoutMatch)
	}
}

func TestResolve_RequiredNeverBelowOne(t *testing.T) {
	t.Parallel()

	histories := []history.Aggregated{
		collected("alpha", "m-1"),
		collected("bravo", "m-2"),
	}

	got := Resolve(histories, Policy{Fraction: 0.1})
	if got.Required != 1 {
		t.Fatalf("unexpected required count: got=%d want=1", got.Required)
	}
	if !got.Quorum {
		t.Fatalf("expected quorum with threshold clamped to 1")
	}
}
