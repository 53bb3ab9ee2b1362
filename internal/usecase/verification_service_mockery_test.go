package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/tournify/match-resolution/internal/domain/participant"
	matchmock "github.com/tournify/match-resolution/internal/mocks/domain/match"
)

func TestVerificationService_Verify_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := matchmock.NewSource(t)
	svc := NewVerificationService(source, DefaultTimeTolerance, nil, nil)

	source.
		On("MatchDetails", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), "M1").
		Return(testRecord(verifyBase, "Ascent"), nil).
		Once()
	source.On("Driver").Return("mock")

	out, err := svc.Verify(ctx, "M1", verifyBase, "Ascent")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !out.Passed {
		t.Fatalf("expected verification to pass: %+v", out)
	}
	if out.Record.MapName != "Ascent" {
		t.Fatalf("unexpected canonical map: %s", out.Record.MapName)
	}
}

func TestHistoryService_Collect_SourceErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	source := matchmock.NewSource(t)
	svc := NewHistoryService(source, nil, nil, nil)

	alice := testIdentity("alice")
	bob := testIdentity("bob")

	source.
		On("PlayerHistory", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), alice).
		Return(testEntries("M1"), nil).
		Once()
	source.
		On("PlayerHistory", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), bob).
		Return(nil, errors.New("429 too many requests")).
		Once()
	source.On("Driver").Return("mock")

	out := svc.Collect(ctx, []participant.Identity{alice, bob})

	if len(out) != 2 {
		t.Fatalf("expected 2 results, got=%d", len(out))
	}
	if !out[0].SourceOK || out[1].SourceOK {
		t.Fatalf("expected alice ok and bob failed, got %v/%v", out[0].SourceOK, out[1].SourceOK)
	}
}
