package match

import (
	"context"

	"github.com/tournify/match-resolution/internal/domain/history"
	"github.com/tournify/match-resolution/internal/domain/participant"
)

// Source describes what use cases need from an upstream match provider.
type Source interface {
	// PlayerHistory returns the participant's recent custom matches.
	// Callers treat any error as an unavailable source for that
	// participant only.
	PlayerHistory(ctx context.Context, identity participant.Identity) ([]history.Entry, error)
	// MatchDetails returns the canonical record for a match identifier.
	MatchDetails(ctx context.Context, matchID string) (Record, error)
	// Driver names the configured backend for logs and metrics.
	Driver() string
}
