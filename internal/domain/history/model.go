package history

import (
	"time"

	"github.com/tournify/match-resolution/internal/domain/participant"
)

// Entry is one recent match in a participant's history.
type Entry struct {
	MatchID   string
	StartedAt time.Time
	MapName   string
}

// Aggregated is the per-participant outcome of the collection phase.
// A failed source fetch is normalized to SourceOK=false with no entries;
// it never aborts the surrounding run.
type Aggregated struct {
	Identity participant.Identity
	Entries  []Entry
	SourceOK bool
}

// Contains reports whether the participant's history includes matchID.
func (a Aggregated) Contains(matchID string) bool {
	for _, entry := range a.Entries {
		if entry.MatchID == matchID {
			return true
		}
	}
	return false
}
