package match

import "time"

// Match is a registered match stub returned by the create operation.
// Nothing is persisted: the identifier exists so organizers can hand it
// to players before resolution runs.
type Match struct {
	ID        string
	Status    string
	CreatedAt time.Time
}

const StatusCreated = "created"

// Record is the authoritative description of a finished custom match,
// fetched from the upstream source by match identifier.
type Record struct {
	MatchID   string
	StartedAt time.Time
	MapName   string
	Players   []PlayerStat
}

// PlayerStat is one player's line in a canonical match record.
type PlayerStat struct {
	PlayerID           string
	Kills              int
	AverageCombatScore float64
}
