package consensus

// Vote tallies support for one candidate match identifier. FirstSeen is
// the 1-based position of the identifier's first appearance in the
// flattened, request-ordered history multiset; it breaks count ties.
type Vote struct {
	MatchID   string
	Count     int
	FirstSeen int
}

// Resolution is the outcome of one quorum round. MatchID names the
// best-supported identifier and is authoritative only when Quorum is
// true. WithMatch and WithoutMatch partition the requested participants
// in request order: every participant appears in exactly one list.
type Resolution struct {
	MatchID        string
	SupportPercent float64
	Required       int
	Quorum         bool
	Votes          []Vote
	WithMatch      []string
	WithoutMatch   []string
}
