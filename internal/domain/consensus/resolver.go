package consensus

import (
	"math"

	"github.com/tournify/match-resolution/internal/domain/history"
)

// Policy stores quorum resolution parameters.
type Policy struct {
	// Fraction of participants that must share a match identifier.
	Fraction float64
}

func DefaultPolicy() Policy {
	return Policy{Fraction: 0.70}
}

// Resolve tallies match identifiers across the collected histories and
// picks the best-supported one.
//
// Every requested participant counts toward N, including those whose
// source failed: an unreachable source is evidence of nothing. An
// identifier is counted at most once per participant. The quorum
// threshold is floor(N * Fraction), never below 1. Ties between equal
// counts go to the identifier seen first in the flattened multiset.
func Resolve(histories []history.Aggregated, policy Policy) Resolution {
	out := Resolution{}
	n := len(histories)
	if n == 0 {
		return out
	}

	fraction := policy.Fraction
	if fraction <= 0 || fraction > 1 {
		fraction = DefaultPolicy().Fraction
	}
	required := int(math.Floor(float64(n) * fraction))
	if required < 1 {
		required = 1
	}
	out.Required = required

	votes := make([]Vote, 0, 16)
	index := make(map[string]int, 16)
	position := 0
	for _, h := range histories {
		counted := make(map[string]struct{}, len(h.Entries))
		for _, entry := range h.Entries {
			position++
			if entry.MatchID == "" {
				continue
			}
			if _, dup := counted[entry.MatchID]; dup {
				continue
			}
			counted[entry.MatchID] = struct{}{}

			if i, ok := index[entry.MatchID]; ok {
				votes[i].Count++
				continue
			}
			index[entry.MatchID] = len(votes)
			votes = append(votes, Vote{MatchID: entry.MatchID, Count: 1, FirstSeen: position})
		}
	}
	out.Votes = votes

	// Votes are in first-encounter order, so keeping the earlier element
	// on equal counts implements the tie-break.
	best := -1
	for i := range votes {
		if best < 0 || votes[i].Count > votes[best].Count {
			best = i
		}
	}
	if best < 0 {
		out.WithoutMatch = make([]string, 0, n)
		for _, h := range histories {
			out.WithoutMatch = append(out.WithoutMatch, h.Identity.String())
		}
		return out
	}

	winner := votes[best]
	out.MatchID = winner.MatchID
	out.SupportPercent = float64(winner.Count) / float64(n) * 100
	out.Quorum = winner.Count >= required

	out.WithMatch = make([]string, 0, winner.Count)
	out.WithoutMatch = make([]string, 0, n-winner.Count)
	for _, h := range histories {
		if h.Contains(winner.MatchID) {
			out.WithMatch = append(out.WithMatch, h.Identity.String())
		} else {
			out.WithoutMatch = append(out.WithoutMatch, h.Identity.String())
		}
	}

	return out
}
