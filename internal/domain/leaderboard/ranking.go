package leaderboard

import (
	"sort"
	"strings"

	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/domain/participant"
)

// Build ranks the canonical roster by kills, then average combat score,
// both descending. The sort is stable, so canonical-record order breaks
// remaining ties.
//
// When requested identities are given, the roster is restricted to that
// set: players the record carries but nobody asked about (the opposing
// side, fill-ins) never appear in the ranking. Zero overlap yields an
// empty leaderboard.
func Build(record match.Record, requested []participant.Identity) []Entry {
	players := filterRequested(record.Players, requested)

	sorted := make([]match.PlayerStat, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Kills != sorted[j].Kills {
			return sorted[i].Kills > sorted[j].Kills
		}
		return sorted[i].AverageCombatScore > sorted[j].AverageCombatScore
	})

	out := make([]Entry, 0, len(sorted))
	for i, p := range sorted {
		out = append(out, Entry{
			Rank:               i + 1,
			PlayerID:           p.PlayerID,
			Kills:              p.Kills,
			AverageCombatScore: p.AverageCombatScore,
		})
	}

	return out
}

func filterRequested(players []match.PlayerStat, requested []participant.Identity) []match.PlayerStat {
	if len(requested) == 0 {
		return players
	}

	wanted := make(map[string]struct{}, len(requested)*2)
	for _, identity := range requested {
		wanted[strings.ToLower(identity.String())] = struct{}{}
		wanted[strings.ToLower(identity.Name)] = struct{}{}
	}

	filtered := make([]match.PlayerStat, 0, len(requested))
	for _, p := range players {
		if _, ok := wanted[strings.ToLower(p.PlayerID)]; ok {
			filtered = append(filtered, p)
		}
	}

	return filtered
}
