package riotsim

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/tournify/match-resolution/internal/domain/match"
)

const (
	playersPerMatch = 10
	// sharedMatchID appears in every player's history so a full lobby
	// can reach quorum against the simulator.
	sharedMatchID = "test_match_123"
)

var mapPool = []string{
	"Ascent", "Bind", "Haven", "Split", "Icebox",
	"Breeze", "Fracture", "Pearl", "Lotus", "Sunset",
}

// Dataset fabricates match data for local development. Records are
// memoized per match id, so the verification fetch and the ranking
// fetch of one resolution observe the same lobby.
type Dataset struct {
	mu      sync.Mutex
	rng     *rand.Rand
	now     func() time.Time
	matches map[string]match.Record
}

func NewDataset(seed int64) *Dataset {
	return &Dataset{
		rng:     rand.New(rand.NewSource(seed)),
		now:     time.Now,
		matches: make(map[string]match.Record),
	}
}

// Match returns the fabricated record for the given id, generating and
// memoizing it on first use.
func (d *Dataset) Match(matchID string) match.Record {
	d.mu.Lock()
	defer d.mu.Unlock()

	if record, ok := d.matches[matchID]; ok {
		return record
	}
	record := d.generate(matchID)
	d.matches[matchID] = record
	return record
}

func (d *Dataset) generate(matchID string) match.Record {
	players := make([]match.PlayerStat, 0, playersPerMatch)
	for i := 0; i < playersPerMatch; i++ {
		kills := d.rng.Intn(26)
		players = append(players, match.PlayerStat{
			PlayerID:           fmt.Sprintf("player_%s_%d", matchID, i+1),
			Kills:              kills,
			AverageCombatScore: d.combatScore(kills),
		})
	}

	daysAgo := time.Duration(d.rng.Intn(31)) * 24 * time.Hour
	hoursAgo := time.Duration(d.rng.Intn(24)) * time.Hour
	minutesAgo := time.Duration(d.rng.Intn(60)) * time.Minute

	return match.Record{
		MatchID:   matchID,
		MapName:   mapPool[d.rng.Intn(len(mapPool))],
		StartedAt: d.now().Add(-(daysAgo + hoursAgo + minutesAgo)).UTC().Truncate(time.Second),
		Players:   players,
	}
}

// combatScore correlates ACS with kills: a base of 150 plus 8 per kill,
// jittered by up to 15% and clamped to the 150..350 band.
func (d *Dataset) combatScore(kills int) float64 {
	base := 150 + float64(kills)*8
	variation := -0.15 + d.rng.Float64()*0.3
	score := math.Round(base*(1+variation)*100) / 100
	if score < 150 {
		score = 150
	}
	if score > 350 {
		score = 350
	}
	return score
}

// PlayerMatches lists the ids one player recently appeared in. Four ids
// derive from the player's trailing number and the fifth is the shared
// lobby every player has in common.
func PlayerMatches(playerID string) []string {
	number := "1"
	trimmed := strings.TrimSpace(playerID)
	if strings.HasPrefix(trimmed, "player_") {
		if parts := strings.Split(trimmed, "_"); len(parts) >= 4 {
			number = parts[len(parts)-1]
		}
	}

	out := make([]string, 0, 5)
	for i := 1; i <= 4; i++ {
		out = append(out, fmt.Sprintf("player_%s_match_%d", number, i))
	}
	return append(out, sharedMatchID)
}
