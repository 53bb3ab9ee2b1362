package riotsim

// Wire types for the riotsim provider. The shapes mirror what the sim
// binary in cmd/riotsim serves.

type matchRequest struct {
	MatchID string `json:"match_id"`
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

type playerStats struct {
	PlayerID           string  `json:"player_id"`
	Kills              int     `json:"kills"`
	AverageCombatScore float64 `json:"average_combat_score"`
}

type matchResponse struct {
	MatchID        string        `json:"match_id"`
	MatchStartTime string        `json:"match_start_time"`
	Map            string        `json:"map"`
	Players        []playerStats `json:"players"`
}

type playerMatchHistory struct {
	PlayerID      string   `json:"player_id"`
	RecentMatches []string `json:"recent_matches"`
}
