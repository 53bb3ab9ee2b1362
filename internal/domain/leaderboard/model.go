package leaderboard

// Entry is one ranked row of a match leaderboard. Ranks are 1-based
// positions after sorting, with no gaps: rows with equal kills and
// score keep their stable order and take consecutive distinct ranks.
type Entry struct {
	Rank               int
	PlayerID           string
	Kills              int
	AverageCombatScore float64
}
