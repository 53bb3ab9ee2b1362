package henrikdev

// Wire types for the HenrikDev Valorant API. Only the fields the
// resolution pipeline reads are mapped; the provider sends far more.

type matchListEnvelope struct {
	Status int             `json:"status"`
	Data   []matchListItem `json:"data"`
}

type matchListItem struct {
	Metadata matchListMetadata `json:"metadata"`
}

type matchListMetadata struct {
	MatchID   string   `json:"match_id"`
	Map       mapRef   `json:"map"`
	StartedAt string   `json:"started_at"`
	Queue     queueRef `json:"queue"`
}

type mapRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type queueRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ModeType string `json:"mode_type"`
}

type matchDetailEnvelope struct {
	Status int             `json:"status"`
	Data   matchDetailItem `json:"data"`
}

type matchDetailItem struct {
	Metadata matchDetailMetadata `json:"metadata"`
	Players  matchDetailPlayers  `json:"players"`
}

type matchDetailMetadata struct {
	MatchID      string `json:"matchid"`
	Map          string `json:"map"`
	GameStart    int64  `json:"game_start"`
	RoundsPlayed int    `json:"rounds_played"`
	Mode         string `json:"mode"`
	Region       string `json:"region"`
}

type matchDetailPlayers struct {
	AllPlayers []matchDetailPlayer `json:"all_players"`
}

type matchDetailPlayer struct {
	PUUID string           `json:"puuid"`
	Name  string           `json:"name"`
	Tag   string           `json:"tag"`
	Team  string           `json:"team"`
	Stats matchDetailStats `json:"stats"`
}

type matchDetailStats struct {
	Score   int `json:"score"`
	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`
}
