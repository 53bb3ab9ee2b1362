package riotsim

import (
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/platform/logging"
)

const maxBodyBytes = 1 << 20

type matchRequest struct {
	MatchID string `json:"match_id"`
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

type playerBody struct {
	PlayerID           string  `json:"player_id"`
	Kills              int     `json:"kills"`
	AverageCombatScore float64 `json:"average_combat_score"`
}

type matchBody struct {
	MatchID        string       `json:"match_id"`
	MatchStartTime string       `json:"match_start_time"`
	Map            string       `json:"map"`
	Players        []playerBody `json:"players"`
}

type historyBody struct {
	PlayerID      string   `json:"player_id"`
	RecentMatches []string `json:"recent_matches"`
}

// Server exposes the simulator over HTTP, speaking the same POST
// protocol the riotsim source client consumes.
type Server struct {
	dataset *Dataset
	logger  *logging.Logger
}

func NewServer(dataset *Dataset, logger *logging.Logger) *Server {
	if dataset == nil {
		dataset = NewDataset(time.Now().UnixNano())
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Server{dataset: dataset, logger: logger.Named("riotsim")}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /matches/{$}", s.handleMatch)
	mux.HandleFunc("POST /matches/player-history", s.handlePlayerHistory)
	return allowAllCORS(mux)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "riotsim match simulator is running",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /matches/":               "fabricated match record with player stats",
			"POST /matches/player-history": "recent match ids for a player",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !s.decode(w, r, &req) {
		return
	}

	matchID := strings.TrimSpace(req.MatchID)
	if matchID == "" {
		s.writeDetail(w, http.StatusUnprocessableEntity, "match_id is required")
		return
	}

	record := s.dataset.Match(matchID)
	s.logger.DebugContext(r.Context(), "served match record",
		"match_id", matchID,
		"map", record.MapName,
		"players", len(record.Players),
	)
	s.writeJSON(w, http.StatusOK, matchBodyFromRecord(record))
}

func (s *Server) handlePlayerHistory(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !s.decode(w, r, &req) {
		return
	}

	playerID := strings.TrimSpace(req.PlayerID)
	if playerID == "" {
		s.writeDetail(w, http.StatusUnprocessableEntity, "player_id is required")
		return
	}

	s.writeJSON(w, http.StatusOK, historyBody{
		PlayerID:      playerID,
		RecentMatches: PlayerMatches(playerID),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeDetail(w, http.StatusBadRequest, "read request body")
		return false
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		s.writeDetail(w, http.StatusUnprocessableEntity, "request body must be valid json")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	raw, err := sonic.Marshal(payload)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func (s *Server) writeDetail(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}

func matchBodyFromRecord(record match.Record) matchBody {
	players := make([]playerBody, 0, len(record.Players))
	for _, player := range record.Players {
		players = append(players, playerBody{
			PlayerID:           player.PlayerID,
			Kills:              player.Kills,
			AverageCombatScore: player.AverageCombatScore,
		})
	}
	return matchBody{
		MatchID:        record.MatchID,
		MatchStartTime: record.StartedAt.Format(time.RFC3339),
		Map:            record.MapName,
		Players:        players,
	}
}

func allowAllCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,Accept")
		w.Header().Set("Access-Control-Max-Age", "600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
