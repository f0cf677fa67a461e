// Package events publishes committed match results to the event stream.
package events

import (
	"time"

	"github.com/ShinAdam/Badminton-Elo-App/models"
)

const TypeMatchRecorded = "match.recorded"

type PlayerDelta struct {
	UserID    int     `json:"user_id"`
	Username  string  `json:"username"`
	Side      string  `json:"side"`
	EloChange float64 `json:"elo_change"`
}

// MatchRecorded is the payload written for every committed match.
type MatchRecorded struct {
	Type            string        `json:"type"`
	MatchID         int           `json:"match_id"`
	CreatorID       int           `json:"creator_id"`
	WinnerScore     int           `json:"winner_score"`
	LoserScore      int           `json:"loser_score"`
	DatePlayed      string        `json:"date_played"`
	WinnerAvgRating float64       `json:"winner_avg_rating"`
	LoserAvgRating  float64       `json:"loser_avg_rating"`
	Players         []PlayerDelta `json:"players"`
	RecordedAt      time.Time     `json:"recorded_at"`
}

func NewMatchRecorded(m *models.Match) MatchRecorded {
	players := make([]PlayerDelta, 0, len(m.Winners)+len(m.Losers))
	for _, p := range m.Winners {
		players = append(players, PlayerDelta{UserID: p.UserID, Username: p.Username, Side: string(p.Side), EloChange: m.EloChangeWinner})
	}
	for _, p := range m.Losers {
		players = append(players, PlayerDelta{UserID: p.UserID, Username: p.Username, Side: string(p.Side), EloChange: m.EloChangeLoser})
	}

	return MatchRecorded{
		Type:            TypeMatchRecorded,
		MatchID:         m.ID,
		CreatorID:       m.CreatorID,
		WinnerScore:     m.WinnerScore,
		LoserScore:      m.LoserScore,
		DatePlayed:      m.DatePlayed.Format("2006-01-02"),
		WinnerAvgRating: m.WinnerAvgRating,
		LoserAvgRating:  m.LoserAvgRating,
		Players:         players,
		RecordedAt:      m.CreatedAt,
	}
}
