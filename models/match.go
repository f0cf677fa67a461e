package models

import "time"

type MatchSide string

const (
	SideWinner MatchSide = "winner"
	SideLoser  MatchSide = "loser"
)

// Participant is a user linked to a match on one side.
type Participant struct {
	UserID   int       `json:"user_id"`
	Username string    `json:"username"`
	Side     MatchSide `json:"side"`
}

// Match is immutable after creation.
//
// WinnerUsernames, LoserUsernames, the average ratings and the Elo changes are a
// snapshot written once, in the same statement that creates the row. They are derived
// from the participant links and the pre-match ratings; recomputing them on read would
// also be valid and is never done here.
type Match struct {
	ID          int       `json:"id"`
	CreatorID   int       `json:"creator_id"`
	WinnerScore int       `json:"winner_score"`
	LoserScore  int       `json:"loser_score"`
	DatePlayed  time.Time `json:"date_played"`
	CreatedAt   time.Time `json:"created_at"`

	WinnerUsernames []string `json:"winner_usernames"`
	LoserUsernames  []string `json:"loser_usernames"`
	WinnerAvgRating float64  `json:"winner_avg_rating"`
	LoserAvgRating  float64  `json:"loser_avg_rating"`
	EloChangeWinner float64  `json:"elo_change_winner"`
	EloChangeLoser  float64  `json:"elo_change_loser"`

	Winners []Participant `json:"winners,omitempty"`
	Losers  []Participant `json:"losers,omitempty"`
}

// WinnerIDs returns the ids of the linked winners in link order.
func (m *Match) WinnerIDs() []int {
	return participantIDs(m.Winners)
}

// LoserIDs returns the ids of the linked losers in link order.
func (m *Match) LoserIDs() []int {
	return participantIDs(m.Losers)
}

func participantIDs(ps []Participant) []int {
	ids := make([]int, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.UserID)
	}
	return ids
}
