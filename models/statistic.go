package models

// MatchHistoryEntry describes one match from the point of view of a single user.
type MatchHistoryEntry struct {
	MatchID           int      `json:"match_id"`
	IsWinner          bool     `json:"is_winner"`
	Score             int      `json:"score"`
	OpponentScore     int      `json:"opponent_score"`
	OpponentUsernames []string `json:"opponent_usernames"`
	EloChange         float64  `json:"elo_change"`
	DatePlayed        string   `json:"date_played"`
}

// RatingProjection is the result of a dry run of the rating update.
type RatingProjection struct {
	WinnerAvgRating float64         `json:"winner_avg_rating"`
	LoserAvgRating  float64         `json:"loser_avg_rating"`
	EloChangeWinner float64         `json:"elo_change_winner"`
	EloChangeLoser  float64         `json:"elo_change_loser"`
	Projected       map[int]float64 `json:"projected_ratings"`
}
