package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Rating       float64   `json:"rating"`
	Bio          *string   `json:"bio,omitempty"`
	Picture      *string   `json:"picture,omitempty"`
	AvatarKey    *string   `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRanking is one row of the leaderboard.
type UserRanking struct {
	Rank     int     `json:"rank"`
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Rating   float64 `json:"rating"`
}

// UserProfile is a user together with the matches they took part in.
type UserProfile struct {
	User
	MatchesWon    []int   `json:"matches_won"`
	MatchesLost   []int   `json:"matches_lost"`
	WinPercentage float64 `json:"win_percentage"`
}
