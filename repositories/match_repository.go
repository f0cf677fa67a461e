package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound            = errors.New("match not found")
	ErrMatchParticipantConflict = errors.New("match participant conflict or invalid")
	ErrMatchCreatorInvalid      = errors.New("match creator conflict or invalid")
)

type MatchRepository interface {
	// Create inserts the match row including its snapshot fields.
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	// AddParticipants links winners and losers to an existing match.
	AddParticipants(ctx context.Context, exec SQLExecutor, matchID int, winners, losers []int) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// List returns matches newest first. A limit <= 0 returns every match.
	List(ctx context.Context, limit int) ([]*models.Match, error)
	ListByParticipant(ctx context.Context, userID int) ([]*models.Match, error)
	// ListIDsBySide returns the ids of the matches a user won and lost.
	ListIDsBySide(ctx context.Context, userID int) (won []int, lost []int, err error)
	CountResults(ctx context.Context, userID int) (wins int, losses int, err error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	m.id, m.creator_id, m.winner_score, m.loser_score, m.date_played, m.created_at,
	m.winner_usernames, m.loser_usernames, m.winner_avg_rating, m.loser_avg_rating,
	m.elo_change_winner, m.elo_change_loser`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(creator_id, winner_score, loser_score, date_played,
			 winner_usernames, loser_usernames, winner_avg_rating, loser_avg_rating,
			 elo_change_winner, elo_change_loser)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		match.CreatorID,
		match.WinnerScore,
		match.LoserScore,
		match.DatePlayed,
		pq.Array(match.WinnerUsernames),
		pq.Array(match.LoserUsernames),
		match.WinnerAvgRating,
		match.LoserAvgRating,
		match.EloChangeWinner,
		match.EloChangeLoser,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) AddParticipants(ctx context.Context, exec SQLExecutor, matchID int, winners, losers []int) error {
	if len(winners)+len(losers) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO match_participants (match_id, user_id, side) VALUES `)
	args := make([]interface{}, 0, 3*(len(winners)+len(losers)))
	appendRow := func(userID int, side models.MatchSide) {
		if len(args) > 0 {
			sb.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, matchID, userID, string(side))
	}
	for _, id := range winners {
		appendRow(id, models.SideWinner)
	}
	for _, id := range losers {
		appendRow(id, models.SideLoser)
	}

	_, err := r.getExecutor(exec).ExecContext(ctx, sb.String(), args...)
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches m WHERE m.id = $1`

	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}

	if err := r.loadParticipants(ctx, []*models.Match{match}); err != nil {
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, limit int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches m ORDER BY m.date_played DESC, m.id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return r.queryMatches(ctx, query, args...)
}

func (r *postgresMatchRepository) ListByParticipant(ctx context.Context, userID int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches m
		JOIN match_participants mp ON mp.match_id = m.id
		WHERE mp.user_id = $1
		ORDER BY m.date_played DESC, m.id DESC`
	return r.queryMatches(ctx, query, userID)
}

func (r *postgresMatchRepository) ListIDsBySide(ctx context.Context, userID int) ([]int, []int, error) {
	query := `SELECT match_id, side FROM match_participants WHERE user_id = $1 ORDER BY match_id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	won, lost := make([]int, 0), make([]int, 0)
	for rows.Next() {
		var matchID int
		var side models.MatchSide
		if err := rows.Scan(&matchID, &side); err != nil {
			return nil, nil, err
		}
		if side == models.SideWinner {
			won = append(won, matchID)
		} else {
			lost = append(lost, matchID)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, nil, err
	}
	return won, lost, nil
}

func (r *postgresMatchRepository) CountResults(ctx context.Context, userID int) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE side = 'winner'),
			COUNT(*) FILTER (WHERE side = 'loser')
		FROM match_participants
		WHERE user_id = $1`

	var wins, losses int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&wins, &losses); err != nil {
		return 0, 0, fmt.Errorf("failed to count results for user %d: %w", userID, err)
	}
	return wins, losses, nil
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, errScan := scanMatch(rows)
		if errScan != nil {
			return nil, errScan
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadParticipants(ctx, matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// loadParticipants fills Winners and Losers for all matches with one query.
func (r *postgresMatchRepository) loadParticipants(ctx context.Context, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}

	byID := make(map[int]*models.Match, len(matches))
	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	query := `
		SELECT mp.match_id, mp.user_id, u.username, mp.side
		FROM match_participants mp
		JOIN users u ON u.id = mp.user_id
		WHERE mp.match_id = ANY($1)
		ORDER BY mp.match_id ASC, u.id ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load match participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var matchID int
		var p models.Participant
		if err := rows.Scan(&matchID, &p.UserID, &p.Username, &p.Side); err != nil {
			return fmt.Errorf("failed to scan match participant: %w", err)
		}
		m, ok := byID[matchID]
		if !ok {
			continue
		}
		if p.Side == models.SideWinner {
			m.Winners = append(m.Winners, p)
		} else {
			m.Losers = append(m.Losers, p)
		}
	}
	return rows.Err()
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqConstraint(err); ok {
		switch code {
		case "23505":
			if constraint == "match_participants_pkey" {
				return ErrMatchParticipantConflict
			}
		case "23503":
			switch constraint {
			case "match_participants_user_id_fkey":
				return ErrMatchParticipantConflict
			case "matches_creator_id_fkey":
				return ErrMatchCreatorInvalid
			}
		}
	}
	return mapPQError(err)
}

func scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := rowScanner.Scan(
		&m.ID,
		&m.CreatorID,
		&m.WinnerScore,
		&m.LoserScore,
		&m.DatePlayed,
		&m.CreatedAt,
		pq.Array(&m.WinnerUsernames),
		pq.Array(&m.LoserUsernames),
		&m.WinnerAvgRating,
		&m.LoserAvgRating,
		&m.EloChangeWinner,
		&m.EloChangeLoser,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}
