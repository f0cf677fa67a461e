package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserUsernameConflict = errors.New("user username conflict")
	ErrUserHasMatches       = errors.New("user is referenced by matches")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.User, error)
	ListByRating(ctx context.Context) ([]models.UserRanking, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int) error

	// LockByIDs row-locks the given users inside exec's transaction, in ascending id
	// order. The lock is FOR NO KEY UPDATE: concurrent rating writers wait for each
	// other while foreign key checks from other transactions do not.
	// Missing ids are simply absent from the result.
	LockByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.User, error)
	// AdjustRating adds delta to the stored rating of a user.
	AdjustRating(ctx context.Context, exec SQLExecutor, id int, delta float64) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, username, password_hash, rating, bio, picture, avatar_key, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, rating, bio, picture)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Rating,
		user.Bio,
		user.Picture,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return r.handleUserError(err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *postgresUserRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY id ASC`
	return r.queryUsers(ctx, r.db, query, pq.Array(ids))
}

func (r *postgresUserRepository) LockByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]*models.User, error) {
	if exec == nil {
		return nil, errors.New("LockByIDs requires a transaction")
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY id ASC FOR NO KEY UPDATE`
	return r.queryUsers(ctx, exec, query, pq.Array(ids))
}

func (r *postgresUserRepository) AdjustRating(ctx context.Context, exec SQLExecutor, id int, delta float64) error {
	if exec == nil {
		exec = r.db
	}
	result, err := exec.ExecContext(ctx, `UPDATE users SET rating = rating + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return mapPQError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) ListByRating(ctx context.Context) ([]models.UserRanking, error) {
	query := `SELECT id, username, rating FROM users ORDER BY rating DESC, username ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranking := make([]models.UserRanking, 0)
	for rows.Next() {
		var u models.UserRanking
		if err := rows.Scan(&u.ID, &u.Username, &u.Rating); err != nil {
			return nil, err
		}
		ranking = append(ranking, u)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ranking, nil
}

// Update writes the editable profile fields. Rating is deliberately not part of it:
// only match ingestion changes ratings.
func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			username = $1,
			password_hash = $2,
			bio = $3,
			picture = $4,
			avatar_key = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Bio,
		user.Picture,
		user.AvatarKey,
		user.ID,
	)
	if err != nil {
		return r.handleUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return r.handleUserError(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) handleUserError(err error) error {
	if code, constraint, ok := pqConstraint(err); ok {
		switch code {
		case "23505":
			if constraint == "users_username_key" {
				return ErrUserUsernameConflict
			}
		case "23503":
			if constraint == "matches_creator_id_fkey" || constraint == "match_participants_user_id_fkey" {
				return ErrUserHasMatches
			}
		}
	}
	return mapPQError(err)
}

func (r *postgresUserRepository) queryUsers(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.User, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapPQError(err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, mapPQError(err)
	}
	return users, nil
}

func (r *postgresUserRepository) scanUser(rowScanner interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := rowScanner.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Rating,
		&user.Bio,
		&user.Picture,
		&user.AvatarKey,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}
