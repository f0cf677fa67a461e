package mockrepositories

import (
	"context"

	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/ShinAdam/Badminton-Elo-App/repositories"
	"github.com/stretchr/testify/mock"
)

type UserRepository struct {
	mock.Mock
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	args := r.Called(ctx, user)
	return args.Error(0)
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	args := r.Called(ctx, id)

	var res *models.User
	if args.Get(0) != nil {
		res = args.Get(0).(*models.User)
	}
	return res, args.Error(1)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := r.Called(ctx, username)

	var res *models.User
	if args.Get(0) != nil {
		res = args.Get(0).(*models.User)
	}
	return res, args.Error(1)
}

func (r *UserRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.User, error) {
	args := r.Called(ctx, ids)

	var res []*models.User
	if args.Get(0) != nil {
		res = args.Get(0).([]*models.User)
	}
	return res, args.Error(1)
}

func (r *UserRepository) ListByRating(ctx context.Context) ([]models.UserRanking, error) {
	args := r.Called(ctx)

	var res []models.UserRanking
	if args.Get(0) != nil {
		res = args.Get(0).([]models.UserRanking)
	}
	return res, args.Error(1)
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	args := r.Called(ctx, user)
	return args.Error(0)
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	args := r.Called(ctx, id)
	return args.Error(0)
}

func (r *UserRepository) LockByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]*models.User, error) {
	args := r.Called(ctx, exec, ids)

	var res []*models.User
	if args.Get(0) != nil {
		res = args.Get(0).([]*models.User)
	}
	return res, args.Error(1)
}

func (r *UserRepository) AdjustRating(ctx context.Context, exec repositories.SQLExecutor, id int, delta float64) error {
	args := r.Called(ctx, exec, id, delta)
	return args.Error(0)
}

type MatchRepository struct {
	mock.Mock
}

func (r *MatchRepository) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	args := r.Called(ctx, exec, match)
	return args.Error(0)
}

func (r *MatchRepository) AddParticipants(ctx context.Context, exec repositories.SQLExecutor, matchID int, winners, losers []int) error {
	args := r.Called(ctx, exec, matchID, winners, losers)
	return args.Error(0)
}

func (r *MatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	args := r.Called(ctx, id)

	var res *models.Match
	if args.Get(0) != nil {
		res = args.Get(0).(*models.Match)
	}
	return res, args.Error(1)
}

func (r *MatchRepository) List(ctx context.Context, limit int) ([]*models.Match, error) {
	args := r.Called(ctx, limit)

	var res []*models.Match
	if args.Get(0) != nil {
		res = args.Get(0).([]*models.Match)
	}
	return res, args.Error(1)
}

func (r *MatchRepository) ListByParticipant(ctx context.Context, userID int) ([]*models.Match, error) {
	args := r.Called(ctx, userID)

	var res []*models.Match
	if args.Get(0) != nil {
		res = args.Get(0).([]*models.Match)
	}
	return res, args.Error(1)
}

func (r *MatchRepository) ListIDsBySide(ctx context.Context, userID int) ([]int, []int, error) {
	args := r.Called(ctx, userID)

	var won, lost []int
	if args.Get(0) != nil {
		won = args.Get(0).([]int)
	}
	if args.Get(1) != nil {
		lost = args.Get(1).([]int)
	}
	return won, lost, args.Error(2)
}

func (r *MatchRepository) CountResults(ctx context.Context, userID int) (int, int, error) {
	args := r.Called(ctx, userID)
	return args.Int(0), args.Int(1), args.Error(2)
}

// Transactor runs fn with a nil executor and returns its error, so repository
// mocks see every call made inside the unit of work.
type Transactor struct {
	mock.Mock
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	args := t.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(nil)
}
