package mockservices

import (
	"context"
	"io"

	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/ShinAdam/Badminton-Elo-App/services"
	"github.com/stretchr/testify/mock"
)

type MatchService struct {
	mock.Mock
}

func (s *MatchService) SubmitMatch(ctx context.Context, creatorID int, input services.SubmitMatchInput) (*models.Match, error) {
	args := s.Called(ctx, creatorID, input)

	var res *models.Match
	if args.Get(0) != nil {
		res = args.Get(0).(*models.Match)
	}
	return res, args.Error(1)
}

func (s *MatchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	args := s.Called(ctx, id)

	var res *models.Match
	if args.Get(0) != nil {
		res = args.Get(0).(*models.Match)
	}
	return res, args.Error(1)
}

func (s *MatchService) ListAll(ctx context.Context) ([]*models.Match, error) {
	args := s.Called(ctx)
	return matches(args.Get(0)), args.Error(1)
}

func (s *MatchService) ListRecent(ctx context.Context, limit int) ([]*models.Match, error) {
	args := s.Called(ctx, limit)
	return matches(args.Get(0)), args.Error(1)
}

func (s *MatchService) ListByParticipant(ctx context.Context, userID int) ([]*models.Match, error) {
	args := s.Called(ctx, userID)
	return matches(args.Get(0)), args.Error(1)
}

func matches(v interface{}) []*models.Match {
	if v == nil {
		return nil
	}
	return v.([]*models.Match)
}

type UserService struct {
	mock.Mock
}

func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	args := s.Called(ctx, id)
	return user(args.Get(0)), args.Error(1)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := s.Called(ctx, username)
	return user(args.Get(0)), args.Error(1)
}

func (s *UserService) GetProfile(ctx context.Context, id int) (*models.UserProfile, error) {
	args := s.Called(ctx, id)

	var res *models.UserProfile
	if args.Get(0) != nil {
		res = args.Get(0).(*models.UserProfile)
	}
	return res, args.Error(1)
}

func (s *UserService) Ranking(ctx context.Context) ([]models.UserRanking, error) {
	args := s.Called(ctx)

	var res []models.UserRanking
	if args.Get(0) != nil {
		res = args.Get(0).([]models.UserRanking)
	}
	return res, args.Error(1)
}

func (s *UserService) UpdateProfile(ctx context.Context, actorID, id int, input services.UpdateUserInput) (*models.User, error) {
	args := s.Called(ctx, actorID, id, input)
	return user(args.Get(0)), args.Error(1)
}

func (s *UserService) Delete(ctx context.Context, actorID, id int) error {
	args := s.Called(ctx, actorID, id)
	return args.Error(0)
}

func (s *UserService) UploadAvatar(ctx context.Context, actorID, id int, contentType string, file io.Reader) (*models.User, error) {
	args := s.Called(ctx, actorID, id, contentType, file)
	return user(args.Get(0)), args.Error(1)
}

func user(v interface{}) *models.User {
	if v == nil {
		return nil
	}
	return v.(*models.User)
}

type StatisticService struct {
	mock.Mock
}

func (s *StatisticService) WinPercentage(ctx context.Context, userID int) (float64, error) {
	args := s.Called(ctx, userID)
	return args.Get(0).(float64), args.Error(1)
}

func (s *StatisticService) UserMatchHistory(ctx context.Context, userID int) ([]models.MatchHistoryEntry, error) {
	args := s.Called(ctx, userID)

	var res []models.MatchHistoryEntry
	if args.Get(0) != nil {
		res = args.Get(0).([]models.MatchHistoryEntry)
	}
	return res, args.Error(1)
}

func (s *StatisticService) ProjectRatingChange(ctx context.Context, winners, losers []int) (*models.RatingProjection, error) {
	args := s.Called(ctx, winners, losers)

	var res *models.RatingProjection
	if args.Get(0) != nil {
		res = args.Get(0).(*models.RatingProjection)
	}
	return res, args.Error(1)
}

type AuthService struct {
	mock.Mock
}

func (s *AuthService) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	args := s.Called(ctx, input)
	return user(args.Get(0)), args.Error(1)
}

func (s *AuthService) Login(ctx context.Context, input services.LoginInput) (*services.LoginResult, error) {
	args := s.Called(ctx, input)

	var res *services.LoginResult
	if args.Get(0) != nil {
		res = args.Get(0).(*services.LoginResult)
	}
	return res, args.Error(1)
}

func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*services.AccessToken, error) {
	args := s.Called(ctx, rawToken)

	var res *services.AccessToken
	if args.Get(0) != nil {
		res = args.Get(0).(*services.AccessToken)
	}
	return res, args.Error(1)
}

func (s *AuthService) Logout(ctx context.Context, token *services.AccessToken) error {
	args := s.Called(ctx, token)
	return args.Error(0)
}
