package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/ShinAdam/Badminton-Elo-App/repositories"
	"github.com/ShinAdam/Badminton-Elo-App/repositories/mockrepositories"
	"github.com/ShinAdam/Badminton-Elo-App/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	mock.Mock
}

func (u *mockUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	args := u.Called(ctx, key, contentType, reader)

	var res *storage.UploadResult
	if args.Get(0) != nil {
		res = args.Get(0).(*storage.UploadResult)
	}
	return res, args.Error(1)
}

func (u *mockUploader) Delete(ctx context.Context, key string) error {
	return u.Called(ctx, key).Error(0)
}

func (u *mockUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func newUserFixture() (*userService, *mockrepositories.UserRepository, *mockrepositories.MatchRepository, *mockUploader) {
	users := &mockrepositories.UserRepository{}
	matches := &mockrepositories.MatchRepository{}
	uploader := &mockUploader{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewUserService(users, matches, uploader, logger).(*userService), users, matches, uploader
}

func TestGetProfile(t *testing.T) {
	svc, users, matches, _ := newUserFixture()
	ctx := context.Background()

	users.On("GetByID", mock.Anything, 4).Return(&models.User{ID: 4, Username: "dan", Rating: 1012.5}, nil)
	matches.On("ListIDsBySide", mock.Anything, 4).Return([]int{1, 3, 4}, []int{2}, nil)

	p, err := svc.GetProfile(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "dan", p.Username)
	assert.Equal(t, []int{1, 3, 4}, p.MatchesWon)
	assert.Equal(t, []int{2}, p.MatchesLost)
	assert.Equal(t, 75.0, p.WinPercentage)
}

func TestGetProfile_UnknownUser(t *testing.T) {
	svc, users, matches, _ := newUserFixture()

	users.On("GetByID", mock.Anything, 4).Return(nil, repositories.ErrUserNotFound)
	matches.On("ListIDsBySide", mock.Anything, 4).Return([]int{}, []int{}, nil).Maybe()

	_, err := svc.GetProfile(context.Background(), 4)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRanking_AssignsRanks(t *testing.T) {
	svc, users, _, _ := newUserFixture()
	ctx := context.Background()
	users.On("ListByRating", ctx).Return([]models.UserRanking{
		{ID: 2, Username: "ben", Rating: 1030},
		{ID: 1, Username: "ann", Rating: 990},
	}, nil)

	ranking, err := svc.Ranking(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, 2, ranking[1].Rank)
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _, _ := newUserFixture()
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, 1, 2, UpdateUserInput{})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	users.On("GetByID", ctx, 1).Return(&models.User{ID: 1, Username: "ann", Rating: 1100}, nil)
	users.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "annie" && u.Bio != nil && *u.Bio == "net player" && u.Rating == 1100
	})).Return(nil).Once()

	name, bio := "annie", "net player"
	u, err := svc.UpdateProfile(ctx, 1, 1, UpdateUserInput{Username: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "annie", u.Username)
	users.AssertExpectations(t)
}

func TestDelete_UserWithMatchesIsConflict(t *testing.T) {
	svc, users, _, _ := newUserFixture()
	ctx := context.Background()
	users.On("GetByID", ctx, 1).Return(&models.User{ID: 1}, nil)
	users.On("Delete", ctx, 1).Return(repositories.ErrUserHasMatches)

	err := svc.Delete(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrUserHasMatches)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUploadAvatar(t *testing.T) {
	svc, users, _, uploader := newUserFixture()
	ctx := context.Background()

	_, err := svc.UploadAvatar(ctx, 1, 1, "application/pdf", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	old := "avatars/1/old.png"
	users.On("GetByID", ctx, 1).Return(&models.User{ID: 1, Username: "ann", AvatarKey: &old}, nil)
	uploader.On("Upload", ctx, mock.AnythingOfType("string"), "image/png", mock.Anything).
		Return(&storage.UploadResult{Key: "k"}, nil).Once()
	users.On("Update", ctx, mock.Anything).Return(nil).Once()
	uploader.On("Delete", ctx, old).Return(errors.New("gone already")).Once()

	u, err := svc.UploadAvatar(ctx, 1, 1, "image/png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	require.NotNil(t, u.AvatarKey)
	assert.Contains(t, *u.AvatarKey, "avatars/1/")
	require.NotNil(t, u.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/"+*u.AvatarKey, *u.AvatarURL)
	uploader.AssertExpectations(t)
}

func TestUploadAvatar_NotConfigured(t *testing.T) {
	svc := NewUserService(&mockrepositories.UserRepository{}, &mockrepositories.MatchRepository{}, nil, nil)
	_, err := svc.UploadAvatar(context.Background(), 1, 1, "image/png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUploadNotConfigured)
}
