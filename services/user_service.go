package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/ShinAdam/Badminton-Elo-App/repositories"
	"github.com/ShinAdam/Badminton-Elo-App/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const avatarFolder = "avatars"

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context, id int) (*models.UserProfile, error)
	Ranking(ctx context.Context) ([]models.UserRanking, error)
	UpdateProfile(ctx context.Context, actorID, id int, input UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, actorID, id int) error
	UploadAvatar(ctx context.Context, actorID, id int, contentType string, file io.Reader) (*models.User, error)
}

// UpdateUserInput carries optional profile changes. Rating is not editable.
type UpdateUserInput struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Picture  *string `json:"picture,omitempty"`
}

type userService struct {
	userRepo  repositories.UserRepository
	matchRepo repositories.MatchRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, matchRepo repositories.MatchRepository, uploader storage.FileUploader, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo:  userRepo,
		matchRepo: matchRepo,
		uploader:  uploader,
		logger:    logger.With(slog.String("service", "user")),
	}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserRepoError(err, fmt.Sprintf("id %d", id))
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapUserRepoError(err, fmt.Sprintf("username %q", username))
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, id int) (*models.UserProfile, error) {
	var (
		user      *models.User
		won, lost []int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.userRepo.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		won, lost, err = s.matchRepo.ListIDsBySide(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, mapUserRepoError(err, fmt.Sprintf("id %d", id))
	}

	s.populateAvatarURL(user)
	return &models.UserProfile{
		User:          *user,
		MatchesWon:    won,
		MatchesLost:   lost,
		WinPercentage: CalculateWinPercentage(len(won), len(lost)),
	}, nil
}

func (s *userService) Ranking(ctx context.Context) ([]models.UserRanking, error) {
	ranking, err := s.userRepo.ListByRating(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load ranking: %v", ErrStorage, err)
	}
	for i := range ranking {
		ranking[i].Rank = i + 1
	}
	return ranking, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actorID, id int, input UpdateUserInput) (*models.User, error) {
	if actorID != id {
		return nil, ErrForbiddenOperation
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserRepoError(err, fmt.Sprintf("id %d", id))
	}

	if input.Username != nil {
		username, err := normalizeUsername(*input.Username)
		if err != nil {
			return nil, err
		}
		user.Username = username
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if input.Bio != nil {
		user.Bio = emptyToNil(*input.Bio)
	}
	if input.Picture != nil {
		user.Picture = emptyToNil(*input.Picture)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserUsernameConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, mapUserRepoError(err, fmt.Sprintf("id %d", id))
	}

	s.populateAvatarURL(user)
	return user, nil
}

// Delete removes a user who never played. Matches are immutable, so a user that
// appears in any match cannot be removed.
func (s *userService) Delete(ctx context.Context, actorID, id int) error {
	if actorID != id {
		return ErrForbiddenOperation
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return mapUserRepoError(err, fmt.Sprintf("id %d", id))
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrUserHasMatches) {
			return ErrUserHasMatches
		}
		return mapUserRepoError(err, fmt.Sprintf("id %d", id))
	}

	if user.AvatarKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *user.AvatarKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete avatar of removed user",
				slog.Int("user_id", id), slog.String("key", *user.AvatarKey), slog.Any("error", err))
		}
	}
	return nil
}

func (s *userService) UploadAvatar(ctx context.Context, actorID, id int, contentType string, file io.Reader) (*models.User, error) {
	if actorID != id {
		return nil, ErrForbiddenOperation
	}
	if s.uploader == nil {
		return nil, ErrUploadNotConfigured
	}
	ext, ok := allowedAvatarTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, contentType)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserRepoError(err, fmt.Sprintf("id %d", id))
	}

	key := path.Join(avatarFolder, fmt.Sprintf("%d", id), fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.NewString(), ext))
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	oldKey := user.AvatarKey
	user.AvatarKey = &key
	if err := s.userRepo.Update(ctx, user); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to clean up uploaded avatar", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, mapUserRepoError(err, fmt.Sprintf("id %d", id))
	}

	if oldKey != nil && *oldKey != "" && *oldKey != key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous avatar", slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) populateAvatarURL(user *models.User) {
	if user == nil || user.AvatarKey == nil || *user.AvatarKey == "" || s.uploader == nil {
		return
	}
	url := s.uploader.GetPublicURL(*user.AvatarKey)
	if url != "" {
		user.AvatarURL = &url
	}
}

func mapUserRepoError(err error, ref string) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("%w: %s", ErrUserNotFound, ref)
	}
	return fmt.Errorf("%w: user %s: %v", ErrStorage, ref, err)
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
