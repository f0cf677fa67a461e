package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/ShinAdam/Badminton-Elo-App/rating"
	"github.com/ShinAdam/Badminton-Elo-App/repositories"
	"golang.org/x/sync/errgroup"
)

type StatisticService interface {
	// WinPercentage is wins / (wins + losses) * 100, and 0 for a user without matches.
	WinPercentage(ctx context.Context, userID int) (float64, error)
	// UserMatchHistory lists a user's matches with the rating change stored for their side.
	UserMatchHistory(ctx context.Context, userID int) ([]models.MatchHistoryEntry, error)
	// ProjectRatingChange computes what SubmitMatch would apply right now, without writing.
	ProjectRatingChange(ctx context.Context, winners, losers []int) (*models.RatingProjection, error)
}

type statisticService struct {
	userRepo  repositories.UserRepository
	matchRepo repositories.MatchRepository
}

func NewStatisticService(userRepo repositories.UserRepository, matchRepo repositories.MatchRepository) StatisticService {
	return &statisticService{userRepo: userRepo, matchRepo: matchRepo}
}

// CalculateWinPercentage returns 0 when there are no results at all.
func CalculateWinPercentage(wins, losses int) float64 {
	total := wins + losses
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

func (s *statisticService) WinPercentage(ctx context.Context, userID int) (float64, error) {
	var wins, losses int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.userRepo.GetByID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		wins, losses, err = s.matchRepo.CountResults(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, mapUserRepoError(err, fmt.Sprintf("id %d", userID))
	}
	return CalculateWinPercentage(wins, losses), nil
}

func (s *statisticService) UserMatchHistory(ctx context.Context, userID int) ([]models.MatchHistoryEntry, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, mapUserRepoError(err, fmt.Sprintf("id %d", userID))
	}

	matches, err := s.matchRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list matches for user %d: %v", ErrStorage, userID, err)
	}

	history := make([]models.MatchHistoryEntry, 0, len(matches))
	for _, m := range matches {
		isWinner := containsID(m.WinnerIDs(), userID)
		entry := models.MatchHistoryEntry{
			MatchID:    m.ID,
			IsWinner:   isWinner,
			DatePlayed: m.DatePlayed.Format(dateLayout),
		}
		if isWinner {
			entry.Score, entry.OpponentScore = m.WinnerScore, m.LoserScore
			entry.OpponentUsernames = m.LoserUsernames
			entry.EloChange = m.EloChangeWinner
		} else {
			entry.Score, entry.OpponentScore = m.LoserScore, m.WinnerScore
			entry.OpponentUsernames = m.WinnerUsernames
			entry.EloChange = m.EloChangeLoser
		}
		history = append(history, entry)
	}
	return history, nil
}

func (s *statisticService) ProjectRatingChange(ctx context.Context, winners, losers []int) (*models.RatingProjection, error) {
	if err := validateComposition(winners, losers); err != nil {
		return nil, err
	}

	ids := append(append([]int{}, winners...), losers...)
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load participants: %v", ErrStorage, err)
	}
	byID := make(map[int]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	w, err := resolveSide(byID, winners)
	if err != nil {
		return nil, mapProjectionError(err)
	}
	l, err := resolveSide(byID, losers)
	if err != nil {
		return nil, mapProjectionError(err)
	}

	p := &models.RatingProjection{
		WinnerAvgRating: rating.Average(ratingsOf(w)...),
		LoserAvgRating:  rating.Average(ratingsOf(l)...),
		Projected:       make(map[int]float64, len(ids)),
	}
	p.EloChangeWinner, p.EloChangeLoser = rating.Change(p.WinnerAvgRating, p.LoserAvgRating)
	for _, u := range w {
		p.Projected[u.ID] = u.Rating + p.EloChangeWinner
	}
	for _, u := range l {
		p.Projected[u.ID] = u.Rating + p.EloChangeLoser
	}
	return p, nil
}

func mapProjectionError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
