package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ShinAdam/Badminton-Elo-App/metrics"
	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/ShinAdam/Badminton-Elo-App/rating"
	"github.com/ShinAdam/Badminton-Elo-App/repositories"
)

const (
	playersPerSide = 2
	dateLayout     = "2006-01-02"
	maxRecentLimit = 100

	notifyTimeout = 5 * time.Second
)

type MatchService interface {
	// SubmitMatch records a finished doubles match and applies the rating change to
	// all four players in one transaction. It is not idempotent: the same input
	// submitted twice records two matches and moves ratings twice.
	SubmitMatch(ctx context.Context, creatorID int, input SubmitMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListAll(ctx context.Context) ([]*models.Match, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Match, error)
	ListByParticipant(ctx context.Context, userID int) ([]*models.Match, error)
}

type SubmitMatchInput struct {
	Winners     []int  `json:"winners"`
	Losers      []int  `json:"losers"`
	WinnerScore int    `json:"winner_score"`
	LoserScore  int    `json:"loser_score"`
	DatePlayed  string `json:"date_played,omitempty"` // YYYY-MM-DD, today when empty
}

type matchService struct {
	tx        repositories.Transactor
	userRepo  repositories.UserRepository
	matchRepo repositories.MatchRepository
	notifier  MatchNotifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewMatchService(
	tx repositories.Transactor,
	userRepo repositories.UserRepository,
	matchRepo repositories.MatchRepository,
	notifier MatchNotifier,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		tx:        tx,
		userRepo:  userRepo,
		matchRepo: matchRepo,
		notifier:  notifier,
		logger:    logger.With(slog.String("service", "match")),
		now:       time.Now,
	}
}

func (s *matchService) SubmitMatch(ctx context.Context, creatorID int, input SubmitMatchInput) (*models.Match, error) {
	started := time.Now()

	datePlayed, err := s.validateSubmission(creatorID, input)
	if err != nil {
		metrics.ObserveSubmission(metrics.OutcomeInvalid, started)
		return nil, err
	}

	match := &models.Match{
		CreatorID:   creatorID,
		WinnerScore: input.WinnerScore,
		LoserScore:  input.LoserScore,
		DatePlayed:  datePlayed,
	}

	allIDs := make([]int, 0, 2*playersPerSide)
	allIDs = append(allIDs, input.Winners...)
	allIDs = append(allIDs, input.Losers...)

	txErr := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Ratings are read under the row locks and written before the locks are released.
		locked, err := s.userRepo.LockByIDs(ctx, exec, allIDs)
		if err != nil {
			return err
		}
		byID := make(map[int]*models.User, len(locked))
		for _, u := range locked {
			byID[u.ID] = u
		}

		winners, err := resolveSide(byID, input.Winners)
		if err != nil {
			return err
		}
		losers, err := resolveSide(byID, input.Losers)
		if err != nil {
			return err
		}

		match.WinnerAvgRating = rating.Average(ratingsOf(winners)...)
		match.LoserAvgRating = rating.Average(ratingsOf(losers)...)
		match.EloChangeWinner, match.EloChangeLoser = rating.Change(match.WinnerAvgRating, match.LoserAvgRating)
		match.WinnerUsernames = usernamesOf(winners)
		match.LoserUsernames = usernamesOf(losers)

		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return err
		}
		if err := s.matchRepo.AddParticipants(ctx, exec, match.ID, input.Winners, input.Losers); err != nil {
			return err
		}

		for _, u := range winners {
			if err := s.userRepo.AdjustRating(ctx, exec, u.ID, match.EloChangeWinner); err != nil {
				return err
			}
		}
		for _, u := range losers {
			if err := s.userRepo.AdjustRating(ctx, exec, u.ID, match.EloChangeLoser); err != nil {
				return err
			}
		}

		match.Winners = participantsOf(winners, models.SideWinner)
		match.Losers = participantsOf(losers, models.SideLoser)
		return nil
	})
	if txErr != nil {
		mapped, outcome := mapLedgerError(txErr)
		metrics.ObserveSubmission(outcome, started)
		if outcome == metrics.OutcomeStorage || outcome == metrics.OutcomeConflict {
			s.logger.ErrorContext(ctx, "match submission rolled back",
				slog.Int("creator_id", creatorID),
				slog.Any("participants", allIDs),
				slog.Any("error", txErr))
		}
		return nil, mapped
	}

	metrics.ObserveSubmission(metrics.OutcomeRecorded, started)
	metrics.RatingDelta.Observe(match.EloChangeWinner)
	s.logger.InfoContext(ctx, "match recorded",
		slog.Int("match_id", match.ID),
		slog.Int("creator_id", creatorID),
		slog.Float64("elo_change_winner", match.EloChangeWinner),
		slog.Float64("elo_change_loser", match.EloChangeLoser))

	s.notify(ctx, match)
	return match, nil
}

// notify runs after commit. A failing notifier never turns a recorded match into an error.
func (s *matchService) notify(ctx context.Context, match *models.Match) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.notifier.MatchRecorded(nctx, match); err != nil {
		s.logger.WarnContext(ctx, "match notification failed",
			slog.Int("match_id", match.ID),
			slog.Any("error", err))
	}
}

func (s *matchService) validateSubmission(creatorID int, input SubmitMatchInput) (time.Time, error) {
	if creatorID <= 0 {
		return time.Time{}, validationError("creator id must be positive")
	}
	if err := validateComposition(input.Winners, input.Losers); err != nil {
		return time.Time{}, err
	}

	if input.WinnerScore < 0 || input.LoserScore < 0 {
		return time.Time{}, validationError("scores must not be negative")
	}
	if input.WinnerScore <= input.LoserScore {
		return time.Time{}, validationError("winner score must be greater than loser score")
	}

	datePlayed := strings.TrimSpace(input.DatePlayed)
	if datePlayed == "" {
		now := s.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse(dateLayout, datePlayed)
	if err != nil {
		return time.Time{}, validationError(fmt.Sprintf("date_played must be in %s format", dateLayout))
	}
	return parsed, nil
}

// validateComposition requires two players per side and four distinct players overall,
// which also rules out a player listed on both sides.
func validateComposition(winners, losers []int) error {
	if len(winners) != playersPerSide || len(losers) != playersPerSide {
		return validationError("exactly 4 unique participants required")
	}

	seen := make(map[int]struct{}, 2*playersPerSide)
	for _, id := range append(append([]int{}, winners...), losers...) {
		if id <= 0 {
			return validationError(fmt.Sprintf("invalid participant id %d", id))
		}
		seen[id] = struct{}{}
	}
	if len(seen) != 2*playersPerSide {
		return validationError("exactly 4 unique participants required")
	}
	return nil
}

func resolveSide(byID map[int]*models.User, ids []int) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", repositories.ErrUserNotFound, id)
		}
		users = append(users, u)
	}
	return users, nil
}

func ratingsOf(users []*models.User) []float64 {
	out := make([]float64, 0, len(users))
	for _, u := range users {
		out = append(out, u.Rating)
	}
	return out
}

func usernamesOf(users []*models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

func participantsOf(users []*models.User, side models.MatchSide) []models.Participant {
	out := make([]models.Participant, 0, len(users))
	for _, u := range users {
		out = append(out, models.Participant{UserID: u.ID, Username: u.Username, Side: side})
	}
	return out
}

// mapLedgerError translates repository errors raised inside the submission
// transaction into the service taxonomy and the metrics outcome label.
func mapLedgerError(err error) (error, string) {
	switch {
	case errors.Is(err, repositories.ErrUserNotFound):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err), metrics.OutcomeNotFound
	case errors.Is(err, repositories.ErrMatchCreatorInvalid):
		return fmt.Errorf("%w: match creator does not exist", ErrUserNotFound), metrics.OutcomeNotFound
	case errors.Is(err, repositories.ErrMatchParticipantConflict),
		errors.Is(err, repositories.ErrTxConflict),
		errors.Is(err, repositories.ErrConstraintViolation):
		return fmt.Errorf("%w: %v", ErrConflict, err), metrics.OutcomeConflict
	default:
		return fmt.Errorf("%w: %v", ErrStorage, err), metrics.OutcomeStorage
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("%w: failed to get match %d: %v", ErrStorage, id, err)
	}
	return match, nil
}

func (s *matchService) ListAll(ctx context.Context) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list matches: %v", ErrStorage, err)
	}
	return matches, nil
}

func (s *matchService) ListRecent(ctx context.Context, limit int) ([]*models.Match, error) {
	if limit <= 0 {
		return nil, validationError("limit must be positive")
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	matches, err := s.matchRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list recent matches: %v", ErrStorage, err)
	}
	return matches, nil
}

func (s *matchService) ListByParticipant(ctx context.Context, userID int) ([]*models.Match, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: failed to get user %d: %v", ErrStorage, userID, err)
	}
	matches, err := s.matchRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list matches for user %d: %v", ErrStorage, userID, err)
	}
	return matches, nil
}
