package services

import (
	"context"
	"errors"

	"github.com/ShinAdam/Badminton-Elo-App/models"
)

// MatchNotifier is told about every committed match. It is never called for a
// submission that rolled back.
type MatchNotifier interface {
	MatchRecorded(ctx context.Context, match *models.Match) error
}

// MultiNotifier fans a notification out to several notifiers.
// Every notifier is called even when an earlier one fails.
type MultiNotifier []MatchNotifier

func (mn MultiNotifier) MatchRecorded(ctx context.Context, match *models.Match) error {
	var errs []error
	for _, n := range mn {
		if n == nil {
			continue
		}
		if err := n.MatchRecorded(ctx, match); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
