package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lemonqwest/lemonqwest/internal/auth"
	"github.com/lemonqwest/lemonqwest/internal/domain"
	"github.com/lemonqwest/lemonqwest/internal/events"
	"github.com/lemonqwest/lemonqwest/internal/token"
)

// UserService covers the administrative token operations on users.
type UserService struct {
	uow    UnitOfWork
	bus    *events.Bus
	logger *slog.Logger
}

func NewUserService(uow UnitOfWork, bus *events.Bus, logger *slog.Logger) *UserService {
	return &UserService{uow: uow, bus: bus, logger: logger}
}

// AdjustBalance applies a caregiver's manual correction to a user's balance.
// Positive deltas go through the standard add; negative deltas use the
// administrative subtract and may leave the user in debt.
func (s *UserService) AdjustBalance(ctx context.Context, userID int64, delta int) (int, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return 0, fmt.Errorf("%w: no authenticated session", domain.ErrNotAuthorized)
	}
	if d := PolicyFor(ac.Role).CanAdjustBalance(ac.UserID, userID); !d.Allowed {
		return 0, fmt.Errorf("%w: %s", domain.ErrNotAuthorized, d.Reason)
	}

	var newBalance int
	err := s.uow.Do(func(r Repos) error {
		user, err := r.Users.GetUser(userID)
		if err != nil {
			return fmt.Errorf("%w: load user: %w", domain.ErrRepository, err)
		}
		if user == nil {
			return fmt.Errorf("%w: user %d", domain.ErrNotFound, userID)
		}

		balance := token.FromStored(user.TokenBalance)
		if delta >= 0 {
			balance, err = balance.Add(delta)
		} else {
			balance, err = balance.AdminSubtract(-delta)
		}
		if err != nil {
			return err
		}

		if err := r.Users.SetTokenBalance(userID, balance.Value()); err != nil {
			return fmt.Errorf("%w: update balance: %w", domain.ErrRepository, err)
		}
		newBalance = balance.Value()
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("balance adjusted", "user_id", userID, "delta", delta, "balance", newBalance, "by", ac.UserID)
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Kind:    events.KindBalanceAdjusted,
			UserID:  userID,
			Tokens:  delta,
			Balance: newBalance,
		})
	}
	return newBalance, nil
}
