package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lemonqwest/lemonqwest/internal/auth"
	"github.com/lemonqwest/lemonqwest/internal/clock"
	"github.com/lemonqwest/lemonqwest/internal/domain"
	"github.com/lemonqwest/lemonqwest/internal/events"
	"github.com/lemonqwest/lemonqwest/internal/metrics"
	"github.com/lemonqwest/lemonqwest/internal/model"
	"github.com/lemonqwest/lemonqwest/internal/token"
)

// RewardService spends tokens on rewards.
type RewardService struct {
	uow    UnitOfWork
	bus    *events.Bus
	clk    clock.Clock
	rec    metrics.Recorder
	logger *slog.Logger
}

func NewRewardService(uow UnitOfWork, bus *events.Bus, clk clock.Clock, rec metrics.Recorder, logger *slog.Logger) *RewardService {
	return &RewardService{uow: uow, bus: bus, clk: clk, rec: rec, logger: logger}
}

// RedeemResult reports a successful redemption.
type RedeemResult struct {
	Reward               model.Reward        `json:"reward"`
	TokensSpent          int                 `json:"tokens_spent"`
	NewBalance           int                 `json:"new_balance"`
	UnlockedAchievements []model.Achievement `json:"unlocked_achievements"`
}

// Redeem spends the authenticated user's tokens on a reward. This is the
// standard spend path: an insufficient balance fails the redemption rather
// than flooring at zero, and no debt is ever created here.
func (s *RewardService) Redeem(ctx context.Context, rewardID int64) (*RedeemResult, error) {
	ac, ok := auth.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: no authenticated session", domain.ErrNotAuthorized)
	}

	var res RedeemResult
	err := s.uow.Do(func(r Repos) error {
		reward, err := r.Rewards.GetReward(rewardID)
		if err != nil {
			return fmt.Errorf("%w: load reward: %w", domain.ErrRepository, err)
		}
		if reward == nil {
			return fmt.Errorf("%w: reward %d", domain.ErrNotFound, rewardID)
		}
		if !reward.Active {
			return fmt.Errorf("%w: reward %d is not active", domain.ErrInvalidData, rewardID)
		}

		user, err := r.Users.GetUser(ac.UserID)
		if err != nil {
			return fmt.Errorf("%w: load user: %w", domain.ErrRepository, err)
		}
		if user == nil {
			return fmt.Errorf("%w: user %d", domain.ErrNotFound, ac.UserID)
		}

		balance, err := token.FromStored(user.TokenBalance).Subtract(reward.TokenCost)
		if err != nil {
			return err
		}

		now := s.clk.Now()
		if err := r.Rewards.CreateRedemption(reward.ID, user.ID, reward.TokenCost, now); err != nil {
			return fmt.Errorf("%w: record redemption: %w", domain.ErrRepository, err)
		}
		if err := r.Users.SetTokenBalance(user.ID, balance.Value()); err != nil {
			return fmt.Errorf("%w: update balance: %w", domain.ErrRepository, err)
		}

		unlocked, err := evaluateAchievements(r, user.ID, s.clk)
		if err != nil {
			return fmt.Errorf("%w: evaluate achievements: %w", domain.ErrRepository, err)
		}

		res = RedeemResult{
			Reward:               *reward,
			TokensSpent:          reward.TokenCost,
			NewBalance:           balance.Value(),
			UnlockedAchievements: unlocked,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reward redeemed",
		"reward_id", res.Reward.ID,
		"user_id", ac.UserID,
		"tokens", res.TokensSpent,
	)
	if s.rec != nil {
		s.rec.RecordRewardRedeemed()
		s.rec.RecordTokensSpent(res.TokensSpent)
		for _, a := range res.UnlockedAchievements {
			s.rec.RecordAchievementUnlocked(string(a.Type))
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.Event{
			Kind:     events.KindRewardRedeemed,
			UserID:   ac.UserID,
			RewardID: res.Reward.ID,
			Tokens:   res.TokensSpent,
			Balance:  res.NewBalance,
		})
		if len(res.UnlockedAchievements) > 0 {
			s.bus.Publish(events.Event{
				Kind:         events.KindAchievementUnlocked,
				UserID:       ac.UserID,
				Achievements: res.UnlockedAchievements,
			})
		}
	}
	return &res, nil
}
