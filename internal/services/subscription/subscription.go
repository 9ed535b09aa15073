// Package services содержит бизнес-логику управления подписками:
// каталог тарифных планов, действующая подписка пользователя, покупка
// с наградой в кубах и консультативная отмена.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// ListPlans возвращает планы каталога без синтетических free и Unlimited.
	ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error)
	// GetPlanByName возвращает план каталога по имени.
	GetPlanByName(ctx context.Context, name string) (*models.SubscriptionPlan, error)
	// GetUserSubscription возвращает сохранённую подписку пользователя.
	GetUserSubscription(ctx context.Context, userUID string) (*models.UserSubscription, error)
	// ReplaceUserSubscription транзакционно заменяет подписку пользователя.
	ReplaceUserSubscription(ctx context.Context, sub models.UserSubscription) error
	// DeleteUserSubscription удаляет подписку пользователя.
	DeleteUserSubscription(ctx context.Context, userUID string) (int64, error)
}

// CubeAdjuster — леджер кубов, начисляющий награду за покупку плана.
type CubeAdjuster interface {
	Adjust(ctx context.Context, userID string, delta int) (*models.CubeBalance, error)
}

// Cache описывает методы для кэширования данных каталога.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

const catalogCacheKey = "subscriptions:catalog"

// SubscriptionService реализует бизнес-логику подписок, включая кеширование
// каталога.
type SubscriptionService struct {
	repo        SubscriptionRepository
	cubes       CubeAdjuster
	cache       Cache
	staffDomain string
	log         *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
// staffDomain — почтовый домен сотрудников платформы, дающий синтетическую
// подписку Unlimited.
func NewSubscriptionService(repo SubscriptionRepository, cubes CubeAdjuster, cache Cache, staffDomain string, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:        repo,
		cubes:       cubes,
		cache:       cache,
		staffDomain: staffDomain,
		log:         log,
	}
}

// ListCatalog возвращает тарифные планы каталога, используя кеш.
// Синтетические free и Unlimited в выдачу не попадают.
func (s *SubscriptionService) ListCatalog(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	var plans []*models.SubscriptionPlan
	found, err := s.cache.Get(catalogCacheKey, &plans)
	if err != nil {
		s.log.Warn("failed to read plan catalog from cache", sl.Err(err))
	}
	if found {
		return plans, nil
	}

	plans, err = s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(catalogCacheKey, plans, time.Hour); err != nil {
		s.log.Warn("failed to cache plan catalog", sl.Err(err))
	}
	return plans, nil
}

// ResolveEffective возвращает подписку, фактически действующую для
// пользователя. Стафф-домен даёт синтетическую Unlimited; отсутствующая или
// истёкшая запись даёт синтетический free. Оба синтетических плана никогда
// не сохраняются, их срок закреплён далеко в будущем. Чистое чтение:
// записи не создаются и не удаляются.
func (s *SubscriptionService) ResolveEffective(ctx context.Context, user models.User) models.EffectiveSubscription {
	if strings.HasSuffix(user.Email, "@"+s.staffDomain) {
		return models.EffectiveSubscription{
			UserID:           user.ID,
			SubscriptionName: models.UnlimitedPlanName,
			ExpiresAt:        models.SyntheticExpiry,
		}
	}

	sub, err := s.repo.GetUserSubscription(ctx, user.ID)
	if err != nil || !sub.ExpiresAt.After(time.Now()) {
		return models.EffectiveSubscription{
			UserID:           user.ID,
			SubscriptionName: models.FreePlanName,
			ExpiresAt:        models.SyntheticExpiry,
		}
	}

	return models.EffectiveSubscription{
		UserID:           sub.UserID,
		SubscriptionName: sub.SubscriptionName,
		ExpiresAt:        sub.ExpiresAt,
	}
}

// Purchase оформляет пользователю тарифный план. Живая подписка даёт
// Conflict, истёкшая заменяется свежей в одной транзакции хранилища.
// Положительная награда плана зачисляется леджером после записи; если
// зачисление не удалось, свежая подписка удаляется (компенсация саги)
// и ошибка возвращается вызывающему.
func (s *SubscriptionService) Purchase(ctx context.Context, userID, planName string) error {
	const op = "subscription.Purchase"

	plan, err := s.repo.GetPlanByName(ctx, planName)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sub := models.UserSubscription{
		UserID:           userID,
		SubscriptionName: plan.Name,
		ExpiresAt:        time.Now().AddDate(0, plan.DurationMonths, 0),
	}
	if err := s.repo.ReplaceUserSubscription(ctx, sub); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return fmt.Errorf("%s: user already has an active subscription: %w", op, apperr.ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created user subscription",
		sl.UserID(userID), slog.String("plan", plan.Name))

	if plan.Reward > 0 {
		if _, err := s.cubes.Adjust(ctx, userID, plan.Reward); err != nil {
			s.log.Error("failed to credit plan reward, rolling subscription back",
				sl.UserID(userID), sl.Err(err))
			if _, delErr := s.repo.DeleteUserSubscription(ctx, userID); delErr != nil {
				s.log.Error("failed to roll subscription back", sl.UserID(userID), sl.Err(delErr))
			}
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Revoke снимает сохранённую подписку пользователя. Используется как
// компенсация при откате расчёта платежа.
func (s *SubscriptionService) Revoke(ctx context.Context, userID string) error {
	const op = "subscription.Revoke"

	if _, err := s.repo.DeleteUserSubscription(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CoversTier сообщает, покрывает ли действующая подписка тир модуля.
// Unlimited покрывает все тиры; план, отсутствующий в каталоге,
// приравнивается к free и не покрывает ничего.
func (s *SubscriptionService) CoversTier(ctx context.Context, tier string, eff models.EffectiveSubscription) bool {
	if eff.Expired(time.Now()) {
		return false
	}
	if eff.SubscriptionName == models.UnlimitedPlanName {
		return true
	}

	plan, err := s.repo.GetPlanByName(ctx, eff.SubscriptionName)
	if err != nil {
		plan = &models.FreePlan
	}
	for _, t := range plan.UnlockedTiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Cancel обрабатывает запрос на отмену подписки. Запись не удаляется и не
// помечается: подтверждается лишь намерение не продлевать. Отсутствие
// сохранённой подписки — ошибка Conflict.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string) (string, error) {
	const op = "subscription.Cancel"

	if _, err := s.repo.GetUserSubscription(ctx, userID); err != nil {
		return "", fmt.Errorf("%s: user does not have an active subscription: %w", op, apperr.ErrConflict)
	}

	s.log.Info("subscription cancellation acknowledged", sl.UserID(userID))
	return "Subscription cancellation request successful. The subscription will no longer be renewed at the end of its duration.", nil
}
