// Package module содержит бизнес-логику учебных модулей: каталог,
// статус разблокировки и разблокировка за подписку или кубы.
package module

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// ModuleRepository определяет методы для работы с модулями в хранилище.
type ModuleRepository interface {
	ListModules(ctx context.Context) ([]*models.Module, error)
	GetModuleByID(ctx context.Context, id int) (*models.Module, error)
	GetUnlockedModule(ctx context.Context, userUID string, moduleID int) (*models.UnlockedModule, error)
	CreateUnlockedModule(ctx context.Context, userUID string, moduleID int) error
}

// CubeAdjuster — леджер кубов для платной разблокировки.
type CubeAdjuster interface {
	GetBalance(ctx context.Context, userID string) (*models.CubeBalance, error)
	Adjust(ctx context.Context, userID string, delta int) (*models.CubeBalance, error)
}

// TierCoverer сообщает, покрывает ли действующая подписка тир модуля.
type TierCoverer interface {
	CoversTier(ctx context.Context, tier string, eff models.EffectiveSubscription) bool
}

// ModuleService реализует бизнес-логику модулей.
type ModuleService struct {
	repo          ModuleRepository
	cubes         CubeAdjuster
	subscriptions TierCoverer
	log           *slog.Logger
}

// NewModuleService создает новый экземпляр ModuleService.
func NewModuleService(repo ModuleRepository, cubes CubeAdjuster, subscriptions TierCoverer, log *slog.Logger) *ModuleService {
	return &ModuleService{repo: repo, cubes: cubes, subscriptions: subscriptions, log: log}
}

// List возвращает все модули каталога.
func (s *ModuleService) List(ctx context.Context) ([]*models.Module, error) {
	return s.repo.ListModules(ctx)
}

// Get возвращает модуль каталога по идентификатору.
func (s *ModuleService) Get(ctx context.Context, id int) (*models.Module, error) {
	return s.repo.GetModuleByID(ctx, id)
}

// UnlockedStatus сообщает, разблокирован ли модуль для пользователя.
// Любой сбой выборки трактуется как «не разблокирован»: доступ к
// содержимому модуля закрывается, а не открывается по ошибке.
func (s *ModuleService) UnlockedStatus(ctx context.Context, userID string, moduleID int) bool {
	if _, err := s.repo.GetUnlockedModule(ctx, userID, moduleID); err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.log.Warn("failed to read unlock status, treating as locked",
				sl.UserID(userID), slog.Int("module_id", moduleID), sl.Err(err))
		}
		return false
	}
	return true
}

// Unlock открывает пользователю модуль. Подписка, покрывающая тир модуля,
// даёт бесплатную разблокировку; иначе списывается каталожная цена тира в
// кубах. Покрытие тира сверяется со снимком подписки из токена, без
// обращения к хранилищу подписок. Неопубликованный модуль (coming_soon или
// locked) разблокировать нельзя.
func (s *ModuleService) Unlock(ctx context.Context, user models.SessionUser, moduleID int) (string, error) {
	const op = "module.Unlock"

	mod, err := s.repo.GetModuleByID(ctx, moduleID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if mod.HasCondition("coming_soon") || mod.HasCondition("locked") {
		return "", fmt.Errorf("%s: module is not available yet: %w", op, apperr.ErrForbidden)
	}

	if _, err := s.repo.GetUnlockedModule(ctx, user.ID, moduleID); err == nil {
		return "", fmt.Errorf("%s: module already unlocked: %w", op, apperr.ErrConflict)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	tier, ok := models.ModuleTiers[mod.Tier]
	if !ok {
		return "", fmt.Errorf("%s: module has unknown tier %q: %w", op, mod.Tier, apperr.ErrValidation)
	}

	if s.subscriptions.CoversTier(ctx, mod.Tier, user.Subscription) {
		if err := s.repo.CreateUnlockedModule(ctx, user.ID, moduleID); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("module unlocked by subscription",
			sl.UserID(user.ID), slog.Int("module_id", moduleID), slog.String("tier", mod.Tier))
		return "Module successfully unlocked", nil
	}

	balance, err := s.cubes.GetBalance(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if balance.Count < tier.Cost {
		return "", fmt.Errorf("%s: not enough cubes: %w", op, apperr.ErrInsufficientFunds)
	}

	if _, err := s.cubes.Adjust(ctx, user.ID, -tier.Cost); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.CreateUnlockedModule(ctx, user.ID, moduleID); err != nil {
		s.log.Error("failed to record unlock, refunding cubes",
			sl.UserID(user.ID), slog.Int("module_id", moduleID), sl.Err(err))
		if _, refundErr := s.cubes.Adjust(ctx, user.ID, tier.Cost); refundErr != nil {
			s.log.Error("failed to refund cubes", sl.UserID(user.ID), sl.Err(refundErr))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("module unlocked for cubes",
		sl.UserID(user.ID), slog.Int("module_id", moduleID), slog.Int("cost", tier.Cost))
	return "Module successfully unlocked", nil
}
