// Package cubes содержит бизнес-логику леджера кубов — виртуальной валюты
// платформы. Леджер единолично владеет изменением балансов.
package cubes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// CubeRepository определяет методы для работы с балансами кубов в хранилище.
type CubeRepository interface {
	// CreateCubeBalance создаёт запись баланса при регистрации.
	CreateCubeBalance(ctx context.Context, userUID string, count int) error
	// GetCubeBalance возвращает сохранённый баланс или NotFound.
	GetCubeBalance(ctx context.Context, userUID string) (*models.CubeBalance, error)
	// AdjustCubeCount атомарно применяет дельту и возвращает новый баланс.
	AdjustCubeCount(ctx context.Context, userUID string, delta int) (*models.CubeBalance, error)
}

// CubeService реализует операции леджера кубов.
type CubeService struct {
	repo CubeRepository
	log  *slog.Logger
}

// NewCubeService создает новый экземпляр CubeService.
func NewCubeService(repo CubeRepository, log *slog.Logger) *CubeService {
	return &CubeService{
		repo: repo,
		log:  log,
	}
}

// GetBalance возвращает баланс пользователя. При отсутствии записи отдаёт
// синтетический нулевой баланс, не сохраняя его: дефолт существует только
// на пути чтения, "записи нет" и "запись с нулём" различимы в хранилище.
func (s *CubeService) GetBalance(ctx context.Context, userID string) (*models.CubeBalance, error) {
	balance, err := s.repo.GetCubeBalance(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.CubeBalance{UserID: userID, Count: 0}, nil
	}
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// Adjust применяет дельту к балансу пользователя. Отсутствие записи — ошибка
// NotFound, ленивого создания на этом пути нет. Нижняя граница не
// контролируется: перед отрицательной дельтой достаточность проверяет
// вызывающая сторона.
func (s *CubeService) Adjust(ctx context.Context, userID string, delta int) (*models.CubeBalance, error) {
	const op = "cubes.Adjust"

	balance, err := s.repo.AdjustCubeCount(ctx, userID, delta)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("adjusted cube balance",
		sl.UserID(userID),
		slog.Int("delta", delta),
		slog.Int("count", balance.Count))
	return balance, nil
}

// CreateBalance создаёт запись баланса нового пользователя.
func (s *CubeService) CreateBalance(ctx context.Context, userID string, count int) error {
	const op = "cubes.CreateBalance"
	if err := s.repo.CreateCubeBalance(ctx, userID, count); err != nil {
		s.log.Error("failed to create cube balance", sl.UserID(userID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
