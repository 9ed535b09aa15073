package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// CreateCubeBalance создаёт запись баланса кубов пользователя.
// Вызывается один раз при регистрации.
func (s *Storage) CreateCubeBalance(ctx context.Context, userUID string, count int) error {
	const op = "storage.CreateCubeBalance"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO cube_balances (user_uid, count)
			  VALUES ($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, userUID, count); err != nil {
		return wrap(op, err)
	}
	return nil
}

// GetCubeBalance возвращает сохранённый баланс кубов пользователя.
// Отсутствие записи — ошибка NotFound; ленивый дефолт остаётся на сервисе.
func (s *Storage) GetCubeBalance(ctx context.Context, userUID string) (*models.CubeBalance, error) {
	const op = "storage.GetCubeBalance"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, count
			  FROM cube_balances
			  WHERE user_uid = $1`
	b := &models.CubeBalance{}
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&b.UserID, &b.Count); err != nil {
		return nil, wrap(op, err)
	}
	return b, nil
}

// AdjustCubeCount применяет дельту к балансу одним атомарным UPDATE,
// исключая гонку read-modify-write при параллельных корректировках.
// Нижней границы нет: достаточность проверяет вызывающая сторона.
func (s *Storage) AdjustCubeCount(ctx context.Context, userUID string, delta int) (*models.CubeBalance, error) {
	const op = "storage.AdjustCubeCount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE cube_balances
			  SET count = count + $2
			  WHERE user_uid = $1
			  RETURNING user_uid, count`
	b := &models.CubeBalance{}
	if err := s.DB.QueryRowContext(ctx, query, userUID, delta).Scan(&b.UserID, &b.Count); err != nil {
		return nil, wrap(op, err)
	}
	return b, nil
}
