package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// ListPlans возвращает тарифные планы каталога без синтетических free и
// Unlimited.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT name, description, cost, reward, duration_months,
			      array_to_string(unlocked_tiers, ';')
			  FROM subscription_plans
			  WHERE name NOT IN ($1, $2)
			  ORDER BY cost`
	rows, err := s.DB.QueryContext(ctx, query, models.FreePlanName, models.UnlimitedPlanName)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.SubscriptionPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, plan)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// GetPlanByName возвращает тарифный план каталога по имени.
func (s *Storage) GetPlanByName(ctx context.Context, name string) (*models.SubscriptionPlan, error) {
	const op = "storage.GetPlanByName"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT name, description, cost, reward, duration_months,
			      array_to_string(unlocked_tiers, ';')
			  FROM subscription_plans
			  WHERE name = $1`
	row := s.DB.QueryRowContext(ctx, query, name)
	plan, err := scanPlan(row)
	if err != nil {
		return nil, wrap(op, err)
	}
	return plan, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*models.SubscriptionPlan, error) {
	p := &models.SubscriptionPlan{}
	var tiers string
	if err := row.Scan(&p.Name, &p.Description, &p.Cost, &p.Reward,
		&p.DurationMonths, &tiers); err != nil {
		return nil, err
	}
	if tiers != "" {
		p.UnlockedTiers = strings.Split(tiers, ";")
	} else {
		p.UnlockedTiers = []string{}
	}
	return p, nil
}

// GetUserSubscription возвращает сохранённую подписку пользователя.
func (s *Storage) GetUserSubscription(ctx context.Context, userUID string) (*models.UserSubscription, error) {
	const op = "storage.GetUserSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, subscription_name, expires_at
			  FROM user_subscriptions
			  WHERE user_uid = $1`
	sub := &models.UserSubscription{}
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(
		&sub.UserID, &sub.SubscriptionName, &sub.ExpiresAt); err != nil {
		return nil, wrap(op, err)
	}
	return sub, nil
}

// ReplaceUserSubscription заменяет подписку пользователя в одной
// транзакции: строка блокируется, живая подписка даёт Conflict, истёкшая
// удаляется, свежая вставляется. Двухшаговый delete-then-insert исходной
// системы больше не виден параллельным покупателям.
func (s *Storage) ReplaceUserSubscription(ctx context.Context, sub models.UserSubscription) error {
	const op = "storage.ReplaceUserSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return wrap(op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var expiresAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT expires_at FROM user_subscriptions WHERE user_uid = $1 FOR UPDATE`,
		sub.UserID).Scan(&expiresAt)
	switch {
	case err == nil:
		if expiresAt.After(time.Now()) {
			return fmt.Errorf("%s: %w", op, apperr.ErrConflict)
		}
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM user_subscriptions WHERE user_uid = $1`, sub.UserID); err != nil {
			return wrap(op, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		// подписки ещё не было
	default:
		return wrap(op, err)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO user_subscriptions (user_uid, subscription_name, expires_at)
		 VALUES ($1, $2, $3)`,
		sub.UserID, sub.SubscriptionName, sub.ExpiresAt); err != nil {
		return wrap(op, err)
	}

	if err = tx.Commit(); err != nil {
		return wrap(op, err)
	}
	return nil
}

// DeleteUserSubscription удаляет подписку пользователя и возвращает
// количество удалённых строк. Используется компенсацией саги покупки.
func (s *Storage) DeleteUserSubscription(ctx context.Context, userUID string) (int64, error) {
	const op = "storage.DeleteUserSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM user_subscriptions WHERE user_uid = $1`, userUID)
	if err != nil {
		return 0, wrap(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap(op, err)
	}
	return rowsAffected, nil
}
