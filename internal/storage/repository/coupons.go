package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// ClaimCoupon помечает купон использованным одним условным UPDATE и
// возвращает его данные. Предикат used = false перепроверяется хранилищем
// в момент записи: из двух одновременных предъявителей код достаётся
// ровно одному. Неизвестный и уже использованный код неразличимы —
// оба дают NotFound.
func (s *Storage) ClaimCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	const op = "storage.ClaimCoupon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE coupons
			  SET used = true
			  WHERE code = $1 AND used = false
			  RETURNING code, kind, target`
	c := &models.Coupon{Used: true}
	if err := s.DB.QueryRowContext(ctx, query, code).Scan(&c.Code, &c.Kind, &c.Target); err != nil {
		return nil, wrap(op, err)
	}
	return c, nil
}

// ReleaseCoupon возвращает купон в неиспользованное состояние.
// Вызывается только компенсацией саги, когда диспетчеризация гранта не
// состоялась.
func (s *Storage) ReleaseCoupon(ctx context.Context, code string) error {
	const op = "storage.ReleaseCoupon"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx,
		`UPDATE coupons SET used = false WHERE code = $1`, code); err != nil {
		return wrap(op, err)
	}
	return nil
}

// CreateCoupon сохраняет новый купон.
func (s *Storage) CreateCoupon(ctx context.Context, c models.Coupon) error {
	const op = "storage.CreateCoupon"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO coupons (code, kind, target, used)
			  VALUES ($1, $2, $3, $4)`
	if _, err := s.DB.ExecContext(ctx, query, c.Code, c.Kind, c.Target, c.Used); err != nil {
		return wrap(op, err)
	}
	return nil
}
