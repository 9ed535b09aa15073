package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// ListCards возвращает платёжные карты пользователя.
func (s *Storage) ListCards(ctx context.Context, userUID string) ([]*models.PaymentCard, error) {
	const op = "storage.ListCards"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, number, expiry_month, expiry_year, cvc, balance
			  FROM payment_cards
			  WHERE user_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentCard
	for rows.Next() {
		var c models.PaymentCard
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Number,
			&c.ExpiryMonth, &c.ExpiryYear, &c.CVC, &c.Balance); err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// GetCard возвращает карту пользователя по её идентификатору.
func (s *Storage) GetCard(ctx context.Context, userUID, cardID string) (*models.PaymentCard, error) {
	const op = "storage.GetCard"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, number, expiry_month, expiry_year, cvc, balance
			  FROM payment_cards
			  WHERE user_uid = $1 AND id = $2`
	c := &models.PaymentCard{}
	if err := s.DB.QueryRowContext(ctx, query, userUID, cardID).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Number,
		&c.ExpiryMonth, &c.ExpiryYear, &c.CVC, &c.Balance); err != nil {
		return nil, wrap(op, err)
	}
	return c, nil
}

// DebitCard списывает сумму с карты условным UPDATE: списание проходит
// только когда баланс ещё покрывает сумму, поэтому два параллельных
// расчёта не могут потратить одни и те же средства. Возвращает количество
// затронутых строк: 0 — средств уже не хватает.
func (s *Storage) DebitCard(ctx context.Context, userUID, cardID string, amount float64) (int64, error) {
	const op = "storage.DebitCard"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_cards
			  SET balance = balance - $3
			  WHERE user_uid = $1 AND id = $2 AND balance >= $3`
	result, err := s.DB.ExecContext(ctx, query, userUID, cardID, amount)
	if err != nil {
		return 0, wrap(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap(op, err)
	}
	return rowsAffected, nil
}

// CreditCard возвращает сумму на карту. Используется только компенсацией
// саги расчёта: сам движок балансы карт никогда не увеличивает.
func (s *Storage) CreditCard(ctx context.Context, userUID, cardID string, amount float64) error {
	const op = "storage.CreditCard"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_cards
			  SET balance = balance + $3
			  WHERE user_uid = $1 AND id = $2`
	if _, err := s.DB.ExecContext(ctx, query, userUID, cardID, amount); err != nil {
		return wrap(op, err)
	}
	return nil
}
