// Package payment содержит бизнес-логику расчёта платежей: карты
// пользователя, расчёт стоимости корзины и её проведение с выдачей
// купленных позиций.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// PaymentRepository определяет методы для работы с картами в хранилище.
type PaymentRepository interface {
	ListCards(ctx context.Context, userUID string) ([]*models.PaymentCard, error)
	GetCard(ctx context.Context, userUID, cardID string) (*models.PaymentCard, error)
	// DebitCard условно списывает сумму: предикат balance >= amount
	// перепроверяется хранилищем. Возвращает количество затронутых строк.
	DebitCard(ctx context.Context, userUID, cardID string, amount float64) (int64, error)
	CreditCard(ctx context.Context, userUID, cardID string, amount float64) error
	GetPlanByName(ctx context.Context, name string) (*models.SubscriptionPlan, error)
	GetUserSubscription(ctx context.Context, userUID string) (*models.UserSubscription, error)
	GetExamByName(ctx context.Context, name string) (*models.Exam, error)
}

// CubeAdjuster — леджер кубов для позиций корзины категории cubes.
type CubeAdjuster interface {
	Adjust(ctx context.Context, userID string, delta int) (*models.CubeBalance, error)
}

// SubscriptionGranter оформляет и отзывает тарифный план.
type SubscriptionGranter interface {
	Purchase(ctx context.Context, userID, planName string) error
	Revoke(ctx context.Context, userID string) error
}

// ExamGranter выдаёт и отзывает попытки экзаменов.
type ExamGranter interface {
	Grant(ctx context.Context, userID, examName string) (int, error)
	Revoke(ctx context.Context, userExamID int) error
}

// ReceiptPublisher публикует квитанцию об оплате в очередь рассылки.
type ReceiptPublisher interface {
	Publish(routingKey string, message any) error
}

// PaymentService реализует бизнес-логику расчёта платежей.
type PaymentService struct {
	repo          PaymentRepository
	cubes         CubeAdjuster
	subscriptions SubscriptionGranter
	exams         ExamGranter
	receipts      ReceiptPublisher
	delay         time.Duration
	log           *slog.Logger
}

// NewPaymentService создает новый экземпляр PaymentService.
// delay — пауза, имитирующая обращение к платёжному шлюзу; выдерживается
// и при успехе, и при нехватке средств.
func NewPaymentService(repo PaymentRepository, cubes CubeAdjuster, subscriptions SubscriptionGranter,
	exams ExamGranter, receipts ReceiptPublisher, delay time.Duration, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:          repo,
		cubes:         cubes,
		subscriptions: subscriptions,
		exams:         exams,
		receipts:      receipts,
		delay:         delay,
		log:           log,
	}
}

// ListCards возвращает карты пользователя с замаскированными номерами.
func (s *PaymentService) ListCards(ctx context.Context, userID string) ([]models.MaskedCard, error) {
	cards, err := s.repo.ListCards(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]models.MaskedCard, 0, len(cards))
	for _, c := range cards {
		result = append(result, c.Masked())
	}
	return result, nil
}

// ParseCart конвертирует позиции корзины из запроса во внутреннее
// представление с типизированной категорией.
func ParseCart(items []models.DummyCartItem) ([]models.CartItem, error) {
	const op = "payment.ParseCart"

	result := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		kind, err := models.ParseGrantKind(item.Category)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrValidation, err)
		}
		result = append(result, models.CartItem{
			Name:     item.Name,
			Category: kind,
			Price:    item.Price,
			Amount:   item.Amount,
		})
	}
	return result, nil
}

// ComputeTotal считает стоимость корзины в USD по каталожным ценам,
// игнорируя цены из запроса. Позиция категории cubes стоит
// (число из имени × количество) / 10. Позиция категории subscription
// даёт Conflict, если у пользователя уже есть живая подписка.
func (s *PaymentService) ComputeTotal(ctx context.Context, userID string, items []models.CartItem) (float64, error) {
	const op = "payment.ComputeTotal"

	var total float64
	for _, item := range items {
		switch item.Category {
		case models.GrantCubes:
			n, err := strconv.Atoi(item.Name)
			if err != nil {
				return 0, fmt.Errorf("%s: cube pack name %q is not a number: %w", op, item.Name, apperr.ErrValidation)
			}
			total += float64(n*item.Amount) / 10
		case models.GrantSubscription:
			sub, err := s.repo.GetUserSubscription(ctx, userID)
			if err == nil && sub.ExpiresAt.After(time.Now()) {
				return 0, fmt.Errorf("%s: user already has an active subscription: %w", op, apperr.ErrConflict)
			}
			plan, err := s.repo.GetPlanByName(ctx, item.Name)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", op, err)
			}
			total += plan.Cost * float64(item.Amount)
		case models.GrantExam:
			exam, err := s.repo.GetExamByName(ctx, item.Name)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", op, err)
			}
			total += exam.Cost * float64(item.Amount)
		default:
			return 0, fmt.Errorf("%s: unknown cart category %q: %w", op, item.Category, apperr.ErrValidation)
		}
	}
	return total, nil
}

// undo — отложенная компенсация уже выданной единицы корзины.
type undo func(ctx context.Context) error

// Settle проводит платёж: считает сумму корзины по каталожным ценам, условно
// списывает её с карты и выдаёт позиции корзины поштучно. При сбое выдачи
// уже выданные единицы откатываются в обратном порядке и сумма возвращается
// на карту. Пауза шлюза выдерживается и при нехватке средств, и при успехе.
func (s *PaymentService) Settle(ctx context.Context, user models.SessionUser, cardID string,
	items []models.CartItem) (string, error) {
	const op = "payment.Settle"

	total, err := s.ComputeTotal(ctx, user.ID, items)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if total <= 0 {
		return "", fmt.Errorf("%s: cart total must be positive: %w", op, apperr.ErrValidation)
	}

	if _, err := s.repo.GetCard(ctx, user.ID, cardID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	affected, err := s.repo.DebitCard(ctx, user.ID, cardID, total)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		s.gatewayPause(ctx)
		return "", fmt.Errorf("%s: insufficient funds on card: %w", op, apperr.ErrInsufficientFunds)
	}

	if err := s.fanOut(ctx, user.ID, items); err != nil {
		if refundErr := s.repo.CreditCard(ctx, user.ID, cardID, total); refundErr != nil {
			s.log.Error("failed to refund card after grant failure",
				sl.UserID(user.ID), slog.String("card_id", cardID), sl.Err(refundErr))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.gatewayPause(ctx)

	s.log.Info("payment settled", sl.UserID(user.ID),
		slog.String("card_id", cardID), slog.Float64("total", total))

	receipt := models.Receipt{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Source:    "payment",
		Summary:   cartSummary(items),
		TotalUSD:  total,
		CreatedAt: time.Now(),
	}
	if err := s.receipts.Publish("purchase", receipt); err != nil {
		s.log.Warn("failed to publish payment receipt", sl.UserID(user.ID), sl.Err(err))
	}

	return fmt.Sprintf("Successfully processed payment for a total of $%v.", total), nil
}

// fanOut выдаёт каждую позицию корзины поштучно, накапливая компенсации.
// При сбое выполненные компенсации запускаются в обратном порядке.
func (s *PaymentService) fanOut(ctx context.Context, userID string, items []models.CartItem) error {
	var undos []undo

	rollback := func() {
		for i := len(undos) - 1; i >= 0; i-- {
			if err := undos[i](ctx); err != nil {
				s.log.Error("failed to compensate granted cart unit", sl.UserID(userID), sl.Err(err))
			}
		}
	}

	for _, item := range items {
		for unit := 0; unit < item.Amount; unit++ {
			switch item.Category {
			case models.GrantCubes:
				n, err := strconv.Atoi(item.Name)
				if err != nil {
					rollback()
					return fmt.Errorf("cube pack name %q is not a number: %w", item.Name, apperr.ErrValidation)
				}
				if _, err := s.cubes.Adjust(ctx, userID, n); err != nil {
					rollback()
					return err
				}
				undos = append(undos, func(ctx context.Context) error {
					_, err := s.cubes.Adjust(ctx, userID, -n)
					return err
				})
			case models.GrantSubscription:
				if err := s.subscriptions.Purchase(ctx, userID, item.Name); err != nil {
					rollback()
					return err
				}
				undos = append(undos, func(ctx context.Context) error {
					return s.subscriptions.Revoke(ctx, userID)
				})
			case models.GrantExam:
				id, err := s.exams.Grant(ctx, userID, item.Name)
				if err != nil {
					rollback()
					return err
				}
				undos = append(undos, func(ctx context.Context) error {
					return s.exams.Revoke(ctx, id)
				})
			default:
				rollback()
				return fmt.Errorf("unknown cart category %q: %w", item.Category, apperr.ErrValidation)
			}
		}
	}
	return nil
}

// gatewayPause выдерживает паузу платёжного шлюза, уважая отмену контекста.
func (s *PaymentService) gatewayPause(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func cartSummary(items []models.CartItem) string {
	summary := ""
	for i, item := range items {
		if i > 0 {
			summary += "; "
		}
		summary += fmt.Sprintf("%dx %s %s", item.Amount, item.Name, item.Category)
	}
	return summary
}
