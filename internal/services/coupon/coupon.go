// Package coupon содержит бизнес-логику погашения купонов: одноразовое
// списание кода и выдача привязанной к нему награды.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// CouponRepository определяет методы для работы с купонами в хранилище.
type CouponRepository interface {
	// ClaimCoupon атомарно помечает неиспользованный купон использованным
	// и возвращает его. Использованный или неизвестный код — NotFound.
	ClaimCoupon(ctx context.Context, code string) (*models.Coupon, error)
	// ReleaseCoupon возвращает купон в неиспользованное состояние.
	ReleaseCoupon(ctx context.Context, code string) error
}

// CubeAdjuster — леджер кубов для купонов с наградой в кубах.
type CubeAdjuster interface {
	Adjust(ctx context.Context, userID string, delta int) (*models.CubeBalance, error)
}

// SubscriptionGranter оформляет тарифный план для купонов на подписку.
type SubscriptionGranter interface {
	Purchase(ctx context.Context, userID, planName string) error
}

// ExamGranter выдаёт попытку экзамена для купонов на экзамен. Цель
// купона хранит числовой идентификатор экзамена в каталоге.
type ExamGranter interface {
	GrantByID(ctx context.Context, userID string, examID int) (int, error)
}

// ReceiptPublisher публикует квитанцию о погашении в очередь рассылки.
type ReceiptPublisher interface {
	Publish(routingKey string, message any) error
}

// CouponService реализует бизнес-логику погашения купонов.
type CouponService struct {
	repo          CouponRepository
	cubes         CubeAdjuster
	subscriptions SubscriptionGranter
	exams         ExamGranter
	receipts      ReceiptPublisher
	log           *slog.Logger
}

// NewCouponService создает новый экземпляр CouponService.
func NewCouponService(repo CouponRepository, cubes CubeAdjuster, subscriptions SubscriptionGranter,
	exams ExamGranter, receipts ReceiptPublisher, log *slog.Logger) *CouponService {
	return &CouponService{
		repo:          repo,
		cubes:         cubes,
		subscriptions: subscriptions,
		exams:         exams,
		receipts:      receipts,
		log:           log,
	}
}

// Redeem погашает купон для пользователя. Код сначала атомарно списывается,
// затем выдаётся награда; если выдача не удалась, купон возвращается в
// оборот той же операцией хранилища. Успешное погашение публикует квитанцию,
// сбой публикации погашение не отменяет.
func (s *CouponService) Redeem(ctx context.Context, user models.SessionUser, code string) (string, error) {
	const op = "coupon.Redeem"

	if !models.ValidCouponCode(code) {
		return "", fmt.Errorf("%s: malformed coupon code: %w", op, apperr.ErrValidation)
	}

	coupon, err := s.repo.ClaimCoupon(ctx, code)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", fmt.Errorf("%s: coupon is unknown or already used: %w", op, apperr.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.grant(ctx, user.ID, coupon); err != nil {
		s.log.Error("failed to grant coupon reward, releasing coupon",
			sl.UserID(user.ID), slog.String("code", coupon.Code), sl.Err(err))
		if relErr := s.repo.ReleaseCoupon(ctx, coupon.Code); relErr != nil {
			s.log.Error("failed to release coupon", slog.String("code", coupon.Code), sl.Err(relErr))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("coupon redeemed", sl.UserID(user.ID),
		slog.String("code", coupon.Code), slog.String("kind", string(coupon.Kind)))

	summary := fmt.Sprintf("Coupon %s: %s %s", coupon.Code, coupon.Target, coupon.Kind)
	receipt := models.Receipt{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Source:    "coupon",
		Summary:   summary,
		TotalUSD:  0,
		CreatedAt: time.Now(),
	}
	if err := s.receipts.Publish("purchase", receipt); err != nil {
		s.log.Warn("failed to publish coupon receipt", sl.UserID(user.ID), sl.Err(err))
	}

	return fmt.Sprintf("Coupon successfully used for %s %s", coupon.Target, coupon.Kind), nil
}

// grant выдаёт награду купона согласно его типу.
func (s *CouponService) grant(ctx context.Context, userID string, coupon *models.Coupon) error {
	switch coupon.Kind {
	case models.GrantCubes:
		amount, err := strconv.Atoi(coupon.Target)
		if err != nil {
			return fmt.Errorf("coupon cube amount %q is not a number: %w", coupon.Target, apperr.ErrValidation)
		}
		_, err = s.cubes.Adjust(ctx, userID, amount)
		return err
	case models.GrantSubscription:
		return s.subscriptions.Purchase(ctx, userID, coupon.Target)
	case models.GrantExam:
		examID, err := strconv.Atoi(coupon.Target)
		if err != nil {
			return fmt.Errorf("coupon exam id %q is not a number: %w", coupon.Target, apperr.ErrValidation)
		}
		_, err = s.exams.GrantByID(ctx, userID, examID)
		return err
	default:
		return fmt.Errorf("unknown coupon kind %q: %w", coupon.Kind, apperr.ErrValidation)
	}
}
