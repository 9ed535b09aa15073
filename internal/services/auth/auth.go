// Package auth содержит бизнес-логику аутентификации: регистрацию,
// вход по паролю и обновление токена со свежим снимком данных.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/password"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// CubeLedger — леджер кубов для приветственного начисления и снимка токена.
type CubeLedger interface {
	CreateBalance(ctx context.Context, userID string, count int) error
	GetBalance(ctx context.Context, userID string) (*models.CubeBalance, error)
}

// SubscriptionResolver возвращает действующую подписку для снимка токена.
type SubscriptionResolver interface {
	ResolveEffective(ctx context.Context, user models.User) models.EffectiveSubscription
}

// TokenMaker выпускает токен со снимком данных пользователя.
type TokenMaker interface {
	GenerateToken(user models.SessionUser) (string, error)
}

// AuthService реализует бизнес-логику аутентификации.
type AuthService struct {
	repo          UserRepository
	cubes         CubeLedger
	subscriptions SubscriptionResolver
	tokens        TokenMaker
	staffDomain   string
	log           *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(repo UserRepository, cubes CubeLedger, subscriptions SubscriptionResolver,
	tokens TokenMaker, staffDomain string, log *slog.Logger) *AuthService {
	return &AuthService{
		repo:          repo,
		cubes:         cubes,
		subscriptions: subscriptions,
		tokens:        tokens,
		staffDomain:   staffDomain,
		log:           log,
	}
}

// Register создает пользователя, начисляет приветственные кубы и возвращает
// токен. Сохранённый баланс и баланс в снимке токена различаются намеренно:
// хранилище получает RegistrationCubeGrant, токен показывает
// AdvertisedCubeGrant до первого перевыпуска.
// Почта на домене сотрудников для самостоятельной регистрации закрыта.
func (s *AuthService) Register(ctx context.Context, name, username, email, pass string) (string, error) {
	const op = "auth.Register"

	if strings.HasSuffix(email, "@"+s.staffDomain) {
		return "", fmt.Errorf("%s: staff accounts are provisioned internally: %w", op, apperr.ErrValidation)
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return "", fmt.Errorf("%s: email already registered: %w", op, apperr.ErrConflict)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(pass)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Name:             name,
		Username:         username,
		Email:            email,
		PasswordHash:     hash,
		RegistrationDate: time.Now(),
	}
	uid, err := s.repo.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user.ID = uid

	if err := s.cubes.CreateBalance(ctx, uid, models.RegistrationCubeGrant); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	snapshot := s.snapshot(ctx, user)
	snapshot.Cubes = models.AdvertisedCubeGrant

	token, err := s.tokens.GenerateToken(snapshot)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", sl.UserID(uid), slog.String("username", username))
	return token, nil
}

// Login проверяет пароль и возвращает токен со свежим снимком данных.
// Неизвестная почта и неверный пароль дают одинаковую ошибку.
func (s *AuthService) Login(ctx context.Context, email, pass string) (string, error) {
	const op = "auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("%s: invalid credentials: %w", op, apperr.ErrUnauthorized)
	}
	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		return "", fmt.Errorf("%s: invalid credentials: %w", op, apperr.ErrUnauthorized)
	}

	token, err := s.tokens.GenerateToken(s.snapshot(ctx, *user))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", sl.UserID(user.ID))
	return token, nil
}

// Refresh перевыпускает токен со свежим снимком: актуальным балансом кубов
// и действующей подпиской. Только здесь снимок догоняет хранилище.
func (s *AuthService) Refresh(ctx context.Context, userID string) (string, error) {
	const op = "auth.Refresh"

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.GenerateToken(s.snapshot(ctx, *user))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// snapshot собирает снимок данных пользователя для токена.
// Сбой чтения баланса деградирует до нуля — токен выпускается в любом случае.
func (s *AuthService) snapshot(ctx context.Context, user models.User) models.SessionUser {
	cubes := 0
	if balance, err := s.cubes.GetBalance(ctx, user.ID); err == nil {
		cubes = balance.Count
	} else {
		s.log.Warn("failed to read cube balance for token snapshot", sl.UserID(user.ID), sl.Err(err))
	}

	return models.SessionUser{
		ID:               user.ID,
		Name:             user.Name,
		Username:         user.Username,
		Email:            user.Email,
		RegistrationDate: user.RegistrationDate,
		Cubes:            cubes,
		Subscription:     s.subscriptions.ResolveEffective(ctx, user),
	}
}
