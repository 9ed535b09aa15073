package module

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListModules(ctx context.Context) ([]*models.Module, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Module), args.Error(1)
}
func (m *RepoMock) GetModuleByID(ctx context.Context, id int) (*models.Module, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Module), args.Error(1)
}
func (m *RepoMock) GetUnlockedModule(ctx context.Context, userUID string, moduleID int) (*models.UnlockedModule, error) {
	args := m.Called(ctx, userUID, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UnlockedModule), args.Error(1)
}
func (m *RepoMock) CreateUnlockedModule(ctx context.Context, userUID string, moduleID int) error {
	return m.Called(ctx, userUID, moduleID).Error(0)
}

type CubesMock struct{ mock.Mock }

func (m *CubesMock) GetBalance(ctx context.Context, userID string) (*models.CubeBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CubeBalance), args.Error(1)
}
func (m *CubesMock) Adjust(ctx context.Context, userID string, delta int) (*models.CubeBalance, error) {
	args := m.Called(ctx, userID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CubeBalance), args.Error(1)
}

type SubscriptionsMock struct{ mock.Mock }

func (m *SubscriptionsMock) CoversTier(ctx context.Context, tier string, eff models.EffectiveSubscription) bool {
	return m.Called(ctx, tier, eff).Bool(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newTestService() (*ModuleService, *RepoMock, *CubesMock, *SubscriptionsMock) {
	repo := new(RepoMock)
	cubes := new(CubesMock)
	subs := new(SubscriptionsMock)
	return NewModuleService(repo, cubes, subs, newNoopLogger()), repo, cubes, subs
}

func notFound() error {
	return fmt.Errorf("storage.GetUnlockedModule: %w", apperr.ErrNotFound)
}

func TestModuleService_Unlock(t *testing.T) {
	user := models.SessionUser{
		ID: "user-1",
		Subscription: models.EffectiveSubscription{
			SubscriptionName: "Silver",
			ExpiresAt:        time.Now().AddDate(0, 6, 0),
		},
	}
	mod := &models.Module{ID: 7, Title: "SQL Injection Fundamentals", Tier: "Tier I"}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CubesMock, s *SubscriptionsMock)
		wantErr    bool
		wantErrIs  error
	}{
		{
			name: "подписка покрывает тир — бесплатная разблокировка",
			setupMocks: func(r *RepoMock, _ *CubesMock, s *SubscriptionsMock) {
				r.On("GetModuleByID", mock.Anything, 7).Return(mod, nil).Once()
				r.On("GetUnlockedModule", mock.Anything, "user-1", 7).Return(nil, notFound()).Once()
				s.On("CoversTier", mock.Anything, "Tier I", user.Subscription).Return(true).Once()
				r.On("CreateUnlockedModule", mock.Anything, "user-1", 7).Return(nil).Once()
			},
		},
		{
			name: "без покрытия списывается цена тира в кубах",
			setupMocks: func(r *RepoMock, c *CubesMock, s *SubscriptionsMock) {
				r.On("GetModuleByID", mock.Anything, 7).Return(mod, nil).Once()
				r.On("GetUnlockedModule", mock.Anything, "user-1", 7).Return(nil, notFound()).Once()
				s.On("CoversTier", mock.Anything, "Tier I", user.Subscription).Return(false).Once()
				c.On("GetBalance", mock.Anything, "user-1").
					Return(&models.CubeBalance{UserID: "user-1", Count: 120}, nil).Once()
				c.On("Adjust", mock.Anything, "user-1", -50).
					Return(&models.CubeBalance{UserID: "user-1", Count: 70}, nil).Once()
				r.On("CreateUnlockedModule", mock.Anything, "user-1", 7).Return(nil).Once()
			},
		},
		{
			name: "нехватка кубов — InsufficientFunds, списания нет",
			setupMocks: func(r *RepoMock, c *CubesMock, s *SubscriptionsMock) {
				r.On("GetModuleByID", mock.Anything, 7).Return(mod, nil).Once()
				r.On("GetUnlockedModule", mock.Anything, "user-1", 7).Return(nil, notFound()).Once()
				s.On("CoversTier", mock.Anything, "Tier I", user.Subscription).Return(false).Once()
				c.On("GetBalance", mock.Anything, "user-1").
					Return(&models.CubeBalance{UserID: "user-1", Count: 20}, nil).Once()
			},
			wantErr:   true,
			wantErrIs: apperr.ErrInsufficientFunds,
		},
		{
			name: "coming_soon нельзя разблокировать",
			setupMocks: func(r *RepoMock, _ *CubesMock, _ *SubscriptionsMock) {
				r.On("GetModuleByID", mock.Anything, 7).
					Return(&models.Module{ID: 7, Tier: "Tier I", Conditions: []string{"coming_soon"}}, nil).Once()
			},
			wantErr:   true,
			wantErrIs: apperr.ErrForbidden,
		},
		{
			name: "уже разблокированный модуль — Conflict",
			setupMocks: func(r *RepoMock, _ *CubesMock, _ *SubscriptionsMock) {
				r.On("GetModuleByID", mock.Anything, 7).Return(mod, nil).Once()
				r.On("GetUnlockedModule", mock.Anything, "user-1", 7).
					Return(&models.UnlockedModule{UserID: "user-1", ModuleID: 7}, nil).Once()
			},
			wantErr:   true,
			wantErrIs: apperr.ErrConflict,
		},
		{
			name: "сбой записи разблокировки возвращает кубы",
			setupMocks: func(r *RepoMock, c *CubesMock, s *SubscriptionsMock) {
				r.On("GetModuleByID", mock.Anything, 7).Return(mod, nil).Once()
				r.On("GetUnlockedModule", mock.Anything, "user-1", 7).Return(nil, notFound()).Once()
				s.On("CoversTier", mock.Anything, "Tier I", user.Subscription).Return(false).Once()
				c.On("GetBalance", mock.Anything, "user-1").
					Return(&models.CubeBalance{UserID: "user-1", Count: 120}, nil).Once()
				c.On("Adjust", mock.Anything, "user-1", -50).
					Return(&models.CubeBalance{UserID: "user-1", Count: 70}, nil).Once()
				r.On("CreateUnlockedModule", mock.Anything, "user-1", 7).
					Return(errors.New("db down")).Once()
				c.On("Adjust", mock.Anything, "user-1", 50).
					Return(&models.CubeBalance{UserID: "user-1", Count: 120}, nil).Once()
			},
			wantErr: true,
		},
		{
			name: "неизвестный тир — Validation",
			setupMocks: func(r *RepoMock, _ *CubesMock, _ *SubscriptionsMock) {
				r.On("GetModuleByID", mock.Anything, 7).
					Return(&models.Module{ID: 7, Tier: "Tier X"}, nil).Once()
				r.On("GetUnlockedModule", mock.Anything, "user-1", 7).Return(nil, notFound()).Once()
			},
			wantErr:   true,
			wantErrIs: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, cubes, subs := newTestService()
			tt.setupMocks(repo, cubes, subs)

			msg, err := svc.Unlock(context.Background(), user, 7)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "Module successfully unlocked", msg)
			}

			repo.AssertExpectations(t)
			cubes.AssertExpectations(t)
			subs.AssertExpectations(t)
		})
	}
}

func TestModuleService_UnlockedStatus(t *testing.T) {
	t.Run("запись есть — разблокирован", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("GetUnlockedModule", mock.Anything, "user-1", 7).
			Return(&models.UnlockedModule{UserID: "user-1", ModuleID: 7}, nil).Once()

		assert.True(t, svc.UnlockedStatus(context.Background(), "user-1", 7))
		repo.AssertExpectations(t)
	})

	t.Run("записи нет — заблокирован", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("GetUnlockedModule", mock.Anything, "user-1", 7).Return(nil, notFound()).Once()

		assert.False(t, svc.UnlockedStatus(context.Background(), "user-1", 7))
		repo.AssertExpectations(t)
	})

	t.Run("ошибка хранилища трактуется как заблокирован", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("GetUnlockedModule", mock.Anything, "user-1", 7).
			Return(nil, errors.New("db down")).Once()

		assert.False(t, svc.UnlockedStatus(context.Background(), "user-1", 7))
		repo.AssertExpectations(t)
	})
}
