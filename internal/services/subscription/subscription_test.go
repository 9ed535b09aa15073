package services

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

func (m *RepoMock) ListPlans(ctx context.Context) ([]*models.SubscriptionPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SubscriptionPlan), args.Error(1)
}
func (m *RepoMock) GetPlanByName(ctx context.Context, name string) (*models.SubscriptionPlan, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionPlan), args.Error(1)
}
func (m *RepoMock) GetUserSubscription(ctx context.Context, userUID string) (*models.UserSubscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserSubscription), args.Error(1)
}
func (m *RepoMock) ReplaceUserSubscription(ctx context.Context, sub models.UserSubscription) error {
	return m.Called(ctx, sub).Error(0)
}
func (m *RepoMock) DeleteUserSubscription(ctx context.Context, userUID string) (int64, error) {
	args := m.Called(ctx, userUID)
	return args.Get(0).(int64), args.Error(1)
}

type CubesMock struct{ mock.Mock }

func (m *CubesMock) Adjust(ctx context.Context, userID string, delta int) (*models.CubeBalance, error) {
	args := m.Called(ctx, userID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CubeBalance), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newTestService(repo *RepoMock, cubes *CubesMock, cache *CacheMock) *SubscriptionService {
	return NewSubscriptionService(repo, cubes, cache, "hackthebox.com", newNoopLogger())
}

func TestSubscriptionService_ListCatalog(t *testing.T) {
	plans := []*models.SubscriptionPlan{
		{Name: "Silver", Cost: 490, Reward: 200, DurationMonths: 12, UnlockedTiers: []string{"Tier 0", "Tier I"}},
	}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CacheMock)
		wantErr    bool
	}{
		{
			name: "cache miss reads storage and fills cache",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "subscriptions:catalog", mock.Anything).Return(false, nil).Once()
				r.On("ListPlans", mock.Anything).Return(plans, nil).Once()
				c.On("Set", "subscriptions:catalog", plans, time.Hour).Return(nil).Once()
			},
		},
		{
			name: "cache hit skips storage",
			setupMocks: func(_ *RepoMock, c *CacheMock) {
				c.On("Get", "subscriptions:catalog", mock.Anything).Return(true, nil).Once()
			},
		},
		{
			name: "cache set error logs warning but returns plans",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "subscriptions:catalog", mock.Anything).Return(false, nil).Once()
				r.On("ListPlans", mock.Anything).Return(plans, nil).Once()
				c.On("Set", "subscriptions:catalog", plans, time.Hour).Return(errors.New("redis down")).Once()
			},
		},
		{
			name: "storage error is propagated",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", "subscriptions:catalog", mock.Anything).Return(false, nil).Once()
				r.On("ListPlans", mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cubes := new(CubesMock)
			cache := new(CacheMock)
			svc := newTestService(repo, cubes, cache)

			tt.setupMocks(repo, cache)

			_, err := svc.ListCatalog(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_ResolveEffective(t *testing.T) {
	tests := []struct {
		name       string
		user       models.User
		setupMocks func(r *RepoMock)
		wantName   string
		wantExpiry time.Time
	}{
		{
			name: "стафф-домен даёт синтетическую Unlimited",
			user: models.User{ID: "user-1", Email: "jpardo@hackthebox.com"},
			setupMocks: func(_ *RepoMock) {
			},
			wantName:   models.UnlimitedPlanName,
			wantExpiry: models.SyntheticExpiry,
		},
		{
			name: "живая сохранённая подписка возвращается как есть",
			user: models.User{ID: "user-1", Email: "user@example.com"},
			setupMocks: func(r *RepoMock) {
				r.On("GetUserSubscription", mock.Anything, "user-1").
					Return(&models.UserSubscription{
						UserID:           "user-1",
						SubscriptionName: "Silver",
						ExpiresAt:        time.Now().AddDate(0, 6, 0),
					}, nil).Once()
			},
			wantName: "Silver",
		},
		{
			name: "отсутствующая запись даёт free",
			user: models.User{ID: "user-1", Email: "user@example.com"},
			setupMocks: func(r *RepoMock) {
				r.On("GetUserSubscription", mock.Anything, "user-1").
					Return(nil, fmt.Errorf("storage.GetUserSubscription: %w", apperr.ErrNotFound)).Once()
			},
			wantName:   models.FreePlanName,
			wantExpiry: models.SyntheticExpiry,
		},
		{
			name: "истёкшая запись даёт free и не удаляется",
			user: models.User{ID: "user-1", Email: "user@example.com"},
			setupMocks: func(r *RepoMock) {
				r.On("GetUserSubscription", mock.Anything, "user-1").
					Return(&models.UserSubscription{
						UserID:           "user-1",
						SubscriptionName: "Silver",
						ExpiresAt:        time.Now().AddDate(0, -1, 0),
					}, nil).Once()
			},
			wantName:   models.FreePlanName,
			wantExpiry: models.SyntheticExpiry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cubes := new(CubesMock)
			cache := new(CacheMock)
			svc := newTestService(repo, cubes, cache)

			tt.setupMocks(repo)

			eff := svc.ResolveEffective(context.Background(), tt.user)
			assert.Equal(t, tt.wantName, eff.SubscriptionName)
			if !tt.wantExpiry.IsZero() {
				assert.True(t, eff.ExpiresAt.Equal(tt.wantExpiry))
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Purchase(t *testing.T) {
	plan := &models.SubscriptionPlan{Name: "Silver", Cost: 490, Reward: 200, DurationMonths: 12}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, c *CubesMock)
		wantErr    bool
		wantErrIs  error
	}{
		{
			name: "success purchase with reward",
			setupMocks: func(r *RepoMock, c *CubesMock) {
				r.On("GetPlanByName", mock.Anything, "Silver").Return(plan, nil).Once()
				r.On("ReplaceUserSubscription", mock.Anything, mock.MatchedBy(func(sub models.UserSubscription) bool {
					return sub.UserID == "user-1" && sub.SubscriptionName == "Silver" &&
						sub.ExpiresAt.After(time.Now().AddDate(0, 11, 0))
				})).Return(nil).Once()
				c.On("Adjust", mock.Anything, "user-1", 200).
					Return(&models.CubeBalance{UserID: "user-1", Count: 300}, nil).Once()
			},
		},
		{
			name: "живая подписка даёт Conflict",
			setupMocks: func(r *RepoMock, _ *CubesMock) {
				r.On("GetPlanByName", mock.Anything, "Silver").Return(plan, nil).Once()
				r.On("ReplaceUserSubscription", mock.Anything, mock.Anything).
					Return(fmt.Errorf("storage.ReplaceUserSubscription: %w", apperr.ErrConflict)).Once()
			},
			wantErr:   true,
			wantErrIs: apperr.ErrConflict,
		},
		{
			name: "unknown plan",
			setupMocks: func(r *RepoMock, _ *CubesMock) {
				r.On("GetPlanByName", mock.Anything, "Silver").
					Return(nil, fmt.Errorf("storage.GetPlanByName: %w", apperr.ErrNotFound)).Once()
			},
			wantErr:   true,
			wantErrIs: apperr.ErrNotFound,
		},
		{
			name: "сбой начисления награды откатывает подписку",
			setupMocks: func(r *RepoMock, c *CubesMock) {
				r.On("GetPlanByName", mock.Anything, "Silver").Return(plan, nil).Once()
				r.On("ReplaceUserSubscription", mock.Anything, mock.Anything).Return(nil).Once()
				c.On("Adjust", mock.Anything, "user-1", 200).
					Return(nil, errors.New("ledger down")).Once()
				r.On("DeleteUserSubscription", mock.Anything, "user-1").Return(int64(1), nil).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cubes := new(CubesMock)
			cache := new(CacheMock)
			svc := newTestService(repo, cubes, cache)

			tt.setupMocks(repo, cubes)

			err := svc.Purchase(context.Background(), "user-1", "Silver")
			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			cubes.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_CoversTier(t *testing.T) {
	future := time.Now().AddDate(0, 6, 0)

	tests := []struct {
		name       string
		eff        models.EffectiveSubscription
		setupMocks func(r *RepoMock)
		want       bool
	}{
		{
			name: "Unlimited покрывает любой тир",
			eff: models.EffectiveSubscription{
				SubscriptionName: models.UnlimitedPlanName,
				ExpiresAt:        models.SyntheticExpiry,
			},
			setupMocks: func(_ *RepoMock) {},
			want:       true,
		},
		{
			name: "план покрывает перечисленный тир",
			eff:  models.EffectiveSubscription{SubscriptionName: "Silver", ExpiresAt: future},
			setupMocks: func(r *RepoMock) {
				r.On("GetPlanByName", mock.Anything, "Silver").
					Return(&models.SubscriptionPlan{Name: "Silver", UnlockedTiers: []string{"Tier 0", "Tier I"}}, nil).Once()
			},
			want: true,
		},
		{
			name: "план не покрывает чужой тир",
			eff:  models.EffectiveSubscription{SubscriptionName: "Silver", ExpiresAt: future},
			setupMocks: func(r *RepoMock) {
				r.On("GetPlanByName", mock.Anything, "Silver").
					Return(&models.SubscriptionPlan{Name: "Silver", UnlockedTiers: []string{"Tier 0"}}, nil).Once()
			},
			want: false,
		},
		{
			name: "неизвестный план приравнивается к free",
			eff:  models.EffectiveSubscription{SubscriptionName: "Legacy", ExpiresAt: future},
			setupMocks: func(r *RepoMock) {
				r.On("GetPlanByName", mock.Anything, "Legacy").
					Return(nil, fmt.Errorf("storage.GetPlanByName: %w", apperr.ErrNotFound)).Once()
			},
			want: false,
		},
		{
			name:       "истёкшая подписка ничего не покрывает",
			eff:        models.EffectiveSubscription{SubscriptionName: "Silver", ExpiresAt: time.Now().AddDate(0, -1, 0)},
			setupMocks: func(_ *RepoMock) {},
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cubes := new(CubesMock)
			cache := new(CacheMock)
			svc := newTestService(repo, cubes, cache)

			tt.setupMocks(repo)

			got := svc.CoversTier(context.Background(), "Tier I", tt.eff)
			assert.Equal(t, tt.want, got)

			repo.AssertExpectations(t)
		})
	}
}

func TestSubscriptionService_Cancel(t *testing.T) {
	t.Run("отмена без сохранённой подписки — Conflict", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo, new(CubesMock), new(CacheMock))

		repo.On("GetUserSubscription", mock.Anything, "user-1").
			Return(nil, fmt.Errorf("storage.GetUserSubscription: %w", apperr.ErrNotFound)).Once()

		_, err := svc.Cancel(context.Background(), "user-1")
		assert.ErrorIs(t, err, apperr.ErrConflict)
		repo.AssertExpectations(t)
	})

	t.Run("отмена консультативная, запись не трогается", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo, new(CubesMock), new(CacheMock))

		repo.On("GetUserSubscription", mock.Anything, "user-1").
			Return(&models.UserSubscription{UserID: "user-1", SubscriptionName: "Silver",
				ExpiresAt: time.Now().AddDate(0, 3, 0)}, nil).Once()

		msg, err := svc.Cancel(context.Background(), "user-1")
		assert.NoError(t, err)
		assert.Contains(t, msg, "no longer be renewed")
		repo.AssertNotCalled(t, "DeleteUserSubscription", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})
}
