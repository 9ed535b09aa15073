package exam

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

func (m *RepoMock) ListExams(ctx context.Context) ([]*models.Exam, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Exam), args.Error(1)
}
func (m *RepoMock) GetExamByID(ctx context.Context, id int) (*models.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}
func (m *RepoMock) GetExamByName(ctx context.Context, name string) (*models.Exam, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exam), args.Error(1)
}
func (m *RepoMock) CreateUserExam(ctx context.Context, userUID string, examID int) (int, error) {
	args := m.Called(ctx, userUID, examID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) DeleteUserExam(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}
func (m *RepoMock) BookUserExam(ctx context.Context, userUID string, examID int, date time.Time) (int64, error) {
	args := m.Called(ctx, userUID, examID, date)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) ListUserExams(ctx context.Context, userUID string) ([]*models.UserExam, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserExam), args.Error(1)
}
func (m *RepoMock) ListBookedSlots(ctx context.Context, examID int, from, to time.Time) ([]time.Time, error) {
	args := m.Called(ctx, examID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}
func (m *RepoMock) GetActiveUserExam(ctx context.Context, userUID string, examID int, now time.Time) (*models.UserExam, error) {
	args := m.Called(ctx, userUID, examID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserExam), args.Error(1)
}
func (m *RepoMock) GetExamContent(ctx context.Context, examID int) (*models.ExamContent, error) {
	args := m.Called(ctx, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamContent), args.Error(1)
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

func newTestService(repo *RepoMock, cache *CacheMock) *ExamService {
	return NewExamService(repo, cache, newNoopLogger())
}

func TestExamService_Book(t *testing.T) {
	date := time.Date(2026, time.October, 10, 10, 0, 0, 0, time.UTC)
	exam := &models.Exam{ID: 3, Name: "CPTS", Cost: 210}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantErr    bool
		wantErrIs  error
	}{
		{
			name: "success booking",
			setupMocks: func(r *RepoMock) {
				r.On("GetExamByID", mock.Anything, 3).Return(exam, nil).Once()
				r.On("BookUserExam", mock.Anything, "user-1", 3, date).Return(int64(1), nil).Once()
			},
		},
		{
			name: "нет свободной попытки — Conflict",
			setupMocks: func(r *RepoMock) {
				r.On("GetExamByID", mock.Anything, 3).Return(exam, nil).Once()
				r.On("BookUserExam", mock.Anything, "user-1", 3, date).Return(int64(0), nil).Once()
			},
			wantErr:   true,
			wantErrIs: apperr.ErrConflict,
		},
		{
			name: "несуществующий экзамен",
			setupMocks: func(r *RepoMock) {
				r.On("GetExamByID", mock.Anything, 3).
					Return(nil, fmt.Errorf("storage.GetExamByID: %w", apperr.ErrNotFound)).Once()
			},
			wantErr:   true,
			wantErrIs: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := newTestService(repo, new(CacheMock))

			tt.setupMocks(repo)

			err := svc.Book(context.Background(), "user-1", 3, date)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestExamService_CheckAvailability(t *testing.T) {
	date := time.Date(2026, time.October, 10, 14, 30, 0, 0, time.UTC)
	exam := &models.Exam{ID: 3, Name: "CPTS"}
	taken := []time.Time{
		time.Date(2026, time.October, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.October, 10, 15, 0, 0, 0, time.UTC),
	}

	t.Run("границы диапазона расширяются до границ суток", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo, new(CacheMock))

		repo.On("GetExamByID", mock.Anything, 3).Return(exam, nil).Once()
		repo.On("ListBookedSlots", mock.Anything, 3,
			mock.MatchedBy(func(from time.Time) bool { return from.Hour() == 0 && from.Day() == 10 }),
			mock.MatchedBy(func(to time.Time) bool { return to.Day() == 12 && to.Hour() == 23 }),
		).Return(taken, nil).Once()

		slots, err := svc.CheckAvailability(context.Background(), 3, date, date.AddDate(0, 0, 2))
		assert.NoError(t, err)
		assert.Equal(t, taken, slots)
		repo.AssertExpectations(t)
	})

	t.Run("несуществующий экзамен — NotFound", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo, new(CacheMock))

		repo.On("GetExamByID", mock.Anything, 99).
			Return(nil, fmt.Errorf("storage.GetExamByID: %w", apperr.ErrNotFound)).Once()

		_, err := svc.CheckAvailability(context.Background(), 99, date, date)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("ошибка выборки слотов деградирует до пустого списка", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo, new(CacheMock))

		repo.On("GetExamByID", mock.Anything, 3).Return(exam, nil).Once()
		repo.On("ListBookedSlots", mock.Anything, 3, mock.Anything, mock.Anything).
			Return(nil, errors.New("db down")).Once()

		slots, err := svc.CheckAvailability(context.Background(), 3, date, date)
		assert.NoError(t, err)
		assert.Empty(t, slots)
		assert.NotNil(t, slots)
		repo.AssertExpectations(t)
	})
}

func TestExamService_Grant(t *testing.T) {
	t.Run("выдаёт попытку и возвращает её ID", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo, new(CacheMock))

		repo.On("GetExamByName", mock.Anything, "CPTS").
			Return(&models.Exam{ID: 3, Name: "CPTS"}, nil).Once()
		repo.On("CreateUserExam", mock.Anything, "user-1", 3).Return(17, nil).Once()

		id, err := svc.Grant(context.Background(), "user-1", "CPTS")
		assert.NoError(t, err)
		assert.Equal(t, 17, id)
		repo.AssertExpectations(t)
	})

	t.Run("unknown exam name", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo, new(CacheMock))

		repo.On("GetExamByName", mock.Anything, "NOPE").
			Return(nil, fmt.Errorf("storage.GetExamByName: %w", apperr.ErrNotFound)).Once()

		_, err := svc.Grant(context.Background(), "user-1", "NOPE")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		repo.AssertExpectations(t)
	})
}

func TestExamService_GrantByID(t *testing.T) {
	t.Run("выдаёт попытку по идентификатору каталога", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo, new(CacheMock))

		repo.On("GetExamByID", mock.Anything, 3).
			Return(&models.Exam{ID: 3, Name: "CPTS"}, nil).Once()
		repo.On("CreateUserExam", mock.Anything, "user-1", 3).Return(17, nil).Once()

		id, err := svc.GrantByID(context.Background(), "user-1", 3)
		assert.NoError(t, err)
		assert.Equal(t, 17, id)
		repo.AssertExpectations(t)
	})

	t.Run("unknown exam id", func(t *testing.T) {
		repo := new(RepoMock)
		svc := newTestService(repo, new(CacheMock))

		repo.On("GetExamByID", mock.Anything, 99).
			Return(nil, fmt.Errorf("storage.GetExamByID: %w", apperr.ErrNotFound)).Once()

		_, err := svc.GrantByID(context.Background(), "user-1", 99)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		repo.AssertExpectations(t)
	})
}

func TestExamService_Content(t *testing.T) {
	content := &models.ExamContent{ExamID: 3, Content: "exam instructions"}

	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		wantErr    bool
		wantErrIs  error
	}{
		{
			name: "действующее бронирование открывает содержимое",
			setupMocks: func(r *RepoMock) {
				r.On("GetActiveUserExam", mock.Anything, "user-1", 3, mock.Anything).
					Return(&models.UserExam{ID: 17, UserID: "user-1", ExamID: 3}, nil).Once()
				r.On("GetExamContent", mock.Anything, 3).Return(content, nil).Once()
			},
		},
		{
			name: "без бронирования доступ закрыт",
			setupMocks: func(r *RepoMock) {
				r.On("GetActiveUserExam", mock.Anything, "user-1", 3, mock.Anything).
					Return(nil, fmt.Errorf("storage.GetActiveUserExam: %w", apperr.ErrNotFound)).Once()
			},
			wantErr:   true,
			wantErrIs: apperr.ErrUnauthorized,
		},
		{
			name: "ошибка хранилища передаётся как есть",
			setupMocks: func(r *RepoMock) {
				r.On("GetActiveUserExam", mock.Anything, "user-1", 3, mock.Anything).
					Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := newTestService(repo, new(CacheMock))

			tt.setupMocks(repo)

			got, err := svc.Content(context.Background(), "user-1", 3)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, content, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestExamService_Get(t *testing.T) {
	exam := &models.Exam{ID: 3, Name: "CPTS", Cost: 210}

	t.Run("cache miss reads storage and fills cache", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := newTestService(repo, cache)

		cache.On("Get", "exams:3", mock.Anything).Return(false, nil).Once()
		repo.On("GetExamByID", mock.Anything, 3).Return(exam, nil).Once()
		cache.On("Set", "exams:3", exam, time.Hour).Return(nil).Once()

		got, err := svc.Get(context.Background(), 3)
		assert.NoError(t, err)
		assert.Equal(t, exam, got)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips storage", func(t *testing.T) {
		repo := new(RepoMock)
		cache := new(CacheMock)
		svc := newTestService(repo, cache)

		cache.On("Get", "exams:3", mock.Anything).Return(true, nil).Once()

		_, err := svc.Get(context.Background(), 3)
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "GetExamByID", mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})
}
