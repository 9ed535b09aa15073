// Package exam содержит бизнес-логику сертификационных экзаменов:
// каталог, выдача купленных попыток, бронирование слота и доступ к
// закрытому содержимому.
package exam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/daterange"
	"github.com/magabrotheeeer/academy-commerce/internal/lib/sl"
	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// ExamRepository определяет методы для работы с экзаменами в хранилище.
type ExamRepository interface {
	ListExams(ctx context.Context) ([]*models.Exam, error)
	GetExamByID(ctx context.Context, id int) (*models.Exam, error)
	GetExamByName(ctx context.Context, name string) (*models.Exam, error)
	CreateUserExam(ctx context.Context, userUID string, examID int) (int, error)
	DeleteUserExam(ctx context.Context, id int) error
	BookUserExam(ctx context.Context, userUID string, examID int, date time.Time) (int64, error)
	ListUserExams(ctx context.Context, userUID string) ([]*models.UserExam, error)
	ListBookedSlots(ctx context.Context, examID int, from, to time.Time) ([]time.Time, error)
	GetActiveUserExam(ctx context.Context, userUID string, examID int, now time.Time) (*models.UserExam, error)
	GetExamContent(ctx context.Context, examID int) (*models.ExamContent, error)
}

// Cache описывает методы для кэширования данных каталога.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// ExamService реализует бизнес-логику экзаменов.
type ExamService struct {
	repo  ExamRepository
	cache Cache
	log   *slog.Logger
}

// NewExamService создает новый экземпляр ExamService.
func NewExamService(repo ExamRepository, cache Cache, log *slog.Logger) *ExamService {
	return &ExamService{repo: repo, cache: cache, log: log}
}

// List возвращает все экзамены каталога.
func (s *ExamService) List(ctx context.Context) ([]*models.Exam, error) {
	return s.repo.ListExams(ctx)
}

// Get возвращает экзамен каталога по идентификатору, используя кеш.
func (s *ExamService) Get(ctx context.Context, id int) (*models.Exam, error) {
	key := fmt.Sprintf("exams:%d", id)

	var exam models.Exam
	found, err := s.cache.Get(key, &exam)
	if err != nil {
		s.log.Warn("failed to read exam from cache", sl.Err(err))
	}
	if found {
		return &exam, nil
	}

	e, err := s.repo.GetExamByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, e, time.Hour); err != nil {
		s.log.Warn("failed to cache exam", sl.Err(err))
	}
	return e, nil
}

// Grant выдаёт пользователю одну попытку экзамена по его имени в каталоге.
// Каждая выдача — отдельная незабронированная запись, повторные покупки
// складываются. Возвращает ID созданной записи для возможной компенсации.
func (s *ExamService) Grant(ctx context.Context, userID, examName string) (int, error) {
	const op = "exam.Grant"

	exam, err := s.repo.GetExamByName(ctx, examName)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateUserExam(ctx, userID, exam.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("granted exam attempt",
		sl.UserID(userID), slog.String("exam", exam.Name), slog.Int("user_exam_id", id))
	return id, nil
}

// GrantByID выдаёт пользователю одну попытку экзамена по идентификатору
// каталога. Используется там, где цель задана числом, а не именем,
// например при погашении купона.
func (s *ExamService) GrantByID(ctx context.Context, userID string, examID int) (int, error) {
	const op = "exam.GrantByID"

	exam, err := s.repo.GetExamByID(ctx, examID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateUserExam(ctx, userID, exam.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("granted exam attempt",
		sl.UserID(userID), slog.String("exam", exam.Name), slog.Int("user_exam_id", id))
	return id, nil
}

// Revoke удаляет выданную попытку экзамена. Используется как компенсация
// при откате расчёта платежа.
func (s *ExamService) Revoke(ctx context.Context, userExamID int) error {
	const op = "exam.Revoke"

	if err := s.repo.DeleteUserExam(ctx, userExamID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Book закрепляет дату за одной незабронированной попыткой экзамена.
// Дата выставляется условной записью хранилища, так что попытку нельзя
// забронировать дважды. Отсутствие свободной попытки — ошибка Conflict.
func (s *ExamService) Book(ctx context.Context, userID string, examID int, date time.Time) error {
	const op = "exam.Book"

	if _, err := s.repo.GetExamByID(ctx, examID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := s.repo.BookUserExam(ctx, userID, examID, date)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: no unbooked exam attempt available: %w", op, apperr.ErrConflict)
	}

	s.log.Info("booked exam attempt",
		sl.UserID(userID), slog.Int("exam_id", examID), slog.Time("date", date))
	return nil
}

// CheckAvailability возвращает занятые слоты экзамена в диапазоне дат,
// расширенном до границ суток. Несуществующий экзамен — NotFound; ошибка
// выборки слотов деградирует до пустого списка, чтобы не блокировать
// страницу бронирования.
func (s *ExamService) CheckAvailability(ctx context.Context, examID int, from, to time.Time) ([]time.Time, error) {
	const op = "exam.CheckAvailability"

	exam, err := s.repo.GetExamByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots, err := s.repo.ListBookedSlots(ctx, exam.ID, daterange.StartOfDay(from), daterange.EndOfDay(to))
	if err != nil {
		s.log.Warn("failed to list booked slots, degrading to empty",
			slog.String("exam", exam.Name), sl.Err(err))
		return []time.Time{}, nil
	}
	return slots, nil
}

// ListUserExams возвращает неиспользованные попытки экзаменов пользователя.
func (s *ExamService) ListUserExams(ctx context.Context, userID string) ([]*models.UserExam, error) {
	return s.repo.ListUserExams(ctx, userID)
}

// Content возвращает закрытое содержимое экзамена. Доступ требует
// действующего бронирования: неиспользованной попытки с датой в будущем.
func (s *ExamService) Content(ctx context.Context, userID string, examID int) (*models.ExamContent, error) {
	const op = "exam.Content"

	if _, err := s.repo.GetActiveUserExam(ctx, userID, examID, time.Now()); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%s: no active exam booking: %w", op, apperr.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	content, err := s.repo.GetExamContent(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return content, nil
}
