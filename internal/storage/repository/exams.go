package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// ListExams возвращает все экзамены каталога.
func (s *Storage) ListExams(ctx context.Context) ([]*models.Exam, error) {
	const op = "storage.ListExams"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, field, cost FROM exams ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Exam
	for rows.Next() {
		var e models.Exam
		if err := rows.Scan(&e.ID, &e.Name, &e.Field, &e.Cost); err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// GetExamByID возвращает экзамен каталога по идентификатору.
func (s *Storage) GetExamByID(ctx context.Context, id int) (*models.Exam, error) {
	const op = "storage.GetExamByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, field, cost FROM exams WHERE id = $1`
	e := &models.Exam{}
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.Field, &e.Cost); err != nil {
		return nil, wrap(op, err)
	}
	return e, nil
}

// GetExamByName возвращает экзамен каталога по имени.
func (s *Storage) GetExamByName(ctx context.Context, name string) (*models.Exam, error) {
	const op = "storage.GetExamByName"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, field, cost FROM exams WHERE name = $1`
	e := &models.Exam{}
	if err := s.DB.QueryRowContext(ctx, query, name).Scan(&e.ID, &e.Name, &e.Field, &e.Cost); err != nil {
		return nil, wrap(op, err)
	}
	return e, nil
}

// CreateUserExam создаёт незабронированную покупку экзамена и возвращает её
// ID. Повторные покупки создают отдельные записи.
func (s *Storage) CreateUserExam(ctx context.Context, userUID string, examID int) (int, error) {
	const op = "storage.CreateUserExam"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_exams (user_uid, exam_id, date, used)
			  VALUES ($1, $2, NULL, false)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query, userUID, examID).Scan(&newID); err != nil {
		return 0, wrap(op, err)
	}
	return newID, nil
}

// DeleteUserExam удаляет запись покупки экзамена по её ID.
// Используется компенсацией саги расчёта платежа.
func (s *Storage) DeleteUserExam(ctx context.Context, id int) error {
	const op = "storage.DeleteUserExam"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM user_exams WHERE id = $1`, id); err != nil {
		return wrap(op, err)
	}
	return nil
}

// BookUserExam выставляет дату одной незабронированной покупке условным
// UPDATE: предикат date IS NULL перепроверяется хранилищем в момент записи,
// поэтому дату нельзя выставить дважды даже при параллельных запросах.
// Возвращает количество затронутых строк: 0 — экзамен не куплен или уже
// забронирован.
func (s *Storage) BookUserExam(ctx context.Context, userUID string, examID int, date time.Time) (int64, error) {
	const op = "storage.BookUserExam"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE user_exams
			  SET date = $3
			  WHERE id IN (
			      SELECT id FROM user_exams
			      WHERE user_uid = $1 AND exam_id = $2 AND used = false AND date IS NULL
			      LIMIT 1
			  )`
	result, err := s.DB.ExecContext(ctx, query, userUID, examID, date)
	if err != nil {
		return 0, wrap(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, wrap(op, err)
	}
	return rowsAffected, nil
}

// ListUserExams возвращает неиспользованные покупки экзаменов пользователя.
func (s *Storage) ListUserExams(ctx context.Context, userUID string) ([]*models.UserExam, error) {
	const op = "storage.ListUserExams"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, exam_id, date, used
			  FROM user_exams
			  WHERE user_uid = $1 AND used = false
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.UserExam
	for rows.Next() {
		var ue models.UserExam
		if err := rows.Scan(&ue.ID, &ue.UserID, &ue.ExamID, &ue.Date, &ue.Used); err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, &ue)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// ListBookedSlots возвращает даты забронированных (и неиспользованных)
// экзаменов в переданном интервале.
func (s *Storage) ListBookedSlots(ctx context.Context, examID int, from, to time.Time) ([]time.Time, error) {
	const op = "storage.ListBookedSlots"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT date
			  FROM user_exams
			  WHERE exam_id = $1 AND used = false
			      AND date IS NOT NULL AND date >= $2 AND date <= $3
			  ORDER BY date`
	rows, err := s.DB.QueryContext(ctx, query, examID, from, to)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, d)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// GetActiveUserExam возвращает покупку экзамена с действующим бронированием:
// неиспользованную, с непустой датой в будущем.
func (s *Storage) GetActiveUserExam(ctx context.Context, userUID string, examID int, now time.Time) (*models.UserExam, error) {
	const op = "storage.GetActiveUserExam"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, exam_id, date, used
			  FROM user_exams
			  WHERE user_uid = $1 AND exam_id = $2 AND used = false
			      AND date IS NOT NULL AND date >= $3
			  LIMIT 1`
	ue := &models.UserExam{}
	if err := s.DB.QueryRowContext(ctx, query, userUID, examID, now).Scan(
		&ue.ID, &ue.UserID, &ue.ExamID, &ue.Date, &ue.Used); err != nil {
		return nil, wrap(op, err)
	}
	return ue, nil
}

// GetExamContent возвращает закрытое содержимое экзамена.
func (s *Storage) GetExamContent(ctx context.Context, examID int) (*models.ExamContent, error) {
	const op = "storage.GetExamContent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT exam_id, content FROM exam_contents WHERE exam_id = $1`
	c := &models.ExamContent{}
	if err := s.DB.QueryRowContext(ctx, query, examID).Scan(&c.ExamID, &c.Content); err != nil {
		return nil, wrap(op, err)
	}
	return c, nil
}
