package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/academy-commerce/internal/models"
)

// ListModules возвращает все модули каталога.
func (s *Storage) ListModules(ctx context.Context) ([]*models.Module, error) {
	const op = "storage.ListModules"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, image_url, maker, difficulty, tier,
			      category, prelude, hours_to_complete, release_date,
			      array_to_string(conditions, ';')
			  FROM modules
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Module
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, m)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// GetModuleByID возвращает модуль каталога по идентификатору.
func (s *Storage) GetModuleByID(ctx context.Context, id int) (*models.Module, error) {
	const op = "storage.GetModuleByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, image_url, maker, difficulty, tier,
			      category, prelude, hours_to_complete, release_date,
			      array_to_string(conditions, ';')
			  FROM modules
			  WHERE id = $1`
	m, err := scanModule(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return m, nil
}

func scanModule(row rowScanner) (*models.Module, error) {
	m := &models.Module{}
	var conditions string
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.ImageURL, &m.Maker,
		&m.Difficulty, &m.Tier, &m.Category, &m.Prelude, &m.HoursToComplete,
		&m.ReleaseDate, &conditions); err != nil {
		return nil, err
	}
	if conditions != "" {
		m.Conditions = strings.Split(conditions, ";")
	}
	return m, nil
}

// GetUnlockedModule возвращает запись о разблокировке модуля пользователем.
func (s *Storage) GetUnlockedModule(ctx context.Context, userUID string, moduleID int) (*models.UnlockedModule, error) {
	const op = "storage.GetUnlockedModule"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_uid, module_id
			  FROM unlocked_modules
			  WHERE user_uid = $1 AND module_id = $2`
	um := &models.UnlockedModule{}
	if err := s.DB.QueryRowContext(ctx, query, userUID, moduleID).Scan(
		&um.UserID, &um.ModuleID); err != nil {
		return nil, wrap(op, err)
	}
	return um, nil
}

// CreateUnlockedModule сохраняет разблокировку модуля.
func (s *Storage) CreateUnlockedModule(ctx context.Context, userUID string, moduleID int) error {
	const op = "storage.CreateUnlockedModule"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO unlocked_modules (user_uid, module_id)
			  VALUES ($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, userUID, moduleID); err != nil {
		return wrap(op, err)
	}
	return nil
}
