// Package repository реализует хранилище данных на основе PostgreSQL
// для движка покупок и entitlement-ов: балансы кубов, подписки, экзамены,
// купоны, платёжные карты, модули и пользователи. Межзаписной атомарности
// общего вида у хранилища нет; там, где она необходима, методы используют
// условные одиночные UPDATE или явную транзакцию.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/academy-commerce/internal/apperr"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'cube_balances'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table cube_balances missing or query error: %w", err)
	}
	return nil
}

// wrap переводит ошибку запроса в таксономию движка: отсутствие строк —
// NotFound, всё остальное — сбой хранилища.
func wrap(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrPersistence, err)
}
