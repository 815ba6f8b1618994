package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound возвращается при отсутствии записи
var ErrNotFound = errors.New("record not found")

// ErrConflict возвращается при создании сущности с уже существующим именем
var ErrConflict = errors.New("name already exists")

// ErrCategoryNotFound возвращается, если категория товара не существует
var ErrCategoryNotFound = errors.New("category not found")

// ErrCharacteristicNotFound возвращается, если одна из характеристик товара не существует
var ErrCharacteristicNotFound = errors.New("characteristic not found")

// ErrReferenced возвращается при удалении записи, на которую ссылаются другие таблицы
var ErrReferenced = errors.New("record is referenced by other records")

// коды ошибок PostgreSQL
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// DefaultSchema — схема БД, в которой лежат таблицы каталога
const DefaultSchema = "app"

var readOnly = &sql.TxOptions{ReadOnly: true}

// Store — контекст хранилища: пул соединений и схема.
// Создаётся один раз при старте процесса, пул закрывает вызывающая сторона при остановке
type Store struct {
	db     *sql.DB
	schema string
}

// NewStore создаёт контекст хранилища поверх открытого пула соединений
func NewStore(db *sql.DB, schema string) *Store {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Store{db: db, schema: schema}
}

// InTx выполняет fn в одной транзакции: commit при успехе, rollback на любом другом пути
func (s *Store) InTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// table возвращает полное имя таблицы со схемой
func (s *Store) table(name string) string {
	return s.schema + "." + name
}

// pgCode возвращает код ошибки PostgreSQL или пустую строку
func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
