package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"CatalogService/internal/model"
)

// EventsRepository пишет события аудита каталога в ClickHouse
type EventsRepository struct {
	db *sql.DB
}

// NewEventsRepository создаёт новый репозиторий событий для ClickHouse
func NewEventsRepository(db *sql.DB) *EventsRepository {
	return &EventsRepository{db: db}
}

// BatchInsertEvents записывает пакет событий в таблицу events_log одним блоком
func (r *EventsRepository) BatchInsertEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	// clickhouse-go собирает все Exec подготовленного запроса внутри транзакции в один блок
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clickhouse batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events_log (Kind, Action, EntityId, Name, EventTime) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare clickhouse batch: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, e.Kind, e.Action, e.EntityID.String(), e.Name, e.EventTime); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to append event to batch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clickhouse batch: %w", err)
	}
	log.Printf("inserted %d events into clickhouse", len(events))
	return nil
}
