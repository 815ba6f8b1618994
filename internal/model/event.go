package model

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий аудита
const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
	ActionReview = "review"
)

// Event — событие изменения каталога, публикуется в NATS и пишется в ClickHouse
type Event struct {
	Kind      string    `db:"kind" json:"kind"`
	Action    string    `db:"action" json:"action"`
	EntityID  uuid.UUID `db:"entity_id" json:"entityId"`
	Name      string    `db:"name" json:"name"`
	EventTime time.Time `db:"event_time" json:"eventTime"`
}
