package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"CatalogService/internal/model"
	"CatalogService/pkg/metrics"
)

// Repo описывает интерфейс репозитория ClickHouse для пакетной записи событий аудита
type Repo interface {
	BatchInsertEvents(ctx context.Context, events []model.Event) error
}

// errMissingKind возвращается для события без вида сущности
var errMissingKind = errors.New("event kind is empty")

// Consumer буферизует события и отправляет их пакетно в ClickHouse
// batchSize определяет макс. количество событий до отправки
// mutex защищает доступ к буферу events
type Consumer struct {
	repo      Repo
	batchSize int
	events    []model.Event
	mu        sync.Mutex
}

// NewConsumer создаёт Consumer с указанным репозиторием и размером пакета
func NewConsumer(repo Repo, batchSize int) *Consumer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Consumer{repo: repo, batchSize: batchSize, events: make([]model.Event, 0, batchSize)}
}

// HandleMessage обрабатывает сообщение из NATS: парсит JSON, добавляет событие в буфер
// и при достижении batchSize отправляет пакет в ClickHouse
func (c *Consumer) HandleMessage(ctx context.Context, data []byte) error {
	var e model.Event
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	if e.Kind == "" {
		return errMissingKind
	}
	log.Printf("Получено событие аудита: %s %s %s", e.Kind, e.Action, e.EntityID)
	c.mu.Lock()
	c.events = append(c.events, e)
	// если достигли batchSize, сбрасываем буфер
	if len(c.events) >= c.batchSize {
		batch := c.drain()
		c.mu.Unlock()
		return c.store(ctx, batch)
	}
	c.mu.Unlock()
	return nil
}

// Flush отправляет все накопленные события, если они есть
func (c *Consumer) Flush(ctx context.Context) error {
	c.mu.Lock()
	if len(c.events) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := c.drain()
	c.mu.Unlock()
	return c.store(ctx, batch)
}

// drain копирует буфер и очищает его; вызывается под mu
func (c *Consumer) drain() []model.Event {
	batch := make([]model.Event, len(c.events))
	copy(batch, c.events)
	c.events = c.events[:0]
	return batch
}

func (c *Consumer) store(ctx context.Context, batch []model.Event) error {
	err := c.repo.BatchInsertEvents(ctx, batch)
	metrics.RecordStored(len(batch), err)
	return err
}
