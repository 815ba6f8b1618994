package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"CatalogService/internal/model"
	"CatalogService/internal/repository"
)

// Repo определяет интерфейс репозитория каталога.
// Реализация — repository.CatalogRepository поверх Postgres
type Repo interface {
	ListEntities(ctx context.Context, e repository.Entity, f model.PageFilter) (*model.Page[model.Entity], error)
	UpsertEntity(ctx context.Context, e repository.Entity, in model.EntityUpsert) (uuid.UUID, error)
	DeleteEntity(ctx context.Context, e repository.Entity, id uuid.UUID) error

	ListItems(ctx context.Context, f model.ItemFilter) (*model.Page[model.Item], error)
	GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error)
	UpsertItem(ctx context.Context, in model.ItemUpsert) (uuid.UUID, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	AddItemReview(ctx context.Context, itemID uuid.UUID, in model.ReviewCreate) (uuid.UUID, error)

	ListNews(ctx context.Context, f model.PageFilter) (*model.Page[model.News], error)
	GetNews(ctx context.Context, id uuid.UUID) (*model.News, error)
	UpsertNews(ctx context.Context, in model.NewsUpsert) (uuid.UUID, error)
	DeleteNews(ctx context.Context, id uuid.UUID) error
	AddNewsReview(ctx context.Context, newsID uuid.UUID, in model.ReviewCreate) (uuid.UUID, error)
}

// Logger определяет интерфейс публикации событий аудита (NATS).
// kind — вид сущности, по нему выбирается тема
type Logger interface {
	PublishLog(kind string, data []byte) error
}

// Виды сущностей в событиях аудита
const (
	KindItem = "item"
	KindNews = "news"
)

// CatalogService реализует бизнес-логику каталога:
// проверку входных данных, вызовы репозитория и публикацию событий после успешной записи
type CatalogService struct {
	repo   Repo
	logger Logger
	now    func() time.Time
}

// NewCatalogService создаёт новый сервис каталога
func NewCatalogService(r Repo, l Logger) *CatalogService {
	return &CatalogService{repo: r, logger: l, now: time.Now}
}

// publish отправляет событие аудита. Запись уже зафиксирована,
// поэтому ошибка публикации только логируется
func (s *CatalogService) publish(kind, action string, id uuid.UUID, name string) {
	data, err := json.Marshal(model.Event{
		Kind:      kind,
		Action:    action,
		EntityID:  id,
		Name:      name,
		EventTime: s.now().UTC(),
	})
	if err != nil {
		log.Printf("failed to marshal %s event: %v", kind, err)
		return
	}
	if err := s.logger.PublishLog(kind, data); err != nil {
		log.Printf("failed to publish %s %s event for %s: %v", kind, action, id, err)
	}
}

// entity возвращает описание таблицы для вида core-сущности
func entity(kind string) (repository.Entity, error) {
	e, ok := repository.EntityByKind(kind)
	if !ok {
		return repository.Entity{}, invalid("kind", "must be category or characteristic")
	}
	return e, nil
}

// ListEntities возвращает страницу категорий или характеристик
func (s *CatalogService) ListEntities(ctx context.Context, kind string, f model.PageFilter) (*model.Page[model.Entity], error) {
	e, err := entity(kind)
	if err != nil {
		return nil, err
	}
	if err := normalizePage(&f); err != nil {
		return nil, err
	}
	return s.repo.ListEntities(ctx, e, f)
}

// UpsertEntity создаёт или заменяет категорию/характеристику
func (s *CatalogService) UpsertEntity(ctx context.Context, kind string, in model.EntityUpsert) (uuid.UUID, error) {
	e, err := entity(kind)
	if err != nil {
		return uuid.Nil, err
	}
	if err := validateNamed(in.Name, in.Description); err != nil {
		return uuid.Nil, err
	}
	id, err := s.repo.UpsertEntity(ctx, e, in)
	if err != nil {
		return uuid.Nil, err
	}
	s.publish(e.Kind, model.ActionUpsert, id, in.Name)
	return id, nil
}

// DeleteEntity удаляет категорию/характеристику
func (s *CatalogService) DeleteEntity(ctx context.Context, kind string, id uuid.UUID) error {
	e, err := entity(kind)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteEntity(ctx, e, id); err != nil {
		return err
	}
	s.publish(e.Kind, model.ActionDelete, id, "")
	return nil
}

// ListItems возвращает страницу товаров по фильтру
func (s *CatalogService) ListItems(ctx context.Context, f model.ItemFilter) (*model.Page[model.Item], error) {
	if err := normalizeItemFilter(&f); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, f)
}

// GetItem возвращает товар по id
func (s *CatalogService) GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	return s.repo.GetItem(ctx, id)
}

// UpsertItem создаёт или заменяет товар вместе с характеристиками
func (s *CatalogService) UpsertItem(ctx context.Context, in model.ItemUpsert) (uuid.UUID, error) {
	if err := validateItemUpsert(in); err != nil {
		return uuid.Nil, err
	}
	id, err := s.repo.UpsertItem(ctx, in)
	if err != nil {
		return uuid.Nil, err
	}
	s.publish(KindItem, model.ActionUpsert, id, in.Name)
	return id, nil
}

// DeleteItem удаляет товар
func (s *CatalogService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.publish(KindItem, model.ActionDelete, id, "")
	return nil
}

// AddItemReview добавляет отзыв к товару
func (s *CatalogService) AddItemReview(ctx context.Context, itemID uuid.UUID, in model.ReviewCreate) (uuid.UUID, error) {
	if err := validateReview(in); err != nil {
		return uuid.Nil, err
	}
	id, err := s.repo.AddItemReview(ctx, itemID, in)
	if err != nil {
		return uuid.Nil, err
	}
	s.publish(KindItem, model.ActionReview, itemID, in.Name)
	return id, nil
}

// ListNews возвращает страницу новостей
func (s *CatalogService) ListNews(ctx context.Context, f model.PageFilter) (*model.Page[model.News], error) {
	if err := normalizePage(&f); err != nil {
		return nil, err
	}
	return s.repo.ListNews(ctx, f)
}

// GetNews возвращает новость по id
func (s *CatalogService) GetNews(ctx context.Context, id uuid.UUID) (*model.News, error) {
	return s.repo.GetNews(ctx, id)
}

// UpsertNews создаёт или заменяет новость
func (s *CatalogService) UpsertNews(ctx context.Context, in model.NewsUpsert) (uuid.UUID, error) {
	if err := validateNamed(in.Name, in.Description); err != nil {
		return uuid.Nil, err
	}
	id, err := s.repo.UpsertNews(ctx, in)
	if err != nil {
		return uuid.Nil, err
	}
	s.publish(KindNews, model.ActionUpsert, id, in.Name)
	return id, nil
}

// DeleteNews удаляет новость
func (s *CatalogService) DeleteNews(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteNews(ctx, id); err != nil {
		return err
	}
	s.publish(KindNews, model.ActionDelete, id, "")
	return nil
}

// AddNewsReview добавляет отзыв к новости
func (s *CatalogService) AddNewsReview(ctx context.Context, newsID uuid.UUID, in model.ReviewCreate) (uuid.UUID, error) {
	if err := validateReview(in); err != nil {
		return uuid.Nil, err
	}
	id, err := s.repo.AddNewsReview(ctx, newsID, in)
	if err != nil {
		return uuid.Nil, err
	}
	s.publish(KindNews, model.ActionReview, newsID, in.Name)
	return id, nil
}
