package repository

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"CatalogService/internal/model"
)

// fold сворачивает одно измерение one-to-many в jsonb-массив на корневую запись.
// DISTINCT убирает дубликаты, возникающие из-за декартова произведения двух независимых LEFT JOIN
func fold(pairs ...string) string {
	return fmt.Sprintf("COALESCE(jsonb_agg(DISTINCT jsonb_build_object(%s)), '[]'::jsonb)", strings.Join(pairs, ", "))
}

var (
	characteristicsFold = fold(
		"'id'", "ch.id",
		"'name'", "ch.name",
		"'value'", "ic.value",
	)
	reviewsFold = fold(
		"'id'", "r.id",
		"'name'", "r.name",
		"'description'", "r.description",
		"'stars'", "r.stars",
		"'created_at'", "r.created_at",
	)
)

// characteristicsJoin присоединяет связи товара и определения характеристик
func (s *Store) characteristicsJoin(root string) string {
	return fmt.Sprintf(`LEFT JOIN %s ic ON ic.item_id = %s.id
	LEFT JOIN %s ch ON ch.id = ic.characteristic_id`,
		s.table("item_characteristics"), root, s.table("characteristics"))
}

// reviewsJoin присоединяет отзывы по колонке родителя (item_id или news_id)
func (s *Store) reviewsJoin(root, parentColumn string) string {
	return fmt.Sprintf("LEFT JOIN %s r ON r.%s = %s.id", s.table("reviews"), parentColumn, root)
}

// tuple — элемент свёрнутой коллекции
type tuple[T any] interface {
	// placeholder сообщает, что все поля пусты (строка-заглушка внешнего соединения)
	placeholder() bool
	value() T
}

// unfold разбирает jsonb-массив и отбрасывает строки-заглушки.
// Результат никогда не равен nil, чтобы пустая коллекция сериализовалась как []
func unfold[T any, P tuple[T]](raw []byte) ([]T, error) {
	out := make([]T, 0)
	if len(raw) == 0 {
		return out, nil
	}
	var tuples []P
	if err := json.Unmarshal(raw, &tuples); err != nil {
		return nil, fmt.Errorf("failed to decode aggregated collection: %w", err)
	}
	for _, t := range tuples {
		if t.placeholder() {
			continue
		}
		out = append(out, t.value())
	}
	return out, nil
}

type characteristicTuple struct {
	ID    *uuid.UUID `json:"id"`
	Name  *string    `json:"name"`
	Value *string    `json:"value"`
}

func (t characteristicTuple) placeholder() bool {
	return t.ID == nil && t.Name == nil && t.Value == nil
}

func (t characteristicTuple) value() model.CharacteristicValue {
	var v model.CharacteristicValue
	if t.ID != nil {
		v.ID = *t.ID
	}
	if t.Name != nil {
		v.Name = *t.Name
	}
	if t.Value != nil {
		v.Value = *t.Value
	}
	return v
}

type reviewTuple struct {
	ID          *uuid.UUID `json:"id"`
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Stars       *int       `json:"stars"`
	CreatedAt   *time.Time `json:"created_at"`
}

func (t reviewTuple) placeholder() bool {
	return t.ID == nil && t.Name == nil && t.Description == nil && t.Stars == nil && t.CreatedAt == nil
}

func (t reviewTuple) value() model.Review {
	var v model.Review
	if t.ID != nil {
		v.ID = *t.ID
	}
	if t.Name != nil {
		v.Name = *t.Name
	}
	if t.Description != nil {
		v.Description = *t.Description
	}
	if t.Stars != nil {
		v.Stars = *t.Stars
	}
	if t.CreatedAt != nil {
		v.CreatedAt = *t.CreatedAt
	}
	return v
}

// unfoldCharacteristics возвращает характеристики, упорядоченные по имени
func unfoldCharacteristics(raw []byte) ([]model.CharacteristicValue, error) {
	out, err := unfold[model.CharacteristicValue, characteristicTuple](raw)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// unfoldReviews возвращает отзывы, упорядоченные по времени создания
func unfoldReviews(raw []byte) ([]model.Review, error) {
	out, err := unfold[model.Review, reviewTuple](raw)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}
