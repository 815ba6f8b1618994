package model

import "github.com/google/uuid"

// Значения по умолчанию для параметров листинга
const (
	DefaultPage    = 1
	DefaultLimit   = 10
	DefaultSortBy  = SortByPrice
	DefaultSortDir = SortAsc
)

// SortBy — поле сортировки товаров
type SortBy string

const (
	SortByName      SortBy = "name"
	SortByCreatedAt SortBy = "created_at"
	SortByUpdatedAt SortBy = "updated_at"
	SortByPrice     SortBy = "price"
)

// SortDir — направление сортировки
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// PageFilter — общие параметры пагинации и поиска по ключевому слову
type PageFilter struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	Keyword string `json:"keywords"`
}

// CharacteristicFilter — пара {характеристика, значение}
type CharacteristicFilter struct {
	ID    uuid.UUID `json:"id"`
	Value string    `json:"value"`
}

// ItemFilter — фильтр листинга товаров.
// Нулевые и пустые поля означают отсутствие ограничения
type ItemFilter struct {
	PageFilter
	Category        *uuid.UUID             `json:"category"`
	MinPrice        float64                `json:"min_price"`
	MaxPrice        float64                `json:"max_price"`
	Characteristics []CharacteristicFilter `json:"characteristics"`
	SortBy          SortBy                 `json:"sort_by"`
	SortDir         SortDir                `json:"sort_dir"`
}

// EntityUpsert — запрос на создание или замену категории/характеристики
type EntityUpsert struct {
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

// ItemUpsert — запрос на создание или замену товара.
// Characteristics == nil оставляет связи без изменений, пустой срез удаляет их все
type ItemUpsert struct {
	ID              *uuid.UUID             `json:"id"`
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	Price           float64                `json:"price"`
	Category        uuid.UUID              `json:"category"`
	Characteristics []CharacteristicFilter `json:"characteristics"`
}

// NewsUpsert — запрос на создание или замену новости
type NewsUpsert struct {
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

// ReviewCreate — новый отзыв к товару или новости
type ReviewCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
}
