package model

import (
	"time"

	"github.com/google/uuid"
)

// Entity представляет простую именованную сущность каталога (таблицы categories и characteristics)
type Entity struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
}

// CharacteristicValue — значение характеристики у конкретного товара
// (строка item_characteristics, объединённая с определением характеристики)
type CharacteristicValue struct {
	ID    uuid.UUID `db:"characteristic_id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Value string    `db:"value" json:"value"`
}

// Review представляет отзыв (таблица reviews), принадлежит либо товару, либо новости
type Review struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Stars       int       `db:"stars" json:"stars"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Item представляет товар вместе с категорией, характеристиками и отзывами
type Item struct {
	ID              uuid.UUID             `db:"id" json:"id"`
	Name            string                `db:"name" json:"name"`
	Description     string                `db:"description" json:"description"`
	Price           float64               `db:"price" json:"price"`
	Category        Entity                `json:"category"`
	Characteristics []CharacteristicValue `json:"characteristics"`
	Reviews         []Review              `json:"reviews"`
	CreatedAt       time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time             `db:"updated_at" json:"updated_at"`
}

// News представляет новость вместе с отзывами (таблица news)
type News struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Reviews     []Review  `json:"reviews"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Page — страница результатов листинга.
// Count — общее число подходящих под фильтр корневых записей, не зависит от номера страницы
type Page[T any] struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Count int `json:"count"`
	Items []T `json:"items"`
}
