package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"CatalogService/internal/model"
)

// queryArgs накапливает позиционные аргументы запроса ($1, $2, ...)
type queryArgs struct {
	values []any
}

// add регистрирует аргумент и возвращает его плейсхолдер
func (a *queryArgs) add(v any) string {
	a.values = append(a.values, v)
	return fmt.Sprintf("$%d", len(a.values))
}

// predicate — независимое условие WHERE, регистрирующее свои аргументы
type predicate func(a *queryArgs) string

// where объединяет условия через AND, пустой набор означает отсутствие ограничений
func where(a *queryArgs, preds []predicate) string {
	if len(preds) == 0 {
		return "TRUE"
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		parts = append(parts, p(a))
	}
	return strings.Join(parts, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// keywordPredicate — регистронезависимый поиск подстроки в колонке имени или описания
func keywordPredicate(nameColumn, descriptionColumn, keyword string) predicate {
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	return func(a *queryArgs) string {
		p := a.add(pattern)
		return fmt.Sprintf("(%s ILIKE %s OR %s ILIKE %s)", nameColumn, p, descriptionColumn, p)
	}
}

// idPredicate — равенство идентификатора корневой записи
func idPredicate(alias string, id uuid.UUID) predicate {
	return func(a *queryArgs) string {
		return fmt.Sprintf("%s.id = %s", alias, a.add(id))
	}
}

// keywordPredicates возвращает условие по ключевому слову, если оно задано
func keywordPredicates(alias, keyword string) []predicate {
	if keyword == "" {
		return nil
	}
	return []predicate{keywordPredicate(alias+".name", alias+".description", keyword)}
}

// itemPredicates строит набор условий фильтра товаров.
// Незаданные поля фильтра не добавляют условий
func (s *Store) itemPredicates(f model.ItemFilter) []predicate {
	preds := keywordPredicates("i", f.Keyword)
	if f.Category != nil {
		category := *f.Category
		preds = append(preds, func(a *queryArgs) string {
			return "i.category_id = " + a.add(category)
		})
	}
	if f.MinPrice > 0 {
		minPrice := f.MinPrice
		preds = append(preds, func(a *queryArgs) string {
			return "i.price >= " + a.add(minPrice)
		})
	}
	if f.MaxPrice > 0 {
		maxPrice := f.MaxPrice
		preds = append(preds, func(a *queryArgs) string {
			return "i.price <= " + a.add(maxPrice)
		})
	}
	// каждая пара {характеристика, значение} проверяется отдельно, пары объединяются через AND
	for _, ch := range f.Characteristics {
		ch := ch
		preds = append(preds, func(a *queryArgs) string {
			return fmt.Sprintf(
				"EXISTS (SELECT 1 FROM %s ic_f WHERE ic_f.item_id = i.id AND ic_f.characteristic_id = %s AND ic_f.value = %s)",
				s.table("item_characteristics"), a.add(ch.ID), a.add(ch.Value))
		})
	}
	return preds
}
