package service

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"

	"CatalogService/internal/model"
)

// Ограничения входных данных
const (
	maxKeywordLen      = 128
	maxNameLen         = 128
	maxDescriptionLen  = 256
	maxCharacteristics = 10
	maxValueLen        = 128
	minStars           = 1
	maxStars           = 5
)

// ValidationError возвращается, если входные данные не прошли проверку.
// Проверка выполняется до обращения к хранилищу
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// normalizePage подставляет значения по умолчанию для незаданных полей и проверяет остальные
func normalizePage(f *model.PageFilter) error {
	if f.Page == 0 {
		f.Page = model.DefaultPage
	}
	if f.Limit == 0 {
		f.Limit = model.DefaultLimit
	}
	if f.Page < 1 {
		return invalid("page", "must be greater than or equal to 1")
	}
	if f.Limit < 1 {
		return invalid("limit", "must be greater than or equal to 1")
	}
	// смещение (page-1)*limit должно помещаться в int
	if f.Page-1 > math.MaxInt/f.Limit {
		return invalid("page", "offset is out of range")
	}
	if utf8.RuneCountInString(f.Keyword) > maxKeywordLen {
		return invalid("keywords", fmt.Sprintf("must be at most %d characters", maxKeywordLen))
	}
	return nil
}

func normalizeItemFilter(f *model.ItemFilter) error {
	if err := normalizePage(&f.PageFilter); err != nil {
		return err
	}
	if f.SortBy == "" {
		f.SortBy = model.DefaultSortBy
	}
	if f.SortDir == "" {
		f.SortDir = model.DefaultSortDir
	}
	switch f.SortBy {
	case model.SortByName, model.SortByCreatedAt, model.SortByUpdatedAt, model.SortByPrice:
	default:
		return invalid("sort_by", "must be one of name, created_at, updated_at, price")
	}
	switch f.SortDir {
	case model.SortAsc, model.SortDesc:
	default:
		return invalid("sort_dir", "must be asc or desc")
	}
	if f.MinPrice < 0 {
		return invalid("min_price", "must not be negative")
	}
	if f.MaxPrice < 0 {
		return invalid("max_price", "must not be negative")
	}
	for _, ch := range f.Characteristics {
		if utf8.RuneCountInString(ch.Value) > maxValueLen {
			return invalid("characteristics.value", fmt.Sprintf("must be at most %d characters", maxValueLen))
		}
	}
	return nil
}

func validateNamed(name, description string) error {
	if name == "" {
		return invalid("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return invalid("name", fmt.Sprintf("must be at most %d characters", maxNameLen))
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return invalid("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
	}
	return nil
}

func validateItemUpsert(in model.ItemUpsert) error {
	if err := validateNamed(in.Name, in.Description); err != nil {
		return err
	}
	if in.Price <= 0 {
		return invalid("price", "must be greater than 0")
	}
	if in.Category == uuid.Nil {
		return invalid("category", "is required")
	}
	if len(in.Characteristics) > maxCharacteristics {
		return invalid("characteristics", fmt.Sprintf("must contain at most %d entries", maxCharacteristics))
	}
	seen := make(map[string]struct{}, len(in.Characteristics))
	for _, ch := range in.Characteristics {
		key := ch.ID.String()
		if _, dup := seen[key]; dup {
			return invalid("characteristics", "duplicate characteristic "+key)
		}
		seen[key] = struct{}{}
		if utf8.RuneCountInString(ch.Value) > maxValueLen {
			return invalid("characteristics.value", fmt.Sprintf("must be at most %d characters", maxValueLen))
		}
	}
	return nil
}

func validateReview(in model.ReviewCreate) error {
	if err := validateNamed(in.Name, in.Description); err != nil {
		return err
	}
	if in.Stars < minStars || in.Stars > maxStars {
		return invalid("stars", fmt.Sprintf("must be between %d and %d", minStars, maxStars))
	}
	return nil
}
