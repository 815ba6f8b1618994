package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"CatalogService/internal/model"
)

// Entity описывает таблицу простой именованной сущности каталога
type Entity struct {
	Kind              string
	Table             string
	IDColumn          string
	NameColumn        string
	DescriptionColumn string
}

var (
	// Categories — таблица категорий товаров
	Categories = Entity{Kind: "category", Table: "categories", IDColumn: "id", NameColumn: "name", DescriptionColumn: "description"}
	// Characteristics — таблица определений характеристик
	Characteristics = Entity{Kind: "characteristic", Table: "characteristics", IDColumn: "id", NameColumn: "name", DescriptionColumn: "description"}
)

// EntityByKind возвращает описание таблицы по имени вида сущности
func EntityByKind(kind string) (Entity, bool) {
	switch kind {
	case Categories.Kind:
		return Categories, true
	case Characteristics.Kind:
		return Characteristics, true
	}
	return Entity{}, false
}

// CatalogRepository реализует доступ к таблицам каталога
type CatalogRepository struct {
	*Store
}

// NewCatalogRepository создает новый репозиторий каталога
func NewCatalogRepository(db *sql.DB, schema string) *CatalogRepository {
	return &CatalogRepository{Store: NewStore(db, schema)}
}

// ListEntities возвращает страницу категорий или характеристик с поиском по ключевому слову
func (r *CatalogRepository) ListEntities(ctx context.Context, e Entity, f model.PageFilter) (*model.Page[model.Entity], error) {
	p := newPager(f.Page, f.Limit)
	page := &model.Page[model.Entity]{Page: p.page, Limit: p.limit, Items: []model.Entity{}}
	var preds []predicate
	if f.Keyword != "" {
		preds = append(preds, keywordPredicate("e."+e.NameColumn, "e."+e.DescriptionColumn, f.Keyword))
	}
	from := fmt.Sprintf("%s e", r.table(e.Table))
	err := r.InTx(ctx, readOnly, func(tx *sql.Tx) error {
		var a queryArgs
		query := fmt.Sprintf(`SELECT e.%[1]s, e.%[2]s, e.%[3]s, COUNT(*) OVER () AS total
	FROM %[4]s
	WHERE %[5]s
	ORDER BY e.%[2]s DESC, e.%[1]s
	%[6]s`, e.IDColumn, e.NameColumn, e.DescriptionColumn, from, where(&a, preds), p.clause(&a))
		rows, err := tx.QueryContext(ctx, query, a.values...)
		if err != nil {
			return fmt.Errorf("failed to select %s list: %w", e.Kind, err)
		}
		defer rows.Close()
		var windowTotal int
		for rows.Next() {
			var item model.Entity
			if err := rows.Scan(&item.ID, &item.Name, &item.Description, &windowTotal); err != nil {
				return fmt.Errorf("failed to scan %s: %w", e.Kind, err)
			}
			page.Items = append(page.Items, item)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate %s list: %w", e.Kind, err)
		}
		page.Count, err = p.total(ctx, tx, len(page.Items), windowTotal, from, preds)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// UpsertEntity создаёт или заменяет категорию/характеристику и возвращает её id
func (r *CatalogRepository) UpsertEntity(ctx context.Context, e Entity, in model.EntityUpsert) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.InTx(ctx, nil, func(tx *sql.Tx) error {
		var err error
		if id, err = r.resolveID(ctx, tx, e.Table, e.NameColumn, in.ID, in.Name); err != nil {
			return err
		}
		query := fmt.Sprintf(`INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s) VALUES ($1, $2, $3)
	ON CONFLICT (%[2]s) DO UPDATE SET %[3]s = EXCLUDED.%[3]s, %[4]s = EXCLUDED.%[4]s, updated_at = now()`,
			r.table(e.Table), e.IDColumn, e.NameColumn, e.DescriptionColumn)
		if _, err := tx.ExecContext(ctx, query, id, in.Name, in.Description); err != nil {
			if pgCode(err) == pgUniqueViolation {
				return ErrConflict
			}
			return fmt.Errorf("failed to upsert %s: %w", e.Kind, err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// DeleteEntity удаляет категорию/характеристику по id
func (r *CatalogRepository) DeleteEntity(ctx context.Context, e Entity, id uuid.UUID) error {
	return r.deleteByID(ctx, e.Table, e.IDColumn, id)
}

// resolveID возвращает id для upsert: переданный или новый.
// Для новой сущности проверяется, что имя ещё не занято
func (r *CatalogRepository) resolveID(ctx context.Context, tx *sql.Tx, table, nameColumn string, id *uuid.UUID, name string) (uuid.UUID, error) {
	if id != nil {
		return *id, nil
	}
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)", r.table(table), nameColumn)
	if err := tx.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return uuid.Nil, fmt.Errorf("failed to check name in %s: %w", table, err)
	}
	if exists {
		return uuid.Nil, ErrConflict
	}
	return uuid.New(), nil
}

// rowExists проверяет наличие записи с указанным id
func (r *CatalogRepository) rowExists(ctx context.Context, tx *sql.Tx, table string, id uuid.UUID) (bool, error) {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", r.table(table))
	if err := tx.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return exists, nil
}

// deleteByID удаляет запись; отсутствие записи — ErrNotFound, нарушение внешнего ключа — ErrReferenced
func (r *CatalogRepository) deleteByID(ctx context.Context, table, idColumn string, id uuid.UUID) error {
	return r.InTx(ctx, nil, func(tx *sql.Tx) error {
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", r.table(table), idColumn)
		res, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			if pgCode(err) == pgForeignKeyViolation {
				return ErrReferenced
			}
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// addReview добавляет отзыв к родительской записи (товару или новости)
func (r *CatalogRepository) addReview(ctx context.Context, parentTable, parentColumn string, parentID uuid.UUID, in model.ReviewCreate) (uuid.UUID, error) {
	id := uuid.New()
	err := r.InTx(ctx, nil, func(tx *sql.Tx) error {
		exists, err := r.rowExists(ctx, tx, parentTable, parentID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		query := fmt.Sprintf("INSERT INTO %s (id, %s, name, description, stars) VALUES ($1, $2, $3, $4, $5)",
			r.table("reviews"), parentColumn)
		if _, err := tx.ExecContext(ctx, query, id, parentID, in.Name, in.Description, in.Stars); err != nil {
			return fmt.Errorf("failed to insert review: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}
