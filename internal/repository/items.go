package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"CatalogService/internal/model"
)

// колонки сортировки товаров
var itemSortColumns = map[model.SortBy]string{
	model.SortByName:      "name",
	model.SortByCreatedAt: "created_at",
	model.SortByUpdatedAt: "updated_at",
	model.SortByPrice:     "price",
}

// itemOrder возвращает ORDER BY для товаров; id — вторичный ключ для детерминированного порядка
func itemOrder(alias string, by model.SortBy, dir model.SortDir) string {
	column, ok := itemSortColumns[by]
	if !ok {
		column = itemSortColumns[model.DefaultSortBy]
	}
	direction := "ASC"
	if dir == model.SortDesc {
		direction = "DESC"
	}
	return fmt.Sprintf("%[1]s.%[2]s %[3]s, %[1]s.id %[3]s", alias, column, direction)
}

// itemsFrom — корневые строки листинга: товар с обязательной категорией
func (r *CatalogRepository) itemsFrom() string {
	return fmt.Sprintf("%s i JOIN %s c ON c.id = i.category_id", r.table("items"), r.table("categories"))
}

// ListItems возвращает страницу товаров по фильтру вместе с категорией, характеристиками и отзывами
func (r *CatalogRepository) ListItems(ctx context.Context, f model.ItemFilter) (*model.Page[model.Item], error) {
	p := newPager(f.Page, f.Limit)
	page := &model.Page[model.Item]{Page: p.page, Limit: p.limit}
	err := r.InTx(ctx, readOnly, func(tx *sql.Tx) error {
		var err error
		page.Items, page.Count, err = r.queryItems(ctx, tx, r.itemPredicates(f), f.SortBy, f.SortDir, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetItem возвращает товар по id тем же запросом, что и листинг (страница 1, лимит 1)
func (r *CatalogRepository) GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var items []model.Item
	err := r.InTx(ctx, readOnly, func(tx *sql.Tx) error {
		var err error
		items, _, err = r.queryItems(ctx, tx, []predicate{idPredicate("i", id)}, model.DefaultSortBy, model.DefaultSortDir, newPager(1, 1))
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

// queryItems выполняет единый запрос листинга: отбор и пагинация корневых строк в CTE page,
// затем независимые LEFT JOIN характеристик и отзывов со свёрткой каждого измерения в jsonb
func (r *CatalogRepository) queryItems(ctx context.Context, tx *sql.Tx, preds []predicate, by model.SortBy, dir model.SortDir, p pager) ([]model.Item, int, error) {
	var a queryArgs
	query := fmt.Sprintf(`WITH page AS (
	SELECT i.id, i.name, i.description, i.price, i.created_at, i.updated_at,
		c.id AS category_id, c.name AS category_name, c.description AS category_description,
		COUNT(*) OVER () AS total
	FROM %s
	WHERE %s
	ORDER BY %s
	%s
)
SELECT p.id, p.name, p.description, p.price, p.created_at, p.updated_at,
	p.category_id, p.category_name, p.category_description,
	%s AS characteristics,
	%s AS reviews,
	p.total
FROM page p
	%s
	%s
GROUP BY p.id, p.name, p.description, p.price, p.created_at, p.updated_at,
	p.category_id, p.category_name, p.category_description, p.total
ORDER BY %s`,
		r.itemsFrom(), where(&a, preds), itemOrder("i", by, dir), p.clause(&a),
		characteristicsFold, reviewsFold,
		r.characteristicsJoin("p"), r.reviewsJoin("p", "item_id"),
		itemOrder("p", by, dir))
	rows, err := tx.QueryContext(ctx, query, a.values...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select items list: %w", err)
	}
	defer rows.Close()
	items := make([]model.Item, 0)
	var windowTotal int
	for rows.Next() {
		var it model.Item
		var characteristics, reviews []byte
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.CreatedAt, &it.UpdatedAt,
			&it.Category.ID, &it.Category.Name, &it.Category.Description,
			&characteristics, &reviews, &windowTotal); err != nil {
			return nil, 0, fmt.Errorf("failed to scan item: %w", err)
		}
		if it.Characteristics, err = unfoldCharacteristics(characteristics); err != nil {
			return nil, 0, err
		}
		if it.Reviews, err = unfoldReviews(reviews); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate items list: %w", err)
	}
	total, err := p.total(ctx, tx, len(items), windowTotal, r.itemsFrom(), preds)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpsertItem создаёт или заменяет товар и, если передан список характеристик,
// полностью заменяет его связи с характеристиками. Всё выполняется в одной транзакции
func (r *CatalogRepository) UpsertItem(ctx context.Context, in model.ItemUpsert) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.InTx(ctx, nil, func(tx *sql.Tx) error {
		var err error
		if id, err = r.resolveID(ctx, tx, "items", "name", in.ID, in.Name); err != nil {
			return err
		}
		exists, err := r.rowExists(ctx, tx, "categories", in.Category)
		if err != nil {
			return err
		}
		if !exists {
			return ErrCategoryNotFound
		}
		ids, values := splitCharacteristics(in.Characteristics)
		if len(ids) > 0 {
			var found int
			query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ANY($1::uuid[])", r.table("characteristics"))
			if err := tx.QueryRowContext(ctx, query, pq.Array(ids)).Scan(&found); err != nil {
				return fmt.Errorf("failed to check characteristics: %w", err)
			}
			if found != distinct(ids) {
				return ErrCharacteristicNotFound
			}
		}
		query := fmt.Sprintf(`INSERT INTO %s (id, name, description, price, category_id) VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
		price = EXCLUDED.price, category_id = EXCLUDED.category_id, updated_at = now()`, r.table("items"))
		if _, err := tx.ExecContext(ctx, query, id, in.Name, in.Description, in.Price, in.Category); err != nil {
			switch pgCode(err) {
			case pgForeignKeyViolation:
				return ErrCategoryNotFound
			case pgUniqueViolation:
				return ErrConflict
			}
			return fmt.Errorf("failed to upsert item: %w", err)
		}
		if in.Characteristics == nil {
			return nil
		}
		return r.replaceCharacteristics(ctx, tx, id, ids, values)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// replaceCharacteristics удаляет все связи товара и вставляет переданный набор заново
func (r *CatalogRepository) replaceCharacteristics(ctx context.Context, tx *sql.Tx, itemID uuid.UUID, ids, values []string) error {
	table := r.table("item_characteristics")
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE item_id = $1", table), itemID); err != nil {
		return fmt.Errorf("failed to delete item characteristics: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (item_id, characteristic_id, value)
	SELECT $1::uuid, c.id, c.value FROM unnest($2::uuid[], $3::text[]) AS c(id, value)`, table)
	if _, err := tx.ExecContext(ctx, query, itemID, pq.Array(ids), pq.Array(values)); err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			return ErrCharacteristicNotFound
		}
		return fmt.Errorf("failed to insert item characteristics: %w", err)
	}
	return nil
}

// DeleteItem удаляет товар; связи и отзывы удаляются каскадно
func (r *CatalogRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "items", "id", id)
}

// AddItemReview добавляет отзыв к товару
func (r *CatalogRepository) AddItemReview(ctx context.Context, itemID uuid.UUID, in model.ReviewCreate) (uuid.UUID, error) {
	return r.addReview(ctx, "items", "item_id", itemID, in)
}

// splitCharacteristics раскладывает пары {id, value} на параллельные массивы для unnest
// distinct возвращает число различных значений
func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func splitCharacteristics(chars []model.CharacteristicFilter) ([]string, []string) {
	ids := make([]string, 0, len(chars))
	values := make([]string, 0, len(chars))
	for _, ch := range chars {
		ids = append(ids, ch.ID.String())
		values = append(values, ch.Value)
	}
	return ids, values
}
