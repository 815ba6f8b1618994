package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
)

// pager — параметры страницы листинга
type pager struct {
	page  int
	limit int
}

func newPager(page, limit int) pager {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	return pager{page: page, limit: limit}
}

// offset насыщается на math.MaxInt, такая страница заведомо пуста
func (p pager) offset() int {
	if p.page-1 > math.MaxInt/p.limit {
		return math.MaxInt
	}
	return (p.page - 1) * p.limit
}

// clause добавляет LIMIT/OFFSET в аргументы запроса
func (p pager) clause(a *queryArgs) string {
	return fmt.Sprintf("LIMIT %s OFFSET %s", a.add(p.limit), a.add(p.offset()))
}

// total возвращает общее число записей по фильтру.
// windowTotal берётся из COUNT(*) OVER () первой строки страницы; если страница за пределами
// выборки пуста, число записей пересчитывается отдельным запросом с теми же условиями
func (p pager) total(ctx context.Context, tx *sql.Tx, rows int, windowTotal int, from string, preds []predicate) (int, error) {
	if rows > 0 {
		return windowTotal, nil
	}
	if p.page == 1 {
		return 0, nil
	}
	var a queryArgs
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", from, where(&a, preds))
	var total int
	if err := tx.QueryRowContext(ctx, query, a.values...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return total, nil
}
