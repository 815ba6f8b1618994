package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"CatalogService/internal/model"
)

// newsQuery — параметры единого запроса новостей: листинг или одна запись по id
type newsQuery struct {
	preds []predicate
	pager pager
}

// newsList — режим листинга с поиском по ключевому слову
func newsList(f model.PageFilter) newsQuery {
	return newsQuery{preds: keywordPredicates("n", f.Keyword), pager: newPager(f.Page, f.Limit)}
}

// newsSingle — режим одной записи: страница 1, лимит 1, условие по id
func newsSingle(id uuid.UUID) newsQuery {
	return newsQuery{preds: []predicate{idPredicate("n", id)}, pager: newPager(1, 1)}
}

// ListNews возвращает страницу новостей с отзывами
func (r *CatalogRepository) ListNews(ctx context.Context, f model.PageFilter) (*model.Page[model.News], error) {
	q := newsList(f)
	page := &model.Page[model.News]{Page: q.pager.page, Limit: q.pager.limit}
	err := r.InTx(ctx, readOnly, func(tx *sql.Tx) error {
		var err error
		page.Items, page.Count, err = r.queryNews(ctx, tx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetNews возвращает новость по id
func (r *CatalogRepository) GetNews(ctx context.Context, id uuid.UUID) (*model.News, error) {
	var news []model.News
	err := r.InTx(ctx, readOnly, func(tx *sql.Tx) error {
		var err error
		news, _, err = r.queryNews(ctx, tx, newsSingle(id))
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(news) == 0 {
		return nil, ErrNotFound
	}
	return &news[0], nil
}

func (r *CatalogRepository) queryNews(ctx context.Context, tx *sql.Tx, q newsQuery) ([]model.News, int, error) {
	var a queryArgs
	from := r.table("news") + " n"
	query := fmt.Sprintf(`WITH page AS (
	SELECT n.id, n.name, n.description, n.created_at, n.updated_at, COUNT(*) OVER () AS total
	FROM %s
	WHERE %s
	ORDER BY n.updated_at DESC, n.id
	%s
)
SELECT p.id, p.name, p.description, p.created_at, p.updated_at,
	%s AS reviews,
	p.total
FROM page p
	%s
GROUP BY p.id, p.name, p.description, p.created_at, p.updated_at, p.total
ORDER BY p.updated_at DESC, p.id`,
		from, where(&a, q.preds), q.pager.clause(&a), reviewsFold, r.reviewsJoin("p", "news_id"))
	rows, err := tx.QueryContext(ctx, query, a.values...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select news list: %w", err)
	}
	defer rows.Close()
	news := make([]model.News, 0)
	var windowTotal int
	for rows.Next() {
		var n model.News
		var reviews []byte
		if err := rows.Scan(&n.ID, &n.Name, &n.Description, &n.CreatedAt, &n.UpdatedAt, &reviews, &windowTotal); err != nil {
			return nil, 0, fmt.Errorf("failed to scan news: %w", err)
		}
		if n.Reviews, err = unfoldReviews(reviews); err != nil {
			return nil, 0, err
		}
		news = append(news, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate news list: %w", err)
	}
	total, err := q.pager.total(ctx, tx, len(news), windowTotal, from, q.preds)
	if err != nil {
		return nil, 0, err
	}
	return news, total, nil
}

// UpsertNews создаёт или заменяет новость и возвращает её id
func (r *CatalogRepository) UpsertNews(ctx context.Context, in model.NewsUpsert) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.InTx(ctx, nil, func(tx *sql.Tx) error {
		var err error
		if id, err = r.resolveID(ctx, tx, "news", "name", in.ID, in.Name); err != nil {
			return err
		}
		query := fmt.Sprintf(`INSERT INTO %s (id, name, description) VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, updated_at = now()`, r.table("news"))
		if _, err := tx.ExecContext(ctx, query, id, in.Name, in.Description); err != nil {
			if pgCode(err) == pgUniqueViolation {
				return ErrConflict
			}
			return fmt.Errorf("failed to upsert news: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// DeleteNews удаляет новость; отзывы удаляются каскадно
func (r *CatalogRepository) DeleteNews(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "news", "id", id)
}

// AddNewsReview добавляет отзыв к новости
func (r *CatalogRepository) AddNewsReview(ctx context.Context, newsID uuid.UUID, in model.ReviewCreate) (uuid.UUID, error) {
	return r.addReview(ctx, "news", "news_id", newsID, in)
}
