package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"CatalogService/internal/model"
)

// Тест листинга категорий: поиск по ключевому слову, сортировка по имени по убыванию
func TestListEntities(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewCatalogRepository(db, "")
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.id, e.name, e.description, COUNT(*) OVER () AS total")).
		WithArgs("%tool%", 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "total"}).
			AddRow(a.String(), "Tools", "hand tools", 2).
			AddRow(b.String(), "Power tools", "", 2))
	mock.ExpectCommit()

	page, err := repo.ListEntities(ctx, Categories, model.PageFilter{Page: 1, Limit: 10, Keyword: "tool"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Count != 2 || len(page.Items) != 2 || page.Items[0].ID != a || page.Items[1].Name != "Power tools" {
		t.Errorf("unexpected page: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestListEntities_Order: порядок по имени по убыванию, таблица берётся из описания сущности
func TestListEntities_Order(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewCatalogRepository(db, "app")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM app.characteristics e")+`\s+WHERE TRUE\s+`+regexp.QuoteMeta("ORDER BY e.name DESC, e.id")).
		WithArgs(5, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "total"}).AddRow(uuid.New().String(), "Color", "", 6))
	mock.ExpectCommit()

	page, err := repo.ListEntities(context.Background(), Characteristics, model.PageFilter{Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Page != 2 || page.Limit != 5 || page.Count != 6 {
		t.Errorf("unexpected page: %+v", page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestListEntities_Empty: пустая таблица — пустой массив, а не nil
func TestListEntities_Empty(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewCatalogRepository(db, "app")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM app.categories e")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "total"}))
	mock.ExpectCommit()

	page, err := repo.ListEntities(context.Background(), Categories, model.PageFilter{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 || page.Count != 0 {
		t.Errorf("unexpected page: %+v", page)
	}
}

// Тест upsert категории: создание, конфликт имени и обновление по id
func TestUpsertEntity(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewCatalogRepository(db, "app")
	ctx := context.Background()

	// создание
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM app.categories WHERE name = $1)")).
		WithArgs("Tools").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO app.categories (id, name, description) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), "Tools", "hand tools").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.UpsertEntity(ctx, Categories, model.EntityUpsert{Name: "Tools", Description: "hand tools"})
	if err != nil || id == uuid.Nil {
		t.Fatalf("unexpected result: %v %v", id, err)
	}

	// имя уже занято
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM app.categories WHERE name = $1)")).
		WithArgs("Tools").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	if _, err := repo.UpsertEntity(ctx, Categories, model.EntityUpsert{Name: "Tools"}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// обновление по id без проверки имени
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, updated_at = now()")).
		WithArgs(id.String(), "Tools", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repo.UpsertEntity(ctx, Categories, model.EntityUpsert{ID: &id, Name: "Tools"})
	if err != nil || got != id {
		t.Errorf("unexpected result: %v %v", got, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestDeleteEntity: удаление используемой характеристики запрещено внешним ключом
func TestDeleteEntity(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewCatalogRepository(db, "app")
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM app.characteristics WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
	mock.ExpectRollback()
	if err := repo.DeleteEntity(ctx, Characteristics, id); !errors.Is(err, ErrReferenced) {
		t.Errorf("expected ErrReferenced, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM app.categories WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	if err := repo.DeleteEntity(ctx, Categories, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM app.categories WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	if err := repo.DeleteEntity(ctx, Categories, id); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestInTx_BeginError: ошибка открытия транзакции возвращается с контекстом
func TestInTx_BeginError(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	err := NewStore(db, "").InTx(context.Background(), nil, func(*sql.Tx) error { return nil })
	if err == nil || err.Error() != "failed to begin transaction: pool exhausted" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEntityByKind(t *testing.T) {
	if e, ok := EntityByKind("category"); !ok || e.Table != "categories" {
		t.Errorf("unexpected entity: %+v", e)
	}
	if e, ok := EntityByKind("characteristic"); !ok || e.Table != "characteristics" {
		t.Errorf("unexpected entity: %+v", e)
	}
	if _, ok := EntityByKind("item"); ok {
		t.Error("item must not be a core entity")
	}
}
