package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

func TestPostgresGetByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "delivery_price"}).AddRow(1, "Alger", "500.00")
	mock.ExpectQuery("FROM wilaya_delivery WHERE name").WithArgs("Alger").WillReturnRows(rows)

	w, err := repo.GetByName(context.Background(), "Alger")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.DeliveryPrice.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected fee %s", w.DeliveryPrice)
	}

	mock.ExpectQuery("FROM wilaya_delivery WHERE name").WithArgs("Nowhere").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "delivery_price"}))
	if _, err := repo.GetByName(context.Background(), "Nowhere"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "delivery_price"}).AddRow(16, "Oran", "700.00")
	mock.ExpectQuery("FROM wilaya_delivery WHERE id").WithArgs(16).WillReturnRows(rows)

	w, err := repo.GetByID(context.Background(), 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Name != "Oran" || !w.DeliveryPrice.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("unexpected wilaya %+v", w)
	}

	mock.ExpectQuery("FROM wilaya_delivery WHERE id").WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "delivery_price"}))
	if _, err := repo.GetByID(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_UniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO wilaya_delivery").
		WithArgs("Alger", sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err = repo.Create(context.Background(), Wilaya{Name: "Alger", DeliveryPrice: decimal.NewFromInt(1)})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO wilaya_delivery").
		WithArgs("Blida", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	w, err := repo.Create(context.Background(), Wilaya{Name: "Blida", DeliveryPrice: decimal.NewFromInt(300)})
	if err != nil || w.ID != 9 {
		t.Fatalf("unexpected create result %+v, %v", w, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresDelete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("DELETE FROM wilaya_delivery").WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), 4); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
