package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/discord7/stocky/src/model"
)

// helper to create a new in memory gorm DB and migrate schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in memory db: %v", err)
	}

	if err := db.AutoMigrate(&model.Upload{}, &model.Position{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}

	return db
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

func TestUploadRepositoryCreatePersistsWholeSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := (&UploadRepository{}).WithDB(newTestDB(t))

	upload := &model.Upload{
		SourceFilename: "portfolio.csv",
		UploadedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Positions: []model.Position{
			{Ticker: "VZ", Shares: 100, AvgPrice: 35, CostBasisTotal: 3500},
			{Ticker: "AAPL", Shares: 10, AvgPrice: 150, CostBasisTotal: 1500},
		},
	}

	if err := repo.Create(ctx, upload); err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if upload.ID == 0 {
		t.Fatal("expected upload ID to be assigned")
	}

	found, err := repo.FindLatest(ctx)
	if err != nil {
		t.Fatalf("expected FindLatest to succeed, got %v", err)
	}
	if found == nil || found.ID != upload.ID {
		t.Fatalf("expected to find upload %d, got %+v", upload.ID, found)
	}

	if len(found.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(found.Positions))
	}

	// Positions come back ticker-ordered regardless of insert order.
	if found.Positions[0].Ticker != "AAPL" || found.Positions[1].Ticker != "VZ" {
		t.Fatalf("positions not ordered by ticker: %+v", found.Positions)
	}

	for _, p := range found.Positions {
		if p.UploadID != upload.ID {
			t.Fatalf("position %s not linked to upload %d: %+v", p.Ticker, upload.ID, p)
		}
	}
}

func TestUploadRepositoryFindLatestPicksNewestTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := (&UploadRepository{}).WithDB(newTestDB(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var last *model.Upload
	for i := 0; i < 3; i++ {
		u := &model.Upload{
			SourceFilename: fmt.Sprintf("upload-%d.csv", i),
			UploadedAt:     base.Add(time.Duration(i) * time.Hour),
			Positions:      []model.Position{{Ticker: "AAPL", Shares: 1, AvgPrice: 1}},
		}
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("expected create %d to succeed, got %v", i, err)
		}
		last = u
	}

	found, err := repo.FindLatest(ctx)
	if err != nil {
		t.Fatalf("expected FindLatest to succeed, got %v", err)
	}
	if found == nil || found.ID != last.ID {
		t.Fatalf("expected latest upload %d, got %+v", last.ID, found)
	}
}

func TestUploadRepositoryFindLatestEmpty(t *testing.T) {
	repo := (&UploadRepository{}).WithDB(newTestDB(t))

	found, err := repo.FindLatest(context.Background())
	if err != nil {
		t.Fatalf("expected no error for empty store, got %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil upload for empty store, got %+v", found)
	}
}

func TestUploadRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := (&UploadRepository{}).WithDB(newTestDB(t))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		u := &model.Upload{
			SourceFilename: fmt.Sprintf("upload-%d.csv", i),
			UploadedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("expected create %d to succeed, got %v", i, err)
		}
	}

	uploads, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(uploads) != 3 {
		t.Fatalf("expected 3 uploads, got %d", len(uploads))
	}
	if uploads[0].SourceFilename != "upload-2.csv" || uploads[2].SourceFilename != "upload-0.csv" {
		t.Fatalf("uploads not ordered newest first: %+v", uploads)
	}
}

func TestUploadRepositoryListSQL(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&UploadRepository{}).WithDB(mockDB)

	rows := sqlmock.NewRows([]string{"id", "source_filename", "uploaded_at"}).
		AddRow(2, "b.csv", time.Now()).
		AddRow(1, "a.csv", time.Now().Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "uploads" ORDER BY uploaded_at DESC`)).
		WillReturnRows(rows)

	uploads, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(uploads))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUploadRepositoryCreateRollsBackOnPositionFailure(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := (&UploadRepository{}).WithDB(mockDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "uploads"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "positions"`).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	upload := &model.Upload{
		SourceFilename: "portfolio.csv",
		UploadedAt:     time.Now(),
		Positions:      []model.Position{{Ticker: "AAPL", Shares: 10, AvgPrice: 150}},
	}

	if err := repo.Create(context.Background(), upload); err == nil {
		t.Fatal("expected create to fail when a position insert fails")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
