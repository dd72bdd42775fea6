package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/growlog/til-backend/internal/domain"
)

func newTILRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("til_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateTIL_Error_NoTable(t *testing.T) {
	db := newTILRepoDB(t /* no migrations */)
	til, err := CreateTIL(context.Background(), db, "u1", "learned a thing")
	if err == nil || til != nil {
		t.Fatalf("expected error creating without table, got til=%v err=%v", til, err)
	}
}

func TestCreateTIL_Success_PersistsAndSetsFields(t *testing.T) {
	db := newTILRepoDB(t, &domain.TIL{}, &domain.TILImage{})

	start := time.Now().UTC().Add(-time.Minute)
	til, err := CreateTIL(context.Background(), db, "u1", "learned gorm preloads")
	if err != nil {
		t.Fatalf("CreateTIL: %v", err)
	}
	if til.ID == "" || til.UserID != "u1" || til.Content != "learned gorm preloads" {
		t.Fatalf("unexpected TIL fields: %+v", til)
	}
	if til.CreatedAt.Before(start) {
		t.Fatalf("CreatedAt not set: %v", til.CreatedAt)
	}

	// Persisted?
	got, err := GetTIL(context.Background(), db, til.ID)
	if err != nil {
		t.Fatalf("GetTIL: %v", err)
	}
	if got.ID != til.ID || got.UserID != "u1" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}

func TestGetTIL_NotFound(t *testing.T) {
	db := newTILRepoDB(t, &domain.TIL{}, &domain.TILImage{})
	_, err := GetTIL(context.Background(), db, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetTILWithImages_PreloadsAttached(t *testing.T) {
	db := newTILRepoDB(t, &domain.TIL{}, &domain.TILImage{})
	ctx := context.Background()

	til, err := CreateTIL(ctx, db, "u1", "with images")
	if err != nil {
		t.Fatalf("CreateTIL: %v", err)
	}

	img, err := CreateTempImage(ctx, db, "https://cdn.test/temp/x/a.png")
	if err != nil {
		t.Fatalf("CreateTempImage: %v", err)
	}
	img.TILID = &til.ID
	img.IsTemporary = false
	if err := SaveImage(ctx, db, img); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}

	got, err := GetTILWithImages(ctx, db, til.ID)
	if err != nil {
		t.Fatalf("GetTILWithImages: %v", err)
	}
	if len(got.Images) != 1 || got.Images[0].ID != img.ID {
		t.Fatalf("expected 1 preloaded image, got %+v", got.Images)
	}
}

func TestCountAndListTILsPage_OrderAndScoping(t *testing.T) {
	db := newTILRepoDB(t, &domain.TIL{}, &domain.TILImage{})
	ctx := context.Background()

	// Three entries for u1 with increasing timestamps, one for u2.
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		til := &domain.TIL{
			ID:        fmt.Sprintf("t-%d", i),
			UserID:    "u1",
			Content:   fmt.Sprintf("entry %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(til).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := db.Create(&domain.TIL{ID: "other", UserID: "u2", Content: "not mine", CreatedAt: base}).Error; err != nil {
		t.Fatalf("seed u2: %v", err)
	}

	total, err := CountTILs(ctx, db, "u1")
	if err != nil || total != 3 {
		t.Fatalf("CountTILs = %d, %v; want 3", total, err)
	}

	page, err := ListTILsPage(ctx, db, "u1", 0, 2)
	if err != nil {
		t.Fatalf("ListTILsPage: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page))
	}
	// Newest first.
	if page[0].ID != "t-2" || page[1].ID != "t-1" {
		t.Fatalf("unexpected order: %s, %s", page[0].ID, page[1].ID)
	}

	// Second page.
	page2, err := ListTILsPage(ctx, db, "u1", 2, 2)
	if err != nil || len(page2) != 1 || page2[0].ID != "t-0" {
		t.Fatalf("second page unexpected: %+v err=%v", page2, err)
	}
}

func TestUpdateTILContent_SuccessAndMissing(t *testing.T) {
	db := newTILRepoDB(t, &domain.TIL{}, &domain.TILImage{})
	ctx := context.Background()

	til, err := CreateTIL(ctx, db, "u1", "before")
	if err != nil {
		t.Fatalf("CreateTIL: %v", err)
	}
	if err := UpdateTILContent(ctx, db, til.ID, "after"); err != nil {
		t.Fatalf("UpdateTILContent: %v", err)
	}
	got, _ := GetTIL(ctx, db, til.ID)
	if got.Content != "after" {
		t.Fatalf("content not updated: %q", got.Content)
	}

	if err := UpdateTILContent(ctx, db, "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing TIL, got %v", err)
	}
}

func TestDeleteTIL_SuccessAndMissing(t *testing.T) {
	db := newTILRepoDB(t, &domain.TIL{}, &domain.TILImage{})
	ctx := context.Background()

	til, err := CreateTIL(ctx, db, "u1", "short-lived")
	if err != nil {
		t.Fatalf("CreateTIL: %v", err)
	}
	if err := DeleteTIL(ctx, db, til.ID); err != nil {
		t.Fatalf("DeleteTIL: %v", err)
	}
	if _, err := GetTIL(ctx, db, til.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := DeleteTIL(ctx, db, til.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for double delete, got %v", err)
	}
}
