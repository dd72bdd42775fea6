package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/growlog/til-backend/internal/domain"
)

func newBaekjoonRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("baekjoon_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Baekjoon{}, &domain.Challenge{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestLatestBaekjoon_MissingAndNewest(t *testing.T) {
	db := newBaekjoonRepoDB(t)
	ctx := context.Background()

	if _, err := LatestBaekjoon(ctx, db, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	old := domain.DateOf(time.Now().UTC().AddDate(0, 0, -3))
	recent := domain.DateOf(time.Now().UTC())
	seed := []domain.Baekjoon{
		{UserID: "u1", Solved: 10, Score: 100, Tier: 5, Date: old},
		{UserID: "u1", Solved: 13, Score: 130, Tier: 6, Date: recent},
		{UserID: "u2", Solved: 99, Score: 999, Tier: 20, Date: recent},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := LatestBaekjoon(ctx, db, "u1")
	if err != nil {
		t.Fatalf("LatestBaekjoon: %v", err)
	}
	if got.Solved != 13 || got.Tier != 6 {
		t.Fatalf("expected newest snapshot, got %+v", got)
	}
}

func TestListChallenges_AllAndByStatus(t *testing.T) {
	db := newBaekjoonRepoDB(t)
	ctx := context.Background()

	seed := []domain.Challenge{
		{Title: "commit streak", Condition: domain.ChallengeConditionGithubCommits, Status: domain.ChallengeStatusOngoing},
		{Title: "hundred problems", Condition: domain.ChallengeConditionProblemSolving, Status: domain.ChallengeStatusCompleted},
		{Title: "spring sprint", Condition: domain.ChallengeConditionGithubCommits, Status: domain.ChallengeStatusOngoing},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	all, err := ListChallenges(ctx, db, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("ListChallenges(all) = %d, %v; want 3", len(all), err)
	}

	ongoing, err := ListChallenges(ctx, db, domain.ChallengeStatusOngoing)
	if err != nil || len(ongoing) != 2 {
		t.Fatalf("ListChallenges(ongoing) = %d, %v; want 2", len(ongoing), err)
	}
	for _, c := range ongoing {
		if c.Status != domain.ChallengeStatusOngoing {
			t.Fatalf("filter leaked status %q", c.Status)
		}
	}

	none, err := ListChallenges(ctx, db, domain.ChallengeStatusRejected)
	if err != nil || len(none) != 0 {
		t.Fatalf("ListChallenges(rejected) = %d, %v; want 0", len(none), err)
	}
}
