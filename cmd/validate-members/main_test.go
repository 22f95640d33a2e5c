package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/feeds-roster/app/database"
)

func TestOpenRunRepositoryDisabled(t *testing.T) {
	repo, closeRepo := openRunRepository("")
	defer closeRepo()

	if repo != nil {
		t.Errorf("Expected no repository without a path, got %T", repo)
	}
}

func TestOpenRunRepositoryFailureIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "history.db")

	repo, closeRepo := openRunRepository(path)
	defer closeRepo()

	if repo != nil {
		t.Errorf("Expected nil repository for unopenable path, got %T", repo)
	}
}

func TestOpenRunRepository(t *testing.T) {
	repo, closeRepo := openRunRepository(filepath.Join(t.TempDir(), "history.db"))
	defer closeRepo()

	if repo == nil {
		t.Fatal("Expected a repository")
	}

	run := database.Run{StartedAt: time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC), Team: "ubuntumembers", Total: 2, Valid: 2}
	if _, err := repo.RecordRun(run); err != nil {
		t.Fatalf("Expected run to be recorded, got: %v", err)
	}

	last, err := repo.GetLastRun()
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.Team != "ubuntumembers" {
		t.Errorf("Unexpected last run: %+v", last)
	}
}
