package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/winsuspend/winsuspend/internal/models"
)

func openTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func TestCreateAndGetLatest(t *testing.T) {
	repo := openTestDB(t)

	event := &models.TransitionEvent{
		Timestamp: time.Now(),
		RootPID:   1234,
		AppName:   "Firefox",
		FromState: "running",
		ToState:   "stopped",
		PidCount:  3,
		Backend:   "x11",
	}
	if err := repo.Create(event); err != nil {
		t.Fatalf("Create: %v", err)
	}

	latest, err := repo.GetLatest()
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest == nil {
		t.Fatal("GetLatest returned nil after insert")
	}
	if latest.AppName != "firefox" {
		t.Errorf("AppName = %q, want lowercased %q", latest.AppName, "firefox")
	}
	if latest.RootPID != 1234 {
		t.Errorf("RootPID = %d, want 1234", latest.RootPID)
	}
}

func TestGetLatestEmpty(t *testing.T) {
	repo := openTestDB(t)

	latest, err := repo.GetLatest()
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if latest != nil {
		t.Errorf("GetLatest on empty database = %+v, want nil", latest)
	}
}

func TestSuspendSummary(t *testing.T) {
	repo := openTestDB(t)
	now := time.Now()

	seed := []*models.TransitionEvent{
		{Timestamp: now.Add(-3 * time.Hour), RootPID: 10, AppName: "firefox", FromState: "running", ToState: "stopped"},
		{Timestamp: now.Add(-2 * time.Hour), RootPID: 10, AppName: "firefox", FromState: "stopped", ToState: "running", SuspendedFor: 3600},
		{Timestamp: now.Add(-1 * time.Hour), RootPID: 10, AppName: "firefox", FromState: "stopped", ToState: "running", SuspendedFor: 120},
		{Timestamp: now.Add(-1 * time.Hour), RootPID: 20, AppName: "mpv", FromState: "stopped", ToState: "running", SuspendedFor: 60},
		// Outside the window, must not count.
		{Timestamp: now.Add(-48 * time.Hour), RootPID: 10, AppName: "firefox", FromState: "stopped", ToState: "running", SuspendedFor: 9999},
	}
	for _, e := range seed {
		if err := repo.Create(e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	summaries, err := repo.GetSuspendSummarySince(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("GetSuspendSummarySince: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].AppName != "firefox" || summaries[0].SuspendedSeconds != 3720 {
		t.Errorf("summaries[0] = %+v, want firefox with 3720s", summaries[0])
	}
	if summaries[0].SuspendCount != 2 {
		t.Errorf("firefox suspend count = %d, want 2", summaries[0].SuspendCount)
	}
	if summaries[1].AppName != "mpv" || summaries[1].SuspendedSeconds != 60 {
		t.Errorf("summaries[1] = %+v, want mpv with 60s", summaries[1])
	}
}

func TestClear(t *testing.T) {
	repo := openTestDB(t)

	if err := repo.Create(&models.TransitionEvent{Timestamp: time.Now(), RootPID: 1, AppName: "x", FromState: "running", ToState: "stopped"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	events, err := repo.GetEventsSince(time.Time{})
	if err != nil {
		t.Fatalf("GetEventsSince: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events after Clear, want 0", len(events))
	}
}
