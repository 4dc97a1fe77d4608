package syncx_test

import (
	"context"
	"testing"

	"github.com/mind-engage/mocktest/internal/db"
	syncx "github.com/mind-engage/mocktest/internal/sync"
)

func TestAppendAndSince(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:eventlog_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dbh.Close()

	repo := syncx.NewEventRepo(dbh)
	for _, k := range []string{"a1", "a2", "a3"} {
		if err := repo.Append(ctx, syncx.Event{Type: syncx.TypeAttemptCompleted, Key: k, DataJSON: `{}`}); err != nil {
			t.Fatalf("append %s: %v", k, err)
		}
	}
	evs, err := repo.Since(ctx, 0, 2)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(evs) != 2 || evs[0].Key != "a1" || evs[0].SiteID != "local" {
		t.Fatalf("unexpected page: %+v", evs)
	}
	rest, err := repo.Since(ctx, evs[1].Offset, 10)
	if err != nil {
		t.Fatalf("since: %v", err)
	}
	if len(rest) != 1 || rest[0].Key != "a3" {
		t.Fatalf("unexpected rest: %+v", rest)
	}
}
