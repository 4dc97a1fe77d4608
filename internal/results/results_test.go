package results

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mocktest/internal/db"
	"github.com/mind-engage/mocktest/internal/exam"
	"github.com/mind-engage/mocktest/internal/formats"
	syncx "github.com/mind-engage/mocktest/internal/sync"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func openStore(t *testing.T, name string) (*SQLStore, *syncx.EventRepo) {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	return NewSQLStore(dbh), syncx.NewEventRepo(dbh)
}

func result(id, learner string, at int64, scaled float64, ms ...exam.MilestoneID) exam.AttemptResult {
	if ms == nil {
		ms = []exam.MilestoneID{}
	}
	return exam.AttemptResult{
		AttemptID:        id,
		LearnerID:        learner,
		Mode:             exam.ModeFull,
		TotalQuestions:   4,
		CorrectAnswers:   3,
		ScorePercentage:  75,
		ScaledScore:      scaled,
		TimeSpentMinutes: 12,
		NewMilestones:    ms,
		Sections:         formats.Breakdown{"ORD": {Total: 4, Correct: 3, Percent: 75}},
		Reason:           exam.ReasonManualFinish,
		CompletedAt:      time.Unix(at, 0).UTC(),
	}
}

func TestSQLStorePersistAndGet(t *testing.T) {
	ctx := context.Background()
	s, events := openStore(t, "results_get")

	want := result("a1", "l1", 1000, 1.5, "first_attempt", "score_1_5")
	require.NoError(t, s.Persist(ctx, want))
	require.NoError(t, s.Persist(ctx, want), "persisting twice is a no-op")

	got, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	evs, err := events.Since(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, syncx.TypeAttemptCompleted, evs[0].Type)
	assert.Equal(t, "a1", evs[0].Key)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStoreHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, "results_history")
	require.NoError(t, s.Persist(ctx, result("a1", "l1", 100, 0.5)))
	require.NoError(t, s.Persist(ctx, result("a2", "l1", 300, 1.0, "score_1_0")))
	require.NoError(t, s.Persist(ctx, result("a3", "l1", 200, 0.7)))
	require.NoError(t, s.Persist(ctx, result("b1", "l2", 400, 2.0)))

	h, err := s.History(ctx, "l1", 2)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "a2", h[0].AttemptID)
	assert.Equal(t, []exam.MilestoneID{"score_1_0"}, h[0].NewMilestones)
	assert.Equal(t, "a3", h[1].AttemptID)
	assert.Equal(t, []exam.MilestoneID{}, h[1].NewMilestones)

	none, err := s.History(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEarnedMilestonesSpanWholeHistory(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, "results_earned")
	require.NoError(t, s.Persist(ctx, result("a0", "l1", 1, 1.0, "first_attempt", "score_1_0")))
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Persist(ctx, result(fmt.Sprintf("a%d", i), "l1", int64(100+i), 0.5)))
	}
	require.NoError(t, s.Persist(ctx, result("a6", "l1", 200, 1.5, "score_1_5", "score_1_0")))
	require.NoError(t, s.Persist(ctx, result("b1", "l2", 300, 2.0, "perfect_score")))

	h, err := s.History(ctx, "l1", 3)
	require.NoError(t, err)
	require.Len(t, h, 3)
	assert.NotEqual(t, "a0", h[2].AttemptID, "the earning attempt is outside the window")

	got, err := NewCached(s, nil, time.Minute, quiet).EarnedMilestones(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, []exam.MilestoneID{"first_attempt", "score_1_0", "score_1_5"}, got)

	none, err := s.EarnedMilestones(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCachedWithoutRedis(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, "results_nocache")
	c := NewCached(s, nil, time.Minute, quiet)
	require.NoError(t, c.Persist(ctx, result("a1", "l1", 100, 1)))
	h, err := c.History(ctx, "l1", 5)
	require.NoError(t, err)
	assert.Len(t, h, 1)
	got, err := c.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.AttemptID)
}

func TestCachedFallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, "results_redisdown")
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	c := NewCached(s, rdb, time.Minute, quiet)

	require.NoError(t, c.Persist(ctx, result("a1", "l1", 100, 1)))
	h, err := c.History(ctx, "l1", 5)
	require.NoError(t, err)
	assert.Len(t, h, 1)
	got, err := c.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.AttemptID)
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishCompleted(_ context.Context, res exam.AttemptResult) error {
	f.published = append(f.published, res.AttemptID)
	return f.err
}

type failingStore struct{ Store }

func (failingStore) Persist(context.Context, exam.AttemptResult) error {
	return errors.New("disk full")
}

func TestPublishingAnnouncesStoredResults(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, "results_publish")
	pub := &fakePublisher{err: errors.New("broker away")}
	p := NewPublishing(s, pub, quiet)

	require.NoError(t, p.Persist(ctx, result("a1", "l1", 100, 1)), "publish failures are not persist failures")
	assert.Equal(t, []string{"a1"}, pub.published)

	p = NewPublishing(failingStore{s}, pub, quiet)
	require.Error(t, p.Persist(ctx, result("a2", "l1", 100, 1)))
	assert.Equal(t, []string{"a1"}, pub.published, "nothing announced when storage failed")
}
