package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mind-engage/mocktest/internal/exam"
)

// Cached keeps learner history and single results in Redis in front of
// another Store. A nil client disables caching. Redis failures fall back
// to the underlying store.
type Cached struct {
	inner  Store
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

func NewCached(inner Store, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Cached {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cached{inner: inner, rdb: rdb, ttl: ttl, prefix: "mocktest:", log: log}
}

func (c *Cached) historyKey(learnerID string, limit int) string {
	return fmt.Sprintf("%shistory:%s:%d", c.prefix, learnerID, limit)
}

func (c *Cached) historyPattern(learnerID string) string {
	return fmt.Sprintf("%shistory:%s:*", c.prefix, learnerID)
}

func (c *Cached) resultKey(attemptID string) string { return c.prefix + "result:" + attemptID }

func (c *Cached) Persist(ctx context.Context, res exam.AttemptResult) error {
	if err := c.inner.Persist(ctx, res); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	c.invalidate(ctx, res.LearnerID)
	if buf, err := json.Marshal(res); err == nil {
		if err := c.rdb.Set(ctx, c.resultKey(res.AttemptID), buf, c.ttl).Err(); err != nil {
			c.log.Warn("cache result", "attempt_id", res.AttemptID, "err", err)
		}
	}
	return nil
}

func (c *Cached) invalidate(ctx context.Context, learnerID string) {
	iter := c.rdb.Scan(ctx, 0, c.historyPattern(learnerID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("scan history keys", "learner_id", learnerID, "err", err)
		return
	}
	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			c.log.Warn("invalidate history", "learner_id", learnerID, "err", err)
		}
	}
}

func (c *Cached) History(ctx context.Context, learnerID string, limit int) ([]exam.AttemptResult, error) {
	if c.rdb == nil {
		return c.inner.History(ctx, learnerID, limit)
	}
	key := c.historyKey(learnerID, limit)
	if buf, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var out []exam.AttemptResult
		if err := json.Unmarshal(buf, &out); err == nil {
			return out, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("history cache read", "learner_id", learnerID, "err", err)
	}
	out, err := c.inner.History(ctx, learnerID, limit)
	if err != nil {
		return nil, err
	}
	if buf, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, buf, c.ttl).Err(); err != nil {
			c.log.Warn("history cache write", "learner_id", learnerID, "err", err)
		}
	}
	return out, nil
}

func (c *Cached) Get(ctx context.Context, attemptID string) (exam.AttemptResult, error) {
	if c.rdb != nil {
		if buf, err := c.rdb.Get(ctx, c.resultKey(attemptID)).Bytes(); err == nil {
			var res exam.AttemptResult
			if err := json.Unmarshal(buf, &res); err == nil {
				return res, nil
			}
		}
	}
	return c.inner.Get(ctx, attemptID)
}

// EarnedMilestones is not cached: it decides whether a milestone is new.
func (c *Cached) EarnedMilestones(ctx context.Context, learnerID string) ([]exam.MilestoneID, error) {
	return c.inner.EarnedMilestones(ctx, learnerID)
}
