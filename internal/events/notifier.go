package events

import (
	"context"
	"encoding/json"

	"github.com/mind-engage/mocktest/internal/exam"
	syncx "github.com/mind-engage/mocktest/internal/sync"
)

// AbandonNotifier records abandoned attempts in the event log and
// publishes them. Either collaborator may be nil.
type AbandonNotifier struct {
	Log *syncx.EventRepo
	Pub *Publisher
}

func (n AbandonNotifier) AttemptAbandoned(ctx context.Context, a exam.AbandonedAttempt) error {
	if n.Log != nil {
		data, err := json.Marshal(a)
		if err != nil {
			return err
		}
		if err := n.Log.Append(ctx, syncx.Event{Type: syncx.TypeAttemptAbandoned, Key: a.AttemptID, DataJSON: string(data)}); err != nil {
			return err
		}
	}
	if n.Pub != nil {
		return n.Pub.PublishAbandoned(ctx, a)
	}
	return nil
}
