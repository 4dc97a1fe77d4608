package results

import (
	"context"
	"log/slog"

	"github.com/mind-engage/mocktest/internal/exam"
)

// CompletionPublisher announces stored results.
type CompletionPublisher interface {
	PublishCompleted(ctx context.Context, res exam.AttemptResult) error
}

// Publishing announces every successfully persisted result. Publish
// failures are logged and never fail Persist.
type Publishing struct {
	Store
	pub CompletionPublisher
	log *slog.Logger
}

func NewPublishing(inner Store, pub CompletionPublisher, log *slog.Logger) *Publishing {
	if log == nil {
		log = slog.Default()
	}
	return &Publishing{Store: inner, pub: pub, log: log}
}

func (p *Publishing) Persist(ctx context.Context, res exam.AttemptResult) error {
	if err := p.Store.Persist(ctx, res); err != nil {
		return err
	}
	if err := p.pub.PublishCompleted(ctx, res); err != nil {
		p.log.Warn("publish attempt completed", "attempt_id", res.AttemptID, "err", err)
	}
	return nil
}
