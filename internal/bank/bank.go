// Package bank supplies ordered question lists to the exam engine from a
// YAML/JSON file or a SQL table.
package bank

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/mind-engage/mocktest/internal/exam"
	"github.com/mind-engage/mocktest/internal/formats"
)

var ErrUnknownSection = errors.New("unknown section")

// Source lists every question of the bank, in authoring order.
type Source interface {
	All(ctx context.Context) ([]exam.Question, error)
}

// Bank selects questions for a configuration following the policy's
// section order. When a section declares a question count smaller than the
// bank holds, a random subset is taken, kept in authoring order.
type Bank struct {
	src    Source
	pol    formats.Policy
	sample bool

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Bank)

// WithSampling enables per-section sampling using the given seed.
func WithSampling(seed int64) Option {
	return func(b *Bank) {
		b.sample = true
		b.rng = rand.New(rand.NewSource(seed))
	}
}

func New(src Source, pol formats.Policy, opts ...Option) *Bank {
	b := &Bank{src: src, pol: pol}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Bank) LoadQuestions(ctx context.Context, cfg exam.AssessmentConfig) ([]exam.Question, error) {
	var codes []string
	switch cfg.Mode {
	case exam.ModeFull:
		codes = b.pol.SectionOrder()
	case exam.ModeSection:
		if _, ok := b.pol.Section(cfg.SectionCode); !ok {
			return nil, &exam.ConfigurationError{Config: cfg, Err: fmt.Errorf("%w %q", ErrUnknownSection, cfg.SectionCode)}
		}
		codes = []string{cfg.SectionCode}
	default:
		return nil, &exam.ConfigurationError{Config: cfg, Err: fmt.Errorf("unknown mode %q", cfg.Mode)}
	}

	all, err := b.src.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	bySection := map[string][]exam.Question{}
	for _, q := range all {
		bySection[q.SectionCode] = append(bySection[q.SectionCode], q)
	}

	var out []exam.Question
	for _, code := range codes {
		qs := bySection[code]
		sec, _ := b.pol.Section(code)
		if b.sample && sec.Questions > 0 && sec.Questions < len(qs) {
			qs = b.pick(qs, sec.Questions)
		}
		out = append(out, qs...)
	}
	if len(out) == 0 {
		return nil, &exam.ConfigurationError{Config: cfg, Err: errors.New("no questions for configuration")}
	}
	return out, nil
}

func (b *Bank) pick(qs []exam.Question, n int) []exam.Question {
	b.mu.Lock()
	idx := b.rng.Perm(len(qs))[:n]
	b.mu.Unlock()
	keep := make(map[int]bool, n)
	for _, i := range idx {
		keep[i] = true
	}
	out := make([]exam.Question, 0, n)
	for i, q := range qs {
		if keep[i] {
			out = append(out, q)
		}
	}
	return out
}

// Validate checks the whole bank against a profile.
func Validate(ctx context.Context, src Source, pol formats.Policy, prof formats.Profile) error {
	all, err := src.All(ctx)
	if err != nil {
		return err
	}
	if prof == nil {
		return formats.ValidateQuestions(pol, exam.QuestionsLike(all))
	}
	return prof.Validate(pol, exam.QuestionsLike(all))
}
