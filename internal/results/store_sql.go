// Package results stores completed attempt results and serves learner
// history.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mocktest/internal/exam"
	"github.com/mind-engage/mocktest/internal/formats"
	syncx "github.com/mind-engage/mocktest/internal/sync"
)

var ErrNotFound = errors.New("result not found")

// Store is what the service needs from a results backend.
type Store interface {
	exam.ResultsStore
	exam.HistorySource
	exam.MilestoneSource
	Get(ctx context.Context, attemptID string) (exam.AttemptResult, error)
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Persist writes the result, its milestones and an AttemptCompleted event
// in one transaction. Persisting the same attempt again is a no-op.
func (s *SQLStore) Persist(ctx context.Context, res exam.AttemptResult) error {
	secJSON, err := json.Marshal(res.Sections)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	r, err := tx.ExecContext(ctx, `INSERT INTO attempt_results
		(attempt_id,learner_id,mode,section_code,total_questions,correct_answers,score_percentage,scaled_score,time_spent_minutes,sections_json,reason,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (attempt_id) DO NOTHING`,
		res.AttemptID, res.LearnerID, string(res.Mode), res.SectionCode, res.TotalQuestions, res.CorrectAnswers,
		res.ScorePercentage, res.ScaledScore, res.TimeSpentMinutes, string(secJSON), string(res.Reason), res.CompletedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return nil
	}
	for _, m := range res.NewMilestones {
		if _, err := tx.ExecContext(ctx, `INSERT INTO attempt_milestones (attempt_id,milestone) VALUES ($1,$2)`,
			res.AttemptID, string(m)); err != nil {
			return fmt.Errorf("insert milestone: %w", err)
		}
	}
	if err := syncx.Append(ctx, tx, syncx.Event{Type: syncx.TypeAttemptCompleted, Key: res.AttemptID, DataJSON: string(payload)}); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return tx.Commit()
}

const selectResult = `SELECT attempt_id,learner_id,mode,section_code,total_questions,correct_answers,score_percentage,
	scaled_score,time_spent_minutes,sections_json,reason,completed_at FROM attempt_results`

func (s *SQLStore) Get(ctx context.Context, attemptID string) (exam.AttemptResult, error) {
	row := s.db.QueryRowContext(ctx, selectResult+` WHERE attempt_id=$1`, attemptID)
	res, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exam.AttemptResult{}, ErrNotFound
		}
		return exam.AttemptResult{}, err
	}
	ms, err := s.milestones(ctx, []string{res.AttemptID})
	if err != nil {
		return exam.AttemptResult{}, err
	}
	res.NewMilestones = orEmpty(ms[res.AttemptID])
	return res, nil
}

// History returns the learner's results, newest first.
func (s *SQLStore) History(ctx context.Context, learnerID string, limit int) ([]exam.AttemptResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, selectResult+` WHERE learner_id=$1 ORDER BY completed_at DESC, attempt_id DESC LIMIT $2`,
		learnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []exam.AttemptResult
	var ids []string
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
		ids = append(ids, res.AttemptID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	ms, err := s.milestones(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].NewMilestones = orEmpty(ms[out[i].AttemptID])
	}
	return out, nil
}

// EarnedMilestones returns every milestone the learner holds, sorted.
func (s *SQLStore) EarnedMilestones(ctx context.Context, learnerID string) ([]exam.MilestoneID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT m.milestone FROM attempt_milestones m
		JOIN attempt_results r ON r.attempt_id = m.attempt_id
		WHERE r.learner_id=$1 ORDER BY m.milestone`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []exam.MilestoneID{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, exam.MilestoneID(m))
	}
	return out, rows.Err()
}

func (s *SQLStore) milestones(ctx context.Context, ids []string) (map[string][]exam.MilestoneID, error) {
	out := map[string][]exam.MilestoneID{}
	for _, id := range ids {
		rows, err := s.db.QueryContext(ctx, `SELECT milestone FROM attempt_milestones WHERE attempt_id=$1 ORDER BY milestone`, id)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var m string
			if err := rows.Scan(&m); err != nil {
				rows.Close()
				return nil, err
			}
			out[id] = append(out[id], exam.MilestoneID(m))
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(sc scanner) (exam.AttemptResult, error) {
	var res exam.AttemptResult
	var mode, reason, secJSON string
	var completed int64
	if err := sc.Scan(&res.AttemptID, &res.LearnerID, &mode, &res.SectionCode, &res.TotalQuestions, &res.CorrectAnswers,
		&res.ScorePercentage, &res.ScaledScore, &res.TimeSpentMinutes, &secJSON, &reason, &completed); err != nil {
		return exam.AttemptResult{}, err
	}
	res.Mode = exam.Mode(mode)
	res.Reason = exam.Reason(reason)
	res.CompletedAt = time.Unix(completed, 0).UTC()
	res.Sections = formats.Breakdown{}
	if err := json.Unmarshal([]byte(secJSON), &res.Sections); err != nil {
		return exam.AttemptResult{}, fmt.Errorf("result %s: sections: %w", res.AttemptID, err)
	}
	return res, nil
}

func orEmpty(ms []exam.MilestoneID) []exam.MilestoneID {
	if ms == nil {
		return []exam.MilestoneID{}
	}
	return ms
}
