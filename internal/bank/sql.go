package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mind-engage/mocktest/internal/exam"
)

// SQLSource reads questions from the questions table.
type SQLSource struct {
	db *sql.DB
}

func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db}
}

func (s *SQLSource) All(ctx context.Context) ([]exam.Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,section_code,text,options_json,correct_answer,explanation,difficulty,reading_passage
		FROM questions ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []exam.Question
	for rows.Next() {
		var q exam.Question
		var optsJSON, diff string
		if err := rows.Scan(&q.ID, &q.SectionCode, &q.Text, &optsJSON, &q.CorrectAnswer, &q.Explanation, &diff, &q.ReadingPassage); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(optsJSON), &q.Options); err != nil {
			return nil, fmt.Errorf("question %s: options: %w", q.ID, err)
		}
		q.Difficulty = exam.Difficulty(diff)
		out = append(out, q)
	}
	return out, rows.Err()
}

// Put upserts questions; position follows slice order.
func (s *SQLSource) Put(ctx context.Context, qs []exam.Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for i, q := range qs {
		oj, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO questions (id,section_code,text,options_json,correct_answer,explanation,difficulty,reading_passage,position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (id) DO UPDATE SET section_code=EXCLUDED.section_code, text=EXCLUDED.text, options_json=EXCLUDED.options_json,
				correct_answer=EXCLUDED.correct_answer, explanation=EXCLUDED.explanation, difficulty=EXCLUDED.difficulty,
				reading_passage=EXCLUDED.reading_passage, position=EXCLUDED.position`,
			q.ID, q.SectionCode, q.Text, string(oj), q.CorrectAnswer, q.Explanation, string(q.Difficulty), q.ReadingPassage, i)
		if err != nil {
			return fmt.Errorf("put question %s: %w", q.ID, err)
		}
	}
	return tx.Commit()
}
