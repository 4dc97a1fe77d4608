package grading

import (
	"errors"
	"fmt"
)

// ErrUnknownOption is returned when a response is not one of the offered options.
var ErrUnknownOption = errors.New("response is not one of the question's options")

// Q is a minimal view of a question needed for grading.
type Q struct {
	ID        string
	Options   []string
	AnswerKey string
}

// Result is the outcome of grading a single response.
type Result struct {
	Correct  bool
	Feedback string
}

// Grader decides whether a response answers a question.
type Grader interface {
	Grade(q Q, response string) (Result, error)
}

// Exact compares the response with the answer key by exact string
// equality. Responses outside the option list are rejected when the
// question carries options.
type Exact struct{}

func (Exact) Grade(q Q, response string) (Result, error) {
	if len(q.Options) > 0 && !contains(q.Options, response) {
		return Result{}, fmt.Errorf("question %s: %w", q.ID, ErrUnknownOption)
	}
	if response == q.AnswerKey {
		return Result{Correct: true, Feedback: "correct"}, nil
	}
	return Result{Feedback: "incorrect"}, nil
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
