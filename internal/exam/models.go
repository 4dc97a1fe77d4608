package exam

import (
	"time"

	"github.com/mind-engage/mocktest/internal/formats"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type Question struct {
	ID             string     `json:"id" yaml:"id"`
	SectionCode    string     `json:"section" yaml:"section"`
	Text           string     `json:"text" yaml:"text"`
	Options        []string   `json:"options" yaml:"options"`
	CorrectAnswer  string     `json:"correct_answer,omitempty" yaml:"correct_answer"`
	Explanation    string     `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Difficulty     Difficulty `json:"difficulty" yaml:"difficulty"`
	ReadingPassage string     `json:"reading_passage,omitempty" yaml:"reading_passage,omitempty"`
}

type SectionMeta struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	ColorScheme string `json:"color_scheme"`
}

type AnswerRecord struct {
	QuestionID     string `json:"question_id"`
	ChosenOption   string `json:"chosen_option"`
	IsCorrect      bool   `json:"is_correct"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
}

type Mode string

const (
	ModeFull    Mode = "full"
	ModeSection Mode = "section"
)

// AssessmentConfig selects what an attempt covers.
type AssessmentConfig struct {
	Mode        Mode   `json:"mode"`
	SectionCode string `json:"section,omitempty"`
}

type SessionState struct {
	AttemptID            string                  `json:"attempt_id"`
	LearnerID            string                  `json:"learner_id"`
	Config               AssessmentConfig        `json:"config"`
	Questions            []Question              `json:"-"`
	Answers              map[string]AnswerRecord `json:"answers"`
	CurrentQuestionIndex int                     `json:"current_question_index"`
	TimeRemainingSeconds int                     `json:"time_remaining_seconds"`
	BudgetSeconds        int                     `json:"budget_seconds"`
	IsPaused             bool                    `json:"is_paused"`
	StartedAt            time.Time               `json:"started_at"`

	// TimeRemainingSeconds when the current question was shown.
	QuestionAnchor int `json:"-"`
}

func (s SessionState) clone() SessionState {
	out := s
	out.Answers = make(map[string]AnswerRecord, len(s.Answers))
	for k, v := range s.Answers {
		out.Answers[k] = v
	}
	return out
}

func (s SessionState) questionIndex(id string) int {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

type Status string

const (
	StatusActive     Status = "active"
	StatusCompleting Status = "completing"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusAbandoned }

// Reason records what finalized an attempt.
type Reason string

const (
	ReasonManualFinish      Reason = "manual_finish"
	ReasonManualFinishAtEnd Reason = "manual_finish_at_end"
	ReasonTimeExpired       Reason = "time_expired"
)

type MilestoneID string

type AttemptResult struct {
	AttemptID        string            `json:"attempt_id"`
	LearnerID        string            `json:"learner_id"`
	Mode             Mode              `json:"mode"`
	SectionCode      string            `json:"section,omitempty"`
	TotalQuestions   int               `json:"total_questions"`
	CorrectAnswers   int               `json:"correct_answers"`
	ScorePercentage  float64           `json:"score_percentage"`
	ScaledScore      float64           `json:"scaled_score"`
	TimeSpentMinutes int               `json:"time_spent_minutes"`
	NewMilestones    []MilestoneID     `json:"new_milestones"`
	Sections         formats.Breakdown `json:"sections"`
	Reason           Reason            `json:"reason"`
	CompletedAt      time.Time         `json:"completed_at"`
}

// Feedback is what the learner sees right after answering.
type Feedback struct {
	QuestionID    string `json:"question_id"`
	ChosenOption  string `json:"chosen_option"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

func feedbackFor(q Question, rec AnswerRecord) Feedback {
	return Feedback{
		QuestionID:    q.ID,
		ChosenOption:  rec.ChosenOption,
		IsCorrect:     rec.IsCorrect,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
}
