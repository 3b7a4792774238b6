package models

import (
	"time"
)

type Exam struct {
	ID          string `json:"id" db:"id"`
	// TeacherID is empty when the owning teacher was removed; the exam
	// survives as an orphan.
	TeacherID       string     `json:"teacher_id,omitempty" db:"teacher_id"`
	Title           string     `json:"title" db:"title"`
	Subject         string     `json:"subject" db:"subject"`
	Description     string     `json:"description" db:"description"`
	Grade           int        `json:"grade" db:"grade"`
	IsTimed         bool       `json:"is_timed" db:"is_timed"`
	StartAt         *time.Time `json:"start_at,omitempty" db:"start_at"`
	EndAt           *time.Time `json:"end_at,omitempty" db:"end_at"`
	DurationMinutes int        `json:"duration_minutes,omitempty" db:"duration_minutes"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// TimingConfig carries the optional exam window. When IsTimed is false
// the remaining fields are ignored and cleared on write.
type TimingConfig struct {
	IsTimed         bool       `json:"is_timed"`
	StartAt         *time.Time `json:"start_at,omitempty"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
}

type ExamWithStats struct {
	Exam
	TeacherName    string `json:"teacher_name" db:"teacher_name"`
	TotalQuestions int    `json:"total_questions" db:"total_questions"`
	TotalAnswers   int    `json:"total_answers" db:"total_answers"`
}
