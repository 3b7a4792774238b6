package models

import (
	"time"
)

// LedgerEntry is derived data owned by the scoring path. Exactly one
// row exists per (student, exam) pair; re-grading overwrites score,
// date and teacher_name in place.
type LedgerEntry struct {
	ID          string    `json:"id" db:"id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	ExamID      string    `json:"exam_id" db:"exam_id"`
	Subject     string    `json:"subject" db:"subject"`
	Date        time.Time `json:"date" db:"date"`
	Score       int       `json:"score" db:"score"`
	TeacherName string    `json:"teacher_name" db:"teacher_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
