package models

import (
	"time"
)

type ExamResult struct {
	ID         string    `json:"id" db:"id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	ExamID     string    `json:"exam_id" db:"exam_id"`
	TotalScore int       `json:"total_score" db:"total_score"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// StudentScore is one student's aggregation line for an exam. Ungraded
// answers count as zero toward Total; Graded vs Answered lets the
// caller tell a fully graded exam from a partially graded one.
type StudentScore struct {
	StudentID string `json:"student_id" db:"student_id"`
	Total     int    `json:"total" db:"total"`
	Answered  int    `json:"answered" db:"answered"`
	Graded    int    `json:"graded" db:"graded"`
}

func (s StudentScore) FullyGraded() bool {
	return s.Answered > 0 && s.Graded == s.Answered
}
