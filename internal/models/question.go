package models

import (
	"time"
)

type Question struct {
	ID            string    `json:"id" db:"id"`
	ExamID        string    `json:"exam_id" db:"exam_id"`
	Text          string    `json:"text" db:"text"`
	CorrectAnswer string    `json:"correct_answer" db:"correct_answer"`
	Choices       []string  `json:"choices" db:"choices"`
	// Seq preserves insertion order within an exam.
	Seq       int64     `json:"seq" db:"seq"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (q *Question) HasChoice(choice string) bool {
	for _, c := range q.Choices {
		if c == choice {
			return true
		}
	}
	return false
}
