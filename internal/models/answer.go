package models

import (
	"time"
)

type StudentAnswer struct {
	ID         string `json:"id" db:"id"`
	StudentID  string `json:"student_id" db:"student_id"`
	QuestionID string `json:"question_id" db:"question_id"`
	Answer     string `json:"answer" db:"answer"`
	// Score is nil until a teacher grades the answer.
	Score     *int      `json:"score,omitempty" db:"score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (a *StudentAnswer) IsGraded() bool {
	return a.Score != nil
}

type StudentAnswerWithDetails struct {
	StudentAnswer
	StudentName  string `json:"student_name" db:"student_name"`
	QuestionText string `json:"question_text" db:"question_text"`
	ExamID       string `json:"exam_id" db:"exam_id"`
	ExamTitle    string `json:"exam_title" db:"exam_title"`
}
