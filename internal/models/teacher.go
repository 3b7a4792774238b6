package models

import (
	"time"
)

type Teacher struct {
	ID        string    `json:"id" db:"id"`
	AccountID string    `json:"account_id" db:"account_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type TeacherWithStats struct {
	Teacher
	TotalExams    int `json:"total_exams" db:"total_exams"`
	TotalStudents int `json:"total_students" db:"total_students"`
}
