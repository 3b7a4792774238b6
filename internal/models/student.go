package models

import (
	"time"
)

// Grade levels recognized by the school.
const (
	GradeTen    = 10
	GradeEleven = 11
	GradeTwelve = 12
)

func IsValidGrade(grade int) bool {
	switch grade {
	case GradeTen, GradeEleven, GradeTwelve:
		return true
	default:
		return false
	}
}

type Student struct {
	ID        string    `json:"id" db:"id"`
	AccountID string    `json:"account_id" db:"account_id"`
	Name      string    `json:"name" db:"name"`
	Grade     int       `json:"grade" db:"grade"`
	// TeacherIDs is the many-to-many teacher set; together with Grade it
	// fully determines which exams the student can reach.
	TeacherIDs []string  `json:"teacher_ids"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

func (s *Student) HasTeacher(teacherID string) bool {
	for _, id := range s.TeacherIDs {
		if id == teacherID {
			return true
		}
	}
	return false
}

type StudentWithStats struct {
	Student
	TotalAnswers  int `json:"total_answers" db:"total_answers"`
	GradedAnswers int `json:"graded_answers" db:"graded_answers"`
}
