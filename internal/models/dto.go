package models

import "time"

// Data Transfer Objects

type CreateTeacherRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"required,min=2,max=255"`
}

type CreateStudentRequest struct {
	Username   string   `json:"username" validate:"required,min=3,max=150"`
	Email      string   `json:"email" validate:"required,email,max=255"`
	Name       string   `json:"name" validate:"required,min=2,max=255"`
	Grade      int      `json:"grade" validate:"required"`
	TeacherIDs []string `json:"teacher_ids" validate:"dive,uuid"`
}

type ProvisionSuperuserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"required,min=2,max=255"`
}

type CreateExamRequest struct {
	Title           string     `json:"title" validate:"required,min=3,max=255"`
	Subject         string     `json:"subject" validate:"required,min=2,max=255"`
	Description     string     `json:"description" validate:"max=1000"`
	Grade           int        `json:"grade" validate:"required"`
	IsTimed         bool       `json:"is_timed"`
	StartAt         *time.Time `json:"start_at,omitempty"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty" validate:"min=0"`
}

type UpdateExamRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Subject     string `json:"subject" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

type AddQuestionRequest struct {
	Text          string   `json:"text" validate:"required,min=3"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Choices       []string `json:"choices" validate:"required,min=1,dive,required"`
}

type SubmitAnswersRequest struct {
	// Answers maps question id to the student's free-text answer.
	// Unanswered questions are simply absent.
	Answers map[string]string `json:"answers" validate:"required,min=1"`
}

type SubmitAnswersResponse struct {
	ExamID      string    `json:"exam_id"`
	Submitted   int       `json:"submitted"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type RecordScoreRequest struct {
	Score int `json:"score"`
}

type AggregateExamResponse struct {
	ExamID string         `json:"exam_id"`
	Scores []StudentScore `json:"scores"`
}

type ExamsResponse struct {
	Exams []ExamWithStats `json:"exams"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type AnswersResponse struct {
	Answers []StudentAnswerWithDetails `json:"answers"`
	Total   int                        `json:"total"`
	Page    int                        `json:"page"`
	Limit   int                        `json:"limit"`
}

type StudentsResponse struct {
	Students []StudentWithStats `json:"students"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	Limit    int                `json:"limit"`
}

type TeachersResponse struct {
	Teachers []TeacherWithStats `json:"teachers"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	Limit    int                `json:"limit"`
}
