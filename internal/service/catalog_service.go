package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
	"github.com/zsbati/exam-service/internal/policy"
	"github.com/zsbati/exam-service/internal/repository"
)

type CatalogService interface {
	CreateExam(ctx context.Context, teacherID string, req *models.CreateExamRequest) (*models.Exam, error)
	AddQuestion(ctx context.Context, role models.Role, examID string, req *models.AddQuestionRequest) (*models.Question, error)
	GetExamForRole(ctx context.Context, role models.Role, id string) (*models.Exam, error)
	GetQuestions(ctx context.Context, examID string) ([]models.Question, error)
	GetQuestionsForRole(ctx context.Context, role models.Role, examID string, now time.Time) ([]models.Question, error)
	ListAccessibleExams(ctx context.Context, studentID string, page, limit int) (*models.ExamsResponse, error)
	ListExams(ctx context.Context, role models.Role, page, limit int) (*models.ExamsResponse, error)
	UpdateExam(ctx context.Context, role models.Role, examID string, req *models.UpdateExamRequest) error
	DeleteExam(ctx context.Context, role models.Role, examID string) error
}

type catalogService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	studentRepo  repository.StudentRepository
	teacherRepo  repository.TeacherRepository
	logger       zerolog.Logger
}

func NewCatalogService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	studentRepo repository.StudentRepository,
	teacherRepo repository.TeacherRepository,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		studentRepo:  studentRepo,
		teacherRepo:  teacherRepo,
		logger:       logger,
	}
}

func (s *catalogService) CreateExam(ctx context.Context, teacherID string, req *models.CreateExamRequest) (*models.Exam, error) {
	if !models.IsValidGrade(req.Grade) {
		return nil, models.ErrInvalidGrade
	}

	teacherExists, err := s.teacherRepo.Exists(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to check teacher existence: %w", err)
	}
	if !teacherExists {
		return nil, models.ErrNotFound
	}

	exam := &models.Exam{
		ID:          uuid.New().String(),
		TeacherID:   teacherID,
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		Grade:       req.Grade,
		IsTimed:     req.IsTimed,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	// Timing fields only survive for timed exams.
	if req.IsTimed {
		exam.StartAt = req.StartAt
		exam.EndAt = req.EndAt
		exam.DurationMinutes = req.DurationMinutes
	}

	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info().
		Str("exam_id", exam.ID).
		Str("teacher_id", teacherID).
		Str("title", exam.Title).
		Int("grade", exam.Grade).
		Bool("is_timed", exam.IsTimed).
		Msg("Exam created")

	return exam, nil
}

func (s *catalogService) AddQuestion(ctx context.Context, role models.Role, examID string, req *models.AddQuestionRequest) (*models.Question, error) {
	if len(req.Choices) == 0 {
		return nil, models.ErrEmptyChoices
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return nil, models.ErrNotFound
	}
	if !policy.RoleCanAdminister(role, exam) {
		return nil, models.ErrAccessDenied
	}

	question := &models.Question{
		ID:            uuid.New().String(),
		ExamID:        examID,
		Text:          req.Text,
		CorrectAnswer: req.CorrectAnswer,
		Choices:       req.Choices,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if !question.HasChoice(req.CorrectAnswer) {
		return nil, models.ErrInvalidQuestion
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info().
		Str("question_id", question.ID).
		Str("exam_id", examID).
		Msg("Question added")

	return question, nil
}

// GetExamForRole applies the mirror scope to a single-exam read:
// superusers see any exam, teachers the exams they own, students the
// exams their grade and teacher set reach. Timing does not gate
// visibility, only taking.
func (s *catalogService) GetExamForRole(ctx context.Context, role models.Role, id string) (*models.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return nil, models.ErrNotFound
	}

	switch {
	case role.IsSuperuser():
	case role.IsTeacher():
		if !policy.RoleCanAdminister(role, exam) {
			return nil, models.ErrAccessDenied
		}
	case role.IsStudent():
		student, err := s.studentRepo.GetByID(ctx, role.StudentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get student: %w", err)
		}
		if student == nil {
			return nil, models.ErrNotFound
		}
		if !policy.CanStudentView(student, exam) {
			return nil, models.ErrAccessDenied
		}
	default:
		return nil, models.ErrAccessDenied
	}

	return exam, nil
}

func (s *catalogService) GetQuestions(ctx context.Context, examID string) ([]models.Question, error) {
	examExists, err := s.examRepo.Exists(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to check exam existence: %w", err)
	}
	if !examExists {
		return nil, models.ErrNotFound
	}

	questions, err := s.questionRepo.GetByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return questions, nil
}

// GetQuestionsForRole gates the question list by role: teachers must
// administer the exam, students must pass the full access check
// including the timing window at the supplied instant.
func (s *catalogService) GetQuestionsForRole(ctx context.Context, role models.Role, examID string, now time.Time) ([]models.Question, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return nil, models.ErrNotFound
	}

	switch {
	case role.IsSuperuser():
	case role.IsTeacher():
		if !policy.RoleCanAdminister(role, exam) {
			return nil, models.ErrAccessDenied
		}
	case role.IsStudent():
		student, err := s.studentRepo.GetByID(ctx, role.StudentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get student: %w", err)
		}
		if student == nil {
			return nil, models.ErrNotFound
		}
		if !policy.CanStudentAccess(student, exam, now) {
			return nil, models.ErrAccessDenied
		}
	default:
		return nil, models.ErrAccessDenied
	}

	return s.questionRepo.GetByExam(ctx, examID)
}

func (s *catalogService) ListAccessibleExams(ctx context.Context, studentID string, page, limit int) (*models.ExamsResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, models.ErrNotFound
	}

	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	exams, total, err := s.examRepo.GetAccessible(ctx, studentID, student.Grade, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accessible exams: %w", err)
	}

	return &models.ExamsResponse{
		Exams: exams,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// ListExams applies the mirror scope: superusers see every exam,
// teachers their own, students the exams their grade/teacher set
// reaches.
func (s *catalogService) ListExams(ctx context.Context, role models.Role, page, limit int) (*models.ExamsResponse, error) {
	switch {
	case role.IsSuperuser():
		page, limit = normalizePage(page, limit)
		exams, total, err := s.examRepo.GetAll(ctx, limit, (page-1)*limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list exams: %w", err)
		}
		return &models.ExamsResponse{Exams: exams, Total: total, Page: page, Limit: limit}, nil
	case role.IsTeacher():
		page, limit = normalizePage(page, limit)
		exams, total, err := s.examRepo.GetByTeacher(ctx, role.TeacherID, limit, (page-1)*limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list exams: %w", err)
		}
		return &models.ExamsResponse{Exams: exams, Total: total, Page: page, Limit: limit}, nil
	case role.IsStudent():
		return s.ListAccessibleExams(ctx, role.StudentID, page, limit)
	default:
		return nil, models.ErrAccessDenied
	}
}

func (s *catalogService) UpdateExam(ctx context.Context, role models.Role, examID string, req *models.UpdateExamRequest) error {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return models.ErrNotFound
	}
	if !policy.RoleCanAdminister(role, exam) {
		return models.ErrAccessDenied
	}

	exam.Title = req.Title
	exam.Subject = req.Subject
	exam.Description = req.Description

	return s.examRepo.Update(ctx, exam)
}

func (s *catalogService) DeleteExam(ctx context.Context, role models.Role, examID string) error {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return models.ErrNotFound
	}
	if !policy.RoleCanAdminister(role, exam) {
		return models.ErrAccessDenied
	}

	if err := s.examRepo.Delete(ctx, examID); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.logger.Info().
		Str("exam_id", examID).
		Msg("Exam deleted")

	return nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
