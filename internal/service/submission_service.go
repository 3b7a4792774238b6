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
	"github.com/zsbati/exam-service/internal/service/integration"
)

type SubmissionService interface {
	SubmitAnswers(ctx context.Context, studentID, examID string, answers map[string]string) (*models.SubmitAnswersResponse, error)
	RecordScore(ctx context.Context, role models.Role, answerID string, score int) error
	AggregateExam(ctx context.Context, role models.Role, examID string) (*models.AggregateExamResponse, error)
	ListAnswers(ctx context.Context, role models.Role, page, limit int) (*models.AnswersResponse, error)
	GetAnswersByExam(ctx context.Context, role models.Role, examID string, page, limit int) (*models.AnswersResponse, error)
	ListResults(ctx context.Context, role models.Role) ([]models.ExamResult, error)
	ListLedger(ctx context.Context, role models.Role) ([]models.LedgerEntry, error)
}

type submissionService struct {
	answerRepo   repository.AnswerRepository
	resultRepo   repository.ResultRepository
	ledgerRepo   repository.LedgerRepository
	questionRepo repository.QuestionRepository
	examRepo     repository.ExamRepository
	studentRepo  repository.StudentRepository
	teacherRepo  repository.TeacherRepository
	events       integration.EventPublisher
	logger       zerolog.Logger
	// now is injected so timed-window checks are testable.
	now func() time.Time
}

func NewSubmissionService(
	answerRepo repository.AnswerRepository,
	resultRepo repository.ResultRepository,
	ledgerRepo repository.LedgerRepository,
	questionRepo repository.QuestionRepository,
	examRepo repository.ExamRepository,
	studentRepo repository.StudentRepository,
	teacherRepo repository.TeacherRepository,
	events integration.EventPublisher,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		answerRepo:   answerRepo,
		resultRepo:   resultRepo,
		ledgerRepo:   ledgerRepo,
		questionRepo: questionRepo,
		examRepo:     examRepo,
		studentRepo:  studentRepo,
		teacherRepo:  teacherRepo,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// SubmitAnswers records the student's submission for an exam, all rows
// or none. Duplicate submissions are rejected before any write; the
// storage-level unique constraint catches the concurrent case.
func (s *submissionService) SubmitAnswers(ctx context.Context, studentID, examID string, answers map[string]string) (*models.SubmitAnswersResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, models.ErrNotFound
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return nil, models.ErrNotFound
	}

	submitted, err := s.answerRepo.ExistsForExam(ctx, studentID, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing submission: %w", err)
	}
	if submitted {
		return nil, models.ErrAlreadySubmitted
	}

	if !policy.CanStudentAccess(student, exam, s.now()) {
		return nil, models.ErrAccessDenied
	}

	questions, err := s.questionRepo.GetByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	submittedAt := s.now()
	var rows []*models.StudentAnswer
	for _, question := range questions {
		text, ok := answers[question.ID]
		if !ok || text == "" {
			// Unanswered questions get no row at all.
			continue
		}
		rows = append(rows, &models.StudentAnswer{
			ID:         uuid.New().String(),
			StudentID:  studentID,
			QuestionID: question.ID,
			Answer:     text,
			CreatedAt:  submittedAt,
			UpdatedAt:  submittedAt,
		})
	}

	if len(rows) == 0 {
		return nil, models.ErrEmptySubmission
	}

	if err := s.answerRepo.CreateBatch(ctx, rows); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("student_id", studentID).
		Str("exam_id", examID).
		Int("answered", len(rows)).
		Msg("Answers submitted")

	if s.events != nil {
		event := &models.AnswersSubmittedEvent{
			ExamID:    examID,
			StudentID: studentID,
			Answered:  len(rows),
			Timestamp: submittedAt.Unix(),
		}
		if err := s.events.PublishAnswersSubmitted(ctx, event); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish answers submitted event")
		}
	}

	return &models.SubmitAnswersResponse{
		ExamID:      examID,
		Submitted:   len(rows),
		SubmittedAt: submittedAt,
	}, nil
}

// RecordScore grades one answer and refreshes the (student, exam)
// ledger row in the same transaction. An out-of-range score mutates
// nothing.
func (s *submissionService) RecordScore(ctx context.Context, role models.Role, answerID string, score int) error {
	if score < 0 || score > 100 {
		return models.ErrInvalidScore
	}

	answer, err := s.answerRepo.GetByID(ctx, answerID)
	if err != nil {
		return fmt.Errorf("failed to get answer: %w", err)
	}
	if answer == nil {
		return models.ErrNotFound
	}

	question, err := s.questionRepo.GetByID(ctx, answer.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to get question: %w", err)
	}
	if question == nil {
		return models.ErrNotFound
	}

	exam, err := s.examRepo.GetByID(ctx, question.ExamID)
	if err != nil {
		return fmt.Errorf("failed to get exam: %w", err)
	}
	if exam == nil {
		return models.ErrNotFound
	}

	if !policy.RoleCanAdminister(role, exam) {
		return models.ErrAccessDenied
	}

	teacherName := ""
	if exam.TeacherID != "" {
		teacher, err := s.teacherRepo.GetByID(ctx, exam.TeacherID)
		if err != nil {
			return fmt.Errorf("failed to get teacher: %w", err)
		}
		if teacher != nil {
			teacherName = teacher.Name
		}
	}

	entry := &models.LedgerEntry{
		StudentID:   answer.StudentID,
		ExamID:      exam.ID,
		Subject:     exam.Subject,
		Date:        s.now(),
		TeacherName: teacherName,
	}

	if err := s.answerRepo.RecordScore(ctx, answerID, score, entry); err != nil {
		return err
	}

	s.logger.Info().
		Str("answer_id", answerID).
		Str("student_id", answer.StudentID).
		Str("exam_id", exam.ID).
		Int("score", score).
		Msg("Score recorded")

	if s.events != nil {
		event := &models.ScoreRecordedEvent{
			AnswerID:  answerID,
			StudentID: answer.StudentID,
			ExamID:    exam.ID,
			Score:     score,
			Timestamp: s.now().Unix(),
		}
		if err := s.events.PublishScoreRecorded(ctx, event); err != nil {
			s.logger.Error().Err(err).Msg("Failed to publish score recorded event")
		}
	}

	return nil
}

// AggregateExam sums each student's scores across the exam's questions
// (ungraded answers count as zero) and upserts their ExamResult totals.
func (s *submissionService) AggregateExam(ctx context.Context, role models.Role, examID string) (*models.AggregateExamResponse, error) {
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

	scores, err := s.answerRepo.SumScoresByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum scores: %w", err)
	}

	for _, score := range scores {
		if err := s.resultRepo.Upsert(ctx, score.StudentID, examID, score.Total); err != nil {
			return nil, fmt.Errorf("failed to upsert result for student %s: %w", score.StudentID, err)
		}
	}

	s.logger.Info().
		Str("exam_id", examID).
		Int("students", len(scores)).
		Msg("Exam aggregated")

	return &models.AggregateExamResponse{
		ExamID: examID,
		Scores: scores,
	}, nil
}

func (s *submissionService) ListAnswers(ctx context.Context, role models.Role, page, limit int) (*models.AnswersResponse, error) {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	var (
		answers []models.StudentAnswerWithDetails
		total   int
		err     error
	)
	switch {
	case role.IsSuperuser():
		answers, total, err = s.answerRepo.GetAll(ctx, limit, offset)
	case role.IsTeacher():
		answers, total, err = s.answerRepo.GetByTeacher(ctx, role.TeacherID, limit, offset)
	case role.IsStudent():
		answers, total, err = s.answerRepo.GetByStudent(ctx, role.StudentID, limit, offset)
	default:
		return nil, models.ErrAccessDenied
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	return &models.AnswersResponse{Answers: answers, Total: total, Page: page, Limit: limit}, nil
}

func (s *submissionService) GetAnswersByExam(ctx context.Context, role models.Role, examID string, page, limit int) (*models.AnswersResponse, error) {
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

	page, limit = normalizePage(page, limit)
	answers, total, err := s.answerRepo.GetByExam(ctx, examID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get answers by exam: %w", err)
	}

	return &models.AnswersResponse{Answers: answers, Total: total, Page: page, Limit: limit}, nil
}

func (s *submissionService) ListResults(ctx context.Context, role models.Role) ([]models.ExamResult, error) {
	switch {
	case role.IsSuperuser():
		return s.resultRepo.GetAll(ctx)
	case role.IsTeacher():
		return s.resultRepo.GetByTeacher(ctx, role.TeacherID)
	case role.IsStudent():
		return s.resultRepo.GetByStudent(ctx, role.StudentID)
	default:
		return nil, models.ErrAccessDenied
	}
}

func (s *submissionService) ListLedger(ctx context.Context, role models.Role) ([]models.LedgerEntry, error) {
	switch {
	case role.IsSuperuser():
		return s.ledgerRepo.GetAll(ctx)
	case role.IsTeacher():
		return s.ledgerRepo.GetByTeacher(ctx, role.TeacherID)
	case role.IsStudent():
		return s.ledgerRepo.GetByStudent(ctx, role.StudentID)
	default:
		return nil, models.ErrAccessDenied
	}
}
