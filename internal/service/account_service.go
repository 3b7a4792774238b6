package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
	"github.com/zsbati/exam-service/internal/repository"
)

type AccountService interface {
	CreateTeacher(ctx context.Context, req *models.CreateTeacherRequest) (*models.Teacher, error)
	CreateStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error)
	ProvisionSuperuser(ctx context.Context, req *models.ProvisionSuperuserRequest) (*models.Account, error)
	DeleteTeacher(ctx context.Context, id string) error
	DeleteStudent(ctx context.Context, id string) error
	ResolveRole(ctx context.Context, accountID string) (models.Role, error)
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	ListStudents(ctx context.Context, role models.Role, page, limit int) (*models.StudentsResponse, error)
	ListTeachers(ctx context.Context, role models.Role, page, limit int) (*models.TeachersResponse, error)
}

type accountService struct {
	accountRepo repository.AccountRepository
	teacherRepo repository.TeacherRepository
	studentRepo repository.StudentRepository
	logger      zerolog.Logger
}

func NewAccountService(
	accountRepo repository.AccountRepository,
	teacherRepo repository.TeacherRepository,
	studentRepo repository.StudentRepository,
	logger zerolog.Logger,
) AccountService {
	return &accountService{
		accountRepo: accountRepo,
		teacherRepo: teacherRepo,
		studentRepo: studentRepo,
		logger:      logger,
	}
}

func (s *accountService) CreateTeacher(ctx context.Context, req *models.CreateTeacherRequest) (*models.Teacher, error) {
	account := &models.Account{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Name:      req.Name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.ErrIntegrityConflict
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	teacher := &models.Teacher{
		ID:        uuid.New().String(),
		AccountID: account.ID,
		Name:      req.Name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.teacherRepo.Create(ctx, teacher); err != nil {
		// Roll the half-provisioned account back; the cascade takes any
		// partial teacher row with it.
		if delErr := s.accountRepo.Delete(ctx, account.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("account_id", account.ID).Msg("Failed to roll back orphaned account")
		}
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}

	s.logger.Info().
		Str("teacher_id", teacher.ID).
		Str("username", req.Username).
		Msg("Teacher created")

	return teacher, nil
}

func (s *accountService) CreateStudent(ctx context.Context, req *models.CreateStudentRequest) (*models.Student, error) {
	if !models.IsValidGrade(req.Grade) {
		return nil, models.ErrInvalidGrade
	}

	for _, teacherID := range req.TeacherIDs {
		exists, err := s.teacherRepo.Exists(ctx, teacherID)
		if err != nil {
			return nil, fmt.Errorf("failed to check teacher existence: %w", err)
		}
		if !exists {
			return nil, models.ErrNotFound
		}
	}

	account := &models.Account{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Name:      req.Name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.ErrIntegrityConflict
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	student := &models.Student{
		ID:         uuid.New().String(),
		AccountID:  account.ID,
		Name:       req.Name,
		Grade:      req.Grade,
		TeacherIDs: req.TeacherIDs,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		if delErr := s.accountRepo.Delete(ctx, account.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("account_id", account.ID).Msg("Failed to roll back orphaned account")
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.logger.Info().
		Str("student_id", student.ID).
		Str("username", req.Username).
		Int("grade", req.Grade).
		Msg("Student created")

	return student, nil
}

// ProvisionSuperuser creates a superuser account together with its
// teacher record. This is an explicit workflow step, not a side effect
// of account creation elsewhere.
func (s *accountService) ProvisionSuperuser(ctx context.Context, req *models.ProvisionSuperuserRequest) (*models.Account, error) {
	account := &models.Account{
		ID:          uuid.New().String(),
		Username:    req.Username,
		Email:       req.Email,
		Name:        req.Name,
		IsSuperuser: true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, models.ErrIntegrityConflict
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	teacher := &models.Teacher{
		ID:        uuid.New().String(),
		AccountID: account.ID,
		Name:      req.Name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.teacherRepo.Create(ctx, teacher); err != nil {
		if delErr := s.accountRepo.Delete(ctx, account.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("account_id", account.ID).Msg("Failed to roll back orphaned account")
		}
		return nil, fmt.Errorf("failed to create teacher record: %w", err)
	}

	s.logger.Info().
		Str("account_id", account.ID).
		Str("username", req.Username).
		Msg("Superuser provisioned")

	return account, nil
}

// DeleteTeacher removes the teacher and their account. Owned exams are
// orphaned (teacher reference cleared), not deleted.
func (s *accountService) DeleteTeacher(ctx context.Context, id string) error {
	teacher, err := s.teacherRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get teacher: %w", err)
	}
	if teacher == nil {
		return models.ErrNotFound
	}

	// Deleting the account cascades to the teacher row; the exams FK
	// sets their teacher reference to NULL.
	if err := s.accountRepo.Delete(ctx, teacher.AccountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info().
		Str("teacher_id", id).
		Msg("Teacher deleted, owned exams orphaned")

	return nil
}

// DeleteStudent removes the student, their account, and every
// dependent answer, result and ledger row.
func (s *accountService) DeleteStudent(ctx context.Context, id string) error {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return models.ErrNotFound
	}

	if err := s.accountRepo.Delete(ctx, student.AccountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info().
		Str("student_id", id).
		Msg("Student deleted with dependent records")

	return nil
}

func (s *accountService) ResolveRole(ctx context.Context, accountID string) (models.Role, error) {
	return s.accountRepo.ResolveRole(ctx, accountID)
}

func (s *accountService) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student == nil {
		return nil, models.ErrNotFound
	}

	return student, nil
}

func (s *accountService) ListStudents(ctx context.Context, role models.Role, page, limit int) (*models.StudentsResponse, error) {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	var (
		students []models.StudentWithStats
		total    int
		err      error
	)
	switch {
	case role.IsSuperuser():
		students, total, err = s.studentRepo.GetAll(ctx, limit, offset)
	case role.IsTeacher():
		students, total, err = s.studentRepo.GetByTeacher(ctx, role.TeacherID, limit, offset)
	default:
		return nil, models.ErrAccessDenied
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	return &models.StudentsResponse{Students: students, Total: total, Page: page, Limit: limit}, nil
}

func (s *accountService) ListTeachers(ctx context.Context, role models.Role, page, limit int) (*models.TeachersResponse, error) {
	if !role.IsSuperuser() {
		return nil, models.ErrAccessDenied
	}

	page, limit = normalizePage(page, limit)
	teachers, total, err := s.teacherRepo.GetAll(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}

	return &models.TeachersResponse{Teachers: teachers, Total: total, Page: page, Limit: limit}, nil
}
