package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
)

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id string) (*models.Exam, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.ExamWithStats, int, error)
	GetByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.ExamWithStats, int, error)
	GetAccessible(ctx context.Context, studentID string, grade int, limit, offset int) ([]models.ExamWithStats, int, error)
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type examRepository struct {
	*PostgresRepository
}

func NewExamRepository(db *sql.DB, logger zerolog.Logger) ExamRepository {
	return &examRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *examRepository) Create(ctx context.Context, exam *models.Exam) error {
	query := `
		INSERT INTO exams (id, teacher_id, title, subject, description, grade,
			is_timed, start_at, end_at, duration_minutes, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		exam.ID,
		exam.TeacherID,
		exam.Title,
		exam.Subject,
		exam.Description,
		exam.Grade,
		exam.IsTimed,
		exam.StartAt,
		exam.EndAt,
		exam.DurationMinutes,
		exam.CreatedAt,
		exam.UpdatedAt,
	)

	return err
}

func (r *examRepository) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	query := `
		SELECT id, COALESCE(teacher_id::text, ''), title, subject, description, grade,
			is_timed, start_at, end_at, duration_minutes, created_at, updated_at
		FROM exams
		WHERE id = $1
	`

	exam := &models.Exam{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&exam.ID,
		&exam.TeacherID,
		&exam.Title,
		&exam.Subject,
		&exam.Description,
		&exam.Grade,
		&exam.IsTimed,
		&exam.StartAt,
		&exam.EndAt,
		&exam.DurationMinutes,
		&exam.CreatedAt,
		&exam.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return exam, err
}

const examWithStatsSelect = `
	SELECT
		e.id, COALESCE(e.teacher_id::text, ''), e.title, e.subject, e.description, e.grade,
		e.is_timed, e.start_at, e.end_at, e.duration_minutes, e.created_at, e.updated_at,
		COALESCE(t.name, '') as teacher_name,
		COUNT(DISTINCT q.id) as total_questions,
		COUNT(DISTINCT a.id) as total_answers
	FROM exams e
	LEFT JOIN teachers t ON t.id = e.teacher_id
	LEFT JOIN questions q ON q.exam_id = e.id
	LEFT JOIN student_answers a ON a.question_id = q.id
`

func (r *examRepository) GetAll(ctx context.Context, limit, offset int) ([]models.ExamWithStats, int, error) {
	countQuery := `SELECT COUNT(*) FROM exams`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := examWithStatsSelect + `
		GROUP BY e.id, t.name
		ORDER BY e.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanExamsWithStats(rows, total)
}

func (r *examRepository) GetByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.ExamWithStats, int, error) {
	countQuery := `SELECT COUNT(*) FROM exams WHERE teacher_id = $1`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, teacherID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := examWithStatsSelect + `
		WHERE e.teacher_id = $1
		GROUP BY e.id, t.name
		ORDER BY e.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, teacherID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanExamsWithStats(rows, total)
}

// GetAccessible applies the grade and teacher-set filter only. The
// timing window is deliberately not part of the query: it is an
// access-time decision, so a returned exam may still be currently
// un-takeable.
func (r *examRepository) GetAccessible(ctx context.Context, studentID string, grade int, limit, offset int) ([]models.ExamWithStats, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM exams e
		JOIN student_teachers st ON st.teacher_id = e.teacher_id AND st.student_id = $1
		WHERE e.grade = $2
	`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, studentID, grade).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := examWithStatsSelect + `
		JOIN student_teachers st ON st.teacher_id = e.teacher_id AND st.student_id = $1
		WHERE e.grade = $2
		GROUP BY e.id, t.name
		ORDER BY e.created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, studentID, grade, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanExamsWithStats(rows, total)
}

func scanExamsWithStats(rows *sql.Rows, total int) ([]models.ExamWithStats, int, error) {
	var exams []models.ExamWithStats
	for rows.Next() {
		var exam models.ExamWithStats
		err := rows.Scan(
			&exam.ID,
			&exam.TeacherID,
			&exam.Title,
			&exam.Subject,
			&exam.Description,
			&exam.Grade,
			&exam.IsTimed,
			&exam.StartAt,
			&exam.EndAt,
			&exam.DurationMinutes,
			&exam.CreatedAt,
			&exam.UpdatedAt,
			&exam.TeacherName,
			&exam.TotalQuestions,
			&exam.TotalAnswers,
		)
		if err != nil {
			return nil, 0, err
		}
		exams = append(exams, exam)
	}

	return exams, total, nil
}

func (r *examRepository) Update(ctx context.Context, exam *models.Exam) error {
	query := `
		UPDATE exams
		SET title = $1, subject = $2, description = $3, updated_at = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(ctx, query,
		exam.Title,
		exam.Subject,
		exam.Description,
		time.Now(),
		exam.ID,
	)

	return err
}

func (r *examRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM exams WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *examRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM exams WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
