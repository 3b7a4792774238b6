package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
)

type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (*models.Student, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.StudentWithStats, int, error)
	GetByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.StudentWithStats, int, error)
	SetTeachers(ctx context.Context, studentID string, teacherIDs []string) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type studentRepository struct {
	*PostgresRepository
}

func NewStudentRepository(db *sql.DB, logger zerolog.Logger) StudentRepository {
	return &studentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO students (id, account_id, name, grade, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.ExecContext(ctx, query,
		student.ID,
		student.AccountID,
		student.Name,
		student.Grade,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, teacherID := range student.TeacherIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO student_teachers (student_id, teacher_id) VALUES ($1, $2)`,
			student.ID, teacherID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	query := `
		SELECT
			s.id, s.account_id, s.name, s.grade, s.created_at, s.updated_at,
			COALESCE(ARRAY_AGG(st.teacher_id) FILTER (WHERE st.teacher_id IS NOT NULL), '{}')
		FROM students s
		LEFT JOIN student_teachers st ON st.student_id = s.id
		WHERE s.id = $1
		GROUP BY s.id
	`

	student := &models.Student{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&student.ID,
		&student.AccountID,
		&student.Name,
		&student.Grade,
		&student.CreatedAt,
		&student.UpdatedAt,
		pq.Array(&student.TeacherIDs),
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return student, err
}

func (r *studentRepository) GetAll(ctx context.Context, limit, offset int) ([]models.StudentWithStats, int, error) {
	countQuery := `SELECT COUNT(*) FROM students`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			s.id, s.account_id, s.name, s.grade, s.created_at, s.updated_at,
			COUNT(a.id) as total_answers,
			COUNT(a.score) as graded_answers
		FROM students s
		LEFT JOIN student_answers a ON a.student_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanStudentsWithStats(rows, total)
}

func (r *studentRepository) GetByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.StudentWithStats, int, error) {
	countQuery := `SELECT COUNT(*) FROM student_teachers WHERE teacher_id = $1`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, teacherID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			s.id, s.account_id, s.name, s.grade, s.created_at, s.updated_at,
			COUNT(a.id) as total_answers,
			COUNT(a.score) as graded_answers
		FROM students s
		JOIN student_teachers st ON st.student_id = s.id AND st.teacher_id = $1
		LEFT JOIN student_answers a ON a.student_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, teacherID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanStudentsWithStats(rows, total)
}

func scanStudentsWithStats(rows *sql.Rows, total int) ([]models.StudentWithStats, int, error) {
	var students []models.StudentWithStats
	for rows.Next() {
		var student models.StudentWithStats
		err := rows.Scan(
			&student.ID,
			&student.AccountID,
			&student.Name,
			&student.Grade,
			&student.CreatedAt,
			&student.UpdatedAt,
			&student.TotalAnswers,
			&student.GradedAnswers,
		)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, student)
	}

	return students, total, nil
}

func (r *studentRepository) SetTeachers(ctx context.Context, studentID string, teacherIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM student_teachers WHERE student_id = $1`, studentID)
	if err != nil {
		return err
	}

	for _, teacherID := range teacherIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO student_teachers (student_id, teacher_id) VALUES ($1, $2)`,
			studentID, teacherID,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *studentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM students WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *studentRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
