package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
)

type TeacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	GetByID(ctx context.Context, id string) (*models.Teacher, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.TeacherWithStats, int, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type teacherRepository struct {
	*PostgresRepository
}

func NewTeacherRepository(db *sql.DB, logger zerolog.Logger) TeacherRepository {
	return &teacherRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *teacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	query := `
		INSERT INTO teachers (id, account_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		teacher.ID,
		teacher.AccountID,
		teacher.Name,
		teacher.CreatedAt,
		teacher.UpdatedAt,
	)

	return err
}

func (r *teacherRepository) GetByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := `
		SELECT id, account_id, name, created_at, updated_at
		FROM teachers
		WHERE id = $1
	`

	teacher := &models.Teacher{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&teacher.ID,
		&teacher.AccountID,
		&teacher.Name,
		&teacher.CreatedAt,
		&teacher.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return teacher, err
}

func (r *teacherRepository) GetAll(ctx context.Context, limit, offset int) ([]models.TeacherWithStats, int, error) {
	countQuery := `SELECT COUNT(*) FROM teachers`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			t.id, t.account_id, t.name, t.created_at, t.updated_at,
			COUNT(DISTINCT e.id) as total_exams,
			COUNT(DISTINCT st.student_id) as total_students
		FROM teachers t
		LEFT JOIN exams e ON e.teacher_id = t.id
		LEFT JOIN student_teachers st ON st.teacher_id = t.id
		GROUP BY t.id
		ORDER BY t.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var teachers []models.TeacherWithStats
	for rows.Next() {
		var teacher models.TeacherWithStats
		err := rows.Scan(
			&teacher.ID,
			&teacher.AccountID,
			&teacher.Name,
			&teacher.CreatedAt,
			&teacher.UpdatedAt,
			&teacher.TotalExams,
			&teacher.TotalStudents,
		)
		if err != nil {
			return nil, 0, err
		}
		teachers = append(teachers, teacher)
	}

	return teachers, total, nil
}

func (r *teacherRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM teachers WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *teacherRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM teachers WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
