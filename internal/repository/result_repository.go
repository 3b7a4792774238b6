package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
)

type ResultRepository interface {
	Upsert(ctx context.Context, studentID, examID string, totalScore int) error
	GetByStudent(ctx context.Context, studentID string) ([]models.ExamResult, error)
	GetByExam(ctx context.Context, examID string) ([]models.ExamResult, error)
	GetByTeacher(ctx context.Context, teacherID string) ([]models.ExamResult, error)
	GetAll(ctx context.Context) ([]models.ExamResult, error)
}

type resultRepository struct {
	*PostgresRepository
}

func NewResultRepository(db *sql.DB, logger zerolog.Logger) ResultRepository {
	return &resultRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *resultRepository) Upsert(ctx context.Context, studentID, examID string, totalScore int) error {
	query := `
		INSERT INTO exam_results (id, student_id, exam_id, total_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (student_id, exam_id) DO UPDATE
		SET total_score = EXCLUDED.total_score,
			updated_at = EXCLUDED.updated_at
	`

	// The ON CONFLICT clause absorbs the (student_id, exam_id) race;
	// either branch leaves exactly one row.
	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(),
		studentID,
		examID,
		totalScore,
		time.Now(),
	)
	return err
}

const resultSelect = `
	SELECT r.id, r.student_id, r.exam_id, r.total_score, r.created_at, r.updated_at
	FROM exam_results r
`

func (r *resultRepository) GetByStudent(ctx context.Context, studentID string) ([]models.ExamResult, error) {
	return r.queryResults(ctx, resultSelect+`WHERE r.student_id = $1 ORDER BY r.updated_at DESC`, studentID)
}

func (r *resultRepository) GetByExam(ctx context.Context, examID string) ([]models.ExamResult, error) {
	return r.queryResults(ctx, resultSelect+`WHERE r.exam_id = $1 ORDER BY r.total_score DESC`, examID)
}

func (r *resultRepository) GetByTeacher(ctx context.Context, teacherID string) ([]models.ExamResult, error) {
	query := resultSelect + `
		JOIN exams e ON e.id = r.exam_id
		WHERE e.teacher_id = $1
		ORDER BY r.updated_at DESC
	`
	return r.queryResults(ctx, query, teacherID)
}

func (r *resultRepository) GetAll(ctx context.Context) ([]models.ExamResult, error) {
	return r.queryResults(ctx, resultSelect+`ORDER BY r.updated_at DESC`)
}

func (r *resultRepository) queryResults(ctx context.Context, query string, args ...interface{}) ([]models.ExamResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.ExamResult
	for rows.Next() {
		var result models.ExamResult
		err := rows.Scan(
			&result.ID,
			&result.StudentID,
			&result.ExamID,
			&result.TotalScore,
			&result.CreatedAt,
			&result.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}
