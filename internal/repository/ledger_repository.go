package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
)

// LedgerRepository only reads; ledger rows are written exclusively by
// the scoring transaction in AnswerRepository.RecordScore.
type LedgerRepository interface {
	GetByStudent(ctx context.Context, studentID string) ([]models.LedgerEntry, error)
	GetByStudentAndExam(ctx context.Context, studentID, examID string) (*models.LedgerEntry, error)
	GetByTeacher(ctx context.Context, teacherID string) ([]models.LedgerEntry, error)
	GetAll(ctx context.Context) ([]models.LedgerEntry, error)
}

type ledgerRepository struct {
	*PostgresRepository
}

func NewLedgerRepository(db *sql.DB, logger zerolog.Logger) LedgerRepository {
	return &ledgerRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const ledgerSelect = `
	SELECT l.id, l.student_id, l.exam_id, l.subject, l.date, l.score, l.teacher_name, l.created_at, l.updated_at
	FROM student_ledger l
`

func (r *ledgerRepository) GetByStudent(ctx context.Context, studentID string) ([]models.LedgerEntry, error) {
	return r.queryEntries(ctx, ledgerSelect+`WHERE l.student_id = $1 ORDER BY l.date DESC`, studentID)
}

func (r *ledgerRepository) GetByStudentAndExam(ctx context.Context, studentID, examID string) (*models.LedgerEntry, error) {
	query := ledgerSelect + `WHERE l.student_id = $1 AND l.exam_id = $2`

	entry := &models.LedgerEntry{}
	err := r.db.QueryRowContext(ctx, query, studentID, examID).Scan(
		&entry.ID,
		&entry.StudentID,
		&entry.ExamID,
		&entry.Subject,
		&entry.Date,
		&entry.Score,
		&entry.TeacherName,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return entry, err
}

// GetByTeacher scopes entries to students in the teacher's set.
func (r *ledgerRepository) GetByTeacher(ctx context.Context, teacherID string) ([]models.LedgerEntry, error) {
	query := ledgerSelect + `
		JOIN student_teachers st ON st.student_id = l.student_id
		WHERE st.teacher_id = $1
		ORDER BY l.date DESC
	`
	return r.queryEntries(ctx, query, teacherID)
}

func (r *ledgerRepository) GetAll(ctx context.Context) ([]models.LedgerEntry, error) {
	return r.queryEntries(ctx, ledgerSelect+`ORDER BY l.date DESC`)
}

func (r *ledgerRepository) queryEntries(ctx context.Context, query string, args ...interface{}) ([]models.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.StudentID,
			&entry.ExamID,
			&entry.Subject,
			&entry.Date,
			&entry.Score,
			&entry.TeacherName,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
