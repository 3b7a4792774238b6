package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
)

type AnswerRepository interface {
	CreateBatch(ctx context.Context, answers []*models.StudentAnswer) error
	ExistsForExam(ctx context.Context, studentID, examID string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.StudentAnswer, error)
	GetByExam(ctx context.Context, examID string, limit, offset int) ([]models.StudentAnswerWithDetails, int, error)
	GetByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.StudentAnswerWithDetails, int, error)
	GetByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.StudentAnswerWithDetails, int, error)
	GetAll(ctx context.Context, limit, offset int) ([]models.StudentAnswerWithDetails, int, error)
	RecordScore(ctx context.Context, answerID string, score int, entry *models.LedgerEntry) error
	SumScoresByExam(ctx context.Context, examID string) ([]models.StudentScore, error)
}

type answerRepository struct {
	*PostgresRepository
}

func NewAnswerRepository(db *sql.DB, logger zerolog.Logger) AnswerRepository {
	return &answerRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

// CreateBatch writes the whole submission in one transaction. The
// UNIQUE(student_id, question_id) constraint breaks races between
// concurrent submissions: the loser rolls back with ErrAlreadySubmitted
// and no rows are left behind.
func (r *answerRepository) CreateBatch(ctx context.Context, answers []*models.StudentAnswer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO student_answers (id, student_id, question_id, answer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, answer := range answers {
		_, err = tx.ExecContext(ctx, query,
			answer.ID,
			answer.StudentID,
			answer.QuestionID,
			answer.Answer,
			answer.CreatedAt,
			answer.UpdatedAt,
		)
		if err != nil {
			if IsUniqueViolation(err) {
				return models.ErrAlreadySubmitted
			}
			return err
		}
	}

	return tx.Commit()
}

func (r *answerRepository) ExistsForExam(ctx context.Context, studentID, examID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM student_answers a
			JOIN questions q ON q.id = a.question_id
			WHERE a.student_id = $1 AND q.exam_id = $2
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, studentID, examID).Scan(&exists)
	return exists, err
}

func (r *answerRepository) GetByID(ctx context.Context, id string) (*models.StudentAnswer, error) {
	query := `
		SELECT id, student_id, question_id, answer, score, created_at, updated_at
		FROM student_answers
		WHERE id = $1
	`

	answer := &models.StudentAnswer{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&answer.ID,
		&answer.StudentID,
		&answer.QuestionID,
		&answer.Answer,
		&answer.Score,
		&answer.CreatedAt,
		&answer.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return answer, err
}

const answerDetailsSelect = `
	SELECT
		a.id, a.student_id, a.question_id, a.answer, a.score, a.created_at, a.updated_at,
		s.name as student_name,
		q.text as question_text,
		e.id as exam_id,
		e.title as exam_title
	FROM student_answers a
	JOIN students s ON s.id = a.student_id
	JOIN questions q ON q.id = a.question_id
	JOIN exams e ON e.id = q.exam_id
`

func (r *answerRepository) GetByExam(ctx context.Context, examID string, limit, offset int) ([]models.StudentAnswerWithDetails, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM student_answers a
		JOIN questions q ON q.id = a.question_id
		WHERE q.exam_id = $1
	`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, examID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := answerDetailsSelect + `
		WHERE e.id = $1
		ORDER BY s.name, q.seq
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, examID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanAnswerDetails(rows, total)
}

func (r *answerRepository) GetByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.StudentAnswerWithDetails, int, error) {
	countQuery := `SELECT COUNT(*) FROM student_answers WHERE student_id = $1`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, studentID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := answerDetailsSelect + `
		WHERE a.student_id = $1
		ORDER BY a.created_at DESC, q.seq
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, studentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanAnswerDetails(rows, total)
}

func (r *answerRepository) GetByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]models.StudentAnswerWithDetails, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM student_answers a
		JOIN questions q ON q.id = a.question_id
		JOIN exams e ON e.id = q.exam_id
		WHERE e.teacher_id = $1
	`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, teacherID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := answerDetailsSelect + `
		WHERE e.teacher_id = $1
		ORDER BY a.created_at DESC, q.seq
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, teacherID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanAnswerDetails(rows, total)
}

func (r *answerRepository) GetAll(ctx context.Context, limit, offset int) ([]models.StudentAnswerWithDetails, int, error) {
	countQuery := `SELECT COUNT(*) FROM student_answers`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := answerDetailsSelect + `
		ORDER BY a.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return scanAnswerDetails(rows, total)
}

func scanAnswerDetails(rows *sql.Rows, total int) ([]models.StudentAnswerWithDetails, int, error) {
	var answers []models.StudentAnswerWithDetails
	for rows.Next() {
		var answer models.StudentAnswerWithDetails
		err := rows.Scan(
			&answer.ID,
			&answer.StudentID,
			&answer.QuestionID,
			&answer.Answer,
			&answer.Score,
			&answer.CreatedAt,
			&answer.UpdatedAt,
			&answer.StudentName,
			&answer.QuestionText,
			&answer.ExamID,
			&answer.ExamTitle,
		)
		if err != nil {
			return nil, 0, err
		}
		answers = append(answers, answer)
	}

	return answers, total, nil
}

// RecordScore sets the answer's score and upserts the ledger row for
// (student, exam) in a single transaction. The ledger score is the
// student's running total for the exam, recomputed inside the
// transaction so re-grading overwrites rather than accumulates. The ON
// CONFLICT clause against the UNIQUE(student_id, exam_id) constraint is
// the get-or-create-then-update primitive: a concurrent writer can
// never leave two ledger rows behind.
func (r *answerRepository) RecordScore(ctx context.Context, answerID string, score int, entry *models.LedgerEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE student_answers SET score = $1, updated_at = $2 WHERE id = $3`,
		score, time.Now(), answerID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	var total int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(a.score), 0)
		FROM student_answers a
		JOIN questions q ON q.id = a.question_id
		WHERE a.student_id = $1 AND q.exam_id = $2
	`, entry.StudentID, entry.ExamID).Scan(&total)
	if err != nil {
		return err
	}

	upsert := `
		INSERT INTO student_ledger (id, student_id, exam_id, subject, date, score, teacher_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (student_id, exam_id) DO UPDATE
		SET score = EXCLUDED.score,
			date = EXCLUDED.date,
			teacher_name = EXCLUDED.teacher_name,
			updated_at = EXCLUDED.updated_at
	`

	_, err = tx.ExecContext(ctx, upsert,
		uuid.New().String(),
		entry.StudentID,
		entry.ExamID,
		entry.Subject,
		entry.Date,
		total,
		entry.TeacherName,
		time.Now(),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// SumScoresByExam aggregates per student across the exam's questions.
// Ungraded answers contribute zero; the graded/answered counts let the
// caller tell partial grading apart.
func (r *answerRepository) SumScoresByExam(ctx context.Context, examID string) ([]models.StudentScore, error) {
	query := `
		SELECT
			a.student_id,
			COALESCE(SUM(a.score), 0) as total,
			COUNT(a.id) as answered,
			COUNT(a.score) as graded
		FROM student_answers a
		JOIN questions q ON q.id = a.question_id
		WHERE q.exam_id = $1
		GROUP BY a.student_id
		ORDER BY a.student_id
	`

	rows, err := r.db.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.StudentScore
	for rows.Next() {
		var score models.StudentScore
		err := rows.Scan(&score.StudentID, &score.Total, &score.Answered, &score.Graded)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}

	return scores, nil
}
