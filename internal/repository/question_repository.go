package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	GetByExam(ctx context.Context, examID string) ([]models.Question, error)
	CountByExam(ctx context.Context, examID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type questionRepository struct {
	*PostgresRepository
}

func NewQuestionRepository(db *sql.DB, logger zerolog.Logger) QuestionRepository {
	return &questionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *questionRepository) Create(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO questions (id, exam_id, text, correct_answer, choices, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`

	return r.db.QueryRowContext(ctx, query,
		question.ID,
		question.ExamID,
		question.Text,
		question.CorrectAnswer,
		pq.Array(question.Choices),
		question.CreatedAt,
		question.UpdatedAt,
	).Scan(&question.Seq)
}

func (r *questionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	query := `
		SELECT id, exam_id, text, correct_answer, choices, seq, created_at, updated_at
		FROM questions
		WHERE id = $1
	`

	question := &models.Question{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&question.ID,
		&question.ExamID,
		&question.Text,
		&question.CorrectAnswer,
		pq.Array(&question.Choices),
		&question.Seq,
		&question.CreatedAt,
		&question.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return question, err
}

// GetByExam returns the exam's questions in insertion order.
func (r *questionRepository) GetByExam(ctx context.Context, examID string) ([]models.Question, error) {
	query := `
		SELECT id, exam_id, text, correct_answer, choices, seq, created_at, updated_at
		FROM questions
		WHERE exam_id = $1
		ORDER BY seq
	`

	rows, err := r.db.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var question models.Question
		err := rows.Scan(
			&question.ID,
			&question.ExamID,
			&question.Text,
			&question.CorrectAnswer,
			pq.Array(&question.Choices),
			&question.Seq,
			&question.CreatedAt,
			&question.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	return questions, nil
}

func (r *questionRepository) CountByExam(ctx context.Context, examID string) (int, error) {
	query := `SELECT COUNT(*) FROM questions WHERE exam_id = $1`
	var count int
	err := r.db.QueryRowContext(ctx, query, examID).Scan(&count)
	return count, err
}

func (r *questionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM questions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
