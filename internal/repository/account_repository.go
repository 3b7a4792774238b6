package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/zsbati/exam-service/internal/models"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	Delete(ctx context.Context, id string) error
	ResolveRole(ctx context.Context, accountID string) (models.Role, error)
}

type accountRepository struct {
	*PostgresRepository
}

func NewAccountRepository(db *sql.DB, logger zerolog.Logger) AccountRepository {
	return &accountRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, username, email, name, is_superuser, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.Name,
		account.IsSuperuser,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, username, email, name, is_superuser, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.Name,
		&account.IsSuperuser,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return account, err
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, email, name, is_superuser, created_at, updated_at
		FROM accounts
		WHERE username = $1
	`

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.Name,
		&account.IsSuperuser,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return account, err
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// ResolveRole computes the tagged role for an account in a single
// query: superuser flag wins, then an attached teacher or student row.
func (r *accountRepository) ResolveRole(ctx context.Context, accountID string) (models.Role, error) {
	query := `
		SELECT a.is_superuser, COALESCE(t.id::text, ''), COALESCE(s.id::text, '')
		FROM accounts a
		LEFT JOIN teachers t ON t.account_id = a.id
		LEFT JOIN students s ON s.account_id = a.id
		WHERE a.id = $1
	`

	var isSuperuser bool
	var teacherID, studentID string
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&isSuperuser, &teacherID, &studentID)
	if err == sql.ErrNoRows {
		return models.Role{}, models.ErrNotFound
	}
	if err != nil {
		return models.Role{}, err
	}

	role := models.Role{AccountID: accountID}
	switch {
	case isSuperuser:
		role.Kind = models.RoleSuperuser
		role.TeacherID = teacherID
	case teacherID != "":
		role.Kind = models.RoleTeacher
		role.TeacherID = teacherID
	case studentID != "":
		role.Kind = models.RoleStudent
		role.StudentID = studentID
	default:
		role.Kind = models.RoleUnassigned
	}

	return role, nil
}
