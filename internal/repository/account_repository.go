package repository

import (
	"context"

	"github.com/techdesk/helpdesk-service/internal/domain"
)

// AccountRepository is the user directory: lookup of accounts by id,
// username, or role.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error)
}

type accountRepository struct {
	db Querier
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(db Querier) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (username, password_hash, role)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return querier(ctx, r.db).QueryRow(ctx, query,
		account.Username,
		account.PasswordHash,
		account.Role,
	).Scan(&account.ID, &account.CreatedAt)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `
        SELECT id, username, password_hash, role, created_at
        FROM accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	const query = `
        SELECT id, username, password_hash, role, created_at
        FROM accounts WHERE username=$1`
	return r.fetchSingle(ctx, query, username)
}

// ListByRole returns accounts in creation order so that assignment
// tie-breaking stays deterministic across calls.
func (r *accountRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	const query = `
        SELECT id, username, password_hash, role, created_at
        FROM accounts WHERE role=$1 ORDER BY created_at ASC, id ASC`

	rows, err := querier(ctx, r.db).Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.Username,
			&account.PasswordHash,
			&account.Role,
			&account.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := querier(ctx, r.db).QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Role,
		&account.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
