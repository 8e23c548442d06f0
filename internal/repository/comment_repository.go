package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/techdesk/helpdesk-service/internal/domain"
)

// CommentRepository manages ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID string, page domain.PageRequest) ([]domain.Comment, int64, error)
	ListAllByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
	DeleteByID(ctx context.Context, id string) error
}

type commentRepository struct {
	db Querier
}

// NewCommentRepository builds repository.
func NewCommentRepository(db Querier) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, author_id, body)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return querier(ctx, r.db).QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		comment.Text,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string, page domain.PageRequest) ([]domain.Comment, int64, error) {
	db := querier(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE ticket_id=$1`, ticketID).Scan(&total); err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	const query = `
        SELECT id, ticket_id, author_id, body, created_at
        FROM comments WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC
        LIMIT $2 OFFSET $3`
	rows, err := db.Query(ctx, query, ticketID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	comments, err := scanComments(rows)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// ListAllByTicket returns every comment on a ticket, oldest first. Used by
// the deletion cascade, which must remove each comment before the ticket row.
func (r *commentRepository) ListAllByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, author_id, body, created_at
        FROM comments WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := querier(ctx, r.db).Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComments(rows)
}

func (r *commentRepository) DeleteByID(ctx context.Context, id string) error {
	cmd, err := querier(ctx, r.db).Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanComments(rows pgx.Rows) ([]domain.Comment, error) {
	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.Text,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
