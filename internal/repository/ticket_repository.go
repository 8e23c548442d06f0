package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/techdesk/helpdesk-service/internal/domain"
)

// TicketSearchFilter captures the optional conjunctive search criteria.
type TicketSearchFilter struct {
	ID     *string
	Status *domain.TicketStatus
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
	ListByCreator(ctx context.Context, creatorID string, page domain.PageRequest) ([]domain.Ticket, int64, error)
	ListAll(ctx context.Context, page domain.PageRequest) ([]domain.Ticket, int64, error)
	Search(ctx context.Context, filter TicketSearchFilter, page domain.PageRequest) ([]domain.Ticket, int64, error)
	CountOpenByAssignee(ctx context.Context, assigneeID string) (int, error)
}

type ticketRepository struct {
	db Querier
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db Querier) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, title, description, status, priority, category,
               created_by, assigned_to, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, category, created_by, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return querier(ctx, r.db).QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.CreatedByID,
		ticket.AssignedToID,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, category=$5,
            assigned_to=$6, updated_at=$7
        WHERE id=$8`
	cmd, err := querier(ctx, r.db).Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.AssignedToID,
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)

	var ticket domain.Ticket
	if err := querier(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.CreatedByID,
		&ticket.AssignedToID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := querier(ctx, r.db).Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListByCreator(ctx context.Context, creatorID string, page domain.PageRequest) ([]domain.Ticket, int64, error) {
	id := creatorID
	return r.list(ctx, TicketSearchFilter{}, &id, page)
}

func (r *ticketRepository) ListAll(ctx context.Context, page domain.PageRequest) ([]domain.Ticket, int64, error) {
	return r.list(ctx, TicketSearchFilter{}, nil, page)
}

func (r *ticketRepository) Search(ctx context.Context, filter TicketSearchFilter, page domain.PageRequest) ([]domain.Ticket, int64, error) {
	return r.list(ctx, filter, nil, page)
}

// CountOpenByAssignee returns the agent's open workload: assigned tickets not
// yet RESOLVED or CLOSED.
func (r *ticketRepository) CountOpenByAssignee(ctx context.Context, assigneeID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM tickets
        WHERE assigned_to=$1 AND status NOT IN ($2, $3)`
	var count int
	err := querier(ctx, r.db).QueryRow(ctx, query, assigneeID,
		domain.TicketStatusResolved, domain.TicketStatusClosed).Scan(&count)
	return count, err
}

func (r *ticketRepository) list(ctx context.Context, filter TicketSearchFilter, creatorID *string, page domain.PageRequest) ([]domain.Ticket, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if creatorID != nil {
		args = append(args, *creatorID)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.ID != nil {
		args = append(args, *filter.ID)
		clauses = append(clauses, fmt.Sprintf("id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")
	db := querier(ctx, r.db)

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, where)
	if err := db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, page.Size, page.Offset())

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.Category,
			&ticket.CreatedByID,
			&ticket.AssignedToID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
