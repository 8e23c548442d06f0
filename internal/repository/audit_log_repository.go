package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/techdesk/helpdesk-service/internal/domain"
)

// AuditLogRepository stores the append-only ticket audit trail. Entries are
// never updated; the only delete is the per-ticket purge during cascade.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditLogEntry) error
	ListByTicket(ctx context.Context, ticketID string, page domain.PageRequest) ([]domain.AuditLogEntry, int64, error)
	ListAll(ctx context.Context, page domain.PageRequest) ([]domain.AuditLogEntry, int64, error)
	DeleteByTicket(ctx context.Context, ticketID string) error
}

type auditLogRepository struct {
	db Querier
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(db Querier) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO ticket_audit_logs (ticket_id, changed_by, log_type, description, logged_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return querier(ctx, r.db).QueryRow(ctx, query,
		entry.TicketID,
		entry.ChangedByID,
		entry.LogType,
		entry.Description,
		entry.Timestamp,
	).Scan(&entry.ID)
}

func (r *auditLogRepository) ListByTicket(ctx context.Context, ticketID string, page domain.PageRequest) ([]domain.AuditLogEntry, int64, error) {
	const where = `WHERE ticket_id=$1`
	return r.list(ctx, where, []any{ticketID}, page)
}

func (r *auditLogRepository) ListAll(ctx context.Context, page domain.PageRequest) ([]domain.AuditLogEntry, int64, error) {
	return r.list(ctx, "", nil, page)
}

func (r *auditLogRepository) DeleteByTicket(ctx context.Context, ticketID string) error {
	_, err := querier(ctx, r.db).Exec(ctx, `DELETE FROM ticket_audit_logs WHERE ticket_id=$1`, ticketID)
	return err
}

func (r *auditLogRepository) list(ctx context.Context, where string, args []any, page domain.PageRequest) ([]domain.AuditLogEntry, int64, error) {
	db := querier(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM ticket_audit_logs `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	query := fmt.Sprintf(`
        SELECT id, ticket_id, changed_by, log_type, description, logged_at
        FROM ticket_audit_logs %s
        ORDER BY logged_at ASC, id ASC LIMIT %d OFFSET %d`, where, page.Size, page.Offset())

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries, err := scanAuditLogs(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func scanAuditLogs(rows pgx.Rows) ([]domain.AuditLogEntry, error) {
	var result []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.ChangedByID,
			&entry.LogType,
			&entry.Description,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
