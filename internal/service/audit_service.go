package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/repository"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

// maxAuditDescription caps the free-text summary stored per entry.
const maxAuditDescription = 2000

// AuditLogService maintains the append-only ticket audit trail. Writes are
// fail-fast: a failed append propagates to the caller so the enclosing
// transaction rolls the primary mutation back with it.
type AuditLogService struct {
	logs    repository.AuditLogRepository
	tickets repository.TicketRepository
	logger  *zap.Logger
}

// AuditLogDependencies bundles repositories for the audit service.
type AuditLogDependencies struct {
	AuditLogRepo repository.AuditLogRepository
	TicketRepo   repository.TicketRepository
	Logger       *zap.Logger
}

// NewAuditLogService creates the service.
func NewAuditLogService(deps AuditLogDependencies) *AuditLogService {
	return &AuditLogService{
		logs:    deps.AuditLogRepo,
		tickets: deps.TicketRepo,
		logger:  deps.Logger,
	}
}

// LogStatusChange appends a STATUS_CHANGE entry for the ticket.
func (s *AuditLogService) LogStatusChange(ctx context.Context, ticket *domain.Ticket, actor *domain.Account, oldStatus, newStatus domain.TicketStatus) error {
	entry := &domain.AuditLogEntry{
		TicketID:    ticket.ID,
		ChangedByID: actor.ID,
		LogType:     domain.AuditLogStatusChange,
		Description: fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus),
		Timestamp:   time.Now(),
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return err
	}
	s.logger.Info("audit log created for status change",
		zap.String("ticket_id", ticket.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(newStatus)),
		zap.String("changed_by", actor.Username))
	return nil
}

// LogCommentAdded appends a COMMENT_ADDED entry for the ticket.
func (s *AuditLogService) LogCommentAdded(ctx context.Context, ticket *domain.Ticket, actor *domain.Account, commentText string) error {
	entry := &domain.AuditLogEntry{
		TicketID:    ticket.ID,
		ChangedByID: actor.ID,
		LogType:     domain.AuditLogCommentAdded,
		Description: truncateDescription("Comment added: " + commentText),
		Timestamp:   time.Now(),
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return err
	}
	s.logger.Info("audit log created for comment",
		zap.String("ticket_id", ticket.ID),
		zap.String("changed_by", actor.Username))
	return nil
}

// GetLogsForTicket returns the ticket's audit entries, oldest first.
func (s *AuditLogService) GetLogsForTicket(ctx context.Context, ticketID string, page domain.PageRequest) (domain.Page[domain.AuditLogEntry], error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Page[domain.AuditLogEntry]{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return domain.Page[domain.AuditLogEntry]{}, err
	}
	entries, total, err := s.logs.ListByTicket(ctx, ticketID, page)
	if err != nil {
		return domain.Page[domain.AuditLogEntry]{}, err
	}
	return domain.NewPage(entries, page, total), nil
}

// GetAllLogs returns audit entries across all tickets.
func (s *AuditLogService) GetAllLogs(ctx context.Context, page domain.PageRequest) (domain.Page[domain.AuditLogEntry], error) {
	entries, total, err := s.logs.ListAll(ctx, page)
	if err != nil {
		return domain.Page[domain.AuditLogEntry]{}, err
	}
	return domain.NewPage(entries, page, total), nil
}

// DeleteLogsForTicket removes every entry for the ticket. Called only by the
// ticket deletion cascade, before the ticket row itself is removed.
func (s *AuditLogService) DeleteLogsForTicket(ctx context.Context, ticketID string) error {
	return s.logs.DeleteByTicket(ctx, ticketID)
}

func truncateDescription(text string) string {
	return truncateToRuneBoundary(text, maxAuditDescription)
}
