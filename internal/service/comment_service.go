package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/events"
	"github.com/techdesk/helpdesk-service/internal/repository"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

// CommentService manages the comment thread on tickets. Only IT support
// agents may author comments; every addition is audited in the same
// transaction as the comment write.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	accounts   repository.AccountRepository
	audit      *AuditLogService
	txm        repository.TxManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CommentDependencies bundles collaborators for the comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	AccountRepo repository.AccountRepository
	AuditLogs   *AuditLogService
	TxManager   repository.TxManager
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewCommentService creates the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		accounts:   deps.AccountRepo,
		audit:      deps.AuditLogs,
		txm:        deps.TxManager,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// AddCommentToTicket appends a comment authored by an IT support agent and
// records the matching COMMENT_ADDED audit entry atomically.
func (s *CommentService) AddCommentToTicket(ctx context.Context, ticketID, text, supportUserID string) (*domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("comment text required", nil)
	}

	supportUser, err := s.accounts.GetByID(ctx, supportUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("support user", map[string]any{"user_id": supportUserID})
		}
		return nil, err
	}
	switch supportUser.Role {
	case domain.RoleITSupport:
	case domain.RoleEmployee:
		return nil, apperrors.NewForbidden("only IT support agents can add comments")
	default:
		return nil, apperrors.NewForbidden("only IT support agents can add comments")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: supportUser.ID,
		Text:     text,
	}
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
		return s.audit.LogCommentAdded(ctx, ticket, supportUser, comment.Text)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comment added to ticket",
		zap.String("ticket_id", ticket.ID),
		zap.String("comment_id", comment.ID),
		zap.String("author", supportUser.Username))
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		ActorID:  supportUser.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    supportUser.ID,
			BodyPreview: stringPreview(comment.Text, 120),
		},
	})
	return comment, nil
}

// GetCommentsForTicket returns the ticket's comments in creation order.
func (s *CommentService) GetCommentsForTicket(ctx context.Context, ticketID string, page domain.PageRequest) (domain.Page[domain.Comment], error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Page[domain.Comment]{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return domain.Page[domain.Comment]{}, err
	}
	comments, total, err := s.comments.ListByTicket(ctx, ticketID, page)
	if err != nil {
		return domain.Page[domain.Comment]{}, err
	}
	return domain.NewPage(comments, page, total), nil
}

// DeleteComment removes a comment unconditionally by id. Used internally by
// the ticket deletion cascade.
func (s *CommentService) DeleteComment(ctx context.Context, commentID string) error {
	if err := s.comments.DeleteByID(ctx, commentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return err
	}
	return nil
}

func (s *CommentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return truncateToRuneBoundary(body, max)
	}
	return truncateToRuneBoundary(body, max-3) + "..."
}

// truncateToRuneBoundary cuts s to at most max bytes without splitting a
// multibyte rune.
func truncateToRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
