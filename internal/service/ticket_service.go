package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/events"
	"github.com/techdesk/helpdesk-service/internal/repository"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

const (
	maxTicketTitle       = 100
	maxTicketDescription = 2000
)

// TicketService coordinates the ticket lifecycle: creation with automatic
// assignment, role-gated status transitions, employee self-edits, cascading
// deletion, and search. Every mutation that produces an audit entry runs the
// entity write and the audit append in one transaction.
type TicketService struct {
	tickets    repository.TicketRepository
	accounts   repository.AccountRepository
	comments   repository.CommentRepository
	commentSvc *CommentService
	audit      *AuditLogService
	assigner   *AssignmentService
	txm        repository.TxManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	AccountRepo repository.AccountRepository
	CommentRepo repository.CommentRepository
	Comments    *CommentService
	AuditLogs   *AuditLogService
	Assigner    *AssignmentService
	TxManager   repository.TxManager
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes the ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
}

// TicketUpdateInput describes the fields an employee may overwrite while the
// ticket is still NEW.
type TicketUpdateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.TicketCategory
}

// TicketWithComments pairs a ticket with its comment thread for responses.
type TicketWithComments struct {
	Ticket   domain.Ticket
	Comments []domain.Comment
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		accounts:   deps.AccountRepo,
		comments:   deps.CommentRepo,
		commentSvc: deps.Comments,
		audit:      deps.AuditLogs,
		assigner:   deps.Assigner,
		txm:        deps.TxManager,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateTicket builds a NEW ticket for the employee and routes it to the
// least loaded support agent. Assignment is mandatory: when no agent exists
// the whole creation fails and nothing is persisted.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput, employeeID string) (*domain.Ticket, error) {
	if err := validateTicketInput(input.Title, input.Description, input.Priority, input.Category); err != nil {
		return nil, err
	}

	employee, err := s.accounts.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employee_id": employeeID})
		}
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusNew,
		Priority:    input.Priority,
		Category:    input.Category,
		CreatedByID: employee.ID,
	}

	var agent *domain.Account
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		selected, err := s.assigner.AssignTicket(ctx, ticket)
		if err != nil {
			return err
		}
		agent = selected
		ticket.AssignedToID = &agent.ID
		return s.tickets.Create(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("created_by", employee.Username),
		zap.String("assigned_to", agent.Username))
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  employee.ID,
		Payload: events.TicketCreatedPayload{
			Title:        ticket.Title,
			Priority:     ticket.Priority,
			Category:     ticket.Category,
			AssignedToID: ticket.AssignedToID,
		},
	})
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  employee.ID,
		Payload:  events.TicketAssignedPayload{AssignedToID: agent.ID},
	})
	return ticket, nil
}

// GetTicketsForEmployee lists tickets created by the employee, newest first,
// with their comment threads embedded.
func (s *TicketService) GetTicketsForEmployee(ctx context.Context, employeeID string, page domain.PageRequest) (domain.Page[TicketWithComments], error) {
	tickets, total, err := s.tickets.ListByCreator(ctx, employeeID, page)
	if err != nil {
		return domain.Page[TicketWithComments]{}, err
	}
	items, err := s.withComments(ctx, tickets)
	if err != nil {
		return domain.Page[TicketWithComments]{}, err
	}
	return domain.NewPage(items, page, total), nil
}

// GetTicketByIDForEmployee fetches a single ticket, enforcing that the caller
// is its creator.
func (s *TicketService) GetTicketByIDForEmployee(ctx context.Context, ticketID, employeeID string) (*TicketWithComments, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatedByID != employeeID {
		return nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.comments.ListAllByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &TicketWithComments{Ticket: *ticket, Comments: comments}, nil
}

// GetAllTickets lists every ticket with comments embedded. Role gating for
// this listing is enforced at the HTTP boundary.
func (s *TicketService) GetAllTickets(ctx context.Context, page domain.PageRequest) (domain.Page[TicketWithComments], error) {
	tickets, total, err := s.tickets.ListAll(ctx, page)
	if err != nil {
		return domain.Page[TicketWithComments]{}, err
	}
	items, err := s.withComments(ctx, tickets)
	if err != nil {
		return domain.Page[TicketWithComments]{}, err
	}
	return domain.NewPage(items, page, total), nil
}

// UpdateTicketStatus sets a new status on behalf of an IT support agent and
// appends the STATUS_CHANGE audit entry in the same transaction. The call is
// deliberately not idempotent: re-applying the current status still records a
// fresh audit entry.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, ticketID, supportUserID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
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
		return nil, apperrors.NewForbidden("only IT support can update ticket status")
	default:
		return nil, apperrors.NewForbidden("only IT support can update ticket status")
	}

	var ticket *domain.Ticket
	var oldStatus domain.TicketStatus
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.getTicket(ctx, ticketID)
		if err != nil {
			return err
		}
		ticket = current
		oldStatus = ticket.Status
		now := time.Now()
		ticket.Status = newStatus
		ticket.UpdatedAt = &now
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return err
		}
		return s.audit.LogStatusChange(ctx, ticket, supportUser, oldStatus, newStatus)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket status updated",
		zap.String("ticket_id", ticket.ID),
		zap.String("old_status", string(oldStatus)),
		zap.String("new_status", string(newStatus)),
		zap.String("updated_by", supportUser.Username))
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  supportUser.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})
	return ticket, nil
}

// UpdateTicketByEmployee overwrites title, description, priority, and
// category while the ticket is still NEW. Only the creator may edit.
func (s *TicketService) UpdateTicketByEmployee(ctx context.Context, ticketID, employeeID string, input TicketUpdateInput) (*domain.Ticket, error) {
	if err := validateTicketInput(input.Title, input.Description, input.Priority, input.Category); err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatedByID != employeeID {
		return nil, apperrors.NewForbidden("employee is not the creator of this ticket")
	}
	if ticket.Status != domain.TicketStatusNew {
		return nil, apperrors.NewValidationError("ticket can only be updated if its status is NEW", nil)
	}

	now := time.Now()
	ticket.Title = strings.TrimSpace(input.Title)
	ticket.Description = strings.TrimSpace(input.Description)
	ticket.Priority = input.Priority
	ticket.Category = input.Category
	ticket.UpdatedAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Info("ticket updated by employee",
		zap.String("ticket_id", ticket.ID),
		zap.String("employee_id", employeeID))
	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  employeeID,
		Payload: events.TicketUpdatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Category: ticket.Category,
		},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket after authorization. IT support may delete
// any ticket; an employee may delete only their own and never while it is
// IN_PROGRESS. Comments are deleted first, then audit entries, then the
// ticket row (referential-integrity ordering), all in one transaction.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID, userID string) error {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	user, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return err
	}

	switch user.Role {
	case domain.RoleITSupport:
	case domain.RoleEmployee:
		if ticket.CreatedByID != user.ID {
			return apperrors.NewForbidden("employee is not the creator of this ticket")
		}
		if ticket.Status == domain.TicketStatusInProgress {
			return apperrors.NewValidationError("cannot delete a ticket that is in progress", nil)
		}
	default:
		return apperrors.NewForbidden("unknown role")
	}

	var deletedComments int
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		comments, err := s.comments.ListAllByTicket(ctx, ticket.ID)
		if err != nil {
			return err
		}
		for _, comment := range comments {
			if err := s.commentSvc.DeleteComment(ctx, comment.ID); err != nil {
				return err
			}
		}
		deletedComments = len(comments)
		if err := s.audit.DeleteLogsForTicket(ctx, ticket.ID); err != nil {
			return err
		}
		return s.tickets.Delete(ctx, ticket.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("ticket deleted",
		zap.String("ticket_id", ticket.ID),
		zap.String("deleted_by", user.Username),
		zap.Int("deleted_comments", deletedComments))
	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		ActorID:  user.ID,
		Payload:  events.TicketDeletedPayload{DeletedComments: deletedComments},
	})
	return nil
}

// SearchTickets filters by optional ticket id and status text, combined
// conjunctively. Blank filters are tolerated; malformed ones fail validation.
// An empty result set is reported as not-found rather than an empty page.
func (s *TicketService) SearchTickets(ctx context.Context, ticketIDText, statusText string, page domain.PageRequest) (domain.Page[domain.Ticket], error) {
	idFilter, err := parseTicketIDFilter(ticketIDText)
	if err != nil {
		return domain.Page[domain.Ticket]{}, err
	}
	statusFilter, err := parseStatusFilter(statusText)
	if err != nil {
		return domain.Page[domain.Ticket]{}, err
	}

	filter := repository.TicketSearchFilter{ID: idFilter, Status: statusFilter}
	tickets, total, err := s.tickets.Search(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.Ticket]{}, err
	}
	if len(tickets) == 0 {
		return domain.Page[domain.Ticket]{}, apperrors.NewDomainError(
			"NOT_FOUND", "no tickets found with the provided criteria", 404, nil)
	}
	return domain.NewPage(tickets, page, total), nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) withComments(ctx context.Context, tickets []domain.Ticket) ([]TicketWithComments, error) {
	items := make([]TicketWithComments, 0, len(tickets))
	for i := range tickets {
		comments, err := s.comments.ListAllByTicket(ctx, tickets[i].ID)
		if err != nil {
			return nil, err
		}
		items = append(items, TicketWithComments{Ticket: tickets[i], Comments: comments})
	}
	return items, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
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

func validateTicketInput(title, description string, priority domain.TicketPriority, category domain.TicketCategory) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return apperrors.NewValidationError("title is required", nil)
	}
	if len(title) > maxTicketTitle {
		return apperrors.NewValidationError("title must be less than 100 characters", nil)
	}
	if description == "" {
		return apperrors.NewValidationError("description is required", nil)
	}
	if len(description) > maxTicketDescription {
		return apperrors.NewValidationError("description must be less than 2000 characters", nil)
	}
	if _, ok := domain.ParseTicketPriority(string(priority)); !ok {
		return apperrors.NewValidationError("invalid priority value", nil)
	}
	if _, ok := domain.ParseTicketCategory(string(category)); !ok {
		return apperrors.NewValidationError("invalid category value", nil)
	}
	return nil
}

// parseTicketIDFilter accepts a blank filter or a well-formed UUID.
func parseTicketIDFilter(text string) (*string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(text)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid ticketId format", nil)
	}
	id := parsed.String()
	return &id, nil
}

// parseStatusFilter accepts a blank filter or a known status name.
func parseStatusFilter(text string) (*domain.TicketStatus, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	status, ok := domain.ParseTicketStatus(text)
	if !ok {
		return nil, apperrors.NewValidationError("invalid status value", nil)
	}
	return &status, nil
}
