package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/events"
	"github.com/techdesk/helpdesk-service/internal/repository"
)

// In-memory fakes standing in for the Postgres repositories. Missing rows
// surface as pgx.ErrNoRows so the services translate them the same way they
// would in production.

type fakeAccountRepo struct {
	accounts []*domain.Account
	seq      int
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	f.seq++
	if account.ID == "" {
		account.ID = fmt.Sprintf("acc-%02d", f.seq)
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	f.accounts = append(f.accounts, account)
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	for _, account := range f.accounts {
		if account.ID == id {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	for _, account := range f.accounts {
		if account.Username == username {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.Account, error) {
	var out []domain.Account
	for _, account := range f.accounts {
		if account.Role == role {
			out = append(out, *account)
		}
	}
	return out, nil
}

type fakeTicketRepo struct {
	tickets []*domain.Ticket
	seq     int

	createErr error
	updateErr error
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	if ticket.ID == "" {
		ticket.ID = fmt.Sprintf("tic-%02d", f.seq)
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	copied := *ticket
	f.tickets = append(f.tickets, &copied)
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, existing := range f.tickets {
		if existing.ID == ticket.ID {
			copied := *ticket
			f.tickets[i] = &copied
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	for _, ticket := range f.tickets {
		if ticket.ID == id {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) Delete(_ context.Context, id string) error {
	for i, ticket := range f.tickets {
		if ticket.ID == id {
			f.tickets = append(f.tickets[:i], f.tickets[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListByCreator(_ context.Context, creatorID string, page domain.PageRequest) ([]domain.Ticket, int64, error) {
	var matched []domain.Ticket
	for _, ticket := range f.tickets {
		if ticket.CreatedByID == creatorID {
			matched = append(matched, *ticket)
		}
	}
	return paginateTickets(matched, page)
}

func (f *fakeTicketRepo) ListAll(_ context.Context, page domain.PageRequest) ([]domain.Ticket, int64, error) {
	matched := make([]domain.Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		matched = append(matched, *ticket)
	}
	return paginateTickets(matched, page)
}

func (f *fakeTicketRepo) Search(_ context.Context, filter repository.TicketSearchFilter, page domain.PageRequest) ([]domain.Ticket, int64, error) {
	var matched []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.ID != nil && ticket.ID != *filter.ID {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		matched = append(matched, *ticket)
	}
	return paginateTickets(matched, page)
}

func (f *fakeTicketRepo) CountOpenByAssignee(_ context.Context, assigneeID string) (int, error) {
	count := 0
	for _, ticket := range f.tickets {
		if ticket.AssignedToID != nil && *ticket.AssignedToID == assigneeID && ticket.IsOpen() {
			count++
		}
	}
	return count, nil
}

func paginateTickets(matched []domain.Ticket, page domain.PageRequest) ([]domain.Ticket, int64, error) {
	page = page.Normalize()
	total := int64(len(matched))
	start := page.Offset()
	if start > len(matched) {
		return nil, total, nil
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type fakeCommentRepo struct {
	comments []*domain.Comment
	seq      int

	createErr error
}

func (f *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	if comment.ID == "" {
		comment.ID = fmt.Sprintf("com-%02d", f.seq)
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	copied := *comment
	f.comments = append(f.comments, &copied)
	return nil
}

func (f *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID string, page domain.PageRequest) ([]domain.Comment, int64, error) {
	all, err := f.ListAllByTicket(ctx, ticketID)
	if err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	total := int64(len(all))
	start := page.Offset()
	if start > len(all) {
		return nil, total, nil
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (f *fakeCommentRepo) ListAllByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range f.comments {
		if comment.TicketID == ticketID {
			out = append(out, *comment)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeCommentRepo) DeleteByID(_ context.Context, id string) error {
	for i, comment := range f.comments {
		if comment.ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeAuditLogRepo struct {
	entries []*domain.AuditLogEntry
	seq     int

	createErr error
}

func (f *fakeAuditLogRepo) Create(_ context.Context, entry *domain.AuditLogEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("log-%02d", f.seq)
	}
	copied := *entry
	f.entries = append(f.entries, &copied)
	return nil
}

func (f *fakeAuditLogRepo) ListByTicket(_ context.Context, ticketID string, page domain.PageRequest) ([]domain.AuditLogEntry, int64, error) {
	var matched []domain.AuditLogEntry
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			matched = append(matched, *entry)
		}
	}
	return paginateAuditEntries(matched, page)
}

func (f *fakeAuditLogRepo) ListAll(_ context.Context, page domain.PageRequest) ([]domain.AuditLogEntry, int64, error) {
	matched := make([]domain.AuditLogEntry, 0, len(f.entries))
	for _, entry := range f.entries {
		matched = append(matched, *entry)
	}
	return paginateAuditEntries(matched, page)
}

func (f *fakeAuditLogRepo) DeleteByTicket(_ context.Context, ticketID string) error {
	kept := f.entries[:0]
	for _, entry := range f.entries {
		if entry.TicketID != ticketID {
			kept = append(kept, entry)
		}
	}
	f.entries = kept
	return nil
}

func paginateAuditEntries(matched []domain.AuditLogEntry, page domain.PageRequest) ([]domain.AuditLogEntry, int64, error) {
	page = page.Normalize()
	total := int64(len(matched))
	start := page.Offset()
	if start > len(matched) {
		return nil, total, nil
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// passthroughTxManager runs the function directly; the fakes have no
// transactional semantics to enforce.
type passthroughTxManager struct{}

func (passthroughTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// captureDispatcher records published events for assertions.
type captureDispatcher struct {
	published []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

// testEnv wires the full service stack over the in-memory fakes.
type testEnv struct {
	accounts   *fakeAccountRepo
	tickets    *fakeTicketRepo
	comments   *fakeCommentRepo
	auditLogs  *fakeAuditLogRepo
	dispatcher *captureDispatcher

	auditSvc      *AuditLogService
	assignmentSvc *AssignmentService
	commentSvc    *CommentService
	ticketSvc     *TicketService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		accounts:   &fakeAccountRepo{},
		tickets:    &fakeTicketRepo{},
		comments:   &fakeCommentRepo{},
		auditLogs:  &fakeAuditLogRepo{},
		dispatcher: &captureDispatcher{},
	}
	logger := zap.NewNop()
	txm := passthroughTxManager{}

	env.auditSvc = NewAuditLogService(AuditLogDependencies{
		AuditLogRepo: env.auditLogs,
		TicketRepo:   env.tickets,
		Logger:       logger,
	})
	env.assignmentSvc = NewAssignmentService(AssignmentDependencies{
		AccountRepo: env.accounts,
		TicketRepo:  env.tickets,
		Logger:      logger,
	})
	env.commentSvc = NewCommentService(CommentDependencies{
		CommentRepo: env.comments,
		TicketRepo:  env.tickets,
		AccountRepo: env.accounts,
		AuditLogs:   env.auditSvc,
		TxManager:   txm,
		Dispatcher:  env.dispatcher,
		Logger:      logger,
	})
	env.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo:  env.tickets,
		AccountRepo: env.accounts,
		CommentRepo: env.comments,
		Comments:    env.commentSvc,
		AuditLogs:   env.auditSvc,
		Assigner:    env.assignmentSvc,
		TxManager:   txm,
		Dispatcher:  env.dispatcher,
		Logger:      logger,
	})
	return env
}

func (e *testEnv) addAccount(id, username string, role domain.Role) *domain.Account {
	account := &domain.Account{ID: id, Username: username, Role: role, CreatedAt: time.Now()}
	e.accounts.accounts = append(e.accounts.accounts, account)
	return account
}

func (e *testEnv) addTicket(ticket domain.Ticket) *domain.Ticket {
	e.tickets.seq++
	if ticket.ID == "" {
		ticket.ID = fmt.Sprintf("tic-%02d", e.tickets.seq)
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	stored := ticket
	e.tickets.tickets = append(e.tickets.tickets, &stored)
	return &stored
}
