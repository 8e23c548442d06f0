package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/events"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

func TestCreateTicketAssignsAndPublishes(t *testing.T) {
	env := newTestEnv()
	employee := env.addAccount("emp-1", "dana", domain.RoleEmployee)
	agent := env.addAccount("agent-1", "sam", domain.RoleITSupport)

	ticket, err := env.ticketSvc.CreateTicket(context.Background(), TicketCreateInput{
		Title:       "VPN not connecting",
		Description: "VPN client times out since this morning",
		Priority:    domain.TicketPriorityHigh,
		Category:    domain.TicketCategoryNetwork,
	}, employee.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, employee.ID, ticket.CreatedByID)
	require.NotNil(t, ticket.AssignedToID)
	assert.Equal(t, agent.ID, *ticket.AssignedToID)
	assert.NotEmpty(t, ticket.ID)

	require.Len(t, env.dispatcher.published, 2)
	assert.Equal(t, events.EventTicketCreated, env.dispatcher.published[0].Type)
	assert.Equal(t, events.EventTicketAssigned, env.dispatcher.published[1].Type)
}

func TestCreateTicketFailsWithoutSupportAgents(t *testing.T) {
	env := newTestEnv()
	employee := env.addAccount("emp-1", "dana", domain.RoleEmployee)

	_, err := env.ticketSvc.CreateTicket(context.Background(), TicketCreateInput{
		Title:       "laptop broken",
		Description: "screen stays black",
		Priority:    domain.TicketPriorityUrgent,
		Category:    domain.TicketCategoryHardware,
	}, employee.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NO_SUPPORT_AGENT"))
	assert.Empty(t, env.tickets.tickets, "nothing may be persisted when assignment fails")
	assert.Empty(t, env.dispatcher.published)
}

func TestCreateTicketValidation(t *testing.T) {
	env := newTestEnv()
	employee := env.addAccount("emp-1", "dana", domain.RoleEmployee)
	env.addAccount("agent-1", "sam", domain.RoleITSupport)

	cases := []struct {
		name  string
		input TicketCreateInput
	}{
		{"empty title", TicketCreateInput{Title: "  ", Description: "desc", Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryOther}},
		{"title too long", TicketCreateInput{Title: strings.Repeat("x", 101), Description: "desc", Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryOther}},
		{"empty description", TicketCreateInput{Title: "t", Description: "", Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryOther}},
		{"description too long", TicketCreateInput{Title: "t", Description: strings.Repeat("x", 2001), Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryOther}},
		{"bad priority", TicketCreateInput{Title: "t", Description: "d", Priority: "SOMEDAY", Category: domain.TicketCategoryOther}},
		{"bad category", TicketCreateInput{Title: "t", Description: "d", Priority: domain.TicketPriorityLow, Category: "GARDENING"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.ticketSvc.CreateTicket(context.Background(), tc.input, employee.ID)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
		})
	}
}

func TestCreateTicketUnknownEmployee(t *testing.T) {
	env := newTestEnv()
	env.addAccount("agent-1", "sam", domain.RoleITSupport)

	_, err := env.ticketSvc.CreateTicket(context.Background(), TicketCreateInput{
		Title:       "t",
		Description: "d",
		Priority:    domain.TicketPriorityLow,
		Category:    domain.TicketCategoryOther,
	}, "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestUpdateTicketStatusWritesAuditEntry(t *testing.T) {
	env := newTestEnv()
	agent := env.addAccount("agent-1", "sam", domain.RoleITSupport)
	ticket := env.addTicket(domain.Ticket{
		Title: "VPN not connecting", Description: "d",
		Status: domain.TicketStatusNew, CreatedByID: "emp-1", AssignedToID: &agent.ID,
	})

	updated, err := env.ticketSvc.UpdateTicketStatus(context.Background(), ticket.ID, agent.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.NotNil(t, updated.UpdatedAt)

	require.Len(t, env.auditLogs.entries, 1)
	entry := env.auditLogs.entries[0]
	assert.Equal(t, ticket.ID, entry.TicketID)
	assert.Equal(t, agent.ID, entry.ChangedByID)
	assert.Equal(t, domain.AuditLogStatusChange, entry.LogType)
	assert.Equal(t, "Status changed from NEW to IN_PROGRESS", entry.Description)
}

func TestUpdateTicketStatusIsNotIdempotent(t *testing.T) {
	env := newTestEnv()
	agent := env.addAccount("agent-1", "sam", domain.RoleITSupport)
	ticket := env.addTicket(domain.Ticket{
		Title: "t", Description: "d",
		Status: domain.TicketStatusNew, CreatedByID: "emp-1", AssignedToID: &agent.ID,
	})

	_, err := env.ticketSvc.UpdateTicketStatus(context.Background(), ticket.ID, agent.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)
	_, err = env.ticketSvc.UpdateTicketStatus(context.Background(), ticket.ID, agent.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)

	require.Len(t, env.auditLogs.entries, 2)
	assert.Equal(t, "Status changed from NEW to IN_PROGRESS", env.auditLogs.entries[0].Description)
	assert.Equal(t, "Status changed from IN_PROGRESS to IN_PROGRESS", env.auditLogs.entries[1].Description)
}

func TestUpdateTicketStatusRejectsEmployee(t *testing.T) {
	env := newTestEnv()
	employee := env.addAccount("emp-1", "dana", domain.RoleEmployee)
	ticket := env.addTicket(domain.Ticket{
		Title: "t", Description: "d",
		Status: domain.TicketStatusNew, CreatedByID: employee.ID,
	})

	_, err := env.ticketSvc.UpdateTicketStatus(context.Background(), ticket.ID, employee.ID, domain.TicketStatusResolved)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.Empty(t, env.auditLogs.entries)
}

func TestUpdateTicketStatusRollsBackOnAuditFailure(t *testing.T) {
	env := newTestEnv()
	agent := env.addAccount("agent-1", "sam", domain.RoleITSupport)
	ticket := env.addTicket(domain.Ticket{
		Title: "t", Description: "d",
		Status: domain.TicketStatusNew, CreatedByID: "emp-1", AssignedToID: &agent.ID,
	})
	env.auditLogs.createErr = assert.AnError

	_, err := env.ticketSvc.UpdateTicketStatus(context.Background(), ticket.ID, agent.ID, domain.TicketStatusInProgress)
	require.Error(t, err)
	assert.Empty(t, env.dispatcher.published)
}

func TestGetTicketByIDForEmployeeDeniesForeignTicket(t *testing.T) {
	env := newTestEnv()
	ticket := env.addTicket(domain.Ticket{
		Title: "t", Description: "d",
		Status: domain.TicketStatusNew, CreatedByID: "emp-1",
	})

	_, err := env.ticketSvc.GetTicketByIDForEmployee(context.Background(), ticket.ID, "emp-2")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestGetTicketByIDForEmployeeIncludesComments(t *testing.T) {
	env := newTestEnv()
	ticket := env.addTicket(domain.Ticket{
		Title: "t", Description: "d",
		Status: domain.TicketStatusNew, CreatedByID: "emp-1",
	})
	require.NoError(t, env.comments.Create(context.Background(), &domain.Comment{TicketID: ticket.ID, AuthorID: "agent-1", Text: "looking into it"}))

	item, err := env.ticketSvc.GetTicketByIDForEmployee(context.Background(), ticket.ID, "emp-1")
	require.NoError(t, err)
	require.Len(t, item.Comments, 1)
	assert.Equal(t, "looking into it", item.Comments[0].Text)
}

func TestUpdateTicketByEmployeeOnlyWhileNew(t *testing.T) {
	env := newTestEnv()
	ticket := env.addTicket(domain.Ticket{
		Title: "old title", Description: "old description",
		Status: domain.TicketStatusInProgress, CreatedByID: "emp-1",
	})

	_, err := env.ticketSvc.UpdateTicketByEmployee(context.Background(), ticket.ID, "emp-1", TicketUpdateInput{
		Title: "new title", Description: "new description",
		Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryOther,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestUpdateTicketByEmployeeRejectsNonCreator(t *testing.T) {
	env := newTestEnv()
	ticket := env.addTicket(domain.Ticket{
		Title: "t", Description: "d",
		Status: domain.TicketStatusNew, CreatedByID: "emp-1",
	})

	_, err := env.ticketSvc.UpdateTicketByEmployee(context.Background(), ticket.ID, "emp-2", TicketUpdateInput{
		Title: "hijack", Description: "attempt",
		Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryOther,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestUpdateTicketByEmployeeOverwritesFields(t *testing.T) {
	env := newTestEnv()
	ticket := env.addTicket(domain.Ticket{
		Title: "old title", Description: "old description",
		Status: domain.TicketStatusNew, Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryOther,
		CreatedByID: "emp-1",
	})

	updated, err := env.ticketSvc.UpdateTicketByEmployee(context.Background(), ticket.ID, "emp-1", TicketUpdateInput{
		Title: "new title", Description: "new description",
		Priority: domain.TicketPriorityHigh, Category: domain.TicketCategorySoftware,
	})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)
	assert.Equal(t, domain.TicketCategorySoftware, updated.Category)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, domain.TicketStatusNew, updated.Status)
}

func TestDeleteTicketCreatorCannotDeleteInProgress(t *testing.T) {
	env := newTestEnv()
	employee := env.addAccount("emp-1", "dana", domain.RoleEmployee)
	ticket := env.addTicket(domain.Ticket{
		Title: "t", Description: "d",
		Status: domain.TicketStatusInProgress, CreatedByID: employee.ID,
	})

	err := env.ticketSvc.DeleteTicket(context.Background(), ticket.ID, employee.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Len(t, env.tickets.tickets, 1)
}

func TestDeleteTicketRejectsForeignEmployee(t *testing.T) {
	env := newTestEnv()
	env.addAccount("emp-1", "dana", domain.RoleEmployee)
	other := env.addAccount("emp-2", "kim", domain.RoleEmployee)
	ticket := env.addTicket(domain.Ticket{
		Title: "t", Description: "d",
		Status: domain.TicketStatusNew, CreatedByID: "emp-1",
	})

	err := env.ticketSvc.DeleteTicket(context.Background(), ticket.ID, other.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestDeleteTicketCascadesCommentsAndAuditLogs(t *testing.T) {
	env := newTestEnv()
	agent := env.addAccount("agent-1", "sam", domain.RoleITSupport)
	ticket := env.addTicket(domain.Ticket{
		Title: "t", Description: "d",
		Status: domain.TicketStatusInProgress, CreatedByID: "emp-1", AssignedToID: &agent.ID,
	})
	other := env.addTicket(domain.Ticket{
		Title: "keep", Description: "d",
		Status: domain.TicketStatusNew, CreatedByID: "emp-1",
	})

	ctx := context.Background()
	_, err := env.commentSvc.AddCommentToTicket(ctx, ticket.ID, "first pass done", agent.ID)
	require.NoError(t, err)
	_, err = env.commentSvc.AddCommentToTicket(ctx, other.ID, "unrelated", agent.ID)
	require.NoError(t, err)

	require.NoError(t, env.ticketSvc.DeleteTicket(ctx, ticket.ID, agent.ID))

	for _, remaining := range env.tickets.tickets {
		assert.NotEqual(t, ticket.ID, remaining.ID)
	}
	for _, comment := range env.comments.comments {
		assert.NotEqual(t, ticket.ID, comment.TicketID)
	}
	for _, entry := range env.auditLogs.entries {
		assert.NotEqual(t, ticket.ID, entry.TicketID)
	}
	assert.Len(t, env.comments.comments, 1)
	assert.Len(t, env.auditLogs.entries, 1)
}

func TestSearchTicketsInvalidIDFormat(t *testing.T) {
	env := newTestEnv()

	_, err := env.ticketSvc.SearchTickets(context.Background(), "not-a-uuid", "", domain.PageRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestSearchTicketsInvalidStatus(t *testing.T) {
	env := newTestEnv()

	_, err := env.ticketSvc.SearchTickets(context.Background(), "", "SNOOZED", domain.PageRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestSearchTicketsEmptyResultIsNotFound(t *testing.T) {
	env := newTestEnv()
	env.addTicket(domain.Ticket{
		Title: "t", Description: "d",
		Status: domain.TicketStatusNew, CreatedByID: "emp-1",
	})

	_, err := env.ticketSvc.SearchTickets(context.Background(), "", "CLOSED", domain.PageRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestSearchTicketsCombinesFiltersConjunctively(t *testing.T) {
	env := newTestEnv()
	matchID := uuid.NewString()
	env.addTicket(domain.Ticket{
		ID: matchID, Title: "t", Description: "d",
		Status: domain.TicketStatusInProgress, CreatedByID: "emp-1",
	})
	env.addTicket(domain.Ticket{
		ID: uuid.NewString(), Title: "t2", Description: "d",
		Status: domain.TicketStatusInProgress, CreatedByID: "emp-1",
	})

	page, err := env.ticketSvc.SearchTickets(context.Background(), matchID, "in_progress", domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, matchID, page.Items[0].ID)
	assert.Equal(t, int64(1), page.TotalItems)
}
