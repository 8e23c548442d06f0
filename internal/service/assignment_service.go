package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/techdesk/helpdesk-service/internal/domain"
	"github.com/techdesk/helpdesk-service/internal/repository"
	apperrors "github.com/techdesk/helpdesk-service/pkg/util"
)

// AssignmentService selects the support agent a new ticket is routed to.
//
// The selection is greedy and stateless: every call re-reads the agent pool
// and each agent's open workload, so the balancer self-corrects as tickets
// are resolved. Two concurrent creations may read the same counts and pick
// the same agent; the load measure is advisory fairness, not a capacity
// limit, so that race is accepted.
type AssignmentService struct {
	accounts repository.AccountRepository
	tickets  repository.TicketRepository
	logger   *zap.Logger
}

// AssignmentDependencies bundles repositories for the assignment service.
type AssignmentDependencies struct {
	AccountRepo repository.AccountRepository
	TicketRepo  repository.TicketRepository
	Logger      *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		accounts: deps.AccountRepo,
		tickets:  deps.TicketRepo,
		logger:   deps.Logger,
	}
}

// AssignTicket picks the IT support agent with the fewest open tickets.
// Agents are iterated in creation order and the first strict minimum wins.
// The caller persists the resulting assignment; this method only reads.
func (s *AssignmentService) AssignTicket(ctx context.Context, ticket *domain.Ticket) (*domain.Account, error) {
	agents, err := s.accounts.ListByRole(ctx, domain.RoleITSupport)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, apperrors.NewNoSupportAgentAvailable("no IT support agents available for assignment")
	}

	var leastLoaded *domain.Account
	minOpen := 0
	for i := range agents {
		openCount, err := s.tickets.CountOpenByAssignee(ctx, agents[i].ID)
		if err != nil {
			return nil, err
		}
		if leastLoaded == nil || openCount < minOpen {
			leastLoaded = &agents[i]
			minOpen = openCount
		}
	}

	s.logger.Info("assigning ticket to least loaded agent",
		zap.String("agent_id", leastLoaded.ID),
		zap.String("agent_username", leastLoaded.Username),
		zap.Int("open_tickets", minOpen))
	return leastLoaded, nil
}
