package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTicketStatus(t *testing.T) {
	status, ok := ParseTicketStatus(" in_progress ")
	assert.True(t, ok)
	assert.Equal(t, TicketStatusInProgress, status)

	_, ok = ParseTicketStatus("SNOOZED")
	assert.False(t, ok)
}

func TestIsOpen(t *testing.T) {
	assert.True(t, (&Ticket{Status: TicketStatusNew}).IsOpen())
	assert.True(t, (&Ticket{Status: TicketStatusInProgress}).IsOpen())
	assert.False(t, (&Ticket{Status: TicketStatusResolved}).IsOpen())
	assert.False(t, (&Ticket{Status: TicketStatusClosed}).IsOpen())
}
