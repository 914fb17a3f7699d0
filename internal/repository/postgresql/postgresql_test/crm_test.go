package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/crm"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactID = "0192d3a4-0000-7000-8000-0000000000c1"

func seedContact(t *testing.T, ctx context.Context, employees employee.EmployeeRepository, contacts crm.ContactRepository) {
	t.Helper()
	_, err := employees.Create(ctx, employee.Employee{ID: andiID, Name: "Andi", Email: "andi@example.com"})
	require.NoError(t, err)
	_, err = contacts.Create(ctx, crm.Contact{ID: contactID, EmployeeID: andiID, Name: "Bluefin Capital", Category: crm.CategoryNew})
	require.NoError(t, err)
}

func TestCRMRepositories(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	contacts := postgresql.NewContactRepository(db)
	followups := postgresql.NewFollowupRepository(db)
	meetings := postgresql.NewMeetingRepository(db)
	accounts := postgresql.NewAccountRepository(db)

	seedContact(t, ctx, postgresql.NewEmployeeRepository(db), contacts)

	// contacts
	c, err := contacts.GetByID(ctx, contactID)
	require.NoError(t, err)
	c.Category = crm.CategoryInterested
	c, err = contacts.Update(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, crm.CategoryInterested, c.Category)

	listed, err := contacts.List(ctx, crm.ContactFilter{EmployeeID: andiID, Search: "blue"})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	// followups
	now := time.Now().UTC().Truncate(time.Second)
	_, err = followups.Create(ctx, crm.Followup{
		ID: "0192d3a4-0000-7000-8000-0000000000f1", ContactID: contactID, EmployeeID: andiID, FollowupDate: now.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	due, err := followups.ListDue(ctx, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "Bluefin Capital", due[0].ContactName)
	assert.Equal(t, "andi@example.com", due[0].EmployeeEmail)

	require.NoError(t, followups.MarkNotified(ctx, due[0].ID))
	due, err = followups.ListDue(ctx, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)

	// meetings
	_, err = meetings.Create(ctx, crm.Meeting{
		ID: "0192d3a4-0000-7000-8000-0000000000e1", ContactID: contactID, EmployeeID: andiID,
		MeetingDate: now, MeetingType: crm.MeetingVideoCall,
	})
	require.NoError(t, err)
	ms, err := meetings.List(ctx, crm.MeetingFilter{ContactID: contactID})
	require.NoError(t, err)
	assert.Len(t, ms, 1)

	// accounts, updated inside a transaction as the service does
	acc, err := accounts.Create(ctx, crm.Account{
		ID: "0192d3a4-0000-7000-8000-0000000000a1", ContactID: contactID, EmployeeID: andiID,
		OpeningDate: now, InitialMargin: decimal.NewFromInt(1000), CurrentMargin: decimal.NewFromInt(1000),
		MarginHistory: []crm.MarginPoint{{Date: "2025-02-01", Value: decimal.NewFromInt(1000)}},
		Status:        crm.AccountActive,
	})
	require.NoError(t, err)

	err = postgresql.WithTransaction(ctx, db, func(ctx context.Context) error {
		locked, err := accounts.GetByID(ctx, acc.ID)
		if err != nil {
			return err
		}
		locked.CurrentMargin = decimal.RequireFromString("1500.25")
		locked.MarginHistory = append(locked.MarginHistory, crm.MarginPoint{Date: "2025-03-01", Value: locked.CurrentMargin})
		_, err = accounts.Update(ctx, locked)
		return err
	})
	require.NoError(t, err)

	stored, err := accounts.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, stored.MarginHistory, 2)
	assert.True(t, stored.MarginGrowth().Equal(decimal.RequireFromString("500.25")))

	_, err = accounts.GetByID(ctx, "0192d3a4-0000-7000-8000-0000000000ff")
	assert.ErrorIs(t, err, crm.ErrAccountNotFound)
}
