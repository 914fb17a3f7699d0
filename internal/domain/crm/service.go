package crm

import (
	"context"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
)

// CRMService manages an employee's contacts and everything hanging off them.
// Non-admin callers only ever see and touch rows they own.
type CRMService interface {
	ListContacts(ctx context.Context, actor auth.AuthContext, filter ContactFilter) ([]Contact, error)
	CreateContact(ctx context.Context, actor auth.AuthContext, req CreateContactRequest) (Contact, error)
	UpdateContact(ctx context.Context, actor auth.AuthContext, req UpdateContactRequest) (Contact, error)

	ListFollowups(ctx context.Context, actor auth.AuthContext, filter FollowupFilter) ([]Followup, error)
	CreateFollowup(ctx context.Context, actor auth.AuthContext, req CreateFollowupRequest) (Followup, error)
	UpdateFollowup(ctx context.Context, actor auth.AuthContext, req UpdateFollowupRequest) (Followup, error)

	ListMeetings(ctx context.Context, actor auth.AuthContext, filter MeetingFilter) ([]Meeting, error)
	CreateMeeting(ctx context.Context, actor auth.AuthContext, req CreateMeetingRequest) (Meeting, error)

	ListAccounts(ctx context.Context, actor auth.AuthContext, filter AccountFilter) ([]Account, error)
	CreateAccount(ctx context.Context, actor auth.AuthContext, req CreateAccountRequest) (Account, error)
	UpdateAccount(ctx context.Context, actor auth.AuthContext, req UpdateAccountRequest) (Account, error)

	// SendFollowupReminders emails owners of followups due within the configured lead time.
	SendFollowupReminders(ctx context.Context) (int, error)
}
