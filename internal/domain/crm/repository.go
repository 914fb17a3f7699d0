package crm

import (
	"context"
	"time"
)

type ContactRepository interface {
	List(ctx context.Context, filter ContactFilter) ([]Contact, error)
	GetByID(ctx context.Context, id string) (Contact, error)
	Create(ctx context.Context, contact Contact) (Contact, error)
	// Update writes every mutable field of contact and refreshes updated_at.
	Update(ctx context.Context, contact Contact) (Contact, error)
}

type FollowupRepository interface {
	List(ctx context.Context, filter FollowupFilter) ([]Followup, error)
	GetByID(ctx context.Context, id string) (Followup, error)
	Create(ctx context.Context, followup Followup) (Followup, error)
	Update(ctx context.Context, followup Followup) (Followup, error)

	// ListDue returns open followups scheduled before `before` whose owner has not been reminded.
	ListDue(ctx context.Context, before time.Time) ([]DueFollowup, error)
	MarkNotified(ctx context.Context, id string) error
}

type MeetingRepository interface {
	List(ctx context.Context, filter MeetingFilter) ([]Meeting, error)
	Create(ctx context.Context, meeting Meeting) (Meeting, error)
}

type AccountRepository interface {
	List(ctx context.Context, filter AccountFilter) ([]Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	Create(ctx context.Context, account Account) (Account, error)
	Update(ctx context.Context, account Account) (Account, error)
}
