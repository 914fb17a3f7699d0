package crm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/crm"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/email"
	"github.com/google/uuid"
)

type CRMServiceImpl struct {
	contactRepo  crm.ContactRepository
	followupRepo crm.FollowupRepository
	meetingRepo  crm.MeetingRepository
	accountRepo  crm.AccountRepository
	employeeRepo employee.EmployeeRepository
	emailService email.EmailService
	reminderLead time.Duration
	appURL       string
	transact     TxRunner
	now          func() time.Time
}

// TxRunner runs fn inside a transaction carried by the context it passes on.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Repositories struct {
	Contacts  crm.ContactRepository
	Followups crm.FollowupRepository
	Meetings  crm.MeetingRepository
	Accounts  crm.AccountRepository
	Employees employee.EmployeeRepository
	// Transact wraps read-modify-write sequences; nil runs them without a transaction.
	Transact TxRunner
}

// NewCRMService wires the CRM service. reminderLead is how far ahead followups
// are reminded; appURL, when set, is linked from reminder emails.
func NewCRMService(repos Repositories, emailService email.EmailService, reminderLead time.Duration, appURL string) crm.CRMService {
	transact := repos.Transact
	if transact == nil {
		transact = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &CRMServiceImpl{
		contactRepo:  repos.Contacts,
		followupRepo: repos.Followups,
		meetingRepo:  repos.Meetings,
		accountRepo:  repos.Accounts,
		employeeRepo: repos.Employees,
		emailService: emailService,
		reminderLead: reminderLead,
		appURL:       appURL,
		transact:     transact,
		now:          time.Now,
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// scopeFilter pins non-admin listings to the caller's own employee id.
func scopeFilter(actor auth.AuthContext, requested string) (string, error) {
	if actor.IsAdmin {
		return requested, nil
	}
	if actor.EmployeeID == "" || (requested != "" && requested != actor.EmployeeID) {
		return "", crm.ErrForbidden
	}
	return actor.EmployeeID, nil
}

// ownerFor decides who owns a new contact.
func (s *CRMServiceImpl) ownerFor(ctx context.Context, actor auth.AuthContext, requested string) (string, error) {
	if !actor.IsAdmin || requested == "" {
		if actor.EmployeeID == "" {
			return "", crm.ErrEmployeeRequired
		}
		if requested != "" && requested != actor.EmployeeID {
			return "", crm.ErrForbidden
		}
		return actor.EmployeeID, nil
	}
	if _, err := s.employeeRepo.GetByID(ctx, requested); err != nil {
		return "", err
	}
	return requested, nil
}

// accessibleContact loads a contact and checks the caller may work on it.
func (s *CRMServiceImpl) accessibleContact(ctx context.Context, actor auth.AuthContext, id string) (crm.Contact, error) {
	contact, err := s.contactRepo.GetByID(ctx, id)
	if err != nil {
		return crm.Contact{}, err
	}
	if !actor.CanAccessEmployee(contact.EmployeeID) {
		return crm.Contact{}, crm.ErrForbidden
	}
	return contact, nil
}

// ===== CONTACTS =====

// ListContacts implements crm.CRMService.
func (s *CRMServiceImpl) ListContacts(ctx context.Context, actor auth.AuthContext, filter crm.ContactFilter) ([]crm.Contact, error) {
	employeeID, err := scopeFilter(actor, filter.EmployeeID)
	if err != nil {
		return nil, err
	}
	filter.EmployeeID = employeeID

	contacts, err := s.contactRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// CreateContact implements crm.CRMService.
func (s *CRMServiceImpl) CreateContact(ctx context.Context, actor auth.AuthContext, req crm.CreateContactRequest) (crm.Contact, error) {
	if err := req.Validate(); err != nil {
		return crm.Contact{}, err
	}

	owner, err := s.ownerFor(ctx, actor, req.EmployeeID)
	if err != nil {
		return crm.Contact{}, err
	}

	contact := req.Contact(owner)
	contact.ID = newID()

	created, err := s.contactRepo.Create(ctx, contact)
	if err != nil {
		return crm.Contact{}, fmt.Errorf("failed to create contact: %w", err)
	}
	return created, nil
}

// UpdateContact implements crm.CRMService.
func (s *CRMServiceImpl) UpdateContact(ctx context.Context, actor auth.AuthContext, req crm.UpdateContactRequest) (crm.Contact, error) {
	if err := req.Validate(); err != nil {
		return crm.Contact{}, err
	}

	contact, err := s.accessibleContact(ctx, actor, req.ID)
	if err != nil {
		return crm.Contact{}, err
	}
	req.Apply(&contact)

	updated, err := s.contactRepo.Update(ctx, contact)
	if err != nil {
		return crm.Contact{}, fmt.Errorf("failed to update contact %s: %w", req.ID, err)
	}
	return updated, nil
}

// ===== FOLLOWUPS =====

// ListFollowups implements crm.CRMService.
func (s *CRMServiceImpl) ListFollowups(ctx context.Context, actor auth.AuthContext, filter crm.FollowupFilter) ([]crm.Followup, error) {
	employeeID, err := scopeFilter(actor, filter.EmployeeID)
	if err != nil {
		return nil, err
	}
	filter.EmployeeID = employeeID

	followups, err := s.followupRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list followups: %w", err)
	}
	return followups, nil
}

// CreateFollowup implements crm.CRMService.
func (s *CRMServiceImpl) CreateFollowup(ctx context.Context, actor auth.AuthContext, req crm.CreateFollowupRequest) (crm.Followup, error) {
	if err := req.Validate(); err != nil {
		return crm.Followup{}, err
	}

	contact, err := s.accessibleContact(ctx, actor, req.ContactID)
	if err != nil {
		return crm.Followup{}, err
	}

	followup := req.Followup(contact.EmployeeID)
	followup.ID = newID()

	created, err := s.followupRepo.Create(ctx, followup)
	if err != nil {
		return crm.Followup{}, fmt.Errorf("failed to create followup: %w", err)
	}
	return created, nil
}

// UpdateFollowup implements crm.CRMService.
func (s *CRMServiceImpl) UpdateFollowup(ctx context.Context, actor auth.AuthContext, req crm.UpdateFollowupRequest) (crm.Followup, error) {
	if err := req.Validate(); err != nil {
		return crm.Followup{}, err
	}

	followup, err := s.followupRepo.GetByID(ctx, req.ID)
	if err != nil {
		return crm.Followup{}, err
	}
	if !actor.CanAccessEmployee(followup.EmployeeID) {
		return crm.Followup{}, crm.ErrForbidden
	}
	req.Apply(&followup)

	updated, err := s.followupRepo.Update(ctx, followup)
	if err != nil {
		return crm.Followup{}, fmt.Errorf("failed to update followup %s: %w", req.ID, err)
	}
	return updated, nil
}

// ===== MEETINGS =====

// ListMeetings implements crm.CRMService.
func (s *CRMServiceImpl) ListMeetings(ctx context.Context, actor auth.AuthContext, filter crm.MeetingFilter) ([]crm.Meeting, error) {
	employeeID, err := scopeFilter(actor, filter.EmployeeID)
	if err != nil {
		return nil, err
	}
	filter.EmployeeID = employeeID

	meetings, err := s.meetingRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// CreateMeeting implements crm.CRMService.
func (s *CRMServiceImpl) CreateMeeting(ctx context.Context, actor auth.AuthContext, req crm.CreateMeetingRequest) (crm.Meeting, error) {
	if err := req.Validate(); err != nil {
		return crm.Meeting{}, err
	}

	contact, err := s.accessibleContact(ctx, actor, req.ContactID)
	if err != nil {
		return crm.Meeting{}, err
	}

	meeting := req.Meeting(contact.EmployeeID)
	meeting.ID = newID()

	created, err := s.meetingRepo.Create(ctx, meeting)
	if err != nil {
		return crm.Meeting{}, fmt.Errorf("failed to create meeting: %w", err)
	}
	return created, nil
}

// ===== ACCOUNTS =====

// ListAccounts implements crm.CRMService.
func (s *CRMServiceImpl) ListAccounts(ctx context.Context, actor auth.AuthContext, filter crm.AccountFilter) ([]crm.Account, error) {
	employeeID, err := scopeFilter(actor, filter.EmployeeID)
	if err != nil {
		return nil, err
	}
	filter.EmployeeID = employeeID

	accounts, err := s.accountRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// CreateAccount implements crm.CRMService.
func (s *CRMServiceImpl) CreateAccount(ctx context.Context, actor auth.AuthContext, req crm.CreateAccountRequest) (crm.Account, error) {
	if err := req.Validate(); err != nil {
		return crm.Account{}, err
	}

	contact, err := s.accessibleContact(ctx, actor, req.ContactID)
	if err != nil {
		return crm.Account{}, err
	}

	account := req.Account(contact.EmployeeID)
	account.ID = newID()

	created, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		return crm.Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	return created, nil
}

// UpdateAccount implements crm.CRMService.
func (s *CRMServiceImpl) UpdateAccount(ctx context.Context, actor auth.AuthContext, req crm.UpdateAccountRequest) (crm.Account, error) {
	if err := req.Validate(); err != nil {
		return crm.Account{}, err
	}

	// The margin history is appended to, so the read and the write share a transaction.
	var updated crm.Account
	err := s.transact(ctx, func(ctx context.Context) error {
		account, err := s.accountRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		if !actor.CanAccessEmployee(account.EmployeeID) {
			return crm.ErrForbidden
		}
		req.Apply(&account, s.now())

		updated, err = s.accountRepo.Update(ctx, account)
		if err != nil {
			return fmt.Errorf("failed to update account %s: %w", req.ID, err)
		}
		return nil
	})
	if err != nil {
		return crm.Account{}, err
	}
	return updated, nil
}

// ===== REMINDERS =====

// SendFollowupReminders implements crm.CRMService.
func (s *CRMServiceImpl) SendFollowupReminders(ctx context.Context) (int, error) {
	due, err := s.followupRepo.ListDue(ctx, s.now().Add(s.reminderLead))
	if err != nil {
		return 0, fmt.Errorf("failed to list due followups: %w", err)
	}

	sent := 0
	for _, f := range due {
		data := email.FollowupReminder{
			EmployeeName: f.EmployeeName,
			ContactName:  f.ContactName,
			DueAt:        f.FollowupDate.UTC().Format("Mon, 02 Jan 2006 15:04 MST"),
			Link:         s.appURL,
		}
		if f.Comments != nil {
			data.Comments = *f.Comments
		}

		if err := s.emailService.SendFollowupReminder(ctx, f.EmployeeEmail, data); err != nil {
			slog.Error("Failed to send followup reminder", "followup_id", f.ID, "employee_id", f.EmployeeID, "error", err)
			continue
		}
		if err := s.followupRepo.MarkNotified(ctx, f.ID); err != nil {
			slog.Error("Failed to mark followup as notified", "followup_id", f.ID, "error", err)
			continue
		}
		sent++
	}

	return sent, nil
}
