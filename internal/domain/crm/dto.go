package crm

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// parseWhen accepts an RFC3339 timestamp or a plain YYYY-MM-DD date.
func parseWhen(s string) (time.Time, bool) {
	if t, ok := validator.IsValidDateTime(s); ok {
		return t, true
	}
	return validator.IsValidDate(s)
}

func optionalWhen(s *string) *time.Time {
	if s == nil || validator.IsEmpty(*s) {
		return nil
	}
	t, _ := parseWhen(*s)
	return &t
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func checkEmployeeID(errs validator.ValidationErrors, id string) validator.ValidationErrors {
	if id != "" && !validator.IsValidUUID(id) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}
	return errs
}

func checkContactID(errs validator.ValidationErrors, id string) validator.ValidationErrors {
	if validator.IsEmpty(id) {
		return append(errs, validator.ValidationError{
			Field:   "contact_id",
			Message: "contact_id is required",
		})
	}
	if !validator.IsValidUUID(id) {
		errs = append(errs, validator.ValidationError{
			Field:   "contact_id",
			Message: "contact_id must be a valid UUID",
		})
	}
	return errs
}

func checkWhen(errs validator.ValidationErrors, field string, value *string, required bool) validator.ValidationErrors {
	if value == nil || validator.IsEmpty(*value) {
		if required {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " is required",
			})
		}
		return errs
	}
	if _, ok := parseWhen(*value); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must be YYYY-MM-DD or an RFC3339 timestamp",
		})
	}
	return errs
}

func checkContactFields(errs validator.ValidationErrors, email, phone, category *string) validator.ValidationErrors {
	if email != nil && !validator.IsValidEmail(*email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if phone != nil && !validator.IsValidPhoneNumber(*phone) {
		errs = append(errs, validator.ValidationError{
			Field:   "phone",
			Message: "phone must contain 7 to 15 digits",
		})
	}
	if category != nil && !validator.IsInSlice(*category, Categories) {
		errs = append(errs, validator.ValidationError{
			Field:   "category",
			Message: "category must be one of: " + strings.Join(Categories, ", "),
		})
	}
	return errs
}

// ===== CONTACTS =====

type CreateContactRequest struct {
	// EmployeeID is only honoured for admins; everyone else owns what they create.
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Company    *string `json:"company,omitempty"`
	Position   *string `json:"position,omitempty"`
	Category   string  `json:"category"`
	Notes      *string `json:"notes,omitempty"`
	Source     *string `json:"source,omitempty"`
}

func (r *CreateContactRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Name = strings.TrimSpace(r.Name)
	r.Email = trimmed(r.Email)
	r.Phone = trimmed(r.Phone)
	if r.Category == "" {
		r.Category = string(CategoryNew)
	}

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	errs = checkEmployeeID(errs, r.EmployeeID)
	errs = checkContactFields(errs, r.Email, r.Phone, &r.Category)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CreateContactRequest) Contact(employeeID string) Contact {
	return Contact{
		EmployeeID: employeeID,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Company:    trimmed(r.Company),
		Position:   trimmed(r.Position),
		Category:   Category(r.Category),
		Notes:      r.Notes,
		Source:     trimmed(r.Source),
	}
}

type UpdateContactRequest struct {
	ID       string  `json:"-"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Company  *string `json:"company,omitempty"`
	Position *string `json:"position,omitempty"`
	Category *string `json:"category,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Source   *string `json:"source,omitempty"`
}

func (r *UpdateContactRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}
	errs = checkContactFields(errs, trimmed(r.Email), trimmed(r.Phone), r.Category)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the fields present in the request onto c.
func (r *UpdateContactRequest) Apply(c *Contact) {
	if r.Name != nil {
		c.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		c.Email = trimmed(r.Email)
	}
	if r.Phone != nil {
		c.Phone = trimmed(r.Phone)
	}
	if r.Company != nil {
		c.Company = trimmed(r.Company)
	}
	if r.Position != nil {
		c.Position = trimmed(r.Position)
	}
	if r.Category != nil {
		c.Category = Category(*r.Category)
	}
	if r.Notes != nil {
		c.Notes = r.Notes
	}
	if r.Source != nil {
		c.Source = trimmed(r.Source)
	}
}

type ContactFilter struct {
	EmployeeID string
	Category   string
	Search     string
}

// ===== FOLLOWUPS =====

type CreateFollowupRequest struct {
	ContactID        string  `json:"contact_id"`
	FollowupDate     string  `json:"followup_date"`
	Comments         *string `json:"comments,omitempty"`
	NextFollowupDate *string `json:"next_followup_date,omitempty"`
}

func (r *CreateFollowupRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = checkContactID(errs, r.ContactID)
	errs = checkWhen(errs, "followup_date", &r.FollowupDate, true)
	errs = checkWhen(errs, "next_followup_date", r.NextFollowupDate, false)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CreateFollowupRequest) Followup(employeeID string) Followup {
	when, _ := parseWhen(r.FollowupDate)
	return Followup{
		ContactID:        r.ContactID,
		EmployeeID:       employeeID,
		FollowupDate:     when,
		Comments:         r.Comments,
		NextFollowupDate: optionalWhen(r.NextFollowupDate),
	}
}

type UpdateFollowupRequest struct {
	ID               string  `json:"-"`
	FollowupDate     *string `json:"followup_date,omitempty"`
	Completed        *bool   `json:"completed,omitempty"`
	Comments         *string `json:"comments,omitempty"`
	NextFollowupDate *string `json:"next_followup_date,omitempty"`
}

func (r *UpdateFollowupRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = checkWhen(errs, "followup_date", r.FollowupDate, false)
	errs = checkWhen(errs, "next_followup_date", r.NextFollowupDate, false)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the fields present in the request onto f. Rescheduling clears
// the reminder flag so the new date gets its own reminder.
func (r *UpdateFollowupRequest) Apply(f *Followup) {
	if r.FollowupDate != nil && !validator.IsEmpty(*r.FollowupDate) {
		when, _ := parseWhen(*r.FollowupDate)
		if !when.Equal(f.FollowupDate) {
			f.FollowupDate = when
			f.NotificationSent = false
		}
	}
	if r.Completed != nil {
		f.Completed = *r.Completed
	}
	if r.Comments != nil {
		f.Comments = r.Comments
	}
	if r.NextFollowupDate != nil {
		f.NextFollowupDate = optionalWhen(r.NextFollowupDate)
	}
}

type FollowupFilter struct {
	ContactID  string
	EmployeeID string
	Completed  *bool
}

// ===== MEETINGS =====

type CreateMeetingRequest struct {
	ContactID        string  `json:"contact_id"`
	MeetingDate      string  `json:"meeting_date"`
	MeetingType      string  `json:"meeting_type"`
	DurationMinutes  *int    `json:"duration_minutes,omitempty"`
	Outcome          *string `json:"outcome,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	NextSteps        *string `json:"next_steps,omitempty"`
	FollowUpRequired bool    `json:"follow_up_required"`
	FollowUpDate     *string `json:"follow_up_date,omitempty"`
}

func (r *CreateMeetingRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = checkContactID(errs, r.ContactID)
	errs = checkWhen(errs, "meeting_date", &r.MeetingDate, true)

	if !validator.IsInSlice(r.MeetingType, MeetingTypes) {
		errs = append(errs, validator.ValidationError{
			Field:   "meeting_type",
			Message: "meeting_type must be one of: " + strings.Join(MeetingTypes, ", "),
		})
	}
	if r.DurationMinutes != nil && *r.DurationMinutes <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "duration_minutes",
			Message: "duration_minutes must be positive",
		})
	}
	errs = checkWhen(errs, "follow_up_date", r.FollowUpDate, r.FollowUpRequired)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *CreateMeetingRequest) Meeting(employeeID string) Meeting {
	when, _ := parseWhen(r.MeetingDate)
	return Meeting{
		ContactID:        r.ContactID,
		EmployeeID:       employeeID,
		MeetingDate:      when,
		MeetingType:      MeetingType(r.MeetingType),
		DurationMinutes:  r.DurationMinutes,
		Outcome:          r.Outcome,
		Notes:            r.Notes,
		NextSteps:        r.NextSteps,
		FollowUpRequired: r.FollowUpRequired,
		FollowUpDate:     optionalWhen(r.FollowUpDate),
	}
}

type MeetingFilter struct {
	ContactID  string
	EmployeeID string
}

// ===== ACCOUNTS =====

type CreateAccountRequest struct {
	ContactID     string          `json:"contact_id"`
	OpeningDate   string          `json:"account_opening_date"`
	AccountNumber *string         `json:"account_number,omitempty"`
	InitialMargin decimal.Decimal `json:"initial_margin"`
	Status        string          `json:"account_status"`
	Notes         *string         `json:"notes,omitempty"`
}

func (r *CreateAccountRequest) Validate() error {
	var errs validator.ValidationErrors
	errs = checkContactID(errs, r.ContactID)

	if r.Status == "" {
		r.Status = string(AccountActive)
	}
	if validator.IsEmpty(r.OpeningDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "account_opening_date",
			Message: "account_opening_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.OpeningDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "account_opening_date",
			Message: "account_opening_date must be in YYYY-MM-DD format",
		})
	}
	if r.InitialMargin.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "initial_margin",
			Message: "initial_margin must not be negative",
		})
	}
	if !validator.IsInSlice(r.Status, AccountStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "account_status",
			Message: "account_status must be one of: " + strings.Join(AccountStatuses, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Account builds a new account whose history starts with the initial margin.
func (r *CreateAccountRequest) Account(employeeID string) Account {
	opened, _ := time.Parse(dateLayout, r.OpeningDate)
	return Account{
		ContactID:     r.ContactID,
		EmployeeID:    employeeID,
		OpeningDate:   opened,
		AccountNumber: trimmed(r.AccountNumber),
		InitialMargin: r.InitialMargin,
		CurrentMargin: r.InitialMargin,
		MarginHistory: []MarginPoint{{Date: r.OpeningDate, Value: r.InitialMargin}},
		Status:        AccountStatus(r.Status),
		Notes:         r.Notes,
	}
}

type UpdateAccountRequest struct {
	ID            string           `json:"-"`
	AccountNumber *string          `json:"account_number,omitempty"`
	CurrentMargin *decimal.Decimal `json:"current_margin,omitempty"`
	Status        *string          `json:"account_status,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

func (r *UpdateAccountRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.CurrentMargin != nil && r.CurrentMargin.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "current_margin",
			Message: "current_margin must not be negative",
		})
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, AccountStatuses) {
		errs = append(errs, validator.ValidationError{
			Field:   "account_status",
			Message: "account_status must be one of: " + strings.Join(AccountStatuses, ", "),
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the fields present in the request onto a. A changed current
// margin is appended to the history under today's date.
func (r *UpdateAccountRequest) Apply(a *Account, today time.Time) {
	if r.AccountNumber != nil {
		a.AccountNumber = trimmed(r.AccountNumber)
	}
	if r.CurrentMargin != nil && !r.CurrentMargin.Equal(a.CurrentMargin) {
		a.CurrentMargin = *r.CurrentMargin
		a.MarginHistory = append(a.MarginHistory, MarginPoint{
			Date:  today.Format(dateLayout),
			Value: *r.CurrentMargin,
		})
	}
	if r.Status != nil {
		a.Status = AccountStatus(*r.Status)
	}
	if r.Notes != nil {
		a.Notes = r.Notes
	}
}

type AccountFilter struct {
	ContactID  string
	EmployeeID string
}
