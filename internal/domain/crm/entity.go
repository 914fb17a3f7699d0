package crm

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a contact's position in the sales pipeline.
type Category string

const (
	CategoryNew             Category = "new"
	CategoryInterested      Category = "interested"
	CategoryNotInterested   Category = "not_interested"
	CategorySentDetails     Category = "sent_details"
	CategoryInFollowup      Category = "in_followup"
	CategoryWillShowMeeting Category = "will_show_meeting"
	CategoryMeetingDone     Category = "meeting_done"
	CategoryAccountOpened   Category = "account_opened"
)

var Categories = []string{
	string(CategoryNew),
	string(CategoryInterested),
	string(CategoryNotInterested),
	string(CategorySentDetails),
	string(CategoryInFollowup),
	string(CategoryWillShowMeeting),
	string(CategoryMeetingDone),
	string(CategoryAccountOpened),
}

type MeetingType string

const (
	MeetingInPerson  MeetingType = "in_person"
	MeetingVideoCall MeetingType = "video_call"
	MeetingPhoneCall MeetingType = "phone_call"
)

var MeetingTypes = []string{string(MeetingInPerson), string(MeetingVideoCall), string(MeetingPhoneCall)}

type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
	AccountClosed   AccountStatus = "closed"
)

var AccountStatuses = []string{string(AccountActive), string(AccountInactive), string(AccountClosed)}

// Contact is a prospect owned by one employee.
type Contact struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Name       string    `json:"name"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Company    *string   `json:"company,omitempty"`
	Position   *string   `json:"position,omitempty"`
	Category   Category  `json:"category"`
	Notes      *string   `json:"notes,omitempty"`
	Source     *string   `json:"source,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Followup struct {
	ID               string     `json:"id"`
	ContactID        string     `json:"contact_id"`
	EmployeeID       string     `json:"employee_id"`
	FollowupDate     time.Time  `json:"followup_date"`
	Completed        bool       `json:"completed"`
	Comments         *string    `json:"comments,omitempty"`
	NextFollowupDate *time.Time `json:"next_followup_date,omitempty"`
	NotificationSent bool       `json:"notification_sent"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DueFollowup is an open followup joined with the names and address needed to remind its owner.
type DueFollowup struct {
	Followup
	ContactName   string
	EmployeeName  string
	EmployeeEmail string
}

type Meeting struct {
	ID               string      `json:"id"`
	ContactID        string      `json:"contact_id"`
	EmployeeID       string      `json:"employee_id"`
	MeetingDate      time.Time   `json:"meeting_date"`
	MeetingType      MeetingType `json:"meeting_type"`
	DurationMinutes  *int        `json:"duration_minutes,omitempty"`
	Outcome          *string     `json:"outcome,omitempty"`
	Notes            *string     `json:"notes,omitempty"`
	NextSteps        *string     `json:"next_steps,omitempty"`
	FollowUpRequired bool        `json:"follow_up_required"`
	FollowUpDate     *time.Time  `json:"follow_up_date,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// MarginPoint is one entry of an account's margin history.
type MarginPoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// Account is a trading account opened by a contact.
type Account struct {
	ID            string          `json:"id"`
	ContactID     string          `json:"contact_id"`
	EmployeeID    string          `json:"employee_id"`
	OpeningDate   time.Time       `json:"account_opening_date"`
	AccountNumber *string         `json:"account_number,omitempty"`
	InitialMargin decimal.Decimal `json:"initial_margin"`
	CurrentMargin decimal.Decimal `json:"current_margin"`
	MarginHistory []MarginPoint   `json:"margin_history"`
	Status        AccountStatus   `json:"account_status"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MarginGrowth is the change from the initial to the current margin.
func (a Account) MarginGrowth() decimal.Decimal {
	return a.CurrentMargin.Sub(a.InitialMargin)
}
