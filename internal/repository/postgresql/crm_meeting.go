package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/crm"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/database"
)

const meetingColumns = `id, contact_id, employee_id, meeting_date, meeting_type, duration_minutes, outcome,
	notes, next_steps, follow_up_required, follow_up_date, created_at, updated_at`

type meetingRepositoryImpl struct {
	db *database.DB
}

func NewMeetingRepository(db *database.DB) crm.MeetingRepository {
	return &meetingRepositoryImpl{db: db}
}

func scanMeeting(row rowScanner) (crm.Meeting, error) {
	var m crm.Meeting
	err := row.Scan(
		&m.ID, &m.ContactID, &m.EmployeeID, &m.MeetingDate, &m.MeetingType, &m.DurationMinutes, &m.Outcome,
		&m.Notes, &m.NextSteps, &m.FollowUpRequired, &m.FollowUpDate, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

// List implements crm.MeetingRepository.
func (r *meetingRepositoryImpl) List(ctx context.Context, filter crm.MeetingFilter) ([]crm.Meeting, error) {
	q := GetQuerier(ctx, r.db)

	var (
		where []string
		args  []interface{}
	)
	if filter.ContactID != "" {
		args = append(args, filter.ContactID)
		where = append(where, fmt.Sprintf("contact_id = $%d", len(args)))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)))
	}

	query := "SELECT " + meetingColumns + " FROM contact_meetings"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY meeting_date DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer rows.Close()

	meetings := make([]crm.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// Create implements crm.MeetingRepository.
func (r *meetingRepositoryImpl) Create(ctx context.Context, m crm.Meeting) (crm.Meeting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO contact_meetings (
			id, contact_id, employee_id, meeting_date, meeting_type, duration_minutes,
			outcome, notes, next_steps, follow_up_required, follow_up_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + meetingColumns

	created, err := scanMeeting(q.QueryRow(ctx, query,
		m.ID, m.ContactID, m.EmployeeID, m.MeetingDate, m.MeetingType, m.DurationMinutes,
		m.Outcome, m.Notes, m.NextSteps, m.FollowUpRequired, m.FollowUpDate,
	))
	if err != nil {
		return crm.Meeting{}, fmt.Errorf("failed to insert meeting: %w", err)
	}
	return created, nil
}
