package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/crm"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const followupColumns = `id, contact_id, employee_id, followup_date, completed, comments,
	next_followup_date, notification_sent, created_at, updated_at`

type followupRepositoryImpl struct {
	db *database.DB
}

func NewFollowupRepository(db *database.DB) crm.FollowupRepository {
	return &followupRepositoryImpl{db: db}
}

func scanFollowup(row rowScanner, extra ...any) (crm.Followup, error) {
	var f crm.Followup
	dest := []any{
		&f.ID, &f.ContactID, &f.EmployeeID, &f.FollowupDate, &f.Completed, &f.Comments,
		&f.NextFollowupDate, &f.NotificationSent, &f.CreatedAt, &f.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return f, err
}

// List implements crm.FollowupRepository.
func (r *followupRepositoryImpl) List(ctx context.Context, filter crm.FollowupFilter) ([]crm.Followup, error) {
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
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		where = append(where, fmt.Sprintf("completed = $%d", len(args)))
	}

	query := "SELECT " + followupColumns + " FROM contact_followups"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY followup_date ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query followups: %w", err)
	}
	defer rows.Close()

	followups := make([]crm.Followup, 0)
	for rows.Next() {
		f, err := scanFollowup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan followup: %w", err)
		}
		followups = append(followups, f)
	}
	return followups, rows.Err()
}

// GetByID implements crm.FollowupRepository.
func (r *followupRepositoryImpl) GetByID(ctx context.Context, id string) (crm.Followup, error) {
	q := GetQuerier(ctx, r.db)

	f, err := scanFollowup(q.QueryRow(ctx, "SELECT "+followupColumns+" FROM contact_followups WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return crm.Followup{}, crm.ErrFollowupNotFound
		}
		return crm.Followup{}, fmt.Errorf("failed to get followup %s: %w", id, err)
	}
	return f, nil
}

// Create implements crm.FollowupRepository.
func (r *followupRepositoryImpl) Create(ctx context.Context, f crm.Followup) (crm.Followup, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO contact_followups (id, contact_id, employee_id, followup_date, completed, comments, next_followup_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + followupColumns

	created, err := scanFollowup(q.QueryRow(ctx, query,
		f.ID, f.ContactID, f.EmployeeID, f.FollowupDate, f.Completed, f.Comments, f.NextFollowupDate,
	))
	if err != nil {
		return crm.Followup{}, fmt.Errorf("failed to insert followup: %w", err)
	}
	return created, nil
}

// Update implements crm.FollowupRepository.
func (r *followupRepositoryImpl) Update(ctx context.Context, f crm.Followup) (crm.Followup, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE contact_followups
		SET followup_date = $2, completed = $3, comments = $4, next_followup_date = $5,
			notification_sent = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + followupColumns

	updated, err := scanFollowup(q.QueryRow(ctx, query,
		f.ID, f.FollowupDate, f.Completed, f.Comments, f.NextFollowupDate, f.NotificationSent,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return crm.Followup{}, crm.ErrFollowupNotFound
		}
		return crm.Followup{}, fmt.Errorf("failed to update followup %s: %w", f.ID, err)
	}
	return updated, nil
}

// ListDue implements crm.FollowupRepository.
func (r *followupRepositoryImpl) ListDue(ctx context.Context, before time.Time) ([]crm.DueFollowup, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT f.id, f.contact_id, f.employee_id, f.followup_date, f.completed, f.comments,
			f.next_followup_date, f.notification_sent, f.created_at, f.updated_at,
			c.name, e.name, e.email
		FROM contact_followups f
		JOIN contacts c ON c.id = f.contact_id
		JOIN employees e ON e.id = f.employee_id
		WHERE f.completed = FALSE
			AND f.notification_sent = FALSE
			AND f.followup_date <= $1
		ORDER BY f.followup_date ASC
	`

	rows, err := q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query due followups: %w", err)
	}
	defer rows.Close()

	due := make([]crm.DueFollowup, 0)
	for rows.Next() {
		var d crm.DueFollowup
		d.Followup, err = scanFollowup(rows, &d.ContactName, &d.EmployeeName, &d.EmployeeEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due followup: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// MarkNotified implements crm.FollowupRepository.
func (r *followupRepositoryImpl) MarkNotified(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE contact_followups SET notification_sent = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark followup %s notified: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return crm.ErrFollowupNotFound
	}
	return nil
}
