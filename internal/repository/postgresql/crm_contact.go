package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/crm"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const contactColumns = `id, employee_id, name, email, phone, company, position, category, notes, source, created_at, updated_at`

type contactRepositoryImpl struct {
	db *database.DB
}

func NewContactRepository(db *database.DB) crm.ContactRepository {
	return &contactRepositoryImpl{db: db}
}

func scanContact(row rowScanner) (crm.Contact, error) {
	var c crm.Contact
	err := row.Scan(
		&c.ID, &c.EmployeeID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Position,
		&c.Category, &c.Notes, &c.Source, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// List implements crm.ContactRepository.
func (r *contactRepositoryImpl) List(ctx context.Context, filter crm.ContactFilter) ([]crm.Contact, error) {
	q := GetQuerier(ctx, r.db)

	var (
		where []string
		args  []interface{}
	)
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%[1]d OR company ILIKE $%[1]d OR email ILIKE $%[1]d)", len(args)))
	}

	query := "SELECT " + contactColumns + " FROM contacts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]crm.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// GetByID implements crm.ContactRepository.
func (r *contactRepositoryImpl) GetByID(ctx context.Context, id string) (crm.Contact, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanContact(q.QueryRow(ctx, "SELECT "+contactColumns+" FROM contacts WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return crm.Contact{}, crm.ErrContactNotFound
		}
		return crm.Contact{}, fmt.Errorf("failed to get contact %s: %w", id, err)
	}
	return c, nil
}

// Create implements crm.ContactRepository.
func (r *contactRepositoryImpl) Create(ctx context.Context, c crm.Contact) (crm.Contact, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO contacts (id, employee_id, name, email, phone, company, position, category, notes, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + contactColumns

	created, err := scanContact(q.QueryRow(ctx, query,
		c.ID, c.EmployeeID, c.Name, c.Email, c.Phone, c.Company, c.Position, c.Category, c.Notes, c.Source,
	))
	if err != nil {
		return crm.Contact{}, fmt.Errorf("failed to insert contact: %w", err)
	}
	return created, nil
}

// Update implements crm.ContactRepository.
func (r *contactRepositoryImpl) Update(ctx context.Context, c crm.Contact) (crm.Contact, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE contacts
		SET name = $2, email = $3, phone = $4, company = $5, position = $6,
			category = $7, notes = $8, source = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + contactColumns

	updated, err := scanContact(q.QueryRow(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Position, c.Category, c.Notes, c.Source,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return crm.Contact{}, crm.ErrContactNotFound
		}
		return crm.Contact{}, fmt.Errorf("failed to update contact %s: %w", c.ID, err)
	}
	return updated, nil
}
