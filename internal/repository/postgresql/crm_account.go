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

const accountColumns = `id, contact_id, employee_id, account_opening_date, account_number, initial_margin,
	current_margin, margin_history, account_status, notes, created_at, updated_at`

type accountRepositoryImpl struct {
	db *database.DB
}

func NewAccountRepository(db *database.DB) crm.AccountRepository {
	return &accountRepositoryImpl{db: db}
}

// Margins are NUMERIC columns scanned through decimal.Decimal's sql.Scanner;
// margin_history is JSONB decoded straight into []crm.MarginPoint.
func scanAccount(row rowScanner) (crm.Account, error) {
	var a crm.Account
	err := row.Scan(
		&a.ID, &a.ContactID, &a.EmployeeID, &a.OpeningDate, &a.AccountNumber, &a.InitialMargin,
		&a.CurrentMargin, &a.MarginHistory, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if a.MarginHistory == nil {
		a.MarginHistory = []crm.MarginPoint{}
	}
	return a, err
}

// List implements crm.AccountRepository.
func (r *accountRepositoryImpl) List(ctx context.Context, filter crm.AccountFilter) ([]crm.Account, error) {
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

	query := "SELECT " + accountColumns + " FROM contact_accounts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY account_opening_date DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]crm.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetByID implements crm.AccountRepository. Inside a transaction the row is
// locked until commit so concurrent margin updates cannot lose history points.
func (r *accountRepositoryImpl) GetByID(ctx context.Context, id string) (crm.Account, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + accountColumns + " FROM contact_accounts WHERE id = $1"
	if inTransaction(ctx) {
		query += " FOR UPDATE"
	}
	a, err := scanAccount(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return crm.Account{}, crm.ErrAccountNotFound
		}
		return crm.Account{}, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return a, nil
}

// Create implements crm.AccountRepository.
func (r *accountRepositoryImpl) Create(ctx context.Context, a crm.Account) (crm.Account, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO contact_accounts (
			id, contact_id, employee_id, account_opening_date, account_number,
			initial_margin, current_margin, margin_history, account_status, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + accountColumns

	created, err := scanAccount(q.QueryRow(ctx, query,
		a.ID, a.ContactID, a.EmployeeID, a.OpeningDate, a.AccountNumber,
		a.InitialMargin, a.CurrentMargin, a.MarginHistory, a.Status, a.Notes,
	))
	if err != nil {
		return crm.Account{}, fmt.Errorf("failed to insert account: %w", err)
	}
	return created, nil
}

// Update implements crm.AccountRepository.
func (r *accountRepositoryImpl) Update(ctx context.Context, a crm.Account) (crm.Account, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE contact_accounts
		SET account_number = $2, current_margin = $3, margin_history = $4,
			account_status = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	updated, err := scanAccount(q.QueryRow(ctx, query,
		a.ID, a.AccountNumber, a.CurrentMargin, a.MarginHistory, a.Status, a.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return crm.Account{}, crm.ErrAccountNotFound
		}
		return crm.Account{}, fmt.Errorf("failed to update account %s: %w", a.ID, err)
	}
	return updated, nil
}
