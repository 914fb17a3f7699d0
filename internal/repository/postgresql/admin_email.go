package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/pkg/database"
)

type adminEmailRepositoryImpl struct {
	db *database.DB
}

func NewAdminEmailRepository(db *database.DB) auth.AdminEmailRepository {
	return &adminEmailRepositoryImpl{db: db}
}

// List implements auth.AdminEmailRepository.
func (a *adminEmailRepositoryImpl) List(ctx context.Context) ([]auth.AdminEmail, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `SELECT email, created_at FROM admin_emails ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin emails: %w", err)
	}
	defer rows.Close()

	emails := make([]auth.AdminEmail, 0)
	for rows.Next() {
		var ae auth.AdminEmail
		if err := rows.Scan(&ae.Email, &ae.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin email: %w", err)
		}
		emails = append(emails, ae)
	}
	return emails, rows.Err()
}

// Add implements auth.AdminEmailRepository.
func (a *adminEmailRepositoryImpl) Add(ctx context.Context, email string) (auth.AdminEmail, error) {
	q := GetQuerier(ctx, a.db)

	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `
		INSERT INTO admin_emails (email)
		VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING email, created_at
	`

	var ae auth.AdminEmail
	if err := q.QueryRow(ctx, query, strings.ToLower(email)).Scan(&ae.Email, &ae.CreatedAt); err != nil {
		return auth.AdminEmail{}, fmt.Errorf("failed to add admin email: %w", err)
	}
	return ae, nil
}

// Exists implements auth.AdminEmailRepository.
func (a *adminEmailRepositoryImpl) Exists(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admin_emails WHERE email = $1)`, strings.ToLower(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check admin email: %w", err)
	}
	return exists, nil
}
