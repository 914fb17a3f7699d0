package auth

import "context"

type AdminEmailRepository interface {
	List(ctx context.Context) ([]AdminEmail, error)
	// Add stores email; adding an existing email returns the stored row.
	Add(ctx context.Context, email string) (AdminEmail, error)
	Exists(ctx context.Context, email string) (bool, error)
}
