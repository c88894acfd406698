// internal/database/admin_user.go
package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vckeeper/vckeeper/internal/models"
)

// CreateAdminUser inserts an ops-API login account.
func CreateAdminUser(ctx context.Context, email, passwordHash string) (*models.AdminUser, error) {
	u := models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	q := `
	INSERT INTO admin_users (id, email, password_hash)
	VALUES ($1, $2, $3)
	RETURNING created_at
	`
	if err := DB.QueryRow(ctx, q, u.ID, u.Email, u.PasswordHash).Scan(&u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAdminUserByEmail returns the account for email, or (nil, nil) when it
// does not exist.
func GetAdminUserByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var u models.AdminUser
	q := `SELECT id, email, password_hash, created_at FROM admin_users WHERE email = $1`
	err := DB.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
