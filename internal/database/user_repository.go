package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/preptrack/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// GetByID returns a user by internal ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := DB.Rebind("SELECT * FROM users WHERE id = ?")
	err := DB.GetContext(ctx, &user, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %v", err)
	}
	return &user, nil
}

// GetByTelegramID returns a user by Telegram ID, or nil when unknown
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	query := DB.Rebind("SELECT * FROM users WHERE telegram_id = ?")
	err := DB.GetContext(ctx, &user, query, telegramID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// GetOrCreateByTelegramID returns the user for a Telegram account,
// registering it on first contact
func (r *UserRepository) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, username, firstName, lastName string) (*models.User, error) {
	user, err := r.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	query := DB.Rebind(`
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES (?, ?, ?, ?)
	`)
	if _, err := DB.ExecContext(ctx, query, telegramID, username, firstName, lastName); err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	return r.GetByTelegramID(ctx, telegramID)
}

// GetAll returns all users
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := DB.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %v", err)
	}
	return users, nil
}

// GetUsersForNotification returns users who should be reminded at the
// given hour
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	query := DB.Rebind("SELECT * FROM users WHERE notification_enabled = ? AND notification_hour = ?")
	err := DB.SelectContext(ctx, &users, query, true, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %v", err)
	}
	return users, nil
}

// SetNotification updates a user's reminder settings
func (r *UserRepository) SetNotification(ctx context.Context, userID int64, enabled bool, hour int) error {
	query := DB.Rebind(`
		UPDATE users SET notification_enabled = ?, notification_hour = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`)
	if _, err := DB.ExecContext(ctx, query, enabled, hour, userID); err != nil {
		return fmt.Errorf("failed to update notification settings: %v", err)
	}
	return nil
}
