package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/rentbook/internal/models"
)

// GetSettings retrieves the user's settings, or nil if none were saved.
func (s *SQLiteStore) GetSettings(ctx context.Context, userID string) (*models.Settings, error) {
	settings := &models.Settings{}
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, electricity_rate, updated_at FROM settings WHERE user_id = ?`,
		userID,
	).Scan(&settings.UserID, &settings.ElectricityRate, &settings.UpdatedAt)

	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// UpsertSettings creates the user's settings row or replaces its values.
func (s *SQLiteStore) UpsertSettings(ctx context.Context, settings *models.Settings) error {
	settings.UpdatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (user_id, electricity_rate, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     electricity_rate = excluded.electricity_rate,
		     updated_at = excluded.updated_at`,
		settings.UserID, settings.ElectricityRate, settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}
