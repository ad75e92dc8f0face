package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/rentbook/internal/models"
)

// CreateTenant persists a new tenant to the database.
func (s *SQLiteStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	// Generate ID if not set
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	if tenant.CreatedAt == 0 {
		tenant.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tenants (id, user_id, name, base_rent, contact, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tenant.ID, tenant.UserID, tenant.Name, tenant.BaseRent, nullString(tenant.Contact), tenant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tenant: %w", err)
	}

	return nil
}

// GetTenant retrieves one of the user's tenants by ID.
func (s *SQLiteStore) GetTenant(ctx context.Context, userID, tenantID string) (*models.Tenant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, base_rent, contact, created_at
		 FROM tenants WHERE id = ? AND user_id = ?`,
		tenantID, userID,
	)

	tenant, err := scanTenant(row)
	if isNoRows(err) {
		return nil, notFound("tenant", tenantID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

// ListTenants retrieves all of the user's tenants, oldest first.
func (s *SQLiteStore) ListTenants(ctx context.Context, userID string) ([]*models.Tenant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, base_rent, contact, created_at
		 FROM tenants WHERE user_id = ? ORDER BY created_at, rowid`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tenants: %w", err)
	}

	return tenants, nil
}

// UpdateTenant saves the tenant's name, base rent and contact.
func (s *SQLiteStore) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET name = ?, base_rent = ?, contact = ? WHERE id = ? AND user_id = ?`,
		tenant.Name, tenant.BaseRent, nullString(tenant.Contact), tenant.ID, tenant.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	return checkAffected(res, "tenant", tenant.ID)
}

// DeleteTenant removes a tenant. Its invoices are kept.
func (s *SQLiteStore) DeleteTenant(ctx context.Context, userID, tenantID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tenants WHERE id = ? AND user_id = ?", tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	return checkAffected(res, "tenant", tenantID)
}

// DeleteAllTenants removes every tenant owned by the user.
func (s *SQLiteStore) DeleteAllTenants(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tenants WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tenants: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	var contact sql.NullString

	if err := row.Scan(&tenant.ID, &tenant.UserID, &tenant.Name, &tenant.BaseRent, &contact, &tenant.CreatedAt); err != nil {
		return nil, err
	}

	if contact.Valid {
		tenant.Contact = contact.String
	}
	return tenant, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
