package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/rentbook/internal/models"
)

const invoiceColumns = `id, user_id, tenant_id, tenant_name, date, base_rent,
	previous_month_reading, current_month_reading, units_consumed,
	electricity_rate, electricity_cost, total, created_at`

// CreateInvoice persists a new invoice to the database.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	// Generate ID if not set
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	if invoice.CreatedAt == 0 {
		invoice.CreatedAt = time.Now().UnixNano()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (`+invoiceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID, invoice.UserID, invoice.TenantID, invoice.TenantName, invoice.Date.Unix(),
		invoice.BaseRent, invoice.PreviousMonthReading, invoice.CurrentMonthReading,
		invoice.UnitsConsumed, invoice.ElectricityRate, invoice.ElectricityCost,
		invoice.Total, invoice.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

// GetInvoice retrieves one of the user's invoices by ID.
func (s *SQLiteStore) GetInvoice(ctx context.Context, userID, invoiceID string) (*models.Invoice, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = ? AND user_id = ?`,
		invoiceID, userID,
	)

	invoice, err := scanInvoice(row)
	if isNoRows(err) {
		return nil, notFound("invoice", invoiceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoices retrieves all of the user's invoices, newest date first.
func (s *SQLiteStore) ListInvoices(ctx context.Context, userID string) ([]*models.Invoice, error) {
	return s.listInvoices(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE user_id = ? ORDER BY date DESC, seq DESC`,
		userID,
	)
}

// ListInvoicesByTenant retrieves one tenant's invoices, newest date first.
func (s *SQLiteStore) ListInvoicesByTenant(ctx context.Context, userID, tenantID string) ([]*models.Invoice, error) {
	return s.listInvoices(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE user_id = ? AND tenant_id = ? ORDER BY date DESC, seq DESC`,
		userID, tenantID,
	)
}

func (s *SQLiteStore) listInvoices(ctx context.Context, query string, args ...any) ([]*models.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	return invoices, nil
}

// DeleteInvoice removes one of the user's invoices.
func (s *SQLiteStore) DeleteInvoice(ctx context.Context, userID, invoiceID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = ? AND user_id = ?", invoiceID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return checkAffected(res, "invoice", invoiceID)
}

// DeleteAllInvoices removes every invoice owned by the user.
func (s *SQLiteStore) DeleteAllInvoices(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM invoices WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete invoices: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	var date int64

	if err := row.Scan(
		&invoice.ID,
		&invoice.UserID,
		&invoice.TenantID,
		&invoice.TenantName,
		&date,
		&invoice.BaseRent,
		&invoice.PreviousMonthReading,
		&invoice.CurrentMonthReading,
		&invoice.UnitsConsumed,
		&invoice.ElectricityRate,
		&invoice.ElectricityCost,
		&invoice.Total,
		&invoice.CreatedAt,
	); err != nil {
		return nil, err
	}

	invoice.Date = time.Unix(date, 0).UTC()
	return invoice, nil
}
