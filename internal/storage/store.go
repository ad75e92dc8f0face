// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/rentbook/internal/models"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("not found")

// Store defines the interface for rentbook's record storage.
// Every tenant, invoice and settings operation is scoped to the owning user,
// so one user can never read or delete another user's rows.
type Store interface {
	// CreateUser inserts a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil and no error when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns nil and no error when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUser saves the user's email and display name.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser removes the user with all their invoices, tenants and settings.
	DeleteUser(ctx context.Context, id string) error

	// CreateTenant persists a new tenant. ID and CreatedAt are filled in when empty.
	CreateTenant(ctx context.Context, tenant *models.Tenant) error
	GetTenant(ctx context.Context, userID, tenantID string) (*models.Tenant, error)
	ListTenants(ctx context.Context, userID string) ([]*models.Tenant, error)
	UpdateTenant(ctx context.Context, tenant *models.Tenant) error
	DeleteTenant(ctx context.Context, userID, tenantID string) error

	// DeleteAllTenants returns the number of tenants removed.
	DeleteAllTenants(ctx context.Context, userID string) (int, error)

	// CreateInvoice persists a new invoice. ID and CreatedAt are filled in when empty.
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	GetInvoice(ctx context.Context, userID, invoiceID string) (*models.Invoice, error)

	// ListInvoices returns the user's invoices, newest date first.
	ListInvoices(ctx context.Context, userID string) ([]*models.Invoice, error)

	// ListInvoicesByTenant returns one tenant's invoices, newest date first.
	// Invoices sharing a date are ordered most recently stored first.
	ListInvoicesByTenant(ctx context.Context, userID, tenantID string) ([]*models.Invoice, error)
	DeleteInvoice(ctx context.Context, userID, invoiceID string) error

	// DeleteAllInvoices returns the number of invoices removed.
	DeleteAllInvoices(ctx context.Context, userID string) (int, error)

	// GetSettings returns nil and no error when the user never saved settings.
	GetSettings(ctx context.Context, userID string) (*models.Settings, error)

	// UpsertSettings creates or replaces the user's settings.
	UpsertSettings(ctx context.Context, settings *models.Settings) error

	// Close releases any resources held by the store.
	Close() error
}
