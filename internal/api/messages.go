package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Password    string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// UpdateProfileRequest changes only the fields that are set.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

type UpdateProfileResponse struct {
	User *User `json:"user"`
}

type DeleteAccountRequest struct{}

type DeleteAccountResponse struct {
	UserID string `json:"userId"`
}

// Tenant is a billed party with its current base rent.
type Tenant struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	BaseRent  decimal.Decimal `json:"baseRent"`
	Contact   string          `json:"contact,omitempty"`
	CreatedAt int64           `json:"createdAt"`
}

type CreateTenantRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	BaseRent Numeric `json:"baseRent"`
	Contact  string  `json:"contact,omitempty" validate:"max=100"`
}

type CreateTenantResponse struct {
	Tenant   *Tenant           `json:"tenant"`
	Warnings map[string]string `json:"warnings,omitempty"`
}

type ListTenantsRequest struct{}

type ListTenantsResponse struct {
	Tenants []*Tenant `json:"tenants"`
}

// UpdateTenantRequest changes only the fields that are set.
type UpdateTenantRequest struct {
	TenantID string  `json:"tenantId" validate:"required"`
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	BaseRent Numeric `json:"baseRent,omitempty"`
	Contact  *string `json:"contact,omitempty" validate:"omitempty,max=100"`
}

type UpdateTenantResponse struct {
	Tenant   *Tenant           `json:"tenant"`
	Warnings map[string]string `json:"warnings,omitempty"`
}

type DeleteTenantRequest struct {
	TenantID string `json:"tenantId" validate:"required"`
}

type DeleteTenantResponse struct{}

type DeleteAllTenantsRequest struct{}

type DeleteAllTenantsResponse struct {
	Deleted int `json:"deleted"`
}

// Amounts are money values pre-rendered with two decimals for display.
type Amounts struct {
	BaseRent        string `json:"baseRent"`
	ElectricityRate string `json:"electricityRate"`
	ElectricityCost string `json:"electricityCost"`
	Total           string `json:"total"`
}

// Invoice is a stored invoice. Tenant name, base rent and rate are the
// values at generation time.
type Invoice struct {
	ID                   string          `json:"id"`
	TenantID             string          `json:"tenantId"`
	TenantName           string          `json:"tenantName"`
	Date                 time.Time       `json:"date"`
	BaseRent             decimal.Decimal `json:"baseRent"`
	PreviousMonthReading decimal.Decimal `json:"previousMonthReading"`
	CurrentMonthReading  decimal.Decimal `json:"currentMonthReading"`
	UnitsConsumed        decimal.Decimal `json:"unitsConsumed"`
	ElectricityRate      decimal.Decimal `json:"electricityRate"`
	ElectricityCost      decimal.Decimal `json:"electricityCost"`
	Total                decimal.Decimal `json:"total"`
	CreatedAt            int64           `json:"createdAt"`
	Display              Amounts         `json:"display"`
}

// Computation is an unsaved invoice calculation.
type Computation struct {
	PreviousMonthReading decimal.Decimal   `json:"previousMonthReading"`
	CurrentMonthReading  decimal.Decimal   `json:"currentMonthReading"`
	BaseRent             decimal.Decimal   `json:"baseRent"`
	ElectricityRate      decimal.Decimal   `json:"electricityRate"`
	InvoiceDate          time.Time         `json:"invoiceDate"`
	UnitsConsumed        decimal.Decimal   `json:"unitsConsumed"`
	ElectricityCost      decimal.Decimal   `json:"electricityCost"`
	Total                decimal.Decimal   `json:"total"`
	Warnings             map[string]string `json:"warnings,omitempty"`
	Display              Amounts           `json:"display"`
}

// PreviewInvoiceRequest carries raw form values; every field is checked by
// the calculator so all problems come back together.
type PreviewInvoiceRequest struct {
	PreviousMonthReading Numeric `json:"previousMonthReading,omitempty"`
	CurrentMonthReading  Numeric `json:"currentMonthReading,omitempty"`
	BaseRent             Numeric `json:"baseRent,omitempty"`
	ElectricityRate      Numeric `json:"electricityRate,omitempty"`
	InvoiceDate          string  `json:"invoiceDate,omitempty"`
}

type PreviewInvoiceResponse struct {
	Computation *Computation `json:"computation"`
}

type GetLastInvoiceRequest struct {
	TenantID string `json:"tenantId" validate:"required"`
}

// GetLastInvoiceResponse holds the reading the next invoice starts from,
// and the invoice it came from when there is one.
type GetLastInvoiceResponse struct {
	PreviousMonthReading decimal.Decimal `json:"previousMonthReading"`
	Invoice              *Invoice        `json:"invoice,omitempty"`
}

// GenerateInvoiceRequest omits PreviousMonthReading to carry over the
// tenant's last reading, and BaseRent to use the tenant's current rent.
type GenerateInvoiceRequest struct {
	TenantID             string  `json:"tenantId" validate:"required"`
	InvoiceDate          string  `json:"invoiceDate,omitempty"`
	PreviousMonthReading Numeric `json:"previousMonthReading,omitempty"`
	CurrentMonthReading  Numeric `json:"currentMonthReading,omitempty"`
	BaseRent             Numeric `json:"baseRent,omitempty"`
}

type GenerateInvoiceResponse struct {
	Invoice             *Invoice          `json:"invoice"`
	PreviousCarriedOver bool              `json:"previousCarriedOver"`
	Warnings            map[string]string `json:"warnings,omitempty"`
}

// ListInvoicesRequest filters by tenant when TenantID is set.
type ListInvoicesRequest struct {
	TenantID string `json:"tenantId,omitempty"`
}

type ListInvoicesResponse struct {
	Invoices []*Invoice `json:"invoices"`
}

type GetInvoiceRequest struct {
	InvoiceID string `json:"invoiceId" validate:"required"`
}

type GetInvoiceResponse struct {
	Invoice *Invoice `json:"invoice"`
}

type DeleteInvoiceRequest struct {
	InvoiceID string `json:"invoiceId" validate:"required"`
}

type DeleteInvoiceResponse struct{}

type DeleteAllInvoicesRequest struct{}

type DeleteAllInvoicesResponse struct {
	Deleted int `json:"deleted"`
}

type GetSettingsRequest struct{}

// GetSettingsResponse reports the rate new invoices will use. IsDefault is
// set when the user never saved one.
type GetSettingsResponse struct {
	ElectricityRate decimal.Decimal `json:"electricityRate"`
	IsDefault       bool            `json:"isDefault"`
}

type UpdateSettingsRequest struct {
	ElectricityRate Numeric `json:"electricityRate"`
}

type UpdateSettingsResponse struct {
	ElectricityRate decimal.Decimal `json:"electricityRate"`
	Warning         string          `json:"warning,omitempty"`
}

type GetAccountSummaryRequest struct{}

type GetAccountSummaryResponse struct {
	User          *User           `json:"user"`
	TotalInvoices int             `json:"totalInvoices"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalTenants  int             `json:"totalTenants"`
}
