package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mmynk/rentbook/internal/api"
	"github.com/mmynk/rentbook/internal/billing"
	"github.com/mmynk/rentbook/internal/calculator"
	"github.com/mmynk/rentbook/internal/models"
	"github.com/mmynk/rentbook/internal/storage"
)

// SettingsService implements the SettingsService RPC interface.
type SettingsService struct {
	store    storage.Store
	resolver *billing.Resolver
	limits   calculator.Limits
	logger   *slog.Logger
}

func NewSettingsService(store storage.Store, resolver *billing.Resolver, limits calculator.Limits, logger *slog.Logger) *SettingsService {
	return &SettingsService{store: store, resolver: resolver, limits: limits, logger: logger}
}

// GetSettings returns the rate new invoices will use.
func (s *SettingsService) GetSettings(ctx context.Context, req *connect.Request[api.GetSettingsRequest]) (*connect.Response[api.GetSettingsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	rate, isDefault, err := s.resolver.ResolveRateWithSource(ctx, userID)
	if err != nil {
		s.logger.Error("GetSettings failed", "user_id", userID, "error", err)
		return nil, lookupError(err)
	}

	return connect.NewResponse(&api.GetSettingsResponse{
		ElectricityRate: rate,
		IsDefault:       isDefault,
	}), nil
}

// UpdateSettings saves the caller's electricity rate. Existing invoices keep
// the rate they were generated with.
func (s *SettingsService) UpdateSettings(ctx context.Context, req *connect.Request[api.UpdateSettingsRequest]) (*connect.Response[api.UpdateSettingsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("UpdateSettings request received", "user_id", userID, "electricity_rate", string(req.Msg.ElectricityRate))

	rate, err := req.Msg.ElectricityRate.Decimal()
	if err != nil {
		return nil, api.NewValidationError(errInvalidRequest, map[string]string{
			calculator.FieldElectricityRate: calculator.InvalidNumberMessage,
		})
	}
	warning, err := s.limits.CheckRate(rate)
	if err != nil {
		return nil, invoiceError(err)
	}

	settings := &models.Settings{UserID: userID, ElectricityRate: *rate}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		s.logger.Error("UpdateSettings failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("Settings updated", "user_id", userID, "electricity_rate", settings.ElectricityRate.String())
	return connect.NewResponse(&api.UpdateSettingsResponse{
		ElectricityRate: settings.ElectricityRate,
		Warning:         warning,
	}), nil
}

// GetAccountSummary returns the caller's profile with invoice and tenant totals.
func (s *SettingsService) GetAccountSummary(ctx context.Context, req *connect.Request[api.GetAccountSummaryRequest]) (*connect.Response[api.GetAccountSummaryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("GetAccountSummary failed - user", "user_id", userID, "error", err)
		return nil, storeError(err)
	}
	if user == nil {
		return nil, connect.NewError(connect.CodeNotFound, storage.ErrNotFound)
	}

	invoices, err := s.store.ListInvoices(ctx, userID)
	if err != nil {
		s.logger.Error("GetAccountSummary failed - invoices", "user_id", userID, "error", err)
		return nil, storeError(err)
	}
	tenants, err := s.store.ListTenants(ctx, userID)
	if err != nil {
		s.logger.Error("GetAccountSummary failed - tenants", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	summary := models.AccountSummary{
		TotalInvoices: len(invoices),
		TotalRevenue: lo.Reduce(invoices, func(sum decimal.Decimal, inv *models.Invoice, _ int) decimal.Decimal {
			return sum.Add(inv.Total)
		}, decimal.Zero),
		TotalTenants: len(tenants),
	}

	return connect.NewResponse(&api.GetAccountSummaryResponse{
		User:          api.FromUser(user),
		TotalInvoices: summary.TotalInvoices,
		TotalRevenue:  summary.TotalRevenue,
		TotalTenants:  summary.TotalTenants,
	}), nil
}
