package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/rentbook/internal/api"
	"github.com/mmynk/rentbook/internal/calculator"
	"github.com/mmynk/rentbook/internal/models"
	"github.com/mmynk/rentbook/internal/storage"
)

// TenantService implements the TenantService RPC interface.
type TenantService struct {
	store  storage.Store
	limits calculator.Limits
	logger *slog.Logger
}

func NewTenantService(store storage.Store, limits calculator.Limits, logger *slog.Logger) *TenantService {
	return &TenantService{store: store, limits: limits, logger: logger}
}

// CreateTenant stores a new tenant. A base rent above the soft ceiling is
// accepted with a warning.
func (s *TenantService) CreateTenant(ctx context.Context, req *connect.Request[api.CreateTenantRequest]) (*connect.Response[api.CreateTenantResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Contact = strings.TrimSpace(msg.Contact)
	s.logger.Info("CreateTenant request received", "user_id", userID, "name", msg.Name)

	fields := requestFields(msg)
	baseRent, warning, err := s.checkBaseRent(msg.BaseRent, fields)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if len(fields) > 0 {
		return nil, api.NewValidationError(errInvalidRequest, fields)
	}

	tenant := &models.Tenant{
		UserID:   userID,
		Name:     msg.Name,
		BaseRent: baseRent,
		Contact:  msg.Contact,
	}
	if err := s.store.CreateTenant(ctx, tenant); err != nil {
		s.logger.Error("CreateTenant failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("Tenant created", "tenant_id", tenant.ID)
	return connect.NewResponse(&api.CreateTenantResponse{
		Tenant:   api.FromTenant(tenant),
		Warnings: warnings(calculator.FieldBaseRent, warning),
	}), nil
}

// ListTenants returns the caller's tenants in creation order.
func (s *TenantService) ListTenants(ctx context.Context, req *connect.Request[api.ListTenantsRequest]) (*connect.Response[api.ListTenantsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	tenants, err := s.store.ListTenants(ctx, userID)
	if err != nil {
		s.logger.Error("ListTenants failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("ListTenants successful", "user_id", userID, "count", len(tenants))
	return connect.NewResponse(&api.ListTenantsResponse{Tenants: api.FromTenants(tenants)}), nil
}

// UpdateTenant changes only the fields present in the request. Stored
// invoices keep the values they were generated with.
func (s *TenantService) UpdateTenant(ctx context.Context, req *connect.Request[api.UpdateTenantRequest]) (*connect.Response[api.UpdateTenantResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	if msg.Name != nil {
		*msg.Name = strings.TrimSpace(*msg.Name)
	}
	if msg.Contact != nil {
		*msg.Contact = strings.TrimSpace(*msg.Contact)
	}
	s.logger.Info("UpdateTenant request received", "user_id", userID, "tenant_id", msg.TenantID)

	fields := requestFields(msg)
	var baseRent decimal.Decimal
	var warning string
	if msg.BaseRent.IsSet() {
		if baseRent, warning, err = s.checkBaseRent(msg.BaseRent, fields); err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}
	if len(fields) > 0 {
		return nil, api.NewValidationError(errInvalidRequest, fields)
	}

	tenant, err := s.store.GetTenant(ctx, userID, msg.TenantID)
	if err != nil {
		s.logger.Warn("UpdateTenant failed", "tenant_id", msg.TenantID, "error", err)
		return nil, storeError(err)
	}
	if msg.Name != nil {
		tenant.Name = *msg.Name
	}
	if msg.BaseRent.IsSet() {
		tenant.BaseRent = baseRent
	}
	if msg.Contact != nil {
		tenant.Contact = *msg.Contact
	}

	if err := s.store.UpdateTenant(ctx, tenant); err != nil {
		s.logger.Error("UpdateTenant failed", "tenant_id", tenant.ID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("Tenant updated", "tenant_id", tenant.ID)
	return connect.NewResponse(&api.UpdateTenantResponse{
		Tenant:   api.FromTenant(tenant),
		Warnings: warnings(calculator.FieldBaseRent, warning),
	}), nil
}

// DeleteTenant removes a tenant. Its invoices are kept.
func (s *TenantService) DeleteTenant(ctx context.Context, req *connect.Request[api.DeleteTenantRequest]) (*connect.Response[api.DeleteTenantResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}
	s.logger.Info("DeleteTenant request received", "user_id", userID, "tenant_id", req.Msg.TenantID)

	if err := s.store.DeleteTenant(ctx, userID, req.Msg.TenantID); err != nil {
		s.logger.Warn("DeleteTenant failed", "tenant_id", req.Msg.TenantID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("Tenant deleted", "tenant_id", req.Msg.TenantID)
	return connect.NewResponse(&api.DeleteTenantResponse{}), nil
}

// DeleteAllTenants removes every tenant the caller owns.
func (s *TenantService) DeleteAllTenants(ctx context.Context, req *connect.Request[api.DeleteAllTenantsRequest]) (*connect.Response[api.DeleteAllTenantsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.store.DeleteAllTenants(ctx, userID)
	if err != nil {
		s.logger.Error("DeleteAllTenants failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("Tenants deleted", "user_id", userID, "count", n)
	return connect.NewResponse(&api.DeleteAllTenantsResponse{Deleted: n}), nil
}

// checkBaseRent parses and checks raw, recording problems in fields.
// The returned error is reserved for unexpected failures.
func (s *TenantService) checkBaseRent(raw api.Numeric, fields map[string]string) (decimal.Decimal, string, error) {
	v, err := raw.Decimal()
	if err != nil {
		fields[calculator.FieldBaseRent] = calculator.InvalidNumberMessage
		return decimal.Zero, "", nil
	}
	warning, err := s.limits.CheckBaseRent(v)
	if err != nil {
		return decimal.Zero, "", mergeValidation(err, fields)
	}
	return *v, warning, nil
}

func warnings(field, warning string) map[string]string {
	if warning == "" {
		return nil
	}
	return map[string]string{field: warning}
}
