package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/rentbook/internal/api"
	"github.com/mmynk/rentbook/internal/billing"
	"github.com/mmynk/rentbook/internal/calculator"
	"github.com/mmynk/rentbook/internal/models"
	"github.com/mmynk/rentbook/internal/storage"
)

// InvoiceService implements the InvoiceService RPC interface.
type InvoiceService struct {
	store    storage.Store
	resolver *billing.Resolver
	limits   calculator.Limits
	logger   *slog.Logger

	// generation for one tenant is serialized so two concurrent requests
	// cannot both carry over the same previous reading
	tenantLocks *keyedMutex
	now         func() time.Time
}

func NewInvoiceService(store storage.Store, resolver *billing.Resolver, limits calculator.Limits, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{
		store:       store,
		resolver:    resolver,
		limits:      limits,
		logger:      logger,
		tenantLocks: newKeyedMutex(),
		now:         time.Now,
	}
}

// PreviewInvoice computes an invoice without storing it. An omitted rate is
// resolved from the caller's settings.
func (s *InvoiceService) PreviewInvoice(ctx context.Context, req *connect.Request[api.PreviewInvoiceRequest]) (*connect.Response[api.PreviewInvoiceResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.Debug("PreviewInvoice request received", "user_id", userID)

	form := calculator.InvoiceForm{
		PreviousMonthReading: string(msg.PreviousMonthReading),
		CurrentMonthReading:  string(msg.CurrentMonthReading),
		BaseRent:             string(msg.BaseRent),
		ElectricityRate:      string(msg.ElectricityRate),
		InvoiceDate:          msg.InvoiceDate,
	}
	if !msg.ElectricityRate.IsSet() {
		rate, err := s.resolver.ResolveRate(ctx, userID)
		if err != nil {
			s.logger.Error("PreviewInvoice rate lookup failed", "user_id", userID, "error", err)
			return nil, lookupError(err)
		}
		form.ElectricityRate = rate.String()
	}

	res, err := s.limits.ComputeInvoiceForm(form, s.now())
	if err != nil {
		s.logger.Debug("PreviewInvoice rejected", "user_id", userID, "error", err)
		return nil, invoiceError(err)
	}

	return connect.NewResponse(&api.PreviewInvoiceResponse{
		Computation: api.FromComputation(res),
	}), nil
}

// GetLastInvoice returns the reading a new invoice for the tenant would
// start from, with the invoice it came from.
func (s *InvoiceService) GetLastInvoice(ctx context.Context, req *connect.Request[api.GetLastInvoiceRequest]) (*connect.Response[api.GetLastInvoiceResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}
	s.logger.Info("GetLastInvoice request received", "user_id", userID, "tenant_id", req.Msg.TenantID)

	last, err := s.resolver.LastInvoice(ctx, userID, req.Msg.TenantID)
	if err != nil {
		s.logger.Error("GetLastInvoice failed", "tenant_id", req.Msg.TenantID, "error", err)
		return nil, lookupError(err)
	}

	resp := &api.GetLastInvoiceResponse{PreviousMonthReading: decimal.Zero}
	if last != nil {
		resp.PreviousMonthReading = last.CurrentMonthReading
		resp.Invoice = api.FromInvoice(last)
	}
	return connect.NewResponse(resp), nil
}

// GenerateInvoice computes and stores an invoice for one of the caller's
// tenants. Omitted values are filled in: the previous reading from the
// tenant's last invoice, the base rent from the tenant, and the rate from the
// caller's settings. Tenant name, base rent and rate are copied onto the
// invoice so later edits do not change it.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, req *connect.Request[api.GenerateInvoiceRequest]) (*connect.Response[api.GenerateInvoiceResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	if err := checkRequest(msg); err != nil {
		return nil, err
	}
	s.logger.Info("GenerateInvoice request received", "user_id", userID, "tenant_id", msg.TenantID)

	unlock := s.tenantLocks.Lock(userID + "/" + msg.TenantID)
	defer unlock()

	tenant, err := s.store.GetTenant(ctx, userID, msg.TenantID)
	if err != nil {
		s.logger.Warn("GenerateInvoice failed - tenant not found", "tenant_id", msg.TenantID, "error", err)
		return nil, storeError(err)
	}

	form := calculator.InvoiceForm{
		PreviousMonthReading: string(msg.PreviousMonthReading),
		CurrentMonthReading:  string(msg.CurrentMonthReading),
		BaseRent:             string(msg.BaseRent),
		InvoiceDate:          msg.InvoiceDate,
	}
	if !msg.PreviousMonthReading.IsSet() {
		form.PreviousMonthReading = s.carriedOverReading(ctx, userID, tenant.ID).String()
		form.PreviousCarriedOver = true
	}
	if !msg.BaseRent.IsSet() {
		form.BaseRent = tenant.BaseRent.String()
	}

	rate, err := s.resolver.ResolveRate(ctx, userID)
	if err != nil {
		s.logger.Error("GenerateInvoice failed - rate lookup", "user_id", userID, "error", err)
		return nil, lookupError(err)
	}
	form.ElectricityRate = rate.String()

	res, err := s.limits.ComputeInvoiceForm(form, s.now())
	if err != nil {
		s.logger.Info("GenerateInvoice rejected", "tenant_id", tenant.ID, "error", err)
		return nil, invoiceError(err)
	}

	invoice := &models.Invoice{
		UserID:               userID,
		TenantID:             tenant.ID,
		TenantName:           tenant.Name,
		Date:                 res.InvoiceDate,
		BaseRent:             res.BaseRent,
		PreviousMonthReading: res.PreviousMonthReading,
		CurrentMonthReading:  res.CurrentMonthReading,
		UnitsConsumed:        res.UnitsConsumed,
		ElectricityRate:      decimal.NewNullDecimal(res.ElectricityRate),
		ElectricityCost:      res.ElectricityCost,
		Total:                res.Total,
	}
	if err := s.store.CreateInvoice(ctx, invoice); err != nil {
		s.logger.Error("GenerateInvoice failed - could not save", "tenant_id", tenant.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	invoicesGeneratedTotal.Inc()

	s.logger.Info("Invoice generated",
		"invoice_id", invoice.ID,
		"tenant_id", tenant.ID,
		"total", calculator.FormatAmount(invoice.Total),
	)
	return connect.NewResponse(&api.GenerateInvoiceResponse{
		Invoice:             api.FromInvoice(invoice),
		PreviousCarriedOver: form.PreviousCarriedOver,
		Warnings:            res.Warnings,
	}), nil
}

// carriedOverReading resolves the tenant's last reading. A failed lookup is
// logged and treated as no history so billing is not blocked.
func (s *InvoiceService) carriedOverReading(ctx context.Context, userID, tenantID string) decimal.Decimal {
	prev, err := s.resolver.ResolvePreviousReading(ctx, userID, tenantID)
	if err != nil {
		s.logger.Warn("Previous reading lookup failed, starting from zero", "tenant_id", tenantID, "error", err)
		return decimal.Zero
	}
	return prev
}

// ListInvoices returns the caller's invoices newest first, optionally for one tenant.
func (s *InvoiceService) ListInvoices(ctx context.Context, req *connect.Request[api.ListInvoicesRequest]) (*connect.Response[api.ListInvoicesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	tenantID := req.Msg.TenantID

	var invoices []*models.Invoice
	if tenantID != "" {
		invoices, err = s.store.ListInvoicesByTenant(ctx, userID, tenantID)
	} else {
		invoices, err = s.store.ListInvoices(ctx, userID)
	}
	if err != nil {
		s.logger.Error("ListInvoices failed", "user_id", userID, "tenant_id", tenantID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("ListInvoices successful", "user_id", userID, "count", len(invoices))
	return connect.NewResponse(&api.ListInvoicesResponse{Invoices: api.FromInvoices(invoices)}), nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, req *connect.Request[api.GetInvoiceRequest]) (*connect.Response[api.GetInvoiceResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	invoice, err := s.store.GetInvoice(ctx, userID, req.Msg.InvoiceID)
	if err != nil {
		s.logger.Warn("GetInvoice failed", "invoice_id", req.Msg.InvoiceID, "error", err)
		return nil, storeError(err)
	}
	return connect.NewResponse(&api.GetInvoiceResponse{Invoice: api.FromInvoice(invoice)}), nil
}

func (s *InvoiceService) DeleteInvoice(ctx context.Context, req *connect.Request[api.DeleteInvoiceRequest]) (*connect.Response[api.DeleteInvoiceResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}
	s.logger.Info("DeleteInvoice request received", "user_id", userID, "invoice_id", req.Msg.InvoiceID)

	if err := s.store.DeleteInvoice(ctx, userID, req.Msg.InvoiceID); err != nil {
		s.logger.Warn("DeleteInvoice failed", "invoice_id", req.Msg.InvoiceID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("Invoice deleted", "invoice_id", req.Msg.InvoiceID)
	return connect.NewResponse(&api.DeleteInvoiceResponse{}), nil
}

func (s *InvoiceService) DeleteAllInvoices(ctx context.Context, req *connect.Request[api.DeleteAllInvoicesRequest]) (*connect.Response[api.DeleteAllInvoicesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.store.DeleteAllInvoices(ctx, userID)
	if err != nil {
		s.logger.Error("DeleteAllInvoices failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}

	s.logger.Info("Invoices deleted", "user_id", userID, "count", n)
	return connect.NewResponse(&api.DeleteAllInvoicesResponse{Deleted: n}), nil
}
