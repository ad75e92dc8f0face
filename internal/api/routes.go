package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	AuthServiceName     = "rentbook.v1.AuthService"
	TenantServiceName   = "rentbook.v1.TenantService"
	InvoiceServiceName  = "rentbook.v1.InvoiceService"
	SettingsServiceName = "rentbook.v1.SettingsService"
)

const (
	AuthServiceRegisterProcedure       = "/rentbook.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/rentbook.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure = "/rentbook.v1.AuthService/GetCurrentUser"
	AuthServiceUpdateProfileProcedure  = "/rentbook.v1.AuthService/UpdateProfile"
	AuthServiceDeleteAccountProcedure  = "/rentbook.v1.AuthService/DeleteAccount"

	TenantServiceCreateTenantProcedure     = "/rentbook.v1.TenantService/CreateTenant"
	TenantServiceListTenantsProcedure      = "/rentbook.v1.TenantService/ListTenants"
	TenantServiceUpdateTenantProcedure     = "/rentbook.v1.TenantService/UpdateTenant"
	TenantServiceDeleteTenantProcedure     = "/rentbook.v1.TenantService/DeleteTenant"
	TenantServiceDeleteAllTenantsProcedure = "/rentbook.v1.TenantService/DeleteAllTenants"

	InvoiceServicePreviewInvoiceProcedure    = "/rentbook.v1.InvoiceService/PreviewInvoice"
	InvoiceServiceGetLastInvoiceProcedure    = "/rentbook.v1.InvoiceService/GetLastInvoice"
	InvoiceServiceGenerateInvoiceProcedure   = "/rentbook.v1.InvoiceService/GenerateInvoice"
	InvoiceServiceListInvoicesProcedure      = "/rentbook.v1.InvoiceService/ListInvoices"
	InvoiceServiceGetInvoiceProcedure        = "/rentbook.v1.InvoiceService/GetInvoice"
	InvoiceServiceDeleteInvoiceProcedure     = "/rentbook.v1.InvoiceService/DeleteInvoice"
	InvoiceServiceDeleteAllInvoicesProcedure = "/rentbook.v1.InvoiceService/DeleteAllInvoices"

	SettingsServiceGetSettingsProcedure       = "/rentbook.v1.SettingsService/GetSettings"
	SettingsServiceUpdateSettingsProcedure    = "/rentbook.v1.SettingsService/UpdateSettings"
	SettingsServiceGetAccountSummaryProcedure = "/rentbook.v1.SettingsService/GetAccountSummary"
)

// PublicProcedures may be called without a bearer token.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
}

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// MaxRequestBytes caps a decoded request message.
const MaxRequestBytes = 64 << 10

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{
		connect.WithCodec(Codec{}),
		connect.WithReadMaxBytes(MaxRequestBytes),
	}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

// AuthServiceHandler is implemented by the account service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error)
	UpdateProfile(context.Context, *connect.Request[UpdateProfileRequest]) (*connect.Response[UpdateProfileResponse], error)
	DeleteAccount(context.Context, *connect.Request[DeleteAccountRequest]) (*connect.Response[DeleteAccountResponse], error)
}

// NewAuthServiceHandler returns the mount path and handler for svc.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, AuthServiceRegisterProcedure, svc.Register, opts)
	handle(mux, AuthServiceLoginProcedure, svc.Login, opts)
	handle(mux, AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts)
	handle(mux, AuthServiceUpdateProfileProcedure, svc.UpdateProfile, opts)
	handle(mux, AuthServiceDeleteAccountProcedure, svc.DeleteAccount, opts)
	return "/" + AuthServiceName + "/", mux
}

type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, RegisterResponse]
	login          *connect.Client[LoginRequest, LoginResponse]
	getCurrentUser *connect.Client[GetCurrentUserRequest, GetCurrentUserResponse]
	updateProfile  *connect.Client[UpdateProfileRequest, UpdateProfileResponse]
	deleteAccount  *connect.Client[DeleteAccountRequest, DeleteAccountResponse]
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	opts = clientOptions(opts)
	return &AuthServiceClient{
		register:       newClient[RegisterRequest, RegisterResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:          newClient[LoginRequest, LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		getCurrentUser: newClient[GetCurrentUserRequest, GetCurrentUserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
		updateProfile:  newClient[UpdateProfileRequest, UpdateProfileResponse](httpClient, baseURL, AuthServiceUpdateProfileProcedure, opts),
		deleteAccount:  newClient[DeleteAccountRequest, DeleteAccountResponse](httpClient, baseURL, AuthServiceDeleteAccountProcedure, opts),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[GetCurrentUserRequest]) (*connect.Response[GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *AuthServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[UpdateProfileRequest]) (*connect.Response[UpdateProfileResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}

func (c *AuthServiceClient) DeleteAccount(ctx context.Context, req *connect.Request[DeleteAccountRequest]) (*connect.Response[DeleteAccountResponse], error) {
	return c.deleteAccount.CallUnary(ctx, req)
}

// TenantServiceHandler is implemented by the tenant service.
type TenantServiceHandler interface {
	CreateTenant(context.Context, *connect.Request[CreateTenantRequest]) (*connect.Response[CreateTenantResponse], error)
	ListTenants(context.Context, *connect.Request[ListTenantsRequest]) (*connect.Response[ListTenantsResponse], error)
	UpdateTenant(context.Context, *connect.Request[UpdateTenantRequest]) (*connect.Response[UpdateTenantResponse], error)
	DeleteTenant(context.Context, *connect.Request[DeleteTenantRequest]) (*connect.Response[DeleteTenantResponse], error)
	DeleteAllTenants(context.Context, *connect.Request[DeleteAllTenantsRequest]) (*connect.Response[DeleteAllTenantsResponse], error)
}

func NewTenantServiceHandler(svc TenantServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, TenantServiceCreateTenantProcedure, svc.CreateTenant, opts)
	handle(mux, TenantServiceListTenantsProcedure, svc.ListTenants, opts)
	handle(mux, TenantServiceUpdateTenantProcedure, svc.UpdateTenant, opts)
	handle(mux, TenantServiceDeleteTenantProcedure, svc.DeleteTenant, opts)
	handle(mux, TenantServiceDeleteAllTenantsProcedure, svc.DeleteAllTenants, opts)
	return "/" + TenantServiceName + "/", mux
}

type TenantServiceClient struct {
	createTenant     *connect.Client[CreateTenantRequest, CreateTenantResponse]
	listTenants      *connect.Client[ListTenantsRequest, ListTenantsResponse]
	updateTenant     *connect.Client[UpdateTenantRequest, UpdateTenantResponse]
	deleteTenant     *connect.Client[DeleteTenantRequest, DeleteTenantResponse]
	deleteAllTenants *connect.Client[DeleteAllTenantsRequest, DeleteAllTenantsResponse]
}

func NewTenantServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TenantServiceClient {
	opts = clientOptions(opts)
	return &TenantServiceClient{
		createTenant:     newClient[CreateTenantRequest, CreateTenantResponse](httpClient, baseURL, TenantServiceCreateTenantProcedure, opts),
		listTenants:      newClient[ListTenantsRequest, ListTenantsResponse](httpClient, baseURL, TenantServiceListTenantsProcedure, opts),
		updateTenant:     newClient[UpdateTenantRequest, UpdateTenantResponse](httpClient, baseURL, TenantServiceUpdateTenantProcedure, opts),
		deleteTenant:     newClient[DeleteTenantRequest, DeleteTenantResponse](httpClient, baseURL, TenantServiceDeleteTenantProcedure, opts),
		deleteAllTenants: newClient[DeleteAllTenantsRequest, DeleteAllTenantsResponse](httpClient, baseURL, TenantServiceDeleteAllTenantsProcedure, opts),
	}
}

func (c *TenantServiceClient) CreateTenant(ctx context.Context, req *connect.Request[CreateTenantRequest]) (*connect.Response[CreateTenantResponse], error) {
	return c.createTenant.CallUnary(ctx, req)
}

func (c *TenantServiceClient) ListTenants(ctx context.Context, req *connect.Request[ListTenantsRequest]) (*connect.Response[ListTenantsResponse], error) {
	return c.listTenants.CallUnary(ctx, req)
}

func (c *TenantServiceClient) UpdateTenant(ctx context.Context, req *connect.Request[UpdateTenantRequest]) (*connect.Response[UpdateTenantResponse], error) {
	return c.updateTenant.CallUnary(ctx, req)
}

func (c *TenantServiceClient) DeleteTenant(ctx context.Context, req *connect.Request[DeleteTenantRequest]) (*connect.Response[DeleteTenantResponse], error) {
	return c.deleteTenant.CallUnary(ctx, req)
}

func (c *TenantServiceClient) DeleteAllTenants(ctx context.Context, req *connect.Request[DeleteAllTenantsRequest]) (*connect.Response[DeleteAllTenantsResponse], error) {
	return c.deleteAllTenants.CallUnary(ctx, req)
}

// InvoiceServiceHandler is implemented by the invoice service.
type InvoiceServiceHandler interface {
	PreviewInvoice(context.Context, *connect.Request[PreviewInvoiceRequest]) (*connect.Response[PreviewInvoiceResponse], error)
	GetLastInvoice(context.Context, *connect.Request[GetLastInvoiceRequest]) (*connect.Response[GetLastInvoiceResponse], error)
	GenerateInvoice(context.Context, *connect.Request[GenerateInvoiceRequest]) (*connect.Response[GenerateInvoiceResponse], error)
	ListInvoices(context.Context, *connect.Request[ListInvoicesRequest]) (*connect.Response[ListInvoicesResponse], error)
	GetInvoice(context.Context, *connect.Request[GetInvoiceRequest]) (*connect.Response[GetInvoiceResponse], error)
	DeleteInvoice(context.Context, *connect.Request[DeleteInvoiceRequest]) (*connect.Response[DeleteInvoiceResponse], error)
	DeleteAllInvoices(context.Context, *connect.Request[DeleteAllInvoicesRequest]) (*connect.Response[DeleteAllInvoicesResponse], error)
}

func NewInvoiceServiceHandler(svc InvoiceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, InvoiceServicePreviewInvoiceProcedure, svc.PreviewInvoice, opts)
	handle(mux, InvoiceServiceGetLastInvoiceProcedure, svc.GetLastInvoice, opts)
	handle(mux, InvoiceServiceGenerateInvoiceProcedure, svc.GenerateInvoice, opts)
	handle(mux, InvoiceServiceListInvoicesProcedure, svc.ListInvoices, opts)
	handle(mux, InvoiceServiceGetInvoiceProcedure, svc.GetInvoice, opts)
	handle(mux, InvoiceServiceDeleteInvoiceProcedure, svc.DeleteInvoice, opts)
	handle(mux, InvoiceServiceDeleteAllInvoicesProcedure, svc.DeleteAllInvoices, opts)
	return "/" + InvoiceServiceName + "/", mux
}

type InvoiceServiceClient struct {
	previewInvoice    *connect.Client[PreviewInvoiceRequest, PreviewInvoiceResponse]
	getLastInvoice    *connect.Client[GetLastInvoiceRequest, GetLastInvoiceResponse]
	generateInvoice   *connect.Client[GenerateInvoiceRequest, GenerateInvoiceResponse]
	listInvoices      *connect.Client[ListInvoicesRequest, ListInvoicesResponse]
	getInvoice        *connect.Client[GetInvoiceRequest, GetInvoiceResponse]
	deleteInvoice     *connect.Client[DeleteInvoiceRequest, DeleteInvoiceResponse]
	deleteAllInvoices *connect.Client[DeleteAllInvoicesRequest, DeleteAllInvoicesResponse]
}

func NewInvoiceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *InvoiceServiceClient {
	opts = clientOptions(opts)
	return &InvoiceServiceClient{
		previewInvoice:    newClient[PreviewInvoiceRequest, PreviewInvoiceResponse](httpClient, baseURL, InvoiceServicePreviewInvoiceProcedure, opts),
		getLastInvoice:    newClient[GetLastInvoiceRequest, GetLastInvoiceResponse](httpClient, baseURL, InvoiceServiceGetLastInvoiceProcedure, opts),
		generateInvoice:   newClient[GenerateInvoiceRequest, GenerateInvoiceResponse](httpClient, baseURL, InvoiceServiceGenerateInvoiceProcedure, opts),
		listInvoices:      newClient[ListInvoicesRequest, ListInvoicesResponse](httpClient, baseURL, InvoiceServiceListInvoicesProcedure, opts),
		getInvoice:        newClient[GetInvoiceRequest, GetInvoiceResponse](httpClient, baseURL, InvoiceServiceGetInvoiceProcedure, opts),
		deleteInvoice:     newClient[DeleteInvoiceRequest, DeleteInvoiceResponse](httpClient, baseURL, InvoiceServiceDeleteInvoiceProcedure, opts),
		deleteAllInvoices: newClient[DeleteAllInvoicesRequest, DeleteAllInvoicesResponse](httpClient, baseURL, InvoiceServiceDeleteAllInvoicesProcedure, opts),
	}
}

func (c *InvoiceServiceClient) PreviewInvoice(ctx context.Context, req *connect.Request[PreviewInvoiceRequest]) (*connect.Response[PreviewInvoiceResponse], error) {
	return c.previewInvoice.CallUnary(ctx, req)
}

func (c *InvoiceServiceClient) GetLastInvoice(ctx context.Context, req *connect.Request[GetLastInvoiceRequest]) (*connect.Response[GetLastInvoiceResponse], error) {
	return c.getLastInvoice.CallUnary(ctx, req)
}

func (c *InvoiceServiceClient) GenerateInvoice(ctx context.Context, req *connect.Request[GenerateInvoiceRequest]) (*connect.Response[GenerateInvoiceResponse], error) {
	return c.generateInvoice.CallUnary(ctx, req)
}

func (c *InvoiceServiceClient) ListInvoices(ctx context.Context, req *connect.Request[ListInvoicesRequest]) (*connect.Response[ListInvoicesResponse], error) {
	return c.listInvoices.CallUnary(ctx, req)
}

func (c *InvoiceServiceClient) GetInvoice(ctx context.Context, req *connect.Request[GetInvoiceRequest]) (*connect.Response[GetInvoiceResponse], error) {
	return c.getInvoice.CallUnary(ctx, req)
}

func (c *InvoiceServiceClient) DeleteInvoice(ctx context.Context, req *connect.Request[DeleteInvoiceRequest]) (*connect.Response[DeleteInvoiceResponse], error) {
	return c.deleteInvoice.CallUnary(ctx, req)
}

func (c *InvoiceServiceClient) DeleteAllInvoices(ctx context.Context, req *connect.Request[DeleteAllInvoicesRequest]) (*connect.Response[DeleteAllInvoicesResponse], error) {
	return c.deleteAllInvoices.CallUnary(ctx, req)
}

// SettingsServiceHandler is implemented by the settings service.
type SettingsServiceHandler interface {
	GetSettings(context.Context, *connect.Request[GetSettingsRequest]) (*connect.Response[GetSettingsResponse], error)
	UpdateSettings(context.Context, *connect.Request[UpdateSettingsRequest]) (*connect.Response[UpdateSettingsResponse], error)
	GetAccountSummary(context.Context, *connect.Request[GetAccountSummaryRequest]) (*connect.Response[GetAccountSummaryResponse], error)
}

func NewSettingsServiceHandler(svc SettingsServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	handle(mux, SettingsServiceGetSettingsProcedure, svc.GetSettings, opts)
	handle(mux, SettingsServiceUpdateSettingsProcedure, svc.UpdateSettings, opts)
	handle(mux, SettingsServiceGetAccountSummaryProcedure, svc.GetAccountSummary, opts)
	return "/" + SettingsServiceName + "/", mux
}

type SettingsServiceClient struct {
	getSettings       *connect.Client[GetSettingsRequest, GetSettingsResponse]
	updateSettings    *connect.Client[UpdateSettingsRequest, UpdateSettingsResponse]
	getAccountSummary *connect.Client[GetAccountSummaryRequest, GetAccountSummaryResponse]
}

func NewSettingsServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettingsServiceClient {
	opts = clientOptions(opts)
	return &SettingsServiceClient{
		getSettings:       newClient[GetSettingsRequest, GetSettingsResponse](httpClient, baseURL, SettingsServiceGetSettingsProcedure, opts),
		updateSettings:    newClient[UpdateSettingsRequest, UpdateSettingsResponse](httpClient, baseURL, SettingsServiceUpdateSettingsProcedure, opts),
		getAccountSummary: newClient[GetAccountSummaryRequest, GetAccountSummaryResponse](httpClient, baseURL, SettingsServiceGetAccountSummaryProcedure, opts),
	}
}

func (c *SettingsServiceClient) GetSettings(ctx context.Context, req *connect.Request[GetSettingsRequest]) (*connect.Response[GetSettingsResponse], error) {
	return c.getSettings.CallUnary(ctx, req)
}

func (c *SettingsServiceClient) UpdateSettings(ctx context.Context, req *connect.Request[UpdateSettingsRequest]) (*connect.Response[UpdateSettingsResponse], error) {
	return c.updateSettings.CallUnary(ctx, req)
}

func (c *SettingsServiceClient) GetAccountSummary(ctx context.Context, req *connect.Request[GetAccountSummaryRequest]) (*connect.Response[GetAccountSummaryResponse], error) {
	return c.getAccountSummary.CallUnary(ctx, req)
}
