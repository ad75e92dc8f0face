package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/rentbook/internal/api"
	"github.com/mmynk/rentbook/internal/billing"
	"github.com/mmynk/rentbook/internal/calculator"
	"github.com/mmynk/rentbook/internal/middleware"
	"github.com/mmynk/rentbook/internal/models"
	"github.com/mmynk/rentbook/internal/storage/sqlite"
)

const testUserID = "landlord-1"

// testAuthInterceptor returns a Connect interceptor that sets a test user ID in the context.
func testAuthInterceptor(userID string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ctx = context.WithValue(ctx, middleware.UserIDKey, userID)
			return next(ctx, req)
		}
	}
}

type testEnv struct {
	store    *sqlite.SQLiteStore
	tenants  *api.TenantServiceClient
	invoices *api.InvoiceServiceClient
	settings *api.SettingsServiceClient
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

// setupTestServer serves the tenant, invoice and settings services over a
// fresh SQLite database, authenticated as testUserID.
func setupTestServer(t *testing.T) *testEnv {
	store := newTestStore(t)
	return setupTestServerWith(t, store, billing.NewResolver(store, store, models.DefaultElectricityRate))
}

func setupTestServerWith(t *testing.T, store *sqlite.SQLiteStore, resolver *billing.Resolver) *testEnv {
	t.Helper()

	user := models.NewUser("landlord@example.com", "Landlord", "hash")
	user.ID = testUserID
	require.NoError(t, store.CreateUser(context.Background(), user))

	logger := discardLogger()
	limits := calculator.DefaultLimits
	authInterceptor := connect.WithInterceptors(testAuthInterceptor(testUserID))

	mux := http.NewServeMux()
	mux.Handle(api.NewTenantServiceHandler(NewTenantService(store, limits, logger), authInterceptor))
	mux.Handle(api.NewInvoiceServiceHandler(NewInvoiceService(store, resolver, limits, logger), authInterceptor))
	mux.Handle(api.NewSettingsServiceHandler(NewSettingsService(store, resolver, limits, logger), authInterceptor))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{
		store:    store,
		tenants:  api.NewTenantServiceClient(http.DefaultClient, server.URL),
		invoices: api.NewInvoiceServiceClient(http.DefaultClient, server.URL),
		settings: api.NewSettingsServiceClient(http.DefaultClient, server.URL),
	}
}

func (e *testEnv) createTenant(t *testing.T, name, baseRent string) *api.Tenant {
	t.Helper()

	resp, err := e.tenants.CreateTenant(context.Background(), connect.NewRequest(&api.CreateTenantRequest{
		Name:     name,
		BaseRent: api.Numeric(baseRent),
	}))
	require.NoError(t, err, "CreateTenant failed")
	return resp.Msg.Tenant
}

func (e *testEnv) generate(t *testing.T, req *api.GenerateInvoiceRequest) *api.GenerateInvoiceResponse {
	t.Helper()

	resp, err := e.invoices.GenerateInvoice(context.Background(), connect.NewRequest(req))
	require.NoError(t, err, "GenerateInvoice failed")
	return resp.Msg
}

func (e *testEnv) setRate(t *testing.T, rate string) {
	t.Helper()

	_, err := e.settings.UpdateSettings(context.Background(), connect.NewRequest(&api.UpdateSettingsRequest{
		ElectricityRate: api.Numeric(rate),
	}))
	require.NoError(t, err, "UpdateSettings failed")
}

func assertDecimal(t *testing.T, want string, got interface{ String() string }) {
	t.Helper()
	assert.Equal(t, want, got.String())
}

func assertInvalidFields(t *testing.T, err error, fields ...string) {
	t.Helper()

	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	details := api.FieldErrors(err)
	for _, f := range fields {
		assert.Contains(t, details, f)
	}
}
