package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/rentbook/internal/api"
	"github.com/mmynk/rentbook/internal/billing"
	"github.com/mmynk/rentbook/internal/calculator"
	"github.com/mmynk/rentbook/internal/models"
)

var errDiskFull = errors.New("disk full")

type failingInvoices struct{}

func (failingInvoices) ListInvoicesByTenant(context.Context, string, string) ([]*models.Invoice, error) {
	return nil, errDiskFull
}

type failingSettings struct{}

func (failingSettings) GetSettings(context.Context, string) (*models.Settings, error) {
	return nil, errDiskFull
}

func TestGenerateInvoice_StandardMonth(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Ravi", "12000")

	resp := env.generate(t, &api.GenerateInvoiceRequest{
		TenantID:             tenant.ID,
		InvoiceDate:          "2025-06-01",
		PreviousMonthReading: "500",
		CurrentMonthReading:  "530",
	})

	inv := resp.Invoice
	require.NotNil(t, inv)
	assert.NotEmpty(t, inv.ID)
	assert.False(t, resp.PreviousCarriedOver)
	assert.Equal(t, "Ravi", inv.TenantName)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), inv.Date)
	assertDecimal(t, "30", inv.UnitsConsumed)
	assertDecimal(t, "15", inv.ElectricityRate)
	assertDecimal(t, "450", inv.ElectricityCost)
	assertDecimal(t, "12450", inv.Total)
	assert.Equal(t, "12450.00", inv.Display.Total)
	assert.Equal(t, "450.00", inv.Display.ElectricityCost)

	got, err := env.invoices.GetInvoice(context.Background(), connect.NewRequest(&api.GetInvoiceRequest{InvoiceID: inv.ID}))
	require.NoError(t, err)
	assertDecimal(t, "12450", got.Msg.Invoice.Total)
}

func TestGenerateInvoice_NoConsumption(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Asha", "5000")

	resp := env.generate(t, &api.GenerateInvoiceRequest{
		TenantID:             tenant.ID,
		InvoiceDate:          "2025-06-01",
		PreviousMonthReading: "0",
		CurrentMonthReading:  "0",
	})
	assertDecimal(t, "0", resp.Invoice.ElectricityCost)
	assertDecimal(t, "5000", resp.Invoice.Total)
}

func TestGenerateInvoice_CarriesOverPreviousReading(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Ravi", "12000")

	first := env.generate(t, &api.GenerateInvoiceRequest{
		TenantID:            tenant.ID,
		InvoiceDate:         "2025-05-01",
		CurrentMonthReading: "500",
	})
	assert.True(t, first.PreviousCarriedOver)
	assertDecimal(t, "0", first.Invoice.PreviousMonthReading)

	second := env.generate(t, &api.GenerateInvoiceRequest{
		TenantID:            tenant.ID,
		InvoiceDate:         "2025-06-01",
		CurrentMonthReading: "530",
	})
	assert.True(t, second.PreviousCarriedOver)
	assertDecimal(t, "500", second.Invoice.PreviousMonthReading)
	assertDecimal(t, "30", second.Invoice.UnitsConsumed)
	assertDecimal(t, "12450", second.Invoice.Total)
}

func TestGenerateInvoice_LatestDateWinsCarryOver(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Ravi", "12000")

	env.generate(t, &api.GenerateInvoiceRequest{TenantID: tenant.ID, InvoiceDate: "2025-06-01", CurrentMonthReading: "700"})
	// back-filled older month
	env.generate(t, &api.GenerateInvoiceRequest{TenantID: tenant.ID, InvoiceDate: "2025-04-01", PreviousMonthReading: "0", CurrentMonthReading: "300"})

	resp, err := env.invoices.GetLastInvoice(context.Background(), connect.NewRequest(&api.GetLastInvoiceRequest{TenantID: tenant.ID}))
	require.NoError(t, err)
	assertDecimal(t, "700", resp.Msg.PreviousMonthReading)
}

func TestGenerateInvoice_CarriedOverRegressionFloorsAtZero(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Ravi", "8000")

	env.generate(t, &api.GenerateInvoiceRequest{TenantID: tenant.ID, InvoiceDate: "2025-05-01", CurrentMonthReading: "100"})

	// meter replaced
	resp := env.generate(t, &api.GenerateInvoiceRequest{TenantID: tenant.ID, InvoiceDate: "2025-06-01", CurrentMonthReading: "40"})
	assertDecimal(t, "0", resp.Invoice.UnitsConsumed)
	assertDecimal(t, "8000", resp.Invoice.Total)
	assert.Contains(t, resp.Warnings, calculator.FieldCurrentMonthReading)
}

func TestGenerateInvoice_ExplicitRegressionRejected(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Ravi", "8000")

	_, err := env.invoices.GenerateInvoice(context.Background(), connect.NewRequest(&api.GenerateInvoiceRequest{
		TenantID:             tenant.ID,
		InvoiceDate:          "2025-06-01",
		PreviousMonthReading: "600",
		CurrentMonthReading:  "500",
	}))
	assertInvalidFields(t, err, calculator.FieldCurrentMonthReading)

	list, err := env.invoices.ListInvoices(context.Background(), connect.NewRequest(&api.ListInvoicesRequest{}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Invoices, "nothing stored on validation failure")
}

func TestGenerateInvoice_ReportsEveryInvalidField(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Ravi", "8000")

	tomorrow := time.Now().AddDate(0, 0, 2).Format(calculator.DateLayout)
	_, err := env.invoices.GenerateInvoice(context.Background(), connect.NewRequest(&api.GenerateInvoiceRequest{
		TenantID:             tenant.ID,
		InvoiceDate:          tomorrow,
		PreviousMonthReading: "-5",
		CurrentMonthReading:  "abc",
		BaseRent:             "0",
	}))
	assertInvalidFields(t, err,
		calculator.FieldInvoiceDate,
		calculator.FieldPreviousMonthReading,
		calculator.FieldCurrentMonthReading,
		calculator.FieldBaseRent,
	)
	assert.Equal(t, calculator.InvalidNumberMessage, api.FieldErrors(err)[calculator.FieldCurrentMonthReading])
}

func TestGenerateInvoice_RejectsOutOfRangeNumbers(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	tenant := env.createTenant(t, "Ravi", "8000")

	start := time.Now()
	_, err := env.invoices.GenerateInvoice(ctx, connect.NewRequest(&api.GenerateInvoiceRequest{
		TenantID:            tenant.ID,
		InvoiceDate:         "2025-06-01",
		CurrentMonthReading: "1e50000000",
	}))
	assertInvalidFields(t, err, calculator.FieldCurrentMonthReading)
	assert.Equal(t, calculator.InvalidNumberMessage, api.FieldErrors(err)[calculator.FieldCurrentMonthReading])
	assert.Less(t, time.Since(start), 5*time.Second)

	_, err = env.invoices.GenerateInvoice(ctx, connect.NewRequest(&api.GenerateInvoiceRequest{
		TenantID:            tenant.ID,
		InvoiceDate:         "2025-06-01",
		CurrentMonthReading: api.Numeric(strings.Repeat("9", api.MaxRequestBytes)),
	}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))

	list, err := env.invoices.ListInvoices(ctx, connect.NewRequest(&api.ListInvoicesRequest{}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Invoices)
}

func TestGenerateInvoice_OffsetDateKeepsCalendarDay(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Ravi", "8000")

	resp := env.generate(t, &api.GenerateInvoiceRequest{
		TenantID:            tenant.ID,
		InvoiceDate:         "2025-06-15T00:30:00+05:30",
		CurrentMonthReading: "10",
	})
	want := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, want, resp.Invoice.Date)

	got, err := env.invoices.GetInvoice(context.Background(), connect.NewRequest(&api.GetInvoiceRequest{InvoiceID: resp.Invoice.ID}))
	require.NoError(t, err)
	assert.Equal(t, want, got.Msg.Invoice.Date)
}

func TestGenerateInvoice_MissingFields(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Ravi", "8000")

	_, err := env.invoices.GenerateInvoice(context.Background(), connect.NewRequest(&api.GenerateInvoiceRequest{
		TenantID: tenant.ID,
	}))
	assertInvalidFields(t, err, calculator.FieldCurrentMonthReading, calculator.FieldInvoiceDate)

	_, err = env.invoices.GenerateInvoice(context.Background(), connect.NewRequest(&api.GenerateInvoiceRequest{
		CurrentMonthReading: "10",
		InvoiceDate:         "2025-06-01",
	}))
	assertInvalidFields(t, err, "tenantId")
}

func TestGenerateInvoice_TenantNotFound(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.invoices.GenerateInvoice(context.Background(), connect.NewRequest(&api.GenerateInvoiceRequest{
		TenantID:            "no-such-tenant",
		InvoiceDate:         "2025-06-01",
		CurrentMonthReading: "10",
	}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestGenerateInvoice_SnapshotsRateAndRent(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	tenant := env.createTenant(t, "Ravi", "12000")

	old := env.generate(t, &api.GenerateInvoiceRequest{
		TenantID:             tenant.ID,
		InvoiceDate:          "2025-05-01",
		PreviousMonthReading: "500",
		CurrentMonthReading:  "530",
	}).Invoice

	env.setRate(t, "20")
	newRent := api.Numeric("13000")
	newName := "Ravi Kumar"
	_, err := env.tenants.UpdateTenant(ctx, connect.NewRequest(&api.UpdateTenantRequest{
		TenantID: tenant.ID,
		Name:     &newName,
		BaseRent: newRent,
	}))
	require.NoError(t, err)

	got, err := env.invoices.GetInvoice(ctx, connect.NewRequest(&api.GetInvoiceRequest{InvoiceID: old.ID}))
	require.NoError(t, err)
	assertDecimal(t, "15", got.Msg.Invoice.ElectricityRate)
	assertDecimal(t, "12000", got.Msg.Invoice.BaseRent)
	assertDecimal(t, "12450", got.Msg.Invoice.Total)
	assert.Equal(t, "Ravi", got.Msg.Invoice.TenantName)

	next := env.generate(t, &api.GenerateInvoiceRequest{
		TenantID:            tenant.ID,
		InvoiceDate:         "2025-06-01",
		CurrentMonthReading: "560",
	}).Invoice
	assertDecimal(t, "20", next.ElectricityRate)
	assertDecimal(t, "13000", next.BaseRent)
	assertDecimal(t, "13600", next.Total)
	assert.Equal(t, "Ravi Kumar", next.TenantName)
}

func TestGenerateInvoice_BaseRentOverride(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Ravi", "12000")

	resp := env.generate(t, &api.GenerateInvoiceRequest{
		TenantID:             tenant.ID,
		InvoiceDate:          "2025-06-01",
		PreviousMonthReading: "0",
		CurrentMonthReading:  "0",
		BaseRent:             "6000",
	})
	assertDecimal(t, "6000", resp.Invoice.Total)
}

func TestGenerateInvoice_CarryOverLookupFailureStartsFromZero(t *testing.T) {
	store := newTestStore(t)
	env := setupTestServerWith(t, store, billing.NewResolver(failingInvoices{}, store, models.DefaultElectricityRate))
	tenant := env.createTenant(t, "Ravi", "1000")

	resp := env.generate(t, &api.GenerateInvoiceRequest{
		TenantID:            tenant.ID,
		InvoiceDate:         "2025-06-01",
		CurrentMonthReading: "10",
	})
	assertDecimal(t, "0", resp.Invoice.PreviousMonthReading)
	assertDecimal(t, "1150", resp.Invoice.Total)
}

func TestGenerateInvoice_RateLookupFailureIsUnavailable(t *testing.T) {
	store := newTestStore(t)
	env := setupTestServerWith(t, store, billing.NewResolver(store, failingSettings{}, models.DefaultElectricityRate))
	tenant := env.createTenant(t, "Ravi", "1000")

	_, err := env.invoices.GenerateInvoice(context.Background(), connect.NewRequest(&api.GenerateInvoiceRequest{
		TenantID:            tenant.ID,
		InvoiceDate:         "2025-06-01",
		CurrentMonthReading: "10",
	}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	assert.Nil(t, api.FieldErrors(err))
}

func TestGenerateInvoice_ConcurrentCarryOverIsSerialized(t *testing.T) {
	env := setupTestServer(t)
	tenant := env.createTenant(t, "Ravi", "1000")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.invoices.GenerateInvoice(context.Background(), connect.NewRequest(&api.GenerateInvoiceRequest{
				TenantID:            tenant.ID,
				InvoiceDate:         "2025-06-01",
				CurrentMonthReading: api.NumericOf(decimal.NewFromInt(int64(100 * (i + 1)))),
			}))
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	list, err := env.invoices.ListInvoices(context.Background(), connect.NewRequest(&api.ListInvoicesRequest{TenantID: tenant.ID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Invoices, n)

	// each generation saw the one stored before it
	previous := lo.Map(list.Msg.Invoices, func(inv *api.Invoice, _ int) string { return inv.PreviousMonthReading.String() })
	assert.Len(t, lo.Uniq(previous), n)
}

func TestPreviewInvoice(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	env.setRate(t, "10")

	t.Run("resolves rate from settings and stores nothing", func(t *testing.T) {
		resp, err := env.invoices.PreviewInvoice(ctx, connect.NewRequest(&api.PreviewInvoiceRequest{
			PreviousMonthReading: "100.125",
			CurrentMonthReading:  "150.5",
			BaseRent:             "999.99",
			InvoiceDate:          "2025-06-01",
		}))
		require.NoError(t, err)
		c := resp.Msg.Computation
		assertDecimal(t, "50.375", c.UnitsConsumed)
		assertDecimal(t, "10", c.ElectricityRate)
		assertDecimal(t, "1503.74", c.Total)
		assert.Equal(t, "503.75", c.Display.ElectricityCost)

		list, err := env.invoices.ListInvoices(ctx, connect.NewRequest(&api.ListInvoicesRequest{}))
		require.NoError(t, err)
		assert.Empty(t, list.Msg.Invoices)
	})

	t.Run("explicit rate wins", func(t *testing.T) {
		resp, err := env.invoices.PreviewInvoice(ctx, connect.NewRequest(&api.PreviewInvoiceRequest{
			CurrentMonthReading: "42",
			BaseRent:            "1000",
			ElectricityRate:     "7.5",
			InvoiceDate:         "2025-06-01",
		}))
		require.NoError(t, err)
		assertDecimal(t, "1315", resp.Msg.Computation.Total)
	})

	t.Run("soft ceilings warn", func(t *testing.T) {
		resp, err := env.invoices.PreviewInvoice(ctx, connect.NewRequest(&api.PreviewInvoiceRequest{
			CurrentMonthReading: "1",
			BaseRent:            "2000000",
			InvoiceDate:         "2025-06-01",
		}))
		require.NoError(t, err)
		assert.Contains(t, resp.Msg.Computation.Warnings, calculator.FieldBaseRent)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := env.invoices.PreviewInvoice(ctx, connect.NewRequest(&api.PreviewInvoiceRequest{
			CurrentMonthReading: "NaN",
			InvoiceDate:         "06/01/2025",
		}))
		assertInvalidFields(t, err,
			calculator.FieldCurrentMonthReading,
			calculator.FieldBaseRent,
			calculator.FieldInvoiceDate,
		)
	})
}

func TestGetLastInvoice(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	tenant := env.createTenant(t, "Ravi", "1000")

	resp, err := env.invoices.GetLastInvoice(ctx, connect.NewRequest(&api.GetLastInvoiceRequest{TenantID: tenant.ID}))
	require.NoError(t, err)
	assert.Nil(t, resp.Msg.Invoice)
	assertDecimal(t, "0", resp.Msg.PreviousMonthReading)

	env.generate(t, &api.GenerateInvoiceRequest{TenantID: tenant.ID, InvoiceDate: "2025-05-01", CurrentMonthReading: "120"})
	latest := env.generate(t, &api.GenerateInvoiceRequest{TenantID: tenant.ID, InvoiceDate: "2025-06-01", CurrentMonthReading: "180"})

	resp, err = env.invoices.GetLastInvoice(ctx, connect.NewRequest(&api.GetLastInvoiceRequest{TenantID: tenant.ID}))
	require.NoError(t, err)
	require.NotNil(t, resp.Msg.Invoice)
	assert.Equal(t, latest.Invoice.ID, resp.Msg.Invoice.ID)
	assertDecimal(t, "180", resp.Msg.PreviousMonthReading)
}

func TestListAndDeleteInvoices(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	ravi := env.createTenant(t, "Ravi", "1000")
	asha := env.createTenant(t, "Asha", "2000")

	r1 := env.generate(t, &api.GenerateInvoiceRequest{TenantID: ravi.ID, InvoiceDate: "2025-05-01", CurrentMonthReading: "10"}).Invoice
	env.generate(t, &api.GenerateInvoiceRequest{TenantID: asha.ID, InvoiceDate: "2025-06-01", CurrentMonthReading: "20"})
	env.generate(t, &api.GenerateInvoiceRequest{TenantID: ravi.ID, InvoiceDate: "2025-04-01", PreviousMonthReading: "0", CurrentMonthReading: "5"})

	all, err := env.invoices.ListInvoices(ctx, connect.NewRequest(&api.ListInvoicesRequest{}))
	require.NoError(t, err)
	require.Len(t, all.Msg.Invoices, 3)
	assert.Equal(t, "Asha", all.Msg.Invoices[0].TenantName, "newest date first")

	byTenant, err := env.invoices.ListInvoices(ctx, connect.NewRequest(&api.ListInvoicesRequest{TenantID: ravi.ID}))
	require.NoError(t, err)
	assert.Len(t, byTenant.Msg.Invoices, 2)

	_, err = env.invoices.DeleteInvoice(ctx, connect.NewRequest(&api.DeleteInvoiceRequest{InvoiceID: r1.ID}))
	require.NoError(t, err)

	_, err = env.invoices.GetInvoice(ctx, connect.NewRequest(&api.GetInvoiceRequest{InvoiceID: r1.ID}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = env.invoices.DeleteInvoice(ctx, connect.NewRequest(&api.DeleteInvoiceRequest{InvoiceID: r1.ID}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	deleted, err := env.invoices.DeleteAllInvoices(ctx, connect.NewRequest(&api.DeleteAllInvoicesRequest{}))
	require.NoError(t, err)
	assert.Equal(t, 2, deleted.Msg.Deleted)
}

func TestInvoicesSurviveTenantDeletion(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	tenant := env.createTenant(t, "Ravi", "1000")
	inv := env.generate(t, &api.GenerateInvoiceRequest{TenantID: tenant.ID, InvoiceDate: "2025-06-01", CurrentMonthReading: "10"}).Invoice

	_, err := env.tenants.DeleteTenant(ctx, connect.NewRequest(&api.DeleteTenantRequest{TenantID: tenant.ID}))
	require.NoError(t, err)

	got, err := env.invoices.GetInvoice(ctx, connect.NewRequest(&api.GetInvoiceRequest{InvoiceID: inv.ID}))
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.Msg.Invoice.TenantName)
}
