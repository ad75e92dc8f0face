package api

import (
	"github.com/samber/lo"

	"github.com/mmynk/rentbook/internal/calculator"
	"github.com/mmynk/rentbook/internal/models"
)

func FromUser(u *models.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func FromTenant(t *models.Tenant) *Tenant {
	return &Tenant{
		ID:        t.ID,
		Name:      t.Name,
		BaseRent:  t.BaseRent,
		Contact:   t.Contact,
		CreatedAt: t.CreatedAt,
	}
}

func FromTenants(tenants []*models.Tenant) []*Tenant {
	return lo.Map(tenants, func(t *models.Tenant, _ int) *Tenant { return FromTenant(t) })
}

// FromInvoice reports the invoice's own rate, or the default for invoices
// stored before rates were recorded.
func FromInvoice(inv *models.Invoice) *Invoice {
	rate := inv.Rate()
	return &Invoice{
		ID:                   inv.ID,
		TenantID:             inv.TenantID,
		TenantName:           inv.TenantName,
		Date:                 inv.Date,
		BaseRent:             inv.BaseRent,
		PreviousMonthReading: inv.PreviousMonthReading,
		CurrentMonthReading:  inv.CurrentMonthReading,
		UnitsConsumed:        inv.UnitsConsumed,
		ElectricityRate:      rate,
		ElectricityCost:      inv.ElectricityCost,
		Total:                inv.Total,
		CreatedAt:            inv.CreatedAt,
		Display: Amounts{
			BaseRent:        calculator.FormatAmount(inv.BaseRent),
			ElectricityRate: calculator.FormatAmount(rate),
			ElectricityCost: calculator.FormatAmount(inv.ElectricityCost),
			Total:           calculator.FormatAmount(inv.Total),
		},
	}
}

func FromInvoices(invoices []*models.Invoice) []*Invoice {
	return lo.Map(invoices, func(inv *models.Invoice, _ int) *Invoice { return FromInvoice(inv) })
}

func FromComputation(c *calculator.InvoiceComputation) *Computation {
	return &Computation{
		PreviousMonthReading: c.PreviousMonthReading,
		CurrentMonthReading:  c.CurrentMonthReading,
		BaseRent:             c.BaseRent,
		ElectricityRate:      c.ElectricityRate,
		InvoiceDate:          c.InvoiceDate,
		UnitsConsumed:        c.UnitsConsumed,
		ElectricityCost:      c.ElectricityCost,
		Total:                c.Total,
		Warnings:             c.Warnings,
		Display: Amounts{
			BaseRent:        calculator.FormatAmount(c.BaseRent),
			ElectricityRate: calculator.FormatAmount(c.ElectricityRate),
			ElectricityCost: calculator.FormatAmount(c.ElectricityCost),
			Total:           calculator.FormatAmount(c.Total),
		},
	}
}
