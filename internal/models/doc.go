// Package models defines the core domain models for rentbook.
//
// # Models
//
//   - User: a registered landlord account; owns every other record
//   - Tenant: a person renting from a user, with a base rent
//   - Invoice: a generated bill combining base rent and an electricity charge
//   - Settings: per-user singleton holding the electricity rate
//
// # Design Principles
//
//  1. Relationships use ID strings, never pointers
//  2. Money and meter values are decimals, never floats
//  3. Invoices snapshot the tenant name, base rent and electricity rate at
//     generation time; later edits to tenants or settings never rewrite them
package models
