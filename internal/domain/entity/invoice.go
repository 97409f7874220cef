package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de factura.
const (
	InvoiceDraft  = "draft"
	InvoiceIssued = "issued"
	InvoiceVoid   = "void"
)

// Invoice representa una factura de servicios de salud ocupacional.
// Solo se modela lo necesario para tratarla como recurso con permisos y alcance.
type Invoice struct {
	ID           string
	EnterpriseID string
	ClinicID     *string
	PatientID    string
	Number       string
	Total        decimal.Decimal
	Status       string // draft, issued, void
	IssuedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
