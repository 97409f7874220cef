package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest alta de factura.
type CreateInvoiceRequest struct {
	PatientID string          `json:"patient_id"`
	ClinicID  *string         `json:"clinic_id"`
	Number    string          `json:"number"`
	Total     decimal.Decimal `json:"total"`
}

// InvoiceResponse proyección de una factura.
type InvoiceResponse struct {
	ID           string          `json:"id"`
	EnterpriseID string          `json:"enterprise_id"`
	ClinicID     *string         `json:"clinic_id,omitempty"`
	PatientID    string          `json:"patient_id"`
	Number       string          `json:"number"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
	IssuedAt     *time.Time      `json:"issued_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// InvoiceListResponse página de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
