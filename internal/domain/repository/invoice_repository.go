package repository

import (
	"context"

	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	ListByEnterprise(ctx context.Context, enterpriseID string, filter ScopeFilter, limit, offset int) ([]*entity.Invoice, error)
	Create(ctx context.Context, invoice *entity.Invoice) error
	Update(ctx context.Context, invoice *entity.Invoice) error
}
