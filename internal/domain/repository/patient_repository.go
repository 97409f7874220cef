package repository

import (
	"context"

	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
)

// PatientRepository define el puerto de persistencia para Patient.
type PatientRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Patient, error)
	GetByUserID(ctx context.Context, userID string) (*entity.Patient, error)
	ListByEnterprise(ctx context.Context, enterpriseID string, filter ScopeFilter, limit, offset int) ([]*entity.Patient, error)
	Create(ctx context.Context, patient *entity.Patient) error
	Update(ctx context.Context, patient *entity.Patient) error
}
