package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medintegra/salud-ocupacional-api/internal/application/dto"
	"github.com/medintegra/salud-ocupacional-api/internal/application/engine"
	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

// InvoiceUseCase gestiona facturación como recurso protegido por permisos y
// alcance de clínica.
type InvoiceUseCase struct {
	repo     repository.InvoiceRepository
	patients repository.PatientRepository
	eng      *engine.Engine
}

func NewInvoiceUseCase(repo repository.InvoiceRepository, patients repository.PatientRepository, eng *engine.Engine) *InvoiceUseCase {
	return &InvoiceUseCase{repo: repo, patients: patients, eng: eng}
}

// Create emite un borrador de factura sobre un paciente de la empresa del actor.
func (uc *InvoiceUseCase) Create(ctx context.Context, actorID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.PatientID == "" || in.Number == "" {
		return nil, fmt.Errorf("%w: patient_id y number son obligatorios", domain.ErrValidation)
	}
	if in.Total.IsNegative() {
		return nil, fmt.Errorf("%w: el total no puede ser negativo", domain.ErrValidation)
	}
	if err := uc.eng.Authorize(ctx, actorID, authz.ModuleFacturacion, authz.ActionCreate, ""); err != nil {
		return nil, err
	}
	actor, scope, tree, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	patient, err := uc.patients.GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("%w: paciente %s", domain.ErrNotFound, in.PatientID)
	}
	if !authz.IsPlatform(actor.Hierarchy) && patient.EnterpriseID != actor.EnterpriseID {
		return nil, fmt.Errorf("%w: paciente de otra empresa", domain.ErrScopeViolation)
	}
	if in.ClinicID != nil && !scope.Contains(*in.ClinicID, tree) {
		return nil, fmt.Errorf("%w: clínica fuera de alcance", domain.ErrScopeViolation)
	}

	now := time.Now()
	inv := &entity.Invoice{
		ID:           uuid.New().String(),
		EnterpriseID: patient.EnterpriseID,
		ClinicID:     in.ClinicID,
		PatientID:    in.PatientID,
		Number:       in.Number,
		Total:        in.Total,
		Status:       entity.InvoiceDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// GetByID obtiene una factura dentro del alcance del actor.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, actorID, id string) (*dto.InvoiceResponse, error) {
	if err := uc.eng.Authorize(ctx, actorID, authz.ModuleFacturacion, authz.ActionRead, ""); err != nil {
		return nil, err
	}
	actor, scope, tree, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, id)
	}
	if !invoiceVisible(actor, scope, tree, inv) {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrScopeViolation, id)
	}
	return toInvoiceResponse(inv), nil
}

func invoiceVisible(actor *entity.User, scope authz.Scope, tree *authz.OrgTree, inv *entity.Invoice) bool {
	if authz.IsPlatform(actor.Hierarchy) {
		return true
	}
	if inv.EnterpriseID != actor.EnterpriseID {
		return false
	}
	switch scope.Kind {
	case authz.ScopeEnterprise:
		return true
	case authz.ScopeDepartment, authz.ScopeClinic:
		return inv.ClinicID != nil && scope.Contains(*inv.ClinicID, tree)
	default:
		return false
	}
}

// List lista facturas intersectando el filtro pedido con el alcance del actor.
func (uc *InvoiceUseCase) List(ctx context.Context, actorID string, filter repository.ScopeFilter, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	if err := uc.eng.Authorize(ctx, actorID, authz.ModuleFacturacion, authz.ActionRead, ""); err != nil {
		return nil, err
	}
	actor, scope, tree, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()

	effective, empty := engine.ResolveListFilter(scope, tree, filter)
	enterpriseID, foreign := engine.ResolveListEnterprise(actor, scope, filter.EnterpriseID)
	if empty || foreign {
		return &dto.InvoiceListResponse{Items: []dto.InvoiceResponse{}, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
	}
	invoices, err := uc.repo.ListByEnterprise(ctx, enterpriseID, effective, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		items = append(items, *toInvoiceResponse(inv))
	}
	return &dto.InvoiceListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}}, nil
}

// Issue pasa una factura de borrador a emitida.
func (uc *InvoiceUseCase) Issue(ctx context.Context, actorID, id string) (*dto.InvoiceResponse, error) {
	if err := uc.eng.Authorize(ctx, actorID, authz.ModuleFacturacion, authz.ActionUpdate, ""); err != nil {
		return nil, err
	}
	current, err := uc.GetByID(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if current.Status != entity.InvoiceDraft {
		return nil, fmt.Errorf("%w: solo se emiten borradores", domain.ErrValidation)
	}
	now := time.Now()
	inv := &entity.Invoice{
		ID:           current.ID,
		EnterpriseID: current.EnterpriseID,
		ClinicID:     current.ClinicID,
		PatientID:    current.PatientID,
		Number:       current.Number,
		Total:        current.Total,
		Status:       entity.InvoiceIssued,
		IssuedAt:     &now,
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    now,
	}
	if err := uc.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:           inv.ID,
		EnterpriseID: inv.EnterpriseID,
		ClinicID:     inv.ClinicID,
		PatientID:    inv.PatientID,
		Number:       inv.Number,
		Total:        inv.Total,
		Status:       inv.Status,
		IssuedAt:     inv.IssuedAt,
		CreatedAt:    inv.CreatedAt,
	}
}
