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

// PatientUseCase gestiona fichas de pacientes. Es el recurso con alcance
// organizacional por excelencia: todo listado se intersecta con el alcance
// visible del actor, y un actor con jerarquía paciente solo ve su propia ficha.
type PatientUseCase struct {
	repo repository.PatientRepository
	eng  *engine.Engine
}

func NewPatientUseCase(repo repository.PatientRepository, eng *engine.Engine) *PatientUseCase {
	return &PatientUseCase{repo: repo, eng: eng}
}

// Create da de alta una ficha en la empresa del actor.
func (uc *PatientUseCase) Create(ctx context.Context, actorID string, in dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	if in.Document == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: document y name son obligatorios", domain.ErrValidation)
	}
	if err := uc.eng.Authorize(ctx, actorID, authz.ModulePacientes, authz.ActionCreate, ""); err != nil {
		return nil, err
	}
	actor, scope, tree, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := uc.eng.ValidatePlacement(ctx, actor.EnterpriseID, in.DepartmentID, in.ClinicID); err != nil {
		return nil, err
	}
	// La ficha debe quedar dentro del alcance del creador.
	if in.ClinicID != nil && !scope.Contains(*in.ClinicID, tree) {
		return nil, fmt.Errorf("%w: clínica fuera de alcance", domain.ErrScopeViolation)
	}
	if in.ClinicID == nil && in.DepartmentID != nil && !scope.Contains(*in.DepartmentID, tree) {
		return nil, fmt.Errorf("%w: departamento fuera de alcance", domain.ErrScopeViolation)
	}

	now := time.Now()
	patient := &entity.Patient{
		ID:           uuid.New().String(),
		EnterpriseID: actor.EnterpriseID,
		DepartmentID: in.DepartmentID,
		ClinicID:     in.ClinicID,
		Document:     in.Document,
		Name:         in.Name,
		BirthDate:    in.BirthDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return toPatientResponse(patient), nil
}

// GetByID obtiene una ficha dentro del alcance del actor. Un actor paciente
// solo obtiene la ficha ligada a su propio usuario.
func (uc *PatientUseCase) GetByID(ctx context.Context, actorID, id string) (*dto.PatientResponse, error) {
	actor, scope, tree, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Hierarchy == authz.HierarchyPaciente {
		own, err := uc.repo.GetByUserID(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if own == nil || own.ID != id {
			return nil, fmt.Errorf("%w: ficha %s", domain.ErrScopeViolation, id)
		}
		return toPatientResponse(own), nil
	}
	if err := uc.eng.Authorize(ctx, actorID, authz.ModulePacientes, authz.ActionRead, ""); err != nil {
		return nil, err
	}
	patient, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("%w: ficha %s", domain.ErrNotFound, id)
	}
	if !patientVisible(actor, scope, tree, patient) {
		return nil, fmt.Errorf("%w: ficha %s", domain.ErrScopeViolation, id)
	}
	return toPatientResponse(patient), nil
}

func patientVisible(actor *entity.User, scope authz.Scope, tree *authz.OrgTree, p *entity.Patient) bool {
	if authz.IsPlatform(actor.Hierarchy) {
		return true
	}
	if p.EnterpriseID != actor.EnterpriseID {
		return false
	}
	switch scope.Kind {
	case authz.ScopeEnterprise:
		return true
	case authz.ScopeDepartment, authz.ScopeClinic:
		if p.ClinicID != nil {
			return scope.Contains(*p.ClinicID, tree)
		}
		if p.DepartmentID != nil {
			return scope.Contains(*p.DepartmentID, tree)
		}
		// Ficha sin unidad asignada: visible solo a alcance de empresa.
		return false
	default:
		return false
	}
}

// Me devuelve la ficha ligada al usuario actor (para actores paciente).
func (uc *PatientUseCase) Me(ctx context.Context, actorID string) (*dto.PatientResponse, error) {
	if _, _, _, err := uc.eng.VisibleScope(ctx, actorID); err != nil {
		return nil, err
	}
	own, err := uc.repo.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if own == nil {
		return nil, fmt.Errorf("%w: el usuario no tiene ficha de paciente", domain.ErrNotFound)
	}
	return toPatientResponse(own), nil
}

// List lista las fichas dentro de la intersección del filtro pedido con el
// alcance del actor. Un filtro fuera de alcance devuelve página vacía.
func (uc *PatientUseCase) List(ctx context.Context, actorID string, filter repository.ScopeFilter, page dto.PageRequest) (*dto.PatientListResponse, error) {
	if err := uc.eng.Authorize(ctx, actorID, authz.ModulePacientes, authz.ActionRead, ""); err != nil {
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
		return &dto.PatientListResponse{Items: []dto.PatientResponse{}, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
	}
	patients, err := uc.repo.ListByEnterprise(ctx, enterpriseID, effective, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PatientResponse, 0, len(patients))
	for _, p := range patients {
		items = append(items, *toPatientResponse(p))
	}
	return &dto.PatientListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}}, nil
}

// Export requiere el permiso export además de read; reutiliza la misma
// intersección de alcance que List.
func (uc *PatientUseCase) Export(ctx context.Context, actorID string, filter repository.ScopeFilter) ([]dto.PatientResponse, error) {
	if err := uc.eng.Authorize(ctx, actorID, authz.ModulePacientes, authz.ActionExport, ""); err != nil {
		return nil, err
	}
	out, err := uc.List(ctx, actorID, filter, dto.PageRequest{Limit: 100})
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

func toPatientResponse(p *entity.Patient) *dto.PatientResponse {
	return &dto.PatientResponse{
		ID:           p.ID,
		EnterpriseID: p.EnterpriseID,
		DepartmentID: p.DepartmentID,
		ClinicID:     p.ClinicID,
		Document:     p.Document,
		Name:         p.Name,
		BirthDate:    p.BirthDate,
		CreatedAt:    p.CreatedAt,
	}
}
