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

// OrgUseCase gestiona el árbol organizacional (empresa → departamento → clínica).
type OrgUseCase struct {
	units repository.OrgUnitRepository
	eng   *engine.Engine
}

func NewOrgUseCase(units repository.OrgUnitRepository, eng *engine.Engine) *OrgUseCase {
	return &OrgUseCase{units: units, eng: eng}
}

// CreateUnit da de alta una unidad. Crear empresas es una operación de
// plataforma; departamentos y clínicas requieren update sobre empresas y se
// cuelgan de un padre de tipo correcto dentro de la empresa del actor.
func (uc *OrgUseCase) CreateUnit(ctx context.Context, actorID string, in dto.CreateOrgUnitRequest) (*dto.OrgUnitResponse, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name es obligatorio", domain.ErrValidation)
	}
	actor, _, _, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	unit := &entity.OrgUnit{
		ID:        uuid.New().String(),
		Kind:      in.Kind,
		Name:      in.Name,
		ParentID:  in.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch in.Kind {
	case entity.UnitEnterprise:
		if !authz.IsPlatform(actor.Hierarchy) {
			return nil, fmt.Errorf("%w: solo plataforma puede crear empresas", domain.ErrForbidden)
		}
		if in.ParentID != nil {
			return nil, fmt.Errorf("%w: una empresa no tiene unidad padre", domain.ErrValidation)
		}
		unit.EnterpriseID = unit.ID
	case entity.UnitDepartment, entity.UnitClinic:
		if err := uc.eng.Authorize(ctx, actorID, authz.ModuleEmpresas, authz.ActionUpdate, ""); err != nil {
			return nil, err
		}
		if in.ParentID == nil {
			return nil, fmt.Errorf("%w: parent_id es obligatorio", domain.ErrValidation)
		}
		parent, err := uc.units.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: unidad padre %s", domain.ErrNotFound, *in.ParentID)
		}
		wantParent := entity.UnitEnterprise
		if in.Kind == entity.UnitClinic {
			wantParent = entity.UnitDepartment
		}
		if parent.Kind != wantParent {
			return nil, fmt.Errorf("%w: una %s debe colgar de una %s", domain.ErrValidation, in.Kind, wantParent)
		}
		if !authz.IsPlatform(actor.Hierarchy) && parent.EnterpriseID != actor.EnterpriseID {
			return nil, fmt.Errorf("%w: unidad padre de otra empresa", domain.ErrScopeViolation)
		}
		unit.EnterpriseID = parent.EnterpriseID
	default:
		return nil, fmt.Errorf("%w: tipo de unidad %q desconocido", domain.ErrValidation, in.Kind)
	}

	if err := uc.units.Create(ctx, unit); err != nil {
		return nil, err
	}
	return toOrgUnitResponse(unit), nil
}

// VisibleTree devuelve el subárbol organizacional visible para el actor: toda
// la empresa para alcance de empresa, el subárbol de su unidad para alcances
// menores y todas las empresas para plataforma.
func (uc *OrgUseCase) VisibleTree(ctx context.Context, actorID string) (*dto.OrgTreeResponse, error) {
	_, scope, tree, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	out := &dto.OrgTreeResponse{Units: []dto.OrgUnitResponse{}}
	for _, unit := range tree.Units() {
		visible := false
		switch scope.Kind {
		case authz.ScopePlatform, authz.ScopeEnterprise:
			visible = true
		case authz.ScopeDepartment, authz.ScopeClinic:
			visible = scope.Contains(unit.ID, tree)
			// Los ancestros dan contexto en la UI aunque no amplíen el alcance.
			if !visible {
				if chain, aerr := tree.AncestorsOf(scope.UnitID); aerr == nil {
					for _, anc := range chain {
						if anc.ID == unit.ID {
							visible = true
							break
						}
					}
				}
			}
		}
		if visible {
			out.Units = append(out.Units, *toOrgUnitResponse(&unit))
		}
	}
	return out, nil
}

// GetUnit obtiene una unidad si pertenece a la empresa del actor.
func (uc *OrgUseCase) GetUnit(ctx context.Context, actorID, id string) (*dto.OrgUnitResponse, error) {
	actor, _, _, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	unit, err := uc.units.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("%w: unidad %s", domain.ErrNotFound, id)
	}
	if !authz.IsPlatform(actor.Hierarchy) && unit.EnterpriseID != actor.EnterpriseID {
		return nil, fmt.Errorf("%w: unidad %s", domain.ErrScopeViolation, id)
	}
	return toOrgUnitResponse(unit), nil
}

// RenameUnit cambia el nombre de una unidad dentro de la empresa del actor.
func (uc *OrgUseCase) RenameUnit(ctx context.Context, actorID, id, name string) (*dto.OrgUnitResponse, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name es obligatorio", domain.ErrValidation)
	}
	if err := uc.eng.Authorize(ctx, actorID, authz.ModuleEmpresas, authz.ActionUpdate, ""); err != nil {
		return nil, err
	}
	current, err := uc.GetUnit(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	unit := &entity.OrgUnit{
		ID:           current.ID,
		EnterpriseID: current.EnterpriseID,
		ParentID:     current.ParentID,
		Kind:         current.Kind,
		Name:         name,
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    time.Now(),
	}
	if err := uc.units.Update(ctx, unit); err != nil {
		return nil, err
	}
	return toOrgUnitResponse(unit), nil
}

func toOrgUnitResponse(u *entity.OrgUnit) *dto.OrgUnitResponse {
	return &dto.OrgUnitResponse{
		ID:           u.ID,
		EnterpriseID: u.EnterpriseID,
		ParentID:     u.ParentID,
		Kind:         u.Kind,
		Name:         u.Name,
		CreatedAt:    u.CreatedAt,
	}
}
