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

// UserUseCase aplica reglas de negocio para usuarios del directorio.
// Todas las operaciones reciben el actor explícito: nunca hay un "usuario
// actual" ambiente.
type UserUseCase struct {
	repo repository.UserRepository
	eng  *engine.Engine
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia y el
// motor de autorización.
func NewUserUseCase(repo repository.UserRepository, eng *engine.Engine) *UserUseCase {
	return &UserUseCase{repo: repo, eng: eng}
}

// Create da de alta un usuario. Requiere create sobre usuarios dentro de la
// empresa destino y valida la contención de su ubicación organizacional.
func (uc *UserUseCase) Create(ctx context.Context, actorID string, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if in.EnterpriseID == "" || in.Email == "" || in.Hierarchy == "" {
		return nil, fmt.Errorf("%w: enterprise_id, email y hierarchy son obligatorios", domain.ErrValidation)
	}
	if !authz.Known(in.Hierarchy) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownHierarchy, in.Hierarchy)
	}
	if err := uc.eng.Authorize(ctx, actorID, authz.ModuleUsuarios, authz.ActionCreate, ""); err != nil {
		return nil, err
	}
	actor, err := uc.repo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, domain.ErrUserNotFound
	}
	if !authz.IsPlatform(actor.Hierarchy) && actor.EnterpriseID != in.EnterpriseID {
		return nil, fmt.Errorf("%w: no se pueden crear usuarios en otra empresa", domain.ErrScopeViolation)
	}
	if err := uc.eng.ValidatePlacement(ctx, in.EnterpriseID, in.DepartmentID, in.ClinicID); err != nil {
		return nil, err
	}
	if existing, err := uc.repo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: el email ya está registrado", domain.ErrValidation)
	}

	now := time.Now()
	name := in.Name
	if name == "" {
		name = in.Email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		EnterpriseID: in.EnterpriseID,
		Email:        in.Email,
		Name:         name,
		Phone:        in.Phone,
		Hierarchy:    in.Hierarchy,
		Status:       entity.StatusPending,
		DepartmentID: in.DepartmentID,
		ClinicID:     in.ClinicID,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// GetByID obtiene un usuario visible para el actor. El registro propio se
// sirve sin consultar el permiso del módulo usuarios: leerlo es siempre
// legítimo y no debe dejar denegaciones en auditoría.
func (uc *UserUseCase) GetByID(ctx context.Context, actorID, id string) (*dto.UserResponse, error) {
	if actorID != id {
		if err := uc.eng.Authorize(ctx, actorID, authz.ModuleUsuarios, authz.ActionRead, ""); err != nil {
			return nil, err
		}
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	if actorID == id {
		return toUserResponse(user), nil
	}
	actor, _, tree, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !userVisible(actor, user, tree) {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrScopeViolation, id)
	}
	return toUserResponse(user), nil
}

// userVisible aplica la frontera de empresa y el alcance organizacional a un
// registro puntual. El registro propio siempre es visible.
func userVisible(actor, user *entity.User, tree *authz.OrgTree) bool {
	if actor.ID == user.ID || authz.IsPlatform(actor.Hierarchy) {
		return true
	}
	if user.EnterpriseID != actor.EnterpriseID {
		return false
	}
	scope, err := authz.VisibleScopeOf(actor)
	if err != nil {
		return false
	}
	switch scope.Kind {
	case authz.ScopeEnterprise:
		return true
	case authz.ScopeDepartment, authz.ScopeClinic:
		if user.ClinicID != nil && scope.Contains(*user.ClinicID, tree) {
			return true
		}
		if user.DepartmentID != nil && scope.Contains(*user.DepartmentID, tree) {
			return true
		}
		return false
	default:
		return false
	}
}

// List lista usuarios intersectando el filtro pedido con el alcance visible
// del actor. Los actores de plataforma listan cualquier empresa o todas.
func (uc *UserUseCase) List(ctx context.Context, actorID string, filter repository.ScopeFilter, page dto.PageRequest) (*dto.UserListResponse, error) {
	if err := uc.eng.Authorize(ctx, actorID, authz.ModuleUsuarios, authz.ActionRead, ""); err != nil {
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
		return &dto.UserListResponse{Items: []dto.UserResponse{}, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
	}
	users, err := uc.repo.ListByEnterprise(ctx, enterpriseID, effective, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, *toUserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}}, nil
}

// Update modifica datos básicos (nombre, teléfono, ubicación) con control de
// versión. Estado, jerarquía y jefe van por las mutaciones protegidas.
func (uc *UserUseCase) Update(ctx context.Context, actorID, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := uc.eng.Authorize(ctx, actorID, authz.ModuleUsuarios, authz.ActionUpdate, ""); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	actor, _, tree, err := uc.eng.VisibleScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !userVisible(actor, user, tree) {
		return nil, fmt.Errorf("%w: usuario %s", domain.ErrScopeViolation, id)
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.DepartmentID != nil || in.ClinicID != nil {
		dept, clinic := user.DepartmentID, user.ClinicID
		if in.DepartmentID != nil {
			dept = in.DepartmentID
		}
		if in.ClinicID != nil {
			clinic = in.ClinicID
		}
		if err := uc.eng.ValidatePlacement(ctx, user.EnterpriseID, dept, clinic); err != nil {
			return nil, err
		}
		user.DepartmentID, user.ClinicID = dept, clinic
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, user, in.Version); err != nil {
		return nil, err
	}
	user.Version = in.Version + 1
	return toUserResponse(user), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:           u.ID,
		EnterpriseID: u.EnterpriseID,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		Hierarchy:    u.Hierarchy,
		Status:       u.Status,
		DepartmentID: u.DepartmentID,
		ClinicID:     u.ClinicID,
		ReportsTo:    u.ReportsTo,
		Version:      u.Version,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
