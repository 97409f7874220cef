// Package engine compone el núcleo de autorización: registro de jerarquías,
// matriz de permisos y árbol de alcance sobre el estado del directorio.
// Las operaciones de lectura son puras sobre configuración más snapshot;
// las mutaciones protegidas corren dentro de una transacción del directorio
// con control de concurrencia optimista.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
	"github.com/medintegra/salud-ocupacional-api/pkg/logger"
)

// TxRunner ejecuta un callback con repositorios atados a una transacción del
// directorio: la mutación del usuario y su entrada de auditoría se confirman
// juntas o no se confirma ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(users repository.UserRepository, audit repository.AuditRepository) error) error
}

// Engine es el punto de composición del núcleo de autorización.
type Engine struct {
	users repository.UserRepository
	units repository.OrgUnitRepository
	audit repository.AuditRepository
	tx    TxRunner
	log   *logger.Logger
}

// New construye el motor. users puede venir decorado con caché; las mutaciones
// no lo usan: releen estado fresco dentro de la transacción.
func New(users repository.UserRepository, units repository.OrgUnitRepository, audit repository.AuditRepository, tx TxRunner, log *logger.Logger) *Engine {
	return &Engine{users: users, units: units, audit: audit, tx: tx, log: log.Component("authz")}
}

// loadActor obtiene al actor y comprueba que pueda operar.
func (e *Engine) loadActor(ctx context.Context, users repository.UserRepository, actorID string) (*entity.User, error) {
	actor, err := users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: actor %s", domain.ErrUserNotFound, actorID)
	}
	if !actor.IsActive() {
		return nil, fmt.Errorf("%w: la cuenta del actor no está activa", domain.ErrForbidden)
	}
	return actor, nil
}

// orgTree construye el snapshot del árbol organizacional visible para el actor.
func (e *Engine) orgTree(ctx context.Context, actor *entity.User) (*authz.OrgTree, error) {
	enterpriseID := actor.EnterpriseID
	if authz.IsPlatform(actor.Hierarchy) {
		enterpriseID = "" // plataforma: snapshot completo
	}
	units, err := e.units.Snapshot(ctx, enterpriseID)
	if err != nil {
		return nil, err
	}
	return authz.NewOrgTree(units)
}

// Authorize resuelve permitir/denegar para (actor, módulo, acción) y, si se
// indica targetUnitID, verifica además que la unidad esté dentro del alcance
// visible del actor. Toda denegación es terminal y conserva la regla que
// falló; un fallo del directorio se propaga como denegación
// (ErrDirectoryUnavailable), nunca como permiso.
func (e *Engine) Authorize(ctx context.Context, actorID, module string, action authz.Action, targetUnitID string) error {
	actor, err := e.loadActor(ctx, e.users, actorID)
	if err != nil {
		return err
	}
	if err := e.authorizeActor(ctx, actor, module, action, targetUnitID); err != nil {
		e.auditDenial(ctx, actor, "authorize", module, targetUnitID, err)
		return err
	}
	return nil
}

func (e *Engine) authorizeActor(ctx context.Context, actor *entity.User, module string, action authz.Action, targetUnitID string) error {
	if !authz.CanPerformAction(actor.Hierarchy, module, action) {
		return fmt.Errorf("%w: %s no tiene %s sobre %s", domain.ErrForbidden, actor.Hierarchy, action, module)
	}
	if targetUnitID == "" {
		return nil
	}
	scope, err := authz.VisibleScopeOf(actor)
	if err != nil {
		return err
	}
	if scope.Kind == authz.ScopePlatform {
		return nil
	}
	tree, err := e.orgTree(ctx, actor)
	if err != nil {
		return err
	}
	if !scope.Contains(targetUnitID, tree) {
		return fmt.Errorf("%w: unidad %s", domain.ErrScopeViolation, targetUnitID)
	}
	return nil
}

// VisibleNavigation resuelve el menú del actor: tabla estática filtrada por
// visibilidad y permiso de lectura de su jerarquía.
func (e *Engine) VisibleNavigation(ctx context.Context, actorID string) ([]authz.NavigationItem, error) {
	actor, err := e.loadActor(ctx, e.users, actorID)
	if err != nil {
		return nil, err
	}
	return authz.VisibleNavigation(actor.Hierarchy), nil
}

// VisibleScope expone el alcance del actor junto al snapshot del árbol, para
// que los casos de uso intersecten sus listados.
func (e *Engine) VisibleScope(ctx context.Context, actorID string) (*entity.User, authz.Scope, *authz.OrgTree, error) {
	actor, err := e.loadActor(ctx, e.users, actorID)
	if err != nil {
		return nil, authz.Scope{}, nil, err
	}
	scope, err := authz.VisibleScopeOf(actor)
	if err != nil {
		return nil, authz.Scope{}, nil, err
	}
	tree, err := e.orgTree(ctx, actor)
	if err != nil {
		return nil, authz.Scope{}, nil, err
	}
	return actor, scope, tree, nil
}

// ResolveListFilter intersecta el filtro pedido con el alcance del actor.
// Devuelve empty=true cuando la intersección es vacía: el listado responde el
// subconjunto visible (posiblemente vacío), nunca un error de alcance.
func ResolveListFilter(scope authz.Scope, tree *authz.OrgTree, requested repository.ScopeFilter) (repository.ScopeFilter, bool) {
	switch scope.Kind {
	case authz.ScopeNone:
		return repository.ScopeFilter{}, true
	case authz.ScopePlatform, authz.ScopeEnterprise:
		if scope.Kind == authz.ScopeEnterprise && !requestWithin(scope, tree, requested) {
			return repository.ScopeFilter{}, true
		}
		return requested, false
	case authz.ScopeDepartment:
		if requested.ClinicID != "" {
			if !tree.IsDescendant(requested.ClinicID, scope.UnitID) {
				return repository.ScopeFilter{}, true
			}
			return repository.ScopeFilter{ClinicID: requested.ClinicID}, false
		}
		if requested.DepartmentID != "" && requested.DepartmentID != scope.UnitID {
			return repository.ScopeFilter{}, true
		}
		return repository.ScopeFilter{DepartmentID: scope.UnitID}, false
	case authz.ScopeClinic:
		if requested.ClinicID != "" && requested.ClinicID != scope.UnitID {
			return repository.ScopeFilter{}, true
		}
		if requested.DepartmentID != "" && !tree.IsDescendant(scope.UnitID, requested.DepartmentID) {
			return repository.ScopeFilter{}, true
		}
		return repository.ScopeFilter{ClinicID: scope.UnitID}, false
	default:
		return repository.ScopeFilter{}, true
	}
}

// ResolveListEnterprise devuelve la empresa sobre la que listar. Los actores
// de plataforma cruzan empresas: pueden pedir una concreta o, con el campo
// vacío, todas. Para el resto la empresa es siempre la propia; pedir una ajena
// produce intersección vacía, nunca un error de alcance.
func ResolveListEnterprise(actor *entity.User, scope authz.Scope, requestedEnterpriseID string) (string, bool) {
	if scope.Kind == authz.ScopePlatform {
		return requestedEnterpriseID, false
	}
	if requestedEnterpriseID != "" && requestedEnterpriseID != actor.EnterpriseID {
		return "", true
	}
	return actor.EnterpriseID, false
}

// requestWithin comprueba que las unidades pedidas pertenezcan al alcance de
// empresa del actor; una unidad de otra empresa produce intersección vacía.
func requestWithin(scope authz.Scope, tree *authz.OrgTree, requested repository.ScopeFilter) bool {
	if requested.DepartmentID != "" && !scope.Contains(requested.DepartmentID, tree) {
		return false
	}
	if requested.ClinicID != "" && !scope.Contains(requested.ClinicID, tree) {
		return false
	}
	return true
}

// ValidatePlacement verifica la contención de alcance de una ubicación:
// si clinicID está presente junto a departmentID, la clínica debe pertenecer
// a ese departamento, y ambas unidades a la empresa indicada.
func (e *Engine) ValidatePlacement(ctx context.Context, enterpriseID string, departmentID, clinicID *string) error {
	if departmentID == nil && clinicID == nil {
		return nil
	}
	units, err := e.units.Snapshot(ctx, enterpriseID)
	if err != nil {
		return err
	}
	tree, err := authz.NewOrgTree(units)
	if err != nil {
		return err
	}
	if departmentID != nil {
		ent, err := tree.EnterpriseOf(*departmentID)
		if err != nil || ent != enterpriseID {
			return fmt.Errorf("%w: el departamento no pertenece a la empresa", domain.ErrScopeViolation)
		}
	}
	if clinicID != nil {
		ent, err := tree.EnterpriseOf(*clinicID)
		if err != nil || ent != enterpriseID {
			return fmt.Errorf("%w: la clínica no pertenece a la empresa", domain.ErrScopeViolation)
		}
		if departmentID != nil && !tree.IsDescendant(*clinicID, *departmentID) {
			return fmt.Errorf("%w: la clínica no pertenece al departamento indicado", domain.ErrValidation)
		}
	}
	return nil
}

// isRuleDenial distingue las reglas de autorización de los fallos de
// infraestructura o de datos (conflicto de versión, directorio caído, usuario
// inexistente, entrada inválida). Solo las primeras van a auditoría.
func isRuleDenial(err error) bool {
	return errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrSelfAction) ||
		errors.Is(err, domain.ErrEscalation) ||
		errors.Is(err, domain.ErrScopeViolation) ||
		errors.Is(err, domain.ErrHierarchyViolation) ||
		errors.Is(err, domain.ErrUnknownHierarchy)
}

// auditDenial registra una denegación con la regla que falló. Es best-effort:
// un fallo al auditar no convierte la denegación en otra cosa.
func (e *Engine) auditDenial(ctx context.Context, actor *entity.User, action, module, targetID string, cause error) {
	if !isRuleDenial(cause) {
		return
	}
	entry := &entity.AuditEntry{
		ID:           uuid.New().String(),
		EnterpriseID: actor.EnterpriseID,
		ActorID:      actor.ID,
		Action:       action,
		Module:       module,
		TargetID:     targetID,
		Allowed:      false,
		Reason:       cause.Error(),
		CreatedAt:    time.Now(),
	}
	if err := e.audit.Append(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
		e.log.Warn().Err(err).Str("actor", actor.ID).Msg("no se pudo registrar la denegación en auditoría")
	}
}
