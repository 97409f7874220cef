package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/authz"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/repository"
)

// Patch cambio protegido sobre un usuario. Los campos nil no se tocan.
// Version es el token de concurrencia optimista leído por el llamador.
type Patch struct {
	Status    *string
	Hierarchy *string
	Version   int64
}

func validStatus(s string) bool {
	switch s {
	case entity.StatusActive, entity.StatusInactive, entity.StatusSuspended, entity.StatusPending:
		return true
	}
	return false
}

// GuardedMutation aplica un cambio de estado o jerarquía sobre targetID.
// Guardas, en orden: permiso (update sobre usuarios), frontera de empresa,
// auto-bloqueo y escalada de privilegios. Se revalidan contra estado fresco
// dentro de la transacción; una colisión de versión devuelve ErrConflict y el
// llamador puede releer y reintentar una sola vez.
//
// Desactivar dos veces es idempotente: la segunda aplicación no escribe nada
// y no es un error.
func (e *Engine) GuardedMutation(ctx context.Context, actorID, targetID string, patch Patch) (*entity.User, error) {
	if patch.Status == nil && patch.Hierarchy == nil {
		return nil, fmt.Errorf("%w: el cambio no indica estado ni jerarquía", domain.ErrValidation)
	}
	if patch.Status != nil && !validStatus(*patch.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrValidation, *patch.Status)
	}
	if patch.Hierarchy != nil && !authz.Known(*patch.Hierarchy) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownHierarchy, *patch.Hierarchy)
	}

	var result *entity.User
	err := e.tx.Run(ctx, func(users repository.UserRepository, audit repository.AuditRepository) error {
		actor, err := e.loadActor(ctx, users, actorID)
		if err != nil {
			return err
		}
		target, err := users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, targetID)
		}
		if err := e.mutationGuards(actor, target, patch); err != nil {
			return err
		}

		// Idempotencia: si el estado final ya es el actual, no se escribe.
		changed := false
		updated := *target
		if patch.Status != nil && updated.Status != *patch.Status {
			updated.Status = *patch.Status
			changed = true
		}
		if patch.Hierarchy != nil && updated.Hierarchy != *patch.Hierarchy {
			updated.Hierarchy = *patch.Hierarchy
			changed = true
		}
		if !changed {
			result = target
			return nil
		}

		updated.UpdatedAt = time.Now()
		if err := users.Update(ctx, &updated, patch.Version); err != nil {
			return err
		}
		updated.Version = patch.Version + 1
		result = &updated

		return audit.Append(ctx, &entity.AuditEntry{
			ID:           uuid.New().String(),
			EnterpriseID: target.EnterpriseID,
			ActorID:      actor.ID,
			Action:       "guarded_mutation",
			Module:       authz.ModuleUsuarios,
			TargetID:     target.ID,
			Allowed:      true,
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		e.recordMutationDenial(ctx, actorID, targetID, "guarded_mutation", err)
		return nil, err
	}
	return result, nil
}

// mutationGuards valida las guardas de seguridad sobre estado fresco.
func (e *Engine) mutationGuards(actor, target *entity.User, patch Patch) error {
	if !authz.CanPerformAction(actor.Hierarchy, authz.ModuleUsuarios, authz.ActionUpdate) {
		return fmt.Errorf("%w: %s no tiene update sobre usuarios", domain.ErrForbidden, actor.Hierarchy)
	}
	if !authz.IsPlatform(actor.Hierarchy) && target.EnterpriseID != actor.EnterpriseID {
		return fmt.Errorf("%w: el usuario pertenece a otra empresa", domain.ErrScopeViolation)
	}
	if patch.Status != nil && actor.ID == target.ID &&
		(*patch.Status == entity.StatusInactive || *patch.Status == entity.StatusSuspended) {
		return domain.ErrSelfAction
	}
	if patch.Hierarchy != nil {
		actorLvl, err := authz.Level(actor.Hierarchy)
		if err != nil {
			return err
		}
		newLvl, err := authz.Level(*patch.Hierarchy)
		if err != nil {
			return err
		}
		if newLvl >= actorLvl && actorLvl != authz.PlatformMaxLevel {
			return domain.ErrEscalation
		}
	}
	return nil
}

// AssignManager asigna o retira el jefe directo de subjectID.
// ManagerID nil retira el jefe y no requiere validación de arista; en otro
// caso se valida empresa, monotonía jerárquica y ausencia de ciclos contra
// las aristas frescas del directorio.
func (e *Engine) AssignManager(ctx context.Context, actorID, subjectID string, managerID *string, expectedVersion int64) (*entity.User, error) {
	var result *entity.User
	err := e.tx.Run(ctx, func(users repository.UserRepository, audit repository.AuditRepository) error {
		actor, err := e.loadActor(ctx, users, actorID)
		if err != nil {
			return err
		}
		subject, err := users.GetByID(ctx, subjectID)
		if err != nil {
			return err
		}
		if subject == nil {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, subjectID)
		}
		if !authz.CanPerformAction(actor.Hierarchy, authz.ModuleUsuarios, authz.ActionUpdate) {
			return fmt.Errorf("%w: %s no tiene update sobre usuarios", domain.ErrForbidden, actor.Hierarchy)
		}
		if !authz.IsPlatform(actor.Hierarchy) && subject.EnterpriseID != actor.EnterpriseID {
			return fmt.Errorf("%w: el usuario pertenece a otra empresa", domain.ErrScopeViolation)
		}

		if managerID != nil {
			manager, err := users.GetByID(ctx, *managerID)
			if err != nil {
				return err
			}
			if manager == nil {
				return fmt.Errorf("%w: jefe %s", domain.ErrUserNotFound, *managerID)
			}
			edges, err := users.ReportingEdges(ctx, subject.EnterpriseID)
			if err != nil {
				return err
			}
			if err := authz.ValidateManagerEdge(subject, manager, edges); err != nil {
				return err
			}
		}

		updated := *subject
		updated.ReportsTo = managerID
		updated.UpdatedAt = time.Now()
		if err := users.Update(ctx, &updated, expectedVersion); err != nil {
			return err
		}
		updated.Version = expectedVersion + 1
		result = &updated

		return audit.Append(ctx, &entity.AuditEntry{
			ID:           uuid.New().String(),
			EnterpriseID: subject.EnterpriseID,
			ActorID:      actor.ID,
			Action:       "assign_manager",
			Module:       authz.ModuleUsuarios,
			TargetID:     subject.ID,
			Allowed:      true,
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		e.recordMutationDenial(ctx, actorID, subjectID, "assign_manager", err)
		return nil, err
	}
	return result, nil
}

// DeleteUser elimina un usuario. El estado operativo terminal es la
// desactivación; la eliminación existe solo para jerarquías con el permiso
// delete explícito y nunca sobre la cuenta propia.
func (e *Engine) DeleteUser(ctx context.Context, actorID, targetID string) error {
	err := e.tx.Run(ctx, func(users repository.UserRepository, audit repository.AuditRepository) error {
		actor, err := e.loadActor(ctx, users, actorID)
		if err != nil {
			return err
		}
		if !authz.CanPerformAction(actor.Hierarchy, authz.ModuleUsuarios, authz.ActionDelete) {
			return fmt.Errorf("%w: %s no tiene delete sobre usuarios", domain.ErrForbidden, actor.Hierarchy)
		}
		if actor.ID == targetID {
			return domain.ErrSelfAction
		}
		target, err := users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return fmt.Errorf("%w: %s", domain.ErrUserNotFound, targetID)
		}
		if !authz.IsPlatform(actor.Hierarchy) && target.EnterpriseID != actor.EnterpriseID {
			return fmt.Errorf("%w: el usuario pertenece a otra empresa", domain.ErrScopeViolation)
		}
		if err := users.Delete(ctx, targetID); err != nil {
			return err
		}
		return audit.Append(ctx, &entity.AuditEntry{
			ID:           uuid.New().String(),
			EnterpriseID: target.EnterpriseID,
			ActorID:      actor.ID,
			Action:       "delete_user",
			Module:       authz.ModuleUsuarios,
			TargetID:     targetID,
			Allowed:      true,
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		e.recordMutationDenial(ctx, actorID, targetID, "delete_user", err)
	}
	return err
}

// recordMutationDenial audita una mutación rechazada fuera de la transacción
// ya revertida. Si el actor no se puede cargar, solo queda el log.
func (e *Engine) recordMutationDenial(ctx context.Context, actorID, targetID, action string, cause error) {
	if !isRuleDenial(cause) {
		return
	}
	actor, err := e.users.GetByID(ctx, actorID)
	if err != nil || actor == nil {
		e.log.Warn().Str("actor", actorID).Str("action", action).Err(cause).Msg("mutación denegada (actor no disponible para auditar)")
		return
	}
	e.auditDenial(ctx, actor, action, authz.ModuleUsuarios, targetID, cause)
}
