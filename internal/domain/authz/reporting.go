package authz

import (
	"fmt"

	"github.com/medintegra/salud-ocupacional-api/internal/domain"
	"github.com/medintegra/salud-ocupacional-api/internal/domain/entity"
)

// maxReportingDepth limita la caminata ascendente por el grafo de reporte.
// El grafo válido es un bosque; el límite garantiza terminación incluso si el
// directorio llegara a contener una arista corrupta.
const maxReportingDepth = 64

// ValidateManagerEdge valida la arista subject → manager, en este orden:
//  1. misma empresa (ErrScopeViolation);
//  2. nivel del jefe estrictamente mayor (ErrHierarchyViolation);
//  3. sin ciclos: el jefe propuesto no puede ser reporte transitivo del
//     sujeto (ErrHierarchyViolation).
//
// reports es la adyacencia actual id → id de jefe. Quitar un jefe (nil) se
// permite siempre y no pasa por aquí.
func ValidateManagerEdge(subject, manager *entity.User, reports map[string]string) error {
	if subject == nil || manager == nil {
		return domain.ErrValidation
	}
	if subject.ID == manager.ID {
		return fmt.Errorf("%w: un usuario no puede reportarse a sí mismo", domain.ErrHierarchyViolation)
	}
	if manager.EnterpriseID != subject.EnterpriseID {
		return fmt.Errorf("%w: el jefe pertenece a otra empresa", domain.ErrScopeViolation)
	}
	ord, err := Compare(manager.Hierarchy, subject.Hierarchy)
	if err != nil {
		return err
	}
	if ord != Greater {
		return fmt.Errorf("%w: el jefe debe tener jerarquía estrictamente superior", domain.ErrHierarchyViolation)
	}
	if reachesTransitively(manager.ID, subject.ID, reports) {
		return fmt.Errorf("%w: la asignación introduce un ciclo de reporte", domain.ErrHierarchyViolation)
	}
	return nil
}

// reachesTransitively camina hacia arriba desde from siguiendo reports y
// responde si alcanza target.
func reachesTransitively(from, target string, reports map[string]string) bool {
	cur := from
	for i := 0; i < maxReportingDepth; i++ {
		next, ok := reports[cur]
		if !ok || next == "" {
			return false
		}
		if next == target {
			return true
		}
		cur = next
	}
	return false
}
