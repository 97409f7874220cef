package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrValidation   = errors.New("entrada inválida")
	ErrForbidden    = errors.New("acceso denegado")

	// Taxonomía del núcleo de autorización. Cada denegación indica la regla
	// concreta que falló; nunca un "forbidden" genérico.
	ErrUnknownHierarchy     = errors.New("jerarquía desconocida")
	ErrScopeViolation       = errors.New("fuera del alcance organizacional permitido")
	ErrHierarchyViolation   = errors.New("violación del orden jerárquico")
	ErrSelfAction           = errors.New("un usuario no puede desactivar ni eliminar su propia cuenta")
	ErrEscalation           = errors.New("no se puede asignar una jerarquía igual o superior a la propia")
	ErrConflict             = errors.New("la versión del registro cambió; releer y reintentar una vez")
	ErrDirectoryUnavailable = errors.New("el servicio de directorio no está disponible")
)
