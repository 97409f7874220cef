package entity

import "time"

// AuditEntry registra una decisión del motor de autorización o una mutación
// protegida, incluyendo la regla concreta cuando se deniega.
type AuditEntry struct {
	ID           string
	EnterpriseID string
	ActorID      string
	Action       string // authorize, guarded_mutation, assign_manager, ...
	Module       string
	TargetID     string
	Allowed      bool
	Reason       string // vacío cuando Allowed
	CreatedAt    time.Time
}
