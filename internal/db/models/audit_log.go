// Package models - audit_log.go defines the AuditLog model recording board-entity
// mutations, capturing the action, the affected entity, and a snapshot of the actor
// at the time of the event.
package models

import "time"

// Audit actions
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Audit entity types
const (
	EntityBoard = "BOARD"
	EntityList  = "LIST"
	EntityCard  = "CARD"
)

// AuditLog represents one recorded mutation of a board, list, or card.
// Actor fields are snapshotted rather than joined so the history survives
// user renames and deletions.
type AuditLog struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Action         string    `json:"action" db:"action"`
	EntityID       string    `json:"entity_id" db:"entity_id"`
	EntityType     string    `json:"entity_type" db:"entity_type"`
	EntityTitle    string    `json:"entity_title" db:"entity_title"`
	UserID         string    `json:"user_id" db:"user_id"`
	UserName       string    `json:"user_name" db:"user_name"`
	UserImage      *string   `json:"user_image" db:"user_image"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
