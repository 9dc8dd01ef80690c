// Package models - board.go defines the board hierarchy: boards belong to an
// organization, lists belong to a board, and cards belong to a list. Lists and
// cards carry a position used for client-side ordering.
package models

import "time"

// Board represents a kanban board within an organization
type Board struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Title          string    `json:"title" db:"title"`
	ImageID        string    `json:"image_id" db:"image_id"`
	ImageThumbURL  string    `json:"image_thumb_url" db:"image_thumb_url"`
	ImageFullURL   string    `json:"image_full_url" db:"image_full_url"`
	ImageUsername  string    `json:"image_username" db:"image_username"`
	ImageLinkHTML  string    `json:"image_link_html" db:"image_link_html"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// BoardList represents a column on a board
type BoardList struct {
	ID        string    `json:"id" db:"id"`
	BoardID   string    `json:"board_id" db:"board_id"`
	Title     string    `json:"title" db:"title"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Card represents a card within a list
type Card struct {
	ID          string    `json:"id" db:"id"`
	ListID      string    `json:"list_id" db:"list_id"`
	Title       string    `json:"title" db:"title"`
	Position    int       `json:"position" db:"position"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
