// Package models - organization_member.go defines models for user-to-organization membership,
// the admin grant attached to a membership, and enriched views joining user details.
package models

import "time"

// Role values carried by membership listings and role-change requests.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// OrganizationUser represents a user's membership in an organization.
// One row per (organization, user) pair; the pair is unique.
type OrganizationUser struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// OrganizationOwner is an admin grant attached to a membership. A membership
// with a grant row is an admin; one without is a plain member. The
// (organization, membership) pair is unique so repeated promotions cannot
// stack grants.
type OrganizationOwner struct {
	ID                 string `json:"id"`
	OrganizationID     string `json:"organization_id"`
	OrganizationUserID string `json:"organization_user_id"`
}

// Member is a membership annotated with user details and the computed role,
// as returned by the membership listing queries.
type Member struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"` // "admin" or "member"
	CreatedAt time.Time `json:"created_at"`
}

// UserMembership is one entry in a user's cross-organization membership listing.
type UserMembership struct {
	OrganizationID   string    `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
	OrganizationSlug string    `json:"organization_slug"`
	Role             string    `json:"role"`
	CreatedAt        time.Time `json:"created_at"`
}
