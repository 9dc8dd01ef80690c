// Package models - organization.go defines the Organization model representing a tenant
// workspace, together with its per-org board limit and billing subscription records.
package models

import "time"

// Organization represents a tenant workspace
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"` // URL-safe identifier, unique
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrganizationSummary is an organization row annotated for a listing
// caller: total member count and whether the caller holds an admin grant.
type OrganizationSummary struct {
	Organization
	MemberCount int  `json:"member_count"`
	IsAdmin     bool `json:"is_admin"`
}

// OrgLimit tracks how many boards an organization has created against its plan quota
type OrgLimit struct {
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Count          int       `json:"count" db:"count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// OrgSubscription holds billing provider identifiers for an organization.
// The record is data only; no billing logic reads or enforces it.
type OrgSubscription struct {
	OrganizationID         string     `json:"organization_id" db:"organization_id"`
	StripeCustomerID       *string    `json:"stripe_customer_id" db:"stripe_customer_id"`
	StripeSubscriptionID   *string    `json:"stripe_subscription_id" db:"stripe_subscription_id"`
	StripePriceID          *string    `json:"stripe_price_id" db:"stripe_price_id"`
	StripeCurrentPeriodEnd *time.Time `json:"stripe_current_period_end" db:"stripe_current_period_end"`
}
