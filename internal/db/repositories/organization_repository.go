// organization_repository.go implements OrganizationRepository, providing database queries
// for organization CRUD, board limits, and subscription lookup.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taskboard/taskboard-server/internal/db/models"
)

// OrganizationRepository handles database operations for organizations
type OrganizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	query := `
		SELECT id, name, slug, is_active, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.IsActive,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// GetBySlug retrieves an organization by its slug
func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	query := `
		SELECT id, name, slug, is_active, created_at, updated_at
		FROM organizations
		WHERE slug = $1
	`

	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&org.ID,
		&org.Name,
		&org.Slug,
		&org.IsActive,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get organization by slug: %w", err)
	}

	return org, nil
}

// CreateTx inserts an organization inside an open transaction.
// The raw driver error is wrapped with %w so callers can detect
// unique-violation failures on the slug column and retry.
func (r *OrganizationRepository) CreateTx(ctx context.Context, tx *sql.Tx, org *models.Organization) error {
	query := `
		INSERT INTO organizations (name, slug)
		VALUES ($1, $2)
		RETURNING id, is_active, created_at, updated_at
	`

	err := tx.QueryRowContext(ctx, query, org.Name, org.Slug).Scan(
		&org.ID,
		&org.IsActive,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// Update updates an organization's name and slug
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, slug = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, org.ID, org.Name, org.Slug)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	return nil
}

// Delete deletes an organization. Memberships, admin grants, boards,
// and audit history are removed by foreign key cascade.
func (r *OrganizationRepository) Delete(ctx context.Context, orgID string) error {
	query := `DELETE FROM organizations WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ListUserOrganizations retrieves all organizations a user belongs to,
// each annotated with its member count and whether the user holds an
// admin grant there. One query; the annotations ride along as a
// correlated COUNT and an EXISTS against the user's own membership row.
func (r *OrganizationRepository) ListUserOrganizations(ctx context.Context, userID string) ([]*models.OrganizationSummary, error) {
	query := `
		SELECT o.id, o.name, o.slug, o.is_active, o.created_at, o.updated_at,
			(SELECT COUNT(*) FROM organization_users c WHERE c.organization_id = o.id) AS member_count,
			EXISTS (
				SELECT 1 FROM organization_owners oo
				WHERE oo.organization_id = o.id AND oo.organization_user_id = ou.id
			) AS is_admin
		FROM organizations o
		INNER JOIN organization_users ou ON o.id = ou.organization_id
		WHERE ou.user_id = $1
		ORDER BY o.created_at DESC, o.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]*models.OrganizationSummary, 0)
	for rows.Next() {
		org := &models.OrganizationSummary{}
		err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.Slug,
			&org.IsActive,
			&org.CreatedAt,
			&org.UpdatedAt,
			&org.MemberCount,
			&org.IsAdmin,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}

// CreateLimitTx inserts the board-count row for a new organization
// inside the same transaction that created it.
func (r *OrganizationRepository) CreateLimitTx(ctx context.Context, tx *sql.Tx, orgID string) error {
	query := `INSERT INTO org_limits (organization_id, count) VALUES ($1, 0)`
	if _, err := tx.ExecContext(ctx, query, orgID); err != nil {
		return fmt.Errorf("failed to create org limit: %w", err)
	}

	return nil
}

// GetLimit retrieves the board-count row for an organization
func (r *OrganizationRepository) GetLimit(ctx context.Context, orgID string) (*models.OrgLimit, error) {
	query := `
		SELECT organization_id, count, created_at, updated_at
		FROM org_limits
		WHERE organization_id = $1
	`

	limit := &models.OrgLimit{}
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(
		&limit.OrganizationID,
		&limit.Count,
		&limit.CreatedAt,
		&limit.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get org limit: %w", err)
	}

	return limit, nil
}

// GetSubscription retrieves the subscription record for an organization.
// A missing row simply means the organization has never been billed.
func (r *OrganizationRepository) GetSubscription(ctx context.Context, orgID string) (*models.OrgSubscription, error) {
	query := `
		SELECT organization_id, stripe_customer_id, stripe_subscription_id, stripe_price_id, stripe_current_period_end
		FROM org_subscriptions
		WHERE organization_id = $1
	`

	sub := &models.OrgSubscription{}
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(
		&sub.OrganizationID,
		&sub.StripeCustomerID,
		&sub.StripeSubscriptionID,
		&sub.StripePriceID,
		&sub.StripeCurrentPeriodEnd,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}

// EnsureSubscription creates an empty subscription row for an organization
// if one does not exist yet, then returns it.
func (r *OrganizationRepository) EnsureSubscription(ctx context.Context, orgID string) (*models.OrgSubscription, error) {
	query := `
		INSERT INTO org_subscriptions (organization_id)
		VALUES ($1)
		ON CONFLICT (organization_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to ensure subscription: %w", err)
	}

	return r.GetSubscription(ctx, orgID)
}

// BeginTx starts a transaction on the underlying connection pool. Multi-row
// writes such as organization creation and admin grant changes run through it
// so the service layer can commit or roll back as a unit.
func (r *OrganizationRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return tx, nil
}
