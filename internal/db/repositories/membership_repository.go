// membership_repository.go implements MembershipRepository, providing database queries
// for organization memberships, admin grants, and annotated member listings.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/taskboard/taskboard-server/internal/db/models"
)

// MembershipRepository handles database operations for organization
// memberships and admin grants
type MembershipRepository struct {
	db *sql.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// MemberListOptions contains filters and pagination for member listings
type MemberListOptions struct {
	Role   string // "admin", "member", or empty for all
	Search string // matches email, first name, or last name
	Limit  int
	Offset int
}

// AddMemberTx inserts a membership row inside an open transaction.
// The driver error is wrapped with %w so callers can detect a
// unique-violation when the user already belongs to the organization.
func (r *MembershipRepository) AddMemberTx(ctx context.Context, tx *sql.Tx, orgID, userID string) (*models.OrganizationUser, error) {
	query := `
		INSERT INTO organization_users (organization_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	member := &models.OrganizationUser{
		OrganizationID: orgID,
		UserID:         userID,
	}
	err := tx.QueryRowContext(ctx, query, orgID, userID).Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// GetMember retrieves a user's membership in an organization
func (r *MembershipRepository) GetMember(ctx context.Context, orgID, userID string) (*models.OrganizationUser, error) {
	query := `
		SELECT id, organization_id, user_id, created_at
		FROM organization_users
		WHERE organization_id = $1 AND user_id = $2
	`

	member := &models.OrganizationUser{}
	err := r.db.QueryRowContext(ctx, query, orgID, userID).Scan(
		&member.ID,
		&member.OrganizationID,
		&member.UserID,
		&member.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// MemberUserIDs returns the user IDs of every member of an organization.
// Used to fan out per-user cache invalidations when the whole
// organization goes away.
func (r *MembershipRepository) MemberUserIDs(ctx context.Context, orgID string) ([]string, error) {
	query := `SELECT user_id FROM organization_users WHERE organization_id = $1`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// RemoveMemberTx deletes a membership row inside an open transaction.
// Any admin grant held by the member is removed by foreign key cascade.
func (r *MembershipRepository) RemoveMemberTx(ctx context.Context, tx *sql.Tx, memberID string) error {
	query := `DELETE FROM organization_users WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// LockAdminGrantsTx locks every admin grant row for an organization and
// returns the membership IDs that hold one. Concurrent role changes for
// the same organization serialize on these row locks, so the count the
// caller derives stays valid until the transaction ends.
func (r *MembershipRepository) LockAdminGrantsTx(ctx context.Context, tx *sql.Tx, orgID string) ([]string, error) {
	query := `
		SELECT organization_user_id
		FROM organization_owners
		WHERE organization_id = $1
		FOR UPDATE
	`

	rows, err := tx.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock admin grants: %w", err)
	}
	defer rows.Close()

	holders := make([]string, 0)
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan admin grant: %w", err)
		}
		holders = append(holders, memberID)
	}

	return holders, rows.Err()
}

// GrantAdminTx inserts an admin grant inside an open transaction.
// Granting to a member that already holds one is a no-op; the unique
// index on (organization_id, organization_user_id) absorbs the insert.
func (r *MembershipRepository) GrantAdminTx(ctx context.Context, tx *sql.Tx, orgID, memberID string) error {
	query := `
		INSERT INTO organization_owners (organization_id, organization_user_id)
		VALUES ($1, $2)
		ON CONFLICT (organization_id, organization_user_id) DO NOTHING
	`

	_, err := tx.ExecContext(ctx, query, orgID, memberID)
	if err != nil {
		return fmt.Errorf("failed to grant admin: %w", err)
	}

	return nil
}

// RevokeAdminTx deletes a member's admin grant inside an open transaction
func (r *MembershipRepository) RevokeAdminTx(ctx context.Context, tx *sql.Tx, orgID, memberID string) error {
	query := `
		DELETE FROM organization_owners
		WHERE organization_id = $1 AND organization_user_id = $2
	`

	_, err := tx.ExecContext(ctx, query, orgID, memberID)
	if err != nil {
		return fmt.Errorf("failed to revoke admin: %w", err)
	}

	return nil
}

// IsAdmin reports whether a user holds an admin grant in an organization.
// Permission checks always run this against the database rather than any
// cached view.
func (r *MembershipRepository) IsAdmin(ctx context.Context, orgID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM organization_owners oo
			INNER JOIN organization_users ou ON oo.organization_user_id = ou.id
			WHERE oo.organization_id = $1 AND ou.user_id = $2
		)
	`

	var isAdmin bool
	err := r.db.QueryRowContext(ctx, query, orgID, userID).Scan(&isAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to check admin grant: %w", err)
	}

	return isAdmin, nil
}

// ListMembers retrieves a filtered, paginated page of organization members
// with user details and their effective role. The role is annotated in a
// single query via an EXISTS subquery against the admin grants, so listing
// a page never issues a per-member lookup.
func (r *MembershipRepository) ListMembers(ctx context.Context, orgID string, opts MemberListOptions) ([]*models.Member, int, error) {
	roleExpr := `EXISTS (
			SELECT 1 FROM organization_owners oo
			WHERE oo.organization_id = ou.organization_id AND oo.organization_user_id = ou.id
		)`

	countQuery := `
		SELECT COUNT(*)
		FROM organization_users ou
		INNER JOIN users u ON ou.user_id = u.id
		WHERE ou.organization_id = $1
	`
	query := fmt.Sprintf(`
		SELECT ou.id, ou.user_id, u.email, u.first_name, u.last_name,
		       CASE WHEN %s THEN 'admin' ELSE 'member' END AS role,
		       ou.created_at
		FROM organization_users ou
		INNER JOIN users u ON ou.user_id = u.id
		WHERE ou.organization_id = $1
	`, roleExpr)

	args := []interface{}{orgID}
	paramIndex := 2

	switch opts.Role {
	case models.RoleAdmin:
		countQuery += ` AND ` + roleExpr
		query += ` AND ` + roleExpr
	case models.RoleMember:
		countQuery += ` AND NOT ` + roleExpr
		query += ` AND NOT ` + roleExpr
	}

	if opts.Search != "" {
		filter := fmt.Sprintf(` AND (u.email ILIKE $%d OR u.first_name ILIKE $%d OR u.last_name ILIKE $%d)`,
			paramIndex, paramIndex, paramIndex)
		countQuery += filter
		query += filter
		args = append(args, "%"+opts.Search+"%")
		paramIndex++
	}

	// Get total count
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	// Newest members first; id breaks ties for a stable page order
	query += fmt.Sprintf(` ORDER BY ou.created_at DESC, ou.id LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.Member, 0)
	for rows.Next() {
		member := &models.Member{}
		err := rows.Scan(
			&member.ID,
			&member.UserID,
			&member.Email,
			&member.FirstName,
			&member.LastName,
			&member.Role,
			&member.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, total, rows.Err()
}

// ListUserMemberships retrieves every organization a user belongs to with
// the user's effective role in each
func (r *MembershipRepository) ListUserMemberships(ctx context.Context, userID string) ([]*models.UserMembership, error) {
	query := `
		SELECT ou.organization_id, o.name, o.slug,
		       CASE WHEN EXISTS (
		           SELECT 1 FROM organization_owners oo
		           WHERE oo.organization_id = ou.organization_id AND oo.organization_user_id = ou.id
		       ) THEN 'admin' ELSE 'member' END AS role,
		       ou.created_at
		FROM organization_users ou
		INNER JOIN organizations o ON ou.organization_id = o.id
		WHERE ou.user_id = $1
		ORDER BY ou.created_at DESC, ou.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user memberships: %w", err)
	}
	defer rows.Close()

	memberships := make([]*models.UserMembership, 0)
	for rows.Next() {
		m := &models.UserMembership{}
		err := rows.Scan(
			&m.OrganizationID,
			&m.OrganizationName,
			&m.OrganizationSlug,
			&m.Role,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}
