// Package orgs implements organization membership and role management.
// The service coordinates repositories, the admin-grant invariant, and cache
// invalidation: every organization keeps at least one admin at all times, and
// the checks that enforce it run inside row-locking transactions so
// concurrent role changes cannot race past each other.
package orgs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/taskboard/taskboard-server/internal/cache"
	"github.com/taskboard/taskboard-server/internal/db/models"
	"github.com/taskboard/taskboard-server/internal/db/repositories"
	"github.com/taskboard/taskboard-server/internal/telemetry"
)

const (
	// maxSlugAttempts bounds how many suffixed slugs creation tries before
	// giving up with a conflict.
	maxSlugAttempts = 6

	// DefaultPageSize and MaxPageSize bound member listing pagination.
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Service implements organization and membership operations
type Service struct {
	orgs    *repositories.OrganizationRepository
	members *repositories.MembershipRepository
	users   *repositories.UserRepository
	store   cache.Store
}

// NewService creates an organization service
func NewService(orgs *repositories.OrganizationRepository, members *repositories.MembershipRepository, users *repositories.UserRepository, store cache.Store) *Service {
	return &Service{
		orgs:    orgs,
		members: members,
		users:   users,
		store:   store,
	}
}

// OrganizationDetail is the full organization view returned to members
type OrganizationDetail struct {
	Organization *models.Organization    `json:"organization"`
	Limit        *models.OrgLimit        `json:"limit,omitempty"`
	Subscription *models.OrgSubscription `json:"subscription,omitempty"`
}

// MemberPage is one page of an organization's member listing
type MemberPage struct {
	Members  []*models.Member `json:"members"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// MemberListParams filters and paginates member listings
type MemberListParams struct {
	Role     string
	Search   string
	Page     int
	PageSize int
}

// ---------------------------------------------------------------------------
// Organizations
// ---------------------------------------------------------------------------

// CreateOrganization creates an organization with the creator as its first
// member and admin. The organization row, membership, admin grant, and
// board-count row are inserted in one transaction; a partially created
// organization is never visible.
func (s *Service) CreateOrganization(ctx context.Context, userID, name string) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError("Name is required")
	}

	base := Slugify(name)
	if base == "" {
		return nil, ValidationError("Name must contain letters or numbers")
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug := base
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", base, attempt+1)
		}

		org, err := s.createWithSlug(ctx, userID, name, slug)
		if err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}

		s.invalidate(ctx, cache.UserOrgsKey(userID), cache.UserMembershipsKey(userID))
		telemetry.MembershipChangesTotal.WithLabelValues("create_org").Inc()
		return org, nil
	}

	return nil, ConflictError("An organization with this name already exists")
}

func (s *Service) createWithSlug(ctx context.Context, userID, name, slug string) (*models.Organization, error) {
	tx, err := s.orgs.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	org := &models.Organization{Name: name, Slug: slug}
	if err := s.orgs.CreateTx(ctx, tx, org); err != nil {
		return nil, err
	}

	member, err := s.members.AddMemberTx(ctx, tx, org.ID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.members.GrantAdminTx(ctx, tx, org.ID, member.ID); err != nil {
		return nil, err
	}

	if err := s.orgs.CreateLimitTx(ctx, tx, org.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit organization creation: %w", err)
	}

	return org, nil
}

// GetOrganization returns the full organization view. Only members can see
// it; anyone else gets a not-found so the organization's existence is not
// disclosed.
func (s *Service) GetOrganization(ctx context.Context, callerID, orgID string) (*OrganizationDetail, error) {
	if err := s.requireMember(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	key := cache.OrgKey(orgID)
	if cached, err := s.store.Get(ctx, key); err == nil {
		detail := &OrganizationDetail{}
		if err := json.Unmarshal(cached, detail); err == nil {
			telemetry.CacheRequestsTotal.WithLabelValues("org", "hit").Inc()
			return detail, nil
		}
	}
	telemetry.CacheRequestsTotal.WithLabelValues("org", "miss").Inc()

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, NotFoundError("Organization not found")
	}

	limit, err := s.orgs.GetLimit(ctx, orgID)
	if err != nil {
		return nil, err
	}

	sub, err := s.orgs.GetSubscription(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		// Older organizations predate the subscription table; create the
		// empty row on first read.
		sub, err = s.orgs.EnsureSubscription(ctx, orgID)
		if err != nil {
			return nil, err
		}
	}

	detail := &OrganizationDetail{Organization: org, Limit: limit, Subscription: sub}
	s.fill(ctx, key, detail)
	return detail, nil
}

// UpdateOrganization renames an organization. Admin only. The slug is
// rederived from the new name, with the same suffix retry as creation.
func (s *Service) UpdateOrganization(ctx context.Context, callerID, orgID, name string) (*models.Organization, error) {
	if err := s.requireAdmin(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError("Name is required")
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, NotFoundError("Organization not found")
	}

	base := Slugify(name)
	if base == "" {
		return nil, ValidationError("Name must contain letters or numbers")
	}

	org.Name = name
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug := base
		if attempt > 0 {
			slug = fmt.Sprintf("%s-%d", base, attempt+1)
		}

		// The UPDATE runs even when the slug is unchanged; a rename
		// that keeps the same slug still has to persist the name.
		org.Slug = slug
		err := s.orgs.Update(ctx, org)
		if err == nil {
			break
		}
		if isUniqueViolation(err) {
			if attempt == maxSlugAttempts-1 {
				return nil, ConflictError("An organization with this name already exists")
			}
			continue
		}
		return nil, err
	}

	// Member-facing listings embed the name and slug, so fan the
	// invalidation out to every member's per-user keys.
	keys := []string{cache.OrgKey(orgID), cache.OrgMembersKey(orgID)}
	if memberIDs, err := s.members.MemberUserIDs(ctx, orgID); err == nil {
		for _, userID := range memberIDs {
			keys = append(keys, cache.UserOrgsKey(userID), cache.UserMembershipsKey(userID))
		}
	} else {
		slog.Warn("member cache fanout skipped", "org_id", orgID, "error", err)
	}
	s.invalidate(ctx, keys...)
	return org, nil
}

// DeleteOrganization removes an organization and everything in it. Admin only.
func (s *Service) DeleteOrganization(ctx context.Context, callerID, orgID string) error {
	if err := s.requireAdmin(ctx, orgID, callerID); err != nil {
		return err
	}

	// Snapshot member ids before the cascade removes them, so every
	// member's listing caches can be invalidated after the delete.
	memberIDs, err := s.members.MemberUserIDs(ctx, orgID)
	if err != nil {
		return err
	}

	if err := s.orgs.Delete(ctx, orgID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NotFoundError("Organization not found")
		}
		return err
	}

	keys := []string{cache.OrgKey(orgID), cache.OrgMembersKey(orgID)}
	for _, userID := range memberIDs {
		keys = append(keys, cache.UserOrgsKey(userID), cache.UserMembershipsKey(userID))
	}
	s.invalidate(ctx, keys...)
	telemetry.MembershipChangesTotal.WithLabelValues("delete_org").Inc()
	return nil
}

// ---------------------------------------------------------------------------
// Membership
// ---------------------------------------------------------------------------

// Invite adds a user to an organization by email. Admin only. An address
// that has never signed in gets a placeholder account so the membership
// lands when they do.
func (s *Service) Invite(ctx context.Context, callerID, orgID, email string) (*models.OrganizationUser, error) {
	if err := s.requireAdmin(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ValidationError("A valid email is required")
	}

	user, err := s.users.GetOrCreateUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	tx, err := s.orgs.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	member, err := s.members.AddMemberTx(ctx, tx, orgID, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ConflictError("User is already a member")
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invite: %w", err)
	}

	s.invalidateMembership(ctx, orgID, user.ID)
	telemetry.MembershipChangesTotal.WithLabelValues("invite").Inc()
	return member, nil
}

// RemoveMember removes a user from an organization. Admin only. Removing
// the last admin is refused; the admin grants are locked first so two
// concurrent removals cannot both pass the check.
func (s *Service) RemoveMember(ctx context.Context, callerID, orgID, userID string) error {
	if err := s.requireAdmin(ctx, orgID, callerID); err != nil {
		return err
	}

	member, err := s.members.GetMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return NotFoundError("User is not a member")
	}

	tx, err := s.orgs.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	holders, err := s.members.LockAdminGrantsTx(ctx, tx, orgID)
	if err != nil {
		return err
	}
	if holds(holders, member.ID) && len(holders) == 1 {
		return LastAdminError("Cannot remove the last admin")
	}

	if err := s.members.RemoveMemberTx(ctx, tx, member.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit member removal: %w", err)
	}

	s.invalidateMembership(ctx, orgID, userID)
	telemetry.MembershipChangesTotal.WithLabelValues("remove").Inc()
	return nil
}

// UpdateRole promotes a member to admin or demotes an admin to member.
// Admin only. Promotion is idempotent; demoting the last admin is refused
// under the same grant locks as removal.
func (s *Service) UpdateRole(ctx context.Context, callerID, orgID, userID, role string) error {
	if err := s.requireAdmin(ctx, orgID, callerID); err != nil {
		return err
	}

	if role != models.RoleAdmin && role != models.RoleMember {
		return ValidationError("Role must be admin or member")
	}

	member, err := s.members.GetMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return NotFoundError("User is not a member")
	}

	tx, err := s.orgs.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if role == models.RoleAdmin {
		if err := s.members.GrantAdminTx(ctx, tx, orgID, member.ID); err != nil {
			return err
		}
	} else {
		holders, err := s.members.LockAdminGrantsTx(ctx, tx, orgID)
		if err != nil {
			return err
		}
		if holds(holders, member.ID) {
			if len(holders) == 1 {
				return LastAdminError("Cannot demote the last admin")
			}
			if err := s.members.RevokeAdminTx(ctx, tx, orgID, member.ID); err != nil {
				return err
			}
		}
		// Demoting a plain member is a no-op
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit role change: %w", err)
	}

	s.invalidateMembership(ctx, orgID, userID)
	telemetry.MembershipChangesTotal.WithLabelValues("update_role").Inc()
	return nil
}

// Leave removes the caller's own membership. The last admin cannot leave;
// they must promote someone else or delete the organization.
func (s *Service) Leave(ctx context.Context, userID, orgID string) error {
	member, err := s.members.GetMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return NotFoundError("User is not a member")
	}

	tx, err := s.orgs.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	holders, err := s.members.LockAdminGrantsTx(ctx, tx, orgID)
	if err != nil {
		return err
	}
	if holds(holders, member.ID) && len(holders) == 1 {
		return LastAdminError("You cannot leave as the last admin")
	}

	if err := s.members.RemoveMemberTx(ctx, tx, member.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit leave: %w", err)
	}

	s.invalidateMembership(ctx, orgID, userID)
	telemetry.MembershipChangesTotal.WithLabelValues("leave").Inc()
	return nil
}

// TransferOwnership grants admin to another member. Admin only. The caller
// keeps their own grant; demote separately if desired.
func (s *Service) TransferOwnership(ctx context.Context, callerID, orgID, targetUserID string) error {
	if err := s.requireAdmin(ctx, orgID, callerID); err != nil {
		return err
	}

	member, err := s.members.GetMember(ctx, orgID, targetUserID)
	if err != nil {
		return err
	}
	if member == nil {
		return NotFoundError("User is not a member")
	}

	tx, err := s.orgs.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.members.GrantAdminTx(ctx, tx, orgID, member.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ownership transfer: %w", err)
	}

	s.invalidateMembership(ctx, orgID, targetUserID)
	telemetry.MembershipChangesTotal.WithLabelValues("transfer").Inc()
	return nil
}

// ---------------------------------------------------------------------------
// Listings and role checks
// ---------------------------------------------------------------------------

// ListMembers returns a page of members with their effective role. Any
// member of the organization can list. Only the unfiltered first default
// page is cached; filtered views go straight to the database.
func (s *Service) ListMembers(ctx context.Context, callerID, orgID string, params MemberListParams) (*MemberPage, error) {
	if err := s.requireMember(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	if params.Role != "" && params.Role != models.RoleAdmin && params.Role != models.RoleMember {
		return nil, ValidationError("Role must be admin or member")
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = DefaultPageSize
	}
	if params.PageSize > MaxPageSize {
		params.PageSize = MaxPageSize
	}

	cacheable := params.Role == "" && params.Search == "" &&
		params.Page == 1 && params.PageSize == DefaultPageSize

	key := cache.OrgMembersKey(orgID)
	if cacheable {
		if cached, err := s.store.Get(ctx, key); err == nil {
			page := &MemberPage{}
			if err := json.Unmarshal(cached, page); err == nil {
				telemetry.CacheRequestsTotal.WithLabelValues("org_members", "hit").Inc()
				return page, nil
			}
		}
		telemetry.CacheRequestsTotal.WithLabelValues("org_members", "miss").Inc()
	}

	members, total, err := s.members.ListMembers(ctx, orgID, repositories.MemberListOptions{
		Role:   params.Role,
		Search: params.Search,
		Limit:  params.PageSize,
		Offset: (params.Page - 1) * params.PageSize,
	})
	if err != nil {
		return nil, err
	}

	page := &MemberPage{
		Members:  members,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	if cacheable {
		s.fill(ctx, key, page)
	}

	return page, nil
}

// ListUserOrganizations returns the organizations the user belongs to,
// annotated with member counts and the caller's admin standing.
func (s *Service) ListUserOrganizations(ctx context.Context, userID string) ([]*models.OrganizationSummary, error) {
	key := cache.UserOrgsKey(userID)
	if cached, err := s.store.Get(ctx, key); err == nil {
		var orgs []*models.OrganizationSummary
		if err := json.Unmarshal(cached, &orgs); err == nil {
			telemetry.CacheRequestsTotal.WithLabelValues("user_orgs", "hit").Inc()
			return orgs, nil
		}
	}
	telemetry.CacheRequestsTotal.WithLabelValues("user_orgs", "miss").Inc()

	orgs, err := s.orgs.ListUserOrganizations(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.fill(ctx, key, orgs)
	return orgs, nil
}

// ListUserMemberships returns the user's memberships with role annotations
func (s *Service) ListUserMemberships(ctx context.Context, userID string) ([]*models.UserMembership, error) {
	key := cache.UserMembershipsKey(userID)
	if cached, err := s.store.Get(ctx, key); err == nil {
		var memberships []*models.UserMembership
		if err := json.Unmarshal(cached, &memberships); err == nil {
			telemetry.CacheRequestsTotal.WithLabelValues("user_memberships", "hit").Inc()
			return memberships, nil
		}
	}
	telemetry.CacheRequestsTotal.WithLabelValues("user_memberships", "miss").Inc()

	memberships, err := s.members.ListUserMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.fill(ctx, key, memberships)
	return memberships, nil
}

// IsAdmin reports whether a user holds an admin grant in an organization.
// This always reads the database; authorization never trusts the cache.
func (s *Service) IsAdmin(ctx context.Context, orgID, userID string) (bool, error) {
	return s.members.IsAdmin(ctx, orgID, userID)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Service) requireAdmin(ctx context.Context, orgID, userID string) error {
	isAdmin, err := s.members.IsAdmin(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return PermissionError("Admin access required")
	}
	return nil
}

func (s *Service) requireMember(ctx context.Context, orgID, userID string) error {
	member, err := s.members.GetMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return NotFoundError("Organization not found")
	}
	return nil
}

// invalidate drops cache keys after a committed write. Failures are logged
// and swallowed; the TTL bounds how long a stale entry can linger.
func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.store.Delete(ctx, keys...); err != nil {
		slog.Warn("cache invalidation failed", "keys", keys, "error", err)
	}
}

func (s *Service) invalidateMembership(ctx context.Context, orgID string, userIDs ...string) {
	keys := []string{cache.OrgKey(orgID), cache.OrgMembersKey(orgID)}
	for _, id := range userIDs {
		keys = append(keys, cache.UserOrgsKey(id), cache.UserMembershipsKey(id))
	}
	s.invalidate(ctx, keys...)
}

// fill writes a freshly loaded value into the cache. Serialization or
// store failures are logged and swallowed.
func (s *Service) fill(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache serialization failed", "key", key, "error", err)
		return
	}
	if err := s.store.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

func holds(holders []string, memberID string) bool {
	for _, id := range holders {
		if id == memberID {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
