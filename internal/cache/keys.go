// keys.go builds the cache key namespace. Keys are derived from entity IDs
// so invalidation can target exactly the entries a write made stale.
package cache

import "fmt"

// OrgKey caches a single organization record
func OrgKey(orgID string) string {
	return fmt.Sprintf("org_%s", orgID)
}

// OrgMembersKey caches the member listing of an organization
func OrgMembersKey(orgID string) string {
	return fmt.Sprintf("org_members_%s", orgID)
}

// UserOrgsKey caches the organizations a user belongs to
func UserOrgsKey(userID string) string {
	return fmt.Sprintf("user_orgs_%s", userID)
}

// UserMembershipsKey caches a user's memberships with role annotations
func UserMembershipsKey(userID string) string {
	return fmt.Sprintf("user_memberships_%s", userID)
}
