// members.go implements handlers for membership and role management:
// invite, remove, promote/demote, leave, ownership transfer, member listing,
// and the admin check used by clients to gate management UI.
package orgs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskboard/taskboard-server/internal/middleware"
	orgsvc "github.com/taskboard/taskboard-server/internal/orgs"
)

// @Summary      List organization members
// @Description  List members with their roles, newest first. Supports role and text filters. Members only.
// @Tags         Members
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "Organization ID"
// @Param        role      query  string  false  "Filter by role (admin or member)"
// @Param        query     query  string  false  "Match against email and name"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        pageSize  query  int     false  "Items per page, max 100 (default 10)"
// @Success      200  {object}  map[string]interface{}  "results: []models.Member, pagination: {page, page_size, total}"
// @Failure      404  {object}  map[string]interface{}  "Organization not found"
// @Router       /api/v1/organizations/{id}/memberships [get]
// ListMembersHandler lists an organization's members
// GET /api/v1/organizations/:id/memberships?role=&query=&page=&pageSize=
func (h *Handlers) ListMembersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		page, pageSize := parsePagination(c)
		params := orgsvc.MemberListParams{
			Role:     c.Query("role"),
			Search:   c.Query("query"),
			Page:     page,
			PageSize: pageSize,
		}

		memberPage, err := h.svc.ListMembers(c.Request.Context(), userID, c.Param("id"), params)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"results": memberPage.Members,
			"pagination": gin.H{
				"page":      memberPage.Page,
				"page_size": memberPage.PageSize,
				"total":     memberPage.Total,
			},
		})
	}
}

// @Summary      Invite a user
// @Description  Add a user to the organization by email as a plain member. Admins only.
// @Tags         Members
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Organization ID"
// @Param        body  body  object  true  "email"
// @Success      201  {object}  models.OrganizationUser
// @Failure      400  {object}  map[string]interface{}  "A valid email is required"
// @Failure      403  {object}  map[string]interface{}  "Admin access required"
// @Failure      409  {object}  map[string]interface{}  "User is already a member"
// @Router       /api/v1/organizations/{id}/invite [post]
// InviteHandler invites a user by email
// POST /api/v1/organizations/:id/invite
func (h *Handlers) InviteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		membership, err := h.svc.Invite(c.Request.Context(), userID, c.Param("id"), req.Email)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, membership)
	}
}

// @Summary      Remove a member
// @Description  Remove a member from the organization. Removing the last admin is rejected. Admins only.
// @Tags         Members
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Organization ID"
// @Param        body  body  object  true  "user_id"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      403  {object}  map[string]interface{}  "Admin access required"
// @Failure      404  {object}  map[string]interface{}  "User is not a member"
// @Failure      409  {object}  map[string]interface{}  "Cannot remove the last admin"
// @Router       /api/v1/organizations/{id}/remove-member [post]
// RemoveMemberHandler removes a member
// POST /api/v1/organizations/:id/remove-member
func (h *Handlers) RemoveMemberHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req struct {
			UserID string `json:"user_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if err := h.svc.RemoveMember(c.Request.Context(), userID, c.Param("id"), req.UserID); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
	}
}

// @Summary      Change a member's role
// @Description  Promote a member to admin or demote an admin to member. Demoting the last admin is rejected. Admins only.
// @Tags         Members
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Organization ID"
// @Param        body  body  object  true  "user_id, role"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      400  {object}  map[string]interface{}  "Role must be admin or member"
// @Failure      403  {object}  map[string]interface{}  "Admin access required"
// @Failure      409  {object}  map[string]interface{}  "Cannot demote the last admin"
// @Router       /api/v1/organizations/{id}/update-role [post]
// UpdateRoleHandler changes a member's role
// POST /api/v1/organizations/:id/update-role
func (h *Handlers) UpdateRoleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if err := h.svc.UpdateRole(c.Request.Context(), userID, c.Param("id"), req.UserID, req.Role); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Role updated"})
	}
}

// @Summary      Leave an organization
// @Description  Remove the caller's own membership. The last admin cannot leave.
// @Tags         Members
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Organization ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}  "User is not a member"
// @Failure      409  {object}  map[string]interface{}  "You cannot leave as the last admin"
// @Router       /api/v1/organizations/{id}/leave [post]
// LeaveHandler removes the caller's own membership
// POST /api/v1/organizations/:id/leave
func (h *Handlers) LeaveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		if err := h.svc.Leave(c.Request.Context(), userID, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Left organization"})
	}
}

// @Summary      Transfer ownership
// @Description  Grant admin to another member. The caller keeps their own admin grant. Admins only.
// @Tags         Members
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Organization ID"
// @Param        body  body  object  true  "new_owner_id"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      403  {object}  map[string]interface{}  "Admin access required"
// @Failure      404  {object}  map[string]interface{}  "User is not a member"
// @Router       /api/v1/organizations/{id}/transfer-owner [post]
// TransferOwnerHandler grants admin to another member
// POST /api/v1/organizations/:id/transfer-owner
func (h *Handlers) TransferOwnerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req struct {
			NewOwnerID string `json:"new_owner_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if err := h.svc.TransferOwnership(c.Request.Context(), userID, c.Param("id"), req.NewOwnerID); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Ownership transferred"})
	}
}

// @Summary      Check admin status
// @Description  Report whether the caller holds an admin grant in the organization. Always reads the database.
// @Tags         Members
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Organization ID"
// @Success      200  {object}  map[string]interface{}  "is_admin: bool"
// @Router       /api/v1/organizations/{id}/is-admin [get]
// IsAdminHandler reports the caller's admin status
// GET /api/v1/organizations/:id/is-admin
func (h *Handlers) IsAdminHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		isAdmin, err := h.svc.IsAdmin(c.Request.Context(), c.Param("id"), userID)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"is_admin": isAdmin})
	}
}
