// Package orgs implements HTTP handlers for organization CRUD and membership
// management. Handlers are thin: they parse input, call the organization
// service, and translate the service error taxonomy to HTTP status codes.
package orgs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskboard/taskboard-server/internal/middleware"
	orgsvc "github.com/taskboard/taskboard-server/internal/orgs"
)

// Handlers handles organization management endpoints
type Handlers struct {
	svc *orgsvc.Service
}

// NewHandlers creates a new Handlers instance
func NewHandlers(svc *orgsvc.Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeError translates a service error into an HTTP response. Unrecognized
// errors are treated as internal and their detail is not leaked to the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orgsvc.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, orgsvc.ErrPermission):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, orgsvc.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, orgsvc.ErrLastAdmin):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, orgsvc.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// parsePagination reads page/pageSize query parameters with the service
// defaults and bounds.
func parsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(orgsvc.DefaultPageSize)))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = orgsvc.DefaultPageSize
	}
	if pageSize > orgsvc.MaxPageSize {
		pageSize = orgsvc.MaxPageSize
	}
	return page, pageSize
}

// @Summary      Create organization
// @Description  Create a new organization. The caller becomes its first member and admin.
// @Tags         Organizations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "name"
// @Success      201  {object}  models.Organization
// @Failure      400  {object}  map[string]interface{}  "Validation error"
// @Failure      409  {object}  map[string]interface{}  "Slug conflict"
// @Router       /api/v1/organizations [post]
// CreateOrganizationHandler creates a new organization
// POST /api/v1/organizations
func (h *Handlers) CreateOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		org, err := h.svc.CreateOrganization(c.Request.Context(), userID, req.Name)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, org)
	}
}

// @Summary      List caller's organizations
// @Description  List the organizations the authenticated user belongs to, newest first.
// @Tags         Organizations
// @Security     Bearer
// @Produce      json
// @Param        page      query  int  false  "Page number (default 1)"
// @Param        pageSize  query  int  false  "Items per page, max 100 (default 10)"
// @Success      200  {object}  map[string]interface{}  "results: []models.OrganizationSummary, pagination: {page, page_size, total}"
// @Router       /api/v1/organizations [get]
// ListMyOrganizationsHandler lists the caller's organizations
// GET /api/v1/organizations?page=1&pageSize=10
func (h *Handlers) ListMyOrganizationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		page, pageSize := parsePagination(c)

		all, err := h.svc.ListUserOrganizations(c.Request.Context(), userID)
		if err != nil {
			writeError(c, err)
			return
		}

		// The service caches the full listing per user; page it here.
		total := len(all)
		start := (page - 1) * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}

		c.JSON(http.StatusOK, gin.H{
			"results": all[start:end],
			"pagination": gin.H{
				"page":      page,
				"page_size": pageSize,
				"total":     total,
			},
		})
	}
}

// @Summary      List caller's memberships
// @Description  List the caller's memberships across organizations, with the role held in each.
// @Tags         Organizations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "results: []models.UserMembership"
// @Router       /api/v1/memberships [get]
// ListMyMembershipsHandler lists the caller's memberships with roles
// GET /api/v1/memberships
func (h *Handlers) ListMyMembershipsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		memberships, err := h.svc.ListUserMemberships(c.Request.Context(), userID)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": memberships})
	}
}

// @Summary      Get organization
// @Description  Retrieve an organization with its board limit and subscription records. Members only.
// @Tags         Organizations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Organization ID"
// @Success      200  {object}  orgs.OrganizationDetail
// @Failure      404  {object}  map[string]interface{}  "Organization not found"
// @Router       /api/v1/organizations/{id} [get]
// GetOrganizationHandler retrieves an organization the caller belongs to
// GET /api/v1/organizations/:id
func (h *Handlers) GetOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		detail, err := h.svc.GetOrganization(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, detail)
	}
}

// @Summary      Update organization
// @Description  Rename an organization. The slug is regenerated from the new name. Admins only.
// @Tags         Organizations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Organization ID"
// @Param        body  body  object  true  "name"
// @Success      200  {object}  models.Organization
// @Failure      403  {object}  map[string]interface{}  "Admin access required"
// @Failure      409  {object}  map[string]interface{}  "Slug conflict"
// @Router       /api/v1/organizations/{id} [patch]
// UpdateOrganizationHandler renames an organization
// PATCH /api/v1/organizations/:id
func (h *Handlers) UpdateOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		org, err := h.svc.UpdateOrganization(c.Request.Context(), userID, c.Param("id"), req.Name)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, org)
	}
}

// @Summary      Delete organization
// @Description  Delete an organization and everything under it. Admins only.
// @Tags         Organizations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Organization ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      403  {object}  map[string]interface{}  "Admin access required"
// @Failure      404  {object}  map[string]interface{}  "Organization not found"
// @Router       /api/v1/organizations/{id} [delete]
// DeleteOrganizationHandler deletes an organization
// DELETE /api/v1/organizations/:id
func (h *Handlers) DeleteOrganizationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		if err := h.svc.DeleteOrganization(c.Request.Context(), userID, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Organization deleted"})
	}
}
