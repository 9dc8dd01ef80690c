// activity.go implements handlers for reading the activity history recorded
// for board, list, and card mutations.
package boards

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultActivityPageSize = 20
	maxActivityPageSize     = 100
)

// @Summary      List activity
// @Description  List an organization's recorded board activity, newest first. Admins only.
// @Tags         Activity
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "Organization ID"
// @Param        page      query  int     false  "Page number (default 1)"
// @Param        pageSize  query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "results: []models.AuditLog, pagination: {page, page_size, total}"
// @Failure      403  {object}  map[string]interface{}  "Admin access required"
// @Router       /api/v1/organizations/{id}/audit-logs [get]
// ListActivityHandler lists an organization's activity history
// GET /api/v1/organizations/:id/audit-logs?page=&pageSize=
func (h *Handlers) ListActivityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		userID, ok := h.requireMember(c, orgID)
		if !ok {
			return
		}

		isAdmin, err := h.members.IsAdmin(c.Request.Context(), orgID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultActivityPageSize)))
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			pageSize = defaultActivityPageSize
		}
		if pageSize > maxActivityPageSize {
			pageSize = maxActivityPageSize
		}

		logs, total, err := h.audit.ListAuditLogs(c.Request.Context(), orgID, pageSize, (page-1)*pageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list activity"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"results": logs,
			"pagination": gin.H{
				"page":      page,
				"page_size": pageSize,
				"total":     total,
			},
		})
	}
}

// @Summary      List entity activity
// @Description  List recent activity for one board entity, newest first. Members only.
// @Tags         Activity
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "Organization ID"
// @Param        entityId  path   string  true   "Entity ID"
// @Param        limit     query  int     false  "Max entries (default 3)"
// @Success      200  {object}  map[string]interface{}  "results: []models.AuditLog"
// @Router       /api/v1/organizations/{id}/audit-logs/{entityId} [get]
// ListEntityActivityHandler lists recent activity for one entity
// GET /api/v1/organizations/:id/audit-logs/:entityId?limit=3
func (h *Handlers) ListEntityActivityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		if _, ok := h.requireMember(c, orgID); !ok {
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "3"))
		if limit < 1 {
			limit = 3
		}
		if limit > maxActivityPageSize {
			limit = maxActivityPageSize
		}

		logs, err := h.audit.ListEntityAuditLogs(c.Request.Context(), orgID, c.Param("entityId"), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list activity"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": logs})
	}
}
