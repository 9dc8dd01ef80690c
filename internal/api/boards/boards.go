// Package boards implements HTTP handlers for the board hierarchy: boards,
// lists, and cards, plus the activity history recorded for their mutations.
// Every route is membership-gated: the caller must belong to the organization
// that owns the entity, resolved through the board when the route carries only
// a list or card ID.
package boards

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskboard/taskboard-server/internal/db/models"
	"github.com/taskboard/taskboard-server/internal/db/repositories"
	"github.com/taskboard/taskboard-server/internal/middleware"
	"github.com/taskboard/taskboard-server/internal/safego"
)

// Handlers handles board, list, card, and activity endpoints
type Handlers struct {
	boards  *repositories.BoardRepository
	members *repositories.MembershipRepository
	audit   *repositories.AuditRepository

	// auditEnabled gates activity recording; listing always works.
	auditEnabled bool
}

// NewHandlers creates a new Handlers instance
func NewHandlers(boards *repositories.BoardRepository, members *repositories.MembershipRepository, audit *repositories.AuditRepository, auditEnabled bool) *Handlers {
	return &Handlers{
		boards:       boards,
		members:      members,
		audit:        audit,
		auditEnabled: auditEnabled,
	}
}

// requireMember verifies the caller belongs to the organization. It writes the
// response itself on failure and reports whether the handler may proceed.
// Non-members get 404 rather than 403 so organization IDs are not probeable.
func (h *Handlers) requireMember(c *gin.Context, orgID string) (userID string, ok bool) {
	userID, authed := middleware.CurrentUserID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return "", false
	}

	member, err := h.members.GetMember(c.Request.Context(), orgID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return "", false
	}
	if member == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return "", false
	}

	return userID, true
}

// recordAudit writes an activity record asynchronously with a snapshot of the
// acting user. Recording is best-effort and never affects the response.
func (h *Handlers) recordAudit(c *gin.Context, orgID, action, entityID, entityType, entityTitle string) {
	if !h.auditEnabled {
		return
	}

	var actor *models.User
	if v, exists := c.Get("user"); exists {
		actor, _ = v.(*models.User)
	}
	if actor == nil {
		return
	}

	entry := &models.AuditLog{
		OrganizationID: orgID,
		Action:         action,
		EntityID:       entityID,
		EntityType:     entityType,
		EntityTitle:    entityTitle,
		UserID:         actor.ID,
		UserName:       actor.FullName(),
		UserImage:      actor.ImageURL,
	}

	safego.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.audit.CreateAuditLog(ctx, entry)
	})
}

// @Summary      Create board
// @Description  Create a board in an organization and bump its board counter. Members only.
// @Tags         Boards
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "Organization ID"
// @Param        body  body  object  true  "title and optional image fields"
// @Success      201  {object}  models.Board
// @Failure      404  {object}  map[string]interface{}  "Organization not found"
// @Router       /api/v1/organizations/{id}/boards [post]
// CreateBoardHandler creates a board
// POST /api/v1/organizations/:id/boards
func (h *Handlers) CreateBoardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		if _, ok := h.requireMember(c, orgID); !ok {
			return
		}

		var req struct {
			Title         string `json:"title"`
			ImageID       string `json:"image_id"`
			ImageThumbURL string `json:"image_thumb_url"`
			ImageFullURL  string `json:"image_full_url"`
			ImageUsername string `json:"image_username"`
			ImageLinkHTML string `json:"image_link_html"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}

		board := &models.Board{
			OrganizationID: orgID,
			Title:          req.Title,
			ImageID:        req.ImageID,
			ImageThumbURL:  req.ImageThumbURL,
			ImageFullURL:   req.ImageFullURL,
			ImageUsername:  req.ImageUsername,
			ImageLinkHTML:  req.ImageLinkHTML,
		}
		if err := h.boards.CreateBoard(c.Request.Context(), board); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
			return
		}

		h.recordAudit(c, orgID, models.ActionCreate, board.ID, models.EntityBoard, board.Title)
		c.JSON(http.StatusCreated, board)
	}
}

// @Summary      List boards
// @Description  List an organization's boards, newest first. Members only.
// @Tags         Boards
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Organization ID"
// @Success      200  {object}  map[string]interface{}  "results: []models.Board"
// @Failure      404  {object}  map[string]interface{}  "Organization not found"
// @Router       /api/v1/organizations/{id}/boards [get]
// ListBoardsHandler lists an organization's boards
// GET /api/v1/organizations/:id/boards
func (h *Handlers) ListBoardsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("id")
		if _, ok := h.requireMember(c, orgID); !ok {
			return
		}

		boards, err := h.boards.ListBoards(c.Request.Context(), orgID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list boards"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": boards})
	}
}

// resolveBoard loads a board by ID and verifies the caller's membership in its
// organization. On failure it writes the response and returns nil.
func (h *Handlers) resolveBoard(c *gin.Context) *models.Board {
	board, err := h.boards.GetBoardByID(c.Request.Context(), c.Param("boardId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return nil
	}
	if _, ok := h.requireMember(c, board.OrganizationID); !ok {
		return nil
	}
	return board
}

// @Summary      Get board
// @Description  Retrieve a board with its lists in position order. Members only.
// @Tags         Boards
// @Security     Bearer
// @Produce      json
// @Param        boardId  path  string  true  "Board ID"
// @Success      200  {object}  map[string]interface{}  "board: models.Board, lists: []models.BoardList"
// @Failure      404  {object}  map[string]interface{}  "Board not found"
// @Router       /api/v1/boards/{boardId} [get]
// GetBoardHandler retrieves a board and its lists
// GET /api/v1/boards/:boardId
func (h *Handlers) GetBoardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		board := h.resolveBoard(c)
		if board == nil {
			return
		}

		lists, err := h.boards.ListsForBoard(c.Request.Context(), board.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load lists"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"board": board,
			"lists": lists,
		})
	}
}

// @Summary      Rename board
// @Description  Update a board's title. Members only.
// @Tags         Boards
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        boardId  path  string  true  "Board ID"
// @Param        body     body  object  true  "title"
// @Success      200  {object}  models.Board
// @Failure      404  {object}  map[string]interface{}  "Board not found"
// @Router       /api/v1/boards/{boardId} [patch]
// UpdateBoardHandler renames a board
// PATCH /api/v1/boards/:boardId
func (h *Handlers) UpdateBoardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		board := h.resolveBoard(c)
		if board == nil {
			return
		}

		var req struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}

		if err := h.boards.UpdateBoardTitle(c.Request.Context(), board.OrganizationID, board.ID, req.Title); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
			return
		}

		board.Title = req.Title
		h.recordAudit(c, board.OrganizationID, models.ActionUpdate, board.ID, models.EntityBoard, board.Title)
		c.JSON(http.StatusOK, board)
	}
}

// @Summary      Delete board
// @Description  Delete a board with its lists and cards, and decrement the board counter. Members only.
// @Tags         Boards
// @Security     Bearer
// @Produce      json
// @Param        boardId  path  string  true  "Board ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}  "Board not found"
// @Router       /api/v1/boards/{boardId} [delete]
// DeleteBoardHandler deletes a board
// DELETE /api/v1/boards/:boardId
func (h *Handlers) DeleteBoardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		board := h.resolveBoard(c)
		if board == nil {
			return
		}

		if err := h.boards.DeleteBoard(c.Request.Context(), board.OrganizationID, board.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
			return
		}

		h.recordAudit(c, board.OrganizationID, models.ActionDelete, board.ID, models.EntityBoard, board.Title)
		c.JSON(http.StatusOK, gin.H{"message": "Board deleted"})
	}
}
