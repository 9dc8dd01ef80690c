// lists.go implements handlers for board lists. Creation appends to the end of
// the board; reorders arrive as position updates.
package boards

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskboard/taskboard-server/internal/db/models"
)

// resolveList loads a list by ID, resolves the owning organization, and
// verifies the caller's membership. On failure it writes the response and
// returns empty values.
func (h *Handlers) resolveList(c *gin.Context) (*models.BoardList, string) {
	list, orgID, err := h.boards.GetListWithOrg(c.Request.Context(), c.Param("listId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, ""
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
		return nil, ""
	}
	if _, ok := h.requireMember(c, orgID); !ok {
		return nil, ""
	}
	return list, orgID
}

// @Summary      Create list
// @Description  Append a list to the end of a board. Members only.
// @Tags         Lists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        boardId  path  string  true  "Board ID"
// @Param        body     body  object  true  "title"
// @Success      201  {object}  models.BoardList
// @Failure      404  {object}  map[string]interface{}  "Board not found"
// @Router       /api/v1/boards/{boardId}/lists [post]
// CreateListHandler appends a list to a board
// POST /api/v1/boards/:boardId/lists
func (h *Handlers) CreateListHandler() gin.HandlerFunc {
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

		list := &models.BoardList{
			BoardID: board.ID,
			Title:   req.Title,
		}
		if err := h.boards.CreateList(c.Request.Context(), list); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create list"})
			return
		}

		h.recordAudit(c, board.OrganizationID, models.ActionCreate, list.ID, models.EntityList, list.Title)
		c.JSON(http.StatusCreated, list)
	}
}

// @Summary      List lists
// @Description  Retrieve a board's lists in position order. Members only.
// @Tags         Lists
// @Security     Bearer
// @Produce      json
// @Param        boardId  path  string  true  "Board ID"
// @Success      200  {object}  map[string]interface{}  "results: []models.BoardList"
// @Failure      404  {object}  map[string]interface{}  "Board not found"
// @Router       /api/v1/boards/{boardId}/lists [get]
// ListListsHandler lists a board's lists in position order
// GET /api/v1/boards/:boardId/lists
func (h *Handlers) ListListsHandler() gin.HandlerFunc {
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

		c.JSON(http.StatusOK, gin.H{"results": lists})
	}
}

// @Summary      Update list
// @Description  Update a list's title and/or position. Members only.
// @Tags         Lists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        listId  path  string  true  "List ID"
// @Param        body    body  object  true  "title, position"
// @Success      200  {object}  models.BoardList
// @Failure      404  {object}  map[string]interface{}  "List not found"
// @Router       /api/v1/lists/{listId} [patch]
// UpdateListHandler updates a list's title and position
// PATCH /api/v1/lists/:listId
func (h *Handlers) UpdateListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		list, orgID := h.resolveList(c)
		if list == nil {
			return
		}

		var req struct {
			Title    *string `json:"title"`
			Position *int    `json:"position"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		if req.Title != nil {
			if *req.Title == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
				return
			}
			list.Title = *req.Title
		}
		if req.Position != nil {
			list.Position = *req.Position
		}

		if err := h.boards.UpdateList(c.Request.Context(), list); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update list"})
			return
		}

		h.recordAudit(c, orgID, models.ActionUpdate, list.ID, models.EntityList, list.Title)
		c.JSON(http.StatusOK, list)
	}
}

// @Summary      Delete list
// @Description  Delete a list and its cards. Members only.
// @Tags         Lists
// @Security     Bearer
// @Produce      json
// @Param        listId  path  string  true  "List ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}  "List not found"
// @Router       /api/v1/lists/{listId} [delete]
// DeleteListHandler deletes a list
// DELETE /api/v1/lists/:listId
func (h *Handlers) DeleteListHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		list, orgID := h.resolveList(c)
		if list == nil {
			return
		}

		if err := h.boards.DeleteList(c.Request.Context(), list.BoardID, list.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete list"})
			return
		}

		h.recordAudit(c, orgID, models.ActionDelete, list.ID, models.EntityList, list.Title)
		c.JSON(http.StatusOK, gin.H{"message": "List deleted"})
	}
}
