// cards.go implements handlers for cards. Creation appends to the end of the
// list; moving a card between lists arrives as a list_id update.
package boards

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskboard/taskboard-server/internal/db/models"
)

// resolveCard loads a card by ID, resolves the owning organization, and
// verifies the caller's membership. On failure it writes the response and
// returns empty values.
func (h *Handlers) resolveCard(c *gin.Context) (*models.Card, string) {
	card, orgID, err := h.boards.GetCardWithOrg(c.Request.Context(), c.Param("cardId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, ""
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
		return nil, ""
	}
	if _, ok := h.requireMember(c, orgID); !ok {
		return nil, ""
	}
	return card, orgID
}

// @Summary      Create card
// @Description  Append a card to the end of a list. Members only.
// @Tags         Cards
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        listId  path  string  true  "List ID"
// @Param        body    body  object  true  "title"
// @Success      201  {object}  models.Card
// @Failure      404  {object}  map[string]interface{}  "List not found"
// @Router       /api/v1/lists/{listId}/cards [post]
// CreateCardHandler appends a card to a list
// POST /api/v1/lists/:listId/cards
func (h *Handlers) CreateCardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		list, orgID := h.resolveList(c)
		if list == nil {
			return
		}

		var req struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}

		card := &models.Card{
			ListID: list.ID,
			Title:  req.Title,
		}
		if err := h.boards.CreateCard(c.Request.Context(), card); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create card"})
			return
		}

		h.recordAudit(c, orgID, models.ActionCreate, card.ID, models.EntityCard, card.Title)
		c.JSON(http.StatusCreated, card)
	}
}

// @Summary      List cards
// @Description  Retrieve a list's cards in position order. Members only.
// @Tags         Cards
// @Security     Bearer
// @Produce      json
// @Param        listId  path  string  true  "List ID"
// @Success      200  {object}  map[string]interface{}  "results: []models.Card"
// @Failure      404  {object}  map[string]interface{}  "List not found"
// @Router       /api/v1/lists/{listId}/cards [get]
// ListCardsHandler lists a list's cards in position order
// GET /api/v1/lists/:listId/cards
func (h *Handlers) ListCardsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		list, _ := h.resolveList(c)
		if list == nil {
			return
		}

		cards, err := h.boards.CardsForList(c.Request.Context(), list.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cards"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"results": cards})
	}
}

// @Summary      Update card
// @Description  Update a card's title, description, position, or list. Changing list_id moves the card. Members only.
// @Tags         Cards
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        cardId  path  string  true  "Card ID"
// @Param        body    body  object  true  "title, description, position, list_id"
// @Success      200  {object}  models.Card
// @Failure      404  {object}  map[string]interface{}  "Card not found"
// @Router       /api/v1/cards/{cardId} [patch]
// UpdateCardHandler updates a card
// PATCH /api/v1/cards/:cardId
func (h *Handlers) UpdateCardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		card, orgID := h.resolveCard(c)
		if card == nil {
			return
		}

		var req struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			Position    *int    `json:"position"`
			ListID      *string `json:"list_id"`
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
			card.Title = *req.Title
		}
		if req.Description != nil {
			card.Description = req.Description
		}
		if req.Position != nil {
			card.Position = *req.Position
		}
		if req.ListID != nil && *req.ListID != "" && *req.ListID != card.ListID {
			// The destination list must live on a board in the same organization.
			dest, destOrg, err := h.boards.GetListWithOrg(c.Request.Context(), *req.ListID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			if dest == nil || destOrg != orgID {
				c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
				return
			}
			card.ListID = dest.ID
		}

		if err := h.boards.UpdateCard(c.Request.Context(), card); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update card"})
			return
		}

		h.recordAudit(c, orgID, models.ActionUpdate, card.ID, models.EntityCard, card.Title)
		c.JSON(http.StatusOK, card)
	}
}

// @Summary      Delete card
// @Description  Delete a card. Members only.
// @Tags         Cards
// @Security     Bearer
// @Produce      json
// @Param        cardId  path  string  true  "Card ID"
// @Success      200  {object}  map[string]interface{}  "message"
// @Failure      404  {object}  map[string]interface{}  "Card not found"
// @Router       /api/v1/cards/{cardId} [delete]
// DeleteCardHandler deletes a card
// DELETE /api/v1/cards/:cardId
func (h *Handlers) DeleteCardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		card, orgID := h.resolveCard(c)
		if card == nil {
			return
		}

		if err := h.boards.DeleteCard(c.Request.Context(), card.ListID, card.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete card"})
			return
		}

		h.recordAudit(c, orgID, models.ActionDelete, card.ID, models.EntityCard, card.Title)
		c.JSON(http.StatusOK, gin.H{"message": "Card deleted"})
	}
}
