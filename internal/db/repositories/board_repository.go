// board_repository.go implements BoardRepository, providing database queries for
// boards, lists, and cards, plus the per-organization board counter.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/taskboard/taskboard-server/internal/db/models"
)

// BoardRepository handles database operations for boards, lists, and cards
type BoardRepository struct {
	db *sqlx.DB
}

// NewBoardRepository creates a new board repository
func NewBoardRepository(db *sqlx.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// CreateBoard inserts a board and increments the organization's board
// counter in a single transaction
func (r *BoardRepository) CreateBoard(ctx context.Context, board *models.Board) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO boards (organization_id, title, image_id, image_thumb_url, image_full_url, image_username, image_link_html)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowxContext(ctx, query,
		board.OrganizationID,
		board.Title,
		board.ImageID,
		board.ImageThumbURL,
		board.ImageFullURL,
		board.ImageUsername,
		board.ImageLinkHTML,
	).Scan(&board.ID, &board.CreatedAt, &board.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}

	counter := `UPDATE org_limits SET count = count + 1, updated_at = NOW() WHERE organization_id = $1`
	if _, err := tx.ExecContext(ctx, counter, board.OrganizationID); err != nil {
		return fmt.Errorf("failed to increment board count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit board creation: %w", err)
	}

	return nil
}

// GetBoard retrieves a board by ID within an organization
func (r *BoardRepository) GetBoard(ctx context.Context, orgID, boardID string) (*models.Board, error) {
	query := `
		SELECT id, organization_id, title, image_id, image_thumb_url, image_full_url, image_username, image_link_html, created_at, updated_at
		FROM boards
		WHERE organization_id = $1 AND id = $2
	`

	board := &models.Board{}
	err := r.db.GetContext(ctx, board, query, orgID, boardID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	return board, nil
}

// GetBoardByID retrieves a board by ID alone. Handlers use it to resolve the
// owning organization before checking membership on routes that carry only a
// board ID.
func (r *BoardRepository) GetBoardByID(ctx context.Context, boardID string) (*models.Board, error) {
	query := `
		SELECT id, organization_id, title, image_id, image_thumb_url, image_full_url, image_username, image_link_html, created_at, updated_at
		FROM boards
		WHERE id = $1
	`

	board := &models.Board{}
	err := r.db.GetContext(ctx, board, query, boardID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board: %w", err)
	}

	return board, nil
}

// ListBoards retrieves all boards in an organization, newest first
func (r *BoardRepository) ListBoards(ctx context.Context, orgID string) ([]*models.Board, error) {
	query := `
		SELECT id, organization_id, title, image_id, image_thumb_url, image_full_url, image_username, image_link_html, created_at, updated_at
		FROM boards
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`

	boards := make([]*models.Board, 0)
	if err := r.db.SelectContext(ctx, &boards, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}

	return boards, nil
}

// UpdateBoardTitle renames a board
func (r *BoardRepository) UpdateBoardTitle(ctx context.Context, orgID, boardID, title string) error {
	query := `
		UPDATE boards
		SET title = $3, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
	`

	_, err := r.db.ExecContext(ctx, query, orgID, boardID, title)
	if err != nil {
		return fmt.Errorf("failed to update board: %w", err)
	}

	return nil
}

// DeleteBoard removes a board and decrements the organization's board
// counter in a single transaction. Lists and cards go with it by cascade.
func (r *BoardRepository) DeleteBoard(ctx context.Context, orgID, boardID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE organization_id = $1 AND id = $2`, orgID, boardID)
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	counter := `UPDATE org_limits SET count = GREATEST(count - 1, 0), updated_at = NOW() WHERE organization_id = $1`
	if _, err := tx.ExecContext(ctx, counter, orgID); err != nil {
		return fmt.Errorf("failed to decrement board count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit board deletion: %w", err)
	}

	return nil
}

// === Lists ===

// CreateList appends a list to the end of a board
func (r *BoardRepository) CreateList(ctx context.Context, list *models.BoardList) error {
	query := `
		INSERT INTO board_lists (board_id, title, position)
		VALUES ($1, $2, COALESCE((SELECT MAX(position) + 1 FROM board_lists WHERE board_id = $1), 0))
		RETURNING id, position, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, list.BoardID, list.Title).Scan(
		&list.ID,
		&list.Position,
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}

	return nil
}

// GetList retrieves a list by ID within a board
func (r *BoardRepository) GetList(ctx context.Context, boardID, listID string) (*models.BoardList, error) {
	query := `
		SELECT id, board_id, title, position, created_at, updated_at
		FROM board_lists
		WHERE board_id = $1 AND id = $2
	`

	list := &models.BoardList{}
	err := r.db.GetContext(ctx, list, query, boardID, listID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	return list, nil
}

// GetListWithOrg retrieves a list by ID together with the ID of the
// organization that owns its board.
func (r *BoardRepository) GetListWithOrg(ctx context.Context, listID string) (*models.BoardList, string, error) {
	query := `
		SELECT l.id, l.board_id, l.title, l.position, l.created_at, l.updated_at, b.organization_id
		FROM board_lists l
		INNER JOIN boards b ON l.board_id = b.id
		WHERE l.id = $1
	`

	var row struct {
		models.BoardList
		OrganizationID string `db:"organization_id"`
	}
	err := r.db.GetContext(ctx, &row, query, listID)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get list: %w", err)
	}

	return &row.BoardList, row.OrganizationID, nil
}

// ListsForBoard retrieves a board's lists in position order
func (r *BoardRepository) ListsForBoard(ctx context.Context, boardID string) ([]*models.BoardList, error) {
	query := `
		SELECT id, board_id, title, position, created_at, updated_at
		FROM board_lists
		WHERE board_id = $1
		ORDER BY position, id
	`

	lists := make([]*models.BoardList, 0)
	if err := r.db.SelectContext(ctx, &lists, query, boardID); err != nil {
		return nil, fmt.Errorf("failed to list board lists: %w", err)
	}

	return lists, nil
}

// UpdateList updates a list's title and position
func (r *BoardRepository) UpdateList(ctx context.Context, list *models.BoardList) error {
	query := `
		UPDATE board_lists
		SET title = $3, position = $4, updated_at = NOW()
		WHERE board_id = $1 AND id = $2
	`

	_, err := r.db.ExecContext(ctx, query, list.BoardID, list.ID, list.Title, list.Position)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}

	return nil
}

// DeleteList removes a list and its cards
func (r *BoardRepository) DeleteList(ctx context.Context, boardID, listID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM board_lists WHERE board_id = $1 AND id = $2`, boardID, listID)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// === Cards ===

// CreateCard appends a card to the end of a list
func (r *BoardRepository) CreateCard(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (list_id, title, position)
		VALUES ($1, $2, COALESCE((SELECT MAX(position) + 1 FROM cards WHERE list_id = $1), 0))
		RETURNING id, position, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, card.ListID, card.Title).Scan(
		&card.ID,
		&card.Position,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetCard retrieves a card by ID within a list
func (r *BoardRepository) GetCard(ctx context.Context, listID, cardID string) (*models.Card, error) {
	query := `
		SELECT id, list_id, title, position, description, created_at, updated_at
		FROM cards
		WHERE list_id = $1 AND id = $2
	`

	card := &models.Card{}
	err := r.db.GetContext(ctx, card, query, listID, cardID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return card, nil
}

// GetCardWithOrg retrieves a card by ID together with the ID of the
// organization that owns it, resolved through the list and board.
func (r *BoardRepository) GetCardWithOrg(ctx context.Context, cardID string) (*models.Card, string, error) {
	query := `
		SELECT c.id, c.list_id, c.title, c.position, c.description, c.created_at, c.updated_at, b.organization_id
		FROM cards c
		INNER JOIN board_lists l ON c.list_id = l.id
		INNER JOIN boards b ON l.board_id = b.id
		WHERE c.id = $1
	`

	var row struct {
		models.Card
		OrganizationID string `db:"organization_id"`
	}
	err := r.db.GetContext(ctx, &row, query, cardID)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get card: %w", err)
	}

	return &row.Card, row.OrganizationID, nil
}

// CardsForList retrieves a list's cards in position order
func (r *BoardRepository) CardsForList(ctx context.Context, listID string) ([]*models.Card, error) {
	query := `
		SELECT id, list_id, title, position, description, created_at, updated_at
		FROM cards
		WHERE list_id = $1
		ORDER BY position, id
	`

	cards := make([]*models.Card, 0)
	if err := r.db.SelectContext(ctx, &cards, query, listID); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	return cards, nil
}

// UpdateCard updates a card's title, position, list, and description.
// Moving a card between lists is an update of list_id.
func (r *BoardRepository) UpdateCard(ctx context.Context, card *models.Card) error {
	query := `
		UPDATE cards
		SET list_id = $2, title = $3, position = $4, description = $5, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, card.ID, card.ListID, card.Title, card.Position, card.Description)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	return nil
}

// DeleteCard removes a card
func (r *BoardRepository) DeleteCard(ctx context.Context, listID, cardID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE list_id = $1 AND id = $2`, listID, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
