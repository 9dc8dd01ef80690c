// audit_repository.go implements AuditRepository, providing database queries for writing
// and retrieving per-organization activity history.
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/taskboard/taskboard-server/internal/db/models"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateAuditLog creates a new audit log entry
func (r *AuditRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	log.ID = uuid.New().String()
	log.CreatedAt = time.Now()

	query := `
		INSERT INTO audit_logs (id, organization_id, action, entity_id, entity_type, entity_title, user_id, user_name, user_image, created_at)
		VALUES (:id, :organization_id, :action, :entity_id, :entity_type, :entity_title, :user_id, :user_name, :user_image, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, log)
	return err
}

// ListAuditLogs retrieves an organization's activity history, newest first,
// with pagination
func (r *AuditRepository) ListAuditLogs(ctx context.Context, orgID string, limit, offset int) ([]*models.AuditLog, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM audit_logs WHERE organization_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, orgID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, organization_id, action, entity_id, entity_type, entity_title, user_id, user_name, user_image, created_at
		FROM audit_logs
		WHERE organization_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	logs := make([]*models.AuditLog, 0)
	if err := r.db.SelectContext(ctx, &logs, query, orgID, limit, offset); err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// ListEntityAuditLogs retrieves the most recent activity for a single
// entity within an organization
func (r *AuditRepository) ListEntityAuditLogs(ctx context.Context, orgID, entityID string, limit int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, organization_id, action, entity_id, entity_type, entity_title, user_id, user_name, user_image, created_at
		FROM audit_logs
		WHERE organization_id = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	logs := make([]*models.AuditLog, 0)
	if err := r.db.SelectContext(ctx, &logs, query, orgID, entityID, limit); err != nil {
		return nil, err
	}

	return logs, nil
}
