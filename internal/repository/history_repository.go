package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/database"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// HistoryRepository defines append-only audit log operations.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
	ListByRequest(ctx context.Context, requestID string) ([]models.HistoryEntry, error)
}

// HistorySQLRepository is the sqlx-backed implementation over the history
// table.
type HistorySQLRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a SQL history repository.
func NewHistoryRepository(db *sqlx.DB) *HistorySQLRepository {
	return &HistorySQLRepository{db: db}
}

// Append stores one audit entry.
func (r *HistorySQLRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	query := database.ConvertPlaceholders(`
		INSERT INTO history (id, request_id, action, actor, actor_type, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.RequestID, entry.Action, entry.Actor, entry.ActorType,
		entry.Details, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// ListByRequest returns a request's audit log, oldest first.
func (r *HistorySQLRepository) ListByRequest(ctx context.Context, requestID string) ([]models.HistoryEntry, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, request_id, action, actor, actor_type, details, created_at
		FROM history WHERE request_id = ?
		ORDER BY created_at, id`)
	entries := []models.HistoryEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, requestID); err != nil {
		return nil, fmt.Errorf("failed to list history for request %s: %w", requestID, err)
	}
	return entries, nil
}
