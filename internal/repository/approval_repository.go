package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/database"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// ApprovalRepository defines approval record operations.
type ApprovalRepository interface {
	Create(ctx context.Context, rec *models.ApprovalRecord) error
	GetByID(ctx context.Context, id string) (*models.ApprovalRecord, error)
	ListByRequest(ctx context.Context, requestID string) ([]models.ApprovalRecord, error)
	ListPendingForApprover(ctx context.Context, approverID string) ([]models.ApprovalSummary, error)
	// ListStalePending returns sent, unacted records whose level activated
	// before the cutoff, for reminder delivery.
	ListStalePending(ctx context.Context, before time.Time) ([]models.ApprovalRecord, error)
	// Update persists the record if and only if the stored version still
	// matches rec.Version; on success rec.Version is incremented.
	Update(ctx context.Context, rec *models.ApprovalRecord) error
}

// ApprovalSQLRepository is the sqlx-backed implementation over the
// approvals table.
type ApprovalSQLRepository struct {
	db *sqlx.DB
}

// NewApprovalRepository creates a SQL approval repository.
func NewApprovalRepository(db *sqlx.DB) *ApprovalSQLRepository {
	return &ApprovalSQLRepository{db: db}
}

// Create inserts a new approval record with version 1.
func (r *ApprovalSQLRepository) Create(ctx context.Context, rec *models.ApprovalRecord) error {
	if rec.Version == 0 {
		rec.Version = 1
	}
	query := database.ConvertPlaceholders(`
		INSERT INTO approvals (id, request_id, level, level_name, approver_id,
			approver_email, approver_name, status, sent_on, acted_on, comments, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.RequestID, rec.Level, rec.LevelName, rec.ApproverID,
		rec.ApproverEmail, rec.ApproverName, rec.Status, rec.SentOn, rec.ActedOn,
		rec.Comments, rec.Version)
	if err != nil {
		return fmt.Errorf("failed to insert approval: %w", err)
	}
	return nil
}

// GetByID retrieves one approval record.
func (r *ApprovalSQLRepository) GetByID(ctx context.Context, id string) (*models.ApprovalRecord, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, request_id, level, level_name, approver_id, approver_email,
			approver_name, status, sent_on, acted_on, comments, version
		FROM approvals WHERE id = ?`)
	var rec models.ApprovalRecord
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load approval %s: %w", id, err)
	}
	return &rec, nil
}

// ListByRequest returns every approval record of a request ordered by level
// then approver name, so levels group naturally for display.
func (r *ApprovalSQLRepository) ListByRequest(ctx context.Context, requestID string) ([]models.ApprovalRecord, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, request_id, level, level_name, approver_id, approver_email,
			approver_name, status, sent_on, acted_on, comments, version
		FROM approvals WHERE request_id = ?
		ORDER BY level, approver_name`)
	recs := []models.ApprovalRecord{}
	if err := r.db.SelectContext(ctx, &recs, query, requestID); err != nil {
		return nil, fmt.Errorf("failed to list approvals for request %s: %w", requestID, err)
	}
	return recs, nil
}

// ListPendingForApprover returns sent, still-pending approvals for an actor,
// oldest first. Records whose level has not been activated (sent_on IS NULL)
// are excluded: the approver should not see future levels.
func (r *ApprovalSQLRepository) ListPendingForApprover(ctx context.Context, approverID string) ([]models.ApprovalSummary, error) {
	query := database.ConvertPlaceholders(`
		SELECT a.id, a.request_id, r.subject, r.requester_name, a.level,
			a.level_name, a.status, a.sent_on
		FROM approvals a
		JOIN requests r ON r.id = a.request_id
		WHERE a.approver_id = ? AND a.sent_on IS NOT NULL AND a.acted_on IS NULL
		ORDER BY a.sent_on`)
	rows, err := r.db.QueryContext(ctx, query, approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	defer rows.Close()

	summaries := []models.ApprovalSummary{}
	for rows.Next() {
		var s models.ApprovalSummary
		if err := rows.Scan(&s.ApprovalID, &s.RequestID, &s.RequestSubject,
			&s.RequesterName, &s.Level, &s.LevelName, &s.Status, &s.SentOn); err != nil {
			return nil, fmt.Errorf("failed to scan pending approval: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListStalePending returns sent, unacted records activated before the cutoff.
func (r *ApprovalSQLRepository) ListStalePending(ctx context.Context, before time.Time) ([]models.ApprovalRecord, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, request_id, level, level_name, approver_id, approver_email,
			approver_name, status, sent_on, acted_on, comments, version
		FROM approvals
		WHERE sent_on IS NOT NULL AND sent_on < ? AND acted_on IS NULL
		ORDER BY sent_on`)
	recs := []models.ApprovalRecord{}
	if err := r.db.SelectContext(ctx, &recs, query, before); err != nil {
		return nil, fmt.Errorf("failed to list stale approvals: %w", err)
	}
	return recs, nil
}

// Update applies the record under an optimistic version check.
func (r *ApprovalSQLRepository) Update(ctx context.Context, rec *models.ApprovalRecord) error {
	query := database.ConvertPlaceholders(`
		UPDATE approvals
		SET status = ?, sent_on = ?, acted_on = ?, comments = ?, version = version + 1
		WHERE id = ? AND version = ?`)
	res, err := r.db.ExecContext(ctx, query,
		rec.Status, rec.SentOn, rec.ActedOn, rec.Comments, rec.ID, rec.Version)
	if err != nil {
		return fmt.Errorf("failed to update approval %s: %w", rec.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		if _, getErr := r.GetByID(ctx, rec.ID); getErr == ErrNotFound {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	rec.Version++
	return nil
}
