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

// RequestRepository defines request (ticket) operations.
type RequestRepository interface {
	Create(ctx context.Context, req *models.Request) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error)
	Update(ctx context.Context, req *models.Request) error
	// SetApprovalStatus updates only the overall approval field.
	SetApprovalStatus(ctx context.Context, id, status string) error
	// SetStatus updates only the lifecycle status.
	SetStatus(ctx context.Context, id, status string) error
}

// RequestSQLRepository is the sqlx-backed implementation over the requests
// table.
type RequestSQLRepository struct {
	db *sqlx.DB
}

// NewRequestRepository creates a SQL request repository.
func NewRequestRepository(db *sqlx.DB) *RequestSQLRepository {
	return &RequestSQLRepository{db: db}
}

// Create inserts a new request.
func (r *RequestSQLRepository) Create(ctx context.Context, req *models.Request) error {
	query := database.ConvertPlaceholders(`
		INSERT INTO requests (id, subject, requester_id, requester_name,
			requester_email, template_id, status, priority, approval_status,
			form_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.Subject, req.RequesterID, req.RequesterName,
		req.RequesterEmail, req.TemplateID, req.Status, req.Priority,
		req.ApprovalStatus, []byte(req.FormData), req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// GetByID retrieves one request.
func (r *RequestSQLRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, subject, requester_id, requester_name, requester_email,
			template_id, status, priority, approval_status, form_data,
			created_at, updated_at
		FROM requests WHERE id = ?`)
	var req models.Request
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load request %s: %w", id, err)
	}
	return &req, nil
}

// List returns requests matching the filter, newest first.
func (r *RequestSQLRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	query := `
		SELECT id, subject, requester_id, requester_name, requester_email,
			template_id, status, priority, approval_status, form_data,
			created_at, updated_at
		FROM requests WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.RequesterID != "" {
		query += ` AND requester_id = ?`
		args = append(args, filter.RequesterID)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	reqs := []models.Request{}
	if err := r.db.SelectContext(ctx, &reqs, database.ConvertPlaceholders(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

// Update persists mutable request fields.
func (r *RequestSQLRepository) Update(ctx context.Context, req *models.Request) error {
	req.UpdatedAt = time.Now().UTC()
	query := database.ConvertPlaceholders(`
		UPDATE requests
		SET subject = ?, status = ?, priority = ?, approval_status = ?,
			form_data = ?, updated_at = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		req.Subject, req.Status, req.Priority, req.ApprovalStatus,
		[]byte(req.FormData), req.UpdatedAt, req.ID)
	if err != nil {
		return fmt.Errorf("failed to update request %s: %w", req.ID, err)
	}
	return requireRow(res, req.ID)
}

// SetApprovalStatus updates only the overall approval field.
func (r *RequestSQLRepository) SetApprovalStatus(ctx context.Context, id, status string) error {
	query := database.ConvertPlaceholders(`
		UPDATE requests SET approval_status = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set approval status on %s: %w", id, err)
	}
	return requireRow(res, id)
}

// SetStatus updates only the lifecycle status.
func (r *RequestSQLRepository) SetStatus(ctx context.Context, id, status string) error {
	query := database.ConvertPlaceholders(`
		UPDATE requests SET status = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set status on %s: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
