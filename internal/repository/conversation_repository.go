package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/database"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// ConversationRepository defines conversation thread operations. Entries are
// append-only; there is no update or delete.
type ConversationRepository interface {
	Append(ctx context.Context, entry *models.ConversationEntry) error
	// ListByApproval returns the thread of one approval record, oldest first.
	ListByApproval(ctx context.Context, approvalID string) ([]models.ConversationEntry, error)
	// ListNotes returns the request-level notes thread (entries with no
	// approval id), oldest first.
	ListNotes(ctx context.Context, requestID string) ([]models.ConversationEntry, error)
}

// ConversationSQLRepository is the sqlx-backed implementation.
type ConversationSQLRepository struct {
	db *sqlx.DB
}

// NewConversationRepository creates a SQL conversation repository.
func NewConversationRepository(db *sqlx.DB) *ConversationSQLRepository {
	return &ConversationSQLRepository{db: db}
}

// Append stores one entry and its attachment references.
func (r *ConversationSQLRepository) Append(ctx context.Context, entry *models.ConversationEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query := database.ConvertPlaceholders(`
		INSERT INTO conversations (id, request_id, approval_id, entry_type, author, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err = tx.ExecContext(ctx, query,
		entry.ID, entry.RequestID, entry.ApprovalID, entry.Type, entry.Author,
		entry.Message, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert conversation entry: %w", err)
	}

	attQuery := database.ConvertPlaceholders(`
		INSERT INTO conversation_attachments (id, entry_id, filename, size)
		VALUES (?, ?, ?, ?)`)
	for _, att := range entry.Attachments {
		if _, err = tx.ExecContext(ctx, attQuery, att.ID, entry.ID, att.Filename, att.Size); err != nil {
			return fmt.Errorf("failed to insert attachment: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit conversation entry: %w", err)
	}
	return nil
}

// ListByApproval returns one approval's thread ordered by timestamp.
func (r *ConversationSQLRepository) ListByApproval(ctx context.Context, approvalID string) ([]models.ConversationEntry, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, request_id, approval_id, entry_type, author, message, created_at
		FROM conversations WHERE approval_id = ?
		ORDER BY created_at, id`)
	return r.listEntries(ctx, query, approvalID)
}

// ListNotes returns the request's general notes thread.
func (r *ConversationSQLRepository) ListNotes(ctx context.Context, requestID string) ([]models.ConversationEntry, error) {
	query := database.ConvertPlaceholders(`
		SELECT id, request_id, approval_id, entry_type, author, message, created_at
		FROM conversations WHERE request_id = ? AND approval_id = ''
		ORDER BY created_at, id`)
	return r.listEntries(ctx, query, requestID)
}

func (r *ConversationSQLRepository) listEntries(ctx context.Context, query string, arg any) ([]models.ConversationEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	entries := []models.ConversationEntry{}
	for rows.Next() {
		var e models.ConversationEntry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.ApprovalID, &e.Type,
			&e.Author, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadAttachments(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ConversationSQLRepository) loadAttachments(ctx context.Context, entries []models.ConversationEntry) error {
	for i := range entries {
		query := database.ConvertPlaceholders(`
			SELECT id, entry_id, filename, size
			FROM conversation_attachments WHERE entry_id = ?
			ORDER BY filename`)
		atts := []models.ConversationAttachment{}
		if err := r.db.SelectContext(ctx, &atts, query, entries[i].ID); err != nil {
			return fmt.Errorf("failed to load attachments: %w", err)
		}
		if len(atts) > 0 {
			entries[i].Attachments = atts
		}
	}
	return nil
}
