package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// MemoryApprovalRepository is an in-memory ApprovalRepository used by tests
// and demo mode. It honors the same optimistic-locking contract as the SQL
// implementation.
type MemoryApprovalRepository struct {
	mu      sync.RWMutex
	records map[string]*models.ApprovalRecord
	// requests is consulted by ListPendingForApprover to fill summaries;
	// optional.
	requests *MemoryRequestRepository
}

// NewMemoryApprovalRepository creates an empty in-memory approval repository.
func NewMemoryApprovalRepository() *MemoryApprovalRepository {
	return &MemoryApprovalRepository{records: make(map[string]*models.ApprovalRecord)}
}

// AttachRequests links a request repository for summary hydration.
func (r *MemoryApprovalRepository) AttachRequests(reqs *MemoryRequestRepository) {
	r.requests = reqs
}

// Create stores a new record.
func (r *MemoryApprovalRepository) Create(ctx context.Context, rec *models.ApprovalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; ok {
		return ErrDuplicate
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

// GetByID returns a copy of the record.
func (r *MemoryApprovalRepository) GetByID(ctx context.Context, id string) (*models.ApprovalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// ListByRequest returns copies ordered by level then approver name.
func (r *MemoryApprovalRepository) ListByRequest(ctx context.Context, requestID string) ([]models.ApprovalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.ApprovalRecord{}
	for _, rec := range r.records {
		if rec.RequestID == requestID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].ApproverName < out[j].ApproverName
	})
	return out, nil
}

// ListPendingForApprover returns sent, unacted records for the approver.
func (r *MemoryApprovalRepository) ListPendingForApprover(ctx context.Context, approverID string) ([]models.ApprovalSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.ApprovalSummary{}
	for _, rec := range r.records {
		if rec.ApproverID != approverID || rec.SentOn == nil || rec.ActedOn != nil {
			continue
		}
		s := models.ApprovalSummary{
			ApprovalID: rec.ID,
			RequestID:  rec.RequestID,
			Level:      rec.Level,
			LevelName:  rec.LevelName,
			Status:     rec.Status,
			SentOn:     rec.SentOn,
		}
		if r.requests != nil {
			if req, err := r.requests.GetByID(ctx, rec.RequestID); err == nil {
				s.RequestSubject = req.Subject
				s.RequesterName = req.RequesterName
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SentOn.Before(*out[j].SentOn)
	})
	return out, nil
}

// ListStalePending returns sent, unacted records activated before the cutoff.
func (r *MemoryApprovalRepository) ListStalePending(ctx context.Context, before time.Time) ([]models.ApprovalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.ApprovalRecord{}
	for _, rec := range r.records {
		if rec.SentOn == nil || rec.ActedOn != nil || !rec.SentOn.Before(before) {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SentOn.Before(*out[j].SentOn)
	})
	return out, nil
}

// Update applies the record under the optimistic version check.
func (r *MemoryApprovalRepository) Update(ctx context.Context, rec *models.ApprovalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[rec.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != rec.Version {
		return ErrVersionConflict
	}
	cp := *rec
	cp.Version = rec.Version + 1
	r.records[rec.ID] = &cp
	rec.Version = cp.Version
	return nil
}

// MemoryRequestRepository is an in-memory RequestRepository.
type MemoryRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*models.Request
}

// NewMemoryRequestRepository creates an empty in-memory request repository.
func NewMemoryRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{requests: make(map[string]*models.Request)}
}

// Create stores a new request.
func (r *MemoryRequestRepository) Create(ctx context.Context, req *models.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; ok {
		return ErrDuplicate
	}
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

// GetByID returns a copy of the request.
func (r *MemoryRequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *req
	return &cp, nil
}

// List returns matching requests, newest first.
func (r *MemoryRequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Request{}
	for _, req := range r.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.RequesterID != "" && req.RequesterID != filter.RequesterID {
			continue
		}
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []models.Request{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Update overwrites the stored request.
func (r *MemoryRequestRepository) Update(ctx context.Context, req *models.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return ErrNotFound
	}
	cp := *req
	cp.UpdatedAt = time.Now().UTC()
	r.requests[req.ID] = &cp
	return nil
}

// SetApprovalStatus updates only the overall approval field.
func (r *MemoryRequestRepository) SetApprovalStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.ApprovalStatus = status
	req.UpdatedAt = time.Now().UTC()
	return nil
}

// SetStatus updates only the lifecycle status.
func (r *MemoryRequestRepository) SetStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now().UTC()
	return nil
}

// MemoryConversationRepository is an in-memory ConversationRepository.
type MemoryConversationRepository struct {
	mu      sync.RWMutex
	entries []models.ConversationEntry
}

// NewMemoryConversationRepository creates an empty in-memory conversation
// repository.
func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{}
}

// Append stores one entry.
func (r *MemoryConversationRepository) Append(ctx context.Context, entry *models.ConversationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// ListByApproval returns one approval's thread ordered by timestamp.
func (r *MemoryConversationRepository) ListByApproval(ctx context.Context, approvalID string) ([]models.ConversationEntry, error) {
	return r.list(func(e *models.ConversationEntry) bool {
		return e.ApprovalID == approvalID && approvalID != ""
	})
}

// ListNotes returns the request-level notes thread.
func (r *MemoryConversationRepository) ListNotes(ctx context.Context, requestID string) ([]models.ConversationEntry, error) {
	return r.list(func(e *models.ConversationEntry) bool {
		return e.RequestID == requestID && e.ApprovalID == ""
	})
}

func (r *MemoryConversationRepository) list(match func(*models.ConversationEntry) bool) ([]models.ConversationEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.ConversationEntry{}
	for i := range r.entries {
		if match(&r.entries[i]) {
			out = append(out, r.entries[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// MemoryHistoryRepository is an in-memory HistoryRepository.
type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	entries []models.HistoryEntry
}

// NewMemoryHistoryRepository creates an empty in-memory history repository.
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{}
}

// Append stores one audit entry.
func (r *MemoryHistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// ListByRequest returns the request's audit log, oldest first.
func (r *MemoryHistoryRepository) ListByRequest(ctx context.Context, requestID string) ([]models.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.HistoryEntry{}
	for i := range r.entries {
		if r.entries[i].RequestID == requestID {
			out = append(out, r.entries[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemoryUserRepository creates an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

// Create stores a new user.
func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return ErrDuplicate
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

// GetByID retrieves one user.
func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByLogin retrieves one user by login name.
func (r *MemoryUserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Login == login })
}

// GetByEmail retrieves one user by email address, case-insensitive.
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (r *MemoryUserRepository) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
