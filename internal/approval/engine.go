package approval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/repository"
)

// Action is an approver decision applied to one approval record.
type Action string

const (
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionClarify     Action = "clarification"
	ActionAcknowledge Action = "acknowledge"
)

// ParseAction maps wire tokens onto Actions. "clarify" and
// "request-clarification" are accepted aliases used by older clients.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approve", "approved":
		return ActionApprove, nil
	case "reject", "rejected":
		return ActionReject, nil
	case "clarification", "clarify", "request-clarification", "for-clarification":
		return ActionClarify, nil
	case "acknowledge", "ack":
		return ActionAcknowledge, nil
	default:
		return "", fmt.Errorf("unknown approval action %q", raw)
	}
}

// AutoApproveComment is the fixed system comment written by the
// duplicate-approver sweep.
const AutoApproveComment = "Auto approved by System since the approver has already approved in one of the previous levels."

// Engine errors.
var (
	// ErrInvalidTransition is returned when an action targets a record
	// already in a terminal state.
	ErrInvalidTransition = errors.New("approval record is already decided")

	// ErrCommentRequired is returned when reject or clarification arrives
	// without a comment.
	ErrCommentRequired = errors.New("a comment is required for this action")

	// ErrSweepInProgress is returned when a duplicate-approver sweep is
	// already running for the request.
	ErrSweepInProgress = errors.New("auto-approval sweep already in progress")
)

// Actor identifies who performed an action.
type Actor struct {
	ID   string
	Name string
	Type string
}

// SystemActor is used for engine-initiated actions such as auto-approval.
var SystemActor = Actor{ID: "system", Name: "System", Type: models.ActorTypeSystem}

// Notifier dispatches out-of-band notifications for workflow events. All
// calls are best-effort: the engine logs failures and never fails an action
// because a notification could not be sent.
type Notifier interface {
	ApprovalRequested(ctx context.Context, req *models.Request, records []models.ApprovalRecord)
	ClarificationRequested(ctx context.Context, req *models.Request, rec *models.ApprovalRecord, question string)
	RequestApproved(ctx context.Context, req *models.Request)
	RequestRejected(ctx context.Context, req *models.Request, rec *models.ApprovalRecord)
}

// ChainSource resolves the approval chain definition for a request, used to
// create the next level's records when they do not exist yet.
type ChainSource interface {
	ChainFor(ctx context.Context, req *models.Request) ([]models.ApprovalLevelDef, error)
}

// Engine applies approver actions, activates levels, sweeps duplicate
// approvers and records history. It holds no per-request state beyond the
// sweep in-flight guard.
type Engine struct {
	approvals     repository.ApprovalRepository
	requests      repository.RequestRepository
	conversations repository.ConversationRepository
	history       repository.HistoryRepository
	chains        ChainSource
	notifier      Notifier
	logger        *log.Logger
	now           func() time.Time

	sweepMu          sync.Mutex
	sweeping         map[string]bool
	sweepConcurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier installs a notification dispatcher.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithChainSource installs the approval chain resolver.
func WithChainSource(c ChainSource) Option {
	return func(e *Engine) { e.chains = c }
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSweepConcurrency bounds the auto-approval fan-out.
func WithSweepConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sweepConcurrency = n
		}
	}
}

// NewEngine creates a workflow engine over the given repositories.
func NewEngine(
	approvals repository.ApprovalRepository,
	requests repository.RequestRepository,
	conversations repository.ConversationRepository,
	history repository.HistoryRepository,
	opts ...Option,
) *Engine {
	e := &Engine{
		approvals:        approvals,
		requests:         requests,
		conversations:    conversations,
		history:          history,
		logger:           log.New(os.Stdout, "approval: ", log.LstdFlags),
		now:              time.Now,
		sweeping:         make(map[string]bool),
		sweepConcurrency: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitializeChain creates the level-1 approval records for a freshly created
// request and stamps them sent. Levels beyond the first are created when
// their predecessor completes. A request whose chain is empty needs no
// approval and is marked approved outright.
func (e *Engine) InitializeChain(ctx context.Context, req *models.Request, chain []models.ApprovalLevelDef) error {
	if len(chain) == 0 {
		return e.requests.SetApprovalStatus(ctx, req.ID, StatusApproved.String())
	}

	first := chain[0]
	for i := range chain {
		if chain[i].Level < first.Level {
			first = chain[i]
		}
	}

	created, err := e.createLevelRecords(ctx, req.ID, first)
	if err != nil {
		return err
	}
	e.recordLevelActivation(ctx, req.ID, first.LevelName, created)
	if e.notifier != nil {
		e.notifier.ApprovalRequested(ctx, req, created)
	}
	return nil
}

// ApplyAction validates and applies one approver action to one approval
// record, then runs the resulting workflow effects (level activation, overall
// approval, notifications, history). The returned record reflects the new
// state.
func (e *Engine) ApplyAction(ctx context.Context, approvalID string, action Action, comments string, actor Actor) (*models.ApprovalRecord, error) {
	rec, err := e.approvals.GetByID(ctx, approvalID)
	if err != nil {
		return nil, err
	}

	status := NormalizeStatus(rec.Status)
	comments = strings.TrimSpace(comments)
	now := e.now().UTC()

	switch action {
	case ActionApprove:
		if status.Terminal() {
			observeAction(action, "invalid")
			return nil, fmt.Errorf("%w: cannot approve a record in state %q", ErrInvalidTransition, status)
		}
		if comments == "" {
			comments = systemComment("approved", actor, now)
		}
		rec.Status = StatusApproved.String()
		rec.ActedOn = &now
		rec.Comments = &comments

	case ActionReject:
		if status.Terminal() {
			observeAction(action, "invalid")
			return nil, fmt.Errorf("%w: cannot reject a record in state %q", ErrInvalidTransition, status)
		}
		if comments == "" {
			observeAction(action, "invalid")
			return nil, fmt.Errorf("%w: rejection requires a reason", ErrCommentRequired)
		}
		rec.Status = StatusRejected.String()
		rec.ActedOn = &now
		rec.Comments = &comments

	case ActionClarify:
		if status.Terminal() {
			observeAction(action, "invalid")
			return nil, fmt.Errorf("%w: cannot request clarification on a record in state %q", ErrInvalidTransition, status)
		}
		if comments == "" {
			observeAction(action, "invalid")
			return nil, fmt.Errorf("%w: clarification requires a question", ErrCommentRequired)
		}
		rec.Status = StatusForClarification.String()
		rec.ActedOn = &now
		rec.Comments = &comments

	case ActionAcknowledge:
		// Acknowledge clears a record from the approver's pending list after
		// the request was rejected elsewhere or cancelled. It never changes
		// the outcome.
		if status.Terminal() {
			observeAction(action, "invalid")
			return nil, fmt.Errorf("%w: record already decided", ErrInvalidTransition)
		}
		if comments == "" {
			comments = systemComment("acknowledged", actor, now)
		}
		rec.ActedOn = &now
		rec.Comments = &comments

	default:
		return nil, fmt.Errorf("unknown approval action %q", action)
	}

	if err := e.approvals.Update(ctx, rec); err != nil {
		observeAction(action, "conflict")
		return nil, err
	}
	observeAction(action, "ok")

	if err := e.afterAction(ctx, rec, action, comments, actor); err != nil {
		// The record mutation is committed; effects are logged but do not
		// roll it back. The next read derives consistent state regardless.
		e.logger.Printf("post-action effects for %s failed: %v", rec.ID, err)
	}
	return rec, nil
}

func (e *Engine) afterAction(ctx context.Context, rec *models.ApprovalRecord, action Action, comments string, actor Actor) error {
	switch action {
	case ActionApprove:
		e.appendHistory(ctx, rec.RequestID, models.HistoryActionApproved, actor,
			encodeDetails(rec.LevelName, rec.ApproverName))
		return e.advanceAfterApproval(ctx, rec)

	case ActionReject:
		e.appendHistory(ctx, rec.RequestID, models.HistoryActionRejected, actor,
			encodeDetails(rec.LevelName, rec.ApproverName, comments))
		req, err := e.requests.GetByID(ctx, rec.RequestID)
		if err != nil {
			return err
		}
		if e.notifier != nil {
			e.notifier.RequestRejected(ctx, req, rec)
		}
		return nil

	case ActionClarify:
		entry := &models.ConversationEntry{
			ID:         uuid.NewString(),
			RequestID:  rec.RequestID,
			ApprovalID: rec.ID,
			Type:       models.EntryTypeApprover,
			Author:     actor.Name,
			Message:    comments,
			CreatedAt:  e.now().UTC(),
		}
		if err := e.conversations.Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to append clarification message: %w", err)
		}
		e.appendHistory(ctx, rec.RequestID, models.HistoryActionClarification, actor,
			encodeDetails(rec.LevelName, rec.ApproverName))
		req, err := e.requests.GetByID(ctx, rec.RequestID)
		if err != nil {
			return err
		}
		if e.notifier != nil {
			e.notifier.ClarificationRequested(ctx, req, rec, comments)
		}
		return nil

	case ActionAcknowledge:
		e.appendHistory(ctx, rec.RequestID, models.HistoryActionAcknowledged, actor,
			encodeDetails(rec.LevelName, rec.ApproverName))
		return nil
	}
	return nil
}

// advanceAfterApproval activates the next level once the acted-on level has
// fully approved, or finalizes the request when it was the last level. The
// routine is idempotent: re-activating an already active level re-sends
// nothing and creates no duplicate records.
func (e *Engine) advanceAfterApproval(ctx context.Context, rec *models.ApprovalRecord) error {
	records, err := e.approvals.ListByRequest(ctx, rec.RequestID)
	if err != nil {
		return err
	}
	if Rejected(records) {
		// A rejection anywhere freezes the workflow; nothing advances.
		return nil
	}
	if !LevelComplete(records, rec.Level) {
		return nil
	}

	req, err := e.requests.GetByID(ctx, rec.RequestID)
	if err != nil {
		return err
	}

	// Next level already instantiated: stamp unsent records and stop.
	if next := nextExistingLevel(records, rec.Level); next > 0 {
		return e.activateExistingLevel(ctx, req, records, next)
	}

	// Otherwise consult the chain definition for a level to instantiate.
	if e.chains != nil {
		chain, err := e.chains.ChainFor(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to resolve approval chain: %w", err)
		}
		if def := nextDefinedLevel(chain, rec.Level); def != nil {
			created, err := e.createLevelRecords(ctx, req.ID, *def)
			if err != nil {
				return err
			}
			e.recordLevelActivation(ctx, req.ID, def.LevelName, created)
			if e.notifier != nil {
				e.notifier.ApprovalRequested(ctx, req, created)
			}
			return nil
		}
	}

	// Last level done: the request as a whole is approved.
	if err := e.requests.SetApprovalStatus(ctx, req.ID, StatusApproved.String()); err != nil {
		return err
	}
	e.appendHistory(ctx, req.ID, models.HistoryActionOverallApproved, SystemActor,
		encodeDetails(rec.LevelName))
	req.ApprovalStatus = StatusApproved.String()
	if e.notifier != nil {
		e.notifier.RequestApproved(ctx, req)
	}
	return nil
}

func (e *Engine) activateExistingLevel(ctx context.Context, req *models.Request, records []models.ApprovalRecord, level int) error {
	activated := []models.ApprovalRecord{}
	now := e.now().UTC()
	for i := range records {
		if records[i].Level != level || records[i].SentOn != nil {
			continue
		}
		records[i].SentOn = &now
		if err := e.approvals.Update(ctx, &records[i]); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				// Another caller activated concurrently; already sent.
				continue
			}
			return err
		}
		activated = append(activated, records[i])
	}
	if len(activated) == 0 {
		return nil
	}
	e.recordLevelActivation(ctx, req.ID, activated[0].LevelName, activated)
	if e.notifier != nil {
		e.notifier.ApprovalRequested(ctx, req, activated)
	}
	return nil
}

func (e *Engine) createLevelRecords(ctx context.Context, requestID string, def models.ApprovalLevelDef) ([]models.ApprovalRecord, error) {
	now := e.now().UTC()
	created := make([]models.ApprovalRecord, 0, len(def.Approvers))
	for _, approver := range def.Approvers {
		rec := models.ApprovalRecord{
			ID:            uuid.NewString(),
			RequestID:     requestID,
			Level:         def.Level,
			LevelName:     def.LevelName,
			ApproverID:    approver.ID,
			ApproverEmail: approver.Email,
			ApproverName:  approver.Name,
			Status:        StatusPending.String(),
			SentOn:        &now,
		}
		if err := e.approvals.Create(ctx, &rec); err != nil {
			return nil, fmt.Errorf("failed to create level %d record: %w", def.Level, err)
		}
		created = append(created, rec)
	}
	return created, nil
}

func (e *Engine) recordLevelActivation(ctx context.Context, requestID, levelName string, records []models.ApprovalRecord) {
	names := make([]string, 0, len(records))
	for i := range records {
		names = append(names, records[i].ApproverName)
	}
	e.appendHistory(ctx, requestID, models.HistoryActionLevelActivated, SystemActor,
		encodeDetails(levelName, strings.Join(names, ", ")))
}

func (e *Engine) appendHistory(ctx context.Context, requestID, action string, actor Actor, details string) {
	entry := &models.HistoryEntry{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Action:    action,
		Actor:     actor.Name,
		ActorType: actor.Type,
		Details:   details,
		CreatedAt: e.now().UTC(),
	}
	if err := e.history.Append(ctx, entry); err != nil {
		e.logger.Printf("failed to append history %s for %s: %v", action, requestID, err)
	}
}

// encodeDetails joins structured history parts with the legacy
// double-percent delimiter decoded by the history package.
func encodeDetails(parts ...string) string {
	return strings.Join(parts, "%%")
}

func systemComment(verb string, actor Actor, at time.Time) string {
	return fmt.Sprintf("Request %s by %s on %s", verb, actor.Name, at.Format("Jan 2, 2006 3:04 PM"))
}

func nextExistingLevel(records []models.ApprovalRecord, after int) int {
	next := 0
	for i := range records {
		if records[i].Level <= after {
			continue
		}
		if next == 0 || records[i].Level < next {
			next = records[i].Level
		}
	}
	return next
}

func nextDefinedLevel(chain []models.ApprovalLevelDef, after int) *models.ApprovalLevelDef {
	var next *models.ApprovalLevelDef
	for i := range chain {
		if chain[i].Level <= after {
			continue
		}
		if next == nil || chain[i].Level < next.Level {
			next = &chain[i]
		}
	}
	return next
}
