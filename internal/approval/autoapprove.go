package approval

import (
	"context"
	"strings"
	"sync"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/models"
)

// SweepResult aggregates the per-record outcomes of one duplicate-approver
// sweep. Individual failures never abort the sweep; callers surface them as
// one summary.
type SweepResult struct {
	Candidates int
	Approved   []string
	Failed     map[string]error
}

// identityKey returns the duplicate-detection key for a record: email first,
// then user id, then display name, lower-cased. Records with none of the
// three are excluded from duplicate detection.
func identityKey(rec *models.ApprovalRecord) string {
	for _, field := range []string{rec.ApproverEmail, rec.ApproverID, rec.ApproverName} {
		if k := strings.ToLower(strings.TrimSpace(field)); k != "" {
			return k
		}
	}
	return ""
}

// AutoApproveDuplicates approves, on the currently active level, every
// pending record whose approver already approved at a strictly lower level.
// Each auto-approval carries the fixed AutoApproveComment and is attributed
// to the system actor.
//
// Only the immediate next level is touched per pass; rerunning cascades the
// sweep across later levels and is idempotent once no candidates remain.
// Concurrent invocations for the same request are rejected with
// ErrSweepInProgress.
func (e *Engine) AutoApproveDuplicates(ctx context.Context, requestID string) (*SweepResult, error) {
	e.sweepMu.Lock()
	if e.sweeping[requestID] {
		e.sweepMu.Unlock()
		return nil, ErrSweepInProgress
	}
	e.sweeping[requestID] = true
	e.sweepMu.Unlock()
	defer func() {
		e.sweepMu.Lock()
		delete(e.sweeping, requestID)
		e.sweepMu.Unlock()
	}()

	records, err := e.approvals.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// Lowest level at which each identity already approved.
	approvedAt := make(map[string]int)
	for i := range records {
		if NormalizeStatus(records[i].Status) != StatusApproved {
			continue
		}
		key := identityKey(&records[i])
		if key == "" {
			continue
		}
		if lvl, ok := approvedAt[key]; !ok || records[i].Level < lvl {
			approvedAt[key] = records[i].Level
		}
	}

	// The active level is the minimum level still pending approval.
	nextLevel := 0
	for i := range records {
		if NormalizeStatus(records[i].Status) != StatusPending {
			continue
		}
		if nextLevel == 0 || records[i].Level < nextLevel {
			nextLevel = records[i].Level
		}
	}
	result := &SweepResult{Failed: map[string]error{}}
	if nextLevel == 0 {
		return result, nil
	}

	candidates := []string{}
	for i := range records {
		if records[i].Level != nextLevel || NormalizeStatus(records[i].Status) != StatusPending {
			continue
		}
		key := identityKey(&records[i])
		if key == "" {
			continue
		}
		if lvl, ok := approvedAt[key]; ok && lvl < nextLevel {
			candidates = append(candidates, records[i].ID)
		}
	}
	result.Candidates = len(candidates)
	if len(candidates) == 0 {
		return result, nil
	}

	// Candidates target distinct records, so they can run concurrently;
	// the semaphore bounds fan-out against the store.
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, e.sweepConcurrency)
	)
	for _, id := range candidates {
		wg.Add(1)
		sem <- struct{}{}
		go func(approvalID string) {
			defer wg.Done()
			defer func() { <-sem }()
			_, err := e.ApplyAction(ctx, approvalID, ActionApprove, AutoApproveComment, SystemActor)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[approvalID] = err
				return
			}
			result.Approved = append(result.Approved, approvalID)
		}(id)
	}
	wg.Wait()

	observeSweep(len(result.Approved), len(result.Failed))
	if len(result.Failed) > 0 {
		e.logger.Printf("auto-approval sweep for %s: %d approved, %d failed",
			requestID, len(result.Approved), len(result.Failed))
	}
	return result, nil
}
