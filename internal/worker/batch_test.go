package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ppiankov/clawback/internal/model"
	"github.com/ppiankov/clawback/internal/workflow"
)

// stubRunner records which claims it ran and returns scripted outcomes
type stubRunner struct {
	mu       sync.Mutex
	ran      map[string]int
	failID   string
	pendings map[string]bool
}

func newStubRunner() *stubRunner {
	return &stubRunner{ran: make(map[string]int), pendings: make(map[string]bool)}
}

func (r *stubRunner) Run(_ context.Context, claim model.DeductionClaim) (*workflow.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ran[claim.ClaimID]++
	if claim.ClaimID == r.failID {
		return nil, errors.New("run blew up")
	}

	outcome := workflow.OutcomeFiled
	status := model.StatusFiled
	if r.pendings[claim.ClaimID] {
		outcome = workflow.OutcomePendingReview
		status = model.StatusPendingReview
	}

	claim.Status = status
	return &workflow.RunResult{Claim: claim, Outcome: outcome}, nil
}

func TestBatchProcessor_ProcessesAllClaims(t *testing.T) {
	runner := newStubRunner()
	runner.pendings["CLM-2"] = true

	claims := []model.DeductionClaim{
		{ClaimID: "CLM-1", Amount: 100},
		{ClaimID: "CLM-2", Amount: 1200},
		{ClaimID: "CLM-3", Amount: 50},
	}

	processor := NewBatchProcessor(runner, 2)
	results := processor.Process(context.Background(), claims)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	outcomes := make(map[string]workflow.Outcome)
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("Unexpected error for %s: %v", res.ClaimID, res.Error)
			continue
		}
		outcomes[res.ClaimID] = res.Result.Outcome
	}

	if outcomes["CLM-1"] != workflow.OutcomeFiled {
		t.Errorf("Expected CLM-1 filed, got %s", outcomes["CLM-1"])
	}
	if outcomes["CLM-2"] != workflow.OutcomePendingReview {
		t.Errorf("Expected CLM-2 pending review, got %s", outcomes["CLM-2"])
	}

	for id, count := range runner.ran {
		if count != 1 {
			t.Errorf("Expected %s to run once, ran %d times", id, count)
		}
	}
}

func TestBatchProcessor_RunErrorsDoNotAbortBatch(t *testing.T) {
	runner := newStubRunner()
	runner.failID = "CLM-2"

	claims := []model.DeductionClaim{
		{ClaimID: "CLM-1"},
		{ClaimID: "CLM-2"},
		{ClaimID: "CLM-3"},
	}

	processor := NewBatchProcessor(runner, 3)
	results := processor.Process(context.Background(), claims)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	failed := 0
	for _, res := range results {
		if res.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("Expected 1 failure, got %d", failed)
	}
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	processor := NewBatchProcessor(newStubRunner(), 2)
	results := processor.Process(context.Background(), nil)

	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}
