package worker

import (
	"context"

	"github.com/ppiankov/clawback/internal/model"
	"github.com/ppiankov/clawback/internal/workflow"
)

// Runner defines the interface for running one claim to disposition
type Runner interface {
	Run(ctx context.Context, claim model.DeductionClaim) (*workflow.RunResult, error)
}

// TriageJob drives a single claim through the workflow
type TriageJob struct {
	Claim  model.DeductionClaim
	Runner Runner
}

// Execute executes the triage job
func (j *TriageJob) Execute(ctx context.Context) Result {
	result, err := j.Runner.Run(ctx, j.Claim)
	return &TriageResult{
		ClaimID: j.Claim.ClaimID,
		Result:  result,
		Error:   err,
	}
}

// TriageResult is the outcome of one claim's run within a batch
type TriageResult struct {
	ClaimID string
	Result  *workflow.RunResult
	Error   error
}

// GetError returns the error from the triage result
func (r *TriageResult) GetError() error {
	return r.Error
}

// BatchProcessor triages many independent claims concurrently. Each
// claim gets its own isolated workflow run; the only shared resource
// is the audit ledger, which serializes its own appends.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// Process runs every claim through the workflow and collects results
func (b *BatchProcessor) Process(ctx context.Context, claims []model.DeductionClaim) []*TriageResult {
	if len(claims) == 0 {
		return []*TriageResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, claim := range claims {
		pool.Submit(&TriageJob{Claim: claim, Runner: b.runner})
	}

	var results []*TriageResult
	for _, res := range pool.Wait() {
		if tr, ok := res.(*TriageResult); ok {
			results = append(results, tr)
		}
	}

	return results
}
