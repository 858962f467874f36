package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/clawback/internal/checkpoint"
	"github.com/ppiankov/clawback/internal/dispute"
	"github.com/ppiankov/clawback/internal/forensic"
	"github.com/ppiankov/clawback/internal/ledger"
	"github.com/ppiankov/clawback/internal/model"
)

// Outcome classifies how a triage run ended
type Outcome string

const (
	OutcomeFiled         Outcome = "filed"
	OutcomePendingReview Outcome = "pending_review"

	// OutcomeFailed means the run halted with no safe degraded path.
	// The claim's checkpoint is retained so the run can resume from
	// the last completed stage without repeating external calls.
	OutcomeFailed Outcome = "failed"
)

// RunResult is the final disposition of one triage run
type RunResult struct {
	Claim       model.DeductionClaim
	Outcome     Outcome
	FailedStage Stage // Set when Outcome is OutcomeFailed
	Err         error // Cause of the failure, nil otherwise
}

// Engine sequences the four triage stages over one claim: ingest →
// audit → draft → act. Each stage returns a partial update which the
// engine merges into the accumulated claim and checkpoints before
// moving on, so an interrupted run resumes from the last completed
// stage instead of restarting from ingest.
type Engine struct {
	evaluator   forensic.Evaluator
	drafter     dispute.Drafter
	ledger      *ledger.Ledger
	checkpoints checkpoint.Store
	threshold   float64
	verbose     bool
}

// NewEngine creates a triage engine. The checkpoint store may be nil to
// disable resumability.
func NewEngine(cfg *model.Config, evaluator forensic.Evaluator, drafter dispute.Drafter, led *ledger.Ledger, cps checkpoint.Store) *Engine {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = model.RiskThreshold
	}

	return &Engine{
		evaluator:   evaluator,
		drafter:     drafter,
		ledger:      led,
		checkpoints: cps,
		threshold:   threshold,
		verbose:     cfg.Output.Verbose,
	}
}

// Run drives one claim through the workflow to a terminal disposition.
// A nil error with OutcomeFailed means the run halted but is resumable;
// calling Run again with the same claim ID picks up from the
// checkpoint.
func (e *Engine) Run(ctx context.Context, claim model.DeductionClaim) (*RunResult, error) {
	if claim.ClaimID == "" {
		return nil, fmt.Errorf("claim ID is required")
	}
	if claim.Status == "" {
		claim.Status = model.StatusUningested
	}

	cursor := next("")
	if e.checkpoints != nil {
		if rec, ok := e.checkpoints.Get(claim.ClaimID); ok {
			// Resume from the snapshot, carrying over any override
			// injected on this attempt.
			if claim.HumanApproved != nil {
				rec.Claim.HumanApproved = claim.HumanApproved
			}
			claim = rec.Claim
			cursor = next(Stage(rec.Stage))
			e.tracef("--- [RESUME] Claim ID: %s from stage %s ---", claim.ClaimID, cursor)
		}
	}

	for cursor != StageDone {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		update, err := e.runStage(ctx, cursor, &claim)
		if err != nil {
			return &RunResult{
				Claim:       claim,
				Outcome:     OutcomeFailed,
				FailedStage: cursor,
				Err:         err,
			}, nil
		}

		apply(&claim, update)
		e.saveCheckpoint(cursor, claim)
		cursor = next(cursor)
	}

	// Terminal: the checkpoint has served its purpose
	if e.checkpoints != nil {
		_ = e.checkpoints.Delete(claim.ClaimID)
	}

	outcome := OutcomePendingReview
	if claim.Status == model.StatusFiled {
		outcome = OutcomeFiled
	}

	return &RunResult{Claim: claim, Outcome: outcome}, nil
}

// runStage executes one node and returns its partial update
func (e *Engine) runStage(ctx context.Context, stage Stage, claim *model.DeductionClaim) (Update, error) {
	switch stage {
	case StageIngest:
		return e.ingest(claim), nil
	case StageAudit:
		return e.audit(ctx, claim)
	case StageDraft:
		return e.draft(ctx, claim), nil
	case StageAct:
		return e.act(claim)
	default:
		return Update{}, fmt.Errorf("unknown stage: %s", stage)
	}
}

// ingest stamps the claim with lifecycle metadata. Pure; no failure
// conditions.
func (e *Engine) ingest(claim *model.DeductionClaim) Update {
	e.tracef("--- [INGEST] Claim ID: %s ---", claim.ClaimID)
	return Update{
		Status:    model.StatusIngested,
		AuditDate: time.Now().Format("2006-01-02"),
	}
}

// audit runs the forensic evaluation. An evaluator failure has no safe
// default: a false "no violation" here is exactly the revenue loss the
// system exists to prevent, so the error propagates and halts the run.
func (e *Engine) audit(ctx context.Context, claim *model.DeductionClaim) (Update, error) {
	e.tracef("--- [AUDIT] Performing forensic reasoning for %s ---", claim.ClaimID)

	verdict, err := e.evaluator.Evaluate(ctx, *claim)
	if err != nil {
		return Update{}, err
	}

	return Update{
		Status:         model.StatusAudited,
		ViolationFound: &verdict.ViolationFound,
		Evidence:       &verdict.Evidence,
	}, nil
}

// draft prepares the dispute letter. No violation short-circuits to the
// N/A sentinel with no external call; a drafting failure degrades to
// the DRAFT_FAILED sentinel because filing can proceed without a
// polished letter.
func (e *Engine) draft(ctx context.Context, claim *model.DeductionClaim) Update {
	if !claim.Violation() {
		e.tracef("--- [DRAFT] No violation found for %s, skipping draft ---", claim.ClaimID)
		text := model.DraftSkipped
		return Update{Status: model.StatusDrafted, EmailDraft: &text}
	}

	e.tracef("--- [DRAFT] Creating dispute documentation for %s ---", claim.ClaimID)

	text, err := e.drafter.Draft(ctx, claim.ClaimID, claim.Evidence)
	if err != nil {
		if errors.Is(err, dispute.ErrDraftUnavailable) {
			e.tracef("--- [DRAFT] Drafting degraded for %s: %v ---", claim.ClaimID, err)
			failed := model.DraftFailed
			return Update{Status: model.StatusDrafted, EmailDraft: &failed}
		}
		// Unexpected drafter errors get the same degraded path; the
		// claim must never be lost over letter wording.
		e.tracef("--- [DRAFT] Drafting failed for %s: %v ---", claim.ClaimID, err)
		failed := model.DraftFailed
		return Update{Status: model.StatusDrafted, EmailDraft: &failed}
	}

	return Update{Status: model.StatusDrafted, EmailDraft: &text}
}

// act computes the filing decision and appends the disposition to the
// audit ledger, the sole durable effect of a run. The append is retried
// once before the run is declared failed-but-resumable.
func (e *Engine) act(claim *model.DeductionClaim) (Update, error) {
	e.tracef("--- [ACTION] Finalizing transaction for %s ---", claim.ClaimID)

	approved := claim.Approved() || claim.Amount < e.threshold
	status := model.StatusPendingReview
	if approved {
		status = model.StatusFiled
	}

	row := ledger.Row{
		ClaimID:   claim.ClaimID,
		Amount:    claim.Amount,
		Status:    status,
		Evidence:  claim.Evidence,
		AuditDate: claim.AuditDate,
	}

	err := e.ledger.Append(row)
	if err != nil {
		e.tracef("--- [ACTION] Ledger append failed for %s, retrying: %v ---", claim.ClaimID, err)
		err = e.ledger.Append(row)
	}
	if err != nil {
		return Update{}, err
	}

	return Update{Status: status, HumanApproved: &approved}, nil
}

// saveCheckpoint persists the accumulated state after a completed
// stage. Persistence trouble degrades resumability but never fails the
// run itself.
func (e *Engine) saveCheckpoint(completed Stage, claim model.DeductionClaim) {
	if e.checkpoints == nil {
		return
	}
	rec := checkpoint.Record{
		Claim:     claim,
		Stage:     string(completed),
		UpdatedAt: time.Now().UTC(),
	}
	if err := e.checkpoints.Put(claim.ClaimID, rec); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: checkpoint for %s not saved: %v\n", claim.ClaimID, err)
	}
}

func (e *Engine) tracef(format string, args ...interface{}) {
	if e.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
