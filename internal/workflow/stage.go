package workflow

import "github.com/ppiankov/clawback/internal/model"

// Stage identifies one node of the triage workflow
type Stage string

const (
	StageIngest Stage = "ingest"
	StageAudit  Stage = "audit"
	StageDraft  Stage = "draft"
	StageAct    Stage = "act"
	StageDone   Stage = "done"
)

// next returns the stage following the completed one. The conditional
// edge after audit lives inside the draft stage itself: a claim with no
// violation short-circuits to the N/A sentinel without an external
// call, so the stage order here stays total.
func next(completed Stage) Stage {
	switch completed {
	case "":
		return StageIngest
	case StageIngest:
		return StageAudit
	case StageAudit:
		return StageDraft
	case StageDraft:
		return StageAct
	default:
		return StageDone
	}
}

// Update is the partial state change produced by one stage. Unset
// fields leave the claim untouched; the engine merges updates
// last-stage-wins per field.
type Update struct {
	Status         model.Status
	AuditDate      string
	ViolationFound *bool
	Evidence       *string
	EmailDraft     *string
	HumanApproved  *bool
}

// apply merges an update into the claim. Status may only move forward
// through the lifecycle; a regressing update is dropped.
func apply(claim *model.DeductionClaim, u Update) {
	if u.Status != "" && u.Status.Rank() >= claim.Status.Rank() {
		claim.Status = u.Status
	}
	if u.AuditDate != "" {
		claim.AuditDate = u.AuditDate
	}
	if u.ViolationFound != nil {
		claim.ViolationFound = u.ViolationFound
	}
	if u.Evidence != nil {
		claim.Evidence = *u.Evidence
	}
	if u.EmailDraft != nil {
		claim.EmailDraft = *u.EmailDraft
	}
	if u.HumanApproved != nil {
		claim.HumanApproved = u.HumanApproved
	}
}
