package workflow

import (
	"testing"

	"github.com/ppiankov/clawback/internal/model"
)

func TestNext_StageOrder(t *testing.T) {
	order := []Stage{StageIngest, StageAudit, StageDraft, StageAct, StageDone}

	cursor := next("")
	for _, want := range order {
		if cursor != want {
			t.Fatalf("Expected stage %s, got %s", want, cursor)
		}
		cursor = next(cursor)
	}
}

func TestApply_MergesPartialUpdate(t *testing.T) {
	claim := model.DeductionClaim{
		ClaimID:   "CLM-1",
		Status:    model.StatusIngested,
		AuditDate: "2026-08-31",
	}

	violation := true
	evidence := "late delivery"
	apply(&claim, Update{
		Status:         model.StatusAudited,
		ViolationFound: &violation,
		Evidence:       &evidence,
	})

	if claim.Status != model.StatusAudited {
		t.Errorf("Expected status AUDITED, got %s", claim.Status)
	}
	if !claim.Violation() {
		t.Error("Expected violation to be merged")
	}
	if claim.Evidence != "late delivery" {
		t.Errorf("Expected evidence merged, got %q", claim.Evidence)
	}
	// Fields absent from the update stay untouched
	if claim.AuditDate != "2026-08-31" {
		t.Errorf("Expected audit date preserved, got %q", claim.AuditDate)
	}
}

func TestApply_StatusNeverRegresses(t *testing.T) {
	claim := model.DeductionClaim{ClaimID: "CLM-1", Status: model.StatusDrafted}

	apply(&claim, Update{Status: model.StatusIngested})

	if claim.Status != model.StatusDrafted {
		t.Errorf("Expected regressing status update to be dropped, got %s", claim.Status)
	}
}

func TestApply_LaterStageWinsPerField(t *testing.T) {
	claim := model.DeductionClaim{ClaimID: "CLM-1", Status: model.StatusUningested}

	draft1 := "first"
	apply(&claim, Update{EmailDraft: &draft1})
	draft2 := "second"
	apply(&claim, Update{EmailDraft: &draft2})

	if claim.EmailDraft != "second" {
		t.Errorf("Expected last update to win, got %q", claim.EmailDraft)
	}
}
