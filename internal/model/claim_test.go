package model

import "testing"

func TestStatus_RankOrdering(t *testing.T) {
	order := []Status{StatusUningested, StatusIngested, StatusAudited, StatusDrafted, StatusFiled}

	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Errorf("Expected %s to rank above %s", order[i], order[i-1])
		}
	}

	if StatusFiled.Rank() != StatusPendingReview.Rank() {
		t.Errorf("Expected FILED and PENDING_REVIEW to share the terminal rank, got %d and %d",
			StatusFiled.Rank(), StatusPendingReview.Rank())
	}

	if Status("BOGUS").Rank() != -1 {
		t.Errorf("Expected unknown status to rank -1, got %d", Status("BOGUS").Rank())
	}
}

func TestStatus_Terminal(t *testing.T) {
	terminal := []Status{StatusFiled, StatusPendingReview}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("Expected %s to be terminal", s)
		}
	}

	nonTerminal := []Status{StatusUningested, StatusIngested, StatusAudited, StatusDrafted}
	for _, s := range nonTerminal {
		if s.Terminal() {
			t.Errorf("Expected %s to not be terminal", s)
		}
	}
}

func TestDeductionClaim_Violation(t *testing.T) {
	claim := DeductionClaim{ClaimID: "CLM-1"}
	if claim.Violation() {
		t.Error("Expected no violation before audit")
	}

	v := false
	claim.ViolationFound = &v
	if claim.Violation() {
		t.Error("Expected no violation for false verdict")
	}

	v2 := true
	claim.ViolationFound = &v2
	if !claim.Violation() {
		t.Error("Expected violation for true verdict")
	}
}

func TestDeductionClaim_Approved(t *testing.T) {
	claim := DeductionClaim{ClaimID: "CLM-1"}
	if claim.Approved() {
		t.Error("Expected no approval when override is absent")
	}

	approved := true
	claim.HumanApproved = &approved
	if !claim.Approved() {
		t.Error("Expected approval when override is set")
	}
}
