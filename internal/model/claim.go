package model

// Status tracks a claim's position in the triage lifecycle
type Status string

const (
	StatusUningested    Status = "UNINGESTED"     // Not yet picked up by the workflow
	StatusIngested      Status = "INGESTED"       // Metadata stamped, queued for audit
	StatusAudited       Status = "AUDITED"        // Evidence evaluator verdict recorded
	StatusDrafted       Status = "DRAFTED"        // Dispute draft produced (or skipped)
	StatusFiled         Status = "FILED"          // Terminal: dispute filed
	StatusPendingReview Status = "PENDING_REVIEW" // Terminal: awaiting human authorization
)

// statusRank orders the lifecycle. Transitions must never decrease rank.
var statusRank = map[Status]int{
	StatusUningested:    0,
	StatusIngested:      1,
	StatusAudited:       2,
	StatusDrafted:       3,
	StatusFiled:         4,
	StatusPendingReview: 4, // Both terminal outcomes share the final rank
}

// Rank returns the position of the status in the lifecycle order.
// Unknown statuses rank below UNINGESTED.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// Terminal reports whether the status ends the workflow.
func (s Status) Terminal() bool {
	return s == StatusFiled || s == StatusPendingReview
}

// Draft sentinels. These are written into EmailDraft verbatim so the
// ledger and downstream consumers can distinguish "no draft needed"
// from "drafting degraded".
const (
	DraftSkipped = "N/A"
	DraftFailed  = "DRAFT_FAILED"
)

// DeductionClaim is the unit of work flowing through the triage
// workflow. One workflow run owns exactly one claim end to end; stages
// mutate it only through merged partial updates.
type DeductionClaim struct {
	ClaimID      string  `json:"claim_id"`
	Amount       float64 `json:"amount"`
	Retailer     string  `json:"retailer,omitempty"`
	ContractText string  `json:"contract_text,omitempty"`

	Status    Status `json:"status"`
	AuditDate string `json:"audit_date,omitempty"` // YYYY-MM-DD, stamped at ingestion

	ViolationFound *bool  `json:"violation_found,omitempty"` // Set by the audit stage only
	Evidence       string `json:"evidence,omitempty"`        // Set by the audit stage only
	EmailDraft     string `json:"email_draft,omitempty"`     // Set by the draft stage only

	// HumanApproved is an externally supplied override injected before
	// the act stage runs. Nil means no override.
	HumanApproved *bool `json:"human_approved,omitempty"`
}

// Violation reports the audit verdict, false when the audit has not run.
func (c *DeductionClaim) Violation() bool {
	return c.ViolationFound != nil && *c.ViolationFound
}

// Approved reports the human override, false when absent.
func (c *DeductionClaim) Approved() bool {
	return c.HumanApproved != nil && *c.HumanApproved
}
