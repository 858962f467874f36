package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/clawback/internal/model"
)

// Row is one deduction claim from a retailer export
type Row struct {
	ClaimID       string  `json:"claim_id"`
	Date          string  `json:"date"`
	Retailer      string  `json:"retailer"`
	ReasonCode    string  `json:"reason_code"`
	ClaimedAmount float64 `json:"claimed_amount"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
}

// RowError reports a malformed export row. Bad rows are skipped or
// zeroed, never batch-fatal.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// Export is a parsed deduction export
type Export struct {
	Rows   []Row
	Errors []RowError
}

// LoadExport reads a deduction export CSV from disk. Expected columns:
// Claim_ID, Date, Retailer, Reason_Code, Claimed_Amount, Category,
// Description. Retailer portals disagree on column order and sometimes
// pad header names with spaces, so resolution goes through a trimmed
// header map.
func LoadExport(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ReadExport(f)
}

// ReadExport parses a deduction export. The header row is required;
// individual bad rows are collected into Errors and skipped.
func ReadExport(r io.Reader) (*Export, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	headerRec, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty export")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(headerRec))
	for i, name := range headerRec {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols["Claim_ID"]; !ok {
		return nil, fmt.Errorf("export is missing the Claim_ID column")
	}

	export := &Export{}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			export.Errors = append(export.Errors, RowError{Line: line, Err: err})
			continue
		}

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		claimID := field("Claim_ID")
		if claimID == "" {
			export.Errors = append(export.Errors, RowError{Line: line, Err: fmt.Errorf("missing Claim_ID")})
			continue
		}

		export.Rows = append(export.Rows, Row{
			ClaimID:       claimID,
			Date:          field("Date"),
			Retailer:      field("Retailer"),
			ReasonCode:    field("Reason_Code"),
			ClaimedAmount: ParseAmount(field("Claimed_Amount")),
			Category:      field("Category"),
			Description:   field("Description"),
		})
	}

	return export, nil
}

// ParseAmount normalizes a currency-formatted string to a plain
// decimal. "$1,234.56" becomes 1234.56; unparseable or missing values
// coerce to zero rather than rejecting the row.
func ParseAmount(s string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount < 0 {
		return 0
	}
	return amount
}

// Find returns the export row with the given claim ID
func (e *Export) Find(claimID string) (Row, bool) {
	for _, row := range e.Rows {
		if row.ClaimID == claimID {
			return row, true
		}
	}
	return Row{}, false
}

// Claim builds the workflow claim record for an export row. The
// governing contract rule arrives separately (it is not part of the
// retailer export).
func (r Row) Claim(contractText string) model.DeductionClaim {
	return model.DeductionClaim{
		ClaimID:      r.ClaimID,
		Amount:       r.ClaimedAmount,
		Retailer:     r.Retailer,
		ContractText: contractText,
		Status:       model.StatusUningested,
	}
}
