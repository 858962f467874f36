package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/ppiankov/clawback/internal/model"
)

// ErrWrite signals a failed ledger append. The ledger is the only
// durable record of a claim's disposition, so a run is not complete
// until the append has succeeded.
var ErrWrite = errors.New("ledger write failed")

// EvidenceLimit caps the evidence column so rows stay scannable
const EvidenceLimit = 100

// header is written exactly once, when the file is created
var header = []string{"Claim_ID", "Amount", "Status", "Evidence", "Audit_Date"}

// Row is one claim disposition in the audit ledger
type Row struct {
	ClaimID   string
	Amount    float64
	Status    model.Status
	Evidence  string
	AuditDate string
}

// Ledger is an append-only CSV store of claim dispositions. Appends are
// serialized and each row is written in a single syscall so concurrent
// runs never interleave mid-row.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// New creates a ledger writing to the given CSV path. The file is not
// touched until the first append.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the ledger file path
func (l *Ledger) Path() string {
	return l.path
}

// Append writes one disposition row. The append is idempotent: if an
// identical row for the same claim is already present the call is a
// no-op, which makes replaying the act stage after a crash safe.
func (l *Ledger) Append(row Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	row.Evidence = Truncate(row.Evidence, EvidenceLimit)
	if row.Evidence == "" {
		row.Evidence = "N/A"
	}

	existing, err := l.readLocked()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	// Dedupe on the serialized form: amounts are stored at two decimal
	// places, so an in-memory value like 10.999 must round through the
	// same formatting to match the row it wrote last time.
	rec := record(row)
	for _, r := range existing {
		if slices.Equal(record(r), rec) {
			return nil
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if len(existing) == 0 && err != nil { // File does not exist yet
		if werr := w.Write(header); werr != nil {
			return fmt.Errorf("%w: %v", ErrWrite, werr)
		}
	}
	if werr := w.Write(rec); werr != nil {
		return fmt.Errorf("%w: %v", ErrWrite, werr)
	}
	w.Flush()
	if werr := w.Error(); werr != nil {
		return fmt.Errorf("%w: %v", ErrWrite, werr)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	defer func() { _ = f.Close() }()

	// One Write call for the whole row keeps the append atomic with
	// respect to concurrent writers on the same file.
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return nil
}

// Rows reads back every disposition in the ledger
func (l *Ledger) Rows() ([]Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.readLocked()
	if os.IsNotExist(err) {
		return nil, nil
	}
	return rows, err
}

func (l *Ledger) readLocked() ([]Row, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows []Row
	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == header[0] {
				continue
			}
		}
		if len(rec) < len(header) {
			continue
		}
		amount, _ := strconv.ParseFloat(rec[1], 64)
		rows = append(rows, Row{
			ClaimID:   rec[0],
			Amount:    amount,
			Status:    model.Status(rec[2]),
			Evidence:  rec[3],
			AuditDate: rec[4],
		})
	}

	return rows, nil
}

// record serializes a row into CSV fields
func record(row Row) []string {
	return []string{
		row.ClaimID,
		strconv.FormatFloat(row.Amount, 'f', 2, 64),
		string(row.Status),
		row.Evidence,
		row.AuditDate,
	}
}

// Truncate caps s at limit bytes without splitting a UTF-8 rune
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
