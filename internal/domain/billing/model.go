package billing

import "math"

// Record types in the merged ledger.
const (
	TypeAppointment = "appointment"
	TypeLab         = "lab"
	TypeRadiology   = "radiology"
	TypeAdmission   = "admission"
)

// Revenue buckets. Every ledger record lands in exactly one, so the bucket
// totals always partition the billed total.
const (
	BucketCollected = "collected"
	BucketPending   = "pending"
	BucketCancelled = "cancelled"
)

// LedgerRecord is one normalized revenue line. RefID keeps the source row's
// numeric key for ordering; ID carries the domain prefix shown to clients.
type LedgerRecord struct {
	ID          string  `json:"id"`
	RefID       int64   `json:"-"`
	Type        string  `json:"type"`
	PatientName string  `json:"patient_name"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	Amount      float64 `json:"amount"`
	Bucket      string  `json:"bucket"`
}

// TypeSummary is the per-domain slice of the totals.
type TypeSummary struct {
	Count     int     `json:"count"`
	Billed    float64 `json:"billed"`
	Collected float64 `json:"collected"`
	Pending   float64 `json:"pending"`
	Cancelled float64 `json:"cancelled"`
}

// Report is the reconciliation output. All money fields are rounded to two
// decimals; internally the aggregation runs on raw float64 sums.
type Report struct {
	From        string                 `json:"from,omitempty"`
	To          string                 `json:"to,omitempty"`
	TotalBilled float64                `json:"total_billed"`
	Collected   float64                `json:"collected"`
	Pending     float64                `json:"pending"`
	Cancelled   float64                `json:"cancelled"`
	ByType      map[string]TypeSummary `json:"by_type"`
	Records     []LedgerRecord         `json:"records"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
