package billing

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/medicareplus/hms/internal/platform/lifecycle"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var typePrefixes = map[string]string{
	TypeAppointment: "APT",
	TypeLab:         "LAB",
	TypeRadiology:   "RAD",
	TypeAdmission:   "ADM",
}

type Service struct {
	ledger LedgerRepository
}

func NewService(ledger LedgerRepository) *Service {
	return &Service{ledger: ledger}
}

// bucketFor partitions a record by status. Collected means the revenue event
// finished (visit completed, order completed, stay discharged); Cancelled
// and No-Show both mean the revenue is written off and share the cancelled
// bucket; everything else is still pending collection.
func bucketFor(status string) string {
	switch lifecycle.Status(status) {
	case lifecycle.StatusCompleted, lifecycle.StatusDischarged:
		return BucketCollected
	case lifecycle.StatusCancelled, lifecycle.StatusNoShow:
		return BucketCancelled
	default:
		return BucketPending
	}
}

// Reconcile merges the four revenue domains into one ledger. The from/to
// bounds are inclusive and apply uniformly to all domains; either may be
// empty. Money is summed raw and rounded only on the way out, so the bucket
// partition holds exactly: total_billed == collected + pending + cancelled.
func (s *Service) Reconcile(ctx context.Context, from, to string) (*Report, error) {
	if from != "" && !dateRe.MatchString(from) {
		return nil, fmt.Errorf("invalid from date %q, expected YYYY-MM-DD", from)
	}
	if to != "" && !dateRe.MatchString(to) {
		return nil, fmt.Errorf("invalid to date %q, expected YYYY-MM-DD", to)
	}
	if from != "" && to != "" && from > to {
		return nil, fmt.Errorf("from date %s is after to date %s", from, to)
	}

	sources := []struct {
		domain string
		fetch  func(context.Context, string, string) ([]LedgerRecord, error)
	}{
		{TypeAppointment, s.ledger.AppointmentRecords},
		{TypeLab, s.ledger.LabRecords},
		{TypeRadiology, s.ledger.RadiologyRecords},
		{TypeAdmission, s.ledger.AdmissionRecords},
	}

	var records []LedgerRecord
	for _, src := range sources {
		recs, err := src.fetch(ctx, from, to)
		if err != nil {
			return nil, err
		}
		// The domain is stamped here, not trusted from the source.
		for i := range recs {
			recs[i].Type = src.domain
		}
		records = append(records, recs...)
	}

	report := &Report{
		From:   from,
		To:     to,
		ByType: map[string]TypeSummary{},
	}
	// raw sums; rounding happens once at the end
	var collected, pending, cancelled float64

	for i := range records {
		rec := &records[i]
		rec.ID = fmt.Sprintf("%s-%d", typePrefixes[rec.Type], rec.RefID)
		rec.Bucket = bucketFor(rec.Status)

		ts := report.ByType[rec.Type]
		ts.Count++
		ts.Billed += rec.Amount
		switch rec.Bucket {
		case BucketCollected:
			collected += rec.Amount
			ts.Collected += rec.Amount
		case BucketCancelled:
			cancelled += rec.Amount
			ts.Cancelled += rec.Amount
		default:
			pending += rec.Amount
			ts.Pending += rec.Amount
		}
		report.ByType[rec.Type] = ts
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].RefID > records[j].RefID
	})

	for i := range records {
		records[i].Amount = round2(records[i].Amount)
	}
	for k, ts := range report.ByType {
		ts.Billed = round2(ts.Billed)
		ts.Collected = round2(ts.Collected)
		ts.Pending = round2(ts.Pending)
		ts.Cancelled = round2(ts.Cancelled)
		report.ByType[k] = ts
	}

	report.Records = records
	report.Collected = round2(collected)
	report.Pending = round2(pending)
	report.Cancelled = round2(cancelled)
	// summed from the rounded buckets so the partition survives rounding
	report.TotalBilled = round2(report.Collected + report.Pending + report.Cancelled)
	return report, nil
}
