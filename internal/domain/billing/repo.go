package billing

import "context"

// LedgerRepository pulls raw revenue lines from each source domain. The
// from/to filters are inclusive date bounds; empty strings mean unbounded.
// Implementations return records without buckets; bucketing and rounding
// are the service's job.
type LedgerRepository interface {
	AppointmentRecords(ctx context.Context, from, to string) ([]LedgerRecord, error)
	LabRecords(ctx context.Context, from, to string) ([]LedgerRecord, error)
	RadiologyRecords(ctx context.Context, from, to string) ([]LedgerRecord, error)
	AdmissionRecords(ctx context.Context, from, to string) ([]LedgerRecord, error)
}
