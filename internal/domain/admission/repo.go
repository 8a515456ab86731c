package admission

import "context"

type AdmissionRepository interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, id int64) (*Admission, error)
	Update(ctx context.Context, a *Admission) error
	// Discharge closes the stay in a single statement; returns pgx.ErrNoRows
	// when the admission does not exist.
	Discharge(ctx context.Context, id int64, dischargeDate string) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Admission, int, error)
}
