package ancillary

import "context"

type LabTestRepository interface {
	Create(ctx context.Context, t *LabTest) error
	GetByID(ctx context.Context, id int64) (*LabTest, error)
	Update(ctx context.Context, t *LabTest) error
	// Deactivate soft-deletes the catalog entry.
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*LabTest, int, error)
}

type RadiologyServiceRepository interface {
	Create(ctx context.Context, s *RadiologyService) error
	GetByID(ctx context.Context, id int64) (*RadiologyService, error)
	Update(ctx context.Context, s *RadiologyService) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*RadiologyService, int, error)
}

type LabBookingRepository interface {
	Create(ctx context.Context, b *LabBooking) error
	GetByID(ctx context.Context, id int64) (*LabBooking, error)
	// UpdateStatus persists a status change and, when amount is non-nil, the
	// billed amount alongside it.
	UpdateStatus(ctx context.Context, id int64, status string, amount *float64) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*LabBooking, int, error)
}

type RadiologyBookingRepository interface {
	Create(ctx context.Context, b *RadiologyBooking) error
	GetByID(ctx context.Context, id int64) (*RadiologyBooking, error)
	UpdateStatus(ctx context.Context, id int64, status string, amount *float64) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*RadiologyBooking, int, error)
}
