package reporting

import "context"

// StatsRepository computes the dashboard aggregates in SQL. doctorID narrows
// the appointment counts to one doctor; zero means hospital-wide.
type StatsRepository interface {
	EntityTotals(ctx context.Context) (patients, doctors, departments int, err error)
	AppointmentCounts(ctx context.Context, doctorID int64, today string) (*DashboardStats, error)
	AppointmentsByDay(ctx context.Context, doctorID int64, from, to string) ([]DayCount, error)
}
