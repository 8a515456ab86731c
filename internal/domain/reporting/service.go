package reporting

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type Service struct {
	stats StatsRepository
	now   func() time.Time
}

func NewService(stats StatsRepository) *Service {
	return &Service{stats: stats, now: time.Now}
}

// Dashboard assembles the landing page stats. A non-zero doctorID narrows
// the appointment counts; entity totals are always hospital-wide.
func (s *Service) Dashboard(ctx context.Context, doctorID int64) (*DashboardStats, error) {
	today := s.now().Format("2006-01-02")
	stats, err := s.stats.AppointmentCounts(ctx, doctorID, today)
	if err != nil {
		return nil, err
	}
	stats.TotalPatients, stats.TotalDoctors, stats.TotalDepartments, err = s.stats.EntityTotals(ctx)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// AppointmentsByDay returns the chart series for an inclusive date range.
// The range defaults to the trailing 30 days.
func (s *Service) AppointmentsByDay(ctx context.Context, doctorID int64, from, to string) ([]DayCount, error) {
	if to == "" {
		to = s.now().Format("2006-01-02")
	}
	if from == "" {
		from = s.now().AddDate(0, 0, -30).Format("2006-01-02")
	}
	if !dateRe.MatchString(from) || !dateRe.MatchString(to) {
		return nil, fmt.Errorf("invalid date range %q..%q, expected YYYY-MM-DD", from, to)
	}
	if from > to {
		return nil, fmt.Errorf("from date %s is after to date %s", from, to)
	}
	return s.stats.AppointmentsByDay(ctx, doctorID, from, to)
}
