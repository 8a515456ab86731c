package reporting

import (
	"context"
	"testing"
	"time"
)

type stubStatsRepo struct {
	counts      *DashboardStats
	series      []DayCount
	gotDoctorID int64
	gotToday    string
	gotFrom     string
	gotTo       string
}

func (s *stubStatsRepo) EntityTotals(_ context.Context) (int, int, int, error) {
	return 120, 8, 4, nil
}

func (s *stubStatsRepo) AppointmentCounts(_ context.Context, doctorID int64, today string) (*DashboardStats, error) {
	s.gotDoctorID = doctorID
	s.gotToday = today
	cp := *s.counts
	return &cp, nil
}

func (s *stubStatsRepo) AppointmentsByDay(_ context.Context, doctorID int64, from, to string) ([]DayCount, error) {
	s.gotDoctorID = doctorID
	s.gotFrom, s.gotTo = from, to
	return s.series, nil
}

func newTestService() (*Service, *stubStatsRepo) {
	repo := &stubStatsRepo{
		counts: &DashboardStats{TotalAppointments: 40, TodayAppointments: 5, Pending: 10, Confirmed: 12, Completed: 15, Cancelled: 2, NoShow: 1},
		series: []DayCount{{Date: "2025-06-01", Count: 3}},
	}
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestDashboardMergesEntityTotals(t *testing.T) {
	svc, repo := newTestService()
	stats, err := svc.Dashboard(context.Background(), 0)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.TotalPatients != 120 || stats.TotalDoctors != 8 || stats.TotalDepartments != 4 {
		t.Errorf("entity totals = %d/%d/%d", stats.TotalPatients, stats.TotalDoctors, stats.TotalDepartments)
	}
	if stats.TotalAppointments != 40 || stats.NoShow != 1 {
		t.Errorf("appointment counts not carried: %+v", stats)
	}
	if repo.gotToday != "2025-06-10" {
		t.Errorf("today = %s, want 2025-06-10", repo.gotToday)
	}
}

func TestDashboardDoctorScope(t *testing.T) {
	svc, repo := newTestService()
	if _, err := svc.Dashboard(context.Background(), 7); err != nil {
		t.Fatal(err)
	}
	if repo.gotDoctorID != 7 {
		t.Errorf("doctor scope not forwarded, got %d", repo.gotDoctorID)
	}
}

func TestAppointmentsByDayDefaultsRange(t *testing.T) {
	svc, repo := newTestService()
	if _, err := svc.AppointmentsByDay(context.Background(), 0, "", ""); err != nil {
		t.Fatal(err)
	}
	if repo.gotFrom != "2025-05-11" || repo.gotTo != "2025-06-10" {
		t.Errorf("default range = %s..%s, want trailing 30 days", repo.gotFrom, repo.gotTo)
	}
}

func TestAppointmentsByDayRejectsInvertedRange(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.AppointmentsByDay(context.Background(), 0, "2025-06-10", "2025-06-01"); err == nil {
		t.Error("expected error for inverted range")
	}
}
