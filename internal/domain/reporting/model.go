package reporting

// DashboardStats is the front-desk landing page payload. Appointment counts
// narrow to one doctor for doctor-role actors; the entity totals stay
// hospital-wide.
type DashboardStats struct {
	TotalPatients     int `json:"total_patients"`
	TotalDoctors      int `json:"total_doctors"`
	TotalDepartments  int `json:"total_departments"`
	TotalAppointments int `json:"total_appointments"`
	TodayAppointments int `json:"today_appointments"`

	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	NoShow    int `json:"no_show"`
}

// DayCount is one point of the appointments-by-day chart feed.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
