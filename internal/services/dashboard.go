package services

import (
	"context"
	"sort"

	"hrms-console/internal/models"
	"hrms-console/internal/repository"
)

const (
	msgDashboardFetchFailed = "Failed to load dashboard statistics."
	recentLimit             = 5
)

// DashboardStats are the headline numbers of the overview
type DashboardStats struct {
	TotalEmployees int `json:"total_employees"`
	PresentToday   int `json:"present_today"`
	Departments    int `json:"departments"`
}

// DashboardView is a snapshot of the overview screen
type DashboardView struct {
	LoadState
	Stats  DashboardStats `json:"stats"`
	Recent []HistoryRow   `json:"recent"`
}

// DashboardScreen is the management overview
type DashboardScreen struct {
	screen
	employeeRepo   repository.EmployeeRepository
	attendanceRepo repository.AttendanceRepository

	employees []models.Employee
	records   []models.AttendanceRecord
}

func NewDashboardScreen(
	employeeRepo repository.EmployeeRepository,
	attendanceRepo repository.AttendanceRepository,
	notifier Notifier,
) *DashboardScreen {
	s := &DashboardScreen{employeeRepo: employeeRepo, attendanceRepo: attendanceRepo}
	s.init(msgDashboardFetchFailed, notifier)
	return s
}

func (s *DashboardScreen) EnsureLoaded(ctx context.Context) error {
	if !s.needsLoad() {
		return nil
	}
	return s.Refresh(ctx)
}

func (s *DashboardScreen) Refresh(ctx context.Context) error {
	var (
		employees []models.Employee
		records   []models.AttendanceRecord
	)
	return s.fetch.Run(ctx,
		func() {
			s.employees = employees
			s.records = records
		},
		func(ctx context.Context) (err error) {
			employees, err = s.employeeRepo.List(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			records, err = s.attendanceRepo.List(ctx, nil)
			return err
		},
	)
}

func (s *DashboardScreen) Reset() {
	s.fetch.Reset(func() {
		s.employees = nil
		s.records = nil
	})
}

func (s *DashboardScreen) View() DashboardView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DashboardView{
		LoadState: s.loadState(),
		Stats:     ComputeStats(s.employees, s.records, models.NewDate(now().UTC())),
		Recent:    RecentAttendance(s.records, s.employees, recentLimit),
	}
}

// ComputeStats counts employees, Present marks on day and distinct departments
func ComputeStats(employees []models.Employee, records []models.AttendanceRecord, day models.Date) DashboardStats {
	present := 0
	for _, r := range records {
		if r.Date.Equal(day.Time) && r.Status == models.StatusPresent {
			present++
		}
	}
	departments := make(map[string]struct{}, len(employees))
	for _, e := range employees {
		departments[e.Department] = struct{}{}
	}
	return DashboardStats{
		TotalEmployees: len(employees),
		PresentToday:   present,
		Departments:    len(departments),
	}
}

// RecentAttendance returns the newest limit records by date, joined with
// their employees. Unresolved employees show as Unknown / N/A.
func RecentAttendance(records []models.AttendanceRecord, employees []models.Employee, limit int) []HistoryRow {
	sorted := append([]models.AttendanceRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date.Time)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	unknown := models.Employee{FullName: "Unknown", Department: "N/A"}
	out := make([]HistoryRow, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, HistoryRow{Record: r, Employee: resolveEmployeeOr(employees, r.EmployeeID, unknown)})
	}
	return out
}
