// Package services implements the console screens: fetch orchestration,
// derived views, mutation flows and confirmation gates.
package services

import (
	"context"
	"fmt"
	"log"

	"hrms-console/internal/models"
	"hrms-console/internal/repository"
)

const (
	msgAttendanceFetchFailed = "Failed to load attendance data."
	msgAttendanceMarked      = "Attendance recorded!"
	msgAttendanceMarkFailed  = "Failed to mark attendance"
)

// AttendanceView is a snapshot of the attendance tracker screen
type AttendanceView struct {
	LoadState
	Employees        []models.Employee `json:"employees"`
	SelectOptions    []models.Employee `json:"select_options"`
	History          []HistoryRow      `json:"history"`
	SelectedEmployee string            `json:"selected_employee"`
	HistorySearch    string            `json:"history_search"`
	EmployeeSearch   string            `json:"employee_search"`
	Form             AttendanceForm    `json:"form"`
	Submitting       bool              `json:"submitting"`
	SubmitDisabled   bool              `json:"submit_disabled"`
}

// AttendanceScreen is the view state of the attendance tracker
type AttendanceScreen struct {
	screen
	employeeRepo   repository.EmployeeRepository
	attendanceRepo repository.AttendanceRepository

	employees []models.Employee
	records   []models.AttendanceRecord

	selectedEmployee string
	historySearch    string
	employeeSearch   string
	form             AttendanceForm

	mark MutationFlow
}

// NewAttendanceScreen mounts an attendance screen
func NewAttendanceScreen(
	employeeRepo repository.EmployeeRepository,
	attendanceRepo repository.AttendanceRepository,
	notifier Notifier,
) *AttendanceScreen {
	s := &AttendanceScreen{
		employeeRepo:     employeeRepo,
		attendanceRepo:   attendanceRepo,
		selectedEmployee: SelectAll,
		form:             DefaultAttendanceForm(),
	}
	s.init(msgAttendanceFetchFailed, notifier)
	return s
}

func (s *AttendanceScreen) EnsureLoaded(ctx context.Context) error {
	if !s.needsLoad() {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches employees and attendance concurrently; both are replaced
// together or not at all.
func (s *AttendanceScreen) Refresh(ctx context.Context) error {
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

// SetSelectedEmployee scopes the history to one employee id, or SelectAll
func (s *AttendanceScreen) SetSelectedEmployee(selected string) {
	s.mu.Lock()
	s.selectedEmployee = selected
	s.mu.Unlock()
}

func (s *AttendanceScreen) SetHistorySearch(q string) {
	s.mu.Lock()
	s.historySearch = q
	s.mu.Unlock()
}

// SetEmployeeSearch filters the employee picker of the mark form
func (s *AttendanceScreen) SetEmployeeSearch(q string) {
	s.mu.Lock()
	s.employeeSearch = q
	s.mu.Unlock()
}

func (s *AttendanceScreen) SetForm(f AttendanceForm) {
	s.mu.Lock()
	s.form = f
	s.mu.Unlock()
}

func (s *AttendanceScreen) Form() AttendanceForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Mark submits the current form. On success only the employee selection is
// cleared so date and status carry over to the next entry. An empty date is
// the current day.
func (s *AttendanceScreen) Mark(ctx context.Context) error {
	cmd, err := s.Form().Command()
	if err != nil {
		return s.fail(formMessage(err), err)
	}

	return s.mark.Run(func() error {
		ctx := context.WithoutCancel(ctx)
		if _, err := s.attendanceRepo.Create(ctx, cmd); err != nil {
			return s.fail(repository.Message(err, msgAttendanceMarkFailed),
				fmt.Errorf("mark attendance for %d: %w", cmd.EmployeeID, err))
		}
		s.notifier.Success(msgAttendanceMarked)

		s.mu.Lock()
		s.form.EmployeeID = ""
		s.mu.Unlock()
		s.mutated()

		if err := s.Refresh(ctx); err != nil {
			log.Printf("❌ Refresh after marking attendance failed: %v", err)
		}
		return nil
	})
}

// Reset drops the collections, the filters and the form
func (s *AttendanceScreen) Reset() {
	s.fetch.Reset(func() {
		s.employees = nil
		s.records = nil
		s.selectedEmployee = SelectAll
		s.historySearch = ""
		s.employeeSearch = ""
		s.form = DefaultAttendanceForm()
	})
}

// History is the filtered, joined history as currently shown
func (s *AttendanceScreen) History() []HistoryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterHistory(s.records, s.employees, s.selectedEmployee, s.historySearch)
}

func (s *AttendanceScreen) View() AttendanceView {
	s.mu.Lock()
	defer s.mu.Unlock()

	submitting := s.mark.Submitting()
	return AttendanceView{
		LoadState:        s.loadState(),
		Employees:        append([]models.Employee{}, s.employees...),
		SelectOptions:    FilterSelectOptions(s.employees, s.employeeSearch),
		History:          FilterHistory(s.records, s.employees, s.selectedEmployee, s.historySearch),
		SelectedEmployee: s.selectedEmployee,
		HistorySearch:    s.historySearch,
		EmployeeSearch:   s.employeeSearch,
		Form:             s.form.withDefaults(),
		Submitting:       submitting,
		SubmitDisabled:   submitting,
	}
}
