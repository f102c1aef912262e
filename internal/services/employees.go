package services

import (
	"context"
	"fmt"
	"log"

	"hrms-console/internal/models"
	"hrms-console/internal/repository"
)

const (
	msgEmployeesFetchFailed = "Failed to fetch employees. Please check your connection."
	msgEmployeeAdded        = "Employee added successfully!"
	msgEmployeeAddFailed    = "Failed to add employee"
	msgEmployeeDeleted      = "Employee deleted successfully!"
	msgEmployeeDeleteFailed = "Failed to delete employee"
)

// DeletePrompt is the confirmation gate as shown to the operator
type DeletePrompt struct {
	Open      bool   `json:"open"`
	PendingID int64  `json:"pending_id,omitempty"`
	Message   string `json:"message,omitempty"`
	Deleting  bool   `json:"deleting"`
}

// EmployeesView is a snapshot of the employee directory screen
type EmployeesView struct {
	LoadState
	Employees      []models.Employee `json:"employees"`
	Total          int               `json:"total"`
	Query          string            `json:"query"`
	Form           EmployeeForm      `json:"form"`
	Submitting     bool              `json:"submitting"`
	SubmitDisabled bool              `json:"submit_disabled"`
	Delete         DeletePrompt      `json:"delete"`
}

// EmployeesScreen is the view state of the employee directory
type EmployeesScreen struct {
	screen
	repo repository.EmployeeRepository

	employees []models.Employee
	query     string
	form      EmployeeForm

	create MutationFlow
	remove MutationFlow
	gate   ConfirmationGate
}

// NewEmployeesScreen mounts a directory screen. The first fetch happens on
// EnsureLoaded or Refresh.
func NewEmployeesScreen(repo repository.EmployeeRepository, notifier Notifier) *EmployeesScreen {
	s := &EmployeesScreen{repo: repo}
	s.init(msgEmployeesFetchFailed, notifier)
	return s
}

// EnsureLoaded fetches the directory unless it has already been loaded
func (s *EmployeesScreen) EnsureLoaded(ctx context.Context) error {
	if !s.needsLoad() {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh re-fetches the directory from the backend
func (s *EmployeesScreen) Refresh(ctx context.Context) error {
	var employees []models.Employee
	return s.fetch.Run(ctx,
		func() { s.employees = employees },
		func(ctx context.Context) (err error) {
			employees, err = s.repo.List(ctx)
			return err
		},
	)
}

// SetQuery updates the directory search
func (s *EmployeesScreen) SetQuery(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// SetForm replaces the create-employee form
func (s *EmployeesScreen) SetForm(f EmployeeForm) {
	s.mu.Lock()
	s.form = f
	s.mu.Unlock()
}

func (s *EmployeesScreen) Form() EmployeeForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Create submits the current form. On success the form is reset and the
// directory re-fetched; on failure the form is kept for correction.
func (s *EmployeesScreen) Create(ctx context.Context) error {
	cmd, err := s.Form().Command()
	if err != nil {
		return s.fail(formMessage(err), err)
	}

	return s.create.Run(func() error {
		ctx := context.WithoutCancel(ctx)
		if _, err := s.repo.Create(ctx, cmd); err != nil {
			return s.fail(repository.Message(err, msgEmployeeAddFailed),
				fmt.Errorf("create employee %s: %w", cmd.EmployeeID, err))
		}
		s.notifier.Success(msgEmployeeAdded)
		s.SetForm(EmployeeForm{})
		s.mutated()

		if err := s.Refresh(ctx); err != nil {
			log.Printf("❌ Refresh after create failed: %v", err)
		}
		return nil
	})
}

// RequestDelete opens the confirmation gate for the employee with id
func (s *EmployeesScreen) RequestDelete(id int64) DeletePrompt {
	s.gate.Open(id)
	return s.View().Delete
}

// CancelDelete closes the gate without contacting the backend
func (s *EmployeesScreen) CancelDelete() {
	s.gate.Cancel()
}

// ConfirmDelete deletes the pending employee and closes the gate
func (s *EmployeesScreen) ConfirmDelete(ctx context.Context) error {
	return s.remove.Run(func() error {
		return s.gate.Confirm(func(id int64) error {
			ctx := context.WithoutCancel(ctx)
			if err := s.repo.Delete(ctx, id); err != nil {
				return s.fail(msgEmployeeDeleteFailed, fmt.Errorf("delete employee %d: %w", id, err))
			}
			s.notifier.Success(msgEmployeeDeleted)
			s.mutated()

			if err := s.Refresh(ctx); err != nil {
				log.Printf("❌ Refresh after delete failed: %v", err)
			}
			return nil
		})
	})
}

// Reset drops the directory, the search, the form and any pending delete
func (s *EmployeesScreen) Reset() {
	s.gate.Cancel()
	s.fetch.Reset(func() {
		s.employees = nil
		s.query = ""
		s.form = EmployeeForm{}
	})
}

// View derives the directory as currently filtered
func (s *EmployeesScreen) View() EmployeesView {
	s.mu.Lock()
	defer s.mu.Unlock()

	submitting := s.create.Submitting()
	v := EmployeesView{
		LoadState:      s.loadState(),
		Employees:      FilterEmployees(s.employees, s.query),
		Total:          len(s.employees),
		Query:          s.query,
		Form:           s.form,
		Submitting:     submitting,
		SubmitDisabled: submitting,
	}
	if id, open := s.gate.Pending(); open {
		v.Delete = DeletePrompt{
			Open:      true,
			PendingID: id,
			Message:   deleteMessage(s.employees, id),
			Deleting:  s.remove.Submitting(),
		}
	}
	return v
}

func deleteMessage(employees []models.Employee, id int64) string {
	name := "the employee"
	if e := resolveEmployeeOr(employees, id, models.Employee{}); e.FullName != "" {
		name = e.FullName
	}
	return fmt.Sprintf("This will permanently remove %s and all associated attendance history. This action cannot be reversed.", name)
}
