package services

import (
	"context"
	"errors"
	"sync"

	"hrms-console/internal/models"
	"hrms-console/internal/repository"
)

var errNetwork = errors.New("dial tcp: connection refused")

// fakeEmployeeRepo is an in-memory EmployeeRepository
type fakeEmployeeRepo struct {
	mu        sync.Mutex
	employees []models.Employee
	nextID    int64

	listErr   error
	createErr error
	deleteErr error

	listCalls   int
	createCalls int
	deleteCalls int
	lastCreate  models.CreateEmployeeCommand

	// when set, calls block until released
	started chan struct{}
	release chan struct{}
}

func newFakeEmployeeRepo(employees ...models.Employee) *fakeEmployeeRepo {
	repo := &fakeEmployeeRepo{employees: employees, nextID: 1}
	for _, e := range employees {
		if e.ID >= repo.nextID {
			repo.nextID = e.ID + 1
		}
	}
	return repo
}

func (r *fakeEmployeeRepo) wait(ctx context.Context) error {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release == nil {
		return nil
	}
	select {
	case <-r.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *fakeEmployeeRepo) List(ctx context.Context) ([]models.Employee, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, &repository.APIError{Op: "list employees", Err: r.listErr}
	}
	return append([]models.Employee(nil), r.employees...), nil
}

func (r *fakeEmployeeRepo) Create(ctx context.Context, cmd models.CreateEmployeeCommand) (*models.Employee, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	r.lastCreate = cmd
	if r.createErr != nil {
		return nil, r.createErr
	}
	e := models.Employee{
		ID:         r.nextID,
		EmployeeID: cmd.EmployeeID,
		FullName:   cmd.FullName,
		Email:      cmd.Email,
		Department: cmd.Department,
	}
	r.nextID++
	r.employees = append(r.employees, e)
	return &e, nil
}

func (r *fakeEmployeeRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	kept := r.employees[:0]
	for _, e := range r.employees {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	r.employees = kept
	return nil
}

func (r *fakeEmployeeRepo) setListErr(err error) {
	r.mu.Lock()
	r.listErr = err
	r.mu.Unlock()
}

// fakeAttendanceRepo is an in-memory AttendanceRepository
type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records []models.AttendanceRecord
	nextID  int64

	listErr   error
	createErr error

	listCalls   int
	createCalls int
	lastCreate  models.CreateAttendanceCommand

	started chan struct{}
	release chan struct{}
}

func newFakeAttendanceRepo(records ...models.AttendanceRecord) *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: records, nextID: int64(len(records)) + 1}
}

func (r *fakeAttendanceRepo) List(ctx context.Context, employeeID *int64) ([]models.AttendanceRecord, error) {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.AttendanceRecord
	for _, rec := range r.records {
		if employeeID == nil || rec.EmployeeID == *employeeID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeAttendanceRepo) Create(ctx context.Context, cmd models.CreateAttendanceCommand) (*models.AttendanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	r.lastCreate = cmd
	if r.createErr != nil {
		return nil, r.createErr
	}
	rec := models.AttendanceRecord{ID: r.nextID, EmployeeID: cmd.EmployeeID, Date: cmd.Date, Status: cmd.Status}
	r.nextID++
	r.records = append(r.records, rec)
	return &rec, nil
}

func (r *fakeAttendanceRepo) setListErr(err error) {
	r.mu.Lock()
	r.listErr = err
	r.mu.Unlock()
}

// recordingNotifier captures notifications
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	n.successes = append(n.successes, message)
	n.mu.Unlock()
}

func (n *recordingNotifier) Failure(message string) {
	n.mu.Lock()
	n.failures = append(n.failures, message)
	n.mu.Unlock()
}

func (n *recordingNotifier) last() (success, failure string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.successes) > 0 {
		success = n.successes[len(n.successes)-1]
	}
	if len(n.failures) > 0 {
		failure = n.failures[len(n.failures)-1]
	}
	return success, failure
}

func mustDate(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleEmployees() []models.Employee {
	return []models.Employee{
		{ID: 1, EmployeeID: "EMP001", FullName: "Alice Smith", Email: "alice@corp.io", Department: "Engineering"},
		{ID: 2, EmployeeID: "EMP002", FullName: "Bob Jones", Email: "bob@corp.io", Department: "Sales"},
	}
}
