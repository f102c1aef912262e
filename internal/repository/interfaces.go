// Package repository defines repository interfaces for data access
package repository

import (
	"context"

	"hrms-console/internal/models"
)

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	// List returns the full employee directory
	List(ctx context.Context) ([]models.Employee, error)
	// Create adds an employee and returns it with its server-assigned id
	Create(ctx context.Context, cmd models.CreateEmployeeCommand) (*models.Employee, error)
	// Delete removes an employee by id
	Delete(ctx context.Context, id int64) error
}

// AttendanceRepository defines the interface for attendance data access
type AttendanceRepository interface {
	// List returns all attendance records, or only one employee's when employeeID is set
	List(ctx context.Context, employeeID *int64) ([]models.AttendanceRecord, error)
	// Create records a new attendance mark
	Create(ctx context.Context, cmd models.CreateAttendanceCommand) (*models.AttendanceRecord, error)
}

// AuthRepository defines the interface for authentication
type AuthRepository interface {
	// Authenticate exchanges credentials for a token and stores it
	Authenticate(ctx context.Context, username, password string) (*models.Token, error)
	// CurrentUser returns the operator the stored token belongs to
	CurrentUser(ctx context.Context) (*models.User, error)
}

// CredentialStore holds the bearer token shared by every repository
type CredentialStore interface {
	Token() string
	SetToken(token string)
	Clear()
}
