package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"hrms-console/internal/models"
)

// ErrInvalidForm wraps every form validation failure
var ErrInvalidForm = errors.New("invalid form")

// now is replaced in tests
var now = time.Now

func today() string {
	return models.NewDate(now().UTC()).String()
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// EmployeeForm mirrors the create-employee form
type EmployeeForm struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func (f EmployeeForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.EmployeeID, validation.Required),
		validation.Field(&f.FullName, validation.Required),
		validation.Field(&f.Email, validation.Required),
		validation.Field(&f.Department, validation.Required),
	)
}

// Command validates the form and converts it into the request body.
// Fields are sent as typed.
func (f EmployeeForm) Command() (models.CreateEmployeeCommand, error) {
	if err := f.Validate(); err != nil {
		return models.CreateEmployeeCommand{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	return models.CreateEmployeeCommand{
		EmployeeID: f.EmployeeID,
		FullName:   f.FullName,
		Email:      f.Email,
		Department: f.Department,
	}, nil
}

// AttendanceForm mirrors the mark-attendance form
type AttendanceForm struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

// DefaultAttendanceForm is the form as first shown: no employee, Present and
// an empty date, which stands for the current day
func DefaultAttendanceForm() AttendanceForm {
	return AttendanceForm{Status: string(models.StatusPresent)}
}

// withDefaults fills an empty date with today
func (f AttendanceForm) withDefaults() AttendanceForm {
	if f.Date == "" {
		f.Date = today()
	}
	return f
}

// Validate checks presence only; the backend owns the allowed statuses.
// employee_id must also be an integer as the request body is typed.
func (f AttendanceForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.EmployeeID, validation.Required, is.Int),
		validation.Field(&f.Date, validation.Required),
		validation.Field(&f.Status, validation.Required),
	)
}

// Command validates the form and coerces employee_id and date into the
// typed request body. An empty date is sent as today.
func (f AttendanceForm) Command() (models.CreateAttendanceCommand, error) {
	f = f.withDefaults()
	if err := f.Validate(); err != nil {
		return models.CreateAttendanceCommand{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	id, err := parseID(f.EmployeeID)
	if err != nil {
		return models.CreateAttendanceCommand{}, fmt.Errorf("%w: employee_id: %w", ErrInvalidForm, err)
	}
	date, err := models.ParseDate(f.Date)
	if err != nil {
		return models.CreateAttendanceCommand{}, fmt.Errorf("%w: %w", ErrInvalidForm,
			validation.Errors{"date": errors.New("must be a date in YYYY-MM-DD format")})
	}
	return models.CreateAttendanceCommand{
		EmployeeID: id,
		Date:       date,
		Status:     models.Status(f.Status),
	}, nil
}

// formMessage is the text shown to the operator for a validation failure
func formMessage(err error) string {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	return err.Error()
}
