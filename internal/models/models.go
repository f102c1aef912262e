// Package models contains data structures for the application
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of attendance dates
const DateLayout = "2006-01-02"

// Status is the attendance mark of one employee on one date
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// Employee represents an employee in the directory
type Employee struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"` // human code, e.g. EMP003
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// AttendanceRecord represents one attendance mark
type AttendanceRecord struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employee_id"` // references Employee.ID
	Date       Date   `json:"date"`
	Status     Status `json:"status"`
}

// User is the authenticated console operator
type User struct {
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Token is the body returned by POST /token
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// CreateEmployeeCommand is the body of POST /employees/
type CreateEmployeeCommand struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// CreateAttendanceCommand is the body of POST /attendance/
type CreateAttendanceCommand struct {
	EmployeeID int64  `json:"employee_id"`
	Date       Date   `json:"date"`
	Status     Status `json:"status"`
}

// Date is a calendar date without a time component
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return NewDate(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Some backends serialise dates as full timestamps
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
