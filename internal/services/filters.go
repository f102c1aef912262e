package services

import (
	"strings"

	"hrms-console/internal/models"
)

// SelectAll is the employee selector value that disables per-employee filtering
const SelectAll = "all"

// HistoryRow is an attendance record joined with its employee
type HistoryRow struct {
	Record   models.AttendanceRecord `json:"record"`
	Employee models.Employee         `json:"employee"`
}

// UnknownEmployee is substituted when a record references a missing employee
func UnknownEmployee() models.Employee {
	return models.Employee{FullName: "Unknown"}
}

func containsFold(field, lowered string) bool {
	return strings.Contains(strings.ToLower(field), lowered)
}

func matchesDirectory(e models.Employee, lowered string) bool {
	return containsFold(e.FullName, lowered) ||
		containsFold(e.EmployeeID, lowered) ||
		containsFold(e.Email, lowered) ||
		containsFold(e.Department, lowered)
}

// FilterEmployees keeps employees whose name, code, email or department contains query, ignoring case.
func FilterEmployees(employees []models.Employee, query string) []models.Employee {
	lowered := strings.ToLower(query)
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if matchesDirectory(e, lowered) {
			out = append(out, e)
		}
	}
	return out
}

// FilterSelectOptions populates the employee picker of the attendance form.
// It is independent of the history filter.
func FilterSelectOptions(employees []models.Employee, query string) []models.Employee {
	return FilterEmployees(employees, query)
}

// ResolveEmployee returns the employee with the given id or UnknownEmployee.
func ResolveEmployee(employees []models.Employee, id int64) models.Employee {
	return resolveEmployeeOr(employees, id, UnknownEmployee())
}

func resolveEmployeeOr(employees []models.Employee, id int64, fallback models.Employee) models.Employee {
	for _, e := range employees {
		if e.ID == id {
			return e
		}
	}
	return fallback
}

// FilterHistory keeps records of the selected employee (or all) whose
// resolved employee name or code contains search, ignoring case.
func FilterHistory(records []models.AttendanceRecord, employees []models.Employee, selected, search string) []HistoryRow {
	matchEmployee := employeeSelector(selected)
	lowered := strings.ToLower(search)

	out := make([]HistoryRow, 0, len(records))
	for _, rec := range records {
		if !matchEmployee(rec.EmployeeID) {
			continue
		}
		emp := ResolveEmployee(employees, rec.EmployeeID)
		if containsFold(emp.FullName, lowered) || containsFold(emp.EmployeeID, lowered) {
			out = append(out, HistoryRow{Record: rec, Employee: emp})
		}
	}
	return out
}

func employeeSelector(selected string) func(int64) bool {
	selected = strings.TrimSpace(selected)
	if selected == "" || selected == SelectAll {
		return func(int64) bool { return true }
	}
	id, err := parseID(selected)
	if err != nil {
		return func(int64) bool { return false }
	}
	return func(employeeID int64) bool { return employeeID == id }
}
