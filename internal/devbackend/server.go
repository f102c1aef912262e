// Package devbackend serves the HRMS REST contract on top of PocketBase for
// local development of the console.
package devbackend

import (
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"hrms-console/internal/models"
)

const (
	employeesCollection  = "employees"
	attendanceCollection = "attendance"

	detailBadCredentials   = "Incorrect username or password"
	detailNotAuthenticated = "Not authenticated"
	detailDuplicateCode    = "Employee ID already exists"
	detailEmployeeNotFound = "Employee not found"
)

// Options configure the single operator account
type Options struct {
	AdminUsername string
	AdminPassword string
	Tokens        *Tokens
}

// Backend implements the REST contract the console consumes
type Backend struct {
	app  core.App
	opts Options
}

func New(app core.App, opts Options) *Backend {
	return &Backend{app: app, opts: opts}
}

// Bind registers the routes on PocketBase's router
func (b *Backend) Bind(se *core.ServeEvent) {
	se.Router.POST("/token", b.handleToken)

	se.Router.GET("/users/me", b.handleMe).BindFunc(b.requireBearer)
	se.Router.GET("/employees/{$}", b.handleListEmployees).BindFunc(b.requireBearer)
	se.Router.POST("/employees/{$}", b.handleCreateEmployee).BindFunc(b.requireBearer)
	se.Router.DELETE("/employees/{id}", b.handleDeleteEmployee).BindFunc(b.requireBearer)
	se.Router.GET("/attendance/{$}", b.handleListAttendance).BindFunc(b.requireBearer)
	se.Router.GET("/attendance/{employeeId}", b.handleListAttendance).BindFunc(b.requireBearer)
	se.Router.POST("/attendance/{$}", b.handleMarkAttendance).BindFunc(b.requireBearer)

	log.Println("✅ HRMS routes registered")
}

type detailResponse struct {
	Detail any `json:"detail"`
}

type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func detail(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, detailResponse{Detail: message})
}

// missingFields answers like a schema validator: a list, not a string
func missingFields(e *core.RequestEvent, names ...string) error {
	errs := make([]fieldError, 0, len(names))
	for _, n := range names {
		errs = append(errs, fieldError{Loc: []string{"body", n}, Msg: "field required", Type: "value_error.missing"})
	}
	return e.JSON(http.StatusUnprocessableEntity, detailResponse{Detail: errs})
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (b *Backend) requireBearer(e *core.RequestEvent) error {
	token := bearerToken(e.Request.Header.Get("Authorization"))
	if token == "" {
		return detail(e, http.StatusUnauthorized, detailNotAuthenticated)
	}
	if _, err := b.opts.Tokens.Verify(token); err != nil {
		return detail(e, http.StatusUnauthorized, "Could not validate credentials")
	}
	return e.Next()
}

func (b *Backend) handleToken(e *core.RequestEvent) error {
	if err := e.Request.ParseForm(); err != nil {
		return missingFields(e, "username", "password")
	}
	username := e.Request.PostFormValue("username")
	password := e.Request.PostFormValue("password")
	if username == "" || password == "" {
		return missingFields(e, "username", "password")
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(b.opts.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(b.opts.AdminPassword)) == 1
	if !userOK || !passOK {
		log.Printf("⚠️  Failed login for %q", username)
		return detail(e, http.StatusUnauthorized, detailBadCredentials)
	}

	token, err := b.opts.Tokens.Issue(username)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer"})
}

func (b *Backend) handleMe(e *core.RequestEvent) error {
	claims, err := b.opts.Tokens.Verify(bearerToken(e.Request.Header.Get("Authorization")))
	if err != nil {
		return detail(e, http.StatusUnauthorized, detailNotAuthenticated)
	}
	return e.JSON(http.StatusOK, models.User{Username: claims.Username, FullName: "Administrator"})
}

func (b *Backend) handleListEmployees(e *core.RequestEvent) error {
	records := []*core.Record{}
	err := b.app.RecordQuery(employeesCollection).OrderBy("number ASC").All(&records)
	if err != nil {
		return fmt.Errorf("list employees: %w", err)
	}
	out := make([]models.Employee, 0, len(records))
	for _, r := range records {
		out = append(out, employeeFromRecord(r))
	}
	return e.JSON(http.StatusOK, out)
}

func (b *Backend) handleCreateEmployee(e *core.RequestEvent) error {
	var cmd models.CreateEmployeeCommand
	if err := e.BindBody(&cmd); err != nil {
		return detail(e, http.StatusBadRequest, "Invalid request body")
	}
	if missing := missingEmployeeFields(cmd); len(missing) > 0 {
		return missingFields(e, missing...)
	}

	if _, err := b.app.FindFirstRecordByData(employeesCollection, "employee_code", cmd.EmployeeID); err == nil {
		return detail(e, http.StatusBadRequest, detailDuplicateCode)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	collection, err := b.app.FindCollectionByNameOrId(employeesCollection)
	if err != nil {
		return err
	}
	number, err := b.nextNumber(employeesCollection)
	if err != nil {
		return err
	}

	record := core.NewRecord(collection)
	record.Set("number", number)
	record.Set("employee_code", cmd.EmployeeID)
	record.Set("full_name", cmd.FullName)
	record.Set("email", cmd.Email)
	record.Set("department", cmd.Department)
	if err := b.app.Save(record); err != nil {
		return fmt.Errorf("save employee: %w", err)
	}

	log.Printf("💾 Created employee %s (id=%d)", cmd.EmployeeID, number)
	return e.JSON(http.StatusCreated, employeeFromRecord(record))
}

func (b *Backend) handleDeleteEmployee(e *core.RequestEvent) error {
	id, err := strconv.ParseInt(e.Request.PathValue("id"), 10, 64)
	if err != nil {
		return detail(e, http.StatusNotFound, detailEmployeeNotFound)
	}

	err = b.app.RunInTransaction(func(txApp core.App) error {
		employee, err := txApp.FindFirstRecordByData(employeesCollection, "number", id)
		if err != nil {
			return err
		}
		history, err := txApp.FindAllRecords(attendanceCollection, dbx.HashExp{"employee_number": id})
		if err != nil {
			return err
		}
		for _, r := range history {
			if err := txApp.Delete(r); err != nil {
				return err
			}
		}
		return txApp.Delete(employee)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return detail(e, http.StatusNotFound, detailEmployeeNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete employee %d: %w", id, err)
	}

	log.Printf("💾 Deleted employee id=%d", id)
	return e.NoContent(http.StatusNoContent)
}

func (b *Backend) handleListAttendance(e *core.RequestEvent) error {
	query := b.app.RecordQuery(attendanceCollection).OrderBy("date DESC", "number DESC")
	if raw := e.Request.PathValue("employeeId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return detail(e, http.StatusNotFound, detailEmployeeNotFound)
		}
		query = query.AndWhere(dbx.HashExp{"employee_number": id})
	}

	records := []*core.Record{}
	if err := query.All(&records); err != nil {
		return fmt.Errorf("list attendance: %w", err)
	}
	out := make([]models.AttendanceRecord, 0, len(records))
	for _, r := range records {
		rec, err := attendanceFromRecord(r)
		if err != nil {
			log.Printf("⚠️  Skipping attendance %s: %v", r.Id, err)
			continue
		}
		out = append(out, rec)
	}
	return e.JSON(http.StatusOK, out)
}

func (b *Backend) handleMarkAttendance(e *core.RequestEvent) error {
	var cmd models.CreateAttendanceCommand
	if err := e.BindBody(&cmd); err != nil {
		return detail(e, http.StatusBadRequest, "Invalid request body")
	}
	if cmd.EmployeeID == 0 || cmd.Date.IsZero() || cmd.Status == "" {
		return missingFields(e, "employee_id", "date", "status")
	}
	if cmd.Status != models.StatusPresent && cmd.Status != models.StatusAbsent {
		return detail(e, http.StatusBadRequest, "Status must be Present or Absent")
	}

	if _, err := b.app.FindFirstRecordByData(employeesCollection, "number", cmd.EmployeeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return detail(e, http.StatusNotFound, detailEmployeeNotFound)
		}
		return err
	}

	collection, err := b.app.FindCollectionByNameOrId(attendanceCollection)
	if err != nil {
		return err
	}
	number, err := b.nextNumber(attendanceCollection)
	if err != nil {
		return err
	}

	record := core.NewRecord(collection)
	record.Set("number", number)
	record.Set("employee_number", cmd.EmployeeID)
	record.Set("date", cmd.Date.String())
	record.Set("status", string(cmd.Status))
	if err := b.app.Save(record); err != nil {
		return fmt.Errorf("save attendance: %w", err)
	}

	log.Printf("💾 Marked employee id=%d %s on %s", cmd.EmployeeID, cmd.Status, cmd.Date)
	rec, err := attendanceFromRecord(record)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusCreated, rec)
}

// nextNumber allocates the next sequential id of a collection
func (b *Backend) nextNumber(collection string) (int64, error) {
	var current int64
	err := b.app.DB().
		Select("COALESCE(MAX([[number]]), 0)").
		From(collection).
		Row(&current)
	if err != nil {
		return 0, fmt.Errorf("next %s number: %w", collection, err)
	}
	return current + 1, nil
}

func missingEmployeeFields(cmd models.CreateEmployeeCommand) []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"employee_id", cmd.EmployeeID},
		{"full_name", cmd.FullName},
		{"email", cmd.Email},
		{"department", cmd.Department},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func employeeFromRecord(r *core.Record) models.Employee {
	return models.Employee{
		ID:         int64(r.GetInt("number")),
		EmployeeID: r.GetString("employee_code"),
		FullName:   r.GetString("full_name"),
		Email:      r.GetString("email"),
		Department: r.GetString("department"),
	}
}

func attendanceFromRecord(r *core.Record) (models.AttendanceRecord, error) {
	date, err := models.ParseDate(r.GetString("date"))
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	return models.AttendanceRecord{
		ID:         int64(r.GetInt("number")),
		EmployeeID: int64(r.GetInt("employee_number")),
		Date:       date,
		Status:     models.Status(r.GetString("status")),
	}, nil
}
