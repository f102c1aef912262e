// Package handlers provides the HTTP JSON surface of the console
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"hrms-console/internal/export"
	"hrms-console/internal/models"
	"hrms-console/internal/repository"
	"hrms-console/internal/services"
)

// Console exposes the screens over HTTP. Every screen is process-wide, as
// the console serves a single operator.
type Console struct {
	session    *services.Session
	employees  *services.EmployeesScreen
	attendance *services.AttendanceScreen
	dashboard  *services.DashboardScreen
	feed       *services.Feed
}

// NewConsole creates the HTTP surface over already-mounted screens
func NewConsole(
	session *services.Session,
	employees *services.EmployeesScreen,
	attendance *services.AttendanceScreen,
	dashboard *services.DashboardScreen,
	feed *services.Feed,
) *Console {
	return &Console{
		session:    session,
		employees:  employees,
		attendance: attendance,
		dashboard:  dashboard,
		feed:       feed,
	}
}

// Routes registers every console endpoint on a new mux
func (c *Console) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/session/login", c.handleLogin)
	mux.HandleFunc("POST /api/session/logout", c.handleLogout)
	mux.HandleFunc("GET /api/session", c.handleSession)

	mux.HandleFunc("GET /api/employees", c.handleEmployees)
	mux.HandleFunc("POST /api/employees", c.handleCreateEmployee)
	mux.HandleFunc("POST /api/employees/refresh", c.handleRefreshEmployees)
	mux.HandleFunc("POST /api/employees/{id}/delete", c.handleRequestDelete)
	mux.HandleFunc("POST /api/employees/delete/confirm", c.handleConfirmDelete)
	mux.HandleFunc("POST /api/employees/delete/cancel", c.handleCancelDelete)

	mux.HandleFunc("GET /api/attendance", c.handleAttendance)
	mux.HandleFunc("POST /api/attendance", c.handleMarkAttendance)
	mux.HandleFunc("POST /api/attendance/refresh", c.handleRefreshAttendance)
	mux.HandleFunc("GET /api/attendance/export.xlsx", c.handleExport)

	mux.HandleFunc("GET /api/dashboard", c.handleDashboard)
	mux.HandleFunc("POST /api/dashboard/refresh", c.handleRefreshDashboard)

	mux.HandleFunc("GET /api/notifications", c.handleNotifications)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return logRequests(mux)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	View  any    `json:"view,omitempty"`
}

func (c *Console) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := c.session.Login(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, statusFor(err), services.NoticeMessage(err, "Login failed"), nil)
		return
	}
	c.writeSession(w, r)
}

func (c *Console) handleLogout(w http.ResponseWriter, r *http.Request) {
	c.session.Logout()
	writeJSON(w, http.StatusOK, sessionResponse{})
}

func (c *Console) handleSession(w http.ResponseWriter, r *http.Request) {
	c.writeSession(w, r)
}

func (c *Console) writeSession(w http.ResponseWriter, r *http.Request) {
	resp := sessionResponse{Authenticated: c.session.Authenticated()}
	if resp.Authenticated {
		user, err := c.session.CurrentUser(r.Context())
		if err != nil {
			log.Printf("⚠️  Current user lookup failed: %v", err)
		}
		resp.User = user
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *Console) handleEmployees(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query(); q.Has("q") {
		c.employees.SetQuery(q.Get("q"))
	}
	err := c.employees.EnsureLoaded(r.Context())
	c.writeEmployees(w, err)
}

func (c *Console) handleRefreshEmployees(w http.ResponseWriter, r *http.Request) {
	c.writeEmployees(w, c.employees.Refresh(r.Context()))
}

func (c *Console) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var form services.EmployeeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	c.employees.SetForm(form)
	c.writeEmployees(w, c.employees.Create(r.Context()))
}

func (c *Console) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee id", nil)
		return
	}
	c.employees.RequestDelete(id)
	c.writeEmployees(w, nil)
}

func (c *Console) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	c.writeEmployees(w, c.employees.ConfirmDelete(r.Context()))
}

func (c *Console) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	c.employees.CancelDelete()
	c.writeEmployees(w, nil)
}

func (c *Console) writeEmployees(w http.ResponseWriter, err error) {
	view := c.employees.View()
	if err != nil {
		writeError(w, statusFor(err), failureMessage(err, view.Error), view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (c *Console) handleAttendance(w http.ResponseWriter, r *http.Request) {
	c.applyAttendanceFilters(r)
	c.writeAttendance(w, c.attendance.EnsureLoaded(r.Context()))
}

func (c *Console) handleRefreshAttendance(w http.ResponseWriter, r *http.Request) {
	c.writeAttendance(w, c.attendance.Refresh(r.Context()))
}

func (c *Console) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	form := c.attendance.Form()
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	c.attendance.SetForm(form)
	c.writeAttendance(w, c.attendance.Mark(r.Context()))
}

func (c *Console) handleExport(w http.ResponseWriter, r *http.Request) {
	c.applyAttendanceFilters(r)
	if err := c.attendance.EnsureLoaded(r.Context()); err != nil {
		c.writeAttendance(w, err)
		return
	}

	f, err := export.AttendanceWorkbook(c.attendance.History())
	if err != nil {
		log.Printf("❌ Export failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to build export", nil)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(time.Now()))
	if err := f.Write(w); err != nil {
		log.Printf("❌ Writing export failed: %v", err)
	}
}

func (c *Console) applyAttendanceFilters(r *http.Request) {
	q := r.URL.Query()
	if q.Has("employee") {
		c.attendance.SetSelectedEmployee(q.Get("employee"))
	}
	if q.Has("search") {
		c.attendance.SetHistorySearch(q.Get("search"))
	}
	if q.Has("pick") {
		c.attendance.SetEmployeeSearch(q.Get("pick"))
	}
}

func (c *Console) writeAttendance(w http.ResponseWriter, err error) {
	view := c.attendance.View()
	if err != nil {
		writeError(w, statusFor(err), failureMessage(err, view.Error), view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (c *Console) handleDashboard(w http.ResponseWriter, r *http.Request) {
	c.writeDashboard(w, c.dashboard.EnsureLoaded(r.Context()))
}

func (c *Console) handleRefreshDashboard(w http.ResponseWriter, r *http.Request) {
	c.writeDashboard(w, c.dashboard.Refresh(r.Context()))
}

func (c *Console) writeDashboard(w http.ResponseWriter, err error) {
	view := c.dashboard.View()
	if err != nil {
		writeError(w, statusFor(err), view.Error, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (c *Console) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.feed.Drain())
}

// failureMessage prefers the notified mutation message, then the screen's fetch error
func failureMessage(err error, viewError string) string {
	switch {
	case errors.Is(err, services.ErrSubmitting), errors.Is(err, services.ErrNothingPending):
		return err.Error()
	case viewError != "":
		return services.NoticeMessage(err, viewError)
	default:
		return services.NoticeMessage(err, "Request failed")
	}
}

func statusFor(err error) int {
	var apiErr *repository.APIError
	switch {
	case errors.Is(err, services.ErrSubmitting), errors.Is(err, services.ErrNothingPending):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidForm):
		return http.StatusBadRequest
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		return http.StatusUnauthorized
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Encoding response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, view any) {
	writeJSON(w, status, errorResponse{Error: message, View: view})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("🔍 %s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
