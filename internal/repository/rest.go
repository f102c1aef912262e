// Package repository provides the REST API implementations of the HRMS backend
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrms-console/internal/models"
)

const requestIDHeader = "X-Request-ID"

// restClient is shared by every REST repository
type restClient struct {
	baseURL    string
	creds      CredentialStore
	httpClient *http.Client
}

func newRESTClient(baseURL string, creds CredentialStore, httpClient *http.Client) *restClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if creds == nil {
		creds = NewSessionCredentials("")
	}
	return &restClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: httpClient,
	}
}

func (c *restClient) addAuthHeader(req *http.Request) {
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// do sends the request and decodes a 2xx body into out (when out is non-nil).
// Any other outcome becomes an *APIError.
func (c *restClient) do(req *http.Request, op string, out any) error {
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ [%s] %s %s: %v", reqID, req.Method, req.URL.Path, err)
		return &APIError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := parseDetail(body)
		log.Printf("❌ [%s] %s %s: status=%d detail=%q", reqID, req.Method, req.URL.Path, resp.StatusCode, detail)
		return &APIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     detail,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *restClient) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(jsonData)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.addAuthHeader(req)
	return req, nil
}

// RESTEmployeeRepository implements EmployeeRepository
type RESTEmployeeRepository struct {
	*restClient
}

// NewRESTEmployeeRepository creates repository
func NewRESTEmployeeRepository(baseURL string, creds CredentialStore, httpClient *http.Client) *RESTEmployeeRepository {
	return &RESTEmployeeRepository{newRESTClient(baseURL, creds, httpClient)}
}

func (r *RESTEmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	req, err := r.newJSONRequest(ctx, http.MethodGet, "/employees/", nil)
	if err != nil {
		return nil, err
	}
	var employees []models.Employee
	if err := r.do(req, "list employees", &employees); err != nil {
		return nil, err
	}
	log.Printf("🔍 Loaded %d employees", len(employees))
	return employees, nil
}

func (r *RESTEmployeeRepository) Create(ctx context.Context, cmd models.CreateEmployeeCommand) (*models.Employee, error) {
	req, err := r.newJSONRequest(ctx, http.MethodPost, "/employees/", cmd)
	if err != nil {
		return nil, err
	}
	var created models.Employee
	if err := r.do(req, "create employee", &created); err != nil {
		return nil, err
	}
	log.Printf("💾 Created employee %s (id=%d)", created.EmployeeID, created.ID)
	return &created, nil
}

func (r *RESTEmployeeRepository) Delete(ctx context.Context, id int64) error {
	req, err := r.newJSONRequest(ctx, http.MethodDelete, fmt.Sprintf("/employees/%d", id), nil)
	if err != nil {
		return err
	}
	if err := r.do(req, "delete employee", nil); err != nil {
		return err
	}
	log.Printf("💾 Deleted employee id=%d", id)
	return nil
}

// RESTAttendanceRepository implements AttendanceRepository
type RESTAttendanceRepository struct {
	*restClient
}

func NewRESTAttendanceRepository(baseURL string, creds CredentialStore, httpClient *http.Client) *RESTAttendanceRepository {
	return &RESTAttendanceRepository{newRESTClient(baseURL, creds, httpClient)}
}

func (r *RESTAttendanceRepository) List(ctx context.Context, employeeID *int64) ([]models.AttendanceRecord, error) {
	path := "/attendance/"
	if employeeID != nil {
		path = fmt.Sprintf("/attendance/%d", *employeeID)
	}
	req, err := r.newJSONRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var records []models.AttendanceRecord
	if err := r.do(req, "list attendance", &records); err != nil {
		return nil, err
	}
	log.Printf("🔍 Loaded %d attendance records", len(records))
	return records, nil
}

func (r *RESTAttendanceRepository) Create(ctx context.Context, cmd models.CreateAttendanceCommand) (*models.AttendanceRecord, error) {
	req, err := r.newJSONRequest(ctx, http.MethodPost, "/attendance/", cmd)
	if err != nil {
		return nil, err
	}
	var created models.AttendanceRecord
	if err := r.do(req, "mark attendance", &created); err != nil {
		return nil, err
	}
	log.Printf("💾 Marked employee id=%d %s on %s", cmd.EmployeeID, cmd.Status, cmd.Date)
	return &created, nil
}

// RESTAuthRepository implements AuthRepository
type RESTAuthRepository struct {
	*restClient
}

func NewRESTAuthRepository(baseURL string, creds CredentialStore, httpClient *http.Client) *RESTAuthRepository {
	return &RESTAuthRepository{newRESTClient(baseURL, creds, httpClient)}
}

// Authenticate posts form-encoded credentials to /token and stores the
// returned access token. It never sends the current bearer.
func (r *RESTAuthRepository) Authenticate(ctx context.Context, username, password string) (*models.Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token models.Token
	if err := r.do(req, "authenticate", &token); err != nil {
		return nil, err
	}
	if token.AccessToken != "" {
		r.creds.SetToken(token.AccessToken)
		log.Printf("✅ Authenticated as %s", username)
	}
	return &token, nil
}

func (r *RESTAuthRepository) CurrentUser(ctx context.Context) (*models.User, error) {
	req, err := r.newJSONRequest(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := r.do(req, "current user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
