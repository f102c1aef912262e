package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-console/internal/models"
)

func TestEmployeeRepositoryAuthHeader(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantHeader string
	}{
		{name: "token present", token: "abc123", wantHeader: "Bearer abc123"},
		{name: "no token", token: "", wantHeader: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotHeader string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotHeader = r.Header.Get("Authorization")
				assert.NotEmpty(t, r.Header.Get(requestIDHeader))
				w.Write([]byte(`[]`))
			}))
			defer srv.Close()

			repo := NewRESTEmployeeRepository(srv.URL, NewSessionCredentials(tt.token), srv.Client())
			_, err := repo.List(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, gotHeader)
		})
	}
}

func TestEmployeeRepositoryCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/employees/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var cmd models.CreateEmployeeCommand
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&cmd))
		assert.Equal(t, "EMP003", cmd.EmployeeID)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Employee{ID: 3, EmployeeID: cmd.EmployeeID, FullName: cmd.FullName})
	}))
	defer srv.Close()

	repo := NewRESTEmployeeRepository(srv.URL+"/", nil, srv.Client())
	created, err := repo.Create(context.Background(), models.CreateEmployeeCommand{
		EmployeeID: "EMP003",
		FullName:   "Jane Doe",
		Email:      "jane@x.com",
		Department: "IT",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
}

func TestEmployeeRepositoryErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{name: "detail string", status: http.StatusBadRequest, body: `{"detail":"Employee ID already exists"}`, wantDetail: "Employee ID already exists"},
		{name: "detail array is ignored", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"}]}`, wantDetail: ""},
		{name: "no body", status: http.StatusInternalServerError, body: ``, wantDetail: ""},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"detail":"Not authenticated"}`, wantDetail: "Not authenticated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			repo := NewRESTEmployeeRepository(srv.URL, nil, srv.Client())
			_, err := repo.Create(context.Background(), models.CreateEmployeeCommand{EmployeeID: "EMP001"})
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.False(t, apiErr.Transport())
			assert.Equal(t, tt.wantDetail, Detail(err))
			if tt.wantDetail == "" {
				assert.Equal(t, "Failed to add employee", Message(err, "Failed to add employee"))
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	repo := NewRESTEmployeeRepository(url, nil, nil)
	_, err := repo.List(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Transport())
	assert.Equal(t, "fallback", Message(err, "fallback"))
}

func TestEmployeeRepositoryDelete(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	repo := NewRESTEmployeeRepository(srv.URL, nil, srv.Client())
	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.Equal(t, "/employees/3", gotPath)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestAttendanceRepositoryList(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`[{"id":1,"employee_id":7,"date":"2024-05-01","status":"Present"}]`))
	}))
	defer srv.Close()

	repo := NewRESTAttendanceRepository(srv.URL, nil, srv.Client())

	records, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].EmployeeID)
	assert.Equal(t, "2024-05-01", records[0].Date.String())
	assert.Equal(t, models.StatusPresent, records[0].Status)

	id := int64(7)
	_, err = repo.List(context.Background(), &id)
	require.NoError(t, err)

	assert.Equal(t, []string{"/attendance/", "/attendance/7"}, paths)
}

func TestAttendanceRepositoryCreateBody(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"id":10,"employee_id":7,"date":"2024-05-01","status":"Present"}`))
	}))
	defer srv.Close()

	date, err := models.ParseDate("2024-05-01")
	require.NoError(t, err)

	repo := NewRESTAttendanceRepository(srv.URL, nil, srv.Client())
	_, err = repo.Create(context.Background(), models.CreateAttendanceCommand{EmployeeID: 7, Date: date, Status: models.StatusPresent})
	require.NoError(t, err)

	assert.Equal(t, float64(7), raw["employee_id"])
	assert.Equal(t, "2024-05-01", raw["date"])
	assert.Equal(t, "Present", raw["status"])
}

func TestAuthenticateStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		if r.FormValue("username") != "admin" || r.FormValue("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Incorrect username or password"}`))
			return
		}
		w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer"}`))
	}))
	defer srv.Close()

	creds := NewSessionCredentials("stale")
	repo := NewRESTAuthRepository(srv.URL, creds, srv.Client())

	_, err := repo.Authenticate(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Incorrect username or password", Detail(err))
	assert.Equal(t, "stale", creds.Token())

	token, err := repo.Authenticate(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token.AccessToken)
	assert.Equal(t, "tok-1", creds.Token())
}

func TestClearedCredentialsFailPredictably(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Not authenticated"}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	creds := NewSessionCredentials("tok")
	repo := NewRESTEmployeeRepository(srv.URL, creds, srv.Client())

	_, err := repo.List(context.Background())
	require.NoError(t, err)

	creds.Clear()
	_, err = repo.List(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
