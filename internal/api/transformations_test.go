package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"revision-runtime/backend/internal/doctest"
	"revision-runtime/backend/internal/repository"
	"revision-runtime/backend/pkg/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Documentation(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockService) ExecuteDoctest(ctx context.Context, id uuid.UUID, dir string) (*models.DoctestResponse, error) {
	args := m.Called(ctx, id, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DoctestResponse), args.Error(1)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestEcho(s *Server) *echo.Echo {
	e := echo.New()
	RegisterHandlers(e.Group("/api/v1"), s)
	return e
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestGetDocumentation(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("Documentation", mock.Anything, id).Return("# Add (Arithmetic)\n", nil)

	rec := serve(newTestEcho(NewServer(svc, nil)), http.MethodGet, "/api/v1/transformations/"+id.String()+"/documentation")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "# Add (Arithmetic)\n", rec.Body.String())
	svc.AssertExpectations(t)
}

func TestGetDocumentation_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("get: %w", repository.ErrNotFound), http.StatusNotFound},
		{"other", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			svc := new(MockService)
			svc.On("Documentation", mock.Anything, id).Return("", tt.err)

			target := "/api/v1/transformations/" + id.String() + "/documentation"
			rec := serve(newTestEcho(NewServer(svc, nil)), http.MethodGet, target)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get(echo.HeaderContentType))

			var problem ProblemDetails
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.status, problem.Status)
			assert.Equal(t, target, problem.Instance)
			assert.Contains(t, problem.Detail, tt.err.Error())
		})
	}
}

func TestGetDocumentation_InvalidID(t *testing.T) {
	svc := new(MockService)
	rec := serve(newTestEcho(NewServer(svc, nil)), http.MethodGet, "/api/v1/transformations/not-a-uuid/documentation")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Documentation", mock.Anything, mock.Anything)
}

func TestExecuteDoctest(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("ExecuteDoctest", mock.Anything, id, "").
		Return(&models.DoctestResponse{NofAttempted: 3, NofFailed: 0, Output: ""}, nil)

	rec := serve(newTestEcho(NewServer(svc, nil)), http.MethodPost, "/api/v1/transformations/"+id.String()+"/doctest")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(3), got["nof_attempted"])
	assert.Equal(t, float64(0), got["nof_failed"])
	assert.Equal(t, "", got["output"])
}

func TestExecuteDoctest_NotComponent(t *testing.T) {
	id := uuid.New()
	svc := new(MockService)
	svc.On("ExecuteDoctest", mock.Anything, id, "").
		Return(nil, fmt.Errorf("write code: %w", doctest.ErrNotComponent))

	rec := serve(newTestEcho(NewServer(svc, nil)), http.MethodPost, "/api/v1/transformations/"+id.String()+"/doctest")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	rec := serve(newTestEcho(NewServer(nil, pingFunc(func(ctx context.Context) error { return nil }))), http.MethodGet, "/api/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "ok", status.Checks["database"])
}

func TestHandleHealth_Degraded(t *testing.T) {
	db := pingFunc(func(ctx context.Context) error { return errors.New("connection refused") })
	rec := serve(newTestEcho(NewServer(nil, db)), http.MethodGet, "/api/v1/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "connection refused", status.Checks["database"])
}
