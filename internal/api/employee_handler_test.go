package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/mocks"
	"github.com/phrazzld/rota-api/internal/service"
	"github.com/phrazzld/rota-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeeRouter(svc service.EmployeeService) chi.Router {
	h := NewEmployeeHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Get("/employees", h.ListEmployees)
	r.Post("/employees", h.CreateEmployee)
	r.Put("/employees/{id}", h.UpdateEmployee)
	return r
}

func TestListEmployees(t *testing.T) {
	var gotActiveOnly bool
	svc := &mocks.MockEmployeeService{
		ListEmployeesFn: func(ctx context.Context, actor *domain.Employee, activeOnly bool) ([]*domain.Employee, error) {
			gotActiveOnly = activeOnly
			return []*domain.Employee{worker, manager}, nil
		},
	}

	rec := do(t, employeeRouter(svc), manager, http.MethodGet, "/employees?active=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotActiveOnly)
	resp := decode[[]EmployeeResponse](t, rec)
	require.Len(t, resp, 2)
	assert.Equal(t, EmployeeResponse{ID: 1, Name: "Ana", Role: "worker", Active: true}, resp[0])

	rec = do(t, employeeRouter(svc), manager, http.MethodGet, "/employees?active=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, employeeRouter(svc), nil, http.MethodGet, "/employees", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateEmployee(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"created", `{"name":"Dora","email":"dora@example.com","role":"worker"}`, nil, http.StatusCreated},
		{"missing role", `{"name":"Dora"}`, nil, http.StatusBadRequest},
		{"bad email", `{"name":"Dora","email":"dora","role":"worker"}`, nil, http.StatusBadRequest},
		{"unknown role", `{"name":"Dora","role":"owner"}`,
			domain.NewValidationError("role", "does not exist", domain.ErrValidation), http.StatusBadRequest},
		{"forbidden", `{"name":"Dora","role":"worker"}`, domain.ErrForbidden, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mocks.MockEmployeeService{
				CreateEmployeeFn: func(ctx context.Context, actor *domain.Employee,
					req service.CreateEmployeeRequest) (*domain.Employee, error) {
					if tc.serviceErr != nil {
						return nil, tc.serviceErr
					}
					return &domain.Employee{ID: 7, Name: req.Name, Email: req.Email, Role: req.Role, Active: true}, nil
				},
			}
			rec := do(t, employeeRouter(svc), manager, http.MethodPost, "/employees", tc.body)
			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantStatus == http.StatusCreated {
				resp := decode[EmployeeResponse](t, rec)
				assert.Equal(t, int64(7), resp.ID)
				assert.True(t, resp.Active)
			}
		})
	}
}

func TestUpdateEmployee(t *testing.T) {
	var (
		gotID  int64
		gotReq service.UpdateEmployeeRequest
	)
	svc := &mocks.MockEmployeeService{
		UpdateEmployeeFn: func(ctx context.Context, actor *domain.Employee, id int64,
			req service.UpdateEmployeeRequest) (*domain.Employee, error) {
			if id == 42 {
				return nil, store.ErrEmployeeNotFound
			}
			gotID, gotReq = id, req
			return &domain.Employee{ID: id, Name: "Ana", Role: "worker", Active: *req.Active}, nil
		},
	}
	r := employeeRouter(svc)

	rec := do(t, r, manager, http.MethodPut, "/employees/1", `{"active":false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(1), gotID)
	require.NotNil(t, gotReq.Active)
	assert.False(t, *gotReq.Active)
	assert.Nil(t, gotReq.Name)
	assert.Nil(t, gotReq.Role)
	assert.False(t, decode[EmployeeResponse](t, rec).Active)

	rec = do(t, r, manager, http.MethodPut, "/employees/42", `{"active":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, manager, http.MethodPut, "/employees/abc", `{"active":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, manager, http.MethodPut, "/employees/1", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
