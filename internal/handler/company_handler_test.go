package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/draftpos/HavanoCompany/internal/dto"
	"github.com/draftpos/HavanoCompany/internal/service"
	"github.com/draftpos/HavanoCompany/pkg/middleware"
	"github.com/draftpos/HavanoCompany/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubProvisionService returns a canned result or error.
type stubProvisionService struct {
	result    *dto.RegisterCompanyResponse
	err       error
	requester string
}

func (s *stubProvisionService) Register(ctx context.Context, requester string, req *dto.RegisterCompanyRequest) (*dto.RegisterCompanyResponse, error) {
	s.requester = requester
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func registerRouter(stub *stubProvisionService, email string) *gin.Engine {
	router := gin.New()
	if email != "" {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyEmail, email)
		})
	}
	h := NewCompanyHandler(stub)
	router.POST("/api/v1/companies/register", h.Register)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	stub := &stubProvisionService{result: &dto.RegisterCompanyResponse{
		Company:     "Acme Retail",
		CompanyAbbr: "ACMown6789",
		Status:      dto.ProvisionCompleted,
	}}
	router := registerRouter(stub, "owner@acme.test")

	w := postJSON(t, router, "/api/v1/companies/register", `{"organization_name":"Acme Retail"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if stub.requester != "owner@acme.test" {
		t.Errorf("requester = %q, want %q", stub.requester, "owner@acme.test")
	}

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response does not parse: %v", err)
	}
	if !resp.Success {
		t.Error("expected success response")
	}
}

func TestRegisterEndpointGuest(t *testing.T) {
	stub := &stubProvisionService{result: &dto.RegisterCompanyResponse{Company: "Acme Retail"}}
	router := registerRouter(stub, "")

	w := postJSON(t, router, "/api/v1/companies/register",
		`{"organization_name":"Acme Retail","user_email":"owner@acme.test"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if stub.requester != "" {
		t.Errorf("requester = %q, want empty for guest flow", stub.requester)
	}
}

func TestRegisterEndpointValidation(t *testing.T) {
	stub := &stubProvisionService{}
	router := registerRouter(stub, "owner@acme.test")

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing organization name",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
			wantErr:  response.ErrCodeBadRequest,
		},
		{
			name:     "unknown industry",
			body:     `{"organization_name":"Acme Retail","industry":"Aerospace"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  response.ErrCodeInvalidIndustry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/v1/companies/register", tt.body)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var resp response.Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response does not parse: %v", err)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want code %q", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestRegisterEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{
			name:     "duplicate registration",
			err:      service.ErrDuplicateRegistration,
			wantCode: http.StatusConflict,
			wantErr:  response.ErrCodeDuplicateRegistration,
		},
		{
			name:     "storage contention",
			err:      service.ErrCompanyContention,
			wantCode: http.StatusConflict,
			wantErr:  response.ErrCodeProvisionConflict,
		},
		{
			name:     "unknown user",
			err:      service.ErrUserNotFound,
			wantCode: http.StatusNotFound,
			wantErr:  response.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := registerRouter(&stubProvisionService{err: tt.err}, "owner@acme.test")
			w := postJSON(t, router, "/api/v1/companies/register", `{"organization_name":"Acme Retail"}`)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var resp response.Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response does not parse: %v", err)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want code %q", resp.Error, tt.wantErr)
			}
		})
	}
}
