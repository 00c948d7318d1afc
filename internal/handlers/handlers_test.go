package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/redefine/facility/api/internal/errors"
	"github.com/redefine/facility/api/internal/logger"
	"github.com/redefine/facility/api/internal/mail"
	"github.com/redefine/facility/api/internal/middleware"
	"github.com/redefine/facility/api/internal/models"
	"github.com/redefine/facility/api/internal/places"
	"github.com/redefine/facility/api/internal/services"
	"github.com/redefine/facility/api/internal/vendors"
)

// mockBuildingService mocks services.BuildingService.
type mockBuildingService struct{ mock.Mock }

func (m *mockBuildingService) GetBuildingInfo(ctx context.Context, ticketID string) (*models.BuildingInfo, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuildingInfo), args.Error(1)
}

func (m *mockBuildingService) ListTenancies(ctx context.Context, partnerID int64) ([]models.TenancySummary, error) {
	args := m.Called(ctx, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TenancySummary), args.Error(1)
}

// mockVendorService mocks services.VendorService.
type mockVendorService struct{ mock.Mock }

func (m *mockVendorService) Recommended(ctx context.Context, ticketID string) ([]models.Vendor, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vendor), args.Error(1)
}

func (m *mockVendorService) SearchExternal(ctx context.Context, prompt string) ([]models.ExternalVendor, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ExternalVendor), args.Error(1)
}

func (m *mockVendorService) SaveExternalChoice(ctx context.Context, ticketID string, v models.ExternalVendor) (*models.Ticket, error) {
	args := m.Called(ctx, ticketID, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *mockVendorService) ImportChosenVendor(ctx context.Context, ticketID string) (int64, bool, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockVendorService) ResetVendorLink(ctx context.Context, ticketID string) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

// mockReportService mocks services.ReportService.
type mockReportService struct{ mock.Mock }

func (m *mockReportService) RenderCostReport(ctx context.Context, ticketID string) (*services.RenderedReport, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RenderedReport), args.Error(1)
}

func (m *mockReportService) ReplaceCostTable(ctx context.Context, ticketID string, rows []models.CostRow) error {
	args := m.Called(ctx, ticketID, rows)
	return args.Error(0)
}

// mockMailService mocks services.MailService.
type mockMailService struct{ mock.Mock }

func (m *mockMailService) InquiryDraft(ctx context.Context, ticketID string) (*mail.Draft, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Draft), args.Error(1)
}

func (m *mockMailService) OfferDraft(ctx context.Context, ticketID string) (*mail.Draft, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mail.Draft), args.Error(1)
}

// setupTestRouter registers the portal routes against the given handlers.
func setupTestRouter(building *BuildingHandler, vendor *VendorHandler, report *ReportHandler, mailH *MailHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	log := logger.New("test")
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	v1 := router.Group("/api/v1")
	{
		if building != nil {
			v1.GET("/tenancies", building.ListTenancies)
		}
		if vendor != nil {
			v1.POST("/vendors/search", vendor.Search)
		}

		tickets := v1.Group("/tickets/:id")
		{
			if building != nil {
				tickets.GET("/building", building.GetBuilding)
			}
			if vendor != nil {
				tickets.GET("/vendors/recommended", vendor.Recommended)
				tickets.PUT("/vendor", vendor.Choose)
				tickets.POST("/vendor/import", vendor.Import)
				tickets.POST("/vendor/reset", vendor.Reset)
			}
			if report != nil {
				tickets.PUT("/cost-table", report.ReplaceCostTable)
				tickets.GET("/report.pdf", report.Render)
			}
			if mailH != nil {
				tickets.GET("/mail/inquiry", mailH.Inquiry)
				tickets.GET("/mail/offer", mailH.Offer)
			}
		}
	}
	return router
}

func decodeErrorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Error.Code
}

func TestGetBuilding_Success(t *testing.T) {
	svc := new(mockBuildingService)
	svc.On("GetBuildingInfo", mock.Anything, "t1").Return(&models.BuildingInfo{
		TenancyID:   501,
		ObjektLabel: "RE-042 – Kantstraße 149 10623 Berlin",
	}, nil)
	router := setupTestRouter(NewBuildingHandler(svc), nil, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/t1/building", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp BuildingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(501), resp.Building.TenancyID)
}

func TestGetBuilding_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"ticket missing", services.ErrTicketNotFound, http.StatusNotFound, apierrors.ErrNotFound},
		{"no tenancy", services.ErrNoBuildingData, http.StatusUnprocessableEntity, apierrors.ErrNoBuildingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockBuildingService)
			svc.On("GetBuildingInfo", mock.Anything, "t1").Return(nil, tt.err)
			router := setupTestRouter(NewBuildingHandler(svc), nil, nil, nil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/t1/building", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeErrorCode(t, w.Body.Bytes()))
		})
	}
}

func TestListTenancies_RequiresPartnerID(t *testing.T) {
	svc := new(mockBuildingService)
	router := setupTestRouter(NewBuildingHandler(svc), nil, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenancies", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListTenancies")
}

func TestListTenancies_EmptyListIsOK(t *testing.T) {
	svc := new(mockBuildingService)
	svc.On("ListTenancies", mock.Anything, int64(42)).Return([]models.TenancySummary{}, nil)
	router := setupTestRouter(NewBuildingHandler(svc), nil, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenancies?partner_id=42", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp TenanciesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Count)
	assert.NotNil(t, resp.Tenancies)
}

func TestSearch_PreconditionMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty prompt", vendors.ErrEmptyPrompt, http.StatusUnprocessableEntity, apierrors.ErrEmptyPrompt},
		{"no api key", places.ErrMissingAPIKey, http.StatusUnprocessableEntity, apierrors.ErrNoPlacesKey},
		{"provider status", &places.StatusError{Status: "OVER_QUERY_LIMIT"}, http.StatusBadGateway, apierrors.ErrExternalSearch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockVendorService)
			svc.On("SearchExternal", mock.Anything, "Dachdecker").Return(nil, tt.err)
			router := setupTestRouter(nil, NewVendorHandler(svc), nil, nil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/vendors/search",
				strings.NewReader(`{"prompt": "Dachdecker"}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeErrorCode(t, w.Body.Bytes()))
		})
	}
}

func TestSearch_MissingPromptFailsValidation(t *testing.T) {
	svc := new(mockVendorService)
	router := setupTestRouter(nil, NewVendorHandler(svc), nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendors/search", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "SearchExternal")
}

func TestSearch_Success(t *testing.T) {
	svc := new(mockVendorService)
	rating := 4.5
	svc.On("SearchExternal", mock.Anything, "Dachdecker Berlin").Return([]models.ExternalVendor{
		{ID: "p1", Name: "Dach & Co", Rating: &rating, Source: "google_places"},
	}, nil)
	router := setupTestRouter(nil, NewVendorHandler(svc), nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendors/search",
		strings.NewReader(`{"prompt": "Dachdecker Berlin"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ExternalVendorListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Dach & Co", resp.Vendors[0].Name)
}

func TestImport_NoVendorSelected(t *testing.T) {
	svc := new(mockVendorService)
	svc.On("ImportChosenVendor", mock.Anything, "t1").Return(int64(0), false, services.ErrNoVendorSelected)
	router := setupTestRouter(nil, NewVendorHandler(svc), nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/t1/vendor/import", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apierrors.ErrNoVendorSelected, decodeErrorCode(t, w.Body.Bytes()))
}

func TestImport_Success(t *testing.T) {
	svc := new(mockVendorService)
	svc.On("ImportChosenVendor", mock.Anything, "t1").Return(int64(900), true, nil)
	router := setupTestRouter(nil, NewVendorHandler(svc), nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tickets/t1/vendor/import", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(900), resp.PartnerID)
	assert.True(t, resp.AlreadyImported)
}

func TestRender_StreamsPDFInline(t *testing.T) {
	svc := new(mockReportService)
	svc.On("RenderCostReport", mock.Anything, "t1").Return(&services.RenderedReport{
		Filename: "Kostenschaetzung_t1.pdf",
		PDF:      []byte("%PDF-1.4 fake"),
		Pages:    2,
	}, nil)
	router := setupTestRouter(nil, nil, NewReportHandler(svc), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/t1/report.pdf", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="Kostenschaetzung_t1.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", w.Header().Get("X-Report-Pages"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestRender_FailureCarriesDetails(t *testing.T) {
	svc := new(mockReportService)
	svc.On("RenderCostReport", mock.Anything, "t1").Return(nil, errors.New("font missing"))
	router := setupTestRouter(nil, nil, NewReportHandler(svc), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/t1/report.pdf", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apierrors.ErrRender, decodeErrorCode(t, w.Body.Bytes()))
	assert.Contains(t, w.Body.String(), "font missing")
}

func TestReplaceCostTable_DefaultsRowType(t *testing.T) {
	svc := new(mockReportService)
	svc.On("ReplaceCostTable", mock.Anything, "t1", mock.MatchedBy(func(rows []models.CostRow) bool {
		return len(rows) == 1 && rows[0].RowType == models.RowPosition
	})).Return(nil)
	router := setupTestRouter(nil, nil, NewReportHandler(svc), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tickets/t1/cost-table",
		strings.NewReader(`{"rows": [{"label": "Trocknung", "amount": 100}]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestReplaceCostTable_StoreFailure(t *testing.T) {
	svc := new(mockReportService)
	svc.On("ReplaceCostTable", mock.Anything, "t1", mock.Anything).
		Return(errors.New("connection reset"))
	router := setupTestRouter(nil, nil, NewReportHandler(svc), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tickets/t1/cost-table",
		strings.NewReader(`{"rows": [{"label": "Trocknung", "amount": 100}]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apierrors.ErrStoreUpdate, decodeErrorCode(t, w.Body.Bytes()))
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestReplaceCostTable_RejectsUnknownRowType(t *testing.T) {
	svc := new(mockReportService)
	router := setupTestRouter(nil, nil, NewReportHandler(svc), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tickets/t1/cost-table",
		strings.NewReader(`{"rows": [{"label": "x", "row_type": "bogus"}]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ReplaceCostTable")
}

func TestMailInquiry_ReturnsDraftWithHref(t *testing.T) {
	svc := new(mockMailService)
	svc.On("InquiryDraft", mock.Anything, "t1").Return(&mail.Draft{
		To:      "info@handwerk.example",
		Subject: "Anfrage – Wasserschaden",
		Body:    "Sehr geehrte Damen und Herren",
	}, nil)
	router := setupTestRouter(nil, nil, nil, NewMailHandler(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/t1/mail/inquiry", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp DraftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "info@handwerk.example", resp.To)
	assert.True(t, strings.HasPrefix(resp.Href, "mailto:info@handwerk.example?subject="))
	assert.NotContains(t, resp.Href, "+")
}

func TestMailOffer_NoVendorSelected(t *testing.T) {
	svc := new(mockMailService)
	svc.On("OfferDraft", mock.Anything, "t1").Return(nil, services.ErrNoVendorSelected)
	router := setupTestRouter(nil, nil, nil, NewMailHandler(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/t1/mail/offer", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apierrors.ErrNoVendorSelected, decodeErrorCode(t, w.Body.Bytes()))
}
