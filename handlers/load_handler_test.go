package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FreightDesk/freight-desk-backend/config"
	"github.com/FreightDesk/freight-desk-backend/middleware"
	"github.com/FreightDesk/freight-desk-backend/models"
	"github.com/FreightDesk/freight-desk-backend/services"
	"github.com/FreightDesk/freight-desk-backend/store"
	"github.com/FreightDesk/freight-desk-backend/types"
)

type MockQuoteStore struct {
	mock.Mock
}

func (m *MockQuoteStore) CreateQuote(ctx context.Context, quote types.Quote) (string, error) {
	args := m.Called(ctx, quote)
	return args.String(0), args.Error(1)
}

func (m *MockQuoteStore) ListQuotesForLoad(ctx context.Context, loadID string) ([]*types.Quote, error) {
	args := m.Called(ctx, loadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Quote), args.Error(1)
}

type loadTestEnv struct {
	router     *gin.Engine
	loadStore  *MockLoadStore
	quoteStore *MockQuoteStore
}

func newLoadTestEnv(t *testing.T) *loadTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &loadTestEnv{
		loadStore:  new(MockLoadStore),
		quoteStore: new(MockQuoteStore),
	}

	loadModel := models.NewLoadModel(env.loadStore, nil)
	pricingCfg := &config.PricingConfig{
		TargetMarginPercent:   15,
		BaseFuelPrice:         "3.00",
		CurrentFuelPrice:      "4.00",
		HeavyLoadThresholdLbs: 45000,
		HeavyLoadCharge:       "150.00",
	}
	pricing, err := services.NewPricingService(pricingCfg, env.quoteStore, nil, nil)
	require.NoError(t, err)

	h := NewLoadHandler(loadModel, pricing, env.quoteStore)

	env.router = gin.New()
	env.router.Use(middleware.ErrorHandler())
	v1 := env.router.Group("/v1")
	v1.GET("/loads", h.ListLoads)
	v1.GET("/loads/:id", h.GetLoad)
	v1.GET("/loads/:id/validation", h.GetLoadValidation)
	v1.PATCH("/loads/:id/status", h.UpdateLoadStatus)
	v1.POST("/loads/:id/quote", h.CreateQuote)
	v1.GET("/loads/:id/quotes", h.ListQuotes)
	return env
}

func readyLoad() *types.Load {
	return &types.Load{
		ID:           "load-1",
		ThreadID:     "thread-1",
		ShipperEmail: "shipper@acme.com",
		Subject:      "Load Dallas to Houston",
		Status:       types.LoadStatusReady,
		Category:     types.FreightFTLDryVan,
		FieldBag: types.ShipmentFieldBag{
			PickupLocation:   types.StrPtr("Dallas, TX 75201"),
			DeliveryLocation: types.StrPtr("Houston, TX 77002"),
			Weight:           types.FloatPtr(35000),
			Commodity:        types.StrPtr("Electronics"),
			PickupDate:       types.StrPtr("2024-03-15"),
			EquipmentType:    types.StrPtr("Dry Van"),
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestLoadHandler_ListLoadsAppliesFilters(t *testing.T) {
	env := newLoadTestEnv(t)

	env.loadStore.On("ListLoads", mock.Anything, store.ListLoadsFilter{
		Status:       types.LoadStatusReady,
		ShipperEmail: "shipper@acme.com",
		Limit:        10,
		Offset:       20,
	}).Return([]*types.Load{readyLoad()}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/loads?status=ready&shipper_email=shipper@acme.com&limit=10&offset=20", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Loads []*types.Load `json:"loads"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "load-1", resp.Loads[0].ID)
	env.loadStore.AssertExpectations(t)
}

func TestLoadHandler_ListLoadsRejectsBadLimit(t *testing.T) {
	env := newLoadTestEnv(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/loads?limit=abc", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.loadStore.AssertNotCalled(t, "ListLoads", mock.Anything, mock.Anything)
}

func TestLoadHandler_GetLoadNotFound(t *testing.T) {
	env := newLoadTestEnv(t)

	env.loadStore.On("GetLoad", mock.Anything, "missing").Return(nil, store.ErrNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/loads/missing", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LOAD_NOT_FOUND", resp.Type)
}

func TestLoadHandler_GetLoadValidation(t *testing.T) {
	env := newLoadTestEnv(t)

	load := readyLoad()
	load.Status = types.LoadStatusAwaitingInfo
	load.MissingFields = []string{"weight", "commodity"}
	env.loadStore.On("GetLoad", mock.Anything, "load-1").Return(load, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/loads/load-1/validation", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		LoadID        string           `json:"loadId"`
		Status        types.LoadStatus `json:"status"`
		MissingFields []string         `json:"missingFields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "load-1", resp.LoadID)
	assert.Equal(t, types.LoadStatusAwaitingInfo, resp.Status)
	assert.Equal(t, []string{"weight", "commodity"}, resp.MissingFields)
}

func TestLoadHandler_UpdateStatusBooksReadyLoad(t *testing.T) {
	env := newLoadTestEnv(t)

	load := readyLoad()
	booked := *load
	booked.Status = types.LoadStatusBooked

	env.loadStore.On("GetLoad", mock.Anything, "load-1").Return(load, nil)
	env.loadStore.On("UpdateLoad", mock.Anything, "load-1", mock.MatchedBy(func(u types.LoadUpdate) bool {
		return u.Status != nil && *u.Status == types.LoadStatusBooked
	})).Return(&booked, nil)

	body := bytes.NewBufferString(`{"status": "BOOKED"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/v1/loads/load-1/status", body)
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp types.Load
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.LoadStatusBooked, resp.Status)
}

func TestLoadHandler_UpdateStatusRejectsIllegalTransition(t *testing.T) {
	env := newLoadTestEnv(t)

	load := readyLoad()
	load.Status = types.LoadStatusAwaitingInfo
	env.loadStore.On("GetLoad", mock.Anything, "load-1").Return(load, nil)

	body := bytes.NewBufferString(`{"status": "BOOKED"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/v1/loads/load-1/status", body)
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_STATUS_TRANSITION", resp.Type)
	env.loadStore.AssertNotCalled(t, "UpdateLoad", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadHandler_CreateQuote(t *testing.T) {
	env := newLoadTestEnv(t)

	env.loadStore.On("GetLoad", mock.Anything, "load-1").Return(readyLoad(), nil)
	env.quoteStore.On("CreateQuote", mock.Anything, mock.Anything).Return("quote-1", nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/loads/load-1/quote", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var quote types.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, "quote-1", quote.ID)
	assert.Equal(t, "load-1", quote.LoadID)
	assert.Equal(t, 240, quote.TotalMiles)
	env.quoteStore.AssertExpectations(t)
}

func TestLoadHandler_CreateQuoteRejectsAwaitingInfo(t *testing.T) {
	env := newLoadTestEnv(t)

	load := readyLoad()
	load.Status = types.LoadStatusAwaitingInfo
	env.loadStore.On("GetLoad", mock.Anything, "load-1").Return(load, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/loads/load-1/quote", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.quoteStore.AssertNotCalled(t, "CreateQuote", mock.Anything, mock.Anything)
}

func TestLoadHandler_ListQuotes(t *testing.T) {
	env := newLoadTestEnv(t)

	env.loadStore.On("GetLoad", mock.Anything, "load-1").Return(readyLoad(), nil)
	env.quoteStore.On("ListQuotesForLoad", mock.Anything, "load-1").
		Return([]*types.Quote{{ID: "quote-1", LoadID: "load-1", TotalMiles: 240}}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/loads/load-1/quotes", nil)
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		LoadID string         `json:"loadId"`
		Quotes []*types.Quote `json:"quotes"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "quote-1", resp.Quotes[0].ID)
}
