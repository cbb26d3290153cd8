package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

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

type MockIntentClassifier struct {
	mock.Mock
}

func (m *MockIntentClassifier) ClassifyIntent(ctx context.Context, email *types.InboundEmail) (types.IntentResult, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(types.IntentResult), args.Error(1)
}

type MockFieldExtractor struct {
	mock.Mock
}

func (m *MockFieldExtractor) ExtractFields(ctx context.Context, email *types.InboundEmail) (types.ShipmentFieldBag, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(types.ShipmentFieldBag), args.Error(1)
}

type MockLoadStore struct {
	mock.Mock
}

func (m *MockLoadStore) CreateLoad(ctx context.Context, load types.Load) (string, error) {
	args := m.Called(ctx, load)
	return args.String(0), args.Error(1)
}

func (m *MockLoadStore) GetLoad(ctx context.Context, id string) (*types.Load, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Load), args.Error(1)
}

func (m *MockLoadStore) GetLoadByThread(ctx context.Context, threadID string) (*types.Load, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Load), args.Error(1)
}

func (m *MockLoadStore) ListLoads(ctx context.Context, filter store.ListLoadsFilter) ([]*types.Load, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Load), args.Error(1)
}

func (m *MockLoadStore) UpdateLoad(ctx context.Context, id string, update types.LoadUpdate) (*types.Load, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Load), args.Error(1)
}

type intakeTestEnv struct {
	router     *gin.Engine
	classifier *MockIntentClassifier
	extractor  *MockFieldExtractor
	loadStore  *MockLoadStore
}

func newIntakeTestEnv(t *testing.T, secret string) *intakeTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &intakeTestEnv{
		classifier: new(MockIntentClassifier),
		extractor:  new(MockFieldExtractor),
		loadStore:  new(MockLoadStore),
	}

	loadModel := models.NewLoadModel(env.loadStore, nil)
	cfg := &config.IntakeConfig{AutomationThreshold: 0.85, ReviewThreshold: 0.60}
	intake := services.NewIntakeService(cfg, env.classifier, env.extractor, loadModel, nil, nil)

	env.router = gin.New()
	env.router.Use(middleware.ErrorHandler())
	env.router.POST("/v1/emails/inbound", NewIntakeHandler(intake, secret).ProcessInboundEmail)
	return env
}

func postInbound(t *testing.T, router *gin.Engine, secret string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/emails/inbound", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func tenderPayload() *types.InboundEmail {
	return &types.InboundEmail{
		MessageID: "msg-1",
		ThreadID:  "thread-1",
		From:      "shipper@acme.com",
		Subject:   "Load Dallas to Houston",
		BodyText:  "Dry van, 35000 lbs of electronics, pickup 2024-03-15",
	}
}

func TestIntakeHandler_RejectsMissingSecret(t *testing.T) {
	env := newIntakeTestEnv(t, "s3cret")

	w := postInbound(t, env.router, "", tenderPayload())

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env.classifier.AssertNotCalled(t, "ClassifyIntent", mock.Anything, mock.Anything)
}

func TestIntakeHandler_RejectsWrongSecret(t *testing.T) {
	env := newIntakeTestEnv(t, "s3cret")

	w := postInbound(t, env.router, "wrong", tenderPayload())

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIntakeHandler_RejectsInvalidPayload(t *testing.T) {
	env := newIntakeTestEnv(t, "s3cret")

	// Missing the required from and bodyText fields
	w := postInbound(t, env.router, "s3cret", map[string]string{"messageId": "msg-1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Type)
}

func TestIntakeHandler_AutomatedTender(t *testing.T) {
	env := newIntakeTestEnv(t, "s3cret")

	env.classifier.On("ClassifyIntent", mock.Anything, mock.Anything).
		Return(types.IntentResult{Intent: types.IntentLoadTender, Confidence: 0.92}, nil)
	env.extractor.On("ExtractFields", mock.Anything, mock.Anything).
		Return(types.ShipmentFieldBag{
			PickupLocation:   types.StrPtr("Dallas, TX 75201"),
			DeliveryLocation: types.StrPtr("Houston, TX 77002"),
			Weight:           types.FloatPtr(35000),
			Commodity:        types.StrPtr("Electronics"),
			PickupDate:       types.StrPtr("2024-03-15"),
			EquipmentType:    types.StrPtr("Dry Van"),
		}, nil)
	env.loadStore.On("CreateLoad", mock.Anything, mock.Anything).Return("load-1", nil)

	w := postInbound(t, env.router, "s3cret", tenderPayload())

	require.Equal(t, http.StatusOK, w.Code)

	var result types.IntakeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, types.DecisionAutomated, result.Decision)
	assert.Equal(t, "load-1", result.LoadID)
	assert.Equal(t, types.LoadStatusReady, result.LoadStatus)
}

func TestIntakeHandler_FiltersSpam(t *testing.T) {
	env := newIntakeTestEnv(t, "")

	env.classifier.On("ClassifyIntent", mock.Anything, mock.Anything).
		Return(types.IntentResult{Intent: types.IntentSpamIrrelevant, Confidence: 0.9}, nil)

	w := postInbound(t, env.router, "", tenderPayload())

	require.Equal(t, http.StatusOK, w.Code)

	var result types.IntakeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, types.DecisionFilteredOut, result.Decision)
	env.extractor.AssertNotCalled(t, "ExtractFields", mock.Anything, mock.Anything)
}
