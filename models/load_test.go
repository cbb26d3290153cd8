package models

import (
	"context"
	"testing"

	apperrors "github.com/FreightDesk/freight-desk-backend/errors"
	"github.com/FreightDesk/freight-desk-backend/internal/events"
	"github.com/FreightDesk/freight-desk-backend/store"
	"github.com/FreightDesk/freight-desk-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func completeTenderBag() types.ShipmentFieldBag {
	return types.ShipmentFieldBag{
		PickupLocation:   types.StrPtr("Los Angeles, CA 90001"),
		DeliveryLocation: types.StrPtr("Dallas, TX 75201"),
		Weight:           types.FloatPtr(35000),
		Commodity:        types.StrPtr("Electronics"),
		PickupDate:       types.StrPtr("2024-03-15"),
		EquipmentType:    types.StrPtr("Dry Van"),
	}
}

func tenderEmail() *types.InboundEmail {
	return &types.InboundEmail{
		MessageID: "msg-1",
		ThreadID:  "thread-1",
		From:      "shipper@acme.com",
		Subject:   "Load tender LA to Dallas",
		BodyText:  "Need a dry van Friday",
		BrokerID:  "broker-1",
	}
}

func TestLoadModel_CreateFromEmail_Complete(t *testing.T) {
	mockStore := new(MockLoadStore)
	publisher := events.NewMockPublisher()
	model := NewLoadModel(mockStore, publisher)
	ctx := context.Background()

	mockStore.On("CreateLoad", ctx, mock.MatchedBy(func(l types.Load) bool {
		return l.ThreadID == "thread-1" &&
			l.Status == types.LoadStatusReady &&
			l.Category == types.FreightFTLDryVan
	})).Return("load-1", nil)

	load, err := model.CreateFromEmail(ctx, tenderEmail(), completeTenderBag())
	require.NoError(t, err)
	assert.Equal(t, "load-1", load.ID)
	assert.Equal(t, types.LoadStatusReady, load.Status)
	assert.True(t, load.Report.IsComplete)
	assert.Empty(t, load.MissingFields)

	published := publisher.PublishedEvents("load-1")
	require.Len(t, published, 2)
	assert.Equal(t, types.EventTypeLoadCreated, published[0].Type)
	assert.Equal(t, types.EventTypeLoadReady, published[1].Type)
	mockStore.AssertExpectations(t)
}

func TestLoadModel_CreateFromEmail_Incomplete(t *testing.T) {
	mockStore := new(MockLoadStore)
	model := NewLoadModel(mockStore, events.NewMockPublisher())
	ctx := context.Background()

	bag := types.ShipmentFieldBag{
		PickupLocation:   types.StrPtr("Chicago, IL"),
		DeliveryLocation: types.StrPtr("Atlanta, GA"),
	}

	mockStore.On("CreateLoad", ctx, mock.MatchedBy(func(l types.Load) bool {
		return l.Status == types.LoadStatusAwaitingInfo
	})).Return("load-2", nil)

	load, err := model.CreateFromEmail(ctx, tenderEmail(), bag)
	require.NoError(t, err)
	assert.Equal(t, types.LoadStatusAwaitingInfo, load.Status)
	assert.Equal(t, []string{"weight", "commodity", "pickup_date"}, load.MissingFields)
	mockStore.AssertExpectations(t)
}

func TestLoadModel_CreateFromEmail_WarningsNeedReview(t *testing.T) {
	mockStore := new(MockLoadStore)
	model := NewLoadModel(mockStore, events.NewMockPublisher())
	ctx := context.Background()

	bag := completeTenderBag()
	bag.EquipmentType = types.StrPtr("flatbed")
	bag.Dimensions = &types.Dimensions{
		Length: types.FloatPtr(480),
		Width:  types.FloatPtr(110),
		Height: types.FloatPtr(90),
	}

	mockStore.On("CreateLoad", ctx, mock.MatchedBy(func(l types.Load) bool {
		return l.Status == types.LoadStatusNeedsReview
	})).Return("load-3", nil)

	load, err := model.CreateFromEmail(ctx, tenderEmail(), bag)
	require.NoError(t, err)
	assert.True(t, load.Report.IsComplete)
	assert.NotEmpty(t, load.Report.Warnings)
	mockStore.AssertExpectations(t)
}

func TestLoadModel_CreateFromEmail_DuplicateThread(t *testing.T) {
	mockStore := new(MockLoadStore)
	model := NewLoadModel(mockStore, nil)
	ctx := context.Background()

	mockStore.On("CreateLoad", ctx, mock.Anything).Return("", store.ErrConflict)

	_, err := model.CreateFromEmail(ctx, tenderEmail(), completeTenderBag())
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ConflictError, appErr.Type)
}

func TestLoadModel_ApplyClarification(t *testing.T) {
	mockStore := new(MockLoadStore)
	publisher := events.NewMockPublisher()
	model := NewLoadModel(mockStore, publisher)
	ctx := context.Background()

	existing := &types.Load{
		ID:       "load-4",
		ThreadID: "thread-4",
		Status:   types.LoadStatusAwaitingInfo,
		FieldBag: types.ShipmentFieldBag{
			PickupLocation:   types.StrPtr("Chicago, IL"),
			DeliveryLocation: types.StrPtr("Atlanta, GA"),
			EquipmentType:    types.StrPtr("Dry Van"),
		},
	}
	mockStore.On("GetLoadByThread", ctx, "thread-4").Return(existing, nil)

	var captured types.LoadUpdate
	mockStore.On("UpdateLoad", ctx, "load-4", mock.MatchedBy(func(u types.LoadUpdate) bool {
		captured = u
		return u.Status != nil && *u.Status == types.LoadStatusReady
	})).Return(&types.Load{
		ID:       "load-4",
		ThreadID: "thread-4",
		Status:   types.LoadStatusReady,
		Category: types.FreightFTLDryVan,
	}, nil)

	update := types.ShipmentFieldBag{
		Weight:     types.FloatPtr(28000),
		Commodity:  types.StrPtr("Auto parts"),
		PickupDate: types.StrPtr("2024-03-18"),
	}
	updated, err := model.ApplyClarification(ctx, "thread-4", update)
	require.NoError(t, err)
	assert.Equal(t, types.LoadStatusReady, updated.Status)

	require.NotNil(t, captured.FieldBag)
	assert.Equal(t, "Chicago, IL", types.StrValue(captured.FieldBag.PickupLocation))
	assert.Equal(t, "Auto parts", types.StrValue(captured.FieldBag.Commodity))
	assert.Empty(t, captured.MissingFields)

	published := publisher.PublishedEvents("load-4")
	require.Len(t, published, 2)
	assert.Equal(t, types.EventTypeLoadUpdated, published[0].Type)
	assert.Equal(t, types.EventTypeLoadReady, published[1].Type)
	mockStore.AssertExpectations(t)
}

func TestLoadModel_ApplyClarification_UnknownThread(t *testing.T) {
	mockStore := new(MockLoadStore)
	model := NewLoadModel(mockStore, nil)
	ctx := context.Background()

	mockStore.On("GetLoadByThread", ctx, "thread-x").Return(nil, store.ErrNotFound)

	_, err := model.ApplyClarification(ctx, "thread-x", types.ShipmentFieldBag{})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.NotFoundError, appErr.Type)
}

func TestLoadModel_ApplyClarification_ClosedLoad(t *testing.T) {
	mockStore := new(MockLoadStore)
	model := NewLoadModel(mockStore, nil)
	ctx := context.Background()

	mockStore.On("GetLoadByThread", ctx, "thread-5").Return(&types.Load{
		ID:     "load-5",
		Status: types.LoadStatusCancelled,
	}, nil)

	_, err := model.ApplyClarification(ctx, "thread-5", types.ShipmentFieldBag{})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ValidationError, appErr.Type)
	mockStore.AssertNotCalled(t, "UpdateLoad", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadModel_UpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		current types.LoadStatus
		next    types.LoadStatus
		allowed bool
	}{
		{"ready to booked", types.LoadStatusReady, types.LoadStatusBooked, true},
		{"review to ready", types.LoadStatusNeedsReview, types.LoadStatusReady, true},
		{"booked to cancelled", types.LoadStatusBooked, types.LoadStatusCancelled, true},
		{"awaiting to booked", types.LoadStatusAwaitingInfo, types.LoadStatusBooked, false},
		{"cancelled to ready", types.LoadStatusCancelled, types.LoadStatusReady, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockStore := new(MockLoadStore)
			model := NewLoadModel(mockStore, events.NewMockPublisher())
			ctx := context.Background()

			mockStore.On("GetLoad", ctx, "load-6").Return(&types.Load{
				ID:     "load-6",
				Status: tc.current,
			}, nil)
			if tc.allowed {
				mockStore.On("UpdateLoad", ctx, "load-6", mock.Anything).Return(&types.Load{
					ID:     "load-6",
					Status: tc.next,
				}, nil)
			}

			updated, err := model.UpdateStatus(ctx, "load-6", tc.next)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, tc.next, updated.Status)
			} else {
				require.Error(t, err)
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, apperrors.InvalidStatusTransitionError, appErr.Type)
			}
			mockStore.AssertExpectations(t)
		})
	}
}

func TestLoadModel_GetLoad_NotFound(t *testing.T) {
	mockStore := new(MockLoadStore)
	model := NewLoadModel(mockStore, nil)
	ctx := context.Background()

	mockStore.On("GetLoad", ctx, "missing").Return(nil, store.ErrNotFound)

	_, err := model.GetLoad(ctx, "missing")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.LoadNotFoundError, appErr.Type)
}

func TestLoadModel_ListLoads(t *testing.T) {
	mockStore := new(MockLoadStore)
	model := NewLoadModel(mockStore, nil)
	ctx := context.Background()

	filter := store.ListLoadsFilter{Status: types.LoadStatusReady, Limit: 10}
	mockStore.On("ListLoads", ctx, filter).Return([]*types.Load{{ID: "a"}, {ID: "b"}}, nil)

	loads, err := model.ListLoads(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, loads, 2)
}
