package models

import (
	"context"
	"errors"

	apperrors "github.com/FreightDesk/freight-desk-backend/errors"
	"github.com/FreightDesk/freight-desk-backend/internal/events"
	"github.com/FreightDesk/freight-desk-backend/logger"
	loadrules "github.com/FreightDesk/freight-desk-backend/models/load"
	"github.com/FreightDesk/freight-desk-backend/store"
	"github.com/FreightDesk/freight-desk-backend/types"
)

// LoadModel owns the load lifecycle: creating loads from classified tender
// emails, folding clarification replies back into the field bag, and status
// transitions. Every mutation re-runs validation so the persisted report and
// missing-field list never go stale.
type LoadModel struct {
	store     store.LoadStore
	publisher types.EventPublisher
}

func NewLoadModel(store store.LoadStore, publisher types.EventPublisher) *LoadModel {
	return &LoadModel{
		store:     store,
		publisher: publisher,
	}
}

// allowedTransitions maps each status to the statuses a broker may move it
// to directly. Validation-driven moves (AWAITING_INFO to READY) happen via
// ApplyClarification, not here.
var allowedTransitions = map[types.LoadStatus][]types.LoadStatus{
	types.LoadStatusAwaitingInfo: {types.LoadStatusCancelled},
	types.LoadStatusNeedsReview:  {types.LoadStatusReady, types.LoadStatusCancelled},
	types.LoadStatusReady:        {types.LoadStatusBooked, types.LoadStatusCancelled},
	types.LoadStatusBooked:       {types.LoadStatusCancelled},
	types.LoadStatusCancelled:    {},
}

// CreateFromEmail validates the extracted field bag and persists a new load
// for the email's thread. The returned load carries the validation report,
// so callers can decide whether a clarification email is needed.
func (lm *LoadModel) CreateFromEmail(ctx context.Context, email *types.InboundEmail, bag types.ShipmentFieldBag) (*types.Load, error) {
	log := logger.GetLogger()

	report := loadrules.Validate(&bag)
	load := types.Load{
		BrokerID:      email.BrokerID,
		ThreadID:      email.Thread(),
		ShipperEmail:  email.From,
		Subject:       email.Subject,
		Status:        statusForReport(&report),
		Category:      report.Category,
		FieldBag:      bag,
		Report:        &report,
		MissingFields: loadrules.MissingFields(&report),
	}

	id, err := lm.store.CreateLoad(ctx, load)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperrors.NewConflictError(
				"A load already exists for this email thread",
				"thread: "+load.ThreadID,
			)
		}
		log.Errorw("Failed to create load",
			"threadId", load.ThreadID,
			"error", err,
		)
		return nil, apperrors.NewDatabaseError(err)
	}
	load.ID = id

	lm.publishLifecycle(ctx, &load, types.EventTypeLoadCreated)
	lm.publishStatusEvent(ctx, &load)

	return &load, nil
}

// ApplyClarification merges a shipper's reply into the load attached to the
// thread, re-validates, and persists the refreshed bag, report, and status.
func (lm *LoadModel) ApplyClarification(ctx context.Context, threadID string, update types.ShipmentFieldBag) (*types.Load, error) {
	log := logger.GetLogger()

	load, err := lm.store.GetLoadByThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Load", threadID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	if load.Status == types.LoadStatusBooked || load.Status == types.LoadStatusCancelled {
		return nil, apperrors.ValidationFailed(
			"load is closed",
			"cannot apply shipper updates to a "+string(load.Status)+" load",
		)
	}

	merged := load.FieldBag.Merge(update)
	report := loadrules.Validate(&merged)
	status := statusForReport(&report)

	updated, err := lm.store.UpdateLoad(ctx, load.ID, types.LoadUpdate{
		Status:        status.Ptr(),
		Category:      report.Category.Ptr(),
		FieldBag:      &merged,
		Report:        &report,
		MissingFields: loadrules.MissingFields(&report),
	})
	if err != nil {
		log.Errorw("Failed to update load from clarification",
			"loadId", load.ID,
			"threadId", threadID,
			"error", err,
		)
		return nil, apperrors.NewDatabaseError(err)
	}

	lm.publishLifecycle(ctx, updated, types.EventTypeLoadUpdated)
	if updated.Status != load.Status {
		lm.publishStatusEvent(ctx, updated)
	}

	return updated, nil
}

// GetLoad retrieves a single load by ID.
func (lm *LoadModel) GetLoad(ctx context.Context, id string) (*types.Load, error) {
	load, err := lm.store.GetLoad(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.LoadNotFound(id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return load, nil
}

// ListLoads returns loads matching the filter, newest first.
func (lm *LoadModel) ListLoads(ctx context.Context, filter store.ListLoadsFilter) ([]*types.Load, error) {
	loads, err := lm.store.ListLoads(ctx, filter)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return loads, nil
}

// UpdateStatus moves a load to the requested status after checking the
// transition is legal for its current state.
func (lm *LoadModel) UpdateStatus(ctx context.Context, id string, next types.LoadStatus) (*types.Load, error) {
	load, err := lm.GetLoad(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(load.Status, next) {
		return nil, apperrors.InvalidStatusTransition(string(load.Status), string(next))
	}

	updated, err := lm.store.UpdateLoad(ctx, id, types.LoadUpdate{Status: next.Ptr()})
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	if next == types.LoadStatusCancelled {
		lm.publishLifecycle(ctx, updated, types.EventTypeLoadCancelled)
	} else {
		lm.publishLifecycle(ctx, updated, types.EventTypeLoadUpdated)
	}

	return updated, nil
}

func transitionAllowed(current, next types.LoadStatus) bool {
	for _, allowed := range allowedTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// statusForReport routes a validation result to an intake status. Incomplete
// loads park until the shipper replies; complete loads with warnings get a
// broker's eyes before tendering.
func statusForReport(report *types.ValidationReport) types.LoadStatus {
	if !report.IsComplete {
		return types.LoadStatusAwaitingInfo
	}
	if len(report.Warnings) > 0 {
		return types.LoadStatusNeedsReview
	}
	return types.LoadStatusReady
}

// publishStatusEvent emits the READY or NEEDS_REVIEW event matching the
// load's current status. AWAITING_INFO has no dedicated event; the
// clarification request event is emitted by the intake flow that sends it.
func (lm *LoadModel) publishStatusEvent(ctx context.Context, load *types.Load) {
	switch load.Status {
	case types.LoadStatusReady:
		lm.publishLifecycle(ctx, load, types.EventTypeLoadReady)
	case types.LoadStatusNeedsReview:
		lm.publishLifecycle(ctx, load, types.EventTypeLoadNeedsReview)
	}
}

// publishLifecycle emits a lifecycle event best-effort. Event delivery
// failures never fail the load mutation that triggered them.
func (lm *LoadModel) publishLifecycle(ctx context.Context, load *types.Load, eventType types.EventType) {
	if lm.publisher == nil {
		return
	}
	data := map[string]interface{}{
		"status":   load.Status,
		"category": load.Category,
	}
	if len(load.MissingFields) > 0 {
		data["missingFields"] = load.MissingFields
	}
	if err := events.PublishEventWithContext(lm.publisher, ctx, eventType, load.ID, load.BrokerID, data, "load-model"); err != nil {
		logger.GetLogger().Warnw("Failed to publish load event",
			"loadId", load.ID,
			"type", eventType,
			"error", err,
		)
	}
}
