package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/FreightDesk/freight-desk-backend/config"
	apperrors "github.com/FreightDesk/freight-desk-backend/errors"
	"github.com/FreightDesk/freight-desk-backend/internal/events"
	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/FreightDesk/freight-desk-backend/models"
	"github.com/FreightDesk/freight-desk-backend/types"
)

// FieldExtractor pulls shipment fields out of an inbound email. The
// production implementation calls an LLM; the engine only depends on this
// interface so intake stays testable and model-agnostic.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, email *types.InboundEmail) (types.ShipmentFieldBag, error)
}

// IntakeService is the front door of the pipeline. Every inbound email runs
// intent classification, then the decision framework routes it: filtered
// out, escalated, queued for review, or processed automatically into a load
// with a clarification email when fields are still missing.
type IntakeService struct {
	classifier    IntentClassifier
	extractor     FieldExtractor
	loads         *models.LoadModel
	clarification *ClarificationService
	publisher     types.EventPublisher

	automationThreshold float64
	reviewThreshold     float64
}

func NewIntakeService(
	cfg *config.IntakeConfig,
	classifier IntentClassifier,
	extractor FieldExtractor,
	loads *models.LoadModel,
	clarification *ClarificationService,
	publisher types.EventPublisher,
) *IntakeService {
	return &IntakeService{
		classifier:          classifier,
		extractor:           extractor,
		loads:               loads,
		clarification:       clarification,
		publisher:           publisher,
		automationThreshold: cfg.AutomationThreshold,
		reviewThreshold:     cfg.ReviewThreshold,
	}
}

// ProcessEmail runs the full intake pass for one email and reports how it
// was disposed of. Only classification and hard processing failures return
// an error; routing outcomes (filtered, review, escalation) are results.
func (s *IntakeService) ProcessEmail(ctx context.Context, email *types.InboundEmail) (*types.IntakeResult, error) {
	log := logger.GetLogger()

	intent, err := s.classifier.ClassifyIntent(ctx, email)
	if err != nil {
		log.Errorw("Intent classification failed",
			"messageId", email.MessageID,
			"error", err,
		)
		return nil, apperrors.Wrap(err, apperrors.ServerError, "intent classification failed")
	}

	result := &types.IntakeResult{Intent: intent}

	if !s.intentActionable(intent.Intent) {
		result.Decision = types.DecisionFilteredOut
		result.Reason = fmt.Sprintf("email classified as %s, not a load tender", intent.Intent)
		s.publishFiltered(ctx, email, intent)
		return result, nil
	}

	// Confidence gates, most restrictive last: below the review floor a
	// human takes over entirely, between the floors the email queues for
	// review, at or above the automation threshold the pipeline proceeds.
	if intent.Confidence < s.reviewThreshold {
		result.Decision = types.DecisionEscalation
		result.Reason = fmt.Sprintf("confidence %.2f below review threshold %.2f", intent.Confidence, s.reviewThreshold)
		return result, nil
	}
	if intent.Confidence < s.automationThreshold {
		result.Decision = types.DecisionHumanReview
		result.Reason = fmt.Sprintf("confidence %.2f below automation threshold %.2f", intent.Confidence, s.automationThreshold)
		return result, nil
	}

	bag, err := s.extractor.ExtractFields(ctx, email)
	if err != nil {
		log.Errorw("Field extraction failed",
			"messageId", email.MessageID,
			"error", err,
		)
		return nil, apperrors.ExtractionFailed(err)
	}

	var load *types.Load
	switch intent.Intent {
	case types.IntentMissingInfoResponse:
		load, err = s.loads.ApplyClarification(ctx, email.Thread(), bag)
		if isNotFound(err) {
			// No awaiting load on this thread; treat the reply as a
			// fresh tender rather than dropping the shipper's details.
			log.Infow("No load awaiting this thread, creating new load",
				"threadId", email.Thread())
			load, err = s.loads.CreateFromEmail(ctx, email, bag)
		}
	default:
		load, err = s.loads.CreateFromEmail(ctx, email, bag)
	}
	if err != nil {
		return nil, err
	}

	result.Decision = types.DecisionAutomated
	result.LoadID = load.ID
	result.LoadStatus = load.Status
	result.Report = load.Report

	if load.Status == types.LoadStatusAwaitingInfo && s.clarification != nil {
		if err := s.clarification.RequestClarification(ctx, load); err != nil {
			// The load is saved; a failed clarification email is
			// recoverable by the broker, not a pipeline failure.
			log.Errorw("Clarification request failed",
				"loadId", load.ID,
				"error", err,
			)
		} else {
			result.Clarification = true
		}
	}

	return result, nil
}

// intentActionable reports whether the intake pipeline owns this intent.
// Everything else is routed to other desks.
func (s *IntakeService) intentActionable(intent types.EmailIntent) bool {
	return intent == types.IntentLoadTender || intent == types.IntentMissingInfoResponse
}

func (s *IntakeService) publishFiltered(ctx context.Context, email *types.InboundEmail, intent types.IntentResult) {
	if s.publisher == nil {
		return
	}
	data := map[string]interface{}{
		"intent":     intent.Intent,
		"confidence": intent.Confidence,
		"subject":    email.Subject,
	}
	if err := events.PublishEventWithContext(s.publisher, ctx, types.EventTypeEmailFilteredOut, email.Thread(), email.BrokerID, data, "intake-service"); err != nil {
		logger.GetLogger().Warnw("Failed to publish filtered event",
			"messageId", email.MessageID,
			"error", err,
		)
	}
}

func isNotFound(err error) bool {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Type == apperrors.NotFoundError || appErr.Type == apperrors.LoadNotFoundError
	}
	return false
}
