package services

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/FreightDesk/freight-desk-backend/errors"
	"github.com/FreightDesk/freight-desk-backend/internal/events"
	"github.com/FreightDesk/freight-desk-backend/logger"
	loadrules "github.com/FreightDesk/freight-desk-backend/models/load"
	"github.com/FreightDesk/freight-desk-backend/types"
)

// ClarificationContent is the composed wording for one clarification
// request: a subject line, an opening paragraph, and the list of items the
// shipper still needs to supply.
type ClarificationContent struct {
	Subject string
	Intro   string
	Items   []string
}

// ClarificationComposer phrases a clarification request from a validated
// load. Production deployments can plug an LLM-backed composer in here; the
// service always falls back to deterministic template wording when the
// composer is absent or fails.
type ClarificationComposer interface {
	Compose(ctx context.Context, load *types.Load) (ClarificationContent, error)
}

// ClarificationService turns an incomplete load's validation report into an
// outbound email asking the shipper for exactly what is blocking the load.
type ClarificationService struct {
	composer  ClarificationComposer
	sender    EmailSender
	publisher types.EventPublisher
}

func NewClarificationService(composer ClarificationComposer, sender EmailSender, publisher types.EventPublisher) *ClarificationService {
	return &ClarificationService{
		composer:  composer,
		sender:    sender,
		publisher: publisher,
	}
}

// RequestClarification emails the shipper the list of fields blocking their
// load and emits a CLARIFICATION_REQUESTED event.
func (s *ClarificationService) RequestClarification(ctx context.Context, load *types.Load) error {
	log := logger.GetLogger()

	if load.Report == nil || load.Report.IsComplete {
		return apperrors.ValidationFailed(
			"nothing to clarify",
			fmt.Sprintf("load %s has no blocking issues", load.ID),
		)
	}

	content := s.composeContent(ctx, load)

	err := s.sender.SendClarificationEmail(ctx, types.EmailData{
		To:      load.ShipperEmail,
		Subject: content.Subject,
		TemplateData: map[string]interface{}{
			"Intro":   content.Intro,
			"Items":   content.Items,
			"LoadRef": load.ID,
		},
	})
	if err != nil {
		log.Errorw("Failed to send clarification email",
			"loadId", load.ID,
			"error", err,
		)
		return apperrors.EmailDeliveryFailed(err)
	}

	if s.publisher != nil {
		data := map[string]interface{}{
			"missingFields": load.MissingFields,
			"itemCount":     len(content.Items),
		}
		if err := events.PublishEventWithContext(s.publisher, ctx, types.EventTypeClarificationRequested, load.ID, load.BrokerID, data, "clarification-service"); err != nil {
			log.Warnw("Failed to publish clarification event", "loadId", load.ID, "error", err)
		}
	}

	return nil
}

func (s *ClarificationService) composeContent(ctx context.Context, load *types.Load) ClarificationContent {
	if s.composer != nil {
		content, err := s.composer.Compose(ctx, load)
		if err == nil && len(content.Items) > 0 {
			return content
		}
		if err != nil {
			logger.GetLogger().Warnw("Clarification composer failed, using template",
				"loadId", load.ID, "error", err)
		}
	}
	return templateContent(load)
}

// templateContent derives deterministic wording straight from the
// validation report. Items follow issue order; each blocked field appears
// once, with the failure reason attached when the value was present but
// rejected.
func templateContent(load *types.Load) ClarificationContent {
	subject := "Additional Information Needed"
	if load.Subject != "" {
		subject = fmt.Sprintf("Re: %s - Additional Information Needed", load.Subject)
	}

	intro := "Thank you for your load request."
	if lane := laneDescription(&load.FieldBag); lane != "" {
		intro = fmt.Sprintf("Thank you for your load request for %s.", lane)
	}
	intro += " To proceed, we need the following additional information:"

	var items []string
	seen := make(map[string]bool)
	for _, issue := range load.Report.Issues {
		if !issue.Blocking() || seen[issue.Field] {
			continue
		}
		seen[issue.Field] = true
		desc := loadrules.HumanFieldName(issue.Field)
		if issue.Kind != types.IssueMissing {
			desc = fmt.Sprintf("%s (%s)", desc, issue.Reason)
		}
		items = append(items, desc)
	}

	return ClarificationContent{
		Subject: subject,
		Intro:   intro,
		Items:   items,
	}
}

func laneDescription(bag *types.ShipmentFieldBag) string {
	pickup := strings.TrimSpace(types.StrValue(bag.PickupLocation))
	delivery := strings.TrimSpace(types.StrValue(bag.DeliveryLocation))
	if pickup == "" || delivery == "" {
		return ""
	}
	return pickup + " to " + delivery
}
