package services

import (
	"context"
	"strings"

	"github.com/FreightDesk/freight-desk-backend/types"
)

// IntentClassifier assigns an EmailIntent and confidence to an inbound
// email. The production deployment plugs an LLM-backed implementation in
// here; KeywordClassifier is the deterministic fallback that also serves as
// the safety net when the model is unavailable.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, email *types.InboundEmail) (types.IntentResult, error)
}

// KeywordClassifier scores emails against ordered keyword groups. Rules are
// checked most-specific first: a clarification reply or spam marker decides
// the intent outright, while tender keywords accumulate confidence per
// distinct hit.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	clarificationMarkers = []string{
		"additional information needed",
		"information needed",
		"missing info",
		"here's the missing",
		"in response to your email",
	}
	spamMarkers = []string{
		"unsubscribe",
		"special offer",
		"financing offer",
		"limited time",
		"click here",
	}
	quoteMarkers = []string{
		"per mile",
		"/mile",
		"can cover",
		"all-in rate",
	}
	bookingMarkers = []string{
		"confirmed",
		"booking confirmation",
		"pickup scheduled",
	}
	paymentMarkers = []string{
		"invoice",
		"payment",
		"billing",
		"remittance",
	}
	tenderKeywords = []string{
		"load",
		"freight",
		"shipment",
		"truck",
		"pickup",
		"delivery",
		"tender",
		"lbs",
		"pallets",
	}
)

func (c *KeywordClassifier) ClassifyIntent(_ context.Context, email *types.InboundEmail) (types.IntentResult, error) {
	subject := strings.ToLower(email.Subject)
	text := subject + " " + strings.ToLower(email.BodyText)

	// A reply to our own clarification request is the strongest signal we
	// have; it carries the load details the pipeline is waiting on.
	if strings.HasPrefix(subject, "re:") && containsAny(text, clarificationMarkers) {
		return types.IntentResult{
			Intent:     types.IntentMissingInfoResponse,
			Confidence: 0.9,
			Reasoning:  "reply to a clarification request with load details",
		}, nil
	}

	if containsAny(text, spamMarkers) {
		return types.IntentResult{
			Intent:     types.IntentSpamIrrelevant,
			Confidence: 0.9,
			Reasoning:  "marketing or automated content markers",
		}, nil
	}

	if containsAny(text, quoteMarkers) {
		return types.IntentResult{
			Intent:     types.IntentQuoteResponse,
			Confidence: 0.75,
			Reasoning:  "carrier pricing language",
		}, nil
	}

	if containsAny(text, bookingMarkers) {
		return types.IntentResult{
			Intent:     types.IntentBookingConfirmation,
			Confidence: 0.7,
			Reasoning:  "booking confirmation language",
		}, nil
	}

	if containsAny(text, paymentMarkers) {
		return types.IntentResult{
			Intent:     types.IntentPaymentInquiry,
			Confidence: 0.7,
			Reasoning:  "billing or payment language",
		}, nil
	}

	// Tender confidence scales with the number of distinct freight terms:
	// one stray "load" is ambiguous, a subject plus lane and weight detail
	// is nearly certain.
	hits := 0
	for _, kw := range tenderKeywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	if hits > 0 {
		confidence := 0.5 + 0.1*float64(hits)
		if confidence > 0.95 {
			confidence = 0.95
		}
		return types.IntentResult{
			Intent:     types.IntentLoadTender,
			Confidence: confidence,
			Reasoning:  "freight tender keywords present",
		}, nil
	}

	return types.IntentResult{
		Intent:     types.IntentUnknown,
		Confidence: 0.1,
		Reasoning:  "no recognizable freight language",
	}, nil
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
