package types

// EmailIntent classifies the purpose of an inbound email before any field
// extraction runs. Only LOAD_TENDER and MISSING_INFO_RESPONSE proceed into
// the intake pipeline; the rest are routed to other handlers.
type EmailIntent string

const (
	IntentLoadTender          EmailIntent = "LOAD_TENDER"
	IntentMissingInfoResponse EmailIntent = "MISSING_INFO_RESPONSE"
	IntentQuoteResponse       EmailIntent = "QUOTE_RESPONSE"
	IntentGeneralInquiry      EmailIntent = "GENERAL_INQUIRY"
	IntentBookingConfirmation EmailIntent = "BOOKING_CONFIRMATION"
	IntentPaymentInquiry      EmailIntent = "PAYMENT_INQUIRY"
	IntentSpamIrrelevant      EmailIntent = "SPAM_IRRELEVANT"
	IntentUnknown             EmailIntent = "UNKNOWN"
)

// IntentResult is the classifier output: intent plus a confidence score in
// [0,1] used by the intake decision framework.
type IntentResult struct {
	Intent     EmailIntent `json:"intent"`
	Confidence float64     `json:"confidence"`
	Reasoning  string      `json:"reasoning,omitempty"`
}

// ProcessingDecision is how the intake pipeline disposed of an email.
type ProcessingDecision string

const (
	DecisionAutomated   ProcessingDecision = "AUTOMATED_PROCESSING"
	DecisionHumanReview ProcessingDecision = "HUMAN_REVIEW_REQUIRED"
	DecisionEscalation  ProcessingDecision = "IMMEDIATE_ESCALATION"
	DecisionFilteredOut ProcessingDecision = "FILTERED_OUT"
)

// IntakeResult summarizes one pass of the intake pipeline for the webhook
// response and the processing log.
type IntakeResult struct {
	Decision      ProcessingDecision `json:"decision"`
	Intent        IntentResult       `json:"intent"`
	LoadID        string             `json:"loadId,omitempty"`
	LoadStatus    LoadStatus         `json:"loadStatus,omitempty"`
	Report        *ValidationReport  `json:"report,omitempty"`
	Clarification bool               `json:"clarificationSent"`
	Reason        string             `json:"reason,omitempty"`
}
