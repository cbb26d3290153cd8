package types

import "time"

// InboundEmail is the provider-agnostic shape delivered to the intake
// webhook. OAuth, IMAP polling, and webhook verification all live upstream;
// by the time a message reaches this backend it has been normalized.
type InboundEmail struct {
	MessageID  string            `json:"messageId" binding:"required"`
	ThreadID   string            `json:"threadId"`
	From       string            `json:"from" binding:"required"`
	To         []string          `json:"to,omitempty"`
	Subject    string            `json:"subject"`
	BodyText   string            `json:"bodyText" binding:"required"`
	BodyHTML   string            `json:"bodyHtml,omitempty"`
	ReceivedAt time.Time         `json:"receivedAt"`
	Headers    map[string]string `json:"headers,omitempty"`
	BrokerID   string            `json:"brokerId,omitempty"`
}

// Thread returns the conversation key: the explicit thread ID when the
// provider supplies one, otherwise the message ID.
func (e *InboundEmail) Thread() string {
	if e.ThreadID != "" {
		return e.ThreadID
	}
	return e.MessageID
}

// EmailData is the payload handed to the outbound email sender.
type EmailData struct {
	To           string
	Subject      string
	TemplateData map[string]interface{}
}
