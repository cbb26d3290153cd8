package types

import (
	"time"
)

// LoadStatus tracks a load through the intake lifecycle.
type LoadStatus string

const (
	// LoadStatusAwaitingInfo means the shipper was asked for missing or
	// insufficient fields; the load is parked until a reply arrives.
	LoadStatusAwaitingInfo LoadStatus = "AWAITING_INFO"
	// LoadStatusReady means the field bag passed validation and the load
	// can be priced and tendered to carriers.
	LoadStatusReady LoadStatus = "READY"
	// LoadStatusNeedsReview means validation produced warnings (oversize,
	// soft weight range) that a broker should eyeball before tendering.
	LoadStatusNeedsReview LoadStatus = "NEEDS_REVIEW"
	LoadStatusBooked      LoadStatus = "BOOKED"
	LoadStatusCancelled   LoadStatus = "CANCELLED"
)

// Load is the persisted shipment record. FieldBag carries the merged
// extraction result; Report is the output of the latest validation pass.
type Load struct {
	ID            string            `json:"id"`
	BrokerID      string            `json:"brokerId,omitempty"`
	ThreadID      string            `json:"threadId"`
	ShipperEmail  string            `json:"shipperEmail"`
	Subject       string            `json:"subject,omitempty"`
	Status        LoadStatus        `json:"status"`
	Category      FreightCategory   `json:"category"`
	FieldBag      ShipmentFieldBag  `json:"fieldBag"`
	Report        *ValidationReport `json:"report,omitempty"`
	MissingFields []string          `json:"missingFields,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// LoadUpdate carries the mutable columns for a load update. Nil pointers
// leave the column untouched.
type LoadUpdate struct {
	Status        *LoadStatus       `json:"status,omitempty"`
	Category      *FreightCategory  `json:"category,omitempty"`
	FieldBag      *ShipmentFieldBag `json:"fieldBag,omitempty"`
	Report        *ValidationReport `json:"report,omitempty"`
	MissingFields []string          `json:"missingFields,omitempty"`
}

func (s LoadStatus) Ptr() *LoadStatus { return &s }

func (c FreightCategory) Ptr() *FreightCategory { return &c }
