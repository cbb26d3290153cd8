// Package store defines the persistence interfaces for loads and quotes.
package store

import (
	"context"

	"github.com/FreightDesk/freight-desk-backend/types"
)

// ListLoadsFilter narrows ListLoads. Zero values mean no filtering on that
// column; Limit 0 applies the store's default page size.
type ListLoadsFilter struct {
	Status       types.LoadStatus
	Category     types.FreightCategory
	ShipperEmail string
	Limit        int
	Offset       int
}

// LoadStore handles load persistence.
type LoadStore interface {
	// CreateLoad inserts a new load and returns its generated ID. Returns
	// ErrConflict when a load already exists for the same thread.
	CreateLoad(ctx context.Context, load types.Load) (string, error)
	// GetLoad retrieves a load by ID. Returns ErrNotFound when absent.
	GetLoad(ctx context.Context, id string) (*types.Load, error)
	// GetLoadByThread retrieves the load attached to an email thread, used
	// to route clarification replies back to their load.
	GetLoadByThread(ctx context.Context, threadID string) (*types.Load, error)
	// ListLoads returns loads matching the filter, newest first.
	ListLoads(ctx context.Context, filter ListLoadsFilter) ([]*types.Load, error)
	// UpdateLoad applies the non-nil fields of update and returns the
	// refreshed record.
	UpdateLoad(ctx context.Context, id string, update types.LoadUpdate) (*types.Load, error)
}

// QuoteStore handles quote persistence.
type QuoteStore interface {
	// CreateQuote inserts a priced quote and returns its generated ID.
	CreateQuote(ctx context.Context, quote types.Quote) (string, error)
	// ListQuotesForLoad returns all quotes for a load, newest first.
	ListQuotesForLoad(ctx context.Context, loadID string) ([]*types.Quote, error)
}
