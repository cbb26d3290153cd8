package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/FreightDesk/freight-desk-backend/store"
	"github.com/FreightDesk/freight-desk-backend/types"
	"github.com/shopspring/decimal"
)

// Ensure pgQuoteStore implements store.QuoteStore.
var _ store.QuoteStore = (*pgQuoteStore)(nil)

type pgQuoteStore struct {
	db DBConn
}

// NewPgQuoteStore creates a new PostgreSQL quote store.
func NewPgQuoteStore(db DBConn) store.QuoteStore {
	return &pgQuoteStore{db: db}
}

// CreateQuote implements store.QuoteStore.
func (s *pgQuoteStore) CreateQuote(ctx context.Context, quote types.Quote) (string, error) {
	log := logger.GetLogger()

	accessorials, err := marshalAccessorials(quote.Accessorials)
	if err != nil {
		return "", err
	}

	var id string
	err = s.db.QueryRow(ctx, `
        INSERT INTO quotes (
            load_id, total_miles, base_rate_per_mile, linehaul_rate,
            fuel_surcharge, accessorials, carrier_rate, rate_per_mile,
            shipper_rate, margin_percent, market_condition,
            confidence_score, pricing_notes, valid_until
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id`,
		quote.LoadID,
		quote.TotalMiles,
		quote.BaseRatePerMile,
		quote.LinehaulRate,
		quote.FuelSurcharge,
		accessorials,
		quote.CarrierRate,
		quote.RatePerMile,
		quote.ShipperRate,
		quote.MarginPercent,
		string(quote.MarketCondition),
		quote.ConfidenceScore,
		quote.PricingNotes,
		quote.ValidUntil,
	).Scan(&id)

	if err != nil {
		log.Errorw("Failed to create quote", "loadId", quote.LoadID, "error", err)
		return "", fmt.Errorf("failed to insert quote: %w", err)
	}

	log.Infow("Created quote", "quoteId", id, "loadId", quote.LoadID, "shipperRate", quote.ShipperRate)
	return id, nil
}

// ListQuotesForLoad implements store.QuoteStore.
func (s *pgQuoteStore) ListQuotesForLoad(ctx context.Context, loadID string) ([]*types.Quote, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, load_id, total_miles, base_rate_per_mile, linehaul_rate,
               fuel_surcharge, accessorials, carrier_rate, rate_per_mile,
               shipper_rate, margin_percent, market_condition,
               confidence_score, pricing_notes, valid_until, created_at
        FROM quotes
        WHERE load_id = $1
        ORDER BY created_at DESC`, loadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*types.Quote
	for rows.Next() {
		var (
			quote        types.Quote
			accessorials []byte
			condition    string
		)
		err := rows.Scan(
			&quote.ID,
			&quote.LoadID,
			&quote.TotalMiles,
			&quote.BaseRatePerMile,
			&quote.LinehaulRate,
			&quote.FuelSurcharge,
			&accessorials,
			&quote.CarrierRate,
			&quote.RatePerMile,
			&quote.ShipperRate,
			&quote.MarginPercent,
			&condition,
			&quote.ConfidenceScore,
			&quote.PricingNotes,
			&quote.ValidUntil,
			&quote.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quote.MarketCondition = types.MarketCondition(condition)
		if len(accessorials) > 0 {
			if err := json.Unmarshal(accessorials, &quote.Accessorials); err != nil {
				return nil, fmt.Errorf("failed to unmarshal accessorials: %w", err)
			}
		}
		quotes = append(quotes, &quote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}
	return quotes, nil
}

func marshalAccessorials(charges map[string]decimal.Decimal) ([]byte, error) {
	if len(charges) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(charges)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal accessorials: %w", err)
	}
	return data, nil
}
