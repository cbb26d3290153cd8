// Package postgres implements the store interfaces on PostgreSQL via pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/FreightDesk/freight-desk-backend/store"
	"github.com/FreightDesk/freight-desk-backend/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const defaultListLimit = 50

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// DBConn is the subset of pgxpool.Pool the stores use. pgxmock satisfies it
// in tests.
type DBConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ensure pgLoadStore implements store.LoadStore.
var _ store.LoadStore = (*pgLoadStore)(nil)

type pgLoadStore struct {
	db DBConn
}

// NewPgLoadStore creates a new PostgreSQL load store.
func NewPgLoadStore(db DBConn) store.LoadStore {
	return &pgLoadStore{db: db}
}

const loadColumns = `id, broker_id, thread_id, shipper_email, subject, status,
       category, field_bag, report, missing_fields, created_at, updated_at`

// CreateLoad implements store.LoadStore.
func (s *pgLoadStore) CreateLoad(ctx context.Context, load types.Load) (string, error) {
	log := logger.GetLogger()

	fieldBag, err := json.Marshal(load.FieldBag)
	if err != nil {
		return "", fmt.Errorf("failed to marshal field bag: %w", err)
	}
	report, err := marshalReport(load.Report)
	if err != nil {
		return "", err
	}

	var id string
	err = s.db.QueryRow(ctx, `
        INSERT INTO loads (
            broker_id, thread_id, shipper_email, subject, status,
            category, field_bag, report, missing_fields
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id`,
		nullable(load.BrokerID),
		load.ThreadID,
		load.ShipperEmail,
		nullable(load.Subject),
		string(load.Status),
		string(load.Category),
		fieldBag,
		report,
		load.MissingFields,
	).Scan(&id)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("load exists for thread %s: %w", load.ThreadID, store.ErrConflict)
		}
		log.Errorw("Failed to create load", "threadId", load.ThreadID, "error", err)
		return "", fmt.Errorf("failed to insert load: %w", err)
	}

	log.Infow("Created load", "loadId", id, "threadId", load.ThreadID, "category", load.Category)
	return id, nil
}

// GetLoad implements store.LoadStore.
func (s *pgLoadStore) GetLoad(ctx context.Context, id string) (*types.Load, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+loadColumns+`
        FROM loads
        WHERE id = $1`, id)
	return scanLoad(row)
}

// GetLoadByThread implements store.LoadStore.
func (s *pgLoadStore) GetLoadByThread(ctx context.Context, threadID string) (*types.Load, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+loadColumns+`
        FROM loads
        WHERE thread_id = $1`, threadID)
	return scanLoad(row)
}

// ListLoads implements store.LoadStore.
func (s *pgLoadStore) ListLoads(ctx context.Context, filter store.ListLoadsFilter) ([]*types.Load, error) {
	query := `SELECT ` + loadColumns + ` FROM loads`

	var conditions []string
	var args []any
	addCondition := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.Status != "" {
		addCondition("status", string(filter.Status))
	}
	if filter.Category != "" {
		addCondition("category", string(filter.Category))
	}
	if filter.ShipperEmail != "" {
		addCondition("shipper_email", filter.ShipperEmail)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loads: %w", err)
	}
	defer rows.Close()

	var loads []*types.Load
	for rows.Next() {
		load, err := scanLoadRow(rows)
		if err != nil {
			return nil, err
		}
		loads = append(loads, load)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loads: %w", err)
	}
	return loads, nil
}

// UpdateLoad implements store.LoadStore. Only the non-nil fields of update
// are written; updated_at always advances.
func (s *pgLoadStore) UpdateLoad(ctx context.Context, id string, update types.LoadUpdate) (*types.Load, error) {
	log := logger.GetLogger()

	var sets []string
	var args []any
	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Status != nil {
		addSet("status", string(*update.Status))
	}
	if update.Category != nil {
		addSet("category", string(*update.Category))
	}
	if update.FieldBag != nil {
		fieldBag, err := json.Marshal(update.FieldBag)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field bag: %w", err)
		}
		addSet("field_bag", fieldBag)
	}
	if update.Report != nil {
		report, err := marshalReport(update.Report)
		if err != nil {
			return nil, err
		}
		addSet("report", report)
	}
	if update.MissingFields != nil {
		addSet("missing_fields", update.MissingFields)
	}

	if len(sets) == 0 {
		return s.GetLoad(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`
        UPDATE loads
        SET %s
        WHERE id = $%d
        RETURNING `+loadColumns,
		strings.Join(sets, ", "), len(args))

	load, err := scanLoad(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		log.Errorw("Failed to update load", "loadId", id, "error", err)
		return nil, err
	}
	return load, nil
}

// scanLoad scans a single-row query result, mapping pgx.ErrNoRows to
// store.ErrNotFound.
func scanLoad(row pgx.Row) (*types.Load, error) {
	load, err := scanLoadRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return load, nil
}

func scanLoadRow(row pgx.Row) (*types.Load, error) {
	var (
		load     types.Load
		brokerID *string
		subject  *string
		fieldBag []byte
		report   []byte
		status   string
		category string
	)
	err := row.Scan(
		&load.ID,
		&brokerID,
		&load.ThreadID,
		&load.ShipperEmail,
		&subject,
		&status,
		&category,
		&fieldBag,
		&report,
		&load.MissingFields,
		&load.CreatedAt,
		&load.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan load: %w", err)
	}

	load.BrokerID = types.StrValue(brokerID)
	load.Subject = types.StrValue(subject)
	load.Status = types.LoadStatus(status)
	load.Category = types.FreightCategory(category)

	if len(fieldBag) > 0 {
		if err := json.Unmarshal(fieldBag, &load.FieldBag); err != nil {
			return nil, fmt.Errorf("failed to unmarshal field bag: %w", err)
		}
	}
	if len(report) > 0 {
		var r types.ValidationReport
		if err := json.Unmarshal(report, &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal validation report: %w", err)
		}
		load.Report = &r
	}
	return &load, nil
}

func marshalReport(report *types.ValidationReport) ([]byte, error) {
	if report == nil {
		return nil, nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation report: %w", err)
	}
	return data, nil
}

// nullable maps empty strings to NULL for optional text columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
