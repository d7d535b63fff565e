package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"craftly-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Repository stores Order aggregates wholesale: the JSON document is the
// aggregate body, the status columns are derived on every put and exist for
// filtering and the expiry sweep.
type Repository interface {
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, opts ListOptions) (*OrderList, error)

	// Put upserts the full aggregate. A zero Version inserts; otherwise the
	// stored version must match or ErrVersionConflict is returned.
	Put(ctx context.Context, o *Order) error

	MarkViewed(ctx context.Context, ids []string) error

	ListExpiredReservations(ctx context.Context, now time.Time) ([]*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id string) (*Order, error) {
	query := `SELECT data, version FROM orders WHERE id = $1`

	var raw []byte
	var version int64

	err := r.db.QueryRowContext(ctx, query, id).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Err: err}
	}

	return decodeOrder(raw, version)
}

func (r *repository) List(ctx context.Context, opts ListOptions) (*OrderList, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	log := logger.FromCtx(ctx).With(
		zap.String("method", "List"),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	where := ` WHERE 1=1`
	args := []any{}
	argIndex := 1

	if opts.Status != nil {
		where += fmt.Sprintf(" AND o.order_status = $%d", argIndex)
		args = append(args, string(*opts.Status))
		argIndex++
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM orders o` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, &StorageError{Op: "list", Err: err}
	}

	// Ordering includes id as a tiebreaker so concurrent sweeps and reads do
	// not produce duplicate or missing pages.
	query := `SELECT o.data, o.version FROM orders o` + where +
		fmt.Sprintf(" ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, &StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	results := make([]*Order, 0, limit)
	for rows.Next() {
		var raw []byte
		var version int64
		if err := rows.Scan(&raw, &version); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, &StorageError{Op: "list", Err: err}
		}

		o, err := decodeOrder(raw, version)
		if err != nil {
			return nil, err
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, &StorageError{Op: "list", Err: err}
	}

	return &OrderList{
		Results: results,
		Meta:    ListMeta{Total: total, Limit: limit, Offset: offset},
	}, nil
}

func (r *repository) Put(ctx context.Context, o *Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return &StorageError{Op: "put", Err: err}
	}

	if o.Version == 0 {
		query := `
			INSERT INTO orders (
				id, number, order_status, payment_status, fulfillment_status,
				viewed_by_admin, reservation_expires_at, version, data,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,1,$8,$9,$10)
		`
		_, err = r.db.ExecContext(ctx, query,
			o.ID,
			o.Number,
			string(o.OrderStatus),
			string(o.PaymentStatus),
			string(o.FulfillmentStatus),
			o.ViewedByAdmin,
			o.ReservationExpiresAt,
			raw,
			o.CreatedAt,
			o.UpdatedAt,
		)
		if err != nil {
			return &StorageError{Op: "put", Err: err}
		}

		o.Version = 1
		return nil
	}

	query := `
		UPDATE orders SET
			number = $2,
			order_status = $3,
			payment_status = $4,
			fulfillment_status = $5,
			viewed_by_admin = $6,
			reservation_expires_at = $7,
			data = $8,
			updated_at = $9,
			version = version + 1
		WHERE id = $1 AND version = $10
	`
	res, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.Number,
		string(o.OrderStatus),
		string(o.PaymentStatus),
		string(o.FulfillmentStatus),
		o.ViewedByAdmin,
		o.ReservationExpiresAt,
		raw,
		o.UpdatedAt,
		o.Version,
	)
	if err != nil {
		return &StorageError{Op: "put", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return &StorageError{Op: "put", Err: err}
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	o.Version++
	return nil
}

func (r *repository) MarkViewed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	// jsonb_set keeps the document in step with the derived column.
	query := `
		UPDATE orders SET
			viewed_by_admin = TRUE,
			data = jsonb_set(data, '{viewedByAdmin}', 'true'::jsonb)
		WHERE id = ANY($1) AND viewed_by_admin = FALSE
	`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return &StorageError{Op: "mark_viewed", Err: err}
	}
	return nil
}

func (r *repository) ListExpiredReservations(ctx context.Context, now time.Time) ([]*Order, error) {
	query := `
		SELECT data, version FROM orders
		WHERE order_status = $1
		  AND payment_status = $2
		  AND reservation_expires_at IS NOT NULL
		  AND reservation_expires_at <= $3
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, string(StatusNew), string(PaymentUnpaid), now)
	if err != nil {
		return nil, &StorageError{Op: "list_expired", Err: err}
	}
	defer rows.Close()

	var results []*Order
	for rows.Next() {
		var raw []byte
		var version int64
		if err := rows.Scan(&raw, &version); err != nil {
			return nil, &StorageError{Op: "list_expired", Err: err}
		}

		o, err := decodeOrder(raw, version)
		if err != nil {
			return nil, err
		}
		results = append(results, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list_expired", Err: err}
	}

	return results, nil
}

func decodeOrder(raw []byte, version int64) (*Order, error) {
	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, &StorageError{Op: "decode", Err: err}
	}
	o.Version = version
	return &o, nil
}
