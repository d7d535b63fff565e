package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"craftly-be/internal/catalog"
	"craftly-be/internal/logger"
	"craftly-be/internal/metrics"
	"craftly-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// putRetries bounds the read-mutate-put cycle under version conflicts.
const putRetries = 3

// notifyTimeout bounds the fire-and-forget dispatch after creation.
const notifyTimeout = 8 * time.Second

// Notifier delivers an order-created event to an external sink. It reports
// success or failure but never an error; dispatch failures must not affect
// order state.
type Notifier interface {
	OrderCreated(ctx context.Context, o *Order) bool
}

// Catalog resolves line-item names and prices at creation. Optional; without
// it, client-supplied item data is trusted as far as validation allows.
type Catalog interface {
	Lookup(ctx context.Context, sku string) (*catalog.Product, error)
}

type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, opts ListOptions, markViewed bool) (*OrderList, error)
	UpdateOrder(ctx context.Context, id string, input UpdateOrderInput) (*Order, error)
	ConfirmOrder(ctx context.Context, id string) (*Order, error)
	CancelOrder(ctx context.Context, id string, reason string) (*Order, error)
	AddPayment(ctx context.Context, id string, input PaymentInput) (*Order, error)
	CreateShipment(ctx context.Context, id string, input ShipmentInput) (*Shipment, error)
	ExpireReservations(ctx context.Context) (int, error)
}

type service struct {
	repo     Repository
	catalog  Catalog
	notifier Notifier

	reservationWindow time.Duration
	defaultCurrency   string

	stats *metrics.OrderMetrics

	now func() time.Time
}

func NewService(
	repo Repository,
	cat Catalog,
	notifier Notifier,
	reservationWindow time.Duration,
	defaultCurrency string,
) Service {
	return &service{
		repo:              repo,
		catalog:           cat,
		notifier:          notifier,
		reservationWindow: reservationWindow,
		defaultCurrency:   defaultCurrency,
		stats:             &metrics.OrderMetrics{},
		now:               time.Now,
	}
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Int("item_count", len(input.Items)),
	)

	if err := ValidateCreate(input); err != nil {
		log.Warn("create order rejected by validation", zap.Error(err))
		return nil, err
	}

	items, err := s.resolveItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(s.reservationWindow)

	currency := input.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	o := &Order{
		ID:     uuid.New().String(),
		Number: utils.GenerateOrderNumber(),

		CustomerName:  input.CustomerName,
		CustomerPhone: input.CustomerPhone,
		CustomerEmail: input.CustomerEmail,

		Items:     items,
		Addresses: makeAddresses(input.Addresses),

		Currency: currency,

		OrderStatus:       StatusNew,
		PaymentStatus:     PaymentUnpaid,
		FulfillmentStatus: FulfillmentPending,

		Payments:  []Payment{},
		Shipments: []Shipment{},

		Note:           input.Note,
		ShippingMethod: input.ShippingMethod,
		ShippingPrice:  input.ShippingPrice,

		ReservationExpiresAt: &expiresAt,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if input.Total != nil {
		o.Total = *input.Total
	} else {
		var sum int64
		for _, item := range o.Items {
			sum += item.Total
		}
		o.Total = sum + o.ShippingPrice
	}

	if err := s.repo.Put(ctx, o); err != nil {
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}

	s.stats.OrdersCreated.Inc()
	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("number", o.Number),
		zap.Int64("total", o.Total),
	)

	s.dispatchCreated(ctx, o)

	return o, nil
}

// dispatchCreated hands the notification off the request path. At most one
// attempt per creation; failure is observable only through logs and metrics.
func (s *service) dispatchCreated(ctx context.Context, o *Order) {
	if s.notifier == nil {
		return
	}

	log := logger.FromCtx(ctx).With(zap.String("order_id", o.ID))
	bg := context.WithoutCancel(ctx)

	go func() {
		nctx, cancel := context.WithTimeout(bg, notifyTimeout)
		defer cancel()

		if !s.notifier.OrderCreated(nctx, o) {
			s.stats.NotificationFailures.Inc()
			log.Warn("order created notification failed")
		}
	}()
}

func (s *service) resolveItems(ctx context.Context, inputs []ItemInput) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(inputs))

	for i, in := range inputs {
		item := OrderItem{
			SKU:      in.SKU,
			Name:     in.Name,
			Qty:      in.Qty,
			Discount: in.Discount,
			Tax:      in.Tax,
			Color:    in.Color,
			Image:    in.Image,
		}

		switch {
		case in.Price != nil:
			item.Price = *in.Price
		case s.catalog != nil:
			p, err := s.catalog.Lookup(ctx, in.SKU)
			if errors.Is(err, catalog.ErrProductNotFound) {
				return nil, &ValidationError{Fields: map[string]string{
					fmt.Sprintf("items[%d].sku", i): "unknown sku",
				}}
			}
			if err != nil {
				return nil, &StorageError{Op: "catalog_lookup", Err: err}
			}
			item.Price = p.Price
			if item.Name == "" {
				item.Name = p.Name
			}
			if item.Color == "" {
				item.Color = p.Color
			}
			if item.Image == "" {
				item.Image = p.ImageURL
			}
		default:
			return nil, &ValidationError{Fields: map[string]string{
				fmt.Sprintf("items[%d].price", i): "required",
			}}
		}

		if item.Name == "" {
			return nil, &ValidationError{Fields: map[string]string{
				fmt.Sprintf("items[%d].name", i): "required",
			}}
		}

		if in.Total != nil {
			item.Total = *in.Total
		} else {
			item.Total = item.LineTotal()
		}

		items = append(items, item)
	}

	return items, nil
}

func makeAddresses(inputs []AddressInput) []Address {
	addresses := make([]Address, 0, len(inputs))
	for _, in := range inputs {
		addresses = append(addresses, Address{
			Type:    AddressType(in.Type),
			Country: in.Country,
			City:    in.City,
			Postal:  in.Postal,
			Line1:   in.Line1,
			Line2:   in.Line2,
			Company: in.Company,
		})
	}
	return addresses
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) ListOrders(ctx context.Context, opts ListOptions, markViewed bool) (*OrderList, error) {
	list, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	if markViewed && len(list.Results) > 0 {
		ids := make([]string, 0, len(list.Results))
		for _, o := range list.Results {
			if !o.ViewedByAdmin {
				ids = append(ids, o.ID)
			}
		}

		if len(ids) > 0 {
			if err := s.repo.MarkViewed(ctx, ids); err != nil {
				// Badge state only; the listing itself stays usable.
				logger.FromCtx(ctx).Warn("failed to mark orders viewed", zap.Error(err))
			} else {
				for _, o := range list.Results {
					o.ViewedByAdmin = true
				}
			}
		}
	}

	return list, nil
}

func (s *service) UpdateOrder(ctx context.Context, id string, input UpdateOrderInput) (*Order, error) {
	if err := ValidateUpdate(input); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, "update", func(o *Order) error {
		if input.CustomerName != nil {
			o.CustomerName = *input.CustomerName
		}
		if input.CustomerPhone != nil {
			o.CustomerPhone = *input.CustomerPhone
		}
		if input.CustomerEmail != nil {
			o.CustomerEmail = *input.CustomerEmail
		}
		if input.Note != nil {
			o.Note = *input.Note
		}
		if input.ShippingMethod != nil {
			o.ShippingMethod = *input.ShippingMethod
		}
		return nil
	})
}

func (s *service) ConfirmOrder(ctx context.Context, id string) (*Order, error) {
	for attempt := 0; ; attempt++ {
		o, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		if o.OrderStatus == StatusCancelled {
			return nil, &InvalidTransitionError{From: o.OrderStatus, Op: "confirm"}
		}
		if o.OrderStatus == StatusConfirmed {
			// Idempotent no-op.
			return o, nil
		}

		o.OrderStatus = StatusConfirmed
		o.ReservationExpiresAt = nil
		o.UpdatedAt = s.now()

		err = s.repo.Put(ctx, o)
		if err == nil {
			logger.FromCtx(ctx).Info("order confirmed", zap.String("order_id", o.ID))
			return o, nil
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= putRetries-1 {
			return nil, err
		}
	}
}

func (s *service) CancelOrder(ctx context.Context, id string, reason string) (*Order, error) {
	o, err := s.mutate(ctx, id, "cancel", func(o *Order) error {
		if o.OrderStatus == StatusCancelled {
			return &InvalidTransitionError{From: o.OrderStatus, Op: "cancel"}
		}

		o.OrderStatus = StatusCancelled
		o.CancelReason = reason
		o.ReservationExpiresAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order cancelled",
		zap.String("order_id", o.ID),
		zap.String("reason", reason),
	)
	return o, nil
}

func (s *service) AddPayment(ctx context.Context, id string, input PaymentInput) (*Order, error) {
	if err := ValidatePayment(input); err != nil {
		return nil, err
	}

	o, err := s.mutate(ctx, id, "add payment", func(o *Order) error {
		if o.OrderStatus == StatusCancelled {
			return &InvalidTransitionError{From: o.OrderStatus, Op: "add payment"}
		}

		o.Payments = append(o.Payments, Payment{
			Amount:     input.Amount,
			Method:     input.Method,
			RecordedAt: s.now(),
		})
		o.AmountPaid += input.Amount

		switch {
		case o.AmountPaid >= o.Total:
			o.PaymentStatus = PaymentPaid
		case o.AmountPaid > 0:
			o.PaymentStatus = PaymentPartiallyPaid
		}

		// A paid or partially paid order is never auto-expired.
		o.ReservationExpiresAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("order_id", o.ID),
		zap.Int64("amount", input.Amount),
		zap.String("payment_status", string(o.PaymentStatus)),
	)
	if o.Overpaid() {
		log.Warn("order overpaid", zap.Int64("amount_paid", o.AmountPaid), zap.Int64("total", o.Total))
	} else {
		log.Info("payment recorded")
	}

	return o, nil
}

func (s *service) CreateShipment(ctx context.Context, id string, input ShipmentInput) (*Shipment, error) {
	if err := ValidateShipment(input); err != nil {
		return nil, err
	}

	var shipment Shipment
	_, err := s.mutate(ctx, id, "create shipment", func(o *Order) error {
		if o.OrderStatus == StatusCancelled {
			return &InvalidTransitionError{From: o.OrderStatus, Op: "create shipment"}
		}

		shipment = Shipment{
			Carrier:   input.Carrier,
			Service:   input.Service,
			Tracking:  input.Tracking,
			CreatedAt: s.now(),
		}
		o.Shipments = append(o.Shipments, shipment)
		o.FulfillmentStatus = FulfillmentShipped
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("shipment created",
		zap.String("order_id", id),
		zap.String("carrier", input.Carrier),
		zap.String("tracking", input.Tracking),
	)
	return &shipment, nil
}

// ExpireReservations cancels stale unpaid holds. Idempotent: cancelled orders
// no longer match the scan predicate, so an immediate re-run expires zero.
func (s *service) ExpireReservations(ctx context.Context) (int, error) {
	now := s.now()
	timer := metrics.StartTimer()
	log := logger.FromCtx(ctx).With(zap.String("method", "ExpireReservations"))

	candidates, err := s.repo.ListExpiredReservations(ctx, now)
	if err != nil {
		log.Error("failed to scan expired reservations", zap.Error(err))
		return 0, err
	}

	expired := 0
	for _, candidate := range candidates {
		_, err := s.mutate(ctx, candidate.ID, "expire", func(o *Order) error {
			// Re-check after the fresh read; a concurrent payment or
			// confirmation takes the order out of scope.
			if o.OrderStatus != StatusNew ||
				o.PaymentStatus != PaymentUnpaid ||
				o.ReservationExpiresAt == nil ||
				o.ReservationExpiresAt.After(now) {
				return errSkipExpiry
			}

			o.OrderStatus = StatusCancelled
			o.CancelReason = "reservation expired"
			o.ReservationExpiresAt = nil
			return nil
		})
		if errors.Is(err, errSkipExpiry) {
			continue
		}
		if err != nil {
			log.Warn("failed to expire order",
				zap.String("order_id", candidate.ID),
				zap.Error(err),
			)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.stats.OrdersExpired.Add(uint64(expired))
	}
	log.Info("reservation sweep finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("expired", expired),
		zap.Duration("duration", timer.Duration()),
	)

	return expired, nil
}

var errSkipExpiry = errors.New("order no longer eligible for expiry")

// mutate runs a read-mutate-put cycle with bounded retries on version
// conflicts. The aggregate is persisted in a single Put, never field by field.
func (s *service) mutate(ctx context.Context, id string, op string, fn func(o *Order) error) (*Order, error) {
	for attempt := 0; ; attempt++ {
		o, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := fn(o); err != nil {
			return nil, err
		}
		o.UpdatedAt = s.now()

		err = s.repo.Put(ctx, o)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= putRetries-1 {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
}
