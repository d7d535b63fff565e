package order

import (
	"time"
)

type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
)

type FulfillmentStatus string

const (
	FulfillmentPending FulfillmentStatus = "pending"
	FulfillmentShipped FulfillmentStatus = "shipped"
)

type AddressType string

const (
	AddressShipping AddressType = "shipping"
	AddressBilling  AddressType = "billing"
)

// Order is the aggregate root. Items, addresses, payments and shipments are
// embedded and persisted as one unit; all mutation goes through the Service.
type Order struct {
	ID     string `json:"id"`
	Number string `json:"number"`

	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`

	Items     []OrderItem `json:"items"`
	Addresses []Address   `json:"addresses"`

	// Monetary amounts are integer minor units.
	Total    int64  `json:"total"`
	Currency string `json:"currency"`

	OrderStatus       OrderStatus       `json:"orderStatus"`
	PaymentStatus     PaymentStatus     `json:"paymentStatus"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillmentStatus"`

	Payments   []Payment `json:"payments"`
	AmountPaid int64     `json:"amountPaid"`

	Shipments []Shipment `json:"shipments"`

	Note           string `json:"note,omitempty"`
	CancelReason   string `json:"cancelReason,omitempty"`
	ShippingMethod string `json:"shippingMethod,omitempty"`
	ShippingPrice  int64  `json:"shippingPrice,omitempty"`

	ViewedByAdmin bool `json:"viewedByAdmin"`

	// Present only while the order is new and unpaid; the expiry sweep
	// cancels orders whose window has elapsed.
	ReservationExpiresAt *time.Time `json:"reservationExpiresAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Optimistic concurrency token, backed by a column rather than the JSON
	// document. Zero means the order has never been persisted.
	Version int64 `json:"-"`
}

type OrderItem struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Qty      int    `json:"qty"`
	Price    int64  `json:"price"`
	Discount int64  `json:"discount,omitempty"`
	Tax      int64  `json:"tax,omitempty"`
	Total    int64  `json:"total"`
	Color    string `json:"color,omitempty"`
	Image    string `json:"image,omitempty"`
}

// LineTotal computes qty * price - discount + tax.
func (i OrderItem) LineTotal() int64 {
	return int64(i.Qty)*i.Price - i.Discount + i.Tax
}

type Address struct {
	Type    AddressType `json:"type"`
	Country string      `json:"country"`
	City    string      `json:"city"`
	Postal  string      `json:"postal"`
	Line1   string      `json:"line1"`
	Line2   string      `json:"line2,omitempty"`
	Company string      `json:"company,omitempty"`
}

type Payment struct {
	Amount     int64     `json:"amount"`
	Method     string    `json:"method"`
	RecordedAt time.Time `json:"recordedAt"`
}

type Shipment struct {
	Carrier   string    `json:"carrier,omitempty"`
	Service   string    `json:"service,omitempty"`
	Tracking  string    `json:"tracking,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Overpaid reports whether recorded payments exceed the order total.
// Payments are never clamped; this flag makes the condition observable.
func (o *Order) Overpaid() bool {
	return o.AmountPaid > o.Total
}

// ShippingAddress returns the first shipping address, or nil.
func (o *Order) ShippingAddress() *Address {
	for i := range o.Addresses {
		if o.Addresses[i].Type == AddressShipping {
			return &o.Addresses[i]
		}
	}
	return nil
}

// ---- Input payloads (boundary -> validator -> service) ----

type CreateOrderInput struct {
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail"`

	Items     []ItemInput    `json:"items"`
	Addresses []AddressInput `json:"addresses"`

	// Total overrides the computed sum when supplied.
	Total    *int64 `json:"total"`
	Currency string `json:"currency"`

	Note           string `json:"note"`
	ShippingMethod string `json:"shippingMethod"`
	ShippingPrice  int64  `json:"shippingPrice"`
}

type ItemInput struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
	Qty  int    `json:"qty"`

	// Price may be omitted when the catalog can resolve the SKU.
	Price    *int64 `json:"price"`
	Discount int64  `json:"discount"`
	Tax      int64  `json:"tax"`
	Total    *int64 `json:"total"`
	Color    string `json:"color"`
	Image    string `json:"image"`
}

type AddressInput struct {
	Type    string `json:"type"`
	Country string `json:"country"`
	City    string `json:"city"`
	Postal  string `json:"postal"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	Company string `json:"company"`
}

type PaymentInput struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
}

type ShipmentInput struct {
	Carrier  string `json:"carrier"`
	Service  string `json:"service"`
	Tracking string `json:"tracking"`
}

type CancelInput struct {
	Reason string `json:"reason"`
}

// UpdateOrderInput is the generic patch payload. Lifecycle status fields are
// present only so the validator can reject attempts to set them directly.
type UpdateOrderInput struct {
	CustomerName   *string `json:"customerName"`
	CustomerPhone  *string `json:"customerPhone"`
	CustomerEmail  *string `json:"customerEmail"`
	Note           *string `json:"note"`
	ShippingMethod *string `json:"shippingMethod"`

	OrderStatus       *string `json:"orderStatus"`
	PaymentStatus     *string `json:"paymentStatus"`
	FulfillmentStatus *string `json:"fulfillmentStatus"`
}

// ---- Listing ----

type ListOptions struct {
	Status *OrderStatus
	Limit  int
	Offset int
}

type ListMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type OrderList struct {
	Results []*Order `json:"results"`
	Meta    ListMeta `json:"meta"`
}
