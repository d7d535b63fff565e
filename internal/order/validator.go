package order

import (
	"fmt"
	"strings"
)

// Validation is pure: a payload either maps to a typed value or to a
// field-keyed error set. Nothing here touches storage.

func ValidateCreate(input CreateOrderInput) error {
	fields := map[string]string{}

	if len(input.Items) == 0 {
		fields["items"] = "at least one item is required"
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.SKU) == "" {
			fields[fmt.Sprintf("items[%d].sku", i)] = "required"
		}
		if item.Qty <= 0 {
			fields[fmt.Sprintf("items[%d].qty", i)] = "must be a positive integer"
		}
		if item.Price != nil && *item.Price < 0 {
			fields[fmt.Sprintf("items[%d].price", i)] = "must not be negative"
		}
		if item.Discount < 0 {
			fields[fmt.Sprintf("items[%d].discount", i)] = "must not be negative"
		}
		if item.Tax < 0 {
			fields[fmt.Sprintf("items[%d].tax", i)] = "must not be negative"
		}
	}

	if len(input.Addresses) == 0 {
		fields["addresses"] = "at least one address is required"
	}
	for i, addr := range input.Addresses {
		switch AddressType(addr.Type) {
		case AddressShipping, AddressBilling:
		default:
			fields[fmt.Sprintf("addresses[%d].type", i)] = "must be shipping or billing"
		}
		if strings.TrimSpace(addr.Country) == "" {
			fields[fmt.Sprintf("addresses[%d].country", i)] = "required"
		}
		if strings.TrimSpace(addr.City) == "" {
			fields[fmt.Sprintf("addresses[%d].city", i)] = "required"
		}
		if strings.TrimSpace(addr.Postal) == "" {
			fields[fmt.Sprintf("addresses[%d].postal", i)] = "required"
		}
		if strings.TrimSpace(addr.Line1) == "" {
			fields[fmt.Sprintf("addresses[%d].line1", i)] = "required"
		}
	}

	if input.Total != nil && *input.Total < 0 {
		fields["total"] = "must not be negative"
	}
	if input.ShippingPrice < 0 {
		fields["shippingPrice"] = "must not be negative"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func ValidatePayment(input PaymentInput) error {
	fields := map[string]string{}

	if input.Amount <= 0 {
		fields["amount"] = "must be a positive amount"
	}
	if strings.TrimSpace(input.Method) == "" {
		fields["method"] = "required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateShipment exists to keep the boundary symmetric; every field is
// optional and typed decoding already rejects non-string values.
func ValidateShipment(input ShipmentInput) error {
	return nil
}

func ValidateCancel(input CancelInput) error {
	return nil
}

// ValidateUpdate rejects direct writes to lifecycle status fields; those go
// through the dedicated operations only.
func ValidateUpdate(input UpdateOrderInput) error {
	fields := map[string]string{}

	if input.OrderStatus != nil {
		fields["orderStatus"] = "cannot be set directly; use the lifecycle operations"
	}
	if input.PaymentStatus != nil {
		fields["paymentStatus"] = "cannot be set directly; use the lifecycle operations"
	}
	if input.FulfillmentStatus != nil {
		fields["fulfillmentStatus"] = "cannot be set directly; use the lifecycle operations"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
