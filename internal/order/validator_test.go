package order

import (
	"testing"

	"craftly-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateInput() CreateOrderInput {
	price := int64(4500)
	return CreateOrderInput{
		CustomerName: "Mara Jensen",
		Items: []ItemInput{
			{SKU: "MUG-01", Name: "Stoneware mug", Qty: 1, Price: &price},
		},
		Addresses: []AddressInput{
			{Type: "shipping", Country: "DK", City: "Aarhus", Postal: "8000", Line1: "Mejlgade 12"},
		},
	}
}

func TestValidateCreate(t *testing.T) {
	t.Run("Valid payload", func(t *testing.T) {
		assert.NoError(t, ValidateCreate(validCreateInput()))
	})

	t.Run("Empty items always fails", func(t *testing.T) {
		input := validCreateInput()
		input.Items = nil

		err := ValidateCreate(input)
		require.Error(t, err)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "items")
	})

	t.Run("Empty addresses fails", func(t *testing.T) {
		input := validCreateInput()
		input.Addresses = nil

		var vErr *ValidationError
		require.ErrorAs(t, ValidateCreate(input), &vErr)
		assert.Contains(t, vErr.Fields, "addresses")
	})

	t.Run("Missing sku and non-positive qty", func(t *testing.T) {
		input := validCreateInput()
		input.Items[0].SKU = "  "
		input.Items[0].Qty = 0

		var vErr *ValidationError
		require.ErrorAs(t, ValidateCreate(input), &vErr)
		assert.Contains(t, vErr.Fields, "items[0].sku")
		assert.Contains(t, vErr.Fields, "items[0].qty")
	})

	t.Run("Negative price", func(t *testing.T) {
		input := validCreateInput()
		neg := int64(-1)
		input.Items[0].Price = &neg

		var vErr *ValidationError
		require.ErrorAs(t, ValidateCreate(input), &vErr)
		assert.Contains(t, vErr.Fields, "items[0].price")
	})

	t.Run("Bad address type and missing fields", func(t *testing.T) {
		input := validCreateInput()
		input.Addresses = []AddressInput{{Type: "warehouse"}}

		var vErr *ValidationError
		require.ErrorAs(t, ValidateCreate(input), &vErr)
		assert.Contains(t, vErr.Fields, "addresses[0].type")
		assert.Contains(t, vErr.Fields, "addresses[0].country")
		assert.Contains(t, vErr.Fields, "addresses[0].city")
		assert.Contains(t, vErr.Fields, "addresses[0].postal")
		assert.Contains(t, vErr.Fields, "addresses[0].line1")
	})

	t.Run("Negative total override", func(t *testing.T) {
		input := validCreateInput()
		neg := int64(-100)
		input.Total = &neg

		var vErr *ValidationError
		require.ErrorAs(t, ValidateCreate(input), &vErr)
		assert.Contains(t, vErr.Fields, "total")
	})
}

func TestValidatePayment(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, ValidatePayment(PaymentInput{Amount: 17500, Method: "card"}))
	})

	t.Run("Non-positive amount", func(t *testing.T) {
		var vErr *ValidationError
		require.ErrorAs(t, ValidatePayment(PaymentInput{Amount: 0, Method: "card"}), &vErr)
		assert.Contains(t, vErr.Fields, "amount")
	})

	t.Run("Missing method", func(t *testing.T) {
		var vErr *ValidationError
		require.ErrorAs(t, ValidatePayment(PaymentInput{Amount: 100, Method: " "}), &vErr)
		assert.Contains(t, vErr.Fields, "method")
	})
}

func TestValidateShipmentAndCancel(t *testing.T) {
	assert.NoError(t, ValidateShipment(ShipmentInput{}))
	assert.NoError(t, ValidateShipment(ShipmentInput{Carrier: "dhl", Tracking: "JD014"}))
	assert.NoError(t, ValidateCancel(CancelInput{}))
	assert.NoError(t, ValidateCancel(CancelInput{Reason: "customer request"}))
}

func TestValidateUpdate(t *testing.T) {
	t.Run("Allows non-lifecycle fields", func(t *testing.T) {
		assert.NoError(t, ValidateUpdate(UpdateOrderInput{
			Note:         utils.StrPtr("call before delivery"),
			CustomerName: utils.StrPtr("Mara J."),
		}))
	})

	t.Run("Rejects direct lifecycle writes", func(t *testing.T) {
		var vErr *ValidationError
		err := ValidateUpdate(UpdateOrderInput{
			OrderStatus:       utils.StrPtr("confirmed"),
			PaymentStatus:     utils.StrPtr("paid"),
			FulfillmentStatus: utils.StrPtr("shipped"),
		})
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "orderStatus")
		assert.Contains(t, vErr.Fields, "paymentStatus")
		assert.Contains(t, vErr.Fields, "fulfillmentStatus")
	})
}
