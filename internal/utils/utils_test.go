package utils

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	t.Run("SetUserContext round trip", func(t *testing.T) {
		ctx := SetUserContext(context.Background(), "admin@example.com", "ADMIN")

		assert.Equal(t, "admin@example.com", GetUserEmailFromContext(ctx))
		assert.Equal(t, "ADMIN", GetUserRoleFromContext(ctx))
	})

	t.Run("Empty context", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, GetUserEmailFromContext(ctx))
		assert.Empty(t, GetUserRoleFromContext(ctx))
	})
}

func TestIsInternalRequest(t *testing.T) {
	t.Run("Returns false for empty context", func(t *testing.T) {
		assert.False(t, IsInternalRequest(context.Background()))
	})

	t.Run("Returns true for internal request", func(t *testing.T) {
		assert.True(t, IsInternalRequest(WithInternalRequest(context.Background())))
	})
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, "something broke", 400)

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "something broke", body["error"])
}

func TestGenerateOrderNumber(t *testing.T) {
	t.Run("Format", func(t *testing.T) {
		num := GenerateOrderNumber()
		// Expected format: ORD-YYYYMMDD-HHMMSS-mmm-RRRR

		assert.True(t, strings.HasPrefix(num, "ORD-"), "Should start with ORD-")

		parts := strings.Split(num, "-")
		if assert.Len(t, parts, 5, "Should have 5 parts separated by hyphens") {
			assert.Equal(t, "ORD", parts[0])
			assert.Len(t, parts[1], 8, "Date part YYYYMMDD should be 8 chars")
			assert.Len(t, parts[2], 6, "Time part HHMMSS should be 6 chars")
			assert.Len(t, parts[3], 3, "Milliseconds part should be 3 chars")
			assert.Len(t, parts[4], 4, "Random part should be 4 chars")
		}
	})

	t.Run("Uniqueness", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			num := GenerateOrderNumber()
			assert.False(t, seen[num], "Generated a duplicate order number")
			seen[num] = true
		}
	})
}
