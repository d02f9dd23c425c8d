package businessflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Phone Number":      "phonenumber",
		"phone_number":      "phonenumber",
		"PHONE-NUMBER":      "phonenumber",
		"  Customer Name  ": "customername",
		"order.sku":         "ordersku",
		"Qty":               "qty",
	}

	for raw, want := range cases {
		assert.Equal(t, want, normalizeHeader(raw))
	}
}

func TestResolveHeader(t *testing.T) {
	columns, err := resolveHeader([]string{"Date", "Customer Name", "Phone Number", "Order SKU", "Qty", "Price", "Ignored Column"})
	require.NoError(t, err)
	assert.Equal(t, "date", columns[0])
	assert.Equal(t, "name", columns[1])
	assert.Equal(t, "phone", columns[2])
	assert.Equal(t, "sku", columns[3])
	assert.Equal(t, "qty", columns[4])
	assert.Equal(t, "price", columns[5])
	_, mapped := columns[6]
	assert.False(t, mapped)

	_, err = resolveHeader([]string{"Date", "Customer Name", "Order SKU"})
	require.Error(t, err)
	assert.True(t, IsMissingImportColumns(err))

	_, err = resolveHeader([]string{"Date", "Customer Name", "Phone Number"})
	require.Error(t, err)
	assert.True(t, IsMissingImportColumns(err))

	_, err = resolveHeader([]string{"Phone"})
	require.Error(t, err)
	assert.True(t, IsMissingImportColumns(err))
}

func TestBuildImportedCall(t *testing.T) {
	t.Run("ValidRow", func(t *testing.T) {
		call, reason := buildImportedCall(importedRow{
			"date":  "2026-02-03",
			"name":  "Maryam Rahimi",
			"phone": "+989123456789",
			"sku":   "GL-500",
			"qty":   "2",
			"price": "499.00",
		})
		require.Empty(t, reason)
		assert.Equal(t, "Maryam Rahimi", call.CustomerName)
		assert.Equal(t, "+989123456789", call.Phone)
		require.NotNil(t, call.OrderSKU)
		assert.Equal(t, "GL-500", *call.OrderSKU)
		assert.Equal(t, 2, call.Quantity)
		assert.Equal(t, "499", call.CurrentPrice.String())
		assert.Equal(t, 2026, call.CallDate.Year())
	})

	t.Run("RejectsMissingFields", func(t *testing.T) {
		_, reason := buildImportedCall(importedRow{"phone": "+989123456789", "sku": "GL-500"})
		assert.Contains(t, reason, "name")

		_, reason = buildImportedCall(importedRow{"name": "Maryam", "sku": "GL-500"})
		assert.Contains(t, reason, "phone")

		_, reason = buildImportedCall(importedRow{"name": "Maryam", "phone": "+989123456789"})
		assert.Contains(t, reason, "order SKU")
	})

	t.Run("RejectsBadValues", func(t *testing.T) {
		_, reason := buildImportedCall(importedRow{"name": "A", "phone": "B", "sku": "GL-500", "date": "not-a-date"})
		assert.Contains(t, reason, "date")

		_, reason = buildImportedCall(importedRow{"name": "A", "phone": "B", "sku": "GL-500", "qty": "0"})
		assert.Contains(t, reason, "quantity")

		_, reason = buildImportedCall(importedRow{"name": "A", "phone": "B", "sku": "GL-500", "price": "-5"})
		assert.Contains(t, reason, "price")
	})
}

func TestParseCallDate(t *testing.T) {
	parsed, err := parseCallDate("2026-02-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), parsed)

	parsed, err = parseCallDate("2026-02-03T09:15:00Z")
	require.NoError(t, err)
	assert.Equal(t, 9, parsed.Hour())

	// Empty means now
	parsed, err = parseCallDate("  ")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)

	_, err = parseCallDate("03/02/2026")
	require.Error(t, err)
}

func TestBoundDuration(t *testing.T) {
	now := time.Now().UTC()

	assert.Nil(t, boundDuration(nil, now))

	start := now.Add(-90 * time.Second)
	seconds := boundDuration(&start, now)
	require.NotNil(t, seconds)
	assert.Equal(t, 90, *seconds)

	// Clock skew never yields a negative duration
	future := now.Add(time.Minute)
	seconds = boundDuration(&future, now)
	require.NotNil(t, seconds)
	assert.Equal(t, 0, *seconds)

	// Stale timers are clamped
	stale := now.Add(-48 * time.Hour)
	seconds = boundDuration(&stale, now)
	require.NotNil(t, seconds)
	assert.Equal(t, int(MaxCallDuration.Seconds()), *seconds)
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, "0.00", conversionRate(0, 0))
	assert.Equal(t, "0.00", conversionRate(5, 0))
	assert.Equal(t, "30.00", conversionRate(3, 10))
	assert.Equal(t, "33.33", conversionRate(1, 3))
	assert.Equal(t, "100.00", conversionRate(10, 10))
}
