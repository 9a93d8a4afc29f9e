package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleAmounts(t *testing.T) {
	total, profit := SaleAmounts(2, dec("325"), dec("219"))
	assert.True(t, total.Equal(dec("650")))
	assert.True(t, profit.Equal(dec("212")))

	total, profit = SaleAmounts(1, dec("100"), dec("150"))
	assert.True(t, total.Equal(dec("100")))
	assert.True(t, profit.Equal(dec("-50")))
}

func TestCheckStock(t *testing.T) {
	assert.NoError(t, CheckStock(3, 3))
	assert.ErrorIs(t, CheckStock(2, 3), ErrInsufficientStock)
}

func TestValidate_ReportsJSONFieldName(t *testing.T) {
	err := Validate(RecordSaleInput{ProductID: "p1", Quantity: 0})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDate_UnmarshalJSON(t *testing.T) {
	var in struct {
		Due Date `json:"due"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"due":"2026-07-01"}`), &in))
	assert.Equal(t, day(2026, 7, 1), in.Due.Time)

	require.NoError(t, json.Unmarshal([]byte(`{"due":"2026-07-01T12:00:00Z"}`), &in))
	assert.Equal(t, 12, in.Due.Hour())

	err := json.Unmarshal([]byte(`{"due":"01/07/2026"}`), &in)
	assert.ErrorIs(t, err, ErrValidation)
}
