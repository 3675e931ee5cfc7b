package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	out, err := FormatAmount(decimal.RequireFromString("10"), "USD", "en-US")
	require.NoError(t, err)
	assert.True(t, len(out) > 0 && out[0] == '+', "got %q", out)
	assert.Contains(t, out, "10")

	out, err = FormatAmount(decimal.RequireFromString("-1234.5"), "EUR", "fr_FR")
	require.NoError(t, err)
	assert.Equal(t, byte('-'), out[0], "got %q", out)

	out, err = FormatAmount(decimal.Zero, "EUR", "fr-FR")
	require.NoError(t, err)
	assert.NotEqual(t, byte('+'), out[0])
	assert.NotEqual(t, byte('-'), out[0])

	_, err = FormatAmount(decimal.Zero, "XYZW", "en-US")
	assert.Error(t, err)
	_, err = FormatAmount(decimal.Zero, "USD", "not a locale!")
	assert.Error(t, err)
}

func TestIsISO4217(t *testing.T) {
	assert.True(t, IsISO4217("EUR"))
	assert.True(t, IsISO4217("USD"))
	assert.False(t, IsISO4217("eur"))
	assert.False(t, IsISO4217("EURO"))
	assert.False(t, IsISO4217("ZZZ"))
}
