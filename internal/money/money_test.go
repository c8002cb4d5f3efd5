package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	require.Equal(t, 3, MinorUnits("OMR"))
	require.Equal(t, 2, MinorUnits("USD"))
	require.Equal(t, 0, MinorUnits("JPY"))
	require.Equal(t, 2, MinorUnits("XXNOPE"))
}

func TestRoundHalfUp(t *testing.T) {
	// 1.0625 and 1.125 are exactly representable, so the half cases are
	// genuine ties and must round up, not to even.
	require.InDelta(t, 1.063, Round(1.0625, "OMR"), 1e-9)
	require.InDelta(t, 1.13, Round(1.125, "USD"), 1e-9)
	require.InDelta(t, 1.23, Round(1.2301, "USD"), 1e-9)
	require.InDelta(t, 1.24, Round(1.2399, "USD"), 1e-9)
	require.InDelta(t, 2.0, Round(1.5, "JPY"), 1e-9)
}

func TestFormat(t *testing.T) {
	require.Equal(t, "105.000", Format(105, "OMR"))
	require.Equal(t, "12.500 OMR", FormatWithCode(12.5, "OMR"))
	require.Equal(t, "1.99", Format(1.99, "USD"))
}

func TestTax(t *testing.T) {
	require.InDelta(t, 5.0, Tax(100, 5, "OMR"), 1e-9)
	require.Equal(t, "105.000", Format(100+Tax(100, 5, "OMR"), "OMR"))
	require.Equal(t, "Tax (5%)", TaxLabel(5))
	require.Equal(t, "Tax (0%)", TaxLabel(0))
	require.Zero(t, Tax(0, 0, "OMR"))
}
