package parser

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfeld/wheelhouse/internal/models"
)

func TestDecodeOptionSymbol(t *testing.T) {
	tests := []struct {
		name       string
		symbol     string
		wantOK     bool
		underlying string
		expiry     string
		typ        models.OptionType
		strike     float64
	}{
		{
			name:       "compact call",
			symbol:     "SPY240315C00610000",
			wantOK:     true,
			underlying: "SPY",
			expiry:     "2024-03-15",
			typ:        models.OptionCall,
			strike:     610,
		},
		{
			name:       "spaced put with fractional strike",
			symbol:     "TEST  251219P00045500",
			wantOK:     true,
			underlying: "TEST",
			expiry:     "2025-12-19",
			typ:        models.OptionPut,
			strike:     45.5,
		},
		{
			name:       "dotted ticker",
			symbol:     "BRK.B240119C00350000",
			wantOK:     true,
			underlying: "BRK.B",
			expiry:     "2024-01-19",
			typ:        models.OptionCall,
			strike:     350,
		},
		{
			name:       "hyphenated ticker only matches via trailing token",
			symbol:     "BF-B 240119C00350000",
			wantOK:     true,
			underlying: "BF-B",
			expiry:     "2024-01-19",
			typ:        models.OptionCall,
			strike:     350,
		},
		{name: "plain equity", symbol: "AAPL", wantOK: false},
		{name: "currency pair", symbol: "AUD.USD", wantOK: false},
		{name: "invalid month", symbol: "SPY249915C00610000", wantOK: false},
		{name: "zero strike", symbol: "SPY240315C00000000", wantOK: false},
		{name: "empty", symbol: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			od, ok := DecodeOptionSymbol(tt.symbol)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.underlying, od.Underlying)
			assert.Equal(t, tt.expiry, od.Expiry.Format("2006-01-02"))
			assert.Equal(t, tt.typ, od.Type)
			assert.InDelta(t, tt.strike, od.Strike, 0.001)
		})
	}
}

func TestOptionSymbolRoundTrip(t *testing.T) {
	expiries := []time.Time{
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
	}
	strikes := []float64{0.5, 12.125, 45, 610, 4125.5}

	for _, expiry := range expiries {
		for _, strike := range strikes {
			for _, typ := range []models.OptionType{models.OptionCall, models.OptionPut} {
				symbol := EncodeOptionSymbol("SPY", expiry, typ, strike)
				od, ok := DecodeOptionSymbol(symbol)
				require.True(t, ok, "symbol %s should decode", symbol)
				assert.Equal(t, "SPY", od.Underlying)
				assert.Equal(t, typ, od.Type)
				assert.True(t, od.Expiry.Equal(expiry), "expiry mismatch for %s", symbol)
				assert.True(t, math.Abs(od.Strike-strike) < 0.001,
					"strike %v decoded as %v from %s", strike, od.Strike, symbol)
			}
		}
	}
}
