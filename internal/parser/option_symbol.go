package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jfeld/wheelhouse/internal/models"
)

// Compact wire format: TICKER[YYMMDD][C/P][STRIKE*1000 zero-padded]
// Example: SPY240315C00610000 -> SPY, 2024-03-15, Call, strike 610.00
var optionPattern = regexp.MustCompile(`^([A-Z][A-Z0-9./]*?)(\d{6})([CP])(\d+)$`)

// Fallback for exports that keep a space between ticker and contract:
// "SPY  240315C00610000".
var tailPattern = regexp.MustCompile(`^(\d{6})([CP])(\d+)$`)

// DecodeOptionSymbol decodes a packed option symbol into its components.
// The second return value is false for anything that is not an option
// symbol; decoding never fails loudly.
func DecodeOptionSymbol(symbol string) (models.OptionDetails, bool) {
	compact := strings.Join(strings.Fields(symbol), "")
	if m := optionPattern.FindStringSubmatch(compact); m != nil {
		if od, ok := buildOption(m[1], m[2], m[3], m[4]); ok {
			return od, true
		}
	}

	fields := strings.Fields(symbol)
	if len(fields) >= 2 {
		if m := tailPattern.FindStringSubmatch(fields[len(fields)-1]); m != nil {
			return buildOption(fields[0], m[1], m[2], m[3])
		}
	}

	return models.OptionDetails{}, false
}

// EncodeOptionSymbol renders components back into the compact wire format.
// Primarily useful for tests and synthetic fixtures.
func EncodeOptionSymbol(underlying string, expiry time.Time, typ models.OptionType, strike float64) string {
	cp := "C"
	if typ == models.OptionPut {
		cp = "P"
	}
	millis := int64(strike*1000 + 0.5)
	return underlying + expiry.Format("060102") + cp + pad(millis, 8)
}

func buildOption(ticker, yymmdd, cp, strikeDigits string) (models.OptionDetails, bool) {
	// Two-digit years decode as 20YY.
	expiry, err := time.Parse("20060102", "20"+yymmdd)
	if err != nil {
		return models.OptionDetails{}, false
	}
	strikeMillis, err := strconv.ParseFloat(strikeDigits, 64)
	if err != nil || strikeMillis <= 0 {
		return models.OptionDetails{}, false
	}
	typ := models.OptionCall
	if cp == "P" {
		typ = models.OptionPut
	}
	return models.OptionDetails{
		Underlying: ticker,
		Expiry:     expiry,
		Type:       typ,
		Strike:     strikeMillis / 1000,
	}, true
}

func pad(v int64, width int) string {
	s := strconv.FormatInt(v, 10)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
