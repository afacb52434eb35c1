package adapter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/allisson/payments/internal/errors"
)

// Currencies whose minor unit equals the major unit. PayPal and Stripe both
// treat these as whole numbers.
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true,
	"CLP": true,
	"DJF": true,
	"GNF": true,
	"JPY": true,
	"KMF": true,
	"KRW": true,
	"MGA": true,
	"PYG": true,
	"RWF": true,
	"UGX": true,
	"VND": true,
	"VUV": true,
	"XAF": true,
	"XOF": true,
	"XPF": true,
}

// minorToDecimal renders an amount in minor units as the decimal string the
// PayPal API expects ("1099" cents -> "10.99").
func minorToDecimal(amount int64, currency string) string {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return strconv.FormatInt(amount, 10)
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

// decimalToMinor parses a PayPal decimal amount string back into minor units.
func decimalToMinor(value, currency string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.Wrap(errors.ErrInvalidInput, "empty amount value")
	}
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		n, err := strconv.ParseInt(strings.TrimSuffix(value, ".0"), 10, 64)
		if err != nil {
			return 0, errors.Wrapf(errors.ErrInvalidInput, "parse amount %q: %v", value, err)
		}
		return n, nil
	}

	negative := strings.HasPrefix(value, "-")
	value = strings.TrimPrefix(value, "-")
	whole, frac, _ := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, errors.Wrapf(errors.ErrInvalidInput, "amount %q has more than two decimal places", value)
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "parse amount %q: %v", value, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "parse amount %q: %v", value, err)
	}
	n := w*100 + f
	if negative {
		n = -n
	}
	return n, nil
}
