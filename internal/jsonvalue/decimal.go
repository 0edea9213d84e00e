package jsonvalue

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// MaxExponent bounds the decimal order of magnitude of numbers that are
// converted to exact rationals. It covers every float64. Numbers beyond it
// are still compared exactly against in-range bounds, by sign and order of
// magnitude.
const MaxExponent = 400

// decimal is a parsed number literal, digits × 10^exp. digits carries no
// leading or trailing zeros; zero has empty digits.
type decimal struct {
	neg    bool
	digits string
	exp    int64
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// parseDecimal parses a JSON number literal without building big integers.
func parseDecimal(s string) (decimal, bool) {
	var d decimal
	if strings.HasPrefix(s, "-") {
		d.neg = true
		s = s[1:]
	}
	mant, expPart := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant, expPart = s[:i], s[i+1:]
	}
	intPart, frac := mant, ""
	if i := strings.IndexByte(mant, '.'); i >= 0 {
		intPart, frac = mant[:i], mant[i+1:]
	}
	if intPart == "" || !isDigits(intPart) || !isDigits(frac) {
		return decimal{}, false
	}

	if expPart != "" {
		e, err := strconv.ParseInt(expPart, 10, 64)
		switch {
		case errors.Is(err, strconv.ErrRange):
			// clamped far enough to stay out of range without overflowing
			e = math.MaxInt64 / 4
			if strings.HasPrefix(expPart, "-") {
				e = -e
			}
		case err != nil:
			return decimal{}, false
		}
		d.exp = e
	}

	all := strings.TrimLeft(intPart+frac, "0")
	d.digits = strings.TrimRight(all, "0")
	d.exp += int64(len(all)-len(d.digits)) - int64(len(frac))
	if d.digits == "" {
		return decimal{}, true
	}
	return d, true
}

func (d decimal) sign() int {
	switch {
	case d.digits == "":
		return 0
	case d.neg:
		return -1
	}
	return 1
}

// order is the decimal order of magnitude: 10^(order-1) <= |d| < 10^order.
func (d decimal) order() int64 {
	return d.exp + int64(len(d.digits))
}

func (d decimal) inRange() bool {
	if d.digits == "" {
		return true
	}
	o := d.order()
	return o <= MaxExponent && o >= -MaxExponent
}

func (d decimal) mantissa() *big.Int {
	if d.digits == "" {
		return new(big.Int)
	}
	m, _ := new(big.Int).SetString(d.digits, 10)
	if d.neg {
		m.Neg(m)
	}
	return m
}

func (d decimal) rat() *big.Rat {
	m := d.mantissa()
	if d.exp >= 0 {
		return new(big.Rat).SetInt(m.Mul(m, pow10(d.exp)))
	}
	return new(big.Rat).SetFrac(m, pow10(-d.exp))
}

func pow10(e int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(e), nil)
}

// outOfRange returns the decimal form of v when v is a number literal
// beyond MaxExponent.
func outOfRange(v any) (decimal, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return decimal{}, false
	}
	d, ok := parseDecimal(string(n))
	if !ok || d.inRange() {
		return decimal{}, false
	}
	return d, true
}

// Compare compares the number v with r, which must lie within MaxExponent.
// It reports false when v is not a number that can be ordered, such as NaN.
func Compare(v any, r *big.Rat) (int, bool) {
	if x, ok := Rat(v); ok {
		return x.Cmp(r), true
	}
	d, ok := outOfRange(v)
	if !ok {
		return 0, false
	}
	// |v| exceeds every in-range value, or is below every non-zero one
	if d.order() > 0 || r.Sign() == 0 {
		return d.sign(), true
	}
	return -r.Sign(), true
}

// MultipleOf reports whether v divided by divisor is an integer. divisor
// must be positive and lie within MaxExponent. The second result is false
// when v is not a number.
func MultipleOf(v any, divisor *big.Rat) (bool, bool) {
	if x, ok := Rat(v); ok {
		return new(big.Rat).Quo(x, divisor).IsInt(), true
	}
	d, ok := outOfRange(v)
	if !ok {
		return false, false
	}
	switch {
	case d.order() < 0:
		// 0 < |v| < divisor
		return false, true
	case d.exp < 0:
		// a long mantissa; the exact value costs no more than the literal
		return new(big.Rat).Quo(d.rat(), divisor).IsInt(), true
	}
	// v = m × 10^exp and divisor = p/q in lowest terms, so v/divisor is an
	// integer iff p divides m × 10^exp. 10^exp only contributes the factors
	// 2 and 5 of p, and neither occurs more than p.BitLen() times.
	p := new(big.Int).Abs(divisor.Num())
	e := min(d.exp, int64(p.BitLen()))
	m := d.mantissa()
	m.Mul(m, pow10(e))
	return new(big.Int).Mod(m, p).Sign() == 0, true
}
