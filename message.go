package schoolbook

import (
	"math/big"
	"strings"
	"unicode/utf8"
)

// UnitsFromString converts text into message units, one unit per rune.
// Invalid UTF-8 decodes to utf8.RuneError the way Go string iteration always
// does; round-trips through StringFromUnits are exact for valid UTF-8.
func UnitsFromString(s string) []*big.Int {
	units := make([]*big.Int, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		units = append(units, big.NewInt(int64(r)))
	}
	return units
}

// StringFromUnits reassembles text from message units. A unit that is not a
// valid Unicode code point is an error; a decryption under the wrong key
// typically lands here rather than producing substitute characters.
func StringFromUnits(units []*big.Int) (string, error) {
	var b strings.Builder
	for i, u := range units {
		if u == nil {
			return "", &UnitError{Index: i, Detail: "missing unit"}
		}
		if !u.IsInt64() {
			return "", &UnitError{Index: i, Unit: u, Detail: "not a valid code point"}
		}
		v := u.Int64()
		if v < 0 || v > utf8.MaxRune || !utf8.ValidRune(rune(v)) {
			return "", &UnitError{Index: i, Unit: u, Detail: "not a valid code point"}
		}
		b.WriteRune(rune(v))
	}
	return b.String(), nil
}
