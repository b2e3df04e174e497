// Package randutil provides uniform big-integer sampling helpers shared by the
// key-generation and prime-search code. All functions accept an io.Reader as the
// entropy source; a nil reader selects crypto/rand.Reader.
package randutil

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ErrEmptyRange is returned when a requested sampling interval contains no values.
var ErrEmptyRange = errors.New("empty sampling range")

// Reader returns r, or crypto/rand.Reader when r is nil.
func Reader(r io.Reader) io.Reader {
	if r == nil {
		return crand.Reader
	}
	return r
}

// Int returns a uniformly random integer in the inclusive interval [min, max].
func Int(r io.Reader, min, max *big.Int) (*big.Int, error) {
	if min.Cmp(max) > 0 {
		return nil, fmt.Errorf("[%v, %v]: %w", min, max, ErrEmptyRange)
	}
	width := new(big.Int).Sub(max, min)
	width.Add(width, big.NewInt(1))
	n, err := crand.Int(Reader(r), width)
	if err != nil {
		return nil, fmt.Errorf("read random int: %w", err)
	}
	return n.Add(n, min), nil
}

// Bits returns a uniformly random integer in [0, 2^bits). The high bit is not
// forced, so the result may have fewer than bits significant bits.
func Bits(r io.Reader, bits int) (*big.Int, error) {
	if bits < 1 {
		return nil, fmt.Errorf("bit count %d: %w", bits, ErrEmptyRange)
	}
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(Reader(r), buf); err != nil {
		return nil, fmt.Errorf("read random bits: %w", err)
	}
	// Mask off excess high bits so the value stays below 2^bits.
	if excess := len(buf)*8 - bits; excess > 0 {
		buf[0] &= 0xFF >> excess
	}
	return new(big.Int).SetBytes(buf), nil
}
