// Package digest maps byte messages to integers so the signing schemes can
// operate on arbitrary-length input. Fixed-width digests come from the usual
// suspects; SumInRange stretches a SHAKE256 stream so the result can be
// reduced into a caller-chosen modulus without the bias a truncated
// fixed-width digest would carry.
package digest

import (
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cloudflare/circl/xof"
	"golang.org/x/crypto/blake2b"
)

// Algorithm names a fixed-width digest function.
type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	SHA512  Algorithm = "sha512"
	BLAKE2b Algorithm = "blake2b-256"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrUnknownAlgorithm is returned for an unrecognized Algorithm value.
	ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

	// ErrInvalidBound is returned when SumInRange is given a bound below 1.
	ErrInvalidBound = errors.New("bound must be positive")
)

// extraBits is the oversampling margin for SumInRange. Drawing this many bits
// beyond the bound's width keeps the modular reduction bias below 2^-64.
const extraBits = 64

// Sum digests msg with the named algorithm and returns the digest bytes
// interpreted as a big-endian integer.
func Sum(alg Algorithm, msg []byte) (*big.Int, error) {
	switch alg {
	case SHA256:
		h := sha256.Sum256(msg)
		return new(big.Int).SetBytes(h[:]), nil
	case SHA512:
		h := sha512.Sum512(msg)
		return new(big.Int).SetBytes(h[:]), nil
	case BLAKE2b:
		h := blake2b.Sum256(msg)
		return new(big.Int).SetBytes(h[:]), nil
	default:
		return nil, fmt.Errorf("%q: %w", alg, ErrUnknownAlgorithm)
	}
}

// SumInRange digests msg into an integer in [0, bound). The message is
// absorbed into a SHAKE256 stream and enough output is squeezed to make the
// final reduction mod bound statistically uniform, so the same message and
// bound always map to the same representative.
func SumInRange(msg []byte, bound *big.Int) (*big.Int, error) {
	if bound == nil || bound.Sign() <= 0 {
		return nil, ErrInvalidBound
	}

	stream := xof.SHAKE256.New()
	stream.Write(msg)

	buf := make([]byte, (bound.BitLen()+extraBits+7)/8)
	if _, err := io.ReadFull(stream, buf); err != nil {
		return nil, fmt.Errorf("squeezing digest stream: %w", err)
	}

	v := new(big.Int).SetBytes(buf)
	return v.Mod(v, bound), nil
}
