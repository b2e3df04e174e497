// Package primality implements the probabilistic primality oracle and the
// prime searches built on it.
//
// The oracle is Miller-Rabin with a configurable round count k. A Composite
// verdict is always correct; a Probably Prime verdict is wrong with
// probability at most 4^(-k). This is a probabilistic guarantee, not a proof —
// callers needing certainty must layer their own verification on top.
//
// All searches are bounded: every generation function takes a context checked
// on each iteration and carries an internal attempt budget scaled to the
// candidate size, surfacing a *TimeoutError instead of looping forever when a
// range is barren.
package primality

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/schoolbook/crypto-go/internal/randutil"
	"github.com/schoolbook/crypto-go/numtheory"
)

// DefaultRounds is the Miller-Rabin round count used when callers have no
// stronger requirement. Five rounds bound the false-positive probability by
// 4^-5 < 0.1%.
const DefaultRounds = 5

// attemptsPerBit scales the rejection-sampling budget: a search over
// candidates of n bits may draw up to attemptsPerBit*n candidates before
// giving up. By the prime number theorem the expected number of draws is
// close to n*ln(2)/2, so the budget leaves two orders of magnitude of slack.
const attemptsPerBit = 64

// Sentinel errors for errors.Is() checks
var (
	// ErrAttemptsExceeded is returned (wrapped in a *TimeoutError) when a
	// prime search uses up its attempt budget.
	ErrAttemptsExceeded = errors.New("prime search attempt budget exhausted")

	// ErrInvalidRounds is returned when a Miller-Rabin round count is not positive.
	ErrInvalidRounds = errors.New("round count must be positive")

	// ErrInvalidBitLength is returned when a requested bit length cannot
	// contain a prime of the required shape.
	ErrInvalidBitLength = errors.New("bit length too small")
)

// TimeoutError reports a bounded rejection-sampling search that exhausted its
// attempt budget without finding a prime.
type TimeoutError struct {
	Op       string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no prime found after %d attempts", e.Op, e.Attempts)
}

// Is implements errors.Is for sentinel error matching.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrAttemptsExceeded
}

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// IsProbablyPrime reports whether n is prime with one-sided error: false is
// definitive, true is wrong with probability at most 4^(-rounds). Witnesses
// are drawn from r (nil selects crypto/rand.Reader). The test decomposes
// n-1 = 2^s * d with d odd and runs the standard Miller-Rabin round per
// witness, declaring Composite the moment any round fails.
func IsProbablyPrime(r io.Reader, n *big.Int, rounds int) (bool, error) {
	if rounds < 1 {
		return false, fmt.Errorf("rounds %d: %w", rounds, ErrInvalidRounds)
	}
	if n.Cmp(two) < 0 {
		return false, nil
	}
	if n.Cmp(three) <= 0 {
		return true, nil
	}
	if n.Bit(0) == 0 {
		return false, nil
	}

	// n-1 = 2^s * d with d odd.
	d := new(big.Int).Sub(n, one)
	s := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		s++
	}

	nMinus1 := new(big.Int).Sub(n, one)
	nMinus2 := new(big.Int).Sub(n, two)

	for i := 0; i < rounds; i++ {
		a, err := randutil.Int(r, two, nMinus2)
		if err != nil {
			return false, fmt.Errorf("draw witness: %w", err)
		}
		x, err := numtheory.ModPow(a, d, n)
		if err != nil {
			return false, err
		}
		if x.Cmp(one) == 0 || x.Cmp(nMinus1) == 0 {
			continue
		}

		composite := true
		for j := 0; j < s-1; j++ {
			x.Mul(x, x)
			x.Mod(x, n)
			if x.Cmp(nMinus1) == 0 {
				composite = false
				break
			}
		}
		if composite {
			return false, nil
		}
	}
	return true, nil
}

// Prime returns a probable prime drawn uniformly from [min, max]: candidates
// are sampled, forced odd, and fed to the oracle until one passes. The search
// stops with a *TimeoutError once the attempt budget for the range's bit
// length is spent, and with ctx.Err() as soon as the context is done.
func Prime(ctx context.Context, r io.Reader, min, max *big.Int, rounds int) (*big.Int, error) {
	if min.Cmp(max) > 0 {
		return nil, fmt.Errorf("prime range [%v, %v]: %w", min, max, randutil.ErrEmptyRange)
	}

	limit := budget(max.BitLen())
	for attempt := 0; attempt < limit; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("prime search: %w", err)
		}

		candidate, err := randutil.Int(r, min, max)
		if err != nil {
			return nil, err
		}
		candidate.SetBit(candidate, 0, 1)
		if candidate.Cmp(max) > 0 {
			// Odd-forcing pushed the draw past the range.
			continue
		}

		ok, err := IsProbablyPrime(r, candidate, rounds)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
	}
	return nil, &TimeoutError{Op: "prime search", Attempts: limit}
}

// PrimeBits returns a probable prime of at most bits bits: candidates are
// uniform bits-bit values with the low bit forced to 1. The high bit is not
// forced, so the result is not guaranteed to have exactly bits bits —
// acceptable for this kernel's contract. Bounded like Prime.
func PrimeBits(ctx context.Context, r io.Reader, bits, rounds int) (*big.Int, error) {
	if bits < 2 {
		return nil, fmt.Errorf("%d bits: %w", bits, ErrInvalidBitLength)
	}

	limit := budget(bits)
	for attempt := 0; attempt < limit; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("prime search: %w", err)
		}

		candidate, err := randutil.Bits(r, bits)
		if err != nil {
			return nil, err
		}
		candidate.SetBit(candidate, 0, 1)

		ok, err := IsProbablyPrime(r, candidate, rounds)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
	}
	return nil, &TimeoutError{Op: "prime search", Attempts: limit}
}

// SafePrime returns a probable safe prime p = 2q+1 of bits bits, with q also a
// probable prime. Candidates for q have their top bit forced so p lands on the
// requested size, and both q and p are screened against a table of small
// primes before any Miller-Rabin rounds run. Safe primes are sparse, so the
// attempt budget is quadratic in the bit length rather than linear.
func SafePrime(ctx context.Context, r io.Reader, bits, rounds int) (*big.Int, error) {
	if bits < 3 {
		return nil, fmt.Errorf("%d bits: %w", bits, ErrInvalidBitLength)
	}

	p := new(big.Int)
	limit := 4 * bits * bits
	for attempt := 0; attempt < limit; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("safe prime search: %w", err)
		}

		q, err := randutil.Bits(r, bits-1)
		if err != nil {
			return nil, err
		}
		q.SetBit(q, 0, 1)
		q.SetBit(q, bits-2, 1)

		p.Lsh(q, 1)
		p.Add(p, one)
		if hasSmallFactor(q) || hasSmallFactor(p) {
			continue
		}

		if ok, err := IsProbablyPrime(r, q, rounds); err != nil || !ok {
			if err != nil {
				return nil, err
			}
			continue
		}
		if ok, err := IsProbablyPrime(r, p, rounds); err != nil || !ok {
			if err != nil {
				return nil, err
			}
			continue
		}
		return p, nil
	}
	return nil, &TimeoutError{Op: "safe prime search", Attempts: limit}
}

// budget returns the attempt cap for a search over candidates of the given
// bit length.
func budget(bits int) int {
	if bits < 16 {
		bits = 16
	}
	return attemptsPerBit * bits
}

// smallPrimes holds the odd primes below 1<<10, used to cheaply reject safe
// prime candidates before running Miller-Rabin rounds.
var smallPrimes = sievePrimes(1 << 10)

func sievePrimes(limit int) []int64 {
	composite := make([]bool, limit)
	var primes []int64
	for i := 3; i < limit; i += 2 {
		if composite[i] {
			continue
		}
		primes = append(primes, int64(i))
		for j := i * i; j < limit; j += i {
			composite[j] = true
		}
	}
	return primes
}

// hasSmallFactor reports whether n is divisible by a small odd prime other
// than itself.
func hasSmallFactor(n *big.Int) bool {
	rem := new(big.Int)
	d := new(big.Int)
	for _, sp := range smallPrimes {
		d.SetInt64(sp)
		if rem.Mod(n, d).Sign() == 0 {
			return n.Cmp(d) != 0
		}
	}
	return false
}
