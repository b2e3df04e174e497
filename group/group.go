// Package group discovers generators of the multiplicative group Z_p* for a
// prime modulus p. Two validation strategies are exposed because the protocols
// built on this package historically used both; they can legitimately settle
// on different elements for the same modulus.
package group

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/schoolbook/crypto-go/numtheory"
	"github.com/schoolbook/crypto-go/primality"
)

// Strategy selects how candidate generators are validated.
type Strategy string

const (
	// StrategyFactored factorizes the group order p-1 and accepts the first
	// candidate g with g^((p-1)/f) != 1 mod p for every distinct prime factor
	// f. Accepted elements have full order p-1.
	StrategyFactored Strategy = "factored-order"

	// StrategyHalfOrder accepts the first candidate g with g^((p-1)/2) != 1
	// and g^(p-1) == 1 mod p. The check is weaker — an accepted element may
	// have order smaller than p-1 — but suffices for the signature protocol
	// that uses it.
	StrategyHalfOrder Strategy = "half-order"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrNoGenerator is returned when the candidate scan exhausts without an
	// accepted element. Unreachable for a true prime modulus; it surfaces the
	// condition instead of silently falling back to 2.
	ErrNoGenerator = errors.New("generator scan exhausted")

	// ErrFactorization is returned when the group order cannot be factored
	// within the trial-division bound.
	ErrFactorization = errors.New("group order has no tractable factorization")

	// ErrUnknownStrategy is returned for an unrecognized Strategy value.
	ErrUnknownStrategy = errors.New("unknown generator strategy")

	// ErrInvalidModulus is returned when the modulus admits no multiplicative
	// group (p < 2).
	ErrInvalidModulus = errors.New("modulus must be at least 2")
)

// trialDivisorCeiling bounds the trial division inside factorOrder. A var so
// white-box tests can lower it.
var trialDivisorCeiling = int64(1 << 20)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// FindGenerator returns a generator of Z_p* located by the given strategy.
// p = 2 yields 1, the generator of the trivial group. The scan is
// deterministic: candidates are tried in increasing order from 2, so a given
// (p, strategy) pair always settles on the same element.
//
// The modulus is trusted to be prime; feeding a composite p is a caller bug
// and ends in ErrNoGenerator or a nonsense element, not a hidden fallback.
func FindGenerator(p *big.Int, strategy Strategy) (*big.Int, error) {
	if p.Cmp(two) < 0 {
		return nil, fmt.Errorf("modulus %v: %w", p, ErrInvalidModulus)
	}
	if p.Cmp(two) == 0 {
		return big.NewInt(1), nil
	}

	switch strategy {
	case StrategyFactored:
		return findFactored(p)
	case StrategyHalfOrder:
		return findHalfOrder(p)
	default:
		return nil, fmt.Errorf("%q: %w", strategy, ErrUnknownStrategy)
	}
}

func findFactored(p *big.Int) (*big.Int, error) {
	phi := new(big.Int).Sub(p, one)
	factors, err := factorOrder(phi)
	if err != nil {
		return nil, err
	}

	// Precompute the order-check exponents phi/f.
	exponents := make([]*big.Int, len(factors))
	for i, f := range factors {
		exponents[i] = new(big.Int).Quo(phi, f)
	}

	for g := big.NewInt(2); g.Cmp(p) < 0; g.Add(g, one) {
		fullOrder := true
		for _, e := range exponents {
			v, err := numtheory.ModPow(g, e, p)
			if err != nil {
				return nil, err
			}
			if v.Cmp(one) == 0 {
				fullOrder = false
				break
			}
		}
		if fullOrder {
			return g, nil
		}
	}
	return nil, fmt.Errorf("no element of order %v below %v: %w", phi, p, ErrNoGenerator)
}

func findHalfOrder(p *big.Int) (*big.Int, error) {
	phi := new(big.Int).Sub(p, one)
	half := new(big.Int).Rsh(phi, 1)

	for g := big.NewInt(2); g.Cmp(p) < 0; g.Add(g, one) {
		v, err := numtheory.ModPow(g, half, p)
		if err != nil {
			return nil, err
		}
		if v.Cmp(one) == 0 {
			continue
		}
		w, err := numtheory.ModPow(g, phi, p)
		if err != nil {
			return nil, err
		}
		if w.Cmp(one) != 0 {
			continue
		}
		return g, nil
	}
	return nil, fmt.Errorf("no element passing the half-order check below %v: %w", p, ErrNoGenerator)
}

// factorOrder returns the distinct prime factors of n >= 2 in increasing
// order. Factors of 2 come out first, then bounded trial division by odd
// divisors; a probable-prime cofactor is accepted as the final factor (which
// makes safe-prime orders 2q immediate), while a composite cofactor beyond
// the divisor ceiling is an ErrFactorization.
func factorOrder(n *big.Int) ([]*big.Int, error) {
	var factors []*big.Int
	rest := new(big.Int).Set(n)

	if rest.Bit(0) == 0 {
		factors = append(factors, big.NewInt(2))
		for rest.Bit(0) == 0 {
			rest.Rsh(rest, 1)
		}
	}
	if rest.Cmp(one) == 0 {
		return factors, nil
	}
	if ok, err := primality.IsProbablyPrime(nil, rest, primality.DefaultRounds); err != nil {
		return nil, err
	} else if ok {
		return append(factors, rest), nil
	}

	d := big.NewInt(3)
	sq := new(big.Int)
	rem := new(big.Int)
	for sq.Mul(d, d).Cmp(rest) <= 0 {
		if d.Int64() > trialDivisorCeiling {
			return nil, fmt.Errorf("cofactor %v has no prime factor below %d: %w",
				rest, trialDivisorCeiling, ErrFactorization)
		}
		if rem.Mod(rest, d).Sign() == 0 {
			factors = append(factors, new(big.Int).Set(d))
			for rem.Mod(rest, d).Sign() == 0 {
				rest.Quo(rest, d)
			}
			if rest.Cmp(one) == 0 {
				return factors, nil
			}
			if ok, err := primality.IsProbablyPrime(nil, rest, primality.DefaultRounds); err != nil {
				return nil, err
			} else if ok {
				return append(factors, rest), nil
			}
		}
		d.Add(d, two)
	}
	// No divisor at or below sqrt(rest) was found, so the cofactor is prime.
	return append(factors, rest), nil
}
