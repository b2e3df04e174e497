// Package numtheory implements the modular arithmetic the key schemes are built
// on: modular exponentiation, the extended Euclidean algorithm, modular inverses,
// and gcd. The routines operate on math/big integers but do not delegate to the
// library's modular helpers (Exp, ModInverse, GCD), so the arithmetic path stays
// fully owned by this module.
package numtheory

import (
	"errors"
	"fmt"
	"math/big"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrNoInverse is returned when a modular inverse does not exist
	// (the operand and modulus are not coprime).
	ErrNoInverse = errors.New("modular inverse does not exist")

	// ErrNegativeExponent is returned when ModPow receives a negative exponent.
	ErrNegativeExponent = errors.New("exponent must be non-negative")

	// ErrNonPositiveModulus is returned when a modulus is zero or negative.
	ErrNonPositiveModulus = errors.New("modulus must be positive")
)

var one = big.NewInt(1)

// ModPow computes base^exponent mod modulus by iterative square-and-multiply,
// reducing after every multiplication so no intermediate value grows beyond the
// square of the modulus. The modulus must be positive (a modulus of 1 yields 0)
// and the exponent non-negative. A negative base is reduced into [0, modulus)
// before exponentiation.
func ModPow(base, exponent, modulus *big.Int) (*big.Int, error) {
	if modulus.Sign() <= 0 {
		return nil, fmt.Errorf("modulus %v: %w", modulus, ErrNonPositiveModulus)
	}
	if exponent.Sign() < 0 {
		return nil, fmt.Errorf("exponent %v: %w", exponent, ErrNegativeExponent)
	}
	if modulus.Cmp(one) == 0 {
		return new(big.Int), nil
	}

	result := big.NewInt(1)
	b := new(big.Int).Mod(base, modulus)
	e := new(big.Int).Set(exponent)
	for e.Sign() > 0 {
		if e.Bit(0) == 1 {
			result.Mul(result, b)
			result.Mod(result, modulus)
		}
		b.Mul(b, b)
		b.Mod(b, modulus)
		e.Rsh(e, 1)
	}
	return result, nil
}

// ExtendedGCD returns (g, x, y) such that g = gcd(a, b) = a*x + b*y.
// It runs the iterative form of the textbook recursion and produces the same
// Bezout triple; ExtendedGCD(0, b) yields (b, 0, 1). Inputs must be
// non-negative.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	if a.Sign() == 0 {
		return new(big.Int).Set(b), new(big.Int), big.NewInt(1)
	}

	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), new(big.Int)
	oldT, t := new(big.Int), big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		tmp.Mul(q, r)
		oldR.Sub(oldR, tmp)
		oldR, r = r, oldR

		tmp.Mul(q, s)
		oldS.Sub(oldS, tmp)
		oldS, s = s, oldS

		tmp.Mul(q, t)
		oldT.Sub(oldT, tmp)
		oldT, t = t, oldT
	}
	return oldR, oldS, oldT
}

// ModInverse returns the x in [0, m) satisfying a*x ≡ 1 (mod m). It fails with
// ErrNoInverse when gcd(a, m) != 1; callers must treat that as a hard failure
// of the surrounding key or signature math, not a retryable condition.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, fmt.Errorf("modulus %v: %w", m, ErrNonPositiveModulus)
	}
	ar := new(big.Int).Mod(a, m)
	g, x, _ := ExtendedGCD(ar, m)
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("%v mod %v has gcd %v: %w", a, m, g, ErrNoInverse)
	}
	return x.Mod(x, m), nil
}

// GCD returns the greatest common divisor of a and b via the iterative
// Euclidean algorithm, terminating when the remainder reaches zero.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	for y.Sign() != 0 {
		x.Mod(x, y)
		x, y = y, x
	}
	return x
}
