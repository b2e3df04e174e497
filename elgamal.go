package schoolbook

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/schoolbook/crypto-go/digest"
	"github.com/schoolbook/crypto-go/group"
	"github.com/schoolbook/crypto-go/numtheory"
	"github.com/schoolbook/crypto-go/primality"
	"github.com/schoolbook/crypto-go/internal/randutil"
)

// ElGamalPublicKey holds the group parameters (p, g) and the public value y.
type ElGamalPublicKey struct {
	P *big.Int // prime modulus
	G *big.Int // generator of Z_p*
	Y *big.Int // public value g^x mod p
}

// ElGamalPrivateKey holds a full ElGamal key pair.
type ElGamalPrivateKey struct {
	ElGamalPublicKey
	X *big.Int // secret exponent

	provenance Provenance
}

// ElGamalSignature is an (r, s) signature pair.
type ElGamalSignature struct {
	R *big.Int
	S *big.Int
}

// ElGamalCiphertext is one encrypted message unit (c1, c2).
type ElGamalCiphertext struct {
	C1 *big.Int
	C2 *big.Int
}

// Public returns the public half of the key.
func (k *ElGamalPrivateKey) Public() *ElGamalPublicKey {
	return &k.ElGamalPublicKey
}

// Provenance reports how the key was constructed.
func (k *ElGamalPrivateKey) Provenance() Provenance {
	return k.provenance
}

// signAttempts bounds the nonce rejection loop inside Sign.
const signAttempts = 256

// GenerateElGamalKey produces a key pair whose prime modulus is drawn
// uniformly from [min, max]. The generator comes from the configured
// strategy (default group.StrategyFactored) and the secret exponent is
// uniform in [2, p-2].
//
// The interval must start at 5 or above so the secret range is nonempty. For
// cryptographically sized parameters prefer GenerateElGamalKeyBits, whose
// safe-prime construction keeps the factored strategy fast at any size.
func GenerateElGamalKey(ctx context.Context, min, max *big.Int, opts ...Option) (*ElGamalPrivateKey, error) {
	if min == nil || min.Cmp(big.NewInt(5)) < 0 {
		return nil, &ComponentError{Name: "min", Value: min, Reason: "prime interval must start at 5 or above"}
	}
	if max == nil || max.Cmp(min) < 0 {
		return nil, &ComponentError{Name: "max", Value: max, Reason: "prime interval is empty"}
	}
	cfg := newGenConfig(opts...)

	p, err := primality.Prime(ctx, cfg.rand, min, max, cfg.rounds)
	if err != nil {
		return nil, &GenerationError{Scheme: "elgamal", Stage: "prime search", Err: err}
	}
	return finishElGamalKey(cfg, p)
}

// GenerateElGamalKeyBits produces a key pair over a safe prime p = 2q+1 of
// exactly the given bit size. The order p-1 = 2q factors on sight, so the
// factored generator strategy stays viable at real key sizes.
func GenerateElGamalKeyBits(ctx context.Context, bits int, opts ...Option) (*ElGamalPrivateKey, error) {
	cfg := newGenConfig(opts...)

	p, err := primality.SafePrime(ctx, cfg.rand, bits, cfg.rounds)
	if err != nil {
		return nil, &GenerationError{Scheme: "elgamal", Stage: "prime search", Err: err}
	}
	return finishElGamalKey(cfg, p)
}

func finishElGamalKey(cfg *genConfig, p *big.Int) (*ElGamalPrivateKey, error) {
	g, err := group.FindGenerator(p, cfg.strategy)
	if err != nil {
		return nil, &GenerationError{Scheme: "elgamal", Stage: "generator search", Err: err}
	}

	x, err := randutil.Int(cfg.rand, two, new(big.Int).Sub(p, two))
	if err != nil {
		return nil, &GenerationError{Scheme: "elgamal", Stage: "secret sampling", Err: err}
	}
	y, err := numtheory.ModPow(g, x, p)
	if err != nil {
		return nil, &GenerationError{Scheme: "elgamal", Stage: "public value", Err: err}
	}

	return &ElGamalPrivateKey{
		ElGamalPublicKey: ElGamalPublicKey{P: p, G: g, Y: y},
		X:                x,
		provenance:       ProvenanceGenerated,
	}, nil
}

// Sign produces an (r, s) signature over the digest, reduced mod p. Each
// attempt draws a nonce k uniform in [2, p-2] and keeps it only when it is
// invertible mod p-1 and yields s != 0; the rejection loop is bounded and
// surfaces *TimeoutError when exhausted.
func (k *ElGamalPrivateKey) Sign(rand io.Reader, hashed *big.Int) (*ElGamalSignature, error) {
	if hashed == nil {
		return nil, &RangeError{Name: "digest", Value: nil, Max: k.P}
	}
	h := new(big.Int).Mod(hashed, k.P)
	pMinus1 := new(big.Int).Sub(k.P, one)
	pMinus2 := new(big.Int).Sub(k.P, two)

	for attempt := 0; attempt < signAttempts; attempt++ {
		nonce, err := randutil.Int(rand, two, pMinus2)
		if err != nil {
			return nil, fmt.Errorf("sampling signature nonce: %w", err)
		}
		if numtheory.GCD(nonce, pMinus1).Cmp(one) != 0 {
			continue
		}
		r, err := numtheory.ModPow(k.G, nonce, k.P)
		if err != nil {
			return nil, err
		}
		nonceInv, err := numtheory.ModInverse(nonce, pMinus1)
		if err != nil {
			// Unreachable past the gcd screen.
			continue
		}

		// s = (h - x*r) * nonce^-1 mod (p-1)
		s := new(big.Int).Mul(k.X, r)
		s.Sub(h, s)
		s.Mul(s, nonceInv)
		s.Mod(s, pMinus1)
		if s.Sign() == 0 {
			continue
		}
		return &ElGamalSignature{R: r, S: s}, nil
	}
	return nil, &TimeoutError{Op: "signature nonce search", Attempts: signAttempts}
}

// Verify checks g^h == y^r * r^s (mod p) with h the digest reduced mod p.
// A signature with r outside (0, p) or s outside (0, p-1) is invalid by
// definition and reports false, never an error.
func (k *ElGamalPublicKey) Verify(hashed *big.Int, sig *ElGamalSignature) bool {
	if hashed == nil || sig == nil || sig.R == nil || sig.S == nil {
		return false
	}
	if sig.R.Sign() <= 0 || sig.R.Cmp(k.P) >= 0 {
		return false
	}
	pMinus1 := new(big.Int).Sub(k.P, one)
	if sig.S.Sign() <= 0 || sig.S.Cmp(pMinus1) >= 0 {
		return false
	}

	h := new(big.Int).Mod(hashed, k.P)
	lhs, err := numtheory.ModPow(k.G, h, k.P)
	if err != nil {
		return false
	}
	yr, err := numtheory.ModPow(k.Y, sig.R, k.P)
	if err != nil {
		return false
	}
	rs, err := numtheory.ModPow(sig.R, sig.S, k.P)
	if err != nil {
		return false
	}
	rhs := yr.Mul(yr, rs)
	rhs.Mod(rhs, k.P)
	return lhs.Cmp(rhs) == 0
}

// Encrypt produces one (c1, c2) pair per message unit, each under a fresh
// ephemeral nonce in [1, p-2]. Every unit must sit in [0, p).
func (k *ElGamalPublicKey) Encrypt(rand io.Reader, units []*big.Int) ([]ElGamalCiphertext, error) {
	pMinus2 := new(big.Int).Sub(k.P, two)
	out := make([]ElGamalCiphertext, len(units))
	for i, m := range units {
		if m == nil || m.Sign() < 0 || m.Cmp(k.P) >= 0 {
			return nil, &RangeError{
				Name:  fmt.Sprintf("message unit %d", i),
				Value: m,
				Max:   k.P,
			}
		}
		nonce, err := randutil.Int(rand, one, pMinus2)
		if err != nil {
			return nil, fmt.Errorf("sampling nonce for unit %d: %w", i, err)
		}
		c1, err := numtheory.ModPow(k.G, nonce, k.P)
		if err != nil {
			return nil, err
		}
		shared, err := numtheory.ModPow(k.Y, nonce, k.P)
		if err != nil {
			return nil, err
		}
		c2 := shared.Mul(shared, m)
		c2.Mod(c2, k.P)
		out[i] = ElGamalCiphertext{C1: c1, C2: c2}
	}
	return out, nil
}

// Decrypt inverts Encrypt. Components outside [0, p) cannot have been
// produced under this key and are rejected before any modular operation;
// a zero c1 has no invertible shared secret and surfaces
// numtheory.ErrNoInverse.
func (k *ElGamalPrivateKey) Decrypt(pairs []ElGamalCiphertext) ([]*big.Int, error) {
	out := make([]*big.Int, len(pairs))
	for i, ct := range pairs {
		if ct.C1 == nil || ct.C1.Sign() < 0 || ct.C1.Cmp(k.P) >= 0 {
			return nil, &MalformedCiphertextError{
				Scheme: "elgamal",
				Index:  i,
				Detail: fmt.Sprintf("component c1 = %v outside [0, %v)", ct.C1, k.P),
			}
		}
		if ct.C2 == nil || ct.C2.Sign() < 0 || ct.C2.Cmp(k.P) >= 0 {
			return nil, &MalformedCiphertextError{
				Scheme: "elgamal",
				Index:  i,
				Detail: fmt.Sprintf("component c2 = %v outside [0, %v)", ct.C2, k.P),
			}
		}

		shared, err := numtheory.ModPow(ct.C1, k.X, k.P)
		if err != nil {
			return nil, err
		}
		sharedInv, err := numtheory.ModInverse(shared, k.P)
		if err != nil {
			return nil, fmt.Errorf("elgamal ciphertext unit %d: %w", i, err)
		}
		m := sharedInv.Mul(sharedInv, ct.C2)
		m.Mod(m, k.P)
		out[i] = m
	}
	return out, nil
}

// SignMessage hashes msg with SHA-256 and signs the digest.
func (k *ElGamalPrivateKey) SignMessage(rand io.Reader, msg []byte) (*ElGamalSignature, error) {
	h, err := digest.Sum(digest.SHA256, msg)
	if err != nil {
		return nil, err
	}
	return k.Sign(rand, h)
}

// VerifyMessage checks a signature produced by SignMessage.
func (k *ElGamalPublicKey) VerifyMessage(msg []byte, sig *ElGamalSignature) bool {
	h, err := digest.Sum(digest.SHA256, msg)
	if err != nil {
		return false
	}
	return k.Verify(h, sig)
}

func validateElGamalGroup(p, g *big.Int) error {
	if p == nil {
		return &ComponentError{Name: "p", Reason: "missing"}
	}
	prime, err := primality.IsProbablyPrime(nil, p, DefaultPrimalityRounds)
	if err != nil {
		return err
	}
	if !prime {
		return &ComponentError{Name: "p", Value: p, Reason: "modulus is not prime"}
	}
	if g == nil {
		return &ComponentError{Name: "g", Reason: "missing"}
	}
	if g.Cmp(one) <= 0 || g.Cmp(p) >= 0 {
		return &ComponentError{Name: "g", Value: g, Reason: "generator must lie in (1, p)"}
	}
	return nil
}

func validateElGamalSecret(p, x *big.Int) error {
	if x == nil {
		return &ComponentError{Name: "x", Reason: "missing"}
	}
	pMinus1 := new(big.Int).Sub(p, one)
	if x.Cmp(one) <= 0 || x.Cmp(pMinus1) >= 0 {
		return &ComponentError{Name: "x", Value: x, Reason: "secret must lie in (1, p-1)"}
	}
	return nil
}

// ElGamalKeyFromComponents rebuilds a key pair from a full (p, g, x, y)
// tuple. Besides range checks and a primality check on p, the public value
// must match g^x mod p, otherwise *InconsistentKeyError.
func ElGamalKeyFromComponents(p, g, x, y *big.Int) (*ElGamalPrivateKey, error) {
	if err := validateElGamalGroup(p, g); err != nil {
		return nil, err
	}
	if err := validateElGamalSecret(p, x); err != nil {
		return nil, err
	}
	if y == nil {
		return nil, &ComponentError{Name: "y", Reason: "missing"}
	}
	if y.Sign() <= 0 || y.Cmp(p) >= 0 {
		return nil, &ComponentError{Name: "y", Value: y, Reason: "public value must lie in (0, p)"}
	}

	expected, err := numtheory.ModPow(g, x, p)
	if err != nil {
		return nil, err
	}
	if expected.Cmp(y) != 0 {
		return nil, &InconsistentKeyError{Scheme: "elgamal", Detail: "y != g^x mod p"}
	}

	return &ElGamalPrivateKey{
		ElGamalPublicKey: ElGamalPublicKey{P: p, G: g, Y: y},
		X:                x,
		provenance:       ProvenanceVerified,
	}, nil
}

// ElGamalKeyFromPrivateValue rebuilds a key pair from (p, g, x), deriving the
// public value y = g^x mod p.
func ElGamalKeyFromPrivateValue(p, g, x *big.Int) (*ElGamalPrivateKey, error) {
	if err := validateElGamalGroup(p, g); err != nil {
		return nil, err
	}
	if err := validateElGamalSecret(p, x); err != nil {
		return nil, err
	}

	y, err := numtheory.ModPow(g, x, p)
	if err != nil {
		return nil, err
	}

	return &ElGamalPrivateKey{
		ElGamalPublicKey: ElGamalPublicKey{P: p, G: g, Y: y},
		X:                x,
		provenance:       ProvenanceVerified,
	}, nil
}

// NewElGamalPublicKey builds a verify/encrypt-only key from (p, g, y).
func NewElGamalPublicKey(p, g, y *big.Int) (*ElGamalPublicKey, error) {
	if err := validateElGamalGroup(p, g); err != nil {
		return nil, err
	}
	if y == nil {
		return nil, &ComponentError{Name: "y", Reason: "missing"}
	}
	if y.Sign() <= 0 || y.Cmp(p) >= 0 {
		return nil, &ComponentError{Name: "y", Value: y, Reason: "public value must lie in (0, p)"}
	}
	return &ElGamalPublicKey{P: p, G: g, Y: y}, nil
}
