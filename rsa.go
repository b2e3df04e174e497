package schoolbook

import (
	"context"
	"fmt"
	"math/big"

	"github.com/schoolbook/crypto-go/digest"
	"github.com/schoolbook/crypto-go/numtheory"
	"github.com/schoolbook/crypto-go/primality"
	"github.com/schoolbook/crypto-go/internal/randutil"
)

// RSAPublicKey holds the public half of an RSA key pair.
type RSAPublicKey struct {
	N *big.Int // modulus
	E *big.Int // public exponent
}

// RSAPrivateKey holds a full RSA key pair.
type RSAPrivateKey struct {
	RSAPublicKey
	D *big.Int // private exponent

	provenance Provenance
}

// Public returns the public half of the key.
func (k *RSAPrivateKey) Public() *RSAPublicKey {
	return &k.RSAPublicKey
}

// Provenance reports how the key was constructed.
func (k *RSAPrivateKey) Provenance() Provenance {
	return k.provenance
}

// GenerateRSAKey produces a fresh key pair with a modulus of roughly the
// given bit size. Two primes of bits/2 are drawn (the second redrawn while it
// collides with the first), the public exponent starts at 65537 and is
// resampled uniformly from [2, phi-1] while it shares a factor with phi, and
// the private exponent is the modular inverse of the result.
//
// Failures wrap into *GenerationError; an exhausted prime search surfaces
// primality.ErrAttemptsExceeded through it.
func GenerateRSAKey(ctx context.Context, bits int, opts ...Option) (*RSAPrivateKey, error) {
	if bits < MinRSABits {
		return nil, &ComponentError{
			Name:   "bits",
			Value:  big.NewInt(int64(bits)),
			Reason: fmt.Sprintf("modulus must be at least %d bits", MinRSABits),
		}
	}
	cfg := newGenConfig(opts...)
	if cfg.publicExponent == nil || cfg.publicExponent.Cmp(two) < 0 {
		return nil, &ComponentError{
			Name:   "e",
			Value:  cfg.publicExponent,
			Reason: "public exponent must be at least 2",
		}
	}

	p, err := primality.PrimeBits(ctx, cfg.rand, bits/2, cfg.rounds)
	if err != nil {
		return nil, &GenerationError{Scheme: "rsa", Stage: "prime search", Err: err}
	}
	q, err := primality.PrimeBits(ctx, cfg.rand, bits/2, cfg.rounds)
	if err != nil {
		return nil, &GenerationError{Scheme: "rsa", Stage: "prime search", Err: err}
	}
	for attempt := 0; q.Cmp(p) == 0; attempt++ {
		if attempt >= cfg.maxAttempts {
			return nil, &GenerationError{
				Scheme: "rsa",
				Stage:  "distinct prime search",
				Err:    &TimeoutError{Op: "distinct prime search", Attempts: attempt},
			}
		}
		q, err = primality.PrimeBits(ctx, cfg.rand, bits/2, cfg.rounds)
		if err != nil {
			return nil, &GenerationError{Scheme: "rsa", Stage: "prime search", Err: err}
		}
	}

	n := new(big.Int).Mul(p, q)
	phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))

	e := new(big.Int).Set(cfg.publicExponent)
	for attempt := 0; numtheory.GCD(e, phi).Cmp(one) != 0; attempt++ {
		if attempt >= cfg.maxAttempts {
			return nil, &GenerationError{
				Scheme: "rsa",
				Stage:  "public exponent search",
				Err:    &TimeoutError{Op: "public exponent search", Attempts: attempt},
			}
		}
		e, err = randutil.Int(cfg.rand, two, new(big.Int).Sub(phi, one))
		if err != nil {
			return nil, &GenerationError{Scheme: "rsa", Stage: "public exponent search", Err: err}
		}
	}

	d, err := numtheory.ModInverse(e, phi)
	if err != nil {
		return nil, &GenerationError{Scheme: "rsa", Stage: "private exponent", Err: err}
	}

	return &RSAPrivateKey{
		RSAPublicKey: RSAPublicKey{N: n, E: e},
		D:            d,
		provenance:   ProvenanceGenerated,
	}, nil
}

// Sign produces the textbook signature hashed^d mod n. The digest must
// already sit in [0, n); SignMessage handles the reduction for byte
// messages.
func (k *RSAPrivateKey) Sign(hashed *big.Int) (*big.Int, error) {
	if hashed == nil || hashed.Sign() < 0 || hashed.Cmp(k.N) >= 0 {
		return nil, &RangeError{Name: "digest", Value: hashed, Max: k.N}
	}
	return numtheory.ModPow(hashed, k.D, k.N)
}

// Verify recomputes sig^e mod n and compares it to the digest. Malformed
// input of any kind is a verification failure, never an error.
func (k *RSAPublicKey) Verify(hashed, sig *big.Int) bool {
	if hashed == nil || hashed.Sign() < 0 || hashed.Cmp(k.N) >= 0 {
		return false
	}
	if sig == nil || sig.Sign() < 0 || sig.Cmp(k.N) >= 0 {
		return false
	}
	recovered, err := numtheory.ModPow(sig, k.E, k.N)
	if err != nil {
		return false
	}
	return recovered.Cmp(hashed) == 0
}

// Encrypt raises each message unit to the public exponent mod n. Every unit
// must sit in [0, n).
func (k *RSAPublicKey) Encrypt(units []*big.Int) ([]*big.Int, error) {
	out := make([]*big.Int, len(units))
	for i, m := range units {
		if m == nil || m.Sign() < 0 || m.Cmp(k.N) >= 0 {
			return nil, &RangeError{
				Name:  fmt.Sprintf("message unit %d", i),
				Value: m,
				Max:   k.N,
			}
		}
		c, err := numtheory.ModPow(m, k.E, k.N)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Decrypt inverts Encrypt. A unit outside [0, n) cannot have been produced
// by this key and is rejected before any modular operation.
func (k *RSAPrivateKey) Decrypt(units []*big.Int) ([]*big.Int, error) {
	out := make([]*big.Int, len(units))
	for i, c := range units {
		if c == nil || c.Sign() < 0 || c.Cmp(k.N) >= 0 {
			return nil, &MalformedCiphertextError{
				Scheme: "rsa",
				Index:  i,
				Detail: fmt.Sprintf("unit %v outside [0, %v)", c, k.N),
			}
		}
		m, err := numtheory.ModPow(c, k.D, k.N)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// SignMessage digests msg into [0, n) and signs the result.
func (k *RSAPrivateKey) SignMessage(msg []byte) (*big.Int, error) {
	h, err := digest.SumInRange(msg, k.N)
	if err != nil {
		return nil, err
	}
	return k.Sign(h)
}

// VerifyMessage checks a signature produced by SignMessage.
func (k *RSAPublicKey) VerifyMessage(msg []byte, sig *big.Int) bool {
	h, err := digest.SumInRange(msg, k.N)
	if err != nil {
		return false
	}
	return k.Verify(h, sig)
}

// rsaProbes are the fixed plaintexts used to revalidate caller-supplied
// components: a consistent (n, e, d) triple must round-trip every probe
// below n.
var rsaProbes = []*big.Int{big.NewInt(42), big.NewInt(2)}

func rsaProbeCheck(n, e, d *big.Int) error {
	for _, probe := range rsaProbes {
		if probe.Cmp(n) >= 0 {
			continue
		}
		c, err := numtheory.ModPow(probe, e, n)
		if err != nil {
			return err
		}
		m, err := numtheory.ModPow(c, d, n)
		if err != nil {
			return err
		}
		if m.Cmp(probe) != 0 {
			return &InconsistentKeyError{
				Scheme: "rsa",
				Detail: fmt.Sprintf("probe %v does not round-trip through (e, d)", probe),
			}
		}
	}
	return nil
}

func validateRSAModulus(n *big.Int) error {
	if n == nil {
		return &ComponentError{Name: "n", Reason: "missing"}
	}
	if n.Cmp(big.NewInt(4)) < 0 {
		return &ComponentError{Name: "n", Value: n, Reason: "modulus must exceed 3"}
	}
	return nil
}

// RSAKeyFromComponents rebuilds a key pair from a full (n, e, d) triple. The
// components are range-checked and then functionally revalidated: fixed
// probe plaintexts must survive an encrypt/decrypt round-trip, otherwise the
// triple is rejected with *InconsistentKeyError.
func RSAKeyFromComponents(n, e, d *big.Int) (*RSAPrivateKey, error) {
	if err := validateRSAModulus(n); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &ComponentError{Name: "e", Reason: "missing"}
	}
	if e.Cmp(two) < 0 {
		return nil, &ComponentError{Name: "e", Value: e, Reason: "public exponent must be at least 2"}
	}
	if d == nil {
		return nil, &ComponentError{Name: "d", Reason: "missing"}
	}
	if d.Sign() < 1 {
		return nil, &ComponentError{Name: "d", Value: d, Reason: "private exponent must be positive"}
	}
	if err := rsaProbeCheck(n, e, d); err != nil {
		return nil, err
	}
	return &RSAPrivateKey{
		RSAPublicKey: RSAPublicKey{N: n, E: e},
		D:            d,
		provenance:   ProvenanceVerified,
	}, nil
}

// RSAKeyFromPrivateExponent rebuilds a key pair from (n, d) alone by assuming
// the conventional public exponent 65537. The assumption is probe-tested but
// cannot be cross-checked against phi(n), so the resulting key reports
// ProvenanceAssumed; callers that care should treat it as a best-effort
// reconstruction.
func RSAKeyFromPrivateExponent(n, d *big.Int) (*RSAPrivateKey, error) {
	if err := validateRSAModulus(n); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, &ComponentError{Name: "d", Reason: "missing"}
	}
	if d.Sign() < 1 {
		return nil, &ComponentError{Name: "d", Value: d, Reason: "private exponent must be positive"}
	}
	e := big.NewInt(DefaultPublicExponent)
	if err := rsaProbeCheck(n, e, d); err != nil {
		return nil, err
	}
	return &RSAPrivateKey{
		RSAPublicKey: RSAPublicKey{N: n, E: e},
		D:            d,
		provenance:   ProvenanceAssumed,
	}, nil
}

// NewRSAPublicKey builds a verify/encrypt-only key from (n, e).
func NewRSAPublicKey(n, e *big.Int) (*RSAPublicKey, error) {
	if err := validateRSAModulus(n); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &ComponentError{Name: "e", Reason: "missing"}
	}
	if e.Cmp(two) < 0 {
		return nil, &ComponentError{Name: "e", Value: e, Reason: "public exponent must be at least 2"}
	}
	return &RSAPublicKey{N: n, E: e}, nil
}
