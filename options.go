package schoolbook

import (
	"io"
	"math/big"

	"github.com/schoolbook/crypto-go/group"
	"github.com/schoolbook/crypto-go/primality"
)

// Provenance records how a key pair entered the library.
type Provenance string

const (
	// ProvenanceGenerated marks keys produced by this library's generators.
	ProvenanceGenerated Provenance = "generated"
	// ProvenanceVerified marks keys rebuilt from caller components that
	// passed the consistency checks.
	ProvenanceVerified Provenance = "verified"
	// ProvenanceAssumed marks keys completed with a conventional value that
	// could not be cross-checked, such as a missing RSA public exponent
	// recovered as the usual 65537.
	ProvenanceAssumed Provenance = "assumed"
)

const (
	// DefaultPublicExponent is the RSA public exponent tried first.
	DefaultPublicExponent = 65537

	// DefaultPrimalityRounds is the Miller-Rabin round count used by key
	// generation and component validation.
	DefaultPrimalityRounds = primality.DefaultRounds

	// MinRSABits is the smallest RSA modulus size GenerateRSAKey accepts.
	MinRSABits = 16

	defaultMaxAttempts = 256
)

// genConfig holds configuration for key generation.
type genConfig struct {
	rand           io.Reader
	rounds         int
	maxAttempts    int
	publicExponent *big.Int
	strategy       group.Strategy
}

// Option configures key generation.
type Option func(*genConfig)

func newGenConfig(opts ...Option) *genConfig {
	cfg := &genConfig{
		rounds:         DefaultPrimalityRounds,
		maxAttempts:    defaultMaxAttempts,
		publicExponent: big.NewInt(DefaultPublicExponent),
		strategy:       group.StrategyFactored,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithRand sets the randomness source for key generation. The default is
// crypto/rand. A seeded reader gives reproducible keys, which is useful in
// tests; a reader that is not safe for concurrent use must not be shared
// across goroutines generating keys.
func WithRand(r io.Reader) Option {
	return func(c *genConfig) {
		c.rand = r
	}
}

// WithPrimalityRounds sets the Miller-Rabin round count for prime searches.
// Default: DefaultPrimalityRounds
func WithPrimalityRounds(rounds int) Option {
	return func(c *genConfig) {
		c.rounds = rounds
	}
}

// WithMaxAttempts caps the retry loops inside key generation, such as
// redrawing a duplicate RSA prime or resampling a public exponent.
// Default: 256
func WithMaxAttempts(attempts int) Option {
	return func(c *genConfig) {
		c.maxAttempts = attempts
	}
}

// WithPublicExponent sets the RSA public exponent tried first. When the
// exponent shares a factor with phi(n), generation falls back to uniform
// resampling.
// Default: 65537
func WithPublicExponent(e *big.Int) Option {
	return func(c *genConfig) {
		c.publicExponent = e
	}
}

// WithGeneratorStrategy sets how ElGamal generation validates candidate
// generators.
// Default: group.StrategyFactored
func WithGeneratorStrategy(strategy group.Strategy) Option {
	return func(c *genConfig) {
		c.strategy = strategy
	}
}

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)
