package schoolbook

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/schoolbook/crypto-go/primality"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMessageTooLarge is returned when a digest or message unit does not
	// fit below the scheme modulus.
	ErrMessageTooLarge = errors.New("message unit too large for modulus")

	// ErrInvalidComponent is returned when a key component or generation
	// parameter fails validation.
	ErrInvalidComponent = errors.New("invalid key component")

	// ErrInconsistentKey is returned when supplied components do not form a
	// working key pair.
	ErrInconsistentKey = errors.New("inconsistent key components")

	// ErrKeyGeneration is returned when key generation fails.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrMalformedCiphertext is returned when a ciphertext unit is out of
	// range for the key that is decrypting it.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrTimeout is returned when a bounded retry loop exhausts its attempt
	// budget.
	ErrTimeout = errors.New("attempt budget exhausted")

	// ErrInvalidUnit is returned when a message unit cannot be mapped back
	// to text.
	ErrInvalidUnit = errors.New("invalid message unit")
)

// SchoolbookError is implemented by all library errors.
type SchoolbookError interface {
	error
	SchoolbookError() // marker method
}

// RangeError reports a value outside the interval a scheme accepts.
type RangeError struct {
	Name  string   // what the value is, e.g. "digest" or "message unit 3"
	Value *big.Int // offending value, nil if absent
	Max   *big.Int // exclusive upper bound
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %v outside [0, %v)", e.Name, e.Value, e.Max)
}

// Is implements errors.Is for sentinel error matching.
func (e *RangeError) Is(target error) bool {
	return target == ErrMessageTooLarge
}

// SchoolbookError implements the SchoolbookError interface.
func (e *RangeError) SchoolbookError() {}

// ComponentError reports a key component or generation parameter that failed
// validation.
type ComponentError struct {
	Name   string
	Value  *big.Int // nil when the component is absent
	Reason string
}

func (e *ComponentError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("component %s: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("component %s = %v: %s", e.Name, e.Value, e.Reason)
}

// Is implements errors.Is for sentinel error matching.
func (e *ComponentError) Is(target error) bool {
	return target == ErrInvalidComponent
}

// SchoolbookError implements the SchoolbookError interface.
func (e *ComponentError) SchoolbookError() {}

// InconsistentKeyError reports key components that are individually valid but
// do not work together.
type InconsistentKeyError struct {
	Scheme string // "rsa" or "elgamal"
	Detail string
}

func (e *InconsistentKeyError) Error() string {
	return fmt.Sprintf("%s key components inconsistent: %s", e.Scheme, e.Detail)
}

// Is implements errors.Is for sentinel error matching.
func (e *InconsistentKeyError) Is(target error) bool {
	return target == ErrInconsistentKey
}

// SchoolbookError implements the SchoolbookError interface.
func (e *InconsistentKeyError) SchoolbookError() {}

// GenerationError reports a key-generation failure and the stage it happened
// at. Unwrap exposes the underlying cause, so checks like
// errors.Is(err, primality.ErrAttemptsExceeded) see through it.
type GenerationError struct {
	Scheme string // "rsa" or "elgamal"
	Stage  string // e.g. "prime search", "generator search"
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s key generation failed at %s: %v", e.Scheme, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *GenerationError) Is(target error) bool {
	return target == ErrKeyGeneration
}

// SchoolbookError implements the SchoolbookError interface.
func (e *GenerationError) SchoolbookError() {}

// TimeoutError reports a bounded retry loop that ran out of attempts.
type TimeoutError struct {
	Op       string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s gave up after %d attempts", e.Op, e.Attempts)
}

// Is implements errors.Is for sentinel error matching.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout || target == primality.ErrAttemptsExceeded
}

// SchoolbookError implements the SchoolbookError interface.
func (e *TimeoutError) SchoolbookError() {}

// MalformedCiphertextError reports a ciphertext unit that cannot belong to
// the key decrypting it.
type MalformedCiphertextError struct {
	Scheme string
	Index  int // position of the offending unit
	Detail string
}

func (e *MalformedCiphertextError) Error() string {
	return fmt.Sprintf("%s ciphertext unit %d: %s", e.Scheme, e.Index, e.Detail)
}

// Is implements errors.Is for sentinel error matching.
func (e *MalformedCiphertextError) Is(target error) bool {
	return target == ErrMalformedCiphertext
}

// SchoolbookError implements the SchoolbookError interface.
func (e *MalformedCiphertextError) SchoolbookError() {}

// UnitError reports a message unit that cannot be converted to text.
type UnitError struct {
	Index  int
	Unit   *big.Int // nil when the unit is absent
	Detail string
}

func (e *UnitError) Error() string {
	if e.Unit == nil {
		return fmt.Sprintf("unit %d: %s", e.Index, e.Detail)
	}
	return fmt.Sprintf("unit %d = %v: %s", e.Index, e.Unit, e.Detail)
}

// Is implements errors.Is for sentinel error matching.
func (e *UnitError) Is(target error) bool {
	return target == ErrInvalidUnit
}

// SchoolbookError implements the SchoolbookError interface.
func (e *UnitError) SchoolbookError() {}
