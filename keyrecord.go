package schoolbook

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Key records preserve the on-disk JSON schema of the teaching corpus this
// library grew out of: bare integer fields, one record per key half. big.Int
// marshals as a plain JSON number, so the files stay readable and stay
// compatible with implementations in other languages.

// RSAPrivateRecord is the serialized form of an RSA private key.
type RSAPrivateRecord struct {
	D *big.Int `json:"d"`
	N *big.Int `json:"n"`
}

// RSAPublicRecord is the serialized form of an RSA public key.
type RSAPublicRecord struct {
	E *big.Int `json:"e"`
	N *big.Int `json:"n"`
}

// ElGamalPrivateRecord is the serialized form of an ElGamal private key.
type ElGamalPrivateRecord struct {
	P *big.Int `json:"p"`
	G *big.Int `json:"g"`
	X *big.Int `json:"x"`
}

// ElGamalPublicRecord is the serialized form of an ElGamal public key.
type ElGamalPublicRecord struct {
	P *big.Int `json:"p"`
	G *big.Int `json:"g"`
	Y *big.Int `json:"y"`
}

// Record extracts the serializable private half of the key.
func (k *RSAPrivateKey) Record() *RSAPrivateRecord {
	return &RSAPrivateRecord{D: k.D, N: k.N}
}

// Record extracts the serializable form of the key.
func (k *RSAPublicKey) Record() *RSAPublicRecord {
	return &RSAPublicRecord{E: k.E, N: k.N}
}

// Record extracts the serializable private half of the key.
func (k *ElGamalPrivateKey) Record() *ElGamalPrivateRecord {
	return &ElGamalPrivateRecord{P: k.P, G: k.G, X: k.X}
}

// Record extracts the serializable form of the key.
func (k *ElGamalPublicKey) Record() *ElGamalPublicRecord {
	return &ElGamalPublicRecord{P: k.P, G: k.G, Y: k.Y}
}

// Key rebuilds a private key from the record alone. With no public record to
// cross-check, the public exponent is assumed to be the conventional 65537
// and the key reports ProvenanceAssumed.
func (r *RSAPrivateRecord) Key() (*RSAPrivateKey, error) {
	return RSAKeyFromPrivateExponent(r.N, r.D)
}

// Key rebuilds a public key from the record.
func (r *RSAPublicRecord) Key() (*RSAPublicKey, error) {
	return NewRSAPublicKey(r.N, r.E)
}

// Key rebuilds a private key from the record alone, deriving the public
// value y = g^x mod p.
func (r *ElGamalPrivateRecord) Key() (*ElGamalPrivateKey, error) {
	return ElGamalKeyFromPrivateValue(r.P, r.G, r.X)
}

// Key rebuilds a public key from the record.
func (r *ElGamalPublicRecord) Key() (*ElGamalPublicKey, error) {
	return NewElGamalPublicKey(r.P, r.G, r.Y)
}

// RSAKeyFromRecords merges a private and public record pair into a fully
// verified key. The moduli must agree; a field missing from one record is
// taken from the other.
func RSAKeyFromRecords(priv *RSAPrivateRecord, pub *RSAPublicRecord) (*RSAPrivateKey, error) {
	if priv == nil {
		return nil, &ComponentError{Name: "private record", Reason: "missing"}
	}
	if pub == nil {
		return nil, &ComponentError{Name: "public record", Reason: "missing"}
	}
	if priv.N != nil && pub.N != nil && priv.N.Cmp(pub.N) != 0 {
		return nil, &InconsistentKeyError{Scheme: "rsa", Detail: "records disagree on n"}
	}
	n := priv.N
	if n == nil {
		n = pub.N
	}
	return RSAKeyFromComponents(n, pub.E, priv.D)
}

// ElGamalKeyFromRecords merges a private and public record pair into a fully
// verified key. The group parameters must agree; a field missing from one
// record is taken from the other.
func ElGamalKeyFromRecords(priv *ElGamalPrivateRecord, pub *ElGamalPublicRecord) (*ElGamalPrivateKey, error) {
	if priv == nil {
		return nil, &ComponentError{Name: "private record", Reason: "missing"}
	}
	if pub == nil {
		return nil, &ComponentError{Name: "public record", Reason: "missing"}
	}
	if priv.P != nil && pub.P != nil && priv.P.Cmp(pub.P) != 0 {
		return nil, &InconsistentKeyError{Scheme: "elgamal", Detail: "records disagree on p"}
	}
	if priv.G != nil && pub.G != nil && priv.G.Cmp(pub.G) != 0 {
		return nil, &InconsistentKeyError{Scheme: "elgamal", Detail: "records disagree on g"}
	}
	p := priv.P
	if p == nil {
		p = pub.P
	}
	g := priv.G
	if g == nil {
		g = pub.G
	}
	return ElGamalKeyFromComponents(p, g, priv.X, pub.Y)
}

// MarshalJSON encodes the ciphertext as the two-element array [c1, c2].
func (c ElGamalCiphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal([]*big.Int{c.C1, c.C2})
}

// UnmarshalJSON decodes the [c1, c2] array form.
func (c *ElGamalCiphertext) UnmarshalJSON(data []byte) error {
	var pair []*big.Int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: want [c1, c2], got %d elements", ErrMalformedCiphertext, len(pair))
	}
	if pair[0] == nil || pair[1] == nil {
		return fmt.Errorf("%w: null component", ErrMalformedCiphertext)
	}
	c.C1, c.C2 = pair[0], pair[1]
	return nil
}
