package digest

import (
	"errors"
	"math/big"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func TestSum_KnownVectors(t *testing.T) {
	tests := []struct {
		name string
		alg  Algorithm
		msg  string
		want string
	}{
		{
			name: "sha256 abc",
			alg:  SHA256,
			msg:  "abc",
			want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			name: "sha256 empty",
			alg:  SHA256,
			msg:  "",
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "sha512 abc",
			alg:  SHA512,
			msg:  "abc",
			want: "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
				"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sum(tt.alg, []byte(tt.msg))
			if err != nil {
				t.Fatalf("Sum() error = %v", err)
			}
			want, ok := new(big.Int).SetString(tt.want, 16)
			if !ok {
				t.Fatalf("bad test vector %q", tt.want)
			}
			if got.Cmp(want) != 0 {
				t.Errorf("Sum() = %x, want %s", got, tt.want)
			}
		})
	}
}

func TestSum_BLAKE2bMatchesLibrary(t *testing.T) {
	msg := []byte("the quick brown fox")

	got, err := Sum(BLAKE2b, msg)
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	h := blake2b.Sum256(msg)
	want := new(big.Int).SetBytes(h[:])
	if got.Cmp(want) != 0 {
		t.Errorf("Sum() = %x, want %x", got, want)
	}
}

func TestSum_UnknownAlgorithm(t *testing.T) {
	_, err := Sum(Algorithm("md5"), []byte("x"))
	if !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("Sum() error = %v, want ErrUnknownAlgorithm", err)
	}
}

func TestSumInRange_WithinBound(t *testing.T) {
	large, _ := new(big.Int).SetString("f0000000000000000000000000000001", 16)
	bounds := []*big.Int{
		big.NewInt(2),
		big.NewInt(7),
		big.NewInt(97),
		new(big.Int).SetUint64(1<<61 - 1),
		large,
	}

	for _, bound := range bounds {
		v, err := SumInRange([]byte("message under test"), bound)
		if err != nil {
			t.Fatalf("SumInRange(bound=%v) error = %v", bound, err)
		}
		if v.Sign() < 0 || v.Cmp(bound) >= 0 {
			t.Errorf("SumInRange(bound=%v) = %v, out of range", bound, v)
		}
	}
}

func TestSumInRange_Deterministic(t *testing.T) {
	bound := big.NewInt(1000003)

	a, err := SumInRange([]byte("stable"), bound)
	if err != nil {
		t.Fatalf("SumInRange() error = %v", err)
	}
	b, err := SumInRange([]byte("stable"), bound)
	if err != nil {
		t.Fatalf("SumInRange() error = %v", err)
	}
	if a.Cmp(b) != 0 {
		t.Errorf("SumInRange() not deterministic: %v vs %v", a, b)
	}
}

func TestSumInRange_DistinctMessages(t *testing.T) {
	bound := new(big.Int).Lsh(big.NewInt(1), 128)

	a, err := SumInRange([]byte("alpha"), bound)
	if err != nil {
		t.Fatalf("SumInRange() error = %v", err)
	}
	b, err := SumInRange([]byte("beta"), bound)
	if err != nil {
		t.Fatalf("SumInRange() error = %v", err)
	}
	if a.Cmp(b) == 0 {
		t.Errorf("SumInRange() mapped distinct messages to %v", a)
	}
}

func TestSumInRange_BoundOne(t *testing.T) {
	v, err := SumInRange([]byte("anything"), big.NewInt(1))
	if err != nil {
		t.Fatalf("SumInRange() error = %v", err)
	}
	if v.Sign() != 0 {
		t.Errorf("SumInRange(bound=1) = %v, want 0", v)
	}
}

func TestSumInRange_InvalidBound(t *testing.T) {
	for _, bound := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
		_, err := SumInRange([]byte("x"), bound)
		if !errors.Is(err, ErrInvalidBound) {
			t.Errorf("SumInRange(bound=%v) error = %v, want ErrInvalidBound", bound, err)
		}
	}
}
