package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"testing"

	schoolbook "github.com/schoolbook/crypto-go"
)

func runHelper(t *testing.T, stdin string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cfg := Config{In: strings.NewReader(stdin), Out: out}
	err := run(append([]string{"testhelper"}, args...), cfg)
	return out, err
}

func TestRun_NoCommand(t *testing.T) {
	if _, err := runHelper(t, ""); err == nil {
		t.Error("run() with no command succeeded, want error")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	if _, err := runHelper(t, "", "frobnicate"); err == nil {
		t.Error("run(frobnicate) succeeded, want error")
	}
}

func TestRunRSAKeygen(t *testing.T) {
	out, err := runHelper(t, "", "rsa-keygen", "48")
	if err != nil {
		t.Fatalf("run(rsa-keygen) error = %v", err)
	}

	var pair struct {
		Private schoolbook.RSAPrivateRecord `json:"private"`
		Public  schoolbook.RSAPublicRecord  `json:"public"`
	}
	if err := json.Unmarshal(out.Bytes(), &pair); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if pair.Private.D == nil || pair.Private.N == nil || pair.Public.E == nil {
		t.Errorf("incomplete key pair: %s", out.Bytes())
	}
	if pair.Private.N.Cmp(pair.Public.N) != 0 {
		t.Errorf("records disagree on n: %v vs %v", pair.Private.N, pair.Public.N)
	}
}

func TestRunRSASignVerify(t *testing.T) {
	signIn := `{"key":{"d":2753,"n":3233},"message":"cross-check me"}`
	out, err := runHelper(t, signIn, "rsa-sign")
	if err != nil {
		t.Fatalf("run(rsa-sign) error = %v", err)
	}

	var signed signOutput
	if err := json.Unmarshal(out.Bytes(), &signed); err != nil {
		t.Fatalf("parse signature: %v", err)
	}
	if signed.Signature == nil {
		t.Fatal("signature missing from output")
	}

	verifyIn := fmt.Sprintf(`{"key":{"e":17,"n":3233},"message":"cross-check me","signature":%v}`, signed.Signature)
	out, err = runHelper(t, verifyIn, "rsa-verify")
	if err != nil {
		t.Fatalf("run(rsa-verify) error = %v", err)
	}

	var verdict verifyOutput
	if err := json.Unmarshal(out.Bytes(), &verdict); err != nil {
		t.Fatalf("parse verdict: %v", err)
	}
	if !verdict.Valid {
		t.Error("valid signature rejected")
	}

	// A shifted signature decrypts to a different residue, so it must fail.
	forged := new(big.Int).Add(signed.Signature, big.NewInt(1))
	verifyIn = fmt.Sprintf(`{"key":{"e":17,"n":3233},"message":"cross-check me","signature":%v}`, forged)
	out, err = runHelper(t, verifyIn, "rsa-verify")
	if err != nil {
		t.Fatalf("run(rsa-verify) error = %v", err)
	}
	if err := json.Unmarshal(out.Bytes(), &verdict); err != nil {
		t.Fatalf("parse verdict: %v", err)
	}
	if verdict.Valid {
		t.Error("forged signature accepted")
	}
}

func TestRunRSASign_MissingKey(t *testing.T) {
	if _, err := runHelper(t, `{"message":"x"}`, "rsa-sign"); err == nil {
		t.Error("run(rsa-sign) without key succeeded, want error")
	}
}

func TestRunRSASign_InvalidJSON(t *testing.T) {
	if _, err := runHelper(t, "not json", "rsa-sign"); err == nil {
		t.Error("run(rsa-sign) with invalid JSON succeeded, want error")
	}
}

func TestRunElGamalKeygen(t *testing.T) {
	out, err := runHelper(t, "", "elgamal-keygen", "24")
	if err != nil {
		t.Fatalf("run(elgamal-keygen) error = %v", err)
	}

	var pair struct {
		Private schoolbook.ElGamalPrivateRecord `json:"private"`
		Public  schoolbook.ElGamalPublicRecord  `json:"public"`
	}
	if err := json.Unmarshal(out.Bytes(), &pair); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if pair.Private.P == nil || pair.Private.P.BitLen() != 24 {
		t.Errorf("prime = %v, want 24 bits", pair.Private.P)
	}
	if pair.Public.Y == nil {
		t.Error("public record is missing y")
	}
}

func TestRunElGamalRoundtrip(t *testing.T) {
	in := `{"key":{"p":307,"g":5,"x":10},"text":"Go!"}`
	out, err := runHelper(t, in, "elgamal-roundtrip")
	if err != nil {
		t.Fatalf("run(elgamal-roundtrip) error = %v", err)
	}

	var rt roundtripOutput
	if err := json.Unmarshal(out.Bytes(), &rt); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if rt.Text != "Go!" {
		t.Errorf("round-trip text = %q, want %q", rt.Text, "Go!")
	}
}

func TestRunElGamalRoundtrip_BadKey(t *testing.T) {
	in := `{"key":{"p":10,"g":5,"x":3},"text":"Go!"}`
	if _, err := runHelper(t, in, "elgamal-roundtrip"); err == nil {
		t.Error("run(elgamal-roundtrip) with composite p succeeded, want error")
	}
}

func TestParseBits(t *testing.T) {
	bits, err := parseBits(nil, 512)
	if err != nil || bits != 512 {
		t.Errorf("parseBits(nil) = (%d, %v), want (512, nil)", bits, err)
	}

	bits, err = parseBits([]string{"64"}, 512)
	if err != nil || bits != 64 {
		t.Errorf("parseBits(64) = (%d, %v), want (64, nil)", bits, err)
	}

	if _, err := parseBits([]string{"lots"}, 512); err == nil {
		t.Error("parseBits(lots) succeeded, want error")
	}
}
