//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"testing"

	schoolbook "github.com/schoolbook/crypto-go"
)

// helperPath returns the path to a built testhelper binary, skipping the
// test when none is configured. Pointing SCHOOLBOOK_HELPER at a helper from
// another implementation of the record schema turns these into true
// cross-implementation checks.
func helperPath(t *testing.T) string {
	t.Helper()
	path := os.Getenv("SCHOOLBOOK_HELPER")
	if path == "" {
		t.Skip("SCHOOLBOOK_HELPER not set")
	}
	return path
}

func runHelper(t *testing.T, stdin string, args ...string) []byte {
	t.Helper()

	cmd := exec.Command(helperPath(t), args...)
	cmd.Stdin = bytes.NewReader([]byte(stdin))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("helper %v failed: %v\nstderr: %s", args, err, stderr.String())
	}
	return out
}

// Keys generated by the helper must be usable by this library, and
// signatures made here must verify there.
func TestCrossImpl_RSARecords(t *testing.T) {
	out := runHelper(t, "", "rsa-keygen", "512")

	var pair struct {
		Private schoolbook.RSAPrivateRecord `json:"private"`
		Public  schoolbook.RSAPublicRecord  `json:"public"`
	}
	if err := json.Unmarshal(out, &pair); err != nil {
		t.Fatalf("parse helper key pair: %v", err)
	}

	key, err := schoolbook.RSAKeyFromRecords(&pair.Private, &pair.Public)
	if err != nil {
		t.Fatalf("RSAKeyFromRecords() error = %v", err)
	}

	// Sign in-process, verify through the helper.
	msg := "cross-implementation signature"
	sig, err := key.SignMessage([]byte(msg))
	if err != nil {
		t.Fatalf("SignMessage() error = %v", err)
	}

	pubJSON, err := json.Marshal(&pair.Public)
	if err != nil {
		t.Fatalf("marshal public record: %v", err)
	}
	verdictJSON := runHelper(t,
		fmt.Sprintf(`{"key":%s,"message":%q,"signature":%v}`, pubJSON, msg, sig),
		"rsa-verify")

	var verdict struct {
		Valid bool `json:"valid"`
	}
	if err := json.Unmarshal(verdictJSON, &verdict); err != nil {
		t.Fatalf("parse verdict: %v", err)
	}
	if !verdict.Valid {
		t.Error("helper rejected a signature this library accepts")
	}
}

// A private record exported here must drive the helper's encrypt/decrypt
// cycle without loss.
func TestCrossImpl_ElGamalRoundtrip(t *testing.T) {
	key, err := schoolbook.GenerateElGamalKeyBits(testContext(t), elgamalBits)
	if err != nil {
		t.Fatalf("GenerateElGamalKeyBits(%d) error = %v", elgamalBits, err)
	}

	recJSON, err := json.Marshal(key.Record())
	if err != nil {
		t.Fatalf("marshal private record: %v", err)
	}

	text := "shared across implementations"
	out := runHelper(t,
		fmt.Sprintf(`{"key":%s,"text":%q}`, recJSON, text),
		"elgamal-roundtrip")

	var rt struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(out, &rt); err != nil {
		t.Fatalf("parse round-trip output: %v", err)
	}
	if rt.Text != text {
		t.Errorf("round-trip text = %q, want %q", rt.Text, text)
	}
}
