// Command testhelper exposes key generation, signing, and encryption over
// stdin/stdout JSON so implementations of the same record schema in other
// languages can be checked against this one.
package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"time"

	schoolbook "github.com/schoolbook/crypto-go"
)

// Config carries the helper's IO streams so tests can capture them.
type Config struct {
	In  io.Reader
	Out io.Writer
}

// DefaultConfig returns a Config wired to the process streams.
func DefaultConfig() Config {
	return Config{In: os.Stdin, Out: os.Stdout}
}

func main() {
	if err := run(os.Args, DefaultConfig()); err != nil {
		fatal("%v", err)
	}
}

func run(args []string, cfg Config) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: testhelper <command> [args]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch args[1] {
	case "rsa-keygen":
		return rsaKeygen(ctx, args[2:], cfg)
	case "rsa-sign":
		return rsaSign(cfg)
	case "rsa-verify":
		return rsaVerify(cfg)
	case "elgamal-keygen":
		return elgamalKeygen(ctx, args[2:], cfg)
	case "elgamal-roundtrip":
		return elgamalRoundtrip(cfg)
	default:
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

// keyPairOutput bundles both record halves of a generated key.
type keyPairOutput struct {
	Private any `json:"private"`
	Public  any `json:"public"`
}

type signInput struct {
	Key     *schoolbook.RSAPrivateRecord `json:"key"`
	Message string                       `json:"message"`
}

type signOutput struct {
	Signature *big.Int `json:"signature"`
}

type verifyInput struct {
	Key       *schoolbook.RSAPublicRecord `json:"key"`
	Message   string                      `json:"message"`
	Signature *big.Int                    `json:"signature"`
}

type verifyOutput struct {
	Valid bool `json:"valid"`
}

type roundtripInput struct {
	Key  *schoolbook.ElGamalPrivateRecord `json:"key"`
	Text string                           `json:"text"`
}

type roundtripOutput struct {
	Text string `json:"text"`
}

func parseBits(args []string, fallback int) (int, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	bits, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("parse bit length %q: %w", args[0], err)
	}
	return bits, nil
}

func rsaKeygen(ctx context.Context, args []string, cfg Config) error {
	bits, err := parseBits(args, 512)
	if err != nil {
		return err
	}

	key, err := schoolbook.GenerateRSAKey(ctx, bits)
	if err != nil {
		return fmt.Errorf("generate rsa key: %w", err)
	}

	return json.NewEncoder(cfg.Out).Encode(keyPairOutput{
		Private: key.Record(),
		Public:  key.Public().Record(),
	})
}

func rsaSign(cfg Config) error {
	var in signInput
	if err := json.NewDecoder(cfg.In).Decode(&in); err != nil {
		return fmt.Errorf("parse sign input: %w", err)
	}
	if in.Key == nil {
		return fmt.Errorf("sign input is missing the key record")
	}

	key, err := in.Key.Key()
	if err != nil {
		return fmt.Errorf("rebuild key: %w", err)
	}

	sig, err := key.SignMessage([]byte(in.Message))
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}

	return json.NewEncoder(cfg.Out).Encode(signOutput{Signature: sig})
}

func rsaVerify(cfg Config) error {
	var in verifyInput
	if err := json.NewDecoder(cfg.In).Decode(&in); err != nil {
		return fmt.Errorf("parse verify input: %w", err)
	}
	if in.Key == nil {
		return fmt.Errorf("verify input is missing the key record")
	}

	key, err := in.Key.Key()
	if err != nil {
		return fmt.Errorf("rebuild key: %w", err)
	}

	return json.NewEncoder(cfg.Out).Encode(verifyOutput{
		Valid: key.VerifyMessage([]byte(in.Message), in.Signature),
	})
}

func elgamalKeygen(ctx context.Context, args []string, cfg Config) error {
	bits, err := parseBits(args, 64)
	if err != nil {
		return err
	}

	key, err := schoolbook.GenerateElGamalKeyBits(ctx, bits)
	if err != nil {
		return fmt.Errorf("generate elgamal key: %w", err)
	}

	return json.NewEncoder(cfg.Out).Encode(keyPairOutput{
		Private: key.Record(),
		Public:  key.Public().Record(),
	})
}

func elgamalRoundtrip(cfg Config) error {
	var in roundtripInput
	if err := json.NewDecoder(cfg.In).Decode(&in); err != nil {
		return fmt.Errorf("parse roundtrip input: %w", err)
	}
	if in.Key == nil {
		return fmt.Errorf("roundtrip input is missing the key record")
	}

	key, err := in.Key.Key()
	if err != nil {
		return fmt.Errorf("rebuild key: %w", err)
	}

	cipher, err := key.Public().Encrypt(rand.Reader, schoolbook.UnitsFromString(in.Text))
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	plain, err := key.Decrypt(cipher)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	text, err := schoolbook.StringFromUnits(plain)
	if err != nil {
		return fmt.Errorf("decode units: %w", err)
	}

	return json.NewEncoder(cfg.Out).Encode(roundtripOutput{Text: text})
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
