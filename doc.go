// Package schoolbook implements textbook RSA and ElGamal over math/big,
// together with the number-theory kernel they are built on: modular
// exponentiation and inversion, Miller-Rabin primality testing, bounded
// prime generation, and multiplicative-group generator discovery.
//
// Everything here is the unpadded, unblinded classroom construction. It is
// meant for studying the algorithms and for interoperating with other
// teaching implementations, not for protecting data; parameters small enough
// to factor by hand are accepted on purpose.
//
// Basic usage:
//
//	key, err := schoolbook.GenerateRSAKey(ctx, 64)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sig, err := key.SignMessage([]byte("attack at dawn"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if !key.Public().VerifyMessage([]byte("attack at dawn"), sig) {
//	    log.Fatal("signature rejected")
//	}
//
// Encryption works on message units below the modulus, one unit per rune:
//
//	units := schoolbook.UnitsFromString("hello")
//	cipher, err := key.Public().Encrypt(units)
//
// All long-running searches take a context and an internal attempt budget,
// so a hopeless parameter choice fails with a timeout instead of spinning
// forever.
package schoolbook
