package cipher

import (
	"crypto/cipher"

	"golang.org/x/crypto/chacha20poly1305"
)

// AEAD ciphers

// GCM wraps a 16-byte block cipher in Galois/Counter mode. A nonceSize of
// zero selects the standard 12-byte nonce.
func GCM(blk cipher.Block, nonceSize int) (cipher.AEAD, error) {
	if nonceSize > 0 && nonceSize != 12 {
		return cipher.NewGCMWithNonceSize(blk, nonceSize)
	}
	return cipher.NewGCM(blk)
}

func Chacha20IETFPoly1305(key []byte) (cipher.AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, KeySizeError(chacha20poly1305.KeySize)
	}
	return chacha20poly1305.New(key)
}
