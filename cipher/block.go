package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"

	"github.com/emmansun/gmsm/sm4"
	"golang.org/x/crypto/blowfish"
)

// Block ciphers

func AES(key []byte) (cipher.Block, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, KeySizeError(16)
	}
	return aes.NewCipher(key)
}

func DES(key []byte) (cipher.Block, error) {
	if len(key) != des.BlockSize {
		return nil, KeySizeError(des.BlockSize)
	}
	return des.NewCipher(key)
}

// DESede is triple DES in EDE form with a 24-byte key.
func DESede(key []byte) (cipher.Block, error) {
	if len(key) != 3*des.BlockSize {
		return nil, KeySizeError(3 * des.BlockSize)
	}
	return des.NewTripleDESCipher(key)
}

// Blowfish accepts keys from 4 to 56 bytes.
func Blowfish(key []byte) (cipher.Block, error) {
	if len(key) < 4 || len(key) > 56 {
		return nil, KeySizeError(16)
	}
	return blowfish.NewCipher(key)
}

func SM4(key []byte) (cipher.Block, error) {
	if len(key) != sm4.BlockSize {
		return nil, KeySizeError(sm4.BlockSize)
	}
	return sm4.NewCipher(key)
}
