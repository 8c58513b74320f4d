package core

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"hash"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

// ErrSaltRequired means a password-based scheme was initialised without a salt.
var ErrSaltRequired = errors.New("PBE requires a salt")

type pbeScheme struct {
	Name      string
	Cipher    string
	KeySize   int
	Derive    func(password, salt []byte, iter, keyLen int) []byte
	DerivesIV bool
}

// List of password-based schemes: underlying block cipher, derived key size
// and key-derivation function. PBKDF1 schemes derive the IV alongside the key.
var pbeList = map[string]pbeScheme{
	"PBEWITHMD5ANDDES":            {"PBEWithMD5AndDES", "DES", 8, pbkdf1MD5, true},
	"PBEWITHHMACSHA1ANDAES_128":   {"PBEWithHmacSHA1AndAES_128", "AES", 16, pbkdf2Of(sha1.New), false},
	"PBEWITHHMACSHA256ANDAES_128": {"PBEWithHmacSHA256AndAES_128", "AES", 16, pbkdf2Of(sha256.New), false},
	"PBEWITHHMACSHA256ANDAES_256": {"PBEWithHmacSHA256AndAES_256", "AES", 32, pbkdf2Of(sha256.New), false},
}

// IsPBE reports whether algorithm names a password-based scheme.
func IsPBE(algorithm string) bool {
	t, err := ParseTransform(algorithm)
	if err != nil {
		return false
	}
	_, ok := pbeList[upper(t.Algorithm)]
	return ok
}

// PBKDF1 (RFC 8018 section 5.1) with MD5: T1 = MD5(P || S), Ti = MD5(Ti-1).
func pbkdf1MD5(password, salt []byte, iter, keyLen int) []byte {
	return pbkdf1(md5.New, password, salt, iter, keyLen)
}

func pbkdf1(h func() hash.Hash, password, salt []byte, iter, keyLen int) []byte {
	d := h()
	d.Write(password)
	d.Write(salt)
	t := d.Sum(nil)
	for i := 1; i < iter; i++ {
		d.Reset()
		d.Write(t)
		t = d.Sum(t[:0])
	}
	if keyLen > len(t) {
		keyLen = len(t)
	}
	return t[:keyLen]
}

func pbkdf2Of(h func() hash.Hash) func(password, salt []byte, iter, keyLen int) []byte {
	return func(password, salt []byte, iter, keyLen int) []byte {
		return pbkdf2.Key(password, salt, iter, keyLen, h)
	}
}
