package core

import (
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"io"
	"sort"

	"github.com/pkg/errors"

	ciphers "github.com/riobard/go-symcrypt/cipher"
)

// ErrCipherNotSupported occurs when an algorithm, mode or padding is not supported.
var ErrCipherNotSupported = ciphers.ErrCipherNotSupported

// List of block ciphers: block size, default key size in bytes and constructor
var blockList = map[string]struct {
	Name      string
	BlockSize int
	KeySize   int
	New       func(key []byte) (cipher.Block, error)
}{
	"AES":      {"AES", 16, 16, ciphers.AES},
	"DES":      {"DES", 8, 8, ciphers.DES},
	"DESEDE":   {"DESede", 8, 24, ciphers.DESede},
	"BLOWFISH": {"Blowfish", 8, 16, ciphers.Blowfish},
	"SM4":      {"SM4", 16, 16, ciphers.SM4},
}

// List of stream ciphers: default key size in bytes and constructor
var streamList = map[string]struct {
	Name    string
	KeySize int
	New     func(key []byte) (ciphers.Stream, error)
}{
	"RC4":       {"RC4", 16, ciphers.RC4},
	"ARCFOUR":   {"ARCFOUR", 16, ciphers.RC4},
	"CHACHA20":  {"ChaCha20", 32, ciphers.Chacha20IETF},
	"XCHACHA20": {"XChaCha20", 32, ciphers.Xchacha20},
	"ZUC":       {"ZUC", 16, ciphers.ZUC},
	"DUMMY":     {"Dummy", 0, ciphers.Dummy},
}

// List of AEAD ciphers: key size in bytes and constructor
var aeadList = map[string]struct {
	Name    string
	KeySize int
	New     func(key []byte) (cipher.AEAD, error)
}{
	"CHACHA20-POLY1305": {"ChaCha20-Poly1305", 32, ciphers.Chacha20IETFPoly1305},
}

// Chaining modes applicable to block ciphers.
const (
	ModeECB  = "ECB"
	ModeCBC  = "CBC"
	ModeCTR  = "CTR"
	ModeCFB  = "CFB"
	ModeOFB  = "OFB"
	ModeGCM  = "GCM"
	ModeNone = "NONE"
)

// ListCipher returns a list of available algorithm names sorted alphabetically.
func ListCipher() []string {
	var l []string
	for _, c := range blockList {
		l = append(l, c.Name)
	}
	for _, c := range streamList {
		l = append(l, c.Name)
	}
	for _, c := range aeadList {
		l = append(l, c.Name)
	}
	for _, c := range pbeList {
		l = append(l, c.Name)
	}
	sort.Strings(l)
	return l
}

// BlockSize returns the block size of the named algorithm, 0 for stream
// ciphers and AEAD constructions.
func BlockSize(algorithm string) (int, error) {
	t, err := ParseTransform(algorithm)
	if err != nil {
		return 0, err
	}
	name := upper(t.Algorithm)
	if p, ok := pbeList[name]; ok {
		name = upper(p.Cipher)
	}
	if c, ok := blockList[name]; ok {
		return c.BlockSize, nil
	}
	if _, ok := streamList[name]; ok {
		return 0, nil
	}
	if _, ok := aeadList[name]; ok {
		return 0, nil
	}
	return 0, errors.Wrap(ErrCipherNotSupported, t.Algorithm)
}

// GenerateKey returns key material suited to algorithm. A nil key yields a
// random key of the algorithm's default size read from random (crypto/rand
// when nil). A given key is copied; DES keeps its first 8 bytes and DESede
// its first 24. For password-based schemes the key is the password.
func GenerateKey(algorithm string, key []byte, random io.Reader) ([]byte, error) {
	t, err := ParseTransform(algorithm)
	if err != nil {
		return nil, err
	}
	if random == nil {
		random = rand.Reader
	}
	name := upper(t.Algorithm)

	if _, ok := pbeList[name]; ok {
		if key != nil {
			return cloneBytes(key), nil
		}
		b, err := randomBytes(random, 16)
		if err != nil {
			return nil, err
		}
		return []byte(hex.EncodeToString(b)), nil
	}

	size, ok := defaultKeySize(name)
	if !ok {
		return nil, errors.Wrap(ErrCipherNotSupported, t.Algorithm)
	}
	if key == nil {
		return randomBytes(random, size)
	}
	switch name {
	case "DES", "DESEDE":
		if len(key) < size {
			return nil, ciphers.KeySizeError(size)
		}
		return cloneBytes(key[:size]), nil
	}
	return cloneBytes(key), nil
}

// KeySize returns the default key size in bytes of the named algorithm. For
// password-based schemes it is the size of the derived key.
func KeySize(algorithm string) (int, error) {
	t, err := ParseTransform(algorithm)
	if err != nil {
		return 0, err
	}
	name := upper(t.Algorithm)
	if p, ok := pbeList[name]; ok {
		return p.KeySize, nil
	}
	if size, ok := defaultKeySize(name); ok {
		return size, nil
	}
	return 0, errors.Wrap(ErrCipherNotSupported, t.Algorithm)
}

func defaultKeySize(name string) (int, bool) {
	if c, ok := blockList[name]; ok {
		return c.KeySize, true
	}
	if c, ok := streamList[name]; ok {
		return c.KeySize, true
	}
	if c, ok := aeadList[name]; ok {
		return c.KeySize, true
	}
	return 0, false
}

func randomBytes(random io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(random, b); err != nil {
		return nil, errors.Wrap(err, "read random")
	}
	return b, nil
}

// Kdf derives a keyLen-byte key from password the way OpenSSL's
// EVP_BytesToKey does with MD5 and a single round.
func Kdf(password string, keyLen int) []byte {
	var b, prev []byte
	h := md5.New()
	for len(b) < keyLen {
		h.Write(prev)
		h.Write([]byte(password))
		b = h.Sum(b)
		prev = b[len(b)-h.Size():]
		h.Reset()
	}
	return b[:keyLen]
}
