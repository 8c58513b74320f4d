package core

import (
	"bytes"
	"encoding/hex"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	ciphers "github.com/riobard/go-symcrypt/cipher"
)

func TestListCipher(t *testing.T) {
	l := ListCipher()
	require.True(t, sort.StringsAreSorted(l))
	for _, name := range []string{"AES", "DES", "DESede", "SM4", "RC4", "ZUC", "ChaCha20-Poly1305", "PBEWithMD5AndDES"} {
		require.Contains(t, l, name)
	}

	// every listed algorithm can be instantiated
	for _, name := range l {
		_, err := NewEngine(name)
		require.NoError(t, err, name)
	}
}

func TestGenerateKey(t *testing.T) {
	tests := []struct {
		algorithm string
		size      int
	}{
		{"AES", 16},
		{"AES/CBC/PKCS5Padding", 16},
		{"DES", 8},
		{"DESede", 24},
		{"Blowfish", 16},
		{"ChaCha20", 32},
		{"ChaCha20-Poly1305", 32},
		{"PBEWithMD5AndDES", 32},
	}
	for _, tt := range tests {
		key, err := GenerateKey(tt.algorithm, nil, nil)
		require.NoError(t, err, tt.algorithm)
		require.Len(t, key, tt.size, tt.algorithm)
	}

	// a PBE password is printable
	pw, err := GenerateKey("PBEWithMD5AndDES", nil, nil)
	require.NoError(t, err)
	_, err = hex.DecodeString(string(pw))
	require.NoError(t, err)

	// random source is honoured
	zero := bytes.NewReader(make([]byte, 64))
	key, err := GenerateKey("AES", nil, zero)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 16), key)

	_, err = GenerateKey("AES", nil, bytes.NewReader(nil))
	require.Error(t, err)
}

func TestGenerateKeyFromBytes(t *testing.T) {
	long := []byte("0123456789abcdefghijklmnopqrstuvwxyz")

	key, err := GenerateKey("DES", long, nil)
	require.NoError(t, err)
	require.Equal(t, long[:8], key)

	key, err = GenerateKey("DESede/CBC/PKCS5Padding", long, nil)
	require.NoError(t, err)
	require.Equal(t, long[:24], key)

	_, err = GenerateKey("DES", long[:4], nil)
	require.Equal(t, ciphers.KeySizeError(8), err)

	key, err = GenerateKey("AES", long[:16], nil)
	require.NoError(t, err)
	require.Equal(t, long[:16], key)
	key[0] = 'X'
	require.Equal(t, byte('0'), long[0], "key is copied")

	_, err = GenerateKey("Foo", nil, nil)
	require.ErrorIs(t, err, ErrCipherNotSupported)
	_, err = GenerateKey("", nil, nil)
	require.ErrorIs(t, err, ErrBlankAlgorithm)
}

func TestKdf(t *testing.T) {
	// MD5 of the empty string
	require.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", hex.EncodeToString(Kdf("", 16)))

	k := Kdf("barfoo!", 32)
	require.Len(t, k, 32)
	require.Equal(t, k[:16], Kdf("barfoo!", 16))
	require.Empty(t, Kdf("x", 0))
}

func TestIsPBE(t *testing.T) {
	require.True(t, IsPBE("PBEWithMD5AndDES"))
	require.True(t, IsPBE("pbewithhmacsha256andaes_256/CBC/PKCS5Padding"))
	require.False(t, IsPBE("AES"))
	require.False(t, IsPBE(""))
}

func TestKeySize(t *testing.T) {
	tests := map[string]int{
		"AES/CBC/PKCS5Padding":        16,
		"DESede":                      24,
		"ChaCha20-Poly1305":           32,
		"rc4":                         16,
		"PBEWithHmacSHA256AndAES_256": 32,
		"PBEWithMD5AndDES":            8,
	}
	for alg, want := range tests {
		got, err := KeySize(alg)
		require.NoError(t, err, alg)
		require.Equal(t, want, got, alg)
	}
	_, err := KeySize("Serpent")
	require.ErrorIs(t, err, ErrCipherNotSupported)
}
