package symmetric

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

var errUnknownEncoding = errors.New("input is neither hex nor base64")

// EncryptHex encrypts data and returns the ciphertext as lower-case hex.
func (c *Crypto) EncryptHex(data []byte) (string, error) {
	out, err := c.Encrypt(data)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

// EncryptBase64 encrypts data and returns the ciphertext in standard base64.
func (c *Crypto) EncryptBase64(data []byte) (string, error) {
	out, err := c.Encrypt(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptHex decrypts hex-encoded ciphertext.
func (c *Crypto) DecryptHex(s string) ([]byte, error) {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, wrap("decrypt", err)
	}
	return c.Decrypt(data)
}

// DecryptBase64 decrypts base64 ciphertext in the standard or URL alphabet,
// with or without padding.
func (c *Crypto) DecryptBase64(s string) ([]byte, error) {
	data, err := decodeBase64(strings.TrimSpace(s))
	if err != nil {
		return nil, wrap("decrypt", err)
	}
	return c.Decrypt(data)
}

// DecryptString decrypts ciphertext given as hex or base64. Hex wins when
// both readings are valid, so unpadded base64 made of hex digits only is
// misread; use DecryptBase64 when the encoding is known.
func (c *Crypto) DecryptString(s string) ([]byte, error) {
	data, err := decodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, wrap("decrypt", err)
	}
	return c.Decrypt(data)
}

var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.URLEncoding,
	base64.RawStdEncoding,
	base64.RawURLEncoding,
}

func decodeString(s string) ([]byte, error) {
	if b, err := hex.DecodeString(s); err == nil {
		return b, nil
	}
	return decodeBase64(s)
}

func decodeBase64(s string) ([]byte, error) {
	for _, enc := range encodings {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, errUnknownEncoding
}
