// Package padding implements block padding schemes and the zero-padding codec.
package padding

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"io"
	"strings"

	"github.com/mergermarket/go-pkcs7"
	"github.com/pkg/errors"
)

var (
	// ErrBlockSize means the data length is not a multiple of the block size.
	ErrBlockSize = errors.New("input length not multiple of block size")

	// ErrInvalidPadding means the trailing padding bytes are malformed.
	ErrInvalidPadding = errors.New("invalid padding")

	// ErrPaddingNotSupported means the padding scheme is unknown.
	ErrPaddingNotSupported = errors.New("padding not supported")
)

// Padding fills the final block before encryption and removes the fill
// after decryption.
type Padding interface {
	Name() string
	Pad(data []byte, blockSize int) ([]byte, error)
	Unpad(data []byte, blockSize int) ([]byte, error)
}

var (
	NoPadding       Padding = noPadding{}
	PKCS5Padding    Padding = pkcs5Padding{}
	ISO10126Padding Padding = iso10126Padding{}
)

// ZeroPadding is recognised by name only. It is not a Padding: the zero fill
// is indistinguishable from data, so callers pad and strip it themselves.
const ZeroPadding = "ZeroPadding"

var paddingList = map[string]Padding{
	"NOPADDING":       NoPadding,
	"PKCS5PADDING":    PKCS5Padding,
	"PKCS7PADDING":    PKCS5Padding,
	"ISO10126PADDING": ISO10126Padding,
}

// Lookup returns the Padding registered under name, case-insensitively.
func Lookup(name string) (Padding, error) {
	if p, ok := paddingList[strings.ToUpper(name)]; ok {
		return p, nil
	}
	return nil, errors.Wrap(ErrPaddingNotSupported, name)
}

// IsZeroPadding reports whether name selects the zero-padding scheme.
func IsZeroPadding(name string) bool { return strings.EqualFold(name, ZeroPadding) }

type noPadding struct{}

func (noPadding) Name() string { return "NoPadding" }

func (noPadding) Pad(data []byte, blockSize int) ([]byte, error) {
	if blockSize > 0 && len(data)%blockSize != 0 {
		return nil, ErrBlockSize
	}
	return data, nil
}

func (noPadding) Unpad(data []byte, blockSize int) ([]byte, error) { return data, nil }

// PKCS#5 and PKCS#7 differ only in the block sizes they are defined for.
type pkcs5Padding struct{}

func (pkcs5Padding) Name() string { return "PKCS5Padding" }

func (pkcs5Padding) Pad(data []byte, blockSize int) ([]byte, error) {
	out, err := pkcs7.Pad(data, blockSize)
	return out, errors.Wrap(err, "pkcs5 pad")
}

func (pkcs5Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	if blockSize <= 0 || len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBlockSize
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrInvalidPadding
	}
	tail := data[len(data)-n:]
	if subtle.ConstantTimeCompare(tail, bytes.Repeat(tail[len(tail)-1:], n)) != 1 {
		return nil, ErrInvalidPadding
	}
	out, err := pkcs7.Unpad(data, blockSize)
	if err != nil {
		return nil, ErrInvalidPadding
	}
	return out, nil
}

// ISO 10126: random fill, last byte holds the pad length.
type iso10126Padding struct{}

func (iso10126Padding) Name() string { return "ISO10126Padding" }

func (iso10126Padding) Pad(data []byte, blockSize int) ([]byte, error) {
	if blockSize <= 0 || blockSize > 255 {
		return nil, ErrBlockSize
	}
	n := blockSize - len(data)%blockSize
	fill := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, fill[:n-1]); err != nil {
		return nil, errors.Wrap(err, "iso10126 pad")
	}
	fill[n-1] = byte(n)
	return append(data, fill...), nil
}

func (iso10126Padding) Unpad(data []byte, blockSize int) ([]byte, error) {
	if blockSize <= 0 || len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBlockSize
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrInvalidPadding
	}
	return data[:len(data)-n], nil
}
