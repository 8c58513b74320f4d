package cipher

import (
	"strconv"

	"github.com/pkg/errors"
)

// ErrCipherNotSupported means the cipher has not been implemented.
var ErrCipherNotSupported = errors.New("cipher not supported")

// KeySizeError reports the key size a cipher requires.
type KeySizeError int

func (e KeySizeError) Error() string {
	return "key size error: need " + strconv.Itoa(int(e)) + " bytes"
}

// IVSizeError reports the IV size a cipher requires.
type IVSizeError int

func (e IVSizeError) Error() string {
	return "IV size error: need " + strconv.Itoa(int(e)) + " bytes"
}
