package padding

import (
	"io"

	"github.com/pkg/errors"
)

// DefaultBufferSize is the preferred read size of CopyZeroStripped.
const DefaultBufferSize = 8 * 1024

// ZeroPad right-pads data with zero bytes to the next multiple of blockSize.
// Aligned data, and any data when blockSize is 0 (stream ciphers), is
// returned unchanged.
func ZeroPad(data []byte, blockSize int) []byte {
	if blockSize <= 0 {
		return data
	}
	rem := len(data) % blockSize
	if rem == 0 {
		return data
	}
	out := make([]byte, len(data)+blockSize-rem)
	copy(out, data)
	return out
}

// StripZero drops every trailing zero byte of data when its length is a
// multiple of blockSize; otherwise data is returned unchanged.
//
// Block-aligned plaintext that genuinely ends in zero bytes is truncated
// too: zero fill carries no length, so the two cases cannot be told apart.
func StripZero(data []byte, blockSize int) []byte {
	if blockSize <= 0 || len(data)%blockSize != 0 {
		return data
	}
	return trimZero(data)
}

func trimZero(b []byte) []byte {
	i := len(b) - 1
	for i >= 0 && b[i] == 0 {
		i--
	}
	return b[:i+1]
}

// BufferSize rounds size up to a multiple of blockSize, at least one block.
func BufferSize(size, blockSize int) int {
	if blockSize <= 0 {
		return size
	}
	n := 1
	if size > blockSize {
		n = (size + blockSize - 1) / blockSize
	}
	return n * blockSize
}

type flusher interface {
	Flush() error
}

// CopyZeroStripped copies decrypted, zero-padded plaintext from src to dst,
// dropping the zero fill of the final block.
//
// The fill cannot be recognised until src reports EOF, so one buffer is held
// back: each buffer is written only once the next one has been read, and the
// last one has its trailing zeros stripped. Earlier buffers pass through
// untouched even when they end in zero bytes. Buffers are filled completely
// and sized in whole blocks, so the final block never straddles two of them.
// An empty src writes nothing. dst is flushed if it has a Flush method.
func CopyZeroStripped(dst io.Writer, src io.Reader, blockSize, bufSize int) (written int64, err error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	bufSize = BufferSize(bufSize, blockSize)

	prev := make([]byte, bufSize)
	cur := make([]byte, bufSize)
	prevLen := 0
	first := true

	for {
		nr, er := io.ReadFull(src, cur)
		if nr > 0 {
			if first {
				first = false
			} else {
				nw, ew := dst.Write(prev[:prevLen])
				written += int64(nw)
				if ew != nil {
					return written, errors.Wrap(ew, "write plaintext")
				}
			}
			prev, cur = cur, prev
			prevLen = nr
		}
		if er == io.EOF || er == io.ErrUnexpectedEOF {
			break
		}
		if er != nil {
			return written, errors.Wrap(er, "read ciphertext")
		}
	}

	if tail := trimZero(prev[:prevLen]); len(tail) > 0 {
		nw, ew := dst.Write(tail)
		written += int64(nw)
		if ew != nil {
			return written, errors.Wrap(ew, "write plaintext")
		}
	}
	if f, ok := dst.(flusher); ok {
		if err := f.Flush(); err != nil {
			return written, errors.Wrap(err, "flush plaintext")
		}
	}
	return written, nil
}
