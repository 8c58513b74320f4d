package cipherstream_test

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/riobard/go-symcrypt/cipherstream"
	"github.com/riobard/go-symcrypt/core"
)

func newEngine(t *testing.T, name string, op core.Mode, key []byte, params *core.Params) *core.Engine {
	e, err := core.NewEngine(name)
	require.NoError(t, err)
	e.SetParams(params)
	require.NoError(t, e.Init(op, key))
	return e
}

func TestStreamRoundTrip(t *testing.T) {
	key := make([]byte, 16)
	params := &core.Params{IV: make([]byte, 16)}

	for _, size := range []int{0, 1, 15, 16, 17, 1000, 64*1024 + 3} {
		for _, name := range []string{"AES/CBC/PKCS5Padding", "AES/CTR/NoPadding", "AES/GCM/NoPadding"} {
			plaintext := make([]byte, size)
			_, err := rand.Read(plaintext)
			require.NoError(t, err)

			var ct bytes.Buffer
			w := cipherstream.NewWriter(&ct, newEngine(t, name, core.EncryptMode, key, params))
			_, err = io.Copy(w, bytes.NewReader(plaintext))
			require.NoError(t, err)
			require.NoError(t, w.Close())
			require.NoError(t, w.Close(), "second Close is a no-op")

			// same bytes as the one-shot transform
			oneShot, err := newEngine(t, name, core.EncryptMode, key, params).DoFinal(plaintext)
			require.NoError(t, err)
			require.True(t, bytes.Equal(oneShot, ct.Bytes()), "%s %d", name, size)

			var pt bytes.Buffer
			r := cipherstream.NewReader(iotest.HalfReader(&ct), newEngine(t, name, core.DecryptMode, key, params))
			_, err = io.Copy(&pt, r)
			require.NoError(t, err)
			require.Equal(t, size, pt.Len())
			require.True(t, bytes.Equal(plaintext, pt.Bytes()), "%s %d", name, size)
		}
	}
}

func TestReaderSmallReads(t *testing.T) {
	key := make([]byte, 16)
	params := &core.Params{IV: make([]byte, 16)}
	plaintext := []byte("a message spanning more than one block")

	ct, err := newEngine(t, "AES/CBC/PKCS5Padding", core.EncryptMode, key, params).DoFinal(plaintext)
	require.NoError(t, err)

	r := cipherstream.NewReader(bytes.NewReader(ct), newEngine(t, "AES/CBC/PKCS5Padding", core.DecryptMode, key, params))
	var got []byte
	b := make([]byte, 3)
	for {
		n, err := r.Read(b)
		got = append(got, b[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	require.Equal(t, plaintext, got)
}

func TestWriterErrors(t *testing.T) {
	key := make([]byte, 16)
	params := &core.Params{IV: make([]byte, 16)}

	w := cipherstream.NewWriter(&failingWriter{err: io.ErrShortWrite}, newEngine(t, "AES/CTR/NoPadding", core.EncryptMode, key, params))
	_, err := w.Write([]byte("data"))
	require.ErrorIs(t, err, io.ErrShortWrite)

	w = cipherstream.NewWriter(io.Discard, newEngine(t, "AES/CBC/NoPadding", core.EncryptMode, key, params))
	_, err = w.Write([]byte("odd"))
	require.NoError(t, err)
	require.ErrorIs(t, w.Close(), core.ErrBlockSize)

	_, err = w.Write([]byte("more"))
	require.ErrorIs(t, err, cipherstream.ErrClosed)
}

func TestReaderErrors(t *testing.T) {
	key := make([]byte, 16)
	params := &core.Params{IV: make([]byte, 16)}

	r := cipherstream.NewReader(iotest.ErrReader(io.ErrClosedPipe), newEngine(t, "AES/CBC/PKCS5Padding", core.DecryptMode, key, params))
	_, err := io.Copy(io.Discard, r)
	require.ErrorIs(t, err, io.ErrClosedPipe)

	// truncated ciphertext fails in DoFinal
	r = cipherstream.NewReader(bytes.NewReader(make([]byte, 20)), newEngine(t, "AES/CBC/NoPadding", core.DecryptMode, key, params))
	_, err = io.ReadAll(r)
	require.ErrorIs(t, err, core.ErrBlockSize)
}

type failingWriter struct {
	err error
}

func (w *failingWriter) Write(p []byte) (n int, err error) {
	return 0, w.err
}
