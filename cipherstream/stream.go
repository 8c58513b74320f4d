package cipherstream

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

const bufSize = 32 * 1024

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("cipherstream: write after close")

type writer struct {
	io.Writer
	Transformer
	buf    []byte
	closed bool
}

// NewWriter wraps an io.Writer with t. Close must be called to write the
// final block; it does not close w.
func NewWriter(w io.Writer, t Transformer) io.WriteCloser {
	return &writer{Writer: w, Transformer: t}
}

func (w *writer) ReadFrom(r io.Reader) (n int64, err error) {
	if w.closed {
		return 0, ErrClosed
	}
	if w.buf == nil {
		w.buf = make([]byte, bufSize)
	}

	for {
		buf := w.buf
		nr, er := r.Read(buf)
		if nr > 0 {
			n += int64(nr)
			out, et := w.Update(buf[:nr])
			if et != nil {
				err = et
				return
			}
			if len(out) > 0 {
				if _, ew := w.Writer.Write(out); ew != nil {
					err = ew
					return
				}
			}
		}

		if er != nil {
			if er != io.EOF { // ignore EOF as per io.ReaderFrom contract
				err = er
			}
			return
		}
	}
}

func (w *writer) Write(b []byte) (int, error) {
	n, err := w.ReadFrom(bytes.NewBuffer(b))
	return int(n), err
}

// Close finishes the transform and writes the final output. Further calls
// are no-ops.
func (w *writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	out, err := w.DoFinal(nil)
	if err != nil {
		return err
	}
	if len(out) > 0 {
		_, err = w.Writer.Write(out)
	}
	return err
}

type reader struct {
	io.Reader
	Transformer
	buf     []byte
	pending []byte
	eof     bool
}

// NewReader wraps an io.Reader with t. The final block is produced when r
// reports io.EOF.
func NewReader(r io.Reader, t Transformer) io.Reader {
	return &reader{Reader: r, Transformer: t}
}

// fill reads from the underlying reader until output is available or the
// transform is finished.
func (r *reader) fill() error {
	if r.buf == nil {
		r.buf = make([]byte, bufSize)
	}
	for len(r.pending) == 0 {
		if r.eof {
			return io.EOF
		}
		nr, er := r.Reader.Read(r.buf)
		if nr > 0 {
			out, err := r.Update(r.buf[:nr])
			if err != nil {
				return err
			}
			r.pending = out
		}
		if er == io.EOF {
			out, err := r.DoFinal(nil)
			if err != nil {
				return err
			}
			r.pending = append(r.pending, out...)
			r.eof = true
		} else if er != nil {
			return er
		}
	}
	return nil
}

func (r *reader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if err := r.fill(); err != nil {
		return 0, err
	}
	n := copy(b, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *reader) WriteTo(w io.Writer) (n int64, err error) {
	for {
		if er := r.fill(); er != nil {
			if er != io.EOF { // ignore EOF as per io.Copy contract (using src.WriteTo shortcut)
				err = er
			}
			return
		}
		nw, ew := w.Write(r.pending)
		n += int64(nw)
		r.pending = r.pending[nw:]
		if ew != nil {
			err = ew
			return
		}
	}
}
