// Package symmetric implements a symmetric cipher session over one key.
//
// A session accepts the ZeroPadding scheme, which no cipher engine offers:
// the engine runs without padding and the session fills the last block with
// zero bytes on encryption and drops trailing zero bytes on decryption.
package symmetric

import (
	"encoding/hex"
	"io"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/riobard/go-symcrypt/cipherstream"
	"github.com/riobard/go-symcrypt/core"
	"github.com/riobard/go-symcrypt/internal"
	"github.com/riobard/go-symcrypt/padding"
)

// Crypto is a cipher session: one algorithm, one secret key and optional
// parameters, reused across any number of operations. All operations that
// touch the cipher state are serialised by a single lock; use one session
// per goroutine for parallel throughput.
type Crypto struct {
	mu          sync.Mutex
	key         []byte
	engine      *core.Engine
	zeroPadding bool
	random      io.Reader
	bufSize     int
	logger      hclog.Logger
	ring        *internal.BloomRing
}

// New returns a session for algorithm, given as ALGORITHM or
// ALGORITHM/MODE/PADDING. A nil key is replaced by a random one.
//
// Without explicit parameters a PBE scheme gets a random 8-byte salt and 100
// iterations, and AES reuses the IV already carried by the engine.
func New(algorithm string, key []byte, opts ...Option) (*Crypto, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	t, err := core.ParseTransform(algorithm)
	if err != nil {
		return nil, wrap("init", err)
	}
	zeroPadding := false
	if padding.IsZeroPadding(t.Padding) {
		t.Padding = padding.NoPadding.Name()
		zeroPadding = true
	}

	engine, err := core.NewEngine(t.String())
	if err != nil {
		return nil, wrap("init", err)
	}
	engine.SetRandom(o.random)

	secret, err := core.GenerateKey(t.String(), key, o.random)
	if err != nil {
		return nil, wrap("generate key", err)
	}

	c := &Crypto{
		key:         secret,
		engine:      engine,
		zeroPadding: zeroPadding,
		random:      o.random,
		bufSize:     o.bufSize,
		logger:      o.logger,
		ring:        o.ring,
	}
	if err := c.initParams(t.Algorithm, o.params); err != nil {
		return nil, wrap("init params", err)
	}
	return c, nil
}

func (c *Crypto) initParams(algorithm string, params *core.Params) error {
	if params == nil {
		iv := c.engine.IV()
		switch {
		case core.IsPBE(algorithm):
			salt := iv
			if salt == nil {
				salt = make([]byte, core.SaltSize)
				if _, err := io.ReadFull(c.random, salt); err != nil {
					return errors.Wrap(err, "generate salt")
				}
			}
			params = &core.Params{Salt: salt, Iterations: core.DefaultIterations}
		case strings.HasPrefix(strings.ToUpper(algorithm), "AES"):
			if iv != nil {
				params = &core.Params{IV: iv}
			}
		}
	}
	c.engine.SetParams(params)
	return nil
}

// initMode must be called with c.mu held.
func (c *Crypto) initMode(op core.Mode) error {
	if err := c.engine.Init(op, c.key); err != nil {
		return err
	}
	c.logger.Trace("cipher initialized",
		"algorithm", c.engine.Transform().String(),
		"mode", op.String(),
		"zero_padding", c.zeroPadding)

	if op == core.EncryptMode && c.ring != nil && c.engine.Keystream() {
		if iv := c.engine.IV(); iv != nil && c.ring.TestAndAdd(internal.IVEntry(c.key, iv)) {
			c.logger.Warn("IV reused under the same key",
				"algorithm", c.engine.Transform().String(),
				"iv", hex.EncodeToString(iv))
		}
	}
	return nil
}

func (c *Crypto) padZero(data []byte) []byte {
	if !c.zeroPadding {
		return data
	}
	return padding.ZeroPad(data, c.engine.BlockSize())
}

// Encrypt encrypts data in one operation.
func (c *Crypto) Encrypt(data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.initMode(core.EncryptMode); err != nil {
		return nil, wrap("encrypt", err)
	}
	out, err := c.engine.DoFinal(c.padZero(data))
	if err != nil {
		return nil, wrap("encrypt", err)
	}
	return out, nil
}

// Decrypt decrypts data in one operation. With zero padding, trailing zero
// bytes are dropped when the plaintext is block aligned; see
// padding.StripZero for what this means for plaintext ending in zeros.
func (c *Crypto) Decrypt(data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.initMode(core.DecryptMode); err != nil {
		return nil, wrap("decrypt", err)
	}
	out, err := c.engine.DoFinal(data)
	if err != nil {
		return nil, wrap("decrypt", err)
	}
	if c.zeroPadding {
		out = padding.StripZero(out, c.engine.BlockSize())
	}
	return out, nil
}

// EncryptStream encrypts everything read from in to out. The cipher writer
// is always closed so the final block reaches out; out itself is left open.
// in is closed when closeInput is set and it is an io.Closer.
func (c *Crypto) EncryptStream(in io.Reader, out io.Writer, closeInput bool) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { err = wrap("encrypt stream", err) }()
	if closeInput {
		defer closeReader(in, &err)
	}
	return c.encryptStream(in, out)
}

func (c *Crypto) encryptStream(in io.Reader, out io.Writer) (err error) {
	if err := c.initMode(core.EncryptMode); err != nil {
		return err
	}
	w := cipherstream.NewWriter(out, c.engine)
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = appendErr(err, errors.Wrap(cerr, "close cipher writer"))
		}
	}()

	n, err := io.Copy(w, in)
	if err != nil {
		return err
	}
	if bs := c.engine.BlockSize(); c.zeroPadding && bs > 0 {
		if rem := int(n % int64(bs)); rem > 0 {
			_, err = w.Write(make([]byte, bs-rem))
		}
	}
	return err
}

// DecryptStream decrypts everything read from in to out. With zero padding
// the plaintext trails the ciphertext by one buffer so the zero fill of the
// final block can be dropped. in is closed when closeInput is set and it is
// an io.Closer.
func (c *Crypto) DecryptStream(in io.Reader, out io.Writer, closeInput bool) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { err = wrap("decrypt stream", err) }()
	if closeInput {
		defer closeReader(in, &err)
	}
	return c.decryptStream(in, out)
}

func (c *Crypto) decryptStream(in io.Reader, out io.Writer) error {
	if err := c.initMode(core.DecryptMode); err != nil {
		return err
	}
	r := cipherstream.NewReader(in, c.engine)

	if bs := c.engine.BlockSize(); c.zeroPadding && bs > 0 {
		_, err := padding.CopyZeroStripped(out, r, bs, c.bufSize)
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		return err
	}
	if f, ok := out.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func closeReader(r io.Reader, errp *error) {
	if cl, ok := r.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			*errp = appendErr(*errp, errors.Wrap(err, "close input"))
		}
	}
}

func appendErr(err, next error) error {
	if err == nil {
		return next
	}
	return multierror.Append(err, next)
}

// SetMode initialises the cipher for op and discards partial blocks of
// earlier Update calls.
func (c *Crypto) SetMode(op core.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return wrap("set mode", c.initMode(op))
}

// Update feeds data to the cipher initialised by SetMode and returns the
// output completed so far. Intermediate block output can serve as keyed
// pseudo-random bytes. With zero padding each call is padded to a whole
// block. The caller sequences SetMode and Update.
func (c *Crypto) Update(data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, err := c.engine.Update(c.padZero(data))
	if err != nil {
		return nil, wrap("update", err)
	}
	return out, nil
}

// UpdateHex is Update with hex-encoded output.
func (c *Crypto) UpdateHex(data []byte) (string, error) {
	out, err := c.Update(data)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(out), nil
}

// SetIV sets the IV used from the next mode initialisation on, keeping any
// salt and iteration count.
func (c *Crypto) SetIV(iv []byte) *Crypto {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.engine.Params()
	if p == nil {
		p = &core.Params{}
	}
	p.IV = iv
	c.engine.SetParams(p)
	return c
}

// SetParams replaces the algorithm parameters used from the next mode
// initialisation on.
func (c *Crypto) SetParams(p *core.Params) *Crypto {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.SetParams(p)
	return c
}

// SetRandom sets the source of generated IVs. nil selects crypto/rand.
func (c *Crypto) SetRandom(r io.Reader) *Crypto {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.SetRandom(r)
	return c
}

// SecretKey returns a copy of the session key. For PBE schemes this is the
// password.
func (c *Crypto) SecretKey() []byte { return append([]byte(nil), c.key...) }

// Algorithm returns the transformation run by the engine. ZeroPadding shows
// as NoPadding.
func (c *Crypto) Algorithm() string { return c.engine.Transform().String() }

// ZeroPadding reports whether the session pads with zero bytes itself.
func (c *Crypto) ZeroPadding() bool { return c.zeroPadding }

// BlockSize returns the block size of the cipher, 0 for stream ciphers.
func (c *Crypto) BlockSize() int { return c.engine.BlockSize() }

// IV returns the IV of the last mode initialisation, or nil.
func (c *Crypto) IV() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.IV()
}

// Params returns a copy of the current algorithm parameters, or nil.
func (c *Crypto) Params() *core.Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Params()
}
