package core

import (
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"

	ciphers "github.com/riobard/go-symcrypt/cipher"
	"github.com/riobard/go-symcrypt/padding"
)

// Mode selects the direction an Engine is initialised for.
type Mode int

const (
	EncryptMode Mode = iota + 1
	DecryptMode
)

func (m Mode) String() string {
	switch m {
	case EncryptMode:
		return "encrypt"
	case DecryptMode:
		return "decrypt"
	}
	return "unknown"
}

var (
	// ErrNotInitialized means Update or DoFinal was called before Init.
	ErrNotInitialized = errors.New("cipher not initialized")

	// ErrIVRequired means decryption in an IV mode was started without an IV.
	ErrIVRequired = errors.New("IV required for decryption")

	// ErrBlockSize means the input to a block mode without padding is not
	// a multiple of the block size.
	ErrBlockSize = padding.ErrBlockSize
)

type kind int

const (
	blockKind kind = iota + 1
	streamKind
	aeadKind
)

// Engine is a stateful cipher transform. It is initialised for one direction
// with Init, fed with Update and finished with DoFinal, after which it is
// ready for another message under the same key and IV.
//
// Block modes without keystream (ECB, CBC) buffer partial blocks across
// Update calls; when decrypting with a real padding the last full block is
// held back until DoFinal. AEAD input is buffered until DoFinal.
//
// An IV generated for encryption is kept and reused by later Init calls
// until SetParams replaces it.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	transform Transform
	kind      kind
	mode      string
	pad       padding.Padding
	blockSize int
	newBlock  func([]byte) (cipher.Block, error)
	newStream func([]byte) (ciphers.Stream, error)
	newAEAD   func([]byte) (cipher.AEAD, error)
	pbe       *pbeScheme
	params    *Params
	random    io.Reader

	op   Mode
	iv   []byte
	blk  cipher.Block
	sc   ciphers.Stream
	bm   cipher.BlockMode
	st   cipher.Stream
	aead cipher.AEAD
	buf  []byte
}

// NewEngine returns an uninitialised Engine for transformation.
func NewEngine(transformation string) (*Engine, error) {
	t, err := ParseTransform(transformation)
	if err != nil {
		return nil, err
	}
	e := &Engine{transform: t, random: rand.Reader}

	name := upper(t.Algorithm)
	mode := upper(t.Mode)
	padName := t.Padding

	if p, ok := pbeList[name]; ok {
		e.pbe = &p
		name = upper(p.Cipher)
		if mode == "" {
			mode, padName = ModeCBC, "PKCS5Padding"
		}
		if mode != ModeCBC {
			return nil, errors.Wrapf(ErrCipherNotSupported, "mode %s with %s", t.Mode, p.Name)
		}
	}

	if c, ok := blockList[name]; ok {
		e.kind = blockKind
		e.blockSize = c.BlockSize
		e.newBlock = c.New
		if mode == "" {
			mode, padName = ModeECB, "PKCS5Padding"
		}
		switch mode {
		case ModeECB, ModeCBC, ModeCTR, ModeCFB, ModeOFB:
		case ModeGCM:
			if c.BlockSize != 16 {
				return nil, errors.Wrapf(ErrCipherNotSupported, "GCM with %s", c.Name)
			}
		default:
			return nil, errors.Wrapf(ErrCipherNotSupported, "mode %s", t.Mode)
		}
	} else if c, ok := streamList[name]; ok {
		e.kind = streamKind
		e.newStream = c.New
		if mode == "" {
			mode = ModeNone
		}
		if mode != ModeNone && mode != ModeECB {
			return nil, errors.Wrapf(ErrCipherNotSupported, "mode %s with %s", t.Mode, c.Name)
		}
		mode = ModeNone
	} else if c, ok := aeadList[name]; ok {
		e.kind = aeadKind
		e.newAEAD = c.New
		if mode == "" {
			mode = ModeNone
		}
		if mode != ModeNone {
			return nil, errors.Wrapf(ErrCipherNotSupported, "mode %s with %s", t.Mode, c.Name)
		}
	} else {
		return nil, errors.Wrap(ErrCipherNotSupported, t.Algorithm)
	}

	if padName == "" {
		padName = padding.NoPadding.Name()
	}
	pad, err := padding.Lookup(padName)
	if err != nil {
		return nil, err
	}
	if pad != padding.NoPadding && mode != ModeECB && mode != ModeCBC {
		return nil, errors.Wrapf(ErrCipherNotSupported, "%s with mode %s", pad.Name(), mode)
	}
	e.mode = mode
	e.pad = pad
	return e, nil
}

// Transform returns the transformation the Engine was created for.
func (e *Engine) Transform() Transform { return e.transform }

// BlockSize returns the block size of the underlying block cipher, also in
// keystream modes, and 0 for stream ciphers and AEAD constructions.
func (e *Engine) BlockSize() int { return e.blockSize }

// IV returns the IV in use since the last Init, or nil.
func (e *Engine) IV() []byte { return cloneBytes(e.iv) }

// Params returns a copy of the configured parameters, or nil.
func (e *Engine) Params() *Params { return e.params.clone() }

// SetParams replaces the algorithm parameters used by the next Init.
func (e *Engine) SetParams(p *Params) { e.params = p.clone() }

// SetRandom sets the source of generated IVs. nil selects crypto/rand.
func (e *Engine) SetRandom(r io.Reader) {
	if r == nil {
		r = rand.Reader
	}
	e.random = r
}

// Keystream reports whether the same key and IV yield the same keystream,
// which makes IV reuse fatal to confidentiality.
func (e *Engine) Keystream() bool {
	switch e.mode {
	case ModeCTR, ModeOFB, ModeGCM, ModeNone:
		return true
	}
	return false
}

// Init prepares the Engine for op under key, discarding any buffered data.
func (e *Engine) Init(op Mode, key []byte) error {
	if op != EncryptMode && op != DecryptMode {
		return errors.Errorf("invalid cipher mode %d", op)
	}
	e.op = 0
	e.blk, e.sc, e.bm, e.st, e.aead = nil, nil, nil, nil, nil
	e.buf = e.buf[:0]

	var derivedIV []byte
	if e.pbe != nil {
		if e.params == nil || len(e.params.Salt) == 0 {
			return ErrSaltRequired
		}
		iter := e.params.Iterations
		if iter <= 0 {
			iter = DefaultIterations
		}
		n := e.pbe.KeySize
		if e.pbe.DerivesIV {
			n += e.blockSize
		}
		dk := e.pbe.Derive(key, e.params.Salt, iter, n)
		key = dk[:e.pbe.KeySize]
		if e.pbe.DerivesIV {
			derivedIV = dk[e.pbe.KeySize:]
		}
	}

	var ivSize int
	switch e.kind {
	case blockKind:
		blk, err := e.newBlock(key)
		if err != nil {
			return errors.Wrapf(err, "init %s", e.transform.Algorithm)
		}
		e.blk = blk
		switch e.mode {
		case ModeCBC:
			ivSize = e.blockSize
		case ModeCTR:
			e.sc = ciphers.CTR(blk)
		case ModeCFB:
			e.sc = ciphers.CFB(blk)
		case ModeOFB:
			e.sc = ciphers.OFB(blk)
		case ModeGCM:
			ivSize = 12
		}
	case streamKind:
		sc, err := e.newStream(key)
		if err != nil {
			return errors.Wrapf(err, "init %s", e.transform.Algorithm)
		}
		e.sc = sc
	case aeadKind:
		aead, err := e.newAEAD(key)
		if err != nil {
			return errors.Wrapf(err, "init %s", e.transform.Algorithm)
		}
		e.aead = aead
		ivSize = aead.NonceSize()
	}
	if e.sc != nil {
		ivSize = e.sc.IVSize()
	}

	iv, err := e.resolveIV(op, ivSize, derivedIV)
	if err != nil {
		return err
	}
	if e.mode == ModeGCM {
		aead, err := ciphers.GCM(e.blk, len(iv))
		if err != nil {
			return errors.Wrap(err, "init GCM")
		}
		e.aead = aead
	}

	e.iv = iv
	e.op = op
	e.reset()
	return nil
}

func (e *Engine) resolveIV(op Mode, size int, derived []byte) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if derived != nil {
		return derived, nil
	}
	if e.params != nil && e.params.IV != nil {
		iv := e.params.IV
		if len(iv) != size && !(e.mode == ModeGCM && len(iv) > 0) {
			return nil, ciphers.IVSizeError(size)
		}
		return cloneBytes(iv), nil
	}
	if op == DecryptMode {
		return nil, ErrIVRequired
	}
	iv, err := randomBytes(e.random, size)
	if err != nil {
		return nil, err
	}
	if e.params == nil {
		e.params = &Params{}
	}
	e.params.IV = cloneBytes(iv)
	return iv, nil
}

// reset restores the state right after Init.
func (e *Engine) reset() {
	e.buf = e.buf[:0]
	switch {
	case e.sc != nil:
		if e.op == EncryptMode {
			e.st = e.sc.Encrypter(e.iv)
		} else {
			e.st = e.sc.Decrypter(e.iv)
		}
	case e.mode == ModeECB:
		if e.op == EncryptMode {
			e.bm = ciphers.NewECBEncrypter(e.blk)
		} else {
			e.bm = ciphers.NewECBDecrypter(e.blk)
		}
	case e.mode == ModeCBC:
		if e.op == EncryptMode {
			e.bm = cipher.NewCBCEncrypter(e.blk, e.iv)
		} else {
			e.bm = cipher.NewCBCDecrypter(e.blk, e.iv)
		}
	}
}

// Update continues a multi-part operation and returns whatever output is
// complete so far.
func (e *Engine) Update(in []byte) ([]byte, error) {
	if e.op == 0 {
		return nil, ErrNotInitialized
	}
	switch {
	case e.st != nil:
		out := make([]byte, len(in))
		e.st.XORKeyStream(out, in)
		return out, nil
	case e.aead != nil:
		e.buf = append(e.buf, in...)
		return nil, nil
	}

	e.buf = append(e.buf, in...)
	bs := e.blockSize
	n := len(e.buf) - len(e.buf)%bs
	if e.op == DecryptMode && e.pad != padding.NoPadding && n == len(e.buf) {
		n -= bs
	}
	if n <= 0 {
		return nil, nil
	}
	out := make([]byte, n)
	e.bm.CryptBlocks(out, e.buf[:n])
	e.buf = append(e.buf[:0], e.buf[n:]...)
	return out, nil
}

// DoFinal processes in and any buffered input, applying or removing padding,
// and resets the Engine for the next message.
func (e *Engine) DoFinal(in []byte) ([]byte, error) {
	out, err := e.Update(in)
	if err != nil {
		return nil, err
	}

	var final []byte
	switch {
	case e.st != nil:
	case e.aead != nil:
		if e.op == EncryptMode {
			final = e.aead.Seal(nil, e.iv, e.buf, nil)
		} else {
			final, err = e.aead.Open(nil, e.iv, e.buf, nil)
			err = errors.Wrap(err, "authenticate")
		}
	default:
		final, err = e.finalBlocks()
	}
	e.reset()
	if err != nil {
		return nil, err
	}
	return append(out, final...), nil
}

func (e *Engine) finalBlocks() ([]byte, error) {
	bs := e.blockSize
	if e.op == EncryptMode {
		data, err := e.pad.Pad(e.buf, bs)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(data))
		e.bm.CryptBlocks(out, data)
		return out, nil
	}

	if len(e.buf) == 0 {
		return nil, nil
	}
	if len(e.buf)%bs != 0 {
		return nil, ErrBlockSize
	}
	out := make([]byte, len(e.buf))
	e.bm.CryptBlocks(out, e.buf)
	return e.pad.Unpad(out, bs)
}
