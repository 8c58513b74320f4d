package symmetric

import (
	"crypto/rand"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/riobard/go-symcrypt/core"
	"github.com/riobard/go-symcrypt/internal"
	"github.com/riobard/go-symcrypt/padding"
)

type options struct {
	params  *core.Params
	random  io.Reader
	logger  hclog.Logger
	ring    *internal.BloomRing
	bufSize int
}

func defaultOptions() options {
	return options{
		random:  rand.Reader,
		logger:  hclog.NewNullLogger(),
		bufSize: padding.DefaultBufferSize,
	}
}

// Option configures a Crypto session at construction.
type Option func(*options)

// WithParams sets the algorithm parameters (IV, salt, iteration count).
func WithParams(p *core.Params) Option {
	return func(o *options) { o.params = p }
}

// WithIV is shorthand for WithParams with only an IV.
func WithIV(iv []byte) Option {
	return func(o *options) { o.params = &core.Params{IV: iv} }
}

// WithRandom sets the source for generated keys, salts and IVs.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		if r != nil {
			o.random = r
		}
	}
}

func WithLogger(l hclog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIVReuseCheck records the IV of every encryption in a keystream mode
// and logs a warning when one repeats under the same key. capacity bounds
// the number of remembered IVs; older ones age out.
func WithIVReuseCheck(capacity int) Option {
	return func(o *options) {
		if capacity <= 0 {
			capacity = internal.DefaultSFCapacity
		}
		o.ring = internal.NewBloomRing(internal.DefaultSFSlot, capacity, internal.DefaultSFFPR)
	}
}

// WithBufferSize sets the read size of zero-padded stream decryption. It is
// rounded up to whole blocks.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufSize = n
		}
	}
}
