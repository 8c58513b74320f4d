package cipher

import (
	"crypto/cipher"
	"crypto/rc4"

	"github.com/Yawning/chacha20"
	"github.com/emmansun/gmsm/zuc"
)

// Stream generates a pair of stream ciphers for encryption and decryption.
// Encrypter and Decrypter panic when iv is not IVSize bytes long.
type Stream interface {
	IVSize() int
	Encrypter(iv []byte) cipher.Stream
	Decrypter(iv []byte) cipher.Stream
}

// CTR mode
type ctrStream struct{ cipher.Block }

func (b *ctrStream) IVSize() int                       { return b.BlockSize() }
func (b *ctrStream) Decrypter(iv []byte) cipher.Stream { return b.Encrypter(iv) }
func (b *ctrStream) Encrypter(iv []byte) cipher.Stream { return cipher.NewCTR(b, iv) }

func CTR(blk cipher.Block) Stream { return &ctrStream{blk} }

// CFB mode
type cfbStream struct{ cipher.Block }

func (b *cfbStream) IVSize() int                       { return b.BlockSize() }
func (b *cfbStream) Decrypter(iv []byte) cipher.Stream { return cipher.NewCFBDecrypter(b, iv) }
func (b *cfbStream) Encrypter(iv []byte) cipher.Stream { return cipher.NewCFBEncrypter(b, iv) }

func CFB(blk cipher.Block) Stream { return &cfbStream{blk} }

// OFB mode
type ofbStream struct{ cipher.Block }

func (b *ofbStream) IVSize() int                       { return b.BlockSize() }
func (b *ofbStream) Decrypter(iv []byte) cipher.Stream { return b.Encrypter(iv) }
func (b *ofbStream) Encrypter(iv []byte) cipher.Stream { return cipher.NewOFB(b, iv) }

func OFB(blk cipher.Block) Stream { return &ofbStream{blk} }

// RC4 takes no IV; every Encrypter restarts the keystream.
type rc4key []byte

func (k rc4key) IVSize() int                       { return 0 }
func (k rc4key) Decrypter(iv []byte) cipher.Stream { return k.Encrypter(iv) }
func (k rc4key) Encrypter(iv []byte) cipher.Stream {
	ciph, err := rc4.NewCipher(k)
	if err != nil {
		panic(err) // should never happen
	}
	return ciph
}

func RC4(key []byte) (Stream, error) {
	if len(key) < 1 || len(key) > 256 {
		return nil, KeySizeError(16)
	}
	return rc4key(key), nil
}

// IETF-variant of chacha20
type chacha20ietfkey []byte

func (k chacha20ietfkey) IVSize() int                       { return chacha20.INonceSize }
func (k chacha20ietfkey) Decrypter(iv []byte) cipher.Stream { return k.Encrypter(iv) }
func (k chacha20ietfkey) Encrypter(iv []byte) cipher.Stream {
	ciph, err := chacha20.NewCipher(k, iv)
	if err != nil {
		panic(err) // should never happen
	}
	return ciph
}

func Chacha20IETF(key []byte) (Stream, error) {
	if len(key) != chacha20.KeySize {
		return nil, KeySizeError(chacha20.KeySize)
	}
	return chacha20ietfkey(key), nil
}

// XChaCha20 uses the extended 24-byte nonce.
type xchacha20key []byte

func (k xchacha20key) IVSize() int                       { return chacha20.XNonceSize }
func (k xchacha20key) Decrypter(iv []byte) cipher.Stream { return k.Encrypter(iv) }
func (k xchacha20key) Encrypter(iv []byte) cipher.Stream {
	ciph, err := chacha20.NewCipher(k, iv)
	if err != nil {
		panic(err) // should never happen
	}
	return ciph
}

func Xchacha20(key []byte) (Stream, error) {
	if len(key) != chacha20.KeySize {
		return nil, KeySizeError(chacha20.KeySize)
	}
	return xchacha20key(key), nil
}

// ZUC-128 with a 16-byte key and 16-byte IV.
type zuckey []byte

const zucIVSize = 16

func (k zuckey) IVSize() int                       { return zucIVSize }
func (k zuckey) Decrypter(iv []byte) cipher.Stream { return k.Encrypter(iv) }
func (k zuckey) Encrypter(iv []byte) cipher.Stream {
	ciph, err := zuc.NewCipher(k, iv)
	if err != nil {
		panic(err) // should never happen
	}
	return &wordStream{Stream: ciph, off: zucWordSize}
}

const zucWordSize = 4

// wordStream feeds a keystream that advances a whole word per call, even
// for a partial trailing word, with word-aligned lengths only. The unused
// bytes of the last word are kept for the next call.
type wordStream struct {
	cipher.Stream
	ks  [zucWordSize]byte
	off int
}

func (s *wordStream) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("zuc: output smaller than input")
	}
	for len(src) > 0 && s.off < zucWordSize {
		dst[0] = src[0] ^ s.ks[s.off]
		s.off++
		dst, src = dst[1:], src[1:]
	}
	if n := len(src) &^ (zucWordSize - 1); n > 0 {
		s.Stream.XORKeyStream(dst[:n], src[:n])
		dst, src = dst[n:], src[n:]
	}
	if len(src) > 0 {
		s.ks = [zucWordSize]byte{}
		s.Stream.XORKeyStream(s.ks[:], s.ks[:])
		for i := range src {
			dst[i] = src[i] ^ s.ks[i]
		}
		s.off = len(src)
	}
}

func ZUC(key []byte) (Stream, error) {
	if len(key) != 16 {
		return nil, KeySizeError(16)
	}
	return zuckey(key), nil
}
