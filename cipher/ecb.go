package cipher

import "crypto/cipher"

// ECB mode. Every block is transformed independently.
type ecb struct {
	b       cipher.Block
	decrypt bool
}

// NewECBEncrypter returns a BlockMode which encrypts in electronic codebook mode.
func NewECBEncrypter(b cipher.Block) cipher.BlockMode { return &ecb{b: b} }

// NewECBDecrypter returns a BlockMode which decrypts in electronic codebook mode.
func NewECBDecrypter(b cipher.Block) cipher.BlockMode { return &ecb{b: b, decrypt: true} }

func (x *ecb) BlockSize() int { return x.b.BlockSize() }

func (x *ecb) CryptBlocks(dst, src []byte) {
	bs := x.b.BlockSize()
	if len(src)%bs != 0 {
		panic("crypto/cipher: input not full blocks")
	}
	if len(dst) < len(src) {
		panic("crypto/cipher: output smaller than input")
	}
	for len(src) > 0 {
		if x.decrypt {
			x.b.Decrypt(dst[:bs], src[:bs])
		} else {
			x.b.Encrypt(dst[:bs], src[:bs])
		}
		src = src[bs:]
		dst = dst[bs:]
	}
}
