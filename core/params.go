package core

// Params carries the optional algorithm parameters: an IV for chaining
// modes, a salt and iteration count for password-based schemes.
type Params struct {
	IV         []byte
	Salt       []byte
	Iterations int
}

// DefaultIterations is the PBE iteration count used when none is given.
const DefaultIterations = 100

// SaltSize is the length of a generated PBE salt.
const SaltSize = 8

func (p *Params) clone() *Params {
	if p == nil {
		return nil
	}
	return &Params{
		IV:         cloneBytes(p.IV),
		Salt:       cloneBytes(p.Salt),
		Iterations: p.Iterations,
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
