package symmetric

// CryptoError is the only error kind returned by a Crypto session. Op names
// the failing operation and Err carries the underlying cause.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	if e.Err == nil {
		return "crypto: " + e.Op
	}
	return "crypto: " + e.Op + ": " + e.Err.Error()
}

func (e *CryptoError) Unwrap() error { return e.Err }

// wrap returns err as a *CryptoError for op. nil stays nil and an error that
// already is a *CryptoError is returned unchanged.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*CryptoError); ok {
		return err
	}
	return &CryptoError{Op: op, Err: err}
}
