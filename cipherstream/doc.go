/*
Package cipherstream wraps io.Reader and io.Writer with a multi-part cipher
transform, the way a cipher output stream and a cipher input stream chain a
cipher onto another stream.
*/
package cipherstream

// Transformer is a multi-part cipher operation already initialised for one
// direction. Update returns the output completed so far; DoFinal flushes
// whatever is buffered, applying or removing padding.
type Transformer interface {
	Update(in []byte) ([]byte, error)
	DoFinal(in []byte) ([]byte, error)
}
