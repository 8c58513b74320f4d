package core

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrBlankAlgorithm means no algorithm was named.
var ErrBlankAlgorithm = errors.New("algorithm must not be blank")

// Transform names a cipher as ALGORITHM[/MODE/PADDING].
type Transform struct {
	Algorithm string
	Mode      string
	Padding   string
}

// ParseTransform splits s into its algorithm, mode and padding. Mode and
// padding are empty when s names the algorithm alone.
func ParseTransform(s string) (Transform, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Transform{}, ErrBlankAlgorithm
	}
	parts := strings.Split(s, "/")
	switch len(parts) {
	case 1:
		return Transform{Algorithm: parts[0]}, nil
	case 3:
		t := Transform{
			Algorithm: strings.TrimSpace(parts[0]),
			Mode:      strings.TrimSpace(parts[1]),
			Padding:   strings.TrimSpace(parts[2]),
		}
		if t.Algorithm == "" || t.Mode == "" || t.Padding == "" {
			return Transform{}, errors.Errorf("invalid transformation %q", s)
		}
		return t, nil
	default:
		return Transform{}, errors.Errorf("invalid transformation %q", s)
	}
}

func (t Transform) String() string {
	if t.Mode == "" && t.Padding == "" {
		return t.Algorithm
	}
	return t.Algorithm + "/" + t.Mode + "/" + t.Padding
}

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
