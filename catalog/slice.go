package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Slice is one facial layer category. The declaration order is the stacking
// order: later slices are drawn on top of earlier ones.
type Slice int

const (
	Head Slice = iota
	Eyes
	Mouth
	Detail

	NumSlices = int(Detail) + 1
)

var ErrUnknownSlice = errors.New("unknown slice")

var sliceNames = [NumSlices]string{
	Head:   "head",
	Eyes:   "eyes",
	Mouth:  "mouth",
	Detail: "detail",
}

// Slices lists every slice in stacking order.
func Slices() [NumSlices]Slice {
	return [NumSlices]Slice{Head, Eyes, Mouth, Detail}
}

func (s Slice) String() string {
	if !s.Valid() {
		return fmt.Sprintf("slice(%d)", int(s))
	}
	return sliceNames[s]
}

func (s Slice) Valid() bool {
	return s >= 0 && int(s) < NumSlices
}

// Optional reports whether "no image" is a valid choice for the slice.
func (s Slice) Optional() bool {
	return s != Head
}

// ParseSlice maps a slice name back to its Slice.
func ParseSlice(name string) (Slice, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range sliceNames {
		if n == name {
			return Slice(i), nil
		}
	}
	return 0, fmt.Errorf("parse slice %q: %w", name, ErrUnknownSlice)
}
