package catalog

import (
	"image"
)

// Resource is a decoded, drawable image and the locator it was loaded from.
// It is never modified after loading.
type Resource struct {
	Locator string
	Image   image.Image
}

// Entry is one selectable item of a slice's catalog: either empty (draw
// nothing) or a present resource.
type Entry struct {
	resource *Resource
}

// EmptyEntry returns the "draw nothing" entry.
func EmptyEntry() Entry {
	return Entry{}
}

// Present wraps a loaded resource.
func Present(r *Resource) Entry {
	return Entry{resource: r}
}

func (e Entry) IsEmpty() bool {
	return e.resource == nil
}

// Resource returns the entry's resource, or false for the empty entry.
func (e Entry) Resource() (*Resource, bool) {
	return e.resource, e.resource != nil
}

// Catalogs holds the ordered entries of every slice. It is read-only once
// returned by a Loader.
type Catalogs struct {
	entries [NumSlices][]Entry
}

// EmptyCatalogs returns catalogs holding only the empty entries of optional
// slices. It is what the editor runs on when nothing could be loaded.
func EmptyCatalogs() Catalogs {
	var c Catalogs
	for _, s := range Slices() {
		if s.Optional() {
			c.entries[s] = []Entry{EmptyEntry()}
		}
	}
	return c
}

// NewCatalogs builds catalogs from already resolved entries.
func NewCatalogs(entries [NumSlices][]Entry) Catalogs {
	var c Catalogs
	for i := range entries {
		c.entries[i] = append([]Entry(nil), entries[i]...)
	}
	return c
}

func (c Catalogs) Len(s Slice) int {
	if !s.Valid() {
		return 0
	}
	return len(c.entries[s])
}

// Lengths returns the catalog length of every slice.
func (c Catalogs) Lengths() [NumSlices]int {
	var out [NumSlices]int
	for i := range c.entries {
		out[i] = len(c.entries[i])
	}
	return out
}

// Entry returns the entry at index i of slice s, or false when i is out of
// range.
func (c Catalogs) Entry(s Slice, i int) (Entry, bool) {
	if !s.Valid() || i < 0 || i >= len(c.entries[s]) {
		return Entry{}, false
	}
	return c.entries[s][i], true
}

// Entries returns a copy of the ordered entries of slice s.
func (c Catalogs) Entries(s Slice) []Entry {
	if !s.Valid() {
		return nil
	}
	return append([]Entry(nil), c.entries[s]...)
}
