// Package selection holds the chosen catalog index of every slice and tells
// subscribers whenever that choice changes.
package selection

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/Carbon-X-DAO/AvatarMix/catalog"
)

// Snapshot is a read-only copy of the selection. Version increases by one on
// every change.
type Snapshot struct {
	Indices [catalog.NumSlices]int
	Version uint64
}

func (s Snapshot) Index(slice catalog.Slice) int {
	if !slice.Valid() {
		return 0
	}
	return s.Indices[slice]
}

// Code renders the selection compactly, e.g. "h1-e0-m2-d0".
func (s Snapshot) Code() string {
	parts := make([]string, 0, catalog.NumSlices)
	for _, slice := range catalog.Slices() {
		parts = append(parts, fmt.Sprintf("%c%d", slice.String()[0], s.Indices[slice]))
	}
	return strings.Join(parts, "-")
}

// State is the only mutable domain state of the editor.
type State struct {
	mu       sync.Mutex
	catalogs catalog.Catalogs
	loaded   bool
	snap     Snapshot
	rand     *rand.Rand
	subs     []func(catalog.Catalogs, Snapshot)
}

func New() *State {
	return &State{
		rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Subscribe registers fn to be called after every change, in change order,
// with the catalogs the snapshot refers to. fn runs while the state is
// locked: it must not block or call back into the State.
func (st *State) Subscribe(fn func(catalog.Catalogs, Snapshot)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.subs = append(st.subs, fn)
}

// SetCatalogs installs the loaded catalogs. Stored indices that no longer fit
// their slice are reset to 0.
func (st *State) SetCatalogs(c catalog.Catalogs) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.catalogs = c
	st.loaded = true
	for _, s := range catalog.Slices() {
		if i := st.snap.Indices[s]; i < 0 || i >= c.Len(s) {
			st.snap.Indices[s] = 0
		}
	}
	st.changed()
}

// Catalogs returns the installed catalogs and whether loading has finished.
func (st *State) Catalogs() (catalog.Catalogs, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.catalogs, st.loaded
}

// Select stores index for slice. The index is not checked against the
// catalog; callers are expected to pass a valid one.
func (st *State) Select(slice catalog.Slice, index int) {
	if !slice.Valid() {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.snap.Indices[slice] = index
	st.changed()
}

// RandomizeAll picks a uniformly random index for every slice and notifies
// subscribers once. Slices with an empty catalog get 0.
func (st *State) RandomizeAll() {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, s := range catalog.Slices() {
		n := st.catalogs.Len(s)
		if n == 0 {
			st.snap.Indices[s] = 0
			continue
		}
		st.snap.Indices[s] = st.rand.IntN(n)
	}
	st.changed()
}

func (st *State) Current() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.snap
}

// SelectedResource resolves the current index of slice. It reports false for
// the empty entry, before catalogs are loaded and for out of range indices.
func (st *State) SelectedResource(slice catalog.Slice) (*catalog.Resource, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.loaded {
		return nil, false
	}
	e, ok := st.catalogs.Entry(slice, st.snap.Index(slice))
	if !ok {
		return nil, false
	}
	return e.Resource()
}

func (st *State) changed() {
	st.snap.Version++
	snap := st.snap
	for _, fn := range st.subs {
		fn(st.catalogs, snap)
	}
}
