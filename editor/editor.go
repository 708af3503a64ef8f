// Package editor wires the catalog, the selection and the compositor into one
// editing session.
package editor

import (
	"context"
	"errors"
	"fmt"
	goimage "image"
	"log"
	"time"

	"github.com/Carbon-X-DAO/AvatarMix/catalog"
	"github.com/Carbon-X-DAO/AvatarMix/compositor"
	"github.com/Carbon-X-DAO/AvatarMix/selection"
)

var ErrOutOfRange = errors.New("selection out of range")

type Options struct {
	Size        int
	LoadTimeout time.Duration
	Flash       time.Duration
}

// Loader is satisfied by *catalog.Loader.
type Loader interface {
	Load(ctx context.Context) (catalog.Catalogs, error)
}

type Editor struct {
	loader      Loader
	loadTimeout time.Duration
	state       *selection.State
	comp        *compositor.Compositor
	resolve     func(context.Context, catalog.Catalogs, selection.Snapshot) (compositor.Layers, error)
}

func New(loader Loader, opts Options) *Editor {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 30 * time.Second
	}

	e := &Editor{
		loader:      loader,
		loadTimeout: opts.LoadTimeout,
		state:       selection.New(),
		comp:        compositor.New(compositor.Options{Size: opts.Size, Flash: opts.Flash}),
		resolve:     Resolve,
	}
	e.state.Subscribe(e.scheduleRedraw)

	return e
}

// Start loads the catalogs and draws the first composite. When loading fails
// or times out the editor keeps running on empty catalogs.
func (e *Editor) Start(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, e.loadTimeout)
	defer cancel()

	cats, err := e.loader.Load(loadCtx)
	if err != nil {
		log.Printf("failed to load catalogs, starting with an empty editor: %s", err)
		cats = catalog.EmptyCatalogs()
	}

	lengths := cats.Lengths()
	log.Printf("catalogs loaded: head=%d eyes=%d mouth=%d detail=%d",
		lengths[catalog.Head], lengths[catalog.Eyes], lengths[catalog.Mouth], lengths[catalog.Detail])

	e.state.SetCatalogs(cats)
}

func (e *Editor) scheduleRedraw(cats catalog.Catalogs, snap selection.Snapshot) {
	e.comp.Submit(context.Background(), func(ctx context.Context) (compositor.Layers, error) {
		return e.resolve(ctx, cats, snap)
	})
}

// Resolve maps a selection onto the images to draw. An index outside its
// slice's catalog rejects the whole selection.
func Resolve(_ context.Context, cats catalog.Catalogs, snap selection.Snapshot) (compositor.Layers, error) {
	var layers compositor.Layers
	for _, s := range catalog.Slices() {
		i := snap.Index(s)
		if cats.Len(s) == 0 && i == 0 {
			continue
		}
		entry, ok := cats.Entry(s, i)
		if !ok {
			return layers, fmt.Errorf("%w: %s index %d, catalog has %d entries", ErrOutOfRange, s, i, cats.Len(s))
		}
		if r, present := entry.Resource(); present {
			layers[s] = r.Image
		}
	}
	return layers, nil
}

// Select picks entry index of slice s.
func (e *Editor) Select(s catalog.Slice, index int) {
	e.state.Select(s, index)
}

func (e *Editor) RandomizeAll() {
	e.state.RandomizeAll()
}

func (e *Editor) Current() selection.Snapshot {
	return e.state.Current()
}

// OutfitCode is the compact text form of the current selection.
func (e *Editor) OutfitCode() string {
	return e.state.Current().Code()
}

func (e *Editor) Catalogs() catalog.Catalogs {
	cats, _ := e.state.Catalogs()
	return cats
}

func (e *Editor) SelectedResource(s catalog.Slice) (*catalog.Resource, bool) {
	return e.state.SelectedResource(s)
}

// Composite returns the surface once the latest selection has been drawn.
func (e *Editor) Composite(ctx context.Context) (*goimage.RGBA, error) {
	return e.comp.Snapshot(ctx)
}

// Export encodes the composite of the latest selection as PNG.
func (e *Editor) Export(ctx context.Context) ([]byte, error) {
	return e.comp.Export(ctx)
}

func (e *Editor) Changed() bool {
	return e.comp.Changed()
}

func (e *Editor) SurfaceState() compositor.SurfaceState {
	return e.comp.State()
}

func (e *Editor) Size() int {
	return e.comp.Size()
}
