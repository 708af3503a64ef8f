package catalog

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// Loader builds Catalogs from a Source.
type Loader struct {
	source Source
	size   int
}

// NewLoader returns a loader that rasterizes vector assets at size x size.
func NewLoader(source Source, size int) *Loader {
	return &Loader{source: source, size: size}
}

// Load decodes every asset of every slice concurrently and returns only once
// all slices are complete. Assets that fail to load are left out of their
// slice; the remaining entries keep their discovery order. Optional slices get
// the empty entry at index 0. Only cancellation of ctx makes Load fail.
func (l *Loader) Load(ctx context.Context) (Catalogs, error) {
	var entries [NumSlices][]Entry

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range Slices() {
		g.Go(func() error {
			e, err := l.loadSlice(gctx, s)
			if err != nil {
				return err
			}
			entries[s] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Catalogs{}, fmt.Errorf("failed to load catalogs: %w", err)
	}

	return Catalogs{entries: entries}, nil
}

func (l *Loader) loadSlice(ctx context.Context, s Slice) ([]Entry, error) {
	locators, err := l.source.Locators(s)
	if err != nil {
		log.Printf("failed to discover %s assets: %s", s, err)
		locators = nil
	}

	resources := make([]*Resource, len(locators))
	var g errgroup.Group
	for i, loc := range locators {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := l.loadOne(loc)
			if err != nil {
				log.Printf("failed to load %s asset, leaving it out: %s", s, err)
				return nil
			}
			resources[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", s, err)
	}

	entries := make([]Entry, 0, len(resources)+1)
	if s.Optional() {
		entries = append(entries, EmptyEntry())
	}
	for _, res := range resources {
		if res != nil {
			entries = append(entries, Present(res))
		}
	}

	return entries, nil
}

func (l *Loader) loadOne(locator string) (*Resource, error) {
	rc, err := l.source.Open(locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err := decode(rc, locator, l.size)
	if err != nil {
		return nil, err
	}

	return &Resource{Locator: locator, Image: img}, nil
}
