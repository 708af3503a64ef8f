// Package compositor owns the editor's drawing surface. It stacks the selected
// layer images onto the surface and encodes the result for export.
package compositor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	goimage "image"
	"image/png"
	"log"
	"sync"
	"time"

	"github.com/Carbon-X-DAO/AvatarMix/catalog"
	"github.com/Carbon-X-DAO/AvatarMix/image"
)

const (
	DefaultSize  = 160
	DefaultFlash = 500 * time.Millisecond
)

var ErrExport = errors.New("export failed")

// SurfaceState is Empty until the first redraw and Composed afterwards.
type SurfaceState int

const (
	Empty SurfaceState = iota
	Composed
)

func (s SurfaceState) String() string {
	if s == Composed {
		return "composed"
	}
	return "empty"
}

// Layers holds the resolved image of each slice, nil meaning "draw nothing".
type Layers [catalog.NumSlices]goimage.Image

// ResolveFunc turns the selection that triggered a redraw into Layers.
type ResolveFunc func(ctx context.Context) (Layers, error)

type Options struct {
	Size  int
	Flash time.Duration
	// Now is used for the "changed" window; defaults to time.Now.
	Now func() time.Time
}

type Compositor struct {
	size  int
	flash time.Duration
	now   func() time.Time

	mu           sync.Mutex
	settledCond  *sync.Cond
	surface      *goimage.RGBA
	state        SurfaceState
	changedUntil time.Time
	submitted    uint64
	settled      uint64
}

func New(opts Options) *Compositor {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Flash <= 0 {
		opts.Flash = DefaultFlash
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Compositor{
		size:    opts.Size,
		flash:   opts.Flash,
		now:     opts.Now,
		surface: goimage.NewRGBA(goimage.Rect(0, 0, opts.Size, opts.Size)),
	}
	c.settledCond = sync.NewCond(&c.mu)

	return c
}

func (c *Compositor) Size() int {
	return c.size
}

// Redraw replaces the whole surface with layers stacked in slice order.
func (c *Compositor) Redraw(layers Layers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.redrawLocked(layers)
}

func (c *Compositor) redrawLocked(layers Layers) {
	image.Clear(c.surface)
	for _, img := range layers {
		if img == nil {
			continue
		}
		image.Fill(c.surface, img)
	}
	c.state = Composed
	c.changedUntil = c.now().Add(c.flash)
}

// Submit schedules an asynchronous redraw and returns its generation.
// resolve runs without holding the surface. Its result is drawn only if no
// newer redraw was submitted in the meantime; otherwise it is discarded. A
// resolve error leaves the surface as it was.
func (c *Compositor) Submit(ctx context.Context, resolve ResolveFunc) uint64 {
	c.mu.Lock()
	c.submitted++
	gen := c.submitted
	c.mu.Unlock()

	go func() {
		layers, err := resolve(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()

		if gen != c.submitted {
			// superseded; the newest generation settles the surface
			return
		}
		if err != nil {
			log.Printf("failed to resolve redraw %d, keeping the previous composite: %s", gen, err)
		} else {
			c.redrawLocked(layers)
		}
		c.settled = gen
		c.settledCond.Broadcast()
	}()

	return gen
}

// Wait blocks until the newest submitted redraw has settled or ctx is done.
func (c *Compositor) Wait(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.settledCond.Broadcast()
	})
	defer stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	for c.settled < c.submitted {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("wait for redraw: %w", err)
		}
		c.settledCond.Wait()
	}
	return nil
}

// Snapshot waits for pending redraws and returns a copy of the surface.
func (c *Compositor) Snapshot(ctx context.Context) (*goimage.RGBA, error) {
	if err := c.Wait(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLocked(), nil
}

// Export waits for pending redraws and encodes the surface as PNG.
func (c *Compositor) Export(ctx context.Context) ([]byte, error) {
	img, err := c.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: failed to encode PNG: %w", ErrExport, err)
	}

	return buf.Bytes(), nil
}

func (c *Compositor) State() SurfaceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Changed reports whether the surface was redrawn within the flash window.
func (c *Compositor) Changed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Composed && c.now().Before(c.changedUntil)
}

func (c *Compositor) copyLocked() *goimage.RGBA {
	out := goimage.NewRGBA(c.surface.Bounds())
	copy(out.Pix, c.surface.Pix)
	return out
}
